// Package core implements the event-sourced payment-channel ledger: the
// numeric/address codecs, the intent-correlation and reorg algorithms, the
// channel reducer, and state-update admission. It has no knowledge of SQL —
// that lives in package store — and no knowledge of chain clients or wallets.
package core

import (
	"encoding/hex"
	"fmt"
)

// EthAddress is a validated 20-byte Ethereum address, stored and compared in
// its raw form but parsed from and rendered as lowercase hex without a
// leading "0x".
type EthAddress [20]byte

// EthHash is a validated 32-byte hash (block hash or similar chain hash).
type EthHash [32]byte

// Signature is a validated 65-byte ECDSA signature (r || s || v).
type Signature [65]byte

// domainError mirrors the message a relational CHECK constraint would raise
// for a malformed fixed-width hex column.
func domainError(domain string) error {
	return fmt.Errorf("value for domain %s violates check constraint", domain)
}

func decodeFixed(domain string, s string, n int) ([]byte, error) {
	if len(s) != n*2 {
		return nil, domainError(domain)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, domainError(domain)
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return nil, domainError(domain)
		}
	}
	return b, nil
}

// ParseEthAddress parses a 40-character lowercase-hex string (no "0x").
func ParseEthAddress(s string) (EthAddress, error) {
	var a EthAddress
	b, err := decodeFixed("eth_address", s, len(a))
	if err != nil {
		return a, err
	}
	copy(a[:], b)
	return a, nil
}

// String renders the address as lowercase hex without a leading "0x".
func (a EthAddress) String() string { return hex.EncodeToString(a[:]) }

// Bytes returns the raw 20 bytes.
func (a EthAddress) Bytes() []byte { return a[:] }

// IsZero reports whether the address is the all-zero value.
func (a EthAddress) IsZero() bool { return a == EthAddress{} }

func (a EthAddress) MarshalJSON() ([]byte, error) { return marshalHexString(a[:]) }
func (a *EthAddress) UnmarshalJSON(b []byte) error {
	raw, err := unmarshalHexString(b)
	if err != nil {
		return err
	}
	parsed, err := ParseEthAddress(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseEthHash parses a 64-character lowercase-hex string (no "0x").
func ParseEthHash(s string) (EthHash, error) {
	var h EthHash
	b, err := decodeFixed("eth_hash", s, len(h))
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func (h EthHash) String() string { return hex.EncodeToString(h[:]) }
func (h EthHash) Bytes() []byte  { return h[:] }
func (h EthHash) IsZero() bool   { return h == EthHash{} }

func (h EthHash) MarshalJSON() ([]byte, error) { return marshalHexString(h[:]) }
func (h *EthHash) UnmarshalJSON(b []byte) error {
	raw, err := unmarshalHexString(b)
	if err != nil {
		return err
	}
	parsed, err := ParseEthHash(raw)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseSignature parses a 130-character lowercase-hex string (no "0x").
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	b, err := decodeFixed("eth_signature", s, len(sig))
	if err != nil {
		return sig, err
	}
	copy(sig[:], b)
	return sig, nil
}

func (s Signature) String() string { return hex.EncodeToString(s[:]) }
func (s Signature) Bytes() []byte  { return s[:] }

func (s Signature) MarshalJSON() ([]byte, error) { return marshalHexString(s[:]) }
func (s *Signature) UnmarshalJSON(b []byte) error {
	raw, err := unmarshalHexString(b)
	if err != nil {
		return err
	}
	parsed, err := ParseSignature(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func marshalHexString(b []byte) ([]byte, error) {
	out := make([]byte, 0, len(b)*2+2)
	out = append(out, '"')
	out = append(out, []byte(hex.EncodeToString(b))...)
	out = append(out, '"')
	return out, nil
}

// unmarshalHexString requires the JSON token to be a quoted string, not a
// bare number — the fixed-width hex domains are text on the wire, just
// like Wei.
func unmarshalHexString(b []byte) (string, error) {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return "", fmt.Errorf("must be text")
	}
	return string(b[1 : len(b)-1]), nil
}

// ChannelKey identifies a channel across its three append-only event
// streams.
type ChannelKey struct {
	ChainID    int64      `json:"chain_id"`
	ContractID EthAddress `json:"contract_id"`
	ChannelID  EthHash    `json:"channel_id"`
}

func (k ChannelKey) String() string {
	return fmt.Sprintf("%d:%s:%s", k.ChainID, k.ContractID, k.ChannelID)
}
