package core

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// Pack produces a fixed-width big-endian hex encoding of value, left-padded
// with zeros to exactly 2*nBytes hex characters. It is part of
// the wire contract: the digest signed by wallets is built by concatenating
// the output of Pack for each field, so its byte width and padding rules are
// frozen and must never change.
//
// Pack fails if value is negative, has a fractional part, or its magnitude
// does not fit in nBytes bytes.
func Pack(nBytes int, value *big.Int) (string, error) {
	if value == nil {
		return "", fmt.Errorf("pack: nil value")
	}
	if value.Sign() < 0 {
		return "", fmt.Errorf("pack: value must be non-negative")
	}
	raw := value.Bytes() // big-endian, no leading zeros, empty for zero
	if len(raw) > nBytes {
		return "", fmt.Errorf("pack: value does not fit in %d bytes", nBytes)
	}
	buf := make([]byte, nBytes)
	copy(buf[nBytes-len(raw):], raw)
	return hex.EncodeToString(buf), nil
}

// PackWei packs a Wei amount scaled by 10^18, as required when building
// the state-update signing digest.
func PackWei(nBytes int, amount Wei) (string, error) {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	scaled := new(big.Int).Mul(amount.Int(), scale)
	return Pack(nBytes, scaled)
}

// Unpack parses a big-endian hex string back into a *big.Int, the inverse
// of Pack. Round-tripping recovers the original value iff it fits in the
// packed width.
func Unpack(hexStr string) (*big.Int, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("unpack: %w", err)
	}
	return new(big.Int).SetBytes(b), nil
}
