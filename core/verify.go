package core

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// Verifier is the injected signature-verification capability. Production
// code uses Secp256k1Verifier; tests stub this with AlwaysValidVerifier to
// exercise admission logic without real keys.
type Verifier interface {
	// Verify reports whether sig is a valid secp256k1/SHA-256 signature by
	// sender over the raw (unhashed) message bytes.
	Verify(sender EthAddress, message []byte, sig Signature) bool
}

// Digest builds the byte string a wallet signs for a state update: the
// big-endian packing of chain_id (4 bytes), contract_id
// (20 bytes), channel_id (32 bytes), and amount*10^18 (32 bytes),
// concatenated in that order. This layout is frozen — see Pack.
func Digest(key ChannelKey, amount Wei) ([]byte, error) {
	chainIDHex, err := Pack(4, big.NewInt(key.ChainID))
	if err != nil {
		return nil, err
	}
	contractHex, err := Pack(20, new(big.Int).SetBytes(key.ContractID.Bytes()))
	if err != nil {
		return nil, err
	}
	channelHex, err := Pack(32, new(big.Int).SetBytes(key.ChannelID.Bytes()))
	if err != nil {
		return nil, err
	}
	amountHex, err := PackWei(32, amount)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 4+20+32+32)
	for _, h := range []string{chainIDHex, contractHex, channelHex, amountHex} {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// Secp256k1Verifier recovers the signer's address from a recoverable
// (r||s||v) secp256k1 signature over SHA-256(message) and compares it to
// the expected sender.
type Secp256k1Verifier struct{}

// Verify implements Verifier.
func (Secp256k1Verifier) Verify(sender EthAddress, message []byte, sig Signature) bool {
	hash := sha256.Sum256(message)
	sigBytes := sig.Bytes()

	pub, err := crypto.SigToPub(hash[:], sigBytes)
	if err != nil {
		return false
	}
	if !crypto.VerifySignature(crypto.FromECDSAPub(pub), hash[:], sigBytes[:64]) {
		return false
	}
	recovered := crypto.PubkeyToAddress(*pub)
	var addr EthAddress
	copy(addr[:], recovered.Bytes())
	return addr == sender
}

// AlwaysValidVerifier stubs signature checking to always succeed.
type AlwaysValidVerifier struct{}

// Verify implements Verifier.
func (AlwaysValidVerifier) Verify(EthAddress, []byte, Signature) bool { return true }
