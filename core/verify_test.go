package core

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestDigestWidthAndDeterminism(t *testing.T) {
	key := ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)}
	amount := WeiFromInt64(500)

	d1, err := Digest(key, amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d1) != 4+20+32+32 {
		t.Fatalf("expected digest width 88, got %d", len(d1))
	}

	d2, err := Digest(key, amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(d1) != string(d2) {
		t.Fatal("expected Digest to be deterministic for identical inputs")
	}

	other, _ := Digest(key, WeiFromInt64(501))
	if string(d1) == string(other) {
		t.Fatal("expected different amounts to produce different digests")
	}
}

func signDigest(t *testing.T, priv *ecdsa.PrivateKey, message []byte) Signature {
	t.Helper()
	h := sha256.Sum256(message)
	sigBytes, err := crypto.Sign(h[:], priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	var sig Signature
	copy(sig[:], sigBytes)
	return sig
}

func TestSecp256k1VerifierAcceptsGenuineSignature(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var sender EthAddress
	copy(sender[:], crypto.PubkeyToAddress(priv.PublicKey).Bytes())

	key := ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)}
	message, err := Digest(key, WeiFromInt64(500))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	sig := signDigest(t, priv, message)

	v := Secp256k1Verifier{}
	if !v.Verify(sender, message, sig) {
		t.Fatal("expected genuine signature to verify")
	}
}

func TestSecp256k1VerifierRejectsWrongSender(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key := ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)}
	message, err := Digest(key, WeiFromInt64(500))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	sig := signDigest(t, priv, message)

	v := Secp256k1Verifier{}
	if v.Verify(addr(0x99), message, sig) {
		t.Fatal("expected verification against the wrong sender to fail")
	}
}

func TestSecp256k1VerifierRejectsTamperedMessage(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var sender EthAddress
	copy(sender[:], crypto.PubkeyToAddress(priv.PublicKey).Bytes())

	key := ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)}
	message, err := Digest(key, WeiFromInt64(500))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	sig := signDigest(t, priv, message)

	tampered, err := Digest(key, WeiFromInt64(501))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}

	v := Secp256k1Verifier{}
	if v.Verify(sender, tampered, sig) {
		t.Fatal("expected verification of a tampered message to fail")
	}
}

func TestAlwaysValidVerifier(t *testing.T) {
	v := AlwaysValidVerifier{}
	if !v.Verify(addr(0x01), []byte("anything"), Signature{}) {
		t.Fatal("expected AlwaysValidVerifier to accept any input")
	}
}
