package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseEthAddress(t *testing.T) {
	valid := strings.Repeat("ab", 20)
	if _, err := ParseEthAddress(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []string{
		strings.Repeat("ab", 19),     // too short
		strings.Repeat("ab", 21),     // too long
		strings.Repeat("zz", 20),     // non-hex
		strings.ToUpper(valid),       // uppercase not accepted
	}
	for _, s := range tests {
		if _, err := ParseEthAddress(s); err == nil {
			t.Fatalf("expected domain error for %q", s)
		} else if !strings.Contains(err.Error(), "eth_address") {
			t.Fatalf("error %v does not name eth_address domain", err)
		}
	}
}

func TestParseEthHashAndSignature(t *testing.T) {
	if _, err := ParseEthHash(strings.Repeat("11", 31)); err == nil {
		t.Fatal("expected error for short hash")
	}
	if _, err := ParseEthHash(strings.Repeat("11", 32)); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, err := ParseSignature(strings.Repeat("11", 64)); err == nil {
		t.Fatal("expected error for short signature")
	}
	if _, err := ParseSignature(strings.Repeat("11", 65)); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestEthAddressJSONRejectsNumber(t *testing.T) {
	var a EthAddress
	if err := json.Unmarshal([]byte("123"), &a); err == nil {
		t.Fatal("expected error unmarshaling a bare number into EthAddress")
	}
}
