package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseWei(t *testing.T) {
	w, err := ParseWei("500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.String() != "500" {
		t.Fatalf("got %q", w.String())
	}

	neg, err := ParseWei("-1")
	if err != nil {
		t.Fatalf("ParseWei must accept negative wei syntactically: %v", err)
	}
	if neg.Sign() >= 0 {
		t.Fatalf("expected a negative value, got %s", neg)
	}
	if _, err := ParseWei("abc"); err == nil {
		t.Fatal("expected error for non-numeric wei")
	}
	if _, err := ParseWei(strings.Repeat("9", 1001)); err == nil {
		t.Fatal("expected error for over-wide wei")
	}
	if _, err := ParseWei(strings.Repeat("9", 1000)); err != nil {
		t.Fatalf("1000 digits should be accepted: %v", err)
	}
}

func TestWeiJSONRejectsNumber(t *testing.T) {
	var w Wei
	err := json.Unmarshal([]byte("123"), &w)
	if err == nil {
		t.Fatal("expected error unmarshaling a bare JSON number into Wei")
	}
	if !strings.Contains(err.Error(), "must be text") {
		t.Fatalf("error %q does not mention 'must be text'", err)
	}
}

func TestWeiJSONRoundTrip(t *testing.T) {
	w, _ := ParseWei("123456789012345678901234567890")
	b, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Wei
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Cmp(w) != 0 {
		t.Fatalf("round trip mismatch: %s != %s", got, w)
	}
}

func TestWeiArithmetic(t *testing.T) {
	a, _ := ParseWei("300")
	b, _ := ParseWei("150")
	if a.Sub(b).String() != "150" {
		t.Fatalf("sub: got %s", a.Sub(b))
	}
	if a.Add(b).String() != "450" {
		t.Fatalf("add: got %s", a.Add(b))
	}
	if a.Cmp(b) <= 0 {
		t.Fatal("expected a > b")
	}
}
