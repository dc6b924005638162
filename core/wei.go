package core

import (
	"fmt"
	"math/big"
)

// maxWeiDigits bounds the arbitrary-precision wei amount at 1000 decimal
// digits; this is a sanity ceiling, not a currency cap.
const maxWeiDigits = 1000

// Wei is an arbitrary-precision integer amount, rendered on the wire as a
// decimal string. A bare JSON number is rejected so that
// precision is never silently lost to float64. The type itself can hold a
// negative value (see ParseWei and Sub); non-negativity is enforced at
// admission and by the state_updates CHECK constraint.
type Wei struct {
	v *big.Int
}

// NewWei wraps an existing big.Int. The value is not copied.
func NewWei(v *big.Int) Wei { return Wei{v: v} }

// WeiFromInt64 builds a Wei from a small non-negative int64, mainly for tests
// and constants.
func WeiFromInt64(v int64) Wei { return Wei{v: big.NewInt(v)} }

// ParseWei parses a decimal string into a Wei value, rejecting non-digit
// input and values wider than maxWeiDigits. Negative values parse
// successfully here: rejecting them is an admission-time rule, not a
// wire-codec one, since a negative admission request must still reach the
// quarantine log with the negative_amount reason.
func ParseWei(s string) (Wei, error) {
	if s == "" {
		return Wei{}, fmt.Errorf("value for domain wei violates check constraint")
	}
	n := new(big.Int)
	parsed, ok := n.SetString(s, 10)
	if !ok {
		return Wei{}, fmt.Errorf("value for domain wei violates check constraint")
	}
	digits := len(parsed.String())
	if parsed.Sign() < 0 {
		digits--
	} else if parsed.Sign() == 0 {
		digits = 1
	}
	if digits > maxWeiDigits {
		return Wei{}, fmt.Errorf("value for domain wei violates check constraint")
	}
	return Wei{v: parsed}, nil
}

// Int returns the underlying big.Int. Callers must not mutate it.
func (w Wei) Int() *big.Int {
	if w.v == nil {
		return big.NewInt(0)
	}
	return w.v
}

// IsValid reports whether the Wei was constructed with a value (the zero
// value of Wei is intentionally invalid so "unset" and "zero" are distinct).
func (w Wei) IsValid() bool { return w.v != nil }

// String renders the decimal value.
func (w Wei) String() string {
	if w.v == nil {
		return ""
	}
	return w.v.String()
}

// Sign returns -1/0/1 as per big.Int.Sign. Unset Wei behaves as zero.
func (w Wei) Sign() int {
	if w.v == nil {
		return 0
	}
	return w.v.Sign()
}

// Cmp compares two Wei values as big.Int.Cmp.
func (w Wei) Cmp(o Wei) int { return w.Int().Cmp(o.Int()) }

// Add returns w+o as a new Wei.
func (w Wei) Add(o Wei) Wei { return Wei{v: new(big.Int).Add(w.Int(), o.Int())} }

// Sub returns w-o as a new Wei. The result may be negative; callers that
// need a remaining-balance figure are responsible for checking Sign().
func (w Wei) Sub(o Wei) Wei { return Wei{v: new(big.Int).Sub(w.Int(), o.Int())} }

// MarshalJSON renders Wei as a quoted decimal string.
func (w Wei) MarshalJSON() ([]byte, error) {
	return marshalQuoted(w.String())
}

// UnmarshalJSON requires a JSON string token; a bare number is rejected
// with a "must be text" message so precision is never lost to float64.
func (w *Wei) UnmarshalJSON(b []byte) error {
	raw, err := unmarshalHexString(b)
	if err != nil {
		return fmt.Errorf("amount must be text")
	}
	parsed, err := ParseWei(raw)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

func marshalQuoted(s string) ([]byte, error) {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	out = append(out, []byte(s)...)
	out = append(out, '"')
	return out, nil
}
