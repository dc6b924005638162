package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnixTime is a time.Time that travels on the wire as Unix-epoch seconds: a
// bare JSON number, integer when the value has no sub-second part and
// fractional otherwise. The zero value marshals as null.
type UnixTime struct {
	time.Time
}

// NewUnixTime wraps t.
func NewUnixTime(t time.Time) UnixTime { return UnixTime{Time: t} }

// MarshalJSON renders the timestamp as epoch seconds.
func (t UnixTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	sec := t.Unix()
	ns := t.Nanosecond()
	if ns == 0 {
		return strconv.AppendInt(nil, sec, 10), nil
	}
	frac := strings.TrimRight(fmt.Sprintf("%09d", ns), "0")
	return []byte(fmt.Sprintf("%d.%s", sec, frac)), nil
}

// UnmarshalJSON accepts a bare number of epoch seconds, integer or
// fractional, or null for an unset timestamp. A quoted string is rejected.
func (t *UnixTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*t = UnixTime{}
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		return fmt.Errorf("ts must be a number of epoch seconds")
	}
	i := strings.IndexByte(s, '.')
	if i < 0 {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("ts: %w", err)
		}
		*t = UnixTime{Time: time.Unix(sec, 0).UTC()}
		return nil
	}
	sec, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return fmt.Errorf("ts: %w", err)
	}
	frac := s[i+1:]
	if len(frac) > 9 {
		frac = frac[:9]
	}
	frac += strings.Repeat("0", 9-len(frac))
	ns, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return fmt.Errorf("ts: %w", err)
	}
	*t = UnixTime{Time: time.Unix(sec, ns).UTC()}
	return nil
}
