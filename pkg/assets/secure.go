package assets

import (
	"fmt"
	"strconv"
	"strings"
)

// Secure selects the scheme used when an asset URL is built.
//
// The zero value, SecureDefault, means the option was never set and the
// URLBuilder picks its own default. SecureOff is an explicit "use http" and
// is not the same thing as SecureDefault.
type Secure uint8

const (
	SecureDefault Secure = iota
	SecureOn
	SecureOff
)

// SecureFromBool converts a plain boolean into an explicit Secure value.
func SecureFromBool(b bool) Secure {
	if b {
		return SecureOn
	}
	return SecureOff
}

// SecureFromPtr converts an optional boolean, as decoded from config, into
// a Secure value. nil maps to SecureDefault.
func SecureFromPtr(b *bool) Secure {
	if b == nil {
		return SecureDefault
	}
	return SecureFromBool(*b)
}

// ParseSecure parses "true"/"false" style strings. An empty string yields
// SecureDefault.
func ParseSecure(s string) (Secure, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "default") {
		return SecureDefault, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return SecureDefault, fmt.Errorf("assets: invalid secure value %q", s)
	}
	return SecureFromBool(b), nil
}

// IsSet reports whether the value is SecureOn or SecureOff.
func (s Secure) IsSet() bool {
	return s == SecureOn || s == SecureOff
}

// Bool returns the boolean value and whether it was set at all.
func (s Secure) Bool() (value, ok bool) {
	switch s {
	case SecureOn:
		return true, true
	case SecureOff:
		return false, true
	default:
		return false, false
	}
}

// Or returns s when it is set and fallback otherwise.
func (s Secure) Or(fallback Secure) Secure {
	if s.IsSet() {
		return s
	}
	return fallback
}

func (s Secure) String() string {
	switch s {
	case SecureOn:
		return "true"
	case SecureOff:
		return "false"
	default:
		return "default"
	}
}
