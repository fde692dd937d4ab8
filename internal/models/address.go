package models

import (
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Address identifies a principal (creator, contributor, owner) or an asset contract.
// Addresses are 20-byte values rendered as 0x-prefixed lowercase hex.
type Address string

// NativeAsset is the sentinel asset recorded for native value contributions.
// It is never a member of the authorised token set.
const NativeAsset Address = "0x0000000000000000000000000000000000000000"

const addressHexLen = 40

// ParseAddress normalizes and validates a 0x-prefixed 20-byte hex address
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if len(s) != addressHexLen+2 || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return "", ErrInvalidAddress.With("address", s)
	}
	body := strings.ToLower(s[2:])
	if _, err := hex.DecodeString(body); err != nil {
		return "", ErrInvalidAddress.With("address", s)
	}
	return Address("0x" + body), nil
}

// MustParseAddress is ParseAddress for constants and tests
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsNative reports whether the address is the native asset sentinel
func (a Address) IsNative() bool {
	return a == NativeAsset
}

// IsZero reports whether the address is empty or the zero address
func (a Address) IsZero() bool {
	return a == "" || a == NativeAsset
}

func (a Address) String() string {
	return string(a)
}

// UnmarshalJSON accepts any casing and stores the normalized form
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidAddress.With("address", string(data))
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
