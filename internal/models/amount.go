package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Amount is a non-negative quantity of an asset in base units.
// The zero value is 0. Amounts are immutable; arithmetic returns new values.
type Amount struct {
	v *big.Int
}

// NewAmount creates an amount from a uint64
func NewAmount(n uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(n)}
}

// ParseAmount parses a base-10 integer string
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return Amount{}, ErrInvalidAmount.With("amount", s)
	}
	return Amount{v: v}, nil
}

// MustParseAmount is ParseAmount for constants and tests
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) int() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// IsZero reports whether the amount is 0
func (a Amount) IsZero() bool {
	return a.int().Sign() == 0
}

// Add returns a+b
func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.int(), b.int())}
}

// Sub returns a-b, or false if the result would be negative
func (a Amount) Sub(b Amount) (Amount, bool) {
	if a.Cmp(b) < 0 {
		return Amount{}, false
	}
	return Amount{v: new(big.Int).Sub(a.int(), b.int())}, true
}

// Cmp compares a and b
func (a Amount) Cmp(b Amount) int {
	return a.int().Cmp(b.int())
}

// Equal reports whether a and b represent the same quantity
func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

// Float64 is a lossy conversion used for metrics only
func (a Amount) Float64() float64 {
	f, _ := new(big.Float).SetInt(a.int()).Float64()
	return f
}

func (a Amount) String() string {
	return a.int().String()
}

// MarshalJSON encodes the amount as a decimal string so large values survive JSON clients
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a JSON integer
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer for NUMERIC columns
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for NUMERIC columns
func (a *Amount) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	case int64:
		s = fmt.Sprintf("%d", v)
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
