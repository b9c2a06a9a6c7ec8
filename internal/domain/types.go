package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress parses a hex-encoded account address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return common.HexToAddress(s), nil
}

// Amount is a non-negative integer value in the smallest value unit.
// It is stored as numeric(78,0) in the database and serialized as a
// decimal string in JSON, matching how token quantities are handled
// across the indexing stack.
type Amount struct {
	i big.Int
}

// NewAmount creates an Amount from an int64. Negative inputs are clamped
// to zero; amounts are non-negative by construction.
func NewAmount(v int64) Amount {
	if v < 0 {
		return Amount{}
	}
	var a Amount
	a.i.SetInt64(v)
	return a
}

// NewAmountFromBig creates an Amount from a big.Int copy.
func NewAmountFromBig(v *big.Int) (Amount, error) {
	if v == nil {
		return Amount{}, fmt.Errorf("nil amount")
	}
	if v.Sign() < 0 {
		return Amount{}, fmt.Errorf("negative amount: %s", v.String())
	}
	var a Amount
	a.i.Set(v)
	return a, nil
}

// ParseAmount parses a base-10 decimal string into an Amount.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if _, ok := a.i.SetString(s, 10); !ok {
		return Amount{}, fmt.Errorf("invalid amount: %q", s)
	}
	if a.i.Sign() < 0 {
		return Amount{}, fmt.Errorf("negative amount: %q", s)
	}
	return a, nil
}

// String returns the base-10 decimal representation.
func (a Amount) String() string {
	return a.i.String()
}

// Sign returns 0 for a zero amount and 1 otherwise.
func (a Amount) Sign() int {
	return a.i.Sign()
}

// Cmp compares a and b, returning -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	return a.i.Cmp(&b.i)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	var r Amount
	r.i.Add(&a.i, &b.i)
	return r
}

// Sub returns a - b. It panics if b > a; callers must compare first.
func (a Amount) Sub(b Amount) Amount {
	if a.Cmp(b) < 0 {
		panic("amount underflow")
	}
	var r Amount
	r.i.Sub(&a.i, &b.i)
	return r
}

// MulUint64 returns a * n.
func (a Amount) MulUint64(n uint64) Amount {
	var r Amount
	r.i.Mul(&a.i, new(big.Int).SetUint64(n))
	return r
}

// DivUint64 returns floor(a / n). It panics on division by zero.
func (a Amount) DivUint64(n uint64) Amount {
	var r Amount
	r.i.Div(&a.i, new(big.Int).SetUint64(n))
	return r
}

// BigInt returns a copy of the underlying big integer.
func (a Amount) BigInt() *big.Int {
	return new(big.Int).Set(&a.i)
}

// MarshalJSON serializes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.i.String())
}

// UnmarshalJSON accepts a decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer so GORM can bind the amount to
// numeric(78,0) columns.
func (a Amount) Value() (driver.Value, error) {
	return a.i.String(), nil
}

// Scan implements sql.Scanner for numeric(78,0) columns.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		return a.Scan(string(v))
	case int64:
		*a = NewAmount(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}
