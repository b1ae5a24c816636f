package domain

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strings"

	"github.com/shopspring/decimal"
)

// UnitScale is the number of base units in one value-unit.
const UnitScale = 1_000_000_000

// unitExp is log10(UnitScale).
const unitExp = 9

// Amount is a quantity of base units.
type Amount uint64

// Units returns n value-units as an Amount.
// Panics if the result does not fit; use ParseAmount for untrusted input.
func Units(n uint64) Amount {
	hi, lo := bits.Mul64(n, UnitScale)
	if hi != 0 {
		panic(fmt.Sprintf("domain.Units: %d value-units overflows Amount", n))
	}
	return Amount(lo)
}

// CheckedAdd returns a+b or ErrArithmeticOverflow.
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return Amount(sum), nil
}

// CheckedSub returns a-b or ErrInsufficientFunds when b exceeds a.
func (a Amount) CheckedSub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrInsufficientFunds
	}
	return a - b, nil
}

// Decimal returns the amount expressed in value-units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(a)), -unitExp)
}

// String formats the amount in value-units with trailing zeros trimmed,
// e.g. 1_500_000_000 → "1.5".
func (a Amount) String() string {
	return a.Decimal().String()
}

// ParseAmount parses a non-negative decimal string of value-units.
// At most nine fractional digits are accepted.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, InvalidArgument("amount", fmt.Sprintf("%q is not a decimal number", s))
	}
	if d.IsNegative() {
		return 0, InvalidArgument("amount", fmt.Sprintf("%q is negative", s))
	}

	base := d.Shift(unitExp)
	if !base.IsInteger() {
		return 0, InvalidArgument("amount", fmt.Sprintf("%q has more than %d decimal places", s, unitExp))
	}

	bi := base.BigInt()
	if !bi.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return Amount(bi.Uint64()), nil
}

// MustParseAmount is like ParseAmount but panics on error.
// Use only in tests or for constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// CheckedIncrement returns v+1 or ErrArithmeticOverflow.
func CheckedIncrement(v uint32) (uint32, error) {
	if v == math.MaxUint32 {
		return 0, ErrArithmeticOverflow
	}
	return v + 1, nil
}
