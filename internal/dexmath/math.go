package dexmath

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// MaxDigits bounds integer amounts to the width of a uint256 (78 decimal
// digits). Larger values are rejected before they are expanded.
const MaxDigits = 78

// maxAmountLen caps the textual form of an amount.
const maxAmountLen = 512

// ToHuman converts an amount in base units into its decimal value,
// amount / 10^decimals.
//
// The result is exact: decimal.Decimal keeps the unscaled big.Int and an
// exponent, so no digit is dropped for high-decimal tokens.
func ToHuman(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// ToBaseUnits parses a human decimal string and scales it by 10^decimals.
// The string is never routed through float64. A fractional remainder below
// one base unit is truncated.
func ToBaseUnits(human string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(human)
	if s == "" {
		return nil, errors.New("empty amount")
	}
	if len(s) > maxAmountLen {
		return nil, errors.Errorf("amount longer than %d characters", maxAmountLen)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decimal.NewFromString")
	}
	return ToBaseUnitsDecimal(d, decimals)
}

// ToBaseUnitsDecimal is ToBaseUnits for an already parsed decimal. Results
// wider than MaxDigits are an error.
func ToBaseUnitsDecimal(d decimal.Decimal, decimals uint8) (*big.Int, error) {
	if d.IsNegative() {
		return nil, errors.New("negative amount")
	}

	n := integerDigits(d, decimals)
	if n > MaxDigits {
		return nil, errors.Errorf("amount exceeds %d digits", MaxDigits)
	}
	if n <= 0 {
		return new(big.Int), nil
	}
	return d.Shift(int32(decimals)).BigInt(), nil
}

// integerDigits returns the number of digits left of the decimal point of
// d * 10^shift without expanding it. Zero or less means the value is below one.
func integerDigits(d decimal.Decimal, shift uint8) int64 {
	if d.IsZero() {
		return 0
	}
	coef := new(big.Int).Abs(d.Coefficient())
	return int64(len(coef.String())) + int64(d.Exponent()) + int64(shift)
}

// ParseBaseUnits parses an exact non-negative integer amount of at most
// MaxDigits digits. Exponent forms such as "1e6" are accepted when they denote
// an integer.
func ParseBaseUnits(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}
	if len(s) > maxAmountLen {
		return nil, errors.Errorf("amount longer than %d characters", maxAmountLen)
	}
	if v, ok := new(big.Int).SetString(s, 10); ok {
		if v.Sign() < 0 {
			return nil, errors.Errorf("negative amount %s", s)
		}
		if len(v.String()) > MaxDigits {
			return nil, errors.Errorf("amount exceeds %d digits", MaxDigits)
		}
		return v, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decimal.NewFromString")
	}
	if d.IsNegative() {
		return nil, errors.Errorf("negative amount %s", s)
	}
	if d.IsZero() {
		return new(big.Int), nil
	}
	// Checked before IsInteger, whose cost grows with the exponent.
	n := integerDigits(d, 0)
	if n > MaxDigits {
		return nil, errors.Errorf("amount exceeds %d digits", MaxDigits)
	}
	if n <= 0 || !d.IsInteger() {
		return nil, errors.Errorf("amount %s is not an integer", s)
	}
	return ToBaseUnitsDecimal(d, 0)
}
