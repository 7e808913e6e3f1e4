// Package money implements exact fixed-point arithmetic for the shop's currency.
//
// Amounts are held as an integer count of minor units, 1000 per major unit, so
// every addition, subtraction and percentage is integer math. Floats only appear
// at the boundary and are normalized with round-half-away-from-zero.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"mirmaia/pos/internal/intmath"
)

// Scale is the number of minor units in one major unit.
const Scale = 1000

// Places is the number of decimal digits carried by an amount.
const Places = 3

// maxMajor keeps x*Scale inside int64.
const maxMajor = math.MaxInt64 / Scale

var hundred = decimal.NewFromInt(100)

// ErrOverflow is returned when a result does not fit in the minor-unit range.
var ErrOverflow = errors.New("money: amount out of range")

// Money is an amount expressed in minor units.
type Money int64

// Zero is the empty amount.
const Zero Money = 0

// FromFloat normalizes a major-unit float to the nearest minor unit.
// NaN, infinities and values outside the representable range become zero.
func FromFloat(x float64) Money {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= maxMajor {
		return Zero
	}
	return Money(decimal.NewFromFloat(x).Shift(Places).Round(0).IntPart())
}

// FromMinor wraps a raw minor-unit count.
func FromMinor(i int64) Money { return Money(i) }

// Parse reads a decimal string such as "1.500" and rounds it to minor units.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid money amount %q", s)
	}
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(maxMajor)) {
		return Zero, fmt.Errorf("money amount %q out of range", s)
	}
	return Money(d.Shift(Places).Round(0).IntPart()), nil
}

// Minor returns the raw minor-unit count.
func (m Money) Minor() int64 { return int64(m) }

// Float64 converts back to major units.
func (m Money) Float64() float64 { return float64(m) / Scale }

// Add returns m + o.
func (m Money) Add(o Money) Money { return m + o }

// Sub returns m - o. The result may be negative.
func (m Money) Sub(o Money) Money { return m - o }

// Mul multiplies a unit price by a count of units sold.
func (m Money) Mul(qty int64) (Money, error) {
	v, ok := intmath.Mul(int64(m), qty)
	if !ok {
		return Zero, ErrOverflow
	}
	return Money(v), nil
}

// CheckedAdd is Add that reports overflow.
func (m Money) CheckedAdd(o Money) (Money, error) {
	v, ok := intmath.Add(int64(m), int64(o))
	if !ok {
		return Zero, ErrOverflow
	}
	return Money(v), nil
}

// CheckedSub is Sub that reports overflow.
func (m Money) CheckedSub(o Money) (Money, error) {
	v, ok := intmath.Sub(int64(m), int64(o))
	if !ok {
		return Zero, ErrOverflow
	}
	return Money(v), nil
}

// Percent returns round(m * percent / 100). A percent of 5 means 5%.
func (m Money) Percent(percent float64) Money {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return Zero
	}
	return Money(percentOf(m, percent).IntPart())
}

// CheckedPercent is Percent that reports a result outside the int64 range.
func (m Money) CheckedPercent(percent float64) (Money, error) {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return Zero, ErrOverflow
	}
	d := percentOf(m, percent)
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return Zero, ErrOverflow
	}
	return Money(d.IntPart()), nil
}

func percentOf(m Money, percent float64) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).
		Mul(decimal.NewFromFloat(percent)).
		Div(hundred).
		Round(0)
}

// Sum adds any number of amounts.
func Sum(ms ...Money) Money {
	var total Money
	for _, m := range ms {
		total += m
	}
	return total
}

// String formats the amount with exactly three decimals, e.g. "3.150".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03d", sign, v/Scale, v%Scale)
}

// MarshalJSON emits a JSON number normalized to three decimal places.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = Zero
		return nil
	}
	parsed, err := Parse(strings.Trim(raw, `"`))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan implements sql.Scanner. Columns hold minor units.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Zero
	case int64:
		*m = Money(v)
	case float64:
		*m = Money(math.Round(v))
	case []byte:
		return m.scanText(string(v))
	case string:
		return m.scanText(v)
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	return nil
}

func (m *Money) scanText(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("money: cannot scan %q", s)
	}
	*m = Money(d.Round(0).IntPart())
	return nil
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return int64(m), nil
}
