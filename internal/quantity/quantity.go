// Package quantity models raw-material amounts (grams, liters, cups) with four
// decimal places, stored as integer ten-thousandths so stock math in SQL is exact.
package quantity

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"mirmaia/pos/internal/intmath"
)

// Scale is the number of stored units per whole unit.
const Scale = 10000

// Places is the number of decimal digits carried.
const Places = 4

// MaxWhole is the largest whole-unit count that fits once scaled.
const MaxWhole = math.MaxInt64 / Scale

// ErrOverflow is returned when a result does not fit in the stored range.
var ErrOverflow = errors.New("quantity: amount out of range")

// Quantity is an amount of a raw material in ten-thousandths.
type Quantity int64

// Zero is the empty quantity.
const Zero Quantity = 0

// FromFloat rounds x to four decimals. NaN and out-of-range values become zero.
func FromFloat(x float64) Quantity {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= MaxWhole {
		return Zero
	}
	return Quantity(decimal.NewFromFloat(x).Shift(Places).Round(0).IntPart())
}

// FromInt returns n whole units.
func FromInt(n int64) Quantity { return Quantity(n * Scale) }

// Parse reads a decimal string.
func Parse(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid quantity %q", s)
	}
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(MaxWhole)) {
		return Zero, fmt.Errorf("quantity %q out of range", s)
	}
	return Quantity(d.Shift(Places).Round(0).IntPart()), nil
}

// Raw returns the stored ten-thousandths.
func (q Quantity) Raw() int64 { return int64(q) }

// Float64 returns the quantity in whole units.
func (q Quantity) Float64() float64 { return float64(q) / Scale }

// Decimal returns the exact decimal value.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q), -Places)
}

// Times multiplies by an integer count, e.g. a per-order usage by units ordered.
func (q Quantity) Times(n int64) (Quantity, error) {
	v, ok := intmath.Mul(int64(q), n)
	if !ok {
		return Zero, ErrOverflow
	}
	return Quantity(v), nil
}

// Add returns q + o.
func (q Quantity) Add(o Quantity) Quantity { return q + o }

// CheckedAdd is Add that reports overflow.
func (q Quantity) CheckedAdd(o Quantity) (Quantity, error) {
	v, ok := intmath.Add(int64(q), int64(o))
	if !ok {
		return Zero, ErrOverflow
	}
	return Quantity(v), nil
}

// Sub returns q - o.
func (q Quantity) Sub(o Quantity) Quantity { return q - o }

// Less reports q < o.
func (q Quantity) Less(o Quantity) bool { return q < o }

// Positive reports q > 0.
func (q Quantity) Positive() bool { return q > 0 }

// String prints the shortest exact decimal form, e.g. "2.5".
func (q Quantity) String() string { return q.Decimal().String() }

// MarshalJSON emits a JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*q = Zero
		return nil
	}
	parsed, err := Parse(strings.Trim(raw, `"`))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Scan implements sql.Scanner.
func (q *Quantity) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*q = Zero
	case int64:
		*q = Quantity(v)
	case float64:
		*q = Quantity(math.Round(v))
	case []byte:
		return q.scanText(string(v))
	case string:
		return q.scanText(v)
	default:
		return fmt.Errorf("quantity: cannot scan %T", src)
	}
	return nil
}

func (q *Quantity) scanText(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("quantity: cannot scan %q", s)
	}
	*q = Quantity(d.Round(0).IntPart())
	return nil
}

// Value implements driver.Valuer.
func (q Quantity) Value() (driver.Value, error) {
	return int64(q), nil
}
