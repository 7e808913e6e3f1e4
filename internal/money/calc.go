package money

// Float helpers for callers that hold plain major-unit numbers. Each operand is
// normalized to minor units first, so results carry no binary representation
// error for inputs with up to three decimals.

// ToMinorUnits returns round(x * 1000).
func ToMinorUnits(x float64) int64 { return FromFloat(x).Minor() }

// ToMajorUnits returns i / 1000.
func ToMajorUnits(i int64) float64 { return Money(i).Float64() }

// Add sums major-unit values exactly.
func Add(xs ...float64) float64 {
	var total Money
	for _, x := range xs {
		total += FromFloat(x)
	}
	return total.Float64()
}

// Subtract returns a - b.
func Subtract(a, b float64) float64 {
	return FromFloat(a).Sub(FromFloat(b)).Float64()
}

// Multiply returns price * quantity where quantity is a count of units.
// A product outside the representable range is zero.
func Multiply(price float64, quantity int64) float64 {
	v, err := FromFloat(price).Mul(quantity)
	if err != nil {
		return 0
	}
	return v.Float64()
}

// PercentageOf returns percent% of amount, rounded to the minor unit.
func PercentageOf(amount, percent float64) float64 {
	return FromFloat(amount).Percent(percent).Float64()
}

// Round normalizes x to three decimals. Round(Round(x)) == Round(x).
func Round(x float64) float64 { return FromFloat(x).Float64() }

// Equal compares two major-unit values at minor-unit precision.
func Equal(a, b float64) bool { return FromFloat(a) == FromFloat(b) }
