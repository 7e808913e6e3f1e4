package money

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestRoundIsIdempotent(t *testing.T) {
	values := []float64{0, 0.001, 0.0005, 1.0005, 2.9994, 2.9995, -1.2345, 123456.789, 0.1 + 0.2}
	for _, v := range values {
		once := Round(v)
		if twice := Round(once); twice != once {
			t.Fatalf("Round(Round(%v)) = %v, want %v", v, twice, once)
		}
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := map[float64]int64{
		1.0005:  1001,
		-1.0005: -1001,
		0.0004:  0,
		2.9995:  3000,
		-0.0005: -1,
	}
	for in, want := range cases {
		if got := ToMinorUnits(in); got != want {
			t.Fatalf("ToMinorUnits(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestAddIsExact(t *testing.T) {
	if got := Add(0.1, 0.2); got != 0.3 {
		t.Fatalf("Add(0.1, 0.2) = %v, want 0.3", got)
	}
	if got := Add(10, 20.5, 5.25); got != 35.75 {
		t.Fatalf("Add = %v, want 35.75", got)
	}
	if got := Subtract(0.3, 0.1); got != 0.2 {
		t.Fatalf("Subtract(0.3, 0.1) = %v, want 0.2", got)
	}
}

func TestMultiplyByQuantity(t *testing.T) {
	if got := Multiply(2.999, 3); got != 8.997 {
		t.Fatalf("Multiply(2.999, 3) = %v, want 8.997", got)
	}
	if got, err := FromFloat(1.5).Mul(2); err != nil || got != FromMinor(3000) {
		t.Fatalf("Mul = %v, %v, want 3.000", got, err)
	}
	if _, err := FromFloat(3).Mul(1844674407370956); !errors.Is(err, ErrOverflow) {
		t.Fatalf("Mul overflow err = %v, want ErrOverflow", err)
	}
	if got := Multiply(3, 1844674407370956); got != 0 {
		t.Fatalf("Multiply overflow = %v, want 0", got)
	}
	if _, err := FromMinor(math.MaxInt64).CheckedAdd(1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("CheckedAdd overflow err = %v, want ErrOverflow", err)
	}
	if _, err := FromMinor(math.MinInt64).CheckedSub(1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("CheckedSub overflow err = %v, want ErrOverflow", err)
	}
	if _, err := FromMinor(math.MaxInt64).CheckedPercent(105); !errors.Is(err, ErrOverflow) {
		t.Fatalf("CheckedPercent overflow err = %v, want ErrOverflow", err)
	}
}

func TestPercentageOf(t *testing.T) {
	if got := PercentageOf(3, 5); got != 0.15 {
		t.Fatalf("PercentageOf(3, 5) = %v, want 0.15", got)
	}
	// 0.010 * 5% = 0.0005 rounds away from zero.
	if got := FromMinor(10).Percent(5); got != FromMinor(1) {
		t.Fatalf("Percent half = %d, want 1", got)
	}
	if got := FromMinor(-10).Percent(5); got != FromMinor(-1) {
		t.Fatalf("Percent negative half = %d, want -1", got)
	}
}

func TestInvalidInputsNormalizeToZero(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e300} {
		if got := ToMinorUnits(v); got != 0 {
			t.Fatalf("ToMinorUnits(%v) = %d, want 0", v, got)
		}
	}
	if got := FromMinor(1000).Percent(math.NaN()); got != Zero {
		t.Fatalf("Percent(NaN) = %v, want 0", got)
	}
}

func TestStringAndJSON(t *testing.T) {
	if s := FromMinor(3150).String(); s != "3.150" {
		t.Fatalf("String = %q", s)
	}
	if s := FromMinor(-500).String(); s != "-0.500" {
		t.Fatalf("String negative = %q", s)
	}

	var payload struct {
		Price    Money `json:"price"`
		Discount Money `json:"discount"`
		Missing  Money `json:"missing"`
	}
	if err := json.Unmarshal([]byte(`{"price": 1.0005, "discount": "0.25", "missing": null}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Price != 1001 || payload.Discount != 250 || payload.Missing != 0 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	out, err := json.Marshal(map[string]Money{"total": 3150})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"total":3.150}` {
		t.Fatalf("marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"price": "abc"}`), &payload); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}

func TestScan(t *testing.T) {
	var m Money
	if err := m.Scan(int64(4200)); err != nil || m != 4200 {
		t.Fatalf("scan int64: %v %v", m, err)
	}
	if err := m.Scan([]byte("150")); err != nil || m != 150 {
		t.Fatalf("scan bytes: %v %v", m, err)
	}
	if err := m.Scan(nil); err != nil || m != 0 {
		t.Fatalf("scan nil: %v %v", m, err)
	}
}
