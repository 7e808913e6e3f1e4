package quantity

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestTimesIsExact(t *testing.T) {
	perOrder := FromFloat(0.1)
	need, err := perOrder.Times(3)
	if err != nil {
		t.Fatalf("times: %v", err)
	}
	if need != FromFloat(0.3) {
		t.Fatalf("0.1 x 3 = %s, want 0.3", need)
	}
	if got := FromInt(5).Sub(need); got.String() != "4.7" {
		t.Fatalf("5 - 0.3 = %s, want 4.7", got)
	}
}

func TestTimesRejectsOverflow(t *testing.T) {
	if _, err := FromInt(1).Times(1844674407370956); !errors.Is(err, ErrOverflow) {
		t.Fatalf("1 x 1844674407370956 err = %v, want ErrOverflow", err)
	}
	if _, err := FromInt(2).Times(MaxWhole); !errors.Is(err, ErrOverflow) {
		t.Fatalf("2 x MaxWhole err = %v, want ErrOverflow", err)
	}
	if got, err := FromInt(1).Times(MaxWhole); err != nil || got.Raw() != MaxWhole*Scale {
		t.Fatalf("1 x MaxWhole = %s, %v", got, err)
	}
	if _, err := Quantity(math.MaxInt64).CheckedAdd(1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("CheckedAdd past max err = %v, want ErrOverflow", err)
	}
}

func TestParseRoundsToFourPlaces(t *testing.T) {
	q, err := Parse("0.33335")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Raw() != 3334 {
		t.Fatalf("raw = %d, want 3334", q.Raw())
	}
	if _, err := Parse("two"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var body struct {
		Quantity Quantity `json:"quantity"`
	}
	if err := json.Unmarshal([]byte(`{"quantity": 2.25}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Quantity != 22500 {
		t.Fatalf("quantity = %d", body.Quantity)
	}
	out, _ := json.Marshal(body)
	if string(out) != `{"quantity":2.25}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestLess(t *testing.T) {
	if !FromInt(3).Less(FromInt(4)) {
		t.Fatalf("3 should be less than 4")
	}
	if FromInt(4).Less(FromInt(4)) {
		t.Fatalf("4 should not be less than 4")
	}
}
