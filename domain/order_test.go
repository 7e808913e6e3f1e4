package domain

import (
	"testing"

	"mirmaia/pos/internal/money"
	"mirmaia/pos/internal/quantity"
)

func TestParsePaymentMethod(t *testing.T) {
	cases := map[string]PaymentMethod{"": PaymentCash, " CARD ": PaymentCard, "both": PaymentBoth}
	for in, want := range cases {
		got, err := ParsePaymentMethod(in)
		if err != nil || got != want {
			t.Fatalf("ParsePaymentMethod(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePaymentMethod("cheque"); err == nil {
		t.Fatalf("expected error for cheque")
	}
}

func TestNewOrderLine(t *testing.T) {
	line, err := NewOrderLine(1, 3, money.FromMinor(2999))
	if err != nil {
		t.Fatalf("new line: %v", err)
	}
	if line.Subtotal != money.FromMinor(8997) {
		t.Fatalf("subtotal = %s, want 8.997", line.Subtotal)
	}
	if _, err := NewOrderLine(1, 0, money.Zero); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
	if _, err := NewOrderLine(0, 1, money.Zero); err == nil {
		t.Fatalf("expected error for missing product")
	}
	if _, err := NewOrderLine(1, 1844674407370956, money.FromMinor(3000)); err == nil {
		t.Fatalf("expected error for quantity above MaxLineQuantity")
	}
	if _, err := NewOrderLine(1, MaxLineQuantity, money.FromMinor(3000)); err == nil {
		t.Fatalf("expected error for a line total past the money range")
	}
	if _, err := NewOrderLine(1, MaxLineQuantity, money.FromMinor(1)); err != nil {
		t.Fatalf("largest quantity at a tiny price rejected: %v", err)
	}
}

func TestNewRecipeLink(t *testing.T) {
	if _, err := NewRecipeLink(1, 2, quantity.FromFloat(0.25)); err != nil {
		t.Fatalf("valid link rejected: %v", err)
	}
	if _, err := NewRecipeLink(1, 2, 0); err == nil {
		t.Fatalf("expected error for zero multiplier")
	}
}
