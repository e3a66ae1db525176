package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyFormatterUSD(t *testing.T) {
	f, err := NewMoneyFormatter("en-US", "usd")
	if err != nil {
		t.Fatalf("NewMoneyFormatter: %v", err)
	}
	if f.Currency() != "USD" {
		t.Fatalf("expected USD, got %s", f.Currency())
	}

	tests := []struct {
		in      string
		amount  string
		display string
	}{
		{in: "45.5", amount: "45.50", display: "$45.50"},
		{in: "6.825", amount: "6.83", display: "$6.83"},
		{in: "0", amount: "0.00", display: "$0.00"},
		{in: "-8", amount: "-8.00", display: "-$8.00"},
	}
	for _, tc := range tests {
		got := f.Money(decimal.RequireFromString(tc.in))
		if got.Amount != tc.amount || got.Display != tc.display {
			t.Fatalf("Money(%s) = %+v, want %s / %s", tc.in, got, tc.amount, tc.display)
		}
	}
}

func TestMoneyFormatterJPYHasNoMinorUnit(t *testing.T) {
	f, err := NewMoneyFormatter("ja-JP", "JPY")
	if err != nil {
		t.Fatalf("NewMoneyFormatter: %v", err)
	}
	if got := f.Money(decimal.RequireFromString("500.4")).Amount; got != "500" {
		t.Fatalf("expected 500, got %s", got)
	}
}

func TestNewMoneyFormatterRejectsBadInput(t *testing.T) {
	if _, err := NewMoneyFormatter("not a locale!", "USD"); err == nil {
		t.Fatalf("expected locale error")
	}
	if _, err := NewMoneyFormatter("en-US", "XYZW"); err == nil {
		t.Fatalf("expected currency error")
	}
}
