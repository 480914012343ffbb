package format

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{120000, "₹1,20,000.00"},
		{0, "₹0.00"},
		{999, "₹999.00"},
		{1000, "₹1,000.00"},
		{1450.25, "₹1,450.25"},
		{22356.25, "₹22,356.25"},
		{10000000, "₹1,00,00,000.00"},
		{-1500, "-₹1,500.00"},
		{0.005, "₹0.01"},
	}
	for _, tt := range tests {
		if got := Currency(tt.amount); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestParseCurrency_RoundTrip(t *testing.T) {
	for _, amount := range []float64{120000, 1450.25, -1500, 0, 73289.25, 12345678.9} {
		got, err := ParseCurrency(Currency(amount))
		if err != nil {
			t.Fatalf("ParseCurrency(Currency(%v)) failed: %v", amount, err)
		}
		if got != amount {
			t.Errorf("round trip %v -> %q -> %v", amount, Currency(amount), got)
		}
	}
}

func TestParseCurrency_Invalid(t *testing.T) {
	if _, err := ParseCurrency("₹abc"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestSignedPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.5, "+0.50%"},
		{-0.13, "-0.13%"},
		{0, "+0.00%"},
		{1.064, "+1.06%"},
	}
	for _, tt := range tests {
		if got := SignedPercent(tt.in); got != tt.want {
			t.Errorf("SignedPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSignedCurrency(t *testing.T) {
	if got := SignedCurrency(110.5); got != "+₹110.50" {
		t.Errorf("got %q", got)
	}
	if got := SignedCurrency(-95.3); got != "-₹95.30" {
		t.Errorf("got %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.0842); got != "8.42%" {
		t.Errorf("Percent(0.0842) = %q", got)
	}
}

func TestTrend(t *testing.T) {
	if Trend(-0.1) != "down" || Trend(0) != "up" || Trend(2) != "up" {
		t.Error("unexpected trend classification")
	}
}
