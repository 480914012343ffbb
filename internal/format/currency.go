// Package format renders amounts and percentages the way the portal displays them.
package format

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DisplayCurrency is the ISO code every amount in the portal is shown in.
const DisplayCurrency = "INR"

var inr = money.GetCurrency(DisplayCurrency)

// Currency renders amount as Indian rupees with Indian digit grouping
// (last three digits, then pairs) and the currency's minor-unit precision,
// e.g. 120000 -> "₹1,20,000.00" and -1500 -> "-₹1,500.00".
func Currency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(int32(inr.Fraction))

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(int32(inr.Fraction))
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(inr.Grapheme)
	b.WriteString(groupIndian(intPart))
	if fracPart != "" {
		b.WriteString(inr.Decimal)
		b.WriteString(fracPart)
	}
	return b.String()
}

// groupIndian inserts thousands separators in the lakh/crore pattern.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	groups = append(groups, tail)
	return strings.Join(groups, inr.Thousand)
}

// ParseCurrency reverses Currency. The grapheme and separators are optional.
func ParseCurrency(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, inr.Grapheme)
	raw = strings.ReplaceAll(raw, inr.Thousand, "")

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid currency amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return f, nil
}

// SignedCurrency renders a change amount with an explicit sign, e.g. "+₹110.50".
func SignedCurrency(amount float64) string {
	if amount >= 0 {
		return "+" + Currency(amount)
	}
	return Currency(amount)
}

// SignedPercent renders a percent change with two decimals and an explicit sign.
func SignedPercent(p float64) string {
	d := decimal.NewFromFloat(p).Round(2)
	if d.IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}

// Percent renders a ratio (0.0842) as a percentage ("8.42%").
func Percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(2) + "%"
}

// Trend returns "up" for non-negative changes and "down" otherwise, for styling.
func Trend(change float64) string {
	if change < 0 {
		return "down"
	}
	return "up"
}
