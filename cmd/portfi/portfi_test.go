package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/portfi/portfi-portal/internal/market"
	"github.com/portfi/portfi-portal/internal/models"
)

func TestParseHoldings(t *testing.T) {
	got, err := parseHoldings([]string{"infy=0.6", " TCS = 0.4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.Holding{{Ticker: "INFY", Weight: 0.6}, {Ticker: "TCS", Weight: 0.4}}
	if len(got) != len(want) {
		t.Fatalf("expected %d holdings, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("holding %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseHoldings_Invalid(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"INFY"},
		{"=0.5"},
		{"INFY=half"},
	} {
		if _, err := parseHoldings(args); err == nil {
			t.Errorf("parseHoldings(%q): expected error", args)
		}
	}
}

func TestAnalysisMarkdown(t *testing.T) {
	md := analysisMarkdown(
		[]models.Holding{{Ticker: "INFY", Weight: 1}},
		"1y",
		&models.AnalysisResult{
			Prediction:       101.5,
			PortfolioMetrics: models.PortfolioMetrics{ExpectedReturn: 0.12, Volatility: 0.2, SharpeRatio: 1.5},
		},
	)
	for _, want := range []string{"(1y)", "| INFY | 100.00% |", "**Prediction:** 101.50", "| Sharpe ratio | 1.50 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarketMarkdown(t *testing.T) {
	md, err := marketMarkdown(context.Background(), market.NewProvider(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"# Markets", "## Trending", "## News"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	md, _ = marketMarkdown(context.Background(), market.NewProvider(), 0)
	if strings.Contains(md, "## News") {
		t.Error("news must be hidden when the limit is 0")
	}
}

func TestRender_Raw(t *testing.T) {
	old := *rawOutput
	*rawOutput = true
	defer func() { *rawOutput = old }()

	var buf bytes.Buffer
	if err := render(&buf, "**bold**"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "**bold**" {
		t.Errorf("raw output changed: %q", buf.String())
	}
}

func TestRender_Styled(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, "# Title\n\nbody"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "body") {
		t.Errorf("styled output lost content: %q", buf.String())
	}
}
