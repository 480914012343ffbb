package client

import (
	"context"
	"encoding/json"

	"github.com/portfi/portfi-portal/internal/models"
)

// AnalyzePortfolio requests weighted portfolio analytics.
// POST /analyze-portfolio {stocks, weights, period} -> AnalysisResult
func (c *Client) AnalyzePortfolio(ctx context.Context, in models.AnalysisRequest) (*models.AnalysisResult, error) {
	body, err := c.postJSON(ctx, "analyze-portfolio", c.analysisURL+"/analyze-portfolio", in)
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &FormatError{Op: "analyze-portfolio", Err: err}
	}
	return &result, nil
}

// AnalyzePrices submits raw price series for windowed analysis and returns
// the service's response untouched.
// POST /portfolio-analysis {tickers, prices, window_size}
func (c *Client) AnalyzePrices(ctx context.Context, tickers []string, prices map[string][]float64, windowSize int) (json.RawMessage, error) {
	body, err := c.postJSON(ctx, "portfolio-analysis", c.analysisURL+"/portfolio-analysis", models.PriceAnalysisRequest{
		Tickers:    tickers,
		Prices:     prices,
		WindowSize: windowSize,
	})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &FormatError{Op: "portfolio-analysis", Err: errInvalidJSON}
	}
	return json.RawMessage(body), nil
}
