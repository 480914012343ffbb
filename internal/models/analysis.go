package models

// Holding is one editable row of the portfolio analysis form.
type Holding struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// Analysis periods accepted by the analytics service.
var Periods = []string{"1d", "1w", "1m", "1y"}

// ValidPeriod reports whether p is one of Periods.
func ValidPeriod(p string) bool {
	for _, v := range Periods {
		if v == p {
			return true
		}
	}
	return false
}

// AnalysisRequest is the body of POST /analyze-portfolio.
type AnalysisRequest struct {
	Stocks  []string  `json:"stocks"`
	Weights []float64 `json:"weights"`
	Period  string    `json:"period"`
}

// PredictionMetrics describes model fit quality.
type PredictionMetrics struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// PortfolioMetrics describes the risk/return profile of the weighted portfolio.
type PortfolioMetrics struct {
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
}

// AnalysisResult is the response of POST /analyze-portfolio.
type AnalysisResult struct {
	Prediction       float64           `json:"prediction"`
	Metrics          PredictionMetrics `json:"metrics"`
	PortfolioMetrics PortfolioMetrics  `json:"portfolio_metrics"`
}

// PriceAnalysisRequest is the body of POST /portfolio-analysis.
type PriceAnalysisRequest struct {
	Tickers    []string             `json:"tickers"`
	Prices     map[string][]float64 `json:"prices"`
	WindowSize int                  `json:"window_size"`
}
