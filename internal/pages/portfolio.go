package pages

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/portfi/portfi-portal/internal/analysis"
	"github.com/portfi/portfi-portal/internal/client"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/models"
	"github.com/shopspring/decimal"
)

// ErrBusy is returned when a request of the same kind is already in flight.
var ErrBusy = errors.New("a request is already in progress")

// Messages shown by the portfolio page.
const (
	MsgWeightsSum     = "Weights must sum to 1"
	MsgInvalidPeriod  = "Period must be one of 1d, 1w, 1m, 1y"
	MsgAnalyzeFailed  = "Failed to analyze portfolio"
	MsgGenericFailure = "An error occurred"
)

// weightTolerance is the allowed distance of the weight sum from 1.
var weightTolerance = decimal.RequireFromString("0.01")

// DefaultHoldings returns the initial portfolio rows.
func DefaultHoldings() []models.Holding {
	return []models.Holding{
		{Ticker: "AAPL", Weight: 0.3},
		{Ticker: "MSFT", Weight: 0.3},
		{Ticker: "GOOGL", Weight: 0.4},
	}
}

// DefaultPeriod is the initial analysis period.
const DefaultPeriod = "1y"

// WeightSum adds weights exactly in decimal.
func WeightSum(holdings []models.Holding) decimal.Decimal {
	sum := decimal.Zero
	for _, h := range holdings {
		sum = sum.Add(decimal.NewFromFloat(h.Weight))
	}
	return sum
}

// ValidateWeights accepts holdings whose weights sum to within 0.01 of 1.
func ValidateWeights(holdings []models.Holding) error {
	for _, h := range holdings {
		if math.IsNaN(h.Weight) || math.IsInf(h.Weight, 0) {
			return &ValidationError{Field: "weights", Message: MsgWeightsSum}
		}
	}
	if WeightSum(holdings).Sub(decimal.NewFromInt(1)).Abs().GreaterThan(weightTolerance) {
		return &ValidationError{Field: "weights", Message: MsgWeightsSum}
	}
	return nil
}

// PortfolioState is a snapshot of a PortfolioPage.
type PortfolioState struct {
	Holdings []models.Holding       `json:"holdings"`
	Period   string                 `json:"period"`
	Result   *models.AnalysisResult `json:"result,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Busy     bool                   `json:"busy"`
}

// PortfolioPage is one browser's portfolio analysis form.
type PortfolioPage struct {
	analyzer analysis.Analyzer
	logger   *common.Logger

	mu       sync.Mutex
	holdings []models.Holding
	period   string
	result   *models.AnalysisResult
	errMsg   string
	busy     bool
}

// NewPortfolioPage creates a page with the default holdings.
func NewPortfolioPage(a analysis.Analyzer, period string, logger *common.Logger) *PortfolioPage {
	if !models.ValidPeriod(period) {
		period = DefaultPeriod
	}
	return &PortfolioPage{
		analyzer: a,
		logger:   logger,
		holdings: DefaultHoldings(),
		period:   period,
	}
}

// Snapshot returns a copy of the page state.
func (p *PortfolioPage) Snapshot() PortfolioState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PortfolioState{
		Holdings: append([]models.Holding(nil), p.holdings...),
		Period:   p.period,
		Result:   p.result,
		Error:    p.errMsg,
		Busy:     p.busy,
	}
}

// SetPeriod selects the analysis period.
func (p *PortfolioPage) SetPeriod(period string) error {
	if !models.ValidPeriod(period) {
		return &ValidationError{Field: "period", Message: MsgInvalidPeriod}
	}
	p.mu.Lock()
	p.period = period
	p.mu.Unlock()
	return nil
}

// SetHolding edits row i.
func (p *PortfolioPage) SetHolding(i int, ticker string, weight float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.holdings) {
		return fmt.Errorf("holding %d out of range", i)
	}
	p.holdings[i] = models.Holding{Ticker: normalizeTicker(ticker), Weight: weight}
	return nil
}

// AddHolding appends an empty row.
func (p *PortfolioPage) AddHolding() {
	p.mu.Lock()
	p.holdings = append(p.holdings, models.Holding{})
	p.mu.Unlock()
}

// RemoveHolding deletes row i.
func (p *PortfolioPage) RemoveHolding(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.holdings) {
		return fmt.Errorf("holding %d out of range", i)
	}
	p.holdings = append(p.holdings[:i], p.holdings[i+1:]...)
	return nil
}

// Replace sets every row and the period at once, as a form post does.
func (p *PortfolioPage) Replace(holdings []models.Holding, period string) error {
	if !models.ValidPeriod(period) {
		return &ValidationError{Field: "period", Message: MsgInvalidPeriod}
	}
	rows := make([]models.Holding, len(holdings))
	for i, h := range holdings {
		rows[i] = models.Holding{Ticker: normalizeTicker(h.Ticker), Weight: h.Weight}
	}
	p.mu.Lock()
	p.holdings = rows
	p.period = period
	p.mu.Unlock()
	return nil
}

// Submit validates the weights and runs one analysis. Only one Submit may
// be in flight; a concurrent call returns ErrBusy without touching state.
func (p *PortfolioPage) Submit(ctx context.Context) (*models.AnalysisResult, error) {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.result = nil
	p.errMsg = ""

	if err := ValidateWeights(p.holdings); err != nil {
		p.errMsg = err.Error()
		p.mu.Unlock()
		return nil, err
	}

	req := models.AnalysisRequest{
		Stocks:  make([]string, len(p.holdings)),
		Weights: make([]float64, len(p.holdings)),
		Period:  p.period,
	}
	for i, h := range p.holdings {
		req.Stocks[i] = h.Ticker
		req.Weights[i] = h.Weight
	}
	p.busy = true
	p.mu.Unlock()

	result, err := p.analyzer.Analyze(ctx, req)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	if err != nil {
		p.errMsg = analysisMessage(err)
		if p.logger != nil {
			p.logger.Warn().Strs("stocks", req.Stocks).Str("period", req.Period).Err(err).Msg("portfolio analysis failed")
		}
		return nil, err
	}
	p.result = result
	return result, nil
}

func analysisMessage(err error) string {
	var fe *client.FormatError
	if errors.As(err, &fe) {
		return MsgAnalyzeFailed
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgGenericFailure
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
