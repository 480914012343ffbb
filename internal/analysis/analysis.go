// Package analysis runs portfolio analytics for the analysis page and the MCP tools.
package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/portfi/portfi-portal/internal/cache"
	"github.com/portfi/portfi-portal/internal/client"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
	"github.com/portfi/portfi-portal/internal/models"
)

// Analyzer produces analytics for a weighted portfolio.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error)
}

// New selects the analyzer named by cfg.Mode.
func New(cfg config.AnalysisConfig, c *client.Client, logger *common.Logger) (Analyzer, error) {
	switch cfg.Mode {
	case "", "remote":
		if cfg.CacheTTLSeconds > 0 {
			return NewCached(NewRemote(c), time.Duration(cfg.CacheTTLSeconds)*time.Second), nil
		}
		return NewRemote(c), nil
	case "mock":
		if logger != nil {
			logger.Warn().Msg("analysis mode is mock: results are random and for development only")
		}
		return NewMock(nil), nil
	default:
		return nil, fmt.Errorf("unknown analysis mode %q", cfg.Mode)
	}
}

// Remote delegates to the analytics service.
type Remote struct {
	client *client.Client
}

// NewRemote creates a Remote analyzer.
func NewRemote(c *client.Client) *Remote {
	return &Remote{client: c}
}

// Analyze calls POST /analyze-portfolio.
func (r *Remote) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	return r.client.AnalyzePortfolio(ctx, req)
}

// cacheEntries caps the number of remembered analyses.
const cacheEntries = 256

// Cached remembers results of an inner Analyzer for identical requests.
type Cached struct {
	inner   Analyzer
	results *cache.Cache[*models.AnalysisResult]
}

// NewCached wraps inner with a result cache of the given TTL.
func NewCached(inner Analyzer, ttl time.Duration) *Cached {
	return &Cached{inner: inner, results: cache.New[*models.AnalysisResult](ttl, cacheEntries)}
}

// Analyze returns a remembered result or asks inner. Failures are not cached.
func (c *Cached) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	key := requestKey(req)
	if res, ok := c.results.Get(key); ok {
		return res, nil
	}
	res, err := c.inner.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	c.results.Set(key, res)
	return res, nil
}

// requestKey identifies a request by its ordered holdings and period.
func requestKey(req models.AnalysisRequest) string {
	var b strings.Builder
	b.WriteString(req.Period)
	for i, s := range req.Stocks {
		b.WriteByte('|')
		b.WriteString(s)
		b.WriteByte('=')
		if i < len(req.Weights) {
			b.WriteString(strconv.FormatFloat(req.Weights[i], 'g', -1, 64))
		}
	}
	return b.String()
}

// Mock generates random metrics in the ranges of the analytics service.
type Mock struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMock creates a Mock analyzer. A nil rnd uses a time-seeded source.
func NewMock(rnd *rand.Rand) *Mock {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Mock{rnd: rnd}
}

// Analyze returns random metrics; it never fails.
func (m *Mock) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mse := m.rnd.Float64() * 0.1
	return &models.AnalysisResult{
		Prediction: m.rnd.Float64()*100 + 50,
		Metrics: models.PredictionMetrics{
			MSE:  mse,
			RMSE: m.rnd.Float64() * 0.3,
			MAE:  m.rnd.Float64() * 0.2,
		},
		PortfolioMetrics: models.PortfolioMetrics{
			ExpectedReturn: m.rnd.Float64()*0.2 + 0.05,
			Volatility:     m.rnd.Float64()*0.3 + 0.1,
			SharpeRatio:    m.rnd.Float64()*2 + 0.5,
		},
	}, nil
}
