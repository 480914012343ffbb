// Package market serves the portal's sample market data.
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/portfi/portfi-portal/internal/models"
)

// Provider returns fixed sample data. Every method succeeds; the context and
// error return keep the signatures interchangeable with a live feed.
type Provider struct {
	now func() time.Time
}

// NewProvider creates a sample data provider.
func NewProvider() *Provider {
	return &Provider{now: time.Now}
}

// DefaultNewsLimit is used when LatestNews is called with limit <= 0.
const DefaultNewsLimit = 5

// MarketIndices returns headline index quotes.
func (p *Provider) MarketIndices(_ context.Context) ([]models.MarketIndex, error) {
	return []models.MarketIndex{
		{Name: "NIFTY 50", Value: 22356.25, Change: 110.5, PercentChange: 0.5},
		{Name: "SENSEX", Value: 73289.25, Change: -95.3, PercentChange: -0.13},
		{Name: "BANK NIFTY", Value: 47890.15, Change: 230.1, PercentChange: 0.48},
	}, nil
}

// TrendingStocks returns trending equity quotes.
func (p *Provider) TrendingStocks(_ context.Context) ([]models.TrendingStock, error) {
	return []models.TrendingStock{
		{Symbol: "INFY", Name: "Infosys", Price: 1450.25, Change: 15.2, PercentChange: 1.06},
		{Symbol: "RELI", Name: "Reliance", Price: 2505.10, Change: -25.3, PercentChange: -1.00},
		{Symbol: "TCS", Name: "Tata Consultancy", Price: 3150.0, Change: 50.0, PercentChange: 1.6},
	}, nil
}

// LatestNews synthesises limit headlines.
func (p *Provider) LatestNews(_ context.Context, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	published := p.now().UTC().Format(time.RFC3339)
	items := make([]models.NewsItem, limit)
	for i := range items {
		items[i] = models.NewsItem{
			ID:          i,
			Title:       fmt.Sprintf("Market Update #%d", i+1),
			Summary:     "Quick summary of the news item",
			Source:      "Economic Times",
			PublishedAt: published,
		}
	}
	return items, nil
}

// MarketOverview returns the headline index levels.
func (p *Provider) MarketOverview(_ context.Context) (models.MarketOverview, error) {
	return models.MarketOverview{Nifty: 17500, BankNifty: 38500}, nil
}

// PortfolioData returns the sample dashboard portfolio.
func (p *Provider) PortfolioData(_ context.Context) (models.PortfolioSummary, error) {
	return models.PortfolioSummary{
		Value:            120000,
		DayChange:        1500,
		DayChangePercent: 1.27,
		ReturnValue:      20000,
		ReturnPercent:    20.0,
		Holdings: []models.HoldingValue{
			{Symbol: "INFY", Value: 40000},
			{Symbol: "TCS", Value: 50000},
			{Symbol: "RELIANCE", Value: 30000},
		},
	}, nil
}

// WatchlistData returns the sample watchlist.
func (p *Provider) WatchlistData(_ context.Context) ([]models.WatchlistItem, error) {
	return []models.WatchlistItem{
		{Symbol: "INFY", Price: 1450.25, Change: 15.2, PercentChange: 1.06},
		{Symbol: "TCS", Price: 3150.0, Change: 50.0, PercentChange: 1.6},
		{Symbol: "RELIANCE", Price: 2505.10, Change: -25.3, PercentChange: -1.00},
		{Symbol: "HDFCBANK", Price: 1625.50, Change: 12.5, PercentChange: 0.78},
	}, nil
}

// RecommendationsData returns sample analyst calls.
func (p *Provider) RecommendationsData(_ context.Context) ([]models.Recommendation, error) {
	return []models.Recommendation{
		{Symbol: "ITC", Action: "Buy"},
		{Symbol: "HCLTECH", Action: "Hold"},
	}, nil
}

// SectorPerformanceData returns sample sector returns in percent.
func (p *Provider) SectorPerformanceData(_ context.Context) ([]models.SectorPerformance, error) {
	return []models.SectorPerformance{
		{Sector: "Tech", PercentChange: 8.3},
		{Sector: "Energy", PercentChange: -1.5},
		{Sector: "Finance", PercentChange: 3.7},
	}, nil
}
