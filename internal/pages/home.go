package pages

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/portfi/portfi-portal/internal/charts"
	"github.com/portfi/portfi-portal/internal/market"
	"github.com/portfi/portfi-portal/internal/models"
)

// Search messages.
const (
	MsgQueryRequired = "Enter a symbol or name to search"
	MsgNotFound      = "not found"
)

// HomeView is the data of the market overview page.
type HomeView struct {
	Indices  []models.MarketIndex
	Trending []models.TrendingStock
	News     []models.NewsItem
	Overview models.MarketOverview
	Stocks   []models.Instrument
	Crypto   []models.Instrument
	Forex    []models.Instrument
	Featured models.Instrument
	Query    string
	Found    *models.Instrument
	Error    string

	IndexChart template.JS
}

// BuildHome gathers the market overview. query, when set, is resolved
// against the catalog and recorded as Found or Error.
func BuildHome(ctx context.Context, provider *market.Provider, catalog *market.Catalog, newsLimit int, query string) (*HomeView, error) {
	indices, err := provider.MarketIndices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load market indices: %w", err)
	}
	trending, err := provider.TrendingStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trending stocks: %w", err)
	}
	news, err := provider.LatestNews(ctx, newsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load news: %w", err)
	}
	overview, err := provider.MarketOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load market overview: %w", err)
	}

	points := make([]charts.Point, len(indices))
	for i, idx := range indices {
		points[i] = charts.Point{Name: idx.Name, Value: idx.PercentChange}
	}
	indexChart, err := charts.Bar(points, charts.WithAxis(true), charts.WithTitle("Index change (%)")).JSON()
	if err != nil {
		return nil, err
	}

	view := &HomeView{
		Indices:    indices,
		Trending:   trending,
		News:       news,
		Overview:   overview,
		Stocks:     catalog.ByClass(models.ClassStock),
		Crypto:     catalog.ByClass(models.ClassCrypto),
		Forex:      catalog.ByClass(models.ClassForex),
		IndexChart: indexChart,
	}
	if all := catalog.All(); len(all) > 0 {
		view.Featured = all[0]
	}

	if strings.TrimSpace(query) != "" {
		view.Query = query
		inst, err := Search(catalog, query)
		if err != nil {
			view.Error = err.Error()
		} else {
			view.Found = &inst
		}
	}
	return view, nil
}

// Search resolves query to a catalog instrument.
func Search(catalog *market.Catalog, query string) (models.Instrument, error) {
	if strings.TrimSpace(query) == "" {
		return models.Instrument{}, &ValidationError{Field: "query", Message: MsgQueryRequired}
	}
	inst, ok := catalog.Lookup(query)
	if !ok {
		return models.Instrument{}, &ValidationError{Field: "query", Message: MsgNotFound}
	}
	return inst, nil
}

// DashboardView is the data of the portfolio dashboard.
type DashboardView struct {
	Portfolio       models.PortfolioSummary
	Watchlist       []models.WatchlistItem
	Recommendations []models.Recommendation
	Sectors         []models.SectorPerformance

	AllocationChart template.JS
	SectorChart     template.JS
	WatchlistChart  template.JS
}

// BuildDashboard gathers the sample portfolio and its charts.
func BuildDashboard(ctx context.Context, provider *market.Provider) (*DashboardView, error) {
	portfolio, err := provider.PortfolioData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	watchlist, err := provider.WatchlistData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	recs, err := provider.RecommendationsData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}
	sectors, err := provider.SectorPerformanceData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sector performance: %w", err)
	}

	allocation := make([]charts.Point, len(portfolio.Holdings))
	for i, h := range portfolio.Holdings {
		allocation[i] = charts.Point{Name: h.Symbol, Value: h.Value}
	}
	sectorPoints := make([]charts.Point, len(sectors))
	for i, s := range sectors {
		sectorPoints[i] = charts.Point{Name: s.Sector, Value: s.PercentChange}
	}
	watchPoints := make([]charts.Point, len(watchlist))
	for i, w := range watchlist {
		watchPoints[i] = charts.Point{Name: w.Symbol, Value: w.Price}
	}

	view := &DashboardView{
		Portfolio:       portfolio,
		Watchlist:       watchlist,
		Recommendations: recs,
		Sectors:         sectors,
	}
	if view.AllocationChart, err = charts.Pie(allocation, charts.WithTitle("Allocation")).JSON(); err != nil {
		return nil, err
	}
	if view.SectorChart, err = charts.Bar(sectorPoints, charts.WithAxis(true), charts.WithColor("#82ca9d"), charts.WithTitle("Sector performance (%)")).JSON(); err != nil {
		return nil, err
	}
	if view.WatchlistChart, err = charts.Line(watchPoints, charts.WithAxis(true), charts.WithTitle("Watchlist prices")).JSON(); err != nil {
		return nil, err
	}
	return view, nil
}
