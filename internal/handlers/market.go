package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/market"
	"github.com/portfi/portfi-portal/internal/models"
	"github.com/portfi/portfi-portal/internal/pages"
)

// MarketHandler serves the sample market data as JSON.
type MarketHandler struct {
	logger    *common.Logger
	provider  *market.Provider
	catalog   *market.Catalog
	newsLimit int
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(logger *common.Logger, provider *market.Provider, catalog *market.Catalog, newsLimit int) *MarketHandler {
	return &MarketHandler{logger: logger, provider: provider, catalog: catalog, newsLimit: newsLimit}
}

// serve adapts a provider call to a GET handler.
func serve[T any](h *MarketHandler, name string, fetch func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		data, err := fetch(r.Context())
		if err != nil {
			if h.logger != nil {
				h.logger.Error().Str("data", name).Str("error", err.Error()).Msg("failed to load market data")
			}
			WriteError(w, http.StatusInternalServerError, "failed to load "+name)
			return
		}
		WriteJSON(w, http.StatusOK, data)
	}
}

// Indices handles GET /api/market/indices.
func (h *MarketHandler) Indices() http.HandlerFunc {
	return serve(h, "indices", h.provider.MarketIndices)
}

// Trending handles GET /api/market/trending.
func (h *MarketHandler) Trending() http.HandlerFunc {
	return serve(h, "trending", h.provider.TrendingStocks)
}

// Overview handles GET /api/market/overview.
func (h *MarketHandler) Overview() http.HandlerFunc {
	return serve(h, "overview", h.provider.MarketOverview)
}

// Portfolio handles GET /api/market/portfolio.
func (h *MarketHandler) Portfolio() http.HandlerFunc {
	return serve(h, "portfolio", h.provider.PortfolioData)
}

// Watchlist handles GET /api/market/watchlist.
func (h *MarketHandler) Watchlist() http.HandlerFunc {
	return serve(h, "watchlist", h.provider.WatchlistData)
}

// Recommendations handles GET /api/market/recommendations.
func (h *MarketHandler) Recommendations() http.HandlerFunc {
	return serve(h, "recommendations", h.provider.RecommendationsData)
}

// Sectors handles GET /api/market/sectors.
func (h *MarketHandler) Sectors() http.HandlerFunc {
	return serve(h, "sectors", h.provider.SectorPerformanceData)
}

// News handles GET /api/market/news?limit=N.
func (h *MarketHandler) News(w http.ResponseWriter, r *http.Request) {
	limit := h.newsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 50 {
			WriteFieldError(w, "limit", "limit must be between 1 and 50")
			return
		}
		limit = n
	}
	serve(h, "news", func(ctx context.Context) ([]models.NewsItem, error) {
		return h.provider.LatestNews(ctx, limit)
	})(w, r)
}

// Instruments handles GET /api/market/instruments?class=stock|crypto|forex.
func (h *MarketHandler) Instruments(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	class := models.InstrumentClass(r.URL.Query().Get("class"))
	switch class {
	case "":
		WriteJSON(w, http.StatusOK, h.catalog.All())
	case models.ClassStock, models.ClassCrypto, models.ClassForex:
		WriteJSON(w, http.StatusOK, h.catalog.ByClass(class))
	default:
		WriteFieldError(w, "class", "class must be stock, crypto or forex")
	}
}

// Search handles GET /api/search?q=.
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	inst, err := pages.Search(h.catalog, r.URL.Query().Get("q"))
	if err != nil {
		status := http.StatusBadRequest
		if verr, ok := err.(*pages.ValidationError); ok && verr.Message == pages.MsgNotFound {
			status = http.StatusNotFound
		}
		WriteJSON(w, status, map[string]string{"status": "error", "field": "query", "error": err.Error()})
		return
	}
	WriteJSON(w, http.StatusOK, inst)
}
