package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/portfi/portfi-portal/internal/client"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/models"
	"github.com/portfi/portfi-portal/internal/pages"
)

// PortfolioHandler serves the portfolio analysis page and its API.
type PortfolioHandler struct {
	logger    *common.Logger
	pages     *PageHandler
	workspace *pages.Registry
	client    *client.Client
}

// NewPortfolioHandler creates a new portfolio handler. c serves the raw
// price analysis endpoint and may be nil.
func NewPortfolioHandler(logger *common.Logger, p *PageHandler, ws *pages.Registry, c *client.Client) *PortfolioHandler {
	return &PortfolioHandler{logger: logger, pages: p, workspace: ws, client: c}
}

// HandlePage serves GET /portfolio-analysis.
func (h *PortfolioHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ws := h.workspace.Resolve(w, r)

	data := h.pages.baseData(r, "portfolio")
	data["State"] = ws.Portfolio.Snapshot()
	data["Periods"] = models.Periods
	h.pages.render(w, http.StatusOK, "portfolio.html", data)
}

// HandleForm handles POST /portfolio-analysis. The action field selects
// add, remove or analyze; the page is then shown again.
func (h *PortfolioHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ws := h.workspace.Resolve(w, r)
	page := ws.Portfolio

	tickers := r.Form["ticker"]
	weights := r.Form["weight"]
	holdings := make([]models.Holding, len(tickers))
	for i, t := range tickers {
		holdings[i].Ticker = t
		if i < len(weights) {
			holdings[i].Weight = parseWeight(weights[i])
		}
	}
	if err := page.Replace(holdings, r.FormValue("period")); err != nil {
		// An unknown period keeps the current one.
		page.Replace(holdings, page.Snapshot().Period)
	}

	action := r.FormValue("action")
	switch {
	case action == "add":
		page.AddHolding()
	case strings.HasPrefix(action, "remove-"):
		if i, err := strconv.Atoi(strings.TrimPrefix(action, "remove-")); err == nil {
			page.RemoveHolding(i)
		}
	default:
		if _, err := page.Submit(r.Context()); err != nil && h.logger != nil {
			h.logger.Debug().Str("error", err.Error()).Msg("portfolio form submission rejected")
		}
	}

	http.Redirect(w, r, "/portfolio-analysis", http.StatusSeeOther)
}

// HandleState serves GET /api/portfolio.
func (h *PortfolioHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, h.workspace.Resolve(w, r).Portfolio.Snapshot())
}

type analyzeRequest struct {
	Holdings []models.Holding `json:"holdings"`
	Period   string           `json:"period"`
}

// HandleAnalyze serves POST /api/portfolio/analyze.
func (h *PortfolioHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Period == "" {
		req.Period = pages.DefaultPeriod
	}

	page := h.workspace.Resolve(w, r).Portfolio
	if err := page.Replace(req.Holdings, req.Period); err != nil {
		writePageError(w, err)
		return
	}
	result, err := page.Submit(r.Context())
	if err != nil {
		writePageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// HandlePrices serves POST /api/portfolio/prices, relaying raw price
// series to the analytics service.
func (h *PortfolioHandler) HandlePrices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if h.client == nil {
		WriteError(w, http.StatusServiceUnavailable, "analysis service not configured")
		return
	}
	var req models.PriceAnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Tickers) == 0 || req.WindowSize <= 0 {
		WriteFieldError(w, "tickers", "tickers and a positive window_size are required")
		return
	}

	body, err := h.client.AnalyzePrices(r.Context(), req.Tickers, req.Prices, req.WindowSize)
	if err != nil {
		writePageError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// writePageError maps page and client errors to JSON responses.
func writePageError(w http.ResponseWriter, err error) {
	var (
		verr  *pages.ValidationError
		verrs pages.ValidationErrors
		terr  *client.TransportError
		ferr  *client.FormatError
	)
	switch {
	case errors.As(err, &verr):
		WriteFieldError(w, verr.Field, verr.Message)
	case errors.As(err, &verrs) && len(verrs) > 0:
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status": "error",
			"error":  verrs.Error(),
			"fields": verrs,
		})
	case errors.Is(err, pages.ErrBusy):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, pages.ErrDisconnected):
		WriteError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &terr):
		status := http.StatusBadGateway
		if terr.Kind == client.KindTimeout {
			status = http.StatusGatewayTimeout
		}
		WriteError(w, status, terr.Message)
	case errors.As(err, &ferr):
		WriteError(w, http.StatusBadGateway, pages.MsgAnalyzeFailed)
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func parseWeight(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

