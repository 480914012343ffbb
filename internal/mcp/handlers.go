package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/portfi/portfi-portal/internal/analysis"
	"github.com/portfi/portfi-portal/internal/assistant"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
	"github.com/portfi/portfi-portal/internal/market"
	"github.com/portfi/portfi-portal/internal/models"
	"github.com/portfi/portfi-portal/internal/pages"
)

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals v as the text content of a result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to marshal result")
	}
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(out))}}
}

// AskHandler answers ask_finbot. History is not kept between calls.
func AskHandler(a assistant.Assistant, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message := strings.TrimSpace(r.GetString("message", ""))
		if message == "" {
			return errorResult(pages.MsgMessageRequired), nil
		}

		uc, _ := GetUserContext(ctx)
		reply, err := a.Reply(ctx, models.ChatRequest{Message: message, UserID: uc.UserID})
		if err != nil {
			if logger != nil {
				logger.Warn().Str("user_id", uc.UserID).Err(err).Msg("ask_finbot failed")
			}
			return errorResult(pages.FailureReply), nil
		}
		if strings.TrimSpace(reply) == "" {
			reply = pages.FallbackReply
		}
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(reply)}}, nil
	}
}

// AnalyzeHandler answers analyze_portfolio.
func AnalyzeHandler(an analysis.Analyzer, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := r.GetArguments()
		tickers, err := stringList(args["tickers"])
		if err != nil {
			return errorResult("tickers: " + err.Error()), nil
		}
		weights, err := numberList(args["weights"])
		if err != nil {
			return errorResult("weights: " + err.Error()), nil
		}
		if len(tickers) == 0 || len(tickers) != len(weights) {
			return errorResult("tickers and weights must be non-empty and the same length"), nil
		}

		period := r.GetString("period", pages.DefaultPeriod)
		if !models.ValidPeriod(period) {
			return errorResult(pages.MsgInvalidPeriod), nil
		}

		holdings := make([]models.Holding, len(tickers))
		req := models.AnalysisRequest{Stocks: make([]string, len(tickers)), Weights: weights, Period: period}
		for i, t := range tickers {
			t = strings.ToUpper(strings.TrimSpace(t))
			holdings[i] = models.Holding{Ticker: t, Weight: weights[i]}
			req.Stocks[i] = t
		}
		if err := pages.ValidateWeights(holdings); err != nil {
			return errorResult(err.Error()), nil
		}

		result, err := an.Analyze(ctx, req)
		if err != nil {
			if logger != nil {
				logger.Warn().Strs("stocks", req.Stocks).Err(err).Msg("analyze_portfolio failed")
			}
			return errorResult(pages.MsgAnalyzeFailed), nil
		}
		return jsonResult(result), nil
	}
}

type marketOverview struct {
	Overview models.MarketOverview  `json:"overview"`
	Indices  []models.MarketIndex   `json:"indices"`
	Trending []models.TrendingStock `json:"trending"`
}

// MarketOverviewHandler answers market_overview.
func MarketOverviewHandler(p *market.Provider) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var out marketOverview
		var err error
		if out.Overview, err = p.MarketOverview(ctx); err != nil {
			return errorResult("failed to load market overview"), nil
		}
		if out.Indices, err = p.MarketIndices(ctx); err != nil {
			return errorResult("failed to load market indices"), nil
		}
		if out.Trending, err = p.TrendingStocks(ctx); err != nil {
			return errorResult("failed to load trending stocks"), nil
		}
		return jsonResult(out), nil
	}
}

// SearchHandler answers search_instrument.
func SearchHandler(c *market.Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := r.GetString("query", "")
		inst, err := pages.Search(c, query)
		if err != nil {
			if strings.TrimSpace(query) != "" {
				return errorResult(fmt.Sprintf("%s: %s", query, err.Error())), nil
			}
			return errorResult(err.Error()), nil
		}
		return jsonResult(inst), nil
	}
}

type versionResult struct {
	Portal  config.VersionInfo `json:"portal"`
	Backend string             `json:"backend"`
}

// VersionHandler answers get_version. a may be nil.
func VersionHandler(a assistant.Assistant) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out := versionResult{Portal: config.GetVersionInfo(), Backend: "unknown"}
		if a != nil {
			hctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := a.Health(hctx); err != nil {
				out.Backend = "down"
			} else {
				out.Backend = "ok"
			}
		}
		return jsonResult(out), nil
	}
}

func stringList(v interface{}) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []interface{}:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d is not a string", i)
			}
			out[i] = s
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("required")
	default:
		return nil, fmt.Errorf("must be an array of strings")
	}
}

func numberList(v interface{}) ([]float64, error) {
	switch list := v.(type) {
	case []float64:
		return list, nil
	case []interface{}:
		out := make([]float64, len(list))
		for i, item := range list {
			switch n := item.(type) {
			case float64:
				out[i] = n
			case int:
				out[i] = float64(n)
			case json.Number:
				f, err := n.Float64()
				if err != nil {
					return nil, fmt.Errorf("item %d is not a number", i)
				}
				out[i] = f
			default:
				return nil, fmt.Errorf("item %d is not a number", i)
			}
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("required")
	default:
		return nil, fmt.Errorf("must be an array of numbers")
	}
}
