package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/models"
)

// AskTool asks FinBot a question.
func AskTool() mcp.Tool {
	return mcp.NewTool("ask_finbot",
		mcp.WithDescription("Ask FinBot, a beginner-friendly assistant for investing in India (SIPs, mutual funds, stocks, risk profiles)."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The question to ask")),
	)
}

// AnalyzeTool runs a portfolio analysis.
func AnalyzeTool() mcp.Tool {
	return mcp.NewTool("analyze_portfolio",
		mcp.WithDescription("Predict the value of a weighted stock portfolio and report its expected return, volatility and Sharpe ratio. Weights must sum to 1."),
		mcp.WithArray("tickers", mcp.Required(), mcp.WithStringItems(), mcp.Description("Ticker symbols, e.g. AAPL")),
		mcp.WithArray("weights", mcp.Required(), mcp.Items(map[string]any{"type": "number"}), mcp.Description("One weight per ticker, summing to 1")),
		mcp.WithString("period", mcp.Enum(models.Periods...), mcp.Description("Analysis period (default 1y)")),
	)
}

// MarketOverviewTool returns the headline indices.
func MarketOverviewTool() mcp.Tool {
	return mcp.NewTool("market_overview",
		mcp.WithDescription("Get the sample NIFTY 50 and BANK NIFTY levels with index changes and trending stocks."),
	)
}

// SearchTool finds a sample instrument.
func SearchTool() mcp.Tool {
	return mcp.NewTool("search_instrument",
		mcp.WithDescription("Look up a sample stock, crypto asset or currency pair by symbol or name, with the analyst view when available."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Symbol or name, e.g. INFY or Bitcoin")),
	)
}

// VersionTool reports the portal version and backend status.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get PortFi portal version and chat backend status. Use this to verify connectivity."),
	)
}

// RegisterTools adds every tool whose dependency is present and returns
// how many were registered.
func RegisterTools(s *server.MCPServer, deps Deps, logger *common.Logger) int {
	n := 0
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		s.AddTool(tool, h)
		n++
	}

	if deps.Assistant != nil {
		add(AskTool(), AskHandler(deps.Assistant, logger))
	}
	if deps.Analyzer != nil {
		add(AnalyzeTool(), AnalyzeHandler(deps.Analyzer, logger))
	}
	if deps.Provider != nil {
		add(MarketOverviewTool(), MarketOverviewHandler(deps.Provider))
	}
	if deps.Catalog != nil {
		add(SearchTool(), SearchHandler(deps.Catalog))
	}
	add(VersionTool(), VersionHandler(deps.Assistant))
	return n
}
