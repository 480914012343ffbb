package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/portfi/portfi-portal/internal/analysis"
	"github.com/portfi/portfi-portal/internal/assistant"
	"github.com/portfi/portfi-portal/internal/format"
	"github.com/portfi/portfi-portal/internal/models"
	"github.com/portfi/portfi-portal/internal/pages"
)

type healthCmd struct{}

func (*healthCmd) Name() string     { return "health" }
func (*healthCmd) Synopsis() string { return "check that the FinBot service is up" }
func (*healthCmd) Usage() string {
	return `portfi health

  Calls GET /health on the chat service and exits non-zero when it is down.
`
}
func (*healthCmd) SetFlags(*flag.FlagSet) {}

func (*healthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := loadEnv()
	if err != nil {
		return fail("%v", err)
	}
	status, err := e.client.Health(ctx)
	if err != nil {
		return fail("FinBot is offline: %v", err)
	}
	if !status.Healthy() {
		return fail("FinBot reported status %q", status.Status)
	}
	fmt.Println("FinBot is online")
	return subcommands.ExitSuccess
}

type chatCmd struct {
	timeout time.Duration
}

func (*chatCmd) Name() string     { return "chat" }
func (*chatCmd) Synopsis() string { return "ask FinBot a question" }
func (*chatCmd) Usage() string {
	return `portfi chat [-timeout <duration>] <message...>

  Sends one message to FinBot and prints the markdown reply.
`
}

func (c *chatCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.timeout, "timeout", 30*time.Second, "How long to wait for the reply.")
}

func (c *chatCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	message := strings.TrimSpace(strings.Join(f.Args(), " "))
	if message == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	e, err := loadEnv()
	if err != nil {
		return fail("%v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	bot, err := assistant.New(ctx, e.cfg.Assistant, e.client, e.logger)
	if err != nil {
		return fail("%v", err)
	}
	reply, err := bot.Reply(ctx, models.ChatRequest{Message: message})
	if err != nil {
		return fail("%s", pages.FailureReply)
	}
	if err := render(os.Stdout, reply); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}

type analyzeCmd struct {
	period string
	mock   bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "analyze a weighted portfolio" }
func (*analyzeCmd) Usage() string {
	return `portfi analyze [-period <1d|1w|1m|1y>] [-mock] <TICKER=WEIGHT>...

  Weights must sum to 1, for example: portfi analyze INFY=0.6 TCS=0.4
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", pages.DefaultPeriod, "Analysis period.")
	f.BoolVar(&c.mock, "mock", false, "Use generated sample results instead of the analysis service.")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	holdings, err := parseHoldings(f.Args())
	if err != nil {
		return fail("%v", err)
	}
	if !models.ValidPeriod(c.period) {
		return fail("period must be one of %s", strings.Join(models.Periods, ", "))
	}
	if err := pages.ValidateWeights(holdings); err != nil {
		return fail("%v", err)
	}

	e, err := loadEnv()
	if err != nil {
		return fail("%v", err)
	}
	if c.mock {
		e.cfg.Analysis.Mode = "mock"
	}
	analyzer, err := analysis.New(e.cfg.Analysis, e.client, e.logger)
	if err != nil {
		return fail("%v", err)
	}

	req := models.AnalysisRequest{Period: c.period}
	for _, h := range holdings {
		req.Stocks = append(req.Stocks, h.Ticker)
		req.Weights = append(req.Weights, h.Weight)
	}
	result, err := analyzer.Analyze(ctx, req)
	if err != nil {
		return fail("analysis failed: %v", err)
	}
	if err := render(os.Stdout, analysisMarkdown(holdings, c.period, result)); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}

// parseHoldings reads TICKER=WEIGHT arguments.
func parseHoldings(args []string) ([]models.Holding, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one TICKER=WEIGHT is required")
	}
	holdings := make([]models.Holding, 0, len(args))
	for _, arg := range args {
		ticker, weight, ok := strings.Cut(arg, "=")
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if !ok || ticker == "" {
			return nil, fmt.Errorf("%q is not TICKER=WEIGHT", arg)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: weight must be a number", arg)
		}
		holdings = append(holdings, models.Holding{Ticker: ticker, Weight: w})
	}
	return holdings, nil
}

func analysisMarkdown(holdings []models.Holding, period string, r *models.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio analysis (%s)\n\n", period)
	b.WriteString("| Ticker | Weight |\n|---|---:|\n")
	for _, h := range holdings {
		fmt.Fprintf(&b, "| %s | %s |\n", h.Ticker, format.Percent(h.Weight))
	}
	fmt.Fprintf(&b, "\n**Prediction:** %.2f\n\n", r.Prediction)
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Expected return | %s |\n", format.Percent(r.PortfolioMetrics.ExpectedReturn))
	fmt.Fprintf(&b, "| Volatility | %s |\n", format.Percent(r.PortfolioMetrics.Volatility))
	fmt.Fprintf(&b, "| Sharpe ratio | %.2f |\n", r.PortfolioMetrics.SharpeRatio)
	fmt.Fprintf(&b, "| RMSE | %.4f |\n", r.Metrics.RMSE)
	return b.String()
}
