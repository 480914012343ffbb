package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/portfi/portfi-portal/internal/format"
	"github.com/portfi/portfi-portal/internal/market"
	"github.com/portfi/portfi-portal/internal/models"
	"github.com/portfi/portfi-portal/internal/pages"
)

type marketCmd struct {
	news int
}

func (*marketCmd) Name() string     { return "market" }
func (*marketCmd) Synopsis() string { return "print the market overview" }
func (*marketCmd) Usage() string {
	return `portfi market [-news <n>]

  Prints index levels, trending stocks and the latest headlines.
`
}

func (c *marketCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.news, "news", 5, "Number of headlines to show (0 hides them).")
}

func (c *marketCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	md, err := marketMarkdown(ctx, market.NewProvider(), c.news)
	if err != nil {
		return fail("%v", err)
	}
	if err := render(os.Stdout, md); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}

func marketMarkdown(ctx context.Context, p *market.Provider, news int) (string, error) {
	indices, err := p.MarketIndices(ctx)
	if err != nil {
		return "", err
	}
	trending, err := p.TrendingStocks(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Markets\n\n| Index | Value | Change |\n|---|---:|---:|\n")
	for _, idx := range indices {
		fmt.Fprintf(&b, "| %s | %.2f | %s |\n", idx.Name, idx.Value, format.SignedPercent(idx.PercentChange))
	}
	b.WriteString("\n## Trending\n\n| Symbol | Name | Price | Change |\n|---|---|---:|---:|\n")
	for _, s := range trending {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", s.Symbol, s.Name, format.Currency(s.Price), format.SignedPercent(s.PercentChange))
	}

	if news > 0 {
		items, err := p.LatestNews(ctx, news)
		if err != nil {
			return "", err
		}
		b.WriteString("\n## News\n\n")
		for _, n := range items {
			fmt.Fprintf(&b, "- **%s** %s\n", n.Source, n.Title)
		}
	}
	return b.String(), nil
}

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "look up an instrument by symbol or name" }
func (*searchCmd) Usage() string {
	return `portfi search <query>

  Looks up a stock, crypto or forex instrument in the sample catalog.
`
}
func (*searchCmd) SetFlags(*flag.FlagSet) {}

func (*searchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inst, err := pages.Search(market.NewCatalog(), strings.Join(f.Args(), " "))
	if err != nil {
		var verr *pages.ValidationError
		if errors.As(err, &verr) {
			return fail("%s", verr.Message)
		}
		return fail("%v", err)
	}
	if err := render(os.Stdout, instrumentMarkdown(inst)); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}

func instrumentMarkdown(inst models.Instrument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", inst.Name, inst.Symbol)
	fmt.Fprintf(&b, "**%s** %s (%s)\n", format.Currency(inst.Price), format.SignedCurrency(inst.Change), format.SignedPercent(inst.PercentChange))
	if inst.Recommendation != "" {
		fmt.Fprintf(&b, "\n%s with %d%% confidence\n", inst.Recommendation, inst.Confidence)
	}
	if inst.Analysis != "" {
		fmt.Fprintf(&b, "\n> %s\n", inst.Analysis)
	}
	return b.String()
}
