package market

import (
	"context"
	"testing"
	"time"

	"github.com/portfi/portfi-portal/internal/models"
)

func TestProvider_FixedSamples(t *testing.T) {
	p := NewProvider()
	ctx := context.Background()

	indices, err := p.MarketIndices(ctx)
	if err != nil || len(indices) != 3 || indices[0].Name != "NIFTY 50" || indices[1].Change != -95.3 {
		t.Errorf("unexpected indices %+v, %v", indices, err)
	}

	portfolio, _ := p.PortfolioData(ctx)
	if portfolio.Value != 120000 || len(portfolio.Holdings) != 3 {
		t.Errorf("unexpected portfolio %+v", portfolio)
	}
	var sum float64
	for _, h := range portfolio.Holdings {
		sum += h.Value
	}
	if sum != portfolio.Value {
		t.Errorf("holdings sum %v does not match value %v", sum, portfolio.Value)
	}

	watch, _ := p.WatchlistData(ctx)
	if len(watch) != 4 || watch[3].Symbol != "HDFCBANK" {
		t.Errorf("unexpected watchlist %+v", watch)
	}

	overview, _ := p.MarketOverview(ctx)
	if overview.Nifty != 17500 || overview.BankNifty != 38500 {
		t.Errorf("unexpected overview %+v", overview)
	}
}

func TestProvider_LatestNews(t *testing.T) {
	p := NewProvider()
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	news, err := p.LatestNews(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(news) != DefaultNewsLimit {
		t.Fatalf("expected %d items, got %d", DefaultNewsLimit, len(news))
	}
	if news[0].Title != "Market Update #1" || news[4].Title != "Market Update #5" {
		t.Errorf("unexpected titles %q, %q", news[0].Title, news[4].Title)
	}
	if news[0].PublishedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected timestamp %s", news[0].PublishedAt)
	}

	two, _ := p.LatestNews(context.Background(), 2)
	if len(two) != 2 {
		t.Errorf("expected 2 items, got %d", len(two))
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		query  string
		symbol string
		found  bool
	}{
		{"INFY", "INFY", true},
		{"infy", "INFY", true},
		{"  tcs ", "TCS", true},
		{"bitcoin", "BTC", true},
		{"USDINR", "USDINR", true},
		{"XYZ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := c.Lookup(tt.query)
		if ok != tt.found || got.Symbol != tt.symbol {
			t.Errorf("Lookup(%q) = %s, %v; want %s, %v", tt.query, got.Symbol, ok, tt.symbol, tt.found)
		}
	}
}

func TestCatalog_ByClass(t *testing.T) {
	c := NewCatalog()
	for _, class := range []models.InstrumentClass{models.ClassStock, models.ClassCrypto, models.ClassForex} {
		if len(c.ByClass(class)) == 0 {
			t.Errorf("expected instruments for class %s", class)
		}
	}
}

func TestRotator_AutoplayAdvances(t *testing.T) {
	items := NewCatalog().All()[:3]
	r := NewRotator(items, 10*time.Millisecond)
	updates := r.Start(context.Background())
	defer r.Stop()

	select {
	case got := <-updates:
		if got.Symbol != items[1].Symbol {
			t.Errorf("expected %s after first tick, got %s", items[1].Symbol, got.Symbol)
		}
	case <-time.After(time.Second):
		t.Fatal("no rotation within 1s")
	}
}

func TestRotator_ManualNavigationCancelsAutoplay(t *testing.T) {
	items := NewCatalog().All()[:3]
	r := NewRotator(items, 10*time.Millisecond)
	updates := r.Start(context.Background())

	r.Next()
	if r.Autoplay() {
		t.Error("expected autoplay off after manual navigation")
	}

	// the channel closes once the timer goroutine sees the cancellation
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				r.Stop()
				return
			}
		case <-deadline:
			t.Fatal("updates channel not closed after manual navigation")
		}
	}
}

func TestRotator_PrevWraps(t *testing.T) {
	items := NewCatalog().All()[:3]
	r := NewRotator(items, time.Hour)

	if got := r.Prev(); got.Symbol != items[2].Symbol {
		t.Errorf("expected wrap to %s, got %s", items[2].Symbol, got.Symbol)
	}
	if got := r.Next(); got.Symbol != items[0].Symbol {
		t.Errorf("expected %s, got %s", items[0].Symbol, got.Symbol)
	}
}

func TestRotator_StopIsIdempotent(t *testing.T) {
	r := NewRotator(NewCatalog().All(), 10*time.Millisecond)
	r.Start(context.Background())
	r.Stop()
	r.Stop()
	if r.Autoplay() {
		t.Error("expected autoplay off after stop")
	}
}
