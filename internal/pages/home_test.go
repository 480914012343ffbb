package pages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/portfi/portfi-portal/internal/market"
)

func TestSearch(t *testing.T) {
	catalog := market.NewCatalog()

	inst, err := Search(catalog, " infy ")
	if err != nil || inst.Symbol != "INFY" {
		t.Errorf("expected INFY, got %+v, %v", inst, err)
	}

	_, err = Search(catalog, "ZZZZ")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "query" || verr.Message != MsgNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestBuildHome(t *testing.T) {
	view, err := BuildHome(context.Background(), market.NewProvider(), market.NewCatalog(), 3, "btc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.News) != 3 || len(view.Indices) == 0 {
		t.Errorf("unexpected view %+v", view)
	}
	if view.Found == nil || view.Found.Symbol != "BTC" {
		t.Errorf("expected BTC search hit, got %+v", view.Found)
	}
	if !strings.Contains(string(view.IndexChart), `"type":"bar"`) {
		t.Errorf("unexpected chart %s", view.IndexChart)
	}

	view, _ = BuildHome(context.Background(), market.NewProvider(), market.NewCatalog(), 0, "nothing")
	if view.Error != MsgNotFound || view.Found != nil {
		t.Errorf("expected not found error, got %q", view.Error)
	}
}

func TestBuildDashboard(t *testing.T) {
	view, err := BuildDashboard(context.Background(), market.NewProvider())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Portfolio.Value != 120000 || len(view.Watchlist) == 0 {
		t.Errorf("unexpected view %+v", view)
	}
	if !strings.Contains(string(view.AllocationChart), `"type":"pie"`) {
		t.Errorf("unexpected allocation chart %s", view.AllocationChart)
	}
}
