package market

import (
	"strings"

	"github.com/portfi/portfi-portal/internal/models"
)

// Catalog is the in-memory set of searchable sample instruments.
type Catalog struct {
	items []models.Instrument
}

// NewCatalog returns the default sample catalog.
func NewCatalog() *Catalog {
	return &Catalog{items: []models.Instrument{
		{Symbol: "INFY", Name: "Infosys", Class: models.ClassStock, Price: 1450.25, Change: 15.2, PercentChange: 1.06,
			Recommendation: "Buy", Confidence: 78, Analysis: "Deal wins in financial services support steady revenue growth."},
		{Symbol: "TCS", Name: "Tata Consultancy", Class: models.ClassStock, Price: 3150.0, Change: 50.0, PercentChange: 1.6,
			Recommendation: "Hold", Confidence: 64, Analysis: "Margins stable; valuation already prices in the next two quarters."},
		{Symbol: "RELIANCE", Name: "Reliance Industries", Class: models.ClassStock, Price: 2505.10, Change: -25.3, PercentChange: -1.00,
			Recommendation: "Hold", Confidence: 58, Analysis: "Refining weakness offset by retail and telecom momentum."},
		{Symbol: "HDFCBANK", Name: "HDFC Bank", Class: models.ClassStock, Price: 1625.50, Change: 12.5, PercentChange: 0.78,
			Recommendation: "Buy", Confidence: 71, Analysis: "Deposit growth recovering after the merger integration."},
		{Symbol: "ITC", Name: "ITC", Class: models.ClassStock, Price: 432.80, Change: 3.1, PercentChange: 0.72,
			Recommendation: "Buy", Confidence: 69, Analysis: "FMCG expansion and hotel demerger unlock value."},
		{Symbol: "BTC", Name: "Bitcoin", Class: models.ClassCrypto, Price: 5432100.00, Change: -48200.00, PercentChange: -0.88,
			Recommendation: "Hold", Confidence: 45, Analysis: "High volatility; size positions conservatively."},
		{Symbol: "ETH", Name: "Ethereum", Class: models.ClassCrypto, Price: 265400.00, Change: 3120.00, PercentChange: 1.19,
			Recommendation: "Hold", Confidence: 48, Analysis: "Network activity steady; regulatory outlook unclear."},
		{Symbol: "USDINR", Name: "US Dollar / Indian Rupee", Class: models.ClassForex, Price: 83.21, Change: 0.05, PercentChange: 0.06,
			Recommendation: "Neutral", Confidence: 55, Analysis: "Range-bound with central bank intervention near highs."},
		{Symbol: "EURINR", Name: "Euro / Indian Rupee", Class: models.ClassForex, Price: 90.14, Change: -0.22, PercentChange: -0.24,
			Recommendation: "Neutral", Confidence: 52, Analysis: "Tracks EUR/USD; watch ECB guidance."},
	}}
}

// All returns every instrument.
func (c *Catalog) All() []models.Instrument {
	out := make([]models.Instrument, len(c.items))
	copy(out, c.items)
	return out
}

// ByClass returns the instruments of one class.
func (c *Catalog) ByClass(class models.InstrumentClass) []models.Instrument {
	var out []models.Instrument
	for _, it := range c.items {
		if it.Class == class {
			out = append(out, it)
		}
	}
	return out
}

// Lookup finds an instrument by symbol or exact name, case-insensitively.
func (c *Catalog) Lookup(query string) (models.Instrument, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return models.Instrument{}, false
	}
	for _, it := range c.items {
		if strings.EqualFold(it.Symbol, q) || strings.EqualFold(it.Name, q) {
			return it, true
		}
	}
	return models.Instrument{}, false
}
