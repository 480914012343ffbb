package models

// MarketIndex is a headline index quote.
type MarketIndex struct {
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percentChange"`
}

// TrendingStock is a trending equity quote.
type TrendingStock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percentChange"`
}

// NewsItem is a market headline.
type NewsItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
}

// MarketOverview summarises the two headline indices.
type MarketOverview struct {
	Nifty     float64 `json:"nifty"`
	BankNifty float64 `json:"bankNifty"`
}

// HoldingValue is a valued position in the sample portfolio.
type HoldingValue struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// PortfolioSummary is the sample dashboard portfolio.
type PortfolioSummary struct {
	Value            float64        `json:"value"`
	DayChange        float64        `json:"dayChange"`
	DayChangePercent float64        `json:"dayChangePercent"`
	ReturnValue      float64        `json:"returnValue"`
	ReturnPercent    float64        `json:"returnPercent"`
	Holdings         []HoldingValue `json:"holdings"`
}

// WatchlistItem is a watched equity quote.
type WatchlistItem struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percentChange"`
}

// Recommendation is an analyst call.
type Recommendation struct {
	Symbol string `json:"symbol"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// SectorPerformance is a sector's period return in percent.
type SectorPerformance struct {
	Sector        string  `json:"sector"`
	PercentChange float64 `json:"percentChange"`
}

// InstrumentClass groups sample instruments.
type InstrumentClass string

const (
	ClassStock  InstrumentClass = "stock"
	ClassCrypto InstrumentClass = "crypto"
	ClassForex  InstrumentClass = "forex"
)

// Instrument is a searchable sample instrument with an optional analyst view.
type Instrument struct {
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name"`
	Class          InstrumentClass `json:"class"`
	Price          float64         `json:"price"`
	Change         float64         `json:"change"`
	PercentChange  float64         `json:"percentChange"`
	Recommendation string          `json:"recommendation,omitempty"`
	Confidence     int             `json:"confidence,omitempty"`
	Analysis       string          `json:"analysis,omitempty"`
}
