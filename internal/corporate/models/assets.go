package models

// Metric is one row of the asset metrics table.
type Metric struct {
	MarketCap   *float64 `json:"market_cap"`
	Revenue     *float64 `json:"revenue"`
	LastUpdated *string  `json:"last_updated"`
}

// MetricsTable maps ticker symbol to its metrics.
type MetricsTable map[string]Metric

// AssetRecord is what /api/real-assets lists.
type AssetRecord struct {
	Symbol      string   `json:"symbol"`
	MarketCap   *float64 `json:"market_cap"`
	Revenue     *float64 `json:"revenue"`
	LastUpdated *string  `json:"last_updated"`
}

// CompanyMatch is a ticker lookup result.
type CompanyMatch struct {
	Company
	Sector string `json:"sector"`
}
