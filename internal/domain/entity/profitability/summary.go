package profitability

import "github.com/shopspring/decimal"

// Summary is the outcome of one simulated monthly-purchase run.
type Summary struct {
	// GainPercent is the change between the first and last basket value.
	// Zero with GainDefined=false when the first value is zero.
	GainPercent         decimal.Decimal `json:"gain_percent"`
	GainDefined         bool            `json:"gain_defined"`
	TotalReplenishments decimal.Decimal `json:"total_replenishments"`
	TotalCollected      decimal.Decimal `json:"total_collected"`
	Purchases           int             `json:"purchases"`
}
