package types

import "github.com/shopspring/decimal"

// AssetPerformance aggregates all ledger flows of a single ticker.
//
// CostBasis is the remaining invested cost after partial sales (scaled by the
// surviving-share fraction); RealizedGain is the profit locked in by those
// sales and counts toward the asset's return as already-paid value. AvgCost
// is the effective per-share cost with realized gains credited back.
type AssetPerformance struct {
	Ticker        string          `json:"ticker"`
	Shares        int64           `json:"shares"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	AvgCost       decimal.Decimal `json:"avg_cost"`
	RealizedGain  decimal.Decimal `json:"realized_gain"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	Return        decimal.Decimal `json:"return"`
	DividendsPaid decimal.Decimal `json:"dividends_paid"`
}
