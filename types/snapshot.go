package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlySnapshot is one month's recorded state of the simulated portfolio.
// TotalValue is holdings valued at month-end prices plus the cash balance.
// The snapshots of a run form the chronological evolution series.
type MonthlySnapshot struct {
	Date         time.Time        `json:"date"`
	TotalValue   decimal.Decimal  `json:"total_value"`
	Holdings     map[string]int64 `json:"holdings"`
	Return       decimal.Decimal  `json:"return"`
	Contribution decimal.Decimal  `json:"contribution"`
	Invested     decimal.Decimal  `json:"invested"`
	CashBalance  decimal.Decimal  `json:"cash_balance"`
}
