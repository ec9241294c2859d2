package types

import "github.com/shopspring/decimal"

// AllocationTarget describes one asset of the configured portfolio: its
// target weight in (0,1] and the trailing average annual dividend yield used
// by the accrual model. Weights of the assets usable in a given month are
// renormalized to sum to 1.
type AllocationTarget struct {
	Ticker                string          `json:"ticker"`
	Fraction              decimal.Decimal `json:"fraction"`
	AverageAnnualDivYield decimal.Decimal `json:"average_annual_dividend_yield"`
}

type RebalanceFrequency string

const (
	RebalanceMonthly   RebalanceFrequency = "MONTHLY"
	RebalanceQuarterly RebalanceFrequency = "QUARTERLY"
	RebalanceYearly    RebalanceFrequency = "YEARLY"
)

// MonthInterval is the month-index stride between rebalances.
var MonthInterval = map[RebalanceFrequency]int{
	RebalanceMonthly:   1,
	RebalanceQuarterly: 3,
	RebalanceYearly:    12,
}
