package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"portfoliosim/types"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func point(date, price string) types.PricePoint {
	return types.PricePoint{Date: day(date), Close: dec(price), AdjustedClose: dec(price)}
}

// constantMonthlySeries returns one observation on the first of every month,
// all at the same price.
func constantMonthlySeries(firstMonth string, months int, price string) []types.PricePoint {
	cur := day(firstMonth)
	series := make([]types.PricePoint, 0, months)
	for i := 0; i < months; i++ {
		series = append(series, types.PricePoint{Date: cur, Close: dec(price), AdjustedClose: dec(price)})
		cur = cur.AddDate(0, 1, 0)
	}
	return series
}

func testResolver(series map[string][]types.PricePoint) *priceResolver {
	return newPriceResolver(series, NewPolicyConfig())
}

func singleTarget(ticker, fraction, yield string) []types.AllocationTarget {
	return []types.AllocationTarget{{
		Ticker:                ticker,
		Fraction:              dec(fraction),
		AverageAnnualDivYield: dec(yield),
	}}
}
