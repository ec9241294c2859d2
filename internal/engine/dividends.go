package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"portfoliosim/types"
)

// dividendModel accrues seasonal dividend cash: in a payout month each held
// asset earns price × trailing-average-annual-yield × the month's calendar
// factor, per share. Every other month accrues zero.
type dividendModel struct {
	calendar map[time.Month]decimal.Decimal
	yields   map[string]decimal.Decimal
	resolver *priceResolver
}

func newDividendModel(targets []types.AllocationTarget, resolver *priceResolver, policy PolicyConfig) *dividendModel {
	yields := make(map[string]decimal.Decimal, len(targets))
	for _, t := range targets {
		yields[t.Ticker] = t.AverageAnnualDivYield
	}
	return &dividendModel{
		calendar: policy.PayoutCalendar,
		yields:   yields,
		resolver: resolver,
	}
}

// accrue records one DIVIDEND_PAYMENT per holding earning more than the dust
// threshold this month and returns the total cash accrued. Sub-threshold
// amounts are dropped entirely so the ledger and the pool stay consistent.
func (m *dividendModel) accrue(month int, date time.Time, holdings map[string]int64, lg *ledger) decimal.Decimal {
	factor, ok := m.calendar[date.Month()]
	if !ok {
		return decimal.Zero
	}

	tickers := make([]string, 0, len(holdings))
	for ticker := range holdings {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	total := decimal.Zero
	for _, ticker := range tickers {
		shares := holdings[ticker]
		if shares <= 0 {
			continue
		}
		yield := m.yields[ticker]
		if !yield.IsPositive() {
			continue
		}
		price, err := m.resolver.Resolve(ticker, date)
		if err != nil {
			continue
		}
		perShare := price.Mul(yield).Mul(factor)
		amount := perShare.Mul(decimal.NewFromInt(shares))
		if !amount.GreaterThan(dustThreshold) {
			continue
		}
		lg.record(month, date, ticker, types.TransactionDividendPayment, amount, price, 0)
		total = total.Add(amount)
	}
	return total
}
