package engine

import (
	"math"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"portfoliosim/types"
)

// Report is the derived metrics summary of a finished run.
type Report struct {
	Months              int
	Invested            decimal.Decimal
	FinalValue          decimal.Decimal
	TotalReturn         decimal.Decimal
	AnnualizedReturn    decimal.Decimal
	Volatility          decimal.Decimal
	SharpeRatio         *decimal.Decimal
	MaxDrawdown         decimal.Decimal
	MissedContributions int
	PerAsset            []types.AssetPerformance
}

func generateReport(
	snapshots []types.MonthlySnapshot,
	entries []types.Transaction,
	resolver *priceResolver,
	riskFree decimal.Decimal,
	missedContributions int,
) *Report {
	report := &Report{
		Months:              len(snapshots),
		MissedContributions: missedContributions,
	}
	if len(snapshots) == 0 {
		return report
	}

	final := snapshots[len(snapshots)-1]
	report.FinalValue = final.TotalValue
	report.Invested = investedCapital(entries)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		report.TotalReturn, report.AnnualizedReturn = calcReturns(report.Invested, final.TotalValue, len(snapshots), &wg)
	}()
	go func() {
		report.Volatility = calcVolatility(snapshots, &wg)
	}()
	go func() {
		report.MaxDrawdown = calcMaxDrawdown(snapshots, &wg)
	}()
	go func() {
		report.PerAsset = calcAssetPerformance(entries, final, resolver, &wg)
	}()
	wg.Wait()

	report.SharpeRatio = calcSharpeRatio(report.AnnualizedReturn, report.Volatility, riskFree)
	return report
}

// investedCapital reconstructs the external money paid in: the sum of the
// CASH_CREDIT entries. Purchases recycle money that arrived through a credit,
// so counting them instead would miss contribution cash that sat unspent for
// a month and came back later as PREVIOUS_CASH_USE.
func investedCapital(entries []types.Transaction) decimal.Decimal {
	invested := decimal.Zero
	for _, tx := range entries {
		if tx.Type == types.TransactionCashCredit {
			invested = invested.Add(tx.CashDelta)
		}
	}
	return invested
}

func calcReturns(invested, final decimal.Decimal, months int, wg *sync.WaitGroup) (decimal.Decimal, decimal.Decimal) {
	defer wg.Done()
	if !invested.IsPositive() || months == 0 {
		return decimal.Zero, decimal.Zero
	}

	totalReturn := final.Sub(invested).Div(invested)

	ratio := final.Div(invested).InexactFloat64()
	if ratio <= 0 {
		return totalReturn, decimal.Zero
	}
	annualized := math.Pow(ratio, 12.0/float64(months)) - 1.0
	if math.IsNaN(annualized) || math.IsInf(annualized, 0) {
		return totalReturn, decimal.Zero
	}
	return totalReturn, decimal.NewFromFloat(annualized)
}

// calcVolatility annualizes the sample standard deviation of the monthly
// return series.
func calcVolatility(snapshots []types.MonthlySnapshot, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if len(snapshots) < 2 {
		return decimal.Zero
	}
	returns := make([]float64, 0, len(snapshots))
	for _, snap := range snapshots {
		returns = append(returns, snap.Return.InexactFloat64())
	}
	monthlyStd := stat.StdDev(returns, nil)
	if math.IsNaN(monthlyStd) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(monthlyStd * math.Sqrt(12.0))
}

// calcSharpeRatio returns nil when the ratio is undefined: zero volatility or
// a non-finite result.
func calcSharpeRatio(annualized, volatility, riskFree decimal.Decimal) *decimal.Decimal {
	if volatility.IsZero() {
		return nil
	}
	sharpe := annualized.Sub(riskFree).Div(volatility)
	f := sharpe.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &sharpe
}

func calcMaxDrawdown(snapshots []types.MonthlySnapshot, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	peak := decimal.Zero
	maxDD := decimal.Zero
	for _, snap := range snapshots {
		if snap.TotalValue.GreaterThan(peak) {
			peak = snap.TotalValue
		}
		if peak.IsPositive() {
			dd := peak.Sub(snap.TotalValue).Div(peak)
			if dd.GreaterThan(maxDD) {
				maxDD = dd
			}
		}
	}
	return maxDD
}

type assetFlows struct {
	shares    int64
	cost      decimal.Decimal
	realized  decimal.Decimal
	dividends decimal.Decimal
}

// calcAssetPerformance aggregates contribution, reinvestment and rebalance
// flows per ticker. Partial sales scale the cost basis by the surviving-share
// fraction; the realized profit counts toward the asset's return as value
// already paid out.
func calcAssetPerformance(
	entries []types.Transaction,
	final types.MonthlySnapshot,
	resolver *priceResolver,
	wg *sync.WaitGroup,
) []types.AssetPerformance {
	defer wg.Done()

	flows := make(map[string]*assetFlows)
	get := func(ticker string) *assetFlows {
		f := flows[ticker]
		if f == nil {
			f = &assetFlows{}
			flows[ticker] = f
		}
		return f
	}

	for _, tx := range entries {
		if tx.Ticker == "" {
			continue
		}
		switch tx.Type {
		case types.TransactionContribution,
			types.TransactionDividendReinvestment,
			types.TransactionPreviousCashUse,
			types.TransactionRebalanceBuy:
			f := get(tx.Ticker)
			f.shares += tx.ShareDelta
			f.cost = f.cost.Add(tx.CashDelta.Abs())
		case types.TransactionRebalanceSell:
			f := get(tx.Ticker)
			held := f.shares
			sold := -tx.ShareDelta
			if held <= 0 || sold <= 0 {
				continue
			}
			soldFraction := decimal.NewFromInt(sold).Div(decimal.NewFromInt(held))
			removed := f.cost.Mul(soldFraction)
			f.realized = f.realized.Add(tx.CashDelta.Sub(removed))
			f.cost = f.cost.Sub(removed)
			f.shares -= sold
		case types.TransactionDividendPayment:
			f := get(tx.Ticker)
			f.dividends = f.dividends.Add(tx.CashDelta)
		}
	}

	tickers := make([]string, 0, len(flows))
	for ticker := range flows {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	out := make([]types.AssetPerformance, 0, len(tickers))
	for _, ticker := range tickers {
		f := flows[ticker]
		perf := types.AssetPerformance{
			Ticker:        ticker,
			Shares:        f.shares,
			CostBasis:     f.cost,
			RealizedGain:  f.realized,
			DividendsPaid: f.dividends,
		}
		if f.shares > 0 {
			if price, err := resolver.Resolve(ticker, final.Date); err == nil {
				perf.CurrentValue = price.Mul(decimal.NewFromInt(f.shares))
			}
			perf.AvgCost = f.cost.Sub(f.realized).Div(decimal.NewFromInt(f.shares))
		}
		if f.cost.IsPositive() {
			perf.Return = perf.CurrentValue.Add(f.realized).Sub(f.cost).Div(f.cost)
		}
		out = append(out, perf)
	}
	return out
}
