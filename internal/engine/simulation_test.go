package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliosim/types"
)

func runSimulation(cfg *SimulationConfig, series map[string][]types.PricePoint) *simulator {
	resolver := newPriceResolver(series, cfg.Policy)
	sim := newSimulator(cfg, resolver, zerolog.Nop())
	sim.run()
	return sim
}

func TestSimulation_SteadyAccumulation(t *testing.T) {
	// Single asset at a constant price of 10, 100 per month, no dividends:
	// ten shares accumulate every month and every return is zero.
	cfg := NewSimulationConfig(
		singleTarget("VWCE", "1", "0"),
		day("2023-01-01"), day("2023-12-31"),
		decimal.Zero, dec("100"),
		types.RebalanceMonthly,
	)
	series := map[string][]types.PricePoint{
		"VWCE": constantMonthlySeries("2023-01-01", 14, "10"),
	}

	sim := runSimulation(cfg, series)

	require.Len(t, sim.snapshots, 12)
	for i, snap := range sim.snapshots {
		assert.Equal(t, int64((i+1)*10), snap.Holdings["VWCE"], "month %d holdings", i)
		assert.True(t, snap.Return.IsZero(), "month %d return = %s", i, snap.Return)
		assert.True(t, snap.CashBalance.IsZero(), "month %d cash = %s", i, snap.CashBalance)
		assert.True(t, snap.Invested.Equal(decimal.NewFromInt(int64((i+1)*100))), "month %d invested = %s", i, snap.Invested)
	}
	for _, tx := range sim.lg.entries {
		assert.NotEqual(t, types.TransactionDividendPayment, tx.Type)
	}
	assert.True(t, investedCapital(sim.lg.entries).Equal(dec("1200")))
}

func TestSimulation_DividendAccrualAndReinvestment(t *testing.T) {
	cfg := NewSimulationConfig(
		singleTarget("VWCE", "1", "0.12"),
		day("2023-01-01"), day("2023-12-31"),
		dec("10000"), decimal.Zero,
		types.RebalanceMonthly,
	)
	series := map[string][]types.PricePoint{
		"VWCE": constantMonthlySeries("2023-01-01", 14, "100"),
	}

	sim := runSimulation(cfg, series)
	require.Len(t, sim.snapshots, 12)

	payoutMonths := map[time.Month]bool{}
	var sawReinvestment, sawPreviousCashUse bool
	for _, tx := range sim.lg.entries {
		switch tx.Type {
		case types.TransactionDividendPayment:
			payoutMonths[tx.Date.Month()] = true
		case types.TransactionDividendReinvestment:
			sawReinvestment = true
		case types.TransactionPreviousCashUse:
			sawPreviousCashUse = true
		}
	}
	assert.Equal(t, map[time.Month]bool{time.March: true, time.August: true, time.October: true}, payoutMonths)
	assert.True(t, sawReinvestment, "dividend cash should fund same-month purchases")
	assert.True(t, sawPreviousCashUse, "carried leftover should fund later purchases")

	// March: 100 shares held × price 100 × 0.12 × 0.333.
	var march decimal.Decimal
	for _, tx := range sim.lg.entries {
		if tx.Type == types.TransactionDividendPayment && tx.Date.Month() == time.March {
			march = tx.CashDelta
		}
	}
	assert.True(t, march.Equal(dec("399.6")), "march dividend = %s", march)

	// Own capital is the initial 10000 only: reinvested dividends and
	// recycled leftovers never inflate it.
	assert.True(t, investedCapital(sim.lg.entries).Equal(dec("10000")))
}

func TestSimulation_LeftoverContributionStaysCounted(t *testing.T) {
	// Price 30 never divides the 100 contribution: every month leaves cash
	// behind that funds later purchases as PREVIOUS_CASH_USE. Paid-in capital
	// must still be the full 300 and the flat-price return exactly zero.
	cfg := NewSimulationConfig(
		singleTarget("VWCE", "1", "0"),
		day("2023-01-01"), day("2023-03-31"),
		decimal.Zero, dec("100"),
		types.RebalanceMonthly,
	)
	series := map[string][]types.PricePoint{
		"VWCE": constantMonthlySeries("2023-01-01", 5, "30"),
	}

	sim := runSimulation(cfg, series)
	require.Len(t, sim.snapshots, 3)

	final := sim.snapshots[len(sim.snapshots)-1]
	assert.True(t, final.Invested.Equal(dec("300")), "invested = %s", final.Invested)
	assert.True(t, investedCapital(sim.lg.entries).Equal(final.Invested),
		"ledger invested %s != snapshot invested %s", investedCapital(sim.lg.entries), final.Invested)

	var sawPreviousCashUse bool
	for _, tx := range sim.lg.entries {
		if tx.Type == types.TransactionPreviousCashUse {
			sawPreviousCashUse = true
		}
		// A reserve marker moves no cash; its running balance is the
		// carried amount.
		if tx.Type == types.TransactionCashReserve {
			assert.True(t, tx.CashDelta.IsZero())
			assert.True(t, tx.RunningCashBalance.IsPositive())
		}
	}
	assert.True(t, sawPreviousCashUse, "leftover cash should fund later purchases")

	report := generateReport(sim.snapshots, sim.lg.entries, testResolver(series), DefaultRiskFreeRate, 0)
	assert.True(t, report.Invested.Equal(dec("300")), "report invested = %s", report.Invested)
	assert.True(t, report.TotalReturn.IsZero(), "total return = %s", report.TotalReturn)
}

func TestSimulation_CashConservation(t *testing.T) {
	cfg := NewSimulationConfig(
		[]types.AllocationTarget{
			{Ticker: "A", Fraction: dec("0.7"), AverageAnnualDivYield: dec("0.02")},
			{Ticker: "B", Fraction: dec("0.3"), AverageAnnualDivYield: dec("0.04")},
		},
		day("2022-01-01"), day("2023-12-31"),
		dec("5000"), dec("250"),
		types.RebalanceQuarterly,
	)
	series := map[string][]types.PricePoint{
		"A": constantMonthlySeries("2022-01-01", 26, "83.17"),
		"B": constantMonthlySeries("2022-01-01", 26, "27.42"),
	}

	sim := runSimulation(cfg, series)
	require.NotEmpty(t, sim.snapshots)

	// The ledger's running cash must track the pool exactly: every pool
	// credit and draw-down has a mirroring entry.
	last := sim.lg.entries[len(sim.lg.entries)-1]
	finalSnap := sim.snapshots[len(sim.snapshots)-1]
	assert.True(t, last.RunningCashBalance.Equal(finalSnap.CashBalance),
		"ledger cash %s != snapshot cash %s", last.RunningCashBalance, finalSnap.CashBalance)

	// Running share totals never go negative at any point in the ledger.
	for _, tx := range sim.lg.entries {
		assert.GreaterOrEqual(t, tx.RunningShareTotal, int64(0), "tx %+v", tx)
	}
	for _, snap := range sim.snapshots {
		for ticker, shares := range snap.Holdings {
			assert.GreaterOrEqual(t, shares, int64(0), "%s in %s", ticker, snap.Date)
		}
	}
}

func TestSimulation_MissingLeadingDataSkipsMonth(t *testing.T) {
	cfg := NewSimulationConfig(
		singleTarget("VWCE", "1", "0"),
		day("2023-01-01"), day("2023-12-31"),
		decimal.Zero, dec("100"),
		types.RebalanceMonthly,
	)
	// Data begins in March: January is beyond the 45-day lookahead and is
	// skipped; February already sees the March observation.
	series := map[string][]types.PricePoint{
		"VWCE": constantMonthlySeries("2023-03-01", 11, "10"),
	}

	sim := runSimulation(cfg, series)

	assert.Equal(t, 1, sim.missedContributions)
	require.Len(t, sim.snapshots, 11)
	assert.True(t, sim.snapshots[0].Date.Month() == time.February)
}

func TestSimulation_InitialCapitalSurvivesSkippedFirstMonth(t *testing.T) {
	cfg := NewSimulationConfig(
		singleTarget("VWCE", "1", "0"),
		day("2023-01-01"), day("2023-12-31"),
		dec("1000"), dec("100"),
		types.RebalanceMonthly,
	)
	// January has no data and is skipped; the initial capital must arrive
	// with February, the first month that runs.
	series := map[string][]types.PricePoint{
		"VWCE": constantMonthlySeries("2023-03-01", 11, "10"),
	}

	sim := runSimulation(cfg, series)
	require.Len(t, sim.snapshots, 11)
	assert.Equal(t, 1, sim.missedContributions)

	assert.True(t, sim.snapshots[0].Invested.Equal(dec("1100")),
		"first invested = %s", sim.snapshots[0].Invested)

	var firstCredit decimal.Decimal
	for _, tx := range sim.lg.entries {
		if tx.Type == types.TransactionCashCredit {
			firstCredit = tx.CashDelta
			break
		}
	}
	assert.True(t, firstCredit.Equal(dec("1100")), "first credit = %s", firstCredit)
	assert.True(t, investedCapital(sim.lg.entries).Equal(dec("2100")))
}

func TestSimulation_AssetWithoutDataNeverTrades(t *testing.T) {
	cfg := NewSimulationConfig(
		[]types.AllocationTarget{
			{Ticker: "A", Fraction: dec("0.5")},
			{Ticker: "GHOST", Fraction: dec("0.5")},
		},
		day("2023-01-01"), day("2023-06-30"),
		dec("1000"), dec("100"),
		types.RebalanceMonthly,
	)
	series := map[string][]types.PricePoint{
		"A": constantMonthlySeries("2023-01-01", 8, "10"),
	}

	sim := runSimulation(cfg, series)

	for _, tx := range sim.lg.entries {
		assert.NotEqual(t, "GHOST", tx.Ticker)
	}
	for _, snap := range sim.snapshots {
		_, held := snap.Holdings["GHOST"]
		assert.False(t, held)
	}
}

func TestMonthSequence(t *testing.T) {
	months := monthSequence(day("2023-11-15"), day("2024-02-02"))
	require.Len(t, months, 4)
	assert.Equal(t, day("2023-11-01"), months[0])
	assert.Equal(t, day("2024-02-01"), months[3])
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, day("2023-02-28"), endOfMonth(day("2023-02-01"), day("2023-12-31")))
	assert.Equal(t, day("2024-02-29"), endOfMonth(day("2024-02-01"), day("2024-12-31")))
	// Capped at the simulation end date.
	assert.Equal(t, day("2023-06-15"), endOfMonth(day("2023-06-01"), day("2023-06-15")))
}
