package engine

import (
	"testing"
	"time"

	"portfoliosim/types"
)

func testDividendModel(targets []types.AllocationTarget, series map[string][]types.PricePoint) *dividendModel {
	return newDividendModel(targets, testResolver(series), NewPolicyConfig())
}

func TestDividendAccrual_SeasonalCalendar(t *testing.T) {
	targets := singleTarget("VWCE", "1", "0.12")
	series := map[string][]types.PricePoint{
		"VWCE": constantMonthlySeries("2023-01-01", 12, "100"),
	}
	model := testDividendModel(targets, series)
	holdings := map[string]int64{"VWCE": 100}

	// 100 shares × price 100 × yield 0.12 × month factor.
	wantByMonth := map[time.Month]string{
		time.March:   "399.6",
		time.August:  "399.6",
		time.October: "400.8",
	}

	for month := time.January; month <= time.December; month++ {
		lg := newLedger()
		date := time.Date(2023, month, 1, 0, 0, 0, 0, time.UTC)
		total := model.accrue(int(month)-1, date, holdings, lg)

		want, payout := wantByMonth[month]
		if !payout {
			if !total.IsZero() || len(lg.entries) != 0 {
				t.Errorf("%s: accrued %s with %d entries, want zero", month, total, len(lg.entries))
			}
			continue
		}
		if !total.Equal(dec(want)) {
			t.Errorf("%s: accrued %s, want %s", month, total, want)
		}
		if len(lg.entries) != 1 || lg.entries[0].Type != types.TransactionDividendPayment {
			t.Fatalf("%s: expected one DIVIDEND_PAYMENT entry, got %+v", month, lg.entries)
		}
		if !lg.entries[0].CashDelta.Equal(dec(want)) {
			t.Errorf("%s: entry cash = %s, want %s", month, lg.entries[0].CashDelta, want)
		}
	}
}

func TestDividendAccrual_SkipsZeroYieldAndEmptyHoldings(t *testing.T) {
	targets := []types.AllocationTarget{
		{Ticker: "A", Fraction: dec("0.5"), AverageAnnualDivYield: dec("0")},
		{Ticker: "B", Fraction: dec("0.5"), AverageAnnualDivYield: dec("0.03")},
	}
	series := map[string][]types.PricePoint{
		"A": {point("2023-03-01", "100")},
		"B": {point("2023-03-01", "100")},
	}
	model := testDividendModel(targets, series)

	lg := newLedger()
	total := model.accrue(2, day("2023-03-01"), map[string]int64{"A": 50, "B": 0}, lg)

	if !total.IsZero() || len(lg.entries) != 0 {
		t.Errorf("accrued %s with %d entries, want nothing", total, len(lg.entries))
	}
}

func TestDividendAccrual_SuppressesDust(t *testing.T) {
	targets := singleTarget("A", "1", "0.0001")
	series := map[string][]types.PricePoint{
		"A": {point("2023-03-01", "1")},
	}
	model := testDividendModel(targets, series)

	lg := newLedger()
	total := model.accrue(2, day("2023-03-01"), map[string]int64{"A": 1}, lg)

	if !total.IsZero() {
		t.Errorf("accrued %s, want 0 (amount under dust threshold)", total)
	}
	if len(lg.entries) != 0 {
		t.Errorf("ledger entries = %d, want 0", len(lg.entries))
	}
}
