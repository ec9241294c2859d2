package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"portfoliosim/types"
)

// ledger is the append-only transaction record of a run, with running share
// and cash totals maintained on every entry. All writes happen on the driver
// goroutine; nothing else mutates it.
type ledger struct {
	entries     []types.Transaction
	shareTotals map[string]int64
	cash        decimal.Decimal
}

func newLedger() *ledger {
	return &ledger{shareTotals: make(map[string]int64)}
}

func (l *ledger) record(
	month int,
	date time.Time,
	ticker string,
	typ types.TransactionType,
	cashDelta, price decimal.Decimal,
	shareDelta int64,
) {
	l.cash = l.cash.Add(cashDelta)
	var runningShares int64
	if ticker != "" {
		l.shareTotals[ticker] += shareDelta
		runningShares = l.shareTotals[ticker]
	}
	l.entries = append(l.entries, types.Transaction{
		MonthIndex:         month,
		Date:               date,
		Ticker:             ticker,
		Type:               typ,
		CashDelta:          cashDelta,
		Price:              price,
		ShareDelta:         shareDelta,
		RunningShareTotal:  runningShares,
		RunningCashBalance: l.cash,
	})
}
