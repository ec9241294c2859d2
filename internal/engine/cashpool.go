package engine

import (
	"github.com/shopspring/decimal"

	"portfoliosim/types"
)

type cashSource int

// Declaration order is the draw-down priority: purchases consume last month's
// leftover first, then this month's own contribution, then dividend cash,
// then same-month sale proceeds.
const (
	sourcePreviousLeftover cashSource = iota
	sourceOwnContribution
	sourceDividendCash
	sourceSaleProceeds
	numCashSources
)

var cashSourceNames = [numCashSources]string{
	"previous_leftover",
	"own_contribution",
	"dividend_cash",
	"sale_proceeds",
}

func (s cashSource) String() string { return cashSourceNames[s] }

// buyType maps a funding source to the ledger type of the purchases it funds.
var buyType = [numCashSources]types.TransactionType{
	types.TransactionPreviousCashUse,
	types.TransactionContribution,
	types.TransactionDividendReinvestment,
	types.TransactionRebalanceBuy,
}

// cashPool partitions the month's available cash by funding origin. The
// sub-balances always sum to the total cash of the month; drawDown and
// rollForward move value between them without creating or destroying any.
type cashPool struct {
	balances [numCashSources]decimal.Decimal
}

func newCashPool() *cashPool {
	return &cashPool{}
}

func (p *cashPool) credit(src cashSource, amount decimal.Decimal) {
	p.balances[src] = p.balances[src].Add(amount)
}

func (p *cashPool) balance(src cashSource) decimal.Decimal {
	return p.balances[src]
}

func (p *cashPool) total() decimal.Decimal {
	total := decimal.Zero
	for _, b := range p.balances {
		total = total.Add(b)
	}
	return total
}

type drawPart struct {
	source cashSource
	amount decimal.Decimal
}

// drawDown takes cost from the sub-balances in priority order and returns the
// per-source parts, which sum exactly to the drawn amount. Callers must not
// draw more than total().
func (p *cashPool) drawDown(cost decimal.Decimal) []drawPart {
	parts := make([]drawPart, 0, numCashSources)
	remaining := cost
	for src := sourcePreviousLeftover; src < numCashSources; src++ {
		if !remaining.IsPositive() {
			break
		}
		if !p.balances[src].IsPositive() {
			continue
		}
		take := decimal.Min(p.balances[src], remaining)
		p.balances[src] = p.balances[src].Sub(take)
		remaining = remaining.Sub(take)
		parts = append(parts, drawPart{source: src, amount: take})
	}
	return parts
}

// rollForward folds every sub-balance into previousLeftover for the next
// month and returns the carried amount. Cash left unspent by integer-share
// rounding is carried here, never lost.
func (p *cashPool) rollForward() decimal.Decimal {
	carried := p.total()
	p.balances = [numCashSources]decimal.Decimal{}
	p.balances[sourcePreviousLeftover] = carried
	return carried
}
