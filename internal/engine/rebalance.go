package engine

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"portfoliosim/types"
)

// rebalancer moves integer share counts toward the target allocation.
// Holdings and the cash pool are mutated in place; every cash movement is
// attributed to its funding source on the ledger.
type rebalancer struct {
	targets  []types.AllocationTarget
	resolver *priceResolver
	minSale  decimal.Decimal
	log      zerolog.Logger
}

func newRebalancer(cfg *SimulationConfig, resolver *priceResolver, log zerolog.Logger) *rebalancer {
	return &rebalancer{
		targets:  cfg.Targets,
		resolver: resolver,
		minSale:  cfg.Policy.MinSaleValue,
		log:      log.With().Str("component", "rebalance").Logger(),
	}
}

type pricedTarget struct {
	ticker   string
	fraction decimal.Decimal
	price    decimal.Decimal
}

func (rb *rebalancer) rebalance(month int, date time.Time, holdings map[string]int64, pool *cashPool, lg *ledger) {
	// Only assets with an observation near this date participate; the
	// weights of the rest scale up proportionally.
	usable := make([]pricedTarget, 0, len(rb.targets))
	fractionSum := decimal.Zero
	for _, t := range rb.targets {
		price, err := rb.resolver.ResolveNear(t.Ticker, date)
		if err != nil {
			continue
		}
		usable = append(usable, pricedTarget{ticker: t.Ticker, fraction: t.Fraction, price: price})
		fractionSum = fractionSum.Add(t.Fraction)
	}
	if len(usable) == 0 || !fractionSum.IsPositive() {
		rb.log.Debug().Time("date", date).Msg("no priced assets, rebalance skipped")
		return
	}

	assetsValue := decimal.Zero
	for _, t := range usable {
		if shares := holdings[t.ticker]; shares > 0 {
			assetsValue = assetsValue.Add(t.price.Mul(decimal.NewFromInt(shares)))
		}
	}
	investable := assetsValue.Add(pool.total())

	// Fractional shares are never purchased: targets always round down.
	targetShares := make(map[string]int64, len(usable))
	for _, t := range usable {
		weight := t.fraction.Div(fractionSum)
		targetShares[t.ticker] = investable.Mul(weight).Div(t.price).IntPart()
	}

	rb.sellPhase(month, date, usable, targetShares, holdings, pool, lg)
	rb.buyPhase(month, date, usable, targetShares, holdings, pool, lg)
}

// sellPhase reduces overweight holdings, deferring reductions whose proceeds
// would fall under the minimum sale value so small drifts don't thrash.
func (rb *rebalancer) sellPhase(
	month int,
	date time.Time,
	usable []pricedTarget,
	targetShares map[string]int64,
	holdings map[string]int64,
	pool *cashPool,
	lg *ledger,
) {
	for _, t := range usable {
		excess := holdings[t.ticker] - targetShares[t.ticker]
		if excess <= 0 {
			continue
		}
		proceeds := t.price.Mul(decimal.NewFromInt(excess))
		if proceeds.LessThan(rb.minSale) {
			continue
		}
		holdings[t.ticker] -= excess
		pool.credit(sourceSaleProceeds, proceeds)
		lg.record(month, date, t.ticker, types.TransactionRebalanceSell, proceeds, t.price, -excess)
	}
}

// buyPhase raises underweight holdings up to what the pool can afford,
// drawing cash from the sub-balances in priority order.
func (rb *rebalancer) buyPhase(
	month int,
	date time.Time,
	usable []pricedTarget,
	targetShares map[string]int64,
	holdings map[string]int64,
	pool *cashPool,
	lg *ledger,
) {
	for _, t := range usable {
		deficit := targetShares[t.ticker] - holdings[t.ticker]
		if deficit <= 0 {
			continue
		}
		affordable := pool.total().Div(t.price).IntPart()
		qty := deficit
		if affordable < qty {
			qty = affordable
		}
		if qty <= 0 {
			// Cash below the cheapest eligible share rolls forward.
			continue
		}
		cost := t.price.Mul(decimal.NewFromInt(qty))
		parts := pool.drawDown(cost)
		holdings[t.ticker] += qty
		recordAttributedBuy(lg, month, date, t.ticker, t.price, qty, cost, parts)
	}
}

// recordAttributedBuy emits one ledger entry per funding source of a single
// purchase. Share counts are split in proportion to each source's cash and
// the largest part absorbs the rounding remainder, so the per-source share
// deltas sum exactly to the purchased quantity.
func recordAttributedBuy(
	lg *ledger,
	month int,
	date time.Time,
	ticker string,
	price decimal.Decimal,
	qty int64,
	cost decimal.Decimal,
	parts []drawPart,
) {
	qtyDec := decimal.NewFromInt(qty)
	shareParts := make([]int64, len(parts))
	largest := 0
	var assigned int64
	for i, part := range parts {
		shareParts[i] = part.amount.Mul(qtyDec).Div(cost).Round(0).IntPart()
		assigned += shareParts[i]
		if part.amount.GreaterThan(parts[largest].amount) {
			largest = i
		}
	}
	shareParts[largest] += qty - assigned

	for i, part := range parts {
		lg.record(month, date, ticker, buyType[part.source], part.amount.Neg(), price, shareParts[i])
	}
}
