package engine

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"portfoliosim/types"
)

// simulator drives the month-by-month loop. Each month's output state
// (holdings, cash sub-balances, ledger) is the next month's input, so the
// loop is strictly sequential and the simulator is the single writer of all
// shared state.
type simulator struct {
	cfg        *SimulationConfig
	resolver   *priceResolver
	rebalancer *rebalancer
	dividends  *dividendModel
	pool       *cashPool
	holdings   map[string]int64
	lg         *ledger
	log        zerolog.Logger

	invested            decimal.Decimal
	missedContributions int
	snapshots           []types.MonthlySnapshot
}

func newSimulator(cfg *SimulationConfig, resolver *priceResolver, log zerolog.Logger) *simulator {
	return &simulator{
		cfg:        cfg,
		resolver:   resolver,
		rebalancer: newRebalancer(cfg, resolver, log),
		dividends:  newDividendModel(cfg.Targets, resolver, cfg.Policy),
		pool:       newCashPool(),
		holdings:   make(map[string]int64),
		lg:         newLedger(),
		log:        log.With().Str("component", "simulation").Logger(),
	}
}

func (s *simulator) run() []types.MonthlySnapshot {
	months := monthSequence(s.cfg.Start, s.cfg.End)
	every := s.cfg.rebalanceEvery()

	var bar *progressbar.ProgressBar
	if s.cfg.Policy.ShowProgress {
		bar = initProgressBar(len(months))
	}

	prevEnd := decimal.Zero
	initialPending := s.cfg.InitialCapital.IsPositive()
	for i, monthStart := range months {
		if bar != nil {
			bar.Add(1)
		}

		// A month where no asset has a nearby observation is skipped
		// entirely: no contribution, no snapshot, never an abort.
		if !s.monthHasData(monthStart) {
			s.missedContributions++
			s.log.Warn().Time("month", monthStart).Msg("no price data, month skipped")
			continue
		}

		// Dividends accrue from the second month on: there is nothing
		// held yet when the very first month opens.
		if i > 0 {
			accrued := s.dividends.accrue(i, monthStart, s.holdings, s.lg)
			if accrued.IsPositive() {
				s.pool.credit(sourceDividendCash, accrued)
			}
		}

		contribution := s.cfg.MonthlyContribution
		newMoney := contribution
		// The initial capital arrives with the first month that actually
		// runs; leading skipped months must not swallow it.
		if initialPending {
			newMoney = newMoney.Add(s.cfg.InitialCapital)
			initialPending = false
		}
		if newMoney.IsPositive() {
			s.pool.credit(sourceOwnContribution, newMoney)
			s.lg.record(i, monthStart, "", types.TransactionCashCredit, newMoney, decimal.Zero, 0)
			s.invested = s.invested.Add(newMoney)
		}

		if i%every == 0 {
			s.rebalancer.rebalance(i, monthStart, s.holdings, s.pool, s.lg)
		}

		carried := s.pool.rollForward()
		if carried.GreaterThan(dustThreshold) {
			s.lg.record(i, monthStart, "", types.TransactionCashReserve, decimal.Zero, decimal.Zero, 0)
		}

		// Valuation happens at month-end prices, a distinct and later
		// resolution than the month-start purchase prices.
		monthEnd := endOfMonth(monthStart, s.cfg.End)
		endValue := s.valueHoldings(monthEnd).Add(s.pool.total())

		var monthReturn decimal.Decimal
		switch {
		case len(s.snapshots) == 0:
			if newMoney.IsPositive() {
				monthReturn = endValue.Sub(newMoney).Div(newMoney)
			}
		case prevEnd.IsPositive():
			monthReturn = endValue.Sub(prevEnd).Sub(contribution).Div(prevEnd)
		}

		s.snapshots = append(s.snapshots, types.MonthlySnapshot{
			Date:         monthEnd,
			TotalValue:   endValue,
			Holdings:     copyHoldings(s.holdings),
			Return:       monthReturn,
			Contribution: contribution,
			Invested:     s.invested,
			CashBalance:  s.pool.total(),
		})
		prevEnd = endValue
	}
	return s.snapshots
}

// monthHasData reports whether at least one target asset has an observation
// within the resolver windows around the month's start.
func (s *simulator) monthHasData(date time.Time) bool {
	for _, t := range s.cfg.Targets {
		if _, err := s.resolver.ResolveNear(t.Ticker, date); err == nil {
			return true
		}
	}
	return false
}

func (s *simulator) valueHoldings(date time.Time) decimal.Decimal {
	value := decimal.Zero
	for _, t := range s.cfg.Targets {
		shares := s.holdings[t.Ticker]
		if shares <= 0 {
			continue
		}
		price, err := s.resolver.Resolve(t.Ticker, date)
		if err != nil {
			continue
		}
		value = value.Add(price.Mul(decimal.NewFromInt(shares)))
	}
	return value
}

// monthSequence returns the first day of every calendar month from start's
// month through end's month, inclusive.
func monthSequence(start, end time.Time) []time.Time {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var months []time.Time
	for !cur.After(last) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// endOfMonth returns the last day of monthStart's month, capped at the
// simulation end date.
func endOfMonth(monthStart, end time.Time) time.Time {
	last := monthStart.AddDate(0, 1, -1)
	if last.After(end) && !end.Before(monthStart) {
		return midnightUTC(end)
	}
	return last
}

func copyHoldings(holdings map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(holdings))
	for ticker, shares := range holdings {
		if shares != 0 {
			out[ticker] = shares
		}
	}
	return out
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Simulating portfolio..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
