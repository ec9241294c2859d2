package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"portfoliosim/types"
)

// dataStore is the price-feed collaborator. The engine performs no I/O of its
// own beyond this seam; series arrive in memory before the run starts.
type dataStore interface {
	GetPriceSeries(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error)
	GetCoverage(ctx context.Context, ticker string) (types.Coverage, error)
}

type Engine struct {
	store dataStore
	log   zerolog.Logger
}

func NewEngine(store dataStore, log zerolog.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// SimulationResult bundles everything a run produces: the evolution series,
// the full ledger, the derived metrics and any non-fatal coverage issues.
type SimulationResult struct {
	ID                  uuid.UUID
	Evolution           []types.MonthlySnapshot
	Ledger              []types.Transaction
	Report              *Report
	CoverageIssues      []CoverageIssue
	MissedContributions int
}

// Run prefetches the price series, validates coverage and drives the
// simulation. Only pre-flight data insufficiency fails a run; everything
// after that degrades gracefully.
func (e *Engine) Run(ctx context.Context, cfg *SimulationConfig) (*SimulationResult, error) {
	series, err := e.prefetch(ctx, cfg)
	if err != nil {
		return nil, err
	}

	issues, err := validateCoverage(cfg, series)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		evt := e.log.Warn().Str("ticker", issue.Ticker).Str("reason", issue.Reason)
		if cov, covErr := e.store.GetCoverage(ctx, issue.Ticker); covErr == nil && cov.Observations > 0 {
			evt = evt.Time("first", cov.FirstDate).Time("last", cov.LastDate).Int("observations", cov.Observations)
		}
		evt.Msg("coverage issue")
	}

	resolver := newPriceResolver(series, cfg.Policy)
	sim := newSimulator(cfg, resolver, e.log)
	snapshots := sim.run()
	report := generateReport(snapshots, sim.lg.entries, resolver, cfg.Policy.RiskFreeRate, sim.missedContributions)

	return &SimulationResult{
		ID:                  uuid.New(),
		Evolution:           snapshots,
		Ledger:              sim.lg.entries,
		Report:              report,
		CoverageIssues:      issues,
		MissedContributions: sim.missedContributions,
	}, nil
}

// prefetch loads every ticker's series concurrently before the sequential
// run. The fetch window is padded by the resolver windows so edge months can
// still resolve. A ticker with no stored prices comes back as an empty series
// (the dataStore contract) and is reported by validation; an error from the
// store is an infrastructure failure and aborts.
func (e *Engine) prefetch(ctx context.Context, cfg *SimulationConfig) (map[string][]types.PricePoint, error) {
	start := cfg.Start.Add(-cfg.Policy.LookBack)
	end := cfg.End.Add(cfg.Policy.LookAhead)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		series   = make(map[string][]types.PricePoint, len(cfg.Targets))
		fetchErr error
	)
	for _, t := range cfg.Targets {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			points, err := e.store.GetPriceSeries(ctx, ticker, start, end)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.log.Error().Err(err).Str("ticker", ticker).Msg("price prefetch failed")
				if fetchErr == nil {
					fetchErr = fmt.Errorf("prefetch %s: %w", ticker, err)
				}
				return
			}
			series[ticker] = points
		}(t.Ticker)
	}
	wg.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return series, nil
}
