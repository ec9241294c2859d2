package repository

import (
	"context"
	"fmt"
	"time"

	"portfoliosim/types"
)

const priceSeriesQuery = `
SELECT date, close, adjusted_close
FROM prices
WHERE ticker = $1 AND date BETWEEN $2 AND $3
ORDER BY date`

const coverageQuery = `
SELECT min(date), max(date), count(*)
FROM prices
WHERE ticker = $1 AND close > 0`

// GetPriceSeries returns the ticker's observations within [start, end],
// ordered ascending by date. A ticker with no stored rows yields an empty
// series, not an error; the engine's pre-flight validation reports it.
func (db *Database) GetPriceSeries(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	rows, err := db.q.Query(ctx, priceSeriesQuery, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("query prices for %s: %w", ticker, err)
	}
	defer rows.Close()

	var series []types.PricePoint
	for rows.Next() {
		var p types.PricePoint
		if err := rows.Scan(&p.Date, &p.Close, &p.AdjustedClose); err != nil {
			return nil, fmt.Errorf("scan price row for %s: %w", ticker, err)
		}
		series = append(series, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read prices for %s: %w", ticker, err)
	}
	return series, nil
}

// GetCoverage reports the span and count of the ticker's positive
// observations.
func (db *Database) GetCoverage(ctx context.Context, ticker string) (types.Coverage, error) {
	var (
		first *time.Time
		last  *time.Time
		count int
	)
	row := db.q.QueryRow(ctx, coverageQuery, ticker)
	if err := row.Scan(&first, &last, &count); err != nil {
		return types.Coverage{}, fmt.Errorf("query coverage for %s: %w", ticker, err)
	}

	coverage := types.Coverage{Ticker: ticker, Observations: count}
	if first != nil {
		coverage.FirstDate = *first
	}
	if last != nil {
		coverage.LastDate = *last
	}
	return coverage, nil
}
