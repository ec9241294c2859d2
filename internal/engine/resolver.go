package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"portfoliosim/types"
)

var ErrPriceNotFound = errors.New("no usable price in series")

// priceResolver answers "what did this asset cost on this date" over possibly
// sparse series. Series are cleaned (non-positive observations dropped) and
// sorted once at construction; lookups are binary searches.
type priceResolver struct {
	series    map[string][]types.PricePoint
	lookAhead time.Duration
	lookBack  time.Duration
}

func newPriceResolver(series map[string][]types.PricePoint, policy PolicyConfig) *priceResolver {
	clean := make(map[string][]types.PricePoint, len(series))
	for ticker, points := range series {
		usable := make([]types.PricePoint, 0, len(points))
		for _, p := range points {
			if p.Price().IsPositive() {
				usable = append(usable, p)
			}
		}
		sort.Slice(usable, func(i, j int) bool { return usable[i].Date.Before(usable[j].Date) })
		if len(usable) > 0 {
			clean[ticker] = usable
		}
	}
	return &priceResolver{series: clean, lookAhead: policy.LookAhead, lookBack: policy.LookBack}
}

// Resolve returns the price for ticker as of date. Priority: exact calendar
// date, nearest later observation within the look-ahead window, nearest
// earlier observation within the look-back window, then the chronologically
// last observation. Monthly data lags real time, so a slightly-future price
// is a better "as of" value than stale history.
//
// Fails only when the ticker has no positive observation at all.
func (r *priceResolver) Resolve(ticker string, date time.Time) (decimal.Decimal, error) {
	points := r.series[ticker]
	if len(points) == 0 {
		return decimal.Zero, fmt.Errorf("%s: %w", ticker, ErrPriceNotFound)
	}
	if price, ok := r.nearby(points, date); ok {
		return price, nil
	}
	return points[len(points)-1].Price(), nil
}

// ResolveNear is Resolve without the last-observation fallback: it fails when
// no observation lies within the windows around date. The driver uses it to
// decide which assets genuinely have data this month.
func (r *priceResolver) ResolveNear(ticker string, date time.Time) (decimal.Decimal, error) {
	points := r.series[ticker]
	if len(points) == 0 {
		return decimal.Zero, fmt.Errorf("%s: %w", ticker, ErrPriceNotFound)
	}
	if price, ok := r.nearby(points, date); ok {
		return price, nil
	}
	return decimal.Zero, fmt.Errorf("%s around %s: %w", ticker, date.Format("2006-01-02"), ErrPriceNotFound)
}

func (r *priceResolver) nearby(points []types.PricePoint, date time.Time) (decimal.Decimal, bool) {
	day := midnightUTC(date)
	i := sort.Search(len(points), func(i int) bool {
		return !midnightUTC(points[i].Date).Before(day)
	})
	// Exact match wins regardless of other nearby observations.
	if i < len(points) && midnightUTC(points[i].Date).Equal(day) {
		return points[i].Price(), true
	}
	if i < len(points) && midnightUTC(points[i].Date).Sub(day) <= r.lookAhead {
		return points[i].Price(), true
	}
	if i > 0 && day.Sub(midnightUTC(points[i-1].Date)) <= r.lookBack {
		return points[i-1].Price(), true
	}
	return decimal.Zero, false
}

// HasData reports whether the ticker has any usable observation.
func (r *priceResolver) HasData(ticker string) bool {
	return len(r.series[ticker]) > 0
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
