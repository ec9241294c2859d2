package types

import "time"

// Coverage is the per-ticker data-quality descriptor reported by the price
// store: the span and count of positive observations.
type Coverage struct {
	Ticker       string    `json:"ticker"`
	FirstDate    time.Time `json:"first_date"`
	LastDate     time.Time `json:"last_date"`
	Observations int       `json:"observations"`
}
