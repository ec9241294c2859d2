package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single observation in a per-asset price series. Series are
// supplied by the price-feed collaborator, ordered ascending by date, and are
// never mutated by the engine.
type PricePoint struct {
	Date          time.Time       `json:"date"`
	Close         decimal.Decimal `json:"close"`
	AdjustedClose decimal.Decimal `json:"adjusted_close"`
}

// Price returns the value used for resolution: the adjusted close when
// positive, otherwise the raw close.
func (p PricePoint) Price() decimal.Decimal {
	if p.AdjustedClose.IsPositive() {
		return p.AdjustedClose
	}
	return p.Close
}
