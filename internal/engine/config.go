package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"portfoliosim/types"
)

// Policy defaults. The windows, thresholds and the payout calendar encode
// business policy; overriding them is allowed but these are the documented
// values.
var (
	DefaultLookAhead    = 45 * 24 * time.Hour
	DefaultLookBack     = 45 * 24 * time.Hour
	DefaultMinSaleValue = decimal.NewFromInt(100)
	DefaultRiskFreeRate = decimal.NewFromFloat(0.10)

	// dustThreshold suppresses sub-cent ledger noise.
	dustThreshold = decimal.NewFromFloat(0.01)
)

// DefaultPayoutCalendar is the seasonal dividend schedule: the fraction of a
// holding's annual yield paid in each calendar month. The factors sum to
// exactly 1.0.
func DefaultPayoutCalendar() map[time.Month]decimal.Decimal {
	return map[time.Month]decimal.Decimal{
		time.March:   decimal.NewFromFloat(0.333),
		time.August:  decimal.NewFromFloat(0.333),
		time.October: decimal.NewFromFloat(0.334),
	}
}

// PolicyConfig carries the tunable business-policy constants of a run.
type PolicyConfig struct {
	LookAhead      time.Duration
	LookBack       time.Duration
	MinSaleValue   decimal.Decimal
	PayoutCalendar map[time.Month]decimal.Decimal
	RiskFreeRate   decimal.Decimal
	ShowProgress   bool
}

func NewPolicyConfig() PolicyConfig {
	return PolicyConfig{
		LookAhead:      DefaultLookAhead,
		LookBack:       DefaultLookBack,
		MinSaleValue:   DefaultMinSaleValue,
		PayoutCalendar: DefaultPayoutCalendar(),
		RiskFreeRate:   DefaultRiskFreeRate,
	}
}

// SimulationConfig describes one backtest run: the target allocation, the
// simulated window, the contribution schedule and the rebalance cadence.
type SimulationConfig struct {
	Targets             []types.AllocationTarget
	Start               time.Time
	End                 time.Time
	InitialCapital      decimal.Decimal
	MonthlyContribution decimal.Decimal
	Frequency           types.RebalanceFrequency
	Policy              PolicyConfig
}

func NewSimulationConfig(
	targets []types.AllocationTarget,
	start, end time.Time,
	initialCapital, monthlyContribution decimal.Decimal,
	frequency types.RebalanceFrequency,
) *SimulationConfig {
	return &SimulationConfig{
		Targets:             targets,
		Start:               start,
		End:                 end,
		InitialCapital:      initialCapital,
		MonthlyContribution: monthlyContribution,
		Frequency:           frequency,
		Policy:              NewPolicyConfig(),
	}
}

// rebalanceEvery returns the month-index stride for the configured cadence.
func (c *SimulationConfig) rebalanceEvery() int {
	if every, ok := types.MonthInterval[c.Frequency]; ok {
		return every
	}
	return 1
}
