package engine

import (
	"errors"
	"fmt"
	"strings"

	"portfoliosim/types"
)

var ErrInsufficientData = errors.New("insufficient price data coverage")

// CoverageIssue describes one pre-flight data problem.
type CoverageIssue struct {
	Ticker string
	Reason string
}

func (i CoverageIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Ticker, i.Reason)
}

// InsufficientDataError is fatal: it aborts the run before simulation starts
// and carries the full list of coverage problems for the caller.
type InsufficientDataError struct {
	Issues []CoverageIssue
}

func (e *InsufficientDataError) Error() string {
	reasons := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		reasons[i] = issue.String()
	}
	return fmt.Sprintf("%v: %s", ErrInsufficientData, strings.Join(reasons, "; "))
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// validateCoverage runs the pre-flight checks. The returned issues are
// advisory while at least one asset is usable; the error is non-nil only when
// the run cannot produce anything meaningful at all.
func validateCoverage(cfg *SimulationConfig, series map[string][]types.PricePoint) ([]CoverageIssue, error) {
	var issues []CoverageIssue

	if len(cfg.Targets) == 0 {
		issues = append(issues, CoverageIssue{Ticker: "-", Reason: "no allocation targets configured"})
		return issues, &InsufficientDataError{Issues: issues}
	}
	if cfg.End.Before(cfg.Start) {
		issues = append(issues, CoverageIssue{Ticker: "-", Reason: "simulation end precedes start"})
		return issues, &InsufficientDataError{Issues: issues}
	}

	usable := 0
	for _, t := range cfg.Targets {
		if !t.Fraction.IsPositive() {
			issues = append(issues, CoverageIssue{Ticker: t.Ticker, Reason: "non-positive allocation fraction"})
			continue
		}

		points := series[t.Ticker]
		positives := 0
		for _, p := range points {
			if p.Price().IsPositive() {
				positives++
			}
		}
		switch {
		case len(points) == 0:
			issues = append(issues, CoverageIssue{Ticker: t.Ticker, Reason: "no price observations"})
			continue
		case positives == 0:
			issues = append(issues, CoverageIssue{Ticker: t.Ticker, Reason: "no positive price observations"})
			continue
		}

		first, last := points[0].Date, points[len(points)-1].Date
		if first.After(cfg.End) || last.Before(cfg.Start) {
			issues = append(issues, CoverageIssue{Ticker: t.Ticker, Reason: "series does not overlap the simulated window"})
		}
		usable++
	}

	if usable == 0 {
		return issues, &InsufficientDataError{Issues: issues}
	}
	return issues, nil
}
