package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"portfoliosim/internal/engine"
	"portfoliosim/internal/repository"
	"portfoliosim/types"
)

func main() {
	_ = godotenv.Load()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := configFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := repository.NewDatabase(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal().Err(err).Msg("connect price store")
	}
	defer db.Close()

	eng := engine.NewEngine(&db, log)
	result, err := eng.Run(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}

	printReport(result)

	if path := os.Getenv("LEDGER_CSV"); path != "" {
		if err := engine.WriteLedgerCSVFile(path, result.Ledger); err != nil {
			log.Error().Err(err).Msg("write ledger csv")
		}
	}
	if path := os.Getenv("EVOLUTION_CSV"); path != "" {
		if err := engine.WriteEvolutionCSVFile(path, result.Evolution); err != nil {
			log.Error().Err(err).Msg("write evolution csv")
		}
	}
}

func configFromEnv() (*engine.SimulationConfig, error) {
	targets, err := parsePortfolio(os.Getenv("PORTFOLIO"))
	if err != nil {
		return nil, err
	}
	start, err := time.Parse("2006-01", os.Getenv("START"))
	if err != nil {
		return nil, fmt.Errorf("parse START: %w", err)
	}
	end, err := time.Parse("2006-01", os.Getenv("END"))
	if err != nil {
		return nil, fmt.Errorf("parse END: %w", err)
	}
	initial, err := decimalEnv("INITIAL_CAPITAL")
	if err != nil {
		return nil, err
	}
	contribution, err := decimalEnv("MONTHLY_CONTRIBUTION")
	if err != nil {
		return nil, err
	}

	frequency := types.RebalanceFrequency(strings.ToUpper(os.Getenv("REBALANCE")))
	if frequency == "" {
		frequency = types.RebalanceMonthly
	}
	if _, ok := types.MonthInterval[frequency]; !ok {
		return nil, fmt.Errorf("unknown rebalance frequency %q", frequency)
	}

	cfg := engine.NewSimulationConfig(targets, start, end, initial, contribution, frequency)
	cfg.Policy.ShowProgress = true
	return cfg, nil
}

// parsePortfolio reads "TICKER:fraction:yield" triples separated by commas,
// e.g. "VWCE:0.60:0.021,AGGH:0.40:0.015".
func parsePortfolio(s string) ([]types.AllocationTarget, error) {
	if s == "" {
		return nil, fmt.Errorf("PORTFOLIO is empty")
	}
	var targets []types.AllocationTarget
	for _, entry := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed portfolio entry %q", entry)
		}
		fraction, err := decimal.NewFromString(parts[1])
		if err != nil {
			return nil, fmt.Errorf("parse fraction of %q: %w", entry, err)
		}
		yield, err := decimal.NewFromString(parts[2])
		if err != nil {
			return nil, fmt.Errorf("parse yield of %q: %w", entry, err)
		}
		targets = append(targets, types.AllocationTarget{
			Ticker:                strings.ToUpper(parts[0]),
			Fraction:              fraction,
			AverageAnnualDivYield: yield,
		})
	}
	return targets, nil
}

func decimalEnv(key string) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func printReport(result *engine.SimulationResult) {
	report := result.Report

	fmt.Println("===== Simulation Report =====")
	fmt.Printf("Run ID:                %s\n", result.ID)
	fmt.Printf("Months Simulated:      %d\n", report.Months)
	fmt.Printf("Missed Contributions:  %d\n", report.MissedContributions)

	fmt.Println("\n-- Capital --")
	fmt.Printf("Invested:              %s\n", report.Invested.StringFixed(2))
	fmt.Printf("Final Value:           %s\n", report.FinalValue.StringFixed(2))

	fmt.Println("\n-- Performance --")
	fmt.Printf("Total Return:          %s\n", report.TotalReturn.StringFixed(4))
	fmt.Printf("Annualized Return:     %s\n", report.AnnualizedReturn.StringFixed(4))
	fmt.Printf("Volatility:            %s\n", report.Volatility.StringFixed(4))
	if report.SharpeRatio != nil {
		fmt.Printf("Sharpe Ratio:          %s\n", report.SharpeRatio.StringFixed(4))
	} else {
		fmt.Printf("Sharpe Ratio:          n/a\n")
	}
	fmt.Printf("Max Drawdown:          %s\n", report.MaxDrawdown.StringFixed(4))

	fmt.Println("\n-- Per Asset --")
	for _, perf := range report.PerAsset {
		fmt.Printf("%-8s shares=%-6d avgCost=%-10s value=%-12s realized=%-10s return=%s\n",
			perf.Ticker,
			perf.Shares,
			perf.AvgCost.StringFixed(2),
			perf.CurrentValue.StringFixed(2),
			perf.RealizedGain.StringFixed(2),
			perf.Return.StringFixed(4),
		)
	}
	fmt.Println("=============================")
}
