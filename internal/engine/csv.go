package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"portfoliosim/types"
)

// WriteLedgerCSVFile writes the transaction ledger to a CSV file at the given path.
func WriteLedgerCSVFile(path string, entries []types.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ledger file: %w", err)
	}
	defer f.Close()

	return WriteLedgerCSV(f, entries)
}

// WriteLedgerCSV writes the ledger to any io.Writer as CSV.
// You can pass os.Stdout for debugging, or a file.
func WriteLedgerCSV(w io.Writer, entries []types.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"month_index",
		"date", // RFC3339
		"ticker",
		"type",
		"cash_delta",
		"price",
		"share_delta",
		"running_share_total",
		"running_cash_balance",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range entries {
		record := []string{
			fmt.Sprintf("%d", tx.MonthIndex),
			tx.Date.Format(time.RFC3339),
			tx.Ticker,
			string(tx.Type),
			tx.CashDelta.String(),
			tx.Price.String(),
			fmt.Sprintf("%d", tx.ShareDelta),
			fmt.Sprintf("%d", tx.RunningShareTotal),
			tx.RunningCashBalance.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteEvolutionCSVFile writes the monthly evolution series to a CSV file.
func WriteEvolutionCSVFile(path string, snapshots []types.MonthlySnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create evolution file: %w", err)
	}
	defer f.Close()

	return WriteEvolutionCSV(f, snapshots)
}

// WriteEvolutionCSV writes the evolution series to any io.Writer as CSV.
func WriteEvolutionCSV(w io.Writer, snapshots []types.MonthlySnapshot) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"date",
		"total_value",
		"invested",
		"cash_balance",
		"return",
		"contribution",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, snap := range snapshots {
		record := []string{
			snap.Date.Format("2006-01-02"),
			snap.TotalValue.StringFixed(2),
			snap.Invested.StringFixed(2),
			snap.CashBalance.StringFixed(2),
			snap.Return.StringFixed(6),
			snap.Contribution.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
