// Package writer renders parsed statements into export formats.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/finlens/statement-engine/internal/models"
)

// CSVWriter writes a statement's transactions to CSV format.
type CSVWriter struct {
	// IncludeHeader prepends account metadata rows before the column header.
	IncludeHeader bool
}

// WriteToFile writes the statement to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, st *models.Statement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, st)
}

// Write writes the statement in CSV format. Incomes and expenses are merged
// into one date-ordered sequence; the sign of the amount column carries the
// direction.
func (w *CSVWriter) Write(out io.Writer, st *models.Statement) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader {
		if st.Format != "" {
			writer.Write([]string{"# Format", string(st.Format)})
		}
		if st.HolderName != "" {
			writer.Write([]string{"# Account Holder", st.HolderName})
		}
		if st.AccountSuffix != "" {
			writer.Write([]string{"# Account Suffix", st.AccountSuffix})
		}
		if !st.Period.From.IsZero() && !st.Period.To.IsZero() {
			writer.Write([]string{"# Statement Period",
				st.Period.From.Format(time.DateOnly) + " to " + st.Period.To.Format(time.DateOnly)})
		}
	}

	if err := writer.Write([]string{"Date", "Description", "Amount"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range mergedByDate(st) {
		row := []string{
			txn.Date.Format(time.DateOnly),
			txn.Description,
			txn.Amount.StringFixed(2),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

// mergedByDate interleaves incomes and expenses by date. The sort is stable
// so same-day transactions keep their statement order within each sequence.
func mergedByDate(st *models.Statement) []models.Transaction {
	merged := make([]models.Transaction, 0, st.Count())
	merged = append(merged, st.Incomes...)
	merged = append(merged, st.Expenses...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged
}
