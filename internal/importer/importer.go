// Package importer bulk-loads expenses from CSV files through the posting
// engine. Rows carry their own references, so re-importing a file replays
// idempotently instead of double-posting.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenbooks-dev/greenbooks/internal/posting"
)

const (
	dateFormat = "2006-01-02"
	numFields  = 5
	colDate    = 0
	colDesc    = 1
	colVendor  = 2
	colAmount  = 3
	colRef     = 4
)

// Header is the expected CSV header.
const Header = "date,description,vendor,amount,reference"

// Row is one parsed expense line.
type Row struct {
	Date        time.Time
	Description string
	Vendor      string
	Amount      decimal.Decimal
	Reference   string
}

// RowError pairs a failed row number (1-based, header excluded) with the
// failure.
type RowError struct {
	Row int
	Err string
}

// Result reports per-row import outcomes. Replayed rows had been posted by a
// previous import of the same reference.
type Result struct {
	Posted   int
	Replayed int
	Failed   []RowError
}

// Parse reads expense rows from a CSV stream.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading expense CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var rows []Row
	for i, rec := range records[1:] {
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (Row, error) {
	date, err := time.Parse(dateFormat, rec[colDate])
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", rec[colDate], err)
	}
	amount, err := decimal.NewFromString(rec[colAmount])
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", rec[colAmount], err)
	}
	ref := rec[colRef]
	if ref == "" {
		ref = makeRef(date, rec[colVendor])
	}
	return Row{
		Date:        date,
		Description: rec[colDesc],
		Vendor:      rec[colVendor],
		Amount:      amount,
		Reference:   ref,
	}, nil
}

// makeRef derives a reference like import_20250103_GITHUB for rows without
// an explicit one.
func makeRef(date time.Time, vendor string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, vendor)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("import_%s_%s", date.Format("20060102"), prefix)
}

// Import posts every row as a paid expense for the tenant. One bad row does
// not stop the rest; outcomes are reported per row.
func Import(ctx context.Context, engine *posting.Engine, tenantID string, rows []Row) Result {
	var result Result
	for i, row := range rows {
		posted, err := engine.PostExpense(ctx, tenantID, posting.ExpenseParams{
			Reference:   row.Reference,
			Date:        row.Date,
			Description: row.Description,
			Vendor:      row.Vendor,
			Amount:      row.Amount,
		})
		if err != nil {
			result.Failed = append(result.Failed, RowError{Row: i + 1, Err: err.Error()})
			continue
		}
		if posted.Existing {
			result.Replayed++
		} else {
			result.Posted++
		}
	}
	return result
}
