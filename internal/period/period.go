// Package period handles accounting period (year-month) keys and the
// deterministic references derived from dates.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format returns the period key for a date, e.g. "2025-01".
func Format(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// Parse parses a "YYYY-MM" period key.
func Parse(p string) (year, month int, err error) {
	parts := strings.SplitN(p, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid period format: %q", p)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in period %q: %w", p, err)
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in period %q: %w", p, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month in period %q", p)
	}
	return year, month, nil
}

// Next returns the period key following p.
func Next(p string) (string, error) {
	year, month, err := Parse(p)
	if err != nil {
		return "", err
	}
	month++
	if month > 12 {
		month = 1
		year++
	}
	return fmt.Sprintf("%04d-%02d", year, month), nil
}

// ElapsedSince returns every whole period strictly after the period containing
// start, up to and including the period containing asOf. The period containing
// start itself is never included (whole-period proration only).
func ElapsedSince(start, asOf time.Time) []string {
	var periods []string
	y, m := start.Year(), int(start.Month())
	for {
		m++
		if m > 12 {
			m = 1
			y++
		}
		if y > asOf.Year() || (y == asOf.Year() && m > int(asOf.Month())) {
			return periods
		}
		periods = append(periods, fmt.Sprintf("%04d-%02d", y, m))
	}
}

// End returns the last instant's date of a period, e.g. "2025-01" -> Jan 31.
func End(p string) (time.Time, error) {
	year, month, err := Parse(p)
	if err != nil {
		return time.Time{}, err
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1), nil
}

// ClosingReference derives the deterministic reference for a period close as
// of a date, e.g. "CLOSE-2025-12-31". One closing transaction may exist per
// as-of date per tenant.
func ClosingReference(asOf time.Time) string {
	return "CLOSE-" + asOf.Format("2006-01-02")
}

// DepreciationReference derives the reference for one asset-period
// depreciation posting.
func DepreciationReference(assetID, p string) string {
	return fmt.Sprintf("DEP-%s-%s", assetID, p)
}

// VoidReference derives the reference for the reversal of a transaction.
func VoidReference(ref string) string {
	return "VOID-" + ref
}
