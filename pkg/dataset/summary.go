package dataset

import (
	"context"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"
)

// SummaryRow is the display projection of a Record: size in MB rounded to
// two decimals, modification time at second precision.
type SummaryRow struct {
	Name     string
	SizeMB   float64
	Modified string
}

// Summarize is the pure presentation transform over Details output.
func Summarize(records []Record) []SummaryRow {
	rows := make([]SummaryRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, SummaryRow{
			Name:     r.Name,
			SizeMB:   math.Round(float64(r.SizeBytes)/(1024*1024)*100) / 100,
			Modified: r.ModifiedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

// Summary returns the formatted view of all stored datasets.
func (s *Store) Summary(ctx context.Context) []SummaryRow {
	return Summarize(s.Details(ctx))
}

// FormatSummary renders rows as aligned text for terminal display.
func FormatSummary(rows []SummaryRow) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.2f MB\t(%s)\n", r.Name, r.SizeMB, r.Modified)
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}
