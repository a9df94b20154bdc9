// Package report renders a valued collection as CSV for spreadsheets.
// Free-text fields pass through a formula-injection guard, since listing
// titles and notes come from the open internet.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/retrovault/retrovault/internal/collection"
	"github.com/retrovault/retrovault/internal/model"
)

// Row pairs a ledger item with its current valuation.
type Row struct {
	Item       collection.Item
	Result     model.ValuationResult
	Volatility float64 // trailing 30-day coefficient of variation
}

var headers = []string{
	"name", "platform", "condition", "grade",
	"purchase_price", "purchased_at",
	"estimate", "range_low", "range_median", "range_high",
	"confidence", "tier", "volatility_30d", "methodology",
}

// WriteCSV emits one row per item. Items whose valuation came back empty
// still appear, with the reason in the methodology column, so the export
// always covers the whole collection.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("write row for %q: %w", r.Item.Target.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func record(r Row) []string {
	t := r.Item.Target

	grade := ""
	if t.Graded() {
		grade = fmt.Sprintf("%s %.1f", t.GradingAuthority, t.GradeValue)
	}

	purchasedAt := ""
	if !r.Item.PurchasedAt.IsZero() {
		purchasedAt = r.Item.PurchasedAt.Format(time.DateOnly)
	}

	estimate := ""
	if !r.Result.Empty {
		estimate = fmt.Sprintf("%d", r.Result.PointEstimate)
	}

	return []string{
		sanitize(t.Name),
		sanitize(t.Platform),
		string(t.Condition),
		sanitize(grade),
		fmt.Sprintf("%.2f", r.Item.PurchasePrice),
		purchasedAt,
		estimate,
		fmt.Sprintf("%.2f", r.Result.Range.Low),
		fmt.Sprintf("%.2f", r.Result.Range.Median),
		fmt.Sprintf("%.2f", r.Result.Range.High),
		fmt.Sprintf("%d", r.Result.ConfidenceScore),
		string(r.Result.Tier),
		fmt.Sprintf("%.3f", r.Volatility),
		sanitize(r.Result.Methodology),
	}
}

// sanitize neutralizes cells a spreadsheet would evaluate as a formula.
// Leading =, +, -, @, |, %, tab, or newline all get a quote prefix.
func sanitize(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', '|', '%', '\t', '\r', '\n':
		return "'" + cell
	}
	return cell
}
