// Package output provides utilities for formatting and displaying tax estimates.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/iwvelando/property-tax/internal/estimate"
	"github.com/iwvelando/property-tax/pkg/format"
	"github.com/iwvelando/property-tax/pkg/tax"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(results []estimate.Estimate, view tax.View) {
	WritePretty(os.Stdout, results, view)
}

// WritePretty writes the human-readable report to w.
func WritePretty(w io.Writer, results []estimate.Estimate, view tax.View) {
	for i, result := range results {
		r := result.Result
		fmt.Fprintf(w, "--- Results for scenario %s (%s) ---\n", result.Name, view)
		fmt.Fprintf(w, "Assessed value    | %s\n", format.Currency(r.AssessedValue))
		fmt.Fprintf(w, "Fair-market ratio | %s\n", format.Percent(r.FairMarketRatio))
		fmt.Fprintf(w, "Taxable base      | %s\n", format.Currency(r.TaxableBase))
		fmt.Fprintf(w, "Property bracket  | %s\n", r.BaseTaxBracket)
		fmt.Fprintf(w, "Fire levy bracket | %s\n", r.FireLevyBracket)
		fmt.Fprintf(w, "Burden cap        | %s\n", burdenCapSummary(r))
		fmt.Fprintf(w, "Levy | Amount | Description\n")
		fmt.Fprintf(w, "____ | ______ | ___________\n")
		items := r.Breakdown(view)
		for _, item := range items {
			fmt.Fprintf(w, "%s | %s | %s\n", item.Name, format.Currency(item.Amount), item.Description)
		}
		fmt.Fprintf(w, "Total | %s\n", format.Currency(r.Amounts(view).Total))
		if r.CapApplied {
			fmt.Fprintf(w, "Total before cap (annual) | %s\n", format.Currency(r.TotalBeforeCap))
		}
		if len(results) > 1 && i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

func burdenCapSummary(r tax.Result) string {
	switch r.CapState {
	case tax.CapCapped:
		return fmt.Sprintf("%s (applied, computed %s)", format.Currency(r.BurdenCap.Value), format.Currency(r.OriginalBaseTax))
	case tax.CapUncapped:
		return fmt.Sprintf("%s (not applied)", format.Currency(r.BurdenCap.Value))
	default:
		return "no prior-year tax"
	}
}

var csvHeader = []string{
	"scenario", "view", "assessed value", "fair-market ratio", "taxable base",
	"base tax", "original base tax", "urban-area levy", "fire levy", "education surtax",
	"burden cap", "cap applied", "total before cap", "total",
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []estimate.Estimate, view tax.View) {
	fmt.Print(CsvString(results, view))
}

// CsvString returns the CSV representation of the estimates.
func CsvString(results []estimate.Estimate, view tax.View) string {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write(csvHeader)
	for _, result := range results {
		r := result.Result
		amounts := r.Amounts(view)
		burdenCap := ""
		if r.BurdenCap.Valid {
			burdenCap = strconv.FormatInt(r.BurdenCap.Value, 10)
		}
		_ = writer.Write([]string{
			result.Name,
			string(view),
			strconv.FormatInt(r.AssessedValue, 10),
			strconv.FormatInt(r.FairMarketRatio, 10),
			strconv.FormatInt(r.TaxableBase, 10),
			strconv.FormatInt(amounts.BaseTax, 10),
			strconv.FormatInt(r.OriginalBaseTax, 10),
			strconv.FormatInt(amounts.UrbanAreaLevy, 10),
			strconv.FormatInt(amounts.FireLevy, 10),
			strconv.FormatInt(amounts.EducationSurtax, 10),
			burdenCap,
			strconv.FormatBool(r.CapApplied),
			strconv.FormatInt(r.TotalBeforeCap, 10),
			strconv.FormatInt(amounts.Total, 10),
		})
	}
	writer.Flush()
	return buf.String()
}

// Report is the JSON shape of one estimate for a view.
type Report struct {
	Name      string         `json:"name"`
	View      tax.View       `json:"view"`
	Input     tax.Input      `json:"input"`
	Result    tax.Result     `json:"result"`
	Amounts   tax.Amounts    `json:"amounts"`
	Breakdown []tax.LineItem `json:"breakdown"`
}

// Reports builds the JSON reports for a view.
func Reports(results []estimate.Estimate, view tax.View) []Report {
	reports := make([]Report, 0, len(results))
	for _, result := range results {
		reports = append(reports, Report{
			Name:      result.Name,
			View:      view,
			Input:     result.Input,
			Result:    result.Result,
			Amounts:   result.Result.Amounts(view),
			Breakdown: result.Result.Breakdown(view),
		})
	}
	return reports
}

// JSONFormat outputs the estimates as indented JSON.
func JSONFormat(results []estimate.Estimate, view tax.View) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Reports(results, view))
}
