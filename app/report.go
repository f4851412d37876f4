package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/quality"
)

// maxReportedOutliers caps the outlier table in rendered reports
const maxReportedOutliers = 10

// RowScore pairs a row of the working dataset with its anomaly score
type RowScore struct {
	Row   int     `json:"row"`
	Score float64 `json:"score"`
}

// Report summarizes a cleaning run
type Report struct {
	RunID       core.RunID    `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Elapsed     time.Duration `json:"elapsed"`

	RowsBefore int `json:"rows_before"`
	RowsAfter  int `json:"rows_after"`
	Columns    int `json:"columns"`

	MissingStrategy quality.MissingStrategy `json:"missing_strategy"`
	ImputeMethod    quality.ImputeMethod    `json:"impute_method,omitempty"`
	Missing         profiling.MissingReport `json:"missing"`

	DuplicateCount    int  `json:"duplicate_count"`
	DuplicatesRemoved bool `json:"duplicates_removed"`

	OutlierCount    int        `json:"outlier_count"`
	OutliersRemoved bool       `json:"outliers_removed"`
	Contamination   float64    `json:"contamination,omitempty"`
	TopOutliers     []RowScore `json:"top_outliers,omitempty"`

	Profiles  []profiling.ColumnProfile   `json:"profiles,omitempty"`
	Warnings  []profiling.EncodingWarning `json:"warnings,omitempty"`
	Summaries []profiling.NumericStats    `json:"summaries,omitempty"`
}

// topOutliers lists flagged rows by descending score, earlier row first on ties
func topOutliers(flags []bool, scores []float64) []RowScore {
	var out []RowScore
	for i, f := range flags {
		if f {
			out = append(out, RowScore{Row: i, Score: scores[i]})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}

// Markdown renders the report as a markdown document
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data quality report\n\n")
	fmt.Fprintf(&b, "Run `%s` generated %s.\n\n", r.RunID, r.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Rows before | %d |\n", r.RowsBefore)
	fmt.Fprintf(&b, "| Rows after | %d |\n", r.RowsAfter)
	fmt.Fprintf(&b, "| Columns | %d |\n", r.Columns)
	fmt.Fprintf(&b, "| Missing cells | %d |\n", r.Missing.Total)
	fmt.Fprintf(&b, "| Duplicate rows | %d%s |\n", r.DuplicateCount, removedSuffix(r.DuplicatesRemoved, r.DuplicateCount))
	fmt.Fprintf(&b, "| Outlier rows | %d%s |\n", r.OutlierCount, removedSuffix(r.OutliersRemoved, r.OutlierCount))
	b.WriteString("\n")

	if r.Missing.Total > 0 {
		b.WriteString("## Missing values\n\n")
		strategy := string(r.MissingStrategy)
		if r.ImputeMethod != "" {
			strategy += " (" + string(r.ImputeMethod) + ")"
		}
		fmt.Fprintf(&b, "Strategy: %s\n\n", strategy)
		b.WriteString("| Column | Missing |\n|---|---|\n")
		for _, c := range r.Missing.PerColumn {
			if c.Count > 0 {
				fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(c.Column), c.Count)
			}
		}
		b.WriteString("\n")
	}

	if len(r.Profiles) > 0 {
		b.WriteString("## Column types\n\n")
		b.WriteString("| Column | Type | Distinct | Missing |\n|---|---|---|---|\n")
		for _, p := range r.Profiles {
			fmt.Fprintf(&b, "| %s | %s | %d | %d |\n", escapeCell(p.Name), p.InferredType, p.DistinctCount, p.MissingCount)
		}
		b.WriteString("\n")
	}

	if len(r.TopOutliers) > 0 {
		fmt.Fprintf(&b, "## Outliers\n\nContamination %.3g.\n\n", r.Contamination)
		b.WriteString("| Row | Score |\n|---|---|\n")
		for i, o := range r.TopOutliers {
			if i == maxReportedOutliers {
				fmt.Fprintf(&b, "| ... | %d more |\n", len(r.TopOutliers)-maxReportedOutliers)
				break
			}
			fmt.Fprintf(&b, "| %d | %.4f |\n", o.Row, o.Score)
		}
		b.WriteString("\n")
	}

	if len(r.Summaries) > 0 {
		b.WriteString("## Numeric columns\n\n")
		b.WriteString("| Column | Count | Mean | Std dev | Min | Median | Max | IQR outliers |\n|---|---|---|---|---|---|---|---|\n")
		for _, s := range r.Summaries {
			fmt.Fprintf(&b, "| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %d |\n",
				escapeCell(s.Column), s.Count, s.Mean, s.StdDev, s.Min, s.Median, s.Max, s.OutlierCount)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- row %d, column %s: %q could not be parsed as a timestamp\n", w.Row, escapeCell(w.Column), w.Value)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the markdown report as a complete HTML page
func (r *Report) HTML() string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Data quality report " + r.RunID.String(),
	})
	return string(markdown.ToHTML([]byte(r.Markdown()), p, renderer))
}

func removedSuffix(removed bool, n int) string {
	if removed && n > 0 {
		return " (removed)"
	}
	return ""
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
