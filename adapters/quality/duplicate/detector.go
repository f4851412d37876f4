package duplicate

import (
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	"gocleanse/domain/quality"
)

// Detector flags rows that repeat an earlier row. Columns named in ignore
// (typically a generated row identifier) are left out of the comparison.
type Detector struct{}

// NewDetector creates a duplicate detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect marks every row whose compared cells equal those of an earlier
// row. The first occurrence is never flagged.
func (d *Detector) Detect(ds *dataset.Dataset, ignore ...string) quality.DuplicateReport {
	compared := comparedColumns(ds, ignore)
	report := quality.DuplicateReport{Flags: make([]bool, ds.RowCount())}

	seen := make(map[core.Hash]struct{}, ds.RowCount())
	keys := make([]string, len(compared))
	for i, row := range ds.Rows {
		for k, j := range compared {
			keys[k] = row[j].Key()
		}
		fp := core.RowFingerprint(keys)
		if _, dup := seen[fp]; dup {
			report.Flags[i] = true
			report.Count++
			continue
		}
		seen[fp] = struct{}{}
	}
	return report
}

// Remove returns a copy keeping only the first occurrence of each row
func (d *Detector) Remove(ds *dataset.Dataset, ignore ...string) *dataset.Dataset {
	report := d.Detect(ds, ignore...)
	return ds.SelectRows(quality.Invert(report.Flags))
}

func comparedColumns(ds *dataset.Dataset, ignore []string) []int {
	skip := make(map[string]bool, len(ignore))
	for _, c := range ignore {
		skip[c] = true
	}
	cols := make([]int, 0, len(ds.Columns))
	for j, c := range ds.Columns {
		if !skip[c] {
			cols = append(cols, j)
		}
	}
	return cols
}
