package missing

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
	"gocleanse/domain/quality"
	"gocleanse/internal"
)

// DefaultNeighbors is the number of donor rows used by nearest-neighbor imputation
const DefaultNeighbors = 2

// Handler detects and repairs missing cells
type Handler struct {
	neighbors int
	logger    *internal.Logger
}

// NewHandler creates a handler. k < 1 falls back to DefaultNeighbors.
func NewHandler(k int, logger *internal.Logger) *Handler {
	if k < 1 {
		k = DefaultNeighbors
	}
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &Handler{neighbors: k, logger: logger}
}

// Detect counts missing cells per column and in total
func (h *Handler) Detect(ds *dataset.Dataset) profiling.MissingReport {
	report := profiling.MissingReport{PerColumn: make([]profiling.ColumnCount, len(ds.Columns))}
	for j, name := range ds.Columns {
		report.PerColumn[j].Column = name
	}
	for _, row := range ds.Rows {
		for j, v := range row {
			if v.IsMissing() {
				report.PerColumn[j].Count++
				report.Total++
			}
		}
	}
	return report
}

// Drop returns a copy without any row that contains a missing cell
func (h *Handler) Drop(ds *dataset.Dataset) *dataset.Dataset {
	keep := make([]bool, len(ds.Rows))
	for i, row := range ds.Rows {
		keep[i] = true
		for _, v := range row {
			if v.IsMissing() {
				keep[i] = false
				break
			}
		}
	}
	return ds.SelectRows(keep)
}

// Impute repairs missing cells in numeric columns only. Non-numeric
// columns keep their missing cells. The input is not modified.
func (h *Handler) Impute(ds *dataset.Dataset, method quality.ImputeMethod) (*dataset.Dataset, error) {
	resolved, err := method.Resolve()
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if ds.IsEmpty() {
		return nil, core.ErrEmptyDataset
	}

	out := ds.Clone()
	cols := NumericColumns(ds)
	if len(cols) == 0 {
		return out, nil
	}

	switch resolved {
	case quality.ImputeMean:
		h.imputeMean(out, cols)
	case quality.ImputeNearestNeighbor:
		h.imputeNearest(out, cols)
	}
	return out, nil
}

// NumericColumns returns the positions of columns that hold at least one
// number and nothing but numbers or missing cells
func NumericColumns(ds *dataset.Dataset) []int {
	var cols []int
	for j := range ds.Columns {
		numeric, other := 0, 0
		for _, row := range ds.Rows {
			switch {
			case row[j].IsNumeric():
				numeric++
			case !row[j].IsMissing():
				other++
			}
		}
		if numeric > 0 && other == 0 {
			cols = append(cols, j)
		}
	}
	return cols
}

// columnMeans computes the mean over non-missing cells of each column
func columnMeans(ds *dataset.Dataset, cols []int) map[int]float64 {
	means := make(map[int]float64, len(cols))
	for _, j := range cols {
		var present stats.Float64Data
		for _, row := range ds.Rows {
			if row[j].IsNumeric() {
				present = append(present, row[j].AsFloat64())
			}
		}
		if mean, err := stats.Mean(present); err == nil {
			means[j] = mean
		}
	}
	return means
}

func (h *Handler) imputeMean(ds *dataset.Dataset, cols []int) {
	means := columnMeans(ds, cols)
	filled := 0
	for _, row := range ds.Rows {
		for _, j := range cols {
			if row[j].IsMissing() {
				row[j] = dataset.NewNumericValue(means[j])
				filled++
			}
		}
	}
	h.logger.Debug("[MissingValueHandler] mean imputation filled %d cells", filled)
}

type neighbor struct {
	row      int
	distance float64
}

// imputeNearest fills each missing numeric cell with the mean of the k
// closest complete rows. Distance is Euclidean over the numeric columns
// present in the incomplete row; ties keep row order.
func (h *Handler) imputeNearest(ds *dataset.Dataset, cols []int) {
	var donors []int
	for i, row := range ds.Rows {
		if complete(row, cols) {
			donors = append(donors, i)
		}
	}

	if len(donors) == 0 {
		h.logger.Warn("[MissingValueHandler] no complete rows to use as neighbors, falling back to mean imputation")
		h.imputeMean(ds, cols)
		return
	}

	// Donor rows are never modified below, so reading them while writing
	// incomplete rows is safe.
	filled := 0
	for i, row := range ds.Rows {
		if complete(row, cols) {
			continue
		}

		var observed []int
		for _, j := range cols {
			if !row[j].IsMissing() {
				observed = append(observed, j)
			}
		}

		target := vectorOf(row, observed)
		nearest := make([]neighbor, len(donors))
		for d, donor := range donors {
			nearest[d] = neighbor{row: donor, distance: floats.Distance(target, vectorOf(ds.Rows[donor], observed), 2)}
		}
		sort.SliceStable(nearest, func(a, b int) bool {
			return nearest[a].distance < nearest[b].distance
		})
		if len(nearest) > h.neighbors {
			nearest = nearest[:h.neighbors]
		}

		for _, j := range cols {
			if !row[j].IsMissing() {
				continue
			}
			sum := 0.0
			for _, n := range nearest {
				sum += ds.Rows[n.row][j].AsFloat64()
			}
			row[j] = dataset.NewNumericValue(sum / float64(len(nearest)))
			filled++
		}
		h.logger.Trace("[MissingValueHandler] row %d imputed from %s", i, describe(nearest))
	}
	h.logger.Debug("[MissingValueHandler] nearest-neighbor imputation filled %d cells from %d donors", filled, len(donors))
}

func complete(row []dataset.Value, cols []int) bool {
	for _, j := range cols {
		if row[j].IsMissing() {
			return false
		}
	}
	return true
}

func vectorOf(row []dataset.Value, cols []int) []float64 {
	v := make([]float64, len(cols))
	for k, j := range cols {
		v[k] = row[j].AsFloat64()
	}
	return v
}

func describe(ns []neighbor) string {
	s := ""
	for i, n := range ns {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("row %d (d=%.3g)", n.row, n.distance)
	}
	if s == "" {
		return "nothing"
	}
	return s
}

// HasMissingNumeric reports whether any numeric column still has a gap
func HasMissingNumeric(ds *dataset.Dataset) bool {
	for _, j := range NumericColumns(ds) {
		for _, row := range ds.Rows {
			if row[j].IsMissing() || math.IsNaN(row[j].AsFloat64()) {
				return true
			}
		}
	}
	return false
}
