// Package profiling computes descriptive summaries of numeric columns for
// the cleaning report
package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	domain "gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
)

// minShapeSamples is the smallest sample for which skewness and kurtosis are reported
const minShapeSamples = 4

// Summarizer builds NumericStats for every numeric column
type Summarizer struct{}

// NewSummarizer creates a summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns one entry per column that holds at least one number and
// no other non-missing values, in column order. Missing cells are skipped.
func (s *Summarizer) Summarize(ds *dataset.Dataset) []domain.NumericStats {
	var out []domain.NumericStats
	for j, name := range ds.Columns {
		data, ok := numericColumn(ds, j)
		if !ok {
			continue
		}
		summary, err := s.SummarizeValues(name, data)
		if err != nil {
			continue
		}
		out = append(out, summary)
	}
	return out
}

// SummarizeValues describes a single sample
func (s *Summarizer) SummarizeValues(column string, data []float64) (domain.NumericStats, error) {
	summary := domain.NumericStats{Column: column, Count: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, err
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return summary, err
	}
	lo, err := stats.Min(data)
	if err != nil {
		return summary, err
	}
	hi, err := stats.Max(data)
	if err != nil {
		return summary, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return summary, err
	}
	q25 := percentile(data, 25, lo)
	q75 := percentile(data, 75, hi)

	summary.Mean = mean
	summary.StdDev = stdDev
	summary.Min = lo
	summary.Max = hi
	summary.Median = median
	summary.Q25 = q25
	summary.Q75 = q75
	summary.OutlierCount = iqrOutliers(data, q25, q75)
	summary.NormalityP = 1

	if len(data) >= minShapeSamples && stdDev > 0 {
		summary.Skewness = skewness(data, mean, stdDev)
		summary.Kurtosis = excessKurtosis(data, mean, stdDev)
		summary.NormalityP = jarqueBeraP(len(data), summary.Skewness, summary.Kurtosis)
	}
	return summary, nil
}

func numericColumn(ds *dataset.Dataset, j int) ([]float64, bool) {
	var data []float64
	for _, row := range ds.Rows {
		switch {
		case row[j].IsNumeric():
			data = append(data, row[j].AsFloat64())
		case !row[j].IsMissing():
			return nil, false
		}
	}
	return data, len(data) > 0
}

// percentile falls back to the given bound for samples too small to
// interpolate a rank
func percentile(data []float64, p, fallback float64) float64 {
	v, err := stats.Percentile(data, p)
	if err != nil || math.IsNaN(v) {
		return fallback
	}
	return v
}

// skewness is the population moment coefficient of skewness
func skewness(data []float64, mean, stdDev float64) float64 {
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}
	return sum / float64(len(data))
}

// excessKurtosis is the population fourth standardized moment minus 3
func excessKurtosis(data []float64, mean, stdDev float64) float64 {
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}
	return sum/float64(len(data)) - 3
}

// jarqueBeraP returns the asymptotic p-value of the Jarque-Bera statistic,
// which is chi-squared with two degrees of freedom under normality
func jarqueBeraP(n int, skew, kurt float64) float64 {
	jb := float64(n) / 6 * (skew*skew + kurt*kurt/4)
	return distuv.ChiSquared{K: 2}.Survival(jb)
}

// iqrOutliers counts values outside [q25 - 1.5 IQR, q75 + 1.5 IQR]
func iqrOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower, upper := q25-1.5*iqr, q75+1.5*iqr
	n := 0
	for _, x := range data {
		if x < lower || x > upper || math.IsInf(x, 0) {
			n++
		}
	}
	return n
}
