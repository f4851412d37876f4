package profiling

// InferredType represents the automatically detected column representation
type InferredType string

const (
	TypeNumeric     InferredType = "numeric"
	TypeCategorical InferredType = "categorical"
	TypeTimestamp   InferredType = "timestamp"
)

// ColumnProfile is the per-column classification produced by the type
// coercer. It is derived on every run and never persisted.
type ColumnProfile struct {
	Name           string       `json:"name"`
	InferredType   InferredType `json:"inferred_type"`
	TimestampRatio float64      `json:"timestamp_ratio"` // parsed / non-missing, non-numeric columns only
	DistinctCount  int          `json:"distinct_count"`
	MissingCount   int          `json:"missing_count"`
	SampleSize     int          `json:"sample_size"`
}

// EncodingWarning records a cell in a timestamp column that did not parse.
// The cell is encoded as NaN.
type EncodingWarning struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// ColumnCount is a missing-value count for one column
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// MissingReport lists missing cells per column, in column order
type MissingReport struct {
	PerColumn []ColumnCount `json:"per_column"`
	Total     int           `json:"total"`
}

// Count returns the missing count of a column, or 0 if unknown
func (r MissingReport) Count(column string) int {
	for _, c := range r.PerColumn {
		if c.Column == column {
			return c.Count
		}
	}
	return 0
}

// NumericStats contains summary statistics for a numeric column
type NumericStats struct {
	Column       string  `json:"column"`
	Count        int     `json:"count"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`      // excess, 0 for a normal sample
	NormalityP   float64 `json:"normality_p"`   // Jarque-Bera p-value
	OutlierCount int     `json:"outlier_count"` // IQR method
}
