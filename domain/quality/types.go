package quality

import (
	"fmt"
	"strings"

	"gocleanse/domain/core"
)

// ImputeMethod selects how missing numeric cells are repaired. The zero
// value is ImputeMean.
type ImputeMethod string

const (
	ImputeMean            ImputeMethod = "mean"
	ImputeNearestNeighbor ImputeMethod = "nearest-neighbor"
)

// DefaultImputeMethod is used when no method is configured
const DefaultImputeMethod = ImputeMean

// ParseImputeMethod maps a user-supplied string to an ImputeMethod.
// Empty input yields the default; unknown input is a configuration error.
func ParseImputeMethod(s string) (ImputeMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultImputeMethod, nil
	case "mean":
		return ImputeMean, nil
	case "nearest-neighbor", "nearest_neighbor", "knn":
		return ImputeNearestNeighbor, nil
	}
	return "", core.NewConfigurationError("impute method", fmt.Sprintf("unknown method %q", s))
}

// Resolve returns the effective method, mapping the zero value to the default
func (m ImputeMethod) Resolve() (ImputeMethod, error) {
	switch m {
	case "":
		return DefaultImputeMethod, nil
	case ImputeMean, ImputeNearestNeighbor:
		return m, nil
	}
	return "", core.NewConfigurationError("impute method", fmt.Sprintf("unknown method %q", string(m)))
}

// MissingStrategy selects what the pipeline does with missing cells
type MissingStrategy string

const (
	MissingKeep   MissingStrategy = "keep"
	MissingDrop   MissingStrategy = "drop"
	MissingImpute MissingStrategy = "impute"
)

// ParseMissingStrategy maps a user-supplied string to a MissingStrategy
func ParseMissingStrategy(s string) (MissingStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "impute":
		return MissingImpute, nil
	case "drop":
		return MissingDrop, nil
	case "keep", "none":
		return MissingKeep, nil
	}
	return "", core.NewConfigurationError("missing strategy", fmt.Sprintf("unknown strategy %q", s))
}

// DuplicateReport flags rows that repeat an earlier row
type DuplicateReport struct {
	Flags []bool `json:"flags"`
	Count int    `json:"count"`
}

// OutlierReport holds per-row anomaly scores and the derived flags
type OutlierReport struct {
	Scores        []float64 `json:"scores"`
	Flags         []bool    `json:"flags"`
	Count         int       `json:"count"`
	Contamination float64   `json:"contamination"`
}

// RowFlags is a side table of derived per-row flags keyed by row index.
// It never lives inside the dataset; it is merged only when reporting.
type RowFlags struct {
	Duplicate []bool `json:"duplicate,omitempty"`
	Outlier   []bool `json:"outlier,omitempty"`
}

// CountTrue returns the number of set flags
func CountTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// Invert returns the element-wise negation, handy for keep-masks
func Invert(flags []bool) []bool {
	out := make([]bool, len(flags))
	for i, f := range flags {
		out[i] = !f
	}
	return out
}
