package coercer

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
)

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	TimestampThreshold float64 `json:"timestamp_threshold"` // share of non-missing values that must parse as timestamps
	NormalizeStrings   bool    `json:"normalize_strings"`   // trim and collapse whitespace in string cells
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		TimestampThreshold: 0.9,
		NormalizeStrings:   true,
	}
}

// MissingCode is the categorical code assigned to missing cells
const MissingCode = -1

// EncodedMatrix is the fully numeric view of a dataset used for modeling.
// Row i and column j correspond to the dataset's row i and column j.
type EncodedMatrix struct {
	Matrix   *mat.Dense
	Profiles []profiling.ColumnProfile
	Warnings []profiling.EncodingWarning
}

// ClassifyColumn decides how a column should be represented numerically.
//
// A column whose non-missing cells are all numeric is Numeric. Otherwise
// the share of non-missing cells that are (or parse as) timestamps decides:
// at or above the threshold the column is Timestamp, below it Categorical.
func (c *TypeCoercer) ClassifyColumn(name string, values []dataset.Value) profiling.ColumnProfile {
	profile := profiling.ColumnProfile{Name: name, SampleSize: len(values)}

	distinct := make(map[string]struct{})
	nonMissing, numeric, parsed := 0, 0, 0
	for _, v := range values {
		if v.IsMissing() {
			profile.MissingCount++
			continue
		}
		nonMissing++
		distinct[v.Key()] = struct{}{}
		if v.IsNumeric() {
			numeric++
		}
		if _, ok := c.timestampOf(v); ok {
			parsed++
		}
	}
	profile.DistinctCount = len(distinct)

	if numeric == nonMissing {
		profile.InferredType = profiling.TypeNumeric
		return profile
	}

	profile.TimestampRatio = float64(parsed) / float64(nonMissing)
	if profile.TimestampRatio >= c.config.TimestampThreshold {
		profile.InferredType = profiling.TypeTimestamp
	} else {
		profile.InferredType = profiling.TypeCategorical
	}
	return profile
}

// ClassifyDataset profiles every column in order
func (c *TypeCoercer) ClassifyDataset(ds *dataset.Dataset) []profiling.ColumnProfile {
	profiles := make([]profiling.ColumnProfile, len(ds.Columns))
	for j, name := range ds.Columns {
		profiles[j] = c.ClassifyColumn(name, ds.ColumnAt(j))
	}
	return profiles
}

// ClassifyAndEncode produces a fresh numeric matrix for the dataset.
// Timestamp columns encode the calendar year, categorical columns a code
// in order of first appearance, numeric columns pass through with missing
// cells as NaN. Timestamp cells that fail to parse become NaN and are
// reported as warnings. The dataset is not modified.
func (c *TypeCoercer) ClassifyAndEncode(ds *dataset.Dataset) (*EncodedMatrix, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if ds.IsEmpty() || ds.ColumnCount() == 0 {
		return nil, core.NewInputError("cannot encode an empty dataset")
	}

	rows, cols := ds.RowCount(), ds.ColumnCount()
	encoded := &EncodedMatrix{
		Matrix:   mat.NewDense(rows, cols, nil),
		Profiles: c.ClassifyDataset(ds),
	}

	for j, profile := range encoded.Profiles {
		switch profile.InferredType {
		case profiling.TypeNumeric:
			for i, row := range ds.Rows {
				encoded.Matrix.Set(i, j, row[j].AsFloat64())
			}
		case profiling.TypeTimestamp:
			for i, row := range ds.Rows {
				v := row[j]
				if v.IsMissing() {
					encoded.Matrix.Set(i, j, math.NaN())
					continue
				}
				t, ok := c.timestampOf(v)
				if !ok {
					encoded.Matrix.Set(i, j, math.NaN())
					encoded.Warnings = append(encoded.Warnings, profiling.EncodingWarning{
						Row:     i,
						Column:  profile.Name,
						Value:   v.String(),
						Message: core.NewEncodingError(profile.Name, i, v.String()).Error(),
					})
					continue
				}
				encoded.Matrix.Set(i, j, float64(t.Year()))
			}
		case profiling.TypeCategorical:
			codes := make(map[string]int)
			for i, row := range ds.Rows {
				v := row[j]
				if v.IsMissing() {
					encoded.Matrix.Set(i, j, MissingCode)
					continue
				}
				code, seen := codes[v.Key()]
				if !seen {
					code = len(codes)
					codes[v.Key()] = code
				}
				encoded.Matrix.Set(i, j, float64(code))
			}
		default:
			return nil, fmt.Errorf("unhandled column type %q for %s", profile.InferredType, profile.Name)
		}
	}

	return encoded, nil
}

// timestampOf extracts a time from a typed timestamp or a parseable string
func (c *TypeCoercer) timestampOf(v dataset.Value) (time.Time, bool) {
	if v.IsTimestamp() {
		return v.AsTime(), true
	}
	if v.IsString() {
		return c.tryParseTimestamp(v.AsString())
	}
	return time.Time{}, false
}
