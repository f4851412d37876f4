package app

import (
	"fmt"
	"strconv"

	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	"gocleanse/domain/quality"
)

// Flag column names added by AnnotateFlags
const (
	DuplicateColumn = "is_duplicate"
	OutlierColumn   = "is_outlier"
)

// AnnotateFlags returns a copy of ds with one "true"/"false" column per
// non-nil flag slice. This is the only place derived flags meet the table;
// the input dataset is left untouched.
func AnnotateFlags(ds *dataset.Dataset, flags quality.RowFlags) (*dataset.Dataset, error) {
	out := ds
	for _, col := range []struct {
		name  string
		flags []bool
	}{
		{DuplicateColumn, flags.Duplicate},
		{OutlierColumn, flags.Outlier},
	} {
		if col.flags == nil {
			continue
		}
		if len(col.flags) != ds.RowCount() {
			return nil, core.NewInputError(fmt.Sprintf("%s has %d flags for %d rows", col.name, len(col.flags), ds.RowCount()))
		}
		values := make([]dataset.Value, len(col.flags))
		for i, f := range col.flags {
			values[i] = dataset.NewStringValue(strconv.FormatBool(f))
		}
		next, err := out.WithColumn(col.name, values)
		if err != nil {
			return nil, err
		}
		out = next
	}
	if out == ds {
		return ds.Clone(), nil
	}
	return out, nil
}
