package coercer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
)

func TestCoerceValue(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name     string
		raw      interface{}
		wantType dataset.ValueType
		wantNum  float64
	}{
		{name: "nil is missing", raw: nil, wantType: dataset.ValueTypeMissing},
		{name: "empty string is missing", raw: "  ", wantType: dataset.ValueTypeMissing},
		{name: "NA token is missing", raw: "NA", wantType: dataset.ValueTypeMissing},
		{name: "plain integer", raw: "42", wantType: dataset.ValueTypeNumeric, wantNum: 42},
		{name: "currency", raw: "$1,200.50", wantType: dataset.ValueTypeNumeric, wantNum: 1200.5},
		{name: "parenthesised negative", raw: "(15)", wantType: dataset.ValueTypeNumeric, wantNum: -15},
		{name: "european decimal", raw: "1.234,5", wantType: dataset.ValueTypeNumeric, wantNum: 1234.5},
		{name: "go float", raw: 3.5, wantType: dataset.ValueTypeNumeric, wantNum: 3.5},
		{name: "go int", raw: 7, wantType: dataset.ValueTypeNumeric, wantNum: 7},
		{name: "iso date", raw: "2021-03-04", wantType: dataset.ValueTypeTimestamp},
		{name: "rfc3339", raw: "2021-03-04T10:00:00Z", wantType: dataset.ValueTypeTimestamp},
		{name: "free text", raw: "North  East", wantType: dataset.ValueTypeString},
		{name: "boolean text stays categorical", raw: true, wantType: dataset.ValueTypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.CoerceValue(tt.raw)
			assert.Equal(t, tt.wantType, v.Type)
			if tt.wantType == dataset.ValueTypeNumeric {
				assert.InDelta(t, tt.wantNum, v.AsFloat64(), 1e-9)
			}
		})
	}

	assert.Equal(t, "North East", c.CoerceValue("North  East").AsString())
}

func TestClassifyColumn(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	ts := func(s string) dataset.Value { return dataset.NewStringValue(s) }
	num := dataset.NewNumericValue
	missing := dataset.NewMissingValue()

	tests := []struct {
		name     string
		values   []dataset.Value
		expected profiling.InferredType
	}{
		{
			name:     "all numeric",
			values:   []dataset.Value{num(1), num(2), missing, num(4)},
			expected: profiling.TypeNumeric,
		},
		{
			name:     "all missing counts as numeric",
			values:   []dataset.Value{missing, missing},
			expected: profiling.TypeNumeric,
		},
		{
			name: "date strings",
			values: []dataset.Value{
				ts("2020-01-01"), ts("2020-02-01"), ts("2021-03-01"), ts("2021-04-01"), ts("2022-05-01"),
				ts("2022-06-01"), ts("2023-07-01"), ts("2023-08-01"), ts("2024-09-01"), ts("2024-10-01"),
			},
			expected: profiling.TypeTimestamp,
		},
		{
			name: "exactly ninety percent dates is timestamp",
			values: []dataset.Value{
				ts("2020-01-01"), ts("2020-02-01"), ts("2021-03-01"), ts("2021-04-01"), ts("2022-05-01"),
				ts("2022-06-01"), ts("2023-07-01"), ts("2023-08-01"), ts("2024-09-01"), ts("unknown"),
			},
			expected: profiling.TypeTimestamp,
		},
		{
			name: "eighty percent dates is categorical",
			values: []dataset.Value{
				ts("2020-01-01"), ts("2020-02-01"), ts("2021-03-01"), ts("2021-04-01"), ts("2022-05-01"),
				ts("2022-06-01"), ts("2023-07-01"), ts("2023-08-01"), ts("later"), ts("unknown"),
			},
			expected: profiling.TypeCategorical,
		},
		{
			name:     "text",
			values:   []dataset.Value{ts("red"), ts("blue"), ts("red")},
			expected: profiling.TypeCategorical,
		},
		{
			name:     "mixed numbers and text",
			values:   []dataset.Value{num(1), ts("two"), num(3)},
			expected: profiling.TypeCategorical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := c.ClassifyColumn("col", tt.values)
			assert.Equal(t, tt.expected, profile.InferredType)
		})
	}
}

func TestClassifyColumnThresholdIsConfigurable(t *testing.T) {
	c := NewTypeCoercer(CoercionConfig{TimestampThreshold: 0.5})
	values := []dataset.Value{
		dataset.NewStringValue("2020-01-01"),
		dataset.NewStringValue("n/a yet"),
	}
	profile := c.ClassifyColumn("when", values)
	assert.Equal(t, profiling.TypeTimestamp, profile.InferredType)
	assert.InDelta(t, 0.5, profile.TimestampRatio, 1e-12)
}

func TestClassifyAndEncode(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	ds := dataset.New("age", "city", "joined")
	rows := [][]dataset.Value{
		{dataset.NewNumericValue(30), dataset.NewStringValue("Paris"), dataset.NewStringValue("2019-05-01")},
		{dataset.NewMissingValue(), dataset.NewStringValue("Lyon"), dataset.NewTimestampValue(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC))},
		{dataset.NewNumericValue(41), dataset.NewStringValue("Paris"), dataset.NewStringValue("2021-07-09")},
		{dataset.NewNumericValue(25), dataset.NewMissingValue(), dataset.NewStringValue("2018-02-03")},
	}
	for _, r := range rows {
		require.NoError(t, ds.AppendRow(r...))
	}
	before := ds.Clone()

	encoded, err := c.ClassifyAndEncode(ds)
	require.NoError(t, err)

	r, cols := encoded.Matrix.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 3, cols)

	assert.Equal(t, profiling.TypeNumeric, encoded.Profiles[0].InferredType)
	assert.Equal(t, profiling.TypeCategorical, encoded.Profiles[1].InferredType)
	assert.Equal(t, profiling.TypeTimestamp, encoded.Profiles[2].InferredType)

	// numeric passthrough, missing stays NaN
	assert.Equal(t, 30.0, encoded.Matrix.At(0, 0))
	assert.True(t, math.IsNaN(encoded.Matrix.At(1, 0)))

	// first-appearance codes
	assert.Equal(t, 0.0, encoded.Matrix.At(0, 1))
	assert.Equal(t, 1.0, encoded.Matrix.At(1, 1))
	assert.Equal(t, 0.0, encoded.Matrix.At(2, 1))
	assert.Equal(t, float64(MissingCode), encoded.Matrix.At(3, 1))

	// year extraction
	assert.Equal(t, 2019.0, encoded.Matrix.At(0, 2))
	assert.Equal(t, 2020.0, encoded.Matrix.At(1, 2))
	assert.Equal(t, 2021.0, encoded.Matrix.At(2, 2))

	assert.Empty(t, encoded.Warnings)
	assert.True(t, before.Equal(ds), "dataset must not be mutated")
}

func TestClassifyAndEncodeIsStable(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	ds := dataset.New("color")
	for _, s := range []string{"green", "red", "green", "blue"} {
		require.NoError(t, ds.AppendRow(dataset.NewStringValue(s)))
	}

	first, err := c.ClassifyAndEncode(ds)
	require.NoError(t, err)
	second, err := c.ClassifyAndEncode(ds)
	require.NoError(t, err)

	assert.Equal(t, first.Matrix.RawMatrix().Data, second.Matrix.RawMatrix().Data)
	assert.Equal(t, []float64{0, 1, 0, 2}, first.Matrix.RawMatrix().Data)
}

func TestClassifyAndEncodeWarnsOnUnparseableTimestamp(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	ds := dataset.New("joined")
	values := []string{
		"2020-01-01", "2020-02-01", "2021-03-01", "2021-04-01", "2022-05-01",
		"2022-06-01", "2023-07-01", "2023-08-01", "2024-09-01", "sometime",
	}
	for _, s := range values {
		require.NoError(t, ds.AppendRow(dataset.NewStringValue(s)))
	}

	encoded, err := c.ClassifyAndEncode(ds)
	require.NoError(t, err)
	require.Len(t, encoded.Warnings, 1)

	w := encoded.Warnings[0]
	assert.Equal(t, 9, w.Row)
	assert.Equal(t, "joined", w.Column)
	assert.Equal(t, "sometime", w.Value)
	assert.True(t, math.IsNaN(encoded.Matrix.At(9, 0)), "unparseable cell must not be zeroed")
}

func TestClassifyAndEncodeRejectsEmptyDataset(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	_, err := c.ClassifyAndEncode(dataset.New("a"))
	assert.True(t, core.IsInputError(err))
}
