package dataset

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/domain/core"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	ds := New("id", "age", "city")
	require.NoError(t, ds.AppendRow(NewStringValue("a"), NewNumericValue(31), NewStringValue("Oslo")))
	require.NoError(t, ds.AppendRow(NewStringValue("b"), NewMissingValue(), NewStringValue("Rome")))
	require.NoError(t, ds.AppendRow(NewStringValue("c"), NewNumericValue(47), NewMissingValue()))
	return ds
}

func TestValueConstructors(t *testing.T) {
	assert.True(t, NewStringValue("").IsMissing())
	assert.True(t, NewNumericValue(math.NaN()).IsMissing())
	assert.True(t, math.IsNaN(NewStringValue("x").AsFloat64()))
	assert.Equal(t, "x", NewStringValue("x").AsString())

	ts := time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, ts, NewTimestampValue(ts).AsTime())
}

func TestValueEqualityIsTyped(t *testing.T) {
	assert.True(t, NewMissingValue().Equal(NewMissingValue()))
	assert.True(t, NewNumericValue(0).Equal(NewNumericValue(math.Copysign(0, -1))))
	assert.False(t, NewStringValue("30").Equal(NewNumericValue(30)))
	assert.False(t, NewNumericValue(1).Equal(NewMissingValue()))
}

func TestAppendRowRejectsWrongWidth(t *testing.T) {
	ds := New("a", "b")
	err := ds.AppendRow(NewNumericValue(1))
	assert.True(t, core.IsInputError(err))
	assert.Zero(t, ds.RowCount())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, sample(t).Validate())

	dup := New("a", "a")
	assert.True(t, core.IsInputError(dup.Validate()))

	ragged := sample(t)
	ragged.Rows[1] = ragged.Rows[1][:2]
	assert.True(t, core.IsInputError(ragged.Validate()))

	var missing *Dataset
	assert.True(t, core.IsInputError(missing.Validate()))
}

func TestColumnLookup(t *testing.T) {
	ds := sample(t)
	ages, err := ds.Column("age")
	require.NoError(t, err)
	assert.Equal(t, 31.0, ages[0].AsFloat64())
	assert.True(t, ages[1].IsMissing())

	_, err = ds.Column("nope")
	assert.True(t, errors.Is(err, core.ErrColumnNotFound))
	assert.True(t, core.IsInputError(err))
}

func TestSelectRowsPreservesOrder(t *testing.T) {
	ds := sample(t)
	out := ds.SelectRows([]bool{true, false, true})
	require.Equal(t, 2, out.RowCount())
	assert.Equal(t, "a", out.Rows[0][0].AsString())
	assert.Equal(t, "c", out.Rows[1][0].AsString())
	assert.Equal(t, 3, ds.RowCount())
}

func TestCloneIsIndependent(t *testing.T) {
	ds := sample(t)
	c := ds.Clone()
	c.Rows[0][1] = NewNumericValue(99)
	assert.Equal(t, 31.0, ds.Rows[0][1].AsFloat64())
	assert.False(t, c.Equal(ds))
}

func TestWithColumnAndWithout(t *testing.T) {
	ds := sample(t)
	withIDs, err := ds.WithRowIDs("row_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "age", "city", "row_id"}, withIDs.Columns)
	assert.NotEqual(t, withIDs.Rows[0][3].AsString(), withIDs.Rows[1][3].AsString())

	_, err = withIDs.WithRowIDs("row_id")
	assert.True(t, core.IsInputError(err))

	_, err = ds.WithColumn("short", []Value{NewNumericValue(1)})
	assert.True(t, core.IsInputError(err))

	assert.True(t, withIDs.WithoutColumns("row_id").Equal(ds))
	assert.Equal(t, []string{"age"}, ds.WithoutColumns("id", "city", "unknown").Columns)
}
