package profiling

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/domain/dataset"
	"gocleanse/internal/testkit"
)

func TestSummarizeSkipsNonNumericColumns(t *testing.T) {
	ds := testkit.NewGenerator(3).Customers(50, testkit.WithMissingRate(0.1))
	summaries := NewSummarizer().Summarize(ds)

	var names []string
	for _, s := range summaries {
		names = append(names, s.Column)
	}
	assert.Equal(t, []string{"age", "income", "orders"}, names)
	for _, s := range summaries {
		assert.LessOrEqual(t, s.Count, 50)
		assert.LessOrEqual(t, s.Min, s.Q25)
		assert.LessOrEqual(t, s.Q25, s.Median)
		assert.LessOrEqual(t, s.Median, s.Q75)
		assert.LessOrEqual(t, s.Q75, s.Max)
	}
}

func TestSummarizeFlagsIQROutlier(t *testing.T) {
	fixture := testkit.TenRowScenario()
	summaries := NewSummarizer().Summarize(fixture.Dataset)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "reading", s.Column)
	assert.Equal(t, 10, s.Count)
	assert.Equal(t, 9.0, s.Min)
	assert.Equal(t, 1200.0, s.Max)
	assert.InDelta(t, 131.2, s.Mean, 1e-9)
	assert.Equal(t, 1, s.OutlierCount)
	assert.Greater(t, s.Skewness, 2.0)
	assert.Less(t, s.NormalityP, 0.05)
}

func TestSummarizeNormalSample(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	data := make([]float64, 2000)
	for i := range data {
		data[i] = 50 + 5*r.NormFloat64()
	}
	s, err := NewSummarizer().SummarizeValues("x", data)
	require.NoError(t, err)

	assert.InDelta(t, 50, s.Mean, 0.5)
	assert.InDelta(t, 5, s.StdDev, 0.5)
	assert.InDelta(t, 0, s.Skewness, 0.2)
	assert.InDelta(t, 0, s.Kurtosis, 0.4)
}

func TestSummarizeTinySamples(t *testing.T) {
	s, err := NewSummarizer().SummarizeValues("x", []float64{4, 8})
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Min)
	assert.Equal(t, 8.0, s.Max)
	assert.Equal(t, 6.0, s.Mean)
	assert.Zero(t, s.Skewness)
	assert.Equal(t, 1.0, s.NormalityP)

	_, err = NewSummarizer().SummarizeValues("x", nil)
	assert.Error(t, err)
}

func TestSummarizeIgnoresAllMissingColumn(t *testing.T) {
	ds := dataset.New("gap")
	require.NoError(t, ds.AppendRow(dataset.NewMissingValue()))
	assert.Empty(t, NewSummarizer().Summarize(ds))
}
