package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
	"gocleanse/domain/quality"
	"gocleanse/internal/testkit"
)

func newService() *CleaningService {
	return NewCleaningService(nil, nil)
}

func TestRunTenRowScenario(t *testing.T) {
	fixture := testkit.TenRowScenario()
	opts := DefaultOptions()
	opts.Outliers.Contamination = 0.1

	result, err := newService().Run(context.Background(), fixture.Dataset, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Report.DuplicateCount)
	assert.True(t, result.Flags.Duplicate[9])
	assert.Equal(t, 1, result.Report.OutlierCount)
	assert.True(t, result.Flags.Outlier[6])
	assert.Equal(t, 1, quality.CountTrue(result.Flags.Outlier))

	// duplicates are removed, outliers only flagged by default
	assert.Equal(t, 10, result.Report.RowsBefore)
	assert.Equal(t, 9, result.Report.RowsAfter)
	assert.Equal(t, 9, result.Cleaned.RowCount())
	assert.Equal(t, 10, fixture.Dataset.RowCount(), "input must not be modified")
	require.Len(t, result.Report.TopOutliers, 1)
	assert.Equal(t, 6, result.Report.TopOutliers[0].Row)
}

func TestRunRemovesOutliersWhenAsked(t *testing.T) {
	fixture := testkit.TenRowScenario()
	opts := DefaultOptions()
	opts.Outliers.Remove = true

	result, err := newService().Run(context.Background(), fixture.Dataset, opts)
	require.NoError(t, err)

	assert.Equal(t, 8, result.Cleaned.RowCount())
	for _, row := range result.Cleaned.Rows {
		assert.NotEqual(t, 1200.0, row[0].AsFloat64())
	}
}

func TestDetectOutliersOnTenRows(t *testing.T) {
	fixture := testkit.TenRowScenario()
	opts := DefaultOutlierOptions()
	opts.Contamination = 0.1

	out, err := newService().DetectOutliers(context.Background(), fixture.Dataset, opts)
	require.NoError(t, err)

	want := make([]bool, 10)
	want[6] = true
	assert.Equal(t, want, out.Flags)
	assert.Len(t, out.Scores, 10)
	require.Len(t, out.Profiles, 1)
	assert.Equal(t, profiling.TypeNumeric, out.Profiles[0].InferredType)
}

func TestRunFindsPlantedDefects(t *testing.T) {
	fixture := testkit.NewGenerator(21).Build(300, testkit.WithOutliers(3), testkit.WithDuplicates(5))
	opts := DefaultOptions()
	opts.IgnoreColumns = []string{"customer_id"}
	opts.Outliers.Contamination = 0.01

	result, err := newService().Run(context.Background(), fixture.Dataset, opts)
	require.NoError(t, err)

	for _, i := range fixture.DuplicateRows {
		assert.True(t, result.Flags.Duplicate[i], "row %d is a planted duplicate", i)
	}
	assert.Equal(t, 305-result.Report.DuplicateCount, result.Report.RowsAfter)

	var flagged []int
	for i, f := range result.Flags.Outlier {
		if f {
			flagged = append(flagged, i)
		}
	}
	assert.ElementsMatch(t, fixture.OutlierRows, flagged)
}

func TestRunMissingStrategies(t *testing.T) {
	ds := testkit.NewGenerator(4).Customers(120, testkit.WithMissingRate(0.1))

	tests := []struct {
		name     string
		strategy quality.MissingStrategy
		method   quality.ImputeMethod
		check    func(t *testing.T, r *Result)
	}{
		{"drop", quality.MissingDrop, "", func(t *testing.T, r *Result) {
			assert.Less(t, r.Working.RowCount(), 120)
			for _, row := range r.Working.Rows {
				for _, v := range row {
					assert.False(t, v.IsMissing())
				}
			}
		}},
		{"impute mean", quality.MissingImpute, quality.ImputeMean, func(t *testing.T, r *Result) {
			assert.Equal(t, 120, r.Working.RowCount())
			assert.Equal(t, quality.ImputeMean, r.Report.ImputeMethod)
			ages, err := r.Working.Column("age")
			require.NoError(t, err)
			for _, v := range ages {
				assert.False(t, v.IsMissing())
			}
		}},
		{"impute knn", quality.MissingImpute, quality.ImputeNearestNeighbor, func(t *testing.T, r *Result) {
			assert.Equal(t, quality.ImputeNearestNeighbor, r.Report.ImputeMethod)
			incomes, err := r.Working.Column("income")
			require.NoError(t, err)
			for _, v := range incomes {
				assert.False(t, v.IsMissing())
			}
		}},
		{"keep", quality.MissingKeep, "", func(t *testing.T, r *Result) {
			assert.Equal(t, 120, r.Working.RowCount())
			assert.Equal(t, r.Report.Missing.Total, sumMissing(r.Working))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.MissingStrategy = tt.strategy
			opts.ImputeMethod = tt.method
			opts.Outliers.Trees = 20

			result, err := newService().Run(context.Background(), ds, opts)
			require.NoError(t, err)
			assert.Positive(t, result.Report.Missing.Total)
			tt.check(t, result)
		})
	}
}

func sumMissing(ds *dataset.Dataset) int {
	n := 0
	for _, row := range ds.Rows {
		for _, v := range row {
			if v.IsMissing() {
				n++
			}
		}
	}
	return n
}

func TestRunAddsSyntheticIDColumn(t *testing.T) {
	fixture := testkit.TenRowScenario()
	opts := DefaultOptions()
	opts.IDColumn = "row_id"

	result, err := newService().Run(context.Background(), fixture.Dataset, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"reading", "row_id"}, result.Cleaned.Columns)
	assert.Equal(t, 1, result.Report.DuplicateCount, "row ids must not defeat duplicate detection")
	assert.Equal(t, 1, result.Report.OutlierCount)
	assert.True(t, result.Flags.Outlier[6])
}

func TestRunWithOutliersDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Outliers.Enabled = false
	opts.Outliers.Contamination = 0 // not validated when disabled

	result, err := newService().Run(context.Background(), testkit.TenRowScenario().Dataset, opts)
	require.NoError(t, err)
	assert.Nil(t, result.Flags.Outlier)
	assert.Zero(t, result.Report.OutlierCount)
}

func TestRunRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	ds := testkit.TenRowScenario().Dataset

	_, err := svc.Run(ctx, dataset.New("a"), DefaultOptions())
	assert.True(t, core.IsConfigurationError(err), "empty dataset")

	opts := DefaultOptions()
	opts.Outliers.Contamination = 0.7
	_, err = svc.Run(ctx, ds, opts)
	assert.True(t, core.IsConfigurationError(err))

	opts = DefaultOptions()
	opts.ImputeMethod = "median"
	_, err = svc.Run(ctx, ds, opts)
	assert.True(t, core.IsConfigurationError(err))

	opts = DefaultOptions()
	opts.MissingStrategy = "guess"
	_, err = svc.Run(ctx, ds, opts)
	assert.True(t, core.IsConfigurationError(err))

	opts = DefaultOptions()
	opts.Outliers.Trees = 0
	_, err = svc.Run(ctx, ds, opts)
	assert.True(t, core.IsConfigurationError(err))

	_, err = svc.Run(ctx, nil, DefaultOptions())
	assert.True(t, core.IsInputError(err))
}

func TestAnnotateFlags(t *testing.T) {
	fixture := testkit.TenRowScenario()
	result, err := newService().Run(context.Background(), fixture.Dataset, DefaultOptions())
	require.NoError(t, err)

	annotated, err := result.Annotated()
	require.NoError(t, err)
	assert.Equal(t, []string{"reading", DuplicateColumn, OutlierColumn}, annotated.Columns)
	assert.Equal(t, "true", annotated.Rows[9][1].AsString())
	assert.Equal(t, "true", annotated.Rows[6][2].AsString())
	assert.Equal(t, "false", annotated.Rows[0][2].AsString())
	assert.Equal(t, []string{"reading"}, result.Working.Columns, "working dataset stays free of flags")

	_, err = AnnotateFlags(fixture.Dataset, quality.RowFlags{Outlier: []bool{true}})
	assert.True(t, core.IsInputError(err))

	plain, err := AnnotateFlags(fixture.Dataset, quality.RowFlags{})
	require.NoError(t, err)
	assert.True(t, plain.Equal(fixture.Dataset))
}

func TestReportRendering(t *testing.T) {
	fixture := testkit.NewGenerator(8).Build(80, testkit.WithMissingRate(0.05), testkit.WithDuplicates(2), testkit.WithOutliers(1))
	opts := DefaultOptions()
	opts.IgnoreColumns = []string{"customer_id"}

	result, err := newService().Run(context.Background(), fixture.Dataset, opts)
	require.NoError(t, err)

	md := result.Report.Markdown()
	assert.Contains(t, md, "# Data quality report")
	assert.Contains(t, md, result.Report.RunID.String())
	assert.Contains(t, md, "| Rows before | 82 |")
	assert.Contains(t, md, "## Missing values")
	assert.Contains(t, md, "## Outliers")
	assert.Contains(t, md, "| income |")

	page := result.Report.HTML()
	assert.True(t, strings.Contains(page, "<table>"))
	assert.Contains(t, page, "<h1")
	assert.Contains(t, page, "Data quality report")
}
