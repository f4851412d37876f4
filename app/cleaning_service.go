package app

import (
	"context"
	"fmt"
	"time"

	"gocleanse/adapters/anomaly/classifier"
	"gocleanse/adapters/anomaly/iforest"
	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/adapters/quality/duplicate"
	"gocleanse/adapters/quality/missing"
	"gocleanse/adapters/rng"
	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
	"gocleanse/domain/quality"
	"gocleanse/internal"
	summary "gocleanse/internal/profiling"
	"gocleanse/ports"
)

// CleaningService runs the missing, duplicate and outlier stages over a
// dataset and reports what it found
type CleaningService struct {
	rngPort    ports.RNGPort
	duplicates *duplicate.Detector
	summarizer *summary.Summarizer
	logger     *internal.Logger
}

// NewCleaningService creates the service. A nil rngPort uses the seeded adapter.
func NewCleaningService(rngPort ports.RNGPort, logger *internal.Logger) *CleaningService {
	if rngPort == nil {
		rngPort = rng.NewSeededAdapter()
	}
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &CleaningService{
		rngPort:    rngPort,
		duplicates: duplicate.NewDetector(),
		summarizer: summary.NewSummarizer(),
		logger:     logger,
	}
}

// Result is the outcome of a cleaning run. Flags and Scores are indexed by
// the rows of Working, the dataset after the missing-value stage and before
// any row removal. Cleaned has flagged rows removed as configured.
type Result struct {
	Working *dataset.Dataset
	Cleaned *dataset.Dataset
	Flags   quality.RowFlags
	Scores  []float64
	Report  *Report
}

// Annotated returns Working with the flag columns merged in
func (r *Result) Annotated() (*dataset.Dataset, error) {
	return AnnotateFlags(r.Working, r.Flags)
}

// OutlierResult is the outcome of scoring a dataset
type OutlierResult struct {
	quality.OutlierReport
	Profiles []profiling.ColumnProfile  `json:"profiles"`
	Warnings []profiling.EncodingWarning `json:"warnings,omitempty"`
}

// Run executes the pipeline. The input dataset is never modified.
func (s *CleaningService) Run(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if ds.IsEmpty() {
		return nil, core.ErrEmptyDataset
	}

	start := time.Now()
	report := &Report{
		RunID:           core.NewRunID(),
		GeneratedAt:     start.UTC(),
		RowsBefore:      ds.RowCount(),
		MissingStrategy: opts.MissingStrategy,
	}
	s.logger.Info("[Pipeline] run %s: %d rows x %d columns", report.RunID, ds.RowCount(), ds.ColumnCount())

	working := ds
	if opts.IDColumn != "" {
		if _, exists := ds.ColumnIndex(opts.IDColumn); !exists {
			withIDs, err := ds.WithRowIDs(opts.IDColumn)
			if err != nil {
				return nil, err
			}
			working = withIDs
		}
	}
	ignore := opts.ignored()

	// Missing values
	handler := missing.NewHandler(opts.Neighbors, s.logger)
	report.Missing = handler.Detect(working)
	switch opts.MissingStrategy {
	case quality.MissingDrop:
		working = handler.Drop(working)
		s.logger.Debug("[Pipeline] dropped %d rows with missing cells", report.RowsBefore-working.RowCount())
	case quality.MissingKeep:
		working = working.Clone()
	default:
		method, _ := opts.ImputeMethod.Resolve()
		report.ImputeMethod = method
		imputed, err := handler.Impute(working, method)
		if err != nil {
			return nil, fmt.Errorf("imputing missing values: %w", err)
		}
		working = imputed
	}

	// Duplicates
	dups := s.duplicates.Detect(working, ignore...)
	report.DuplicateCount = dups.Count
	report.DuplicatesRemoved = opts.RemoveDuplicates
	flags := quality.RowFlags{Duplicate: dups.Flags}

	// Outliers run over the rows that survive duplicate removal
	var scores []float64
	if opts.Outliers.Enabled && !working.IsEmpty() {
		candidates := make([]bool, working.RowCount())
		var index []int
		for i := range candidates {
			candidates[i] = !(opts.RemoveDuplicates && dups.Flags[i])
			if candidates[i] {
				index = append(index, i)
			}
		}

		outliers, err := s.DetectOutliers(ctx, working.SelectRows(candidates).WithoutColumns(ignore...), opts.Outliers)
		if err != nil {
			return nil, fmt.Errorf("detecting outliers: %w", err)
		}

		flags.Outlier = make([]bool, working.RowCount())
		scores = make([]float64, working.RowCount())
		for i := range scores {
			scores[i] = -1
		}
		for k, i := range index {
			flags.Outlier[i] = outliers.Flags[k]
			scores[i] = outliers.Scores[k]
		}
		report.OutlierCount = outliers.Count
		report.OutliersRemoved = opts.Outliers.Remove
		report.Contamination = outliers.Contamination
		report.Profiles = outliers.Profiles
		report.Warnings = outliers.Warnings
		report.TopOutliers = topOutliers(flags.Outlier, scores)
	} else if opts.Outliers.Enabled {
		s.logger.Warn("[Pipeline] no rows left after the missing-value stage, skipping outlier detection")
	}

	keep := make([]bool, working.RowCount())
	for i := range keep {
		keep[i] = !(opts.RemoveDuplicates && dups.Flags[i]) &&
			!(opts.Outliers.Remove && flags.Outlier != nil && flags.Outlier[i])
	}
	cleaned := working.SelectRows(keep)

	report.RowsAfter = cleaned.RowCount()
	report.Columns = cleaned.ColumnCount()
	report.Summaries = s.summarizer.Summarize(cleaned)
	report.Elapsed = time.Since(start)

	s.logger.Info("[Pipeline] run %s finished in %v: %d -> %d rows, %d duplicates, %d outliers",
		report.RunID, report.Elapsed, report.RowsBefore, report.RowsAfter, report.DuplicateCount, report.OutlierCount)

	return &Result{
		Working: working,
		Cleaned: cleaned,
		Flags:   flags,
		Scores:  scores,
		Report:  report,
	}, nil
}

// DetectOutliers encodes ds, scores every row with an isolation forest and
// flags the top share given by opts.Contamination. Nothing is removed.
func (s *CleaningService) DetectOutliers(ctx context.Context, ds *dataset.Dataset, opts OutlierOptions) (*OutlierResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if ds.IsEmpty() {
		return nil, core.ErrEmptyDataset
	}
	cls, err := classifier.NewOutlierClassifier(opts.Contamination)
	if err != nil {
		return nil, err
	}

	encoded, err := coercer.NewTypeCoercer(opts.coercionConfig()).ClassifyAndEncode(ds)
	if err != nil {
		return nil, err
	}
	for _, w := range encoded.Warnings {
		s.logger.Warn("[Pipeline] %s", w.Message)
	}

	scores, err := iforest.NewEnsemble(opts.forestConfig(), s.rngPort, s.logger).FitScore(ctx, encoded.Matrix, opts.Contamination)
	if err != nil {
		return nil, err
	}

	return &OutlierResult{
		OutlierReport: cls.Report(scores),
		Profiles:      encoded.Profiles,
		Warnings:      encoded.Warnings,
	}, nil
}
