package app

import (
	"fmt"

	"gocleanse/adapters/anomaly/iforest"
	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/domain/core"
	"gocleanse/domain/quality"
)

// OutlierOptions configures the outlier stage
type OutlierOptions struct {
	Enabled       bool    `json:"enabled"`
	Contamination float64 `json:"contamination"` // share of rows flagged, (0, 0.5]
	Trees         int     `json:"trees"`
	SampleSize    int     `json:"sample_size"`
	Seed          int64   `json:"seed"`
	Workers       int     `json:"workers"`
	Remove        bool    `json:"remove"` // drop flagged rows from the cleaned dataset

	// TimestampThreshold is the parsed share above which a text column is
	// encoded as a timestamp
	TimestampThreshold float64 `json:"timestamp_threshold"`
}

// Options configures a cleaning run
type Options struct {
	MissingStrategy  quality.MissingStrategy `json:"missing_strategy"`
	ImputeMethod     quality.ImputeMethod    `json:"impute_method"`
	Neighbors        int                     `json:"neighbors"`
	RemoveDuplicates bool                    `json:"remove_duplicates"`

	// IgnoreColumns are left out of duplicate comparison and outlier scoring
	IgnoreColumns []string `json:"ignore_columns,omitempty"`
	// IDColumn, when set and absent from the input, is added as a synthetic
	// UUID column and ignored like IgnoreColumns
	IDColumn string `json:"id_column,omitempty"`

	Outliers OutlierOptions `json:"outliers"`
}

// DefaultOutlierOptions returns the standard isolation forest settings
func DefaultOutlierOptions() OutlierOptions {
	forest := iforest.DefaultConfig()
	return OutlierOptions{
		Enabled:            true,
		Contamination:      0.1,
		Trees:              forest.TreeCount,
		SampleSize:         forest.SampleSize,
		Seed:               forest.Seed,
		Workers:            forest.Workers,
		TimestampThreshold: coercer.DefaultCoercionConfig().TimestampThreshold,
	}
}

// DefaultOptions imputes with the mean, removes duplicates and flags
// outliers without removing them
func DefaultOptions() Options {
	return Options{
		MissingStrategy:  quality.MissingImpute,
		ImputeMethod:     quality.DefaultImputeMethod,
		RemoveDuplicates: true,
		Outliers:         DefaultOutlierOptions(),
	}
}

// Validate checks every option up front so a run never fails half way on
// bad configuration
func (o Options) Validate() error {
	switch o.MissingStrategy {
	case "", quality.MissingKeep, quality.MissingDrop, quality.MissingImpute:
	default:
		return core.NewConfigurationError("missing strategy", fmt.Sprintf("unknown strategy %q", string(o.MissingStrategy)))
	}
	if _, err := o.ImputeMethod.Resolve(); err != nil {
		return err
	}
	if o.Outliers.Enabled {
		return o.Outliers.Validate()
	}
	return nil
}

// Validate checks the outlier stage options
func (o OutlierOptions) Validate() error {
	if err := core.ValidateContamination(o.Contamination); err != nil {
		return err
	}
	return o.forestConfig().Validate()
}

func (o OutlierOptions) forestConfig() iforest.Config {
	return iforest.Config{
		TreeCount:  o.Trees,
		SampleSize: o.SampleSize,
		Seed:       o.Seed,
		Workers:    o.Workers,
	}
}

func (o OutlierOptions) coercionConfig() coercer.CoercionConfig {
	cfg := coercer.DefaultCoercionConfig()
	if o.TimestampThreshold > 0 {
		cfg.TimestampThreshold = o.TimestampThreshold
	}
	return cfg
}

func (o Options) ignored() []string {
	ignore := append([]string(nil), o.IgnoreColumns...)
	if o.IDColumn != "" {
		ignore = append(ignore, o.IDColumn)
	}
	return ignore
}
