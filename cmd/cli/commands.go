package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/adapters/excel"
	"gocleanse/adapters/quality/missing"
	"gocleanse/adapters/rng"
	"gocleanse/adapters/sqlsource"
	"gocleanse/app"
	"gocleanse/domain/dataset"
	"gocleanse/domain/quality"
	"gocleanse/internal"
	"gocleanse/internal/config"
	"gocleanse/internal/errors"
	"gocleanse/internal/profiling"
	"gocleanse/ports"
)

type envLoader func() (*config.Config, *internal.Logger, error)

func newProfileCmd(loadEnv envLoader) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "profile [file]",
		Short: "Show inferred column types, missing counts and numeric summaries",
		Long: `Profile a dataset without changing it.

Example: gocleanse profile customers.csv
         gocleanse profile --db-url postgres://localhost/shop --query "SELECT * FROM orders"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			ds, err := loadDataset(cmd.Context(), cfg, logger, src, args)
			if err != nil {
				return err
			}
			return writeProfile(cmd.OutOrStdout(), ds, cfg)
		},
	}
	src.register(cmd)
	return cmd
}

func newCleanCmd(loadEnv envLoader) *cobra.Command {
	var (
		src           sourceFlags
		html, asJSON  bool
		contamination float64
		method        string
		strategy      string
		seed          int64
		trees         int
		removeOut     bool
		keepDups      bool
		noOutliers    bool
		autoID        bool
		ignore        []string
	)

	cmd := &cobra.Command{
		Use:   "clean [file]",
		Short: "Run the cleaning pipeline and print a report",
		Long: `Impute or drop missing values, remove duplicate rows and flag outliers
with an isolation forest, then print a markdown report (or HTML with --html).

Example: gocleanse clean customers.csv --contamination 0.05 --impute-method nearest-neighbor --ignore customer_id`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			opts := cfg.Options()

			flags := cmd.Flags()
			if flags.Changed("contamination") {
				opts.Outliers.Contamination = contamination
			}
			if flags.Changed("impute-method") {
				if opts.ImputeMethod, err = quality.ParseImputeMethod(method); err != nil {
					return errors.WithCode(errors.CodeConfigInvalid, err)
				}
			}
			if flags.Changed("missing") {
				if opts.MissingStrategy, err = quality.ParseMissingStrategy(strategy); err != nil {
					return errors.WithCode(errors.CodeConfigInvalid, err)
				}
			}
			if flags.Changed("seed") {
				opts.Outliers.Seed = seed
			}
			if flags.Changed("trees") {
				opts.Outliers.Trees = trees
			}
			if removeOut {
				opts.Outliers.Remove = true
			}
			if keepDups {
				opts.RemoveDuplicates = false
			}
			if noOutliers {
				opts.Outliers.Enabled = false
			}
			opts.IgnoreColumns = append(opts.IgnoreColumns, ignore...)

			ds, err := loadDataset(cmd.Context(), cfg, logger, src, args)
			if err != nil {
				return err
			}
			if autoID {
				if col, ok := excel.DetectEntityColumn(ds); ok {
					logger.Info("[CLI] ignoring detected identifier column %q", col)
					opts.IgnoreColumns = append(opts.IgnoreColumns, col)
				}
			}

			if err := opts.Validate(); err != nil {
				return errors.WithCode(errors.CodeConfigInvalid, err)
			}

			svc := app.NewCleaningService(rng.NewSeededAdapter(), logger)
			result, err := svc.Run(cmd.Context(), ds, opts)
			if err != nil {
				return errors.WithCode(errors.CodePipelineFailed, err)
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result.Report)
			case html:
				_, err = io.WriteString(out, result.Report.HTML())
			default:
				_, err = io.WriteString(out, result.Report.Markdown())
			}
			return err
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&html, "html", false, "Render the report as an HTML page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().Float64Var(&contamination, "contamination", 0.1, "Share of rows flagged as outliers, in (0, 0.5]")
	cmd.Flags().StringVar(&method, "impute-method", "mean", "Imputation method: mean or nearest-neighbor")
	cmd.Flags().StringVar(&strategy, "missing", "impute", "Missing-value strategy: impute, drop or keep")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the isolation forest")
	cmd.Flags().IntVar(&trees, "trees", 100, "Number of isolation trees")
	cmd.Flags().BoolVar(&removeOut, "remove-outliers", false, "Drop flagged outliers from the cleaned dataset")
	cmd.Flags().BoolVar(&keepDups, "keep-duplicates", false, "Flag duplicate rows without removing them")
	cmd.Flags().BoolVar(&noOutliers, "no-outliers", false, "Skip outlier detection")
	cmd.Flags().BoolVar(&autoID, "auto-id", false, "Detect an identifier column and leave it out of comparisons")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Columns left out of duplicate comparison and outlier scoring")

	return cmd
}

// loadDataset reads the file argument, or runs --query against --db-url
// (falling back to DATABASE_URL)
func loadDataset(ctx context.Context, cfg *config.Config, logger *internal.Logger, src sourceFlags, args []string) (*dataset.Dataset, error) {
	var source ports.DatasetSource

	switch {
	case len(args) == 1:
		fileCfg := excel.DefaultConfig(args[0])
		fileCfg.Sheet = src.sheet
		fileCfg.CoercionConfig.TimestampThreshold = cfg.Outliers.TimestampThreshold
		source = excel.NewDataReader(fileCfg, logger)
	case src.query != "":
		url := src.dbURL
		if url == "" {
			url = cfg.Database.URL
		}
		db, err := sqlsource.Connect(ctx, url)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		source = sqlsource.NewQuerySource(db, logger, src.query)
	default:
		return nil, errors.InvalidInput("pass a file or --query (with --db-url or DATABASE_URL)")
	}

	ds, err := source.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load dataset")
	}
	return ds, nil
}

func writeProfile(out io.Writer, ds *dataset.Dataset, cfg *config.Config) error {
	coercionCfg := coercer.DefaultCoercionConfig()
	coercionCfg.TimestampThreshold = cfg.Outliers.TimestampThreshold
	profiles := coercer.NewTypeCoercer(coercionCfg).ClassifyDataset(ds)
	missingReport := missing.NewHandler(cfg.Cleaning.Neighbors, nil).Detect(ds)

	fmt.Fprintf(out, "%d rows x %d columns, %d missing cells\n\n", ds.RowCount(), ds.ColumnCount(), missingReport.Total)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tDISTINCT\tMISSING\tTIMESTAMP RATIO")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f\n", p.Name, p.InferredType, p.DistinctCount, p.MissingCount, p.TimestampRatio)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summaries := profiling.NewSummarizer().Summarize(ds)
	if len(summaries) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tCOUNT\tMEAN\tSTDDEV\tMIN\tMEDIAN\tMAX\tIQR OUTLIERS")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%d\n", s.Column, s.Count, s.Mean, s.StdDev, s.Min, s.Median, s.Max, s.OutlierCount)
	}
	return tw.Flush()
}
