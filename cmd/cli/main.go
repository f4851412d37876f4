package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gocleanse/internal"
	"gocleanse/internal/config"
	"gocleanse/internal/errors"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not read .env: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

// sourceFlags select where a command reads its dataset from
type sourceFlags struct {
	dbURL string
	query string
	sheet string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dbURL, "db-url", "", "Database URL to query instead of a file (defaults to DATABASE_URL)")
	cmd.Flags().StringVar(&f.query, "query", "", "SQL query whose result set is the dataset")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "XLSX sheet to read (defaults to the first)")
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "gocleanse",
		Short:         "Profile and clean tabular datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `gocleanse detects missing values, duplicate rows and statistical outliers
in CSV, XLSX or SQL query results.

Defaults come from CLEANSE_* environment variables (and a .env file when
present); command-line flags override them.`,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, debug, trace (defaults to LOG_LEVEL)")

	loadEnv := func() (*config.Config, *internal.Logger, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		return cfg, internal.NewLogger(internal.ParseLogLevel(level)), nil
	}

	rootCmd.AddCommand(
		newProfileCmd(loadEnv),
		newCleanCmd(loadEnv),
	)
	return rootCmd
}
