package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gocleanse/app"
	"gocleanse/domain/core"
	"gocleanse/domain/quality"
	"gocleanse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Cleaning CleaningConfig
	Outliers OutlierConfig
	Database DatabaseConfig
	LogLevel string
}

// CleaningConfig holds the missing-value and duplicate stage settings
type CleaningConfig struct {
	MissingStrategy  quality.MissingStrategy
	ImputeMethod     quality.ImputeMethod
	Neighbors        int
	RemoveDuplicates bool
	IDColumn         string
	IgnoreColumns    []string
}

// OutlierConfig holds the isolation forest and classifier settings
type OutlierConfig struct {
	Enabled            bool
	Contamination      float64
	Trees              int
	SampleSize         int
	Seed               int64
	Workers            int
	Remove             bool
	TimestampThreshold float64
}

// DatabaseConfig holds the optional SQL source connection
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it.
// Malformed values are errors rather than silently replaced by defaults.
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	cleaning, err := loadCleaningConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cleaning configuration")
	}
	config.Cleaning = *cleaning

	outliers, err := loadOutlierConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load outlier configuration")
	}
	config.Outliers = *outliers

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadCleaningConfig() (*CleaningConfig, error) {
	strategy, err := quality.ParseMissingStrategy(getEnvOrDefault("CLEANSE_MISSING_STRATEGY", string(quality.MissingImpute)))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	method, err := quality.ParseImputeMethod(getEnvOrDefault("CLEANSE_IMPUTE_METHOD", string(quality.DefaultImputeMethod)))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	neighbors, err := getEnvInt("CLEANSE_KNN_K", 2)
	if err != nil {
		return nil, err
	}
	removeDuplicates, err := getEnvBool("CLEANSE_REMOVE_DUPLICATES", true)
	if err != nil {
		return nil, err
	}

	return &CleaningConfig{
		MissingStrategy:  strategy,
		ImputeMethod:     method,
		Neighbors:        neighbors,
		RemoveDuplicates: removeDuplicates,
		IDColumn:         getEnvOrDefault("CLEANSE_ID_COLUMN", ""),
		IgnoreColumns:    splitList(getEnvOrDefault("CLEANSE_IGNORE_COLUMNS", "")),
	}, nil
}

func loadOutlierConfig() (*OutlierConfig, error) {
	defaults := app.DefaultOutlierOptions()
	cfg := &OutlierConfig{}
	var err error

	if cfg.Enabled, err = getEnvBool("CLEANSE_OUTLIERS", true); err != nil {
		return nil, err
	}
	if cfg.Contamination, err = getEnvFloat("CLEANSE_CONTAMINATION", defaults.Contamination); err != nil {
		return nil, err
	}
	if cfg.Trees, err = getEnvInt("CLEANSE_TREES", defaults.Trees); err != nil {
		return nil, err
	}
	if cfg.SampleSize, err = getEnvInt("CLEANSE_SAMPLE_SIZE", defaults.SampleSize); err != nil {
		return nil, err
	}
	seed, err := getEnvInt("CLEANSE_SEED", int(defaults.Seed))
	if err != nil {
		return nil, err
	}
	cfg.Seed = int64(seed)
	if cfg.Workers, err = getEnvInt("CLEANSE_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.Remove, err = getEnvBool("CLEANSE_REMOVE_OUTLIERS", false); err != nil {
		return nil, err
	}
	if cfg.TimestampThreshold, err = getEnvFloat("CLEANSE_TIMESTAMP_THRESHOLD", defaults.TimestampThreshold); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(config *Config) error {
	if err := core.ValidateContamination(config.Outliers.Contamination); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if config.Outliers.Trees < 1 {
		return errors.ConfigInvalid("CLEANSE_TREES must be at least 1")
	}
	if config.Outliers.SampleSize < 1 {
		return errors.ConfigInvalid("CLEANSE_SAMPLE_SIZE must be at least 1")
	}
	if t := config.Outliers.TimestampThreshold; t <= 0 || t > 1 {
		return errors.ConfigInvalid("CLEANSE_TIMESTAMP_THRESHOLD must be in (0, 1]")
	}
	if config.Cleaning.Neighbors < 1 {
		return errors.ConfigInvalid("CLEANSE_KNN_K must be at least 1")
	}
	return nil
}

// Options converts the configuration into pipeline options
func (c *Config) Options() app.Options {
	return app.Options{
		MissingStrategy:  c.Cleaning.MissingStrategy,
		ImputeMethod:     c.Cleaning.ImputeMethod,
		Neighbors:        c.Cleaning.Neighbors,
		RemoveDuplicates: c.Cleaning.RemoveDuplicates,
		IgnoreColumns:    append([]string(nil), c.Cleaning.IgnoreColumns...),
		IDColumn:         c.Cleaning.IDColumn,
		Outliers: app.OutlierOptions{
			Enabled:            c.Outliers.Enabled,
			Contamination:      c.Outliers.Contamination,
			Trees:              c.Outliers.Trees,
			SampleSize:         c.Outliers.SampleSize,
			Seed:               c.Outliers.Seed,
			Workers:            c.Outliers.Workers,
			Remove:             c.Outliers.Remove,
			TimestampThreshold: c.Outliers.TimestampThreshold,
		},
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s=%q is not an integer", key, value))
	}
	return intValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s=%q is not a number", key, value))
	}
	return floatValue, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.ConfigInvalid(fmt.Sprintf("%s=%q is not a boolean", key, value))
	}
	return boolValue, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
