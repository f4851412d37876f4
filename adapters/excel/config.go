package excel

import (
	"gocleanse/adapters/datareadiness/coercer"
)

// Config holds configuration for a file data source
type Config struct {
	FilePath       string                 `json:"file_path"`
	Sheet          string                 `json:"sheet,omitempty"` // XLSX only; empty means the first sheet
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultConfig returns defaults for reading path
func DefaultConfig(path string) Config {
	return Config{
		FilePath:       path,
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
