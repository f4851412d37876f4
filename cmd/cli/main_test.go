package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/internal/errors"
)

const readingsCSV = `sensor,reading,taken_on
s1,10,2024-01-01
s2,11,2024-01-02
s3,12,2024-01-03
s4,13,2024-01-04
s5,14,2024-01-05
s6,15,2024-01-06
s7,1200,2024-01-07
s8,9,2024-01-08
s9,16,2024-01-09
s3,12,2024-01-03
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readings.csv")
	require.NoError(t, os.WriteFile(path, []byte(readingsCSV), 0o644))
	return path
}

func TestProfileCommand(t *testing.T) {
	out, err := runCLI(t, "profile", writeCSV(t))
	require.NoError(t, err)

	assert.Contains(t, out, "10 rows x 3 columns, 0 missing cells")
	assert.Regexp(t, `sensor\s+categorical`, out)
	assert.Regexp(t, `reading\s+numeric`, out)
	assert.Regexp(t, `taken_on\s+timestamp`, out)
}

func TestCleanCommandMarkdown(t *testing.T) {
	out, err := runCLI(t, "clean", writeCSV(t), "--contamination", "0.1", "--ignore", "sensor")
	require.NoError(t, err)

	assert.Contains(t, out, "# Data quality report")
	assert.Contains(t, out, "| Duplicate rows | 1 (removed) |")
	assert.Contains(t, out, "| Outlier rows | 1 |")
}

func TestCleanCommandJSON(t *testing.T) {
	out, err := runCLI(t, "clean", writeCSV(t), "--json", "--remove-outliers")
	require.NoError(t, err)

	var report struct {
		RowsBefore     int `json:"rows_before"`
		RowsAfter      int `json:"rows_after"`
		DuplicateCount int `json:"duplicate_count"`
		OutlierCount   int `json:"outlier_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 10, report.RowsBefore)
	assert.Equal(t, 1, report.DuplicateCount)
	assert.Equal(t, 1, report.OutlierCount)
	assert.Equal(t, 8, report.RowsAfter)
}

func TestCleanCommandHTML(t *testing.T) {
	out, err := runCLI(t, "clean", writeCSV(t), "--html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<!DOCTYPE html>"))
}

func TestCleanCommandRejectsBadFlags(t *testing.T) {
	_, err := runCLI(t, "clean", writeCSV(t), "--contamination", "0.9")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = runCLI(t, "clean", writeCSV(t), "--impute-method", "median")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = runCLI(t, "clean")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
