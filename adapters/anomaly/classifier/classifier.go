// Package classifier turns anomaly scores into outlier flags
package classifier

import (
	"math"
	"sort"

	"gocleanse/domain/core"
	"gocleanse/domain/quality"
)

// OutlierClassifier flags the highest-scoring share of rows
type OutlierClassifier struct {
	contamination float64
}

// NewOutlierClassifier validates contamination and returns a classifier
func NewOutlierClassifier(contamination float64) (*OutlierClassifier, error) {
	if err := core.ValidateContamination(contamination); err != nil {
		return nil, err
	}
	return &OutlierClassifier{contamination: contamination}, nil
}

// Contamination returns the configured outlier share
func (c *OutlierClassifier) Contamination() float64 {
	return c.contamination
}

// FlagCount is round(contamination * n), half away from zero
func FlagCount(contamination float64, n int) int {
	return int(math.Round(contamination * float64(n)))
}

// Classify flags exactly FlagCount(contamination, len(scores)) rows: those
// with the highest scores. Among equal scores the earlier row wins.
func (c *OutlierClassifier) Classify(scores []float64) []bool {
	flags := make([]bool, len(scores))
	k := FlagCount(c.contamination, len(scores))
	if k == 0 {
		return flags
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	for _, i := range order[:k] {
		flags[i] = true
	}
	return flags
}

// Report classifies scores and packages them as an OutlierReport
func (c *OutlierClassifier) Report(scores []float64) quality.OutlierReport {
	flags := c.Classify(scores)
	return quality.OutlierReport{
		Scores:        scores,
		Flags:         flags,
		Count:         quality.CountTrue(flags),
		Contamination: c.contamination,
	}
}

// Classify is a convenience wrapper for one-off use
func Classify(scores []float64, contamination float64) ([]bool, error) {
	c, err := NewOutlierClassifier(contamination)
	if err != nil {
		return nil, err
	}
	return c.Classify(scores), nil
}
