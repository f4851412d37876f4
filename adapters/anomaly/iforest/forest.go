// Package iforest scores rows of a numeric matrix with an isolation forest:
// an ensemble of randomized partition trees in which anomalies are
// isolated after fewer splits than normal points.
//
// https://cs.nju.edu.cn/zhouzh/zhouzh.files/publication/icdm08b.pdf
package iforest

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"gocleanse/adapters/rng"
	"gocleanse/domain/core"
	"gocleanse/internal"
	"gocleanse/ports"
)

const (
	defaultTreeCount  = 100
	defaultSampleSize = 256
	defaultSeed       = 42
)

// Config holds the ensemble parameters
type Config struct {
	TreeCount  int   `json:"tree_count"`
	SampleSize int   `json:"sample_size"` // ψ upper bound; the effective size is min(SampleSize, rows)
	Seed       int64 `json:"seed"`        // tree i draws from a stream seeded with Seed+i
	Workers    int   `json:"workers"`     // concurrent trees; < 1 means GOMAXPROCS
}

// DefaultConfig returns the standard isolation forest settings
func DefaultConfig() Config {
	return Config{
		TreeCount:  defaultTreeCount,
		SampleSize: defaultSampleSize,
		Seed:       defaultSeed,
		Workers:    runtime.GOMAXPROCS(0),
	}
}

// Validate checks the structural parameters
func (c Config) Validate() error {
	if c.TreeCount < 1 {
		return core.NewConfigurationError("tree count", fmt.Sprintf("%d must be at least 1", c.TreeCount))
	}
	if c.SampleSize < 1 {
		return core.NewConfigurationError("sample size", fmt.Sprintf("%d must be at least 1", c.SampleSize))
	}
	return nil
}

// Ensemble fits isolation forests
type Ensemble struct {
	config Config
	rng    ports.RNGPort
	logger *internal.Logger
}

// NewEnsemble creates an ensemble. A nil rngPort uses the seeded adapter.
func NewEnsemble(config Config, rngPort ports.RNGPort, logger *internal.Logger) *Ensemble {
	if rngPort == nil {
		rngPort = rng.NewSeededAdapter()
	}
	if logger == nil {
		logger = internal.NopLogger()
	}
	if config.Workers < 1 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{config: config, rng: rngPort, logger: logger}
}

// Forest is a fitted, immutable ensemble of trees
type Forest struct {
	trees       []*Tree
	sampleSize  int
	heightLimit int
	features    int
	workers     int
}

// Fit builds TreeCount trees, each over a sub-sample of min(SampleSize, rows)
// rows drawn without replacement. Trees are built concurrently; each owns
// its random stream so the result depends only on the seed.
func (e *Ensemble) Fit(ctx context.Context, X mat.Matrix) (*Forest, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	rows, err := denseRows(X)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	n := len(rows)
	psi := min(e.config.SampleSize, n)
	forest := &Forest{
		trees:       make([]*Tree, e.config.TreeCount),
		sampleSize:  psi,
		heightLimit: int(math.Ceil(math.Log2(float64(psi)))),
		features:    len(rows[0]),
		workers:     e.config.Workers,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for i := range forest.trees {
		i := i
		g.Go(func() error {
			r, err := e.rng.SeededStream(gctx, fmt.Sprintf("iforest-tree-%d", i), e.config.Seed+int64(i))
			if err != nil {
				return err
			}
			sample := r.Perm(n)[:psi]
			forest.trees[i] = buildTree(rows, sample, r, forest.heightLimit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fitting isolation forest: %w", err)
	}

	e.logger.Debug("[IsolationEnsemble] fitted %d trees (psi=%d, height limit=%d) over %dx%d in %v",
		len(forest.trees), psi, forest.heightLimit, n, forest.features, time.Since(start))
	return forest, nil
}

// FitScore fits a forest on X and scores every row of X. contamination is
// validated here so a bad value fails before any work is done.
func (e *Ensemble) FitScore(ctx context.Context, X mat.Matrix, contamination float64) ([]float64, error) {
	if err := core.ValidateContamination(contamination); err != nil {
		return nil, err
	}
	forest, err := e.Fit(ctx, X)
	if err != nil {
		return nil, err
	}
	return forest.Score(ctx, X)
}

// Score returns one anomaly score in [0, 1] per row of X, computed as
// 2^(-E[h(x)] / c(ψ)). Scores near 1 mean the row is isolated quickly.
func (f *Forest) Score(ctx context.Context, X mat.Matrix) ([]float64, error) {
	rows, err := denseRows(X)
	if err != nil {
		return nil, err
	}
	if len(rows[0]) != f.features {
		return nil, core.NewInputError(fmt.Sprintf("matrix has %d columns, forest was fitted on %d", len(rows[0]), f.features))
	}

	// paths[t][i] is h(x_i) in tree t; summing in tree order after all
	// goroutines finish keeps the reduction independent of scheduling.
	paths := make([][]float64, len(f.trees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.workers, 1))
	for t, tree := range f.trees {
		t, tree := t, tree
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lengths := make([]float64, len(rows))
			for i, x := range rows {
				lengths[i] = tree.PathLength(x)
			}
			paths[t] = lengths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring isolation forest: %w", err)
	}

	scores := make([]float64, len(rows))
	norm := averagePathLength(f.sampleSize)
	for i := range rows {
		if norm == 0 {
			scores[i] = 0.5
			continue
		}
		sum := 0.0
		for t := range paths {
			sum += paths[t][i]
		}
		scores[i] = math.Pow(2, -(sum/float64(len(paths)))/norm)
	}
	return scores, nil
}

// Trees returns the fitted trees
func (f *Forest) Trees() []*Tree {
	return f.trees
}

// SampleSize returns the effective ψ
func (f *Forest) SampleSize() int {
	return f.sampleSize
}

// HeightLimit returns ceil(log2 ψ)
func (f *Forest) HeightLimit() int {
	return f.heightLimit
}

// denseRows copies a matrix into row slices
func denseRows(X mat.Matrix) ([][]float64, error) {
	if X == nil {
		return nil, core.NewInputError("matrix is nil")
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, core.NewInputError("matrix has no rows or columns")
	}
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	return rows, nil
}
