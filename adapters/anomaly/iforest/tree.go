package iforest

import (
	"math"
	"math/rand"
)

// eulerGamma is the Euler-Mascheroni constant used in the harmonic approximation
const eulerGamma = 0.5772156649015329

// node is either an internal split or a leaf. Leaves record how many
// sample rows reached them and the depth they terminated at.
type node struct {
	leaf    bool
	feature int
	split   float64
	left    *node
	right   *node
	size    int
	depth   int
}

// Tree is one randomized isolation tree. It is immutable once built.
type Tree struct {
	root        *node
	heightLimit int
}

// averagePathLength is c(n): the average path length of an unsuccessful
// search in a binary search tree of n items.
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(float64(n-1))+eulerGamma) - 2*float64(n-1)/float64(n)
}

// treeBuilder owns the random source and sample of a single tree
type treeBuilder struct {
	rows        [][]float64
	rng         *rand.Rand
	heightLimit int
	candidates  []int
	lows, highs []float64
}

func buildTree(rows [][]float64, sample []int, rng *rand.Rand, heightLimit int) *Tree {
	features := 0
	if len(rows) > 0 {
		features = len(rows[0])
	}
	b := &treeBuilder{
		rows:        rows,
		rng:         rng,
		heightLimit: heightLimit,
		candidates:  make([]int, 0, features),
		lows:        make([]float64, features),
		highs:       make([]float64, features),
	}
	return &Tree{root: b.grow(sample, 0), heightLimit: heightLimit}
}

// grow partitions sample recursively. A node becomes a leaf when it holds
// at most one row, when every feature is constant across its rows, or when
// the height limit is reached.
func (b *treeBuilder) grow(sample []int, depth int) *node {
	if len(sample) <= 1 || depth >= b.heightLimit {
		return &node{leaf: true, size: len(sample), depth: depth}
	}

	b.splittableFeatures(sample)
	if len(b.candidates) == 0 {
		return &node{leaf: true, size: len(sample), depth: depth}
	}

	feature := b.candidates[b.rng.Intn(len(b.candidates))]
	low, high := b.lows[feature], b.highs[feature]
	split := low + b.rng.Float64()*(high-low)

	// In-place partition; left keeps rows strictly below the split,
	// everything else (including NaN) goes right.
	i := 0
	for k, row := range sample {
		if b.rows[row][feature] < split {
			sample[i], sample[k] = sample[k], sample[i]
			i++
		}
	}

	return &node{
		feature: feature,
		split:   split,
		depth:   depth,
		size:    len(sample),
		left:    b.grow(sample[:i], depth+1),
		right:   b.grow(sample[i:], depth+1),
	}
}

// splittableFeatures fills b.candidates with features that have a nonzero
// range over sample, ignoring NaN cells
func (b *treeBuilder) splittableFeatures(sample []int) {
	b.candidates = b.candidates[:0]
	for f := range b.lows {
		b.lows[f], b.highs[f] = math.Inf(1), math.Inf(-1)
	}
	for _, row := range sample {
		for f, v := range b.rows[row] {
			if math.IsNaN(v) {
				continue
			}
			if v < b.lows[f] {
				b.lows[f] = v
			}
			if v > b.highs[f] {
				b.highs[f] = v
			}
		}
	}
	for f := range b.lows {
		if b.highs[f] > b.lows[f] {
			b.candidates = append(b.candidates, f)
		}
	}
}

// PathLength returns h(x): the depth of the leaf x falls into plus the
// size correction c(leaf size)
func (t *Tree) PathLength(x []float64) float64 {
	n := t.root
	for !n.leaf {
		if x[n.feature] < n.split {
			n = n.left
		} else {
			n = n.right
		}
	}
	return float64(n.depth) + averagePathLength(n.size)
}

// Depth returns the deepest leaf depth of the tree
func (t *Tree) Depth() int {
	return depthOf(t.root)
}

func depthOf(n *node) int {
	if n.leaf {
		return n.depth
	}
	return max(depthOf(n.left), depthOf(n.right))
}

// Leaves returns the number of leaves and the total sample size they hold
func (t *Tree) Leaves() (count, size int) {
	var walk func(*node)
	walk = func(n *node) {
		if n.leaf {
			count++
			size += n.size
			return
		}
		walk(n.left)
		walk(n.right)
	}
	walk(t.root)
	return count, size
}
