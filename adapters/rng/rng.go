package rng

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// SeededAdapter hands out independent math/rand sources derived from a
// base seed. It keeps no shared state, so streams may be used from
// different goroutines concurrently.
type SeededAdapter struct{}

// NewSeededAdapter creates the adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// SeededStream returns a generator seeded exactly with seed
func (r *SeededAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Stream mixes runID, stageName and key into baseSeed so identical inputs
// always produce identical draws
func (r *SeededAdapter) Stream(ctx context.Context, runID, stageName, key string, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed
	for _, part := range []string{runID, stageName, key} {
		if part != "" {
			seed += int64(hashString(part))
		}
	}
	return r.SeededStream(ctx, stageName, seed)
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
