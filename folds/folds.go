// Package folds partitions a dataset for k-fold cross-validation and
// reassembles per-fold out-of-sample results into one ordered collection.
package folds

import (
	"fmt"
	"math/rand"
	"sort"
)

// Split assigns each of n items to exactly one of k validation folds. The
// assignment is a deterministic function of the seed: the same n, k and seed
// always produce the same partition. Indices within a fold come back sorted.
func Split(n, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("cannot split %d items into %d folds", n, k)
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	folds := make([][]int, k)
	base := n / k
	extra := n % k
	cursor := 0
	for f := 0; f < k; f++ {
		size := base
		if f < extra {
			size++
		}
		fold := make([]int, size)
		copy(fold, perm[cursor:cursor+size])
		sort.Ints(fold)
		folds[f] = fold
		cursor += size
	}
	return folds, nil
}

// Assemble merges per-fold results into one slice ordered by item index.
// results[f][i] is the result for item folds[f][i]. Every item must appear
// exactly once across the folds; holes and duplicates are errors rather
// than silent gaps.
func Assemble[T any](n int, folds [][]int, results [][]T) ([]T, error) {
	if len(results) != len(folds) {
		return nil, fmt.Errorf("%d result groups for %d folds", len(results), len(folds))
	}

	out := make([]T, n)
	filled := make([]bool, n)
	for f, fold := range folds {
		if len(results[f]) != len(fold) {
			return nil, fmt.Errorf("fold %d has %d results for %d items", f, len(results[f]), len(fold))
		}
		for i, idx := range fold {
			if idx < 0 || idx >= n {
				return nil, fmt.Errorf("fold %d contains index %d outside [0,%d)", f, idx, n)
			}
			if filled[idx] {
				return nil, fmt.Errorf("item %d assigned to more than one fold", idx)
			}
			out[idx] = results[f][i]
			filled[idx] = true
		}
	}
	for idx, ok := range filled {
		if !ok {
			return nil, fmt.Errorf("item %d missing from every fold", idx)
		}
	}
	return out, nil
}
