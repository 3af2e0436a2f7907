package game

import (
	"math"
	"math/rand"
)

// PickWeighted selects one item with probability proportional to
// weight^exponent. Negative and NaN weights are clamped to zero.
//
// Degenerate exponents: 0 is a uniform pick, +Inf a uniform pick among the
// maximum-weight items, -Inf a uniform pick among the minimum-weight items.
// A zero weight raised to a negative exponent transforms to +Inf, in which
// case the pick is restricted to those items. A zero weight total falls back
// to a uniform pick.
func PickWeighted[T any](rng *rand.Rand, items []T, weightOf func(T) float64, exponent float64) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}

	weights := make([]float64, len(items))
	for i, it := range items {
		w := weightOf(it)
		if math.IsNaN(w) || w < 0 {
			w = 0
		}
		weights[i] = w
	}

	if exponent == 0 {
		return items[rng.Intn(len(items))], true
	}

	if math.IsInf(exponent, 1) {
		return pickUniformWhere(rng, items, weights, maxOf(weights)), true
	}
	if math.IsInf(exponent, -1) {
		return pickUniformWhere(rng, items, weights, minOf(weights)), true
	}

	transformed := make([]float64, len(weights))
	hasInf := false
	for i, w := range weights {
		if w == 0 && exponent < 0 {
			transformed[i] = math.Inf(1)
			hasInf = true
			continue
		}
		transformed[i] = math.Pow(w, exponent)
	}
	if hasInf {
		return pickUniformWhere(rng, items, transformed, math.Inf(1)), true
	}

	total := 0.0
	for _, w := range transformed {
		if !math.IsNaN(w) {
			total += w
		}
	}
	if total == 0 {
		return items[rng.Intn(len(items))], true
	}

	r := rng.Float64() * total
	for i, w := range transformed {
		if math.IsNaN(w) {
			continue
		}
		if r < w {
			return items[i], true
		}
		r -= w
	}
	// Float rounding can walk past the last bucket.
	return items[len(items)-1], true
}

func pickUniformWhere[T any](rng *rand.Rand, items []T, weights []float64, target float64) T {
	idx := make([]int, 0, len(items))
	for i, w := range weights {
		if w == target {
			idx = append(idx, i)
		}
	}
	return items[idx[rng.Intn(len(idx))]]
}

func maxOf(ws []float64) float64 {
	m := ws[0]
	for _, w := range ws[1:] {
		if w > m {
			m = w
		}
	}
	return m
}

func minOf(ws []float64) float64 {
	m := ws[0]
	for _, w := range ws[1:] {
		if w < m {
			m = w
		}
	}
	return m
}

// PickSubset draws count items uniformly without replacement, excluding any
// already in existing. When fewer than count remain, all of them are
// returned.
func PickSubset[T comparable](rng *rand.Rand, items []T, count int, existing []T) []T {
	taken := make(map[T]bool, len(existing))
	for _, e := range existing {
		taken[e] = true
	}

	available := make([]T, 0, len(items))
	for _, it := range items {
		if !taken[it] {
			available = append(available, it)
		}
	}

	if len(available) <= count {
		return available
	}

	picked := make([]T, 0, count)
	for i := 0; i < count; i++ {
		j := rng.Intn(len(available))
		picked = append(picked, available[j])
		available = append(available[:j], available[j+1:]...)
	}
	return picked
}
