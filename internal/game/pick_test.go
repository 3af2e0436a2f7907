package game

import (
	"math"
	"math/rand"
	"testing"
)

type weighted struct {
	name   string
	weight float64
}

func pickCounts(t *testing.T, items []weighted, exponent float64, trials int) map[string]int {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		picked, ok := PickWeighted(rng, items, func(w weighted) float64 { return w.weight }, exponent)
		if !ok {
			t.Fatal("pick failed on non-empty input")
		}
		counts[picked.name]++
	}
	return counts
}

func TestPickWeightedEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, ok := PickWeighted(rng, nil, func(w weighted) float64 { return w.weight }, 1)
	if ok {
		t.Fatal("expected no pick from an empty slice")
	}
}

func TestPickWeightedZeroExponentIsUniform(t *testing.T) {
	items := []weighted{{"a", 1}, {"b", 1000}, {"c", 0}}
	counts := pickCounts(t, items, 0, 30000)
	for _, it := range items {
		got := float64(counts[it.name]) / 30000
		if got < 0.28 || got > 0.39 {
			t.Fatalf("item %s picked with frequency %.3f, want near 1/3", it.name, got)
		}
	}
}

func TestPickWeightedFavorsHeavyAtHighExponent(t *testing.T) {
	items := []weighted{{"light", 10}, {"heavy", 20}}
	counts := pickCounts(t, items, 4, 10000)
	// 20^4 : 10^4 is 16 : 1.
	got := float64(counts["heavy"]) / 10000
	if got < 0.90 {
		t.Fatalf("heavy item picked with frequency %.3f, want > 0.90", got)
	}
	if counts["light"] == 0 {
		t.Fatal("light item should still be reachable")
	}
}

func TestPickWeightedPositiveInfinityIsArgmax(t *testing.T) {
	items := []weighted{{"a", 1}, {"b", 5}, {"c", 5}, {"d", 2}}
	counts := pickCounts(t, items, math.Inf(1), 2000)
	if counts["a"] != 0 || counts["d"] != 0 {
		t.Fatalf("non-maximum items picked: %v", counts)
	}
	if counts["b"] == 0 || counts["c"] == 0 {
		t.Fatalf("expected ties to share the picks: %v", counts)
	}
}

func TestPickWeightedNegativeInfinityIsArgmin(t *testing.T) {
	items := []weighted{{"a", 1}, {"b", 5}, {"c", 1}}
	counts := pickCounts(t, items, math.Inf(-1), 2000)
	if counts["b"] != 0 {
		t.Fatalf("maximum item picked under argmin: %v", counts)
	}
	if counts["a"] == 0 || counts["c"] == 0 {
		t.Fatalf("expected minimum ties to share the picks: %v", counts)
	}
}

func TestPickWeightedZeroWeightNegativeExponent(t *testing.T) {
	// 0 raised to a negative power dominates everything else.
	items := []weighted{{"zero", 0}, {"big", 1000}}
	counts := pickCounts(t, items, -2, 500)
	if counts["big"] != 0 {
		t.Fatalf("expected picks restricted to the zero-weight item: %v", counts)
	}
}

func TestPickWeightedAllZeroFallsBackToUniform(t *testing.T) {
	items := []weighted{{"a", 0}, {"b", 0}}
	counts := pickCounts(t, items, 2, 2000)
	if counts["a"] == 0 || counts["b"] == 0 {
		t.Fatalf("expected a uniform fallback: %v", counts)
	}
}

func TestPickWeightedClampsNegativeWeights(t *testing.T) {
	items := []weighted{{"neg", -5}, {"pos", 3}}
	counts := pickCounts(t, items, 1, 2000)
	if counts["neg"] != 0 {
		t.Fatalf("negative weight should clamp to zero: %v", counts)
	}
}

func TestPickWeightedDeterministicWithSeed(t *testing.T) {
	items := []weighted{{"a", 1}, {"b", 2}, {"c", 3}}
	run := func() []string {
		rng := rand.New(rand.NewSource(42))
		var out []string
		for i := 0; i < 50; i++ {
			p, _ := PickWeighted(rng, items, func(w weighted) float64 { return w.weight }, 2)
			out = append(out, p.name)
		}
		return out
	}
	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sequence diverged at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestPickSubset(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := []string{"a", "b", "c", "d", "e"}

	got := PickSubset(rng, items, 3, nil)
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}
	seen := make(map[string]bool)
	for _, g := range got {
		if seen[g] {
			t.Fatalf("duplicate item %q", g)
		}
		seen[g] = true
	}

	rest := PickSubset(rng, items, 3, got)
	for _, r := range rest {
		if seen[r] {
			t.Fatalf("item %q drawn twice across calls", r)
		}
	}

	all := PickSubset(rng, items, 10, nil)
	if len(all) != len(items) {
		t.Fatalf("oversized request returned %d items, want all %d", len(all), len(items))
	}
}
