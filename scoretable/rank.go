package scoretable

import (
	"math"
	"sort"
)

// Rank assigns ranks by score and returns a new table ordered by (rank, name,
// allele). Ties share the smallest rank any member would have received
// ("min" ranking), so scores 3, 5, 5, 9 rank 1, 2, 2, 4. NaN scores rank after
// every real score. No rows are dropped and the input is not modified.
func Rank(t Table, direction Direction) Table {
	out := make(Table, len(t))
	copy(out, t)

	if len(out) == 0 {
		return out
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return direction.Better(out[order[i]].Score, out[order[j]].Score)
	})

	for i, idx := range order {
		if i > 0 && sameScore(out[idx].Score, out[order[i-1]].Score) {
			out[idx].Rank = out[order[i-1]].Rank
			continue
		}
		out[idx].Rank = i + 1
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Allele < out[j].Allele
	})

	return out
}

func sameScore(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

// Ranked reports whether any record carries a rank.
func Ranked(t Table) bool {
	for _, rec := range t {
		if rec.Rank > 0 {
			return true
		}
	}
	return false
}

// RankEach ranks every (name, allele) run of t on its own, as if each had
// come from a separate prediction. Runs are returned ordered by name, then
// allele.
func RankEach(t Table, direction Direction) Table {
	type key struct{ name, allele string }

	runs := make(map[key]Table)
	keys := make([]key, 0)
	for _, rec := range t {
		k := key{rec.Name, rec.Allele}
		if _, exists := runs[k]; !exists {
			keys = append(keys, k)
		}
		runs[k] = append(runs[k], rec)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].allele < keys[j].allele
	})

	out := make(Table, 0, len(t))
	for _, k := range keys {
		out = append(out, Rank(runs[k], direction)...)
	}

	return out
}
