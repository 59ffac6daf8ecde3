// Package promiscuous finds binders supported by several alleles at the same
// protein position, and collapses calls that share a binding core.
package promiscuous

import (
	"sort"

	"github.com/carbocation/epitopes/binders"
	"github.com/carbocation/epitopes/scoretable"
)

// Binder is a peptide position bound by AlleleCount distinct alleles. Score is
// the best score among them. Core and Allele come from a representative
// allele's record.
type Binder struct {
	Name        string  `csv:"name" db:"name" json:"name"`
	Peptide     string  `csv:"peptide" db:"peptide" json:"peptide"`
	Core        string  `csv:"core" db:"core" json:"core"`
	Pos         int     `csv:"pos" db:"pos" json:"pos"`
	Allele      string  `csv:"allele" db:"allele" json:"allele"`
	Score       float64 `csv:"score" db:"score" json:"score"`
	AlleleCount int     `csv:"alleles" db:"alleles" json:"alleles"`
}

type key struct {
	Peptide string
	Pos     int
	Name    string
}

func keyOf(r scoretable.Record) key {
	return key{Peptide: r.Peptide, Pos: r.Pos, Name: r.Name}
}

type group struct {
	key
	alleles map[string]struct{}
	best    float64
}

// Aggregate selects binders from data with sel, keeps the positions bound by at
// least n distinct alleles, and deduplicates them by core. The result is sorted
// by position. No qualifying position yields an empty slice.
//
// Each surviving position takes its core from the record of the
// alphabetically first allele in data that covers it.
func Aggregate(data scoretable.Table, n int, sel *binders.Selector, mode binders.Mode, params binders.Params) ([]Binder, error) {
	if data == nil {
		data = sel.Data
	}

	b, err := sel.Select(data, mode, params)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return []Binder{}, nil
	}

	if params.Name != "" {
		data = data.FilterName(params.Name)
	}

	groups := make(map[key]*group)
	for _, r := range b {
		k := keyOf(r)
		g, exists := groups[k]
		if !exists {
			g = &group{key: k, alleles: make(map[string]struct{}), best: r.Score}
			groups[k] = g
		}
		g.alleles[r.Allele] = struct{}{}
		g.best = sel.Direction.Best(g.best, r.Score)
	}

	kept := make([]*group, 0, len(groups))
	for _, g := range groups {
		if len(g.alleles) >= n {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		return []Binder{}, nil
	}
	sort.Slice(kept, func(i, j int) bool {
		a, b := kept[i].key, kept[j].key
		if a.Peptide != b.Peptide {
			return a.Peptide < b.Peptide
		}
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		return a.Name < b.Name
	})

	reps := representatives(data)

	joined := make([]Binder, 0, len(kept))
	for _, g := range kept {
		out := Binder{
			Name:        g.Name,
			Peptide:     g.Peptide,
			Core:        g.Peptide,
			Pos:         g.Pos,
			Score:       g.best,
			AlleleCount: len(g.alleles),
		}
		if rep, exists := reps[g.key]; exists {
			out.Core = rep.Core
			out.Allele = rep.Allele
		}
		joined = append(joined, out)
	}

	return DedupeByCore(joined, sel.Direction), nil
}

// representatives maps each position to the first record of the alphabetically
// first allele covering it.
func representatives(data scoretable.Table) map[key]scoretable.Record {
	out := make(map[key]scoretable.Record)

	byAllele := data.ByAllele()
	for _, allele := range data.Alleles() {
		for _, r := range byAllele[allele] {
			if _, exists := out[keyOf(r)]; !exists {
				out[keyOf(r)] = r
			}
		}
	}

	return out
}

// DedupeByCore keeps one binder per core: the first one seen, carrying the
// best score of every binder sharing its core. The result is sorted by
// position, then core. Applying it twice gives the same result as once.
func DedupeByCore(bs []Binder, direction scoretable.Direction) []Binder {
	index := make(map[string]int)
	out := make([]Binder, 0, len(bs))
	for _, b := range bs {
		if i, exists := index[b.Core]; exists {
			out[i].Score = direction.Best(out[i].Score, b.Score)
			continue
		}
		index[b.Core] = len(out)
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pos != out[j].Pos {
			return out[i].Pos < out[j].Pos
		}
		return out[i].Core < out[j].Core
	})

	return out
}

// Positions lists the binder positions in order.
func Positions(bs []Binder) []int {
	out := make([]int, len(bs))
	for i, b := range bs {
		out[i] = b.Pos
	}
	return out
}
