package scoretable

import (
	"math"
	"sort"
)

// Direction states whether a prediction method considers lower scores
// (IC50-like affinities, percentile ranks) or higher scores (PSSM sums,
// propensities) to be stronger binders.
type Direction int

const (
	LowerIsBetter Direction = iota
	HigherIsBetter
)

func (d Direction) String() string {
	if d == HigherIsBetter {
		return "higher-is-better"
	}
	return "lower-is-better"
}

// Better reports whether a is strictly better than b. NaN is never better than
// anything, and everything else is better than NaN.
func (d Direction) Better(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	if d == HigherIsBetter {
		return a > b
	}
	return a < b
}

// Passes is the binder test: score <= cutoff for lower-is-better methods and
// score >= cutoff for higher-is-better ones.
func (d Direction) Passes(score, cutoff float64) bool {
	if d == HigherIsBetter {
		return score >= cutoff
	}
	return score <= cutoff
}

// Best returns whichever of a and b is better.
func (d Direction) Best(a, b float64) float64 {
	if d.Better(b, a) {
		return b
	}
	return a
}

// Record is one scored peptide window of one protein against one allele.
// Score holds the value of the method's score key; Rank is 0 until the table
// has been ranked.
type Record struct {
	Name    string  `csv:"name"`
	Allele  string  `csv:"allele"`
	Peptide string  `csv:"peptide"`
	Core    string  `csv:"core"`
	Pos     int     `csv:"pos"`
	Score   float64 `csv:"score"`
	Rank    int     `csv:"rank"`
}

// Table is an ordered set of records. Tables built by concatenating several
// prediction runs carry no ordering guarantee.
type Table []Record

// Names returns the distinct protein names, sorted.
func (t Table) Names() []string {
	return t.distinct(func(r Record) string { return r.Name })
}

// Alleles returns the distinct alleles, sorted.
func (t Table) Alleles() []string {
	return t.distinct(func(r Record) string { return r.Allele })
}

func (t Table) distinct(key func(Record) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range t {
		k := key(r)
		if _, exists := seen[k]; exists {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

// FilterName returns the records for one protein, in table order.
func (t Table) FilterName(name string) Table {
	out := make(Table, 0)
	for _, r := range t {
		if r.Name == name {
			out = append(out, r)
		}
	}

	return out
}

// ByAllele partitions the table by allele, preserving table order within each
// partition.
func (t Table) ByAllele() map[string]Table {
	out := make(map[string]Table)
	for _, r := range t {
		out[r.Allele] = append(out[r.Allele], r)
	}

	return out
}

// ByName partitions the table by protein name, preserving table order within
// each partition.
func (t Table) ByName() map[string]Table {
	out := make(map[string]Table)
	for _, r := range t {
		out[r.Name] = append(out[r.Name], r)
	}

	return out
}

// PeptideLength is the length of the first peptide in the table, or 0 for an
// empty table. All windows of one prediction run share a length.
func PeptideLength(t Table) int {
	if len(t) == 0 {
		return 0
	}

	return len(t[0].Peptide)
}
