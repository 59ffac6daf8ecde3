package scoretable

import (
	"math"
	"sort"
)

// Pivot is a peptide x allele matrix of scores. Cells with no observation are
// NaN. When a peptide occurs more than once for an allele (the same sequence at
// two positions, or in two proteins of one file) the cell holds the mean.
type Pivot struct {
	Peptides []string
	Alleles  []string
	Cells    [][]float64 // Cells[peptide][allele]
}

// NewPivot builds the peptide x allele matrix for a table. Peptides and
// alleles are sorted.
func NewPivot(t Table) Pivot {
	type acc struct {
		sum float64
		n   int
	}

	peptides := t.distinct(func(r Record) string { return r.Peptide })
	alleles := t.Alleles()

	pepIdx := make(map[string]int, len(peptides))
	for i, p := range peptides {
		pepIdx[p] = i
	}
	alleleIdx := make(map[string]int, len(alleles))
	for i, a := range alleles {
		alleleIdx[a] = i
	}

	sums := make([][]acc, len(peptides))
	for i := range sums {
		sums[i] = make([]acc, len(alleles))
	}
	for _, r := range t {
		if math.IsNaN(r.Score) {
			continue
		}
		cell := &sums[pepIdx[r.Peptide]][alleleIdx[r.Allele]]
		cell.sum += r.Score
		cell.n++
	}

	cells := make([][]float64, len(peptides))
	for i := range sums {
		cells[i] = make([]float64, len(alleles))
		for j, c := range sums[i] {
			if c.n == 0 {
				cells[i][j] = math.NaN()
				continue
			}
			cells[i][j] = c.sum / float64(c.n)
		}
	}

	return Pivot{Peptides: peptides, Alleles: alleles, Cells: cells}
}

// Column returns the non-missing values of one allele's column.
func (p Pivot) Column(allele string) []float64 {
	j := -1
	for i, a := range p.Alleles {
		if a == allele {
			j = i
			break
		}
	}
	if j < 0 {
		return nil
	}

	out := make([]float64, 0, len(p.Cells))
	for _, row := range p.Cells {
		if !math.IsNaN(row[j]) {
			out = append(out, row[j])
		}
	}

	return out
}

// ReshapedRow is one peptide of a protein with its score under every allele.
type ReshapedRow struct {
	Peptide string
	Pos     int
	Scores  map[string]float64
	Mean    float64
}

// Reshape pivots one protein's predictions over alleles for summary use. Each
// row carries the position at which the peptide was first seen in table order,
// and the mean over the alleles that scored it. Rows are sorted best mean
// first; equal means keep position order.
func Reshape(t Table, name string, direction Direction) []ReshapedRow {
	if name != "" {
		t = t.FilterName(name)
	}
	p := NewPivot(t)

	firstPos := make(map[string]int)
	for _, r := range t {
		if _, exists := firstPos[r.Peptide]; !exists {
			firstPos[r.Peptide] = r.Pos
		}
	}

	out := make([]ReshapedRow, 0, len(p.Peptides))
	for i, peptide := range p.Peptides {
		row := ReshapedRow{
			Peptide: peptide,
			Pos:     firstPos[peptide],
			Scores:  make(map[string]float64),
		}

		var sum float64
		for j, allele := range p.Alleles {
			v := p.Cells[i][j]
			if math.IsNaN(v) {
				continue
			}
			row.Scores[allele] = v
			sum += v
		}
		row.Mean = math.NaN()
		if len(row.Scores) > 0 {
			row.Mean = sum / float64(len(row.Scores))
		}

		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return direction.Better(out[i].Mean, out[j].Mean)
		}
		return out[i].Pos < out[j].Pos
	})

	return out
}
