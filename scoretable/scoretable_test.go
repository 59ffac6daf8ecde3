package scoretable

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankMinTies(t *testing.T) {
	in := Table{
		{Name: "p1", Allele: "A", Peptide: "W", Score: 9},
		{Name: "p1", Allele: "A", Peptide: "X", Score: 5},
		{Name: "p1", Allele: "A", Peptide: "Y", Score: 3},
		{Name: "p1", Allele: "A", Peptide: "Z", Score: 5},
	}

	out := Rank(in, LowerIsBetter)
	require.Len(t, out, 4)

	ranks := make(map[string]int)
	for _, r := range out {
		ranks[r.Peptide] = r.Rank
	}
	assert.Equal(t, map[string]int{"Y": 1, "X": 2, "Z": 2, "W": 4}, ranks)

	// Output is ordered by rank and the tie keeps input order.
	assert.Equal(t, []string{"Y", "X", "Z", "W"}, peptides(out))

	// Input untouched.
	assert.Zero(t, in[0].Rank)
}

func TestRankHigherIsBetter(t *testing.T) {
	in := Table{
		{Name: "p1", Allele: "A", Peptide: "low", Score: 0.1},
		{Name: "p1", Allele: "A", Peptide: "high", Score: 2.5},
		{Name: "p1", Allele: "A", Peptide: "mid", Score: 1.0},
	}

	out := Rank(in, HigherIsBetter)
	assert.Equal(t, []string{"high", "mid", "low"}, peptides(out))
	assert.Equal(t, []int{1, 2, 3}, ranksOf(out))
}

func TestRankMonotonic(t *testing.T) {
	in := Table{}
	for i, s := range []float64{4, 8, 1, 1, 7, 3, 8, 2} {
		in = append(in, Record{Name: "p", Allele: "A", Pos: i, Score: s})
	}

	for _, direction := range []Direction{LowerIsBetter, HigherIsBetter} {
		out := Rank(in, direction)
		for _, a := range out {
			for _, b := range out {
				if direction.Better(a.Score, b.Score) {
					assert.LessOrEqual(t, a.Rank, b.Rank)
				}
				if a.Score == b.Score {
					assert.Equal(t, a.Rank, b.Rank)
				}
			}
		}
	}
}

func TestRankSortsByNameThenAllele(t *testing.T) {
	in := Table{
		{Name: "p2", Allele: "B", Score: 1},
		{Name: "p1", Allele: "B", Score: 1},
		{Name: "p1", Allele: "A", Score: 1},
	}

	out := Rank(in, LowerIsBetter)
	assert.Equal(t, "p1", out[0].Name)
	assert.Equal(t, "A", out[0].Allele)
	assert.Equal(t, "p1", out[1].Name)
	assert.Equal(t, "B", out[1].Allele)
	assert.Equal(t, "p2", out[2].Name)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil, LowerIsBetter))
}

func TestRankEach(t *testing.T) {
	in := Table{
		{Name: "p2", Allele: "A", Peptide: "P2A", Score: 7},
		{Name: "p1", Allele: "B", Peptide: "P1B1", Score: 9},
		{Name: "p1", Allele: "A", Peptide: "P1A1", Score: 3},
		{Name: "p1", Allele: "B", Peptide: "P1B2", Score: 1},
		{Name: "p1", Allele: "A", Peptide: "P1A2", Score: 5},
	}
	assert.False(t, Ranked(in))

	out := RankEach(in, LowerIsBetter)
	require.Len(t, out, 5)
	assert.True(t, Ranked(out))

	got := make([]string, len(out))
	for i, r := range out {
		got[i] = fmt.Sprintf("%s:%d", r.Peptide, r.Rank)
	}
	assert.Equal(t, []string{"P1A1:1", "P1A2:2", "P1B2:1", "P1B1:2", "P2A:1"}, got)
}

func TestReadToleratesExtraColumnsAndIndex(t *testing.T) {
	body := ",name,allele,peptide,core,pos,Affinity,Identity\n" +
		"0,p1,HLA-DRB1*0101,AAAAAAAAAAA,AAAAAAAAA,0,120.5,x\n" +
		"1,p1,HLA-DRB1*0101,CCCCCCCCCCC,,1,NaN,x\n" +
		"2,p1,HLA-DRB1*0101,DDDDDDDDDDD,,2,40,x\n"

	tab, err := Read(strings.NewReader(body), WithScoreKey("Affinity"))
	require.NoError(t, err)
	require.Len(t, tab, 2)

	assert.Equal(t, "AAAAAAAAA", tab[0].Core)
	assert.Equal(t, 120.5, tab[0].Score)
	assert.Equal(t, "DDDDDDDDDDD", tab[1].Core, "missing core falls back to the peptide")
	assert.Equal(t, 2, tab[1].Pos)
}

func TestReadMissingScoreKey(t *testing.T) {
	body := "name,allele,peptide,core,pos,score\np1,A,AAA,AAA,0,1\n"

	_, err := Read(strings.NewReader(body), WithScoreKey("ic50"))
	assert.True(t, errors.Is(err, ErrMissingScoreKey))
}

func TestWriteThenRead(t *testing.T) {
	in := Rank(Table{
		{Name: "p1", Allele: "A", Peptide: "AAAA", Core: "AA", Pos: 3, Score: 1.5},
		{Name: "p1", Allele: "A", Peptide: "CCCC", Core: "CC", Pos: 4, Score: 0.5},
	}, LowerIsBetter)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))

	out, err := Read(&buf, DefaultColumns)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPivotMeansDuplicates(t *testing.T) {
	tab := Table{
		{Name: "p1", Allele: "A", Peptide: "X", Score: 1},
		{Name: "p2", Allele: "A", Peptide: "X", Score: 3},
		{Name: "p1", Allele: "B", Peptide: "Y", Score: 5},
	}

	p := NewPivot(tab)
	assert.Equal(t, []string{"X", "Y"}, p.Peptides)
	assert.Equal(t, []string{"A", "B"}, p.Alleles)
	assert.Equal(t, 2.0, p.Cells[0][0])
	assert.True(t, math.IsNaN(p.Cells[0][1]))
	assert.Equal(t, []float64{2}, p.Column("A"))
	assert.Equal(t, []float64{5}, p.Column("B"))
	assert.Nil(t, p.Column("C"))
}

func TestReshape(t *testing.T) {
	tab := Table{
		{Name: "p1", Allele: "A", Peptide: "X", Pos: 0, Score: 10},
		{Name: "p1", Allele: "B", Peptide: "X", Pos: 0, Score: 20},
		{Name: "p1", Allele: "A", Peptide: "Y", Pos: 1, Score: 1},
		{Name: "p1", Allele: "B", Peptide: "Y", Pos: 1, Score: 3},
		{Name: "p2", Allele: "A", Peptide: "Z", Pos: 0, Score: 0},
	}

	rows := Reshape(tab, "p1", LowerIsBetter)
	require.Len(t, rows, 2)
	assert.Equal(t, "Y", rows[0].Peptide)
	assert.Equal(t, 2.0, rows[0].Mean)
	assert.Equal(t, 1, rows[0].Pos)
	assert.Equal(t, 15.0, rows[1].Mean)
}

func TestPeptideLength(t *testing.T) {
	assert.Equal(t, 0, PeptideLength(nil))
	assert.Equal(t, 9, PeptideLength(Table{{Peptide: "AAAAAAAAA"}}))
}

func TestDirection(t *testing.T) {
	assert.True(t, LowerIsBetter.Passes(500, 500))
	assert.False(t, LowerIsBetter.Passes(501, 500))
	assert.True(t, HigherIsBetter.Passes(2, 2))
	assert.False(t, HigherIsBetter.Passes(1.9, 2))
	assert.Equal(t, 1.0, LowerIsBetter.Best(3, 1))
	assert.Equal(t, 3.0, HigherIsBetter.Best(3, 1))
	assert.Equal(t, 3.0, HigherIsBetter.Best(math.NaN(), 3))
}

func peptides(t Table) []string {
	out := make([]string, 0, len(t))
	for _, r := range t {
		out = append(out, r.Peptide)
	}
	return out
}

func ranksOf(t Table) []int {
	out := make([]int, 0, len(t))
	for _, r := range t {
		out = append(out, r.Rank)
	}
	return out
}
