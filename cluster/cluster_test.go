package cluster

import (
	"testing"

	"github.com/carbocation/epitopes/promiscuous"
	"github.com/carbocation/epitopes/scoretable"
	"github.com/stretchr/testify/assert"
)

func nineMers(positions ...int) []Site {
	out := make([]Site, len(positions))
	for i, p := range positions {
		out[i] = Site{Pos: p, Peptide: "AAAAAAAAA"}
	}
	return out
}

func TestOverlapChains(t *testing.T) {
	got := Overlap(nineMers(30, 10, 14, 12), DefaultOverlapConfig)
	assert.Equal(t, [][]int{{10, 12, 14}, {30}}, got)

	cfg := DefaultOverlapConfig
	cfg.Singletons = SingletonsDrop
	got = Overlap(nineMers(30, 10, 14, 12), cfg)
	assert.Equal(t, [][]int{{10, 12, 14}}, got)
}

func TestOverlapClusterLengthBound(t *testing.T) {
	// Each step is within a peptide length, but 10 -> 40 exceeds the width.
	got := Overlap(nineMers(10, 18, 26, 34, 40), DefaultOverlapConfig)
	assert.Equal(t, [][]int{{10, 18, 26, 34}, {40}}, got)
}

func TestOverlapDisjoint(t *testing.T) {
	sites := nineMers(1, 3, 8, 15, 17, 20, 33, 35, 50, 52, 53, 70)
	got := Overlap(sites, DefaultOverlapConfig)

	seen := map[int]bool{}
	for _, c := range got {
		assert.NotEmpty(t, c)
		for _, p := range c {
			assert.False(t, seen[p], "position %d in two clusters", p)
			seen[p] = true
		}
	}
	assert.Len(t, seen, 12)
}

func TestOverlapSingleAndEmpty(t *testing.T) {
	assert.Equal(t, [][]int{{7}}, Overlap(nineMers(7), DefaultOverlapConfig))
	assert.Nil(t, Overlap(nil, DefaultOverlapConfig))
}

func TestSites(t *testing.T) {
	tab := scoretable.Table{{Pos: 3, Peptide: "AAA"}}
	assert.Equal(t, []Site{{3, "AAA"}}, SitesFromTable(tab))

	bs := []promiscuous.Binder{{Pos: 4, Peptide: "CCC"}}
	assert.Equal(t, []Site{{4, "CCC"}}, SitesFromBinders(bs))
}

func TestDensity(t *testing.T) {
	positions := []int{100, 3, 1, 5, 7, 60, 52, 50, 54, 56, 200}

	got := Density(positions, DefaultDensityConfig)
	assert.Equal(t, [][]int{{1, 3, 5, 7}, {50, 52, 54, 56, 60}}, got)
}

func TestDensityBorderPoint(t *testing.T) {
	// 1..4 are core; 11 reaches only 4 and joins as a border point.
	got := Density([]int{1, 2, 3, 4, 11}, DensityConfig{Dist: 7, MinSize: 4})
	assert.Equal(t, [][]int{{1, 2, 3, 4, 11}}, got)

	// Nothing dense enough.
	got = Density([]int{1, 20, 40}, DefaultDensityConfig)
	assert.Empty(t, got)
}

func TestDensityEmpty(t *testing.T) {
	assert.Nil(t, Density(nil, DefaultDensityConfig))
}

func TestNearest(t *testing.T) {
	bs := []promiscuous.Binder{
		{Name: "p1", Pos: 10},
		{Name: "p1", Pos: 25},
		{Name: "p1", Pos: 13},
		{Name: "p2", Pos: 13},
	}
	assert.Equal(t, []int{3, 12, 3, 0}, Nearest(bs))
}
