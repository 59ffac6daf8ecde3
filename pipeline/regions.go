package pipeline

import (
	"fmt"
	"sort"

	"github.com/carbocation/epitopes/cluster"
	"github.com/carbocation/epitopes/promiscuous"
)

type ClusterMethod int

const (
	ClusterOverlap ClusterMethod = iota
	ClusterDensity
)

func (c ClusterMethod) String() string {
	if c == ClusterDensity {
		return "density"
	}
	return "overlap"
}

func ParseClusterMethod(s string) (ClusterMethod, error) {
	switch s {
	case "overlap":
		return ClusterOverlap, nil
	case "density":
		return ClusterDensity, nil
	}
	return 0, fmt.Errorf("unknown cluster method %q (overlap or density)", s)
}

// Region is one cluster of calls on a protein. End is one past the last
// residue of the last peptide in the cluster.
type Region struct {
	Name      string `csv:"name" db:"name" json:"name"`
	Method    string `csv:"method" db:"method" json:"method"`
	Start     int    `csv:"start" db:"start" json:"start"`
	End       int    `csv:"end" db:"end" json:"end"`
	Binders   int    `csv:"binders" db:"binders" json:"binders"`
	Positions string `csv:"positions" db:"positions" json:"positions"`
}

type ClusterConfig struct {
	Method  ClusterMethod
	Overlap cluster.OverlapConfig
	Density cluster.DensityConfig
}

var DefaultClusterConfig = ClusterConfig{
	Method:  ClusterOverlap,
	Overlap: cluster.DefaultOverlapConfig,
	Density: cluster.DefaultDensityConfig,
}

// Regions clusters the calls of each protein separately. Proteins are taken in
// name order and regions within a protein by start.
func Regions(calls []Call, cfg ClusterConfig) []Region {
	byName := make(map[string][]promiscuous.Binder)
	for _, c := range calls {
		byName[c.Name] = append(byName[c.Name], c.Binder)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Region, 0)
	for _, name := range names {
		bs := byName[name]

		// End of the longest peptide seen at each position.
		ends := make(map[int]int)
		for _, b := range bs {
			if e := b.Pos + len(b.Peptide); e > ends[b.Pos] {
				ends[b.Pos] = e
			}
		}

		var groups [][]int
		switch cfg.Method {
		case ClusterDensity:
			groups = cluster.Density(promiscuous.Positions(bs), cfg.Density)
		default:
			groups = cluster.Overlap(cluster.SitesFromBinders(bs), cfg.Overlap)
		}

		regions := make([]Region, 0, len(groups))
		for _, g := range groups {
			if len(g) == 0 {
				continue
			}
			sorted := append([]int(nil), g...)
			sort.Ints(sorted)

			end := 0
			for _, p := range sorted {
				if ends[p] > end {
					end = ends[p]
				}
			}

			regions = append(regions, Region{
				Name:      name,
				Method:    cfg.Method.String(),
				Start:     sorted[0],
				End:       end,
				Binders:   len(sorted),
				Positions: joinInts(sorted),
			})
		}
		sort.SliceStable(regions, func(i, j int) bool { return regions[i].Start < regions[j].Start })

		out = append(out, regions...)
	}

	return out
}

func joinInts(xs []int) string {
	s := ""
	for i, x := range xs {
		if i > 0 {
			s += ";"
		}
		s += fmt.Sprint(x)
	}
	return s
}
