package cluster

import (
	"sort"

	"github.com/theodesp/unionfind"
)

type DensityConfig struct {
	// Dist is the neighborhood radius, in residues.
	Dist int

	// MinSize is the number of positions, the point itself included, that a
	// neighborhood needs for the point to seed a cluster.
	MinSize int
}

var DefaultDensityConfig = DensityConfig{
	Dist:    7,
	MinSize: 4,
}

// Density runs DBSCAN over positions on a line. Core positions within Dist of
// each other share a cluster; a border position joins the cluster of its
// nearest core position (the earlier one on a tie). Noise positions are not
// reported. Clusters are ordered by their first position, and positions
// within a cluster ascend. No positions yields nil.
func Density(positions []int, cfg DensityConfig) [][]int {
	if len(positions) == 0 {
		return nil
	}

	x := append([]int(nil), positions...)
	sort.Ints(x)
	n := len(x)

	within := func(i, j int) bool {
		d := x[i] - x[j]
		if d < 0 {
			d = -d
		}
		return d <= cfg.Dist
	}

	core := make([]bool, n)
	for i := range x {
		count := 0
		for j := range x {
			if within(i, j) {
				count++
			}
		}
		core[i] = count >= cfg.MinSize
	}

	uf := unionfind.NewThreadSafeUnionFind(n)
	member := make([]bool, n)
	for i := range x {
		if !core[i] {
			continue
		}
		member[i] = true
		for j := i + 1; j < n && within(i, j); j++ {
			if core[j] {
				uf.Union(i, j)
			}
		}
	}

	for i := range x {
		if core[i] {
			continue
		}
		nearest := -1
		for j := range x {
			if !core[j] || !within(i, j) {
				continue
			}
			if nearest < 0 || abs(x[i]-x[j]) < abs(x[i]-x[nearest]) {
				nearest = j
			}
		}
		if nearest >= 0 {
			uf.Union(nearest, i)
			member[i] = true
		}
	}

	groups := make(map[int][]int)
	order := make([]int, 0)
	for i := range x {
		if !member[i] {
			continue
		}
		root := uf.Root(i)
		if _, exists := groups[root]; !exists {
			order = append(order, root)
		}
		groups[root] = append(groups[root], x[i])
	}

	out := make([][]int, 0, len(order))
	for _, root := range order {
		out = append(out, groups[root])
	}

	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
