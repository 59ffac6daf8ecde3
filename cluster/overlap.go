// Package cluster groups epitope calls that lie close together along a
// protein, either by greedy chaining of overlapping peptides or by density.
package cluster

import (
	"sort"

	"github.com/carbocation/epitopes/promiscuous"
	"github.com/carbocation/epitopes/scoretable"
)

// Site is one epitope call on a protein.
type Site struct {
	Pos     int
	Peptide string
}

func SitesFromTable(t scoretable.Table) []Site {
	out := make([]Site, len(t))
	for i, r := range t {
		out[i] = Site{Pos: r.Pos, Peptide: r.Peptide}
	}
	return out
}

func SitesFromBinders(bs []promiscuous.Binder) []Site {
	out := make([]Site, len(bs))
	for i, b := range bs {
		out[i] = Site{Pos: b.Pos, Peptide: b.Peptide}
	}
	return out
}

// SingletonPolicy decides what happens to chains of a single position.
type SingletonPolicy int

const (
	// SingletonsKeep accepts a single-position chain when its position is not
	// already part of an accepted cluster.
	SingletonsKeep SingletonPolicy = iota

	// SingletonsDrop never reports single-position chains.
	SingletonsDrop
)

type OverlapConfig struct {
	// ClusterLength bounds how far past its first position a cluster may
	// reach.
	ClusterLength int
	Singletons    SingletonPolicy
}

var DefaultOverlapConfig = OverlapConfig{
	ClusterLength: 25,
	Singletons:    SingletonsKeep,
}

// Overlap chains the sites of one protein into clusters. Starting from every
// site p, positions in p+1..p+ClusterLength are appended in order as long as
// each lies within one peptide length of the last appended one. Chains are
// then accepted longest first, skipping any that shares a position with an
// accepted chain. Equal-length chains are taken in order of starting
// position. The peptide length is that of the first site.
//
// The clusters are pairwise disjoint but not necessarily an optimal partition.
func Overlap(sites []Site, cfg OverlapConfig) [][]int {
	if len(sites) == 0 {
		return nil
	}

	peptideLength := len(sites[0].Peptide)

	present := make(map[int]struct{}, len(sites))
	for _, s := range sites {
		present[s.Pos] = struct{}{}
	}
	positions := make([]int, 0, len(present))
	for p := range present {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	chains := make([][]int, 0, len(positions))
	for i, start := range positions {
		chain := []int{start}
		for _, p := range positions[i+1:] {
			if p > start+cfg.ClusterLength {
				break
			}
			if p-chain[len(chain)-1] > peptideLength {
				break
			}
			chain = append(chain, p)
		}
		chains = append(chains, chain)
	}

	sort.SliceStable(chains, func(i, j int) bool { return len(chains[i]) > len(chains[j]) })

	taken := make(map[int]struct{})
	out := make([][]int, 0)
	for _, chain := range chains {
		if len(chain) == 1 && cfg.Singletons == SingletonsDrop {
			continue
		}

		conflict := false
		for _, p := range chain {
			if _, exists := taken[p]; exists {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}

		for _, p := range chain {
			taken[p] = struct{}{}
		}
		out = append(out, chain)
	}

	return out
}
