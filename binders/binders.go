// Package binders selects the peptides of a score table that bind, either by
// per-allele score cutoffs or by taking the top ranks of each protein.
package binders

import (
	"errors"
	"fmt"
	"sort"

	"github.com/carbocation/epitopes/cutoff"
	"github.com/carbocation/epitopes/scoretable"
	"gonum.org/v1/gonum/stat"
)

// ErrNoData is returned when a selection is requested with no table and the
// selector holds none.
var ErrNoData = errors.New("no prediction data available")

type Mode int

const (
	// ModeCutoff keeps rows whose score passes the allele's cutoff.
	ModeCutoff Mode = iota

	// ModeRank keeps, per protein, rows ranked within the Params.Q quantile of
	// ranks.
	ModeRank
)

func (m Mode) String() string {
	switch m {
	case ModeCutoff:
		return "cutoff"
	case ModeRank:
		return "rank"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "cutoff":
		return ModeCutoff, nil
	case "rank":
		return ModeRank, nil
	}
	return 0, fmt.Errorf("unknown selection mode %q (cutoff or rank)", s)
}

type Params struct {
	// Q is the rank quantile used by ModeRank.
	Q float64

	// Name restricts selection to one protein when set.
	Name string
}

var DefaultParams = Params{Q: 0.01}

// Method is the part of a predictor the selector needs.
type Method interface {
	Direction() scoretable.Direction
	DefaultCutoff() float64
}

type Selector struct {
	Direction     scoretable.Direction
	DefaultCutoff float64

	// Cutoffs are calibrated per-allele thresholds. Alleles not present use
	// DefaultCutoff.
	Cutoffs cutoff.AlleleCutoffs

	// Data is used when Select is called with a nil table.
	Data scoretable.Table
}

func New(m Method, cutoffs cutoff.AlleleCutoffs) *Selector {
	return &Selector{
		Direction:     m.Direction(),
		DefaultCutoff: m.DefaultCutoff(),
		Cutoffs:       cutoffs,
	}
}

// Cutoff returns the threshold applied to allele.
func (s *Selector) Cutoff(allele string) float64 {
	if v, exists := s.Cutoffs[allele]; exists {
		return v
	}
	return s.DefaultCutoff
}

// Select filters data to binders. A nil data falls back to s.Data, and if that
// is also nil ErrNoData is returned. An empty table yields an empty table.
// Kept rows are grouped by allele (cutoff mode) or protein (rank mode), groups
// in sorted order and rows in input order within a group.
func (s *Selector) Select(data scoretable.Table, mode Mode, params Params) (scoretable.Table, error) {
	if data == nil {
		data = s.Data
	}
	if data == nil {
		return nil, ErrNoData
	}

	if params.Name != "" {
		data = data.FilterName(params.Name)
	}

	switch mode {
	case ModeCutoff:
		return s.byCutoff(data), nil
	case ModeRank:
		if params.Q < 0 || params.Q > 1 {
			return nil, fmt.Errorf("rank quantile %v is outside [0, 1]", params.Q)
		}
		return byRank(data, params.Q), nil
	}

	return nil, fmt.Errorf("unknown selection mode %v", mode)
}

func (s *Selector) byCutoff(data scoretable.Table) scoretable.Table {
	out := make(scoretable.Table, 0)

	groups := data.ByAllele()
	for _, allele := range data.Alleles() {
		threshold := s.Cutoff(allele)
		for _, rec := range groups[allele] {
			if s.Direction.Passes(rec.Score, threshold) {
				out = append(out, rec)
			}
		}
	}

	return out
}

func byRank(data scoretable.Table, q float64) scoretable.Table {
	out := make(scoretable.Table, 0)

	groups := data.ByName()
	for _, name := range data.Names() {
		g := groups[name]

		ranks := make([]float64, len(g))
		for i, rec := range g {
			ranks[i] = float64(rec.Rank)
		}
		sort.Float64s(ranks)
		value := stat.Quantile(q, stat.LinInterp, ranks, nil)

		for _, rec := range g {
			if float64(rec.Rank) <= value {
				out = append(out, rec)
			}
		}
	}

	return out
}

// Core is the best score seen for one binding core.
type Core struct {
	Core  string  `csv:"core"`
	Score float64 `csv:"score"`
}

// UniqueCores collapses a table to one entry per core holding its best score,
// sorted best first. Equal scores are ordered by core.
func UniqueCores(t scoretable.Table, direction scoretable.Direction) []Core {
	best := make(map[string]float64)
	for _, rec := range t {
		if v, exists := best[rec.Core]; exists {
			best[rec.Core] = direction.Best(v, rec.Score)
			continue
		}
		best[rec.Core] = rec.Score
	}

	out := make([]Core, 0, len(best))
	for core, score := range best {
		out = append(out, Core{Core: core, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return direction.Better(out[i].Score, out[j].Score)
		}
		return out[i].Core < out[j].Core
	})

	return out
}
