// Package pipeline runs binder selection over a whole corpus of per-protein
// prediction tables and turns the calls into regions.
package pipeline

import (
	"context"
	"errors"
	"log"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/carbocation/epitopes"
	"github.com/carbocation/epitopes/binders"
	"github.com/carbocation/epitopes/cutoff"
	"github.com/carbocation/epitopes/promiscuous"
	"github.com/carbocation/epitopes/scoretable"
)

// Method is what the pipeline needs from a predictor.
type Method interface {
	ScoreKey() string
	Direction() scoretable.Direction
	DefaultCutoff() float64
}

type Config struct {
	Calibration cutoff.Config

	// Quantile is the calibrated cutoff level.
	Quantile float64

	// Promiscuous reports only positions bound by at least MinAlleles
	// alleles. Otherwise every binder is reported.
	Promiscuous bool
	MinAlleles  int

	Mode   binders.Mode
	Params binders.Params
}

var DefaultConfig = Config{
	Calibration: cutoff.DefaultConfig,
	Quantile:    0.95,
	Promiscuous: true,
	MinAlleles:  3,
	Mode:        binders.ModeCutoff,
	Params:      binders.DefaultParams,
}

// Call is a binder with the residue span it covers.
type Call struct {
	promiscuous.Binder
	Start int `csv:"start" db:"start" json:"start"`
	End   int `csv:"end" db:"end" json:"end"`
}

func newCall(b promiscuous.Binder) Call {
	return Call{Binder: b, Start: b.Pos, End: b.Pos + len(b.Peptide)}
}

// BindersFromPath recalibrates the allele cutoffs of corpus, then collects the
// binders of every table in it. Tables without the method's score column are
// skipped, and tables without ranks are ranked per protein and allele. A
// corpus with no usable table yields no calls.
func BindersFromPath(ctx context.Context, m Method, corpus string, cfg Config, client *storage.Client) ([]Call, error) {
	cal := cutoff.New(m, cfg.Calibration, client)
	cutoffs, err := cal.Calibrate(ctx, corpus, cfg.Quantile, true)
	if errors.Is(err, cutoff.ErrEmptyCorpus) {
		log.Println(err)
		return []Call{}, nil
	} else if err != nil {
		return nil, err
	}

	files, err := epitopes.ListTables(ctx, corpus, cfg.Calibration.Pattern, client)
	if err != nil {
		return nil, err
	}

	sel := binders.New(m, cutoffs)
	cols := scoretable.WithScoreKey(m.ScoreKey())

	out := make([]Call, 0)
	used := 0
	for _, file := range files {
		if filepath.Base(file) == cfg.Calibration.CacheName {
			continue
		}

		t, err := scoretable.ReadFile(ctx, file, cols, client)
		if errors.Is(err, scoretable.ErrMissingScoreKey) {
			continue
		} else if err != nil {
			return nil, err
		}
		used++

		if !scoretable.Ranked(t) {
			t = scoretable.RankEach(t, m.Direction())
		}

		calls, err := selectCalls(t, sel, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, calls...)
	}

	log.Printf("Found %d binders in %d tables\n", len(out), used)

	return out, nil
}

func selectCalls(t scoretable.Table, sel *binders.Selector, cfg Config) ([]Call, error) {
	if cfg.Promiscuous {
		bs, err := promiscuous.Aggregate(t, cfg.MinAlleles, sel, cfg.Mode, cfg.Params)
		if err != nil {
			return nil, err
		}

		out := make([]Call, len(bs))
		for i, b := range bs {
			out[i] = newCall(b)
		}
		return out, nil
	}

	b, err := sel.Select(t, cfg.Mode, cfg.Params)
	if err != nil {
		return nil, err
	}

	out := make([]Call, len(b))
	for i, r := range b {
		out[i] = newCall(promiscuous.Binder{
			Name:        r.Name,
			Peptide:     r.Peptide,
			Core:        r.Core,
			Pos:         r.Pos,
			Allele:      r.Allele,
			Score:       r.Score,
			AlleleCount: 1,
		})
	}
	return out, nil
}

// Binders strips the spans from calls.
func Binders(calls []Call) []promiscuous.Binder {
	out := make([]promiscuous.Binder, len(calls))
	for i, c := range calls {
		out[i] = c.Binder
	}
	return out
}
