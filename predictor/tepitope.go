package predictor

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/carbocation/epitopes/scoretable"
)

// PSSM is a position specific scoring matrix for a binding core: one weight
// per residue at each core position. Residues with no weight score 0.
type PSSM []map[byte]float64

// Score sums the weights of core, which must be exactly as long as the matrix.
func (m PSSM) Score(core string) float64 {
	var s float64
	for i := 0; i < len(m) && i < len(core); i++ {
		s += m[i][core[i]]
	}
	return s
}

// BestCore finds the highest scoring core-length window of peptide. ok is
// false when the peptide is shorter than the matrix.
func (m PSSM) BestCore(peptide string) (core string, score float64, ok bool) {
	width := len(m)
	if width == 0 || len(peptide) < width {
		return "", 0, false
	}

	score = math.Inf(-1)
	for i := 0; i+width <= len(peptide); i++ {
		if s := m.Score(peptide[i : i+width]); s > score {
			core, score = peptide[i:i+width], s
		}
	}

	return core, score, true
}

// ReadPSSM reads a matrix laid out as one row per residue and one column per
// core position:
//
//	,1,2,3,...,9
//	A,-1.0,0.0,...
func ReadPSSM(r io.Reader) (PSSM, error) {
	raw, err := scoretable.ReadRaw(r, 0)
	if err != nil {
		return nil, err
	}
	if len(raw.Header) < 2 {
		return nil, fmt.Errorf("matrix has no position columns")
	}

	m := make(PSSM, len(raw.Header)-1)
	for i := range m {
		m[i] = make(map[byte]float64)
	}

	for _, row := range raw.Rows {
		residue := strings.TrimSpace(row[0])
		if len(residue) != 1 {
			continue
		}
		for j := 1; j < len(row) && j < len(raw.Header); j++ {
			cell := strings.TrimSpace(row[j])
			if cell == "" || cell == "-" {
				continue
			}
			w, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("residue %s position %d: %w", residue, j, err)
			}
			m[j-1][residue[0]] = w
		}
	}

	return m, nil
}

// TEpitope scores peptides in-process with the quantitative TEPITOPE
// matrices. Higher scores are better.
type TEpitope struct {
	method
}

func NewTEpitope(cfg Config) *TEpitope {
	return &TEpitope{method{
		name:          "tepitope",
		scoreKey:      "score",
		direction:     scoretable.HigherIsBetter,
		defaultCutoff: 2,
		config:        cfg,
	}}
}

func (p *TEpitope) PrepareData(raw *scoretable.Raw, name, allele string) (scoretable.Table, error) {
	return p.prepare(raw, scoretable.WithScoreKey(p.scoreKey), name, allele)
}

// Predict scores every window of sequence. An allele without a matrix yields
// no rows.
func (p *TEpitope) Predict(ctx context.Context, sequence, allele string, length int, name string) (scoretable.Table, error) {
	m, exists := p.config.PSSMs[allele]
	if !exists {
		log.Printf("No TEPITOPE matrix for allele %s\n", allele)
		return scoretable.Table{}, nil
	}

	rows := make([][]string, 0)
	for i := 0; i+length <= len(sequence); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		peptide := sequence[i : i+length]
		core, score, ok := m.BestCore(peptide)
		if !ok {
			continue
		}
		rows = append(rows, []string{peptide, core, strconv.Itoa(i), strconv.FormatFloat(score, 'g', -1, 64)})
	}

	raw := scoretable.NewRaw([]string{"peptide", "core", "pos", p.scoreKey}, rows)

	return p.PrepareData(raw, name, allele)
}

// ReadPSSMDir loads every <allele>.csv matrix in dir, keyed by allele.
func ReadPSSMDir(dir string) (map[string]PSSM, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}

	out := make(map[string]PSSM, len(files))
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		m, err := ReadPSSM(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		out[strings.TrimSuffix(filepath.Base(file), ".csv")] = m
	}

	return out, nil
}
