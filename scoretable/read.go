package scoretable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/epitopes"
)

// ErrMissingScoreKey is returned when a table lacks the column holding the
// method's score.
var ErrMissingScoreKey = errors.New("score key column not found")

// Columns names the header of each Record field in a delimited table. Only
// Score varies between prediction methods in practice.
type Columns struct {
	Name    string
	Allele  string
	Peptide string
	Core    string
	Pos     string
	Score   string
	Rank    string
}

// DefaultColumns is the normalized layout written by Write.
var DefaultColumns = Columns{
	Name:    "name",
	Allele:  "allele",
	Peptide: "peptide",
	Core:    "core",
	Pos:     "pos",
	Score:   "score",
	Rank:    "rank",
}

// WithScoreKey returns the default layout with the score read from key.
func WithScoreKey(key string) Columns {
	c := DefaultColumns
	c.Score = key
	return c
}

// FromRaw converts a raw table into records. A missing core column falls back
// to the peptide; a missing rank column leaves ranks at 0. Rows whose score or
// position cannot be parsed are dropped, as are rows with a NaN score.
func FromRaw(raw *Raw, cols Columns) (Table, error) {
	if !raw.HasColumn(cols.Score) {
		return nil, fmt.Errorf("%w: %q", ErrMissingScoreKey, cols.Score)
	}
	for _, required := range []string{cols.Name, cols.Allele, cols.Peptide, cols.Pos} {
		if !raw.HasColumn(required) {
			return nil, fmt.Errorf("required column %q not found", required)
		}
	}
	hasCore := raw.HasColumn(cols.Core)
	hasRank := raw.HasColumn(cols.Rank)

	out := make(Table, 0, len(raw.Rows))
	for i := range raw.Rows {
		score, err := parseScore(raw.Value(i, cols.Score))
		if err != nil || math.IsNaN(score) {
			continue
		}

		pos, err := parsePosition(raw.Value(i, cols.Pos))
		if err != nil {
			continue
		}

		rec := Record{
			Name:    raw.Value(i, cols.Name),
			Allele:  raw.Value(i, cols.Allele),
			Peptide: raw.Value(i, cols.Peptide),
			Score:   score,
			Pos:     pos,
		}

		rec.Core = rec.Peptide
		if hasCore {
			if core := raw.Value(i, cols.Core); core != "" {
				rec.Core = core
			}
		}

		if hasRank {
			// Ranks written by pandas are floats ("3.0").
			if rank, err := strconv.ParseFloat(raw.Value(i, cols.Rank), 64); err == nil {
				rec.Rank = int(rank)
			}
		}

		out = append(out, rec)
	}

	return out, nil
}

func parseScore(value string) (float64, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "-", "na", "nan":
		return math.NaN(), nil
	}

	return strconv.ParseFloat(value, 64)
}

func parsePosition(value string) (int, error) {
	pos, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative position %v", pos)
	}

	return int(pos), nil
}

// Read parses a delimited table with the given column layout.
func Read(r io.Reader, cols Columns) (Table, error) {
	raw, err := ReadRaw(r, 0)
	if err != nil {
		return nil, err
	}

	return FromRaw(raw, cols)
}

// ReadFile reads one table from disk or Google Storage.
func ReadFile(ctx context.Context, path string, cols Columns, client *storage.Client) (Table, error) {
	f, err := epitopes.OpenTable(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f, cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}
