package cutoff

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/carbocation/epitopes/scoretable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMethod struct {
	key       string
	direction scoretable.Direction
}

func (m fakeMethod) ScoreKey() string                 { return m.key }
func (m fakeMethod) Direction() scoretable.Direction { return m.direction }

// uniformCorpus writes two tables whose "A" scores, pooled, are 1..100.
func uniformCorpus(t *testing.T) string {
	dir := t.TempDir()

	for f := 0; f < 2; f++ {
		tab := make(scoretable.Table, 0, 50)
		for i := 1; i <= 50; i++ {
			score := float64(f*50 + i)
			tab = append(tab, scoretable.Record{
				Name:    fmt.Sprintf("prot%d", f),
				Allele:  "A",
				Peptide: fmt.Sprintf("PEP%03d", f*50+i),
				Pos:     i,
				Score:   score,
			})
		}
		require.NoError(t, scoretable.WriteFile(filepath.Join(dir, fmt.Sprintf("prot%d.csv", f)), tab))
	}

	return dir
}

func TestCalibrateLowerIsBetterInvertsLabels(t *testing.T) {
	corpus := uniformCorpus(t)
	c := New(fakeMethod{"score", scoretable.LowerIsBetter}, DefaultConfig, nil)

	cuts, err := c.Calibrate(context.Background(), corpus, 0.95, false)
	require.NoError(t, err)
	assert.InDelta(t, 5, cuts["A"], 0.01)

	cuts, err = c.Calibrate(context.Background(), corpus, 0.05, false)
	require.NoError(t, err)
	assert.InDelta(t, 95, cuts["A"], 0.01)
}

func TestCalibrateReadsCompressedTables(t *testing.T) {
	corpus := uniformCorpus(t)

	plain := filepath.Join(corpus, "prot1.csv")
	data, err := os.ReadFile(plain)
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(plain+".gz", buf.Bytes(), 0644))
	require.NoError(t, os.Remove(plain))

	c := New(fakeMethod{"score", scoretable.HigherIsBetter}, DefaultConfig, nil)
	cuts, err := c.Calibrate(context.Background(), corpus, 0.95, false)
	require.NoError(t, err)
	assert.InDelta(t, 95, cuts["A"], 0.01)
}

func TestQuantilesInterpolateEmpiricalCDF(t *testing.T) {
	pooled := map[string][]float64{"A": make([]float64, 0, 100)}
	for i := 100; i >= 1; i-- {
		pooled["A"] = append(pooled["A"], float64(i))
	}

	qt := quantiles(pooled, scoretable.HigherIsBetter)
	assert.InDelta(t, 5, qt.Lookup(0.05)["A"], 1e-9)
	assert.InDelta(t, 50, qt.Lookup(0.5)["A"], 1e-9)
}

func TestCalibrateHigherIsBetter(t *testing.T) {
	corpus := uniformCorpus(t)
	c := New(fakeMethod{"score", scoretable.HigherIsBetter}, DefaultConfig, nil)

	cuts, err := c.Calibrate(context.Background(), corpus, 0.95, false)
	require.NoError(t, err)
	assert.InDelta(t, 95, cuts["A"], 0.01)
}

func TestCalibrateReusesCache(t *testing.T) {
	corpus := uniformCorpus(t)
	c := New(fakeMethod{"score", scoretable.LowerIsBetter}, DefaultConfig, nil)

	_, err := c.Calibrate(context.Background(), corpus, 0.95, false)
	require.NoError(t, err)

	cache := filepath.Join(corpus, DefaultConfig.CacheName)
	stale := QuantileTable{
		Levels:  []float64{0.95},
		Alleles: []string{"A"},
		Values:  [][]float64{{42}},
	}
	require.NoError(t, WriteQuantileFile(cache, stale))

	cuts, err := c.Calibrate(context.Background(), corpus, 0.95, false)
	require.NoError(t, err)
	assert.Equal(t, 42.0, cuts["A"])

	cuts, err = c.Calibrate(context.Background(), corpus, 0.95, true)
	require.NoError(t, err)
	assert.InDelta(t, 5, cuts["A"], 0.01)
}

func TestScoreDistributionsSkipsMissingScoreKey(t *testing.T) {
	corpus := uniformCorpus(t)
	other := "name,allele,peptide,pos,Affinity\nprot9,B,AAAA,1,10\n"
	require.NoError(t, os.WriteFile(filepath.Join(corpus, "other.csv"), []byte(other), 0644))

	c := New(fakeMethod{"score", scoretable.HigherIsBetter}, DefaultConfig, nil)
	qt, err := c.ScoreDistributions(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, qt.Alleles)
	assert.Len(t, qt.Levels, 99)
}

func TestScoreDistributionsEmptyCorpus(t *testing.T) {
	c := New(fakeMethod{"score", scoretable.HigherIsBetter}, DefaultConfig, nil)
	_, err := c.ScoreDistributions(context.Background(), t.TempDir())
	assert.True(t, errors.Is(err, ErrEmptyCorpus))
}

func TestScoreDistributionsMaxFiles(t *testing.T) {
	corpus := uniformCorpus(t)
	cfg := DefaultConfig
	cfg.MaxFiles = 1

	c := New(fakeMethod{"score", scoretable.HigherIsBetter}, cfg, nil)
	qt, err := c.ScoreDistributions(context.Background(), corpus)
	require.NoError(t, err)

	// Only prot0.csv (scores 1..50) is read.
	cuts := qt.Lookup(0.99)
	assert.Less(t, cuts["A"], 51.0)
}

func TestQuantileTableRoundTrip(t *testing.T) {
	qt := QuantileTable{
		Levels:  []float64{0.05, 0.95},
		Alleles: []string{"A", "B"},
		Values:  [][]float64{{1.23456, math.NaN()}, {9, 10}},
	}

	var buf bytes.Buffer
	require.NoError(t, qt.Write(&buf))
	assert.Equal(t, ",A,B\n0.05,1.235,\n0.95,9.000,10.000\n", buf.String())

	got, err := ReadQuantileTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, qt.Alleles, got.Alleles)
	assert.True(t, math.IsNaN(got.Values[0][1]))

	cuts := got.Lookup(0.1)
	assert.Equal(t, AlleleCutoffs{"A": 1.235}, cuts, "nearest row, missing alleles omitted")
}

func TestLookupEmpty(t *testing.T) {
	assert.Empty(t, QuantileTable{}.Lookup(0.95))
}
