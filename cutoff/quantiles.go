package cutoff

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/carbocation/pfx"
)

// AlleleCutoffs maps an allele to its score threshold.
type AlleleCutoffs map[string]float64

// QuantileTable holds, for every allele, the score found at each population
// quantile of a reference corpus. Row labels always mean "fraction of the
// population this score out-performs": for lower-is-better methods the raw
// quantile q is stored under 1-q. Rows are kept in ascending label order.
type QuantileTable struct {
	Levels  []float64
	Alleles []string
	Values  [][]float64 // Values[level][allele]; NaN where an allele has no data
}

// levels are the raw quantiles computed for every allele: 0.01 to 0.99.
func levels() []float64 {
	out := make([]float64, 0, 99)
	for i := 1; i <= 99; i++ {
		out = append(out, float64(i)/100)
	}
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Lookup returns the cutoffs in the row whose label is nearest to q. Alleles
// with no value in that row are omitted. An empty table yields an empty map.
func (qt QuantileTable) Lookup(q float64) AlleleCutoffs {
	out := make(AlleleCutoffs)
	if len(qt.Levels) == 0 {
		return out
	}

	best := 0
	for i, level := range qt.Levels {
		if math.Abs(level-q) < math.Abs(qt.Levels[best]-q) {
			best = i
		}
	}

	for j, allele := range qt.Alleles {
		if v := qt.Values[best][j]; !math.IsNaN(v) {
			out[allele] = v
		}
	}

	return out
}

// Write emits the table as CSV: a header of "" followed by the alleles, then
// one row per level. Levels are written with two decimals and scores with
// three; missing values are empty cells.
func (qt QuantileTable) Write(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{""}, qt.Alleles...)); err != nil {
		return pfx.Err(err)
	}

	for i, level := range qt.Levels {
		row := make([]string, 0, len(qt.Alleles)+1)
		row = append(row, strconv.FormatFloat(level, 'f', 2, 64))
		for _, v := range qt.Values[i] {
			if math.IsNaN(v) {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', 3, 64))
		}
		if err := cw.Write(row); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()
	return pfx.Err(cw.Error())
}

// ReadQuantileTable parses a table written by Write.
func ReadQuantileTable(r io.Reader) (QuantileTable, error) {
	out := QuantileTable{}

	cr := csv.NewReader(r)
	entries, err := cr.ReadAll()
	if err != nil {
		return out, pfx.Err(err)
	}
	if len(entries) == 0 {
		return out, fmt.Errorf("quantile table is empty")
	}

	out.Alleles = append(out.Alleles, entries[0][1:]...)
	for i, row := range entries[1:] {
		level, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return out, fmt.Errorf("quantile table line %d: %w", i+2, err)
		}

		values := make([]float64, len(out.Alleles))
		for j := range values {
			values[j] = math.NaN()
			if j+1 >= len(row) || row[j+1] == "" {
				continue
			}
			v, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return out, fmt.Errorf("quantile table line %d: %w", i+2, err)
			}
			values[j] = v
		}

		out.Levels = append(out.Levels, level)
		out.Values = append(out.Values, values)
	}

	return out, nil
}

// sortLevels orders rows by ascending label.
func (qt *QuantileTable) sortLevels() {
	order := make([]int, len(qt.Levels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return qt.Levels[order[i]] < qt.Levels[order[j]] })

	levels := make([]float64, len(order))
	values := make([][]float64, len(order))
	for i, idx := range order {
		levels[i] = qt.Levels[idx]
		values[i] = qt.Values[idx]
	}
	qt.Levels, qt.Values = levels, values
}

// WriteQuantileFile replaces path with the table. The table is written to a
// temporary file in the same directory and renamed into place, so a reader
// never sees a partial cache.
func WriteQuantileFile(path string, qt QuantileTable) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pfx.Err(err)
	}

	f, err := os.CreateTemp(dir, ".quantiles-*.csv")
	if err != nil {
		return pfx.Err(err)
	}

	if err := qt.Write(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return pfx.Err(err)
	}

	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return pfx.Err(err)
	}

	return nil
}

// ReadQuantileFile reads a cached table from path.
func ReadQuantileFile(path string) (QuantileTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return QuantileTable{}, err
	}
	defer f.Close()

	return ReadQuantileTable(f)
}
