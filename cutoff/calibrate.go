// Package cutoff derives allele-specific score thresholds from the empirical
// score distribution of a reference corpus of prediction tables. The computed
// quantiles are cached next to the corpus.
package cutoff

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"

	"cloud.google.com/go/storage"
	"github.com/carbocation/epitopes"
	"github.com/carbocation/epitopes/scoretable"
	"github.com/carbocation/runningvariance"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyCorpus is returned when no corpus table carries the score column.
var ErrEmptyCorpus = errors.New("no usable prediction tables")

type Config struct {
	// MaxFiles caps how many corpus tables are read. Zero or less reads all.
	MaxFiles int

	// Pattern selects corpus tables by base name. The default also matches
	// compressed tables such as p1.csv.gz.
	Pattern string

	// CacheName is the quantile cache file name within the corpus.
	CacheName string

	// CachePath overrides <corpus>/<CacheName>. Required when the corpus lives
	// in Google Storage, since the cache is always a local file.
	CachePath string
}

var DefaultConfig = Config{
	MaxFiles:  200,
	Pattern:   "*.csv*",
	CacheName: "quantiles.csv",
}

// Method is the part of a predictor the calibrator needs.
type Method interface {
	ScoreKey() string
	Direction() scoretable.Direction
}

type Calibrator struct {
	Config Config
	Method Method

	// Client is only needed for gs:// corpora.
	Client *storage.Client
}

func New(m Method, cfg Config, client *storage.Client) *Calibrator {
	return &Calibrator{Config: cfg, Method: m, Client: client}
}

// CachePath is the quantile cache location for corpus.
func (c *Calibrator) CachePath(corpus string) (string, error) {
	if c.Config.CachePath != "" {
		return epitopes.ExpandHome(c.Config.CachePath)
	}
	if epitopes.IsGoogleStorage(corpus) {
		return "", fmt.Errorf("corpus %s is in Google Storage; set a local CachePath", corpus)
	}

	dir, err := epitopes.ExpandHome(corpus)
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, c.Config.CacheName), nil
}

// Calibrate returns, for each allele seen in corpus, the score that out-performs
// a fraction q of the corpus. The cached quantile table is reused unless it is
// missing or overwrite is set, in which case it is recomputed and replaced.
func (c *Calibrator) Calibrate(ctx context.Context, corpus string, q float64, overwrite bool) (AlleleCutoffs, error) {
	cache, err := c.CachePath(corpus)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(cache); overwrite || os.IsNotExist(err) {
		qt, err := c.ScoreDistributions(ctx, corpus)
		if err != nil {
			return nil, err
		}
		if err := WriteQuantileFile(cache, qt); err != nil {
			return nil, err
		}
		log.Println("Wrote quantiles to", cache)
	}

	qt, err := ReadQuantileFile(cache)
	if err != nil {
		return nil, err
	}

	return qt.Lookup(q), nil
}

// ScoreDistributions reads up to MaxFiles corpus tables, pools each allele's
// per-peptide scores and computes the 0.01..0.99 quantiles. Tables without the
// score column are skipped.
func (c *Calibrator) ScoreDistributions(ctx context.Context, corpus string) (QuantileTable, error) {
	files, err := epitopes.ListTables(ctx, corpus, c.Config.Pattern, c.Client)
	if err != nil {
		return QuantileTable{}, err
	}

	// The cache lives among the corpus tables and must not be read as one.
	kept := files[:0]
	for _, f := range files {
		if filepath.Base(f) != c.Config.CacheName {
			kept = append(kept, f)
		}
	}
	files = kept

	if c.Config.MaxFiles > 0 && len(files) > c.Config.MaxFiles {
		files = files[:c.Config.MaxFiles]
	}

	cols := scoretable.WithScoreKey(c.Method.ScoreKey())
	pooled := make(map[string][]float64)
	running := make(map[string]*runningvariance.RunningStat)
	used := 0

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return QuantileTable{}, err
		}

		t, err := scoretable.ReadFile(ctx, file, cols, c.Client)
		if errors.Is(err, scoretable.ErrMissingScoreKey) {
			log.Printf("Skipping %s: %v\n", file, err)
			continue
		} else if err != nil {
			return QuantileTable{}, err
		}
		used++

		pivot := scoretable.NewPivot(t)
		for _, allele := range pivot.Alleles {
			if running[allele] == nil {
				running[allele] = runningvariance.NewRunningStat()
			}
			for _, v := range pivot.Column(allele) {
				if math.IsNaN(v) {
					continue
				}
				pooled[allele] = append(pooled[allele], v)
				running[allele].Push(v)
			}
		}
	}

	if used == 0 {
		return QuantileTable{}, fmt.Errorf("%s: %w", corpus, ErrEmptyCorpus)
	}

	log.Printf("Read %d of %d tables from %s\n", used, len(files), corpus)
	for _, allele := range sortedKeys(running) {
		rs := running[allele]
		log.Println(allele, "N:", rs.N, "Mean:", rs.Mean(), "Std:", rs.StandardDeviation())
	}

	return quantiles(pooled, c.Method.Direction()), nil
}

// quantiles computes the table from pooled scores. For lower-is-better
// methods each raw quantile p is labeled 1-p.
//
// Values use gonum's LinInterp rule, which interpolates the empirical CDF at
// p*n: for 1..100 the 0.05 quantile is 5, not the 5.95 of the (n-1)*p rule
// used by pandas. Caches written by pandas-based tools are therefore not
// interchangeable with these.
func quantiles(pooled map[string][]float64, direction scoretable.Direction) QuantileTable {
	qt := QuantileTable{Alleles: sortedKeys(pooled)}

	sorted := make([][]float64, len(qt.Alleles))
	for j, allele := range qt.Alleles {
		s := append([]float64(nil), pooled[allele]...)
		sort.Float64s(s)
		sorted[j] = s
	}

	for _, p := range levels() {
		row := make([]float64, len(qt.Alleles))
		for j := range qt.Alleles {
			if len(sorted[j]) == 0 {
				row[j] = math.NaN()
				continue
			}
			row[j] = stat.Quantile(p, stat.LinInterp, sorted[j], nil)
		}

		label := p
		if direction == scoretable.LowerIsBetter {
			label = round2(1 - p)
		}

		qt.Levels = append(qt.Levels, label)
		qt.Values = append(qt.Values, row)
	}

	qt.sortLevels()

	return qt
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
