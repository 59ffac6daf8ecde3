package predictor

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/carbocation/epitopes/scoretable"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Protein is one coding sequence from a feature table.
type Protein struct {
	LocusTag    string `csv:"locus_tag"`
	Translation string `csv:"translation"`
}

// ReadProteins reads a CSV feature table with locus_tag and translation
// columns. Rows without a translation are dropped.
func ReadProteins(r io.Reader) ([]Protein, error) {
	records := []*Protein{}
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]Protein, 0, len(records))
	for _, rec := range records {
		if rec.Translation == "" {
			continue
		}
		out = append(out, *rec)
	}

	return out, nil
}

// PredictProteins runs p over every protein and allele. If outDir is set, one
// <locus_tag>.csv per protein is written there and nil is returned; otherwise
// the concatenated predictions are returned. A failed (protein, allele) run is
// logged and contributes no rows.
func PredictProteins(ctx context.Context, p Predictor, proteins []Protein, alleles []string, length int, outDir string) (scoretable.Table, error) {
	if len(alleles) == 0 {
		return scoretable.Table{}, nil
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return nil, pfx.Err(err)
		}
	}

	results := make(scoretable.Table, 0)
	for _, protein := range proteins {
		started := time.Now()

		res := make(scoretable.Table, 0)
		for _, allele := range alleles {
			t, err := p.Predict(ctx, protein.Translation, allele, length, protein.LocusTag)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Printf("%s %s %s: %v\n", p.Name(), protein.LocusTag, allele, err)
				continue
			}
			res = append(res, t...)
		}

		if outDir != "" {
			fname := filepath.Join(outDir, protein.LocusTag+".csv")
			if err := scoretable.WriteFile(fname, res); err != nil {
				return nil, err
			}
		} else {
			results = append(results, res...)
		}

		log.Printf("%s: %d predictions for %s in %s\n", p.Name(), len(res), protein.LocusTag, time.Since(started))
	}

	log.Printf("predictions done for %d proteins in %d alleles\n", len(proteins), len(alleles))
	if outDir != "" {
		log.Println("results saved to", outDir)
		return nil, nil
	}

	return results, nil
}
