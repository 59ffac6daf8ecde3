// epitopecalibrate computes per-allele score cutoffs from a corpus of
// prediction tables and prints them for one quantile.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/storage"
	"github.com/carbocation/epitopes"
	_ "github.com/carbocation/epitopes/compileinfoprint"
	"github.com/carbocation/epitopes/cutoff"
	"github.com/carbocation/epitopes/predictor"
)

func main() {
	var method, corpus, cachePath, pattern string
	var q float64
	var overwrite bool
	var maxFiles int

	flag.StringVar(&method, "method", "", "Prediction method whose tables make up the corpus. One of: "+predictor.MethodNames())
	flag.StringVar(&corpus, "corpus", "", "Folder of per-protein prediction tables. May be a Google Storage URL (gs://).")
	flag.Float64Var(&q, "q", 0.95, "Fraction of the corpus the cutoff should out-perform.")
	flag.BoolVar(&overwrite, "overwrite", false, "Recompute the quantile cache even if it exists.")
	flag.IntVar(&maxFiles, "max-files", cutoff.DefaultConfig.MaxFiles, "At most this many corpus tables are read. 0 reads all.")
	flag.StringVar(&pattern, "pattern", cutoff.DefaultConfig.Pattern, "Glob selecting corpus tables.")
	flag.StringVar(&cachePath, "cache", "", "(Optional) Quantile cache file. Defaults to quantiles.csv inside the corpus; required for gs:// corpora.")
	flag.Parse()

	if method == "" || corpus == "" {
		flag.PrintDefaults()
		return
	}

	p, err := predictor.New(method, predictor.DefaultConfig)
	if err != nil {
		log.Fatalln(err)
	}

	var client *storage.Client
	if epitopes.IsGoogleStorage(corpus) {
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	cfg := cutoff.DefaultConfig
	cfg.MaxFiles = maxFiles
	cfg.Pattern = pattern
	cfg.CachePath = cachePath

	cuts, err := cutoff.New(p, cfg, client).Calibrate(context.Background(), corpus, q, overwrite)
	if err != nil {
		log.Fatalln(err)
	}

	alleles := make([]string, 0, len(cuts))
	for allele := range cuts {
		alleles = append(alleles, allele)
	}
	sort.Strings(alleles)

	fmt.Printf("allele\tcutoff\n")
	for _, allele := range alleles {
		fmt.Printf("%s\t%.3f\n", allele, cuts[allele])
	}
}
