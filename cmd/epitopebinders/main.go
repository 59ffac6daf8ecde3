// epitopebinders calibrates cutoffs for a corpus of prediction tables, then
// reports the binders (by default, promiscuous binders) of every protein in
// it, and the regions they cluster into.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/epitopes"
	"github.com/carbocation/epitopes/binders"
	"github.com/carbocation/epitopes/cluster"
	_ "github.com/carbocation/epitopes/compileinfoprint"
	"github.com/carbocation/epitopes/pipeline"
	"github.com/carbocation/epitopes/predictor"
	"github.com/carbocation/epitopes/resultdb"
)

func main() {
	var method, corpus, cachePath, mode, clusterMethod, regionsPath, dbPath string
	var all, dropSingletons bool

	cfg := pipeline.DefaultConfig
	ccfg := pipeline.DefaultClusterConfig

	flag.StringVar(&method, "method", "", "Prediction method whose tables make up the corpus. One of: "+predictor.MethodNames())
	flag.StringVar(&corpus, "corpus", "", "Folder of per-protein prediction tables. May be a Google Storage URL (gs://).")
	flag.StringVar(&cachePath, "cache", "", "(Optional) Quantile cache file. Defaults to quantiles.csv inside the corpus; required for gs:// corpora.")
	flag.IntVar(&cfg.Calibration.MaxFiles, "max-files", cfg.Calibration.MaxFiles, "At most this many corpus tables are used for calibration. 0 uses all.")
	flag.Float64Var(&cfg.Quantile, "q", cfg.Quantile, "Fraction of the corpus an allele's cutoff should out-perform.")
	flag.IntVar(&cfg.MinAlleles, "n", cfg.MinAlleles, "Minimum number of alleles binding a position for it to be reported.")
	flag.BoolVar(&all, "all", false, "Report every binder rather than only promiscuous ones.")
	flag.StringVar(&mode, "mode", cfg.Mode.String(), "Binder selection: cutoff or rank.")
	flag.Float64Var(&cfg.Params.Q, "rank-q", cfg.Params.Q, "With -mode=rank, the quantile of each protein's ranks to keep.")
	flag.StringVar(&clusterMethod, "cluster", ccfg.Method.String(), "Region clustering: overlap or density.")
	flag.IntVar(&ccfg.Overlap.ClusterLength, "cluster-length", ccfg.Overlap.ClusterLength, "With -cluster=overlap, the widest span of a region.")
	flag.BoolVar(&dropSingletons, "drop-singletons", false, "With -cluster=overlap, do not report single-binder regions.")
	flag.IntVar(&ccfg.Density.Dist, "dist", ccfg.Density.Dist, "With -cluster=density, the neighborhood radius in residues.")
	flag.IntVar(&ccfg.Density.MinSize, "minsize", ccfg.Density.MinSize, "With -cluster=density, binders needed in a neighborhood to seed a region.")
	flag.StringVar(&regionsPath, "regions", "", "(Optional) File that receives the regions as CSV.")
	flag.StringVar(&dbPath, "db", "", "(Optional) sqlite database that receives binders and regions.")
	flag.Parse()

	if method == "" || corpus == "" {
		flag.PrintDefaults()
		return
	}

	p, err := predictor.New(method, predictor.DefaultConfig)
	if err != nil {
		log.Fatalln(err)
	}

	cfg.Promiscuous = !all
	cfg.Calibration.CachePath = cachePath
	if cfg.Mode, err = binders.ParseMode(mode); err != nil {
		log.Fatalln(err)
	}
	if ccfg.Method, err = pipeline.ParseClusterMethod(clusterMethod); err != nil {
		log.Fatalln(err)
	}
	if dropSingletons {
		ccfg.Overlap.Singletons = cluster.SingletonsDrop
	}

	var client *storage.Client
	if epitopes.IsGoogleStorage(corpus) {
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	calls, err := pipeline.BindersFromPath(context.Background(), p, corpus, cfg, client)
	if err != nil {
		log.Fatalln(err)
	}

	summary, err := pipeline.Summarize(calls)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("%d binders in %d proteins. Score mean %.3f, median %.3f. Median alleles per binder: %.1f\n",
		summary.Binders, summary.Proteins, summary.MeanScore, summary.MedianScore, summary.MedianAlleles)

	regions := pipeline.Regions(calls, ccfg)
	log.Println(len(regions), ccfg.Method, "regions")

	if err := pipeline.WriteCalls(os.Stdout, calls); err != nil {
		log.Fatalln(err)
	}

	if regionsPath != "" {
		if err := writeRegions(regionsPath, regions); err != nil {
			log.Fatalln(err)
		}
	}

	if dbPath != "" {
		db, err := resultdb.Open(dbPath)
		if err != nil {
			log.Fatalln(err)
		}
		defer db.Close()

		if err := db.SaveCalls(p.Name(), calls); err != nil {
			log.Fatalln(err)
		}
		if err := db.SaveRegions(p.Name(), regions); err != nil {
			log.Fatalln(err)
		}
		log.Println("Saved results to", dbPath)
	}
}

func writeRegions(path string, regions []pipeline.Region) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := pipeline.WriteRegions(f, regions); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
