// epitopepredict runs one prediction method over every protein of a feature
// table and every requested allele, writing one normalized table per protein.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/carbocation/epitopes"
	_ "github.com/carbocation/epitopes/compileinfoprint"
	"github.com/carbocation/epitopes/predictor"
	"github.com/carbocation/epitopes/scoretable"
)

func main() {
	var method, proteinFile, alleleList, outDir, pssmDir string
	var length int

	cfg := predictor.DefaultConfig

	flag.StringVar(&method, "method", "tepitope", "Prediction method. One of: "+predictor.MethodNames())
	flag.StringVar(&proteinFile, "proteins", "", "CSV feature table with locus_tag and translation columns.")
	flag.StringVar(&alleleList, "alleles", "", "Comma-separated alleles to predict against.")
	flag.IntVar(&length, "length", 11, "Peptide window length.")
	flag.StringVar(&outDir, "out", "", "(Optional) Folder that receives one <locus_tag>.csv per protein. If empty, all predictions are written to stdout.")
	flag.StringVar(&pssmDir, "pssm", "", "Folder of <allele>.csv matrices for tepitope.")
	flag.StringVar(&cfg.NetMHCIIpanCommand, "netmhciipan", cfg.NetMHCIIpanCommand, "netMHCIIpan executable.")
	flag.StringVar(&cfg.IEDBMHCIPath, "iedbmhc1", cfg.IEDBMHCIPath, "Folder of the IEDB MHC-I tools.")
	flag.StringVar(&cfg.IEDBMHCIMethod, "iedbmhc1-method", cfg.IEDBMHCIMethod, "IEDB MHC-I method.")
	flag.StringVar(&cfg.IEDBMHCIIPath, "iedbmhc2", cfg.IEDBMHCIIPath, "Folder of the IEDB MHC-II tools.")
	flag.StringVar(&cfg.IEDBMHCIIMethod, "iedbmhc2-method", cfg.IEDBMHCIIMethod, "IEDB MHC-II method.")
	flag.StringVar(&cfg.IEDBBCellPath, "iedbbcell", cfg.IEDBBCellPath, "Folder of the IEDB B-cell tools.")
	flag.StringVar(&cfg.BCellMethod, "bcell-method", cfg.BCellMethod, "IEDB B-cell method.")
	flag.StringVar(&cfg.Python, "python", cfg.Python, "Python interpreter for the IEDB B-cell tools.")
	flag.Parse()

	if proteinFile == "" || alleleList == "" {
		flag.PrintDefaults()
		return
	}

	if pssmDir != "" {
		var err error
		if cfg.PSSMs, err = predictor.ReadPSSMDir(pssmDir); err != nil {
			log.Fatalln(err)
		}
		log.Println("Loaded", len(cfg.PSSMs), "matrices from", pssmDir)
	}

	p, err := predictor.New(method, cfg)
	if err != nil {
		log.Fatalln(err)
	}

	proteins, err := readProteins(proteinFile)
	if err != nil {
		log.Fatalln(err)
	}
	log.Println("Read", len(proteins), "proteins from", proteinFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	alleles := strings.Split(alleleList, ",")
	for i := range alleles {
		alleles[i] = strings.TrimSpace(alleles[i])
	}

	if outDir != "" {
		if outDir, err = epitopes.ExpandHome(outDir); err != nil {
			log.Fatalln(err)
		}
	}

	results, err := predictor.PredictProteins(ctx, p, proteins, alleles, length, outDir)
	if err != nil {
		log.Fatalln(err)
	}

	if outDir == "" {
		if err := scoretable.Write(os.Stdout, results); err != nil {
			log.Fatalln(err)
		}
	}
}

func readProteins(path string) ([]predictor.Protein, error) {
	path, err := epitopes.ExpandHome(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return predictor.ReadProteins(f)
}
