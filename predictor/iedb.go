package predictor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/carbocation/epitopes/scoretable"
)

// IEDBMHCI wraps the IEDB MHC class I standalone tools.
type IEDBMHCI struct {
	method

	// IEDB method reported in the output -> column holding its IC50.
	ScoreColumns map[string]string
}

func NewIEDBMHCI(cfg Config) *IEDBMHCI {
	return &IEDBMHCI{
		method: method{
			name:          "iedbmhc1",
			scoreKey:      "ic50",
			direction:     scoretable.LowerIsBetter,
			defaultCutoff: 500,
			config:        cfg,
		},
		ScoreColumns: map[string]string{
			"ANN":                 "ann_ic50",
			"IEDB_recommended":    "smm_ic50",
			"Consensus (ANN,SMM)": "ann_ic50",
			"NetMHCpan":           "netmhcpan_ic50",
		},
	}
}

// PrepareData normalizes predict_binding.py output. The tool's method and
// percentile_rank headers are swapped relative to their contents, so they are
// swapped back before the score column is chosen.
func (p *IEDBMHCI) PrepareData(raw *scoretable.Raw, name, allele string) (scoretable.Table, error) {
	if raw == nil || len(raw.Rows) == 0 {
		return scoretable.Table{}, nil
	}

	raw.Rename(map[string]string{
		"percentile_rank": "method",
		"method":          "percentile_rank",
	})
	rowIndex(raw)
	raw.SetColumn("core", func(i int) string { return raw.Value(i, "peptide") })

	key, err := p.scoreColumn(raw)
	if err != nil {
		return nil, err
	}
	raw.SetColumn(p.scoreKey, func(i int) string { return raw.Value(i, key) })

	return p.prepare(raw, scoretable.WithScoreKey(p.scoreKey), name, allele)
}

func (p *IEDBMHCI) scoreColumn(raw *scoretable.Raw) (string, error) {
	if key, ok := p.ScoreColumns[raw.Value(0, "method")]; ok && raw.HasColumn(key) {
		return key, nil
	}
	if raw.HasColumn(p.scoreKey) {
		return p.scoreKey, nil
	}

	return "", fmt.Errorf("%w: cannot determine the IC50 column for method %q", scoretable.ErrMissingScoreKey, raw.Value(0, "method"))
}

// Predict runs src/predict_binding.py from the IEDB MHC-I distribution.
func (p *IEDBMHCI) Predict(ctx context.Context, sequence, allele string, length int, name string) (scoretable.Table, error) {
	if err := requirePath(p.config.IEDBMHCIPath, "iedb mhcI tools"); err != nil {
		return nil, err
	}

	seqfile, err := writeTempSequence(p.config.TempDir, sequence)
	if err != nil {
		return nil, err
	}
	defer os.Remove(seqfile)

	cmd := filepath.Join(p.config.IEDBMHCIPath, "src", "predict_binding.py")
	out, err := runTool(ctx, cmd, p.config.IEDBMHCIMethod, allele, strconv.Itoa(length), seqfile)
	if err != nil {
		return nil, err
	}

	raw, err := scoretable.ReadRaw(bytes.NewReader(out), '\t')
	if err != nil {
		return nil, err
	}

	return p.PrepareData(raw, name, "")
}

// IEDBMHCII wraps the IEDB MHC class II standalone tools.
type IEDBMHCII struct {
	method
}

func NewIEDBMHCII(cfg Config) *IEDBMHCII {
	return &IEDBMHCII{method{
		name:          "iedbmhc2",
		scoreKey:      "consensus_percentile",
		direction:     scoretable.LowerIsBetter,
		defaultCutoff: 3,
		config:        cfg,
	}}
}

// PrepareData normalizes mhc_II_binding.py output. The core is the NN-align
// core.
func (p *IEDBMHCII) PrepareData(raw *scoretable.Raw, name, allele string) (scoretable.Table, error) {
	if raw == nil || len(raw.Rows) == 0 {
		return scoretable.Table{}, nil
	}

	raw.Rename(map[string]string{"Sequence": "peptide", "Allele": "allele"})
	rowIndex(raw)
	if raw.HasColumn("nn_core") {
		raw.SetColumn("core", func(i int) string { return raw.Value(i, "nn_core") })
	}

	return p.prepare(raw, scoretable.WithScoreKey(p.scoreKey), name, allele)
}

// Predict runs mhc_II_binding.py. The class II tool picks its own window
// length, so length is ignored.
func (p *IEDBMHCII) Predict(ctx context.Context, sequence, allele string, length int, name string) (scoretable.Table, error) {
	if err := requirePath(p.config.IEDBMHCIIPath, "iedb mhcII tools"); err != nil {
		return nil, err
	}

	seqfile, err := writeTempSequence(p.config.TempDir, sequence)
	if err != nil {
		return nil, err
	}
	defer os.Remove(seqfile)

	cmd := filepath.Join(p.config.IEDBMHCIIPath, "mhc_II_binding.py")
	out, err := runTool(ctx, cmd, p.config.IEDBMHCIIMethod, allele, seqfile)
	if err != nil {
		return nil, fmt.Errorf("allele %s not available? %w", allele, err)
	}

	raw, err := scoretable.ReadRaw(bytes.NewReader(out), '\t')
	if err != nil {
		return nil, err
	}

	return p.PrepareData(raw, name, "")
}
