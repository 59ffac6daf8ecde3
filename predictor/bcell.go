package predictor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/carbocation/epitopes/scoretable"
)

// BCell wraps the IEDB B-cell epitope tools. These score residues rather than
// allele-restricted peptides, so the IEDB method name stands in for the allele.
type BCell struct {
	method
}

func NewBCell(cfg Config) *BCell {
	return &BCell{method{
		name:          "bcell",
		scoreKey:      "Score",
		direction:     scoretable.HigherIsBetter,
		defaultCutoff: 0.9,
		config:        cfg,
	}}
}

// PrepareData maps Position/Residue onto pos/peptide. The residue is its own
// core.
func (p *BCell) PrepareData(raw *scoretable.Raw, name, allele string) (scoretable.Table, error) {
	if raw == nil || len(raw.Rows) == 0 {
		return scoretable.Table{}, nil
	}

	raw.Rename(map[string]string{"Position": "pos", "Residue": "peptide"})
	if allele == "" {
		allele = p.config.BCellMethod
	}

	return p.prepare(raw, scoretable.WithScoreKey(p.scoreKey), name, allele)
}

// Predict runs predict_antibody_epitope.py. Windowing is left to the tool, so
// allele and length are ignored.
func (p *BCell) Predict(ctx context.Context, sequence, allele string, length int, name string) (scoretable.Table, error) {
	if err := requirePath(p.config.IEDBBCellPath, "iedb bcell tools"); err != nil {
		return nil, err
	}

	seqfile, err := writeTempSequence(p.config.TempDir, sequence)
	if err != nil {
		return nil, err
	}
	defer os.Remove(seqfile)

	script := filepath.Join(p.config.IEDBBCellPath, "predict_antibody_epitope.py")
	out, err := runTool(ctx, p.config.Python, script, "-m", p.config.BCellMethod, "-f", seqfile)
	if err != nil {
		return nil, err
	}

	raw, err := scoretable.ReadRaw(bytes.NewReader(out), 0)
	if err != nil {
		return nil, err
	}

	return p.PrepareData(raw, name, "")
}
