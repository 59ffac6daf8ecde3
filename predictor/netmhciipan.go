package predictor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/epitopes/scoretable"
)

// netMHCIIpan prints a banner before its result table.
const netMHCIIpanHeaderLines = 19

var netMHCIIpanColumns = []string{"pos", "HLA", "peptide", "Identity", "Pos", "Core", "1-log50k(aff)", "Affinity", "Rank"}

type NetMHCIIpan struct {
	method
}

func NewNetMHCIIpan(cfg Config) *NetMHCIIpan {
	return &NetMHCIIpan{method{
		name:          "netmhciipan",
		scoreKey:      "Affinity",
		direction:     scoretable.LowerIsBetter,
		defaultCutoff: 500,
		config:        cfg,
	}}
}

// ReadResult parses the whitespace-aligned text netMHCIIpan writes to stdout.
// Separator lines, repeated headers and short lines are skipped.
func (p *NetMHCIIpan) ReadResult(output []byte) *scoretable.Raw {
	lines := bytes.Split(output, []byte("\n"))
	if len(lines) <= netMHCIIpanHeaderLines {
		return scoretable.NewRaw(append([]string{}, netMHCIIpanColumns...), nil)
	}

	rows := make([][]string, 0)
	for _, line := range lines[netMHCIIpanHeaderLines:] {
		text := strings.TrimSpace(string(line))
		if strings.HasPrefix(text, "-") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < len(netMHCIIpanColumns) {
			continue
		}
		fields = fields[:len(netMHCIIpanColumns)]

		switch fields[0] {
		case "Protein", "pos":
			continue
		}

		rows = append(rows, fields)
	}

	return scoretable.NewRaw(append([]string{}, netMHCIIpanColumns...), rows)
}

func (p *NetMHCIIpan) PrepareData(raw *scoretable.Raw, name, allele string) (scoretable.Table, error) {
	if raw == nil {
		return scoretable.Table{}, nil
	}
	raw.Rename(map[string]string{"Core": "core", "HLA": "allele"})

	return p.prepare(raw, scoretable.WithScoreKey(p.scoreKey), name, allele)
}

// Predict calls the netMHCIIpan command line. Alleles are given in the
// standard HLA-DRB1*0101 form.
func (p *NetMHCIIpan) Predict(ctx context.Context, sequence, allele string, length int, name string) (scoretable.Table, error) {
	toolAllele, err := netMHCIIpanAllele(allele)
	if err != nil {
		return nil, err
	}

	seqfile, err := writeTempSequence(p.config.TempDir, sequence)
	if err != nil {
		return nil, err
	}
	defer os.Remove(seqfile)

	out, err := runTool(ctx, p.config.NetMHCIIpanCommand, "-s", "-length", strconv.Itoa(length), "-a", toolAllele, "-f", seqfile)
	if err != nil {
		return nil, err
	}

	return p.PrepareData(p.ReadResult(out), name, "")
}

func netMHCIIpanAllele(allele string) (string, error) {
	parts := strings.SplitN(allele, "-", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("invalid allele %q", allele)
	}

	return strings.ReplaceAll(parts[1], "*", "_"), nil
}
