package predictor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/epitopes/scoretable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnknownMethod(t *testing.T) {
	p, err := New("netmhcpan4", DefaultConfig)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, ErrUnknownMethod))
	assert.Contains(t, err.Error(), "tepitope")
}

func TestRegistryConstants(t *testing.T) {
	for _, v := range []struct {
		Name      string
		ScoreKey  string
		Direction scoretable.Direction
		Cutoff    float64
	}{
		{"netmhciipan", "Affinity", scoretable.LowerIsBetter, 500},
		{"iedbmhc1", "ic50", scoretable.LowerIsBetter, 500},
		{"iedbmhc2", "consensus_percentile", scoretable.LowerIsBetter, 3},
		{"tepitope", "score", scoretable.HigherIsBetter, 2},
		{"bcell", "Score", scoretable.HigherIsBetter, 0.9},
	} {
		p, err := New(v.Name, DefaultConfig)
		require.NoError(t, err)
		assert.Equal(t, v.Name, p.Name())
		assert.Equal(t, v.ScoreKey, p.ScoreKey())
		assert.Equal(t, v.Direction, p.Direction())
		assert.Equal(t, v.Cutoff, p.DefaultCutoff())
	}
}

func TestNetMHCIIpanReadResult(t *testing.T) {
	banner := strings.Repeat("# banner line\n", netMHCIIpanHeaderLines)
	out := banner +
		"----------------------------------------------------------------\n" +
		"   pos    HLA    peptide    Identity    Pos    Core    1-log50k(aff)    Affinity    Rank\n" +
		"----------------------------------------------------------------\n" +
		"     0  DRB1_0101  MKLLVLGLLAA  temp1  3  LVLGLLAAS  0.512  120.30  4.00\n" +
		"     1  DRB1_0101  KLLVLGLLAAS  temp1  2  LVLGLLAAS  0.700   15.20  1.00\n" +
		"     2  DRB1_0101  LLVLGLLAASA  temp1  1  VLGLLAASA  0.300  800.00 30.00\n" +
		"Protein temp1. Allele DRB1_0101. Number of high binders 1.\n"

	p := NewNetMHCIIpan(DefaultConfig)
	raw := p.ReadResult([]byte(out))
	require.Len(t, raw.Rows, 3)

	tab, err := p.PrepareData(raw, "prot1", "")
	require.NoError(t, err)
	require.Len(t, tab, 3)

	assert.Equal(t, "KLLVLGLLAAS", tab[0].Peptide)
	assert.Equal(t, 1, tab[0].Rank)
	assert.Equal(t, 15.2, tab[0].Score)
	assert.Equal(t, "LVLGLLAAS", tab[0].Core)
	assert.Equal(t, "DRB1_0101", tab[0].Allele)
	assert.Equal(t, "prot1", tab[0].Name)
	assert.Equal(t, 3, tab[2].Rank)
}

func TestNetMHCIIpanAllele(t *testing.T) {
	a, err := netMHCIIpanAllele("HLA-DRB1*0101")
	require.NoError(t, err)
	assert.Equal(t, "DRB1_0101", a)

	_, err = netMHCIIpanAllele("DRB10101")
	assert.Error(t, err)
}

func TestIEDBMHCIPrepareData(t *testing.T) {
	// Header labels of method and percentile_rank are swapped by the tool.
	body := "allele\tseq_num\tstart\tend\tlength\tpeptide\tmethod\tpercentile_rank\tann_ic50\tsmm_ic50\n" +
		"HLA-A*01:01\t1\t1\t9\t9\tMKLLVLGLL\t2.5\tIEDB_recommended\t900\t300\n" +
		"HLA-A*01:01\t1\t2\t10\t9\tKLLVLGLLA\t0.5\tIEDB_recommended\t50\t20\n" +
		"HLA-A*01:01\t1\t3\t11\t9\tLLVLGLLAA\t9.5\tIEDB_recommended\t-\t-\n"

	raw, err := scoretable.ReadRaw(strings.NewReader(body), '\t')
	require.NoError(t, err)

	p := NewIEDBMHCI(DefaultConfig)
	tab, err := p.PrepareData(raw, "prot1", "")
	require.NoError(t, err)
	require.Len(t, tab, 2, "the row without an IC50 is dropped")

	assert.Equal(t, "KLLVLGLLA", tab[0].Peptide)
	assert.Equal(t, 20.0, tab[0].Score, "IEDB_recommended reads smm_ic50")
	assert.Equal(t, 1, tab[0].Pos)
	assert.Equal(t, tab[0].Peptide, tab[0].Core)
	assert.Equal(t, "HLA-A*01:01", tab[0].Allele)
}

func TestIEDBMHCIIPrepareData(t *testing.T) {
	body := "Allele\tStart\tEnd\tSequence\tconsensus_percentile\tnn_core\n" +
		"HLA-DRB1*01:01\t1\t15\tMKLLVLGLLAASAAA\t12.0\tLVLGLLAAS\n" +
		"HLA-DRB1*01:01\t2\t16\tKLLVLGLLAASAAAK\t1.5\tVLGLLAASA\n"

	raw, err := scoretable.ReadRaw(strings.NewReader(body), '\t')
	require.NoError(t, err)

	tab, err := NewIEDBMHCII(DefaultConfig).PrepareData(raw, "prot1", "")
	require.NoError(t, err)
	require.Len(t, tab, 2)
	assert.Equal(t, "VLGLLAASA", tab[0].Core)
	assert.Equal(t, 1, tab[0].Pos)
	assert.Equal(t, 1, tab[0].Rank)
}

func TestBCellPrepareData(t *testing.T) {
	body := "Position,Residue,Score\n1,M,0.2\n2,K,1.1\n3,L,0.95\n"

	raw, err := scoretable.ReadRaw(strings.NewReader(body), ',')
	require.NoError(t, err)

	tab, err := NewBCell(DefaultConfig).PrepareData(raw, "prot1", "")
	require.NoError(t, err)
	require.Len(t, tab, 3)
	assert.Equal(t, "K", tab[0].Peptide)
	assert.Equal(t, "Bepipred", tab[0].Allele)
}

func TestTEpitopePredict(t *testing.T) {
	m := make(PSSM, 3)
	for i := range m {
		m[i] = map[byte]float64{'A': 1, 'W': 3}
	}

	cfg := DefaultConfig
	cfg.PSSMs = map[string]PSSM{"HLA-DRB1*0101": m}
	p := NewTEpitope(cfg)

	tab, err := p.Predict(context.Background(), "GGWWWAGGG", "HLA-DRB1*0101", 5, "prot1")
	require.NoError(t, err)
	require.Len(t, tab, 5)

	best := tab[0]
	assert.Equal(t, 1, best.Rank)
	assert.Equal(t, "WWW", best.Core)
	assert.Equal(t, 9.0, best.Score)
	assert.Equal(t, "HLA-DRB1*0101", best.Allele)

	empty, err := p.Predict(context.Background(), "GGWWWAGGG", "HLA-DRB1*1501", 5, "prot1")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReadPSSM(t *testing.T) {
	body := ",1,2,3\nA,1.0,0.5,-1\nW,2,-,0\n"

	m, err := ReadPSSM(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, m, 3)
	assert.Equal(t, 1.5, m.Score("WAA"))
	_, _, ok := m.BestCore("AA")
	assert.False(t, ok)
}

func TestPredictProteinsWritesCorpus(t *testing.T) {
	m := PSSM{{'A': 1}, {'A': 1}}
	cfg := DefaultConfig
	cfg.PSSMs = map[string]PSSM{"X": m, "Y": m}
	p := NewTEpitope(cfg)

	proteins, err := ReadProteins(strings.NewReader("locus_tag,translation\np1,AAAAGG\np2,\np3,GGAAAA\n"))
	require.NoError(t, err)
	require.Len(t, proteins, 2)

	dir := filepath.Join(t.TempDir(), "tepitope")
	out, err := PredictProteins(context.Background(), p, proteins, []string{"X", "Y"}, 3, dir)
	require.NoError(t, err)
	assert.Nil(t, out)

	for _, name := range []string{"p1.csv", "p3.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}

	f, err := os.Open(filepath.Join(dir, "p1.csv"))
	require.NoError(t, err)
	defer f.Close()
	tab, err := scoretable.Read(f, scoretable.DefaultColumns)
	require.NoError(t, err)
	assert.Len(t, tab, 8)
	assert.Equal(t, []string{"X", "Y"}, tab.Alleles())
}

func TestReadPSSMDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HLA-DRB1*0101.csv"), []byte(",1,2\nA,1,2\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	got, err := ReadPSSMDir(dir)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3.0, got["HLA-DRB1*0101"].Score("AA"))
}
