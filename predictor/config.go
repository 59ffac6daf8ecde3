package predictor

// Config locates the external tools behind each method. Paths are only
// consulted by Predict; PrepareData works without any of them.
type Config struct {
	NetMHCIIpanCommand string

	IEDBMHCIPath    string
	IEDBMHCIMethod  string
	IEDBMHCIIPath   string
	IEDBMHCIIMethod string
	IEDBBCellPath   string
	BCellMethod     string

	// Python interpreter used for the IEDB B-cell tool.
	Python string

	// Position specific scoring matrices for tepitope, keyed by allele.
	PSSMs map[string]PSSM

	// Where temporary sequence files are written. Empty means os.TempDir().
	TempDir string
}

var DefaultConfig = Config{
	NetMHCIIpanCommand: "netMHCIIpan",
	IEDBMHCIPath:       "/local/iedbmhc1/",
	IEDBMHCIMethod:     "IEDB_recommended",
	IEDBMHCIIPath:      "/local/iedbmhc2/",
	IEDBMHCIIMethod:    "consensus3",
	IEDBBCellPath:      "/local/iedbbcell/",
	BCellMethod:        "Bepipred",
	Python:             "python",
}
