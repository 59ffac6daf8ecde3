package predictor

import (
	"context"
	"errors"
	"strconv"

	"github.com/carbocation/epitopes/scoretable"
)

// ErrUnknownMethod is returned by New for a method name with no registered
// predictor.
var ErrUnknownMethod = errors.New("no such predictor")

// Predictor is one prediction method. Implementations know which column of
// their output holds the score, which direction of that score is better, and
// the cutoff used for an allele with no calibrated threshold.
type Predictor interface {
	Name() string
	ScoreKey() string
	Direction() scoretable.Direction
	DefaultCutoff() float64

	// PrepareData normalizes a raw table produced by the method into ranked
	// records. name labels the protein; a non-empty allele overrides whatever
	// allele the raw table reports.
	PrepareData(raw *scoretable.Raw, name, allele string) (scoretable.Table, error)

	// Predict scores every window of the given length in sequence against one
	// allele.
	Predict(ctx context.Context, sequence, allele string, length int, name string) (scoretable.Table, error)
}

// method carries the constants every Predictor shares.
type method struct {
	name          string
	scoreKey      string
	direction     scoretable.Direction
	defaultCutoff float64
	config        Config
}

func (m method) Name() string                    { return m.name }
func (m method) ScoreKey() string                { return m.scoreKey }
func (m method) Direction() scoretable.Direction { return m.direction }
func (m method) DefaultCutoff() float64          { return m.defaultCutoff }

// prepare converts a raw table whose columns already follow cols into ranked
// records.
func (m method) prepare(raw *scoretable.Raw, cols scoretable.Columns, name, allele string) (scoretable.Table, error) {
	if raw == nil || len(raw.Rows) == 0 {
		return scoretable.Table{}, nil
	}

	if name != "" || !raw.HasColumn(cols.Name) {
		raw.SetColumn(cols.Name, func(int) string { return name })
	}
	if allele != "" || !raw.HasColumn(cols.Allele) {
		raw.SetColumn(cols.Allele, func(int) string { return allele })
	}

	t, err := scoretable.FromRaw(raw, cols)
	if err != nil {
		return nil, err
	}

	return scoretable.Rank(t, m.direction), nil
}

// rowIndex fills a pos column from the row number, as the IEDB tools report
// windows in sequence order without an offset column of their own.
func rowIndex(raw *scoretable.Raw) {
	raw.SetColumn("pos", func(i int) string { return strconv.Itoa(i) })
}
