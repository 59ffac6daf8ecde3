package pipeline

import (
	"github.com/montanaflynn/stats"
)

type Summary struct {
	Proteins      int
	Binders       int
	MeanScore     float64
	MedianScore   float64
	MedianAlleles float64
}

// Summarize describes a set of calls. All statistics are zero for no calls.
func Summarize(calls []Call) (Summary, error) {
	out := Summary{Binders: len(calls)}
	if len(calls) == 0 {
		return out, nil
	}

	names := make(map[string]struct{})
	scores := make(stats.Float64Data, 0, len(calls))
	alleles := make(stats.Float64Data, 0, len(calls))
	for _, c := range calls {
		names[c.Name] = struct{}{}
		scores = append(scores, c.Score)
		alleles = append(alleles, float64(c.AlleleCount))
	}
	out.Proteins = len(names)

	var err error
	if out.MeanScore, err = stats.Mean(scores); err != nil {
		return out, err
	}
	if out.MedianScore, err = stats.Median(scores); err != nil {
		return out, err
	}
	if out.MedianAlleles, err = stats.Median(alleles); err != nil {
		return out, err
	}

	return out, nil
}
