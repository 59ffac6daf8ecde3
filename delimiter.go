package epitopes

import (
	"bytes"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in a table, assuming a CSV-like file. Predictor adapters emit a mix of
// comma and tab separated output, so the sample is usually the first few lines.
func DetermineDelimiter(sample []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(sample), '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}
