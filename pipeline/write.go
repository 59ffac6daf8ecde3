package pipeline

import (
	"io"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

func WriteCalls(w io.Writer, calls []Call) error {
	if calls == nil {
		calls = []Call{}
	}
	return pfx.Err(gocsv.Marshal(&calls, w))
}

func WriteRegions(w io.Writer, regions []Region) error {
	if regions == nil {
		regions = []Region{}
	}
	return pfx.Err(gocsv.Marshal(&regions, w))
}
