package scoretable

import (
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Write emits the table as CSV in the DefaultColumns layout.
func Write(w io.Writer, t Table) error {
	rows := []Record(t)
	if rows == nil {
		rows = []Record{}
	}

	return pfx.Err(gocsv.Marshal(&rows, w))
}

// WriteFile writes the table to path, replacing any existing file.
func WriteFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	if err := Write(f, t); err != nil {
		f.Close()
		return err
	}

	return pfx.Err(f.Close())
}
