// Package resultdb stores binder calls and regions in a sqlite database so
// that they can be browsed without rerunning a corpus.
package resultdb

import (
	"github.com/carbocation/epitopes/pipeline"
	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS calls (
	predictor TEXT NOT NULL,
	name TEXT NOT NULL,
	peptide TEXT NOT NULL,
	core TEXT NOT NULL,
	pos INTEGER NOT NULL,
	allele TEXT NOT NULL,
	score REAL NOT NULL,
	alleles INTEGER NOT NULL,
	"start" INTEGER NOT NULL,
	"end" INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS calls_name ON calls (predictor, name);

CREATE TABLE IF NOT EXISTS regions (
	predictor TEXT NOT NULL,
	name TEXT NOT NULL,
	method TEXT NOT NULL,
	"start" INTEGER NOT NULL,
	"end" INTEGER NOT NULL,
	binders INTEGER NOT NULL,
	positions TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS regions_name ON regions (predictor, name);
`

type DB struct {
	db *sqlx.DB
}

// Open connects to the sqlite file at path, creating it and its tables if
// needed.
func Open(path string) (*DB, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

type callRow struct {
	Predictor string `db:"predictor"`
	pipeline.Call
}

type regionRow struct {
	Predictor string `db:"predictor"`
	pipeline.Region
}

// SaveCalls replaces every call stored for predictor.
func (d *DB) SaveCalls(predictor string, calls []pipeline.Call) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return pfx.Err(err)
	}

	if _, err := tx.Exec("DELETE FROM calls WHERE predictor=?", predictor); err != nil {
		tx.Rollback()
		return pfx.Err(err)
	}

	for _, c := range calls {
		if _, err := tx.NamedExec(`INSERT INTO calls (predictor, name, peptide, core, pos, allele, score, alleles, "start", "end")
			VALUES (:predictor, :name, :peptide, :core, :pos, :allele, :score, :alleles, :start, :end)`, callRow{predictor, c}); err != nil {
			tx.Rollback()
			return pfx.Err(err)
		}
	}

	return pfx.Err(tx.Commit())
}

// SaveRegions replaces every region stored for predictor.
func (d *DB) SaveRegions(predictor string, regions []pipeline.Region) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return pfx.Err(err)
	}

	if _, err := tx.Exec("DELETE FROM regions WHERE predictor=?", predictor); err != nil {
		tx.Rollback()
		return pfx.Err(err)
	}

	for _, r := range regions {
		if _, err := tx.NamedExec(`INSERT INTO regions (predictor, name, method, "start", "end", binders, positions)
			VALUES (:predictor, :name, :method, :start, :end, :binders, :positions)`, regionRow{predictor, r}); err != nil {
			tx.Rollback()
			return pfx.Err(err)
		}
	}

	return pfx.Err(tx.Commit())
}

// Calls returns the stored calls of predictor, for one protein when name is
// set. Calls are ordered by protein then position.
func (d *DB) Calls(predictor, name string) ([]pipeline.Call, error) {
	out := make([]pipeline.Call, 0)
	err := d.db.Select(&out, `SELECT name, peptide, core, pos, allele, score, alleles, "start", "end"
		FROM calls WHERE predictor=? AND (?='' OR name=?) ORDER BY name, pos, core`, predictor, name, name)

	return out, pfx.Err(err)
}

// Regions returns the stored regions of predictor, for one protein when name
// is set. Regions are ordered by protein then start.
func (d *DB) Regions(predictor, name string) ([]pipeline.Region, error) {
	out := make([]pipeline.Region, 0)
	err := d.db.Select(&out, `SELECT name, method, "start", "end", binders, positions
		FROM regions WHERE predictor=? AND (?='' OR name=?) ORDER BY name, "start"`, predictor, name, name)

	return out, pfx.Err(err)
}

// Predictors lists the predictors with stored calls.
func (d *DB) Predictors() ([]string, error) {
	out := make([]string, 0)
	err := d.db.Select(&out, "SELECT DISTINCT predictor FROM calls ORDER BY predictor")

	return out, pfx.Err(err)
}

// Proteins lists the proteins with stored calls for predictor.
func (d *DB) Proteins(predictor string) ([]string, error) {
	out := make([]string, 0)
	err := d.db.Select(&out, "SELECT DISTINCT name FROM calls WHERE predictor=? ORDER BY name", predictor)

	return out, pfx.Err(err)
}
