// Package sqlstoretest builds throwaway sqlite3 databases holding the
// inspection schema, for tests of code that runs the inspection search.
package sqlstoretest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bft-labs/inspectgw/internal/credentials"
)

const schema = `
CREATE TABLE PRODUCT_STATE (
    PRODUCT_ID               TEXT PRIMARY KEY,
    INSPECTION_START_TIME    TIMESTAMP,
    INSPECTION_COMPLETE_TIME TIMESTAMP,
    IS_DEFECT                INTEGER
);
CREATE TABLE INSPECT_STATE (
    PRODUCT_ID TEXT,
    ERROR_TYPE TEXT,
    WIDTH      REAL,
    HEIGHT     REAL
);`

// Product is one PRODUCT_STATE row. Times use the "YYYY-MM-DD HH:MM:SS"
// text form so they compare correctly against to_date().
type Product struct {
	ID       string
	Start    string
	Complete string
	IsDefect int
}

// Inspection is one INSPECT_STATE row.
type Inspection struct {
	ProductID string
	ErrorType string
	Width     float64
	Height    float64
}

// DB is a fixture database on disk.
type DB struct {
	Path string
	t    testing.TB
}

// New creates a database file in a temp dir with the inspection schema.
func New(t testing.TB) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inspect.db")
	d := &DB{Path: path, t: t}
	d.Exec(schema)
	return d
}

// Empty creates a database file without any tables.
func Empty(t testing.TB) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.db")
	d := &DB{Path: path, t: t}
	d.Exec(`CREATE TABLE placeholder (id INTEGER)`)
	return d
}

// Exec runs statements against the fixture.
func (d *DB) Exec(stmt string, args ...interface{}) {
	d.t.Helper()
	db, err := sql.Open("sqlite3", d.Path)
	if err != nil {
		d.t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(stmt, args...); err != nil {
		d.t.Fatalf("exec fixture: %v", err)
	}
}

// AddProduct inserts a product together with its inspection.
func (d *DB) AddProduct(p Product, in Inspection) {
	d.t.Helper()
	d.Exec(`INSERT INTO PRODUCT_STATE VALUES (?, ?, ?, ?)`, p.ID, p.Start, p.Complete, p.IsDefect)
	if in.ProductID == "" {
		in.ProductID = p.ID
	}
	d.Exec(`INSERT INTO INSPECT_STATE VALUES (?, ?, ?, ?)`, in.ProductID, in.ErrorType, in.Width, in.Height)
}

// Credentials returns a complete login pointing at the fixture file.
func (d *DB) Credentials() credentials.Credentials {
	return credentials.Credentials{User: "fixture", Password: "fixture", DSN: d.Path}
}

// Holder wraps Credentials in a credentials.Holder.
func (d *DB) Holder() *credentials.Holder {
	return credentials.NewHolder(d.Credentials())
}
