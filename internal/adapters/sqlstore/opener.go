// Package sqlstore implements the session ports on database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bft-labs/inspectgw/internal/credentials"
	"github.com/bft-labs/inspectgw/internal/ports"
)

// CredentialSource supplies the login for each new session.
// *credentials.Holder satisfies it.
type CredentialSource interface {
	Current() credentials.Credentials
}

// Opener opens one dedicated connection per session.
type Opener struct {
	dialect string
	creds   CredentialSource
}

// NewOpener returns an Opener for dialect. Credentials are read on every
// Open so that a reloaded credentials file takes effect immediately.
func NewOpener(dialect string, creds CredentialSource) (*Opener, error) {
	if _, err := RangeQuery(dialect); err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, fmt.Errorf("sqlstore: credential source is required")
	}
	return &Opener{dialect: dialect, creds: creds}, nil
}

// Dialect returns the configured dialect name.
func (o *Opener) Dialect() string { return o.dialect }

// Open connects and pings the database. sql.Open alone is lazy, so the
// ping is what surfaces bad credentials or an unreachable host.
func (o *Opener) Open(ctx context.Context) (ports.Session, error) {
	driver, err := DriverName(o.dialect)
	if err != nil {
		return nil, err
	}
	dsn, err := DataSource(o.dialect, o.creds.Current())
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &session{db: db}, nil
}

// session owns a private *sql.DB limited to one connection.
type session struct {
	db *sql.DB
}

func (s *session) Query(ctx context.Context, query string, args ...interface{}) (ports.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *session) Close() error {
	return s.db.Close()
}
