package sqlstore

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	go_ora "github.com/sijms/go-ora/v2"

	"github.com/bft-labs/inspectgw/internal/credentials"
)

// Supported dialects.
const (
	DialectOracle = "oracle"
	DialectSQLite = "sqlite3"
)

// sqliteDriver is go-sqlite3 with to_date registered on every connection.
const sqliteDriver = "sqlite3_inspect"

// dateFormat is the only TO_DATE format the range query uses.
const dateFormat = "YYYY-MM-DD"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("to_date", sqliteToDate, true)
		},
	})
}

// sqliteToDate behaves like Oracle's TO_DATE(s, 'YYYY-MM-DD'): it yields the
// midnight timestamp in sqlite's text form and fails on anything that is
// not a calendar date.
func sqliteToDate(s, format string) (string, error) {
	if format != dateFormat {
		return "", fmt.Errorf("to_date: unsupported format %q", format)
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("to_date: invalid date %q", s)
	}
	return d.Format("2006-01-02 15:04:05"), nil
}

const rangeSelect = `
SELECT
    ps.PRODUCT_ID,
    ps.INSPECTION_START_TIME,
    ps.INSPECTION_COMPLETE_TIME,
    ps.IS_DEFECT,
    ins.ERROR_TYPE,
    ins.WIDTH,
    ins.HEIGHT
FROM
    PRODUCT_STATE ps
JOIN
    INSPECT_STATE ins ON ps.PRODUCT_ID = ins.PRODUCT_ID
WHERE
    ps.INSPECTION_START_TIME BETWEEN
        TO_DATE(:start_date, 'YYYY-MM-DD') AND TO_DATE(:end_date, 'YYYY-MM-DD')`

// Bind variable names used by RangeQuery.
const (
	BindStart = "start_date"
	BindEnd   = "end_date"
)

// Dialects lists the accepted dialect names.
func Dialects() []string {
	return []string{DialectOracle, DialectSQLite}
}

// RangeQuery returns the inspection join filtered by an inclusive day range.
// Both bounds are bound variables (:start_date, :end_date) converted to a
// midnight timestamp by TO_DATE, so a malformed date is a database error on
// every dialect.
func RangeQuery(dialect string) (string, error) {
	if _, err := DriverName(dialect); err != nil {
		return "", err
	}
	return rangeSelect, nil
}

// DriverName returns the database/sql driver registered for dialect.
func DriverName(dialect string) (string, error) {
	switch dialect {
	case DialectOracle:
		return "oracle", nil
	case DialectSQLite:
		return sqliteDriver, nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// CredentialRequirement reports which credentials fields dialect needs.
// sqlite3 ignores the login, so only the dsn (a file path) is required.
func CredentialRequirement(dialect string) credentials.Requirement {
	if dialect == DialectSQLite {
		return credentials.DSNOnly
	}
	return credentials.LoginRequired
}

// DataSource builds the driver connection string for dialect from c.
//
// For oracle the DSN may be an EZConnect descriptor (host:port/service),
// an oracle:// URL, or a full TNS descriptor. For sqlite3 it is a file path
// and the login is ignored.
func DataSource(dialect string, c credentials.Credentials) (string, error) {
	switch dialect {
	case DialectOracle:
		return oracleDataSource(c)
	case DialectSQLite:
		return c.DSN, nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}

func oracleDataSource(c credentials.Credentials) (string, error) {
	dsn := strings.TrimSpace(c.DSN)
	switch {
	case strings.HasPrefix(strings.ToLower(dsn), "oracle://"):
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		if u.User == nil {
			u.User = url.UserPassword(c.User, c.Password)
		}
		return u.String(), nil
	case strings.HasPrefix(dsn, "("):
		return go_ora.BuildJDBC(c.User, c.Password, dsn, nil), nil
	default:
		return "oracle://" + url.UserPassword(c.User, c.Password).String() + "@" + dsn, nil
	}
}
