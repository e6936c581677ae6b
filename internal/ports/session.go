package ports

import "context"

// SessionOpener opens a fresh database session. Each call acquires its own
// connection; nothing is shared between callers.
type SessionOpener interface {
	// Open connects to the database. The returned Session must be closed
	// by the caller on every path.
	Open(ctx context.Context) (Session, error)
}

// Session is one open database connection.
type Session interface {
	// Query executes query with bound args and returns a cursor.
	// Args are passed to the driver untouched (sql.Named values included).
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)

	// Close releases the connection.
	Close() error
}

// Rows is a forward-only cursor. *sql.Rows satisfies it.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}
