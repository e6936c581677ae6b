package inspectgw

import (
	"github.com/bft-labs/inspectgw/internal/adapters/sqlstore"
	"github.com/bft-labs/inspectgw/internal/credentials"
	"github.com/bft-labs/inspectgw/internal/ports"
	"github.com/bft-labs/inspectgw/pkg/log"
)

// Re-exported types so embedders need not import internal packages.
type (
	// Logger is the structured logger interface from pkg/log.
	Logger = log.Logger

	// SessionOpener opens one database session per search.
	SessionOpener = ports.SessionOpener

	// Session is an open database connection.
	Session = ports.Session

	// Rows is the cursor returned by Session.Query.
	Rows = ports.Rows

	// Credentials is a database login: user, password and dsn.
	Credentials = credentials.Credentials

	// CredentialSource supplies the login used for each new session.
	CredentialSource = sqlstore.CredentialSource

	// CredentialHolder is a concurrency-safe, swappable CredentialSource.
	CredentialHolder = credentials.Holder
)

// LoadCredentials reads a credentials file (.json, .toml, .yaml or .yml)
// and rejects it if a field dialect needs is missing. The oracle dialect
// needs user, password and dsn; sqlite3 needs only dsn.
func LoadCredentials(path, dialect string) (Credentials, error) {
	return credentials.Load(path, sqlstore.CredentialRequirement(dialect))
}

// NewCredentialHolder wraps c in a CredentialHolder.
func NewCredentialHolder(c Credentials) *CredentialHolder {
	return credentials.NewHolder(c)
}

// Option configures optional behavior of a Server.
type Option func(*options)

type options struct {
	logger       log.Logger
	opener       ports.SessionOpener
	credentials  sqlstore.CredentialSource
	eventHandler EventHandler
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCredentials sets the login source for the built-in database/sql
// session opener. It is read on every search, so swapping the held
// credentials takes effect for the next request.
func WithCredentials(src CredentialSource) Option {
	return func(o *options) {
		o.credentials = src
	}
}

// WithSessionOpener replaces the built-in database/sql session opener.
// When set, WithCredentials is ignored.
func WithSessionOpener(opener SessionOpener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

// WithEventHandler sets a handler for lifecycle events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}
