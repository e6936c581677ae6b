package inspectgw

import (
	"fmt"
	"time"

	"github.com/bft-labs/inspectgw/internal/adapters/sqlstore"
	"github.com/bft-labs/inspectgw/internal/domain"
)

// Defaults applied by Config.SetDefaults.
const (
	DefaultListenAddr        = ":5000"
	DefaultDialect           = sqlstore.DialectOracle
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// ListenAddr is the TCP address to listen on, e.g. ":5000".
	ListenAddr string

	// Dialect selects the database driver and query form:
	// "oracle" or "sqlite3".
	Dialect string

	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string

	// LogRows logs search parameters and fetched rows at debug level.
	LogRows bool

	// RedactStorageErrors hides database messages from 500 responses.
	RedactStorageErrors bool

	// ShutdownTimeout bounds Stop.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout bounds reading request headers.
	ReadHeaderTimeout time.Duration
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Dialect == "" {
		c.Dialect = DefaultDialect
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
}

// Validate checks the configuration. Errors wrap domain.ErrInvalidConfig.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is required", domain.ErrInvalidConfig)
	}
	if _, err := sqlstore.RangeQuery(c.Dialect); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: shutdown timeout must not be negative", domain.ErrInvalidConfig)
	}
	if c.ReadHeaderTimeout < 0 {
		return fmt.Errorf("%w: read header timeout must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
