package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/inspectgw/internal/adapters/sqlstore"
	"github.com/bft-labs/inspectgw/internal/domain"
	"github.com/bft-labs/inspectgw/pkg/inspectgw"
)

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// DefaultCredentialsFile is read from the working directory unless overridden.
const DefaultCredentialsFile = "oracle_config.json"

// Config holds CLI configuration for inspectgw.
type Config struct {
	ListenAddr      string
	CredentialsFile string
	Dialect         string
	CORSOrigins     []string

	LogLevel  string
	LogFormat string
	LogRows   bool

	RedactStorageErrors bool
	WatchCredentials    bool

	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ListenAddr:        inspectgw.DefaultListenAddr,
		CredentialsFile:   DefaultCredentialsFile,
		Dialect:           sqlstore.DialectOracle,
		CORSOrigins:       []string{"*"},
		LogLevel:          "info",
		LogFormat:         LogFormatConsole,
		ShutdownTimeout:   inspectgw.DefaultShutdownTimeout,
		ReadHeaderTimeout: inspectgw.DefaultReadHeaderTimeout,
	}
}

// Validate checks the configuration for errors and normalizes list values.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is required", domain.ErrInvalidConfig)
	}
	if c.CredentialsFile == "" {
		return fmt.Errorf("%w: credentials file is required", domain.ErrInvalidConfig)
	}
	if _, err := sqlstore.RangeQuery(c.Dialect); err != nil {
		return fmt.Errorf("%w: %v (supported: %s)", domain.ErrInvalidConfig, err,
			strings.Join(sqlstore.Dialects(), ", "))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", domain.ErrInvalidConfig, c.LogLevel)
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("%w: log format must be %q or %q", domain.ErrInvalidConfig, LogFormatConsole, LogFormatJSON)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("%w: read header timeout must be positive", domain.ErrInvalidConfig)
	}

	c.CORSOrigins = cleanList(c.CORSOrigins)
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	return nil
}

// ServerConfig converts the CLI configuration to the embeddable server's.
func (c Config) ServerConfig() inspectgw.Config {
	return inspectgw.Config{
		ListenAddr:          c.ListenAddr,
		Dialect:             c.Dialect,
		AllowedOrigins:      c.CORSOrigins,
		LogRows:             c.LogRows,
		RedactStorageErrors: c.RedactStorageErrors,
		ShutdownTimeout:     c.ShutdownTimeout,
		ReadHeaderTimeout:   c.ReadHeaderTimeout,
	}
}

// cleanList trims entries and drops empty ones.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a list if it has at least one entry and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	value = cleanList(value)
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
