package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ListenAddr          string   `toml:"listen_addr"`
	CredentialsFile     string   `toml:"credentials_file"`
	Dialect             string   `toml:"dialect"`
	CORSOrigins         []string `toml:"cors_origins"`
	LogLevel            string   `toml:"log_level"`
	LogFormat           string   `toml:"log_format"`
	LogRows             *bool    `toml:"log_rows"`
	RedactStorageErrors *bool    `toml:"redact_storage_errors"`
	WatchCredentials    *bool    `toml:"watch_credentials"`
	ShutdownTimeout     string   `toml:"shutdown_timeout"`
	ReadHeaderTimeout   string   `toml:"read_header_timeout"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.inspectgw/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".inspectgw", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("credentials", fc.CredentialsFile, &cfg.CredentialsFile)
	s.setString("dialect", fc.Dialect, &cfg.Dialect)
	s.setStrings("cors-origins", fc.CORSOrigins, &cfg.CORSOrigins)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("read-header-timeout", fc.ReadHeaderTimeout, &cfg.ReadHeaderTimeout); err != nil {
		return err
	}

	s.setBool("log-rows", fc.LogRows, &cfg.LogRows)
	s.setBool("redact-storage-errors", fc.RedactStorageErrors, &cfg.RedactStorageErrors)
	s.setBool("watch-credentials", fc.WatchCredentials, &cfg.WatchCredentials)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
