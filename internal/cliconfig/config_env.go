package cliconfig

import (
	"os"
	"strings"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "INSPECTGW_"

// ApplyEnvConfig applies INSPECTGW_* environment variables to cfg.
// It respects flags that have been explicitly set (changed map).
// INSPECTGW_CORS_ORIGINS is a comma-separated list.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("listen", env("LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("credentials", env("CREDENTIALS_FILE"), &cfg.CredentialsFile)
	s.setString("dialect", env("DIALECT"), &cfg.Dialect)
	if v := env("CORS_ORIGINS"); v != "" {
		s.setStrings("cors-origins", strings.Split(v, ","), &cfg.CORSOrigins)
	}
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", env("LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setDuration("shutdown-timeout", env("SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("read-header-timeout", env("READ_HEADER_TIMEOUT"), &cfg.ReadHeaderTimeout); err != nil {
		return err
	}

	if err := s.setBoolFromString("log-rows", env("LOG_ROWS"), &cfg.LogRows); err != nil {
		return err
	}
	if err := s.setBoolFromString("redact-storage-errors", env("REDACT_STORAGE_ERRORS"), &cfg.RedactStorageErrors); err != nil {
		return err
	}
	if err := s.setBoolFromString("watch-credentials", env("WATCH_CREDENTIALS"), &cfg.WatchCredentials); err != nil {
		return err
	}

	return nil
}
