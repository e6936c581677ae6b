package cliconfig

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/bft-labs/inspectgw/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ListenAddr != ":5000" {
		t.Errorf("ListenAddr = %v, want :5000", cfg.ListenAddr)
	}
	if cfg.CredentialsFile != DefaultCredentialsFile {
		t.Errorf("CredentialsFile = %v, want %v", cfg.CredentialsFile, DefaultCredentialsFile)
	}
	if cfg.Dialect != "oracle" {
		t.Errorf("Dialect = %v, want oracle", cfg.Dialect)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 15s", cfg.ShutdownTimeout)
	}
	if cfg.LogRows || cfg.RedactStorageErrors || cfg.WatchCredentials {
		t.Error("boolean options must default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"sqlite dialect", func(c *Config) { c.Dialect = "sqlite3" }, false},
		{"json logs", func(c *Config) { c.LogFormat = LogFormatJSON }, false},
		{"missing listen", func(c *Config) { c.ListenAddr = "" }, true},
		{"missing credentials", func(c *Config) { c.CredentialsFile = "" }, true},
		{"unknown dialect", func(c *Config) { c.Dialect = "postgres" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, true},
		{"negative read header timeout", func(c *Config) { c.ReadHeaderTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want wrapping ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_Validate_CleansOrigins(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		want    []string
	}{
		{"trims entries", []string{" http://a.example ", "http://b.example"}, []string{"http://a.example", "http://b.example"}},
		{"drops blanks", []string{"", "http://a.example", "  "}, []string{"http://a.example"}},
		{"empty falls back to any", []string{" "}, []string{"*"}},
		{"nil falls back to any", nil, []string{"*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CORSOrigins = tt.origins
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() = %v", err)
			}
			if !reflect.DeepEqual(cfg.CORSOrigins, tt.want) {
				t.Errorf("CORSOrigins = %v, want %v", cfg.CORSOrigins, tt.want)
			}
		})
	}
}

func TestConfig_ServerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:8080"
	cfg.Dialect = "sqlite3"
	cfg.CORSOrigins = []string{"http://a.example"}
	cfg.LogRows = true
	cfg.RedactStorageErrors = true

	sc := cfg.ServerConfig()
	if sc.ListenAddr != "127.0.0.1:8080" || sc.Dialect != "sqlite3" {
		t.Errorf("ServerConfig() = %+v", sc)
	}
	if !reflect.DeepEqual(sc.AllowedOrigins, []string{"http://a.example"}) {
		t.Errorf("AllowedOrigins = %v", sc.AllowedOrigins)
	}
	if !sc.LogRows || !sc.RedactStorageErrors {
		t.Error("boolean options not carried over")
	}
	if sc.ShutdownTimeout != cfg.ShutdownTimeout || sc.ReadHeaderTimeout != cfg.ReadHeaderTimeout {
		t.Error("timeouts not carried over")
	}
}

func TestConfigSetter_SetDuration(t *testing.T) {
	tests := []struct {
		name    string
		changed map[string]bool
		value   string
		want    time.Duration
		wantErr bool
	}{
		{"sets valid duration", map[string]bool{}, "30s", 30 * time.Second, false},
		{"skips empty", map[string]bool{}, "", time.Second, false},
		{"skips changed flag", map[string]bool{"shutdown-timeout": true}, "30s", time.Second, false},
		{"rejects garbage", map[string]bool{}, "soon", time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := time.Second
			err := newConfigSetter(tt.changed).setDuration("shutdown-timeout", tt.value, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("setDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("setDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
