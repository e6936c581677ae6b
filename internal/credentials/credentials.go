// Package credentials loads and holds the database login used by every
// search session.
package credentials

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Credentials is the content of the credentials file.
type Credentials struct {
	User     string `json:"user" toml:"user" yaml:"user"`
	Password string `json:"password" toml:"password" yaml:"password"`
	DSN      string `json:"dsn" toml:"dsn" yaml:"dsn"`
}

// ErrIncomplete is returned when a required field is empty.
var ErrIncomplete = errors.New("credentials: required field is empty")

// Requirement selects the fields Validate insists on.
type Requirement int

const (
	// LoginRequired needs user, password and dsn.
	LoginRequired Requirement = iota
	// DSNOnly needs dsn; user and password may be left out.
	DSNOnly
)

// Validate checks that the fields named by req are set.
func (c Credentials) Validate(req Requirement) error {
	var missing []string
	if req == LoginRequired {
		if c.User == "" {
			missing = append(missing, "user")
		}
		if c.Password == "" {
			missing = append(missing, "password")
		}
	}
	if c.DSN == "" {
		missing = append(missing, "dsn")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (missing %s)", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// String masks the password so credentials can be logged.
func (c Credentials) String() string {
	return fmt.Sprintf("user=%s password=***** dsn=%s", c.User, c.DSN)
}

// Load reads the credentials file at path and validates it against req.
// The format follows the file extension: .toml, .yaml/.yml, anything else
// is parsed as JSON.
func Load(path string, req Requirement) (Credentials, error) {
	var c Credentials
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read credentials: %w", err)
	}
	if err := decode(path, b, &c); err != nil {
		return c, fmt.Errorf("parse credentials %s: %w", filepath.Base(path), err)
	}
	if err := c.Validate(req); err != nil {
		return c, err
	}
	return c, nil
}

func decode(path string, b []byte, c *Credentials) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(b, c)
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, c)
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		return dec.Decode(c)
	}
}

// Holder keeps the current credentials and allows them to be swapped while
// searches are running.
type Holder struct {
	mu sync.RWMutex
	c  Credentials
}

// NewHolder returns a Holder seeded with c.
func NewHolder(c Credentials) *Holder {
	return &Holder{c: c}
}

// Current returns the credentials in effect.
func (h *Holder) Current() Credentials {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.c
}

// Set replaces the credentials.
func (h *Holder) Set(c Credentials) {
	h.mu.Lock()
	h.c = c
	h.mu.Unlock()
}
