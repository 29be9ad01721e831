// Package config handles configuration for the server component: defaults,
// an optional JSON file, environment variables and command-line flags, in
// that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/logging"
	"github.com/dmitrijs2005/gophmail/internal/server/passwords"
	"github.com/dmitrijs2005/gophmail/internal/server/repositories/repomanager"
	"github.com/joho/godotenv"
)

// Config holds runtime settings for the mail server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the JSON API and front-end.
//   - EndpointAddrGRPC: bind address for the gRPC API; empty disables it.
//   - StorageBackend: memory, sqlite or postgres.
//   - DatabaseDSN: driver DSN for the sqlite or postgres backend.
//   - PasswordScheme: bcrypt, argon2id or plain.
//   - StaticDir: directory served at "/"; empty disables it.
//   - LogLevel / LogFormat: slog level and handler (json or text).
//   - ShutdownTimeout: grace period for in-flight requests on exit.
//   - MaxBodyBytes: request body limit for the HTTP API.
//   - AllowedOrigins: CORS origins for the HTTP API.
type Config struct {
	EndpointAddrHTTP string
	EndpointAddrGRPC string
	StorageBackend   string
	DatabaseDSN      string
	PasswordScheme   string
	StaticDir        string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
	MaxBodyBytes     int64
	AllowedOrigins   []string
}

// ConfigEnvKey names the variable consulted when no -c/-config flag is given.
const ConfigEnvKey = "GOPHMAIL_CONFIG"

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.StorageBackend = repomanager.BackendSQLite
	c.DatabaseDSN = repomanager.DefaultSQLiteDSN
	c.PasswordScheme = passwords.SchemeBcrypt
	c.StaticDir = "./public"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.ShutdownTimeout = 10 * time.Second
	c.MaxBodyBytes = 64 * 1024
	c.AllowedOrigins = []string{"*"}
}

// LoadConfig builds a Config from defaults, then the JSON file, then the
// environment (a .env file in the working directory is read first when
// present), then args.
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.EndpointAddrHTTP == "" {
		errs = append(errs, errors.New("http address is required"))
	}
	if !slices.Contains(repomanager.Backends(), c.StorageBackend) {
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}
	if c.StorageBackend == repomanager.BackendPostgres && c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is required for postgres"))
	}
	if !slices.Contains(passwords.Schemes(), c.PasswordScheme) {
		errs = append(errs, fmt.Errorf("unknown password scheme %q", c.PasswordScheme))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.LogFormat); f != "json" && f != "text" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("shutdown timeout must not be negative"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max body bytes must be positive"))
	}

	return errors.Join(errs...)
}
