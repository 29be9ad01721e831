package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophmail/internal/flagx"
	"github.com/dmitrijs2005/gophmail/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. ShutdownTimeout uses
// timex.Duration so both "10s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	StorageBackend   string         `json:"storage_backend"`
	DatabaseDSN      string         `json:"database_dsn"`
	PasswordScheme   string         `json:"password_scheme"`
	StaticDir        string         `json:"static_dir"`
	LogLevel         string         `json:"log_level"`
	LogFormat        string         `json:"log_format"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	MaxBodyBytes     int64          `json:"max_body_bytes"`
	AllowedOrigins   []string       `json:"allowed_origins"`
}

// parseJson overlays the file named by -c/-config (or GOPHMAIL_CONFIG) onto
// config. Keys missing from the file keep their current values.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args, ConfigEnvKey)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{
		EndpointAddrHTTP: config.EndpointAddrHTTP,
		EndpointAddrGRPC: config.EndpointAddrGRPC,
		StorageBackend:   config.StorageBackend,
		DatabaseDSN:      config.DatabaseDSN,
		PasswordScheme:   config.PasswordScheme,
		StaticDir:        config.StaticDir,
		LogLevel:         config.LogLevel,
		LogFormat:        config.LogFormat,
		ShutdownTimeout:  timex.Duration{Duration: config.ShutdownTimeout},
		MaxBodyBytes:     config.MaxBodyBytes,
		AllowedOrigins:   config.AllowedOrigins,
	}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.StorageBackend = c.StorageBackend
	config.DatabaseDSN = c.DatabaseDSN
	config.PasswordScheme = c.PasswordScheme
	config.StaticDir = c.StaticDir
	config.LogLevel = c.LogLevel
	config.LogFormat = c.LogFormat
	config.ShutdownTimeout = c.ShutdownTimeout.Duration
	config.MaxBodyBytes = c.MaxBodyBytes
	config.AllowedOrigins = c.AllowedOrigins
	return nil
}
