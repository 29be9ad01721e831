package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays GOPHMAIL_* variables onto config. Unset variables are
// ignored; set-but-empty ones clear string settings.
func parseEnv(config *Config) error {
	strs := map[string]*string{
		"GOPHMAIL_HTTP_ADDR":       &config.EndpointAddrHTTP,
		"GOPHMAIL_GRPC_ADDR":       &config.EndpointAddrGRPC,
		"GOPHMAIL_STORAGE":         &config.StorageBackend,
		"GOPHMAIL_DATABASE_DSN":    &config.DatabaseDSN,
		"GOPHMAIL_PASSWORD_SCHEME": &config.PasswordScheme,
		"GOPHMAIL_STATIC_DIR":      &config.StaticDir,
		"GOPHMAIL_LOG_LEVEL":       &config.LogLevel,
		"GOPHMAIL_LOG_FORMAT":      &config.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("GOPHMAIL_SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GOPHMAIL_SHUTDOWN_TIMEOUT: %w", err)
		}
		config.ShutdownTimeout = d
	}

	if v, ok := os.LookupEnv("GOPHMAIL_MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GOPHMAIL_MAX_BODY_BYTES: %w", err)
		}
		config.MaxBodyBytes = n
	}

	if v, ok := os.LookupEnv("GOPHMAIL_ALLOWED_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.AllowedOrigins = origins
	}

	return nil
}
