package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophmail/internal/flagx"
	"github.com/dmitrijs2005/gophmail/internal/timex"
)

type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args, ConfigEnvKey)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := JsonConfig{
		ServerURL:      cfg.ServerURL,
		RequestTimeout: timex.Duration{Duration: cfg.RequestTimeout},
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	return nil
}
