package config

import "time"

type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
}

// ConfigEnvKey names the variable consulted when no -c/-config flag is given.
const ConfigEnvKey = "GOPHMAIL_CLIENT_CONFIG"

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig applies defaults, then the JSON file, then flags from args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
