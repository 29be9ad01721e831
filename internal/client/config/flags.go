package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/flagx"
)

func parseFlags(cfg *Config, args []string) error {
	// Filter args to include only those handled here.
	args = flagx.FilterArgs(args, []string{"-s", "-r"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the server HTTP API")
	timeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "r" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
