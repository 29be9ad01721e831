package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC bind address; "" disables gRPC
//	-b string   storage backend: memory, sqlite, postgres
//	-d string   database DSN
//	-p string   password scheme: bcrypt, argon2id, plain
//	-w string   static files directory
//	-l string   log level
//	-f string   log format: json or text
//	-t int      shutdown timeout, seconds
//
// args are filtered with flagx.FilterArgs first so -c/-config and flags of
// other components do not trip the parser.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-b", "-d", "-p", "-w", "-l", "-f", "-t"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.PasswordScheme, "p", config.PasswordScheme, "password scheme")
	fs.StringVar(&config.StaticDir, "w", config.StaticDir, "static files directory")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")
	shutdown := fs.Int("t", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.ShutdownTimeout = time.Duration(*shutdown) * time.Second
		}
	})
	return nil
}
