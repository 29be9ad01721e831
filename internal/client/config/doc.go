// Package config loads runtime configuration for the GophMail CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / -config, or GOPHMAIL_CLIENT_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   base URL of the server HTTP API
//	-r int      request timeout (seconds)
//
// # JSON schema
//
// request_timeout accepts either a duration string or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "request_timeout": "5s"
//	}
package config
