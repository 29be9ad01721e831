// Package cli provides the interactive GophMail command-line client.
//
// It wires configuration, the HTTP API client and a read-eval-print loop.
// Commands:
//   - signup / login / logout
//   - inbox: list received messages, newest first
//   - send: compose a message (body ends on an empty line)
//   - delete <id>: delete a received message
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends. See runREPL for the dispatch table.
package cli
