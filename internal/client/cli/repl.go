package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Inbox(ctx context.Context) error
	Send(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF, "exit" or "quit". Handler errors are reported by the handlers
// themselves.
//
//	Not logged in:  help, signup (register), login, exit | quit
//	Logged in:      help, inbox (l, list), send, delete <id>, logout, exit | quit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("gm %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: inbox, send, delete <id>, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, exit")
			}

		case "signup", "register":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "inbox", "l", "list":
			_ = a.Inbox(ctx)

		case "send":
			_ = a.Send(ctx)

		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
