package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Users(ctx context.Context) error
	Me(ctx context.Context) error
	Inbox(ctx context.Context) error
	Outbox(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
}

// runREPL reads commands from reader until EOF or exit/quit:
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, users, me, inbox, outbox, show [id], send [to],
//	               read [id], logout, exit
//
// The prompt goes to w. Command prompts read from the same reader. Command
// errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "messagely %s > ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
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
				printlnFn("Available commands: users, me, inbox, outbox, show [id], send [to], read [id], logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "users":
			_ = a.Users(ctx)
		case "me":
			_ = a.Me(ctx)
		case "inbox":
			_ = a.Inbox(ctx)
		case "outbox":
			_ = a.Outbox(ctx)
		case "show":
			_ = a.Show(ctx, args)
		case "send":
			_ = a.Send(ctx, args)
		case "read":
			_ = a.Read(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
