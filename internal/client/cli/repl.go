package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context) error
	Exposures(ctx context.Context) error
	AddExposure(ctx context.Context) error
	Stats(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the allerlog CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - list | l       — list journal entries
//	  - add            — add an entry
//	  - edit           — edit an entry
//	  - delete         — delete an entry
//	  - exposures      — list exposure types
//	  - addexposure    — add an exposure type
//	  - stats          — aggregated statistics
//	  - me             — show the current account
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("allerlog %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, edit, delete, exposures, addexposure, stats, me, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "me":
			_ = a.Me(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			_ = a.Edit(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "exposures":
			_ = a.Exposures(ctx)

		case "addexposure":
			_ = a.AddExposure(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
