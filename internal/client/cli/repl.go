package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/shlokapath/internal/common"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App implements it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Stats(ctx context.Context) error
	Calendar(ctx context.Context) error
}

type command struct {
	run           func(execIface, context.Context) error
	requiresLogin bool
}

var commands = map[string]command{
	"register": {run: execIface.Register},
	"login":    {run: execIface.Login},
	"logout":   {run: execIface.Logout, requiresLogin: true},
	"whoami":   {run: execIface.WhoAmI, requiresLogin: true},
	"refresh":  {run: execIface.Refresh, requiresLogin: true},
	"profile":  {run: execIface.EditProfile, requiresLogin: true},
	"password": {run: execIface.ChangePassword, requiresLogin: true},
	"delete":   {run: execIface.DeleteAccount, requiresLogin: true},
	"stats":    {run: execIface.Stats, requiresLogin: true},
	"calendar": {run: execIface.Calendar, requiresLogin: true},
}

// runREPL reads commands from reader until EOF, "exit" or "quit". The
// prompt shows statusFn(). Command errors are printed and the loop goes on.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, whoami, refresh, profile, password, stats,
//	               calendar, logout, delete, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sp %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, refresh, profile, password, stats, calendar, logout, delete, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		c, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if c.requiresLogin && !a.isLoggedIn() {
			printlnFn("Please log in first.")
			continue
		}
		if err := c.run(a, ctx); err != nil {
			printlnFn("Error:", common.Message(err))
		}
	}
}
