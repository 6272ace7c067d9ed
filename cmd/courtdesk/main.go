// Command courtdesk signs in to the court case-management backend and keeps
// the session on disk, in Redis or in SQLite so later invocations and the
// portal server can reuse it.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := root().Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func root() *Command {
	return &Command{
		Name:    "courtdesk",
		Summary: "Court portal session client",
		Subcommands: []*Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			serveCommand(),
		},
	}
}
