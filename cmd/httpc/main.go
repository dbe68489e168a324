package main

import (
	"os"

	"github.com/linked-planet/go-http-client/cmd/httpc/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := commands.NewRootCommand(version + " (" + commit + ", " + date + ")")
	if err := rootCmd.Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
