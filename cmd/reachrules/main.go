package main

import (
	"fmt"
	"os"

	"github.com/PeerInfinity/reachrules/internal/cli"
	_ "github.com/PeerInfinity/reachrules/internal/games/demo"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
