package main

import (
	"fmt"
	"os"

	"github.com/hivellm/synap/internal/cli/command"
	"github.com/hivellm/synap/internal/cli/repl"
)

func main() {
	if len(os.Args) == 1 {
		if err := repl.New().Run(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	app := command.App()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
