package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/sbstats/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		// commands report their own ExitErrors; anything else is a usage error
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
