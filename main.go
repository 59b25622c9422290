package main

import (
	"os"

	"github.com/martijn/cmdgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
