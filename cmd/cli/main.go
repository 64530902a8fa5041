package main

import (
	"os"

	"github.com/homebuddy-dev/homebuddy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
