package main

import (
	"os"

	"github.com/tino-q/ssonsoles-tasks/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
