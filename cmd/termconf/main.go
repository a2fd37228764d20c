package main

import (
	"os"

	"github.com/Dicklesworthstone/termconf/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
