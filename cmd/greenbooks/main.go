package main

import (
	"os"

	"github.com/greenbooks-dev/greenbooks/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
