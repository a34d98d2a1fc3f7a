package main

import (
	"os"

	"maitred/cmd/maitred/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
