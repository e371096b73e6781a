package main

import (
	"os"

	"tripsync/cmd/tripsync/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
