package main

import (
	"os"

	"formationdesk/backend/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
