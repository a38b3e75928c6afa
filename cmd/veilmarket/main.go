package main

import (
	"os"

	"veilmarket/cmd/veilmarket/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
