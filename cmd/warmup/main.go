package main

import (
	"os"

	"github.com/byte4ever/warmup/cmd/warmup/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
