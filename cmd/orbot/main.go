package main

import (
	"os"

	"orbot/cmd/orbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
