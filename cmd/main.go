package main

import (
	"os"

	"uproot/internal/cli"
	"uproot/internal/ui"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.ErrorMsg("%v", err)
		os.Exit(1)
	}
}
