package main

import (
	"os"

	"github.com/mpboonchaipolice/tcsd2-dashboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
