package main

import (
	"fmt"
	"os"

	"github.com/kilianp07/irbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "irbridge:", err)
		os.Exit(1)
	}
}
