package main

import (
	"fmt"
	"os"

	"github.com/kikuuuty/ddsconv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ddsconv: %v\n", err)
		os.Exit(1)
	}
}
