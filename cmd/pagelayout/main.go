// Command pagelayout renders and serves article page layouts.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/pagelayout/cmd/pagelayout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
