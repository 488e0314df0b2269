// Command dagsched runs the discrete-event cluster scheduler simulator
// against a YAML spec file and reports its history and metrics.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
