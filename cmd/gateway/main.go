// Command gateway runs the a2a402 payment gateway.
package main

import (
	"fmt"
	"os"

	"github.com/a2a402/gateway/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
