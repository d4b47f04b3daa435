// Command proofscore scores social-profile submissions: once as a proof
// container entrypoint, ad hoc from a file, or behind an HTTP API.
package main

import (
	"fmt"
	"os"
)

// Exit codes for different failure modes.
const (
	exitSuccess = 0
	exitError   = 1
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitError)
	}
	os.Exit(exitSuccess)
}
