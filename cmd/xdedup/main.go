// xdedup removes text repeated across the documents of a corpus.
// Single binary: clean a directory, watch it, or serve batches over a socket.
package main

import (
	"os"

	"github.com/corey/xdedup/cmd/xdedup/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
