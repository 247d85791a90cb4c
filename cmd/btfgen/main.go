// Command btfgen drives the DWARF-to-BTF translator end to end against a
// real ELF binary: generate walks a binary's compile units and writes the
// resulting BTF blob; verify loads a previously generated blob back
// through a real BTF parser as a structural self-check; dump prints the
// translator's human-readable debug view of a binary's type graph.
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
