package main

import (
	"fmt"
	"os"

	"github.com/cilium/ebpf/btf"
	"github.com/spf13/cobra"
)

func newVerifyCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <btf-blob>",
		Short: "Structurally validate a generated BTF blob against a real BTF parser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args[0])
		},
	}
	return cmd
}

// runVerify is the structural self-check described in the domain stack:
// it does not talk to a kernel verifier, it just confirms the bytes this
// translator produced are well-formed BTF a real consumer (cilium/ebpf)
// can decode.
func runVerify(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("btfgen verify: %w", err)
	}
	defer f.Close()

	spec, err := btf.LoadSpecFromReader(f)
	if err != nil {
		return fmt.Errorf("btfgen verify: %s is not valid BTF: %w", path, err)
	}

	count := 0
	iter := spec.Iterate()
	for iter.Next() {
		count++
	}
	fmt.Printf("%s: valid BTF, %d types\n", path, count)
	return nil
}
