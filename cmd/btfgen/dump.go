package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/liu-song-6/llvm/internal/objfile"
	"github.com/liu-song-6/llvm/pkg/btfgen"
)

func newDumpCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <binary>",
		Short: "Print the translator's debug view of a binary's type graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(root, args[0])
		},
	}
	return cmd
}

func runDump(root *rootOptions, binaryPath string) error {
	log, err := root.newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	f, err := objfile.Open(binaryPath)
	if err != nil {
		return err
	}
	defer f.Close()

	units, err := f.CompileUnits()
	if err != nil {
		return err
	}
	log.Info("opened binary", zap.Stringer("machine", f.Machine()), zap.Int("compile_units", len(units)))

	ctx, err := btfgen.Translate(f.DWARF(), units, btfgen.WithDiagnostics(btfgen.NewDiagnostics(log)))
	if err != nil {
		return err
	}
	return ctx.WriteDebugDump(os.Stdout)
}
