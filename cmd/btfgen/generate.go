package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/liu-song-6/llvm/internal/objfile"
	"github.com/liu-song-6/llvm/pkg/btfgen"
)

type generateOptions struct {
	out          string
	section      string
	dedupStrings bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <binary>",
		Short: "Translate a binary's DWARF info into a BTF blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(root, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "out.btf", "output file for the BTF blob")
	cmd.Flags().StringVar(&opts.section, "section", ".BTF", "named section to emit into")
	cmd.Flags().BoolVar(&opts.dedupStrings, "dedup-strings", false, "deduplicate the string table by content")
	return cmd
}

func runGenerate(root *rootOptions, opts *generateOptions, binaryPath string) error {
	log, err := root.newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.IsSet("section") {
		opts.section = cfg.GetString("section")
	}
	if cfg.IsSet("dedup_strings") {
		opts.dedupStrings = cfg.GetBool("dedup_strings")
	}

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

	ctxOpts := []btfgen.ContextOption{btfgen.WithDiagnostics(btfgen.NewDiagnostics(log))}
	if opts.dedupStrings {
		ctxOpts = append(ctxOpts, btfgen.WithDedupStrings())
	}

	ctx, err := btfgen.Translate(f.DWARF(), units, ctxOpts...)
	if err != nil {
		return fmt.Errorf("btfgen: translating %s: %w", binaryPath, err)
	}
	log.Info("translated compile units", zap.Int("types", ctx.NumTypes()))

	sink := btfgen.NewBufferSectionWriter()
	if err := ctx.Emit(sink, opts.section); err != nil {
		return fmt.Errorf("btfgen: emitting BTF: %w", err)
	}

	return os.WriteFile(opts.out, sink.Section(opts.section), 0o644)
}
