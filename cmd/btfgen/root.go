package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "btfgen",
		Short: "Translate DWARF debug info into BTF",
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "optional YAML options file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newVerifyCmd(opts))
	cmd.AddCommand(newDumpCmd(opts))
	return cmd
}

// newLogger builds the process-wide *zap.Logger. Diagnostics is
// constructed per translation from this, mirroring how the wider
// repository injects a logger into each component rather than reaching
// for a package-level global.
func (o *rootOptions) newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if o.verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("btfgen: building logger: %w", err)
	}
	return log, nil
}

// loadConfig reads opts.configFile (if set) through viper. generate
// consults it for section/dedup_strings overrides so a build pipeline can
// pin those in a checked-in file instead of repeating flags.
func (o *rootOptions) loadConfig() (*viper.Viper, error) {
	v := viper.New()
	if o.configFile == "" {
		return v, nil
	}
	v.SetConfigFile(o.configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("btfgen: reading config file %s: %w", o.configFile, err)
	}
	return v, nil
}
