package main

import (
	"os"

	"github.com/spf13/cobra"
	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "proparse",
		Short:        "Lex, parse and resolve ABL source code",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "configuration file (default: ./"+configFileName+" if present)")
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "log more, repeat for debug output")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log", "", "write the log to this file instead of stderr")

	rootCmd.AddCommand(newLexCmd(opts))
	rootCmd.AddCommand(newMetricsCmd(opts))
	rootCmd.AddCommand(newParseCmd(opts))
	rootCmd.AddCommand(newResolveCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newLSPCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
