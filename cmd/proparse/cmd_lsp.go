package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/proparse/workspace"
)

func newLSPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Configures logging only; the workspace is opened on initialize.
			if _, err := opts.load("."); err != nil {
				return err
			}
			server := workspace.NewLSPServer(version)
			return server.RunStdio()
		},
	}
}
