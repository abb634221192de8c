package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/proparse/format"
)

func newLexCmd(opts *options) *cobra.Command {
	var hidden bool

	cmd := &cobra.Command{
		Use:   "lex <file>",
		Short: "Print the tokens of a file after preprocessing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := opts.unit(args[0])
			if err != nil {
				return err
			}
			stream, err := u.Lex()
			if err != nil {
				return err
			}
			if err := format.NewTokenEncoder(os.Stdout, hidden).Encode(stream); err != nil {
				return fmt.Errorf("encode tokens: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&hidden, "hidden", false, "include whitespace and comment tokens")

	return cmd
}
