package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhamidi/proparse/abl/unit"
)

func newMetricsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <file>...",
		Short: "Count lines, tokens and statements of files and their includes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.session()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "files\tincludes\tlines\tcode\tcomments\ttokens\tstatements\tfile\t")
			var failed int
			for _, file := range args {
				u := unit.New(sess, file)
				if err := u.LexAndGenerateMetrics(); err != nil {
					fmt.Fprintln(os.Stderr, err)
					failed++
					continue
				}
				m := u.Metrics()
				fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t\n",
					m.Files, m.Includes, m.Lines, m.CodeLines, m.CommentLines, m.Tokens, m.Statements, file)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
}
