package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/proparse/workspace"
)

func newCheckCmd(opts *options) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Resolve every unit below a directory and report the failures",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(opts, args, jobs)
			if err != nil {
				return err
			}
			if err := w.CheckAll(cmd.Context()); err != nil {
				return err
			}
			return report(w.Results())
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "units checked in parallel (default from config)")

	return cmd
}

func openWorkspace(opts *options, args []string, jobs int) (*workspace.Workspace, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	cfg, err := opts.load(dir)
	if err != nil {
		return nil, err
	}
	if jobs > 0 {
		cfg.Workspace.Jobs = jobs
	}
	return workspace.Open(cfg)
}

// report prints one line per failed unit and a summary. It returns an error
// when any unit failed.
func report(results []*workspace.FileInfo) error {
	var failed int
	for _, fi := range results {
		if fi.Err != nil {
			fmt.Println(fi.Err)
			failed++
		}
	}
	fmt.Fprintf(os.Stderr, "%d files checked, %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}
