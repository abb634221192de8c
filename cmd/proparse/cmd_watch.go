package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/proparse/workspace"
)

func newWatchCmd(opts *options) *cobra.Command {
	var jobs int
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Check a directory, then re-check units as files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cfg, err := opts.load(dir)
			if err != nil {
				return err
			}
			if jobs > 0 {
				cfg.Workspace.Jobs = jobs
			}
			if debounce > 0 {
				cfg.Workspace.Debounce = debounce
			}
			w, err := workspace.Open(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if err := w.CheckAll(ctx); err != nil {
				return err
			}
			_ = report(w.Results())

			fmt.Fprintf(os.Stderr, "watching %s\n", w.RootDir())
			return w.Watch(ctx, cfg.Workspace.Debounce, func(results []*workspace.FileInfo) {
				for _, fi := range results {
					if fi.Err != nil {
						fmt.Println(fi.Err)
					} else {
						fmt.Printf("%s: ok\n", fi.Path)
					}
				}
			})
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "units checked in parallel (default from config)")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet time before re-checking (default from config)")

	return cmd
}
