package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/proparse/abl/unit"
)

func newResolveCmd(opts *options) *cobra.Command {
	var classes bool

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Resolve a file and print its scope tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.session()
			if err != nil {
				return err
			}
			u := unit.New(sess, args[0])
			if err := u.TreeParse(); err != nil {
				return err
			}
			fmt.Print(u.RootScope().String())

			if classes {
				for _, key := range sess.Cache().Keys() {
					entry, _ := sess.Cache().Lookup(key)
					fmt.Printf("class %s (generation %d)\n", entry.Key, entry.Generation)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&classes, "classes", false, "also list the classes loaded into the session")

	return cmd
}
