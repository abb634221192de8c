package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/proparse/abl/parser"
	"github.com/dhamidi/proparse/format"
)

func newParseCmd(opts *options) *cobra.Command {
	var outputFormat string
	var exclude string
	var resolve bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and dump its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, unknown := format.ParseKinds(exclude)
			if len(unknown) > 0 {
				return fmt.Errorf("unknown node kinds: %s", strings.Join(unknown, ", "))
			}

			u, err := opts.unit(args[0])
			if err != nil {
				return err
			}
			if resolve {
				err = u.TreeParse()
			} else {
				err = u.Parse()
			}
			if err != nil {
				return err
			}

			var encoder format.Encoder
			switch outputFormat {
			case "json":
				encoder = format.NewNodeLister(os.Stdout, kinds...)
			case "line":
				encoder = format.NewLineEncoder(os.Stdout, kinds...)
			case "tree":
				fmt.Println(u.TopNode().StringWithPositions())
				return nil
			default:
				return fmt.Errorf("unknown format: %s (expected json, line, or tree)", outputFormat)
			}

			if err := encoder.Encode(u.TopNode()); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, line, tree)")
	cmd.Flags().StringVar(&exclude, "exclude", kindList(format.DefaultExclusions), "comma separated node kinds to leave out")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "run the tree parser first so nodes carry their symbols")

	return cmd
}

func kindList(kinds []parser.NodeKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ",")
}
