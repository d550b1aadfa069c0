package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	nodable "github.com/nodable-lang/nodable"
	"github.com/nodable-lang/nodable/diagnostics"
	"github.com/nodable-lang/nodable/graph"
)

// newFmtCmd round-trips a source file through the parser and serializer,
// the CLI-level proof of the round-trip invariant: its output is byte-
// identical to the input for any well-formed program.
func newFmtCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "parse then re-serialize a source file",
		RunE: mkRunE(c, func(cmd *Command, args []string) error {
			name, src, err := readSource(cmd, args)
			if err != nil {
				return err
			}

			l := nodable.Language()
			g := graph.New(l)
			diags := diagnostics.NewList()
			if !nodable.Parse(l, name, src, g, diags) {
				printDiagnostics(cmd, diags)
				return ErrPrintedError
			}
			fmt.Fprint(cmd.OutOrStdout(), nodable.Serialize(g))
			return nil
		}),
	}
	return cmd
}
