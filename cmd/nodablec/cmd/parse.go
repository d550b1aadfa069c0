package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	nodable "github.com/nodable-lang/nodable"
	"github.com/nodable-lang/nodable/diagnostics"
	"github.com/nodable-lang/nodable/graph"
	"github.com/nodable-lang/nodable/parser"
)

func newParseCmd(c *Command) *cobra.Command {
	var permissive bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "parse a source file and report diagnostics",
		RunE: mkRunE(c, func(cmd *Command, args []string) error {
			name, src, err := readSource(cmd, args)
			if err != nil {
				return err
			}

			var opts []parser.Option
			if permissive {
				opts = append(opts, parser.Permissive())
			}

			l := nodable.Language()
			g := graph.New(l)
			diags := diagnostics.NewList()
			if !nodable.Parse(l, name, src, g, diags, opts...) {
				printDiagnostics(cmd, diags)
				return ErrPrintedError
			}
			printDiagnostics(cmd, diags)
			fmt.Fprintf(cmd.OutOrStdout(), "parsed %s: ok\n", name)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&permissive, "permissive", false, "accept undeclared identifiers as any-typed references")
	return cmd
}

// printDiagnostics writes every diagnostic to stderr. Errors go through
// cmd.Stderr(), which marks the command as failed; warnings bypass it so
// they never change the exit code.
func printDiagnostics(cmd *Command, diags *diagnostics.List) {
	for _, d := range diags.All() {
		w := cmd.Stderr()
		if d.Severity == diagnostics.Warning {
			w = cmd.Command.OutOrStderr()
		}
		fmt.Fprintln(w, d.Error())
	}
}
