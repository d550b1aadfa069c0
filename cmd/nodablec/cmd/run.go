package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	nodable "github.com/nodable-lang/nodable"
	"github.com/nodable-lang/nodable/compile"
	"github.com/nodable-lang/nodable/diagnostics"
	"github.com/nodable-lang/nodable/graph"
)

func newRunCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "parse, compile and run a source file, printing its result",
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

			code, ok := nodable.Compile(g, diags)
			if !ok {
				printDiagnostics(cmd, diags)
				return ErrPrintedError
			}

			compile.Stdout = cmd.OutOrStdout()
			result, err := nodable.Run(code)
			if err != nil {
				fmt.Fprintln(cmd.Stderr(), err)
				return ErrPrintedError
			}
			fmt.Fprintf(cmd.OutOrStdout(), "=> %s\n", result.Value)
			return nil
		}),
	}
	return cmd
}
