package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	nodable "github.com/nodable-lang/nodable"
	"github.com/nodable-lang/nodable/diagnostics"
	"github.com/nodable-lang/nodable/graph"
)

func newCompileCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "parse, compile and print the resulting instruction listing",
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
			printDiagnostics(cmd, diags)
			fmt.Fprint(cmd.OutOrStdout(), code.Disassemble())
			return nil
		}),
	}
	return cmd
}
