// Package cmd builds the nodablec command tree: parse, fmt, compile and
// run, each a thin wrapper over the nodable facade's four entry points,
// using a Command/mkRunE pattern for uniform error handling and
// exit-code propagation.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type runFunction func(cmd *Command, args []string) error

// Command wraps the currently active cobra command plus the bits every
// subcommand's runFunction needs.
type Command struct {
	*cobra.Command

	root *cobra.Command

	hasErr bool
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	c.hasErr = len(b) > 0
	return c.Command.OutOrStderr().Write(b)
}

// Stderr returns a writer that marks the command as failed as a side
// effect of any write to it, so Run's caller knows to report a non-zero
// exit code even when the subcommand itself returned a nil error.
func (c *Command) Stderr() io.Writer {
	return (*errWriter)(c)
}

func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return f(c, args)
	}
}

// New builds the nodablec command tree for args (normally os.Args[1:]).
func New(args []string) (*Command, error) {
	root := &cobra.Command{
		Use:   "nodablec",
		Short: "nodablec parses, formats, compiles and runs node programs",

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	c := &Command{Command: root, root: root}

	for _, sub := range []*cobra.Command{
		newParseCmd(c),
		newFmtCmd(c),
		newCompileCmd(c),
		newRunCmd(c),
	} {
		root.AddCommand(sub)
	}

	root.SetArgs(args)
	return c, nil
}

// ErrPrintedError indicates a subcommand already printed its error to
// stderr, so Main should not print it again.
var ErrPrintedError = errors.New("terminating because of errors")

func (c *Command) Run() error {
	if err := c.root.Execute(); err != nil {
		return err
	}
	if c.hasErr {
		return ErrPrintedError
	}
	return nil
}

// Main runs nodablec and returns the process exit code.
func Main() int {
	c, _ := New(os.Args[1:])
	if err := c.Run(); err != nil {
		if err != ErrPrintedError {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

// readSource reads args[0], or stdin if no path was given.
func readSource(cmd *Command, args []string) (name string, src []byte, err error) {
	if len(args) == 0 {
		src, err = io.ReadAll(cmd.InOrStdin())
		return "<stdin>", src, err
	}
	src, err = os.ReadFile(args[0])
	return args[0], src, err
}
