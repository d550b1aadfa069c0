// Command nodablec is the command-line front end for the nodable
// package: parse, fmt, compile and run subcommands over the lexer,
// parser, serializer, compiler and vm pipeline.
package main

import (
	"os"

	"github.com/nodable-lang/nodable/cmd/nodablec/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
