// Package nodable exposes the four external entry points — Parse,
// Serialize, Compile and Run — as a thin facade over the
// lexer/parser/graph/serializer/compile/vm pipeline: a slim top-level
// package re-exporting internal subsystems for cmd/nodablec and external
// callers alike.
package nodable

import (
	"github.com/nodable-lang/nodable/bytecode"
	"github.com/nodable-lang/nodable/compile"
	"github.com/nodable-lang/nodable/diagnostics"
	"github.com/nodable-lang/nodable/graph"
	"github.com/nodable-lang/nodable/lang"
	"github.com/nodable-lang/nodable/parser"
	"github.com/nodable-lang/nodable/serializer"
	"github.com/nodable-lang/nodable/vm"
)

// Language returns the default source language surface.
func Language() *lang.Language { return lang.Default() }

// Parse tokenizes and parses src into g, replacing g's contents entirely.
// It returns false (leaving g empty) on any lex or syntax error;
// diagnostics explaining the failure are appended to diags.
func Parse(l *lang.Language, name string, src []byte, g *graph.Graph, diags *diagnostics.List, opts ...parser.Option) bool {
	return parser.Parse(l, name, src, g, diags, opts...)
}

// Serialize reconstructs source bytes from g. It never fails on a
// well-formed graph.
func Serialize(g *graph.Graph) string {
	return serializer.Serialize(g)
}

// Compile lowers g into bytecode, or returns (nil, false) on any
// pre-compilation validity failure.
func Compile(g *graph.Graph, diags *diagnostics.List) (*bytecode.Bytecode, bool) {
	return compile.Compile(g, diags)
}

// Run interprets code to completion and returns its result (the last
// value placed in rax), or a runtime error (division by zero, stack
// overflow).
func Run(code *bytecode.Bytecode) (vm.ProgramResult, error) {
	return vm.Run(code)
}
