package parser

import "io"

// Option configures a Parse call using the functional-option pattern.
type Option func(*parser)

// Permissive relaxes identifier resolution: an identifier with no matching
// declaration in scope is accepted as an `any`-typed variable_ref and the
// graph is marked incomplete, instead of failing the parse. Strict
// resolution is the default.
func Permissive() Option {
	return func(p *parser) { p.permissive = true }
}

// Trace writes one line per production entered/exited to w.
func Trace(w io.Writer) Option {
	return func(p *parser) { p.trace = w }
}
