// Package parser implements Nodable's recursive-descent parser: it
// converts a ribbon.Ribbon into a graph.Graph, using explicit transactions
// for backtracking instead of error-recovery sync points. Its struct
// shape follows a familiar recursive-descent layout: mode flags, one-token
// lookahead, and trace plumbing.
package parser

import (
	"fmt"
	"io"

	"github.com/nodable-lang/nodable/diagnostics"
	"github.com/nodable-lang/nodable/graph"
	"github.com/nodable-lang/nodable/lang"
	"github.com/nodable-lang/nodable/lexer"
	"github.com/nodable-lang/nodable/ribbon"
	"github.com/nodable-lang/nodable/token"
)

type parser struct {
	lang  *lang.Language
	rib   *ribbon.Ribbon
	g     *graph.Graph
	diags *diagnostics.List

	permissive bool
	trace      io.Writer
	indent     int

	// created tracks every node allocated since the start of the
	// innermost open transaction, so a rollback can destroy them.
	created []graph.NodeID

	// sawUnresolved records whether permissive mode had to fall back on
	// an undeclared identifier, for the graph's is_complete signal.
	sawUnresolved bool

	// declaredVars marks variable nodes already committed to a backbone by
	// their own var_decl, so a later sighting of the same node id (only
	// possible via external graph mutation between parses, under this
	// parser's identifier-resolution policy) triggers the rewriting rule
	// instead of reusing the bare node.
	declaredVars map[graph.NodeID]bool
}

// Parse tokenizes src and parses it into g, replacing g's contents
// entirely. It returns false (leaving g empty) on any lex or syntax
// error; diagnostics explaining the failure are appended to diags.
// Permissive() and Trace() tune identifier-resolution strictness and
// production tracing respectively.
func Parse(l *lang.Language, name string, src []byte, g *graph.Graph, diags *diagnostics.List, opts ...Option) bool {
	rib, err := lexer.Lex(l, name, src)
	if err != nil {
		diags.Wrapf(-1, err, "lex failed")
		g.Reset()
		return false
	}

	p := &parser{lang: l, rib: rib, g: g, diags: diags, declaredVars: map[graph.NodeID]bool{}}
	for _, opt := range opts {
		opt(p)
	}

	g.Reset()
	g.SetBuffer(rib.Buffer())

	if !p.preParseCheck() {
		g.Reset()
		return false
	}

	rootScope, _ := g.InternalScopeOf(g.Root())
	if !p.parseCodeBlock(rootScope) || !p.rib.AtEnd() {
		if !p.rib.AtEnd() {
			p.diags.Newf(offsetOf(p.rib.Peek()), "unexpected token %q", p.rib.Peek().Body())
		}
		g.Reset()
		return false
	}

	g.SetComplete(!p.permissive || !p.sawUnresolved)
	return true
}

// markIncomplete records that permissive mode fell back on an undeclared
// identifier; Parse reads sawUnresolved afterward to set is_complete.
func (p *parser) markIncomplete() { p.sawUnresolved = true }

func (p *parser) printTrace(format string, args ...interface{}) {
	if p.trace == nil {
		return
	}
	for i := 0; i < p.indent; i++ {
		fmt.Fprint(p.trace, ". ")
	}
	fmt.Fprintf(p.trace, format+"\n", args...)
}

func trace(p *parser, name string) *parser {
	p.printTrace(name)
	p.indent++
	return p
}

func un(p *parser) {
	p.indent--
}

// begin opens a ribbon transaction and marks the current node-creation
// high-water mark, so a rollback can also destroy nodes created since.
func (p *parser) begin() *txGuard {
	return &txGuard{p: p, tx: p.rib.Begin(), mark: len(p.created)}
}

type txGuard struct {
	p        *parser
	tx       *ribbon.Transaction
	mark     int
	accepted bool
}

func (g *txGuard) accept() {
	g.accepted = true
	g.tx.Accept()
}

// close commits (keeping any created nodes) if accept was called, or rolls
// back the ribbon cursor and destroys every node created since begin.
func (g *txGuard) close() {
	if !g.accepted {
		for i := len(g.p.created) - 1; i >= g.mark; i-- {
			g.p.g.Destroy(g.p.created[i])
		}
		g.p.created = g.p.created[:g.mark]
	}
	g.tx.Close()
}

// newNode creates a node and records it for the enclosing transaction's
// rollback bookkeeping.
func (p *parser) newNode(kind graph.NodeKind, sc graph.ScopeID, spec graph.NodeSpec) graph.NodeID {
	id := p.g.CreateNode(kind, sc, spec)
	p.created = append(p.created, id)
	return id
}

func (p *parser) peekKind() token.Kind { return p.rib.Peek().Kind() }

func (p *parser) isOperator(sym string) bool {
	t := p.rib.Peek()
	return t.Kind() == token.OPERATOR && t.Body() == sym
}

func (p *parser) eatOperator(sym string) (token.Token, bool) {
	if !p.isOperator(sym) {
		return token.Null, false
	}
	return p.rib.Eat(), true
}
