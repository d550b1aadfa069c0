package parser

import (
	"github.com/nodable-lang/nodable/diagnostics"
	"github.com/nodable-lang/nodable/token"
)

func offsetOf(t token.Token) int { return diagnostics.OffsetOf(t) }

// preParseCheck scans the ribbon once, before any graph mutation, to catch
// cheap syntax errors up front: unbalanced parentheses, a trailing
// operator, and an operator immediately followed by another operator
// (which also rejects a unary operator followed by another operator).
func (p *parser) preParseCheck() bool {
	depth := 0
	toks := p.rib.Tokens()
	ok := true
	for i, t := range toks {
		switch t.Kind() {
		case token.PARENTHESIS_OPEN:
			depth++
		case token.PARENTHESIS_CLOSE:
			depth--
			if depth < 0 {
				p.diags.Newf(offsetOf(t), "unbalanced parentheses: unexpected ')'")
				ok = false
				depth = 0
			}
		case token.OPERATOR:
			if i == len(toks)-1 {
				p.diags.Newf(offsetOf(t), "trailing operator %q", t.Body())
				ok = false
			} else if toks[i+1].Kind() == token.OPERATOR {
				p.diags.Newf(offsetOf(t), "operator %q directly followed by operator %q", t.Body(), toks[i+1].Body())
				ok = false
			}
		}
	}
	if depth != 0 {
		p.diags.Newf(-1, "unbalanced parentheses: %d unclosed '('", depth)
		ok = false
	}
	return ok
}
