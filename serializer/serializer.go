// Package serializer reconstructs source bytes from a graph.Graph by
// replaying the tokens parsing attached to each node, depth-first, in
// backbone order. It never fails on a well-formed graph:
// Serialize returns plain bytes, not an error.
package serializer

import (
	"bytes"

	"github.com/nodable-lang/nodable/graph"
	"github.com/nodable-lang/nodable/token"
)

type serializer struct {
	g   *graph.Graph
	buf bytes.Buffer
}

// Serialize walks g from its root scope and returns the exact source text
// a successful parse of the result would reproduce (the round-trip
// invariant).
func Serialize(g *graph.Graph) string {
	s := &serializer{g: g}
	root, _ := g.InternalScopeOf(g.Root())
	s.writeScope(g.Root(), root)
	return s.buf.String()
}

func (s *serializer) emit(t token.Token) {
	if t.IsNull() {
		return
	}
	s.buf.WriteString(t.Prefix())
	s.buf.WriteString(t.Body())
	s.buf.WriteString(t.Suffix())
}

func (s *serializer) writeByte(b byte) { s.buf.WriteByte(b) }

// writeNode dispatches on nodeID's kind and always finishes by emitting
// its recorded suffix token (a scope's '}', an expression_block's
// trailing ';', or an empty_instruction's sole ';').
func (s *serializer) writeNode(nodeID graph.NodeID) {
	n, ok := s.g.Node(nodeID)
	if !ok {
		return
	}
	s.writeGroupingsOpen(nodeID)
	switch n.Kind {
	case graph.KindScope:
		s.writeScope(nodeID, n.InternalScope)
	case graph.KindLiteral:
		s.writeLiteral(nodeID)
	case graph.KindVariable:
		s.writeVariable(nodeID, n)
	case graph.KindVariableRef:
		s.emit(n.IdentToken)
	case graph.KindOperator:
		s.writeOperator(nodeID, n)
	case graph.KindFunctionCall:
		s.writeCall(nodeID, n)
	case graph.KindIf:
		s.writeIf(nodeID, n)
	case graph.KindForLoop:
		s.writeForLoop(nodeID, n)
	case graph.KindWhileLoop:
		s.writeWhileLoop(nodeID, n)
	case graph.KindEmptyInstruction:
		// nothing beyond the suffix token below.
	}
	s.writeGroupingsClose(nodeID)
	s.emit(n.SuffixToken)
}

// writeGroupingsOpen/Close replay explicit source parentheses recorded by
// the parser's `parens` production, outermost first on open and innermost
// first on close (Groupings is stored innermost-first).
func (s *serializer) writeGroupingsOpen(nodeID graph.NodeID) {
	gs := s.g.Groupings(nodeID)
	for i := len(gs) - 1; i >= 0; i-- {
		s.emit(gs[i].Open)
	}
}

func (s *serializer) writeGroupingsClose(nodeID graph.NodeID) {
	for _, grouping := range s.g.Groupings(nodeID) {
		s.emit(grouping.Close)
	}
}

func (s *serializer) writeScope(owner graph.NodeID, scopeID graph.ScopeID) {
	n, _ := s.g.Node(owner)
	s.emit(n.KeywordToken)
	if scopeID.Valid() {
		for _, child := range s.g.Backbone(scopeID) {
			s.writeNode(child)
		}
	}
}

func (s *serializer) writeLiteral(nodeID graph.NodeID) {
	propID, ok := s.g.PropertyByName(nodeID, "value")
	if !ok {
		return
	}
	p, _ := s.g.Property(propID)
	s.emit(p.Token)
}

func (s *serializer) writeVariable(nodeID graph.NodeID, n graph.Node) {
	s.emit(n.TypeToken)
	s.emit(n.IdentToken)
	valueSlot, ok := s.g.ArgSlot(nodeID, "value")
	if !ok {
		return
	}
	producer, ok := s.producerOf(valueSlot)
	if !ok {
		return
	}
	s.emit(n.AssignToken)
	s.writeNode(producer)
}

// writeOperator picks one of three shapes an operator node can have come
// from: the parser's explicit `operator SYM(args...)` call syntax (its
// parens were recorded by SetParens, since parseOperatorCall shares
// parseFunctionCall's arg-list production and argNames(1) names its sole
// argument "lvalue"), infix binary (both "lvalue" and "rvalue" present,
// built by parseBinaryExpr), or prefix unary (only "rvalue" present,
// built by parseUnary — which, unlike parseOperatorCall's single-arg
// case, names its sole operand "rvalue" since it has no left operand).
func (s *serializer) writeOperator(nodeID graph.NodeID, n graph.Node) {
	if open, _ := s.g.Parens(nodeID); !open.IsNull() {
		s.writeOperatorCall(nodeID, n)
		return
	}
	_, hasLvalue := s.g.PropertyByName(nodeID, "lvalue")
	_, hasRvalue := s.g.PropertyByName(nodeID, "rvalue")
	if hasLvalue && hasRvalue {
		s.writeBinaryOperator(nodeID, n)
		return
	}
	s.writeUnaryOperator(nodeID, n)
}

// writeOperatorCall replays the explicit `operator SYM(args...)` syntax:
// the discarded 'operator' keyword is kept on n.IdentToken specifically so
// it can be replayed here.
func (s *serializer) writeOperatorCall(nodeID graph.NodeID, n graph.Node) {
	s.emit(n.IdentToken)
	s.emit(n.KeywordToken)
	open, closeTok := s.g.Parens(nodeID)
	s.emit(open)
	seps := s.g.Separators(nodeID)
	for i, name := range callArgNames(s.g, nodeID) {
		slot, ok := s.g.ArgSlot(nodeID, name)
		if !ok {
			continue
		}
		if arg, ok := s.producerOf(slot); ok {
			s.writeNode(arg)
		}
		if i < len(seps) {
			s.emit(seps[i])
		}
	}
	s.emit(closeTok)
}

func (s *serializer) writeBinaryOperator(nodeID graph.NodeID, n graph.Node) {
	myPrec := s.binaryPrecedence(n.Name)

	lv, _ := s.g.ArgSlot(nodeID, "lvalue")
	rv, _ := s.g.ArgSlot(nodeID, "rvalue")
	left, hasLeft := s.producerOf(lv)
	right, hasRight := s.producerOf(rv)

	if hasLeft {
		s.writeOperand(left, myPrec)
	}
	s.emit(n.KeywordToken)
	if hasRight {
		s.writeOperand(right, myPrec)
	}
}

// writeUnaryOperator replays parseUnary's prefix syntax (`-x`, `!flag`),
// whose sole operand lives under "rvalue" since it has no left operand.
// An operator operand is wrapped in synthesized parentheses unless the
// source already parenthesized it (writeGroupingsOpen/Close replay those).
func (s *serializer) writeUnaryOperator(nodeID graph.NodeID, n graph.Node) {
	s.emit(n.KeywordToken)
	rv, _ := s.g.ArgSlot(nodeID, "rvalue")
	operand, ok := s.producerOf(rv)
	if !ok {
		return
	}
	if s.isOperator(operand) && len(s.g.Groupings(operand)) == 0 {
		s.writeByte('(')
		s.writeNode(operand)
		s.writeByte(')')
		return
	}
	s.writeNode(operand)
}

// writeOperand wraps operandID in synthesized parentheses if it is an
// infix binary operator of strictly lower precedence than parentPrec and
// carries no explicit source parentheses (writeGroupingsOpen/Close replay
// those, so they are never doubled). A prefix unary operand is never
// wrapped: parseUnary binds it to a single primary.
func (s *serializer) writeOperand(operandID graph.NodeID, parentPrec int) {
	_, hasLvalue := s.g.PropertyByName(operandID, "lvalue")
	_, hasRvalue := s.g.PropertyByName(operandID, "rvalue")
	infix := s.isOperator(operandID) && hasLvalue && hasRvalue
	if infix && len(s.g.Groupings(operandID)) == 0 && s.precedenceOf(operandID) < parentPrec {
		s.writeByte('(')
		s.writeNode(operandID)
		s.writeByte(')')
		return
	}
	s.writeNode(operandID)
}

func (s *serializer) isOperator(nodeID graph.NodeID) bool {
	n, ok := s.g.Node(nodeID)
	return ok && n.Kind == graph.KindOperator
}

func (s *serializer) precedenceOf(nodeID graph.NodeID) int {
	n, _ := s.g.Node(nodeID)
	_, hasLvalue := s.g.PropertyByName(nodeID, "lvalue")
	_, hasRvalue := s.g.PropertyByName(nodeID, "rvalue")
	if hasLvalue && hasRvalue {
		return s.binaryPrecedence(n.Name)
	}
	if op, ok := s.g.Lang.UnaryOperator(n.Name); ok {
		return op.Precedence
	}
	return 0
}

func (s *serializer) binaryPrecedence(symbol string) int {
	if op, ok := s.g.Lang.Operator(symbol); ok {
		return op.Precedence
	}
	return 0
}

func (s *serializer) writeCall(nodeID graph.NodeID, n graph.Node) {
	s.emit(n.IdentToken)
	open, closeTok := s.g.Parens(nodeID)
	s.emit(open)
	seps := s.g.Separators(nodeID)
	for i, name := range callArgNames(s.g, nodeID) {
		slot, ok := s.g.ArgSlot(nodeID, name)
		if !ok {
			continue
		}
		if arg, ok := s.producerOf(slot); ok {
			s.writeNode(arg)
		}
		if i < len(seps) {
			s.emit(seps[i])
		}
	}
	s.emit(closeTok)
}

// callArgNames recovers a call node's ordered argument property names
// (lvalue/rvalue for arity<=2, arg0.. beyond) by reading back its
// property order, skipping the synthesized "result" output.
func callArgNames(g *graph.Graph, nodeID graph.NodeID) []string {
	var names []string
	for _, propID := range g.Properties(nodeID) {
		p, ok := g.Property(propID)
		if !ok || p.Name == "result" {
			continue
		}
		names = append(names, p.Name)
	}
	return names
}

func (s *serializer) writeIf(nodeID graph.NodeID, n graph.Node) {
	s.emit(n.KeywordToken)
	open, closeTok := s.g.Parens(nodeID)
	s.emit(open)
	if condSlot, ok := s.g.ArgSlot(nodeID, "condition"); ok {
		if cond, ok := s.producerOf(condSlot); ok {
			s.writeNode(cond)
		}
	}
	s.emit(closeTok)

	if trueBody := firstChild(s.g, n.InternalScope); trueBody.Valid() {
		s.writeNode(trueBody)
	}

	falseScope := s.g.FalseBranchScope(nodeID)
	if falseBody := firstChild(s.g, falseScope); falseBody.Valid() {
		s.emit(s.g.ElseToken(nodeID))
		s.writeNode(falseBody)
	}
}

func firstChild(g *graph.Graph, scopeID graph.ScopeID) graph.NodeID {
	if !scopeID.Valid() {
		return graph.NodeID{}
	}
	backbone := g.Backbone(scopeID)
	if len(backbone) == 0 {
		return graph.NodeID{}
	}
	return backbone[0]
}

func (s *serializer) writeForLoop(nodeID graph.NodeID, n graph.Node) {
	s.emit(n.KeywordToken)
	open, closeTok := s.g.Parens(nodeID)
	s.emit(open)

	init, iter := s.g.ForClauses(nodeID)
	semi1, semi2 := s.g.Semicolons(nodeID)

	if init.Valid() {
		s.writeNode(init)
	}
	s.emit(semi1)
	if condSlot, ok := s.g.ArgSlot(nodeID, "condition"); ok {
		if cond, ok := s.producerOf(condSlot); ok {
			s.writeNode(cond)
		}
	}
	s.emit(semi2)
	if iter.Valid() {
		s.writeNode(iter)
	}
	s.emit(closeTok)

	if body := firstChild(s.g, s.g.ForBody(nodeID)); body.Valid() {
		s.writeNode(body)
	}
}

func (s *serializer) writeWhileLoop(nodeID graph.NodeID, n graph.Node) {
	s.emit(n.KeywordToken)
	open, closeTok := s.g.Parens(nodeID)
	s.emit(open)
	if condSlot, ok := s.g.ArgSlot(nodeID, "condition"); ok {
		if cond, ok := s.producerOf(condSlot); ok {
			s.writeNode(cond)
		}
	}
	s.emit(closeTok)

	if body := firstChild(s.g, n.InternalScope); body.Valid() {
		s.writeNode(body)
	}
}

func (s *serializer) producerOf(slotID graph.SlotID) (graph.NodeID, bool) {
	sl, ok := s.g.Slot(slotID)
	if !ok || len(sl.Adjacent) == 0 {
		return graph.NodeID{}, false
	}
	adj, ok := s.g.Slot(sl.Adjacent[0])
	if !ok {
		return graph.NodeID{}, false
	}
	return adj.Owner, true
}
