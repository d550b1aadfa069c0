package parser

import (
	"github.com/nodable-lang/nodable/graph"
	"github.com/nodable-lang/nodable/lang"
	"github.com/nodable-lang/nodable/token"
)

func (p *parser) expect(kind token.Kind, want string) (token.Token, bool) {
	t := p.rib.EatIf(kind)
	if t.IsNull() {
		p.diags.Newf(offsetOf(p.rib.Peek()), "expected %s, found %q", want, p.rib.Peek().Body())
		return token.Null, false
	}
	return t, true
}

// parseCodeBlock parses atomic_code_block* into sc's backbone, stopping at
// EOF or a '}' it does not consume.
func (p *parser) parseCodeBlock(sc graph.ScopeID) bool {
	defer un(trace(p, "CodeBlock"))
	for {
		peek := p.rib.Peek()
		if peek.IsNull() || peek.Kind() == token.SCOPE_END {
			return true
		}
		if !p.parseStatementInto(sc) {
			return false
		}
	}
}

func (p *parser) parseStatementInto(sc graph.ScopeID) bool {
	id, ok := p.parseAtomicCodeBlock(sc)
	if !ok {
		return false
	}
	p.g.AppendBackbone(sc, id)
	return true
}

// parseAtomicCodeBlock tries each atomic_code_block alternative in turn.
func (p *parser) parseAtomicCodeBlock(sc graph.ScopeID) (graph.NodeID, bool) {
	defer un(trace(p, "AtomicCodeBlock"))
	if id, ok := p.tryScopedBlock(sc); ok {
		return id, true
	}
	if id, ok := p.tryIfBlock(sc); ok {
		return id, true
	}
	if id, ok := p.tryForBlock(sc); ok {
		return id, true
	}
	if id, ok := p.tryWhileBlock(sc); ok {
		return id, true
	}
	if id, ok := p.tryEmptyBlock(sc); ok {
		return id, true
	}
	if id, ok := p.tryExpressionBlock(sc); ok {
		return id, true
	}
	p.diags.Newf(offsetOf(p.rib.Peek()), "expected a statement")
	return graph.NodeID{}, false
}

func (p *parser) tryScopedBlock(sc graph.ScopeID) (graph.NodeID, bool) {
	if p.peekKind() != token.SCOPE_BEGIN {
		return graph.NodeID{}, false
	}
	tx := p.begin()
	defer tx.close()

	open := p.rib.Eat()
	id := p.newNode(graph.KindScope, sc, graph.NodeSpec{Keyword: open})
	inner, _ := p.g.InternalScopeOf(id)
	if !p.parseCodeBlock(inner) {
		return graph.NodeID{}, false
	}
	closeTok, ok := p.expect(token.SCOPE_END, "'}'")
	if !ok {
		return graph.NodeID{}, false
	}
	p.g.SetSuffixToken(id, closeTok)
	tx.accept()
	return id, true
}

func (p *parser) tryEmptyBlock(sc graph.ScopeID) (graph.NodeID, bool) {
	if p.peekKind() != token.END_OF_INSTRUCTION {
		return graph.NodeID{}, false
	}
	tx := p.begin()
	defer tx.close()
	semi := p.rib.Eat()
	id := p.newNode(graph.KindEmptyInstruction, sc, graph.NodeSpec{})
	p.g.SetSuffixToken(id, semi)
	tx.accept()
	return id, true
}

func (p *parser) tryIfBlock(sc graph.ScopeID) (graph.NodeID, bool) {
	if p.peekKind() != token.KEYWORD_IF {
		return graph.NodeID{}, false
	}
	tx := p.begin()
	defer tx.close()

	kw := p.rib.Eat()
	open, ok := p.expect(token.PARENTHESIS_OPEN, "'('")
	if !ok {
		return graph.NodeID{}, false
	}
	id := p.newNode(graph.KindIf, sc, graph.NodeSpec{Keyword: kw})
	if p.peekKind() != token.PARENTHESIS_CLOSE {
		condID, ok := p.parseExpression(sc)
		if !ok {
			return graph.NodeID{}, false
		}
		p.connectValue(sc, condID, p.g.ConditionSlot(id))
	}
	closeTok, ok := p.expect(token.PARENTHESIS_CLOSE, "')'")
	if !ok {
		return graph.NodeID{}, false
	}
	p.g.SetParens(id, open, closeTok)

	trueScope, _ := p.g.InternalScopeOf(id)
	if !p.parseStatementInto(trueScope) {
		return graph.NodeID{}, false
	}

	if p.peekKind() == token.KEYWORD_ELSE {
		elseTok := p.rib.Eat()
		p.g.SetElseToken(id, elseTok)
		falseScope := p.g.FalseBranchScope(id)
		if !p.parseStatementInto(falseScope) {
			return graph.NodeID{}, false
		}
	}

	tx.accept()
	return id, true
}

// tryForBlock parses `'for' '(' expression? ';' expression? ';'
// expression? ')' atomic_code_block`. The three clauses are bare
// expressions, not statements: they are appended to the header scope's
// backbone directly rather than through parseStatementInto, which would
// otherwise consume the for-loop's own ';' as if it were the clause's
// trailing terminator.
func (p *parser) tryForBlock(sc graph.ScopeID) (graph.NodeID, bool) {
	if p.peekKind() != token.KEYWORD_FOR {
		return graph.NodeID{}, false
	}
	tx := p.begin()
	defer tx.close()

	kw := p.rib.Eat()
	open, ok := p.expect(token.PARENTHESIS_OPEN, "'('")
	if !ok {
		return graph.NodeID{}, false
	}
	id := p.newNode(graph.KindForLoop, sc, graph.NodeSpec{Keyword: kw})
	header, _ := p.g.InternalScopeOf(id)

	var initID, iterID graph.NodeID
	if p.peekKind() != token.END_OF_INSTRUCTION {
		var ok bool
		initID, ok = p.parseExpression(header)
		if !ok {
			return graph.NodeID{}, false
		}
		initID = p.applyRewritingRule(header, initID)
		p.g.AppendBackbone(header, initID)
	}
	semi1, ok := p.expect(token.END_OF_INSTRUCTION, "';'")
	if !ok {
		return graph.NodeID{}, false
	}
	if p.peekKind() != token.END_OF_INSTRUCTION {
		condID, ok := p.parseExpression(header)
		if !ok {
			return graph.NodeID{}, false
		}
		p.connectValue(header, condID, p.g.ConditionSlot(id))
	}
	semi2, ok := p.expect(token.END_OF_INSTRUCTION, "';'")
	if !ok {
		return graph.NodeID{}, false
	}
	p.g.SetSemicolons(id, semi1, semi2)
	if p.peekKind() != token.PARENTHESIS_CLOSE {
		var ok bool
		iterID, ok = p.parseExpression(header)
		if !ok {
			return graph.NodeID{}, false
		}
		iterID = p.applyRewritingRule(header, iterID)
		p.g.AppendBackbone(header, iterID)
	}
	closeTok, ok := p.expect(token.PARENTHESIS_CLOSE, "')'")
	if !ok {
		return graph.NodeID{}, false
	}
	p.g.SetParens(id, open, closeTok)
	p.g.SetForClauses(id, initID, iterID)

	body := p.g.ForBody(id)
	if !p.parseStatementInto(body) {
		return graph.NodeID{}, false
	}

	tx.accept()
	return id, true
}

func (p *parser) tryWhileBlock(sc graph.ScopeID) (graph.NodeID, bool) {
	if p.peekKind() != token.KEYWORD_WHILE {
		return graph.NodeID{}, false
	}
	tx := p.begin()
	defer tx.close()

	kw := p.rib.Eat()
	open, ok := p.expect(token.PARENTHESIS_OPEN, "'('")
	if !ok {
		return graph.NodeID{}, false
	}
	id := p.newNode(graph.KindWhileLoop, sc, graph.NodeSpec{Keyword: kw})
	if p.peekKind() != token.PARENTHESIS_CLOSE {
		condID, ok := p.parseExpression(sc)
		if !ok {
			return graph.NodeID{}, false
		}
		p.connectValue(sc, condID, p.g.ConditionSlot(id))
	}
	closeTok, ok := p.expect(token.PARENTHESIS_CLOSE, "')'")
	if !ok {
		return graph.NodeID{}, false
	}
	p.g.SetParens(id, open, closeTok)

	body, _ := p.g.InternalScopeOf(id)
	if !p.parseStatementInto(body) {
		return graph.NodeID{}, false
	}

	tx.accept()
	return id, true
}

func (p *parser) tryExpressionBlock(sc graph.ScopeID) (graph.NodeID, bool) {
	tx := p.begin()
	defer tx.close()

	id, ok := p.parseExpression(sc)
	if !ok {
		return graph.NodeID{}, false
	}
	id = p.applyRewritingRule(sc, id)
	if semi, ok := p.eatSemicolon(); ok {
		p.g.SetSuffixToken(id, semi)
	}
	tx.accept()
	return id, true
}

func (p *parser) eatSemicolon() (token.Token, bool) {
	t := p.rib.EatIf(token.END_OF_INSTRUCTION)
	return t, !t.IsNull()
}

// applyRewritingRule substitutes id with a fresh variable_ref if id is a
// variable node that was already committed to code flow elsewhere. Under
// this parser's identifier-resolution policy (every identifier *use* already
// produces a variable_ref; only var_decl yields a bare variable node, and
// each var_decl allocates a brand-new node) this can only trigger if a host
// mutation re-surfaces an existing variable node through the graph API
// between parses, but the check is kept to honor the invariant literally.
func (p *parser) applyRewritingRule(sc graph.ScopeID, id graph.NodeID) graph.NodeID {
	n, ok := p.g.Node(id)
	if !ok || n.Kind != graph.KindVariable {
		return id
	}
	if !p.declaredVars[id] {
		p.declaredVars[id] = true
		return id
	}
	ref := p.newNode(graph.KindVariableRef, sc, graph.NodeSpec{Ident: n.IdentToken})
	p.g.BindVariableRef(ref, id)
	return ref
}

// connectValue wires producerID's value output into consumerSlot,
// applying the rewriting rule first and tolerating producers with no
// declared value output (e.g. an empty condition expression was never
// reached).
func (p *parser) connectValue(sc graph.ScopeID, producerID graph.NodeID, consumerSlot graph.SlotID) {
	producerID = p.applyRewritingRule(sc, producerID)
	if out, ok := p.g.ValueOutput(producerID); ok {
		p.g.ConnectOrMerge(out, consumerSlot)
	}
}

// --- expression ----------------------------------------------------

// parseExpression parses a full expression with precedence climbing
// starting at the lowest precedence bound.
func (p *parser) parseExpression(sc graph.ScopeID) (graph.NodeID, bool) {
	defer un(trace(p, "Expression"))
	return p.parseBinaryExpr(sc, 0)
}

// parseBinaryExpr implements precedence climbing: parse one unary
// operand, then while the next operator's precedence is >= minPrec, eat
// it, parse the right operand at precedence+1, and fold into a binary
// operator node.
func (p *parser) parseBinaryExpr(sc graph.ScopeID, minPrec int) (graph.NodeID, bool) {
	left, ok := p.parseUnary(sc)
	if !ok {
		return graph.NodeID{}, false
	}

	for {
		t := p.rib.Peek()
		if t.Kind() != token.OPERATOR {
			return left, true
		}
		op, ok := p.lang.Operator(t.Body())
		if !ok || op.Precedence < minPrec {
			return left, true
		}
		opTok := p.rib.Eat()
		right, ok := p.parseBinaryExpr(sc, op.Precedence+1)
		if !ok {
			return graph.NodeID{}, false
		}
		id := p.newNode(graph.KindOperator, sc, graph.NodeSpec{Name: op.Symbol, ArgNames: []string{"lvalue", "rvalue"}, Keyword: opTok})
		lvalue, _ := p.g.ArgSlot(id, "lvalue")
		rvalue, _ := p.g.ArgSlot(id, "rvalue")
		p.connectValue(sc, left, lvalue)
		p.connectValue(sc, right, rvalue)
		left = id
	}
}

// parseUnary parses `operator atom | operator parens`, or falls through
// to parsePrimary for call/var_decl/atom/parens.
func (p *parser) parseUnary(sc graph.ScopeID) (graph.NodeID, bool) {
	defer un(trace(p, "Unary"))
	t := p.rib.Peek()
	if t.Kind() == token.OPERATOR {
		if _, ok := p.lang.UnaryOperator(t.Body()); ok {
			opTok := p.rib.Eat()
			operand, ok := p.parsePrimary(sc)
			if !ok {
				return graph.NodeID{}, false
			}
			id := p.newNode(graph.KindOperator, sc, graph.NodeSpec{Name: opTok.Body(), ArgNames: []string{"rvalue"}, Keyword: opTok})
			rvalue, _ := p.g.ArgSlot(id, "rvalue")
			p.connectValue(sc, operand, rvalue)
			return id, true
		}
	}
	return p.parsePrimary(sc)
}

// parsePrimary parses parens | call | var_decl | atom, in that precedence
// (parens and calls require a distinguishing token; var_decl requires a
// type keyword; atom is the fallback).
func (p *parser) parsePrimary(sc graph.ScopeID) (graph.NodeID, bool) {
	switch {
	case p.peekKind() == token.PARENTHESIS_OPEN:
		return p.parseParens(sc)
	case p.peekKind() == token.KEYWORD_OPERATOR:
		return p.parseOperatorCall(sc)
	case p.peekKind() == token.IDENT && p.rib.PeekAt(1).Kind() == token.PARENTHESIS_OPEN:
		return p.parseFunctionCall(sc)
	case p.peekKind().IsKeywordType():
		return p.parseVarDecl(sc)
	default:
		return p.parseAtom(sc)
	}
}

// parseParens parses `'(' expression ')'`. It is a pass-through
// production: no node of its own is allocated, but the open/close tokens
// are recorded on the wrapped node as a Grouping so explicit, possibly
// precedence-redundant parentheses round-trip byte-exactly.
func (p *parser) parseParens(sc graph.ScopeID) (graph.NodeID, bool) {
	tx := p.begin()
	defer tx.close()
	open, ok := p.expect(token.PARENTHESIS_OPEN, "'('")
	if !ok {
		return graph.NodeID{}, false
	}
	id, ok := p.parseExpression(sc)
	if !ok {
		return graph.NodeID{}, false
	}
	closeTok, ok := p.expect(token.PARENTHESIS_CLOSE, "')'")
	if !ok {
		return graph.NodeID{}, false
	}
	p.g.AddGrouping(id, open, closeTok)
	tx.accept()
	return id, true
}

func (p *parser) parseFunctionCall(sc graph.ScopeID) (graph.NodeID, bool) {
	tx := p.begin()
	defer tx.close()
	nameTok, ok := p.expect(token.IDENT, "identifier")
	if !ok {
		return graph.NodeID{}, false
	}
	open, args, seps, closeTok, ok := p.parseArgList(sc)
	if !ok {
		return graph.NodeID{}, false
	}
	names := argNames(len(args))
	id := p.newNode(graph.KindFunctionCall, sc, graph.NodeSpec{Name: nameTok.Body(), ArgNames: names, Ident: nameTok})
	p.g.SetParens(id, open, closeTok)
	p.g.SetSeparators(id, seps)
	for i, argID := range args {
		slot, _ := p.g.ArgSlot(id, names[i])
		p.connectValue(sc, argID, slot)
	}
	tx.accept()
	return id, true
}

func (p *parser) parseOperatorCall(sc graph.ScopeID) (graph.NodeID, bool) {
	tx := p.begin()
	defer tx.close()
	operatorKw := p.rib.Eat() // 'operator', kept on Ident so the serializer can replay it
	opTok, ok := p.expect(token.OPERATOR, "operator symbol")
	if !ok {
		return graph.NodeID{}, false
	}
	open, args, seps, closeTok, ok := p.parseArgList(sc)
	if !ok || len(args) == 0 {
		if ok {
			p.diags.Newf(offsetOf(opTok), "operator call requires at least one argument")
		}
		return graph.NodeID{}, false
	}
	names := argNames(len(args))
	id := p.newNode(graph.KindOperator, sc, graph.NodeSpec{Name: opTok.Body(), ArgNames: names, Keyword: opTok, Ident: operatorKw})
	p.g.SetParens(id, open, closeTok)
	p.g.SetSeparators(id, seps)
	for i, argID := range args {
		slot, _ := p.g.ArgSlot(id, names[i])
		p.connectValue(sc, argID, slot)
	}
	tx.accept()
	return id, true
}

func argNames(n int) []string {
	if n <= 2 {
		return []string{"lvalue", "rvalue"}[:n]
	}
	names := make([]string, n)
	for i := range names {
		names[i] = "arg" + string(rune('0'+i))
	}
	return names
}

func (p *parser) parseArgList(sc graph.ScopeID) (open token.Token, args []graph.NodeID, seps []token.Token, closeTok token.Token, ok bool) {
	open, ok = p.expect(token.PARENTHESIS_OPEN, "'('")
	if !ok {
		return
	}
	if p.peekKind() != token.PARENTHESIS_CLOSE {
		for {
			argID, argOk := p.parseExpression(sc)
			if !argOk {
				ok = false
				return
			}
			args = append(args, argID)
			sep := p.rib.EatIf(token.LIST_SEPARATOR)
			if sep.IsNull() {
				break
			}
			seps = append(seps, sep)
		}
	}
	closeTok, ok = p.expect(token.PARENTHESIS_CLOSE, "')'")
	return
}

func (p *parser) parseVarDecl(sc graph.ScopeID) (graph.NodeID, bool) {
	tx := p.begin()
	defer tx.close()
	typeTok := p.rib.Eat()
	declType, _ := p.lang.TypeOf(typeTok.Kind())
	identTok, ok := p.expect(token.IDENT, "identifier")
	if !ok {
		return graph.NodeID{}, false
	}

	spec := graph.NodeSpec{DeclaredType: declType, Keyword: typeTok, Ident: identTok}
	if assignTok, ok := p.eatOperator("="); ok {
		spec.Assign = assignTok
		id := p.newNode(graph.KindVariable, sc, spec)
		initID, ok := p.parseExpression(sc)
		if !ok {
			return graph.NodeID{}, false
		}
		slot, _ := p.g.ArgSlot(id, "value")
		p.connectValue(sc, initID, slot)
		tx.accept()
		return id, true
	}

	id := p.newNode(graph.KindVariable, sc, spec)
	tx.accept()
	return id, true
}

// parseAtom resolves `literal | identifier`.
func (p *parser) parseAtom(sc graph.ScopeID) (graph.NodeID, bool) {
	t := p.rib.Peek()
	switch {
	case t.Kind() == token.LITERAL_BOOL, t.Kind() == token.LITERAL_INT,
		t.Kind() == token.LITERAL_DOUBLE, t.Kind() == token.LITERAL_STRING:
		return p.parseLiteral(sc)
	case t.Kind() == token.IDENT:
		return p.resolveIdentifier(sc)
	default:
		p.diags.Newf(offsetOf(t), "expected an expression, found %q", t.Body())
		return graph.NodeID{}, false
	}
}

func (p *parser) parseLiteral(sc graph.ScopeID) (graph.NodeID, bool) {
	t := p.rib.Eat()
	id := p.newNode(graph.KindLiteral, sc, graph.NodeSpec{Literal: t})
	propID, _ := p.g.PropertyByName(id, "value")

	var v graph.Value
	var err error
	switch t.Kind() {
	case token.LITERAL_BOOL:
		v = graph.BoolValue(t.Body() == "true")
	case token.LITERAL_INT:
		v, err = graph.ParseIntLiteral(t.Body())
	case token.LITERAL_DOUBLE:
		v, err = graph.ParseDoubleLiteral(t.Body())
	case token.LITERAL_STRING:
		v, err = graph.ParseStringLiteral(t.Body())
	}
	if err != nil {
		p.diags.Wrapf(offsetOf(t), err, "invalid literal")
		return graph.NodeID{}, false
	}
	p.g.SetValue(propID, v, t)
	return id, true
}

// resolveIdentifier resolves a bare identifier in expression position: a
// declared variable becomes a variable_ref bound to its reference-output;
// an undeclared one fails in strict mode or becomes an any-typed, unbound
// variable_ref in permissive mode.
func (p *parser) resolveIdentifier(sc graph.ScopeID) (graph.NodeID, bool) {
	t := p.rib.Eat()
	name := t.Body()

	variable, found := p.g.FindVariable(name, sc, true)
	if !found {
		if !p.permissive {
			p.diags.Newf(offsetOf(t), "undeclared identifier %q", name)
			return graph.NodeID{}, false
		}
		p.diags.Warnf(offsetOf(t), "undeclared identifier %q (permissive mode)", name)
		p.markIncomplete()
		return p.newNode(graph.KindVariableRef, sc, graph.NodeSpec{Ident: t, DeclaredType: lang.TypeAny}), true
	}

	ref := p.newNode(graph.KindVariableRef, sc, graph.NodeSpec{Ident: t})
	p.g.BindVariableRef(ref, variable)
	return ref, true
}
