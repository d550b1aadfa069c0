package graph

import (
	"github.com/nodable-lang/nodable/lang"
	"github.com/nodable-lang/nodable/token"
)

// NodeSpec carries the parts of a node's shape that vary per call site
// (names, argument lists) while CreateNode installs the canonical
// property/slot layout a NodeKind always has.
type NodeSpec struct {
	// Name is the function/operator name (function_call, operator) or the
	// declared identifier's lexeme (variable).
	Name string
	// ArgNames names a function_call/operator's input properties in
	// order, e.g. ["lvalue", "rvalue"] for a binary operator or
	// ["x", "y"] for a two-argument function.
	ArgNames []string
	// DeclaredType is a variable's declared PropertyType.
	DeclaredType lang.PropertyType
	// Keyword is the leading keyword/operator token kept for
	// serialization (if/for/while/operator) or, for a variable, the
	// declared-type keyword token.
	Keyword token.Token
	// Ident is an identifier token: a variable's name, or a
	// variable_ref's reference.
	Ident token.Token
	// Assign is the '=' token of a variable declaration's initializer,
	// if present.
	Assign token.Token
	// Literal is a literal node's source token.
	Literal token.Token
}

// CreateNode allocates a node of kind in scope sc and installs its
// canonical property bag and slots (per-kind table), firing
// add_node. Control-kinds (if/for/while) also get their internal scope
// partitions.
func (g *Graph) CreateNode(kind NodeKind, sc ScopeID, spec NodeSpec) NodeID {
	n := node{kind: kind, name: spec.Name, properties: newPropertyBag(), scope: sc, keywordToken: spec.Keyword}
	h := g.nodes.alloc(n)
	id := NodeID{h: h}

	switch kind {
	case KindLiteral:
		g.installLiteral(id, spec)
	case KindVariable:
		g.installVariable(id, spec)
	case KindVariableRef:
		g.installVariableRef(id, spec)
	case KindOperator, KindFunctionCall:
		g.installCall(id, spec)
	case KindIf:
		g.installIf(id, spec)
	case KindForLoop:
		g.installForLoop(id, spec)
	case KindWhileLoop:
		g.installWhileLoop(id, spec)
	case KindScope:
		g.installScope(id, spec)
	case KindEmptyInstruction, KindDefault:
		// no properties or slots.
	}

	g.Signals.fireAddNode(id)
	return id
}

// AppendBackbone adds id to sc's ordered child list. The parser calls this
// once per atomic_code_block it successfully parses — not from CreateNode
// itself, since most nodes created while parsing an expression are nested
// operands, not scope-level statements.
func (g *Graph) AppendBackbone(sc ScopeID, id NodeID) {
	s := g.scopeData(sc)
	s.backbone = append(s.backbone, id)
}

func (g *Graph) installScope(id NodeID, spec NodeSpec) {
	n := g.mustNode(id)
	n.internalScope = g.newPartition(id, n.scope, PartitionBody)
}

// newPartition allocates a scope partition owned by owner, nested one
// level deeper than parent.
func (g *Graph) newPartition(owner NodeID, parent ScopeID, kind PartitionKind) ScopeID {
	depth := 0
	if parent.Valid() {
		depth = g.scopeData(parent).depth + 1
	}
	sc := newScope(owner, parent, depth)
	sc.partitionOf = kind
	h := g.scopes.alloc(sc)
	id := ScopeID{h: h}
	if parent.Valid() {
		p := g.scopeData(parent)
		p.partitions = append(p.partitions, id)
	}
	return id
}

func (g *Graph) addProperty(owner NodeID, name string, typ lang.PropertyType, flags PropertyFlags, tok token.Token) PropertyID {
	n := g.mustNode(owner)
	p := property{owner: owner, name: name, typ: typ, tok: tok, flags: flags, value: Value{Type: typ}}
	h := g.properties.alloc(p)
	id := PropertyID{h: h}
	n.properties.add(name, id)
	return id
}

func (g *Graph) attachSlot(owner NodeID, propID PropertyID, flags SlotFlags, capacity int) SlotID {
	slotID := g.newSlot(owner, propID, flags, capacity)
	n := g.mustNode(owner)
	n.slots = append(n.slots, slotID)
	if propID.Valid() {
		p, ok := g.properties.get(propID.h)
		if ok {
			p.slot = slotID
		}
	}
	return slotID
}

func (g *Graph) installLiteral(id NodeID, spec NodeSpec) {
	propID := g.addProperty(id, "value", lang.TypeAny, PropertyNone, spec.Literal)
	g.attachSlot(id, propID, SlotFlags{Direction: Output, Role: ValueRole, Order: First}, Unlimited)
}

// installVariable gives a variable node a "value" input slot (the
// initializer) and a "this" property carrying two output slots:
// declaration-output (the node's own first-use identity,
// rewriting rule) and reference-output (what later variable_ref nodes
// connect to).
func (g *Graph) installVariable(id NodeID, spec NodeSpec) {
	n := g.mustNode(id)
	n.name = spec.Ident.Body()
	n.typeToken = spec.Keyword
	n.identToken = spec.Ident
	n.assignToken = spec.Assign

	valueID := g.addProperty(id, "value", spec.DeclaredType, PropertyNone, token.Token{})
	g.attachSlot(id, valueID, SlotFlags{Direction: Input, Role: ValueRole, Order: First}, 1)

	thisID := g.addProperty(id, "this", spec.DeclaredType, IsThis, spec.Ident)
	n.declOutput = g.attachSlot(id, thisID, SlotFlags{Direction: Output, Role: ValueRole, Order: First}, Unlimited)
	n.refOutput = g.attachSlot(id, thisID, SlotFlags{Direction: Output, Role: ValueRole, Order: Second}, Unlimited)

	sc := g.scopeData(n.scope)
	sc.vars = append(sc.vars, id)
	sc.varByName[n.name] = id
}

// installVariableRef gives a variable_ref node a reference-input slot
// that must connect to the referenced variable's reference-output, and a
// value-output slot consumers read from.
func (g *Graph) installVariableRef(id NodeID, spec NodeSpec) {
	n := g.mustNode(id)
	n.name = spec.Ident.Body()
	n.identToken = spec.Ident

	refID := g.addProperty(id, "reference", lang.TypeNodeRef, IsReference, spec.Ident)
	n.referenceInput = g.attachSlot(id, refID, SlotFlags{Direction: Input, Role: ValueRole, Order: First}, 1)

	valueID := g.addProperty(id, "value", lang.TypeAny, PropertyNone, spec.Ident)
	g.attachSlot(id, valueID, SlotFlags{Direction: Output, Role: ValueRole, Order: First}, Unlimited)
}

// BindVariableRef connects ref's reference-input to variable's
// reference-output and records the back-pointer used by compile's
// variable-load lowering.
func (g *Graph) BindVariableRef(ref, variable NodeID) bool {
	rn := g.mustNode(ref)
	vn := g.mustNode(variable)
	if _, ok := g.Connect(vn.refOutput, rn.referenceInput, ConnectFlags{}); !ok {
		return false
	}
	rn.referencedVar = variable
	return true
}

// ReferencedVariable returns the variable a variable_ref resolves to.
func (g *Graph) ReferencedVariable(ref NodeID) (NodeID, bool) {
	n := g.mustNode(ref)
	return n.referencedVar, n.referencedVar.Valid()
}

// DeclarationOutput and ReferenceOutput expose a variable node's two
// output slots so the parser can wire a bare first use (declaration
// output) versus later uses (via a variable_ref on reference output).
func (g *Graph) DeclarationOutput(variable NodeID) SlotID { return g.mustNode(variable).declOutput }
func (g *Graph) ReferenceOutput(variable NodeID) SlotID   { return g.mustNode(variable).refOutput }

// installCall gives an operator/function_call node one input property
// per spec.ArgNames plus a "result" output.
func (g *Graph) installCall(id NodeID, spec NodeSpec) {
	orders := []Order{First, Second}
	for i, name := range spec.ArgNames {
		order := First
		if i < len(orders) {
			order = orders[i]
		}
		argID := g.addProperty(id, name, lang.TypeAny, PropertyNone, token.Token{})
		g.attachSlot(id, argID, SlotFlags{Direction: Input, Role: ValueRole, Order: order}, 1)
	}
	resultID := g.addProperty(id, "result", lang.TypeAny, PropertyNone, token.Token{})
	g.attachSlot(id, resultID, SlotFlags{Direction: Output, Role: ValueRole, Order: First}, Unlimited)
}

// ArgSlot returns the slot attached to the node's property called name
// (a call argument such as "lvalue", or "value", "condition", "result").
func (g *Graph) ArgSlot(call NodeID, name string) (SlotID, bool) {
	propID, ok := g.PropertyByName(call, name)
	if !ok {
		return SlotID{}, false
	}
	p, _ := g.properties.get(propID.h)
	return p.slot, p.slot.Valid()
}

// ResultSlot returns a call node's output slot.
func (g *Graph) ResultSlot(call NodeID) SlotID {
	s, _ := g.ArgSlot(call, "result")
	return s
}

func (g *Graph) installIf(id NodeID, spec NodeSpec) {
	n := g.mustNode(id)
	condID := g.addProperty(id, "condition", lang.TypeBool, PropertyNone, token.Token{})
	g.attachSlot(id, condID, SlotFlags{Direction: Input, Role: ValueRole, Order: First}, 1)

	trueBranchID := g.addProperty(id, "true_branch", lang.TypeVoid, PropertyNone, token.Token{})
	falseBranchID := g.addProperty(id, "false_branch", lang.TypeVoid, PropertyNone, token.Token{})
	trueOut := g.attachSlot(id, trueBranchID, SlotFlags{Direction: Output, Role: FlowRole, Order: First}, 1)
	falseOut := g.attachSlot(id, falseBranchID, SlotFlags{Direction: Output, Role: FlowRole, Order: Second}, 1)

	n.internalScope = g.newPartition(id, n.scope, PartitionTrueBranch)
	n.secondaryScope = g.newPartition(id, n.scope, PartitionFalseBranch)

	g.Connect(trueOut, g.scopeData(n.internalScope).entrySlot(g), ConnectFlags{})
	g.Connect(falseOut, g.scopeData(n.secondaryScope).entrySlot(g), ConnectFlags{})
}

// FalseBranchScope returns an if node's false-branch scope partition.
func (g *Graph) FalseBranchScope(ifNode NodeID) ScopeID { return g.mustNode(ifNode).secondaryScope }

// SetElseToken records the 'else' keyword token an if node's false
// branch was introduced by.
func (g *Graph) SetElseToken(ifNode NodeID, t token.Token) { g.mustNode(ifNode).elseToken = t }

// ElseToken returns the token SetElseToken recorded, or the null token if
// the if node has no false branch.
func (g *Graph) ElseToken(ifNode NodeID) token.Token { return g.mustNode(ifNode).elseToken }

// ForBody returns a for_loop node's body partition (nested under the
// header scope InternalScopeOf returns).
func (g *Graph) ForBody(forNode NodeID) ScopeID {
	n := g.mustNode(forNode)
	parts := g.scopeData(n.internalScope).partitions
	if len(parts) == 0 {
		return ScopeID{}
	}
	return parts[0]
}

func (g *Graph) installForLoop(id NodeID, spec NodeSpec) {
	n := g.mustNode(id)
	condID := g.addProperty(id, "condition", lang.TypeBool, PropertyNone, token.Token{})
	g.attachSlot(id, condID, SlotFlags{Direction: Input, Role: ValueRole, Order: First}, 1)

	bodyBranchID := g.addProperty(id, "true_branch", lang.TypeVoid, PropertyNone, token.Token{})
	bodyOut := g.attachSlot(id, bodyBranchID, SlotFlags{Direction: Output, Role: FlowRole, Order: First}, 1)

	header := g.newPartition(id, n.scope, PartitionForHeader)
	body := g.newPartition(id, header, PartitionBody)
	n.internalScope = header

	g.Connect(bodyOut, g.scopeData(body).entrySlot(g), ConnectFlags{})
}

func (g *Graph) installWhileLoop(id NodeID, spec NodeSpec) {
	n := g.mustNode(id)
	condID := g.addProperty(id, "condition", lang.TypeBool, PropertyNone, token.Token{})
	g.attachSlot(id, condID, SlotFlags{Direction: Input, Role: ValueRole, Order: First}, 1)

	bodyBranchID := g.addProperty(id, "true_branch", lang.TypeVoid, PropertyNone, token.Token{})
	bodyOut := g.attachSlot(id, bodyBranchID, SlotFlags{Direction: Output, Role: FlowRole, Order: First}, 1)

	body := g.newPartition(id, n.scope, PartitionBody)
	n.internalScope = body

	g.Connect(bodyOut, g.scopeData(body).entrySlot(g), ConnectFlags{})
}

// ValueOutput returns the slot downstream consumers should connect to in
// order to read nodeID's value, dispatching by kind: a literal or
// variable_ref's "value" slot, a call node's "result" slot, or a
// variable's declaration-output (its own first, bare use before any
// rewriting — later uses go through a variable_ref instead, whose
// "value" slot this function also serves).
func (g *Graph) ValueOutput(nodeID NodeID) (SlotID, bool) {
	n := g.mustNode(nodeID)
	switch n.kind {
	case KindLiteral, KindVariableRef:
		propID, ok := g.PropertyByName(nodeID, "value")
		if !ok {
			return SlotID{}, false
		}
		p, _ := g.properties.get(propID.h)
		return p.slot, p.slot.Valid()
	case KindOperator, KindFunctionCall:
		return g.ResultSlot(nodeID), true
	case KindVariable:
		return n.declOutput, n.declOutput.Valid()
	default:
		return SlotID{}, false
	}
}

// SetSuffixToken records a node's trailing token for serialization: a
// scope's closing '}', an expression_block's trailing ';', or an
// empty_instruction's sole ';'.
func (g *Graph) SetSuffixToken(id NodeID, t token.Token) { g.mustNode(id).suffixToken = t }

// AddGrouping records one layer of explicit source parentheses wrapping
// id's expression, so the serializer can replay redundant user
// parenthesization byte-exactly instead of only the precedence-minimal
// set it would otherwise synthesize. Callers append innermost-first as
// nested `parens` productions unwind.
func (g *Graph) AddGrouping(id NodeID, open, close token.Token) {
	n := g.mustNode(id)
	n.groupings = append(n.groupings, Grouping{Open: open, Close: close})
}

// Groupings returns id's explicit parenthesization layers, innermost
// first.
func (g *Graph) Groupings(id NodeID) []Grouping {
	return append([]Grouping(nil), g.mustNode(id).groupings...)
}

// SetParens records the '(' ')' tokens bracketing a call's argument list
// or an if/for/while's condition.
func (g *Graph) SetParens(id NodeID, open, close token.Token) {
	n := g.mustNode(id)
	n.openParen, n.closeParen = open, close
}

// Parens returns the tokens SetParens recorded.
func (g *Graph) Parens(id NodeID) (open, close token.Token) {
	n := g.mustNode(id)
	return n.openParen, n.closeParen
}

// SetSeparators records a call's ','-tokens between arguments.
func (g *Graph) SetSeparators(id NodeID, seps []token.Token) {
	g.mustNode(id).separators = append([]token.Token(nil), seps...)
}

// Separators returns the tokens SetSeparators recorded.
func (g *Graph) Separators(id NodeID) []token.Token {
	return append([]token.Token(nil), g.mustNode(id).separators...)
}

// SetSemicolons records a for_loop's two inner ';' tokens, separating its
// init/condition/iteration clauses.
func (g *Graph) SetSemicolons(id NodeID, a, b token.Token) {
	n := g.mustNode(id)
	n.semicolons = [2]token.Token{a, b}
}

// Semicolons returns the tokens SetSemicolons recorded.
func (g *Graph) Semicolons(id NodeID) (token.Token, token.Token) {
	n := g.mustNode(id)
	return n.semicolons[0], n.semicolons[1]
}

// SetForClauses records a for_loop's init and iteration clause nodes,
// either of which may be invalid if the source omitted that clause.
func (g *Graph) SetForClauses(id NodeID, init, iter NodeID) {
	n := g.mustNode(id)
	n.forInit, n.forIter = init, iter
}

// ForClauses returns the nodes SetForClauses recorded.
func (g *Graph) ForClauses(id NodeID) (init, iter NodeID) {
	n := g.mustNode(id)
	return n.forInit, n.forIter
}

// ConditionSlot returns an if/for/while node's condition input slot.
func (g *Graph) ConditionSlot(ctrl NodeID) SlotID {
	s, _ := g.ArgSlot(ctrl, "condition")
	return s
}

// FindVariable resolves name starting from sc, optionally recursing into
// parent scopes when recurseParents is set.
func (g *Graph) FindVariable(name string, sc ScopeID, recurseParents bool) (NodeID, bool) {
	for cur := sc; cur.Valid(); {
		s := g.scopeData(cur)
		if id, ok := s.varByName[name]; ok {
			return id, true
		}
		if !recurseParents {
			break
		}
		cur = s.parent
	}
	return NodeID{}, false
}

// DeclaredVariableNames returns the variable names visible directly in
// sc, deduplicated and sorted ("unique, ordered" note).
func (g *Graph) DeclaredVariableNames(sc ScopeID) []string {
	s := g.scopeData(sc)
	names := make([]string, 0, len(s.vars))
	for _, v := range s.vars {
		names = append(names, g.mustNode(v).name)
	}
	return dedupVarNames(names)
}

// DeclaredVariables returns the variable nodes declared directly in sc, in
// declaration order — unlike DeclaredVariableNames, not deduplicated or
// sorted — for callers that need the exact push/pop stack discipline
// compiles against.
func (g *Graph) DeclaredVariables(sc ScopeID) []NodeID {
	return append([]NodeID(nil), g.scopeData(sc).vars...)
}

// NewScope allocates a plain nested scope not owned by a control node
// ("scoped_block" introduces a scope without one).
func (g *Graph) NewScope(parent ScopeID) ScopeID {
	return g.newPartition(NodeID{}, parent, PartitionBody)
}

// Destroy removes a node: it disconnects every edge touching its slots,
// frees its properties and slots, recursively destroys its internal scope
// (and whatever backbone nodes that scope still holds), detaches it from
// its enclosing scope's backbone/variable index, and fires remove_node.
func (g *Graph) Destroy(id NodeID) {
	n, ok := g.nodes.get(id.h)
	if !ok {
		return
	}

	for _, slotID := range n.slots {
		if s, ok := g.slots.get(slotID.h); ok {
			for _, adj := range append([]SlotID(nil), s.adjacent...) {
				if e, ok := g.edgeBetween(slotID, adj); ok {
					g.Disconnect(e.ID)
				}
			}
			g.slots.free_(slotID.h)
		}
	}
	for _, propID := range n.properties.Order() {
		g.properties.free_(propID.h)
	}

	if n.internalScope.Valid() {
		g.destroyScope(n.internalScope)
	}

	if n.scope.Valid() {
		s := g.scopeData(n.scope)
		s.backbone = removeNode(s.backbone, id)
		if n.kind == KindVariable {
			delete(s.varByName, n.name)
			s.vars = removeNode(s.vars, id)
		}
	}

	g.nodes.free_(id.h)
	g.Signals.fireRemoveNode(id)
}

func (g *Graph) destroyScope(id ScopeID) {
	s, ok := g.scopes.get(id.h)
	if !ok {
		return
	}
	for _, child := range append([]NodeID(nil), s.backbone...) {
		g.Destroy(child)
	}
	for _, part := range append([]ScopeID(nil), s.partitions...) {
		g.destroyScope(part)
	}
	g.scopes.free_(id.h)
}

func removeNode(list []NodeID, target NodeID) []NodeID {
	out := list[:0]
	for _, n := range list {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}
