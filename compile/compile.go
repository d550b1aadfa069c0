// Package compile lowers a graph.Graph into bytecode.Bytecode, using a
// visitor-over-tree structure and a compiler struct with an
// error-accumulation idiom to turn graph nodes into instructions.
package compile

import (
	"github.com/nodable-lang/nodable/bytecode"
	"github.com/nodable-lang/nodable/diagnostics"
	"github.com/nodable-lang/nodable/graph"
	"github.com/nodable-lang/nodable/lang"
)

type compiler struct {
	g          *graph.Graph
	invokables *InvokableTable
	diags      *diagnostics.List

	instrs    []bytecode.Instruction
	varIDs    map[graph.NodeID]bytecode.VariableID
	varNames  []string
	nextVar   bytecode.VariableID
	scopeIDs  map[graph.ScopeID]bytecode.ScopeID
	nextScope bytecode.ScopeID
}

// Compile lowers g into a Bytecode. It validates first
// (every operator/function node must resolve to a registered invokable,
// every variable node must have a scope, every variable_ref must be
// bound) and never partially compiles: on any validation failure it
// returns (nil, false) without producing a single instruction.
func Compile(g *graph.Graph, diags *diagnostics.List) (*bytecode.Bytecode, bool) {
	invokables := DefaultInvokables()
	c := &compiler{
		g:          g,
		invokables: invokables,
		diags:      diags,
		varIDs:     map[graph.NodeID]bytecode.VariableID{},
		scopeIDs:   map[graph.ScopeID]bytecode.ScopeID{},
	}

	root, _ := g.InternalScopeOf(g.Root())
	if !c.validateScope(root) {
		return nil, false
	}

	c.compileScope(root)
	c.emit(bytecode.Instruction{Op: bytecode.Ret})

	return &bytecode.Bytecode{
		Instructions: c.instrs,
		Functions:    invokables.Descriptors(),
		Variables:    c.varNames,
	}, true
}

func (c *compiler) errf(id graph.NodeID, format string, args ...interface{}) {
	c.diags.Newf(offsetOf(c.g, id), format, args...)
}

func offsetOf(g *graph.Graph, id graph.NodeID) int {
	n, ok := g.Node(id)
	if !ok {
		return -1
	}
	if t := n.IdentToken; !t.IsNull() {
		return diagnostics.OffsetOf(t)
	}
	return diagnostics.OffsetOf(n.KeywordToken)
}

// producerOf returns the node whose output feeds slotID, mirroring
// serializer.producerOf — each of compile's and serializer's consumers
// reads the same single-producer-per-input-slot invariant directly off
// the graph rather than sharing a helper across packages.
func producerOf(g *graph.Graph, slotID graph.SlotID) (graph.NodeID, bool) {
	sl, ok := g.Slot(slotID)
	if !ok || len(sl.Adjacent) == 0 {
		return graph.NodeID{}, false
	}
	adj, ok := g.Slot(sl.Adjacent[0])
	if !ok {
		return graph.NodeID{}, false
	}
	return adj.Owner, true
}

// callArgNames recovers a call node's ordered input-property names,
// skipping the synthesized "result" output (mirrors serializer.callArgNames).
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

func (c *compiler) emit(instr bytecode.Instruction) int {
	c.instrs = append(c.instrs, instr)
	return len(c.instrs) - 1
}

// patch rewrites a previously emitted jmp/jne/jeq's Offset to point at
// the next instruction to be emitted, "jump-patching via
// recorded instruction index" (no suspension machinery needed).
func (c *compiler) patch(instrIndex int) {
	c.instrs[instrIndex].Offset = len(c.instrs)
}

func (c *compiler) variableIDFor(node graph.NodeID, name string) bytecode.VariableID {
	if id, ok := c.varIDs[node]; ok {
		return id
	}
	id := c.nextVar
	c.nextVar++
	c.varIDs[node] = id
	c.varNames = append(c.varNames, name)
	return id
}

func (c *compiler) scopeIDFor(sc graph.ScopeID) bytecode.ScopeID {
	if id, ok := c.scopeIDs[sc]; ok {
		return id
	}
	id := c.nextScope
	c.nextScope++
	c.scopeIDs[sc] = id
	return id
}

// --- validation ----------------------------------------------------------

func (c *compiler) validateScope(sc graph.ScopeID) bool {
	ok := true
	for _, id := range c.g.Backbone(sc) {
		if !c.validateStatement(id) {
			ok = false
		}
	}
	return ok
}

func (c *compiler) validateStatement(id graph.NodeID) bool {
	ok := c.validateOperands(id)
	n, found := c.g.Node(id)
	if !found {
		return ok
	}
	switch n.Kind {
	case graph.KindScope:
		ok = c.validateScope(n.InternalScope) && ok
	case graph.KindIf:
		ok = c.validateScope(n.InternalScope) && ok
		if falseScope := c.g.FalseBranchScope(id); falseScope.Valid() {
			ok = c.validateScope(falseScope) && ok
		}
	case graph.KindForLoop:
		init, iter := c.g.ForClauses(id)
		if init.Valid() {
			ok = c.validateOperands(init) && ok
		}
		if iter.Valid() {
			ok = c.validateOperands(iter) && ok
		}
		ok = c.validateScope(c.g.ForBody(id)) && ok
	case graph.KindWhileLoop:
		ok = c.validateScope(n.InternalScope) && ok
	}
	return ok
}

// validateOperands checks id itself (invokable resolution for calls,
// scope/binding presence for variables/refs) and recurses into every
// value it consumes through an input slot.
func (c *compiler) validateOperands(id graph.NodeID) bool {
	n, found := c.g.Node(id)
	if !found {
		return true
	}
	ok := true

	switch n.Kind {
	case graph.KindVariable:
		if !n.Scope.Valid() {
			c.errf(id, "variable %q has no enclosing scope", n.Name)
			ok = false
		}
		if slot, has := c.g.ArgSlot(id, "value"); has {
			if producer, has := producerOf(c.g, slot); has {
				ok = c.validateOperands(producer) && ok
			}
		}
	case graph.KindVariableRef:
		if _, bound := c.g.ReferencedVariable(id); !bound {
			c.errf(id, "variable reference %q is unbound", n.Name)
			ok = false
		}
	case graph.KindOperator, graph.KindFunctionCall:
		if base, isAssign := assignmentBaseOp(n.Name); isAssign {
			ok = c.validateAssignment(id, base) && ok
			break
		}
		argNames := callArgNames(c.g, id)
		for _, name := range argNames {
			slot, has := c.g.ArgSlot(id, name)
			if !has {
				continue
			}
			producer, has := producerOf(c.g, slot)
			if !has {
				c.errf(id, "%q is missing its %q argument", n.Name, name)
				ok = false
				continue
			}
			ok = c.validateOperands(producer) && ok
		}
		if _, resolved := c.invokables.Resolve(n.Name, len(argNames)); !resolved {
			c.errf(id, "no invokable registered for %q/%d", n.Name, len(argNames))
			ok = false
		}
	case graph.KindIf, graph.KindForLoop, graph.KindWhileLoop:
		if slot, has := c.g.ArgSlot(id, "condition"); has {
			if producer, has := producerOf(c.g, slot); has {
				ok = c.validateOperands(producer) && ok
			}
		}
	}
	return ok
}

// assignmentBaseOp recognizes "=" and the compound assignment operators,
// returning the arithmetic invokable a compound form reads its current
// value through ("" for plain "="), and whether name is one of them.
func assignmentBaseOp(name string) (string, bool) {
	switch name {
	case "=":
		return "", true
	case "+=":
		return "+", true
	case "-=":
		return "-", true
	case "*=":
		return "*", true
	case "/=":
		return "/", true
	default:
		return "", false
	}
}

// isAssignTargetNode reports whether id is something an assignment can
// store into: a bound variable_ref, or (for the unusual case of assigning
// at the point of declaration) the variable node itself.
func isAssignTargetNode(g *graph.Graph, id graph.NodeID) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	switch n.Kind {
	case graph.KindVariableRef:
		_, bound := g.ReferencedVariable(id)
		return bound
	case graph.KindVariable:
		return true
	default:
		return false
	}
}

// validateAssignment checks "=" and compound-assignment operator nodes:
// their "lvalue" must resolve to an assignable variable rather than an
// arbitrary expression, and (for compound forms) the base arithmetic
// operator must be a registered invokable.
func (c *compiler) validateAssignment(id graph.NodeID, base string) bool {
	ok := true
	if lvSlot, has := c.g.ArgSlot(id, "lvalue"); has {
		if producer, has := producerOf(c.g, lvSlot); has {
			if !isAssignTargetNode(c.g, producer) {
				c.errf(id, "left-hand side of an assignment must be a variable")
				ok = false
			}
		} else {
			c.errf(id, "assignment is missing its left-hand side")
			ok = false
		}
	} else {
		ok = false
	}
	if rvSlot, has := c.g.ArgSlot(id, "rvalue"); has {
		if producer, has := producerOf(c.g, rvSlot); has {
			ok = c.validateOperands(producer) && ok
		}
	}
	if base != "" {
		if _, resolved := c.invokables.Resolve(base, 2); !resolved {
			c.errf(id, "no invokable registered for %q/2", base)
			ok = false
		}
	}
	return ok
}

// --- lowering --------------------------------------------------------------

// compileScope lowers scope rule: push_stack_frame →
// push_var per declared variable → each backbone child in order →
// pop_var per declared variable, reverse order → pop_stack_frame.
func (c *compiler) compileScope(sc graph.ScopeID) {
	scopeID := c.scopeIDFor(sc)
	c.emit(bytecode.Instruction{Op: bytecode.PushStackFrame, Scope: scopeID})

	declared := c.g.DeclaredVariables(sc)
	varIDs := make([]bytecode.VariableID, 0, len(declared))
	for _, varNode := range declared {
		n, _ := c.g.Node(varNode)
		vid := c.variableIDFor(varNode, n.Name)
		varIDs = append(varIDs, vid)
		c.emit(bytecode.Instruction{Op: bytecode.PushVar, Variable: vid})
	}

	for _, id := range c.g.Backbone(sc) {
		c.compileStatement(id)
	}

	for i := len(varIDs) - 1; i >= 0; i-- {
		c.emit(bytecode.Instruction{Op: bytecode.PopVar, Variable: varIDs[i]})
	}
	c.emit(bytecode.Instruction{Op: bytecode.PopStackFrame, Scope: scopeID})
}

func (c *compiler) compileStatement(id graph.NodeID) {
	n, found := c.g.Node(id)
	if !found {
		return
	}
	switch n.Kind {
	case graph.KindScope:
		c.compileScope(n.InternalScope)
	case graph.KindVariable:
		c.compileVariableDecl(id, n)
	case graph.KindOperator, graph.KindFunctionCall:
		if base, isAssign := assignmentBaseOp(n.Name); isAssign {
			c.compileAssignment(id, base)
		} else {
			c.compileCall(id, n)
		}
	case graph.KindIf:
		c.compileIf(id, n)
	case graph.KindForLoop:
		c.compileForLoop(id, n)
	case graph.KindWhileLoop:
		c.compileWhileLoop(id, n)
	case graph.KindVariableRef, graph.KindLiteral:
		// A bare value statement loads its value into rax, so a program
		// ending in one (`5`, `x;`) reports that value as its result.
		c.compileExpr(id)
	case graph.KindEmptyInstruction, graph.KindDefault:
		// Nothing to lower as a bare statement.
	}
}

// compileExpr compiles a value-producing node so its result ends up in
// rax, "leaves the result in rax" convention for
// every operand.
func (c *compiler) compileExpr(id graph.NodeID) {
	n, found := c.g.Node(id)
	if !found {
		return
	}
	switch n.Kind {
	case graph.KindLiteral:
		c.compileLiteral(id)
	case graph.KindVariable:
		c.compileVariableLoad(id, n)
	case graph.KindVariableRef:
		c.compileVariableRefLoad(id)
	case graph.KindOperator, graph.KindFunctionCall:
		if base, isAssign := assignmentBaseOp(n.Name); isAssign {
			c.compileAssignment(id, base)
		} else {
			c.compileCall(id, n)
		}
	}
}

func (c *compiler) compileLiteral(id graph.NodeID) {
	propID, has := c.g.PropertyByName(id, "value")
	if !has {
		return
	}
	p, _ := c.g.Property(propID)
	c.emit(bytecode.Instruction{Op: bytecode.Mov, Dst: bytecode.RegisterTarget(bytecode.RAX), Src: valueToOperand(p.Value)})
}

// valueToOperand converts a graph.Value (the parser's/literal folding's
// typed-value representation) into the bytecode operand union the vm
// reads registers and variable slots as.
func valueToOperand(v graph.Value) bytecode.Value {
	switch v.Type {
	case lang.TypeBool:
		return bytecode.BoolValue(v.Bool)
	case lang.TypeInt, lang.TypeI16:
		return bytecode.IntValue(v.Int)
	case lang.TypeDouble:
		return bytecode.DoubleValue(v.Double)
	default:
		// string/any/void/node-reference have no operand variant in the
		// 64-bit union defines; they never reach arithmetic or
		// comparison invokables, so void is the correct inert fallback.
		return bytecode.VoidValue()
	}
}

// compileVariableDecl compiles a variable node appearing as a statement:
// if it carries an initializer, the initializer is compiled (leaving its
// value in rax) and moved into the variable's frame slot; an
// uninitialized declaration does nothing further (push_var already
// reserved its slot).
func (c *compiler) compileVariableDecl(id graph.NodeID, n graph.Node) {
	slot, has := c.g.ArgSlot(id, "value")
	if !has {
		return
	}
	producer, has := producerOf(c.g, slot)
	if !has {
		return
	}
	c.compileExpr(producer)
	vid := c.variableIDFor(id, n.Name)
	c.emit(bytecode.Instruction{Op: bytecode.Mov, Dst: bytecode.VariableTarget(vid), Src: bytecode.RegisterValue(bytecode.RAX)})
}

// compileVariableLoad compiles a bare (first-use/declaration-output)
// reference to a variable as a load into rax.
func (c *compiler) compileVariableLoad(id graph.NodeID, n graph.Node) {
	vid := c.variableIDFor(id, n.Name)
	c.emit(bytecode.Instruction{Op: bytecode.Mov, Dst: bytecode.RegisterTarget(bytecode.RAX), Src: bytecode.VariableValue(vid)})
}

// compileVariableRefLoad compiles a variable_ref:,
// "if an input is connected to a variable, the variable is compiled as a
// load, not as a re-declaration" — a ref resolves to the same VariableID
// its bound variable uses.
func (c *compiler) compileVariableRefLoad(id graph.NodeID) {
	target, bound := c.g.ReferencedVariable(id)
	if !bound {
		return
	}
	tn, _ := c.g.Node(target)
	vid := c.variableIDFor(target, tn.Name)
	c.emit(bytecode.Instruction{Op: bytecode.Mov, Dst: bytecode.RegisterTarget(bytecode.RAX), Src: bytecode.VariableValue(vid)})
}

// compileCall lowers function/operator call rule: for each
// input slot, recursively compile its source (leaving rax set), stash it
// off to an argument register, then emit call(invokable_id). Arity-1
// calls pass their sole argument in rax; arity-2 calls compile the first
// operand and park it in a scratch frame variable owned by this call node
// (compiling the second operand may itself use rdx), compile the second
// into rax, then load the parked value into rdx, so the native function
// reads [rdx, rax] in left-to-right source order.
func (c *compiler) compileCall(id graph.NodeID, n graph.Node) {
	argNames := callArgNames(c.g, id)
	argRegs := make([]bytecode.Register, 0, len(argNames))
	var scratch bytecode.VariableID
	parked := false

	for i, name := range argNames {
		slot, has := c.g.ArgSlot(id, name)
		if !has {
			continue
		}
		producer, has := producerOf(c.g, slot)
		if !has {
			continue
		}
		c.compileExpr(producer)
		if i < len(argNames)-1 {
			scratch, parked = c.variableIDFor(id, "tmp"), true
			c.emit(bytecode.Instruction{Op: bytecode.Mov, Dst: bytecode.VariableTarget(scratch), Src: bytecode.RegisterValue(bytecode.RAX)})
			argRegs = append(argRegs, bytecode.RDX)
		} else {
			argRegs = append(argRegs, bytecode.RAX)
		}
	}
	if parked {
		c.emit(bytecode.Instruction{Op: bytecode.Mov, Dst: bytecode.RegisterTarget(bytecode.RDX), Src: bytecode.VariableValue(scratch)})
	}

	inv, _ := c.invokables.Resolve(n.Name, len(argNames))
	c.emit(bytecode.Instruction{Op: bytecode.Call, Function: inv.ID, Args: argRegs})
}

// assignTargetVariable resolves an assignment's lvalue producer (a
// variable_ref bound to the declaration, or — at the point of declaration
// itself — the variable node) to the VariableID compileScope already
// reserved a frame slot for.
func (c *compiler) assignTargetVariable(lvProducer graph.NodeID) (bytecode.VariableID, bool) {
	n, ok := c.g.Node(lvProducer)
	if !ok {
		return 0, false
	}
	switch n.Kind {
	case graph.KindVariableRef:
		target, bound := c.g.ReferencedVariable(lvProducer)
		if !bound {
			return 0, false
		}
		tn, _ := c.g.Node(target)
		return c.variableIDFor(target, tn.Name), true
	case graph.KindVariable:
		return c.variableIDFor(lvProducer, n.Name), true
	default:
		return 0, false
	}
}

// compileAssignment lowers "=" and the compound assignment operators: for
// "=" the rvalue is compiled and stored directly; for a compound form the
// variable's current value and the rvalue are routed through the base
// arithmetic invokable (the same [lhs in rdx, rhs in rax] argument
// convention compileCall uses) before the result is stored back — an
// iteration clause like `"i=i+1"` in a for-loop header compiles through
// this path.
func (c *compiler) compileAssignment(id graph.NodeID, base string) {
	lvSlot, has := c.g.ArgSlot(id, "lvalue")
	if !has {
		return
	}
	lvProducer, has := producerOf(c.g, lvSlot)
	if !has {
		return
	}
	vid, ok := c.assignTargetVariable(lvProducer)
	if !ok {
		return
	}

	rvSlot, hasRvSlot := c.g.ArgSlot(id, "rvalue")
	var rvProducer graph.NodeID
	hasRv := false
	if hasRvSlot {
		rvProducer, hasRv = producerOf(c.g, rvSlot)
	}

	if base != "" {
		if hasRv {
			c.compileExpr(rvProducer)
		}
		c.emit(bytecode.Instruction{Op: bytecode.Mov, Dst: bytecode.RegisterTarget(bytecode.RDX), Src: bytecode.VariableValue(vid)})
		inv, _ := c.invokables.Resolve(base, 2)
		c.emit(bytecode.Instruction{Op: bytecode.Call, Function: inv.ID, Args: []bytecode.Register{bytecode.RDX, bytecode.RAX}})
	} else if hasRv {
		c.compileExpr(rvProducer)
	}

	c.emit(bytecode.Instruction{Op: bytecode.Mov, Dst: bytecode.VariableTarget(vid), Src: bytecode.RegisterValue(bytecode.RAX)})
}

// compileCondition lowers condition-instruction: compile
// the expression (result in rax), mov rdx <- true, cmp rax, rdx.
// Subsequent conditional jumps branch on the resulting zero flag.
func (c *compiler) compileCondition(ctrl graph.NodeID) {
	slot, has := c.g.ArgSlot(ctrl, "condition")
	if has {
		if producer, has := producerOf(c.g, slot); has {
			c.compileExpr(producer)
		}
	}
	c.emit(bytecode.Instruction{Op: bytecode.Mov, Dst: bytecode.RegisterTarget(bytecode.RDX), Src: bytecode.BoolValue(true)})
	c.emit(bytecode.Instruction{Op: bytecode.Cmp, CmpA: bytecode.RAX, CmpB: bytecode.RDX})
}

func firstStatement(g *graph.Graph, sc graph.ScopeID) (graph.NodeID, bool) {
	backbone := g.Backbone(sc)
	if len(backbone) == 0 {
		return graph.NodeID{}, false
	}
	return backbone[0], true
}

// compileIf lowers if/else rule, including else-if chains
// (the false branch may itself hold a single `if` statement).
func (c *compiler) compileIf(id graph.NodeID, n graph.Node) {
	c.compileCondition(id)
	toElse := c.emit(bytecode.Instruction{Op: bytecode.Jne})

	c.compileScope(n.InternalScope)

	falseScope := c.g.FalseBranchScope(id)
	hasFalse := false
	if falseScope.Valid() {
		if _, has := firstStatement(c.g, falseScope); has {
			hasFalse = true
		}
	}

	if hasFalse {
		toEnd := c.emit(bytecode.Instruction{Op: bytecode.Jmp})
		c.patch(toElse)
		c.compileScope(falseScope)
		c.patch(toEnd)
	} else {
		c.patch(toElse)
	}
}

// compileForInit compiles a for-loop's init clause: the canonical
// `for(int i=0; ...)` form declares its index right there, so a bare
// variable node goes through decl semantics (initializer store into the
// slot compileForLoop's push_var already reserved) rather than
// compileExpr's declaration-output load; anything else (e.g. a plain
// assignment to a variable declared outside the loop) is just an
// expression evaluated for its side effect.
func (c *compiler) compileForInit(id graph.NodeID) {
	n, found := c.g.Node(id)
	if !found {
		return
	}
	if n.Kind == graph.KindVariable {
		c.compileVariableDecl(id, n)
		return
	}
	c.compileExpr(id)
}

// compileForLoop lowers for-loop rule. The header scope
// InternalScopeOf(id) holds whatever the init clause declares, so it is
// framed exactly like compileScope frames an ordinary scope
// (push_stack_frame/push_var before the loop, pop_var/pop_stack_frame
// after) with the condition, body and iteration clause compiled in
// between, where the declared index is visible to every frame lookup.
func (c *compiler) compileForLoop(id graph.NodeID, n graph.Node) {
	header, _ := c.g.InternalScopeOf(id)
	headerID := c.scopeIDFor(header)
	c.emit(bytecode.Instruction{Op: bytecode.PushStackFrame, Scope: headerID})

	declared := c.g.DeclaredVariables(header)
	varIDs := make([]bytecode.VariableID, 0, len(declared))
	for _, varNode := range declared {
		vn, _ := c.g.Node(varNode)
		vid := c.variableIDFor(varNode, vn.Name)
		varIDs = append(varIDs, vid)
		c.emit(bytecode.Instruction{Op: bytecode.PushVar, Variable: vid})
	}

	if init, _ := c.g.ForClauses(id); init.Valid() {
		c.compileForInit(init)
	}

	loopStart := len(c.instrs)
	c.compileCondition(id)
	skipBody := c.emit(bytecode.Instruction{Op: bytecode.Jne})

	c.compileScope(c.g.ForBody(id))

	if _, iter := c.g.ForClauses(id); iter.Valid() {
		c.compileExpr(iter)
	}
	c.emit(bytecode.Instruction{Op: bytecode.Jmp, Offset: loopStart})
	c.patch(skipBody)

	for i := len(varIDs) - 1; i >= 0; i-- {
		c.emit(bytecode.Instruction{Op: bytecode.PopVar, Variable: varIDs[i]})
	}
	c.emit(bytecode.Instruction{Op: bytecode.PopStackFrame, Scope: headerID})
}

// compileWhileLoop lowers while rule: symmetrical to
// for-loop minus the init and iteration clauses.
func (c *compiler) compileWhileLoop(id graph.NodeID, n graph.Node) {
	loopStart := len(c.instrs)
	c.compileCondition(id)
	skipBody := c.emit(bytecode.Instruction{Op: bytecode.Jne})

	c.compileScope(n.InternalScope)

	c.emit(bytecode.Instruction{Op: bytecode.Jmp, Offset: loopStart})
	c.patch(skipBody)
}
