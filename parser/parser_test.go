package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nodable-lang/nodable/diagnostics"
	"github.com/nodable-lang/nodable/graph"
	"github.com/nodable-lang/nodable/lang"
)

func parse(t *testing.T, src string, opts ...Option) (*graph.Graph, *diagnostics.List, bool) {
	t.Helper()
	l := lang.Default()
	g := graph.New(l)
	diags := diagnostics.NewList()
	ok := Parse(l, t.Name(), []byte(src), g, diags, opts...)
	return g, diags, ok
}

func TestParseEmptySource(t *testing.T) {
	g, diags, ok := parse(t, "")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	if len(g.Backbone(root)) != 0 {
		t.Fatalf("expected empty backbone, got %v", g.Backbone(root))
	}
	if !g.IsComplete() {
		t.Fatal("expected complete graph for trivial parse")
	}
}

func TestParseEmptyInstruction(t *testing.T) {
	g, diags, ok := parse(t, ";")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	if len(ids) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(ids))
	}
	n, _ := g.Node(ids[0])
	if n.Kind != graph.KindEmptyInstruction {
		t.Fatalf("expected KindEmptyInstruction, got %v", n.Kind)
	}
}

func TestParseVarDeclWithInitializer(t *testing.T) {
	g, diags, ok := parse(t, "int x = 5;")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	if len(ids) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(ids))
	}
	n, _ := g.Node(ids[0])
	if n.Kind != graph.KindVariable {
		t.Fatalf("expected KindVariable, got %v", n.Kind)
	}
	if n.IdentToken.Body() != "x" {
		t.Fatalf("expected ident 'x', got %q", n.IdentToken.Body())
	}
	slot, ok := g.ArgSlot(ids[0], "value")
	if !ok {
		t.Fatal("expected a 'value' arg slot")
	}
	edge, ok := g.EdgeFrom(slot)
	if !ok {
		t.Fatal("expected the initializer connected to the value slot")
	}
	tailSlot, _ := g.Slot(edge.Tail)
	producer, _ := g.Node(tailSlot.Owner)
	if producer.Kind != graph.KindLiteral {
		t.Fatalf("expected the initializer to be a literal, got %v", producer.Kind)
	}
}

func TestParseVarDeclWithoutInitializer(t *testing.T) {
	g, diags, ok := parse(t, "bool flag;")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	n, _ := g.Node(ids[0])
	if n.Kind != graph.KindVariable || n.IdentToken.Body() != "flag" {
		t.Fatalf("unexpected node: %+v", n)
	}
}

func TestParseIdentifierRewritingRule(t *testing.T) {
	g, diags, ok := parse(t, "int x = 1; x = 2;")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	if len(ids) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(ids))
	}
	decl, _ := g.Node(ids[0])
	if decl.Kind != graph.KindVariable {
		t.Fatalf("expected first statement to be KindVariable, got %v", decl.Kind)
	}
	// "x = 2" reassigns a declared variable through the binary "="
	// operator: the left-hand "x" is parsed as an expression atom, which
	// resolveIdentifier turns into a variable_ref bound to the declaration
	// rather than a second use of the variable node itself.
	op, _ := g.Node(ids[1])
	if op.Kind != graph.KindOperator {
		t.Fatalf("expected second statement to be an operator node, got %v", op.Kind)
	}
}

func TestParseUndeclaredIdentifierFailsInStrictMode(t *testing.T) {
	_, diags, ok := parse(t, "int x = y;")
	if ok {
		t.Fatal("expected strict-mode parse to fail on undeclared identifier")
	}
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for the undeclared identifier")
	}
}

func TestParseUndeclaredIdentifierSucceedsInPermissiveMode(t *testing.T) {
	g, diags, ok := parse(t, "int x = y;", Permissive())
	if !ok {
		t.Fatalf("expected permissive-mode parse to succeed: %v", diags.Err())
	}
	if g.IsComplete() {
		t.Fatal("expected graph to be marked incomplete after a permissive fallback")
	}
}

func TestParseIfElseChain(t *testing.T) {
	g, diags, ok := parse(t, "if (true) { int a = 1; } else if (false) { int b = 2; }")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	if len(ids) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(ids))
	}
	outer, _ := g.Node(ids[0])
	if outer.Kind != graph.KindIf {
		t.Fatalf("expected KindIf, got %v", outer.Kind)
	}
	falseScope := g.FalseBranchScope(ids[0])
	falseIDs := g.Backbone(falseScope)
	if len(falseIDs) != 1 {
		t.Fatalf("expected 1 statement in false branch, got %d", len(falseIDs))
	}
	inner, _ := g.Node(falseIDs[0])
	if inner.Kind != graph.KindIf {
		t.Fatalf("expected nested else-if to be KindIf, got %v", inner.Kind)
	}
}

func TestParseForLoopWithOmittedClauses(t *testing.T) {
	g, diags, ok := parse(t, "for (;;) { }")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	n, _ := g.Node(ids[0])
	if n.Kind != graph.KindForLoop {
		t.Fatalf("expected KindForLoop, got %v", n.Kind)
	}
	init, iter := g.ForClauses(ids[0])
	if (init != graph.NodeID{}) || (iter != graph.NodeID{}) {
		t.Fatalf("expected both for-clauses omitted, got init=%v iter=%v", init, iter)
	}
}

func TestParseForLoopWithClauses(t *testing.T) {
	g, diags, ok := parse(t, "for (int i = 0; i < 3; i = i + 1) { }")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	n, _ := g.Node(ids[0])
	if n.Kind != graph.KindForLoop {
		t.Fatalf("expected KindForLoop, got %v", n.Kind)
	}
	init, iter := g.ForClauses(ids[0])
	if (init == graph.NodeID{}) || (iter == graph.NodeID{}) {
		t.Fatalf("expected both for-clauses present, got init=%v iter=%v", init, iter)
	}
}

func TestParseWhileLoop(t *testing.T) {
	g, diags, ok := parse(t, "while (true) { }")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	n, _ := g.Node(ids[0])
	if n.Kind != graph.KindWhileLoop {
		t.Fatalf("expected KindWhileLoop, got %v", n.Kind)
	}
}

func TestParseFunctionCall(t *testing.T) {
	g, diags, ok := parse(t, "print(1, 2);")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	n, _ := g.Node(ids[0])
	if n.Kind != graph.KindFunctionCall || n.Name != "print" {
		t.Fatalf("unexpected node: %+v", n)
	}
	if _, ok := g.ArgSlot(ids[0], "lvalue"); !ok {
		t.Fatal("expected a 'lvalue' arg slot for a 2-arg call")
	}
}

func TestParseOperatorCall(t *testing.T) {
	g, diags, ok := parse(t, "operator +(1, 2);")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	n, _ := g.Node(ids[0])
	if n.Kind != graph.KindOperator || n.Name != "+" {
		t.Fatalf("unexpected node: %+v", n)
	}
}

func TestParseOperatorCallRequiresAnArgument(t *testing.T) {
	_, diags, ok := parse(t, "operator +();")
	if ok {
		t.Fatal("expected a zero-arg operator call to fail")
	}
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for the zero-arg operator call")
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	g, diags, ok := parse(t, "int x = 1 + 2 * 3;")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	declSlot, _ := g.ArgSlot(ids[0], "value")
	edge, ok := g.EdgeFrom(declSlot)
	if !ok {
		t.Fatal("expected the top-level expression connected to the declaration's value slot")
	}
	tailSlot, _ := g.Slot(edge.Tail)
	topNode, _ := g.Node(tailSlot.Owner)
	if topNode.Kind != graph.KindOperator || topNode.Name != "+" {
		t.Fatalf("expected '+' at the top since '*' binds tighter, got %+v", topNode)
	}
}

func TestParseUnaryOperator(t *testing.T) {
	// The pre-parse check rejects "=" directly followed by "-", so the
	// unary expression is parenthesized.
	g, diags, ok := parse(t, "int x = (-5);")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	declSlot, _ := g.ArgSlot(ids[0], "value")
	edge, ok := g.EdgeFrom(declSlot)
	if !ok {
		t.Fatal("expected the unary expression connected to the declaration's value slot")
	}
	tailSlot, _ := g.Slot(edge.Tail)
	topNode, _ := g.Node(tailSlot.Owner)
	if topNode.Kind != graph.KindOperator || topNode.Name != "-" {
		t.Fatalf("expected unary '-' node, got %+v", topNode)
	}
}

func TestParseExplicitParenthesesRoundTripAsGrouping(t *testing.T) {
	g, diags, ok := parse(t, "int x = (1 + 2);")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	declSlot, _ := g.ArgSlot(ids[0], "value")
	edge, _ := g.EdgeFrom(declSlot)
	tailSlot, _ := g.Slot(edge.Tail)
	if len(g.Groupings(tailSlot.Owner)) != 1 {
		t.Fatalf("expected one recorded grouping, got %d", len(g.Groupings(tailSlot.Owner)))
	}
}

func TestParseScopedBlock(t *testing.T) {
	g, diags, ok := parse(t, "{ int x = 1; }")
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	n, _ := g.Node(ids[0])
	if n.Kind != graph.KindScope {
		t.Fatalf("expected KindScope, got %v", n.Kind)
	}
	inner, _ := g.InternalScopeOf(ids[0])
	if len(g.Backbone(inner)) != 1 {
		t.Fatalf("expected 1 statement in inner scope, got %d", len(g.Backbone(inner)))
	}
}

func TestParseUnbalancedParenthesesFailsPreCheck(t *testing.T) {
	_, diags, ok := parse(t, "int x = (1 + 2;")
	if ok {
		t.Fatal("expected unbalanced parentheses to fail")
	}
	if !strings.Contains(diags.Err().Error(), "unbalanced parentheses") {
		t.Fatalf("expected an unbalanced-parentheses diagnostic, got: %v", diags.Err())
	}
}

func TestParseUnexpectedCloseParenFailsPreCheck(t *testing.T) {
	_, diags, ok := parse(t, "int x = 1 + 2);")
	if ok {
		t.Fatal("expected an unexpected ')' to fail")
	}
	if !strings.Contains(diags.Err().Error(), "unbalanced parentheses") {
		t.Fatalf("expected an unbalanced-parentheses diagnostic, got: %v", diags.Err())
	}
}

func TestParseTrailingOperatorFailsPreCheck(t *testing.T) {
	_, diags, ok := parse(t, "int x = 1 +;")
	if ok {
		t.Fatal("expected a trailing operator to fail")
	}
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic")
	}
}

func TestParseDoubledOperatorFailsPreCheck(t *testing.T) {
	_, diags, ok := parse(t, "int x = 1 + * 2;")
	if ok {
		t.Fatal("expected two adjacent operators to fail")
	}
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic")
	}
}

func TestParseTrailingGarbageFails(t *testing.T) {
	_, diags, ok := parse(t, "int x = 1; }")
	if ok {
		t.Fatal("expected trailing unmatched '}' to fail")
	}
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic")
	}
}

func TestParseRollbackDoesNotLeakNodes(t *testing.T) {
	// "if ()" passes the pre-parse check, and tryIfBlock creates its KindIf
	// node before the missing statement after ')' fails to parse; the
	// transaction must roll back and destroy that node.
	g, diags, ok := parse(t, "if ()")
	if ok {
		t.Fatal("expected an incomplete if-statement to fail")
	}
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic")
	}
	root, _ := g.InternalScopeOf(g.Root())
	if len(g.Backbone(root)) != 0 {
		t.Fatalf("expected graph reset to leave an empty backbone, got %v", g.Backbone(root))
	}
}

func TestParseStringLiteral(t *testing.T) {
	g, diags, ok := parse(t, `string s = "hello";`)
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	root, _ := g.InternalScopeOf(g.Root())
	ids := g.Backbone(root)
	n, _ := g.Node(ids[0])
	if n.Kind != graph.KindVariable {
		t.Fatalf("expected KindVariable, got %v", n.Kind)
	}
}

func TestParseTraceWritesProductionNames(t *testing.T) {
	var buf bytes.Buffer
	_, diags, ok := parse(t, "int x = 1;", Trace(&buf))
	if !ok {
		t.Fatalf("Parse failed: %v", diags.Err())
	}
	if !strings.Contains(buf.String(), "Expression") {
		t.Fatalf("expected trace output to mention a production name, got: %q", buf.String())
	}
}
