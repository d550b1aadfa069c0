package graph

// NodeKind identifies the shape of a Node: its property bag layout, the
// slots built from it, and whether it owns an internal Scope.
type NodeKind int

const (
	KindScope NodeKind = iota
	KindDefault
	KindEmptyInstruction
	KindLiteral
	KindVariable
	KindVariableRef
	KindOperator
	KindFunctionCall
	KindIf
	KindForLoop
	KindWhileLoop
)

func (k NodeKind) String() string {
	switch k {
	case KindScope:
		return "scope"
	case KindDefault:
		return "default"
	case KindEmptyInstruction:
		return "empty_instruction"
	case KindLiteral:
		return "literal"
	case KindVariable:
		return "variable"
	case KindVariableRef:
		return "variable_ref"
	case KindOperator:
		return "operator"
	case KindFunctionCall:
		return "function_call"
	case KindIf:
		return "if"
	case KindForLoop:
		return "for_loop"
	case KindWhileLoop:
		return "while_loop"
	default:
		return "unknown"
	}
}

// HasInternalScope reports whether nodes of this kind own an internal
// Scope (scope, if, for, while, and the root node).
func (k NodeKind) HasInternalScope() bool {
	switch k {
	case KindScope, KindIf, KindForLoop, KindWhileLoop:
		return true
	}
	return false
}

// HasFlowBranches reports whether nodes of this kind carry flow-out
// branch slots distinct from their condition/init/iteration value slots
// (if: true/false; for/while: true).
func (k NodeKind) HasFlowBranches() bool {
	switch k {
	case KindIf, KindForLoop, KindWhileLoop:
		return true
	}
	return false
}
