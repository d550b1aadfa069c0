package graph

import "github.com/nodable-lang/nodable/token"

// node is the internal storage for a Node handle's data.
type node struct {
	kind NodeKind
	name string

	properties PropertyBag
	slots      []SlotID

	suffixToken token.Token // trailing ';' / '\n' / '}' preserved for serialization
	keywordToken token.Token // if/for/while/operator keyword token, for serialization

	scope         ScopeID // enclosing scope; zero for the root node
	internalScope ScopeID // owned internal scope, if HasInternalScope()

	// variable-only fields.
	typeToken, identToken, assignToken token.Token
	declOutput, refOutput              SlotID

	// variable_ref-only fields.
	referencedVar  NodeID
	referenceInput SlotID

	// if-only fields: the false-branch scope (internalScope holds the
	// true-branch scope for KindIf, so this exists purely to disambiguate
	// the two sibling partitions, both parented to the enclosing scope
	// unlike for/while's nested header/body) and the 'else' token, present
	// only when a false branch was actually parsed.
	secondaryScope ScopeID
	elseToken      token.Token

	// groupings records explicit parenthesization the source wrapped this
	// node's expression in, innermost first, so "((5))" round-trips its
	// redundant parens exactly instead of only the precedence-minimal set
	// the serializer would otherwise reconstruct.
	groupings []Grouping

	// openParen/closeParen bracket a call's argument list (function_call,
	// operator call-form) or an if/for/while's condition; separators holds
	// a call's ','-tokens between arguments.
	openParen, closeParen token.Token
	separators            []token.Token

	// semicolons holds a for_loop's two inner ';' tokens, separating its
	// init/condition/iteration clauses.
	semicolons [2]token.Token

	// for_loop-only: the init/iteration clause nodes, tracked explicitly
	// (rather than inferred from header backbone position) since either
	// may be omitted independently, e.g. `for(;i<3;i=i+1)`.
	forInit, forIter NodeID

	generation int // bumped on structural change, for view invalidation
}

// Grouping is one pair of explicit source parentheses wrapping a node's
// expression (`parens` production, which is a pass-through
// that does not allocate its own node).
type Grouping struct {
	Open, Close token.Token
}

// Node is the read-only, copyable view of a node's data returned by
// Graph accessors. It does not let callers mutate the graph directly;
// structural changes go through Graph's factory/connect/destroy methods.
type Node struct {
	ID   NodeID
	Kind NodeKind
	Name string

	Scope         ScopeID
	InternalScope ScopeID

	SuffixToken  token.Token
	KeywordToken token.Token

	TypeToken   token.Token
	IdentToken  token.Token
	AssignToken token.Token

	Generation int
}

func viewOfNode(id NodeID, n *node) Node {
	return Node{
		ID:            id,
		Kind:          n.kind,
		Name:          n.name,
		Scope:         n.scope,
		InternalScope: n.internalScope,
		SuffixToken:   n.suffixToken,
		KeywordToken:  n.keywordToken,
		TypeToken:     n.typeToken,
		IdentToken:    n.identToken,
		AssignToken:   n.assignToken,
		Generation:    n.generation,
	}
}
