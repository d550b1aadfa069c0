// Package graph implements Nodable's core data model: nodes, typed
// properties, directed typed slots, and lexically nested scopes connected
// by edges. Cross-references are generational handles
// (NodeID, ScopeID, SlotID, PropertyID, EdgeID) into arenas the Graph
// exclusively owns, so slots can hold non-owning "weak" adjacency lists
// without creating reference cycles.
package graph

import (
	"reflect"

	"github.com/mpvl/unique"

	"github.com/nodable-lang/nodable/lang"
	"github.com/nodable-lang/nodable/token"
)

// Signals is the synchronous callback registry a host can subscribe to for
// node/scope mutation notifications. Handlers run on the calling goroutine
// before the mutating call returns, and must not re-enter the graph
// mutation API.
type Signals struct {
	AddNode     []func(NodeID)
	RemoveNode  []func(NodeID)
	ChangeScope []func(NodeID)
	Reset       []func()
	IsComplete  []func(bool)
	Change      []func()
}

func (s *Signals) fireAddNode(id NodeID) {
	for _, f := range s.AddNode {
		f(id)
	}
	s.fireChange()
}

func (s *Signals) fireRemoveNode(id NodeID) {
	for _, f := range s.RemoveNode {
		f(id)
	}
	s.fireChange()
}

func (s *Signals) fireChangeScope(id NodeID) {
	for _, f := range s.ChangeScope {
		f(id)
	}
	s.fireChange()
}

func (s *Signals) fireReset() {
	for _, f := range s.Reset {
		f()
	}
	s.fireChange()
}

func (s *Signals) fireIsComplete(complete bool) {
	for _, f := range s.IsComplete {
		f(complete)
	}
}

func (s *Signals) fireChange() {
	for _, f := range s.Change {
		f()
	}
}

// Graph exclusively owns every node, property, slot and scope. It always
// has a root node, of kind scope, which is
// never deletable.
type Graph struct {
	Lang *lang.Language

	nodes      arena[node]
	scopes     arena[scope]
	slots      arena[slot]
	properties arena[property]
	edges      arena[edge]
	edgesByKey map[edgeKey][]EdgeID

	root NodeID

	// buf extends the lifetime of the source buffer the last successful
	// parse produced tokens from.
	buf *token.Buffer

	components map[reflect.Type]interface{}

	Signals Signals

	complete bool
}

// New creates a Graph with a fresh root scope node.
func New(l *lang.Language) *Graph {
	g := &Graph{Lang: l, edgesByKey: map[edgeKey][]EdgeID{}, components: map[reflect.Type]interface{}{}, complete: true}
	g.root = g.newRoot()
	return g
}

func (g *Graph) newRoot() NodeID {
	scID := ScopeID{h: g.scopes.alloc(newScope(NodeID{}, ScopeID{}, 0))}
	n := node{kind: KindScope, name: "root", properties: newPropertyBag(), internalScope: scID}
	h := g.nodes.alloc(n)
	id := NodeID{h: h}
	sc, _ := g.scopes.get(scID.h)
	sc.owner = id
	return id
}

// Root returns the graph's designated root node.
func (g *Graph) Root() NodeID { return g.root }

// SetBuffer records the source buffer backing a successful parse, keeping
// it alive for as long as this graph's tokens reference it.
func (g *Graph) SetBuffer(b *token.Buffer) { g.buf = b }

// Buffer returns the buffer set by SetBuffer, if any.
func (g *Graph) Buffer() *token.Buffer { return g.buf }

// --- node lookups -----------------------------------------------------

// Node returns the read-only view of id, and whether id still refers to a
// live node.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes.get(id.h)
	if !ok {
		return Node{}, false
	}
	return viewOfNode(id, n), true
}

func (g *Graph) mustNode(id NodeID) *node {
	n, ok := g.nodes.get(id.h)
	if !ok {
		panic("graph: stale or invalid NodeID")
	}
	return n
}

// scopeData returns the internal data for a ScopeID.
func (g *Graph) scopeData(id ScopeID) *scope {
	s, ok := g.scopes.get(id.h)
	if !ok {
		panic("graph: stale or invalid ScopeID")
	}
	return s
}

// ScopeOf returns the enclosing scope of a node.
func (g *Graph) ScopeOf(id NodeID) ScopeID { return g.mustNode(id).scope }

// InternalScopeOf returns the scope a node owns internally (if any).
func (g *Graph) InternalScopeOf(id NodeID) (ScopeID, bool) {
	s := g.mustNode(id).internalScope
	return s, s.Valid()
}

// ScopeDepth returns a scope's nesting depth (0 at the root).
func (g *Graph) ScopeDepth(id ScopeID) int { return g.scopeData(id).depth }

// ScopeParent returns a scope's parent, if any.
func (g *Graph) ScopeParent(id ScopeID) (ScopeID, bool) {
	p := g.scopeData(id).parent
	return p, p.Valid()
}

// Backbone returns the ordered child nodes of a scope.
func (g *Graph) Backbone(id ScopeID) []NodeID {
	return append([]NodeID(nil), g.scopeData(id).backbone...)
}

// Partitions returns the sub-scopes a scope owns (if/for/while clauses).
func (g *Graph) Partitions(id ScopeID) []ScopeID {
	return append([]ScopeID(nil), g.scopeData(id).partitions...)
}

// --- properties ---------------------------------------------------------

// Property is the read-only view of a property cell.
type Property struct {
	ID    PropertyID
	Owner NodeID
	Name  string
	Type  lang.PropertyType
	Value Value
	Token token.Token
	Flags PropertyFlags
	Slot  SlotID
}

func (g *Graph) Property(id PropertyID) (Property, bool) {
	p, ok := g.properties.get(id.h)
	if !ok {
		return Property{}, false
	}
	return Property{ID: id, Owner: p.owner, Name: p.name, Type: p.typ, Value: p.value, Token: p.tok, Flags: p.flags, Slot: p.slot}, true
}

// PropertyByName looks up a node's property by name.
func (g *Graph) PropertyByName(nodeID NodeID, name string) (PropertyID, bool) {
	return g.mustNode(nodeID).properties.ByName(name)
}

// Properties returns every property id of a node, in declaration order.
func (g *Graph) Properties(nodeID NodeID) []PropertyID {
	return g.mustNode(nodeID).properties.Order()
}

// SetValue assigns a property's literal value (e.g. during parsing of a
// literal, or during constant folding at connect_or_merge time).
func (g *Graph) SetValue(id PropertyID, v Value, tok token.Token) {
	p, ok := g.properties.get(id.h)
	if !ok {
		panic("graph: stale or invalid PropertyID")
	}
	p.value = v
	p.tok = tok
}

// --- slots ---------------------------------------------------------------

// Slot is the read-only view of a slot.
type Slot struct {
	ID       SlotID
	Owner    NodeID
	Property PropertyID
	Flags    SlotFlags
	Capacity int
	Adjacent []SlotID
}

func (g *Graph) Slot(id SlotID) (Slot, bool) {
	s, ok := g.slots.get(id.h)
	if !ok {
		return Slot{}, false
	}
	return Slot{ID: id, Owner: s.owner, Property: s.property, Flags: s.flags, Capacity: s.capacity, Adjacent: append([]SlotID(nil), s.adjacent...)}, true
}

func (g *Graph) mustSlot(id SlotID) *slot {
	s, ok := g.slots.get(id.h)
	if !ok {
		panic("graph: stale or invalid SlotID")
	}
	return s
}

func (g *Graph) newSlot(owner NodeID, prop PropertyID, flags SlotFlags, capacity int) SlotID {
	h := g.slots.alloc(slot{owner: owner, property: prop, flags: flags, capacity: capacity})
	return SlotID{h: h}
}

// --- edges -----------------------------------------------------------

// ConnectFlags controls Connect's behavior.
type ConnectFlags struct {
	// AllowSideEffects is accepted but not read: Connect never substitutes
	// another slot of either node. It only swaps the two slots it is given
	// when the head is the Output-direction one, and fails when both face
	// the same way.
	AllowSideEffects bool
}

// Connect links tail (an Output slot) to head (an Input slot) of matching
// Role, enforcing the slot invariants of: opposite direction,
// matching role, capacity, and no reflexive edge.
func (g *Graph) Connect(tail, head SlotID, flags ConnectFlags) (EdgeID, bool) {
	ts, ok1 := g.slots.get(tail.h)
	hs, ok2 := g.slots.get(head.h)
	if !ok1 || !ok2 {
		return EdgeID{}, false
	}
	if tail == head {
		return EdgeID{}, false // reflexive edge forbidden
	}
	if ts.flags.Role != hs.flags.Role {
		return EdgeID{}, false
	}
	if ts.flags.Direction == hs.flags.Direction {
		return EdgeID{}, false
	}
	if ts.flags.Direction != Output {
		ts, hs = hs, ts
		tail, head = head, tail
	}
	if !ts.hasCapacity() || !hs.hasCapacity() {
		return EdgeID{}, false
	}

	e := edge{tail: tail, head: head, flags: ts.flags}
	h := g.edges.alloc(e)
	id := EdgeID{h: h}

	ts.adjacent = append(ts.adjacent, head)
	hs.adjacent = append(hs.adjacent, tail)

	key := keyFor(ts.flags)
	g.edgesByKey[key] = append(g.edgesByKey[key], id)

	g.Signals.fireChange()
	return id, true
}

// Disconnect removes an edge and updates both endpoints' adjacency lists.
func (g *Graph) Disconnect(id EdgeID) {
	e, ok := g.edges.get(id.h)
	if !ok {
		return
	}
	if ts, ok := g.slots.get(e.tail.h); ok {
		ts.adjacent = removeSlot(ts.adjacent, e.head)
	}
	if hs, ok := g.slots.get(e.head.h); ok {
		hs.adjacent = removeSlot(hs.adjacent, e.tail)
	}
	key := keyFor(e.flags)
	g.edgesByKey[key] = removeEdge(g.edgesByKey[key], id)
	g.edges.free_(id.h)
	g.Signals.fireChange()
}

// ConnectOrMerge connects tail to head unless both endpoints already carry
// literal values, in which case it folds the tail's value into the head's
// property instead of creating an edge.
func (g *Graph) ConnectOrMerge(tail, head SlotID) (EdgeID, bool) {
	ts, ok1 := g.slots.get(tail.h)
	hs, ok2 := g.slots.get(head.h)
	if ok1 && ok2 && ts.property.Valid() && hs.property.Valid() {
		tp, _ := g.properties.get(ts.property.h)
		hp, _ := g.properties.get(hs.property.h)
		// Both sides must already carry a concrete literal (not just a
		// declared type) for folding to apply; tok.IsNull() distinguishes
		// "never assigned" from "assigned the zero value".
		if !tp.tok.IsNull() && !hp.tok.IsNull() {
			hp.value = tp.value
			hp.tok = tp.tok
			g.Signals.fireChange()
			return EdgeID{}, false
		}
	}
	return g.Connect(tail, head, ConnectFlags{})
}

func removeSlot(list []SlotID, target SlotID) []SlotID {
	out := list[:0]
	for _, s := range list {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

func removeEdge(list []EdgeID, target EdgeID) []EdgeID {
	out := list[:0]
	for _, e := range list {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}

// EdgesByRole returns every live edge of the given role, using the
// multimap of edges keyed by role+direction as a fast filter.
func (g *Graph) EdgesByRole(role Role) []Edge {
	var out []Edge
	for _, id := range g.edgesByKey[edgeKey{role: role}] {
		if e, ok := g.edges.get(id.h); ok {
			out = append(out, Edge{ID: id, Tail: e.tail, Head: e.head, Flags: e.flags})
		}
	}
	return out
}

// EdgeFrom returns the single edge whose tail or head is slotID, if any;
// useful for Value-role slots with capacity 1 (most input slots).
func (g *Graph) EdgeFrom(slotID SlotID) (Edge, bool) {
	s, ok := g.slots.get(slotID.h)
	if !ok || len(s.adjacent) == 0 {
		return Edge{}, false
	}
	return g.edgeBetween(slotID, s.adjacent[0])
}

// edgeBetween returns the live edge connecting a and b, if any.
func (g *Graph) edgeBetween(a, b SlotID) (Edge, bool) {
	s, ok := g.slots.get(a.h)
	if !ok {
		return Edge{}, false
	}
	for _, id := range g.edgesByKey[keyFor(s.flags)] {
		e, ok := g.edges.get(id.h)
		if !ok {
			continue
		}
		if (e.tail == a && e.head == b) || (e.head == a && e.tail == b) {
			return Edge{ID: id, Tail: e.tail, Head: e.head, Flags: e.flags}, true
		}
	}
	return Edge{}, false
}

// --- components -----------------------------------------------------

// SetComponent attaches a host-owned auxiliary value, keyed by its dynamic
// type.
func (g *Graph) SetComponent(v interface{}) {
	g.components[reflect.TypeOf(v)] = v
}

// Component retrieves the component previously registered for type T's
// dynamic type, given a zero value of T purely to carry the type.
func (g *Graph) Component(sample interface{}) (interface{}, bool) {
	v, ok := g.components[reflect.TypeOf(sample)]
	return v, ok
}

// --- reset ------------------------------------------------------------

// Reset destroys everything except the root and re-emits the reset signal.
func (g *Graph) Reset() {
	*g = Graph{Lang: g.Lang, edgesByKey: map[edgeKey][]EdgeID{}, components: map[reflect.Type]interface{}{}, Signals: g.Signals, complete: true}
	g.root = g.newRoot()
	g.Signals.fireReset()
}

// SetComplete records whether the graph is considered fully resolvable
// (e.g. cleared by permissive-mode parsing leaving unresolved
// identifiers), and fires the is_complete signal.
func (g *Graph) SetComplete(complete bool) {
	g.complete = complete
	g.Signals.fireIsComplete(complete)
}

// IsComplete reports the value last set by SetComplete (true by default).
func (g *Graph) IsComplete() bool { return g.complete }

// dedupVarNames sorts names and drops duplicates, using
// github.com/mpvl/unique's in-place sort+dedup; DeclaredVariableNames
// applies it to the names it returns.
func dedupVarNames(names []string) []string {
	unique.Strings(&names)
	return names
}
