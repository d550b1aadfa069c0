package graph

import (
	"github.com/nodable-lang/nodable/lang"
	"github.com/nodable-lang/nodable/token"
)

// PropertyFlags are the per-property boolean attributes.
type PropertyFlags int

const (
	PropertyNone PropertyFlags = 0
	// IsReference marks a property whose slot, when connected, refers to
	// another node rather than holding its own value.
	IsReference PropertyFlags = 1 << iota
	// IsPrivate marks a property not intended for external inspection
	// (e.g. compiler-synthesized temporaries).
	IsPrivate
	// IsThis marks the single property, present on exactly one per node,
	// that represents the node itself.
	IsThis
)

func (f PropertyFlags) Has(flag PropertyFlags) bool { return f&flag == flag }

// property is the internal storage for a Property handle's data.
type property struct {
	owner NodeID
	name  string
	typ   lang.PropertyType
	value Value
	tok   token.Token // literal text this property was parsed from; Null if synthesized
	flags PropertyFlags
	slot  SlotID // the slot this property is exposed through, if any
}

// PropertyBag is the ordered, name-indexed collection of Properties
// belonging to one Node, preserving insertion order.
type PropertyBag struct {
	names  []string
	order  []PropertyID
	byName map[string]PropertyID
}

func newPropertyBag() PropertyBag {
	return PropertyBag{byName: map[string]PropertyID{}}
}

// Names returns property names in insertion order.
func (b *PropertyBag) Names() []string {
	return append([]string(nil), b.names...)
}

// Order returns property ids in insertion order, matching Names().
func (b *PropertyBag) Order() []PropertyID {
	return append([]PropertyID(nil), b.order...)
}

// ByName returns the property id registered under name, if any.
func (b *PropertyBag) ByName(name string) (PropertyID, bool) {
	id, ok := b.byName[name]
	return id, ok
}

func (b *PropertyBag) add(name string, id PropertyID) {
	b.names = append(b.names, name)
	b.order = append(b.order, id)
	b.byName[name] = id
}
