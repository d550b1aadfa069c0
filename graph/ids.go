package graph

// NodeID, ScopeID, SlotID, PropertyID and EdgeID are stable, generational
// identifiers handed out by a Graph's factory methods. A zero-value ID is
// never returned by a factory method, so it doubles as the invalid/none
// value.
type (
	NodeID     struct{ h handle }
	ScopeID    struct{ h handle }
	SlotID     struct{ h handle }
	PropertyID struct{ h handle }
	EdgeID     struct{ h handle }
)

func (id NodeID) Valid() bool     { return id.h.valid() }
func (id ScopeID) Valid() bool    { return id.h.valid() }
func (id SlotID) Valid() bool     { return id.h.valid() }
func (id PropertyID) Valid() bool { return id.h.valid() }
func (id EdgeID) Valid() bool     { return id.h.valid() }
