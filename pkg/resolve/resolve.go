// Package resolve turns storage type ids into human-readable type names.
//
// Type descriptors reference each other by id inside a flat TypeDictionary.
// Mapping descriptors are expanded recursively into
// "mapping(<key> ⇒ <value>)"; every other descriptor already carries its
// rendered label. Resolution is total: ids that cannot be resolved are shown
// as themselves.
package resolve

import (
	"github.com/mesh-intelligence/slotview/pkg/types"
)

// Arrow separates key and value in a resolved mapping name.
const Arrow = "⇒"

// MaxDepth bounds mapping nesting. The node at the bound is shown by its id.
const MaxDepth = 256

// ResolveTypeName returns the display name of typeID within dict.
//
// Unknown ids resolve to themselves. A descriptor with both a key and a value
// resolves to mapping(<key> ⇒ <value>) with both sides resolved the same way.
// Any other descriptor resolves to its label. A mapping id met again while it
// is still being expanded resolves to its raw id, so cyclic dictionaries
// terminate.
func ResolveTypeName(typeID string, dict types.TypeDictionary) string {
	w := walker{dict: dict, active: make(map[string]bool)}
	return w.resolve(typeID, 0)
}

// walker holds the per-call expansion state.
type walker struct {
	dict   types.TypeDictionary
	active map[string]bool // mapping ids on the current expansion path
}

func (w *walker) resolve(typeID string, depth int) string {
	desc, ok := w.dict.Lookup(typeID)
	if !ok {
		return typeID
	}
	if !desc.IsMapping() {
		return desc.Label
	}
	if w.active[typeID] || depth >= MaxDepth {
		return typeID
	}

	w.active[typeID] = true
	key := w.resolve(desc.Key, depth+1)
	value := w.resolve(desc.Value, depth+1)
	delete(w.active, typeID)

	return "mapping(" + key + " " + Arrow + " " + value + ")"
}

// Resolver memoizes ResolveTypeName for a single dictionary.
// A Resolver is not safe for concurrent use.
type Resolver struct {
	dict  types.TypeDictionary
	cache map[string]string
}

// NewResolver returns a Resolver over a snapshot of dict. Later changes to
// dict are not observed; build a new Resolver for a new dictionary.
func NewResolver(dict types.TypeDictionary) *Resolver {
	return &Resolver{
		dict:  dict.Clone(),
		cache: make(map[string]string),
	}
}

// Resolve returns ResolveTypeName(typeID, dict) for the snapshot dictionary.
func (r *Resolver) Resolve(typeID string) string {
	if name, ok := r.cache[typeID]; ok {
		return name
	}
	name := ResolveTypeName(typeID, r.dict)
	r.cache[typeID] = name
	return name
}

// Descriptor returns the snapshot descriptor for typeID.
func (r *Resolver) Descriptor(typeID string) (types.TypeDescriptor, bool) {
	return r.dict.Lookup(typeID)
}
