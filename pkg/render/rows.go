// Package render turns a storage layout into display rows and writes them as
// a table, markdown, JSON, or CSV.
package render

import (
	"github.com/mesh-intelligence/slotview/pkg/resolve"
	"github.com/mesh-intelligence/slotview/pkg/types"
)

// NotApplicable is shown in the Bytes column when a size is unknown.
const NotApplicable = "N/A"

// Band is the visual banding class of a row, keyed on slot parity.
type Band int

// Row bands.
const (
	BandEven Band = iota
	BandOdd
)

func (b Band) String() string {
	if b == BandOdd {
		return "odd"
	}
	return "even"
}

// BandFor returns the band of a slot.
func BandFor(slot types.Slot) Band {
	if slot.IsEven() {
		return BandEven
	}
	return BandOdd
}

// Row is one displayed storage variable.
type Row struct {
	Slot     types.Slot
	Offset   int
	Bytes    string
	Label    string
	Type     string
	Contract string
	Band     Band
}

// BuildRows returns one row per storage item in declaration order.
// A layout without a type dictionary has nothing to show and yields nil.
// When r is nil a Resolver is built over layout.Types.
func BuildRows(layout types.StorageLayout, r *resolve.Resolver) []Row {
	if layout.Types == nil {
		return nil
	}
	if r == nil {
		r = resolve.NewResolver(layout.Types)
	}

	rows := make([]Row, 0, len(layout.Storage))
	for _, item := range layout.Storage {
		bytes := NotApplicable
		if desc, ok := r.Descriptor(item.Type); ok && desc.NumberOfBytes.Known() {
			bytes = string(desc.NumberOfBytes)
		}
		rows = append(rows, Row{
			Slot:     item.Slot,
			Offset:   item.Offset,
			Bytes:    bytes,
			Label:    item.Label,
			Type:     r.Resolve(item.Type),
			Contract: item.Contract,
			Band:     BandFor(item.Slot),
		})
	}
	return rows
}
