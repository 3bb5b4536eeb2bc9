package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage type encodings emitted by the compiler.
const (
	EncodingInplace      = "inplace"
	EncodingMapping      = "mapping"
	EncodingDynamicArray = "dynamic_array"
	EncodingBytes        = "bytes"
)

// MaxOffset is the largest byte offset inside a 32-byte slot.
const MaxOffset = 31

// TypeDescriptor describes one entry of a TypeDictionary.
// A descriptor with both Key and Value set denotes a mapping; every other
// descriptor carries a fully rendered Label.
type TypeDescriptor struct {
	Encoding      string        `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Label         string        `json:"label" yaml:"label"`
	NumberOfBytes ByteSize      `json:"numberOfBytes,omitempty" yaml:"numberOfBytes,omitempty"`
	Key           string        `json:"key,omitempty" yaml:"key,omitempty"`
	Value         string        `json:"value,omitempty" yaml:"value,omitempty"`
	Base          string        `json:"base,omitempty" yaml:"base,omitempty"`
	Members       []StorageItem `json:"members,omitempty" yaml:"members,omitempty"`
}

// IsMapping reports whether the descriptor references both a key and a value type.
func (d TypeDescriptor) IsMapping() bool {
	return d.Key != "" && d.Value != ""
}

// TypeDictionary maps type ids to their descriptors.
type TypeDictionary map[string]TypeDescriptor

// Lookup returns the descriptor for id. A nil dictionary has no entries.
func (d TypeDictionary) Lookup(id string) (TypeDescriptor, bool) {
	desc, ok := d[id]
	return desc, ok
}

// Clone returns a shallow copy of the dictionary. Members slices are shared.
func (d TypeDictionary) Clone() TypeDictionary {
	if d == nil {
		return nil
	}
	out := make(TypeDictionary, len(d))
	for id, desc := range d {
		out[id] = desc
	}
	return out
}

// StorageItem is one declared storage variable.
type StorageItem struct {
	ASTID    int64  `json:"astId,omitempty" yaml:"astId,omitempty"`
	Contract string `json:"contract" yaml:"contract"`
	Label    string `json:"label" yaml:"label"`
	Offset   int    `json:"offset" yaml:"offset"`
	Slot     Slot   `json:"slot" yaml:"slot"`
	Type     string `json:"type" yaml:"type"`
}

// Validate checks the fields a Store relies on.
func (s StorageItem) Validate() error {
	if s.Offset < 0 || s.Offset > MaxOffset {
		return fmt.Errorf("%w: offset %d outside 0..%d", ErrInvalidItem, s.Offset, MaxOffset)
	}
	if s.Type == "" {
		return fmt.Errorf("%w: empty type id", ErrInvalidItem)
	}
	return nil
}

// StorageLayout is the storage section of a compiled contract. Storage keeps
// declaration order. Types is nil when the source carried no dictionary.
type StorageLayout struct {
	Storage []StorageItem  `json:"storage" yaml:"storage"`
	Types   TypeDictionary `json:"types" yaml:"types"`
}

// ByteSize is a descriptor size in bytes, kept as decimal text.
// The empty ByteSize means the size is unknown.
type ByteSize string

// Known reports whether a size is present.
func (b ByteSize) Known() bool {
	return b != ""
}

// UnmarshalJSON accepts both the quoted form the compiler emits and bare numbers.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*b = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = ByteSize(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("numberOfBytes: %w", err)
	}
	*b = ByteSize(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("numberOfBytes: expected scalar, got kind %d", node.Kind)
	}
	if node.Tag == "!!null" {
		*b = ""
		return nil
	}
	*b = ByteSize(node.Value)
	return nil
}
