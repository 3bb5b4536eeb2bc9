package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"
)

// Slot is a storage slot index. Slots are 256-bit words, so they routinely
// exceed the uint64 range (slots of hashed layouts such as ERC-7201
// namespaces). Text that does not parse into 256 bits is kept verbatim.
type Slot struct {
	raw string
	val *uint256.Int
}

// ParseSlot parses decimal or 0x-prefixed hex text. It never fails: text
// that cannot be parsed is retained as is and reported by Valid.
func ParseSlot(s string) Slot {
	s = strings.TrimSpace(s)
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex("0x" + trimZeros(s[2:]))
	} else {
		v, err = uint256.FromDecimal(trimZeros(s))
	}
	if err != nil {
		return Slot{raw: s}
	}
	return Slot{raw: s, val: v}
}

// trimZeros strips leading zeros, which uint256 rejects in hex input.
// Empty input stays empty so it still fails to parse.
func trimZeros(digits string) string {
	if digits == "" {
		return ""
	}
	if t := strings.TrimLeft(digits, "0"); t != "" {
		return t
	}
	return "0"
}

// SlotFromUint64 returns the slot with index n.
func SlotFromUint64(n uint64) Slot {
	return Slot{val: uint256.NewInt(n)}
}

// Valid reports whether the slot parsed into a 256-bit value.
func (s Slot) Valid() bool {
	return s.val != nil
}

// String returns the canonical decimal form, or the original text when the
// slot did not parse. The zero Slot is slot 0.
func (s Slot) String() string {
	if s.val != nil {
		return s.val.Dec()
	}
	if s.raw == "" {
		return "0"
	}
	return s.raw
}

// Hex returns the slot as a 32-byte storage key. Unparsed slots return their
// original text.
func (s Slot) Hex() string {
	if s.val != nil {
		return common.Hash(s.val.Bytes32()).Hex()
	}
	if s.raw == "" {
		return common.Hash{}.Hex()
	}
	return s.raw
}

// Uint256 returns a copy of the slot value, or nil if the slot did not parse.
func (s Slot) Uint256() *uint256.Int {
	if s.val == nil {
		if s.raw == "" {
			return new(uint256.Int)
		}
		return nil
	}
	return new(uint256.Int).Set(s.val)
}

// IsEven reports slot parity. Unparsed text falls back to its last decimal
// digit and is even when there is none.
func (s Slot) IsEven() bool {
	if s.val != nil {
		return s.val[0]&1 == 0
	}
	if s.raw == "" {
		return true
	}
	last := s.raw[len(s.raw)-1]
	if last < '0' || last > '9' {
		return true
	}
	return (last-'0')%2 == 0
}

// Equal reports whether two slots have the same value, or the same text
// when either did not parse.
func (s Slot) Equal(other Slot) bool {
	if s.val != nil && other.val != nil {
		return s.val.Eq(other.val)
	}
	return s.String() == other.String()
}

// MarshalJSON encodes the slot as a quoted decimal string, the form the
// compiler emits.
func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts quoted strings and bare numbers.
func (s *Slot) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = Slot{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("slot: %w", err)
		}
		*s = ParseSlot(text)
		return nil
	}
	*s = ParseSlot(raw)
	return nil
}

// MarshalYAML encodes the slot as a decimal string.
func (s Slot) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML accepts any scalar.
func (s *Slot) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("slot: expected scalar, got kind %d", node.Kind)
	}
	*s = ParseSlot(node.Value)
	return nil
}
