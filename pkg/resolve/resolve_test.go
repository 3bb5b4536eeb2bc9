package resolve

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

// scalars is a dictionary of plain descriptors shared by several tests.
var scalars = types.TypeDictionary{
	"t_address": {Label: "address", NumberOfBytes: "20"},
	"t_uint256": {Label: "uint256", NumberOfBytes: "32"},
	"t_bool":    {Label: "bool", NumberOfBytes: "1"},
	"t_array(t_uint256)dyn_storage": {
		Encoding: types.EncodingDynamicArray, Label: "uint256[]", Base: "t_uint256", NumberOfBytes: "32",
	},
	"t_struct(Position)12_storage": {
		Encoding: types.EncodingInplace, Label: "struct Pool.Position", NumberOfBytes: "64",
	},
	"t_enum(Status)4": {Label: "enum Pool.Status", NumberOfBytes: "1"},
	"t_empty":         {Label: ""},
}

func with(base types.TypeDictionary, extra types.TypeDictionary) types.TypeDictionary {
	out := base.Clone()
	for id, desc := range extra {
		out[id] = desc
	}
	return out
}

func TestResolveTypeName_ScalarReturnsLabel(t *testing.T) {
	for id, desc := range scalars {
		t.Run(id, func(t *testing.T) {
			assert.Equal(t, desc.Label, ResolveTypeName(id, scalars))
		})
	}
}

func TestResolveTypeName_MissingReturnsID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		dict types.TypeDictionary
	}{
		{name: "empty dictionary", id: "t_unknown_123", dict: types.TypeDictionary{}},
		{name: "nil dictionary", id: "t_unknown_123", dict: nil},
		{name: "absent from populated dictionary", id: "t_bytes32", dict: scalars},
		{name: "empty id", id: "", dict: scalars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ResolveTypeName(tt.id, tt.dict))
		})
	}
}

func TestResolveTypeName_Mappings(t *testing.T) {
	tests := []struct {
		name string
		dict types.TypeDictionary
		id   string
		want string
	}{
		{
			name: "address to uint",
			dict: types.TypeDictionary{
				"t_mapping_addr_uint": {Key: "t_address", Value: "t_uint256"},
				"t_address":           {Label: "address"},
				"t_uint256":           {Label: "uint256"},
			},
			id:   "t_mapping_addr_uint",
			want: "mapping(address ⇒ uint256)",
		},
		{
			name: "nested value mapping",
			dict: with(scalars, types.TypeDictionary{
				"t_mapping(t_address,t_mapping(t_uint256,t_bool))": {
					Label: "mapping(address => mapping(uint256 => bool))",
					Key:   "t_address",
					Value: "t_mapping(t_uint256,t_bool)",
				},
				"t_mapping(t_uint256,t_bool)": {Key: "t_uint256", Value: "t_bool"},
			}),
			id:   "t_mapping(t_address,t_mapping(t_uint256,t_bool))",
			want: "mapping(address ⇒ mapping(uint256 ⇒ bool))",
		},
		{
			name: "compiler label is ignored for mappings",
			dict: with(scalars, types.TypeDictionary{
				"m": {Label: "mapping(address => uint256)", Key: "t_address", Value: "t_uint256"},
			}),
			id:   "m",
			want: "mapping(address ⇒ uint256)",
		},
		{
			name: "value is array and struct labels",
			dict: with(scalars, types.TypeDictionary{
				"m_arr": {Key: "t_address", Value: "t_array(t_uint256)dyn_storage"},
				"m_pos": {Key: "t_uint256", Value: "t_struct(Position)12_storage"},
				"m":     {Key: "t_enum(Status)4", Value: "m_arr"},
			}),
			id:   "m",
			want: "mapping(enum Pool.Status ⇒ mapping(address ⇒ uint256[]))",
		},
		{
			name: "missing key and value ids show raw",
			dict: types.TypeDictionary{"m": {Key: "t_missing_key", Value: "t_missing_value"}},
			id:   "m",
			want: "mapping(t_missing_key ⇒ t_missing_value)",
		},
		{
			name: "key only is not a mapping",
			dict: types.TypeDictionary{"m": {Label: "half", Key: "t_address"}},
			id:   "m",
			want: "half",
		},
		{
			name: "same mapping as key and value is not a cycle",
			dict: with(scalars, types.TypeDictionary{
				"inner": {Key: "t_address", Value: "t_bool"},
				"outer": {Key: "inner", Value: "inner"},
			}),
			id:   "outer",
			want: "mapping(mapping(address ⇒ bool) ⇒ mapping(address ⇒ bool))",
		},
		{
			name: "empty label stays empty inside mapping",
			dict: with(scalars, types.TypeDictionary{"m": {Key: "t_address", Value: "t_empty"}}),
			id:   "m",
			want: "mapping(address ⇒ )",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTypeName(tt.id, tt.dict))
		})
	}
}

func TestResolveTypeName_DeepNesting(t *testing.T) {
	dict := with(scalars, nil)
	const levels = 20
	for i := 0; i < levels; i++ {
		value := fmt.Sprintf("m%d", i+1)
		if i == levels-1 {
			value = "t_bool"
		}
		dict[fmt.Sprintf("m%d", i)] = types.TypeDescriptor{Key: "t_uint256", Value: value}
	}

	got := ResolveTypeName("m0", dict)
	want := strings.Repeat("mapping(uint256 ⇒ ", levels) + "bool" + strings.Repeat(")", levels)
	assert.Equal(t, want, got)
}

func TestResolveTypeName_DepthBound(t *testing.T) {
	dict := types.TypeDictionary{}
	for i := 0; i < MaxDepth+50; i++ {
		dict[fmt.Sprintf("m%d", i)] = types.TypeDescriptor{Key: "k", Value: fmt.Sprintf("m%d", i+1)}
	}

	got := ResolveTypeName("m0", dict)
	assert.Equal(t, MaxDepth, strings.Count(got, "mapping("))
	assert.Contains(t, got, fmt.Sprintf("⇒ m%d)", MaxDepth))
}

func TestResolveTypeName_CycleTerminates(t *testing.T) {
	tests := []struct {
		name string
		dict types.TypeDictionary
		id   string
		want string
	}{
		{
			name: "two node cycle",
			dict: types.TypeDictionary{
				"A": {Key: "uint256", Value: "B"},
				"B": {Key: "uint256", Value: "A"},
			},
			id:   "A",
			want: "mapping(uint256 ⇒ mapping(uint256 ⇒ A))",
		},
		{
			name: "self reference",
			dict: types.TypeDictionary{"S": {Key: "S", Value: "S"}},
			id:   "S",
			want: "mapping(S ⇒ S)",
		},
		{
			name: "cycle entered below the root",
			dict: with(scalars, types.TypeDictionary{
				"root": {Key: "t_address", Value: "X"},
				"X":    {Key: "t_bool", Value: "Y"},
				"Y":    {Key: "t_bool", Value: "X"},
			}),
			id:   "root",
			want: "mapping(address ⇒ mapping(bool ⇒ mapping(bool ⇒ X)))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan string, 1)
			go func() { done <- ResolveTypeName(tt.id, tt.dict) }()

			select {
			case got := <-done:
				assert.Equal(t, tt.want, got)
			case <-time.After(5 * time.Second):
				t.Fatal("resolution did not terminate")
			}
		})
	}
}

func TestResolveTypeName_Idempotent(t *testing.T) {
	dict := with(scalars, types.TypeDictionary{
		"A": {Key: "t_address", Value: "B"},
		"B": {Key: "t_uint256", Value: "A"},
	})
	for _, id := range []string{"A", "B", "t_bool", "nope"} {
		assert.Equal(t, ResolveTypeName(id, dict), ResolveTypeName(id, dict), id)
	}
}

func TestResolver_MatchesResolveTypeName(t *testing.T) {
	dict := with(scalars, types.TypeDictionary{
		"m": {Key: "t_address", Value: "n"},
		"n": {Key: "t_uint256", Value: "t_bool"},
		"A": {Key: "t_uint256", Value: "B"},
		"B": {Key: "t_uint256", Value: "A"},
	})
	r := NewResolver(dict)

	for _, id := range []string{"m", "n", "A", "B", "t_address", "missing"} {
		want := ResolveTypeName(id, dict)
		assert.Equal(t, want, r.Resolve(id), id)
		assert.Equal(t, want, r.Resolve(id), "cached %s", id)
	}
}

func TestResolver_SnapshotsDictionary(t *testing.T) {
	dict := types.TypeDictionary{"t_bool": {Label: "bool"}}
	r := NewResolver(dict)
	require.Equal(t, "bool", r.Resolve("t_bool"))

	dict["t_bool"] = types.TypeDescriptor{Label: "boolean"}
	dict["t_new"] = types.TypeDescriptor{Label: "new"}

	assert.Equal(t, "bool", r.Resolve("t_bool"))
	assert.Equal(t, "t_new", r.Resolve("t_new"))
	assert.Equal(t, "boolean", NewResolver(dict).Resolve("t_bool"))
}

func TestResolver_Descriptor(t *testing.T) {
	r := NewResolver(scalars)
	desc, ok := r.Descriptor("t_address")
	require.True(t, ok)
	assert.Equal(t, types.ByteSize("20"), desc.NumberOfBytes)

	_, ok = r.Descriptor("missing")
	assert.False(t, ok)
}
