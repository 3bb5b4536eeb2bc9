package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeAuto},
		{in: "auto", want: ModeAuto},
		{in: "TABLE", want: ModeTable},
		{in: "md", want: ModeMarkdown},
		{in: "markdown", want: ModeMarkdown},
		{in: "json", want: ModeJSON},
		{in: "csv", want: ModeCSV},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownMode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSlotFormat(t *testing.T) {
	f, err := ParseSlotFormat("")
	require.NoError(t, err)
	assert.Equal(t, SlotDecimal, f)

	f, err = ParseSlotFormat("HEX")
	require.NoError(t, err)
	assert.Equal(t, SlotHex, f)

	_, err = ParseSlotFormat("oct")
	assert.ErrorIs(t, err, ErrUnknownSlotFormat)
}

func TestEffectiveMode_AutoOnBufferIsMarkdown(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, ModeMarkdown, New(&buf, Options{}).EffectiveMode())
	assert.Equal(t, ModeJSON, New(&buf, Options{Mode: ModeJSON}).EffectiveMode())
	assert.False(t, IsTerminal(&buf))
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{Mode: ModeMarkdown}).Render(tokenLayout()))

	want := strings.Join([]string{
		"## Storage Layout",
		"",
		"| Slot | Offset | Bytes | Label | Type | Contract |",
		"| --- | --- | --- | --- | --- | --- |",
		"| 0 | 0 | 32 | _balances | mapping(address ⇒ uint256) | Token |",
		"| 1 | 0 | N/A | _allowances | mapping(address ⇒ mapping(address ⇒ uint256)) | Token |",
		"| 2 | 0 | 20 | _owner | address | Token |",
		"| 2 | 20 | 1 | _paused | bool | Token |",
		"| 3 | 0 | N/A | _legacy | t_unknown | Token |",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestRenderMarkdown_EscapesPipes(t *testing.T) {
	layout := types.StorageLayout{
		Storage: []types.StorageItem{{Label: "a|b", Type: "t_x"}},
		Types:   types.TypeDictionary{},
	}
	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{Mode: ModeMarkdown, Title: "Vault"}).Render(layout))
	assert.Contains(t, buf.String(), "## Vault")
	assert.Contains(t, buf.String(), `| a\|b |`)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{Mode: ModeTable}).Render(tokenLayout()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Storage Layout\n"))
	for _, col := range []string{"SLOT", "OFFSET", "BYTES", "LABEL", "TYPE", "CONTRACT"} {
		assert.Contains(t, out, col)
	}
	assert.Contains(t, out, "mapping(address ⇒ mapping(address ⇒ uint256))")
	assert.Contains(t, out, "N/A")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")

	// Rows keep declaration order.
	assert.Less(t, strings.Index(out, "_balances"), strings.Index(out, "_allowances"))
	assert.Less(t, strings.Index(out, "_owner"), strings.Index(out, "_paused"))
}

func TestRenderTable_ColorBandsOddSlots(t *testing.T) {
	text.EnableColors()

	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{Mode: ModeTable, Color: true}).Render(tokenLayout()))

	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.Contains(line, "_allowances"), strings.Contains(line, "_legacy"):
			assert.Contains(t, line, "\x1b[", "odd slot row should be painted: %q", line)
		case strings.Contains(line, "_balances"), strings.Contains(line, "_owner"):
			assert.NotContains(t, line, "\x1b[", "even slot row should be plain: %q", line)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{Mode: ModeJSON}).Render(tokenLayout()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 5)

	assert.Equal(t, "1", got[1]["slot"])
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000001", got[1]["slot_hex"])
	assert.Equal(t, "mapping(address ⇒ mapping(address ⇒ uint256))", got[1]["type"])
	assert.Equal(t, "N/A", got[1]["bytes"])
	assert.Equal(t, "odd", got[1]["band"])
	assert.Equal(t, float64(20), got[3]["offset"])
}

func TestRenderCSV_HexSlots(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{Mode: ModeCSV, SlotFormat: SlotHex}).Render(tokenLayout()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Slot,Offset,Bytes,Label,Type,Contract", lines[0])
	assert.Equal(t,
		"0x0000000000000000000000000000000000000000000000000000000000000002,20,1,_paused,bool,Token",
		lines[4])
}

func TestRender_NilTypesWritesNothing(t *testing.T) {
	layout := tokenLayout()
	layout.Types = nil

	for _, mode := range []Mode{ModeTable, ModeMarkdown, ModeJSON, ModeCSV} {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, Options{Mode: mode}).Render(layout))
		assert.Empty(t, buf.String(), mode)
	}
}
