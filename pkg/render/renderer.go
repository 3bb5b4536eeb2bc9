package render

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

// Mode selects the output format.
type Mode string

// Output modes. ModeAuto picks ModeTable on a terminal and ModeMarkdown otherwise.
const (
	ModeAuto     Mode = "auto"
	ModeTable    Mode = "table"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeCSV      Mode = "csv"
)

// SlotFormat selects how slots are printed.
type SlotFormat string

// Slot formats.
const (
	SlotDecimal SlotFormat = "dec"
	SlotHex     SlotFormat = "hex"
)

// DefaultTitle heads table and markdown output.
const DefaultTitle = "Storage Layout"

// Option parsing errors.
var (
	ErrUnknownMode       = errors.New("unknown output mode")
	ErrUnknownSlotFormat = errors.New("unknown slot format")
)

// columns are the headers of every tabular mode.
var columns = []string{"Slot", "Offset", "Bytes", "Label", "Type", "Contract"}

// oddRowColors shades rows of odd slots in colored table output.
var oddRowColors = text.Colors{text.BgHiBlack}

// ParseMode parses an output mode name. "md" is accepted for markdown.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeTable, ModeMarkdown, ModeJSON, ModeCSV:
		return m, nil
	case "md":
		return ModeMarkdown, nil
	default:
		return "", fmt.Errorf("%w %q (valid: auto, table, markdown, json, csv)", ErrUnknownMode, s)
	}
}

// ParseSlotFormat parses a slot format name.
func ParseSlotFormat(s string) (SlotFormat, error) {
	switch f := SlotFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", SlotDecimal:
		return SlotDecimal, nil
	case SlotHex:
		return SlotHex, nil
	default:
		return "", fmt.Errorf("%w %q (valid: dec, hex)", ErrUnknownSlotFormat, s)
	}
}

// Options configures a Renderer.
type Options struct {
	Mode       Mode
	SlotFormat SlotFormat
	Color      bool   // Style the heading and band odd rows in table mode.
	Title      string // Defaults to DefaultTitle.
}

// Renderer writes storage layouts to w.
type Renderer struct {
	w    io.Writer
	opts Options
}

// New returns a Renderer writing to w.
func New(w io.Writer, opts Options) *Renderer {
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}
	if opts.SlotFormat == "" {
		opts.SlotFormat = SlotDecimal
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	return &Renderer{w: w, opts: opts}
}

// EffectiveMode resolves ModeAuto against the writer.
func (r *Renderer) EffectiveMode() Mode {
	if r.opts.Mode != ModeAuto {
		return r.opts.Mode
	}
	if IsTerminal(r.w) {
		return ModeTable
	}
	return ModeMarkdown
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Render writes layout in the effective mode. A layout without a type
// dictionary writes nothing.
func (r *Renderer) Render(layout types.StorageLayout) error {
	if layout.Types == nil {
		return nil
	}
	return r.RenderRows(BuildRows(layout, nil))
}

// RenderRows writes prebuilt rows in the effective mode.
func (r *Renderer) RenderRows(rows []Row) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.renderJSON(rows)
	case ModeCSV:
		return r.renderCSV(rows)
	case ModeMarkdown:
		return r.renderMarkdown(rows)
	default:
		return r.renderTable(rows)
	}
}

func (r *Renderer) slotText(s types.Slot) string {
	if r.opts.SlotFormat == SlotHex {
		return s.Hex()
	}
	return s.String()
}

func (r *Renderer) cells(row Row) []string {
	return []string{
		r.slotText(row.Slot),
		strconv.Itoa(row.Offset),
		row.Bytes,
		row.Label,
		row.Type,
		row.Contract,
	}
}

func (r *Renderer) heading() string {
	if !r.opts.Color {
		return r.opts.Title
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Render(r.opts.Title)
}

func (r *Renderer) renderTable(rows []Row) error {
	if _, err := fmt.Fprintln(r.w, r.heading()); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	t.AppendHeader(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignCenter},
		{Number: 2, Align: text.AlignCenter},
		{Number: 3, Align: text.AlignCenter},
	})

	for _, row := range rows {
		cells := r.cells(row)
		tr := make(table.Row, len(cells))
		for i, c := range cells {
			tr[i] = c
		}
		t.AppendRow(tr)
	}

	if r.opts.Color {
		t.SetRowPainter(table.RowPainter(func(row table.Row) text.Colors {
			slot, _ := row[0].(string)
			if BandFor(types.ParseSlot(slot)) == BandOdd {
				return oddRowColors
			}
			return nil
		}))
	}

	t.Render()
	return nil
}

func (r *Renderer) renderMarkdown(rows []Row) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", r.opts.Title)
	fmt.Fprintf(&b, "| %s |\n", strings.Join(columns, " | "))
	seps := make([]string, len(columns))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(&b, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range rows {
		cells := r.cells(row)
		for i, c := range cells {
			cells[i] = escapeMarkdown(c)
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// jsonRow is the JSON shape of a Row.
type jsonRow struct {
	Slot     string `json:"slot"`
	SlotHex  string `json:"slot_hex"`
	Offset   int    `json:"offset"`
	Bytes    string `json:"bytes"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Contract string `json:"contract"`
	Band     string `json:"band"`
}

func (r *Renderer) renderJSON(rows []Row) error {
	out := make([]jsonRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, jsonRow{
			Slot:     row.Slot.String(),
			SlotHex:  row.Slot.Hex(),
			Offset:   row.Offset,
			Bytes:    row.Bytes,
			Label:    row.Label,
			Type:     row.Type,
			Contract: row.Contract,
			Band:     row.Band.String(),
		})
	}
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func (r *Renderer) renderCSV(rows []Row) error {
	cw := csv.NewWriter(r.w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(r.cells(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
