package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/slotview/pkg/render"
	"github.com/mesh-intelligence/slotview/pkg/types"
)

type listOptions struct {
	chain    uint64
	contract string
	limit    int
}

// layoutSummary is one line of list output.
type layoutSummary struct {
	LayoutID  string    `json:"layout_id"`
	ChainID   uint64    `json:"chain_id"`
	Address   string    `json:"address"`
	Contract  string    `json:"contract_name"`
	Items     int       `json:"items"`
	Types     int       `json:"types"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored layouts",
		Long:  "List stored layouts, oldest first, optionally filtered by chain id and contract name.",
		Example: `  slotview list
  slotview list --chain 1 --contract token --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, opts)
		},
	}
	cmd.Flags().Uint64Var(&opts.chain, "chain", 0, "only layouts on this chain id")
	cmd.Flags().StringVar(&opts.contract, "contract", "", "only contracts whose name contains this text (case-insensitive)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "maximum number of layouts (0 for all)")
	return cmd
}

func (a *app) runList(cmd *cobra.Command, opts listOptions) error {
	if opts.limit < 0 {
		return fmt.Errorf("invalid --limit %d: must not be negative", opts.limit)
	}
	mode, err := render.ParseMode(a.cfg.GetString(cfgKeyOutput))
	if err != nil {
		return err
	}

	return a.withStore(func(store types.Store) error {
		records, err := store.List(types.Filter{ChainID: opts.chain, Contract: opts.contract, Limit: opts.limit})
		if err != nil {
			return storeError(err)
		}
		summaries := make([]layoutSummary, 0, len(records))
		for _, rec := range records {
			summaries = append(summaries, layoutSummary{
				LayoutID:  rec.LayoutID,
				ChainID:   rec.ChainID,
				Address:   rec.Address,
				Contract:  rec.ContractName,
				Items:     len(rec.Layout.Storage),
				Types:     len(rec.Layout.Types),
				Source:    rec.Source,
				CreatedAt: rec.CreatedAt,
			})
		}
		if err := writeSummaries(cmd.OutOrStdout(), mode, summaries); err != nil {
			return systemError(err)
		}
		return nil
	})
}

func writeSummaries(w io.Writer, mode render.Mode, summaries []layoutSummary) error {
	if mode == render.ModeJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Chain", "Address", "Contract", "Items", "Types", "Created", "ID"})
	for _, s := range summaries {
		t.AppendRow(table.Row{
			strconv.FormatUint(s.ChainID, 10), s.Address, s.Contract, s.Items, s.Types,
			s.CreatedAt.Local().Format(time.DateTime), s.LayoutID,
		})
	}

	emitTable(w, mode, t)
	return nil
}

// emitTable renders t to w in mode. JSON is handled by callers; auto picks
// the boxed table on a terminal and markdown otherwise.
func emitTable(w io.Writer, mode render.Mode, t table.Writer) {
	switch mode {
	case render.ModeCSV:
		t.RenderCSV()
	case render.ModeMarkdown:
		t.RenderMarkdown()
	case render.ModeTable:
		t.Render()
	default:
		if render.IsTerminal(w) {
			t.Render()
		} else {
			t.RenderMarkdown()
		}
	}
}
