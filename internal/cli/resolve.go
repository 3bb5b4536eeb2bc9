package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/slotview/pkg/render"
	"github.com/mesh-intelligence/slotview/pkg/resolve"
)

func newResolveCmd(a *app) *cobra.Command {
	var contract string
	cmd := &cobra.Command{
		Use:   "resolve <file> [type-id...]",
		Short: "Print the display names of type ids",
		Long: `Resolve prints the display name of each type id against the type dictionary
of a layout file. Mappings render as mapping(K ⇒ V) with both sides resolved;
other types render as their label; unknown ids print unchanged.

With no type ids, every id in the dictionary is listed.`,
		Example: `  slotview resolve out/Token.json 't_mapping(t_address,t_uint256)'
  slotview resolve out/Token.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := render.ParseMode(a.cfg.GetString(cfgKeyOutput))
			if err != nil {
				return err
			}
			res, err := loadLayout(args[0], contract)
			if err != nil {
				return err
			}
			r := resolve.NewResolver(res.Layout.Types)
			out := cmd.OutOrStdout()

			if ids := args[1:]; len(ids) > 0 {
				for _, id := range ids {
					fmt.Fprintln(out, r.Resolve(id))
				}
				return nil
			}

			ids := make([]string, 0, len(res.Layout.Types))
			for id := range res.Layout.Types {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			if mode == render.ModeJSON {
				resolved := make(map[string]string, len(ids))
				for _, id := range ids {
					resolved[id] = r.Resolve(id)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				if err := enc.Encode(resolved); err != nil {
					return systemError(err)
				}
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Type ID", "Type"})
			for _, id := range ids {
				t.AppendRow(table.Row{id, r.Resolve(id)})
			}
			emitTable(out, mode, t)
			return nil
		},
	}
	cmd.Flags().StringVar(&contract, "contract", "", "contract to pick from standard JSON output")
	return cmd
}
