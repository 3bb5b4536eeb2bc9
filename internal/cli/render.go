package cli

import (
	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var contract string
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a layout file without storing it",
		Long: `Render reads a storage layout from a JSON or YAML file and prints one row
per state variable: slot, offset, bytes (N/A when unknown), label, resolved
type and contract. Rows of odd slots are shaded in colored table output.`,
		Example: `  slotview render out/Token.json
  solc --standard-json < input.json > output.json && slotview render output.json --contract Vault -o csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadLayout(args[0], contract)
			if err != nil {
				return err
			}
			r, err := a.renderer(cmd, layoutTitle(res.Contract))
			if err != nil {
				return err
			}
			if err := r.Render(res.Layout); err != nil {
				return systemError(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&contract, "contract", "", "contract to pick from standard JSON output")
	return cmd
}
