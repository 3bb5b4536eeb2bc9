package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <chain> <address>",
		Short: "Render a stored layout",
		Long: `Show renders the layout stored for a chain id and contract address.
A layout stored without a type dictionary renders nothing.`,
		Example: `  slotview show 1 0x6b175474e89094c44da98b954eedeac495271d0f
  slotview show 1 0x6b17... --output json --slot-format hex`,
		Args: cobra.ExactArgs(2),
		RunE: a.runShow,
	}
}

func (a *app) runShow(cmd *cobra.Command, args []string) error {
	chainID, err := parseChainID(args[0])
	if err != nil {
		return err
	}
	return a.withStore(func(store types.Store) error {
		rec, err := store.Get(chainID, args[1])
		if err != nil {
			return storeError(err)
		}
		r, err := a.renderer(cmd, layoutTitle(rec.ContractName))
		if err != nil {
			return err
		}
		if err := r.Render(rec.Layout); err != nil {
			return systemError(err)
		}
		return nil
	})
}
