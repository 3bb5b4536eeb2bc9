package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chain> <address>",
		Short: "Remove a stored layout",
		Args:  cobra.ExactArgs(2),
		RunE:  a.runDelete,
	}
}

func (a *app) runDelete(cmd *cobra.Command, args []string) error {
	chainID, err := parseChainID(args[0])
	if err != nil {
		return err
	}
	return a.withStore(func(store types.Store) error {
		rec, err := store.Get(chainID, args[1])
		if err != nil {
			return storeError(err)
		}
		if err := store.Delete(rec.LayoutID); err != nil {
			return storeError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s for chain %d at %s\n", displayName(rec.ContractName), rec.ChainID, rec.Address)
		return nil
	})
}
