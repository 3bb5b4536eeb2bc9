package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

type importOptions struct {
	chain    string
	address  string
	contract string
	name     string
}

func newImportCmd(a *app) *cobra.Command {
	var opts importOptions
	cmd := &cobra.Command{
		Use:   "import <file> --chain <id> --address <address>",
		Short: "Store a layout file under a chain id and contract address",
		Long: `Import reads a storage layout from a JSON or YAML file and stores it under
the given chain id and contract address. Importing again for the same chain
and address replaces the stored layout.

The file may hold a bare layout, an artifact with a "storageLayout" field,
or compiler standard JSON output (select the contract with --contract when
it holds more than one).`,
		Example: `  slotview import out/Token.json --chain 1 --address 0x6B175474E89094C44Da98b954EedeAC495271d0F
  slotview import build/output.json --contract Vault --chain 10 --address 0xabc...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.chain, "chain", "", "chain id (required)")
	cmd.Flags().StringVar(&opts.address, "address", "", "contract address (required)")
	cmd.Flags().StringVar(&opts.contract, "contract", "", "contract to pick from standard JSON output")
	cmd.Flags().StringVar(&opts.name, "name", "", "contract name to record (default: taken from the file)")
	_ = cmd.MarkFlagRequired("chain")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, path string, opts importOptions) error {
	chainID, err := parseChainID(opts.chain)
	if err != nil {
		return err
	}
	res, err := loadLayout(path, opts.contract)
	if err != nil {
		return err
	}

	source, err := filepath.Abs(path)
	if err != nil {
		source = path
	}
	rec := &types.LayoutRecord{
		ChainID:      chainID,
		Address:      opts.address,
		ContractName: firstNonEmpty(opts.name, res.Contract),
		Source:       source,
		Layout:       res.Layout,
	}

	return a.withStore(func(store types.Store) error {
		id, err := store.Put(rec)
		if err != nil {
			return storeError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d storage items) for chain %d at %s\nid: %s\n",
			displayName(rec.ContractName), len(rec.Layout.Storage), rec.ChainID, rec.Address, id)
		return nil
	})
}

func displayName(contract string) string {
	if contract == "" {
		return "layout"
	}
	return contract
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
