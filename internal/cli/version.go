package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/slotview/pkg/slotview"
)

const modulePath = "github.com/mesh-intelligence/slotview"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the slotview version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "slotview v%s\nmodule: %s\ngo: %s\n", slotview.Version, modulePath, runtime.Version())
			return nil
		},
	}
}
