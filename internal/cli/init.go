package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file and layout store",
		Long: `Write a default config.yaml to the configuration directory if none exists,
then create the layout store in the data directory.`,
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	dataDir, err := a.dataDir()
	if err != nil {
		return err
	}

	// Only an explicit --data-dir is pinned in the new config.
	pinned := ""
	if a.flags.dataDir != "" {
		pinned = dataDir
	}
	configPath := filepath.Join(a.configDir, configFileExt)
	written, err := writeConfigIfMissing(configPath, pinned)
	if err != nil {
		return systemError(fmt.Errorf("write config: %w", err))
	}

	store, err := openStore(dataDir)
	if err != nil {
		return err
	}
	if err := store.Detach(); err != nil {
		return systemError(fmt.Errorf("finalize store: %w", err))
	}

	out := cmd.OutOrStdout()
	if written {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Kept existing %s\n", configPath)
	}
	fmt.Fprintf(out, "Layout store ready in %s\n", dataDir)
	return nil
}
