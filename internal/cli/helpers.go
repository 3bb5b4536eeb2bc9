package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/slotview/internal/loader"
	"github.com/mesh-intelligence/slotview/internal/paths"
	"github.com/mesh-intelligence/slotview/internal/sqlite"
	"github.com/mesh-intelligence/slotview/pkg/render"
	"github.com/mesh-intelligence/slotview/pkg/types"
)

// userStoreErrors are store failures caused by the request, not the system.
var userStoreErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidItem,
	types.ErrInvalidChain,
	types.ErrEmptyAddress,
	types.ErrInvalidData,
}

// storeError classifies an error returned by the store.
func storeError(err error) error {
	for _, target := range userStoreErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return systemError(err)
}

// dataDir resolves the layout store directory:
// --data-dir > config data_dir > SLOTVIEW_DATA_DIR > platform default.
func (a *app) dataDir() (string, error) {
	dir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return "", systemError(fmt.Errorf("resolve data dir: %w", err))
	}
	return dir, nil
}

// openStore attaches a SQLite store in dataDir. The caller must Detach it.
func openStore(dataDir string) (*sqlite.Backend, error) {
	store := sqlite.NewBackend()
	err := store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir})
	if err != nil {
		return nil, systemError(fmt.Errorf("attach store: %w", err))
	}
	return store, nil
}

// withStore runs fn against an attached store and detaches afterwards.
func (a *app) withStore(fn func(store types.Store) error) (err error) {
	dataDir, err := a.dataDir()
	if err != nil {
		return err
	}
	store, err := openStore(dataDir)
	if err != nil {
		return err
	}
	defer func() {
		if derr := store.Detach(); derr != nil && err == nil {
			err = systemError(fmt.Errorf("detach store: %w", derr))
		}
	}()
	return fn(store)
}

// parseChainID parses a positive decimal chain id.
func parseChainID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid chain id %q: want a positive integer", s)
	}
	return id, nil
}

// loadLayout reads a layout file. Every loader failure is the user's to fix.
func loadLayout(path, contract string) (*loader.Result, error) {
	return loader.Load(path, loader.Options{Contract: contract})
}

// renderer builds a Renderer for cmd's output from flags and configuration.
func (a *app) renderer(cmd *cobra.Command, title string) (*render.Renderer, error) {
	mode, err := render.ParseMode(a.cfg.GetString(cfgKeyOutput))
	if err != nil {
		return nil, err
	}
	slotFormat, err := render.ParseSlotFormat(a.cfg.GetString(cfgKeySlotFormat))
	if err != nil {
		return nil, err
	}
	return render.New(cmd.OutOrStdout(), render.Options{
		Mode:       mode,
		SlotFormat: slotFormat,
		Color:      a.color(),
		Title:      title,
	}), nil
}

func (a *app) color() bool {
	return a.cfg.GetBool(cfgKeyColor) && !a.flags.noColor
}

// layoutTitle heads rendered output for a contract.
func layoutTitle(contract string) string {
	if contract == "" {
		return render.DefaultTitle
	}
	return render.DefaultTitle + ": " + contract
}
