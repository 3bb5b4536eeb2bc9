// Package cli implements the slotview command-line interface.
package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/slotview/internal/paths"
	"github.com/mesh-intelligence/slotview/pkg/slotview"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir  string
	dataDir    string
	output     string
	slotFormat string
	noColor    bool
	verbose    bool
}

// app is the state shared by one command tree.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
}

// NewRootCmd creates the top-level "slotview" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "slotview",
		Short: "Inspect smart contract storage layouts",
		Long: `slotview renders the storage layout a Solidity compiler emits: for every
state variable its slot, byte offset, size, label, resolved type and
declaring contract. Layouts can be rendered straight from a file or
imported into a local store keyed by chain id and contract address.`,
		Version:           slotview.Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+")")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "layout store directory (env "+paths.EnvDataDir+")")
	pf.StringVarP(&a.flags.output, "output", "o", "", "output mode: auto, table, markdown, json, csv")
	pf.StringVar(&a.flags.slotFormat, "slot-format", "", "slot format: dec, hex")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newImportCmd(a),
		newShowCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newRenderCmd(a),
		newResolveCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// setup resolves directories, loads configuration and configures logging.
// It runs before every subcommand.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemError(err)
	}
	cfg, err := loadConfig(configDir, cmd.Flags())
	if err != nil {
		return err
	}
	a.configDir = configDir
	a.cfg = cfg
	return setupLogging(cmd.ErrOrStderr(), cfg.GetString(cfgKeyLogLevel), a.flags.verbose)
}

// sysError marks an error as a system failure (exit code 2).
type sysError struct{ err error }

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func systemError(err error) error {
	if err == nil {
		return nil
	}
	return &sysError{err: err}
}

// usageErr marks an error as a command line mistake.
type usageErr struct{ err error }

func (e *usageErr) Error() string { return e.err.Error() }
func (e *usageErr) Unwrap() error { return e.err }

func usageError(err error) error {
	return &usageErr{err: err}
}

// exitCode maps an error returned by a command to a process exit code.
// Anything not marked as a system failure is the user's to fix.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *sysError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}
