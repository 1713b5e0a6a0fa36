// Package cli wires configuration, logging and the task services into the
// todolist command.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"todolist/internal/config"
	"todolist/internal/logging"
)

// errReported marks a failure the user has already been told about.
var errReported = errors.New("operation failed")

type app struct {
	configPath string
	local      bool
	apiURL     string
	logLevel   string

	cfg    *config.Config
	logger *log.Logger
}

// NewRootCommand builds the todolist command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "todolist",
		Short: "Manage a to-do list",
		Long: `todolist keeps a list of tasks moving through
PENDING, IN_PROGRESS, COMPLETED and CANCELLED.

Run "todolist serve" for the HTTP API. Every other command talks to that API,
or with --local keeps the tasks in local storage instead.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $HOME/.config/todolist/config.toml)")
	flags.BoolVar(&a.local, "local", false, "use local storage instead of the API")
	flags.StringVar(&a.apiURL, "api-url", "", "base URL of the task API")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCommand(a),
		newListCommand(a),
		newShowCommand(a),
		newAddCommand(a),
		newEditCommand(a),
		newCompleteCommand(a),
		newStatusCommand(a),
		newDeleteCommand(a),
		newBoardCommand(a),
	)
	return root
}

// Execute runs the command line and reports any error on stderr.
func Execute(version string) error {
	root := NewRootCommand()
	root.Version = version
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("local") {
		cfg.UseLocal = a.local
	}
	if flags.Changed("api-url") {
		cfg.APIURL = a.apiURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
