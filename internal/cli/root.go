package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imgajeed76/datagrid/internal/config"
	"github.com/imgajeed76/datagrid/internal/logging"
	"github.com/imgajeed76/datagrid/internal/ui/styles"
	"github.com/imgajeed76/datagrid/internal/util"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// app is the state every command shares once the root pre-run has loaded it.
var app struct {
	cfg      *config.Config
	log      *zap.Logger
	closeLog func()
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datagrid",
		Short: "Browse tabular data in the terminal",
		Long: `datagrid shows CSV, TSV, JSON, YAML files and SQL query results as an
interactive table: sort by any column, filter, page through large results,
select rows and run actions on the selection.

When stdout is not a terminal, or with --json, --raw or --no-pager, the
rows are printed instead, after the same sort, filter and page options.

For more information, see: https://github.com/imgajeed76/datagrid`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           Version,
		PersistentPreRunE: setupApp,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.closeLog != nil {
				app.closeLog()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Version flag template to show more info
	cmd.SetVersionTemplate(fmt.Sprintf("datagrid version %s\n  commit: %s\n  built:  %s\n", Version, CommitSHA, BuildDate))

	cmd.AddCommand(
		newVersionCmd(),
		newViewCmd(),
		newSQLCmd(),
		newConfigCmd(),
		newCompletionCmd(),
	)
	return cmd
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		// Check if it's a structured GridError
		var gridErr *util.GridError
		if errors.As(err, &gridErr) {
			fmt.Fprintln(os.Stderr, gridErr.Format())
		} else {
			// Simple error - still format nicely
			fmt.Fprintln(os.Stderr, styles.ErrorMsg(err.Error()))
		}
		return err
	}
	return nil
}

// setupApp loads the config and opens the log before any command runs.
func setupApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return util.NewError("Cannot read config file").
			WithContext(config.Path()).
			WithSuggestion("datagrid config --list   # Check the current values").
			Wrap(err)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor || cfg.Display.NoColor {
		styles.SetNoColor(true)
	}
	// --verbose logs at debug level, to the state directory unless a log
	// file is configured.
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
		if cfg.Log.Filename == "" {
			cfg.Log.Filename = filepath.Join(util.StateDir(), util.LogFile)
		}
	}

	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	// Runs share one log file; the run id tells their lines apart.
	log = log.With(zap.String("run", util.NewULID()))

	app.cfg = cfg
	app.log = log
	app.closeLog = closeLog
	log.Debug("starting", zap.String("command", cmd.CommandPath()), zap.String("version", Version))
	return nil
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for datagrid.

To load completions:

Bash:
  $ source <(datagrid completion bash)

Zsh:
  $ datagrid completion zsh > "${fpath[1]}/_datagrid"

Fish:
  $ datagrid completion fish | source

PowerShell:
  PS> datagrid completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "datagrid version %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", CommitSHA)
			fmt.Fprintf(out, "  built:  %s\n", BuildDate)
		},
	}
}
