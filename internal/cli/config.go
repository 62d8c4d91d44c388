package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imgajeed76/datagrid/internal/config"
	"github.com/imgajeed76/datagrid/internal/util"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "Get and set options",
		Long: `Get and set datagrid options, stored in a TOML file in your config
directory (override the location with DATAGRID_CONFIG).

Examples:
  datagrid config display.page_size          # Get value
  datagrid config display.page_size 100      # Set value
  datagrid config display.mode compact       # Set value
  datagrid config --list                     # List all config

Options:
` + config.GenerateHelpText(),
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}

	cmd.Flags().BoolP("list", "l", false, "List all configuration")
	cmd.Flags().Bool("path", false, "Print the config file location")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	listAll, _ := cmd.Flags().GetBool("list")
	showPath, _ := cmd.Flags().GetBool("path")
	out := cmd.OutOrStdout()

	if showPath {
		fmt.Fprintln(out, config.Path())
		return nil
	}

	// Read the file alone so environment overrides are never saved back.
	cfg, err := config.LoadFrom(config.Path())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if listAll {
		for _, key := range config.ListKeys() {
			value, _ := cfg.GetValue(key)
			fmt.Fprintf(out, "%s=%s\n", key, value)
		}
		return nil
	}

	if len(args) == 0 {
		return util.MissingArgumentError("key", "datagrid config display.page_size")
	}

	key := args[0]

	// Get or set?
	if len(args) == 1 {
		value, ok := cfg.GetValue(key)
		if !ok {
			return unknownConfigKeyError(key)
		}
		fmt.Fprintln(out, value)
		return nil
	}

	if err := cfg.SetValue(key, args[1]); err != nil {
		return util.NewError(fmt.Sprintf("Cannot set '%s'", key)).
			WithMessage(err.Error()).
			WithSuggestion("datagrid config --help   # Show valid keys and values").
			Wrap(err)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func unknownConfigKeyError(key string) *util.GridError {
	return util.NewError(fmt.Sprintf("Unknown config key: %s", key)).
		WithSuggestion("datagrid config --list   # Show all keys")
}
