package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imgajeed76/datagrid/internal/source"
	"github.com/imgajeed76/datagrid/internal/watch"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Show a CSV, TSV, JSON or YAML file as a table",
		Long: `Show a data file as an interactive table.

The format is taken from the file extension (.csv, .tsv, .json, .jsonl,
.yaml, .yml) unless --format is given. Cell types are inferred, so numbers
and dates sort the way you expect.

Examples:
  datagrid view users.csv
  datagrid view users.csv --sort age:desc --filter berlin
  datagrid view events.json --id event_id --page-size 100
  datagrid view users.csv --raw | cut -f1
  datagrid view report.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: runView,
	}

	addDisplayFlags(cmd)
	cmd.Flags().String("format", "", "Input format: csv, tsv, json or yaml (default: from extension)")
	cmd.Flags().Bool("watch", false, "Reload the table when the file changes")

	return cmd
}

func runView(cmd *cobra.Command, args []string) error {
	path := args[0]
	flags := readDisplayFlags(cmd)
	format, _ := cmd.Flags().GetString("format")
	watchFile, _ := cmd.Flags().GetBool("watch")

	opts, err := sourceOptions(flags, app.cfg, format)
	if err != nil {
		return err
	}

	loader, err := source.NewFileLoader(path, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	ds, err := withSpinner("Loading "+filepath.Base(path), func() (*source.Dataset, error) {
		return loader.Load(ctx)
	})
	if err != nil {
		return err
	}
	app.log.Debug("loaded file", zap.String("path", path), zap.Int("rows", len(ds.Records)), zap.Int("columns", len(ds.Fields)))

	display, err := displayOptions(flags, ds, app.cfg)
	if err != nil {
		return err
	}

	if watchFile {
		w, err := watch.New(path, watch.WithLogger(app.log))
		if err != nil {
			return err
		}
		defer w.Close()
		display.Watch = w
		display.Reload = loader.Load
	}

	return showResults(ds, display)
}
