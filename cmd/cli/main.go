package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"stringcalc/adapters/excel"
	"stringcalc/domain/instrument"
	"stringcalc/internal/config"
	"stringcalc/internal/container"
	"stringcalc/internal/dom"
	"stringcalc/internal/errors"
	"stringcalc/internal/table"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stringcalc",
		Short: "String calculator page tools",
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newSnapshotCmd(),
		newExportCmd(),
		newApplyCmd(),
		newImportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator page and keep it connected to the peer",
		Long: `Serve the calculator page and keep it connected to the calculator peer.

Configuration is read from the environment (and an optional .env file):
- PORT (default: 8080)
- PEER_URL (default: ws://localhost:5000/socket)
- TABLE_ID (default: string_table)
- PAGE_TEMPLATE (optional; replaces the built-in page)
- METRICS_ENABLED (default: true)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found, using system environment variables")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			gin.SetMode(cfg.Server.GinMode)

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.Run(ctx)
		},
	}
}

func newSnapshotCmd() *cobra.Command {
	var tableID string
	var withSummary bool

	cmd := &cobra.Command{
		Use:   "snapshot [page.html]",
		Short: "Print the string table of a saved page as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd.OutOrStdout(), args[0], tableID, withSummary)
		},
	}

	cmd.Flags().StringVar(&tableID, "table", instrument.StringTable, "Id of the string table")
	cmd.Flags().BoolVar(&withSummary, "summary", false, "Include force and length aggregates")
	return cmd
}

func newExportCmd() *cobra.Command {
	var tableID string

	cmd := &cobra.Command{
		Use:   "export [page.html] [out.xlsx|out.csv]",
		Short: "Write the string table of a saved page to a spreadsheet",
		Long: `Write the string table of a saved page to a spreadsheet.

The format follows the output file's extension.

Example: stringcalc export page.html strings.xlsx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], args[1], tableID)
		},
	}

	cmd.Flags().StringVar(&tableID, "table", instrument.StringTable, "Id of the string table")
	return cmd
}

func newApplyCmd() *cobra.Command {
	var tableID string
	var outPath string

	cmd := &cobra.Command{
		Use:   "apply [page.html] [update.json]",
		Short: "Reconcile a responce payload into a saved page",
		Long: `Reconcile a responce payload (an object of row key to 8 fields) into the
string table of a saved page and print the resulting HTML.

Rows that cannot be applied are reported on stderr; the others are still applied.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return runApply(out, cmd.ErrOrStderr(), args[0], args[1], tableID)
		},
	}

	cmd.Flags().StringVar(&tableID, "table", instrument.StringTable, "Id of the string table")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the page here instead of stdout")
	return cmd
}

func newImportCmd() *cobra.Command {
	var tableID string
	var outPath string

	cmd := &cobra.Command{
		Use:   "import [page.html] [strings.xlsx|strings.csv]",
		Short: "Reconcile a spreadsheet export back into a saved page",
		Long: `Reconcile the rows of a spreadsheet written by export into the string
table of a saved page and print the resulting HTML.

Each row is keyed by its Note column.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return runImport(out, cmd.ErrOrStderr(), args[0], args[1], tableID)
		},
	}

	cmd.Flags().StringVar(&tableID, "table", instrument.StringTable, "Id of the string table")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the page here instead of stdout")
	return cmd
}

func runSnapshot(w io.Writer, pagePath, tableID string, withSummary bool) error {
	doc, err := container.LoadPage(pagePath)
	if err != nil {
		return err
	}
	snapshot, err := table.Serialize(doc, tableID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if withSummary {
		return enc.Encode(map[string]interface{}{
			"rows":    snapshot,
			"summary": table.Summarize(snapshot),
		})
	}
	return enc.Encode(snapshot)
}

func runExport(pagePath, outPath, tableID string) error {
	exporter, err := excel.ExporterFor(outPath)
	if err != nil {
		return err
	}
	doc, err := container.LoadPage(pagePath)
	if err != nil {
		return err
	}
	headers, err := table.Headers(doc, tableID)
	if err != nil {
		return err
	}
	snapshot, err := table.Serialize(doc, tableID)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := exporter.Export(f, headers, snapshot); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runApply(out, errOut io.Writer, pagePath, updatePath, tableID string) error {
	doc, err := container.LoadPage(pagePath)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(updatePath)
	if err != nil {
		return fmt.Errorf("failed to read update: %w", err)
	}
	update, err := instrument.DecodeUpdate(raw)
	if err != nil {
		return err
	}

	return reconcile(out, errOut, doc, update, tableID)
}

func runImport(out, errOut io.Writer, pagePath, sheetPath, tableID string) error {
	sheet, err := excel.ReadFile(sheetPath)
	if err != nil {
		return err
	}
	doc, err := container.LoadPage(pagePath)
	if err != nil {
		return err
	}

	update := make(instrument.Update, 0, len(sheet.Snapshot))
	for _, row := range sheet.Snapshot {
		var key instrument.RowKey
		if len(row) > instrument.FieldStandardNote {
			key = instrument.RowKey(row[instrument.FieldStandardNote])
		}
		update = append(update, instrument.Entry{Key: key, Data: instrument.RowData(row)})
	}
	return reconcile(out, errOut, doc, update, tableID)
}

func reconcile(out, errOut io.Writer, doc *dom.Document, update instrument.Update, tableID string) error {
	result, err := table.NewReconciler(doc, tableID, nil).Apply(update)
	if err != nil {
		return err
	}
	for _, rowErr := range result.Errors {
		fmt.Fprintf(errOut, "skipped %s [%s]: %v\n", rowErr.Key, errors.GetCode(rowErr.Err), rowErr.Err)
	}
	fmt.Fprintf(errOut, "%d created, %d updated, %d skipped\n",
		len(result.Created), len(result.Updated), len(result.Errors))

	return doc.Render(out)
}
