// Package cli implements the chartdata command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ChartDash/internal/core"
	"github.com/JonMunkholm/ChartDash/internal/importer"
	"github.com/JonMunkholm/ChartDash/internal/logging"
)

// Output formats accepted by --format.
const (
	formatCSV  = "csv"
	formatJSON = "json"
)

// NewRootCmd builds the chartdata command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chartdata",
		Short: "Validate, transform and store chart datasets",
		Long: `chartdata works on the category/value datasets behind the chart dashboard.
It reads CSV or XLSX files, applies the dashboard transforms and can load
the result into a SQLite store that the server opens with STORE_DRIVER=sqlite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))

			if path, _ := cmd.Flags().GetString("samples"); path != "" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open samples: %w", err)
				}
				defer f.Close()
				if _, err := core.LoadSamplesYAML(f); err != nil {
					return err
				}
			}
			return nil
		},
	}

	root.PersistentFlags().Bool("strict", false, "Require a numeric value column; category is always text")
	root.PersistentFlags().StringP("format", "f", formatCSV, "Output format: csv or json")
	root.PersistentFlags().String("db", "", "SQLite store path (default: $SQLITE_PATH or chartdash.db)")
	root.PersistentFlags().String("samples", "", "YAML file with extra sample datasets")
	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		newValidateCmd(),
		newTransformCmd(),
		newExportCmd(),
		newSamplesCmd(),
		newImportCmd(),
		newAddCmd(),
		newShowCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "error: %v\n", err)
		if core.IsUserFacing(err) {
			msg := core.MapError(err)
			fmt.Fprintf(root.ErrOrStderr(), "%s (Code: %s)\n", msg.Action, msg.Code)
		}
		return 1
	}
	return 0
}

// readRecords decodes and validates the file at path. "-" reads CSV from stdin.
func readRecords(cmd *cobra.Command, path string) ([]core.DataRecord, error) {
	res, err := readRows(cmd, path)
	if err != nil {
		return nil, err
	}
	return importer.Records(res)
}

func readRows(cmd *cobra.Command, path string) (importer.Result, error) {
	strict, _ := cmd.Flags().GetBool("strict")
	opts := importer.Options{ParseOptions: core.ParseOptions{Strict: strict}}

	if path == "-" {
		return importer.Decode(cmd.InOrStdin(), importer.FormatCSV, opts)
	}

	format, err := importer.DetectFormat(path, "")
	if err != nil {
		return importer.Result{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return importer.Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return importer.Decode(f, format, opts)
}

// writeRecords prints records in the --format output format.
func writeRecords(cmd *cobra.Command, records []core.DataRecord) error {
	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")

	switch format {
	case formatJSON:
		return writeJSON(out, records)
	case formatCSV, "":
		if len(records) == 0 {
			return nil
		}
		if err := core.WriteCSV(out, records); err != nil {
			return err
		}
		_, err := io.WriteString(out, "\n")
		return err
	default:
		return fmt.Errorf("unknown output format %q (use csv or json)", format)
	}
}
