package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ChartDash/internal/importer"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a CSV or XLSX file forms a chartable dataset",
		Long: `Validate reads FILE ("-" for CSV on stdin) and reports whether every row has
a category and a numeric value. Format errors and validation failures are
reported separately, as the dashboard import does.`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	res, err := readRows(cmd, args[0])
	if err != nil {
		return err
	}

	records, err := importer.Records(res)
	if err != nil {
		return fmt.Errorf("%d rows read: %w", len(res.Rows), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d records (%s)\n", len(records), res.Format)
	return nil
}
