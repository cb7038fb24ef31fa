package cli

import (
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Convert a CSV or XLSX dataset to canonical CSV",
		Long: `Export reads FILE and writes it back as "category,value" CSV with quoted
categories, the same text the dashboard download produces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd, args[0])
			if err != nil {
				return err
			}
			return writeRecords(cmd, records)
		},
	}
}
