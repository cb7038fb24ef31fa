package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ChartDash/internal/core"
)

func newTransformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform FILE",
		Short: "Apply dashboard transforms to a dataset",
		Long: `Transform reads FILE and applies, in order: date category formatting,
aggregation, sorting and percentage normalization. Only the steps whose
flags are set run.`,
		Args: cobra.ExactArgs(1),
		RunE: runTransform,
	}

	cmd.Flags().String("sort", "", "Sort by value: asc, desc or none")
	cmd.Flags().Bool("normalize", false, "Rescale values to percentages of the total")
	cmd.Flags().String("aggregate", "", "Group by category: sum, avg, max, min or none")
	cmd.Flags().String("format-dates", "", "Rewrite date categories with a Go time layout (e.g. \"Jan 2006\")")

	return cmd
}

func runTransform(cmd *cobra.Command, args []string) error {
	sortFlag, _ := cmd.Flags().GetString("sort")
	normalize, _ := cmd.Flags().GetBool("normalize")
	aggregateFlag, _ := cmd.Flags().GetString("aggregate")
	dateLayout, _ := cmd.Flags().GetString("format-dates")

	sort, err := core.ParseSortDirection(sortFlag)
	if err != nil {
		return err
	}
	method, err := core.ParseAggregateMethod(aggregateFlag)
	if err != nil {
		return err
	}

	records, err := readRecords(cmd, args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("format-dates") {
		records = core.FormatDateCategories(records, dateLayout)
	}
	if method != core.AggregateNone {
		records = core.Aggregate(records, method)
	}
	records = core.Apply(records, core.TransformOptions{Sort: sort, Normalize: normalize})

	return writeRecords(cmd, records)
}
