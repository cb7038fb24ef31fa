package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ChartDash/internal/core"
)

func newSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples [KEY]",
		Short: "List sample datasets or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSamples,
	}
}

func runSamples(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		sample, ok := core.Sample(args[0])
		if !ok {
			return fmt.Errorf("sample not found: %q", args[0])
		}
		return writeRecords(cmd, sample.Records)
	}

	samples := core.Samples()
	if format, _ := cmd.Flags().GetString("format"); format == formatJSON {
		return writeJSON(cmd.OutOrStdout(), samples)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tRECORDS")
	for _, s := range samples {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Key, s.Label, len(s.Records))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
