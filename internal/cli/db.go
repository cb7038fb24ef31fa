package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ChartDash/internal/core"
	"github.com/JonMunkholm/ChartDash/internal/store"
)

const defaultDBPath = "chartdash.db"

func getDBPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		return path
	}
	if env := os.Getenv("SQLITE_PATH"); env != "" {
		return env
	}
	return defaultDBPath
}

func openStore(ctx context.Context, cmd *cobra.Command) (*store.Store, error) {
	kv, err := store.NewSQLiteKV(getDBPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store.New(ctx, kv), nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the stored dataset with FILE",
		Long: `Import validates FILE and, only if it forms a usable dataset, replaces the
working sequence in the SQLite store. A failed import leaves the store as it was.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	cmd.Flags().Bool("append", false, "Append to the stored dataset instead of replacing it")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	records, err := readRecords(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := core.ContextWithSource(cmd.Context(), core.SourceCLI)
	st, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if appendFlag, _ := cmd.Flags().GetBool("append"); appendFlag {
		if err := st.Append(ctx, records...); err != nil {
			return err
		}
	} else {
		st.Replace(ctx, records)
	}
	if err := st.Sync(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d,"total":%d}`+"\n", len(records), st.Len())
	return nil
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add CATEGORY VALUE",
		Short: "Append one data point to the stored dataset",
		Long: `Add validates a data point the way the dashboard form does (non-blank
category, non-negative number) and appends it to the SQLite store.`,
		Example: `  chartdata add "Q1 2024" 7.2 --db chart.db`,
		Args:    cobra.ExactArgs(2),
		RunE:    runAdd,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	rec, errs := core.ValidateDataPoint(args[0], args[1])
	if len(errs) > 0 {
		return errs
	}

	ctx := core.ContextWithSource(cmd.Context(), core.SourceCLI)
	st, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Append(ctx, rec); err != nil {
		return err
	}
	if err := st.Sync(ctx); err != nil {
		return err
	}

	added, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"added":%s,"total":%d}`+"\n", added, st.Len())
	return nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored dataset",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := core.ContextWithSource(cmd.Context(), core.SourceCLI)
	st, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	return writeRecords(cmd, st.Records())
}
