// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-summary/internal/history"
	"github.com/pdiddy/research-summary/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or export past generations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generations from the history log",
	RunE:  runHistoryList,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the recent generations to a file",
	Long: `Export writes the most recent generations (history.session_limit, ten by
default) to research_summary_history_YYYY-MM-DD.<ext> in the export
directory. The csv format has the columns Date, Output and Controls with every
field quoted.`,
	RunE: runHistoryExport,
}

func openHistory() (*history.Store, types.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	store, err := history.NewStore(cfg.History.Path)
	return store, cfg, err
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, cfg, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	if all, _ := cmd.Flags().GetBool("all"); all {
		limit = 0
	} else if !cmd.Flags().Changed("limit") {
		limit = cfg.History.SessionLimit
	}

	ctx, cancel := commandContext()
	defer cancel()
	recs, err := store.List(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		return history.WriteJSON(out, recs)
	case "yaml":
		return history.WriteYAML(out, recs)
	case "table":
		printHistory(out, recs)
		return nil
	default:
		return fmt.Errorf("unknown format %q: use table, json or yaml", format)
	}
}

func printHistory(w io.Writer, recs []types.GenerationRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No generations recorded.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-16s  %-10s  %-22s  %s\n", "ID", "Created", "CWID", "Model", "Summary")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, r := range recs {
		fmt.Fprintf(w, "%-36s  %-16s  %-10s  %-22s  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.ResearcherID, truncate(r.Model, 22), truncate(strings.Join(strings.Fields(r.GeneratedText), " "), 40))
	}
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, cfg, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := commandContext()
	defer cancel()
	ledger := history.NewLedger(cfg.History.SessionLimit)
	recs, err := store.List(ctx, ledger.Limit())
	if err != nil {
		return err
	}
	ledger.Load(recs)

	dir, _ := cmd.Flags().GetString("output-dir")
	if dir == "" {
		dir = cfg.History.ExportDir
	}
	format, _ := cmd.Flags().GetString("format")

	name := history.ExportFilename(time.Now())
	var write func(io.Writer) error
	switch format {
	case "csv":
		write = func(w io.Writer) error { return history.WriteCSV(w, ledger.Entries()) }
	case "json":
		name = strings.TrimSuffix(name, ".csv") + ".json"
		write = func(w io.Writer) error { return history.WriteJSON(w, ledger.Records()) }
	case "yaml":
		name = strings.TrimSuffix(name, ".csv") + ".yaml"
		write = func(w io.Writer) error { return history.WriteYAML(w, ledger.Records()) }
	default:
		return fmt.Errorf("unknown format %q: use csv, json or yaml", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.WithField("records", ledger.Len()).Info("exported history")
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func init() {
	historyListCmd.Flags().Int("limit", history.DefaultSessionLimit, "maximum number of records (default history.session_limit)")
	historyListCmd.Flags().Bool("all", false, "list every record in the log")
	historyListCmd.Flags().String("format", "table", "output format (table, json, yaml)")

	historyExportCmd.Flags().String("output-dir", "", "export directory (default history.export_dir)")
	historyExportCmd.Flags().String("format", "csv", "export format (csv, json, yaml)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
