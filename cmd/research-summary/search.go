// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find full-time faculty by surname, given name or CWID prefix",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openFacts(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := commandContext()
	defer cancel()

	researchers, err := store.SearchResearchers(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd.OutOrStdout(), researchers)
	}

	out := cmd.OutOrStdout()
	if len(researchers) == 0 {
		fmt.Fprintln(out, "No researchers found.")
		return nil
	}
	fmt.Fprintf(out, "%-10s  %s\n", "CWID", "Name")
	fmt.Fprintln(out, strings.Repeat("-", 40))
	for _, r := range researchers {
		fmt.Fprintf(out, "%-10s  %s\n", r.CWID, r.FullName())
	}
	return nil
}

func init() {
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}
