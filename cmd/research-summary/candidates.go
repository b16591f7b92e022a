// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-summary/internal/facts"
	"github.com/pdiddy/research-summary/internal/selection"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List a researcher's ranked publications, grants, specialties and trials",
	Long: `Candidates loads the four fact categories for one researcher concurrently
and prints them ranked, with the selection key of each record. Pass those keys
to "generate" to choose what the summary is written from.

A category that fails to load is reported and shown empty.`,
	RunE: runCandidates,
}

func runCandidates(cmd *cobra.Command, args []string) error {
	cwid, _ := cmd.Flags().GetString("cwid")
	if cwid == "" {
		return fmt.Errorf("--cwid is required")
	}
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

	c := facts.LoadCandidates(ctx, store, cwid, logger)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd.OutOrStdout(), candidatesJSON(c))
	}
	printCandidates(cmd.OutOrStdout(), c)
	return nil
}

// candidatesJSON renders fetch errors as messages.
func candidatesJSON(c facts.Candidates) map[string]any {
	errs := make(map[string]string, len(c.Errors))
	for category, err := range c.Errors {
		errs[category] = err.Error()
	}
	return map[string]any{
		"publications": c.Publications,
		"grants":       c.Grants,
		"specialties":  c.Specialties,
		"trials":       c.Trials,
		"errors":       errs,
	}
}

func printCandidates(w io.Writer, c facts.Candidates) {
	section := func(title string, n int) {
		fmt.Fprintf(w, "\n%s (%d)\n%s\n", title, n, strings.Repeat("-", 72))
	}

	section("Publications", len(c.Publications))
	for _, p := range c.Publications {
		fmt.Fprintf(w, "%-10s  %6.0f  %d  %s\n", selection.PublicationKey(p), p.SignificanceScore, p.Year, truncate(p.Title, 60))
	}
	section("Grants", len(c.Grants))
	for _, g := range c.Grants {
		fmt.Fprintf(w, "%-18s  %s  %s\n", selection.GrantKey(g), g.BeginDate(), truncate(g.Title(), 50))
	}
	section("Clinical trials", len(c.Trials))
	for _, t := range c.Trials {
		fmt.Fprintf(w, "%-12s  %s\n", selection.TrialKey(t), truncate(t.Title, 60))
	}
	section("Clinical specialties", len(c.Specialties))
	for _, s := range c.Specialties {
		fmt.Fprintf(w, "%-40s  %4.0f\n", selection.SpecialtyKey(s), s.BestMatchScore)
	}

	for category, err := range c.Errors {
		fmt.Fprintf(w, "\nwarning: %s unavailable: %v\n", category, err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	candidatesCmd.Flags().String("cwid", "", "researcher CWID")
	candidatesCmd.Flags().Bool("json", false, "output candidates as JSON")
	rootCmd.AddCommand(candidatesCmd)
}
