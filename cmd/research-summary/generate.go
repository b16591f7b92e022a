// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-summary/internal/facts"
	"github.com/pdiddy/research-summary/internal/selection"
	"github.com/pdiddy/research-summary/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a research summary from selected records",
	Long: `Generate loads a researcher's candidate records, selects the ones named by
the key flags (see "candidates" for the keys), and asks the configured model
for a research summary. At least one publication must be selected.

Stylistic controls come from the flags, or from a YAML file passed with
--request whose fields are overridden by any flag that is set.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cwid, _ := cmd.Flags().GetString("cwid")
	if cwid == "" {
		return fmt.Errorf("--cwid is required")
	}
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	modelOverride, _ := cmd.Flags().GetString("model")
	a, err := newApp(ctx, cfg, modelOverride)
	if err != nil {
		return err
	}
	defer a.Close()

	researcher, err := a.facts.Researcher(ctx, cwid)
	if errors.Is(err, facts.ErrNotFound) {
		return fmt.Errorf("no full-time faculty member with CWID %q", cwid)
	}
	if err != nil {
		return err
	}

	c := facts.LoadCandidates(ctx, a.facts, cwid, logger)
	m := selection.New()
	m.SetResearcher(researcher)
	m.SetPublications(c.Publications)
	m.SetGrants(c.Grants)
	m.SetSpecialties(c.Specialties)
	m.SetTrials(c.Trials)

	if err := applySelection(cmd, m); err != nil {
		return err
	}

	res, err := a.svc.Generate(ctx, m.Selected(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if err := writeJSON(out, res.Record); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, res.Record.GeneratedText)
		fmt.Fprintf(cmd.ErrOrStderr(), "\n[%s %s, record %s]\n", res.Record.Provider, res.Record.Model, res.Record.ID)
	}
	if res.Warning != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", res.Warning)
	}
	return nil
}

// requestFromFlags builds the generation request from --request and the
// option flags. Only flags the user set override the file.
func requestFromFlags(cmd *cobra.Command) (types.GenerationRequest, error) {
	req := types.DefaultRequest()
	flags := cmd.Flags()

	if path, _ := flags.GetString("request"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return req, fmt.Errorf("reading request file: %w", err)
		}
		if err := yaml.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("parsing request file %s: %w", path, err)
		}
	}

	if flags.Changed("length") {
		v, _ := flags.GetString("length")
		req.Length = types.LengthClass(v)
	}
	if flags.Changed("timeframe") {
		v, _ := flags.GetString("timeframe")
		req.Timeframe = types.Timeframe(v)
	}
	if flags.Changed("voice") {
		v, _ := flags.GetString("voice")
		req.Voice = types.Voice(v)
	}
	if flags.Changed("tone") {
		v, _ := flags.GetString("tone")
		req.Tone = types.Tone(v)
	}
	if flags.Changed("audience") {
		v, _ := flags.GetString("audience")
		req.Audience = types.Audience(v)
	}
	if flags.Changed("highlight") {
		req.Highlights, _ = flags.GetStringSlice("highlight")
	}
	if flags.Changed("instructions") {
		req.AdditionalInstructions, _ = flags.GetString("instructions")
	}
	if v, _ := flags.GetBool("no-abstracts"); v {
		req.IncludeAbstracts = false
	}
	if v, _ := flags.GetBool("no-trial-summaries"); v {
		req.IncludeTrialSummaries = false
	}
	return req, nil
}

// applySelection selects the keys named by the key flags. --top selects the
// highest ranked publications in addition to any listed by key.
func applySelection(cmd *cobra.Command, m *selection.Model) error {
	flags := cmd.Flags()

	if top, _ := flags.GetInt("top"); top > 0 {
		keys := m.Keys(selection.Publications)
		for _, k := range keys[:min(top, len(keys))] {
			m.Toggle(selection.Publications, k, true)
		}
	}

	for _, f := range []struct {
		flag string
		kind selection.Kind
	}{
		{"publications", selection.Publications},
		{"grants", selection.Grants},
		{"specialties", selection.Specialties},
		{"trials", selection.Trials},
	} {
		keys, _ := flags.GetStringSlice(f.flag)
		for _, k := range keys {
			if !m.Toggle(f.kind, k, true) {
				return fmt.Errorf("unknown %s key %q (run \"candidates\" to list keys)", f.kind, k)
			}
		}
	}
	return nil
}

func init() {
	addGenerateFlags(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("cwid", "", "researcher CWID")
	f.StringSlice("publications", nil, "PMIDs of publications to include")
	f.StringSlice("grants", nil, "keys of grants to include")
	f.StringSlice("specialties", nil, "clinical specialties to include")
	f.StringSlice("trials", nil, "NCT numbers of clinical trials to include")
	f.Int("top", 0, "include the N highest ranked publications")

	f.String("request", "", "YAML file with generation options")
	f.String("length", string(types.LengthMedium), "summary length (Short, Medium, Extended)")
	f.String("timeframe", string(types.TimeframePast5Years), "career focus (Past 5 years, Past 10 years, Entire career)")
	f.String("voice", string(types.VoiceThirdPerson), "grammatical person (Third person, First person)")
	f.String("tone", string(types.ToneFormal), "tone (Formal, Informal, Neutral, Exaggerated)")
	f.String("audience", string(types.AudienceGeneralPublic), "target audience")
	f.StringSlice("highlight", nil, "key elements to highlight (repeatable)")
	f.String("instructions", "", "additional instructions for the model")
	f.Bool("no-abstracts", false, "omit publication abstracts from the prompt")
	f.Bool("no-trial-summaries", false, "omit clinical trial summaries from the prompt")

	f.String("model", "", "model id (overrides ai.model)")
	f.Bool("json", false, "print the generation record as JSON")
}
