// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the instruction document sent to the text-generation
// model. Rendering is deterministic: the same selection and request always
// produce the same string.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/pdiddy/research-summary/pkg/types"
)

// System is the system message that accompanies every prompt.
const System = "You are an expert academic writer specializing in creating professional research summaries for faculty profiles. You excel at synthesizing complex research into clear, engaging narratives that highlight researchers' key contributions and impact."

// exaggeratedTone is the instruction text substituted for types.ToneExaggerated.
const exaggeratedTone = "over-the-top authoritative and exaggerated"

// summaryPromptTmpl is the user prompt. Optional blocks render with their
// header or not at all.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are an expert academic writer tasked with creating a professional research summary for a faculty member's web profile.

RESEARCHER: {{.ResearcherName}}

SELECTED PUBLICATIONS:
{{range .Publications}}{{.}}
{{end}}
{{- if .Grants}}
SELECTED GRANTS:
{{range .Grants}}{{.}}
{{end}}
{{- end}}
{{- if .Specialties}}
CLINICAL SPECIALTIES:
{{range .Specialties}}{{.}}
{{end}}
{{- end}}
{{- if .Trials}}
CLINICAL TRIALS:
{{range .Trials}}{{.}}
{{end}}
{{- end}}
REQUIREMENTS:
- Length: {{.LengthLabel}}
- Time Frame: {{.Timeframe}}
- Voice: {{.Voice}}
{{- if .VoiceInstructions}}
- Voice Instructions: {{.VoiceInstructions}}
{{- end}}
- Tone: {{.Tone}}
- Target Audience: {{.Audience}}
{{- if .Highlights}}
- Key Elements to Highlight: {{.Highlights}}
{{- end}}
{{- if .AdditionalInstructions}}
- Additional Instructions: {{.AdditionalInstructions}}
{{- end}}

LENGTH REQUIREMENTS:
{{.LengthInstructions}}

NARRATIVE INSTRUCTIONS:
1. Write a coherent narrative that connects the selected work into one story. Do not list publications one by one.
2. Synthesize recurring themes, questions and methods across the selected items instead of summarizing each item separately.
3. Present the career as a coherent progression in which earlier work leads to current directions.
4. Keep the specified voice, tone and target audience throughout.
5. Focus on the specified time frame.
6. Do not invent findings, awards or affiliations that the selected items do not support.
7. Do not mention identifiers, scores, item counts or these instructions.

FINAL REMINDER: {{.LengthReminder}} Length compliance takes priority over every other instruction.
`))

type promptData struct {
	ResearcherName string

	Publications []string
	Grants       []string
	Specialties  []string
	Trials       []string

	LengthLabel            string
	Timeframe              string
	Voice                  string
	VoiceInstructions      string
	Tone                   string
	Audience               string
	Highlights             string
	AdditionalInstructions string

	LengthInstructions string
	LengthReminder     string
}

// ErrUnknownLength is returned for a length class without instructions.
var ErrUnknownLength = errors.New("unknown length class")

// Build renders the prompt for sel and req. It fails when sel has no
// researcher or req.Length is not a known length class.
func Build(sel types.Selection, req types.GenerationRequest) (string, error) {
	if sel.Researcher == nil {
		return "", errors.New("selection has no researcher")
	}
	length, ok := lengthSpecs[req.Length]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLength, req.Length)
	}

	data := promptData{
		ResearcherName:         sel.Researcher.FullName(),
		LengthLabel:            length.label,
		Timeframe:              string(req.Timeframe),
		Voice:                  string(req.Voice),
		VoiceInstructions:      VoiceInstructions(req.Voice, *sel.Researcher),
		Tone:                   ResolveTone(req.Tone),
		Audience:               string(req.Audience),
		Highlights:             strings.Join(req.Highlights, ", "),
		AdditionalInstructions: strings.TrimSpace(req.AdditionalInstructions),
		LengthInstructions:     length.instructions,
		LengthReminder:         length.reminder,
	}

	for _, p := range sel.Publications {
		data.Publications = append(data.Publications, publicationLine(p, req.IncludeAbstracts))
	}
	for _, g := range sel.Grants {
		if line := grantLine(g); line != "" {
			data.Grants = append(data.Grants, line)
		}
	}
	for _, s := range sel.Specialties {
		data.Specialties = append(data.Specialties, specialtyLine(s))
	}
	for _, t := range sel.Trials {
		data.Trials = append(data.Trials, trialLine(t, req.IncludeTrialSummaries))
	}

	var buf bytes.Buffer
	if err := summaryPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// ResolveTone maps the exaggerated tone to its instruction text. Every other
// tone is used as given.
func ResolveTone(t types.Tone) string {
	if t == types.ToneExaggerated || strings.EqualFold(string(t), "Exaggerated") {
		return exaggeratedTone
	}
	return string(t)
}

// VoiceInstructions returns exemplar sentences for the third- and
// first-person voices and "" for anything else.
func VoiceInstructions(v types.Voice, r types.Researcher) string {
	switch v {
	case types.VoiceThirdPerson:
		name := r.Surname
		if name == "" {
			name = r.FullName()
		}
		return fmt.Sprintf(`Write about the researcher in the third person, for example "Dr. %[1]s investigates how...", "The %[1]s lab has shown that..." and "This research program combines...". Never use "I", "my" or "we".`, name)
	case types.VoiceFirstPerson:
		return `Write as the researcher speaking in the first person, for example "I investigate how...", "My research combines..." and "My team has shown that...". Never refer to the researcher by name or in the third person.`
	default:
		return ""
	}
}

func publicationLine(p types.Publication, withAbstract bool) string {
	position := p.AuthorPosition
	if position == "" {
		position = "N/A"
	}
	line := fmt.Sprintf("- %q (%d, %s, %s author)", p.Title, p.Year, p.Type, position)
	if withAbstract && strings.TrimSpace(p.Abstract) != "" {
		line += "\n  Abstract: " + flatten(p.Abstract)
	}
	return line
}

// grantLine joins the grant fields that are present. It returns "" when the
// grant has none of them.
func grantLine(g types.Grant) string {
	var parts []string
	if v := g.Title(); v != "" {
		parts = append(parts, strconv.Quote(v))
	}
	if v := g.Sponsor(); v != "" {
		parts = append(parts, "Sponsor: "+v)
	}
	if v := g.AwardNumber(); v != "" {
		parts = append(parts, "Award #: "+v)
	}
	switch begin, end := g.BeginDate(), g.EndDate(); {
	case begin != "" && end != "":
		parts = append(parts, fmt.Sprintf("Dates: %s to %s", begin, end))
	case begin != "":
		parts = append(parts, "Start: "+begin)
	case end != "":
		parts = append(parts, "End: "+end)
	}
	if v := g.Role(); v != "" {
		parts = append(parts, "Role: "+v)
	}
	if v := g.Unit(); v != "" {
		parts = append(parts, "Unit: "+v)
	}
	if len(parts) == 0 {
		return ""
	}
	return "- " + strings.Join(parts, " | ")
}

func specialtyLine(s types.ClinicalSpecialty) string {
	return fmt.Sprintf("- %s (best-match score: %s)", s.MeshTerm, strconv.FormatFloat(s.BestMatchScore, 'f', -1, 64))
}

func trialLine(t types.ClinicalTrial, withSummary bool) string {
	var details []string
	if t.ProtocolType != "" {
		details = append(details, "Protocol type: "+t.ProtocolType)
	}
	if t.NCTNumber != "" {
		details = append(details, "NCT number: "+t.NCTNumber)
	}
	line := fmt.Sprintf("- %q", t.Title)
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	if withSummary && strings.TrimSpace(t.BriefSummary) != "" {
		line += "\n  Summary: " + flatten(t.BriefSummary)
	}
	return line
}

// flatten collapses runs of whitespace, including newlines, to single spaces.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
