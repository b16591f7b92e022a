// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// LengthClass selects the target summary length.
type LengthClass string

const (
	LengthShort    LengthClass = "Short"
	LengthMedium   LengthClass = "Medium"
	LengthExtended LengthClass = "Extended"
)

// Timeframe selects which part of the career the summary focuses on.
type Timeframe string

const (
	TimeframePast5Years   Timeframe = "Past 5 years"
	TimeframePast10Years  Timeframe = "Past 10 years"
	TimeframeEntireCareer Timeframe = "Entire career"
)

// Voice selects grammatical person.
type Voice string

const (
	VoiceThirdPerson Voice = "Third person"
	VoiceFirstPerson Voice = "First person"
)

// Tone is passed to the prompt as a literal label, except for ToneExaggerated.
type Tone string

const (
	ToneFormal   Tone = "Formal"
	ToneInformal Tone = "Informal"
	ToneNeutral  Tone = "Neutral"

	// ToneExaggerated is the label the form submits for the exaggerated tone.
	ToneExaggerated Tone = "Kim Jong Un"
)

// Audience is the intended reader of the summary.
type Audience string

const (
	AudienceGeneralPublic       Audience = "General public"
	AudienceAcademicPeers       Audience = "Academic peers"
	AudienceGrantReviewers      Audience = "Grant reviewers, funders"
	AudienceProspectivePatients Audience = "Prospective patients"
)

// Highlight tags accepted in GenerationRequest.Highlights.
const (
	HighlightProblems = "Research problems/questions"
	HighlightGoals    = "Research goals"
	HighlightMethods  = "Research methods"
	HighlightClinical = "Clinical application"
	HighlightGrants   = "Grants received"
)

// GenerationRequest holds the stylistic controls for one summary.
type GenerationRequest struct {
	Length                 LengthClass `json:"length" yaml:"length"`
	Timeframe              Timeframe   `json:"timeframe" yaml:"timeframe"`
	Voice                  Voice       `json:"voice" yaml:"voice"`
	Tone                   Tone        `json:"tone" yaml:"tone"`
	Audience               Audience    `json:"audience" yaml:"audience"`
	Highlights             []string    `json:"keyElements" yaml:"highlights"`
	AdditionalInstructions string      `json:"additionalInstructions,omitempty" yaml:"additional_instructions,omitempty"`
	IncludeAbstracts       bool        `json:"includeAbstracts" yaml:"include_abstracts"`
	IncludeTrialSummaries  bool        `json:"includeTrialSummaries" yaml:"include_trial_summaries"`
}

// DefaultRequest returns the controls the form starts with.
func DefaultRequest() GenerationRequest {
	return GenerationRequest{
		Length:                LengthMedium,
		Timeframe:             TimeframePast5Years,
		Voice:                 VoiceThirdPerson,
		Tone:                  ToneFormal,
		Audience:              AudienceGeneralPublic,
		Highlights:            []string{HighlightProblems, HighlightGoals, HighlightMethods},
		IncludeAbstracts:      true,
		IncludeTrialSummaries: true,
	}
}

// WithDefaults fills empty option fields from DefaultRequest. Highlights and
// the include flags are left as given.
func (r GenerationRequest) WithDefaults() GenerationRequest {
	d := DefaultRequest()
	if r.Length == "" {
		r.Length = d.Length
	}
	if r.Timeframe == "" {
		r.Timeframe = d.Timeframe
	}
	if r.Voice == "" {
		r.Voice = d.Voice
	}
	if r.Tone == "" {
		r.Tone = d.Tone
	}
	if r.Audience == "" {
		r.Audience = d.Audience
	}
	return r
}

// Provider tags the vendor behind a generation model.
type Provider string

const (
	ProviderOpenAI    Provider = "OpenAI"
	ProviderAnthropic Provider = "Anthropic"
	ProviderGoogle    Provider = "Google"
	ProviderMeta      Provider = "Meta"
	ProviderMistral   Provider = "Mistral"
	ProviderDeepSeek  Provider = "DeepSeek"
	ProviderUnknown   Provider = "Unknown"
)

// GenerationRecord is one successful generation. It is created once and
// never mutated.
type GenerationRecord struct {
	// ID is a random UUID assigned at creation.
	ID string `json:"id" yaml:"id"`

	// CreatedAt is the generation time in UTC.
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`

	ResearcherID   string `json:"cwid" yaml:"cwid"`
	ResearcherName string `json:"researcherName" yaml:"researcher_name"`

	// Prompt is the fully rendered prompt sent to the model.
	Prompt string `json:"prompt" yaml:"prompt"`

	// GeneratedText is the model output.
	GeneratedText string `json:"summary" yaml:"generated_text"`

	Provider Provider `json:"provider" yaml:"provider"`
	Model    string   `json:"model" yaml:"model"`

	Request   GenerationRequest `json:"request" yaml:"request"`
	Selection Selection         `json:"selection" yaml:"selection"`
}
