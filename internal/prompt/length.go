// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import "github.com/pdiddy/research-summary/pkg/types"

// lengthSpec holds the length-related wording for one length class. The
// reminder closes the prompt and repeats the constraint.
type lengthSpec struct {
	label        string
	instructions string
	reminder     string
}

var lengthSpecs = map[types.LengthClass]lengthSpec{
	types.LengthShort: {
		label: "Short (phrase)",
		instructions: `CRITICAL LENGTH REQUIREMENT: The summary MUST be EXACTLY 3-5 words maximum.
- Write a single descriptive phrase, not a sentence.
- Do NOT add punctuation at the end, introductions, or explanations.
- Example shape: "Cancer immunotherapy and vaccine design"
This is non-negotiable. Any response longer than 5 words is a failure.`,
		reminder: "Your entire response must be EXACTLY 3-5 words maximum. This is non-negotiable.",
	},
	types.LengthMedium: {
		label: "Medium (paragraph)",
		instructions: `CRITICAL LENGTH REQUIREMENT: The summary MUST be EXACTLY 3-4 sentences forming a single paragraph.
- Do NOT write fewer than 3 or more than 4 sentences.
- Do NOT use headings, bullet points, or multiple paragraphs.
This is non-negotiable. Count your sentences before responding.`,
		reminder: "Your entire response must be EXACTLY 3-4 sentences in one paragraph. This is non-negotiable.",
	},
	types.LengthExtended: {
		label: "Extended overview",
		instructions: `CRITICAL LENGTH REQUIREMENT: The summary MUST be EXACTLY 300-500 words.
- Organize the overview into 3-5 paragraphs without headings or bullet points.
- Do NOT write fewer than 300 words or more than 500 words.
This is non-negotiable. Count your words before responding.`,
		reminder: "Your entire response must be EXACTLY 300-500 words. This is non-negotiable.",
	},
}

// KnownLength reports whether l has length instructions.
func KnownLength(l types.LengthClass) bool {
	_, ok := lengthSpecs[l]
	return ok
}
