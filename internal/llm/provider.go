// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"strings"

	"github.com/pdiddy/research-summary/pkg/types"
)

// providerPatterns maps model-id substrings to vendors. The first match wins.
var providerPatterns = []struct {
	substr   string
	provider types.Provider
}{
	{"gpt", types.ProviderOpenAI},
	{"claude", types.ProviderAnthropic},
	{"gemini", types.ProviderGoogle},
	{"llama", types.ProviderMeta},
	{"mistral", types.ProviderMistral},
	{"mixtral", types.ProviderMistral},
	{"deepseek", types.ProviderDeepSeek},
}

// InferProvider guesses the vendor from a model id. It returns
// types.ProviderUnknown when nothing matches.
func InferProvider(modelID string) types.Provider {
	id := strings.ToLower(modelID)
	for _, p := range providerPatterns {
		if strings.Contains(id, p.substr) {
			return p.provider
		}
	}
	// OpenAI reasoning models: o1, o1-mini, o3-mini, ...
	for _, prefix := range []string{"o1", "o3", "o4"} {
		if strings.HasPrefix(id, prefix) {
			return types.ProviderOpenAI
		}
	}
	return types.ProviderUnknown
}

// ResolveProvider returns the explicit provider when set, else InferProvider.
func ResolveProvider(explicit types.Provider, modelID string) types.Provider {
	if explicit != "" {
		return explicit
	}
	return InferProvider(modelID)
}
