// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends rendered prompts to an OpenAI-compatible chat completion
// endpoint through the eino ChatModel.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/research-summary/internal/httputil"
	"github.com/pdiddy/research-summary/internal/prompt"
	"github.com/pdiddy/research-summary/pkg/types"
)

// Defaults applied when the configuration leaves a field unset.
const (
	DefaultModel       = "gpt-4"
	DefaultMaxTokens   = 1000
	DefaultTemperature = float32(0.7)
)

// ErrNoAPIKey is returned by New when no API key is configured.
var ErrNoAPIKey = errors.New("no API key configured for the generation endpoint")

// Generation is one model response.
type Generation struct {
	Text  string
	Model string

	// Provider is set when the endpoint reports the vendor. It is empty for
	// plain OpenAI-compatible endpoints.
	Provider types.Provider

	PromptTokens     int
	CompletionTokens int
}

// Generator produces text for a prompt. An empty modelID selects the
// generator's default model.
type Generator interface {
	Generate(ctx context.Context, prompt, modelID string) (*Generation, error)
}

// Backend is a Generator backed by an eino chat model.
type Backend struct {
	chat  model.BaseChatModel
	model string
	log   logrus.FieldLogger
}

// New builds a Backend from cfg. Rate-limited calls are retried
// cfg.MaxRetries times.
func New(ctx context.Context, cfg types.AIConfig, log logrus.FieldLogger) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	modelID := cfg.Model
	if modelID == "" {
		modelID = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}

	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       modelID,
		MaxTokens:   &maxTokens,
		Temperature: &temp,
		HTTPClient:  httputil.NewClient(cfg.MaxRetries, 0, log),
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat model: %w", err)
	}
	return &Backend{chat: chat, model: modelID, log: log}, nil
}

// Model returns the default model id.
func (b *Backend) Model() string { return b.model }

// Generate sends the system prompt and userPrompt and returns the reply.
func (b *Backend) Generate(ctx context.Context, userPrompt, modelID string) (*Generation, error) {
	if modelID == "" {
		modelID = b.model
	}
	messages := []*schema.Message{
		{Role: schema.System, Content: prompt.System},
		{Role: schema.User, Content: userPrompt},
	}

	var opts []model.Option
	if modelID != b.model {
		opts = append(opts, model.WithModel(modelID))
	}

	start := time.Now()
	resp, err := b.chat.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("chat completion with %s: %w", modelID, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return nil, fmt.Errorf("chat completion with %s: empty response", modelID)
	}

	gen := &Generation{Text: strings.TrimSpace(resp.Content), Model: modelID}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		gen.PromptTokens = resp.ResponseMeta.Usage.PromptTokens
		gen.CompletionTokens = resp.ResponseMeta.Usage.CompletionTokens
	}
	if b.log != nil {
		b.log.WithFields(logrus.Fields{
			"model":             modelID,
			"prompt_tokens":     gen.PromptTokens,
			"completion_tokens": gen.CompletionTokens,
			"elapsed":           time.Since(start).Round(time.Millisecond).String(),
		}).Debug("chat completion finished")
	}
	return gen, nil
}
