// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-summary/internal/facts"
	"github.com/pdiddy/research-summary/internal/history"
	"github.com/pdiddy/research-summary/internal/llm"
	"github.com/pdiddy/research-summary/internal/secrets"
	"github.com/pdiddy/research-summary/internal/summary"
	"github.com/pdiddy/research-summary/pkg/types"
)

// setDefaults registers every configuration key so that environment
// variables override them during Unmarshal.
func setDefaults() {
	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.host", "127.0.0.1:3306")
	viper.SetDefault("database.user", "")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.name", "reciterdb")
	viper.SetDefault("database.query_timeout", "30s")

	viper.SetDefault("ai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.model", llm.DefaultModel)
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.max_tokens", llm.DefaultMaxTokens)
	viper.SetDefault("ai.temperature", llm.DefaultTemperature)
	viper.SetDefault("ai.timeout", "2m")
	viper.SetDefault("ai.max_retries", 3)

	viper.SetDefault("history.path", "data/history.db")
	viper.SetDefault("history.session_limit", history.DefaultSessionLimit)
	viper.SetDefault("history.export_dir", "output/exports")

	viper.SetDefault("server.addr", ":8080")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// loadConfig unmarshals the merged configuration and fills credentials
// that were not configured from the secrets directory.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.AI.APIKey = secrets.Lookup(loadedSecrets, secrets.OpenAIAPIKey, cfg.AI.APIKey)
	cfg.Database.Password = secrets.Lookup(loadedSecrets, secrets.FactsDBPassword, cfg.Database.Password)
	return cfg, nil
}

func configureLogger(l *logrus.Logger, level, format string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l.SetLevel(lvl)
	l.SetOutput(os.Stderr)
	switch strings.ToLower(format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q: use text or json", format)
	}
	return nil
}

// app holds the components shared by the commands that generate or serve.
type app struct {
	cfg     types.Config
	facts   *facts.Store
	history *history.Store
	svc     *summary.Service
}

func (a *app) Close() {
	if a.facts != nil {
		a.facts.Close()
	}
	if a.history != nil {
		a.history.Close()
	}
}

// openFacts connects to the reporting database.
func openFacts(cfg types.Config) (*facts.Store, error) {
	return facts.Open(cfg.Database)
}

// newApp wires the fact store, history log, generation backend and summary
// service. The session ledger starts with the most recent logged records.
func newApp(ctx context.Context, cfg types.Config, modelOverride string) (*app, error) {
	a := &app{cfg: cfg}

	var err error
	if a.facts, err = openFacts(cfg); err != nil {
		return nil, err
	}
	if a.history, err = history.NewStore(cfg.History.Path); err != nil {
		a.Close()
		return nil, err
	}

	backend, err := llm.New(ctx, cfg.AI, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%w (set ai.api_key, RESEARCH_SUMMARY_AI_API_KEY, or the %s secret)", err, secrets.OpenAIAPIKey)
	}

	ledger := history.NewLedger(cfg.History.SessionLimit)
	recent, err := a.history.List(ctx, ledger.Limit())
	if err != nil {
		logger.WithError(err).Warn("could not load recent history")
	} else {
		ledger.Load(recent)
	}

	model := cfg.AI.Model
	if modelOverride != "" {
		model = modelOverride
	}
	a.svc = summary.New(backend, ledger, a.history, logger, summary.Options{
		Model:   model,
		Timeout: cfg.AI.Timeout,
	})
	return a, nil
}

// commandContext returns a context for one CLI command.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Minute)
}
