// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summary orchestrates one summary generation: validate the
// selection and controls, render the prompt, call the generation backend,
// then append the result to the session ledger and the durable log.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/research-summary/internal/history"
	"github.com/pdiddy/research-summary/internal/llm"
	"github.com/pdiddy/research-summary/internal/prompt"
	"github.com/pdiddy/research-summary/pkg/types"
)

// Recorder persists generation records. history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, rec types.GenerationRecord) error
}

// Options configures a Service.
type Options struct {
	// Model is passed to the generator; empty selects its default.
	Model string

	// Timeout bounds the generation call; zero leaves it unbounded.
	Timeout time.Duration
}

// Service generates summaries. It is safe for concurrent use.
type Service struct {
	gen      llm.Generator
	ledger   *history.Ledger
	recorder Recorder
	log      logrus.FieldLogger
	opts     Options

	now   func() time.Time
	newID func() string
}

// New returns a Service. recorder may be nil, in which case records are
// kept in the ledger only.
func New(gen llm.Generator, ledger *history.Ledger, recorder Recorder, log logrus.FieldLogger, opts Options) *Service {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Service{
		gen:      gen,
		ledger:   ledger,
		recorder: recorder,
		log:      log,
		opts:     opts,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Ledger returns the session ledger.
func (s *Service) Ledger() *history.Ledger { return s.ledger }

// Result is a successful generation. Warning is set when the record could
// not be persisted; it is always a *PersistenceError.
type Result struct {
	Record  types.GenerationRecord
	Warning error
}

// Validate checks sel and req in a fixed order and returns the first
// failure. Every failure wraps ErrValidation.
func Validate(sel types.Selection, req types.GenerationRequest) error {
	if len(sel.Publications) == 0 {
		return ErrEmptySelection
	}
	if sel.Researcher == nil || sel.Researcher.CWID == "" {
		return ErrMissingResearcher
	}
	if lo.Contains(req.Highlights, types.HighlightGrants) && len(sel.Grants) == 0 {
		return fmt.Errorf("%w: %q requires at least one selected grant", ErrInconsistentHighlight, types.HighlightGrants)
	}
	if lo.Contains(req.Highlights, types.HighlightClinical) && len(sel.Specialties) == 0 && len(sel.Trials) == 0 {
		return fmt.Errorf("%w: %q requires a selected clinical specialty or trial", ErrInconsistentHighlight, types.HighlightClinical)
	}
	if !prompt.KnownLength(req.Length) {
		return fmt.Errorf("%w: length %q", ErrInvalidOption, req.Length)
	}
	return nil
}

// Generate produces a summary for sel using the controls in req. Empty
// option fields in req take their defaults. Validation failures return
// before any external call. A backend failure returns a *ProviderError and
// creates no record. A persistence failure is reported in Result.Warning
// while the generated text is still returned.
func (s *Service) Generate(ctx context.Context, sel types.Selection, req types.GenerationRequest) (*Result, error) {
	req = req.WithDefaults()
	if err := Validate(sel, req); err != nil {
		return nil, err
	}

	text, err := prompt.Build(sel, req)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	log := s.log.WithFields(logrus.Fields{
		"cwid":         sel.Researcher.CWID,
		"length":       req.Length,
		"publications": len(sel.Publications),
	})

	genCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	gen, err := s.gen.Generate(genCtx, text, s.opts.Model)
	if err != nil {
		log.WithError(err).Error("summary generation failed")
		return nil, &ProviderError{Model: s.opts.Model, Err: err}
	}

	modelID := gen.Model
	if modelID == "" {
		modelID = s.opts.Model
	}
	rec := types.GenerationRecord{
		ID:             s.newID(),
		CreatedAt:      s.now().UTC(),
		ResearcherID:   sel.Researcher.CWID,
		ResearcherName: sel.Researcher.FullName(),
		Prompt:         text,
		GeneratedText:  gen.Text,
		Provider:       llm.ResolveProvider(gen.Provider, modelID),
		Model:          modelID,
		Request:        req,
		Selection:      sel,
	}

	if s.ledger != nil {
		s.ledger.Append(rec)
	}
	log = log.WithField("record", rec.ID)

	res := &Result{Record: rec}
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, rec); err != nil {
			res.Warning = &PersistenceError{RecordID: rec.ID, Err: err}
			log.WithError(err).Warn("summary generated but not persisted")
			return res, nil
		}
	}
	log.WithFields(logrus.Fields{"model": rec.Model, "provider": rec.Provider}).Info("summary generated")
	return res, nil
}
