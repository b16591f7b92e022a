// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package facts

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/pdiddy/research-summary/pkg/types"
)

// Source is the subset of Store used to load candidate lists.
type Source interface {
	Publications(ctx context.Context, cwid string) ([]types.Publication, error)
	Grants(ctx context.Context, cwid string) ([]types.Grant, error)
	Specialties(ctx context.Context, cwid string) ([]types.ClinicalSpecialty, error)
	Trials(ctx context.Context, cwid string) ([]types.ClinicalTrial, error)
}

// Candidates holds the four candidate lists of one researcher. Errors maps
// a category to its fetch failure; a failed category has an empty list.
type Candidates struct {
	Publications []types.Publication
	Grants       []types.Grant
	Specialties  []types.ClinicalSpecialty
	Trials       []types.ClinicalTrial

	Errors map[string]error
}

// LoadCandidates fetches the four categories concurrently. A failing
// category is logged and left empty; the others are unaffected.
func LoadCandidates(ctx context.Context, src Source, cwid string, log logrus.FieldLogger) Candidates {
	var (
		c                                   Candidates
		pubErr, grantErr, specErr, trialErr error
		wg                                  conc.WaitGroup
	)
	wg.Go(func() { c.Publications, pubErr = src.Publications(ctx, cwid) })
	wg.Go(func() { c.Grants, grantErr = src.Grants(ctx, cwid) })
	wg.Go(func() { c.Specialties, specErr = src.Specialties(ctx, cwid) })
	wg.Go(func() { c.Trials, trialErr = src.Trials(ctx, cwid) })
	wg.Wait()

	c.Errors = map[string]error{}
	for category, err := range map[string]error{
		CategoryPublications: pubErr,
		CategoryGrants:       grantErr,
		CategorySpecialties:  specErr,
		CategoryTrials:       trialErr,
	} {
		if err == nil {
			continue
		}
		c.Errors[category] = err
		if log != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"cwid":     cwid,
				"category": category,
			}).Warn("candidate fetch failed, continuing with an empty list")
		}
	}

	if pubErr != nil {
		c.Publications = nil
	}
	if grantErr != nil {
		c.Grants = nil
	}
	if specErr != nil {
		c.Specialties = nil
	}
	if trialErr != nil {
		c.Trials = nil
	}
	return c
}
