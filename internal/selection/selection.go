// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection tracks which candidate records a user has chosen for
// the next summary. Candidates are grouped by kind (publications, grants,
// clinical specialties, clinical trials), paginated with one page index
// shared by all kinds, and identified by string keys (see keys.go).
package selection

import (
	"github.com/samber/lo"

	"github.com/pdiddy/research-summary/pkg/types"
)

// Kind identifies a candidate category.
type Kind string

const (
	Publications Kind = "publications"
	Grants       Kind = "grants"
	Specialties  Kind = "clinical-specialties"
	Trials       Kind = "clinical-trials"
)

// Kinds lists every category in display order.
var Kinds = []Kind{Publications, Grants, Trials, Specialties}

// PageSizes holds the number of candidates shown per page for each kind.
var PageSizes = map[Kind]int{
	Publications: 5,
	Grants:       7,
	Specialties:  10,
	Trials:       8,
}

// Model holds candidate lists and selection sets for one researcher. It is
// not safe for concurrent use.
type Model struct {
	researcher *types.Researcher

	publications []types.Publication
	grants       []types.Grant
	specialties  []types.ClinicalSpecialty
	trials       []types.ClinicalTrial

	// keys holds candidate keys per kind in candidate order.
	keys     map[Kind][]string
	known    map[Kind]map[string]bool
	selected map[Kind]map[string]bool

	page int
}

// New returns an empty model.
func New() *Model {
	m := &Model{}
	m.reset()
	return m
}

func (m *Model) reset() {
	m.publications = nil
	m.grants = nil
	m.specialties = nil
	m.trials = nil
	m.keys = make(map[Kind][]string)
	m.known = make(map[Kind]map[string]bool)
	m.selected = make(map[Kind]map[string]bool)
	for _, k := range Kinds {
		m.known[k] = map[string]bool{}
		m.selected[k] = map[string]bool{}
	}
	m.page = 0
}

// SetResearcher switches to a new researcher, discarding every candidate
// list and selection.
func (m *Model) SetResearcher(r *types.Researcher) {
	m.reset()
	m.researcher = r
}

// Researcher returns the current researcher, or nil.
func (m *Model) Researcher() *types.Researcher {
	return m.researcher
}

// setCandidates replaces the keys for kind, clears its selection set and
// returns to the first page.
func (m *Model) setCandidates(kind Kind, keys []string) {
	m.keys[kind] = keys
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}
	m.known[kind] = known
	m.selected[kind] = map[string]bool{}
	m.page = 0
}

// SetPublications replaces the publication candidates.
func (m *Model) SetPublications(pubs []types.Publication) {
	m.publications = pubs
	m.setCandidates(Publications, lo.Map(pubs, func(p types.Publication, _ int) string { return PublicationKey(p) }))
}

// SetGrants replaces the grant candidates.
func (m *Model) SetGrants(grants []types.Grant) {
	m.grants = grants
	m.setCandidates(Grants, lo.Map(grants, func(g types.Grant, _ int) string { return GrantKey(g) }))
}

// SetSpecialties replaces the clinical specialty candidates.
func (m *Model) SetSpecialties(specs []types.ClinicalSpecialty) {
	m.specialties = specs
	m.setCandidates(Specialties, lo.Map(specs, func(s types.ClinicalSpecialty, _ int) string { return SpecialtyKey(s) }))
}

// SetTrials replaces the clinical trial candidates.
func (m *Model) SetTrials(trials []types.ClinicalTrial) {
	m.trials = trials
	m.setCandidates(Trials, lo.Map(trials, func(t types.ClinicalTrial, _ int) string { return TrialKey(t) }))
}

// Keys returns the candidate keys of kind in candidate order.
func (m *Model) Keys(kind Kind) []string {
	return m.keys[kind]
}

// Toggle adds or removes one key. It reports false when key is not among the
// current candidates of kind, in which case nothing changes.
func (m *Model) Toggle(kind Kind, key string, included bool) bool {
	if !m.known[kind][key] {
		return false
	}
	if included {
		m.selected[kind][key] = true
	} else {
		delete(m.selected[kind], key)
	}
	return true
}

// BulkSetPage adds or removes every key in pageKeys. Keys that are not
// current candidates are skipped.
func (m *Model) BulkSetPage(kind Kind, pageKeys []string, included bool) {
	for _, k := range pageKeys {
		m.Toggle(kind, k, included)
	}
}

// IsPageFullySelected reports whether pageKeys is non-empty and every key in
// it is selected.
func (m *Model) IsPageFullySelected(kind Kind, pageKeys []string) bool {
	if len(pageKeys) == 0 {
		return false
	}
	for _, k := range pageKeys {
		if !m.selected[kind][k] {
			return false
		}
	}
	return true
}

// IsSelected reports whether key is selected in kind.
func (m *Model) IsSelected(kind Kind, key string) bool {
	return m.selected[kind][key]
}

// Count returns the number of selected keys in kind.
func (m *Model) Count(kind Kind) int {
	return len(m.selected[kind])
}

// Page returns the shared zero-based page index.
func (m *Model) Page() int {
	return m.page
}

// SetPage moves the shared page index, clamped to the pages of kind.
func (m *Model) SetPage(kind Kind, page int) {
	last := m.TotalPages(kind) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	m.page = page
}

// TotalPages returns the number of pages needed for the candidates of kind.
func (m *Model) TotalPages(kind Kind) int {
	size := PageSizes[kind]
	n := len(m.keys[kind])
	return (n + size - 1) / size
}

// PageKeys returns the candidate keys of kind visible on the current page.
func (m *Model) PageKeys(kind Kind) []string {
	keys := m.keys[kind]
	size := PageSizes[kind]
	start := m.page * size
	if start >= len(keys) {
		return nil
	}
	end := min(start+size, len(keys))
	return keys[start:end]
}

// Selected resolves the selection sets into records, in candidate order.
func (m *Model) Selected() types.Selection {
	return types.Selection{
		Researcher: m.researcher,
		Publications: lo.Filter(m.publications, func(p types.Publication, _ int) bool {
			return m.selected[Publications][PublicationKey(p)]
		}),
		Grants: lo.Filter(m.grants, func(g types.Grant, _ int) bool {
			return m.selected[Grants][GrantKey(g)]
		}),
		Specialties: lo.Filter(m.specialties, func(s types.ClinicalSpecialty, _ int) bool {
			return m.selected[Specialties][SpecialtyKey(s)]
		}),
		Trials: lo.Filter(m.trials, func(t types.ClinicalTrial, _ int) bool {
			return m.selected[Trials][TrialKey(t)]
		}),
	}
}
