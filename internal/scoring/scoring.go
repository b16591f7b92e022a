// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring ranks researcher facts. Publications get a significance
// score from recency, type, author position, journal impact and NIH
// percentile; clinical specialties get a best-match score from board
// certification and primary status. All functions are pure.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/research-summary/pkg/types"
)

// baseYear anchors the recency factor.
const baseYear = 2000

// typeWeights maps canonical publication types to their weight. Types not
// listed get defaultTypeWeight.
var typeWeights = map[string]float64{
	types.TypeAcademicArticle: 1.0,
	types.TypeGuideline:       0.8,
	types.TypeReview:          0.5,
}

const (
	defaultTypeWeight = 0.3

	leadPositionWeight  = 1.5
	otherPositionWeight = 0.8

	recentUnrankedPercentile = 0.6
	olderUnrankedPercentile  = 0.2
)

// RecencyFactor returns 1 + (year - 2000)/10.
func RecencyFactor(year int) float64 {
	return 1 + float64(year-baseYear)/10
}

// TypeFactor returns the weight for a canonical publication type.
func TypeFactor(pubType string) float64 {
	if w, ok := typeWeights[pubType]; ok {
		return w
	}
	return defaultTypeWeight
}

// PositionFactor returns 1.5 for first or last authorship and 0.8 otherwise.
func PositionFactor(position string) float64 {
	if position == types.PositionFirst || position == types.PositionLast {
		return leadPositionWeight
	}
	return otherPositionWeight
}

// ImpactFactor returns 1 + log10(max(score, 1)). A missing score counts as 1,
// so the factor is never below 1.
func ImpactFactor(impact *float64) float64 {
	v := 1.0
	if impact != nil {
		v = *impact
	}
	return 1 + math.Log10(math.Max(v, 1))
}

// PercentileFactor returns percentile/100 when the publication has a positive
// NIH percentile. Unranked publications from the last year get 0.6; older
// unranked ones get 0.2.
func PercentileFactor(pub types.Publication, currentYear int) float64 {
	if pub.PercentileNIH != nil && *pub.PercentileNIH > 0 {
		return *pub.PercentileNIH / 100
	}
	if pub.Year >= currentYear-1 {
		return recentUnrankedPercentile
	}
	return olderUnrankedPercentile
}

// PublicationSignificance returns the rounded significance score of pub.
func PublicationSignificance(pub types.Publication, currentYear int) float64 {
	raw := 100 *
		RecencyFactor(pub.Year) *
		TypeFactor(pub.Type) *
		PositionFactor(pub.AuthorPosition) *
		ImpactFactor(pub.JournalImpactScore) *
		PercentileFactor(pub, currentYear)
	return math.Round(raw)
}

// RankPublications sets SignificanceScore on every publication and returns
// them sorted by descending score. Ties keep their input order. The input
// slice is not modified.
func RankPublications(pubs []types.Publication, currentYear int) []types.Publication {
	ranked := make([]types.Publication, len(pubs))
	for i, p := range pubs {
		p.SignificanceScore = PublicationSignificance(p, currentYear)
		ranked[i] = p
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SignificanceScore > ranked[j].SignificanceScore
	})
	return ranked
}

const (
	specialtyBase       = 30
	boardCertWeight     = 2
	primarySpecialtyMul = 2.5
)

// SpecialtyBestMatch returns boardCert × primary × 30, where boardCert is 2
// when name mentions "board" in any case and primary is 2.5 for a primary
// specialty.
func SpecialtyBestMatch(name string, isPrimary bool) float64 {
	board := 1.0
	if strings.Contains(strings.ToLower(name), "board") {
		board = boardCertWeight
	}
	primary := 1.0
	if isPrimary {
		primary = primarySpecialtyMul
	}
	return board * primary * specialtyBase
}

type specialtyKey struct {
	researcher string
	mesh       string
}

// AggregateSpecialties collapses duplicate (researcher, MeSH term) rows into
// one, taking the maximum primary flag, then scores and sorts them by
// descending best-match score. Rows without a MeSH term are dropped. Groups
// keep first-appearance order among equal scores.
func AggregateSpecialties(facts []types.SpecialtyFact) []types.ClinicalSpecialty {
	index := make(map[specialtyKey]int)
	var out []types.ClinicalSpecialty

	for _, f := range facts {
		if strings.TrimSpace(f.MeshTerm) == "" {
			continue
		}
		k := specialtyKey{researcher: f.ResearcherID, mesh: f.MeshTerm}
		i, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, types.ClinicalSpecialty{
				ResearcherID: f.ResearcherID,
				MeshTerm:     f.MeshTerm,
				IsPrimary:    f.IsPrimary > 0,
			})
			continue
		}
		if f.IsPrimary > 0 {
			out[i].IsPrimary = true
		}
	}

	for i := range out {
		out[i].BestMatchScore = SpecialtyBestMatch(out[i].MeshTerm, out[i].IsPrimary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BestMatchScore > out[j].BestMatchScore
	})
	return out
}
