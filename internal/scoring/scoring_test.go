// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-summary/pkg/types"
)

func ptr(v float64) *float64 { return &v }

func TestPercentileFactor(t *testing.T) {
	const currentYear = 2026

	tests := []struct {
		name string
		pub  types.Publication
		want float64
	}{
		{"ranked uses percentile", types.Publication{Year: 2015, PercentileNIH: ptr(87)}, 0.87},
		{"unranked current year", types.Publication{Year: currentYear}, 0.6},
		{"unranked previous year", types.Publication{Year: currentYear - 1}, 0.6},
		{"unranked two years back", types.Publication{Year: currentYear - 2}, 0.2},
		{"unranked old", types.Publication{Year: 1998}, 0.2},
		{"zero percentile treated as unranked", types.Publication{Year: 2010, PercentileNIH: ptr(0)}, 0.2},
		{"zero percentile recent", types.Publication{Year: currentYear, PercentileNIH: ptr(0)}, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentileFactor(tt.pub, currentYear))
		})
	}
}

func TestFactors(t *testing.T) {
	assert.Equal(t, 3.0, RecencyFactor(2020))
	assert.Equal(t, 1.0, RecencyFactor(2000))
	assert.Equal(t, 0.5, RecencyFactor(1995))

	assert.Equal(t, 1.0, TypeFactor(types.TypeAcademicArticle))
	assert.Equal(t, 0.8, TypeFactor(types.TypeGuideline))
	assert.Equal(t, 0.5, TypeFactor(types.TypeReview))
	assert.Equal(t, 0.3, TypeFactor("Letter"))
	assert.Equal(t, 0.3, TypeFactor(""))

	assert.Equal(t, 1.5, PositionFactor("first"))
	assert.Equal(t, 1.5, PositionFactor("last"))
	assert.Equal(t, 0.8, PositionFactor("middle"))
	assert.Equal(t, 0.8, PositionFactor(""))

	assert.Equal(t, 1.0, ImpactFactor(nil))
	assert.Equal(t, 1.0, ImpactFactor(ptr(0.4)))
	assert.InDelta(t, 2.0, ImpactFactor(ptr(10)), 1e-9)
}

func TestPublicationSignificance(t *testing.T) {
	const currentYear = 2026

	tests := []struct {
		name string
		pub  types.Publication
		want float64
	}{
		{
			name: "first-author article with percentile",
			pub:  types.Publication{Year: 2020, Type: types.TypeAcademicArticle, AuthorPosition: "first", PercentileNIH: ptr(50)},
			want: 225,
		},
		{
			name: "middle-author review, old and unranked",
			pub:  types.Publication{Year: 2010, Type: types.TypeReview, AuthorPosition: "middle", JournalImpactScore: ptr(10)},
			want: 32,
		},
		{
			name: "recent last-author guideline with sub-1 impact",
			pub:  types.Publication{Year: 2025, Type: types.TypeGuideline, AuthorPosition: "last", JournalImpactScore: ptr(0.5)},
			want: 252,
		},
		{
			name: "other type rounds half up",
			pub:  types.Publication{Year: 2000, Type: "Comment"},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicationSignificance(tt.pub, currentYear))
		})
	}
}

func TestRankPublications(t *testing.T) {
	pubs := []types.Publication{
		{PMID: 1, Year: 2000, Type: "Comment"},
		{PMID: 2, Year: 2020, Type: types.TypeAcademicArticle, AuthorPosition: "first", PercentileNIH: ptr(50)},
		{PMID: 3, Year: 2000, Type: "Comment"},
		{PMID: 4, Year: 2010, Type: types.TypeReview, JournalImpactScore: ptr(10)},
	}

	ranked := RankPublications(pubs, 2026)
	require.Len(t, ranked, 4)

	var ids []int
	for _, p := range ranked {
		ids = append(ids, p.PMID)
	}
	assert.Equal(t, []int{2, 4, 1, 3}, ids, "descending by score, ties keep input order")
	assert.Equal(t, 225.0, ranked[0].SignificanceScore)
	assert.Zero(t, pubs[1].SignificanceScore, "input must not be modified")
}

func TestSpecialtyBestMatch(t *testing.T) {
	tests := []struct {
		name    string
		mesh    string
		primary bool
		want    float64
	}{
		{"board certified primary", "Board Certified Cardiology", true, 150},
		{"board any case", "CARDIOLOGY (BOARD)", true, 150},
		{"board secondary", "board: Internal Medicine", false, 60},
		{"plain primary", "Cardiology", true, 75},
		{"plain secondary", "Cardiology", false, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SpecialtyBestMatch(tt.mesh, tt.primary))
		})
	}
}

func TestAggregateSpecialties(t *testing.T) {
	t.Run("duplicates take max primary flag", func(t *testing.T) {
		facts := []types.SpecialtyFact{
			{ResearcherID: "abc1234", MeshTerm: "Oncology", IsPrimary: 0},
			{ResearcherID: "abc1234", MeshTerm: "Oncology", IsPrimary: 1},
			{ResearcherID: "abc1234", MeshTerm: "Oncology", IsPrimary: 0},
		}
		got := AggregateSpecialties(facts)
		require.Len(t, got, 1)
		assert.True(t, got[0].IsPrimary)
		assert.Equal(t, 75.0, got[0].BestMatchScore)
	})

	t.Run("sorted by score and drops empty names", func(t *testing.T) {
		facts := []types.SpecialtyFact{
			{ResearcherID: "abc1234", MeshTerm: "Hematology", IsPrimary: 0},
			{ResearcherID: "abc1234", MeshTerm: "", IsPrimary: 1},
			{ResearcherID: "abc1234", MeshTerm: "Board Certified Oncology", IsPrimary: 1},
			{ResearcherID: "abc1234", MeshTerm: "Cardiology", IsPrimary: 0},
		}
		got := AggregateSpecialties(facts)
		require.Len(t, got, 3)
		assert.Equal(t, "Board Certified Oncology", got[0].MeshTerm)
		assert.Equal(t, 150.0, got[0].BestMatchScore)
		assert.Equal(t, "Hematology", got[1].MeshTerm)
		assert.Equal(t, "Cardiology", got[2].MeshTerm)
	})

	t.Run("same term for different researchers stays separate", func(t *testing.T) {
		facts := []types.SpecialtyFact{
			{ResearcherID: "a", MeshTerm: "Oncology", IsPrimary: 1},
			{ResearcherID: "b", MeshTerm: "Oncology", IsPrimary: 0},
		}
		assert.Len(t, AggregateSpecialties(facts), 2)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, AggregateSpecialties(nil))
	})
}
