// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-summary service.
// Researcher facts (publications, grants, clinical specialties, clinical trials)
// are read-only rows from the reporting database; GenerationRequest and
// GenerationRecord describe one summary generation.
package types

import (
	"sort"
	"strings"
)

// Researcher identifies a full-time faculty member.
type Researcher struct {
	// CWID is the institutional identifier.
	CWID string `json:"cwid" yaml:"cwid"`

	// Surname is the family name.
	Surname string `json:"surname" yaml:"surname"`

	// GivenName is the first name.
	GivenName string `json:"givenName" yaml:"given_name"`
}

// FullName returns "GivenName Surname".
func (r Researcher) FullName() string {
	return strings.TrimSpace(r.GivenName + " " + r.Surname)
}

// Author positions reported by the authorship table.
const (
	PositionFirst = "first"
	PositionLast  = "last"
)

// Canonical publication types that carry a type weight above the default.
const (
	TypeAcademicArticle = "Academic Article"
	TypeGuideline       = "Guideline"
	TypeReview          = "Review"
)

// Publication is one authored article. SignificanceScore is derived from the
// other fields when the row is read and is never stored.
type Publication struct {
	// PMID is the PubMed identifier, unique per researcher.
	PMID int `json:"pmid" yaml:"pmid"`

	// Title is the article title.
	Title string `json:"articleTitle" yaml:"title"`

	// Year is the publication year.
	Year int `json:"articleYear" yaml:"year"`

	// Type is the canonical publication type (e.g. "Academic Article").
	Type string `json:"publicationTypeCanonical" yaml:"type"`

	// AuthorPosition is "first", "last", "middle", or empty when unknown.
	AuthorPosition string `json:"authorPosition,omitempty" yaml:"author_position,omitempty"`

	// DOI is the digital object identifier.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PercentileNIH is the NIH citation percentile (0-100), nil when not yet ranked.
	PercentileNIH *float64 `json:"percentileNIH,omitempty" yaml:"percentile_nih,omitempty"`

	// JournalImpactScore is the journal impact score, nil when unknown.
	JournalImpactScore *float64 `json:"journalImpactScore,omitempty" yaml:"journal_impact_score,omitempty"`

	// Abstract is the article abstract, empty when unavailable.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// SignificanceScore is the derived ranking value.
	SignificanceScore float64 `json:"significanceScore" yaml:"significance_score"`
}

// SpecialtyFact is a raw clinical specialty row before aggregation. The same
// (ResearcherID, MeshTerm) pair may appear more than once.
type SpecialtyFact struct {
	ResearcherID string
	MeshTerm     string
	IsPrimary    int
}

// ClinicalSpecialty is an aggregated, scored clinical specialty.
type ClinicalSpecialty struct {
	// ResearcherID is the CWID of the researcher.
	ResearcherID string `json:"cwid" yaml:"cwid"`

	// MeshTerm is the specialty name and its natural key within a researcher.
	MeshTerm string `json:"personMesh" yaml:"mesh_term"`

	// IsPrimary is the maximum primary flag across duplicate rows.
	IsPrimary bool `json:"isPrimary" yaml:"is_primary"`

	// BestMatchScore is the derived ranking value.
	BestMatchScore float64 `json:"scoreBestMatch" yaml:"best_match_score"`
}

// ClinicalTrial is a registered trial joined with its detail row.
type ClinicalTrial struct {
	ResearcherID  string `json:"cwid" yaml:"cwid"`
	Title         string `json:"title" yaml:"title"`
	ProtocolType  string `json:"protocolType" yaml:"protocol_type"`
	NCTNumber     string `json:"nctNumber" yaml:"nct_number"`
	OverallStatus string `json:"overallCurrentStatus" yaml:"overall_status"`
	Phases        string `json:"phases" yaml:"phases"`
	BriefSummary  string `json:"briefSummary,omitempty" yaml:"brief_summary,omitempty"`
}

// Sponsor-record columns read from the grants table. Grant rows carry
// arbitrary extra columns; these are the ones the service understands.
const (
	GrantID          = "id"
	GrantAltID       = "grant_id"
	GrantTitle       = "proj_title"
	GrantSponsor     = "Orig_Sponsor"
	GrantAwardNumber = "Award_Number"
	GrantBeginDate   = "begin_date"
	GrantEndDate     = "end_date"
	GrantRole        = "Role"
	GrantUnit        = "unit_name"
	GrantAbstract    = "abstract"
)

// Grant is a raw sponsor record keyed by column name. Columns with NULL
// values are absent from the map.
type Grant map[string]string

func (g Grant) Title() string       { return g[GrantTitle] }
func (g Grant) Sponsor() string     { return g[GrantSponsor] }
func (g Grant) AwardNumber() string { return g[GrantAwardNumber] }
func (g Grant) BeginDate() string   { return g[GrantBeginDate] }
func (g Grant) EndDate() string     { return g[GrantEndDate] }
func (g Grant) Role() string        { return g[GrantRole] }
func (g Grant) Unit() string        { return g[GrantUnit] }
func (g Grant) Abstract() string    { return g[GrantAbstract] }

// Columns returns the grant's column names in sorted order.
func (g Grant) Columns() []string {
	cols := make([]string, 0, len(g))
	for k := range g {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Selection holds the records chosen for the next summary.
type Selection struct {
	Researcher   *Researcher         `json:"researcher,omitempty" yaml:"researcher,omitempty"`
	Publications []Publication       `json:"publications" yaml:"publications"`
	Grants       []Grant             `json:"grants,omitempty" yaml:"grants,omitempty"`
	Specialties  []ClinicalSpecialty `json:"specialties,omitempty" yaml:"specialties,omitempty"`
	Trials       []ClinicalTrial     `json:"trials,omitempty" yaml:"trials,omitempty"`
}
