// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package facts

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-summary/pkg/types"
)

var fixture = []string{
	`CREATE TABLE identity (cwid TEXT PRIMARY KEY, surname TEXT, givenName TEXT, fullTimeFaculty TEXT)`,
	`INSERT INTO identity VALUES
		('abc', 'Lovelace', 'Ada', 'yes'),
		('abd', 'Babbage', 'Charles', 'yes'),
		('lov2', 'Lovett', 'Ann', 'no')`,

	`CREATE TABLE analysis_summary_author (personIdentifier TEXT, pmid INTEGER, authorPosition TEXT)`,
	`CREATE TABLE analysis_summary_article (pmid INTEGER PRIMARY KEY, articleTitle TEXT, articleYear INTEGER,
		publicationTypeCanonical TEXT, doi TEXT, percentileNIH REAL, journalImpactScore2 REAL)`,
	`CREATE TABLE reporting_abstracts (pmid INTEGER, abstractVarchar TEXT)`,
	`INSERT INTO analysis_summary_author VALUES ('abc', 100, 'first'), ('abc', 200, 'middle'), ('abc', 300, 'last'), ('abd', 100, 'last')`,
	`INSERT INTO analysis_summary_article VALUES
		(100, 'Engines', 2024, 'Academic Article', '10.1/eng', 90, 10),
		(200, 'Looms', 2010, 'Review', NULL, NULL, NULL),
		(300, 'Guidance', 2025, 'Guideline', NULL, NULL, NULL)`,
	`INSERT INTO reporting_abstracts VALUES (100, ''), (200, 'First abstract.'), (200, 'Second abstract.')`,

	`CREATE TABLE reporting_infoed_all_cleaned (id INTEGER, cwid TEXT, proj_title TEXT, Orig_Sponsor TEXT,
		Award_Number TEXT, begin_date DATE, end_date DATE, Role TEXT, unit_name TEXT, abstract TEXT)`,
	`INSERT INTO reporting_infoed_all_cleaned VALUES
		(1, 'abc', 'Old grant', 'NIH', 'R01-1', '2015-01-01', '2019-12-31', 'PI', NULL, NULL),
		(2, 'abc', 'New grant', 'NSF', NULL, '2021-07-01', '2024-06-30', 'Co-I', 'Medicine', NULL),
		(3, 'abd', 'Other grant', 'DOD', 'W81', '2022-01-01', '2023-01-01', 'PI', NULL, NULL)`,

	`CREATE TABLE pops_specialties (cwid TEXT, specialtyName TEXT, isPrimary INTEGER)`,
	`INSERT INTO pops_specialties VALUES
		('abc', 'Hematology', 0),
		('abc', 'Board Certified Oncology', 0),
		('abc', 'Board Certified Oncology', 1),
		('abc', NULL, 1),
		('abd', 'Hematology', 1)`,

	`CREATE TABLE clinical_trials (cwid TEXT, title TEXT, protocolType TEXT, nctNumber TEXT,
		overallCurrentStatus TEXT, phases TEXT)`,
	`CREATE TABLE clinical_trials_details (nctNumber TEXT, briefSummary TEXT)`,
	`INSERT INTO clinical_trials VALUES
		('abc', 'Trial A', 'Interventional', 'NCT01', 'Recruiting', 'Phase 2'),
		('abc', 'Trial B', 'Observational', 'NCT02', 'Completed', NULL)`,
	`INSERT INTO clinical_trials_details VALUES ('NCT01', 'Tests A.')`,
}

func openDB(t *testing.T, statements []string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "facts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return db
}

func fixtureStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(openDB(t, fixture), 0)
	s.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestSearchResearchers(t *testing.T) {
	s := fixtureStore(t)
	ctx := context.Background()

	got, err := s.SearchResearchers(ctx, "Lov")
	require.NoError(t, err)
	require.Len(t, got, 1, "part-time faculty are excluded")
	assert.Equal(t, types.Researcher{CWID: "abc", Surname: "Lovelace", GivenName: "Ada"}, got[0])

	got, err = s.SearchResearchers(ctx, "ab")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Babbage", got[0].Surname)

	got, err = s.SearchResearchers(ctx, "Charl")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "abd", got[0].CWID)

	got, err = s.SearchResearchers(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResearcher(t *testing.T) {
	s := fixtureStore(t)

	r, err := s.Researcher(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", r.FullName())

	_, err = s.Researcher(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublicationsScoredAndRanked(t *testing.T) {
	s := fixtureStore(t)

	pubs, err := s.Publications(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, pubs, 3, "duplicate abstract rows collapse to one publication")

	assert.Equal(t, []int{100, 300, 200}, []int{pubs[0].PMID, pubs[1].PMID, pubs[2].PMID})
	assert.Equal(t, 918.0, pubs[0].SignificanceScore)
	assert.Equal(t, 252.0, pubs[1].SignificanceScore)
	assert.Equal(t, 16.0, pubs[2].SignificanceScore)

	engines := pubs[0]
	assert.Equal(t, "first", engines.AuthorPosition)
	assert.Equal(t, "10.1/eng", engines.DOI)
	require.NotNil(t, engines.PercentileNIH)
	assert.Equal(t, 90.0, *engines.PercentileNIH)
	assert.Empty(t, engines.Abstract, "empty abstracts are not joined")

	assert.Nil(t, pubs[1].JournalImpactScore)
	assert.Equal(t, "First abstract.", pubs[2].Abstract)
}

func TestGrants(t *testing.T) {
	s := fixtureStore(t)

	grants, err := s.Grants(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, grants, 2)

	assert.Equal(t, "New grant", grants[0].Title(), "newest first")
	assert.Equal(t, "2", grants[0][types.GrantID])
	assert.Equal(t, "2021-07-01", grants[0].BeginDate())
	assert.Equal(t, "Medicine", grants[0].Unit())
	_, hasAward := grants[0][types.GrantAwardNumber]
	assert.False(t, hasAward, "NULL columns are omitted")

	assert.Equal(t, "R01-1", grants[1].AwardNumber())
	assert.Equal(t, "2019-12-31", grants[1].EndDate())
}

func TestSpecialties(t *testing.T) {
	s := fixtureStore(t)

	specs, err := s.Specialties(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "Board Certified Oncology", specs[0].MeshTerm)
	assert.True(t, specs[0].IsPrimary, "primary flag is the maximum across rows")
	assert.Equal(t, 150.0, specs[0].BestMatchScore)

	assert.Equal(t, "Hematology", specs[1].MeshTerm)
	assert.False(t, specs[1].IsPrimary)
	assert.Equal(t, 30.0, specs[1].BestMatchScore)
}

func TestTrials(t *testing.T) {
	s := fixtureStore(t)

	trials, err := s.Trials(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, trials, 2)

	byNCT := map[string]types.ClinicalTrial{}
	for _, tr := range trials {
		byNCT[tr.NCTNumber] = tr
	}
	assert.Equal(t, "Tests A.", byNCT["NCT01"].BriefSummary)
	assert.Equal(t, "Phase 2", byNCT["NCT01"].Phases)
	assert.Empty(t, byNCT["NCT02"].BriefSummary)
	assert.Equal(t, "Observational", byNCT["NCT02"].ProtocolType)
}

func TestFetchErrorOnMissingTable(t *testing.T) {
	s := NewStore(openDB(t, nil), time.Second)

	_, err := s.Trials(context.Background(), "abc")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, CategoryTrials, fe.Category)
	assert.Equal(t, "abc", fe.CWID)
	assert.Contains(t, err.Error(), "fetching clinical-trials for abc")
}

func TestOpenRequiresDSNForSQLite(t *testing.T) {
	_, err := Open(types.DatabaseConfig{Driver: "sqlite3"})
	assert.Error(t, err)

	s, err := Open(types.DatabaseConfig{Driver: "sqlite3", DSN: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(context.Background()))
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(types.DatabaseConfig{Host: "db.example.org", User: "reader", Password: "p@ss:word", Name: "reciterdb"})

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "reader", cfg.User)
	assert.Equal(t, "p@ss:word", cfg.Passwd)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "db.example.org:3306", cfg.Addr)
	assert.Equal(t, "reciterdb", cfg.DBName)

	cfg, err = mysql.ParseDSN(MySQLDSN(types.DatabaseConfig{Host: "10.0.0.5:3307", Name: "r"}))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:3307", cfg.Addr)
}

type fakeSource struct {
	fail map[string]bool
}

var errBoom = errors.New("boom")

func (f fakeSource) Publications(_ context.Context, cwid string) ([]types.Publication, error) {
	if f.fail[CategoryPublications] {
		return []types.Publication{{PMID: 9}}, &FetchError{Category: CategoryPublications, CWID: cwid, Err: errBoom}
	}
	return []types.Publication{{PMID: 1}, {PMID: 2}}, nil
}

func (f fakeSource) Grants(_ context.Context, cwid string) ([]types.Grant, error) {
	if f.fail[CategoryGrants] {
		return nil, &FetchError{Category: CategoryGrants, CWID: cwid, Err: errBoom}
	}
	return []types.Grant{{types.GrantID: "g"}}, nil
}

func (f fakeSource) Specialties(_ context.Context, cwid string) ([]types.ClinicalSpecialty, error) {
	if f.fail[CategorySpecialties] {
		return nil, &FetchError{Category: CategorySpecialties, CWID: cwid, Err: errBoom}
	}
	return []types.ClinicalSpecialty{{MeshTerm: "Oncology"}}, nil
}

func (f fakeSource) Trials(_ context.Context, cwid string) ([]types.ClinicalTrial, error) {
	if f.fail[CategoryTrials] {
		return nil, &FetchError{Category: CategoryTrials, CWID: cwid, Err: errBoom}
	}
	return []types.ClinicalTrial{{NCTNumber: "NCT01"}}, nil
}

func TestLoadCandidates(t *testing.T) {
	logger, hook := test.NewNullLogger()

	c := LoadCandidates(context.Background(), fakeSource{}, "abc", logger)
	assert.Len(t, c.Publications, 2)
	assert.Len(t, c.Grants, 1)
	assert.Len(t, c.Specialties, 1)
	assert.Len(t, c.Trials, 1)
	assert.Empty(t, c.Errors)
	assert.Empty(t, hook.AllEntries())
}

func TestLoadCandidatesDegradesPerCategory(t *testing.T) {
	logger, hook := test.NewNullLogger()

	src := fakeSource{fail: map[string]bool{CategoryPublications: true, CategoryGrants: true}}
	c := LoadCandidates(context.Background(), src, "abc", logger)

	assert.Empty(t, c.Publications, "a failed category is empty even if rows were returned")
	assert.Empty(t, c.Grants)
	assert.Len(t, c.Specialties, 1, "other categories are unaffected")
	assert.Len(t, c.Trials, 1)

	require.Len(t, c.Errors, 2)
	assert.ErrorIs(t, c.Errors[CategoryGrants], errBoom)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	categories := []any{entries[0].Data["category"], entries[1].Data["category"]}
	assert.ElementsMatch(t, []any{CategoryPublications, CategoryGrants}, categories)
}
