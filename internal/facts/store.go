// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package facts reads researcher facts from the reporting database. All
// queries are read-only and parameterized; publication and specialty scores
// are computed in Go after the rows are read.
package facts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cast"

	"github.com/pdiddy/research-summary/internal/scoring"
	"github.com/pdiddy/research-summary/pkg/types"
)

// Fact categories, used in FetchError and log fields.
const (
	CategoryResearchers  = "researchers"
	CategoryPublications = "publications"
	CategoryGrants       = "grants"
	CategorySpecialties  = "clinical-specialties"
	CategoryTrials       = "clinical-trials"
)

const (
	defaultDriver       = "mysql"
	defaultMySQLPort    = "3306"
	defaultQueryTimeout = 30 * time.Second
	searchLimit         = 20
)

// ErrNotFound is returned by Researcher when no row matches.
var ErrNotFound = errors.New("researcher not found")

// FetchError reports a failed read of one fact category.
type FetchError struct {
	Category string
	CWID     string
	Err      error
}

func (e *FetchError) Error() string {
	if e.CWID == "" {
		return fmt.Sprintf("fetching %s: %v", e.Category, e.Err)
	}
	return fmt.Sprintf("fetching %s for %s: %v", e.Category, e.CWID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Store reads facts through database/sql.
type Store struct {
	db      *sql.DB
	timeout time.Duration

	// now supplies the current year for publication scoring.
	now func() time.Time
}

// Open connects to the database described by cfg. The driver defaults to
// mysql; when cfg.DSN is empty a MySQL DSN is assembled from the other
// fields.
func Open(cfg types.DatabaseConfig) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = defaultDriver
	}
	dsn := cfg.DSN
	if dsn == "" {
		if driver != "mysql" {
			return nil, fmt.Errorf("database dsn is required for driver %s", driver)
		}
		dsn = MySQLDSN(cfg)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	return NewStore(db, cfg.QueryTimeout), nil
}

// NewStore wraps an open database. A timeout of zero or less means 30s.
func NewStore(db *sql.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Store{db: db, timeout: timeout, now: time.Now}
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// MySQLDSN assembles a DSN from the discrete connection fields. A host
// without a port gets 3306.
func MySQLDSN(cfg types.DatabaseConfig) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.DBName = cfg.Name
	c.Addr = cfg.Host
	if c.Addr == "" {
		c.Addr = "127.0.0.1"
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		c.Addr = net.JoinHostPort(c.Addr, defaultMySQLPort)
	}
	if cfg.QueryTimeout > 0 {
		c.ReadTimeout = cfg.QueryTimeout
	}
	return c.FormatDSN()
}

// SearchResearchers returns up to 20 full-time faculty whose surname, given
// name or CWID starts with query. An empty query returns no rows.
func (s *Store) SearchResearchers(ctx context.Context, query string) ([]types.Researcher, error) {
	researchers := []types.Researcher{}
	if query == "" {
		return researchers, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prefix := query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT cwid, surname, givenName FROM identity
		WHERE fullTimeFaculty = 'yes' AND (surname LIKE ? OR givenName LIKE ? OR cwid LIKE ?)
		ORDER BY surname, givenName
		LIMIT ?`,
		prefix, prefix, prefix, searchLimit)
	if err != nil {
		return nil, &FetchError{Category: CategoryResearchers, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r           types.Researcher
			surname, gn sql.NullString
		)
		if err := rows.Scan(&r.CWID, &surname, &gn); err != nil {
			return nil, &FetchError{Category: CategoryResearchers, Err: err}
		}
		r.Surname, r.GivenName = surname.String, gn.String
		researchers = append(researchers, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &FetchError{Category: CategoryResearchers, Err: err}
	}
	return researchers, nil
}

// Researcher returns the identity row for cwid.
func (s *Store) Researcher(ctx context.Context, cwid string) (*types.Researcher, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		r           = types.Researcher{CWID: cwid}
		surname, gn sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT surname, givenName FROM identity WHERE cwid = ?`, cwid,
	).Scan(&surname, &gn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &FetchError{Category: CategoryResearchers, CWID: cwid, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &FetchError{Category: CategoryResearchers, CWID: cwid, Err: err}
	}
	r.Surname, r.GivenName = surname.String, gn.String
	return &r, nil
}

// Publications returns the researcher's authored articles, scored and
// ranked by descending significance. A PMID appears at most once.
func (s *Store) Publications(ctx context.Context, cwid string) ([]types.Publication, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT a.pmid, a.authorPosition, r.articleTitle, r.articleYear, r.publicationTypeCanonical,
			r.doi, r.percentileNIH, r.journalImpactScore2, b.abstractVarchar
		FROM analysis_summary_author a
		JOIN analysis_summary_article r ON r.pmid = a.pmid
		LEFT JOIN reporting_abstracts b ON b.pmid = a.pmid AND b.abstractVarchar != ''
		WHERE a.personIdentifier = ?
		ORDER BY a.pmid, b.abstractVarchar`, cwid)
	if err != nil {
		return nil, &FetchError{Category: CategoryPublications, CWID: cwid, Err: err}
	}
	defer rows.Close()

	seen := make(map[int]bool)
	var pubs []types.Publication
	for rows.Next() {
		var (
			p                             types.Publication
			position, title, pubType, doi sql.NullString
			abstract                      sql.NullString
			year                          sql.NullInt64
			percentile, impact            sql.NullFloat64
		)
		if err := rows.Scan(&p.PMID, &position, &title, &year, &pubType, &doi,
			&percentile, &impact, &abstract); err != nil {
			return nil, &FetchError{Category: CategoryPublications, CWID: cwid, Err: err}
		}
		if seen[p.PMID] {
			continue
		}
		seen[p.PMID] = true

		p.AuthorPosition = position.String
		p.Title = title.String
		p.Year = int(year.Int64)
		p.Type = pubType.String
		p.DOI = doi.String
		p.Abstract = abstract.String
		if percentile.Valid {
			p.PercentileNIH = &percentile.Float64
		}
		if impact.Valid {
			p.JournalImpactScore = &impact.Float64
		}
		pubs = append(pubs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &FetchError{Category: CategoryPublications, CWID: cwid, Err: err}
	}
	return scoring.RankPublications(pubs, s.now().Year()), nil
}

// Grants returns every sponsor record of the researcher, newest first.
// Columns are read dynamically; NULL columns are left out of the record.
func (s *Store) Grants(ctx context.Context, cwid string) ([]types.Grant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT * FROM reporting_infoed_all_cleaned WHERE cwid = ? ORDER BY begin_date DESC, end_date DESC`, cwid)
	if err != nil {
		return nil, &FetchError{Category: CategoryGrants, CWID: cwid, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &FetchError{Category: CategoryGrants, CWID: cwid, Err: err}
	}

	var grants []types.Grant
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &FetchError{Category: CategoryGrants, CWID: cwid, Err: err}
		}

		g := make(types.Grant, len(cols))
		for i, col := range cols {
			if v, ok := columnString(values[i]); ok {
				g[col] = v
			}
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, &FetchError{Category: CategoryGrants, CWID: cwid, Err: err}
	}
	return grants, nil
}

// columnString renders a scanned column value. Dates render as YYYY-MM-DD.
// It reports false for NULL.
func columnString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case time.Time:
		return t.Format("2006-01-02"), true
	default:
		return cast.ToString(v), true
	}
}

// SpecialtyFacts returns the raw clinical specialty rows of the researcher.
func (s *Store) SpecialtyFacts(ctx context.Context, cwid string) ([]types.SpecialtyFact, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT cwid, specialtyName, isPrimary FROM pops_specialties
		WHERE cwid = ? AND specialtyName IS NOT NULL`, cwid)
	if err != nil {
		return nil, &FetchError{Category: CategorySpecialties, CWID: cwid, Err: err}
	}
	defer rows.Close()

	var facts []types.SpecialtyFact
	for rows.Next() {
		var (
			f       types.SpecialtyFact
			primary sql.NullInt64
		)
		if err := rows.Scan(&f.ResearcherID, &f.MeshTerm, &primary); err != nil {
			return nil, &FetchError{Category: CategorySpecialties, CWID: cwid, Err: err}
		}
		f.IsPrimary = int(primary.Int64)
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, &FetchError{Category: CategorySpecialties, CWID: cwid, Err: err}
	}
	return facts, nil
}

// Specialties returns the aggregated clinical specialties of the researcher
// ranked by descending best-match score.
func (s *Store) Specialties(ctx context.Context, cwid string) ([]types.ClinicalSpecialty, error) {
	facts, err := s.SpecialtyFacts(ctx, cwid)
	if err != nil {
		return nil, err
	}
	return scoring.AggregateSpecialties(facts), nil
}

// Trials returns the researcher's clinical trials joined with their details.
func (s *Store) Trials(ctx context.Context, cwid string) ([]types.ClinicalTrial, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.cwid, c.title, c.protocolType, c.nctNumber, c.overallCurrentStatus, c.phases, d.briefSummary
		FROM clinical_trials c
		LEFT JOIN clinical_trials_details d ON c.nctNumber = d.nctNumber
		WHERE c.cwid = ?`, cwid)
	if err != nil {
		return nil, &FetchError{Category: CategoryTrials, CWID: cwid, Err: err}
	}
	defer rows.Close()

	var trials []types.ClinicalTrial
	for rows.Next() {
		var (
			t                                      types.ClinicalTrial
			title, protocol, status, phases, brief sql.NullString
		)
		if err := rows.Scan(&t.ResearcherID, &title, &protocol, &t.NCTNumber, &status, &phases, &brief); err != nil {
			return nil, &FetchError{Category: CategoryTrials, CWID: cwid, Err: err}
		}
		t.Title = title.String
		t.ProtocolType = protocol.String
		t.OverallStatus = status.String
		t.Phases = phases.String
		t.BriefSummary = brief.String
		trials = append(trials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &FetchError{Category: CategoryTrials, CWID: cwid, Err: err}
	}
	return trials, nil
}
