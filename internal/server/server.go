// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes researcher facts, summary generation and the
// session history over HTTP. Responses are JSON; errors carry an "error"
// field.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/pdiddy/research-summary/internal/facts"
	"github.com/pdiddy/research-summary/internal/history"
	"github.com/pdiddy/research-summary/internal/summary"
	"github.com/pdiddy/research-summary/pkg/types"
)

// maxBodyBytes bounds the generate-summary request body.
const maxBodyBytes = 4 << 20

// FactSource reads researcher facts. facts.Store implements it.
type FactSource interface {
	SearchResearchers(ctx context.Context, query string) ([]types.Researcher, error)
	facts.Source
}

// HistoryLister reads the durable generation log. history.Store implements it.
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]types.GenerationRecord, error)
}

// Server routes HTTP requests to the fact source and the summary service.
type Server struct {
	facts FactSource
	svc   *summary.Service
	log   logrus.FieldLogger

	// store is optional; without it /api/history?scope=all is unavailable.
	store HistoryLister

	mux *http.ServeMux
	now func() time.Time
}

// New returns a Server with its routes registered.
func New(src FactSource, svc *summary.Service, store HistoryLister, log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	s := &Server{
		facts: src,
		svc:   svc,
		store: store,
		log:   log,
		mux:   http.NewServeMux(),
		now:   time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/search-researchers", s.handleSearch)
	s.mux.HandleFunc("GET /api/publications", s.handlePublications)
	s.mux.HandleFunc("GET /api/grants", s.handleGrants)
	s.mux.HandleFunc("GET /api/clinical-specialties", s.handleSpecialties)
	s.mux.HandleFunc("GET /api/clinical-trials", s.handleTrials)
	s.mux.HandleFunc("GET /api/candidates", s.handleCandidates)
	s.mux.HandleFunc("POST /api/generate-summary", s.handleGenerate)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/history/export", s.handleExport)
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.WithField("addr", addr).Info("listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	researchers, err := s.facts.SearchResearchers(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		s.fetchFailed(w, err, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, researchers)
}

func (s *Server) handlePublications(w http.ResponseWriter, r *http.Request) {
	cwid := r.URL.Query().Get("personIdentifier")
	if cwid == "" {
		writeError(w, http.StatusBadRequest, "Missing personIdentifier")
		return
	}
	pubs, err := s.facts.Publications(r.Context(), cwid)
	if err != nil {
		s.fetchFailed(w, err, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(pubs))
}

func (s *Server) handleGrants(w http.ResponseWriter, r *http.Request) {
	cwid, ok := requireCWID(w, r)
	if !ok {
		return
	}
	grants, err := s.facts.Grants(r.Context(), cwid)
	if err != nil {
		s.fetchFailed(w, err, "Failed to fetch grants")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(grants))
}

func (s *Server) handleSpecialties(w http.ResponseWriter, r *http.Request) {
	cwid, ok := requireCWID(w, r)
	if !ok {
		return
	}
	specs, err := s.facts.Specialties(r.Context(), cwid)
	if err != nil {
		s.fetchFailed(w, err, "Failed to fetch clinical specialties")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(specs))
}

func (s *Server) handleTrials(w http.ResponseWriter, r *http.Request) {
	cwid, ok := requireCWID(w, r)
	if !ok {
		return
	}
	trials, err := s.facts.Trials(r.Context(), cwid)
	if err != nil {
		s.fetchFailed(w, err, "Failed to fetch clinical trials")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(trials))
}

type candidatesResponse struct {
	Publications []types.Publication       `json:"publications"`
	Grants       []types.Grant             `json:"grants"`
	Specialties  []types.ClinicalSpecialty `json:"specialties"`
	Trials       []types.ClinicalTrial     `json:"trials"`
	Errors       map[string]string         `json:"errors,omitempty"`
}

// handleCandidates loads all four categories at once. A failing category
// is reported in "errors" and returned empty.
func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	cwid, ok := requireCWID(w, r)
	if !ok {
		return
	}
	c := facts.LoadCandidates(r.Context(), s.facts, cwid, s.log)
	resp := candidatesResponse{
		Publications: nonNil(c.Publications),
		Grants:       nonNil(c.Grants),
		Specialties:  nonNil(c.Specialties),
		Trials:       nonNil(c.Trials),
	}
	if len(c.Errors) > 0 {
		resp.Errors = make(map[string]string, len(c.Errors))
		for category, err := range c.Errors {
			resp.Errors[category] = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// generateRequest is the body of POST /api/generate-summary.
type generateRequest struct {
	CWID           string `json:"cwid"`
	ResearcherName string `json:"researcherName"`

	SelectedPublications []types.Publication       `json:"selectedPublications"`
	SelectedGrants       []map[string]any          `json:"selectedGrants"`
	SelectedSpecialties  []types.ClinicalSpecialty `json:"selectedSpecialties"`
	SelectedTrials       []types.ClinicalTrial     `json:"selectedTrials"`

	types.GenerationRequest
}

// selection converts the body into a Selection. Grant values of any JSON
// type are rendered as strings; null values are dropped.
func (g generateRequest) selection() types.Selection {
	sel := types.Selection{
		Publications: g.SelectedPublications,
		Specialties:  g.SelectedSpecialties,
		Trials:       g.SelectedTrials,
	}
	if g.CWID != "" {
		given, surname := splitName(g.ResearcherName)
		sel.Researcher = &types.Researcher{CWID: g.CWID, GivenName: given, Surname: surname}
	}
	for _, raw := range g.SelectedGrants {
		grant := make(types.Grant, len(raw))
		for k, v := range raw {
			if v != nil {
				grant[k] = cast.ToString(v)
			}
		}
		sel.Grants = append(sel.Grants, grant)
	}
	return sel
}

// splitName splits "Given Names Surname" at the last space.
func splitName(full string) (given, surname string) {
	full = strings.TrimSpace(full)
	i := strings.LastIndex(full, " ")
	if i < 0 {
		return "", full
	}
	return strings.TrimSpace(full[:i]), full[i+1:]
}

type generateResponse struct {
	Summary  string                 `json:"summary"`
	Record   types.GenerationRecord `json:"record"`
	Warning  string                 `json:"warning,omitempty"`
	Provider types.Provider         `json:"provider"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := s.svc.Generate(r.Context(), body.selection(), body.GenerationRequest)
	var pe *summary.ProviderError
	switch {
	case err == nil:
	case errors.Is(err, summary.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.As(err, &pe):
		writeError(w, http.StatusBadGateway, "Failed to generate summary")
		return
	default:
		s.log.WithError(err).Error("generate summary")
		writeError(w, http.StatusInternalServerError, "Failed to generate summary")
		return
	}

	resp := generateResponse{Summary: res.Record.GeneratedText, Record: res.Record, Provider: res.Record.Provider}
	if res.Warning != nil {
		resp.Warning = res.Warning.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHistory returns the session ledger, or with scope=all the durable
// log (newest first, optional limit).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("scope") != "all" {
		writeJSON(w, http.StatusOK, nonNil(s.svc.Ledger().Records()))
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, "History log is not configured")
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.log.WithError(err).Error("list history")
		writeError(w, http.StatusInternalServerError, "Failed to read history")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recs))
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+history.ExportFilename(s.now())+`"`)
	if err := history.WriteCSV(w, s.svc.Ledger().Entries()); err != nil {
		s.log.WithError(err).Warn("export history")
	}
}

func (s *Server) fetchFailed(w http.ResponseWriter, err error, msg string) {
	s.log.WithError(err).Error(msg)
	writeError(w, http.StatusInternalServerError, msg)
}

func requireCWID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cwid := r.URL.Query().Get("cwid")
	if cwid == "" {
		writeError(w, http.StatusBadRequest, "Missing cwid parameter")
		return "", false
	}
	return cwid, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
