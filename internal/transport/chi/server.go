// Package chi implements the HTTP API over the search, index, and health
// services.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/domain"
	domprofile "github.com/talentmesh/profilesearch/internal/domain/profile"
	"github.com/talentmesh/profilesearch/internal/domain/search/query"
	"github.com/talentmesh/profilesearch/internal/domain/search/result"
	healthuc "github.com/talentmesh/profilesearch/internal/usecase/health"
)

// searchService runs plain and intelligent searches.
type searchService interface {
	SearchProfiles(ctx context.Context, q query.Query) (result.Response, error)
	IntelligentSearch(ctx context.Context, q query.Query, userContext string) (result.Response, error)
}

// profileService manages profile records and their indexes.
type profileService interface {
	UpsertProfile(ctx context.Context, p domprofile.Profile) error
	GetProfile(ctx context.Context, userID string) (domprofile.Profile, error)
	RemoveProfile(ctx context.Context, userID string) error
}

// healthService aggregates component health.
type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the HTTP API.
type Server struct {
	search        searchService
	profiles      profileService
	health        healthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search searchService, profiles profileService, health healthService, logger *zap.Logger) *Server {
	s := &Server{
		search:   search,
		profiles: profiles,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrProfileNotFound, http.StatusNotFound, codeProfileNotFound),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingFailed, http.StatusBadGateway, codeEmbeddingError),
		sentinelHandler(domain.ErrCompletionFailed, http.StatusBadGateway, codeCompletionError),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusServiceUnavailable, codeUnavailable),
	}
	return s
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Post("/search/intelligent", s.IntelligentSearch)
		r.Route("/profiles/{userId}", func(r chi.Router) {
			r.Put("/", s.UpsertProfile)
			r.Get("/", s.GetProfile)
			r.Delete("/", s.DeleteProfile)
		})
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := req.toQuery()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.SearchProfiles(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromDomain(resp))
}

// IntelligentSearch handles POST /api/v1/search/intelligent.
func (s *Server) IntelligentSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := req.toQuery()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.IntelligentSearch(r.Context(), q, req.UserContext)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromDomain(resp))
}

// UpsertProfile handles PUT /api/v1/profiles/{userId}. The body is the raw
// profile field object. A profile without indexable content is stored and
// reported as not indexed rather than rejected.
func (s *Server) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	err := s.profiles.UpsertProfile(r.Context(), domprofile.Profile{UserID: userID, Fields: fields})
	if errors.Is(err, domain.ErrNotIndexable) {
		writeJSON(w, http.StatusOK, upsertResponse{
			UserID: userID,
			Reason: domain.ErrNotIndexable.Error(),
		})
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, upsertResponse{UserID: userID, Indexed: true})
}

// GetProfile handles GET /api/v1/profiles/{userId}.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	p, err := s.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{UserID: p.UserID, Profile: p.Fields})
}

// DeleteProfile handles DELETE /api/v1/profiles/{userId}.
func (s *Server) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if err := s.profiles.RemoveProfile(r.Context(), userID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.StatusHealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrProfileNotFound,
		domain.ErrNotIndexable,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingFailed,
		domain.ErrCompletionFailed,
		domain.ErrSearchUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
