// Package health aggregates component checks into one service health report.
package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/domain/search/query"
)

// probeQuery is a representative search exercised by the latency probe.
const probeQuery = "software engineer"

// probeTimeout bounds the probe so a slow provider cannot hang health checks.
const probeTimeout = 5 * time.Second

// Statuses reported per component and overall.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Report is the aggregated health snapshot.
type Report struct {
	Status            string        `json:"status"`
	EmbeddingProvider string        `json:"embeddingProvider"`
	EmbeddingError    string        `json:"embeddingError,omitempty"`
	IndexedProfiles   int           `json:"indexedProfiles"`
	LexicalDocuments  int           `json:"lexicalDocuments"`
	LastIndexUpdate   time.Time     `json:"lastIndexUpdate"`
	ProbeLatency      time.Duration `json:"probeLatencyMs"`
	ProbeError        string        `json:"probeError,omitempty"`
}

// Service aggregates health checks.
type Service struct {
	checker  embeddingChecker
	index    indexStats
	lexicon  lexiconStats
	searcher searcher
	logger   *zap.Logger
}

// New creates the health service.
func New(checker embeddingChecker, index indexStats, lexicon lexiconStats, searcher searcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{checker: checker, index: index, lexicon: lexicon, searcher: searcher, logger: logger}
}

// Check runs all component checks. A degraded report is still returned with
// every field populated so operators see which component is failing.
func (s *Service) Check(ctx context.Context) Report {
	rep := Report{
		Status:            StatusHealthy,
		EmbeddingProvider: StatusHealthy,
		IndexedProfiles:   s.index.Count(),
		LexicalDocuments:  s.lexicon.Count(),
		LastIndexUpdate:   s.lexicon.LastUpdated(),
	}

	if err := s.checker.HealthCheck(ctx); err != nil {
		s.logger.Warn("embedding provider health check failed", zap.Error(err))
		rep.Status = StatusDegraded
		rep.EmbeddingProvider = StatusDegraded
		rep.EmbeddingError = err.Error()
		// The probe would fail on query embedding anyway, skip it.
		return rep
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	q, err := query.New(probeQuery, query.WithLimit(1))
	if err != nil {
		rep.Status = StatusDegraded
		rep.ProbeError = err.Error()
		return rep
	}

	start := time.Now()
	if _, err := s.searcher.SearchProfiles(probeCtx, q); err != nil {
		s.logger.Warn("search probe failed", zap.Error(err))
		rep.Status = StatusDegraded
		rep.ProbeError = err.Error()
		return rep
	}
	rep.ProbeLatency = time.Since(start)
	return rep
}
