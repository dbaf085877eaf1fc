package health

import (
	"context"
	"time"

	"github.com/talentmesh/profilesearch/internal/domain/search/query"
	"github.com/talentmesh/profilesearch/internal/domain/search/result"
)

// embeddingChecker verifies embedding provider availability.
type embeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// indexStats exposes searchable-state counters.
type indexStats interface {
	Count() int
}

// lexiconStats exposes BM25 index freshness.
type lexiconStats interface {
	Count() int
	LastUpdated() time.Time
}

// searcher runs the latency probe query.
type searcher interface {
	SearchProfiles(ctx context.Context, q query.Query) (result.Response, error)
}
