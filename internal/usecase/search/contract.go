package search

import (
	"context"

	domprofile "github.com/talentmesh/profilesearch/internal/domain/profile"
	"github.com/talentmesh/profilesearch/internal/domain/search/result"
	"github.com/talentmesh/profilesearch/internal/lexical"
	"github.com/talentmesh/profilesearch/internal/usecase/enhance"
	"github.com/talentmesh/profilesearch/internal/vector"
)

// lexicon is the consumer interface over the BM25 index (ISP).
type lexicon interface {
	Search(query string, limit int) []lexical.Hit
}

// vectorSource provides the in-memory embedding record mirror.
type vectorSource interface {
	Records() []domprofile.EmbeddingRecord
	Record(userID string) (domprofile.EmbeddingRecord, bool)
}

// scorer ranks embedding records against a query vector.
type scorer interface {
	Score(queryVector []float32, records []domprofile.EmbeddingRecord) []vector.Scored
}

// profileReader fetches stored profiles for result assembly.
type profileReader interface {
	Get(ctx context.Context, userID string) (domprofile.Profile, error)
}

// enhancer is the LLM stage contract. Both methods degrade internally and
// never fail the search.
type enhancer interface {
	EnhanceQuery(ctx context.Context, query, userContext string) enhance.Enhancement
	Rerank(ctx context.Context, query, userContext string, items []result.RankedProfile) []result.RankedProfile
}
