package index

import (
	"context"

	domprofile "github.com/talentmesh/profilesearch/internal/domain/profile"
)

// profileStore is the consumer interface for profile persistence (ISP).
type profileStore interface {
	Put(ctx context.Context, p domprofile.Profile) error
	Get(ctx context.Context, userID string) (domprofile.Profile, error)
	Delete(ctx context.Context, userID string) error
}

// embeddingStore is the consumer interface for embedding persistence (ISP).
type embeddingStore interface {
	Put(ctx context.Context, rec domprofile.EmbeddingRecord) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]domprofile.EmbeddingRecord, error)
}

// lexicon is the consumer interface over the BM25 index.
type lexicon interface {
	Build(documents map[string]string)
	Update(userID, text string)
	Remove(userID string)
}
