// Package index maintains the searchable state for profiles: the persisted
// profile and embedding records, the in-memory vector mirror, and the BM25
// index. All profile writes flow through here so the three stay consistent.
package index

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/domain"
	domprofile "github.com/talentmesh/profilesearch/internal/domain/profile"
)

// Service owns profile indexing. Embedding records are mirrored in memory so
// vector scoring never touches the store on the search path; redis remains
// the source of truth and the mirror is rebuilt from it at startup.
type Service struct {
	profiles   profileStore
	embeddings embeddingStore
	embedder   domain.Embedder
	lexicon    lexicon
	logger     *zap.Logger

	mu      sync.RWMutex
	records map[string]domprofile.EmbeddingRecord
}

// New creates the indexing service.
func New(
	profiles profileStore,
	embeddings embeddingStore,
	embedder domain.Embedder,
	lexicon lexicon,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		profiles:   profiles,
		embeddings: embeddings,
		embedder:   embedder,
		lexicon:    lexicon,
		logger:     logger,
		records:    make(map[string]domprofile.EmbeddingRecord),
	}
}

// UpsertProfile stores the profile and refreshes its searchable state.
// A profile that normalizes to empty text is stored but removed from the
// indexes, and ErrNotIndexable is returned so the caller can surface it.
// When the normalized text is unchanged since the last upsert, the embedding
// call is skipped entirely.
func (s *Service) UpsertProfile(ctx context.Context, p domprofile.Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("upsert profile: missing user id")
	}

	if err := s.profiles.Put(ctx, p); err != nil {
		return fmt.Errorf("store profile %s: %w", p.UserID, err)
	}

	text := p.NormalizedText()
	if text == "" {
		s.deindex(ctx, p.UserID)
		return fmt.Errorf("profile %s has no indexable content: %w", p.UserID, domain.ErrNotIndexable)
	}

	version := domprofile.TextVersion(text)
	if existing, ok := s.record(p.UserID); ok && existing.Version == version {
		s.logger.Debug("profile text unchanged, skipping embedding",
			zap.String("user_id", p.UserID), zap.String("version", version))
		return nil
	}

	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed profile %s: %w", p.UserID, err)
	}

	rec := domprofile.EmbeddingRecord{
		UserID:     p.UserID,
		Vector:     res.Embedding,
		SourceText: text,
		Version:    version,
	}
	if err := s.embeddings.Put(ctx, rec); err != nil {
		return fmt.Errorf("store embedding %s: %w", p.UserID, err)
	}

	s.mu.Lock()
	s.records[p.UserID] = rec
	s.mu.Unlock()
	s.lexicon.Update(p.UserID, text)

	s.logger.Info("profile indexed",
		zap.String("user_id", p.UserID),
		zap.String("version", version),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return nil
}

// GetProfile returns a stored profile.
func (s *Service) GetProfile(ctx context.Context, userID string) (domprofile.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

// RemoveProfile deletes the profile and all its searchable state. Removing an
// absent profile is not an error.
func (s *Service) RemoveProfile(ctx context.Context, userID string) error {
	if err := s.profiles.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete profile %s: %w", userID, err)
	}
	s.deindex(ctx, userID)
	return nil
}

// deindex removes a user's embedding and lexical entries. Store failures are
// logged, not returned: the in-memory state is already consistent and the
// orphaned record will be purged on the next rebuild.
func (s *Service) deindex(ctx context.Context, userID string) {
	if err := s.embeddings.Delete(ctx, userID); err != nil {
		s.logger.Warn("failed to delete embedding record",
			zap.String("user_id", userID), zap.Error(err))
	}
	s.mu.Lock()
	delete(s.records, userID)
	s.mu.Unlock()
	s.lexicon.Remove(userID)
}

// Rebuild reloads the vector mirror and BM25 index from persisted embedding
// records. Corrupt records are purged by the store layer during the scan.
func (s *Service) Rebuild(ctx context.Context) error {
	recs, err := s.embeddings.List(ctx)
	if err != nil {
		return fmt.Errorf("rebuild indexes: %w", err)
	}

	records := make(map[string]domprofile.EmbeddingRecord, len(recs))
	documents := make(map[string]string, len(recs))
	for _, rec := range recs {
		records[rec.UserID] = rec
		documents[rec.UserID] = rec.SourceText
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	s.lexicon.Build(documents)

	s.logger.Info("indexes rebuilt", zap.Int("profiles", len(records)))
	return nil
}

// Records returns a snapshot of all embedding records for vector scoring.
func (s *Service) Records() []domprofile.EmbeddingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domprofile.EmbeddingRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out
}

// Record returns the embedding record for one user.
func (s *Service) Record(userID string) (domprofile.EmbeddingRecord, bool) {
	return s.record(userID)
}

func (s *Service) record(userID string) (domprofile.EmbeddingRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID]
	return rec, ok
}

// Count returns the number of indexed profiles.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
