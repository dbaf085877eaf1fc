// Package profile holds the profile document model and its text derivations.
package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/talentmesh/profilesearch/internal/domain"
)

// Profile is one user's profile record. Fields is an open schema: new keys
// appear without any code change here or in the normalizer.
type Profile struct {
	UserID string
	Fields map[string]any
}

// NormalizedText returns the flat search-indexable text for the profile.
// An empty result means the profile is not indexable.
func (p Profile) NormalizedText() string {
	return Normalize(p.Fields)
}

// TextVersion derives a content version tag from normalized text.
// Embedding records carry it so staleness is detectable without re-embedding.
func TextVersion(normalizedText string) string {
	h := sha256.Sum256([]byte(normalizedText))
	return hex.EncodeToString(h[:6])
}

// EmbeddingRecord is the persisted embedding for one profile.
type EmbeddingRecord struct {
	UserID     string
	Vector     []float32
	SourceText string
	Version    string
}

// Validate checks the record against the configured vector dimensionality.
// A record failing this is corrupt and must be purged.
func (r EmbeddingRecord) Validate(dim int) error {
	if r.UserID == "" {
		return fmt.Errorf("embedding record without user id")
	}
	if len(r.Vector) != dim {
		return fmt.Errorf("user %s: got %d dimensions, want %d: %w",
			r.UserID, len(r.Vector), dim, domain.ErrVectorDimMismatch)
	}
	return nil
}
