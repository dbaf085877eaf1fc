// Package vector scores stored profile vectors against a query vector.
package vector

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/domain"
	domprofile "github.com/talentmesh/profilesearch/internal/domain/profile"
)

// Cosine returns the cosine similarity of two vectors, clamped to [-1, 1] to
// absorb floating-point drift. A zero-norm operand yields 0, not NaN.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("got %d and %d dimensions: %w", len(a), len(b), domain.ErrVectorDimMismatch)
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, sim)), nil
}

// Scored is one candidate with its raw similarity, floored at 0 for ranking.
type Scored struct {
	UserID     string
	Similarity float64
}

// Scorer ranks embedding records by cosine similarity to a query vector.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer creates a scorer.
func NewScorer(logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{logger: logger}
}

// Score computes similarities for all candidates, sorted descending.
// Records whose dimensionality does not match the query vector are corrupt:
// they are skipped with a warning rather than aborting the whole scan.
func (s *Scorer) Score(queryVector []float32, records []domprofile.EmbeddingRecord) []Scored {
	scored := make([]Scored, 0, len(records))
	for _, rec := range records {
		sim, err := Cosine(queryVector, rec.Vector)
		if err != nil {
			s.logger.Warn("skipping candidate with mismatched vector",
				zap.String("user_id", rec.UserID),
				zap.Int("got_dimensions", len(rec.Vector)),
				zap.Int("want_dimensions", len(queryVector)),
			)
			continue
		}
		scored = append(scored, Scored{UserID: rec.UserID, Similarity: math.Max(0, sim)})
	}

	sort.Slice(scored, func(a, b int) bool {
		if scored[a].Similarity != scored[b].Similarity {
			return scored[a].Similarity > scored[b].Similarity
		}
		return scored[a].UserID < scored[b].UserID
	})
	return scored
}
