package search

import (
	"math"
	"testing"

	"github.com/talentmesh/profilesearch/internal/domain/search/policy"
	"github.com/talentmesh/profilesearch/internal/domain/search/query"
	"github.com/talentmesh/profilesearch/internal/lexical"
	"github.com/talentmesh/profilesearch/internal/vector"
)

func mustQuery(t *testing.T, text string, opts ...query.Option) query.Query {
	t.Helper()
	q, err := query.New(text, opts...)
	if err != nil {
		t.Fatalf("query.New(%q) failed: %v", text, err)
	}
	return q
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFuse_NormalizationAndWeights(t *testing.T) {
	q := mustQuery(t, "golang engineer")
	pol := policy.Default()

	vecScored := []vector.Scored{
		{UserID: "u1", Similarity: 0.8},
		{UserID: "u2", Similarity: 0.4},
	}
	lexHits := []lexical.Hit{
		{UserID: "u2", Score: 10},
		{UserID: "u1", Score: 5},
	}

	got := fuse(vecScored, lexHits, q, pol, false)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	// Semantic weights 0.7/0.3 over max-normalized scores:
	// u1 = 0.7*(0.8/0.8) + 0.3*(5/10) = 0.85
	// u2 = 0.7*(0.4/0.8) + 0.3*(10/10) = 0.65
	if got[0].UserID != "u1" || !approx(got[0].HybridScore, 0.85) {
		t.Errorf("unexpected first candidate %+v", got[0])
	}
	if got[1].UserID != "u2" || !approx(got[1].HybridScore, 0.65) {
		t.Errorf("unexpected second candidate %+v", got[1])
	}

	// Raw scores pass through unnormalized.
	if got[0].VectorScore != 0.8 || got[0].LexicalScore != 5 {
		t.Errorf("raw scores must be preserved: %+v", got[0])
	}
}

func TestFuse_ExactTermWeights(t *testing.T) {
	q := mustQuery(t, "Kubernetes")
	pol := policy.Default()

	got := fuse(
		[]vector.Scored{{UserID: "u1", Similarity: 0.5}},
		[]lexical.Hit{{UserID: "u1", Score: 4}},
		q, pol, true,
	)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	// Exact weights 0.3/0.7, both scores are their own max.
	if !approx(got[0].HybridScore, 1.0) {
		t.Errorf("expected hybrid 1.0, got %v", got[0].HybridScore)
	}
}

func TestFuse_MinSimilarityGate(t *testing.T) {
	q := mustQuery(t, "golang engineer", query.WithMinSimilarity(0.9))
	pol := policy.Default()

	got := fuse(
		[]vector.Scored{
			{UserID: "u1", Similarity: 0.8}, // norm 1.0, passes
			{UserID: "u2", Similarity: 0.4}, // norm 0.5, gated
		},
		[]lexical.Hit{{UserID: "u2", Score: 10}},
		q, pol, false,
	)
	if len(got) != 1 || got[0].UserID != "u1" {
		t.Fatalf("expected only u1 to pass the similarity floor, got %+v", got)
	}
}

func TestFuse_ExactTermLexicalInclusion(t *testing.T) {
	// An exact-term query includes candidates with any lexical match even when
	// their vector score is below the floor.
	q := mustQuery(t, "Acme", query.WithMinSimilarity(0.9))
	pol := policy.Default()

	got := fuse(
		[]vector.Scored{
			{UserID: "u1", Similarity: 0.1}, // norm 0.111, below floor
			{UserID: "u2", Similarity: 0.9}, // norm 1.0
		},
		[]lexical.Hit{{UserID: "u1", Score: 3}},
		q, pol, true,
	)
	if len(got) != 2 {
		t.Fatalf("expected lexical inclusion for exact-term query, got %+v", got)
	}
	// u1 survives purely on its lexical match: 0.3*0.111 + 0.7*1.0.
	if got[0].UserID != "u1" {
		t.Errorf("expected u1 first on lexical weight, got %+v", got)
	}
}

func TestFuse_ExcludedUserIDs(t *testing.T) {
	q := mustQuery(t, "golang engineer", query.WithExcludedUserIDs("u1"))
	pol := policy.Default()

	got := fuse(
		[]vector.Scored{
			{UserID: "u1", Similarity: 0.9},
			{UserID: "u2", Similarity: 0.8},
		},
		nil, q, pol, false,
	)
	if len(got) != 1 || got[0].UserID != "u2" {
		t.Fatalf("excluded user must never appear, got %+v", got)
	}
}

func TestFuse_EmptyInputs(t *testing.T) {
	q := mustQuery(t, "golang engineer")
	if got := fuse(nil, nil, q, policy.Default(), false); len(got) != 0 {
		t.Errorf("expected no candidates, got %+v", got)
	}
}

func TestFuse_DeterministicTieBreak(t *testing.T) {
	q := mustQuery(t, "golang engineer")
	pol := policy.Default()

	got := fuse(
		[]vector.Scored{
			{UserID: "u2", Similarity: 0.8},
			{UserID: "u1", Similarity: 0.8},
		},
		nil, q, pol, false,
	)
	if len(got) != 2 || got[0].UserID != "u1" || got[1].UserID != "u2" {
		t.Fatalf("equal scores must order by user id, got %+v", got)
	}
}
