// Package result defines search pipeline outputs.
package result

import "time"

// ScoredCandidate is a fused retrieval candidate prior to profile assembly.
type ScoredCandidate struct {
	UserID       string
	VectorScore  float64 // raw cosine similarity, floored at 0
	LexicalScore float64 // raw BM25 score, unbounded >= 0
	HybridScore  float64 // normalized weighted combination
	MatchedText  string  // optional source text excerpt
}

// RankedProfile is one assembled search result, optionally annotated by the
// re-ranking stage.
type RankedProfile struct {
	UserID           string
	Profile          map[string]any
	VectorScore      float64
	LexicalScore     float64
	HybridScore      float64
	MatchedText      string
	ConfidenceScore  int // 0-100
	MatchExplanation string
	RelevanceFactors []string
}

// Metrics reports per-stage timings and counts for one search call.
// Observability only; never consulted for correctness.
type Metrics struct {
	QueryEmbeddingTime time.Duration
	LexicalSearchTime  time.Duration
	FusionTime         time.Duration
	FetchTime          time.Duration
	RerankTime         time.Duration
	VectorCandidates   int
	LexicalCandidates  int
	FusedCandidates    int
	Returned           int
	ExactTermQuery     bool
	Enhanced           bool
	Reranked           bool
}

// Response is the final ordered result set with metrics.
type Response struct {
	Results []RankedProfile
	Metrics Metrics
}
