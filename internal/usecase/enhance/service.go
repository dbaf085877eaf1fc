// Package enhance wraps the completion model into two independently-failable
// search stages: query enhancement and candidate re-ranking. Both degrade to
// deterministic substitutes instead of failing the search.
package enhance

import (
	"context"
	"fmt"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/domain"
	"github.com/talentmesh/profilesearch/internal/domain/search/result"
	"github.com/talentmesh/profilesearch/internal/llmjson"
	"github.com/talentmesh/profilesearch/internal/metrics"
)

// DefaultCacheSize bounds the enhancement LRU cache.
const DefaultCacheSize = 1024

// fallbackIntent labels a degraded enhancement.
const fallbackIntent = "Basic search"

// Enhancement is the expansion of a raw query. When the model call or parse
// fails, the original query is carried through and Err records the cause so
// the caller can proceed with unenhanced retrieval.
type Enhancement struct {
	EnhancedQuery string
	SearchTerms   []string
	Intent        string
	Err           error
}

// Service implements LLM-assisted enhancement and re-ranking.
type Service struct {
	completer           domain.Completer
	cache               *lru.Cache[string, Enhancement]
	confidenceThreshold int
	logger              *zap.Logger
}

// New creates the enhancement service. cacheSize <= 0 uses DefaultCacheSize.
func New(completer domain.Completer, confidenceThreshold, cacheSize int, logger *zap.Logger) *Service {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, _ := lru.New[string, Enhancement](cacheSize)
	return &Service{
		completer:           completer,
		cache:               cache,
		confidenceThreshold: confidenceThreshold,
		logger:              logger,
	}
}

// enhancePayload is the strict JSON shape requested from the model.
type enhancePayload struct {
	EnhancedQuery string   `json:"enhancedQuery"`
	SearchTerms   []string `json:"searchTerms"`
	Intent        string   `json:"intent"`
}

// EnhanceQuery expands the query via the completion model. Never returns an
// error: failures yield a degraded Enhancement with Err set.
func (s *Service) EnhanceQuery(ctx context.Context, query, userContext string) Enhancement {
	cacheKey := strings.ToLower(strings.TrimSpace(query))
	if cached, ok := s.cache.Get(cacheKey); ok {
		metrics.EnhancementCacheTotal.WithLabelValues("hit").Inc()
		return cached
	}
	metrics.EnhancementCacheTotal.WithLabelValues("miss").Inc()

	out, err := s.completer.Complete(ctx, buildEnhancePrompt(query, userContext))
	if err != nil {
		return s.degraded(query, fmt.Errorf("enhance query: %w", err))
	}

	var payload enhancePayload
	if err := llmjson.ExtractObject(out, &payload); err != nil {
		return s.degraded(query, fmt.Errorf("enhance query: %w", err))
	}
	if strings.TrimSpace(payload.EnhancedQuery) == "" {
		return s.degraded(query, fmt.Errorf("enhance query: model returned empty enhancedQuery"))
	}

	enh := Enhancement{
		EnhancedQuery: payload.EnhancedQuery,
		SearchTerms:   payload.SearchTerms,
		Intent:        payload.Intent,
	}
	if len(enh.SearchTerms) == 0 {
		enh.SearchTerms = []string{query}
	}

	s.cache.Add(cacheKey, enh)
	return enh
}

func (s *Service) degraded(query string, cause error) Enhancement {
	s.logger.Warn("query enhancement degraded", zap.Error(cause))
	metrics.RerankFallbacksTotal.WithLabelValues("enhance").Inc()
	return Enhancement{
		EnhancedQuery: query,
		SearchTerms:   []string{query},
		Intent:        fallbackIntent,
		Err:           cause,
	}
}

// rerankEntry is one element of the JSON array requested from the model.
type rerankEntry struct {
	UserID           string   `json:"userId"`
	ConfidenceScore  int      `json:"confidenceScore"`
	MatchExplanation string   `json:"matchExplanation"`
	RelevanceFactors []string `json:"relevanceFactors"`
}

// Rerank annotates candidates with a confidence score and explanation. The
// model is instructed to drop entries below the confidence threshold; on any
// model or parse failure every candidate is kept with a deterministic score
// derived from its hybrid score, so the result set is never lost.
func (s *Service) Rerank(
	ctx context.Context, query, userContext string, items []result.RankedProfile,
) []result.RankedProfile {
	if len(items) == 0 {
		return items
	}

	out, err := s.completer.Complete(ctx, buildRerankPrompt(query, userContext, items, s.confidenceThreshold))
	if err != nil {
		return s.rerankFallback(items, fmt.Errorf("rerank: %w", err))
	}

	var entries []rerankEntry
	if err := llmjson.ExtractArray(out, &entries); err != nil {
		return s.rerankFallback(items, fmt.Errorf("rerank: %w", err))
	}

	byID := make(map[string]result.RankedProfile, len(items))
	for _, item := range items {
		byID[item.UserID] = item
	}

	annotated := make([]result.RankedProfile, 0, len(entries))
	for _, e := range entries {
		item, ok := byID[e.UserID]
		if !ok {
			s.logger.Warn("reranker returned unknown candidate", zap.String("user_id", e.UserID))
			continue
		}
		item.ConfidenceScore = clampConfidence(e.ConfidenceScore)
		item.MatchExplanation = e.MatchExplanation
		item.RelevanceFactors = e.RelevanceFactors
		annotated = append(annotated, item)
	}
	return annotated
}

// rerankFallback keeps every candidate, deriving confidence from the hybrid
// score. Result count is preserved.
func (s *Service) rerankFallback(items []result.RankedProfile, cause error) []result.RankedProfile {
	s.logger.Warn("rerank degraded to deterministic fallback", zap.Error(cause))
	metrics.RerankFallbacksTotal.WithLabelValues("rerank").Inc()

	out := make([]result.RankedProfile, len(items))
	for i, item := range items {
		conf := clampConfidence(int(math.Round(item.HybridScore * 100)))
		item.ConfidenceScore = conf
		item.MatchExplanation = fmt.Sprintf("%d%% semantic similarity match", conf)
		item.RelevanceFactors = []string{"Semantic similarity"}
		out[i] = item
	}
	return out
}

func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
