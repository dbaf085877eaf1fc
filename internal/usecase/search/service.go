// Package search orchestrates the hybrid retrieval pipeline: parallel vector
// and lexical retrieval, weighted fusion, profile assembly, and the optional
// LLM enhancement and re-ranking stages.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentmesh/profilesearch/internal/domain"
	"github.com/talentmesh/profilesearch/internal/domain/search/policy"
	"github.com/talentmesh/profilesearch/internal/domain/search/query"
	"github.com/talentmesh/profilesearch/internal/domain/search/result"
	"github.com/talentmesh/profilesearch/internal/lexical"
	"github.com/talentmesh/profilesearch/internal/metrics"
)

// fetchConcurrency caps parallel profile fetches during result assembly.
const fetchConcurrency = 8

// Service runs profile searches.
type Service struct {
	embedder domain.Embedder
	lexicon  lexicon
	vectors  vectorSource
	scorer   scorer
	profiles profileReader
	enhancer enhancer
	policy   policy.Policy
	logger   *zap.Logger
}

// New creates the search service.
func New(
	embedder domain.Embedder,
	lexicon lexicon,
	vectors vectorSource,
	scorer scorer,
	profiles profileReader,
	enhancer enhancer,
	pol policy.Policy,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		embedder: embedder,
		lexicon:  lexicon,
		vectors:  vectors,
		scorer:   scorer,
		profiles: profiles,
		enhancer: enhancer,
		policy:   pol,
		logger:   logger,
	}
}

// SearchProfiles runs the hybrid retrieval pipeline without any LLM stage.
func (s *Service) SearchProfiles(ctx context.Context, q query.Query) (result.Response, error) {
	resp, err := s.retrieve(ctx, q)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("plain", "error").Inc()
		return result.Response{}, err
	}
	metrics.SearchesTotal.WithLabelValues("plain", "success").Inc()
	return resp, nil
}

// IntelligentSearch runs enhancement, widened retrieval, and re-ranking.
// When the intelligent pipeline fails it falls back to a plain search with
// the original query; only if that also fails does the caller see an error.
func (s *Service) IntelligentSearch(ctx context.Context, q query.Query, userContext string) (result.Response, error) {
	resp, err := s.intelligent(ctx, q, userContext)
	if err == nil {
		metrics.SearchesTotal.WithLabelValues("intelligent", "success").Inc()
		return resp, nil
	}

	s.logger.Warn("intelligent search failed, falling back to plain search",
		zap.String("query", q.Text()), zap.Error(err))
	metrics.RerankFallbacksTotal.WithLabelValues("intelligent").Inc()

	fallback, ferr := s.retrieve(ctx, q)
	if ferr != nil {
		metrics.SearchesTotal.WithLabelValues("intelligent", "error").Inc()
		return result.Response{}, fmt.Errorf(
			"intelligent search failed (%v), fallback search failed (%v): %w",
			err, ferr, domain.ErrSearchUnavailable)
	}
	metrics.SearchesTotal.WithLabelValues("intelligent", "fallback").Inc()
	return fallback, nil
}

func (s *Service) intelligent(ctx context.Context, q query.Query, userContext string) (result.Response, error) {
	enh := s.enhancer.EnhanceQuery(ctx, q.Text(), userContext)

	// Widen retrieval so the re-ranker has room to discard.
	retrieval := q.WithLimitValue(q.Limit() * s.policy.CandidateMultiplier)
	if enh.Err == nil {
		rq, err := retrieval.WithText(enh.EnhancedQuery)
		if err != nil {
			s.logger.Warn("enhanced query rejected, retrieving with original",
				zap.String("enhanced", enh.EnhancedQuery), zap.Error(err))
		} else {
			retrieval = rq
		}
	}

	resp, err := s.retrieve(ctx, retrieval)
	if err != nil {
		return result.Response{}, err
	}
	resp.Metrics.Enhanced = enh.Err == nil

	rerankStart := time.Now()
	ranked := s.enhancer.Rerank(ctx, q.Text(), userContext, resp.Results)
	resp.Metrics.RerankTime = time.Since(rerankStart)
	resp.Metrics.Reranked = true
	metrics.SearchStageDuration.WithLabelValues("rerank").Observe(resp.Metrics.RerankTime.Seconds())

	filtered := make([]result.RankedProfile, 0, len(ranked))
	for _, r := range ranked {
		if r.ConfidenceScore >= s.policy.ConfidenceThreshold {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(a, b int) bool {
		if filtered[a].ConfidenceScore != filtered[b].ConfidenceScore {
			return filtered[a].ConfidenceScore > filtered[b].ConfidenceScore
		}
		if filtered[a].HybridScore != filtered[b].HybridScore {
			return filtered[a].HybridScore > filtered[b].HybridScore
		}
		return filtered[a].UserID < filtered[b].UserID
	})
	if len(filtered) > q.Limit() {
		filtered = filtered[:q.Limit()]
	}

	resp.Results = filtered
	resp.Metrics.Returned = len(filtered)
	return resp, nil
}

// retrieve is the shared hybrid pipeline: embed and lexical search run in
// parallel, then fusion, truncation, and profile assembly.
func (s *Service) retrieve(ctx context.Context, q query.Query) (result.Response, error) {
	exactTerm := isExactTerm(q.Text(), s.policy)

	var (
		m        result.Metrics
		queryVec []float32
		hits     []lexical.Hit
	)
	m.ExactTermQuery = exactTerm

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		res, err := s.embedder.Embed(gctx, q.Text())
		m.QueryEmbeddingTime = time.Since(start)
		metrics.SearchStageDuration.WithLabelValues("embed").Observe(m.QueryEmbeddingTime.Seconds())
		if err != nil {
			return fmt.Errorf("embed query: %w", err)
		}
		queryVec = res.Embedding
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		// No truncation here: exact-term inclusion needs every lexical hit.
		hits = s.lexicon.Search(q.Text(), 0)
		m.LexicalSearchTime = time.Since(start)
		metrics.SearchStageDuration.WithLabelValues("lexical").Observe(m.LexicalSearchTime.Seconds())
		return nil
	})
	if err := g.Wait(); err != nil {
		return result.Response{}, err
	}

	fusionStart := time.Now()
	scored := s.scorer.Score(queryVec, s.vectors.Records())
	candidates := fuse(scored, hits, q, s.policy, exactTerm)
	m.FusionTime = time.Since(fusionStart)
	metrics.SearchStageDuration.WithLabelValues("fusion").Observe(m.FusionTime.Seconds())

	m.VectorCandidates = len(scored)
	m.LexicalCandidates = len(hits)
	m.FusedCandidates = len(candidates)

	if len(candidates) > q.Limit() {
		candidates = candidates[:q.Limit()]
	}

	fetchStart := time.Now()
	results := s.assemble(ctx, q, candidates)
	m.FetchTime = time.Since(fetchStart)
	metrics.SearchStageDuration.WithLabelValues("fetch").Observe(m.FetchTime.Seconds())
	m.Returned = len(results)

	s.logger.Debug("search retrieval complete",
		zap.String("query", q.Text()),
		zap.Bool("exact_term", exactTerm),
		zap.Int("vector_candidates", m.VectorCandidates),
		zap.Int("lexical_candidates", m.LexicalCandidates),
		zap.Int("fused", m.FusedCandidates),
		zap.Int("returned", m.Returned),
	)
	return result.Response{Results: results, Metrics: m}, nil
}

// assemble fetches profiles for the fused candidates in parallel. A candidate
// whose profile cannot be loaded is dropped with a warning; one missing
// profile never fails the search. Input order is preserved.
func (s *Service) assemble(ctx context.Context, q query.Query, candidates []result.ScoredCandidate) []result.RankedProfile {
	slots := make([]*result.RankedProfile, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			p, err := s.profiles.Get(gctx, cand.UserID)
			if err != nil {
				s.logger.Warn("dropping candidate without loadable profile",
					zap.String("user_id", cand.UserID), zap.Error(err))
				return nil
			}

			rp := result.RankedProfile{
				UserID:       cand.UserID,
				Profile:      p.Fields,
				VectorScore:  cand.VectorScore,
				LexicalScore: cand.LexicalScore,
				HybridScore:  cand.HybridScore,
			}
			if q.IncludeMatchedText() {
				if rec, ok := s.vectors.Record(cand.UserID); ok {
					rp.MatchedText = rec.SourceText
				}
			}
			slots[i] = &rp
			return nil
		})
	}
	_ = g.Wait()

	out := make([]result.RankedProfile, 0, len(slots))
	for _, rp := range slots {
		if rp != nil {
			out = append(out, *rp)
		}
	}
	return out
}
