package search

import (
	"sort"

	"github.com/talentmesh/profilesearch/internal/domain/search/policy"
	"github.com/talentmesh/profilesearch/internal/domain/search/query"
	"github.com/talentmesh/profilesearch/internal/domain/search/result"
	"github.com/talentmesh/profilesearch/internal/lexical"
	"github.com/talentmesh/profilesearch/internal/vector"
)

// fuse combines vector and lexical rankings into one candidate list.
//
// Each score set is max-normalized to [0, 1] independently so the unbounded
// BM25 range and the bounded cosine range become comparable, then combined
// with the weight split for the query class. A candidate is included when its
// normalized vector score clears the query's similarity floor, or, for
// exact-term queries, when it has any lexical match at all. Excluded user ids
// never appear.
//
// The returned candidates carry raw scores; only HybridScore is normalized.
// Ordering is hybrid score descending with user id as the deterministic
// tie-break.
func fuse(
	vectorScored []vector.Scored,
	lexicalHits []lexical.Hit,
	q query.Query,
	pol policy.Policy,
	exactTerm bool,
) []result.ScoredCandidate {
	var maxVec, maxLex float64
	for _, s := range vectorScored {
		if s.Similarity > maxVec {
			maxVec = s.Similarity
		}
	}
	for _, h := range lexicalHits {
		if h.Score > maxLex {
			maxLex = h.Score
		}
	}
	vecDiv := maxFloat(maxVec, pol.Epsilon)
	lexDiv := maxFloat(maxLex, pol.Epsilon)

	rawVec := make(map[string]float64, len(vectorScored))
	for _, s := range vectorScored {
		rawVec[s.UserID] = s.Similarity
	}
	rawLex := make(map[string]float64, len(lexicalHits))
	for _, h := range lexicalHits {
		rawLex[h.UserID] = h.Score
	}

	ids := make(map[string]struct{}, len(rawVec)+len(rawLex))
	for id := range rawVec {
		ids[id] = struct{}{}
	}
	for id := range rawLex {
		ids[id] = struct{}{}
	}

	vw, lw := pol.Weights(exactTerm)

	candidates := make([]result.ScoredCandidate, 0, len(ids))
	for id := range ids {
		if q.Excluded(id) {
			continue
		}

		normVec := rawVec[id] / vecDiv
		normLex := rawLex[id] / lexDiv

		if normVec < q.MinSimilarity() && !(exactTerm && rawLex[id] > 0) {
			continue
		}

		candidates = append(candidates, result.ScoredCandidate{
			UserID:       id,
			VectorScore:  rawVec[id],
			LexicalScore: rawLex[id],
			HybridScore:  vw*normVec + lw*normLex,
		})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].HybridScore != candidates[b].HybridScore {
			return candidates[a].HybridScore > candidates[b].HybridScore
		}
		return candidates[a].UserID < candidates[b].UserID
	})
	return candidates
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
