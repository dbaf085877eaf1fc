package chi

import (
	"fmt"

	"github.com/talentmesh/profilesearch/internal/domain/search/query"
	"github.com/talentmesh/profilesearch/internal/domain/search/result"
)

// errorCode identifies a machine-readable error category in responses.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeProfileNotFound  errorCode = "profile_not_found"
	codeNotIndexable     errorCode = "not_indexable"
	codeEmbeddingError   errorCode = "embedding_provider_error"
	codeCompletionError  errorCode = "completion_provider_error"
	codeUnavailable      errorCode = "search_unavailable"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// searchRequest is the body of POST /search and POST /search/intelligent.
type searchRequest struct {
	Query              string   `json:"query"`
	Limit              int      `json:"limit,omitempty"`
	MinSimilarity      *float64 `json:"minSimilarity,omitempty"`
	IncludeMatchedText bool     `json:"includeMatchedText,omitempty"`
	ExcludeUserIDs     []string `json:"excludeUserIds,omitempty"`
	UserContext        string   `json:"userContext,omitempty"`
}

// toQuery builds the validated domain query from the request body.
func (r searchRequest) toQuery() (query.Query, error) {
	opts := make([]query.Option, 0, 4)
	if r.Limit > 0 {
		opts = append(opts, query.WithLimit(r.Limit))
	}
	if r.MinSimilarity != nil {
		opts = append(opts, query.WithMinSimilarity(*r.MinSimilarity))
	}
	if r.IncludeMatchedText {
		opts = append(opts, query.WithMatchedText())
	}
	if len(r.ExcludeUserIDs) > 0 {
		opts = append(opts, query.WithExcludedUserIDs(r.ExcludeUserIDs...))
	}

	q, err := query.New(r.Query, opts...)
	if err != nil {
		return query.Query{}, fmt.Errorf("build query: %w", err)
	}
	return q, nil
}

type searchResultItem struct {
	UserID           string         `json:"userId"`
	Profile          map[string]any `json:"profile"`
	VectorScore      float64        `json:"vectorScore"`
	LexicalScore     float64        `json:"lexicalScore"`
	HybridScore      float64        `json:"hybridScore"`
	MatchedText      string         `json:"matchedText,omitempty"`
	ConfidenceScore  int            `json:"confidenceScore,omitempty"`
	MatchExplanation string         `json:"matchExplanation,omitempty"`
	RelevanceFactors []string       `json:"relevanceFactors,omitempty"`
}

type searchMeta struct {
	Total          int              `json:"total"`
	ExactTermQuery bool             `json:"exactTermQuery"`
	Enhanced       bool             `json:"enhanced"`
	Reranked       bool             `json:"reranked"`
	TimingsMs      map[string]int64 `json:"timingsMs"`
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
	Meta    searchMeta         `json:"meta"`
}

func searchResponseFromDomain(resp result.Response) searchResponse {
	items := make([]searchResultItem, len(resp.Results))
	for i, r := range resp.Results {
		items[i] = searchResultItem{
			UserID:           r.UserID,
			Profile:          r.Profile,
			VectorScore:      r.VectorScore,
			LexicalScore:     r.LexicalScore,
			HybridScore:      r.HybridScore,
			MatchedText:      r.MatchedText,
			ConfidenceScore:  r.ConfidenceScore,
			MatchExplanation: r.MatchExplanation,
			RelevanceFactors: r.RelevanceFactors,
		}
	}

	m := resp.Metrics
	return searchResponse{
		Results: items,
		Meta: searchMeta{
			Total:          m.Returned,
			ExactTermQuery: m.ExactTermQuery,
			Enhanced:       m.Enhanced,
			Reranked:       m.Reranked,
			TimingsMs: map[string]int64{
				"queryEmbedding": m.QueryEmbeddingTime.Milliseconds(),
				"lexicalSearch":  m.LexicalSearchTime.Milliseconds(),
				"fusion":         m.FusionTime.Milliseconds(),
				"profileFetch":   m.FetchTime.Milliseconds(),
				"rerank":         m.RerankTime.Milliseconds(),
			},
		},
	}
}

// upsertResponse is returned by PUT /profiles/{userId}. Indexed is false when
// the profile was stored but had no indexable content.
type upsertResponse struct {
	UserID  string `json:"userId"`
	Indexed bool   `json:"indexed"`
	Reason  string `json:"reason,omitempty"`
}

type profileResponse struct {
	UserID  string         `json:"userId"`
	Profile map[string]any `json:"profile"`
}
