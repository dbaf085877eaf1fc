// Package query defines the validated search query value object.
package query

import (
	"fmt"
	"strings"

	"github.com/talentmesh/profilesearch/internal/domain"
)

const (
	// MinLength is the minimum query length after trimming.
	MinLength = 3
	// DefaultLimit is the number of results returned when unspecified.
	DefaultLimit = 20
	// DefaultMinSimilarity gates semantic candidates by normalized vector score.
	DefaultMinSimilarity = 0.3
)

// Query is a validated search request.
type Query struct {
	text            string
	limit           int
	minSimilarity   float64
	includeMatched  bool
	excludedUserIDs map[string]struct{}
}

// New validates and builds a Query. Validation happens before any external
// call is made, so a too-short query never reaches the embedding provider.
func New(text string, opts ...Option) (Query, error) {
	q := Query{
		text:          strings.TrimSpace(text),
		limit:         DefaultLimit,
		minSimilarity: DefaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(&q)
	}

	if len(q.text) < MinLength {
		return Query{}, fmt.Errorf("query must be at least %d characters: %w", MinLength, domain.ErrInvalidQuery)
	}
	if q.limit <= 0 {
		q.limit = DefaultLimit
	}
	if q.minSimilarity < 0 || q.minSimilarity > 1 {
		return Query{}, fmt.Errorf("min similarity must be in [0,1], got %g: %w", q.minSimilarity, domain.ErrInvalidQuery)
	}
	return q, nil
}

// Option configures optional query parameters.
type Option func(*Query)

// WithLimit sets the maximum number of results.
func WithLimit(limit int) Option {
	return func(q *Query) { q.limit = limit }
}

// WithMinSimilarity sets the normalized vector score floor.
func WithMinSimilarity(min float64) Option {
	return func(q *Query) { q.minSimilarity = min }
}

// WithMatchedText requests matched source text in results.
func WithMatchedText() Option {
	return func(q *Query) { q.includeMatched = true }
}

// WithExcludedUserIDs omits the given user ids from results
// (typically the searcher themself).
func WithExcludedUserIDs(ids ...string) Option {
	return func(q *Query) {
		if q.excludedUserIDs == nil {
			q.excludedUserIDs = make(map[string]struct{}, len(ids))
		}
		for _, id := range ids {
			q.excludedUserIDs[id] = struct{}{}
		}
	}
}

// Text returns the trimmed query text.
func (q Query) Text() string { return q.text }

// Limit returns the result cap.
func (q Query) Limit() int { return q.limit }

// MinSimilarity returns the normalized vector score floor.
func (q Query) MinSimilarity() float64 { return q.minSimilarity }

// IncludeMatchedText reports whether matched source text was requested.
func (q Query) IncludeMatchedText() bool { return q.includeMatched }

// Excluded reports whether the given user id must be omitted.
func (q Query) Excluded(userID string) bool {
	_, ok := q.excludedUserIDs[userID]
	return ok
}

// WithText returns a copy of the query with replaced text, revalidated.
// Used when an enhanced query string drives the retrieval stage.
func (q Query) WithText(text string) (Query, error) {
	text = strings.TrimSpace(text)
	if len(text) < MinLength {
		return Query{}, fmt.Errorf("query must be at least %d characters: %w", MinLength, domain.ErrInvalidQuery)
	}
	c := q
	c.text = text
	return c, nil
}

// WithLimitValue returns a copy of the query with a replaced limit.
func (q Query) WithLimitValue(limit int) Query {
	c := q
	if limit > 0 {
		c.limit = limit
	}
	return c
}
