package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/domain/search/query"
	"github.com/talentmesh/profilesearch/internal/domain/search/result"
)

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

type stubIndex struct{ count int }

func (s stubIndex) Count() int { return s.count }

type stubLexicon struct {
	count   int
	updated time.Time
}

func (s stubLexicon) Count() int             { return s.count }
func (s stubLexicon) LastUpdated() time.Time { return s.updated }

type stubSearcher struct {
	err   error
	calls int
}

func (s *stubSearcher) SearchProfiles(context.Context, query.Query) (result.Response, error) {
	s.calls++
	if s.err != nil {
		return result.Response{}, s.err
	}
	return result.Response{}, nil
}

func TestCheck_Healthy(t *testing.T) {
	updated := time.Now().Add(-time.Minute)
	searcher := &stubSearcher{}
	svc := New(stubChecker{}, stubIndex{count: 42}, stubLexicon{count: 42, updated: updated}, searcher, zap.NewNop())

	rep := svc.Check(context.Background())
	if rep.Status != StatusHealthy {
		t.Errorf("expected healthy, got %q", rep.Status)
	}
	if rep.IndexedProfiles != 42 || rep.LexicalDocuments != 42 {
		t.Errorf("unexpected counters %+v", rep)
	}
	if !rep.LastIndexUpdate.Equal(updated) {
		t.Errorf("unexpected last update %v", rep.LastIndexUpdate)
	}
	if searcher.calls != 1 {
		t.Errorf("expected 1 probe search, got %d", searcher.calls)
	}
}

func TestCheck_EmbeddingProviderDown(t *testing.T) {
	searcher := &stubSearcher{}
	svc := New(stubChecker{err: errors.New("provider unreachable")}, stubIndex{}, stubLexicon{}, searcher, zap.NewNop())

	rep := svc.Check(context.Background())
	if rep.Status != StatusDegraded || rep.EmbeddingProvider != StatusDegraded {
		t.Errorf("expected degraded report, got %+v", rep)
	}
	if rep.EmbeddingError == "" {
		t.Error("expected embedding error detail")
	}
	if searcher.calls != 0 {
		t.Error("probe must be skipped when the provider is down")
	}
}

func TestCheck_ProbeFailure(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("search broken")}
	svc := New(stubChecker{}, stubIndex{count: 1}, stubLexicon{count: 1}, searcher, zap.NewNop())

	rep := svc.Check(context.Background())
	if rep.Status != StatusDegraded {
		t.Errorf("expected degraded on probe failure, got %+v", rep)
	}
	if rep.ProbeError == "" {
		t.Error("expected probe error detail")
	}
}
