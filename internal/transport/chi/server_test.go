package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/domain"
	domprofile "github.com/talentmesh/profilesearch/internal/domain/profile"
	"github.com/talentmesh/profilesearch/internal/domain/search/query"
	"github.com/talentmesh/profilesearch/internal/domain/search/result"
	healthuc "github.com/talentmesh/profilesearch/internal/usecase/health"
)

type stubSearch struct {
	resp  result.Response
	err   error
	lastQ query.Query
}

func (s *stubSearch) SearchProfiles(_ context.Context, q query.Query) (result.Response, error) {
	s.lastQ = q
	return s.resp, s.err
}

func (s *stubSearch) IntelligentSearch(_ context.Context, q query.Query, _ string) (result.Response, error) {
	s.lastQ = q
	return s.resp, s.err
}

type stubProfiles struct {
	upsertErr error
	getErr    error
	profile   domprofile.Profile
	removed   []string
}

func (s *stubProfiles) UpsertProfile(_ context.Context, _ domprofile.Profile) error {
	return s.upsertErr
}

func (s *stubProfiles) GetProfile(_ context.Context, _ string) (domprofile.Profile, error) {
	if s.getErr != nil {
		return domprofile.Profile{}, s.getErr
	}
	return s.profile, nil
}

func (s *stubProfiles) RemoveProfile(_ context.Context, userID string) error {
	s.removed = append(s.removed, userID)
	return nil
}

type stubHealth struct{ report healthuc.Report }

func (s *stubHealth) Check(context.Context) healthuc.Report { return s.report }

func newTestRouter(search *stubSearch, profiles *stubProfiles, health *stubHealth) http.Handler {
	if search == nil {
		search = &stubSearch{}
	}
	if profiles == nil {
		profiles = &stubProfiles{}
	}
	if health == nil {
		health = &stubHealth{report: healthuc.Report{Status: healthuc.StatusHealthy}}
	}
	srv := NewServer(search, profiles, health, zap.NewNop())
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestSearchEndpoint(t *testing.T) {
	search := &stubSearch{resp: result.Response{
		Results: []result.RankedProfile{{
			UserID:      "u1",
			Profile:     map[string]any{"fullName": "Jane Doe"},
			HybridScore: 0.91,
		}},
		Metrics: result.Metrics{Returned: 1, ExactTermQuery: true},
	}}
	router := newTestRouter(search, nil, nil)

	rr := doJSON(t, router, "POST", "/api/v1/search", searchRequest{
		Query: "golang engineer", Limit: 5, ExcludeUserIDs: []string{"me"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rr.Code, rr.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].UserID != "u1" {
		t.Errorf("unexpected results %+v", resp.Results)
	}
	if resp.Meta.Total != 1 || !resp.Meta.ExactTermQuery {
		t.Errorf("unexpected meta %+v", resp.Meta)
	}

	if search.lastQ.Limit() != 5 || !search.lastQ.Excluded("me") {
		t.Errorf("query options not propagated: %+v", search.lastQ)
	}
}

func TestSearchEndpoint_QueryTooShort(t *testing.T) {
	search := &stubSearch{}
	router := newTestRouter(search, nil, nil)

	rr := doJSON(t, router, "POST", "/api/v1/search", searchRequest{Query: "ab"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeValidationFailed {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeValidationFailed)
	}
}

func TestSearchEndpoint_InvalidBody(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest("POST", "/api/v1/search", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
}

func TestSearchEndpoint_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   errorCode
	}{
		{fmt.Errorf("embed query: %w", domain.ErrEmbeddingFailed), http.StatusBadGateway, codeEmbeddingError},
		{fmt.Errorf("rerank: %w", domain.ErrCompletionFailed), http.StatusBadGateway, codeCompletionError},
		{fmt.Errorf("both failed: %w", domain.ErrSearchUnavailable), http.StatusServiceUnavailable, codeUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError, codeInternalError},
	}

	for _, tt := range tests {
		router := newTestRouter(&stubSearch{err: tt.err}, nil, nil)
		rr := doJSON(t, router, "POST", "/api/v1/search", searchRequest{Query: "golang engineer"})

		if rr.Code != tt.status {
			t.Errorf("%v: got %d, want %d", tt.err, rr.Code, tt.status)
			continue
		}
		var errResp errorResponse
		if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if errResp.Code != tt.code {
			t.Errorf("%v: code %s, want %s", tt.err, errResp.Code, tt.code)
		}
	}
}

func TestIntelligentSearchEndpoint(t *testing.T) {
	search := &stubSearch{resp: result.Response{
		Results: []result.RankedProfile{{
			UserID: "u1", ConfidenceScore: 85, MatchExplanation: "strong skill overlap",
		}},
		Metrics: result.Metrics{Returned: 1, Enhanced: true, Reranked: true},
	}}
	router := newTestRouter(search, nil, nil)

	rr := doJSON(t, router, "POST", "/api/v1/search/intelligent", searchRequest{
		Query: "golang engineer", UserContext: "recruiter",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rr.Code, rr.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Meta.Enhanced || !resp.Meta.Reranked {
		t.Errorf("unexpected meta %+v", resp.Meta)
	}
	if resp.Results[0].ConfidenceScore != 85 {
		t.Errorf("unexpected result %+v", resp.Results[0])
	}
}

func TestUpsertProfileEndpoint(t *testing.T) {
	router := newTestRouter(nil, &stubProfiles{}, nil)

	rr := doJSON(t, router, "PUT", "/api/v1/profiles/u1", map[string]any{"fullName": "Jane Doe"})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rr.Code, rr.Body.String())
	}

	var resp upsertResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != "u1" || !resp.Indexed {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestUpsertProfileEndpoint_NotIndexable(t *testing.T) {
	profiles := &stubProfiles{
		upsertErr: fmt.Errorf("profile u1 has no indexable content: %w", domain.ErrNotIndexable),
	}
	router := newTestRouter(nil, profiles, nil)

	rr := doJSON(t, router, "PUT", "/api/v1/profiles/u1", map[string]any{"email": "a@b.c"})
	if rr.Code != http.StatusOK {
		t.Fatalf("not indexable must still be 200, got %d", rr.Code)
	}

	var resp upsertResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Indexed || resp.Reason == "" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestGetProfileEndpoint_NotFound(t *testing.T) {
	profiles := &stubProfiles{getErr: domain.ErrProfileNotFound}
	router := newTestRouter(nil, profiles, nil)

	rr := doJSON(t, router, "GET", "/api/v1/profiles/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rr.Code)
	}
}

func TestDeleteProfileEndpoint(t *testing.T) {
	profiles := &stubProfiles{}
	router := newTestRouter(nil, profiles, nil)

	rr := doJSON(t, router, "DELETE", "/api/v1/profiles/u1", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("got %d, want 204", rr.Code)
	}
	if len(profiles.removed) != 1 || profiles.removed[0] != "u1" {
		t.Errorf("unexpected removals %v", profiles.removed)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(nil, nil, &stubHealth{report: healthuc.Report{Status: healthuc.StatusHealthy}})
	rr := doJSON(t, router, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("healthy: got %d, want 200", rr.Code)
	}

	router = newTestRouter(nil, nil, &stubHealth{report: healthuc.Report{Status: healthuc.StatusDegraded}})
	rr = doJSON(t, router, "GET", "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: got %d, want 503", rr.Code)
	}
}
