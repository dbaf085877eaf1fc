package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/db"
	"github.com/talentmesh/profilesearch/internal/domain"
)

type fakeKV struct {
	data     map[string][]byte
	ttlCalls int
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return nil, db.ErrKeyNotFound
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.ttlCalls++
	f.data[key] = value
	return nil
}

type countingEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	c.calls++
	if c.err != nil {
		return domain.EmbeddingResult{}, c.err
	}
	return domain.EmbeddingResult{Embedding: c.vec, TotalTokens: 7}, nil
}

func TestEmbed_CachesSecondCall(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	cached := New(inner, &fakeKV{data: make(map[string][]byte)}, nil, zap.NewNop())
	ctx := context.Background()

	first, err := cached.Embed(ctx, "golang developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cached.Embed(ctx, "golang developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
	if len(second.Embedding) != len(first.Embedding) {
		t.Error("cached vector differs from original")
	}
	if second.TotalTokens != 0 {
		t.Errorf("cache hit should consume no tokens, got %d", second.TotalTokens)
	}
}

func TestEmbed_DistinctTextsDistinctKeys(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	cached := New(inner, &fakeKV{data: make(map[string][]byte)}, nil, zap.NewNop())
	ctx := context.Background()

	_, _ = cached.Embed(ctx, "query one")
	_, _ = cached.Embed(ctx, "query two")

	if inner.calls != 2 {
		t.Errorf("expected 2 provider calls for distinct texts, got %d", inner.calls)
	}
}

func TestEmbed_TTLWritesUseExpiry(t *testing.T) {
	kv := &fakeKV{data: make(map[string][]byte)}
	cached := New(&countingEmbedder{vec: []float32{1}}, kv, nil, zap.NewNop()).WithTTL(time.Hour)

	_, _ = cached.Embed(context.Background(), "query")
	if kv.ttlCalls != 1 {
		t.Errorf("expected TTL write, got %d", kv.ttlCalls)
	}
}

func TestEmbed_PropagatesProviderError(t *testing.T) {
	wantErr := errors.New("provider down")
	cached := New(&countingEmbedder{err: wantErr}, &fakeKV{data: make(map[string][]byte)}, nil, zap.NewNop())

	if _, err := cached.Embed(context.Background(), "query"); !errors.Is(err, wantErr) {
		t.Errorf("expected provider error, got %v", err)
	}
}
