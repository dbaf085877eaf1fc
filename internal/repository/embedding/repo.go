// Package embedding persists per-profile embedding records as hashes with a
// binary-packed vector field.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/domain"
	domprofile "github.com/talentmesh/profilesearch/internal/domain/profile"
)

const keyPrefix = domain.KeyPrefix + "embedding:"

// store is the consumer interface for embedding records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements embedding record storage.
type Repo struct {
	store  store
	dim    int
	logger *zap.Logger
}

// New creates an embedding repository for vectors of the given dimensionality.
func New(s store, dim int, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, dim: dim, logger: logger}
}

// Put stores or replaces an embedding record. The record is validated first:
// a wrong-dimension vector never reaches the store.
func (r *Repo) Put(ctx context.Context, rec domprofile.EmbeddingRecord) error {
	if err := rec.Validate(r.dim); err != nil {
		return fmt.Errorf("validate embedding record: %w", err)
	}
	if err := r.store.HSet(ctx, embeddingKey(rec.UserID), buildHashFields(rec)); err != nil {
		return fmt.Errorf("hset embedding %s: %w", rec.UserID, err)
	}
	return nil
}

// Get returns the embedding record for a user, or ok=false when absent or corrupt.
func (r *Repo) Get(ctx context.Context, userID string) (domprofile.EmbeddingRecord, bool, error) {
	m, err := r.store.HGetAll(ctx, embeddingKey(userID))
	if err != nil {
		return domprofile.EmbeddingRecord{}, false, fmt.Errorf("hgetall embedding %s: %w", userID, err)
	}
	if len(m) == 0 {
		return domprofile.EmbeddingRecord{}, false, nil
	}
	rec, err := parseHashFields(userID, m)
	if err != nil {
		r.logger.Warn("corrupt embedding record", zap.String("user_id", userID), zap.Error(err))
		return domprofile.EmbeddingRecord{}, false, nil
	}
	return rec, true, nil
}

// Delete removes an embedding record.
func (r *Repo) Delete(ctx context.Context, userID string) error {
	if err := r.store.Del(ctx, embeddingKey(userID)); err != nil {
		return fmt.Errorf("delete embedding %s: %w", userID, err)
	}
	return nil
}

// List loads every persisted embedding record. Records that fail to parse or
// carry a wrong-dimension vector are treated as corrupt: logged, purged, and
// excluded from the result; one bad record never aborts the scan.
func (r *Repo) List(ctx context.Context) ([]domprofile.EmbeddingRecord, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan embeddings: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}

	records := make([]domprofile.EmbeddingRecord, 0, len(hashes))
	for i, m := range hashes {
		userID := strings.TrimPrefix(keys[i], keyPrefix)
		if len(m) == 0 {
			continue
		}
		rec, err := parseHashFields(userID, m)
		if err == nil {
			err = rec.Validate(r.dim)
		}
		if err != nil {
			r.logger.Warn("purging corrupt embedding record",
				zap.String("user_id", userID), zap.Error(err))
			if delErr := r.store.Del(ctx, keys[i]); delErr != nil {
				r.logger.Warn("failed to purge corrupt embedding record",
					zap.String("user_id", userID), zap.Error(delErr))
			}
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func embeddingKey(userID string) string {
	return keyPrefix + userID
}
