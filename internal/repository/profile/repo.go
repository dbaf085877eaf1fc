// Package profile persists full profile records as JSON blobs.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/talentmesh/profilesearch/internal/db"
	"github.com/talentmesh/profilesearch/internal/domain"
	domprofile "github.com/talentmesh/profilesearch/internal/domain/profile"
)

const keyPrefix = domain.KeyPrefix + "profile:"

// store is the consumer interface for profile records (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements profile record storage.
type Repo struct {
	store store
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put stores or replaces a profile record.
func (r *Repo) Put(ctx context.Context, p domprofile.Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("profile without user id")
	}
	data, err := json.Marshal(p.Fields)
	if err != nil {
		return fmt.Errorf("marshal profile %s: %w", p.UserID, err)
	}
	if err := r.store.Set(ctx, profileKey(p.UserID), data); err != nil {
		return fmt.Errorf("set profile %s: %w", p.UserID, err)
	}
	return nil
}

// Get returns a profile record by user id.
func (r *Repo) Get(ctx context.Context, userID string) (domprofile.Profile, error) {
	data, err := r.store.Get(ctx, profileKey(userID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domprofile.Profile{}, domain.ErrProfileNotFound
		}
		return domprofile.Profile{}, fmt.Errorf("get profile %s: %w", userID, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return domprofile.Profile{}, fmt.Errorf("parse profile %s: %w", userID, err)
	}
	return domprofile.Profile{UserID: userID, Fields: fields}, nil
}

// Delete removes a profile record. Deleting an absent record is not an error.
func (r *Repo) Delete(ctx context.Context, userID string) error {
	if err := r.store.Del(ctx, profileKey(userID)); err != nil {
		return fmt.Errorf("delete profile %s: %w", userID, err)
	}
	return nil
}

// ListIDs returns all stored profile user ids.
func (r *Repo) ListIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, keyPrefix))
	}
	return ids, nil
}

func profileKey(userID string) string {
	return keyPrefix + userID
}
