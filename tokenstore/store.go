// Package tokenstore persists the session credentials (access token, refresh
// token, user profile) over a pluggable key-value backend.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	v1 "dairyflow/pkg/api/v1"
	"dairyflow/pkg/constraints"
)

// ErrNotFound is returned by a Backend when a key has no value.
var ErrNotFound = errors.New("tokenstore: key not found")

// Backend is a durable string key-value store. Implementations must be safe
// for concurrent use; concurrent writes are last-writer-wins.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type Store struct {
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) GetToken(ctx context.Context) (string, error) {
	return s.get(ctx, constraints.StorageKeyAccessToken)
}

func (s *Store) SaveToken(ctx context.Context, token string) error {
	return s.set(ctx, constraints.StorageKeyAccessToken, token)
}

func (s *Store) GetRefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, constraints.StorageKeyRefreshToken)
}

func (s *Store) SaveRefreshToken(ctx context.Context, token string) error {
	return s.set(ctx, constraints.StorageKeyRefreshToken, token)
}

// GetUser returns the stored profile, or nil when no user is stored.
func (s *Store) GetUser(ctx context.Context) (*v1.UserProfile, error) {
	raw, err := s.get(ctx, constraints.StorageKeyUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var profile v1.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("tokenstore: decode user: %w", err)
	}
	return &profile, nil
}

// SaveUser stores profile as JSON; a nil profile removes the stored user.
func (s *Store) SaveUser(ctx context.Context, profile *v1.UserProfile) error {
	if profile == nil {
		return s.backend.Delete(ctx, constraints.StorageKeyUser)
	}
	b, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("tokenstore: encode user: %w", err)
	}
	return s.set(ctx, constraints.StorageKeyUser, string(b))
}

// ClearAll removes all three session entries. Clearing an empty store is a no-op.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.backend.Delete(ctx,
		constraints.StorageKeyAccessToken,
		constraints.StorageKeyRefreshToken,
		constraints.StorageKeyUser,
	); err != nil {
		return fmt.Errorf("tokenstore: clear session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether an access token is present.
func (s *Store) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		return fmt.Errorf("tokenstore: set %s: %w", key, err)
	}
	return nil
}
