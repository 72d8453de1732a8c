package theme

import (
	"context"

	"weekendlog/internal/adapters/storage"
	domain "weekendlog/internal/domain/user"
)

// KVStore implements Store over the kv storage port using the "theme" slot.
type KVStore struct {
	kv storage.KV
}

// Compile-time check that *KVStore satisfies Store.
var _ Store = (*KVStore)(nil)

// NewKVStore creates a new theme store over the given kv port.
func NewKVStore(kv storage.KV) *KVStore {
	return &KVStore{kv: kv}
}

// Get retrieves the stored theme, defaulting to light when the slot is
// empty or holds an unknown value.
// PRE: none
// POST: Returns "light" or "dark"
func (s *KVStore) Get(ctx context.Context) (string, error) {
	raw, ok, err := s.kv.Get(ctx, storage.KeyTheme)
	if err != nil {
		return "", err
	}
	if !ok || (raw != domain.ThemeLight && raw != domain.ThemeDark) {
		return domain.ThemeLight, nil
	}
	return raw, nil
}

// Set persists the theme.
// PRE: theme is "light" or "dark"
// POST: The slot holds the given theme
func (s *KVStore) Set(ctx context.Context, theme string) error {
	return s.kv.Set(ctx, storage.KeyTheme, theme)
}
