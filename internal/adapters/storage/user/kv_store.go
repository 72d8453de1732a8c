package user

import (
	"context"
	"encoding/json"
	"log/slog"

	"weekendlog/internal/adapters/storage"
	domain "weekendlog/internal/domain/user"
)

// KVStore implements Store over the kv storage port, holding the whole
// collection as a JSON array under the "users" slot.
type KVStore struct {
	kv storage.KV
}

// Compile-time check that *KVStore satisfies Store.
var _ Store = (*KVStore)(nil)

// NewKVStore creates a new user store over the given kv port.
func NewKVStore(kv storage.KV) *KVStore {
	return &KVStore{kv: kv}
}

// All retrieves the full users collection, order-preserving.
// An empty slot yields an empty collection. A slot whose payload is not a
// JSON array is logged and treated as empty.
// PRE: none
// POST: Returns the collection or an error from the storage port
func (s *KVStore) All(ctx context.Context) ([]domain.User, error) {
	raw, ok, err := s.kv.Get(ctx, storage.KeyUsers)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var users []domain.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		slog.Warn("storage_integrity", "key", storage.KeyUsers, "error", err.Error())
		return nil, nil
	}
	return users, nil
}

// ReplaceAll writes the full users collection back to the slot.
// PRE: users have been validated
// POST: The slot holds exactly the given collection
func (s *KVStore) ReplaceAll(ctx context.Context, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, storage.KeyUsers, string(raw))
}

// GetByPSID retrieves a user by PS ID, matching case-insensitively.
// PRE: psID is non-empty
// POST: Returns the user or ErrNotFound
func (s *KVStore) GetByPSID(ctx context.Context, psID string) (domain.User, error) {
	users, err := s.All(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if domain.SamePSID(u.PSID, psID) {
			return u, nil
		}
	}
	return domain.User{}, ErrNotFound
}

// Save persists a user: replaces the record with a matching PS ID, or
// appends when none exists.
// PRE: value has been validated
// POST: The collection contains exactly one record for value's PS ID
func (s *KVStore) Save(ctx context.Context, value domain.User) error {
	users, err := s.All(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i, u := range users {
		if domain.SamePSID(u.PSID, value.PSID) {
			users[i] = value
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, value)
	}
	return s.ReplaceAll(ctx, users)
}

// Delete removes the user with the given PS ID.
// PRE: psID is non-empty
// POST: The matching record is removed; ErrNotFound if none matched
func (s *KVStore) Delete(ctx context.Context, psID string) error {
	users, err := s.All(ctx)
	if err != nil {
		return err
	}
	kept := users[:0]
	found := false
	for _, u := range users {
		if domain.SamePSID(u.PSID, psID) {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return ErrNotFound
	}
	return s.ReplaceAll(ctx, kept)
}

// Count returns the total number of users.
// PRE: none
// POST: Returns total user count
func (s *KVStore) Count(ctx context.Context) (int, error) {
	users, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}
