package weekend

import (
	"context"
	"encoding/json"
	"log/slog"

	"weekendlog/internal/adapters/storage"
	domain "weekendlog/internal/domain/weekend"
)

// KVStore implements Store over the kv storage port, holding the whole
// collection as a JSON array under the "weekendEntries" slot.
type KVStore struct {
	kv storage.KV
}

// Compile-time check that *KVStore satisfies Store.
var _ Store = (*KVStore)(nil)

// NewKVStore creates a new weekend entry store over the given kv port.
func NewKVStore(kv storage.KV) *KVStore {
	return &KVStore{kv: kv}
}

// All retrieves the full collection, order-preserving. A slot whose payload
// is not a JSON array is logged and treated as empty.
// PRE: none
// POST: Returns the collection or an error from the storage port
func (s *KVStore) All(ctx context.Context) ([]domain.Entry, error) {
	raw, ok, err := s.kv.Get(ctx, storage.KeyWeekendEntries)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var entries []domain.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Warn("storage_integrity", "key", storage.KeyWeekendEntries, "error", err.Error())
		return nil, nil
	}
	return entries, nil
}

// ReplaceAll writes the full collection back to the slot.
// PRE: entries have been validated
// POST: The slot holds exactly the given collection
func (s *KVStore) ReplaceAll(ctx context.Context, entries []domain.Entry) error {
	if entries == nil {
		entries = []domain.Entry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, storage.KeyWeekendEntries, string(raw))
}

// ListByUser retrieves the entries owned by the given user, in stored order.
// PRE: userID is non-empty
// POST: Returns the matching entries
func (s *KVStore) ListByUser(ctx context.Context, userID string) ([]domain.Entry, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var mine []domain.Entry
	for _, e := range entries {
		if e.UserID == userID {
			mine = append(mine, e)
		}
	}
	return mine, nil
}

// GetByUserAndDate retrieves the entry for the given (user, date) key.
// PRE: userID and weekendDate are non-empty
// POST: Returns the entry or ErrNotFound
func (s *KVStore) GetByUserAndDate(ctx context.Context, userID, weekendDate string) (domain.Entry, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	for _, e := range entries {
		if e.SameKey(userID, weekendDate) {
			return e, nil
		}
	}
	return domain.Entry{}, ErrNotFound
}

// Save persists an entry: replaces the record with a matching ID, or
// appends when none exists.
// PRE: value has been validated
// POST: The collection contains exactly one record with value's ID
func (s *KVStore) Save(ctx context.Context, value domain.Entry) error {
	entries, err := s.All(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i, e := range entries {
		if e.ID == value.ID {
			entries[i] = value
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, value)
	}
	return s.ReplaceAll(ctx, entries)
}

// Delete removes the entry for the given (user, date) key.
// PRE: userID and weekendDate are non-empty
// POST: The matching record is removed; ErrNotFound if none matched
func (s *KVStore) Delete(ctx context.Context, userID, weekendDate string) error {
	entries, err := s.All(ctx)
	if err != nil {
		return err
	}
	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e.SameKey(userID, weekendDate) {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrNotFound
	}
	return s.ReplaceAll(ctx, kept)
}
