package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"weekendlog/internal/adapters/storage"
	domain "weekendlog/internal/domain/user"
)

// KVStore implements Store over the kv storage port.
type KVStore struct {
	kv storage.KV
}

// Compile-time check that *KVStore satisfies Store.
var _ Store = (*KVStore)(nil)

// NewKVStore creates a new session store over the given kv port.
func NewKVStore(kv storage.KV) *KVStore {
	return &KVStore{kv: kv}
}

// Save writes the session snapshot and its expiry. A later Save overwrites
// the previous session (last writer wins).
// PRE: snapshot carries no credential, expiresAt is in the future
// POST: userData and sessionExpiry slots hold the new session
func (s *KVStore) Save(ctx context.Context, snapshot domain.Snapshot, expiresAt time.Time) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, storage.KeyUserData, string(raw)); err != nil {
		return err
	}
	return s.kv.Set(ctx, storage.KeySessionExpiry, strconv.FormatInt(expiresAt.UnixMilli(), 10))
}

// Current retrieves the session snapshot if one exists and has not expired.
// Malformed slot payloads are logged and treated as no session.
// PRE: now is a valid time
// POST: Returns the snapshot and true only while sessionExpiry > now
func (s *KVStore) Current(ctx context.Context, now time.Time) (domain.Snapshot, bool, error) {
	raw, ok, err := s.kv.Get(ctx, storage.KeyUserData)
	if err != nil || !ok {
		return domain.Snapshot{}, false, err
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		slog.Warn("storage_integrity", "key", storage.KeyUserData, "error", err.Error())
		return domain.Snapshot{}, false, nil
	}

	rawExpiry, ok, err := s.kv.Get(ctx, storage.KeySessionExpiry)
	if err != nil || !ok {
		return domain.Snapshot{}, false, err
	}
	ms, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		slog.Warn("storage_integrity", "key", storage.KeySessionExpiry, "error", err.Error())
		return domain.Snapshot{}, false, nil
	}
	if !now.Before(time.UnixMilli(ms)) {
		return domain.Snapshot{}, false, nil
	}
	return snapshot, true, nil
}

// Clear destroys the session.
// PRE: none
// POST: userData and sessionExpiry slots are empty
func (s *KVStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, storage.KeyUserData); err != nil {
		return err
	}
	return s.kv.Delete(ctx, storage.KeySessionExpiry)
}
