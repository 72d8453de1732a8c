package orchestrators

import (
	"context"
	"errors"
	"testing"

	weekendStore "weekendlog/internal/adapters/storage/weekend"
	"weekendlog/internal/application/prompt"
	"weekendlog/internal/domain/weekend"
)

// answeredPrompter returns an Asker with a pre-recorded answer.
func answeredPrompter(v bool) prompt.Asker { return prompt.Answered(v) }

// mockEntryStore implements the entry store interfaces over a slice.
type mockEntryStore struct {
	entries []weekend.Entry
}

func (m *mockEntryStore) GetByUserAndDate(_ context.Context, userID, weekendDate string) (weekend.Entry, error) {
	for _, e := range m.entries {
		if e.SameKey(userID, weekendDate) {
			return e, nil
		}
	}
	return weekend.Entry{}, weekendStore.ErrNotFound
}

func (m *mockEntryStore) Save(_ context.Context, value weekend.Entry) error {
	for i, e := range m.entries {
		if e.ID == value.ID {
			m.entries[i] = value
			return nil
		}
	}
	m.entries = append(m.entries, value)
	return nil
}

func (m *mockEntryStore) Delete(_ context.Context, userID, weekendDate string) error {
	for i, e := range m.entries {
		if e.SameKey(userID, weekendDate) {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return weekendStore.ErrNotFound
}

// --- ExecuteAddEntry tests ---

func TestExecuteAddEntry_Valid(t *testing.T) {
	store := &mockEntryStore{}
	entry, err := ExecuteAddEntry(context.Background(), AddEntryInput{
		UserID:         "ps1234",
		WeekendDate:    "2026-08-29",
		CompOffEarned:  weekend.FlagYes,
		CompOffDate:    "2026-09-04",
		ExpenseClaimed: weekend.FlagNo,
	}, AddEntryDeps{EntryStore: store, GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != "test-id-001" {
		t.Errorf("ID = %q", entry.ID)
	}
	if !entry.CreatedAt.Equal(fixedTime) || !entry.UpdatedAt.Equal(fixedTime) {
		t.Errorf("timestamps = %v / %v, want %v", entry.CreatedAt, entry.UpdatedAt, fixedTime)
	}
	if len(store.entries) != 1 {
		t.Error("entry not persisted")
	}
}

func TestExecuteAddEntry_ClearsCompOffDateWhenNotEarned(t *testing.T) {
	store := &mockEntryStore{}
	entry, err := ExecuteAddEntry(context.Background(), AddEntryInput{
		UserID:         "ps1234",
		WeekendDate:    "2026-08-29",
		CompOffEarned:  weekend.FlagNo,
		CompOffDate:    "2026-09-04", // stale date from the form
		ExpenseClaimed: weekend.FlagNo,
	}, AddEntryDeps{EntryStore: store, GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.CompOffDate != "" {
		t.Errorf("CompOffDate = %q, want empty when no comp off earned", entry.CompOffDate)
	}
}

func TestExecuteAddEntry_Duplicate(t *testing.T) {
	store := &mockEntryStore{entries: []weekend.Entry{{
		ID: "e1", UserID: "ps1234", WeekendDate: "2026-08-29",
		CompOffEarned: weekend.FlagNo, ExpenseClaimed: weekend.FlagNo,
	}}}
	_, err := ExecuteAddEntry(context.Background(), AddEntryInput{
		UserID:         "ps1234",
		WeekendDate:    "2026-08-29",
		CompOffEarned:  weekend.FlagNo,
		ExpenseClaimed: weekend.FlagNo,
	}, AddEntryDeps{EntryStore: store, GenerateID: fixedID, Now: fixedNow})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}
	if len(store.entries) != 1 {
		t.Error("duplicate must leave the collection unchanged")
	}
}

func TestExecuteAddEntry_FutureDate(t *testing.T) {
	store := &mockEntryStore{}
	_, err := ExecuteAddEntry(context.Background(), AddEntryInput{
		UserID:         "ps1234",
		WeekendDate:    "2026-09-05", // after fixedNow
		CompOffEarned:  weekend.FlagNo,
		ExpenseClaimed: weekend.FlagNo,
	}, AddEntryDeps{EntryStore: store, GenerateID: fixedID, Now: fixedNow})
	if !errors.Is(err, weekend.ErrFutureDate) {
		t.Errorf("expected ErrFutureDate, got %v", err)
	}
}

// --- ExecuteEditEntry tests ---

func existingEntry() weekend.Entry {
	created := fixedTime.AddDate(0, 0, -7)
	return weekend.Entry{
		ID:             "e1",
		UserID:         "ps1234",
		WeekendDate:    "2026-08-22",
		CompOffEarned:  weekend.FlagNo,
		ExpenseClaimed: weekend.FlagNo,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func TestExecuteEditEntry_Valid(t *testing.T) {
	store := &mockEntryStore{entries: []weekend.Entry{existingEntry()}}

	entry, err := ExecuteEditEntry(context.Background(), EditEntryInput{
		UserID:         "ps1234",
		OriginalDate:   "2026-08-22",
		WeekendDate:    "2026-08-29",
		CompOffEarned:  weekend.FlagYes,
		CompOffDate:    "2026-09-04",
		ExpenseClaimed: weekend.FlagYes,
	}, EditEntryDeps{EntryStore: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.WeekendDate != "2026-08-29" || entry.CompOffEarned != weekend.FlagYes {
		t.Errorf("fields not replaced: %+v", entry)
	}
	if entry.ID != "e1" {
		t.Error("ID must be preserved")
	}
	if !entry.CreatedAt.Equal(fixedTime.AddDate(0, 0, -7)) {
		t.Error("CreatedAt must be preserved")
	}
	if !entry.UpdatedAt.Equal(fixedTime) {
		t.Error("UpdatedAt must be refreshed")
	}
	if len(store.entries) != 1 {
		t.Errorf("collection holds %d entries, want 1", len(store.entries))
	}
}

func TestExecuteEditEntry_NotFound(t *testing.T) {
	store := &mockEntryStore{}
	_, err := ExecuteEditEntry(context.Background(), EditEntryInput{
		UserID:         "ps1234",
		OriginalDate:   "2026-08-22",
		WeekendDate:    "2026-08-22",
		CompOffEarned:  weekend.FlagNo,
		ExpenseClaimed: weekend.FlagNo,
	}, EditEntryDeps{EntryStore: store, Now: fixedNow})
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestExecuteEditEntry_MoveCollision(t *testing.T) {
	other := existingEntry()
	other.ID = "e2"
	other.WeekendDate = "2026-08-29"
	store := &mockEntryStore{entries: []weekend.Entry{existingEntry(), other}}

	_, err := ExecuteEditEntry(context.Background(), EditEntryInput{
		UserID:         "ps1234",
		OriginalDate:   "2026-08-22",
		WeekendDate:    "2026-08-29", // occupied by e2
		CompOffEarned:  weekend.FlagNo,
		ExpenseClaimed: weekend.FlagNo,
	}, EditEntryDeps{EntryStore: store, Now: fixedNow})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}
}

// --- ExecuteDeleteEntry tests ---

func TestExecuteDeleteEntry_Confirmed(t *testing.T) {
	store := &mockEntryStore{entries: []weekend.Entry{existingEntry()}}

	deleted, err := ExecuteDeleteEntry(context.Background(), DeleteEntryInput{
		UserID:      "ps1234",
		WeekendDate: "2026-08-22",
	}, DeleteEntryDeps{EntryStore: store, Prompter: answeredPrompter(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted || len(store.entries) != 0 {
		t.Errorf("deleted=%v, %d entries left", deleted, len(store.entries))
	}
}

func TestExecuteDeleteEntry_Cancelled(t *testing.T) {
	store := &mockEntryStore{entries: []weekend.Entry{existingEntry()}}

	deleted, err := ExecuteDeleteEntry(context.Background(), DeleteEntryInput{
		UserID:      "ps1234",
		WeekendDate: "2026-08-22",
	}, DeleteEntryDeps{EntryStore: store, Prompter: answeredPrompter(false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted || len(store.entries) != 1 {
		t.Errorf("cancelled delete must change nothing: deleted=%v, %d entries", deleted, len(store.entries))
	}
}

func TestExecuteDeleteEntry_NotFound(t *testing.T) {
	store := &mockEntryStore{}
	_, err := ExecuteDeleteEntry(context.Background(), DeleteEntryInput{
		UserID:      "ps1234",
		WeekendDate: "2026-08-22",
	}, DeleteEntryDeps{EntryStore: store, Prompter: answeredPrompter(true)})
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}
