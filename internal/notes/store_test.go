package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/lembrete/internal/calendar"
	"github.com/MarcoPoloResearchLab/lembrete/internal/kvstore"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestStore(t *testing.T, storage KeyValueStore) (*Store, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	store, err := NewStore(StoreConfig{Storage: storage, Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	return store, logs
}

func mustDate(t *testing.T, key string) calendar.Date {
	t.Helper()
	date, err := calendar.ParseDateKey(key)
	if err != nil {
		t.Fatalf("unexpected date key error: %v", err)
	}
	return date
}

func TestNewStoreRequiresStorage(t *testing.T) {
	_, err := NewStore(StoreConfig{})
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if serviceErr.Code() != "notes.store.new.missing_storage" {
		t.Fatalf("unexpected error code %s", serviceErr.Code())
	}
}

func TestLoadEmptyStorageYieldsEmptyMapping(t *testing.T) {
	store, logs := newTestStore(t, kvstore.NewMemoryStore())

	loaded := store.Load(context.Background())
	if len(loaded) != 0 {
		t.Fatalf("expected empty mapping, got %v", loaded)
	}
	if logs.Len() != 0 {
		t.Fatalf("missing data should not be logged, got %d entries", logs.Len())
	}
}

func TestUpsertThenHasNote(t *testing.T) {
	store, _ := newTestStore(t, kvstore.NewMemoryStore())
	ctx := context.Background()

	if err := store.Upsert(ctx, mustDate(t, "15-03-2024"), "Buy milk"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.HasNote(mustDate(t, "15-03-2024")) {
		t.Fatalf("expected note on 15-03-2024")
	}
	if store.HasNote(mustDate(t, "16-03-2024")) {
		t.Fatalf("did not expect note on 16-03-2024")
	}
	text, ok := store.Text(mustDate(t, "15-03-2024"))
	if !ok || text != "Buy milk" {
		t.Fatalf("unexpected note text %q (%v)", text, ok)
	}
}

func TestUpsertSurvivesRestart(t *testing.T) {
	storage := kvstore.NewMemoryStore()
	store, _ := newTestStore(t, storage)
	ctx := context.Background()
	date := calendar.NewDate(2024, time.March, 15)

	if err := store.Upsert(ctx, date, "Buy milk"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Upsert(ctx, date, "Buy oat milk"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restarted, _ := newTestStore(t, storage)
	loaded := restarted.Load(ctx)
	if loaded[date.Key()] != "Buy oat milk" {
		t.Fatalf("expected overwritten note after restart, got %v", loaded)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected a single note, got %d", len(loaded))
	}
}

func TestDeleteThenLoad(t *testing.T) {
	storage := kvstore.NewMemoryStore()
	store, _ := newTestStore(t, storage)
	ctx := context.Background()
	date := calendar.NewDate(2024, time.March, 15)
	other := calendar.NewDate(2024, time.March, 16)

	if err := store.Upsert(ctx, date, "Buy milk"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Upsert(ctx, other, "Call mom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(ctx, date); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restarted, _ := newTestStore(t, storage)
	loaded := restarted.Load(ctx)
	if _, exists := loaded[date.Key()]; exists {
		t.Fatalf("deleted note came back after restart")
	}
	if loaded[other.Key()] != "Call mom" {
		t.Fatalf("expected unrelated note to survive, got %v", loaded)
	}
}

func TestDeleteMissingNoteIsNoOp(t *testing.T) {
	storage := kvstore.NewMemoryStore()
	store, _ := newTestStore(t, storage)

	if err := store.Delete(context.Background(), calendar.NewDate(2024, time.March, 15)); err != nil {
		t.Fatalf("expected no error deleting a missing note, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d notes", store.Len())
	}
	if storage.SetCalls() != 1 {
		t.Fatalf("expected the mapping to be rewritten once, got %d writes", storage.SetCalls())
	}
}

func TestUpsertEmptyTextKeepsKey(t *testing.T) {
	store, _ := newTestStore(t, kvstore.NewMemoryStore())
	date := calendar.NewDate(2024, time.March, 15)

	if err := store.Upsert(context.Background(), date, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.HasNote(date) {
		t.Fatalf("expected empty text to still count as a note")
	}
}

func TestLoadReadFailureYieldsEmptyMapping(t *testing.T) {
	storage := kvstore.NewMemoryStore()
	seed, _ := newTestStore(t, storage)
	if err := seed.Upsert(context.Background(), calendar.NewDate(2024, time.March, 15), "Buy milk"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	storage.FailGets(errors.New("storage offline"))
	store, logs := newTestStore(t, storage)
	loaded := store.Load(context.Background())

	if len(loaded) != 0 {
		t.Fatalf("expected empty mapping on read failure, got %v", loaded)
	}
	entries := logs.FilterField(zap.String("reason", "read_failed")).All()
	if len(entries) != 1 {
		t.Fatalf("expected one read failure log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %s", entries[0].Level)
	}
}

func TestLoadMalformedDataYieldsEmptyMapping(t *testing.T) {
	storage := kvstore.NewMemoryStore()
	if err := storage.Set(context.Background(), StorageKey, "{not json"); err != nil {
		t.Fatalf("failed to seed storage: %v", err)
	}
	store, logs := newTestStore(t, storage)

	loaded := store.Load(context.Background())
	if len(loaded) != 0 {
		t.Fatalf("expected empty mapping on malformed data, got %v", loaded)
	}
	if logs.FilterField(zap.String("reason", "decode_failed")).Len() != 1 {
		t.Fatalf("expected a decode failure log entry")
	}
}

func TestWriteFailureKeepsMemoryAndReturnsCode(t *testing.T) {
	storage := kvstore.NewMemoryStore()
	store, logs := newTestStore(t, storage)
	date := calendar.NewDate(2024, time.March, 15)
	storage.FailSets(errors.New("disk full"))

	err := store.Upsert(context.Background(), date, "Buy milk")
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if serviceErr.Code() != "notes.persist.write_failed" {
		t.Fatalf("unexpected error code %s", serviceErr.Code())
	}
	if !store.HasNote(date) {
		t.Fatalf("in-memory mapping must not roll back on write failure")
	}
	if logs.FilterMessage("notes store error").Len() != 1 {
		t.Fatalf("expected write failure to be logged")
	}

	storage.FailSets(nil)
	if err := store.Upsert(context.Background(), calendar.NewDate(2024, time.March, 16), "Call mom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	restarted, _ := newTestStore(t, storage)
	if len(restarted.Load(context.Background())) != 2 {
		t.Fatalf("expected next successful write to carry both notes")
	}
}

func TestListOrdersByDate(t *testing.T) {
	store, _ := newTestStore(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	for _, key := range []string{"02-01-2025", "15-03-2024", "31-12-2024"} {
		if err := store.Upsert(ctx, mustDate(t, key), key); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	listed := store.List()
	want := []calendar.DateKey{"15-03-2024", "31-12-2024", "02-01-2025"}
	if len(listed) != len(want) {
		t.Fatalf("expected %d notes, got %d", len(want), len(listed))
	}
	for index, key := range want {
		if listed[index].Date != key {
			t.Fatalf("position %d: expected %s, got %s", index, key, listed[index].Date)
		}
	}
}
