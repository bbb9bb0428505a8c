package notes

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/MarcoPoloResearchLab/lembrete/internal/calendar"
	"go.uber.org/zap"
)

var noOpLogger = zap.NewNop()

// KeyValueStore is the persistence API the note mapping is written through.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type StoreConfig struct {
	Storage KeyValueStore
	Logger  *zap.Logger
}

// Store maps calendar days to note text. Every mutation rewrites the whole
// mapping to storage; a failed write leaves memory ahead of storage until the
// next successful write.
type Store struct {
	mu      sync.Mutex
	storage KeyValueStore
	logger  *zap.Logger
	notes   map[calendar.DateKey]string
}

func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Storage == nil {
		return nil, newServiceError(opStoreNew, "missing_storage", errMissingStorage)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Store{
		storage: cfg.Storage,
		logger:  logger,
		notes:   make(map[calendar.DateKey]string),
	}, nil
}

// Load replaces the in-memory mapping with the persisted one and returns a
// copy of it. Missing, unreadable or malformed data yields an empty mapping.
func (s *Store) Load(ctx context.Context) map[calendar.DateKey]string {
	loaded := s.read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = loaded
	return copyNotes(loaded)
}

func (s *Store) read(ctx context.Context) map[calendar.DateKey]string {
	raw, ok, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		s.logWarn(opLoad, "read_failed", err)
		return make(map[calendar.DateKey]string)
	}
	if !ok || raw == "" {
		return make(map[calendar.DateKey]string)
	}

	var decoded map[calendar.DateKey]string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.logWarn(opLoad, "decode_failed", err)
		return make(map[calendar.DateKey]string)
	}
	if decoded == nil {
		decoded = make(map[calendar.DateKey]string)
	}
	return decoded
}

// Upsert stores text for date, then persists the whole mapping. Empty text is
// stored as-is and still counts as a note.
func (s *Store) Upsert(ctx context.Context, date calendar.Date, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[date.Key()] = text
	return s.persistLocked(ctx)
}

// Delete removes the note for date when present, then persists the whole
// mapping. Deleting a missing note is not an error.
func (s *Store) Delete(ctx context.Context, date calendar.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, date.Key())
	return s.persistLocked(ctx)
}

// HasNote reports whether date has an entry in memory.
func (s *Store) HasNote(date calendar.Date) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notes[date.Key()]
	return ok
}

// Text returns the note for date and whether one exists.
func (s *Store) Text(date calendar.Date) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.notes[date.Key()]
	return text, ok
}

// Len returns the number of stored notes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

// Snapshot returns a copy of the in-memory mapping.
func (s *Store) Snapshot() map[calendar.DateKey]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyNotes(s.notes)
}

// List returns the notes ordered by calendar day. Keys that do not parse as
// dates sort last, by key.
func (s *Store) List() []Note {
	snapshot := s.Snapshot()
	notes := make([]Note, 0, len(snapshot))
	for key, text := range snapshot {
		notes = append(notes, Note{Date: key, Text: text})
	}
	sort.Slice(notes, func(i, j int) bool {
		left, leftErr := notes[i].Date.Date()
		right, rightErr := notes[j].Date.Date()
		switch {
		case leftErr == nil && rightErr == nil:
			return left.Before(right)
		case leftErr == nil:
			return true
		case rightErr == nil:
			return false
		default:
			return notes[i].Date < notes[j].Date
		}
	})
	return notes
}

func (s *Store) persistLocked(ctx context.Context) error {
	encoded, err := json.Marshal(s.notes)
	if err != nil {
		s.logError(opPersist, "encode_failed", err)
		return newServiceError(opPersist, "encode_failed", err)
	}
	if err := s.storage.Set(ctx, StorageKey, string(encoded)); err != nil {
		s.logError(opPersist, "write_failed", err, zap.Int("note_count", len(s.notes)))
		return newServiceError(opPersist, "write_failed", err)
	}
	return nil
}

func copyNotes(source map[calendar.DateKey]string) map[calendar.DateKey]string {
	copied := make(map[calendar.DateKey]string, len(source))
	for key, text := range source {
		copied[key] = text
	}
	return copied
}

func (s *Store) loggerOrDefault() *zap.Logger {
	if s == nil || s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Store) logWarn(operation, reason string, err error, fields ...zap.Field) {
	s.loggerOrDefault().Warn("notes store degraded", errorFields(operation, reason, err, fields)...)
}

func (s *Store) logError(operation, reason string, err error, fields ...zap.Field) {
	s.loggerOrDefault().Error("notes store error", errorFields(operation, reason, err, fields)...)
}

func errorFields(operation, reason string, err error, fields []zap.Field) []zap.Field {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	return append(attrs, fields...)
}
