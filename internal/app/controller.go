package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/lembrete/internal/calendar"
	"github.com/MarcoPoloResearchLab/lembrete/internal/holidays"
	"go.uber.org/zap"
)

var (
	// ErrEditorClosed indicates an editor action that needs an open day.
	ErrEditorClosed = errors.New("app: editor is not open")

	errMissingNotes = errors.New("app: note store is required")
)

// NoteStore is the subset of the note store the controller drives.
type NoteStore interface {
	HasNote(date calendar.Date) bool
	Text(date calendar.Date) (string, bool)
	Upsert(ctx context.Context, date calendar.Date, text string) error
	Delete(ctx context.Context, date calendar.Date) error
}

// ChangeNotifier is told about every note mutation.
type ChangeNotifier interface {
	NotifyNoteChanged(key calendar.DateKey)
}

type ControllerConfig struct {
	Notes     NoteStore
	Holidays  holidays.Table
	WeekStart time.Weekday
	Clock     func() time.Time
	Notifier  ChangeNotifier
	Logger    *zap.Logger
}

// Controller owns the calendar screen state: the displayed month, the note
// store and the single editor session.
type Controller struct {
	mu        sync.Mutex
	notes     NoteStore
	holidays  holidays.Table
	weekStart time.Weekday
	notifier  ChangeNotifier
	logger    *zap.Logger
	month     calendar.Date
	editor    editorSession
}

type editorSession struct {
	open  bool
	date  calendar.Date
	draft string
}

func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Notes == nil {
		return nil, errMissingNotes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		notes:     cfg.Notes,
		holidays:  cfg.Holidays,
		weekStart: cfg.WeekStart,
		notifier:  cfg.Notifier,
		logger:    logger,
		month:     calendar.FirstOfMonth(calendar.Today(cfg.Clock)),
	}, nil
}

// WeekStart returns the configured first grid column.
func (c *Controller) WeekStart() time.Weekday {
	return c.weekStart
}

// CurrentMonth returns day 1 of the displayed month.
func (c *Controller) CurrentMonth() calendar.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.month
}

// SetMonth displays the month containing reference.
func (c *Controller) SetMonth(reference calendar.Date) calendar.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.month = calendar.FirstOfMonth(reference)
	return c.month
}

// NextMonth advances the displayed month.
func (c *Controller) NextMonth() calendar.Date {
	return c.shiftMonth(1)
}

// PreviousMonth moves the displayed month back.
func (c *Controller) PreviousMonth() calendar.Date {
	return c.shiftMonth(-1)
}

func (c *Controller) shiftMonth(n int) calendar.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.month = calendar.AddMonths(c.month, n)
	return c.month
}

// MonthView renders the displayed month.
func (c *Controller) MonthView() MonthView {
	return c.MonthViewFor(c.CurrentMonth())
}

// MonthViewFor renders the month containing reference without changing the
// displayed month.
func (c *Controller) MonthViewFor(reference calendar.Date) MonthView {
	first := calendar.FirstOfMonth(reference)
	slots := calendar.BuildMonth(first, c.weekStart)

	view := MonthView{
		Year:     first.Year(),
		Month:    int(first.Month()),
		Title:    MonthTitle(first),
		Weekdays: WeekdayLabels(c.weekStart),
		Cells:    make([]DayCell, 0, len(slots)),
	}
	for _, slot := range slots {
		date, ok := slot.Date()
		if !ok {
			view.Cells = append(view.Cells, DayCell{Empty: true})
			continue
		}
		key := date.Key()
		cell := DayCell{
			Date:    key.String(),
			Day:     date.Day(),
			HasNote: c.notes.HasNote(date),
		}
		if holiday, found := c.holidays.Find(key); found {
			cell.Holiday = holiday.Name
		}
		view.Cells = append(view.Cells, cell)
	}
	return view
}

// OpenDay opens the editor on date, seeded with its existing note. Opening a
// day replaces any session already open.
func (c *Controller) OpenDay(date calendar.Date) EditorState {
	text, _ := c.notes.Text(date)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.editor = editorSession{open: true, date: date, draft: text}
	return c.editorStateLocked()
}

// SetDraft replaces the draft text of the open session.
func (c *Controller) SetDraft(text string) (EditorState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editor.open {
		return c.editorStateLocked(), ErrEditorClosed
	}
	c.editor.draft = text
	return c.editorStateLocked(), nil
}

// Editor returns the current editor state.
func (c *Controller) Editor() EditorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editorStateLocked()
}

// Save stores the draft for the open day and closes the editor. Without an
// open session it only reports the closed state.
func (c *Controller) Save(ctx context.Context) EditorState {
	session, ok := c.closeEditor()
	if ok {
		c.UpsertNote(ctx, session.date, session.draft)
	}
	return c.Editor()
}

// Delete removes the note of the open day and closes the editor.
func (c *Controller) Delete(ctx context.Context) EditorState {
	session, ok := c.closeEditor()
	if ok {
		c.DeleteNote(ctx, session.date)
	}
	return c.Editor()
}

// Cancel closes the editor and discards the draft.
func (c *Controller) Cancel() EditorState {
	c.closeEditor()
	return c.Editor()
}

// UpsertNote writes text for date outside of an editor session.
func (c *Controller) UpsertNote(ctx context.Context, date calendar.Date, text string) {
	if err := c.notes.Upsert(ctx, date, text); err != nil {
		c.logger.Debug("note saved in memory only", zap.String("date", date.Key().String()), zap.Error(err))
	}
	c.notify(date)
}

// DeleteNote removes the note for date outside of an editor session.
func (c *Controller) DeleteNote(ctx context.Context, date calendar.Date) {
	if err := c.notes.Delete(ctx, date); err != nil {
		c.logger.Debug("note deleted in memory only", zap.String("date", date.Key().String()), zap.Error(err))
	}
	c.notify(date)
}

func (c *Controller) notify(date calendar.Date) {
	if c.notifier != nil {
		c.notifier.NotifyNoteChanged(date.Key())
	}
}

func (c *Controller) closeEditor() (editorSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session := c.editor
	c.editor = editorSession{}
	return session, session.open
}

func (c *Controller) editorStateLocked() EditorState {
	if !c.editor.open {
		return EditorState{}
	}
	return EditorState{
		Open:  true,
		Date:  c.editor.date.Key().String(),
		Draft: c.editor.draft,
	}
}
