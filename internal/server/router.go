package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/lembrete/internal/app"
	"github.com/MarcoPoloResearchLab/lembrete/internal/calendar"
	"github.com/MarcoPoloResearchLab/lembrete/internal/notes"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultHeartbeatInterval = 25 * time.Second

var (
	errMissingController = errors.New("calendar controller dependency required")
	errMissingNotes      = errors.New("note store dependency required")
	errMissingDispatcher = errors.New("realtime dispatcher dependency required")
)

// TokenValidator resolves a bearer token to its subject.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// NoteReader exposes read access to stored notes.
type NoteReader interface {
	List() []notes.Note
	Text(date calendar.Date) (string, bool)
}

type Dependencies struct {
	Controller        *app.Controller
	Notes             NoteReader
	Dispatcher        *RealtimeDispatcher
	TokenValidator    TokenValidator
	IDProvider        IDProvider
	HeartbeatInterval time.Duration
	Logger            *zap.Logger
}

// NewHTTPHandler wires the calendar API. Bearer auth applies only when a
// TokenValidator is supplied.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Controller == nil {
		return nil, errMissingController
	}
	if deps.Notes == nil {
		return nil, errMissingNotes
	}
	if deps.Dispatcher == nil {
		return nil, errMissingDispatcher
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ids := deps.IDProvider
	if ids == nil {
		ids = NewUUIDProvider()
	}
	heartbeat := deps.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger(ids, logger))

	handler := &httpHandler{
		controller: deps.Controller,
		notes:      deps.Notes,
		dispatcher: deps.Dispatcher,
		tokens:     deps.TokenValidator,
		heartbeat:  heartbeat,
		logger:     logger,
	}

	router.GET("/healthz", handler.handleHealth)

	protected := router.Group("/")
	if handler.tokens != nil {
		protected.Use(handler.authorizeRequest)
	}
	protected.GET("/calendar", handler.handleMonthView)
	protected.POST("/calendar/next", handler.handleNextMonth)
	protected.POST("/calendar/previous", handler.handlePreviousMonth)
	protected.GET("/notes", handler.handleListNotes)
	protected.GET("/notes/:date", handler.handleGetNote)
	protected.PUT("/notes/:date", handler.handlePutNote)
	protected.DELETE("/notes/:date", handler.handleDeleteNote)
	protected.GET("/editor", handler.handleEditorState)
	protected.POST("/editor/open", handler.handleEditorOpen)
	protected.PUT("/editor/draft", handler.handleEditorDraft)
	protected.POST("/editor/save", handler.handleEditorSave)
	protected.POST("/editor/cancel", handler.handleEditorCancel)
	protected.POST("/editor/delete", handler.handleEditorDelete)
	protected.GET("/events", handler.handleEvents)

	return router, nil
}

type httpHandler struct {
	controller *app.Controller
	notes      NoteReader
	dispatcher *RealtimeDispatcher
	tokens     TokenValidator
	heartbeat  time.Duration
	logger     *zap.Logger
}

type notePayload struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

type listNotesResponse struct {
	Notes []notePayload `json:"notes"`
}

type noteTextRequest struct {
	Text *string `json:"text"`
}

type editorOpenRequest struct {
	Date string `json:"date"`
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleMonthView(c *gin.Context) {
	rawMonth := c.Query("month")
	if rawMonth == "" {
		c.JSON(http.StatusOK, h.controller.MonthView())
		return
	}
	month, err := calendar.ParseMonth(rawMonth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_month"})
		return
	}
	c.JSON(http.StatusOK, h.controller.MonthViewFor(month))
}

func (h *httpHandler) handleNextMonth(c *gin.Context) {
	h.controller.NextMonth()
	c.JSON(http.StatusOK, h.controller.MonthView())
}

func (h *httpHandler) handlePreviousMonth(c *gin.Context) {
	h.controller.PreviousMonth()
	c.JSON(http.StatusOK, h.controller.MonthView())
}

func (h *httpHandler) handleListNotes(c *gin.Context) {
	stored := h.notes.List()
	response := listNotesResponse{Notes: make([]notePayload, 0, len(stored))}
	for _, note := range stored {
		response.Notes = append(response.Notes, notePayload{Date: note.Date.String(), Text: note.Text})
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleGetNote(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	text, found := h.notes.Text(date)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "note_not_found"})
		return
	}
	c.JSON(http.StatusOK, notePayload{Date: date.Key().String(), Text: text})
}

func (h *httpHandler) handlePutNote(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	var request noteTextRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	h.controller.UpsertNote(c.Request.Context(), date, *request.Text)
	c.JSON(http.StatusOK, notePayload{Date: date.Key().String(), Text: *request.Text})
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	h.controller.DeleteNote(c.Request.Context(), date)
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleEditorState(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Editor())
}

func (h *httpHandler) handleEditorOpen(c *gin.Context) {
	var request editorOpenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	date, err := calendar.ParseDateKey(request.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return
	}
	c.JSON(http.StatusOK, h.controller.OpenDay(date))
}

func (h *httpHandler) handleEditorDraft(c *gin.Context) {
	var request noteTextRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	state, err := h.controller.SetDraft(*request.Text)
	if errors.Is(err, app.ErrEditorClosed) {
		c.JSON(http.StatusConflict, gin.H{"error": "editor_closed"})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *httpHandler) handleEditorSave(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Save(c.Request.Context()))
}

func (h *httpHandler) handleEditorCancel(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Cancel())
}

func (h *httpHandler) handleEditorDelete(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Delete(c.Request.Context()))
}

type realtimePayload struct {
	Source    string   `json:"source"`
	DateKeys  []string `json:"date_keys,omitempty"`
	Timestamp int64    `json:"timestamp_s"`
}

func (h *httpHandler) handleEvents(c *gin.Context) {
	ctx := c.Request.Context()
	stream, cleanup := h.dispatcher.Subscribe(ctx)
	defer cleanup()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-stream:
			if !ok {
				return
			}
			c.SSEvent(message.EventType, realtimePayload{
				Source:    realtimeSourceBackend,
				DateKeys:  message.DateKeys,
				Timestamp: message.Timestamp.Unix(),
			})
			c.Writer.Flush()
		case tick := <-ticker.C:
			c.SSEvent(realtimeEventHeartbeat, realtimePayload{
				Source:    realtimeSourceBackend,
				Timestamp: tick.UTC().Unix(),
			})
			c.Writer.Flush()
		}
	}
}

func (h *httpHandler) dateParam(c *gin.Context) (calendar.Date, bool) {
	date, err := calendar.ParseDateKey(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return calendar.Date{}, false
	}
	return date, true
}
