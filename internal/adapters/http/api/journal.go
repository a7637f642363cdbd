package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agrisiti/agrikit/internal/domain/dedupe"
	"github.com/agrisiti/agrikit/internal/domain/model"
)

const defaultJournalLimit = 50

// JournalDependencies accepts and lists activity journal events.
type JournalDependencies interface {
	dedupe.Deduper
	// Enqueue submits an event for asynchronous persistence.
	Enqueue(ctx context.Context, e model.Event) error
	Journal(ctx context.Context, learnerID string, limit int) ([]model.Event, error)
}

// JournalHandler serves /v1/learners/{learner}/journal.
type JournalHandler struct {
	deps JournalDependencies
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(deps JournalDependencies) *JournalHandler {
	return &JournalHandler{deps: deps}
}

// journalRequest is an event recorded by an offline client and synced later.
type journalRequest struct {
	EventID  string            `json:"event_id"`
	Activity string            `json:"activity"`
	Kind     string            `json:"kind"`
	Score    float64           `json:"score"`
	Detail   map[string]string `json:"detail"`
	TS       string            `json:"ts"`
}

func (e journalRequest) toEvent(learnerID string) (model.Event, error) {
	if strings.TrimSpace(e.TS) == "" {
		return model.Event{}, errors.New("missing ts")
	}
	ts, err := time.Parse(time.RFC3339, e.TS)
	if err != nil {
		return model.Event{}, errors.New("invalid ts; must be RFC3339")
	}
	kind := e.Kind
	if kind == "" {
		kind = model.KindActivityReported
	}
	ev := model.Event{
		EventID:   strings.TrimSpace(e.EventID),
		LearnerID: learnerID,
		Activity:  e.Activity,
		Kind:      kind,
		Score:     e.Score,
		Detail:    e.Detail,
		TS:        ts.UTC(),
	}
	return ev, ev.Validate()
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type journalResponse struct {
	LearnerID string        `json:"learner_id"`
	Events    []model.Event `json:"events"`
}

// HandlePost handles POST /v1/learners/{learner}/journal.
func (h *JournalHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.journal.post"
	var req journalRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	event, err := req.toEvent(r.PathValue("learner"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), event.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	if err := h.deps.Enqueue(r.Context(), event); err != nil {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), event.EventID)
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandleList handles GET /v1/learners/{learner}/journal?limit=N.
func (h *JournalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.journal.list"
	limit := defaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		limit = n
	}
	learner := r.PathValue("learner")
	events, err := h.deps.Journal(r.Context(), learner, limit)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, journalResponse{LearnerID: learner, Events: events})
}

func (h *JournalHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/learners/{learner}/journal", MetricsMiddleware(h.HandlePost, "journal_post"))
	mux.HandleFunc("GET /v1/learners/{learner}/journal", MetricsMiddleware(h.HandleList, "journal_list"))
}
