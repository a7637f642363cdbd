// Package model contains the activity events passed between layers.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Activity names.
const (
	ActivityQuiz     = "quiz"
	ActivityMatching = "matching"
	ActivityCosts    = "costs"
	ActivityCanvas   = "canvas"
)

// Event kinds.
const (
	KindQuizAnswered     = "quiz_answered"
	KindQuizFinished     = "quiz_finished"
	KindMatchDropped     = "match_dropped"
	KindMatchCompleted   = "match_completed"
	KindBreakEven        = "break_even"
	KindCanvasBoxSaved   = "canvas_box_saved"
	KindCanvasCompleted  = "canvas_completed"
	KindActivityReported = "activity_reported"
)

// ErrInvalidEvent is wrapped by Validate failures.
var ErrInvalidEvent = errors.New("invalid activity event")

// Event is one entry in a learner's activity journal.
type Event struct {
	EventID   string            `json:"event_id"`   // unique id for idempotency
	LearnerID string            `json:"learner_id"` // owner of the journal
	Activity  string            `json:"activity"`
	Kind      string            `json:"kind"`
	Score     float64           `json:"score"` // activity specific: quiz score, matches, units
	Detail    map[string]string `json:"detail,omitempty"`
	TS        time.Time         `json:"ts"`
}

// Validate checks the fields every journal entry needs.
func (e *Event) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	case e.LearnerID == "":
		return fmt.Errorf("%w: learner_id is required", ErrInvalidEvent)
	case e.Kind == "":
		return fmt.Errorf("%w: kind is required", ErrInvalidEvent)
	}
	switch e.Activity {
	case ActivityQuiz, ActivityMatching, ActivityCosts, ActivityCanvas:
		return nil
	}
	return fmt.Errorf("%w: unknown activity %q", ErrInvalidEvent, e.Activity)
}
