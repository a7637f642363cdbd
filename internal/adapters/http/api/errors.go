package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/agrisiti/agrikit/internal/adapters/repository"
	"github.com/agrisiti/agrikit/internal/adapters/sessions"
	"github.com/agrisiti/agrikit/internal/domain/canvas"
	"github.com/agrisiti/agrikit/internal/domain/costs"
	"github.com/agrisiti/agrikit/internal/domain/matching"
	"github.com/agrisiti/agrikit/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrRender       = errors.New("render failed")
)

// opError records the operation that failed, an optional kind and the cause.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.err == nil:
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	case e.kind == nil:
		return fmt.Sprintf("%s: %v", e.op, e.err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
	}
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// Wrap annotates err with op. It returns nil for a nil err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// WrapKind annotates err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// classify maps an error to its HTTP status and code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, sessions.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, matching.ErrUnknownDomain),
		errors.Is(err, costs.ErrUnknownDomain),
		errors.Is(err, canvas.ErrUnknownBox),
		errors.Is(err, model.ErrInvalidEvent),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, canvas.ErrBoxLocked),
		errors.Is(err, canvas.ErrEditorClosed),
		errors.Is(err, canvas.ErrNotAwaitingName),
		errors.Is(err, canvas.ErrBusinessNameRequired),
		errors.Is(err, canvas.ErrDownloadNotReady),
		errors.Is(err, costs.ErrNoDomain):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail writes err with the status classify picks for it.
func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
