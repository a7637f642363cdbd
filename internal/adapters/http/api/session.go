package api

import (
	"net/http"

	"github.com/agrisiti/agrikit/internal/adapters/sessions"
)

// lookupFunc finds a learner's session by id.
type lookupFunc[T sessions.Closer] func(learnerID, id string) (*sessions.Live[T], error)

// sessionHandler resolves the caller's session before calling fn. Unknown or
// foreign sessions get a 404.
func sessionHandler[T sessions.Closer](op string, lookup lookupFunc[T], fn func(w http.ResponseWriter, r *http.Request, id string, live *sessions.Live[T])) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner, err := learnerID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		id := r.PathValue("id")
		live, err := lookup(learner, id)
		if err != nil {
			fail(w, Wrap(op, err))
			return
		}
		fn(w, r, id, live)
	}
}

// respond writes view together with the tones produced since the last response.
func respond[T sessions.Closer](w http.ResponseWriter, status int, id string, live *sessions.Live[T], view any) {
	writeJSON(w, status, sessionResponse{SessionID: id, View: view, Tones: live.Tones.Drain()})
}

// soundHandler serves PUT /v1/{activity}/{id}/sound.
func soundHandler[T sessions.Closer](op string, lookup lookupFunc[T], set func(T, bool) any) http.HandlerFunc {
	return sessionHandler(op, lookup, func(w http.ResponseWriter, r *http.Request, id string, live *sessions.Live[T]) {
		var req soundRequest
		if err := decode(r, &req); err != nil || req.Sound == nil {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		respond(w, http.StatusOK, id, live, set(live.Session, *req.Sound))
	})
}

// endHandler serves DELETE /v1/{activity}/{id}.
func endHandler(op, activity string, end func(activity, learnerID, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner, err := learnerID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := end(activity, learner, r.PathValue("id")); err != nil {
			fail(w, Wrap(op, err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
