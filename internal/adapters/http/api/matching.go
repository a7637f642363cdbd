package api

import (
	"context"
	"net/http"

	"github.com/agrisiti/agrikit/internal/adapters/sessions"
	"github.com/agrisiti/agrikit/internal/domain/matching"
	"github.com/agrisiti/agrikit/internal/domain/model"
)

// MatchingDependencies creates and finds matching games.
type MatchingDependencies interface {
	NewMatching(ctx context.Context, learnerID, domain string) (string, *sessions.Live[*matching.Game], error)
	Matching(learnerID, id string) (*sessions.Live[*matching.Game], error)
	EndSession(activity, learnerID, id string) error
}

// MatchingHandler serves /v1/matching.
type MatchingHandler struct {
	deps MatchingDependencies
}

// NewMatchingHandler creates a new matching handler.
func NewMatchingHandler(deps MatchingDependencies) *MatchingHandler {
	return &MatchingHandler{deps: deps}
}

type matchingSession = sessions.Live[*matching.Game]

type domainRequest struct {
	Domain string `json:"domain"`
}

// dragRequest carries one pointer event. Zones is the client's layout
// measured when the event fired.
type dragRequest struct {
	NeedID    string          `json:"need_id"`
	PointerID int             `json:"pointer_id"`
	Pointer   matching.Point  `json:"pointer"`
	Card      matching.Rect   `json:"card"`
	Zones     matching.Layout `json:"zones"`
}

type pickRequest struct {
	NeedID string `json:"need_id"`
	ZoneID string `json:"zone_id"`
}

// HandleCreate handles POST /v1/matching.
func (h *MatchingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.matching.create"
	learner, err := learnerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var req domainRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	id, live, err := h.deps.NewMatching(r.Context(), learner, req.Domain)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	respond(w, http.StatusCreated, id, live, live.Session.View())
}

// HandleGet handles GET /v1/matching/{id}.
func (h *MatchingHandler) HandleGet() http.HandlerFunc {
	return sessionHandler("api.matching.get", h.deps.Matching, func(w http.ResponseWriter, _ *http.Request, id string, live *matchingSession) {
		respond(w, http.StatusOK, id, live, live.Session.View())
	})
}

// HandleReset handles POST /v1/matching/{id}/reset.
func (h *MatchingHandler) HandleReset() http.HandlerFunc {
	return sessionHandler("api.matching.reset", h.deps.Matching, func(w http.ResponseWriter, r *http.Request, id string, live *matchingSession) {
		respond(w, http.StatusOK, id, live, live.Session.Reset(r.Context()))
	})
}

// HandleOther handles POST /v1/matching/{id}/other.
func (h *MatchingHandler) HandleOther() http.HandlerFunc {
	return sessionHandler("api.matching.other", h.deps.Matching, func(w http.ResponseWriter, r *http.Request, id string, live *matchingSession) {
		respond(w, http.StatusOK, id, live, live.Session.OtherVersion(r.Context()))
	})
}

// dragAction decodes a dragRequest and hands it to fn.
func (h *MatchingHandler) dragAction(op string, fn func(ctx context.Context, g *matching.Game, req dragRequest) sessionResponse) http.HandlerFunc {
	return sessionHandler(op, h.deps.Matching, func(w http.ResponseWriter, r *http.Request, id string, live *matchingSession) {
		var req dragRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		resp := fn(r.Context(), live.Session, req)
		resp.SessionID = id
		resp.Tones = live.Tones.Drain()
		writeJSON(w, http.StatusOK, resp)
	})
}

// HandleBeginDrag handles POST /v1/matching/{id}/drag/begin.
func (h *MatchingHandler) HandleBeginDrag() http.HandlerFunc {
	return h.dragAction("api.matching.drag_begin", func(ctx context.Context, g *matching.Game, req dragRequest) sessionResponse {
		view, ok := g.BeginDrag(ctx, req.NeedID, req.PointerID, req.Pointer, req.Card)
		return sessionResponse{View: view, Accepted: accepted(ok)}
	})
}

// HandleMove handles POST /v1/matching/{id}/drag/move.
func (h *MatchingHandler) HandleMove() http.HandlerFunc {
	return h.dragAction("api.matching.drag_move", func(ctx context.Context, g *matching.Game, req dragRequest) sessionResponse {
		view, ok := g.Move(ctx, req.PointerID, req.Pointer, req.Zones)
		return sessionResponse{View: view, Accepted: accepted(ok)}
	})
}

// HandleDrop handles POST /v1/matching/{id}/drag/drop.
func (h *MatchingHandler) HandleDrop() http.HandlerFunc {
	return h.dragAction("api.matching.drag_drop", func(ctx context.Context, g *matching.Game, req dragRequest) sessionResponse {
		view, res := g.Drop(ctx, req.PointerID, req.Pointer, req.Zones)
		return sessionResponse{View: view, Result: string(res)}
	})
}

// HandleCancel handles POST /v1/matching/{id}/drag/cancel.
func (h *MatchingHandler) HandleCancel() http.HandlerFunc {
	return h.dragAction("api.matching.drag_cancel", func(ctx context.Context, g *matching.Game, req dragRequest) sessionResponse {
		view, ok := g.Cancel(ctx, req.PointerID)
		return sessionResponse{View: view, Accepted: accepted(ok)}
	})
}

// HandlePick handles POST /v1/matching/{id}/pick.
func (h *MatchingHandler) HandlePick() http.HandlerFunc {
	const op = "api.matching.pick"
	return sessionHandler(op, h.deps.Matching, func(w http.ResponseWriter, r *http.Request, id string, live *matchingSession) {
		var req pickRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		view, ok := live.Session.Pick(r.Context(), req.NeedID)
		writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, View: view, Tones: live.Tones.Drain(), Accepted: accepted(ok)})
	})
}

// HandleZone handles POST /v1/matching/{id}/zone.
func (h *MatchingHandler) HandleZone() http.HandlerFunc {
	const op = "api.matching.zone"
	return sessionHandler(op, h.deps.Matching, func(w http.ResponseWriter, r *http.Request, id string, live *matchingSession) {
		var req pickRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		view, res := live.Session.ActivateZone(r.Context(), req.ZoneID)
		writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, View: view, Tones: live.Tones.Drain(), Result: string(res)})
	})
}

// HandleSound handles PUT /v1/matching/{id}/sound.
func (h *MatchingHandler) HandleSound() http.HandlerFunc {
	return soundHandler("api.matching.sound", h.deps.Matching, func(g *matching.Game, on bool) any { return g.SetSound(on) })
}

// HandleEnd handles DELETE /v1/matching/{id}.
func (h *MatchingHandler) HandleEnd() http.HandlerFunc {
	return endHandler("api.matching.end", model.ActivityMatching, h.deps.EndSession)
}

func (h *MatchingHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/matching", MetricsMiddleware(h.HandleCreate, "matching_create"))
	mux.HandleFunc("GET /v1/matching/{id}", MetricsMiddleware(h.HandleGet(), "matching_get"))
	mux.HandleFunc("DELETE /v1/matching/{id}", MetricsMiddleware(h.HandleEnd(), "matching_end"))
	mux.HandleFunc("POST /v1/matching/{id}/reset", MetricsMiddleware(h.HandleReset(), "matching_reset"))
	mux.HandleFunc("POST /v1/matching/{id}/other", MetricsMiddleware(h.HandleOther(), "matching_other"))
	mux.HandleFunc("POST /v1/matching/{id}/drag/begin", MetricsMiddleware(h.HandleBeginDrag(), "matching_drag_begin"))
	mux.HandleFunc("POST /v1/matching/{id}/drag/move", MetricsMiddleware(h.HandleMove(), "matching_drag_move"))
	mux.HandleFunc("POST /v1/matching/{id}/drag/drop", MetricsMiddleware(h.HandleDrop(), "matching_drag_drop"))
	mux.HandleFunc("POST /v1/matching/{id}/drag/cancel", MetricsMiddleware(h.HandleCancel(), "matching_drag_cancel"))
	mux.HandleFunc("POST /v1/matching/{id}/pick", MetricsMiddleware(h.HandlePick(), "matching_pick"))
	mux.HandleFunc("POST /v1/matching/{id}/zone", MetricsMiddleware(h.HandleZone(), "matching_zone"))
	mux.HandleFunc("PUT /v1/matching/{id}/sound", MetricsMiddleware(h.HandleSound(), "matching_sound"))
}
