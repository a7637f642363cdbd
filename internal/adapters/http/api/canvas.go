package api

import (
	"context"
	"net/http"

	"github.com/agrisiti/agrikit/internal/adapters/sessions"
	"github.com/agrisiti/agrikit/internal/domain/canvas"
	"github.com/agrisiti/agrikit/internal/domain/model"
)

// CanvasDependencies creates and finds canvas builders.
type CanvasDependencies interface {
	NewCanvas(ctx context.Context, learnerID string) (string, *sessions.Live[*canvas.Builder])
	Canvas(learnerID, id string) (*sessions.Live[*canvas.Builder], error)
	EndSession(activity, learnerID, id string) error
}

// CanvasHandler serves /v1/canvas.
type CanvasHandler struct {
	deps CanvasDependencies
}

// NewCanvasHandler creates a new canvas handler.
func NewCanvasHandler(deps CanvasDependencies) *CanvasHandler {
	return &CanvasHandler{deps: deps}
}

type canvasSession = sessions.Live[*canvas.Builder]

type openRequest struct {
	BoxID string `json:"box_id"`
}

type finishRequest struct {
	BusinessName string `json:"business_name"`
	UserName     string `json:"user_name"`
}

type loadResponse struct {
	SessionID string      `json:"session_id"`
	View      canvas.View `json:"view"`
	Found     bool        `json:"found"`
}

// HandleCreate handles POST /v1/canvas.
func (h *CanvasHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.canvas.create"
	learner, err := learnerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	id, live := h.deps.NewCanvas(r.Context(), learner)
	respond(w, http.StatusCreated, id, live, live.Session.View())
}

// step adapts a builder transition that cannot fail.
func (h *CanvasHandler) step(op string, fn func(*canvas.Builder, context.Context) canvas.View) http.HandlerFunc {
	return sessionHandler(op, h.deps.Canvas, func(w http.ResponseWriter, r *http.Request, id string, live *canvasSession) {
		respond(w, http.StatusOK, id, live, fn(live.Session, r.Context()))
	})
}

// HandleGet handles GET /v1/canvas/{id}.
func (h *CanvasHandler) HandleGet() http.HandlerFunc {
	return h.step("api.canvas.get", func(b *canvas.Builder, _ context.Context) canvas.View { return b.View() })
}

// HandleOpen handles POST /v1/canvas/{id}/open.
func (h *CanvasHandler) HandleOpen() http.HandlerFunc {
	const op = "api.canvas.open"
	return sessionHandler(op, h.deps.Canvas, func(w http.ResponseWriter, r *http.Request, id string, live *canvasSession) {
		var req openRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		view, err := live.Session.Open(r.Context(), req.BoxID)
		if err != nil {
			fail(w, Wrap(op, err))
			return
		}
		respond(w, http.StatusOK, id, live, view)
	})
}

// HandleSuggestion handles POST /v1/canvas/{id}/suggestion.
func (h *CanvasHandler) HandleSuggestion() http.HandlerFunc {
	const op = "api.canvas.suggestion"
	return sessionHandler(op, h.deps.Canvas, func(w http.ResponseWriter, r *http.Request, id string, live *canvasSession) {
		view, err := live.Session.UseSuggestion(r.Context())
		if err != nil {
			fail(w, Wrap(op, err))
			return
		}
		respond(w, http.StatusOK, id, live, view)
	})
}

// HandleSave handles POST /v1/canvas/{id}/save.
func (h *CanvasHandler) HandleSave() http.HandlerFunc {
	const op = "api.canvas.save"
	return sessionHandler(op, h.deps.Canvas, func(w http.ResponseWriter, r *http.Request, id string, live *canvasSession) {
		var draft canvas.Draft
		if err := decode(r, &draft); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		view, err := live.Session.Save(r.Context(), draft)
		if err != nil {
			fail(w, Wrap(op, err))
			return
		}
		respond(w, http.StatusOK, id, live, view)
	})
}

// HandleFinish handles POST /v1/canvas/{id}/finish.
func (h *CanvasHandler) HandleFinish() http.HandlerFunc {
	const op = "api.canvas.finish"
	return sessionHandler(op, h.deps.Canvas, func(w http.ResponseWriter, r *http.Request, id string, live *canvasSession) {
		var req finishRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		view, err := live.Session.Finish(r.Context(), req.BusinessName, req.UserName)
		if err != nil {
			fail(w, Wrap(op, err))
			return
		}
		respond(w, http.StatusOK, id, live, view)
	})
}

// HandleLoad handles POST /v1/canvas/{id}/load.
func (h *CanvasHandler) HandleLoad() http.HandlerFunc {
	return sessionHandler("api.canvas.load", h.deps.Canvas, func(w http.ResponseWriter, r *http.Request, id string, live *canvasSession) {
		view, found := live.Session.LoadSaved(r.Context())
		writeJSON(w, http.StatusOK, loadResponse{SessionID: id, View: view, Found: found})
	})
}

// HandlePrint handles GET /v1/canvas/{id}/print. It answers 409 until every
// box is filled and a business name is set.
func (h *CanvasHandler) HandlePrint() http.HandlerFunc {
	const op = "api.canvas.print"
	return sessionHandler(op, h.deps.Canvas, func(w http.ResponseWriter, r *http.Request, _ string, live *canvasSession) {
		sheet, err := live.Session.Download(r.Context())
		if err != nil {
			fail(w, Wrap(op, err))
			return
		}
		if r.URL.Query().Get("format") == "json" {
			writeJSON(w, http.StatusOK, sheet)
			return
		}
		renderHTML(w, op, canvasSheetTmpl, sheet)
	})
}

// HandleEnd handles DELETE /v1/canvas/{id}.
func (h *CanvasHandler) HandleEnd() http.HandlerFunc {
	return endHandler("api.canvas.end", model.ActivityCanvas, h.deps.EndSession)
}

func (h *CanvasHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/canvas", MetricsMiddleware(h.HandleCreate, "canvas_create"))
	mux.HandleFunc("GET /v1/canvas/{id}", MetricsMiddleware(h.HandleGet(), "canvas_get"))
	mux.HandleFunc("DELETE /v1/canvas/{id}", MetricsMiddleware(h.HandleEnd(), "canvas_end"))
	mux.HandleFunc("POST /v1/canvas/{id}/start", MetricsMiddleware(h.step("api.canvas.start", (*canvas.Builder).StartGuided), "canvas_start"))
	mux.HandleFunc("POST /v1/canvas/{id}/continue", MetricsMiddleware(h.step("api.canvas.continue", (*canvas.Builder).ContinueGuided), "canvas_continue"))
	mux.HandleFunc("POST /v1/canvas/{id}/edit-mode", MetricsMiddleware(h.step("api.canvas.edit_mode", (*canvas.Builder).EnableEditMode), "canvas_edit_mode"))
	mux.HandleFunc("POST /v1/canvas/{id}/close", MetricsMiddleware(h.step("api.canvas.close", (*canvas.Builder).CloseEditor), "canvas_close"))
	mux.HandleFunc("POST /v1/canvas/{id}/reset", MetricsMiddleware(h.step("api.canvas.reset", (*canvas.Builder).ResetAll), "canvas_reset"))
	mux.HandleFunc("POST /v1/canvas/{id}/open", MetricsMiddleware(h.HandleOpen(), "canvas_open"))
	mux.HandleFunc("POST /v1/canvas/{id}/suggestion", MetricsMiddleware(h.HandleSuggestion(), "canvas_suggestion"))
	mux.HandleFunc("POST /v1/canvas/{id}/save", MetricsMiddleware(h.HandleSave(), "canvas_save"))
	mux.HandleFunc("POST /v1/canvas/{id}/finish", MetricsMiddleware(h.HandleFinish(), "canvas_finish"))
	mux.HandleFunc("POST /v1/canvas/{id}/load", MetricsMiddleware(h.HandleLoad(), "canvas_load"))
	mux.HandleFunc("GET /v1/canvas/{id}/print", MetricsMiddleware(h.HandlePrint(), "canvas_print"))
}
