package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agrisiti/agrikit/internal/adapters/sessions"
	"github.com/agrisiti/agrikit/internal/domain/model"
	"github.com/agrisiti/agrikit/internal/domain/quiz"
)

// QuizDependencies creates and finds quiz sessions.
type QuizDependencies interface {
	NewQuiz(ctx context.Context, learnerID string) (string, *sessions.Live[*quiz.Session])
	Quiz(learnerID, id string) (*sessions.Live[*quiz.Session], error)
	EndSession(activity, learnerID, id string) error
}

// QuizHandler serves /v1/quiz.
type QuizHandler struct {
	deps QuizDependencies
}

// NewQuizHandler creates a new quiz handler.
func NewQuizHandler(deps QuizDependencies) *QuizHandler {
	return &QuizHandler{deps: deps}
}

type quizSession = sessions.Live[*quiz.Session]

// HandleCreate handles POST /v1/quiz.
func (h *QuizHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.quiz.create"
	learner, err := learnerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	id, live := h.deps.NewQuiz(r.Context(), learner)
	respond(w, http.StatusCreated, id, live, live.Session.View())
}

// HandleGet handles GET /v1/quiz/{id}.
func (h *QuizHandler) HandleGet() http.HandlerFunc {
	return sessionHandler("api.quiz.get", h.deps.Quiz, func(w http.ResponseWriter, _ *http.Request, id string, live *quizSession) {
		respond(w, http.StatusOK, id, live, live.Session.View())
	})
}

// HandleStart handles POST /v1/quiz/{id}/start.
func (h *QuizHandler) HandleStart() http.HandlerFunc {
	return sessionHandler("api.quiz.start", h.deps.Quiz, func(w http.ResponseWriter, r *http.Request, id string, live *quizSession) {
		respond(w, http.StatusOK, id, live, live.Session.Start(r.Context()))
	})
}

type answerRequest struct {
	Choice string `json:"choice"`
}

// HandleAnswer handles POST /v1/quiz/{id}/answer.
func (h *QuizHandler) HandleAnswer() http.HandlerFunc {
	const op = "api.quiz.answer"
	return sessionHandler(op, h.deps.Quiz, func(w http.ResponseWriter, r *http.Request, id string, live *quizSession) {
		var req answerRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		choice, ok := quiz.ParseLabel(req.Choice)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("choice must be FARMER or AGRIPRENEUR, got %q", req.Choice)))
			return
		}
		view, done := live.Session.Answer(r.Context(), choice)
		writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, View: view, Tones: live.Tones.Drain(), Accepted: accepted(done)})
	})
}

type keyRequest struct {
	Key string `json:"key"`
}

// HandleKey handles POST /v1/quiz/{id}/key.
func (h *QuizHandler) HandleKey() http.HandlerFunc {
	const op = "api.quiz.key"
	return sessionHandler(op, h.deps.Quiz, func(w http.ResponseWriter, r *http.Request, id string, live *quizSession) {
		var req keyRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		view, done := live.Session.Key(r.Context(), req.Key)
		writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, View: view, Tones: live.Tones.Drain(), Accepted: accepted(done)})
	})
}

// HandleFinish handles POST /v1/quiz/{id}/finish.
func (h *QuizHandler) HandleFinish() http.HandlerFunc {
	return sessionHandler("api.quiz.finish", h.deps.Quiz, func(w http.ResponseWriter, r *http.Request, id string, live *quizSession) {
		respond(w, http.StatusOK, id, live, live.Session.Finish(r.Context()))
	})
}

// HandleTryAgain handles POST /v1/quiz/{id}/try-again.
func (h *QuizHandler) HandleTryAgain() http.HandlerFunc {
	return sessionHandler("api.quiz.try_again", h.deps.Quiz, func(w http.ResponseWriter, r *http.Request, id string, live *quizSession) {
		respond(w, http.StatusOK, id, live, live.Session.TryAgain(r.Context()))
	})
}

// HandleSound handles PUT /v1/quiz/{id}/sound.
func (h *QuizHandler) HandleSound() http.HandlerFunc {
	return soundHandler("api.quiz.sound", h.deps.Quiz, func(s *quiz.Session, on bool) any { return s.SetSound(on) })
}

// HandleEnd handles DELETE /v1/quiz/{id}.
func (h *QuizHandler) HandleEnd() http.HandlerFunc {
	return endHandler("api.quiz.end", model.ActivityQuiz, h.deps.EndSession)
}

func (h *QuizHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/quiz", MetricsMiddleware(h.HandleCreate, "quiz_create"))
	mux.HandleFunc("GET /v1/quiz/{id}", MetricsMiddleware(h.HandleGet(), "quiz_get"))
	mux.HandleFunc("DELETE /v1/quiz/{id}", MetricsMiddleware(h.HandleEnd(), "quiz_end"))
	mux.HandleFunc("POST /v1/quiz/{id}/start", MetricsMiddleware(h.HandleStart(), "quiz_start"))
	mux.HandleFunc("POST /v1/quiz/{id}/answer", MetricsMiddleware(h.HandleAnswer(), "quiz_answer"))
	mux.HandleFunc("POST /v1/quiz/{id}/key", MetricsMiddleware(h.HandleKey(), "quiz_key"))
	mux.HandleFunc("POST /v1/quiz/{id}/finish", MetricsMiddleware(h.HandleFinish(), "quiz_finish"))
	mux.HandleFunc("POST /v1/quiz/{id}/try-again", MetricsMiddleware(h.HandleTryAgain(), "quiz_try_again"))
	mux.HandleFunc("PUT /v1/quiz/{id}/sound", MetricsMiddleware(h.HandleSound(), "quiz_sound"))
}
