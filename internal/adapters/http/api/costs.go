package api

import (
	"context"
	"net/http"

	"github.com/agrisiti/agrikit/internal/adapters/sessions"
	"github.com/agrisiti/agrikit/internal/domain/costs"
	"github.com/agrisiti/agrikit/internal/domain/model"
)

// CostsDependencies creates and finds cost calculators.
type CostsDependencies interface {
	NewCosts(ctx context.Context, learnerID, domain string) (string, *sessions.Live[*costs.Calculator], error)
	Costs(learnerID, id string) (*sessions.Live[*costs.Calculator], error)
	EndSession(activity, learnerID, id string) error
}

// CostsHandler serves /v1/costs.
type CostsHandler struct {
	deps CostsDependencies
}

// NewCostsHandler creates a new costs handler.
func NewCostsHandler(deps CostsDependencies) *CostsHandler {
	return &CostsHandler{deps: deps}
}

type costsSession = sessions.Live[*costs.Calculator]

type toggleRequest struct {
	Index *int `json:"index"`
}

type priceRequest struct {
	Price string `json:"price"`
}

type formattedPrice struct {
	Formatted   string `json:"formatted"`
	Unformatted string `json:"unformatted"`
}

// HandleCreate handles POST /v1/costs.
func (h *CostsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.costs.create"
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
	id, live, err := h.deps.NewCosts(r.Context(), learner, req.Domain)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	respond(w, http.StatusCreated, id, live, live.Session.View())
}

// HandleGet handles GET /v1/costs/{id}.
func (h *CostsHandler) HandleGet() http.HandlerFunc {
	return sessionHandler("api.costs.get", h.deps.Costs, func(w http.ResponseWriter, _ *http.Request, id string, live *costsSession) {
		respond(w, http.StatusOK, id, live, live.Session.View())
	})
}

// HandleToggle handles POST /v1/costs/{id}/toggle.
func (h *CostsHandler) HandleToggle() http.HandlerFunc {
	const op = "api.costs.toggle"
	return sessionHandler(op, h.deps.Costs, func(w http.ResponseWriter, r *http.Request, id string, live *costsSession) {
		var req toggleRequest
		if err := decode(r, &req); err != nil || req.Index == nil {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		view, ok := live.Session.Toggle(r.Context(), *req.Index)
		writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, View: view, Tones: live.Tones.Drain(), Accepted: accepted(ok)})
	})
}

// HandleCalc handles POST /v1/costs/{id}/calc.
func (h *CostsHandler) HandleCalc() http.HandlerFunc {
	return sessionHandler("api.costs.calc", h.deps.Costs, func(w http.ResponseWriter, r *http.Request, id string, live *costsSession) {
		respond(w, http.StatusOK, id, live, live.Session.GoToCalc(r.Context()))
	})
}

// HandleBreakEven handles POST /v1/costs/{id}/break-even.
func (h *CostsHandler) HandleBreakEven() http.HandlerFunc {
	const op = "api.costs.break_even"
	return sessionHandler(op, h.deps.Costs, func(w http.ResponseWriter, r *http.Request, id string, live *costsSession) {
		var req priceRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		respond(w, http.StatusOK, id, live, live.Session.ComputeBreakEven(r.Context(), req.Price))
	})
}

// HandleTryAgain handles POST /v1/costs/{id}/try-again.
func (h *CostsHandler) HandleTryAgain() http.HandlerFunc {
	return sessionHandler("api.costs.try_again", h.deps.Costs, func(w http.ResponseWriter, r *http.Request, id string, live *costsSession) {
		respond(w, http.StatusOK, id, live, live.Session.TryDifferentNumbers(r.Context()))
	})
}

// HandleReset handles POST /v1/costs/{id}/reset.
func (h *CostsHandler) HandleReset() http.HandlerFunc {
	return sessionHandler("api.costs.reset", h.deps.Costs, func(w http.ResponseWriter, r *http.Request, id string, live *costsSession) {
		respond(w, http.StatusOK, id, live, live.Session.Reset(r.Context()))
	})
}

// HandleSummary handles GET /v1/costs/{id}/summary. The optional price
// query parameter is used when no break-even was computed yet; format=json
// returns the summary data instead of the print page.
func (h *CostsHandler) HandleSummary() http.HandlerFunc {
	const op = "api.costs.summary"
	return sessionHandler(op, h.deps.Costs, func(w http.ResponseWriter, r *http.Request, _ string, live *costsSession) {
		summary, err := live.Session.DownloadSummary(r.Context(), r.URL.Query().Get("price"))
		if err != nil {
			fail(w, Wrap(op, err))
			return
		}
		if r.URL.Query().Get("format") == "json" {
			writeJSON(w, http.StatusOK, summary)
			return
		}
		renderHTML(w, op, costsSummaryTmpl, summary)
	})
}

// HandleFormatPrice handles POST /v1/costs/format-price.
func (h *CostsHandler) HandleFormatPrice(w http.ResponseWriter, r *http.Request) {
	const op = "api.costs.format_price"
	var req priceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, formattedPrice{
		Formatted:   costs.FormatPriceInput(req.Price),
		Unformatted: costs.UnformatPriceInput(req.Price),
	})
}

// HandleSound handles PUT /v1/costs/{id}/sound.
func (h *CostsHandler) HandleSound() http.HandlerFunc {
	return soundHandler("api.costs.sound", h.deps.Costs, func(c *costs.Calculator, on bool) any { return c.SetSound(on) })
}

// HandleEnd handles DELETE /v1/costs/{id}.
func (h *CostsHandler) HandleEnd() http.HandlerFunc {
	return endHandler("api.costs.end", model.ActivityCosts, h.deps.EndSession)
}

func (h *CostsHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/costs", MetricsMiddleware(h.HandleCreate, "costs_create"))
	mux.HandleFunc("POST /v1/costs/format-price", MetricsMiddleware(h.HandleFormatPrice, "costs_format_price"))
	mux.HandleFunc("GET /v1/costs/{id}", MetricsMiddleware(h.HandleGet(), "costs_get"))
	mux.HandleFunc("DELETE /v1/costs/{id}", MetricsMiddleware(h.HandleEnd(), "costs_end"))
	mux.HandleFunc("POST /v1/costs/{id}/toggle", MetricsMiddleware(h.HandleToggle(), "costs_toggle"))
	mux.HandleFunc("POST /v1/costs/{id}/calc", MetricsMiddleware(h.HandleCalc(), "costs_calc"))
	mux.HandleFunc("POST /v1/costs/{id}/break-even", MetricsMiddleware(h.HandleBreakEven(), "costs_break_even"))
	mux.HandleFunc("POST /v1/costs/{id}/try-again", MetricsMiddleware(h.HandleTryAgain(), "costs_try_again"))
	mux.HandleFunc("POST /v1/costs/{id}/reset", MetricsMiddleware(h.HandleReset(), "costs_reset"))
	mux.HandleFunc("GET /v1/costs/{id}/summary", MetricsMiddleware(h.HandleSummary(), "costs_summary"))
	mux.HandleFunc("PUT /v1/costs/{id}/sound", MetricsMiddleware(h.HandleSound(), "costs_sound"))
}
