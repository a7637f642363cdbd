package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agrisiti/agrikit/internal/adapters/http/api"
	service "github.com/agrisiti/agrikit/internal/app"
	"github.com/agrisiti/agrikit/internal/domain/canvas"
	"github.com/agrisiti/agrikit/internal/domain/costs"
	"github.com/agrisiti/agrikit/internal/domain/cue"
	"github.com/agrisiti/agrikit/internal/domain/matching"
	"github.com/agrisiti/agrikit/internal/domain/model"
	"github.com/agrisiti/agrikit/internal/domain/quiz"
	. "github.com/smartystreets/goconvey/convey"
)

type envelope struct {
	SessionID string          `json:"session_id"`
	View      json.RawMessage `json:"view"`
	Tones     []cue.Tone      `json:"tones"`
	Accepted  *bool           `json:"accepted"`
	Result    string          `json:"result"`
	Code      string          `json:"code"`
	Message   string          `json:"message"`
}

type client struct {
	mux     *http.ServeMux
	learner string
}

func (c client) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.learner != "" {
		req.Header.Set(api.LearnerHeader, c.learner)
	}
	w := httptest.NewRecorder()
	c.mux.ServeHTTP(w, req)

	var env envelope
	if bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func view[T any](env envelope) T {
	var v T
	_ = json.Unmarshal(env.View, &v)
	return v
}

func newMux(svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return mux
}

func startService(opts ...service.Option) *service.Service {
	svc := service.New(append([]service.Option{service.WithQuizAdvance(time.Millisecond)}, opts...)...)
	_ = svc.Start(context.Background())
	return svc
}

func TestQuizEndpoints(t *testing.T) {
	Convey("Given a quiz session over HTTP", t, func() {
		// a long pause keeps the quiz locked after each answer
		svc := startService(service.WithQuizAdvance(time.Minute))
		Reset(func() { _ = svc.Stop(context.Background()) })
		ada := client{mux: newMux(svc), learner: "ada"}

		w, env := ada.do(http.MethodPost, "/v1/quiz", nil)
		So(w.Code, ShouldEqual, http.StatusCreated)
		So(env.SessionID, ShouldNotBeEmpty)
		So(view[quiz.View](env).Screen, ShouldEqual, quiz.ScreenIntro)
		base := "/v1/quiz/" + env.SessionID

		Convey("Answers are scored once and emit a tone", func() {
			ada.do(http.MethodPost, base+"/start", nil)
			w, env := ada.do(http.MethodPost, base+"/answer", map[string]string{"choice": string(quiz.Items[0].Correct)})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(*env.Accepted, ShouldBeTrue)
			So(view[quiz.View](env).Score, ShouldEqual, 1)
			So(len(env.Tones), ShouldEqual, 1)
			So(env.Tones[0].FrequencyHz, ShouldEqual, 880)

			_, env = ada.do(http.MethodPost, base+"/key", map[string]string{"key": "f"})
			So(*env.Accepted, ShouldBeFalse)
		})

		Convey("Unknown choices are rejected", func() {
			ada.do(http.MethodPost, base+"/start", nil)
			w, env := ada.do(http.MethodPost, base+"/answer", map[string]string{"choice": "fisher"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(env.Code, ShouldEqual, "bad_request")
		})

		Convey("Sound can be switched off", func() {
			w, env := ada.do(http.MethodPut, base+"/sound", map[string]bool{"sound": false})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(view[quiz.View](env).Sound, ShouldBeFalse)

			w, _ = ada.do(http.MethodPut, base+"/sound", map[string]string{})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Finish and try again move between screens", func() {
			_, env := ada.do(http.MethodPost, base+"/finish", nil)
			So(view[quiz.View](env).Screen, ShouldEqual, quiz.ScreenResults)
			_, env = ada.do(http.MethodPost, base+"/try-again", nil)
			So(view[quiz.View](env).Screen, ShouldEqual, quiz.ScreenIntro)
		})

		Convey("Other learners cannot see the session", func() {
			bola := client{mux: ada.mux, learner: "bola"}
			w, env := bola.do(http.MethodGet, base, nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(env.Code, ShouldEqual, "not_found")
		})

		Convey("Ending the session removes it", func() {
			w, _ := ada.do(http.MethodDelete, base, nil)
			So(w.Code, ShouldEqual, http.StatusNoContent)
			w, _ = ada.do(http.MethodGet, base, nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMatchingEndpoints(t *testing.T) {
	Convey("Given a rice matching game over HTTP", t, func() {
		svc := startService()
		Reset(func() { _ = svc.Stop(context.Background()) })
		ada := client{mux: newMux(svc), learner: "ada"}

		w, env := ada.do(http.MethodPost, "/v1/matching", map[string]string{"domain": matching.Rice})
		So(w.Code, ShouldEqual, http.StatusCreated)
		base := "/v1/matching/" + env.SessionID
		needs := matching.Datasets[matching.Rice].Needs

		Convey("Unknown domains are a bad request", func() {
			w, _ := ada.do(http.MethodPost, "/v1/matching", map[string]string{"domain": "goats"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A drag dropped on the right customer matches", func() {
			zones := matching.Layout{
				{ZoneID: needs[0].MatchTo, Rect: matching.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}},
				{ZoneID: needs[1].MatchTo, Rect: matching.Rect{Left: 200, Top: 0, Right: 300, Bottom: 100}},
			}
			_, env := ada.do(http.MethodPost, base+"/drag/begin", map[string]any{
				"need_id": needs[0].ID, "pointer_id": 1,
				"pointer": matching.Point{X: 510, Y: 510},
				"card":    matching.Rect{Left: 500, Top: 500, Right: 600, Bottom: 550},
			})
			So(*env.Accepted, ShouldBeTrue)

			_, env = ada.do(http.MethodPost, base+"/drag/move", map[string]any{
				"pointer_id": 1, "pointer": matching.Point{X: 50, Y: 50}, "zones": zones,
			})
			So(*env.Accepted, ShouldBeTrue)

			_, env = ada.do(http.MethodPost, base+"/drag/drop", map[string]any{
				"pointer_id": 1, "pointer": matching.Point{X: 50, Y: 50}, "zones": zones,
			})
			So(env.Result, ShouldEqual, string(matching.Matched))
			So(view[matching.View](env).Matches, ShouldEqual, 1)
			So(env.Tones[0].FrequencyHz, ShouldEqual, 740)
		})

		Convey("The keyboard path completes the game", func() {
			for _, n := range needs {
				ada.do(http.MethodPost, base+"/pick", map[string]string{"need_id": n.ID})
				_, env := ada.do(http.MethodPost, base+"/zone", map[string]string{"zone_id": n.MatchTo})
				So(env.Result, ShouldEqual, string(matching.Matched))
			}
			_, env := ada.do(http.MethodGet, base, nil)
			So(view[matching.View](env).Screen, ShouldEqual, matching.ScreenDone)

			_, env = ada.do(http.MethodPost, base+"/other", nil)
			So(view[matching.View](env).Domain, ShouldEqual, matching.Fish)
		})
	})
}

func TestCostsEndpoints(t *testing.T) {
	Convey("Given a rice cost calculator over HTTP", t, func() {
		svc := startService()
		Reset(func() { _ = svc.Stop(context.Background()) })
		ada := client{mux: newMux(svc), learner: "ada"}

		_, env := ada.do(http.MethodPost, "/v1/costs", map[string]string{"domain": costs.Rice})
		base := "/v1/costs/" + env.SessionID

		Convey("Land preparation and seeds at 10,000 break even at 5 units", func() {
			ada.do(http.MethodPost, base+"/toggle", map[string]int{"index": 0})
			_, env := ada.do(http.MethodPost, base+"/toggle", map[string]int{"index": 1})
			So(view[costs.View](env).Total, ShouldEqual, 45000)

			ada.do(http.MethodPost, base+"/calc", nil)
			_, env = ada.do(http.MethodPost, base+"/break-even", map[string]string{"price": "10,000"})
			So(view[costs.View](env).Result.Units, ShouldEqual, 5)

			w, _ := ada.do(http.MethodGet, base+"/summary", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "window.print()")
			So(w.Body.String(), ShouldContainSubstring, "Land preparation")
			So(w.Body.String(), ShouldContainSubstring, "₦45,000")

			w, _ = ada.do(http.MethodGet, base+"/summary?format=json", nil)
			var s costs.Summary
			So(json.Unmarshal(w.Body.Bytes(), &s), ShouldBeNil)
			So(s.Units, ShouldEqual, 5)
			So(len(s.Items), ShouldEqual, 2)
		})

		Convey("A missing toggle index is a bad request", func() {
			w, _ := ada.do(http.MethodPost, base+"/toggle", map[string]string{})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Prices are formatted for display", func() {
			w, _ := ada.do(http.MethodPost, "/v1/costs/format-price", map[string]string{"price": "10000"})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"formatted":"10,000"`)
		})
	})
}

func TestCanvasEndpoints(t *testing.T) {
	Convey("Given a canvas builder over HTTP", t, func() {
		svc := startService()
		Reset(func() { _ = svc.Stop(context.Background()) })
		ada := client{mux: newMux(svc), learner: "ada"}

		_, env := ada.do(http.MethodPost, "/v1/canvas", nil)
		base := "/v1/canvas/" + env.SessionID

		Convey("Printing is refused until the canvas is complete", func() {
			w, env := ada.do(http.MethodGet, base+"/print", nil)
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(env.Code, ShouldEqual, "conflict")
		})

		Convey("Locked boxes are a conflict and unknown boxes a bad request", func() {
			ada.do(http.MethodPost, base+"/start", nil)
			w, _ := ada.do(http.MethodPost, base+"/open", map[string]string{"box_id": "costs"})
			So(w.Code, ShouldEqual, http.StatusConflict)
			ada.do(http.MethodPost, base+"/edit-mode", nil)
			w, _ = ada.do(http.MethodPost, base+"/open", map[string]string{"box_id": "nope"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A guided walk ends with Bola Farms and a printable sheet", func() {
			ada.do(http.MethodPost, base+"/start", nil)
			for _, box := range canvas.Boxes {
				draft := canvas.Draft{Text: "answer for " + box.ID}
				if box.Kind == canvas.MultiSelect {
					draft = canvas.Draft{Checked: box.Options[:1]}
				}
				w, _ := ada.do(http.MethodPost, base+"/save", draft)
				So(w.Code, ShouldEqual, http.StatusOK)
			}
			_, env := ada.do(http.MethodGet, base, nil)
			So(view[canvas.View](env).Phase, ShouldEqual, canvas.AwaitingBusinessName)

			w, _ := ada.do(http.MethodPost, base+"/finish", map[string]string{"business_name": "  "})
			So(w.Code, ShouldEqual, http.StatusConflict)

			w, env = ada.do(http.MethodPost, base+"/finish", map[string]string{"business_name": "Bola Farms"})
			So(w.Code, ShouldEqual, http.StatusOK)
			v := view[canvas.View](env)
			So(v.Phase, ShouldEqual, canvas.Completed)
			So(v.Badges, ShouldResemble, []string{canvas.BadgeAgripreneur})

			w, _ = ada.do(http.MethodGet, base+"/print", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Bola Farms")
			So(w.Body.String(), ShouldContainSubstring, "window.print()")

			// a fresh session for the same learner sees the saved canvas
			_, env = ada.do(http.MethodPost, "/v1/canvas", nil)
			w, _ = ada.do(http.MethodPost, "/v1/canvas/"+env.SessionID+"/load", nil)
			So(w.Body.String(), ShouldContainSubstring, `"found":true`)
		})
	})
}

// stubJournal remembers ids but never enqueues.
type stubJournal struct {
	seen map[string]bool
}

func (s *stubJournal) SeenAndRecord(_ context.Context, id string) bool {
	if s.seen[id] {
		return true
	}
	s.seen[id] = true
	return false
}
func (s *stubJournal) Unrecord(_ context.Context, id string) { delete(s.seen, id) }
func (s *stubJournal) Size() int64                          { return int64(len(s.seen)) }
func (s *stubJournal) Enqueue(context.Context, model.Event) error {
	return fmt.Errorf("queue full")
}
func (s *stubJournal) Journal(context.Context, string, int) ([]model.Event, error) {
	return nil, nil
}

func TestJournalEndpoints(t *testing.T) {
	event := map[string]any{
		"event_id": "offline-1",
		"activity": model.ActivityQuiz,
		"kind":     model.KindQuizFinished,
		"score":    7,
		"ts":       "2026-04-01T10:00:00Z",
	}

	Convey("Given the journal endpoints", t, func() {
		svc := startService()
		c := client{mux: newMux(svc)}

		Convey("An offline event is accepted once", func() {
			w, _ := c.do(http.MethodPost, "/v1/learners/ada/journal", event)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			w, _ = c.do(http.MethodPost, "/v1/learners/ada/journal", event)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)

			So(svc.Stop(context.Background()), ShouldBeNil)
			w, _ = c.do(http.MethodGet, "/v1/learners/ada/journal?limit=10", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "offline-1")
		})

		Convey("Malformed events are rejected", func() {
			bad := map[string]any{"event_id": "x", "activity": "quiz", "ts": "yesterday"}
			w, _ := c.do(http.MethodPost, "/v1/learners/ada/journal", bad)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			bad = map[string]any{"event_id": "x", "activity": "chess", "ts": "2026-04-01T10:00:00Z"}
			w, _ = c.do(http.MethodPost, "/v1/learners/ada/journal", bad)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Bad limits are rejected", func() {
			w, _ := c.do(http.MethodGet, "/v1/learners/ada/journal?limit=0", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			w, _ = c.do(http.MethodGet, "/v1/learners/ada/journal?limit=ten", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Reset(func() { _ = svc.Stop(context.Background()) })
	})

	Convey("Given a journal that cannot enqueue", t, func() {
		stub := &stubJournal{seen: map[string]bool{}}
		h := api.NewJournalHandler(stub)
		body, _ := json.Marshal(event)
		req := httptest.NewRequest(http.MethodPost, "/v1/learners/ada/journal", bytes.NewReader(body))
		req.SetPathValue("learner", "ada")
		w := httptest.NewRecorder()
		h.HandlePost(w, req)

		Convey("Then the client is told to back off and may retry", func() {
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(stub.Size(), ShouldEqual, 0)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		svc := startService()
		Reset(func() { _ = svc.Stop(context.Background()) })
		c := client{mux: newMux(svc)}

		Convey("Health exposes Prometheus metrics", func() {
			c.do(http.MethodPost, "/v1/quiz", nil)
			w, _ := c.do(http.MethodGet, "/healthz", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "agrikit_activities_http_requests_total")
		})

		Convey("Stats report the service state", func() {
			w, _ := c.do(http.MethodGet, "/stats", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})
	})
}

func TestErrorHelpers(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")

		So(api.Wrap("op", nil), ShouldBeNil)
		err := api.Wrap("op", cause)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "op: boom")

		err = api.WrapKind("op", api.ErrBadRequest, cause)
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)

		err = api.NewKind("op", api.ErrBackpressure)
		So(errors.Is(err, api.ErrBackpressure), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "op: backpressure")
	})
}
