package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	service "github.com/agrisiti/agrikit/internal/app"
	"github.com/agrisiti/agrikit/internal/adapters/sessions"
	"github.com/agrisiti/agrikit/internal/domain/canvas"
	"github.com/agrisiti/agrikit/internal/domain/costs"
	"github.com/agrisiti/agrikit/internal/domain/matching"
	"github.com/agrisiti/agrikit/internal/domain/model"
	"github.com/agrisiti/agrikit/internal/domain/quiz"
	"github.com/agrisiti/agrikit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newService() *service.Service {
	return service.New(
		service.WithQuizAdvance(time.Millisecond),
		service.WithWorkerCount(2),
		service.WithQueueSize(256),
		service.WithRandSource(func() *rand.Rand { return rand.New(rand.NewSource(7)) }),
		service.WithClock(func() time.Time { return time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC) }),
	)
}

// waitUnlocked polls until the quiz has moved past its feedback pause.
func waitUnlocked(q *quiz.Session) quiz.View {
	deadline := time.Now().Add(2 * time.Second)
	for {
		v := q.View()
		if !v.Locked || time.Now().After(deadline) {
			return v
		}
		time.Sleep(time.Millisecond)
	}
}

func kinds(events []model.Event) map[string]int {
	out := map[string]int{}
	for _, e := range events {
		out[e.Kind]++
	}
	return out
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := newService()

		Convey("Stats report it stopped until started", func() {
			So(svc.GetStats()["started"], ShouldBeFalse)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["queueLength"], ShouldEqual, 0)
			So(stats["activeSessions"], ShouldResemble, map[string]int{"quiz": 0, "matching": 0, "costs": 0, "canvas": 0})

			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldBeFalse)
		})
	})
}

func TestServiceSessions(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Sessions belong to the learner that created them", func() {
			id, _ := svc.NewQuiz(ctx, "ada")
			live, err := svc.Quiz("ada", id)
			So(err, ShouldBeNil)
			So(live.Session.View().Screen, ShouldEqual, quiz.ScreenIntro)

			_, err = svc.Quiz("bola", id)
			So(errors.Is(err, sessions.ErrNotFound), ShouldBeTrue)
			_, err = svc.Costs("ada", id)
			So(errors.Is(err, sessions.ErrNotFound), ShouldBeTrue)

			So(svc.EndSession(model.ActivityQuiz, "ada", id), ShouldBeNil)
			_, err = svc.Quiz("ada", id)
			So(errors.Is(err, sessions.ErrNotFound), ShouldBeTrue)
			So(errors.Is(svc.EndSession(model.ActivityQuiz, "ada", id), sessions.ErrNotFound), ShouldBeTrue)
		})

		Convey("Unknown domains are refused", func() {
			_, _, err := svc.NewMatching(ctx, "ada", "goats")
			So(errors.Is(err, matching.ErrUnknownDomain), ShouldBeTrue)
			_, _, err = svc.NewCosts(ctx, "ada", "goats")
			So(errors.Is(err, costs.ErrUnknownDomain), ShouldBeTrue)
		})

		Convey("A perfect quiz is journaled answer by answer", func() {
			_, live := svc.NewQuiz(ctx, "ada")
			q := live.Session
			q.Start(ctx)
			for _, item := range quiz.Items {
				_, ok := q.Answer(ctx, item.Correct)
				So(ok, ShouldBeTrue)
				waitUnlocked(q)
			}
			v := q.View()
			So(v.Screen, ShouldEqual, quiz.ScreenResults)
			So(v.FinalScore, ShouldEqual, "10/10")
			So(len(live.Tones.Drain()), ShouldEqual, 10)

			So(svc.Stop(ctx), ShouldBeNil)
			events, err := svc.Journal(ctx, "ada", 100)
			So(err, ShouldBeNil)
			So(kinds(events), ShouldResemble, map[string]int{
				model.KindQuizAnswered: 10,
				model.KindQuizFinished: 1,
			})
			So(events[0].Kind, ShouldEqual, model.KindQuizFinished)
			So(events[0].Score, ShouldEqual, 10)
		})

		Convey("Costs feed the canvas suggestions", func() {
			_, calc, err := svc.NewCosts(ctx, "ada", costs.Rice)
			So(err, ShouldBeNil)
			calc.Session.Toggle(ctx, 0)
			calc.Session.Toggle(ctx, 1)
			calc.Session.GoToCalc(ctx)
			v := calc.Session.ComputeBreakEven(ctx, "10,000")
			So(v.Result.Units, ShouldEqual, 5)

			_, b := svc.NewCanvas(ctx, "ada")
			b.Session.StartGuided(ctx)
			_, err = b.Session.Open(ctx, "revenue")
			So(errors.Is(err, canvas.ErrBoxLocked), ShouldBeTrue)
			b.Session.EnableEditMode(ctx)
			cv, err := b.Session.Open(ctx, "revenue")
			So(err, ShouldBeNil)
			So(cv.Editor.Suggestion, ShouldEqual, "₦10,000 per unit, cash on delivery")

			_, other := svc.NewCanvas(ctx, "bola")
			other.Session.EnableEditMode(ctx)
			ov, err := other.Session.Open(ctx, "revenue")
			So(err, ShouldBeNil)
			So(ov.Editor.Suggestion, ShouldNotContainSubstring, "10,000")

			So(svc.Stop(ctx), ShouldBeNil)
			events, err := svc.Journal(ctx, "ada", 10)
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 1)
			So(events[0].Kind, ShouldEqual, model.KindBreakEven)
			So(events[0].Detail["total"], ShouldEqual, "45000")
		})

		Reset(func() { _ = svc.Stop(ctx) })
	})
}

func TestServiceJournalIngest(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService()
		So(svc.Start(ctx), ShouldBeNil)

		e := model.Event{
			EventID:   "client-1",
			LearnerID: "ada",
			Activity:  model.ActivityMatching,
			Kind:      model.KindActivityReported,
			Score:     4,
			TS:        time.Now(),
		}

		Convey("A new event is accepted once", func() {
			So(svc.SeenAndRecord(ctx, e.EventID), ShouldBeFalse)
			So(svc.Enqueue(ctx, e), ShouldBeNil)
			So(svc.SeenAndRecord(ctx, e.EventID), ShouldBeTrue)
			So(svc.Size(), ShouldEqual, 1)

			So(svc.Stop(ctx), ShouldBeNil)
			events, err := svc.Journal(ctx, "ada", 5)
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 1)
			So(events[0].EventID, ShouldEqual, "client-1")
		})

		Convey("Invalid events are refused", func() {
			e.Activity = "chess"
			So(errors.Is(svc.Enqueue(ctx, e), model.ErrInvalidEvent), ShouldBeTrue)
		})

		Reset(func() { _ = svc.Stop(ctx) })
	})
}

func TestServiceDroppedJournalLogging(t *testing.T) {
	Convey("Given a service logging JSON to a buffer", t, func() {
		ctx := context.Background()
		var buf bytes.Buffer
		So(logger.Init(logger.WithFormat("json"), logger.WithWriter(&buf)), ShouldBeNil)
		svc := service.New(service.WithLogger(logger.Get()), service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)

		_, calc, err := svc.NewCosts(ctx, "ada", costs.Rice)
		So(err, ShouldBeNil)
		calc.Session.Toggle(ctx, 0)
		calc.Session.Toggle(ctx, 1)

		Convey("A break-even after shutdown is logged with its score and detail", func() {
			So(svc.Stop(ctx), ShouldBeNil)
			v := calc.Session.ComputeBreakEven(ctx, "10,000")
			So(v.Result.Units, ShouldEqual, 5)

			var dropped map[string]any
			for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
				var rec map[string]any
				if json.Unmarshal(line, &rec) == nil && rec["msg"] == "journal event dropped" {
					dropped = rec
				}
			}
			So(dropped, ShouldNotBeNil)
			So(dropped["level"], ShouldEqual, "WARN")
			So(dropped["kind"], ShouldEqual, model.KindBreakEven)
			So(dropped["learner_id"], ShouldEqual, "ada")
			So(dropped["score"], ShouldEqual, 5.0)
			detail, ok := dropped["detail"].(map[string]any)
			So(ok, ShouldBeTrue)
			So(detail["price"], ShouldEqual, "10000")
			So(detail["total"], ShouldEqual, "45000")
			So(dropped["error"], ShouldNotBeEmpty)
		})

		Reset(func() { _ = svc.Stop(ctx) })
	})
}
