package quiz

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/agrisiti/agrikit/internal/domain/cue"
	. "github.com/smartystreets/goconvey/convey"
)

// manualScheduler collects scheduled funcs and runs them on Fire.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTask
	delays  []time.Duration
}

type manualTask struct {
	fn        func()
	cancelled bool
	ran       bool
}

func (m *manualScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{fn: fn}
	m.pending = append(m.pending, t)
	m.delays = append(m.delays, d)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if t.ran || t.cancelled {
			return false
		}
		t.cancelled = true
		return true
	}
}

// Fire runs every live task and reports how many ran.
func (m *manualScheduler) Fire() int {
	m.mu.Lock()
	var run []*manualTask
	for _, t := range m.pending {
		if !t.cancelled && !t.ran {
			t.ran = true
			run = append(run, t)
		}
	}
	m.pending = nil
	m.mu.Unlock()
	for _, t := range run {
		t.fn()
	}
	return len(run)
}

func answerAll(ctx context.Context, q *Session, sched *manualScheduler, correct int) View {
	for i, item := range Items {
		choice := item.Correct
		if i >= correct {
			choice = Farmer
			if item.Correct == Farmer {
				choice = Agripreneur
			}
		}
		q.Answer(ctx, choice)
		sched.Fire()
	}
	return q.View()
}

func TestResultMessage(t *testing.T) {
	Convey("Given the result buckets", t, func() {
		So(ResultMessage(10), ShouldStartWith, "Amazing!")
		So(ResultMessage(8), ShouldStartWith, "Great job!")
		So(ResultMessage(5), ShouldStartWith, "Good start!")
		So(ResultMessage(0), ShouldStartWith, "Don't worry!")
		So(ResultMessage(11), ShouldEqual, FallbackMessage)
		So(ResultMessage(-1), ShouldEqual, FallbackMessage)
	})
}

func TestParseLabel(t *testing.T) {
	Convey("Given choice labels", t, func() {
		l, ok := ParseLabel(" farmer ")
		So(ok, ShouldBeTrue)
		So(l, ShouldEqual, Farmer)

		_, ok = ParseLabel("trader")
		So(ok, ShouldBeFalse)
	})
}

func TestSession(t *testing.T) {
	Convey("Given a quiz session with a manual scheduler", t, func() {
		ctx := context.Background()
		sched := &manualScheduler{}
		rec := &cue.Recorder{}
		q := New(WithScheduler(sched), WithPlayer(rec))

		Convey("It starts on the intro screen", func() {
			v := q.View()
			So(v.Screen, ShouldEqual, ScreenIntro)
			So(v.Progress, ShouldEqual, "0/10")
		})

		Convey("Answers before Start are ignored", func() {
			_, ok := q.Answer(ctx, Farmer)
			So(ok, ShouldBeFalse)
		})

		Convey("When started", func() {
			v := q.Start(ctx)
			So(v.Screen, ShouldEqual, ScreenQuiz)
			So(v.Statement, ShouldEqual, Items[0].Text)
			So(v.Announcement, ShouldEqual, "Statement 1 of 10.")

			Convey("A correct answer scores, locks and schedules the advance", func() {
				v, ok := q.Answer(ctx, Agripreneur)
				So(ok, ShouldBeTrue)
				So(v.Score, ShouldEqual, 1)
				So(v.Locked, ShouldBeTrue)
				So(v.Progress, ShouldEqual, "1/10")
				So(v.Feedback.Icon, ShouldEqual, "✓")
				So(v.Feedback.Title, ShouldEqual, "Correct!")
				So(v.Feedback.Explain, ShouldEqual, Items[0].Explain)
				So(v.Announcement, ShouldEqual, "Correct.")
				So(sched.delays, ShouldResemble, []time.Duration{DefaultAdvance})

				tones := rec.Drain()
				So(len(tones), ShouldEqual, 1)
				So(tones[0].FrequencyHz, ShouldEqual, 880)

				Convey("A second answer while locked is ignored", func() {
					v, ok := q.Answer(ctx, Farmer)
					So(ok, ShouldBeFalse)
					So(v.Score, ShouldEqual, 1)
					So(rec.Drain(), ShouldBeEmpty)
				})

				Convey("The advance shows the next statement", func() {
					So(sched.Fire(), ShouldEqual, 1)
					v := q.View()
					So(v.Index, ShouldEqual, 1)
					So(v.Locked, ShouldBeFalse)
					So(v.Feedback, ShouldBeNil)
					So(v.Statement, ShouldEqual, Items[1].Text)
				})
			})

			Convey("A wrong answer names the correct label", func() {
				v, _ := q.Answer(ctx, Farmer)
				So(v.Score, ShouldEqual, 0)
				So(v.Feedback.Icon, ShouldEqual, "✕")
				So(v.Feedback.Title, ShouldEqual, "Not quite")
				So(v.Feedback.Explain, ShouldEqual, "Agripreneurs research before they plant (Correct: AGRIPRENEUR)")
				So(v.Announcement, ShouldEqual, "Not quite. Correct answer is AGRIPRENEUR.")
				So(rec.Drain()[0].FrequencyHz, ShouldEqual, 220)
			})

			Convey("Keys map to choices", func() {
				_, ok := q.Key(ctx, "x")
				So(ok, ShouldBeFalse)
				v, ok := q.Key(ctx, "A")
				So(ok, ShouldBeTrue)
				So(v.Score, ShouldEqual, 1)
			})

			Convey("Restarting cancels the pending advance", func() {
				q.Answer(ctx, Agripreneur)
				q.Start(ctx)
				So(sched.Fire(), ShouldEqual, 0)
				So(q.View().Index, ShouldEqual, 0)
			})

			Convey("Try again returns to the intro and cancels the advance", func() {
				q.Answer(ctx, Agripreneur)
				v := q.TryAgain(ctx)
				So(v.Screen, ShouldEqual, ScreenIntro)
				So(sched.Fire(), ShouldEqual, 0)
				So(q.View().Screen, ShouldEqual, ScreenIntro)
			})
		})

		Convey("A perfect run ends on the top bucket", func() {
			q.Start(ctx)
			v := answerAll(ctx, q, sched, 10)
			So(v.Screen, ShouldEqual, ScreenResults)
			So(v.FinalScore, ShouldEqual, "10/10")
			So(v.Message, ShouldStartWith, "Amazing!")
			So(v.Announcement, ShouldEqual, "Quiz finished. Your score is 10 out of 10.")
		})

		Convey("Five correct ends on the middle bucket", func() {
			q.Start(ctx)
			v := answerAll(ctx, q, sched, 5)
			So(v.FinalScore, ShouldEqual, "5/10")
			So(v.Message, ShouldStartWith, "Good start!")
		})

		Convey("No correct answers ends on the lowest bucket", func() {
			q.Start(ctx)
			v := answerAll(ctx, q, sched, 0)
			So(v.Score, ShouldEqual, 0)
			So(v.Message, ShouldStartWith, "Don't worry!")
		})

		Convey("Sound off suppresses tones", func() {
			q.SetSound(false)
			q.Start(ctx)
			q.Answer(ctx, Farmer)
			So(rec.Drain(), ShouldBeEmpty)
		})
	})
}

func TestSessionHooks(t *testing.T) {
	Convey("Given hooks on a session", t, func() {
		ctx := context.Background()
		sched := &manualScheduler{}
		var answers, finishes int
		var final int
		q := New(
			WithScheduler(sched),
			WithOnAnswer(func(int, Label, bool) { answers++ }),
			WithOnFinish(func(score, _ int) { finishes++; final = score }),
		)

		q.Start(ctx)
		answerAll(ctx, q, sched, 7)
		q.Finish(ctx)

		So(answers, ShouldEqual, 10)
		So(finishes, ShouldEqual, 1)
		So(final, ShouldEqual, 7)
	})
}

func TestTimerScheduler(t *testing.T) {
	Convey("Given the real timer scheduler", t, func() {
		done := make(chan struct{})
		q := New(WithAdvanceDelay(5 * time.Millisecond))
		ctx := context.Background()
		q.Start(ctx)
		q.Answer(ctx, Agripreneur)

		go func() {
			for q.View().Index == 0 {
				time.Sleep(time.Millisecond)
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
		So(q.View().Index, ShouldEqual, 1)
		q.Close()
	})
}
