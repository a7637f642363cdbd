package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 1}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors use the namespace", func() {
				So(m, ShouldNotBeNil)
				m.quizAnswers.WithLabelValues("correct").Inc()

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "test_unit_"), ShouldBeTrue)
				}
			})
		})
	})
}

// sum adds up every sample of the named family in reg.
func sum(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return -1
	}
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	return total
}

func TestActivityMetrics(t *testing.T) {
	Convey("Given a global manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		prev := globalManager
		globalManager = NewManager(WithPrometheusRegistry(reg))
		Reset(func() { globalManager = prev })

		Convey("Quiz answers are counted by outcome", func() {
			RecordQuizAnswer(true)
			RecordQuizAnswer(false)
			RecordQuizAnswer(true)
			So(sum(reg, "agrikit_activities_quiz_answers_total"), ShouldEqual, 3)
		})

		Convey("Badge unlocks are counted only when new", func() {
			RecordCanvasCompletion(true)
			RecordCanvasCompletion(false)
			So(sum(reg, "agrikit_activities_badge_unlocks_total"), ShouldEqual, 1)
			So(sum(reg, "agrikit_activities_canvas_completions_total"), ShouldEqual, 2)
		})

		Convey("Session gauges are set per activity", func() {
			UpdateActiveSessions("quiz", 3)
			UpdateActiveSessions("quiz", 2)
			So(sum(reg, "agrikit_activities_active_sessions"), ShouldEqual, 2)
		})

		Convey("The remaining recorders do not panic", func() {
			So(func() {
				RecordHTTPRequest("/v1/quiz", "POST", "200")
				RecordHTTPRequestDuration("/v1/quiz", "POST", "200", 0.01)
				RecordQuizFinish(7)
				RecordMatchDrop("rice", true)
				RecordMatchComplete("rice")
				RecordBreakEven("fish", false)
				RecordCanvasSave("segments")
				RecordSessionEviction("costs")
				RecordJournalEvent()
				RecordJournalDuplicate()
				RecordJournalDropped()
				UpdateQueueSize(1)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerActiveCount(2)
				RecordWorkerProcessingLatency(1.5)
				RecordWorkerError()
				RecordStoreLatency("set", 0.4)
				RecordStoreError("set")
				RecordErrorByComponent("api", "bad_request")
			}, ShouldNotPanic)
		})

		Convey("The exported registry gathers", func() {
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
