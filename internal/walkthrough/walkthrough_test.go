package walkthrough_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agrisiti/agrikit/internal/adapters/http/api"
	service "github.com/agrisiti/agrikit/internal/app"
	"github.com/agrisiti/agrikit/internal/walkthrough"
	"github.com/agrisiti/agrikit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newServer() (*httptest.Server, *service.Service) {
	svc := service.New(service.WithQuizAdvance(time.Millisecond))
	_ = svc.Start(context.Background())
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return httptest.NewServer(mux), svc
}

func TestRun(t *testing.T) {
	var logs bytes.Buffer
	if err := walkthrough.SetupLogging("json", false, &logs); err != nil {
		t.Fatal(err)
	}

	Convey("Given a running activities service", t, func() {
		srv, svc := newServer()
		Reset(func() {
			srv.Close()
			_ = svc.Stop(context.Background())
		})

		Convey("When three learners walk through every activity", func() {
			report := filepath.Join(t.TempDir(), "out", "report.json")
			cfg := &walkthrough.Config{
				BaseURL:    srv.URL,
				Learners:   3,
				Workers:    2,
				Timeout:    5 * time.Second,
				Poll:       5 * time.Millisecond,
				OutputFile: report,
			}
			stats, err := walkthrough.Run(context.Background(), cfg)

			Convey("Then every journey passes and the journal holds each sync once", func() {
				So(err, ShouldBeNil)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Scenarios, ShouldEqual, 3*5+1)
				So(stats.JournalSynced, ShouldEqual, 3)
				So(stats.JournalEvents, ShouldBeGreaterThan, 3)
			})

			Convey("And the report lists every outcome", func() {
				data, readErr := os.ReadFile(report)
				So(readErr, ShouldBeNil)
				var r walkthrough.Report
				So(json.Unmarshal(data, &r), ShouldBeNil)
				So(len(r.Outcomes), ShouldEqual, 15)
				So(r.RunID, ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given a server that is not healthy", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := walkthrough.Run(context.Background(), &walkthrough.Config{BaseURL: srv.URL, Timeout: time.Second})

		Convey("Then the run stops before any journey", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
			So(errors.Is(err, walkthrough.ErrFailed), ShouldBeFalse)
		})
	})
}

func TestSetupLogging(t *testing.T) {
	Convey("Given the walkthrough logger", t, func() {
		ctx := context.Background()
		var logs bytes.Buffer

		Convey("Verbose runs log debug records", func() {
			So(walkthrough.SetupLogging("json", true, &logs), ShouldBeNil)
			logger.Get().Debug(ctx, "scenario passed")
			So(logs.String(), ShouldContainSubstring, `"level":"DEBUG"`)
		})

		Convey("Quiet runs drop them", func() {
			So(walkthrough.SetupLogging("text", false, &logs), ShouldBeNil)
			logger.Get().Debug(ctx, "scenario passed")
			So(logs.Len(), ShouldEqual, 0)
		})

		Convey("Unknown formats are refused", func() {
			So(walkthrough.SetupLogging("xml", false, &logs), ShouldNotBeNil)
		})

		Reset(func() { _ = walkthrough.SetupLogging("json", false, &bytes.Buffer{}) })
	})
}
