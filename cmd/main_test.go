package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	app "github.com/agrisiti/agrikit/internal/app"
	"github.com/agrisiti/agrikit/internal/config"
	"github.com/agrisiti/agrikit/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestOpenStore(t *testing.T) {
	convey.Convey("Given store configuration", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("When the memory driver is selected", func() {
			cfg.StoreDriver = config.StoreMemory
			store, err := openStore(ctx, cfg, logger.Nop())

			convey.Convey("Then an in-memory store is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.JournalCount(ctx), convey.ShouldEqual, 0)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the sqlite driver is selected", func() {
			cfg.StorePath = filepath.Join(t.TempDir(), "data", "agrikit.db")
			store, err := openStore(ctx, cfg, logger.Nop())

			convey.Convey("Then the database file is created", func() {
				convey.So(err, convey.ShouldBeNil)
				_, statErr := os.Stat(cfg.StorePath)
				convey.So(statErr, convey.ShouldBeNil)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the process mux", t, func() {
		ctx := context.Background()
		svc := app.New(app.WithLogger(logger.Nop()))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := newMux(ctx, svc)
		get := func(method, path string) int {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(method, path, http.NoBody))
			return w.Code
		}

		convey.Convey("Then the site, docs and API are all routed", func() {
			convey.So(get(http.MethodGet, "/"), convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodGet, "/openapi.yaml"), convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodGet, "/healthz"), convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodPost, "/v1/quiz"), convey.ShouldEqual, http.StatusCreated)
			convey.So(get(http.MethodGet, "/nowhere"), convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("And service metrics can be refreshed", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestServiceMetricsUpdater(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		svc := app.New(app.WithLogger(logger.Nop()))

		convey.Convey("Then the updater returns", func() {
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestRunRejectsBadConfig(t *testing.T) {
	convey.Convey("Given an invalid store driver", t, func() {
		t.Setenv(config.EnvPrefix+"STORE_DRIVER", "postgres")

		convey.Convey("Then run fails before serving", func() {
			err := run(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "failed to load config")
		})
	})
}
