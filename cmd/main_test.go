package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/stride/internal/adapters/http/site"
	"github.com/okian/stride/internal/config"
	"github.com/okian/stride/pkg/logger"
	"github.com/okian/stride/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.InitWithWriter(io.Discard)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Addr = "127.0.0.1:0"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "stride.db")
	cfg.StaticDir = t.TempDir()
	cfg.AdminPassword = "changeme"
	cfg.AdminSecret = "test-secret"
	return cfg
}

func TestNewService(t *testing.T) {
	convey.Convey("Given a config with a SQLite path", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)

		convey.Convey("When the service is created", func() {
			svc, err := newService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then the database file exists and is reachable", func() {
				_, statErr := os.Stat(cfg.DatabasePath)
				convey.So(statErr, convey.ShouldBeNil)
				convey.So(svc.Ping(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the admin secret is missing", func() {
			cfg.AdminSecret = ""
			_, err := newService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the database path is unusable", func() {
			cfg.DatabasePath = filepath.Join(t.TempDir(), "missing", "dir", "stride.db")
			_, err := newService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the full handler", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.DatabasePath = ""
		convey.So(os.WriteFile(filepath.Join(cfg.StaticDir, "index.html"), []byte("<title>Stride</title>"), 0o600), convey.ShouldBeNil)

		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()
		h, err := newHandler(ctx, cfg, svc, logger.Get())
		convey.So(err, convey.ShouldBeNil)

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
			return w
		}

		convey.Convey("Then API, docs and frontend routes are mounted", func() {
			convey.So(get("/api/rankings").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/meets/1").Body.String(), convey.ShouldContainSubstring, "<title>Stride</title>")
		})

		convey.Convey("Then CORS and request ids wrap every route", func() {
			w := get("/api/meets")
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "*")
			convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
		})

		convey.Convey("Then roster writes need a token", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("POST", "/api/coaches", strings.NewReader(`{"name":"Pat"}`)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("Then login stays reachable beside the frontend", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username":"admin","password":"changeme"}`)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then writes to frontend paths are refused", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("POST", "/meets/1", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	convey.Convey("Given a static dir without a build", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.DatabasePath = ""
		cfg.StaticDir = filepath.Join(cfg.StaticDir, "dist")

		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()
		h, err := newHandler(ctx, cfg, svc, logger.Get())

		convey.Convey("Then the API is served and / is not", func() {
			convey.So(err, convey.ShouldBeNil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", "/api/rankings", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			w = httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})

	convey.Convey("Given a static dir that cannot be read", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.DatabasePath = ""
		file := filepath.Join(cfg.StaticDir, "dist")
		convey.So(os.WriteFile(file, []byte("not a dir"), 0o600), convey.ShouldBeNil)
		cfg.StaticDir = filepath.Join(file, "build")

		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then newHandler reports it", func() {
			_, err := newHandler(ctx, cfg, svc, logger.Get())
			convey.So(errors.Is(err, site.ErrStaticDir), convey.ShouldBeTrue)
		})

		convey.Convey("Then run refuses to start", func() {
			err := run(ctx, cfg)
			convey.So(errors.Is(err, site.ErrStaticDir), convey.ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		cfg := testConfig(t)
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		convey.Convey("Then run shuts down cleanly", func() {
			convey.So(run(ctx, cfg), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a metrics namespace", t, func() {
		cfg := testConfig(t)
		cfg.MetricsNamespace = "xc"
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		defer metrics.Init()

		convey.Convey("Then run exports series under it", func() {
			convey.So(run(ctx, cfg), convey.ShouldBeNil)
			metrics.RecordPlaceholderMeets(1)
			families, err := metrics.GetRegistry().Gather()
			convey.So(err, convey.ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			convey.So(names, convey.ShouldContain, "xc_results_placeholder_meets_total")
		})
	})

	convey.Convey("Given an address that cannot be bound", t, func() {
		cfg := testConfig(t)
		cfg.Addr = "256.0.0.1:bad"

		convey.Convey("Then run reports the listen error", func() {
			convey.So(run(context.Background(), cfg), convey.ShouldNotBeNil)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
	})
}
