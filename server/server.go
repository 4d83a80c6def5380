// Package server is the upload UI: pick the two workbooks, preview their
// sheets, then download the generated dashboard.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"housing-dashboard/config"
	"housing-dashboard/services"
	"housing-dashboard/utils"
)

// Dependencies are shared by every request. Each request builds its own
// pipelines and tables from them.
type Dependencies struct {
	Columns   config.Columns
	Renderer  services.ChartRenderer
	Assembler services.Assembler
}

type Config struct {
	Addr            string
	MaxUploadBytes  int64
	MaxJobs         int
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

type WebAPI struct {
	router  *chi.Mux
	logger  *utils.Logger
	server  *http.Server
	handler *handler
}

func NewWebAPI(logger *utils.Logger, cfg Config) (*WebAPI, error) {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	h, err := newHandler(logger, cfg)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger.Zerolog()))
	router.Use(middleware.Recoverer)

	router.Get("/", h.index)
	router.Get("/healthz", h.health)
	router.Route("/api", func(r chi.Router) {
		r.Post("/preview", h.preview)
		r.Post("/generate", h.generate)
	})

	return &WebAPI{
		router:  router,
		logger:  logger,
		handler: h,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler exposes the router, mainly for tests.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info("[server] Listening on %s", w.server.Addr)
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info("[server] Shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.handler.shutdownTimeout)
		defer cancel()

		if err := w.server.Shutdown(shutdownCtx); err != nil {
			w.logger.Error("[server] Graceful shutdown failed: %v", err)
			return w.server.Close()
		}
	}
	return nil
}

// requestLogger attaches a per-request zerolog logger to the context and logs
// every finished request.
func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			reqLogger := logger.With().
				Str("request_id", middleware.GetReqID(req.Context())).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", req.RemoteAddr).
				Logger()

			ctx := reqLogger.WithContext(req.Context())
			req = req.WithContext(ctx)
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

			next.ServeHTTP(ww, req)

			reqLogger.Info().
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
