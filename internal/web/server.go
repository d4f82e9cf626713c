// Package web serves the local HTTP API: history, exports, feature screens
// with undo, settings and document ingest.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yiblet/proboost/internal/app"
	"github.com/yiblet/proboost/internal/clipboard"
	"github.com/yiblet/proboost/internal/zlog"
)

func logger() *zap.SugaredLogger {
	return zlog.Get()
}

const shutdownTimeout = 5 * time.Second

// Server routes API requests to the App.
type Server struct {
	app       *app.App
	clipboard clipboard.Clipboard
	ar        *chi.Mux
}

// NewServer builds the router. cb may be nil when no clipboard is wanted.
func NewServer(a *app.App, cb clipboard.Clipboard) *Server {
	ar := chi.NewMux()
	ar.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)

	s := &Server{app: a, clipboard: cb, ar: ar}
	s.strapRouter()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.ar.ServeHTTP(w, r)
}

// ListenAndServe runs h on addr until ctx is cancelled, then shuts down.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- hs.ListenAndServe()
	}()
	logger().Infow("listen on", "addr", addr)

	select {
	case err := <-runErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger().Warnw("run http server fail", "err", err)
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := hs.Shutdown(sctx); err != nil {
			logger().Warnw("http server shutdown fail", "err", err)
			return err
		}
		logger().Infow("http server stopped")
		return nil
	}
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger().Debugw("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start),
			"reqID", middleware.GetReqID(r.Context()),
		)
	})
}
