package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slpgo/slpd/da"
	"github.com/slpgo/slpd/log"
)

// Server is a read-only HTTP front end onto a directory agent's cache. It
// never mutates the registry; registration/deregistration stays on the
// SLP wire protocol.
type Server struct {
	cache *da.ServiceInfoCache
	http  *http.Server
}

// New builds the admin server's router and records addr as its listen
// address; nothing is bound or served until Start is called.
func New(addr string, cache *da.ServiceInfoCache, reg prometheus.Gatherer) *Server {
	s := &Server{cache: cache}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/services", s.handleListServices)
	r.Get("/services/{type}", s.handleListServicesByType)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start runs the server in a background goroutine. Bind errors surface
// through a log line, not a return value, since the caller has already
// moved on to blocking on a signal channel.
func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("admin server failed", log.M{"error": err.Error()})
		}
	}()
}

// Stop gracefully shuts the admin server down within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
