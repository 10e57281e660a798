// Package api implements the HTTP surface of spec §6: GET /?repo=<owner>/<name>
// runs the archive pipeline and responds with a JSON body (ArchiveResponse on
// success, ErrorResponse otherwise); no plain-text body is produced. Grounded
// on the teacher's internal/api/server.go (mux.NewRouter, a thin Server
// wrapper around *http.Server, Start/Shutdown) trimmed from dozens of
// DCP/server/torrent-queue routes down to the one route this system
// exposes, plus a health check in the same JSON shape as the teacher's
// handleHealth.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/omnicloud/archiver/internal/archivepipeline"
)

// Server is the HTTP API server.
type Server struct {
	router   *mux.Router
	pipeline *archivepipeline.Pipeline
	server   *http.Server
	addr     string
	version  string
}

// NewServer builds a Server that runs pipeline for each archive request.
func NewServer(addr string, pipeline *archivepipeline.Pipeline, version string) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		pipeline: pipeline,
		addr:     addr,
		version:  version,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.corsMiddleware)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.handleArchive).Methods(http.MethodGet, http.MethodOptions)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // archive generation can run long; no fixed write deadline
		IdleTimeout:  60 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
