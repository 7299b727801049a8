package server

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/pixelform/pixelform/configs"
)

// Server is a wrapper around chi router.
type Server struct {
	Router   *chi.Mux
	BasePath string
}

// New create a new server. Routes must be added manually before
// calling ListenAndServe.
func New(basePath string) *Server {
	basePath = path.Clean("/" + basePath)
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}

	s := &Server{
		Router:   chi.NewRouter(),
		BasePath: basePath,
	}

	s.Router.Use(
		middleware.Recoverer,
		middleware.RealIP,
		middleware.RequestID,
		Logger(),
	)

	return s
}

// AddRoute adds a new route to the server, prefixed with
// the BasePath.
func (s *Server) AddRoute(pattern string, handler http.Handler) {
	s.Router.Mount(path.Join(s.BasePath, pattern), handler)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", configs.Config.Server.Host, configs.Config.Server.Port),
		Handler:        s.Router,
		MaxHeaderBytes: 1 << 20,
	}

	// Add the profiler in dev mode
	if configs.Config.Main.DevMode {
		s.AddRoute("/debug", middleware.Profiler())
	}

	return srv.ListenAndServe()
}

// GetReqID returns the request ID.
func (s *Server) GetReqID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// Log returns a log entry including the request ID.
func (s *Server) Log(r *http.Request) *log.Entry {
	return log.WithField("@id", s.GetReqID(r))
}
