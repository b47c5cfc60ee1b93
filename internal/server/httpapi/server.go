// Package httpapi exposes the service over HTTP. Routing and handler
// style follow the usual gorilla/mux layout; all authorization decisions
// are made here from the token-resolved identity, never from
// client-supplied ids.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jbarakanov/videohost/internal/logging"
	"github.com/jbarakanov/videohost/internal/server/config"
	"github.com/jbarakanov/videohost/internal/server/services"
)

type Server struct {
	address        string
	logger         logging.Logger
	users          *services.UserService
	videos         *services.VideoService
	maxUploadBytes int64
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, vs *services.VideoService) *Server {
	return &Server{
		address:        cfg.EndpointAddr,
		logger:         l.With("module", "http_server"),
		users:          us,
		videos:         vs,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

// Router builds the route table. Split out from Run for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/users/", s.CreateUser).Methods("POST")
	r.HandleFunc("/users/", s.requireAuth(s.ListUsers)).Methods("GET")
	r.HandleFunc("/users/me/", s.requireAuth(s.Me)).Methods("GET")
	r.HandleFunc("/users/me/", s.requireAuth(s.UpdateProfile)).Methods("PUT")
	r.HandleFunc("/users/{user_id}/", s.GetUser).Methods("GET")
	r.HandleFunc("/users/{user_id}/", s.DeleteUser).Methods("DELETE")

	r.HandleFunc("/users/{user_id}/videos/", s.requireAuth(s.CreateVideo)).Methods("POST")
	r.HandleFunc("/users/{user_id}/videos/{vid_id}/", s.requireAuth(s.DeleteVideo)).Methods("DELETE")
	r.HandleFunc("/videos/", s.ListVideos).Methods("GET")
	r.HandleFunc("/videos/{vid_id}/", s.GetVideo).Methods("GET")

	r.HandleFunc("/token/", s.Login).Methods("POST")

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}
