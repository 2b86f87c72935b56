// Package httpapi exposes the waitlist service over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/antedotal/waitlist-manager/internal/apisrv/auth"
	"github.com/antedotal/waitlist-manager/internal/apisrv/frontend"
	"github.com/antedotal/waitlist-manager/internal/dependency"
	"github.com/antedotal/waitlist-manager/internal/middleware"
	"github.com/antedotal/waitlist-manager/internal/ratelimit"
	"github.com/antedotal/waitlist-manager/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Server is the http server
type Server struct {
	hs   *http.Server
	c    *Config
	done chan struct{}

	frontend *frontend.Server
	auth     *auth.Server
	repo     dependency.Repository
	limiter  *ratelimit.SignupLimiter
}

// New creates a new server
func New(config *Config) *Server {
	return &Server{
		c:    config,
		done: make(chan struct{}),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.ClientIdentifier)
	r.Use(log.RequestLogger(slog.Default()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.c.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/waitlist", s.handleSubmitWaitlist)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/users", s.handleCreateAdmin)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtauth.Verifier(s.auth.JwtAuth))
			r.Use(jwtauth.Authenticator)
			r.Get("/waitlist", s.handleGetWaitlist)
			r.Get("/waitlist/count", s.handleCountWaitlist)
		})
	})

	return r
}

// Start starts the server
func (s *Server) Start(
	ctx context.Context,
	frontendServer *frontend.Server,
	authServer *auth.Server,
	repo dependency.Repository,
	limiter *ratelimit.SignupLimiter,
) error {
	s.frontend = frontendServer
	s.auth = authServer
	s.repo = repo
	s.limiter = limiter

	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:              listenerAddr,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Default().InfoContext(ctx, fmt.Sprintf("waitlist-manager new listener on: http://%v", listenerAddr))
		err := s.hs.ListenAndServe()
		if err == http.ErrServerClosed {
			slog.Default().InfoContext(ctx, "http server returned")
		} else if err != nil {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()),
			)
		}
		close(s.done)
	}()

	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) {
	if s.hs == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.hs.Shutdown(shutdownCtx); err != nil {
		slog.Default().ErrorContext(ctx, "http server shutdown failed",
			slog.String("err", err.Error()),
		)
	}
}
