package app

import (
	"context"

	"log/slog"

	"github.com/antedotal/waitlist-manager/config"
	httpapi "github.com/antedotal/waitlist-manager/internal/api/http"
	"github.com/antedotal/waitlist-manager/internal/apisrv/auth"
	"github.com/antedotal/waitlist-manager/internal/apisrv/frontend"
	"github.com/antedotal/waitlist-manager/internal/dependency"
	"github.com/antedotal/waitlist-manager/internal/intake"
	"github.com/antedotal/waitlist-manager/internal/ratelimit"
	"github.com/antedotal/waitlist-manager/internal/store"
)

// App is the main application
type App struct {
	hs   *httpapi.Server
	db   dependency.Repository
	c    *config.Config
	done chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting waitlist manager")

	a.db, err = store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to mysql",
			slog.String("err", err.Error()),
		)
		return err
	}

	authS, err := auth.New(&a.c.Auth, a.db.Admin())
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed create new auth server",
			slog.String("err", err.Error()),
		)
		return err
	}

	frontendS := frontend.New(a.db, intake.New(intake.DefaultPolicy()))
	limiter := ratelimit.NewSignupLimiter(a.c.RateLimit)

	// start API server
	a.hs = httpapi.New(&a.c.HTTP)
	if err = a.hs.Start(ctx, frontendS, authS, a.db, limiter); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()),
		)
		return err
	}

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	a.hs.Stop(ctx)

	a.db.Close()
	close(a.done)
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
