package dependency

import (
	"context"
	"database/sql"

	"github.com/antedotal/waitlist-manager/internal/entity"
	"github.com/jmoiron/sqlx"
)

type (
	ContextStore interface {
		Tx(ctx context.Context, fn func(ctx context.Context, store Repository) error) error
	}

	Waitlist interface {
		ContextStore
		// Add performs a single insert attempt for a validated signup.
		// A unique-key hit on email is reported as store.ErrDuplicateEmail;
		// the database, not the caller, arbitrates at-most-one-row-per-email.
		Add(ctx context.Context, signup *entity.ValidatedSignup) error
		// GetWaitlistPaged returns waitlist rows ordered by signup time.
		GetWaitlistPaged(ctx context.Context, limit, offset int) ([]entity.WaitlistEntry, error)
		// Count returns the number of waitlist rows.
		Count(ctx context.Context) (int32, error)
		// HasCanonicalVariant reports whether any stored row other than
		// email itself collapses to the same canonical form. Detection aid
		// for admin review only; nothing enforces it.
		HasCanonicalVariant(ctx context.Context, email, canonicalEmail string) (bool, error)
	}

	Admin interface {
		PasswordHashByUsername(ctx context.Context, username string) (string, error)
		AddAdmin(ctx context.Context, username, passwordHash string) error
		DeleteAdminByUsername(ctx context.Context, username string) error
	}

	// Repository is the full set of repositories the store exposes.
	Repository interface {
		Waitlist() Waitlist
		Admin() Admin
		Tx(ctx context.Context, fn func(ctx context.Context, store Repository) error) error
		TxBegin(ctx context.Context) (Repository, error)
		TxCommit(ctx context.Context) error
		TxRollback(ctx context.Context) error
		Ping(ctx context.Context) error
		Close()
		DB() DB
		InTx() bool
	}

	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		GetContext(ctx context.Context, dest any, query string, args ...any) error
		QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
		QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	}
)
