// Package frontend implements the public waitlist signup service.
package frontend

import (
	"context"
	"errors"

	"log/slog"

	"github.com/antedotal/waitlist-manager/internal/dependency"
	"github.com/antedotal/waitlist-manager/internal/entity"
	"github.com/antedotal/waitlist-manager/internal/intake"
	"github.com/antedotal/waitlist-manager/internal/store"
)

// Server handles waitlist submissions.
type Server struct {
	repo      dependency.Repository
	validator *intake.Validator
}

// New creates a new frontend server.
func New(r dependency.Repository, v *intake.Validator) *Server {
	return &Server{
		repo:      r,
		validator: v,
	}
}

// SubmitResult is the outward response for an accepted submission.
type SubmitResult struct {
	Email   string
	Message string
}

// Submit runs the intake pipeline over a raw candidate and, on a full pass,
// performs a single insert attempt against the waitlist store. Store
// outcomes are mapped back into the rejection taxonomy: a unique-key hit
// becomes CodeDuplicateEmail, any other store failure becomes
// CodeDatabaseError with the detail logged but not surfaced, and a fault in
// the call path itself becomes CodeUnexpectedError.
//
// A detected bot gets an outward success with an empty email and no insert.
func (s *Server) Submit(ctx context.Context, c *entity.SignupCandidate) (res *SubmitResult, rej *intake.Rejection) {
	defer func() {
		if r := recover(); r != nil {
			slog.Default().ErrorContext(ctx, "panic during waitlist submit",
				slog.Any("panic", r),
			)
			res = nil
			rej = &intake.Rejection{
				Code:    intake.CodeUnexpectedError,
				Message: intake.MessageFor(intake.CodeUnexpectedError),
			}
		}
	}()

	signup, rejection := s.validator.Validate(c)
	if rejection != nil {
		if rejection.Code == intake.CodeBotDetected {
			// Disguised success: bots must not learn they were caught.
			slog.Default().WarnContext(ctx, "bot detected via honeypot field")
			return &SubmitResult{Email: "", Message: intake.BotDecoyMessage}, nil
		}
		return nil, rejection
	}

	if err := s.repo.Waitlist().Add(ctx, signup); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, &intake.Rejection{
				Code:    intake.CodeDuplicateEmail,
				Message: intake.MessageFor(intake.CodeDuplicateEmail),
			}
		}
		slog.Default().ErrorContext(ctx, "can't add signup to waitlist",
			slog.String("err", err.Error()),
		)
		return nil, &intake.Rejection{
			Code:    intake.CodeDatabaseError,
			Message: intake.MessageFor(intake.CodeDatabaseError),
		}
	}

	// Detection aid only: a stored Gmail variant collapsing to the same
	// canonical form is logged for review, never blocked.
	if signup.CanonicalEmail != signup.Email {
		if found, err := s.repo.Waitlist().HasCanonicalVariant(ctx, signup.Email, signup.CanonicalEmail); err == nil && found {
			slog.Default().InfoContext(ctx, "signup has stored canonical variant",
				slog.String("canonical_email", signup.CanonicalEmail),
			)
		}
	}

	return &SubmitResult{
		Email:   signup.Email,
		Message: intake.SuccessMessage,
	}, nil
}
