package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/antedotal/waitlist-manager/internal/dependency"
	"github.com/antedotal/waitlist-manager/internal/entity"
)

// ErrDuplicateEmail is returned by Add when the unique key on email already
// holds a row for the submitted address. Concurrent submissions of the same
// email race on that key; the loser gets this error.
var ErrDuplicateEmail = errors.New("email already on waitlist")

type waitlistStore struct {
	*MYSQLStore
}

// Waitlist returns an object implementing the Waitlist interface
func (ms *MYSQLStore) Waitlist() dependency.Waitlist {
	return &waitlistStore{
		MYSQLStore: ms,
	}
}

// Add inserts a validated signup. The stored email is the literal lowercased
// address; canonical_email is recorded alongside it as a duplicate-detection
// aid and carries no uniqueness constraint. A single attempt, no retry.
func (ms *MYSQLStore) Add(ctx context.Context, signup *entity.ValidatedSignup) error {
	var referral any
	if signup.ReferralSource != nil {
		referral = *signup.ReferralSource
	}

	query := `INSERT INTO waitlist (email, canonical_email, referral_source, marketing_consent)
		VALUES (:email, :canonicalEmail, :referralSource, :marketingConsent)`
	err := ExecNamed(ctx, ms.DB(), query, map[string]any{
		"email":            signup.Email,
		"canonicalEmail":   signup.CanonicalEmail,
		"referralSource":   referral,
		"marketingConsent": signup.MarketingConsent,
	})
	if err != nil {
		if IsErrUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to add to waitlist: %w", err)
	}
	return nil
}

// GetWaitlistPaged returns waitlist rows ordered by signup time, newest
// first.
func (ms *MYSQLStore) GetWaitlistPaged(ctx context.Context, limit, offset int) ([]entity.WaitlistEntry, error) {
	query := `SELECT * FROM waitlist ORDER BY created_at DESC, id DESC LIMIT :limit OFFSET :offset`
	entries, err := QueryListNamed[entity.WaitlistEntry](ctx, ms.DB(), query, map[string]any{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get waitlist entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of waitlist rows.
func (ms *MYSQLStore) Count(ctx context.Context) (int32, error) {
	count, err := QueryCountNamed(ctx, ms.DB(), `SELECT COUNT(*) FROM waitlist`, map[string]any{})
	if err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries: %w", err)
	}
	return count, nil
}

// HasCanonicalVariant reports whether a stored row other than email itself
// collapses to the same canonical form. Stored rows keep their own literal
// addresses, so this is a review aid, not an enforced constraint.
func (ms *MYSQLStore) HasCanonicalVariant(ctx context.Context, email, canonicalEmail string) (bool, error) {
	query := `SELECT COUNT(*) FROM waitlist WHERE canonical_email = :canonicalEmail AND email != :email`
	count, err := QueryCountNamed(ctx, ms.DB(), query, map[string]any{
		"canonicalEmail": canonicalEmail,
		"email":          email,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check canonical variants: %w", err)
	}
	return count > 0, nil
}
