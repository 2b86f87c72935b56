package entity

import (
	"database/sql"
	"time"
)

// SignupCandidate is the raw, untrusted submission as it arrives from the
// signup form. It lives for the duration of a single validation call.
type SignupCandidate struct {
	Email            string  `json:"email"`
	ReferralSource   *string `json:"referral_source"`
	MarketingConsent *bool   `json:"marketing_consent"`
	Honeypot         string  `json:"website"`
}

// ValidatedSignup is produced only by a full pass through the intake
// pipeline. Email is trimmed, lowercased and policy-checked. CanonicalEmail
// is the Gmail-collapsed form used for duplicate detection only; the literal
// Email is what gets stored.
type ValidatedSignup struct {
	Email            string
	CanonicalEmail   string
	ReferralSource   *string
	MarketingConsent bool
}

// WaitlistEntry is a persisted waitlist row. email carries a unique key.
type WaitlistEntry struct {
	Id               int            `db:"id"`
	Email            string         `db:"email"`
	CanonicalEmail   string         `db:"canonical_email"`
	ReferralSource   sql.NullString `db:"referral_source"`
	MarketingConsent bool           `db:"marketing_consent"`
	Status           string         `db:"status"`
	CreatedAt        time.Time      `db:"created_at"`
}
