// Package intake implements the waitlist signup validation and anti-abuse
// pipeline. The validator is pure and performs no I/O; it is safe to call
// concurrently from any number of goroutines.
package intake

import (
	"strings"

	"github.com/antedotal/waitlist-manager/internal/entity"
)

// Validator runs the ordered intake pipeline over a raw signup candidate.
// Each stage is a hard gate; the first failure short-circuits and later
// stages never see data that failed earlier.
type Validator struct {
	policy Policy
}

// New returns a validator backed by the given policy sets.
func New(policy Policy) *Validator {
	return &Validator{policy: policy}
}

// Validate takes a raw candidate and returns either a fully validated signup
// or a rejection. A ValidatedSignup is never constructed except by passing
// every stage; there is no partially valid state.
//
// A non-empty honeypot yields CodeBotDetected: the caller must answer with an
// outward success and must not attempt storage.
func (v *Validator) Validate(c *entity.SignupCandidate) (*entity.ValidatedSignup, *Rejection) {
	if strings.TrimSpace(c.Honeypot) != "" {
		return nil, reject(CodeBotDetected)
	}

	if c.Email == "" {
		return nil, reject(CodeMissingEmail)
	}

	if containsControlCharacters(c.Email) {
		return nil, reject(CodeInvalidCharacters)
	}

	if containsSuspiciousUnicode(c.Email) {
		return nil, reject(CodeSuspiciousUnicode)
	}

	// Normalized form is used for every later check and for storage.
	email := strings.ToLower(strings.TrimSpace(c.Email))

	if !validEmailFormat(email) {
		return nil, reject(CodeInvalidFormat)
	}

	if !validEmailLength(email) {
		return nil, reject(CodeEmailTooLong)
	}

	_, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Count(email, "@") != 1 {
		return nil, reject(CodeInvalidFormat)
	}

	if v.policy.isDisposable(domain) {
		return nil, reject(CodeDisposableEmail)
	}

	if !v.policy.isAllowedProvider(domain) {
		return nil, reject(CodeProviderNotAllowed)
	}

	var referral *string
	if c.ReferralSource != nil {
		if cleaned := sanitizeFreeText(*c.ReferralSource); cleaned != "" {
			referral = &cleaned
		}
	}

	// Consent defaults to true when the form omits it; a non-boolean value
	// is rejected at the JSON boundary with CodeInvalidConsent.
	consent := true
	if c.MarketingConsent != nil {
		consent = *c.MarketingConsent
	}

	return &entity.ValidatedSignup{
		Email:            email,
		CanonicalEmail:   CanonicalEmail(email),
		ReferralSource:   referral,
		MarketingConsent: consent,
	}, nil
}
