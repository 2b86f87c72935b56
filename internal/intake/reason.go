package intake

// Code identifies why a signup was rejected. The set is the complete
// contract callers branch on for user-facing messaging.
type Code string

const (
	CodeMissingEmail          Code = "MISSING_EMAIL"
	CodeInvalidCharacters     Code = "INVALID_CHARACTERS"
	CodeSuspiciousUnicode     Code = "SUSPICIOUS_UNICODE"
	CodeInvalidFormat         Code = "INVALID_FORMAT"
	CodeEmailTooLong          Code = "EMAIL_TOO_LONG"
	CodeDisposableEmail       Code = "DISPOSABLE_EMAIL"
	CodeProviderNotAllowed    Code = "PROVIDER_NOT_ALLOWED"
	CodeInvalidReferralSource Code = "INVALID_REFERRAL_SOURCE"
	CodeInvalidConsent        Code = "INVALID_CONSENT"
	CodeDuplicateEmail        Code = "DUPLICATE_EMAIL"
	CodeDatabaseError         Code = "DATABASE_ERROR"
	CodeUnexpectedError       Code = "UNEXPECTED_ERROR"

	// CodeBotDetected is never surfaced to the submitter. Callers must
	// answer a bot with an outward success response and skip storage, so
	// automated submitters get no signal that they were detected.
	CodeBotDetected Code = "BOT_DETECTED"
)

// Rejection is a typed, user-displayable outcome, not an exception.
type Rejection struct {
	Code    Code
	Message string
}

func (r *Rejection) Error() string {
	return string(r.Code) + ": " + r.Message
}

func reject(code Code) *Rejection {
	return &Rejection{Code: code, Message: MessageFor(code)}
}

// MessageFor returns the user-facing message for a rejection code. Internal
// error detail never reaches the submitter, only these messages do.
func MessageFor(code Code) string {
	switch code {
	case CodeMissingEmail:
		return "Hey - Enter your email to join the waitlist!"
	case CodeDisposableEmail:
		return "Please use a permanent email address."
	case CodeInvalidReferralSource:
		return "Invalid referral source"
	case CodeInvalidConsent:
		return "Invalid consent value"
	case CodeDuplicateEmail:
		return "You're already on the waitlist! We'll be in touch soon."
	case CodeDatabaseError, CodeUnexpectedError:
		return "Something went wrong. Please try again later."
	case CodeInvalidCharacters, CodeSuspiciousUnicode, CodeInvalidFormat,
		CodeEmailTooLong, CodeProviderNotAllowed:
		return "That email is invalid!"
	default:
		return "That email is invalid!"
	}
}

// SuccessMessage is returned on an accepted signup and on the disguised
// bot response.
const (
	SuccessMessage     = "Successfully joined the waitlist!"
	BotDecoyMessage    = "Thank you for joining!"
	RateLimitedMessage = "Too many signup attempts, please try again later."
)
