package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/antedotal/waitlist-manager/internal/apisrv/auth"
	"github.com/antedotal/waitlist-manager/internal/entity"
	"github.com/antedotal/waitlist-manager/internal/intake"
	"github.com/antedotal/waitlist-manager/internal/middleware"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// codeRateLimited is a transport-level outcome, not part of the validation
// taxonomy: submissions over the signup limits never reach the pipeline.
const codeRateLimited intake.Code = "RATE_LIMITED"

// submitRequest defers decoding of the optional fields so their types are
// checked after the honeypot gate, preserving the pipeline's stage order.
type submitRequest struct {
	Email            string          `json:"email"`
	ReferralSource   json.RawMessage `json:"referral_source"`
	MarketingConsent json.RawMessage `json:"marketing_consent"`
	Honeypot         string          `json:"website"`
}

func (s *Server) handleSubmitWaitlist(w http.ResponseWriter, r *http.Request) {
	// A body that can't be decoded at all gets the missing-email prompt;
	// per-field mismatches are handled after the honeypot gate.
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRejection(w, &intake.Rejection{
			Code:    intake.CodeMissingEmail,
			Message: intake.MessageFor(intake.CodeMissingEmail),
		})
		return
	}

	candidate := entity.SignupCandidate{Email: req.Email, Honeypot: req.Honeypot}

	// A tripped honeypot wins over malformed optional fields: bots get the
	// same disguised success no matter what else they send.
	if strings.TrimSpace(req.Honeypot) == "" {
		if rej := bindOptionalFields(&candidate, &req); rej != nil {
			writeRejection(w, rej)
			return
		}
	}

	ip := middleware.GetClientIP(r.Context())
	emailKey := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.limiter.CheckSignup(ip, emailKey); err != nil {
		slog.Default().WarnContext(r.Context(), "signup rate limited",
			slog.String("ip", ip),
		)
		writeJSON(w, http.StatusTooManyRequests, envelope{Error: &errorBody{
			Code:    codeRateLimited,
			Message: intake.RateLimitedMessage,
		}})
		return
	}

	res, rej := s.frontend.Submit(r.Context(), &candidate)
	if rej != nil {
		writeRejection(w, rej)
		return
	}
	writeSuccess(w, http.StatusCreated, res.Email, res.Message)
}

// bindOptionalFields type-checks and binds the deferred optional fields. A
// wrongly typed referral source or consent flag gets its own rejection code.
func bindOptionalFields(c *entity.SignupCandidate, req *submitRequest) *intake.Rejection {
	if jsonFieldPresent(req.ReferralSource) {
		var referral string
		if err := json.Unmarshal(req.ReferralSource, &referral); err != nil {
			return &intake.Rejection{
				Code:    intake.CodeInvalidReferralSource,
				Message: intake.MessageFor(intake.CodeInvalidReferralSource),
			}
		}
		c.ReferralSource = &referral
	}
	if jsonFieldPresent(req.MarketingConsent) {
		var consent bool
		if err := json.Unmarshal(req.MarketingConsent, &consent); err != nil {
			return &intake.Rejection{
				Code:    intake.CodeInvalidConsent,
				Message: intake.MessageFor(intake.CodeInvalidConsent),
			}
		}
		c.MarketingConsent = &consent
	}
	return nil
}

func jsonFieldPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		slog.Default().ErrorContext(r.Context(), "health check failed",
			slog.String("err", err.Error()),
		)
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"auth_token": token})
}

type createAdminRequest struct {
	MasterPassword string `json:"master_password"`
	Username       string `json:"username"`
	Password       string `json:"password"`
}

func (s *Server) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := s.auth.CreateAdmin(r.Context(), req.MasterPassword, req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		slog.Default().ErrorContext(r.Context(), "can't create admin",
			slog.String("err", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGetWaitlist(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := queryInt(r, "offset", 0)

	entries, err := s.repo.Waitlist().GetWaitlistPaged(r.Context(), limit, offset)
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't get waitlist entries",
			slog.String("err", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	type entryBody struct {
		Email            string  `json:"email"`
		CanonicalEmail   string  `json:"canonical_email"`
		ReferralSource   *string `json:"referral_source"`
		MarketingConsent bool    `json:"marketing_consent"`
		Status           string  `json:"status"`
		CreatedAt        string  `json:"created_at"`
	}
	body := make([]entryBody, 0, len(entries))
	for _, e := range entries {
		var referral *string
		if e.ReferralSource.Valid {
			v := e.ReferralSource.String
			referral = &v
		}
		body = append(body, entryBody{
			Email:            e.Email,
			CanonicalEmail:   e.CanonicalEmail,
			ReferralSource:   referral,
			MarketingConsent: e.MarketingConsent,
			Status:           e.Status,
			CreatedAt:        e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": body})
}

func (s *Server) handleCountWaitlist(w http.ResponseWriter, r *http.Request) {
	count, err := s.repo.Waitlist().Count(r.Context())
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't count waitlist entries",
			slog.String("err", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int32{"count": count})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
