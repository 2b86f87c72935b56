package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/antedotal/waitlist-manager/internal/apisrv/auth"
	"github.com/antedotal/waitlist-manager/internal/apisrv/frontend"
	"github.com/antedotal/waitlist-manager/internal/dependency"
	"github.com/antedotal/waitlist-manager/internal/entity"
	"github.com/antedotal/waitlist-manager/internal/intake"
	"github.com/antedotal/waitlist-manager/internal/ratelimit"
	"github.com/antedotal/waitlist-manager/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const masterPassword = "test-master-password"

type waitlistStub struct {
	dependency.Waitlist

	addErr  error
	added   []*entity.ValidatedSignup
	entries []entity.WaitlistEntry
}

func (w *waitlistStub) Add(ctx context.Context, signup *entity.ValidatedSignup) error {
	if w.addErr != nil {
		return w.addErr
	}
	w.added = append(w.added, signup)
	return nil
}

func (w *waitlistStub) GetWaitlistPaged(ctx context.Context, limit, offset int) ([]entity.WaitlistEntry, error) {
	return w.entries, nil
}

func (w *waitlistStub) Count(ctx context.Context) (int32, error) {
	return int32(len(w.entries)), nil
}

func (w *waitlistStub) HasCanonicalVariant(ctx context.Context, email, canonicalEmail string) (bool, error) {
	return false, nil
}

type adminStub struct {
	hashes map[string]string
}

func (a *adminStub) PasswordHashByUsername(ctx context.Context, username string) (string, error) {
	h, ok := a.hashes[username]
	if !ok {
		return "", fmt.Errorf("no such admin")
	}
	return h, nil
}

func (a *adminStub) AddAdmin(ctx context.Context, username, passwordHash string) error {
	a.hashes[username] = passwordHash
	return nil
}

func (a *adminStub) DeleteAdminByUsername(ctx context.Context, username string) error {
	delete(a.hashes, username)
	return nil
}

type repoStub struct {
	dependency.Repository

	waitlist *waitlistStub
	admin    *adminStub
	pingErr  error
}

func (r *repoStub) Waitlist() dependency.Waitlist { return r.waitlist }
func (r *repoStub) Admin() dependency.Admin       { return r.admin }
func (r *repoStub) Ping(ctx context.Context) error {
	return r.pingErr
}

func newTestServer(t *testing.T, repo *repoStub) http.Handler {
	t.Helper()

	validator := intake.New(intake.NewPolicy(
		[]string{"mailinator.com"},
		[]string{"gmail.com", "yahoo.com"},
	))
	authS, err := auth.New(&auth.Config{
		JWTSecret:                "test-secret",
		MasterPassword:           masterPassword,
		PasswordHasherSaltSize:   16,
		PasswordHasherIterations: 1000,
		JWTTTL:                   "60m",
	}, repo.admin)
	require.NoError(t, err)

	s := New(&Config{Port: "0"})
	s.frontend = frontend.New(repo, validator)
	s.auth = authS
	s.repo = repo
	s.limiter = ratelimit.NewSignupLimiter(ratelimit.Config{
		IPSignupsPerHour:    100,
		EmailSignupsPerHour: 100,
	})
	return s.router()
}

func newRepoStub() *repoStub {
	return &repoStub{
		waitlist: &waitlistStub{},
		admin:    &adminStub{hashes: map[string]string{}},
	}
}

func postWaitlist(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/waitlist", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSubmitWaitlist_Success(t *testing.T) {
	repo := newRepoStub()
	h := newTestServer(t, repo)

	rec := postWaitlist(t, h, `{"email":"User@yahoo.com","referral_source":"twitter"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Data)
	assert.Equal(t, "user@yahoo.com", env.Data.Email)
	require.Len(t, repo.waitlist.added, 1)
	require.NotNil(t, repo.waitlist.added[0].ReferralSource)
	assert.Equal(t, "twitter", *repo.waitlist.added[0].ReferralSource)
}

func TestSubmitWaitlist_RejectionStatuses(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   intake.Code
	}{
		{"missing email", `{"email":""}`, http.StatusBadRequest, intake.CodeMissingEmail},
		{"bad format", `{"email":"not-an-email"}`, http.StatusBadRequest, intake.CodeInvalidFormat},
		{"disposable", `{"email":"test@mailinator.com"}`, http.StatusBadRequest, intake.CodeDisposableEmail},
		{"unknown provider", `{"email":"person@unknownmail.xyz"}`, http.StatusBadRequest, intake.CodeProviderNotAllowed},
		{"referral type", `{"email":"user@yahoo.com","referral_source":42}`, http.StatusBadRequest, intake.CodeInvalidReferralSource},
		{"consent type", `{"email":"user@yahoo.com","marketing_consent":"yes"}`, http.StatusBadRequest, intake.CodeInvalidConsent},
		{"garbage body", `{"email"`, http.StatusBadRequest, intake.CodeMissingEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepoStub()
			h := newTestServer(t, repo)

			rec := postWaitlist(t, h, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			env := decodeEnvelope(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.Empty(t, repo.waitlist.added)
		})
	}
}

func TestSubmitWaitlist_DuplicateConflict(t *testing.T) {
	repo := newRepoStub()
	repo.waitlist.addErr = store.ErrDuplicateEmail
	h := newTestServer(t, repo)

	rec := postWaitlist(t, h, `{"email":"dup@gmail.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, intake.CodeDuplicateEmail, env.Error.Code)
}

func TestSubmitWaitlist_StoreFailure(t *testing.T) {
	repo := newRepoStub()
	repo.waitlist.addErr = fmt.Errorf("mysql is down")
	h := newTestServer(t, repo)

	rec := postWaitlist(t, h, `{"email":"user@gmail.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, intake.CodeDatabaseError, env.Error.Code)
	assert.NotContains(t, rec.Body.String(), "mysql is down")
}

func TestSubmitWaitlist_HoneypotLooksLikeSuccess(t *testing.T) {
	repo := newRepoStub()
	h := newTestServer(t, repo)

	rec := postWaitlist(t, h, `{"email":"user@yahoo.com","website":"http://spam.example"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Data)
	assert.Nil(t, env.Error)
	assert.Empty(t, repo.waitlist.added)
}

func TestSubmitWaitlist_HoneypotWinsOverBadFields(t *testing.T) {
	repo := newRepoStub()
	h := newTestServer(t, repo)

	// A tripped honeypot outranks the malformed consent and referral
	// values: the bot sees the same success shape as everyone else.
	rec := postWaitlist(t, h,
		`{"email":"user@yahoo.com","website":"http://spam.example","marketing_consent":"yes","referral_source":42}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Data)
	assert.Nil(t, env.Error)
	assert.Empty(t, repo.waitlist.added)
}

func TestSubmitWaitlist_NullOptionalFields(t *testing.T) {
	repo := newRepoStub()
	h := newTestServer(t, repo)

	rec := postWaitlist(t, h, `{"email":"user@yahoo.com","referral_source":null,"marketing_consent":null}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, repo.waitlist.added, 1)
	assert.Nil(t, repo.waitlist.added[0].ReferralSource)
	assert.True(t, repo.waitlist.added[0].MarketingConsent)
}

func TestSubmitWaitlist_RateLimited(t *testing.T) {
	repo := newRepoStub()

	validator := intake.New(intake.NewPolicy(nil, []string{"yahoo.com"}))
	authS, err := auth.New(&auth.Config{
		JWTSecret:                "test-secret",
		MasterPassword:           masterPassword,
		PasswordHasherSaltSize:   16,
		PasswordHasherIterations: 1000,
		JWTTTL:                   "60m",
	}, repo.admin)
	require.NoError(t, err)

	s := New(&Config{Port: "0"})
	s.frontend = frontend.New(repo, validator)
	s.auth = authS
	s.repo = repo
	s.limiter = ratelimit.NewSignupLimiter(ratelimit.Config{IPSignupsPerHour: 1, EmailSignupsPerHour: 1})
	h := s.router()

	rec := postWaitlist(t, h, `{"email":"user@yahoo.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = postWaitlist(t, h, `{"email":"other@yahoo.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, codeRateLimited, env.Error.Code)
}

func TestSubmitWaitlist_RateLimitKeyIsNormalized(t *testing.T) {
	repo := newRepoStub()

	validator := intake.New(intake.NewPolicy(nil, []string{"yahoo.com"}))
	authS, err := auth.New(&auth.Config{
		JWTSecret:                "test-secret",
		MasterPassword:           masterPassword,
		PasswordHasherSaltSize:   16,
		PasswordHasherIterations: 1000,
		JWTTTL:                   "60m",
	}, repo.admin)
	require.NoError(t, err)

	s := New(&Config{Port: "0"})
	s.frontend = frontend.New(repo, validator)
	s.auth = authS
	s.repo = repo
	s.limiter = ratelimit.NewSignupLimiter(ratelimit.Config{IPSignupsPerHour: 100, EmailSignupsPerHour: 1})
	h := s.router()

	rec := postWaitlist(t, h, `{"email":"User@Yahoo.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Case variants of the same address share one bucket.
	rec = postWaitlist(t, h, `{"email":" user@yahoo.com "}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHealthz(t *testing.T) {
	repo := newRepoStub()
	h := newTestServer(t, repo)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	repo.pingErr = fmt.Errorf("no database")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminWaitlist_RequiresAuth(t *testing.T) {
	repo := newRepoStub()
	h := newTestServer(t, repo)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/waitlist", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminWaitlist_FullFlow(t *testing.T) {
	repo := newRepoStub()
	repo.waitlist.entries = []entity.WaitlistEntry{
		{
			Id:               1,
			Email:            "user@yahoo.com",
			CanonicalEmail:   "user@yahoo.com",
			MarketingConsent: true,
			Status:           "pending",
			CreatedAt:        time.Now(),
		},
	}
	h := newTestServer(t, repo)

	// Bootstrap an admin with the master password, then log in.
	body := fmt.Sprintf(`{"master_password":%q,"username":"Ops","password":"secret123"}`, masterPassword)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/users", strings.NewReader(body))
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"ops","password":"secret123"}`))
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var login map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	token := login["auth_token"]
	require.NotEmpty(t, token)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/waitlist", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user@yahoo.com")

	req = httptest.NewRequest(http.MethodGet, "/api/admin/waitlist/count", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestAdminWaitlist_WrongMasterPassword(t *testing.T) {
	repo := newRepoStub()
	h := newTestServer(t, repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/users",
		strings.NewReader(`{"master_password":"wrong","username":"ops","password":"secret123"}`))
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
