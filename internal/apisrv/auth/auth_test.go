package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret      = "hehe"
	masterPassword = "FJKqDyBvr9pAQMB3f8Uj4s"

	username = "testUsername"
	password = "testPassword"
)

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

func newAuthServer(t *testing.T) (*Server, *adminStub) {
	t.Helper()
	as := &adminStub{hashes: map[string]string{}}
	authsrv, err := New(&Config{
		JWTSecret:                jwtSecret,
		MasterPassword:           masterPassword,
		PasswordHasherSaltSize:   16,
		PasswordHasherIterations: 1000,
		JWTTTL:                   "60m",
	}, as)
	require.NoError(t, err)
	return authsrv, as
}

func TestAuth(t *testing.T) {
	ctx := context.Background()
	authsrv, _ := newAuthServer(t)

	err := authsrv.CreateAdmin(ctx, masterPassword, username, password)
	require.NoError(t, err)

	tok, err := authsrv.Login(ctx, username, password)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	// Usernames are case-insensitive.
	subject, err := authsrv.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "testusername", subject)

	_, err = authsrv.Login(ctx, username, "wrong")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = authsrv.Login(ctx, "unknown", password)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateAdminRequiresMasterPassword(t *testing.T) {
	ctx := context.Background()
	authsrv, as := newAuthServer(t)

	err := authsrv.CreateAdmin(ctx, "wrong", username, password)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, as.hashes)
}

func TestDeleteAdmin(t *testing.T) {
	ctx := context.Background()
	authsrv, as := newAuthServer(t)

	require.NoError(t, authsrv.CreateAdmin(ctx, masterPassword, username, password))
	require.NoError(t, authsrv.DeleteAdmin(ctx, masterPassword, username))
	assert.Empty(t, as.hashes)

	_, err := authsrv.Login(ctx, username, password)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
