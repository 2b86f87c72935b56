// Package auth issues and verifies the JWTs protecting the admin surface.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/antedotal/waitlist-manager/internal/auth/jwt"
	"github.com/antedotal/waitlist-manager/internal/auth/pwhash"
	"github.com/antedotal/waitlist-manager/internal/dependency"
	"github.com/go-chi/jwtauth/v5"
)

// ErrUnauthenticated is returned for bad credentials or a bad master
// password.
var ErrUnauthenticated = errors.New("not authenticated")

// Server implements the auth service.
type Server struct {
	adminRepository dependency.Admin
	pwhash          *pwhash.PasswordHasher
	JwtAuth         *jwtauth.JWTAuth
	jwtTTL          time.Duration
	c               *Config
	masterHash      string
}

// Config contains the configuration for the auth server.
type Config struct {
	JWTSecret                string `mapstructure:"jwt_secret"`
	MasterPassword           string `mapstructure:"master_password"`
	PasswordHasherSaltSize   int    `mapstructure:"password_hasher_salt_size"`
	PasswordHasherIterations int    `mapstructure:"password_hasher_iterations"`
	JWTTTL                   string `mapstructure:"jwt_ttl"`
}

// New creates a new auth server.
func New(c *Config, ar dependency.Admin) (*Server, error) {
	ph, err := pwhash.New(c.PasswordHasherSaltSize, c.PasswordHasherIterations)
	if err != nil {
		return nil, err
	}
	hash, err := ph.HashPassword(c.MasterPassword)
	if err != nil {
		return nil, err
	}
	if err := ph.Validate(c.MasterPassword, hash); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(c.JWTTTL)
	if err != nil {
		return nil, err
	}

	return &Server{
		adminRepository: ar,
		pwhash:          ph,
		JwtAuth:         jwtauth.New("HS256", []byte(c.JWTSecret), nil),
		jwtTTL:          ttl,
		c:               c,
		masterHash:      hash,
	}, nil
}

// Login gets an auth token for the provided username and password.
func (s *Server) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.ToLower(username)

	pwHash, err := s.adminRepository.PasswordHashByUsername(ctx, username)
	if err != nil {
		return "", ErrUnauthenticated
	}

	if err := s.pwhash.Validate(password, pwHash); err != nil {
		return "", ErrUnauthenticated
	}

	return jwt.NewToken(s.JwtAuth, s.jwtTTL, username)
}

// CreateAdmin creates a new admin user; requires the master password.
func (s *Server) CreateAdmin(ctx context.Context, masterPassword, username, password string) error {
	if err := s.pwhash.Validate(masterPassword, s.masterHash); err != nil {
		return ErrUnauthenticated
	}

	username = strings.ToLower(username)
	pwHash, err := s.pwhash.HashPassword(password)
	if err != nil {
		return err
	}

	return s.adminRepository.AddAdmin(ctx, username, pwHash)
}

// DeleteAdmin removes an admin user; requires the master password.
func (s *Server) DeleteAdmin(ctx context.Context, masterPassword, username string) error {
	if err := s.pwhash.Validate(masterPassword, s.masterHash); err != nil {
		return ErrUnauthenticated
	}
	return s.adminRepository.DeleteAdminByUsername(ctx, strings.ToLower(username))
}

// VerifyToken checks a bearer token and returns its subject.
func (s *Server) VerifyToken(token string) (string, error) {
	return jwt.VerifyToken(s.JwtAuth, token)
}
