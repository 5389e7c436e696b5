// Package jwtauth issues and verifies authorisations as HS256 JWTs whose
// "res" claim names the resource they grant access to.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
)

type authorisationClaims struct {
	Resource string `json:"res"`
	jwt.RegisteredClaims
}

// Service signs and checks authorisation tokens.
type Service struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

var _ portssvc.AuthorisationSvcFacade = (*Service)(nil)

// New creates a Service. expiry bounds how long an issued authorisation
// may be presented.
func New(secret, issuer string, expiry time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("authorisation secret cannot be empty")
	}
	if expiry <= 0 {
		return nil, errors.New("authorisation expiry must be positive")
	}
	return &Service{secret: []byte(secret), issuer: issuer, expiry: expiry, now: time.Now}, nil
}

// WithClock replaces time.Now, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue signs an authorisation binding principal to resource.
func (s *Service) Issue(ctx context.Context, principal, resource string) (domain.Authorisation, error) {
	if principal == "" || resource == "" {
		return domain.Authorisation{}, fmt.Errorf("%w: principal and resource are required", apperrors.ErrValidation)
	}
	now := s.now()
	claims := authorisationClaims{
		Resource: resource,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   principal,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return domain.Authorisation{}, fmt.Errorf("failed to sign authorisation: %w", err)
	}
	middleware.GetLoggerFromCtx(ctx).Debug("Issued authorisation", slog.String("principal", principal), slog.String("resource", resource))
	return domain.Authorisation{Token: token}, nil
}

// Verify checks the signature, lifetime and resource of auth.
func (s *Service) Verify(ctx context.Context, auth domain.Authorisation, resource string) error {
	if auth.IsEmpty() {
		return fmt.Errorf("%w: missing authorisation for %s", apperrors.ErrPermission, resource)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	claims := &authorisationClaims{}
	token, err := jwt.ParseWithClaims(auth.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		middleware.GetLoggerFromCtx(ctx).Warn("Rejected authorisation", slog.String("resource", resource), slog.Any("error", err))
		return fmt.Errorf("%w: invalid authorisation for %s", apperrors.ErrPermission, resource)
	}
	if claims.Resource != resource {
		middleware.GetLoggerFromCtx(ctx).Warn("Authorisation bound to another resource",
			slog.String("resource", resource), slog.String("granted", claims.Resource), slog.String("principal", claims.Subject))
		return fmt.Errorf("%w: authorisation grants %s, not %s", apperrors.ErrPermission, claims.Resource, resource)
	}
	return nil
}

// IssuePrincipalToken signs a bearer token for the HTTP API, accepted by
// middleware.AuthMiddleware configured with the same secret and issuer.
func IssuePrincipalToken(principal, secret, issuer string, expiry time.Duration) (string, error) {
	if principal == "" {
		return "", fmt.Errorf("%w: principal is required", apperrors.ErrValidation)
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   principal,
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
