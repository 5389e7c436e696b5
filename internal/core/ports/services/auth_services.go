package services

import (
	"context"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
)

// AuthorisationVerifier checks that an authorisation grants access to a resource.
type AuthorisationVerifier interface {
	// Verify returns apperrors.ErrPermission when auth does not bind to resource.
	Verify(ctx context.Context, auth domain.Authorisation, resource string) error
}

// AuthorisationIssuer signs authorisations for an authenticated principal.
type AuthorisationIssuer interface {
	Issue(ctx context.Context, principal, resource string) (domain.Authorisation, error)
}

// AuthorisationSvcFacade combines issuing and verification.
type AuthorisationSvcFacade interface {
	AuthorisationVerifier
	AuthorisationIssuer
}
