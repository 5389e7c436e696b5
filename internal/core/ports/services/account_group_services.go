package services

import (
	"context"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	"github.com/SscSPs/acquire_ledger/internal/dto"
)

// AccountGroupSvc manages named accounts within a group.
type AccountGroupSvc interface {
	// CreateAccount returns the existing account of that name, or creates it.
	CreateAccount(ctx context.Context, group string, req dto.CreateAccountRequest, principal string) (domain.Account, error)

	// GetAccount resolves an account by name.
	GetAccount(ctx context.Context, group, name string) (domain.Account, error)

	// ListAccounts returns the account names in the group.
	ListAccounts(ctx context.Context, group string) ([]string, error)

	// Contains reports whether accountUID belongs to the group.
	Contains(ctx context.Context, group, accountUID string) (bool, error)
}
