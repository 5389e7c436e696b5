package services

import (
	"context"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	"github.com/SscSPs/acquire_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccount loads an account document.
	GetAccount(ctx context.Context, accountUID string) (domain.Account, error)

	// BalanceStatus returns balance, liability, receivable and availability as of now.
	BalanceStatus(ctx context.Context, accountUID string) (domain.BalanceStatus, error)

	// Balance, Liability and Receivable are single-figure views of BalanceStatus.
	Balance(ctx context.Context, accountUID string) (domain.BoundedDecimal, error)
	Liability(ctx context.Context, accountUID string) (domain.BoundedDecimal, error)
	Receivable(ctx context.Context, accountUID string) (domain.BoundedDecimal, error)

	// ListLineItems returns one page of an account's statement for day.
	ListLineItems(ctx context.Context, accountUID string, day time.Time, params dto.ListLineItemsParams) (*dto.ListLineItemsResponse, error)
}

// AccountWriterSvc defines write operations for account documents
type AccountWriterSvc interface {
	// CreateAccount creates an account with a zero balance.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, principal string) (domain.Account, error)

	// SetOverdraftLimit changes the overdraft limit if the account stays within it.
	SetOverdraftLimit(ctx context.Context, accountUID string, limit domain.BoundedDecimal, principal string) (domain.Account, error)

	// SetMaximumDailyLimit changes the daily spending limit. Zero removes it.
	SetMaximumDailyLimit(ctx context.Context, accountUID string, limit domain.BoundedDecimal, principal string) (domain.Account, error)
}

// AccountPostingSvc defines the line-item primitives the ledger composes.
type AccountPostingSvc interface {
	// Debit removes the transaction value (or reserves it, if provisional).
	Debit(ctx context.Context, accountUID string, tx domain.Transaction, auth domain.Authorisation, isProvisional bool) (domain.DebitNote, error)

	// Credit adds the value of debitNote (or records it as receivable).
	Credit(ctx context.Context, accountUID string, debitNote domain.DebitNote) (domain.CreditNote, error)

	// Post writes a settlement line item under the account mutex without any balance guard.
	Post(ctx context.Context, accountUID string, item domain.LineItem, noteUID string, auth domain.Authorisation, reason string) (domain.LineItemEntry, error)

	// RemoveLineItem deletes a line item written by Post.
	RemoveLineItem(ctx context.Context, accountUID string, entry domain.LineItemEntry) error

	// Withdraw takes back a debit or credit entry: deleted on the day it was
	// written, offset by reversal afterwards.
	Withdraw(ctx context.Context, accountUID string, entry domain.LineItemEntry, reversal domain.LineItem, noteUID string, auth domain.Authorisation) error

	// ReconcileDailySnapshot makes sure the snapshot for day exists.
	ReconcileDailySnapshot(ctx context.Context, accountUID string, day time.Time) (domain.BalanceSnapshot, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountPostingSvc
}
