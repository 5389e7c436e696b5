package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
)

// AccountReader defines read operations for account documents.
type AccountReader interface {
	// FindAccountByUID retrieves an account, or apperrors.ErrNotFound.
	FindAccountByUID(ctx context.Context, accountUID string) (domain.Account, error)
}

// AccountWriter defines write operations for account documents.
type AccountWriter interface {
	// SaveAccount creates or replaces an account document.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// LineItemReader defines read operations for the dated line items of an account.
type LineItemReader interface {
	// ListLineItems returns the line items written on day, in time order.
	ListLineItems(ctx context.Context, accountUID string, day time.Time) ([]domain.LineItemEntry, error)
}

// LineItemWriter defines write operations for line items.
type LineItemWriter interface {
	// WriteLineItem stores one line item under its note UID.
	WriteLineItem(ctx context.Context, accountUID string, entry domain.LineItemEntry, doc LineItemDocument) error

	// DeleteLineItem removes a line item. Only used to undo a write that
	// failed its post-check or compensation of an unfinished settlement.
	DeleteLineItem(ctx context.Context, accountUID string, entry domain.LineItemEntry) error
}

// SnapshotStore reads and writes the day-start balance snapshots.
type SnapshotStore interface {
	// FindSnapshot returns the snapshot for day, or apperrors.ErrNotFound.
	FindSnapshot(ctx context.Context, accountUID string, day time.Time) (domain.BalanceSnapshot, error)

	// SaveSnapshot writes the snapshot for day.
	SaveSnapshot(ctx context.Context, accountUID string, day time.Time, snapshot domain.BalanceSnapshot) error

	// ListSnapshotDays returns every day with a snapshot, ascending.
	ListSnapshotDays(ctx context.Context, accountUID string) ([]time.Time, error)
}

// LineItemDocument is the value stored alongside a line item key.
type LineItemDocument struct {
	NoteUID       string               `json:"noteUID"`       // Transaction the item belongs to
	Authorisation domain.Authorisation `json:"authorisation"` // Authorisation presented for the write
	Reason        string               `json:"reason"`        // perform, receipt, refund or compensation
	CreatedAt     time.Time            `json:"createdAt"`
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	LineItemReader
	LineItemWriter
	SnapshotStore
}
