package objstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	"github.com/SscSPs/acquire_ledger/internal/utils/mapping"
)

type ObjectAccountRepository struct {
	store portsrepo.ObjectStore
}

// newObjectAccountRepository creates a new repository for account data.
func newObjectAccountRepository(store portsrepo.ObjectStore) *ObjectAccountRepository {
	return &ObjectAccountRepository{store: store}
}

// Ensure ObjectAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*ObjectAccountRepository)(nil)

// SaveAccount creates or replaces the account document.
func (r *ObjectAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if err := validatePathSegment("account uid", account.UID); err != nil {
		return err
	}
	data, err := json.Marshal(mapping.ToAccountDocument(account))
	if err != nil {
		return fmt.Errorf("failed to encode account %s: %w", account.UID, err)
	}
	if err := r.store.Set(ctx, accountKey(account.UID), data); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to save account", slog.String("account_uid", account.UID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to save account %s: %w", account.UID, err)
	}
	return nil
}

// FindAccountByUID retrieves an account by its UID.
func (r *ObjectAccountRepository) FindAccountByUID(ctx context.Context, accountUID string) (domain.Account, error) {
	if err := validatePathSegment("account uid", accountUID); err != nil {
		return domain.Account{}, err
	}
	data, err := r.store.Get(ctx, accountKey(accountUID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Account{}, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountUID)
		}
		return domain.Account{}, fmt.Errorf("failed to load account %s: %w", accountUID, err)
	}
	var doc dto.AccountDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Account{}, fmt.Errorf("%w: account %s: %v", apperrors.ErrMalformed, accountUID, err)
	}
	return mapping.ToDomainAccount(doc)
}

// ListLineItems returns the line items of one day in key (time) order.
func (r *ObjectAccountRepository) ListLineItems(ctx context.Context, accountUID string, day time.Time) ([]domain.LineItemEntry, error) {
	prefix := lineItemDayPrefix(accountUID, day)
	keys, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items of %s: %w", accountUID, err)
	}
	base := accountPrefix(accountUID)
	entries := make([]domain.LineItemEntry, 0, len(keys))
	for _, key := range keys {
		entry, err := domain.SplitLineItemPath(strings.TrimPrefix(key, base))
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", accountUID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// WriteLineItem stores one line item. The key carries the value; the
// document records why it was written.
func (r *ObjectAccountRepository) WriteLineItem(ctx context.Context, accountUID string, entry domain.LineItemEntry, doc portsrepo.LineItemDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode line item for %s: %w", accountUID, err)
	}
	if err := r.store.Set(ctx, lineItemKey(accountUID, entry), data); err != nil {
		return fmt.Errorf("failed to write line item %s for %s: %w", entry.UID, accountUID, err)
	}
	return nil
}

// DeleteLineItem removes one line item.
func (r *ObjectAccountRepository) DeleteLineItem(ctx context.Context, accountUID string, entry domain.LineItemEntry) error {
	if err := r.store.Delete(ctx, lineItemKey(accountUID, entry)); err != nil {
		return fmt.Errorf("failed to delete line item %s for %s: %w", entry.UID, accountUID, err)
	}
	return nil
}

// FindSnapshot returns the day-start snapshot for day.
func (r *ObjectAccountRepository) FindSnapshot(ctx context.Context, accountUID string, day time.Time) (domain.BalanceSnapshot, error) {
	data, err := r.store.Get(ctx, snapshotKey(accountUID, day))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.BalanceSnapshot{}, fmt.Errorf("%w: snapshot of %s on %s", apperrors.ErrNotFound, accountUID, day.Format(domain.DayFormat))
		}
		return domain.BalanceSnapshot{}, fmt.Errorf("failed to load snapshot of %s: %w", accountUID, err)
	}
	var doc dto.SnapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("%w: snapshot of %s: %v", apperrors.ErrMalformed, accountUID, err)
	}
	return mapping.ToDomainSnapshot(doc)
}

// SaveSnapshot writes the day-start snapshot for day.
func (r *ObjectAccountRepository) SaveSnapshot(ctx context.Context, accountUID string, day time.Time, snapshot domain.BalanceSnapshot) error {
	data, err := json.Marshal(mapping.ToSnapshotDocument(snapshot))
	if err != nil {
		return fmt.Errorf("failed to encode snapshot of %s: %w", accountUID, err)
	}
	if err := r.store.Set(ctx, snapshotKey(accountUID, day), data); err != nil {
		return fmt.Errorf("failed to save snapshot of %s: %w", accountUID, err)
	}
	return nil
}

// ListSnapshotDays returns the days that have a snapshot, ascending.
func (r *ObjectAccountRepository) ListSnapshotDays(ctx context.Context, accountUID string) ([]time.Time, error) {
	prefix := snapshotPrefix(accountUID)
	keys, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots of %s: %w", accountUID, err)
	}
	days := make([]time.Time, 0, len(keys))
	for _, key := range keys {
		day, err := time.Parse(domain.DayFormat, strings.TrimPrefix(key, prefix))
		if err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Skipping malformed snapshot key", slog.String("key", key))
			continue
		}
		days = append(days, day)
	}
	return days, nil
}
