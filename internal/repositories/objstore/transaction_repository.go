package objstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/SscSPs/acquire_ledger/internal/utils/mapping"
)

type ObjectTransactionRecordRepository struct {
	store portsrepo.ObjectStore
}

func newObjectTransactionRecordRepository(store portsrepo.ObjectStore) *ObjectTransactionRecordRepository {
	return &ObjectTransactionRecordRepository{store: store}
}

var _ portsrepo.TransactionRecordRepositoryFacade = (*ObjectTransactionRecordRepository)(nil)

// SaveTransactionRecord creates or replaces the record at transactions/<uid>.
func (r *ObjectTransactionRecordRepository) SaveTransactionRecord(ctx context.Context, record domain.TransactionRecord) error {
	if record.UID == "" {
		return fmt.Errorf("%w: transaction record has no uid", apperrors.ErrValidation)
	}
	data, err := json.Marshal(mapping.ToTransactionRecordDocument(record))
	if err != nil {
		return fmt.Errorf("failed to encode transaction record %s: %w", record.UID, err)
	}
	if err := r.store.Set(ctx, transactionKey(record.UID), data); err != nil {
		return fmt.Errorf("failed to save transaction record %s: %w", record.UID, err)
	}
	return nil
}

// DeleteTransactionRecord removes the record at transactions/<uid>.
func (r *ObjectTransactionRecordRepository) DeleteTransactionRecord(ctx context.Context, uid string) error {
	if err := r.store.Delete(ctx, transactionKey(uid)); err != nil {
		return fmt.Errorf("failed to delete transaction record %s: %w", uid, err)
	}
	return nil
}

// FindTransactionRecord loads and validates a record.
func (r *ObjectTransactionRecordRepository) FindTransactionRecord(ctx context.Context, uid string) (domain.TransactionRecord, error) {
	if uid == "" {
		return domain.TransactionRecord{}, fmt.Errorf("%w: transaction uid cannot be empty", apperrors.ErrValidation)
	}
	data, err := r.store.Get(ctx, transactionKey(uid))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.TransactionRecord{}, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, uid)
		}
		return domain.TransactionRecord{}, fmt.Errorf("failed to load transaction record %s: %w", uid, err)
	}
	var doc dto.TransactionRecordDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("%w: transaction record %s: %v", apperrors.ErrMalformed, uid, err)
	}
	return mapping.ToDomainTransactionRecord(doc)
}
