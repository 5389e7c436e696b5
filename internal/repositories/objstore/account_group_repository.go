package objstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/acquire_ledger/internal/dto"
)

type ObjectAccountGroupRepository struct {
	store portsrepo.ObjectStore
}

func newObjectAccountGroupRepository(store portsrepo.ObjectStore) *ObjectAccountGroupRepository {
	return &ObjectAccountGroupRepository{store: store}
}

var _ portsrepo.AccountGroupRepositoryFacade = (*ObjectAccountGroupRepository)(nil)

// SaveAccountName maps name to accountUID within group.
func (r *ObjectAccountGroupRepository) SaveAccountName(ctx context.Context, group, name, accountUID string) error {
	if err := validatePathSegment("account group", group); err != nil {
		return err
	}
	data, err := json.Marshal(dto.AccountGroupEntryDocument{Name: name, AccountUID: accountUID})
	if err != nil {
		return fmt.Errorf("failed to encode group entry %s/%s: %w", group, name, err)
	}
	if err := r.store.Set(ctx, groupKey(group, name), data); err != nil {
		return fmt.Errorf("failed to save group entry %s/%s: %w", group, name, err)
	}
	return nil
}

// FindAccountUID resolves name within group.
func (r *ObjectAccountGroupRepository) FindAccountUID(ctx context.Context, group, name string) (string, error) {
	if err := validatePathSegment("account group", group); err != nil {
		return "", err
	}
	data, err := r.store.Get(ctx, groupKey(group, name))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: no account named %q in group %s", apperrors.ErrNotFound, name, group)
		}
		return "", fmt.Errorf("failed to load group entry %s/%s: %w", group, name, err)
	}
	var doc dto.AccountGroupEntryDocument
	if err := json.Unmarshal(data, &doc); err != nil || doc.AccountUID == "" {
		return "", fmt.Errorf("%w: group entry %s/%s", apperrors.ErrMalformed, group, name)
	}
	return doc.AccountUID, nil
}

// ListAccountNames returns every name in group, sorted.
func (r *ObjectAccountGroupRepository) ListAccountNames(ctx context.Context, group string) ([]string, error) {
	if err := validatePathSegment("account group", group); err != nil {
		return nil, err
	}
	keys, err := r.store.List(ctx, groupPrefix(group))
	if err != nil {
		return nil, fmt.Errorf("failed to list group %s: %w", group, err)
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name, err := decodeGroupName(key, group)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
