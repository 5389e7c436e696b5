package repositories

import "context"

// AccountGroupReader defines read operations for the name index of an accounts group.
type AccountGroupReader interface {
	// FindAccountUID resolves an account name within group, or apperrors.ErrNotFound.
	FindAccountUID(ctx context.Context, group, name string) (string, error)

	// ListAccountNames returns every account name in group, sorted.
	ListAccountNames(ctx context.Context, group string) ([]string, error)
}

// AccountGroupWriter defines write operations for the name index.
type AccountGroupWriter interface {
	// SaveAccountName maps name to accountUID within group.
	SaveAccountName(ctx context.Context, group, name, accountUID string) error
}

// AccountGroupRepositoryFacade combines all accounts group operations
type AccountGroupRepositoryFacade interface {
	AccountGroupReader
	AccountGroupWriter
}
