package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type objectStore struct {
	pool *pgxpool.Pool
}

// NewObjectStore creates an object store over the ledger_objects table.
// Run Migrate first.
func NewObjectStore(pool *pgxpool.Pool) portsrepo.ObjectStore {
	return &objectStore{pool: pool}
}

func (s *objectStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT object_value FROM ledger_objects WHERE object_key = $1;`

	var data []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: object %s", apperrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return data, nil
}

func (s *objectStore) Set(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO ledger_objects (object_key, object_value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (object_key) DO UPDATE
		SET object_value = EXCLUDED.object_value, updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.pool.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to set object %s: %w", key, err)
	}
	return nil
}

func (s *objectStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM ledger_objects WHERE object_key = $1;`
	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (s *objectStore) List(ctx context.Context, prefix string) ([]string, error) {
	query := `
		SELECT object_key FROM ledger_objects
		WHERE object_key LIKE $1 ESCAPE '\'
		ORDER BY object_key;
	`
	rows, err := s.pool.Query(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan objects under %s: %w", prefix, err)
	}
	return keys, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
