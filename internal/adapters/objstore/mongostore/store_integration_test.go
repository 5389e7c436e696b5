//go:build integration

package mongostore_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/adapters/objstore/mongostore"
	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestStore_Mongo(t *testing.T) {
	ctx := context.Background()

	container, err := tcmongo.Run(ctx,
		"mongo:7",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongostore.Connect(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	store := mongostore.New(client.Database("ledger_test").Collection("objects"))

	_, err = store.Get(ctx, "accounts/a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, store.Set(ctx, "accounts/a", []byte("1")))
	require.NoError(t, store.Set(ctx, "accounts/a", []byte("2")))
	got, err := store.Get(ctx, "accounts/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)

	require.NoError(t, store.Set(ctx, "accounts/a.b/x", []byte("{}")))
	require.NoError(t, store.Set(ctx, "accounts/a/2026-01-02/x", []byte("{}")))
	require.NoError(t, store.Set(ctx, "accounts/a/2026-01-01/x", []byte("{}")))
	keys, err := store.List(ctx, "accounts/a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts/a/2026-01-01/x", "accounts/a/2026-01-02/x"}, keys)

	require.NoError(t, store.Delete(ctx, "accounts/a"))
	_, err = store.Get(ctx, "accounts/a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
