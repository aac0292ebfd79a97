package kv

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func testBackend(t *testing.T, store Interface) {
	t.Helper()
	ctx := context.Background()

	// missing key
	_, err := store.Get(ctx, "history:missing")
	require.Error(t, err)
	require.True(t, IsNotFound(err))

	// set / get round-trip
	require.NoError(t, store.Set(ctx, "history:a", []byte(`{"id":"a"}`)))
	val, err := store.Get(ctx, "history:a")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"a"}`), val)

	// overwrite
	require.NoError(t, store.Set(ctx, "history:a", []byte(`{"id":"a2"}`)))
	val, err = store.Get(ctx, "history:a")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"a2"}`), val)

	// prefix listing ignores other namespaces
	require.NoError(t, store.Set(ctx, "history:b", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, "file:c", []byte(`{}`)))
	keys, err := store.Keys(ctx, "history:")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"history:a", "history:b"}, keys)

	// delete is idempotent
	require.NoError(t, store.Del(ctx, "history:a"))
	require.NoError(t, store.Del(ctx, "history:a"))
	_, err = store.Get(ctx, "history:a")
	require.True(t, IsNotFound(err))
}

func TestMemory(t *testing.T) {
	t.Parallel()
	testBackend(t, NewMemory())
}

func TestSQL(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	store, err := NewSQL(db)
	require.NoError(t, err)
	testBackend(t, store)
}

func TestSQLInvalidTableName(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	_, err = NewSQL(db, WithTableName("kv; DROP TABLE kv"))
	require.Error(t, err)
}
