package sqlexec_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suri14878/sqlexec"
)

func TestFileCheckpointStoreRoundTrip(t *testing.T) {
	store := sqlexec.NewFileCheckpointStore(filepath.Join(t.TempDir(), "ckpt"))
	ctx := context.Background()

	cp, err := store.Load(ctx, "queries/daily.sql")
	require.NoError(t, err)
	require.Nil(t, cp, "fresh file has no checkpoint")

	saved := &sqlexec.Checkpoint{
		File:           "queries/daily.sql",
		ScriptChecksum: 0xdeadbeef,
		NextIndex:      4,
		Stats:          sqlexec.NewStats(4, 12, 4821, 0, 1),
	}
	require.NoError(t, store.Save(ctx, saved))

	cp, err = store.Load(ctx, "queries/daily.sql")
	require.NoError(t, err)
	require.Equal(t, saved.ScriptChecksum, cp.ScriptChecksum)
	require.Equal(t, 4, cp.NextIndex)
	require.EqualValues(t, 4821, cp.Stats.Rows())
	require.EqualValues(t, 1, cp.Stats.Errors())

	require.NoError(t, store.Clear(ctx, "queries/daily.sql"))
	cp, err = store.Load(ctx, "queries/daily.sql")
	require.NoError(t, err)
	require.Nil(t, cp)

	// Clearing twice is fine.
	require.NoError(t, store.Clear(ctx, "queries/daily.sql"))
}

func TestFileCheckpointStoreKeysByFullPath(t *testing.T) {
	store := sqlexec.NewFileCheckpointStore(filepath.Join(t.TempDir(), "ckpt"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &sqlexec.Checkpoint{File: "a/q.sql", NextIndex: 1}))
	require.NoError(t, store.Save(ctx, &sqlexec.Checkpoint{File: "b/q.sql", NextIndex: 2}))

	cp, err := store.Load(ctx, "a/q.sql")
	require.NoError(t, err)
	require.Equal(t, 1, cp.NextIndex)

	cp, err = store.Load(ctx, "b/q.sql")
	require.NoError(t, err)
	require.Equal(t, 2, cp.NextIndex)
}
