package database

import (
	"testing"

	"github.com/cuemby/smoldb/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestExportFromSnapshotRoundTrip(t *testing.T) {
	db := New(types.DefaultDBSettings())
	db.ContentPut("a", "1")
	db.ListAppend("L", nil, "x")
	db.AddAdmin("root")

	snap := db.Export()
	restored := FromSnapshot(snap)

	v, err := restored.ContentGet("a")
	require.NoError(t, err)
	require.Equal(t, "1", v)

	n, err := restored.ListLen("L")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.Equal(t, []string{"root"}, restored.Settings().AdminCredentials)
}

func TestExportIsIndependentOfLiveMutation(t *testing.T) {
	db := New(types.DefaultDBSettings())
	db.ContentPut("a", "1")

	snap := db.Export()
	db.ContentPut("a", "2")

	require.Equal(t, "1", snap.Content["a"])
}

func TestExportFromSnapshotCarriesStatsAndLastAccess(t *testing.T) {
	db := New(types.DefaultDBSettings())
	db.ContentPut("a", "1")
	_, err := db.ContentGet("a")
	require.NoError(t, err)

	lastAccess := db.LastAccess()
	snap := db.Export()
	restored := FromSnapshot(snap)

	require.Equal(t, db.Stats().Reads, restored.Stats().Reads)
	require.Equal(t, db.Stats().Writes, restored.Stats().Writes)
	require.Equal(t, lastAccess, restored.LastAccess())
}
