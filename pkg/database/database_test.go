package database

import (
	"testing"

	"github.com/cuemby/smoldb/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestContentRoundTrip(t *testing.T) {
	db := New(types.DefaultDBSettings())

	_, hadPrev := db.ContentPut("a", "1")
	require.False(t, hadPrev)

	v, err := db.ContentGet("a")
	require.NoError(t, err)
	require.Equal(t, "1", v)

	prev, hadPrev := db.ContentPut("a", "2")
	require.True(t, hadPrev)
	require.Equal(t, "1", prev)

	removed, err := db.ContentDelete("a")
	require.NoError(t, err)
	require.Equal(t, "2", removed)

	_, err = db.ContentGet("a")
	require.ErrorIs(t, err, ErrValueNotFound)
}

func TestContentDeleteMissing(t *testing.T) {
	db := New(types.DefaultDBSettings())
	_, err := db.ContentDelete("missing")
	require.ErrorIs(t, err, ErrValueNotFound)
}

func TestSnapshotContentIsIndependentCopy(t *testing.T) {
	db := New(types.DefaultDBSettings())
	db.ContentPut("a", "1")

	snap := db.SnapshotContent()
	require.Equal(t, "1", string(snap["a"]))

	db.ContentPut("a", "2")
	require.Equal(t, "1", string(snap["a"]), "snapshot must not observe later writes")
}

func TestTouchAdvancesLastAccess(t *testing.T) {
	db := New(types.DefaultDBSettings())
	before := db.LastAccess()
	db.Touch()
	require.True(t, db.LastAccess().After(before) || db.LastAccess().Equal(before))
}

func TestAddAdminIsIdempotent(t *testing.T) {
	db := New(types.DefaultDBSettings())
	db.AddAdmin("alice")
	db.AddAdmin("alice")
	require.Equal(t, []string{"alice"}, db.Settings().AdminCredentials)
}
