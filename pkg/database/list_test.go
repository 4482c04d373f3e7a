package database

import (
	"testing"

	"github.com/cuemby/smoldb/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestListAppendPopTailOrder(t *testing.T) {
	db := New(types.DefaultDBSettings())

	values := []string{"v1", "v2", "v3"}
	for _, v := range values {
		db.ListAppend("L", nil, v)
	}

	n, err := db.ListLen("L")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	// Tail pops return in reverse insertion order (spec §8, property 3).
	for i := len(values) - 1; i >= 0; i-- {
		popped, err := db.ListPop("L", nil)
		require.NoError(t, err)
		require.Equal(t, values[i], popped)
	}

	_, err = db.ListLen("L")
	require.ErrorIs(t, err, ErrListNotFound)
}

func TestListAppendAtIndex(t *testing.T) {
	db := New(types.DefaultDBSettings())
	db.ListAppend("L", nil, "a")
	db.ListAppend("L", nil, "c")

	idx := 1
	db.ListAppend("L", &idx, "b")

	got, err := db.ListGet("L", 0)
	require.NoError(t, err)
	require.Equal(t, "a", got)
	got, err = db.ListGet("L", 1)
	require.NoError(t, err)
	require.Equal(t, "b", got)
	got, err = db.ListGet("L", 2)
	require.NoError(t, err)
	require.Equal(t, "c", got)
}

func TestListPopAtIndex(t *testing.T) {
	db := New(types.DefaultDBSettings())
	db.ListAppend("L", nil, "a")
	db.ListAppend("L", nil, "b")

	idx := 0
	removed, err := db.ListPop("L", &idx)
	require.NoError(t, err)
	require.Equal(t, "a", removed)

	remaining, err := db.ListGet("L", 0)
	require.NoError(t, err)
	require.Equal(t, "b", remaining)
}

func TestListPopEmptyFailsListNotFound(t *testing.T) {
	db := New(types.DefaultDBSettings())
	_, err := db.ListPop("missing", nil)
	require.ErrorIs(t, err, ErrListNotFound)
}

func TestListClearRemovesEntirely(t *testing.T) {
	db := New(types.DefaultDBSettings())
	db.ListAppend("L", nil, "a")

	require.NoError(t, db.ListClear("L"))

	_, err := db.ListLen("L")
	require.ErrorIs(t, err, ErrListNotFound)
}

func TestListGetOutOfRange(t *testing.T) {
	db := New(types.DefaultDBSettings())
	db.ListAppend("L", nil, "a")

	_, err := db.ListGet("L", 5)
	require.ErrorIs(t, err, ErrValueNotFound)
}

func TestSnapshotListIsIndependentCopy(t *testing.T) {
	db := New(types.DefaultDBSettings())
	db.ListAppend("L", nil, "a")

	snap, err := db.SnapshotList("L")
	require.NoError(t, err)

	db.ListAppend("L", nil, "b")
	require.Equal(t, []string{"a"}, snap)
}
