package maintenance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/smoldb/pkg/registry"
	"github.com/cuemby/smoldb/pkg/types"
)

func TestSweeperEvictsStaleEntriesOnTick(t *testing.T) {
	reg, err := registry.Open(t.TempDir())
	require.NoError(t, err)
	defer reg.Close()

	settings := types.DefaultDBSettings()
	settings.InvalidationInterval = time.Nanosecond
	require.NoError(t, reg.CreateDB("alpha", settings))
	db, err := reg.Get("alpha")
	require.NoError(t, err)
	db.ContentPut("k", "v")
	time.Sleep(time.Millisecond)

	s := New(reg, 5*time.Millisecond)
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return reg.CacheSize() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSweeperStartStopIsIdempotent(t *testing.T) {
	reg, err := registry.Open(t.TempDir())
	require.NoError(t, err)
	defer reg.Close()

	s := New(reg, time.Millisecond)
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestNewDefaultsZeroInterval(t *testing.T) {
	reg, err := registry.Open(t.TempDir())
	require.NoError(t, err)
	defer reg.Close()

	s := New(reg, 0)
	require.Equal(t, defaultInterval, s.interval)
}
