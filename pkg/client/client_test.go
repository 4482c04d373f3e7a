package client

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/smoldb/pkg/crypto"
	"github.com/cuemby/smoldb/pkg/registry"
	"github.com/cuemby/smoldb/pkg/session"
)

// newTestPair wires a Client directly to a live Session over an
// in-process pipe, bypassing New's real TCP dial.
func newTestPair(t *testing.T) *Client {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	reg, err := registry.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	key, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	sess := session.New(serverConn, reg, key)
	go sess.Serve()
	t.Cleanup(func() { clientConn.Close() })

	return &Client{conn: clientConn}
}

func TestCreateWriteReadRoundTrip(t *testing.T) {
	c := newTestPair(t)
	require.NoError(t, c.SetAccessKey("root"))
	require.NoError(t, c.CreateDB("alpha", nil))

	_, hadPrev, err := c.Write("alpha", "k", "v1")
	require.NoError(t, err)
	require.False(t, hadPrev)

	prev, hadPrev, err := c.Write("alpha", "k", "v2")
	require.NoError(t, err)
	require.True(t, hadPrev)
	require.Equal(t, "v1", prev)

	v, err := c.Read("alpha", "k")
	require.NoError(t, err)
	require.Equal(t, "v2", v)
}

func TestCreateDBRequiresSuperAdmin(t *testing.T) {
	c := newTestPair(t)
	err := c.CreateDB("alpha", nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidPermissions)
}

func TestListDBIncludesCreatedDatabase(t *testing.T) {
	c := newTestPair(t)
	require.NoError(t, c.SetAccessKey("root"))
	require.NoError(t, c.CreateDB("alpha", nil))

	names, err := c.ListDB()
	require.NoError(t, err)
	require.Contains(t, names, "alpha")
}

func TestListOperations(t *testing.T) {
	c := newTestPair(t)
	require.NoError(t, c.SetAccessKey("root"))
	require.NoError(t, c.CreateDB("alpha", nil))

	require.NoError(t, c.AddToList("alpha", "L", nil, "a"))
	require.NoError(t, c.AddToList("alpha", "L", nil, "b"))

	n, err := c.GetListLength("alpha", "L")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	removed, err := c.RemoveFromList("alpha", "L", nil)
	require.NoError(t, err)
	require.Equal(t, "b", removed)
}

func TestStreamReadDbIteratesAllItems(t *testing.T) {
	c := newTestPair(t)
	require.NoError(t, c.SetAccessKey("root"))
	require.NoError(t, c.CreateDB("alpha", nil))
	_, _, err := c.Write("alpha", "k1", "v1")
	require.NoError(t, err)
	_, _, err = c.Write("alpha", "k2", "v2")
	require.NoError(t, err)

	it, err := c.StreamReadDb("alpha")
	require.NoError(t, err)

	seen := map[string]string{}
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		seen[k] = v
	}
	require.NoError(t, it.Err())
	require.Equal(t, map[string]string{"k1": "v1", "k2": "v2"}, seen)

	// Connection should still be usable for ordinary requests.
	v, err := c.Read("alpha", "k1")
	require.NoError(t, err)
	require.Equal(t, "v1", v)
}

func TestSetupEncryptionThenReadWrite(t *testing.T) {
	c := newTestPair(t)
	require.NoError(t, c.SetAccessKey("root"))
	require.NoError(t, c.CreateDB("alpha", nil))
	require.NoError(t, c.SetupEncryption())

	_, _, err := c.Write("alpha", "k", "v")
	require.NoError(t, err)
	v, err := c.Read("alpha", "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestDatabasesIteratesAllNames(t *testing.T) {
	c := newTestPair(t)
	require.NoError(t, c.SetAccessKey("root"))
	require.NoError(t, c.CreateDB("alpha", nil))
	require.NoError(t, c.CreateDB("beta", nil))

	var seen []string
	for name := range c.Databases() {
		seen = append(seen, name)
	}
	require.NoError(t, c.DatabasesErr())
	require.ElementsMatch(t, []string{"alpha", "beta"}, seen)
}

func TestReadUnknownDBReturnsDBNotFound(t *testing.T) {
	c := newTestPair(t)
	_, err := c.Read("missing", "k")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDBNotFound)
}
