package session

import (
	"encoding/base64"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/smoldb/pkg/codec"
	"github.com/cuemby/smoldb/pkg/crypto"
	"github.com/cuemby/smoldb/pkg/protocol"
	"github.com/cuemby/smoldb/pkg/registry"
)

// harness wires a Session to an in-process pipe and drives it like a
// client would, one request/response pair at a time.
type harness struct {
	t       *testing.T
	client  net.Conn
	reg     *registry.Registry
	sess    *Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	reg, err := registry.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	key, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	sess := New(serverConn, reg, key)
	go sess.Serve()
	t.Cleanup(func() { clientConn.Close() })

	return &harness{t: t, client: clientConn, reg: reg, sess: sess}
}

func (h *harness) send(req protocol.Request) protocol.Response {
	h.t.Helper()
	require.NoError(h.t, protocol.WriteRequest(h.client, req))
	resp, err := protocol.ReadResponse(h.client)
	require.NoError(h.t, err)
	return resp
}

func TestBootstrapFirstSetKeyBecomesSuperAdmin(t *testing.T) {
	h := newHarness(t)

	resp := h.send(protocol.Request{Op: protocol.OpSetKey, Credential: "root"})
	require.Equal(t, protocol.KindSuccessNoData, resp.Kind)
	require.True(t, h.reg.SuperAdmins().Contains("root"))
}

func TestCreateDBRequiresSuperAdmin(t *testing.T) {
	h := newHarness(t)

	resp := h.send(protocol.Request{Op: protocol.OpCreateDB, DB: "alpha"})
	require.Equal(t, protocol.KindError, resp.Kind)
	require.Equal(t, protocol.ErrInvalidPermissions, resp.Error)

	h.send(protocol.Request{Op: protocol.OpSetKey, Credential: "root"})
	resp = h.send(protocol.Request{Op: protocol.OpCreateDB, DB: "alpha"})
	require.Equal(t, protocol.KindSuccessNoData, resp.Kind)

	resp = h.send(protocol.Request{Op: protocol.OpCreateDB, DB: "alpha"})
	require.Equal(t, protocol.KindError, resp.Kind)
	require.Equal(t, protocol.ErrDBAlreadyExists, resp.Error)
}

func TestWriteReadRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.send(protocol.Request{Op: protocol.OpSetKey, Credential: "root"})
	h.send(protocol.Request{Op: protocol.OpCreateDB, DB: "alpha"})

	resp := h.send(protocol.Request{Op: protocol.OpWrite, DB: "alpha", Key: "k", Value: "v1"})
	require.Equal(t, protocol.KindSuccessNoData, resp.Kind, "no previous value on first write")

	resp = h.send(protocol.Request{Op: protocol.OpWrite, DB: "alpha", Key: "k", Value: "v2"})
	require.Equal(t, protocol.KindSuccessReply, resp.Kind)
	require.Equal(t, "v1", resp.Value)

	resp = h.send(protocol.Request{Op: protocol.OpRead, DB: "alpha", Key: "k"})
	require.Equal(t, protocol.KindSuccessReply, resp.Kind)
	require.Equal(t, "v2", resp.Value)
}

func TestReadUnknownDBFailsDBNotFound(t *testing.T) {
	h := newHarness(t)
	resp := h.send(protocol.Request{Op: protocol.OpRead, DB: "missing", Key: "k"})
	require.Equal(t, protocol.KindError, resp.Kind)
	require.Equal(t, protocol.ErrDBNotFound, resp.Error)
}

func TestOtherRoleDeniedWriteByDefault(t *testing.T) {
	h := newHarness(t)
	h.send(protocol.Request{Op: protocol.OpSetKey, Credential: "root"})
	h.send(protocol.Request{Op: protocol.OpCreateDB, DB: "alpha"})
	h.send(protocol.Request{Op: protocol.OpSetKey, Credential: "stranger"})

	resp := h.send(protocol.Request{Op: protocol.OpWrite, DB: "alpha", Key: "k", Value: "v"})
	require.Equal(t, protocol.KindError, resp.Kind)
	require.Equal(t, protocol.ErrInvalidPermissions, resp.Error)
}

func TestListDBIsUngated(t *testing.T) {
	h := newHarness(t)
	h.send(protocol.Request{Op: protocol.OpSetKey, Credential: "root"})
	h.send(protocol.Request{Op: protocol.OpCreateDB, DB: "alpha"})

	// Drop back to the empty credential (role Other) before listing.
	h.send(protocol.Request{Op: protocol.OpSetKey, Credential: ""})
	resp := h.send(protocol.Request{Op: protocol.OpListDB})
	require.Equal(t, protocol.KindSuccessReply, resp.Kind)

	var names []string
	require.NoError(t, codec.Decode([]byte(resp.Value), &names))
	require.Contains(t, names, "alpha")
}

func TestListAppendPopOverWire(t *testing.T) {
	h := newHarness(t)
	h.send(protocol.Request{Op: protocol.OpSetKey, Credential: "root"})
	h.send(protocol.Request{Op: protocol.OpCreateDB, DB: "alpha"})

	h.send(protocol.Request{Op: protocol.OpAddToList, DB: "alpha", List: "L", Value: "a"})
	h.send(protocol.Request{Op: protocol.OpAddToList, DB: "alpha", List: "L", Value: "b"})

	resp := h.send(protocol.Request{Op: protocol.OpGetListLength, DB: "alpha", List: "L"})
	require.Equal(t, "2", resp.Value)

	resp = h.send(protocol.Request{Op: protocol.OpRemoveFromList, DB: "alpha", List: "L"})
	require.Equal(t, protocol.KindSuccessReply, resp.Kind)
	require.Equal(t, "b", resp.Value)
}

func TestStreamReadDbDeliversAllItemsThenEnds(t *testing.T) {
	h := newHarness(t)
	h.send(protocol.Request{Op: protocol.OpSetKey, Credential: "root"})
	h.send(protocol.Request{Op: protocol.OpCreateDB, DB: "alpha"})
	h.send(protocol.Request{Op: protocol.OpWrite, DB: "alpha", Key: "k1", Value: "v1"})
	h.send(protocol.Request{Op: protocol.OpWrite, DB: "alpha", Key: "k2", Value: "v2"})

	resp := h.send(protocol.Request{Op: protocol.OpStreamReadDb, DB: "alpha"})
	require.Equal(t, protocol.KindSuccessNoData, resp.Kind)

	seen := map[string]string{}
	for {
		require.NoError(t, protocol.WriteRequest(h.client, protocol.Request{Op: protocol.OpReadyForNextItem}))
		frame, err := protocol.ReadStreamFrame(h.client)
		require.NoError(t, err)
		if frame.Tag == protocol.StreamTagEnd {
			break
		}
		require.Equal(t, protocol.StreamTagItem, frame.Tag)
		seen[frame.Item.Key] = frame.Item.Value
	}
	require.Equal(t, map[string]string{"k1": "v1", "k2": "v2"}, seen)

	// Session should be back to normal request handling.
	resp = h.send(protocol.Request{Op: protocol.OpRead, DB: "alpha", Key: "k1"})
	require.Equal(t, "v1", resp.Value)
}

func TestEncryptionNegotiationRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.send(protocol.Request{Op: protocol.OpSetKey, Credential: "root"})
	h.send(protocol.Request{Op: protocol.OpCreateDB, DB: "alpha"})

	resp := h.send(protocol.Request{Op: protocol.OpSetupEncryption})
	require.Equal(t, protocol.KindSuccessReply, resp.Kind)
	serverPubDER, err := base64.StdEncoding.DecodeString(resp.Value)
	require.NoError(t, err)
	serverPub, err := crypto.ParsePublicKey(serverPubDER)
	require.NoError(t, err)

	clientKey, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	clientPubDER, err := clientKey.PublicKeyBytes()
	require.NoError(t, err)

	// PubKey's ack is already encrypted with the key just registered, per
	// the reference implementation — read it back through the raw frame
	// and decrypt with the client's private key.
	require.NoError(t, protocol.WriteRequest(h.client, protocol.Request{Op: protocol.OpPubKey, PublicKey: clientPubDER}))
	raw, err := protocol.ReadFrame(h.client)
	require.NoError(t, err)
	plain, err := clientKey.Decrypt(raw)
	require.NoError(t, err)
	var ackResp protocol.Response
	require.NoError(t, codec.Decode(plain, &ackResp))
	require.Equal(t, protocol.KindSuccessNoData, ackResp.Kind)

	// Now send an Encrypted(Read) request and expect an encrypted reply.
	inner := protocol.Request{Op: protocol.OpRead, DB: "alpha", Key: "missing"}
	innerData, err := codec.Encode(inner)
	require.NoError(t, err)
	ciphertext, err := crypto.Encrypt(innerData, serverPub)
	require.NoError(t, err)
	require.NoError(t, protocol.WriteRequest(h.client, protocol.Request{Op: protocol.OpEncrypted, Ciphertext: ciphertext}))

	raw, err = protocol.ReadFrame(h.client)
	require.NoError(t, err)
	plain, err = clientKey.Decrypt(raw)
	require.NoError(t, err)
	var finalResp protocol.Response
	require.NoError(t, codec.Decode(plain, &finalResp))
	require.Equal(t, protocol.KindError, finalResp.Kind)
	require.Equal(t, protocol.ErrValueNotFound, finalResp.Error)
}

func TestSessionClosesOnTransportClose(t *testing.T) {
	h := newHarness(t)
	h.client.Close()
	// Give Serve's blocked read a moment to observe the close.
	time.Sleep(10 * time.Millisecond)
}
