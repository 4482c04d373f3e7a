package client

import (
	"crypto/rsa"
	"encoding/base64"
	"net"
	"strconv"
	"time"

	"github.com/cuemby/smoldb/pkg/codec"
	"github.com/cuemby/smoldb/pkg/crypto"
	"github.com/cuemby/smoldb/pkg/protocol"
	"github.com/cuemby/smoldb/pkg/types"
)

func decodeBytes(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// Client is a single blocking connection to a smoldb core. Not safe for
// concurrent use by multiple goroutines; callers wanting concurrency
// should open one Client per goroutine.
type Client struct {
	conn net.Conn

	encryption *crypto.KeyPair
	serverPub  *rsa.PublicKey

	databasesErr error
}

// New dials addr and returns a ready Client. The connection is plaintext
// until SetupEncryption is called.
func New(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SetAccessKey presents cred for the rest of this connection's lifetime.
// The first credential ever presented to a fresh core is promoted to
// SuperAdmin (spec §4.6's bootstrap rule).
func (c *Client) SetAccessKey(cred string) error {
	_, err := c.call(protocol.Request{Op: protocol.OpSetKey, Credential: cred})
	return err
}

// SetupEncryption negotiates an RSA key pair with the core and switches
// every subsequent request/response made through call to ride inside
// Encrypted(ciphertext); stream iterators' control requests and stream
// frames stay in the clear. Idempotent only in the sense that calling it
// twice generates and negotiates a brand-new client key pair.
func (c *Client) SetupEncryption() error {
	resp, err := c.call(protocol.Request{Op: protocol.OpSetupEncryption})
	if err != nil {
		return err
	}
	serverDER, err := decodeBytes(resp.Value)
	if err != nil {
		return err
	}
	serverPub, err := crypto.ParsePublicKey(serverDER)
	if err != nil {
		return err
	}

	pair, err := crypto.GenerateKeyPair()
	if err != nil {
		return err
	}
	clientDER, err := pair.PublicKeyBytes()
	if err != nil {
		return err
	}

	c.serverPub = serverPub
	c.encryption = pair

	// PubKey itself goes out in the clear, matching the reference
	// implementation — but the core's ack is already encrypted with the
	// key just registered (handle_client.rs sets the client key before
	// writing the ack), so the reply is read as a raw frame and decrypted
	// by hand rather than going through call's plaintext path.
	if err := protocol.WriteRequest(c.conn, protocol.Request{Op: protocol.OpPubKey, PublicKey: clientDER}); err != nil {
		c.encryption = nil
		c.serverPub = nil
		return err
	}
	raw, err := protocol.ReadFrame(c.conn)
	if err != nil {
		c.encryption = nil
		c.serverPub = nil
		return err
	}
	plain, err := pair.Decrypt(raw)
	if err != nil {
		c.encryption = nil
		c.serverPub = nil
		return err
	}
	var ack protocol.Response
	if err := codec.Decode(plain, &ack); err != nil {
		c.encryption = nil
		c.serverPub = nil
		return err
	}
	if ack.Kind == protocol.KindError {
		c.encryption = nil
		c.serverPub = nil
		return responseToError(ack)
	}
	return nil
}

// CreateDB creates a new, empty database. A zero-value settings uses the
// core's defaults.
func (c *Client) CreateDB(name string, settings *types.DBSettings) error {
	_, err := c.call(protocol.Request{Op: protocol.OpCreateDB, DB: name, Settings: settings})
	return err
}

// DeleteDB removes a database entirely.
func (c *Client) DeleteDB(name string) error {
	_, err := c.call(protocol.Request{Op: protocol.OpDeleteDB, DB: name})
	return err
}

// ListDB returns every database name the core knows about.
func (c *Client) ListDB() ([]string, error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpListDB})
	if err != nil {
		return nil, err
	}
	var names []string
	if err := codec.Decode([]byte(resp.Value), &names); err != nil {
		return nil, &ErrUnexpectedReply{Kind: resp.Kind}
	}
	return names, nil
}

// ListDBContents returns a snapshot of every key/value pair in db.
func (c *Client) ListDBContents(db string) (map[string]string, error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpListDBContents, DB: db})
	if err != nil {
		return nil, err
	}
	var content map[string]string
	if err := codec.Decode([]byte(resp.Value), &content); err != nil {
		return nil, &ErrUnexpectedReply{Kind: resp.Kind}
	}
	return content, nil
}

// Read returns the value stored at key in db.
func (c *Client) Read(db, key string) (string, error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpRead, DB: db, Key: key})
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

// Write stores value at key in db, returning the previous value and
// whether one existed.
func (c *Client) Write(db, key, value string) (prev string, hadPrev bool, err error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpWrite, DB: db, Key: key, Value: value})
	if err != nil {
		return "", false, err
	}
	if resp.Kind == protocol.KindSuccessNoData {
		return "", false, nil
	}
	return resp.Value, true, nil
}

// DeleteData removes key from db, returning the value that was stored
// there.
func (c *Client) DeleteData(db, key string) (string, error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpDeleteData, DB: db, Key: key})
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

// AddToList appends value to list in db. A nil index appends to the tail.
func (c *Client) AddToList(db, list string, index *int, value string) error {
	_, err := c.call(protocol.Request{Op: protocol.OpAddToList, DB: db, List: list, Index: index, Value: value})
	return err
}

// RemoveFromList removes and returns the item at index (or the tail item
// if index is nil) in list.
func (c *Client) RemoveFromList(db, list string, index *int) (string, error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpRemoveFromList, DB: db, List: list, Index: index})
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

// ReadFromList returns the item at index in list.
func (c *Client) ReadFromList(db, list string, index int) (string, error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpReadFromList, DB: db, List: list, Index: &index})
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

// ClearList removes every item from list in db.
func (c *Client) ClearList(db, list string) error {
	_, err := c.call(protocol.Request{Op: protocol.OpClearList, DB: db, List: list})
	return err
}

// GetListLength returns the number of items currently in list.
func (c *Client) GetListLength(db, list string) (int, error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpGetListLength, DB: db, List: list})
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(resp.Value)
}

// GetDBSettings returns db's current settings block. Requires Admin or
// SuperAdmin.
func (c *Client) GetDBSettings(db string) (types.DBSettings, error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpGetDBSettings, DB: db})
	if err != nil {
		return types.DBSettings{}, err
	}
	var settings types.DBSettings
	if err := codec.Decode([]byte(resp.Value), &settings); err != nil {
		return types.DBSettings{}, &ErrUnexpectedReply{Kind: resp.Kind}
	}
	return settings, nil
}

// ChangeDBSettings replaces db's settings block. Requires SuperAdmin.
func (c *Client) ChangeDBSettings(db string, settings types.DBSettings) error {
	_, err := c.call(protocol.Request{Op: protocol.OpChangeDBSettings, DB: db, Settings: &settings})
	return err
}

// AddAdmin grants cred the Admin role within db.
func (c *Client) AddAdmin(db, cred string) error {
	_, err := c.call(protocol.Request{Op: protocol.OpAddAdmin, DB: db, Credential: cred})
	return err
}

// AddUser grants cred the User role within db.
func (c *Client) AddUser(db, cred string) error {
	_, err := c.call(protocol.Request{Op: protocol.OpAddUser, DB: db, Credential: cred})
	return err
}

// GetRole returns the caller's resolved role within db.
func (c *Client) GetRole(db string) (string, error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpGetRole, DB: db})
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

// GetStats returns db's usage statistics block, re-encoded through the
// codec as a string by the core (spec §4.6).
func (c *Client) GetStats(db string) (string, error) {
	resp, err := c.call(protocol.Request{Op: protocol.OpGetStats, DB: db})
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

// call sends req and returns the decoded response, or a *ResponseError if
// the core replied with KindError. It transparently encrypts req and
// decrypts the reply once SetupEncryption has negotiated a client key.
func (c *Client) call(req protocol.Request) (protocol.Response, error) {
	if c.encryption != nil {
		return c.callEncrypted(req)
	}
	if err := protocol.WriteRequest(c.conn, req); err != nil {
		return protocol.Response{}, err
	}
	resp, err := protocol.ReadResponse(c.conn)
	if err != nil {
		return protocol.Response{}, err
	}
	if resp.Kind == protocol.KindError {
		return resp, responseToError(resp)
	}
	return resp, nil
}

func (c *Client) callEncrypted(req protocol.Request) (protocol.Response, error) {
	plaintext, err := codec.Encode(req)
	if err != nil {
		return protocol.Response{}, err
	}
	ciphertext, err := crypto.Encrypt(plaintext, c.serverPub)
	if err != nil {
		return protocol.Response{}, err
	}
	if err := protocol.WriteRequest(c.conn, protocol.Request{Op: protocol.OpEncrypted, Ciphertext: ciphertext}); err != nil {
		return protocol.Response{}, err
	}
	raw, err := protocol.ReadFrame(c.conn)
	if err != nil {
		return protocol.Response{}, err
	}
	respPlain, err := c.encryption.Decrypt(raw)
	if err != nil {
		return protocol.Response{}, err
	}
	var resp protocol.Response
	if err := codec.Decode(respPlain, &resp); err != nil {
		return protocol.Response{}, err
	}
	if resp.Kind == protocol.KindError {
		return resp, responseToError(resp)
	}
	return resp, nil
}
