package session

import (
	"crypto/rsa"
	"errors"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/smoldb/pkg/codec"
	"github.com/cuemby/smoldb/pkg/crypto"
	"github.com/cuemby/smoldb/pkg/log"
	"github.com/cuemby/smoldb/pkg/protocol"
	"github.com/cuemby/smoldb/pkg/registry"
	"github.com/cuemby/smoldb/pkg/types"
)

// Session holds one client connection's protocol state.
type Session struct {
	id        string
	conn      net.Conn
	registry  *registry.Registry
	serverKey *crypto.KeyPair
	logger    zerolog.Logger

	credential   types.Credential
	clientPubKey *rsa.PublicKey

	streaming   bool
	streamQueue []protocol.StreamItem
	streamIndex int
}

// New creates a session wrapping an accepted connection. serverKey is the
// process-wide RSA key pair used for SetupEncryption/Encrypted.
func New(conn net.Conn, reg *registry.Registry, serverKey *crypto.KeyPair) *Session {
	id := uuid.NewString()
	return &Session{
		id:        id,
		conn:      conn,
		registry:  reg,
		serverKey: serverKey,
		logger:    log.WithSession(id),
	}
}

// Serve runs the session's request/response loop until the transport
// closes or an I/O error occurs. A frame that fails to decode gets a
// BadPacket reply and keeps the session open (spec §4.6); a read error,
// including an oversize frame (protocol.ErrFrameTooLarge), or a write
// error ends it.
func (s *Session) Serve() {
	defer s.conn.Close()
	s.logger.Info().Str("remote", s.conn.RemoteAddr().String()).Msg("session started")

	for {
		raw, err := protocol.ReadFrame(s.conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info().Msg("session closed by peer")
			} else {
				s.logger.Debug().Err(err).Msg("session closed on read error")
			}
			return
		}

		var req protocol.Request
		if decErr := codec.Decode(raw, &req); decErr != nil {
			s.logger.Debug().Err(decErr).Msg("unparseable frame")
			if writeErr := s.writeResponse(protocol.Err(protocol.ErrBadPacket)); writeErr != nil {
				s.logger.Debug().Err(writeErr).Msg("session closed on write error")
				return
			}
			continue
		}

		resp := s.dispatch(req)
		if resp == nil {
			// EndStreamRead, and stream item/end frames written directly by
			// dispatchStreaming, intentionally send no envelope reply here.
			continue
		}
		if err := s.writeResponse(*resp); err != nil {
			s.logger.Debug().Err(err).Msg("session closed on write error")
			return
		}
	}
}

// writeResponse frames resp, encrypting it with the negotiated client key
// if one is set.
func (s *Session) writeResponse(resp protocol.Response) error {
	if s.clientPubKey == nil {
		return protocol.WriteResponse(s.conn, resp)
	}
	data, err := codec.Encode(resp)
	if err != nil {
		return err
	}
	cipher, err := crypto.Encrypt(data, s.clientPubKey)
	if err != nil {
		return err
	}
	return protocol.WriteFrame(s.conn, cipher)
}

func (s *Session) dispatch(req protocol.Request) *protocol.Response {
	if req.Op == protocol.OpEncrypted {
		inner, err := s.decryptRequest(req)
		if err != nil {
			s.logger.Debug().Err(err).Msg("failed to decrypt client frame")
			resp := protocol.Err(protocol.ErrBadPacket)
			return &resp
		}
		return s.dispatch(*inner)
	}

	if s.streaming {
		return s.dispatchStreaming(req)
	}
	return s.dispatchRequest(req)
}

func (s *Session) decryptRequest(req protocol.Request) (*protocol.Request, error) {
	plaintext, err := s.serverKey.Decrypt(req.Ciphertext)
	if err != nil {
		return nil, err
	}
	var inner protocol.Request
	if err := codec.Decode(plaintext, &inner); err != nil {
		return nil, err
	}
	return &inner, nil
}
