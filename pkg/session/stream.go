package session

import (
	"github.com/cuemby/smoldb/pkg/auth"
	"github.com/cuemby/smoldb/pkg/protocol"
	"github.com/cuemby/smoldb/pkg/types"
)

// opStreamReadDb takes a content-map snapshot and enters the streaming
// state. Gated by the list bit: a content dump is the same shape of
// disclosure as ListDBContents.
func (s *Session) opStreamReadDb(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermList)
	if err != nil {
		return s.errResponse(err)
	}
	snap := db.SnapshotContent()
	items := make([]protocol.StreamItem, 0, len(snap))
	for k, v := range snap {
		items = append(items, protocol.StreamItem{Key: string(k), Value: v})
	}
	s.startStream(items)
	resp := protocol.NoData()
	return &resp
}

// opStreamList takes a single list's snapshot and enters the streaming
// state. Gated by the read bit, matching ReadFromList.
func (s *Session) opStreamList(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermRead)
	if err != nil {
		return s.errResponse(err)
	}
	snap, err := db.SnapshotList(types.Key(req.List))
	if err != nil {
		return s.errResponse(err)
	}
	items := make([]protocol.StreamItem, len(snap))
	for i, v := range snap {
		items[i] = protocol.StreamItem{Value: v}
	}
	s.startStream(items)
	resp := protocol.NoData()
	return &resp
}

func (s *Session) startStream(items []protocol.StreamItem) {
	s.streaming = true
	s.streamQueue = items
	s.streamIndex = 0
}

func (s *Session) endStream() {
	s.streaming = false
	s.streamQueue = nil
	s.streamIndex = 0
}

// dispatchStreaming handles every request while the session is mid-stream.
// Only ReadyForNextItem and EndStreamRead are valid (spec §4.6); anything
// else gets a BadPacket reply without leaving the streaming state.
func (s *Session) dispatchStreaming(req protocol.Request) *protocol.Response {
	switch req.Op {
	case protocol.OpReadyForNextItem:
		s.emitNextStreamItem()
		return nil
	case protocol.OpEndStreamRead:
		s.endStream()
		return nil
	default:
		s.logger.Debug().Str("op", string(req.Op)).Msg("unexpected op while streaming")
		resp := protocol.Err(protocol.ErrBadPacket)
		return &resp
	}
}

// emitNextStreamItem writes the next queued item, or the end-of-stream
// sentinel frame once the queue is exhausted, directly to the connection.
// Stream frames are tagged (pkg/protocol) rather than wrapped in the
// normal Response envelope, and are never encrypted — matching the
// reference implementation's direct-to-socket stream writer.
func (s *Session) emitNextStreamItem() {
	if s.streamIndex >= len(s.streamQueue) {
		s.endStream()
		if err := protocol.WriteStreamEnd(s.conn, protocol.NoData()); err != nil {
			s.logger.Debug().Err(err).Msg("failed to write stream end")
		}
		return
	}
	item := s.streamQueue[s.streamIndex]
	s.streamIndex++
	if err := protocol.WriteStreamItem(s.conn, item); err != nil {
		s.logger.Debug().Err(err).Msg("failed to write stream item")
	}
}
