package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cuemby/smoldb/pkg/codec"
)

// MaxFrameSize bounds a single frame's payload. WriteFrame refuses to send
// a larger payload and ReadFrame refuses to read one; both return
// ErrFrameTooLarge. An oversize inbound frame ends the session rather than
// drawing a BadPacket reply.
const MaxFrameSize = 4 << 20 // 4 MiB

// ErrFrameTooLarge is returned by ReadFrame when a frame's declared length
// exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// WriteFrame writes a single length-prefixed frame to w.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads a single length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameSize {
		// Drain isn't attempted: the sender is non-conforming and the
		// transport is not reliably resynchronizable after this point, so
		// the session is closed by the caller.
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

// WriteRequest encodes and frames a Request.
func WriteRequest(w io.Writer, req Request) error {
	data, err := codec.Encode(req)
	if err != nil {
		return err
	}
	return WriteFrame(w, data)
}

// ReadRequest reads and decodes a single Request frame.
func ReadRequest(r io.Reader) (Request, error) {
	data, err := ReadFrame(r)
	if err != nil {
		return Request{}, err
	}
	var req Request
	if decErr := codec.Decode(data, &req); decErr != nil {
		return Request{}, decErr
	}
	return req, nil
}

// WriteResponse encodes and frames a Response.
func WriteResponse(w io.Writer, resp Response) error {
	data, err := codec.Encode(resp)
	if err != nil {
		return err
	}
	return WriteFrame(w, data)
}

// ReadResponse reads and decodes a single Response frame. Used by pkg/client.
func ReadResponse(r io.Reader) (Response, error) {
	data, err := ReadFrame(r)
	if err != nil {
		return Response{}, err
	}
	var resp Response
	if decErr := codec.Decode(data, &resp); decErr != nil {
		return Response{}, decErr
	}
	return resp, nil
}

// StreamTag distinguishes the three shapes a streamed frame can take.
type StreamTag byte

const (
	StreamTagItem StreamTag = iota + 1
	StreamTagEnd
	StreamTagError
)

// StreamItem is one element of a content-map or list stream. Key is empty
// for list streams (spec §4.4's "value" form); both are set for content
// streams (the "(key, value)" form).
type StreamItem struct {
	Key   string `yaml:"key,omitempty"`
	Value string `yaml:"value"`
}

// WriteStreamItem writes one tagged item frame.
func WriteStreamItem(w io.Writer, item StreamItem) error {
	data, err := codec.Encode(item)
	if err != nil {
		return err
	}
	return writeTaggedFrame(w, StreamTagItem, data)
}

// WriteStreamEnd writes the end-of-stream sentinel frame, carrying the
// Response that would have been sent had this not been a streaming
// operation (e.g. SuccessNoData).
func WriteStreamEnd(w io.Writer, final Response) error {
	data, err := codec.Encode(final)
	if err != nil {
		return err
	}
	return writeTaggedFrame(w, StreamTagEnd, data)
}

// WriteStreamErr writes an error frame mid-stream, ending the stream.
func WriteStreamErr(w io.Writer, kind ErrorKind) error {
	data, err := codec.Encode(Err(kind))
	if err != nil {
		return err
	}
	return writeTaggedFrame(w, StreamTagError, data)
}

func writeTaggedFrame(w io.Writer, tag StreamTag, payload []byte) error {
	framed := make([]byte, 0, len(payload)+1)
	framed = append(framed, byte(tag))
	framed = append(framed, payload...)
	return WriteFrame(w, framed)
}

// StreamFrame is the decoded, tag-dispatched result of reading one streamed
// frame from the client side.
type StreamFrame struct {
	Tag   StreamTag
	Item  StreamItem
	Final Response
}

// ReadStreamFrame reads and tag-dispatches one streamed frame. Used by
// pkg/client while consuming StreamReadDb/StreamList results.
func ReadStreamFrame(r io.Reader) (StreamFrame, error) {
	raw, err := ReadFrame(r)
	if err != nil {
		return StreamFrame{}, err
	}
	if len(raw) == 0 {
		return StreamFrame{}, errors.New("empty stream frame")
	}
	tag := StreamTag(raw[0])
	body := raw[1:]

	switch tag {
	case StreamTagItem:
		var item StreamItem
		if decErr := codec.Decode(body, &item); decErr != nil {
			return StreamFrame{}, decErr
		}
		return StreamFrame{Tag: tag, Item: item}, nil
	case StreamTagEnd, StreamTagError:
		var resp Response
		if decErr := codec.Decode(body, &resp); decErr != nil {
			return StreamFrame{}, decErr
		}
		return StreamFrame{Tag: tag, Final: resp}, nil
	default:
		return StreamFrame{}, fmt.Errorf("unknown stream tag %d", tag)
	}
}
