/*
Package protocol defines smoldb's wire vocabulary: the request variants, the
response envelope, the closed ErrorKind enum, the streaming sub-protocol's
frame tags, and the length-prefixed framing those all ride on.

# Framing

Every frame is a 4-byte big-endian length prefix followed by that many
bytes of codec-encoded payload (pkg/codec). This replaces the reference
source's fixed 1024-byte read buffer (spec §9's "Max frame size" design
note). A frame whose declared length exceeds MaxFrameSize makes ReadFrame
return ErrFrameTooLarge without reading its body; the session engine then
closes the connection. No BadPacket reply is sent for an oversize frame.

# Streaming sub-protocol

The reference source signals end-of-stream by writing an ordinary Response
envelope down the same channel the streamed values flow through — the
client has to guess, by attempting both decodes, whether a given frame is a
stream item or the envelope. Spec §9 flags this as fragile and recommends
option (a): prefix every streamed frame with a one-byte tag distinguishing
item/end/error. smoldb implements (a): WriteStreamItem/WriteStreamEnd below
tag each frame explicitly, so there is no decode-order ambiguity.
*/
package protocol
