/*
Package session implements smoldb's per-connection protocol engine (C7):
request dispatch against pkg/registry and pkg/auth, the streaming
sub-protocol, and RSA encryption negotiation.

One Session is created per accepted TCP connection and owns that
connection until it closes. Requests within a session are strictly
sequential — Serve reads one frame, dispatches it, writes one reply, and
only then reads the next (spec §5: "no pipelining").

# Streaming

StreamReadDb and StreamList take a consistent snapshot of the target
space and move the session into a streaming state: every subsequent
client frame must be ReadyForNextItem or EndStreamRead, per the tagged
framing scheme in pkg/protocol. Stream frames are never encrypted, even
when a client key has been negotiated — matching the reference
implementation, which writes stream items directly to the underlying
connection rather than through its encrypting response path.

# Encryption

SetupEncryption and PubKey are always exchanged in the clear, since the
client cannot target an encrypted reply until it has the server's public
key, and the server cannot encrypt replies until it has the client's.
Every reply after PubKey is accepted is encrypted with that key,
including the acknowledgement to PubKey itself.
*/
package session
