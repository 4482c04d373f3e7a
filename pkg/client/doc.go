/*
Package client implements a blocking Go client for smoldb's wire protocol.

Grounded on the reference client's method set (one method per request
variant, SuccessNoData/SuccessReply/error collapsed into a Go (value,
error) return) and on the teacher's client.go shape (a struct wrapping one
connection plus a constructor). Unlike the reference, which ships both a
blocking and a non-blocking client, this client is blocking only, as a
deliberate simplification: every method blocks for exactly one request/response round
trip over its own connection, with no background goroutine or connection
pool — a client instance is owned by one goroutine at a time, matching the
core's own one-request-at-a-time session discipline (spec §5).

SetupEncryption negotiates an RSA key pair client-side and exchanges public
keys with the server; once negotiated, every subsequent request made
through the Client's methods is wrapped in Encrypted(ciphertext) and every
reply is decrypted transparently. This happens once per Client and is
invisible to callers of the other methods. The iterators' stream-control
requests (ReadyForNextItem/EndStreamRead) and the stream frames they
receive stay in the clear.

StreamReadDb and StreamList return iterator types (ContentIter, ListIter)
rather than collecting the full result: Next advances one item per call,
driving the core's streaming sub-protocol (ReadyForNextItem/EndStreamRead)
under the hood, matching the ergonomics the reference client's
TableIter/DBListIter provide. Databases offers the same ergonomics over
plain ListDB as a Go range-over-func iterator, since that call already
returns its full result in one round trip and needs no server-side
streaming state.
*/
package client
