/*
Package codec implements smoldb's self-describing wire encoding (C1): a
textual, tagged encoding of algebraic values used for every request and
response frame.

Every value smoldb puts on the wire — a Request, a Response, a DBSettings
block, a Stats block — is a Go type that marshals through gopkg.in/yaml.v3
into a single compact tagged document, then gets length-prefixed onto the
byte stream by pkg/protocol's framing layer. YAML was picked over JSON
because it is what the teacher's config-loading code (cmd/warren's `apply`
command) already reaches for as its one self-describing textual format; the
core does not mandate a specific codec (spec §1 explicitly leaves codec
choice to the implementation).

The only hard requirement (spec §4.1, invariant 4 in §8) is round-trip
safety: decode(encode(x)) == x for every well-formed value. Encode/Decode
here are thin wrappers that exist so callers never import yaml directly —
if the backend ever changes, only this package changes.
*/
package codec
