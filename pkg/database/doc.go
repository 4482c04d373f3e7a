/*
Package database implements a single database's in-memory state (C3/C4):
its content map, its keyed-list map, its settings, last-access time, and a
small statistics block. Every exported method takes the DB's own lock for
its duration — callers (pkg/registry) are responsible for acquiring the
registry-level lock first, per the outermost-to-innermost ordering in
spec §5.

Content-map iteration order is unspecified, matching spec §4.3. Lists
preserve insertion order and positional semantics, and an empty list is
always removed rather than left as a zero-length entry (spec §3's
invariant).
*/
package database
