/*
Package registry implements smoldb's registry and cache (C5): the name
set, the in-memory cache of open databases, durable persistence of both,
and cache sleep-out.

Locking is two-level, outermost to innermost (spec §5): Registry's own
RWMutex guards the name set and the cache map's membership; each cached
*database.DB then guards its own state with its own RWMutex. Callers
never hold the registry lock across a blocking I/O call except the
durable read/write those calls themselves require.

Each database is persisted as a single codec-encoded file named after the
database, under one data directory (spec §6). The name index and the
super-admin credential set live in a small sidecar bbolt store alongside
the per-database files, grounded on the teacher's BoltStore
bucket-per-concern shape. The server's RSA key pair is not kept there.
*/
package registry
