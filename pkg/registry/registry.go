package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/smoldb/pkg/auth"
	"github.com/cuemby/smoldb/pkg/database"
	"github.com/cuemby/smoldb/pkg/log"
	"github.com/cuemby/smoldb/pkg/types"
)

// Registry is the single process-wide name set, cache, and super-admin set
// smoldb's session engine dispatches every request through. Safe for
// concurrent use.
type Registry struct {
	mu sync.RWMutex

	dataDir string
	side    *sidecar

	names map[types.DBName]struct{}
	cache map[types.DBName]*database.DB
	locks map[types.DBName]*sync.Mutex

	super *auth.SuperAdmins
}

// Open creates or reopens a registry rooted at dataDir, restoring the name
// index and super-admin set from the sidecar store. dataDir must already
// exist.
func Open(dataDir string) (*Registry, error) {
	side, err := openSidecar(dataDir)
	if err != nil {
		return nil, err
	}

	names, err := side.loadNames()
	if err != nil {
		side.Close()
		return nil, err
	}
	superCreds, err := side.loadSuperAdmins()
	if err != nil {
		side.Close()
		return nil, err
	}

	r := &Registry{
		dataDir: dataDir,
		side:    side,
		names:   make(map[types.DBName]struct{}, len(names)),
		cache:   make(map[types.DBName]*database.DB),
		locks:   make(map[types.DBName]*sync.Mutex),
		super:   auth.NewSuperAdmins(),
	}
	for _, n := range names {
		r.names[types.DBName(n)] = struct{}{}
	}
	r.super.Load(superCreds)

	log.WithComponent("registry").Info().
		Int("databases", len(r.names)).
		Int("super_admins", len(superCreds)).
		Msg("registry opened")
	return r, nil
}

// Close releases the sidecar store.
func (r *Registry) Close() error {
	return r.side.Close()
}

// SuperAdmins exposes the registry's super-admin set for role resolution.
// Mutations (SetKey's bootstrap promotion) go through PromoteSuperAdmin so
// the change is persisted.
func (r *Registry) SuperAdmins() *auth.SuperAdmins {
	return r.super
}

// PromoteSuperAdmin appends c to the super-admin set and persists it. Used
// by the session engine's SetKey bootstrap rule (spec §4.6): the caller
// checks super.Empty() and calls this only on a fresh server.
func (r *Registry) PromoteSuperAdmin(c types.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.super.Add(c)
	if err := r.side.saveSuperAdmins(r.super.All()); err != nil {
		return err
	}
	log.WithComponent("registry").Info().Str("credential", string(c)).Msg("promoted first connecting client to super-admin")
	return nil
}

// Names returns a snapshot of the current name set. Always permitted
// (spec §4.5).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, string(n))
	}
	return out
}

// entryLock returns the per-name mutex serializing durable I/O for name,
// creating it on first use. Only the small map lookup/insert happens under
// r.mu; the returned mutex itself is locked and unlocked by the caller
// around the actual disk operation, so unrelated names never wait on each
// other's I/O (spec §5: registry lock resolves a handle, then a per-entry
// lock covers the blocking operation).
func (r *Registry) entryLock(name types.DBName) *sync.Mutex {
	r.mu.Lock()
	l, ok := r.locks[name]
	if !ok {
		l = &sync.Mutex{}
		r.locks[name] = l
	}
	r.mu.Unlock()
	return l
}

// Get resolves name to its cached DB, loading it from disk on a cache miss.
// This is ensure_loaded from spec §4.4. The registry lock is held only to
// resolve the name/cache lookup; the disk read on a cache miss runs under
// name's own entry lock, so a cold load of one database never blocks
// cache-hit traffic against any other database.
func (r *Registry) Get(name types.DBName) (*database.DB, error) {
	r.mu.RLock()
	_, known := r.names[name]
	if !known {
		r.mu.RUnlock()
		return nil, ErrDBNotFound
	}
	if db, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return db, nil
	}
	r.mu.RUnlock()

	lock := r.entryLock(name)
	lock.Lock()
	defer lock.Unlock()

	// Re-check: another goroutine may have loaded this entry while we
	// waited for the entry lock.
	r.mu.RLock()
	if db, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return db, nil
	}
	_, known = r.names[name]
	r.mu.RUnlock()
	if !known {
		return nil, ErrDBNotFound
	}

	db, err := readDBFile(r.dataDir, name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[name] = db
	r.mu.Unlock()
	log.WithComponent("registry").Debug().Str("db", string(name)).Msg("loaded database into cache")
	return db, nil
}

// CreateDB registers and persists a brand-new, empty database. Fails
// ErrDBAlreadyExists if the name is already known or its durable file
// already exists on disk. The durable write runs under name's own entry
// lock rather than the registry lock, so creating one database doesn't
// stall unrelated registry traffic.
func (r *Registry) CreateDB(name types.DBName, settings types.DBSettings) error {
	lock := r.entryLock(name)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	_, exists := r.names[name]
	r.mu.RUnlock()
	if exists {
		return ErrDBAlreadyExists
	}
	if dbFileExists(r.dataDir, name) {
		return ErrDBAlreadyExists
	}

	db := database.New(settings)
	if err := writeDBFile(r.dataDir, name, db); err != nil {
		return err
	}

	r.mu.Lock()
	r.cache[name] = db
	r.names[name] = struct{}{}
	err := r.persistNameIndexLocked()
	r.mu.Unlock()
	if err != nil {
		return err
	}

	log.WithComponent("registry").Info().Str("db", string(name)).Msg("database created")
	return nil
}

// DeleteDB removes name from cache, then from the name set, then deletes
// its durable file — in that order, so a lookup racing the delete fails
// cleanly once the name is gone even if the file removal itself lags
// (spec §4.4). Only the map mutation happens under the registry lock; the
// file removal runs under name's own entry lock.
func (r *Registry) DeleteDB(name types.DBName) error {
	lock := r.entryLock(name)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	if _, ok := r.names[name]; !ok {
		r.mu.Unlock()
		return ErrDBNotFound
	}
	delete(r.cache, name)
	delete(r.names, name)
	err := r.persistNameIndexLocked()
	r.mu.Unlock()
	if err != nil {
		return err
	}

	if err := removeDBFile(r.dataDir, name); err != nil {
		return err
	}

	log.WithComponent("registry").Info().Str("db", string(name)).Msg("database deleted")
	return nil
}

// Persist writes the current in-memory state of the named database to its
// durable file, without evicting it from the cache. The session engine
// calls it after every mutating operation. The write runs
// under name's own entry lock, so it can't race a concurrent sweep-evict
// write for the same database, while leaving every other database free.
func (r *Registry) Persist(name types.DBName) error {
	r.mu.RLock()
	db, ok := r.cache[name]
	r.mu.RUnlock()
	if !ok {
		return ErrDBNotFound
	}

	lock := r.entryLock(name)
	lock.Lock()
	defer lock.Unlock()
	return writeDBFile(r.dataDir, name, db)
}

// Sweep walks the cache once, writing back and evicting any entry whose
// last-access exceeds its own invalidation interval, then persists the
// name index. This is C8's single sweep tick (spec §4.7). Returns the
// number of entries evicted.
func (r *Registry) Sweep() (int, error) {
	r.mu.RLock()
	names := make([]types.DBName, 0, len(r.cache))
	for n := range r.cache {
		names = append(names, n)
	}
	r.mu.RUnlock()

	evicted := 0
	for _, name := range names {
		if r.sweepOne(name) {
			evicted++
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.persistNameIndexLocked(); err != nil {
		return evicted, err
	}
	if evicted > 0 {
		log.WithComponent("registry").Debug().Int("evicted", evicted).Msg("cache sweep complete")
	}
	return evicted, nil
}

// CacheSize returns the number of databases currently resident in the
// in-memory cache.
func (r *Registry) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// sweepOne evicts name if it is still idle past its invalidation interval.
// The registry lock only guards the cache map lookup/delete; the durable
// write itself runs under name's own entry lock (spec §4.7: "take
// exclusive lock on that entry"), so a sweep write for one database never
// blocks unrelated-DB traffic elsewhere in the registry.
func (r *Registry) sweepOne(name types.DBName) bool {
	r.mu.RLock()
	db, ok := r.cache[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Since(db.LastAccess()) < db.Settings().InvalidationInterval {
		return false
	}

	lock := r.entryLock(name)
	lock.Lock()
	defer lock.Unlock()

	// Re-check under the entry lock: the entry may have been touched,
	// reloaded, or already evicted while we waited for the lock.
	r.mu.RLock()
	db, ok = r.cache[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Since(db.LastAccess()) < db.Settings().InvalidationInterval {
		return false
	}

	if err := writeDBFile(r.dataDir, name, db); err != nil {
		log.WithComponent("registry").Error().Err(err).Str("db", string(name)).Msg("sweep persist failed, keeping entry cached")
		return false
	}

	r.mu.Lock()
	delete(r.cache, name)
	r.mu.Unlock()
	return true
}

// persistNameIndexLocked writes the current name set to the sidecar
// store. Caller must hold r.mu.
func (r *Registry) persistNameIndexLocked() error {
	names := make([]string, 0, len(r.names))
	for n := range r.names {
		names = append(names, string(n))
	}
	if err := r.side.saveNames(names); err != nil {
		return fmt.Errorf("%w: %v", ErrFileSystemError, err)
	}
	return nil
}
