package database

import (
	"sync"
	"time"

	"github.com/cuemby/smoldb/pkg/types"
)

// DB holds one database's full in-memory state: its content map, its keyed
// lists, its settings, last-access time, and usage statistics. All methods
// are safe for concurrent use; each takes DB's own RWMutex for its
// duration. Callers needing registry-level + per-DB locking (spec §5)
// acquire the registry lock first, then call into DB.
type DB struct {
	mu sync.RWMutex

	content     map[types.Key]string
	keyedLists  map[types.Key][]string
	settings    types.DBSettings
	lastAccess  time.Time
	stats       Stats
}

// New creates an empty database with the given settings.
func New(settings types.DBSettings) *DB {
	return &DB{
		content:    make(map[types.Key]string),
		keyedLists: make(map[types.Key][]string),
		settings:   settings,
		lastAccess: time.Now(),
	}
}

// Touch advances last-access to now. Called on every successful authorized
// operation (spec §3's monotonicity invariant).
func (d *DB) Touch() {
	d.mu.Lock()
	d.lastAccess = time.Now()
	d.mu.Unlock()
}

// LastAccess returns the last-access timestamp.
func (d *DB) LastAccess() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastAccess
}

// Settings returns a copy of the database's current settings.
func (d *DB) Settings() types.DBSettings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings
}

// SetSettings replaces the database's settings wholesale.
func (d *DB) SetSettings(s types.DBSettings) {
	d.mu.Lock()
	d.settings = s
	d.mu.Unlock()
}

// AddAdmin appends a credential to the admin list if not already present.
func (d *DB) AddAdmin(c types.Credential) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !contains(d.settings.AdminCredentials, string(c)) {
		d.settings.AdminCredentials = append(d.settings.AdminCredentials, string(c))
	}
}

// AddUser appends a credential to the user list if not already present.
func (d *DB) AddUser(c types.Credential) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !contains(d.settings.UserCredentials, string(c)) {
		d.settings.UserCredentials = append(d.settings.UserCredentials, string(c))
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Stats returns a copy of the database's statistics block.
func (d *DB) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// ContentGet reads a value from the content map.
func (d *DB) ContentGet(key types.Key) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.RecordRead()
	v, ok := d.content[key]
	if !ok {
		return "", ErrValueNotFound
	}
	return v, nil
}

// ContentPut writes a value to the content map, returning the previous
// value if one existed.
func (d *DB) ContentPut(key types.Key, value string) (prev string, hadPrev bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.RecordWrite()
	prev, hadPrev = d.content[key]
	d.content[key] = value
	return prev, hadPrev
}

// ContentDelete removes a key from the content map, returning its value.
func (d *DB) ContentDelete(key types.Key) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.RecordWrite()
	v, ok := d.content[key]
	if !ok {
		return "", ErrValueNotFound
	}
	delete(d.content, key)
	return v, nil
}

// SnapshotContent returns a consistent copy of the content map, for
// ListDBContents and for StreamReadDb.
func (d *DB) SnapshotContent() map[types.Key]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[types.Key]string, len(d.content))
	for k, v := range d.content {
		out[k] = v
	}
	return out
}
