package database

import (
	"time"

	"github.com/cuemby/smoldb/pkg/types"
)

// Snapshot is the durable, codec-encodable form of a DB's full state:
// content map, keyed lists, settings, last-access, and statistics — every
// field spec §6 names for the per-database durable file.
type Snapshot struct {
	Content    map[types.Key]string   `yaml:"content"`
	KeyedLists map[types.Key][]string `yaml:"keyed_lists"`
	Settings   types.DBSettings       `yaml:"settings"`
	LastAccess time.Time              `yaml:"last_access"`
	Stats      Stats                  `yaml:"stats"`
}

// Export produces a Snapshot suitable for durable persistence.
func (d *DB) Export() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	content := make(map[types.Key]string, len(d.content))
	for k, v := range d.content {
		content[k] = v
	}
	lists := make(map[types.Key][]string, len(d.keyedLists))
	for k, v := range d.keyedLists {
		cp := make([]string, len(v))
		copy(cp, v)
		lists[k] = cp
	}
	return Snapshot{
		Content:    content,
		KeyedLists: lists,
		Settings:   d.settings,
		LastAccess: d.lastAccess,
		Stats:      d.stats,
	}
}

// FromSnapshot rebuilds a DB from a previously exported Snapshot, carrying
// last-access and statistics forward so a cache sweep-evict-then-reload
// cycle is invisible to GetStats (spec §6).
func FromSnapshot(s Snapshot) *DB {
	d := New(s.Settings)
	if s.Content != nil {
		d.content = s.Content
	}
	if s.KeyedLists != nil {
		d.keyedLists = s.KeyedLists
	}
	if !s.LastAccess.IsZero() {
		d.lastAccess = s.LastAccess
	}
	d.stats = s.Stats
	return d
}
