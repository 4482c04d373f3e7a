package database

import "time"

// statsHistory is how many recent access gaps Stats keeps, mirroring the
// original's "time of usage" ring rather than a single running average.
const statsHistory = 8

// Stats is a database's usage statistics block (GetStats on the wire).
// Part of a database's durable state per spec §6 ("content map, keyed
// lists, settings, last-access, statistics"), so a cache sweep-evict
// followed by a reload (pkg/maintenance, C8) doesn't silently zero these
// counters during ordinary operation — only a fresh CreateDB starts a
// database at all-zero stats.
type Stats struct {
	Reads  uint64 `yaml:"reads"`
	Writes uint64 `yaml:"writes"`

	LastRecordedAccess time.Time                   `yaml:"last_recorded_access"`
	RecentGaps         [statsHistory]time.Duration `yaml:"recent_gaps"`
	GapCount           int                         `yaml:"gap_count"`
}

// RecordRead increments the read counter and records the gap since the
// previous access.
func (s *Stats) RecordRead() {
	s.Reads++
	s.recordAccess()
}

// RecordWrite increments the write counter and records the gap since the
// previous access.
func (s *Stats) RecordWrite() {
	s.Writes++
	s.recordAccess()
}

func (s *Stats) recordAccess() {
	now := time.Now()
	if !s.LastRecordedAccess.IsZero() {
		s.RecentGaps[s.GapCount%statsHistory] = now.Sub(s.LastRecordedAccess)
		s.GapCount++
	}
	s.LastRecordedAccess = now
}

// AverageGap returns the mean time between the last few recorded accesses,
// or zero if fewer than two accesses have been recorded.
func (s *Stats) AverageGap() time.Duration {
	n := s.GapCount
	if n > statsHistory {
		n = statsHistory
	}
	if n == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < n; i++ {
		total += s.RecentGaps[i]
	}
	return total / time.Duration(n)
}
