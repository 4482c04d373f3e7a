package maintenance

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/smoldb/pkg/log"
	"github.com/cuemby/smoldb/pkg/metrics"
	"github.com/cuemby/smoldb/pkg/registry"
)

const defaultInterval = 10 * time.Second

// Sweeper periodically evicts stale databases from the registry cache.
type Sweeper struct {
	reg      *registry.Registry
	interval time.Duration
	logger   zerolog.Logger
	mu       sync.Mutex
	stopCh   chan struct{}
	running  bool
}

// New creates a Sweeper for reg. An interval of zero uses the default
// 10-second tick.
func New(reg *registry.Registry, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{
		reg:      reg,
		interval: interval,
		logger:   log.WithComponent("maintenance"),
	}
}

// Start begins the sweep loop in a background goroutine. Calling Start
// twice without an intervening Stop is a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.stopCh = make(chan struct{})
	s.running = true
	go s.run(s.stopCh)
}

// Stop signals the sweep loop to exit. It does not wait for the current
// tick's sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

func (s *Sweeper) run(stopCh chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("maintenance sweeper started")

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-stopCh:
			s.logger.Info().Msg("maintenance sweeper stopped")
			return
		}
	}
}

func (s *Sweeper) sweep() {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.SweepDuration)
		metrics.SweepCyclesTotal.Inc()
	}()

	evicted, err := s.reg.Sweep()
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep cycle failed")
		return
	}
	if evicted > 0 {
		metrics.SweepEvictionsTotal.Add(float64(evicted))
	}
	metrics.DatabasesTotal.Set(float64(len(s.reg.Names())))
	metrics.CacheResidentTotal.Set(float64(s.reg.CacheSize()))
}
