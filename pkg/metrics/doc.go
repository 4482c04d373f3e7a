/*
Package metrics defines and registers smoldb's Prometheus metrics.

Metrics are ambient ops tooling, not part of the wire protocol's GetStats
reply: they cover process-wide shape (databases known, sessions active,
cache residency) and the maintenance sweep's cost, and are exposed over
HTTP for scraping by a Prometheus server.

# Metrics

  - smoldb_databases_total: gauge, number of databases known to the registry.
  - smoldb_sessions_active: gauge, number of currently connected sessions.
  - smoldb_cache_resident_total: gauge, number of databases currently
    resident in the registry's in-memory cache.
  - smoldb_sweep_duration_seconds: histogram, duration of a maintenance
    sweep cycle.
  - smoldb_sweep_cycles_total: counter, number of sweep cycles completed.
  - smoldb_sweep_evictions_total: counter, number of cache entries evicted
    by a sweep cycle.

All metrics are package-level variables registered at init and safe for
concurrent use. Handler returns the promhttp handler for mounting at
/metrics.
*/
package metrics
