// Package maintenance runs the registry's cache sweep on a fixed tick.
//
// A single Sweeper owns a background goroutine that calls
// Registry.Sweep at a configurable interval (default 10 seconds),
// writing back and evicting any database whose last access has
// exceeded its own invalidation interval. Start/Stop follow the
// same shape as the rest of the server's background loops: Start
// launches the goroutine, Stop closes a channel and returns at once,
// without waiting for the loop to observe it or for a running sweep
// to finish.
package maintenance
