/*
Package log provides structured logging for smoldb using zerolog.

It wraps zerolog with a global logger, component-scoped child loggers, and a
small Init(Config) entry point, so every subsystem — registry, session
engine, maintenance loop — logs through the same pipeline with the same
timestamp and level handling.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	sessionLog := log.WithSession(id)
	sessionLog.Info().Str("db", string(name)).Msg("database opened")

# Levels

Debug and Info are routine. Per the core's error handling design,
protocol errors (BadPacket) are logged at Debug, not Warn — they are
expected traffic, not incidents. Authorization failures
(InvalidPermissions) are returned to the client without a log line.
Durability failures (DBFileSystemError) log at Error.
*/
package log
