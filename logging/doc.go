// Package logging provides a minimal logging interface and a slog-backed
// implementation for the agent.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the engine and tools use for observability. This package
// includes:
//
//   - Logger interface for dependency injection
//   - DeepAgentLogger wrapping Go's structured logging, with contextual
//     attributes (component, thread, turn) and per-domain helpers
//     (LogStage, LogToolCall, LogOracleCall)
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	a, err := agent.New(m, func(o *agent.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
