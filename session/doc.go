// Package session provides persistence for conversation state keyed by
// thread id. Two StateStore implementations are included: a volatile
// in-memory store for tests and single-process use, and a Redis-backed store
// for durable multi-process deployments. State is persisted as a JSON
// snapshot at turn boundaries, never mid-turn.
package session
