// Package agent contains the execution graph that turns one user query into
// a final answer: a fixed finite-state machine of stages (planner,
// researcher, summarizer, executor, tool runner, critic, finalizer) wired by
// router predicates over shared state, plus the translator that converts the
// internal event stream into the caller-facing TEXT/THINKING chunk stream.
//
// Exactly one turn per thread id may be in flight at a time; the caller is
// responsible for that single-writer discipline. Within a turn, stages run
// strictly sequentially and chunks are delivered in event order.
package agent
