// Package core provides the foundational domain types shared by the deepagent
// execution graph. It defines:
//
//   - Messages (role-based conversation turns composed of typed parts)
//   - Plan / Intent (the structured planning and research artifacts)
//   - State (the mutable record threaded through every stage, with explicit
//     per-field merge rules)
//   - Events (the closed set of internal stage/router notifications)
//   - Chunks (the caller-facing output stream units, TEXT or THINKING)
//
// The package intentionally keeps implementation concerns (oracle adapters,
// stage functions, persistence) out of scope so the graph engine, the tool
// subsystem and the stores can all depend on one small, stable vocabulary.
package core
