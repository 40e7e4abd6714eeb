// Package diag defines the diagnostic model shared by every semantic
// analysis pass.
//
// # Purpose
//
//   - Provide deterministic, serializable data structures for findings
//     produced by the sema and resource passes.
//   - Offer lightweight utilities (Reporter, Bag, Builder) that let a pass
//     emit diagnostics without coupling to storage or presentation.
//
// # Scope
//
// Package diag performs no formatting, IO, or CLI integration. Rendering
// lives in internal/diagfmt; orchestration across units lives in the
// driver layer. This package never references the lexer/parser token
// stream — codes below 2000 are reserved for that external frontend and
// are never constructed here.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity — tri-level enum (Info, Warning, Error), severity.go.
//   - Code — dense numeric identifier with a stable ID() string for
//     golden/wire compatibility across renumbering, codes.go.
//   - Message — short, actionable text, usually built with Format.
//   - Primary — the source.Span the diagnostic is pinned to.
//   - Notes — optional secondary spans adding context ("moved here").
//
// Diagnostic and Note are value types; WithNote returns a modified copy
// rather than mutating a shared Notes slice, so two builders derived from
// the same base diagnostic never alias each other's notes.
//
// # Emitting diagnostics
//
// A pass emits through the Reporter interface, which decouples emission
// from storage: a Bag during a single unit's analysis, a MultiReporter
// fanning out to a Bag and a live stream, a DedupReporter suppressing
// repeats from a re-walked generic instantiation, or NopReporter in tests.
// Bag itself satisfies Reporter, and Bag.BuildError/BuildWarning start a
// fluent Builder bound to it:
//
//	bag.BuildError(diag.ResUseAfterMove, node.Span, "resource used after move").
//		AddNote(priorMove.Span, "moved here").
//		Report()
//
// # Consumers
//
//   - internal/diagfmt renders Diagnostics as pretty terminal output or
//     JSON; internal/ui pages them in an interactive TUI.
//   - internal/snapshot carries no diagnostics: it serializes only a unit's
//     completion context and use index.
//   - cmd/semac coordinates per-unit bags and reports exit status from
//     Bag.HasErrors.
package diag
