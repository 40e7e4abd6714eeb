// Package sir implements the Semantic Intermediate Representation: the
// node model every analysis pass reads and rewrites.
//
// SIR has five sum types — Expr, Stmt, Decl, Symbol, UseItem — each
// modeled as a payload interface with a Kind() discriminant (see expr.go's
// doc comment) rather than a closed set of Go structs with no common
// supertype. Every node is stored by value in a per-Module arena and
// referenced elsewhere by a 1-based ID, never by pointer: the SIR's
// back-pointers (a decl's parent, a specialization's source definition, a
// guarded symbol's variants) form cycles that Go cannot express as owning
// pointers without leaking, so they are expressed as arena indices
// instead.
//
// A SymbolTable chains to its parent and additionally tracks
// "guarded scopes": names introduced by an unexpanded `meta if` that
// trigger on-demand expansion through the Expander interface on first
// lookup miss, keeping the collector (C3) and the meta expander (C7)
// decoupled from this package.
package sir
