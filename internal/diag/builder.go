package diag

import "semacore/internal/source"

// Builder accumulates a diagnostic's notes before it is filed into a
// Reporter. Mirrors the fluent construction SPEC_FULL.md §4.13 describes:
//
//	bag.BuildError(diag.ResUseAfterMove, node.Span, "resource used after move").
//		AddNote(priorMove.Span, "moved here").
//		Report()
type Builder struct {
	reporter Reporter
	diag     Diagnostic
}

// NewBuilder starts a fluent report bound to an arbitrary Reporter.
func NewBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *Builder {
	return &Builder{reporter: r, diag: New(sev, code, primary, msg)}
}

// AddNote appends a note and returns the builder for further chaining.
func (b *Builder) AddNote(sp source.Span, msg string) *Builder {
	b.diag = b.diag.WithNote(sp, msg)
	return b
}

// Report files the accumulated diagnostic into the owning Reporter and
// returns it, honoring the sink's own acceptance rules (e.g. a Bag's
// capacity limit).
func (b *Builder) Report() Diagnostic {
	b.reporter.Report(b.diag)
	return b.diag
}

// BuildError starts a fluent error report bound to this bag.
func (b *Bag) BuildError(code Code, primary source.Span, msg string) *Builder {
	return NewBuilder(b, SevError, code, primary, msg)
}

// BuildWarning starts a fluent warning report bound to this bag.
func (b *Bag) BuildWarning(code Code, primary source.Span, msg string) *Builder {
	return NewBuilder(b, SevWarning, code, primary, msg)
}
