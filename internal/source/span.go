package source

import "fmt"

// Span is a contiguous, half-open byte range within one source file.
// Every SIR node that can be blamed for a diagnostic carries one; nodes
// synthesized by meta expansion or specialization keep the span of the
// original node they were cloned from, so diagnostics always point at real
// source text (see DESIGN.md, "Lifecycles").
type Span struct {
	File  FileID
	Start uint32 // inclusive
	End   uint32 // exclusive
}

// Empty reports whether the span covers zero bytes.
func (s Span) Empty() bool { return s.Start == s.End }

// Len returns the span's width in bytes.
func (s Span) Len() uint32 { return s.End - s.Start }

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span enclosing both s and other. Spans in
// different files are incomparable; Cover then returns s unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// IsLeftThan reports whether s starts before other in the same file — used
// to keep diagnostics and symbol-use entries in source order.
func (s Span) IsLeftThan(other Span) bool {
	return s.File == other.File && s.Start < other.Start
}

// IsRightThan reports whether s ends after other in the same file.
func (s Span) IsRightThan(other Span) bool {
	return s.File == other.File && s.End > other.End
}
