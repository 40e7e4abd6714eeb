package diag

import (
	"fmt"
	"strconv"
	"strings"

	"semacore/internal/source"
)

// Note supplements a Diagnostic with secondary context at another span —
// e.g. "value moved here" alongside the primary "use after move" message.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a single reported issue: a severity, a stable Code, a
// rendered message, the span it is pinned to, and zero or more Notes.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// New builds a Diagnostic with no notes yet.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

// NewError is New with SevError.
func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// NewWarning is New with SevWarning.
func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

// WithNote returns a copy of d with an additional note appended. Diagnostic
// is a value type so callers chain this fluently without aliasing another
// report's Notes slice (see SPEC_FULL.md §4.13, "the report builder is
// fluent").
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(append([]Note(nil), d.Notes...), Note{Span: sp, Msg: msg})
	return d
}

// Format substitutes each '$' placeholder in template, left to right, with
// the corresponding argument's string form. This is the single-sigil
// format language from SPEC_FULL.md §4.13 — simpler than fmt's verbs
// because message templates are hand-written by analyzer authors and never
// need positional/width specifiers.
func Format(template string, args ...any) string {
	if len(args) == 0 || !strings.ContainsRune(template, '$') {
		return template
	}

	var b strings.Builder
	argIdx := 0
	for i := 0; i < len(template); i++ {
		if template[i] == '$' && argIdx < len(args) {
			b.WriteString(stringifyArg(args[argIdx]))
			argIdx++
			continue
		}
		b.WriteByte(template[i])
	}
	return b.String()
}

func stringifyArg(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
