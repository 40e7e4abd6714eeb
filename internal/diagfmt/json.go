package diagfmt

import (
	"encoding/json"
	"io"

	"semacore/internal/diag"
	"semacore/internal/source"
)

// LocationJSON is a diagnostic's span in both byte-offset and line/col form.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON is a Diagnostic.Note rendered for JSON consumers.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON is the JSON-serializable shape of a diag.Diagnostic.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root object written by JSON.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode) LocationJSON {
	f := fs.Get(span.File)

	var path string
	switch pathMode {
	case PathModeAbsolute:
		path = f.FormatPath("absolute", "")
	case PathModeRelative:
		path = f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		path = f.FormatPath("basename", "")
	default:
		path = f.FormatPath("auto", "")
	}

	start, end := fs.Resolve(span)
	return LocationJSON{
		File:      path,
		StartByte: span.Start,
		EndByte:   span.End,
		StartLine: start.Line,
		StartCol:  start.Col,
		EndLine:   end.Line,
		EndCol:    end.Col,
	}
}

// JSON writes bag's diagnostics to w as a single DiagnosticsOutput object,
// for editor/LSP consumers that want structured output instead of the
// terminal rendering Pretty produces.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, pathMode PathMode) error {
	items := bag.Items()
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, len(items)),
		Count:       len(items),
	}
	for i, d := range items {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, pathMode),
		}
		for _, n := range d.Notes {
			dj.Notes = append(dj.Notes, NoteJSON{
				Message:  n.Msg,
				Location: makeLocation(n.Span, fs, pathMode),
			})
		}
		out.Diagnostics[i] = dj
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
