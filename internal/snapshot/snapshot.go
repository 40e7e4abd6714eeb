// Package snapshot serializes a unit's completion context and use index
// with msgpack (SPEC_FULL.md §6's D5), so an external LSP process can be
// handed a precomputed snapshot rather than relinking against this module.
package snapshot

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"semacore/internal/sema"
	"semacore/internal/sir"
)

// CompletionRecord is sir.CompletionContext flattened to a module path
// instead of a live ModuleID, so it survives round-tripping through a
// separate process.
type CompletionRecord struct {
	Module string
	Block  uint32
	Decl   uint32
}

// Snapshot is the wire format written by Encode and read back by Decode.
type Snapshot struct {
	Completion *CompletionRecord
	Defs       []sema.DefRecord
}

// Build assembles a Snapshot from a completed Analyzer.Run's Result and the
// Unit it ran over.
func Build(u *sir.Unit, result sema.Result) Snapshot {
	snap := Snapshot{}
	if result.UseIndex != nil {
		snap.Defs = result.UseIndex.Export()
	}
	if ctx, ok := u.Completion(); ok {
		mod := u.Module(ctx.Module)
		if mod != nil {
			snap.Completion = &CompletionRecord{
				Module: mod.Path,
				Block:  uint32(ctx.Block),
				Decl:   uint32(ctx.Decl),
			}
		}
	}
	return snap
}

// Encode writes snap to w as msgpack.
func Encode(w io.Writer, snap Snapshot) error {
	return msgpack.NewEncoder(w).Encode(snap)
}

// Decode reads a Snapshot previously written by Encode.
func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	err := msgpack.NewDecoder(r).Decode(&snap)
	return snap, err
}
