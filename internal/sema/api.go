package sema

import (
	"semacore/internal/sir"
	"semacore/internal/source"
)

// Location names a span inside one module's source, the unit over module
// boundaries `go to definition`/`find references` answers in
// (spec §6.2's `Location`).
type Location struct {
	Module *sir.Module
	Span   source.Span
}

// FindSymbolAt resolves spec §6.2's `find_symbol_at`: the innermost
// SymbolRefData expression whose span contains pos in file, if any. A
// fully analyzed unit has already rewritten every identifier/dotted-access
// node that resolved to a symbol into SymbolRefData (spec §6.2's "all
// nodes resolved and marked"), so the search never needs to special-case
// DotUnresolvedData/BracketUnresolvedData.
func FindSymbolAt(u *sir.Unit, file source.FileID, pos uint32) (*sir.Module, sir.SymbolID, bool) {
	var bestMod *sir.Module
	var bestSym sir.SymbolID
	bestWidth := ^uint32(0)

	for _, m := range u.Modules {
		n := m.Exprs.Len()
		for i := uint32(1); i <= n; i++ {
			e := m.Expr(sir.ExprID(i))
			if e.Span.File != file || pos < e.Span.Start || pos >= e.Span.End {
				continue
			}
			sr, ok := e.Data.(sir.SymbolRefData)
			if !ok || !sr.Symbol.IsValid() {
				continue
			}
			if w := e.Span.Len(); w < bestWidth {
				bestWidth = w
				bestMod = m
				bestSym = sr.Symbol
			}
		}
	}
	if bestMod == nil {
		return nil, sir.NoSymbolID, false
	}
	return bestMod, bestSym, true
}

// FindSymbolUses resolves spec §6.2's `find_symbol_uses`: every recorded
// reference to (mod, sym) in idx, as Locations. idx must come from the
// same Analyzer.Run that produced mod's tree.
func FindSymbolUses(idx *UseIndex, mod *sir.Module, sym sir.SymbolID) []Location {
	refs := idx.References(mod, sym)
	out := make([]Location, len(refs))
	for i, r := range refs {
		out[i] = Location{Module: r.Module, Span: r.Module.Expr(r.Expr).Span}
	}
	return out
}

// CompleteAt resolves spec §6.2's `complete_at`: the unit's one-shot
// CompletionContext, if the analyzed source carried a completion marker at
// all (spec §9: "treat it as an Option<CompletionContext> set exactly once
// per analysis run"). There is nothing else for this package to compute —
// the context itself already carries everything complete-in-block/
// complete-after-dot/etc. need (the enclosing block, decl, and any LHS
// type), which a caller derives by walking from ctx.Block/ctx.Decl.
func CompleteAt(u *sir.Unit) (sir.CompletionContext, bool) {
	return u.Completion()
}
