package sema

import "semacore/internal/sir"

// useRef is one resolved occurrence of a symbol: the module and expression
// node that referenced it, distinct from the symbol's own defining module.
type useRef struct {
	mod  *sir.Module
	expr sir.ExprID
}

// symRef addresses a symbol across modules the same way symKey does; kept
// as a distinct type so the use index doesn't need to reach into C4's
// internals.
type symRef struct {
	mod *sir.Module
	sym sir.SymbolID
}

// UseIndex answers go-to-definition (expr -> symbol) and find-references
// (symbol -> exprs) queries over a fully analyzed unit (spec §4.13, C17).
// Every SymbolRefData and resolved DotUnresolved/BracketUnresolved result
// already carries its target symbol id directly on the SIR node; the index
// exists so a caller outside the analyzer doesn't have to re-walk the tree
// to invert that mapping.
type UseIndex struct {
	defs map[useRef]symRef
	uses map[symRef][]useRef
}

func newUseIndex() *UseIndex {
	return &UseIndex{
		defs: make(map[useRef]symRef),
		uses: make(map[symRef][]useRef),
	}
}

func (idx *UseIndex) record(useMod *sir.Module, useExpr sir.ExprID, defMod *sir.Module, sym sir.SymbolID) {
	if !sym.IsValid() {
		return
	}
	u := useRef{useMod, useExpr}
	d := symRef{defMod, sym}
	idx.defs[u] = d
	idx.uses[d] = append(idx.uses[d], u)
}

// Definition returns the symbol (and its owning module) that the
// identifier expression at (mod, expr) resolved to.
func (idx *UseIndex) Definition(mod *sir.Module, expr sir.ExprID) (*sir.Module, sir.SymbolID, bool) {
	d, ok := idx.defs[useRef{mod, expr}]
	if !ok {
		return nil, sir.NoSymbolID, false
	}
	return d.mod, d.sym, true
}

// References returns every recorded use of the symbol (mod, sym).
func (idx *UseIndex) References(mod *sir.Module, sym sir.SymbolID) []struct {
	Module *sir.Module
	Expr   sir.ExprID
} {
	refs := idx.uses[symRef{mod, sym}]
	out := make([]struct {
		Module *sir.Module
		Expr   sir.ExprID
	}, len(refs))
	for i, r := range refs {
		out[i].Module = r.mod
		out[i].Expr = r.expr
	}
	return out
}

// DefRecord is one UseIndex entry flattened to module paths and numeric
// IDs, serializable across process boundaries (unlike useRef/symRef, which
// key on live *sir.Module pointers) — the shape SPEC_FULL.md §6's D5 wire
// codec snapshots.
type DefRecord struct {
	UseModule string
	UseExpr   uint32
	DefModule string
	DefSymbol uint32
}

// Export flattens the index into DefRecords for serialization. Order is
// unspecified; callers that need determinism should sort the result.
func (idx *UseIndex) Export() []DefRecord {
	out := make([]DefRecord, 0, len(idx.defs))
	for u, d := range idx.defs {
		out = append(out, DefRecord{
			UseModule: u.mod.Path,
			UseExpr:   uint32(u.expr),
			DefModule: d.mod.Path,
			DefSymbol: uint32(d.sym),
		})
	}
	return out
}

// buildUseIndex runs C17 as the pipeline's final pass: every expression
// node that settled on a SymbolRefData (identifiers, resolved dotted
// navigation, resolved generic instantiations) is recorded against the
// symbol it names, following `use` proxies back to their real definition
// so references that cross a module boundary land on one canonical entry
// (spec §4.13).
func (a *Analyzer) buildUseIndex(u *sir.Unit) {
	for _, m := range u.Modules {
		n := m.Exprs.Len()
		for i := uint32(1); i <= n; i++ {
			e := m.Expr(sir.ExprID(i))
			sr, ok := e.Data.(sir.SymbolRefData)
			if !ok || !sr.Symbol.IsValid() {
				continue
			}
			defMod, defSym := a.resolveExternal(m, sr.Symbol)
			a.useIndex.record(m, sir.ExprID(i), defMod, defSym)
		}
	}
}
