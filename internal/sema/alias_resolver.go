package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
)

// resolveTypeIdent rewrites id in place from an unresolved IdentData into a
// SymbolRefData bound against m's root table (type names are always
// module-level in this language), so later passes never see a bare
// identifier where a type expression is expected (spec §3.4 invariant).
// No-op (and true) for an expression that is already resolved.
func (a *Analyzer) resolveTypeIdent(m *sir.Module, id sir.ExprID) bool {
	if !id.IsValid() {
		return true
	}
	e := m.Expr(id)
	ident, ok := e.Data.(sir.IdentData)
	if !ok {
		return true
	}
	sym, ok := m.Lookup(m.Root, ident.Name, a)
	if !ok {
		a.errorf(diag.StructSymbolNotFound, e.Span, "cannot find type '$'", a.interner.MustLookup(ident.Name))
		e.Data = sir.ErrorData{}
		return false
	}
	e.Data = sir.SymbolRefData{Symbol: sym}
	return true
}

// resolveAliases runs C5: collapses every `alias A = B` chain so a lookup
// through A's TypeAliasData.Target reaches the non-alias definition
// directly, reporting a cycle rather than looping forever (spec §4.4 "type
// alias resolver").
func (a *Analyzer) resolveAliases(m *sir.Module) {
	for _, id := range m.AllDecls {
		decl := m.Decl(id)
		_, ok := decl.Data.(sir.TypeAliasData)
		if !ok {
			continue
		}
		a.resolveAliasChain(m, id, make(map[sir.DeclID]bool))
	}
}

func (a *Analyzer) resolveAliasChain(m *sir.Module, id sir.DeclID, visiting map[sir.DeclID]bool) sir.ExprID {
	decl := m.Decl(id)
	d, ok := decl.Data.(sir.TypeAliasData)
	if !ok {
		return sir.NoExprID
	}
	if visiting[id] {
		a.errorf(diag.TypeMismatch, decl.Span, "circular type alias '$'", a.interner.MustLookup(d.Name))
		return d.Target
	}
	if !a.resolveTypeIdent(m, d.Target) {
		return d.Target
	}
	target := m.Expr(d.Target)
	sr, ok := target.Data.(sir.SymbolRefData)
	if !ok {
		return d.Target
	}
	sym := m.Symbol(sr.Symbol)
	ta, ok := sym.Data.(sir.TypeAliasSymbol)
	if !ok {
		return d.Target
	}
	visiting[id] = true
	finalTarget := a.resolveAliasChain(m, ta.Decl, visiting)
	visiting[id] = false
	if finalTarget.IsValid() {
		d.Target = finalTarget
		decl.Data = d
	}
	return d.Target
}
