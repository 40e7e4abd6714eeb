package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// symKey addresses a symbol across modules: SymbolID alone is only unique
// within the module that allocated it (spec §4.1, "per-module arenas"), so
// anything that crosses a `use` boundary must carry its owning *sir.Module
// alongside the id.
type symKey struct {
	m  *sir.Module
	id sir.SymbolID
}

// externalTarget records what a local proxy symbol — one collected by C3
// for a `use` leaf — actually refers to: a symbol (and the module that owns
// it) possibly still behind further proxies of its own (a re-exported
// import chains through more than one externalTarget).
type externalTarget struct {
	mod *sir.Module
	sym sir.SymbolID
}

// resolveExternal follows m/id through any recorded proxy chain and returns
// the module/symbol pair the chain ultimately bottoms out at. Symbols that
// were never proxies resolve to themselves.
func (a *Analyzer) resolveExternal(m *sir.Module, id sir.SymbolID) (*sir.Module, sir.SymbolID) {
	for i := 0; i < 64; i++ { // bound against a cyclic `use` misconfiguration
		ext, ok := a.externals[symKey{m, id}]
		if !ok {
			return m, id
		}
		m, id = ext.mod, ext.sym
	}
	return m, id
}

// tableOf returns the member/namespace table a symbol exposes for further
// dotted navigation, resolving proxies first.
func (a *Analyzer) tableOf(m *sir.Module, id sir.SymbolID) (*sir.Module, sir.ScopeID, bool) {
	m, id = a.resolveExternal(m, id)
	if !id.IsValid() {
		return m, sir.NoScopeID, false
	}
	switch d := m.Symbol(id).Data.(type) {
	case sir.ModuleSymbol:
		return m, d.Table, true
	case sir.StructDefSymbol:
		return m, d.Table, true
	case sir.EnumDefSymbol:
		return m, d.Table, true
	case sir.UnionDefSymbol:
		return m, d.Table, true
	case sir.ProtoDefSymbol:
		return m, d.Table, true
	default:
		return m, sir.NoScopeID, false
	}
}

// bindExternal allocates a proxy symbol of the same kind as target in m (the
// importing module) and records the crossRef so later passes can dereference
// it transparently through resolveExternal/tableOf.
func (a *Analyzer) bindExternal(m *sir.Module, name source.StringID, span source.Span, targetMod *sir.Module, target sir.SymbolID) sir.SymbolID {
	kind := sir.SymError
	if target.IsValid() {
		kind = targetMod.Symbol(target).Kind()
	}
	proxy := m.NewSymbol(proxySymbolFor(kind, name), span)
	a.externals[symKey{m, proxy}] = externalTarget{mod: targetMod, sym: target}
	return proxy
}

func proxySymbolFor(kind sir.SymbolKind, name source.StringID) sir.SymbolData {
	switch kind {
	case sir.SymStructDef:
		s := sir.StructDefSymbol{}
		s.NameID = name
		return s
	case sir.SymEnumDef:
		s := sir.EnumDefSymbol{}
		s.NameID = name
		return s
	case sir.SymUnionDef:
		s := sir.UnionDefSymbol{}
		s.NameID = name
		return s
	case sir.SymProtoDef:
		s := sir.ProtoDefSymbol{}
		s.NameID = name
		return s
	case sir.SymModule:
		s := sir.ModuleSymbol{}
		s.NameID = name
		return s
	default:
		s := sir.UseIdentSymbol{}
		s.NameID = name
		return s
	}
}

// resolveUses runs C4 over every `use` declaration in m, wiring each leaf's
// UseIdentSymbol/UseRebindSymbol.Target (spec §4.4).
func (a *Analyzer) resolveUses(m *sir.Module, u *sir.Unit) {
	for _, id := range m.AllDecls {
		decl := m.Decl(id)
		ud, ok := decl.Data.(sir.UseDeclData)
		if !ok {
			continue
		}
		a.resolveUseItem(m, u, ud.Root, nil, sir.NoScopeID)
	}
}

// useCursor carries "what module/scope does the left-hand side of the next
// dot resolve against" through a use-tree walk.
type useCursor struct {
	mod *sir.Module
	sym sir.SymbolID // resolved target of the item just walked
}

// resolveUseItem resolves item, whose left context is lhs (nil at the root
// of a use-tree), returning the cursor for a further Dot/List suffix.
func (a *Analyzer) resolveUseItem(m *sir.Module, u *sir.Unit, id sir.UseItemID, lhs *useCursor, _ sir.ScopeID) *useCursor {
	item := m.UseItem(id)
	switch it := item.Data.(type) {
	case sir.UseIdentData:
		cur := a.resolveUseName(m, u, it.Name, item.Span, lhs)
		if cur == nil {
			a.errorf(diag.StructSymbolNotFound, item.Span, "cannot find '$'", a.interner.MustLookup(it.Name))
			return nil
		}
		it.Symbol = a.bindExternal(m, it.Name, item.Span, cur.mod, cur.sym)
		item.Data = it
		a.setUseSymbolTarget(m, it.Name, it.Symbol)
		return cur

	case sir.UseRebindData:
		cur := a.resolveUseName(m, u, it.Ident, item.Span, lhs)
		if cur == nil {
			a.errorf(diag.StructSymbolNotFound, item.Span, "cannot find '$'", a.interner.MustLookup(it.Ident))
			return nil
		}
		it.Symbol = a.bindExternal(m, it.LocalName, item.Span, cur.mod, cur.sym)
		item.Data = it
		a.setUseSymbolTarget(m, it.LocalName, it.Symbol)
		return cur

	case sir.UseDotData:
		lhsCur := a.resolveUseItem(m, u, it.LHS, lhs, sir.NoScopeID)
		if lhsCur == nil {
			return nil
		}
		return a.resolveUseItem(m, u, it.RHS, lhsCur, sir.NoScopeID)

	case sir.UseListData:
		lhsCur := a.resolveUseItem(m, u, it.LHS, lhs, sir.NoScopeID)
		if lhsCur == nil {
			return nil
		}
		for _, child := range it.Items {
			a.resolveUseItem(m, u, child, lhsCur, sir.NoScopeID)
		}
		return lhsCur
	}
	return nil
}

// resolveUseName resolves name either as a top-level module (lhs == nil) or
// as a member of lhs's exposed table.
func (a *Analyzer) resolveUseName(m *sir.Module, u *sir.Unit, name source.StringID, span source.Span, lhs *useCursor) *useCursor {
	if lhs == nil {
		nameStr := a.interner.MustLookup(name)
		target, _, ok := u.ModuleByPath(nameStr)
		if !ok {
			return nil
		}
		return &useCursor{mod: target, sym: sir.NoSymbolID}
	}
	if !lhs.sym.IsValid() {
		return nil
	}
	tmod, scope, ok := a.tableOf(lhs.mod, lhs.sym)
	if !ok || !scope.IsValid() {
		return nil
	}
	symID, ok := tmod.Lookup(scope, name, a)
	if !ok {
		return nil
	}
	return &useCursor{mod: tmod, sym: symID}
}

// setUseSymbolTarget writes target into the local name's already-collected
// UseIdentSymbol/UseRebindSymbol.
func (a *Analyzer) setUseSymbolTarget(m *sir.Module, localName source.StringID, target sir.SymbolID) {
	symID, ok := m.Scope(m.Root).Local(localName)
	if !ok {
		return
	}
	sym := m.Symbol(symID)
	switch d := sym.Data.(type) {
	case sir.UseIdentSymbol:
		d.Target = target
		sym.Data = d
	case sir.UseRebindSymbol:
		d.Target = target
		sym.Data = d
	}
}
