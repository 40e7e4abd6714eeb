package sema

import (
	"semacore/internal/sir"
	"semacore/internal/source"
)

// preambleFuncs are the fixed internal.preamble.* builtins every module can
// call without a `use` (spec §6.4).
var preambleFuncs = []string{"print", "println", "assert"}

// preambleTypes are the fixed std.* container/primitive types every module
// can name without a `use` (spec §6.4).
var preambleTypes = map[string]string{
	"Optional": "std.optional.Optional",
	"Array":    "std.array.Array",
	"String":   "std.string.String",
	"Set":      "std.set.Set",
	"Closure":  "std.closure.Closure",
}

// injectPreamble binds the compatibility-critical preamble identifiers
// (spec §6.4) directly into m's root symbol table, so C4's use resolver
// never has to special-case them and C8 can look them up exactly like any
// other in-scope name.
//
// The preamble symbols are synthetic: they point at placeholder decls
// allocated once per Analyzer (not per module) in a dedicated host module,
// standing in for declarations that would otherwise come from compiling the
// standard library itself. Building an actual std.* implementation is out
// of scope for this module (see DESIGN.md); what matters for C8's overload
// resolution and C14's magic-method lookups is that these names resolve to
// a stable Symbol with the right shape, not that their bodies exist.
func (a *Analyzer) injectPreamble(m *sir.Module) {
	root := m.Scope(m.Root)
	pm := a.ensurePreambleModule()
	for _, name := range preambleFuncs {
		sym := a.preambleFuncSymbol(name)
		root.Insert(a.interner.Intern(name), sym)
		a.registerPreambleExternal(m, pm, sym)
	}
	for name := range preambleTypes {
		sym := a.preambleTypeSymbol(name)
		root.Insert(a.interner.Intern(name), sym)
		a.registerPreambleExternal(m, pm, sym)
	}
}

// registerPreambleExternal records that sym (allocated in the shared
// preamble module) is a foreign symbol when looked up starting from m, so
// resolveExternal correctly redirects to the preamble module's arena
// instead of misreading m's own Symbols arena at the same numeric index
// (spec §4.1 "per-module arenas" — a SymbolID is only unique within its
// owning module).
func (a *Analyzer) registerPreambleExternal(m, pm *sir.Module, sym sir.SymbolID) {
	if m == pm {
		return
	}
	a.externals[symKey{m, sym}] = externalTarget{mod: pm, sym: sym}
}

func (a *Analyzer) ensurePreambleModule() *sir.Module {
	if a.preambleModule == nil {
		a.preambleModule = sir.NewModule("<preamble>", source.NoFileID)
	}
	return a.preambleModule
}

func (a *Analyzer) preambleFuncSymbol(name string) sir.SymbolID {
	if id, ok := a.preambleSyms[name]; ok {
		return id
	}
	pm := a.ensurePreambleModule()
	nameID := a.interner.Intern(name)
	declID := pm.NewDecl(sir.NativeFuncDeclData{
		Name:    nameID,
		Linkage: "internal.preamble." + name,
	}, sir.NoDeclID, source.Span{})

	symData := sir.NativeFuncDeclSymbol{}
	symData.NameID = nameID
	symData.Decl = declID
	symID := pm.NewSymbol(symData, source.Span{})
	a.preambleSyms[name] = symID
	return symID
}

func (a *Analyzer) preambleTypeSymbol(name string) sir.SymbolID {
	if id, ok := a.preambleSyms[name]; ok {
		return id
	}
	pm := a.ensurePreambleModule()
	nameID := a.interner.Intern(name)
	table := pm.NewScope(sir.NoScopeID)
	declID := pm.NewDecl(sir.StructDefData{
		Name:          nameID,
		GenericParams: []source.StringID{a.interner.Intern("T")},
	}, sir.NoDeclID, source.Span{})

	symData := sir.StructDefSymbol{Table: table}
	symData.NameID = nameID
	symData.Decl = declID
	symID := pm.NewSymbol(symData, source.Span{})
	a.preambleSyms[name] = symID
	return symID
}
