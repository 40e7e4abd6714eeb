package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// collect walks m's top-level decl block, binding each declaration's name
// into m's root symbol table, promoting same-named FuncDef/FuncDecl entries
// into an OverloadSetSymbol, grouping struct/enum/union/proto members into
// their owner's slots with assigned field indices, and registering
// meta-if-guarded regions for on-demand expansion (spec §4.3).
func (a *Analyzer) collect(m *sir.Module) {
	root := m.Scope(m.Root)
	for _, id := range m.AllDecls {
		decl := m.Decl(id)
		if decl.Parent.IsValid() {
			// Handled as a member when its owner decl was visited.
			continue
		}
		a.collectInto(m, root, id)
	}
}

// collectInto binds the declaration at id into table, recursing into member
// decl-blocks (struct fields/methods, enum variants, union cases, proto
// methods) so each gets its own symbol and, where applicable, field index.
func (a *Analyzer) collectInto(m *sir.Module, table *sir.SymbolTable, id sir.DeclID) {
	decl := m.Decl(id)
	switch d := decl.Data.(type) {
	case sir.FuncDefData:
		sym := sir.FuncDefSymbol{}
		sym.NameID = d.Name
		sym.Decl = id
		symID := m.NewSymbol(sym, decl.Span)
		d.Symbol = symID
		decl.Data = d
		a.insertOverloadable(m, table, d.Name, symID, decl.Span)

	case sir.FuncDeclData:
		sym := sir.FuncDeclSymbol{}
		sym.NameID = d.Name
		sym.Decl = id
		symID := m.NewSymbol(sym, decl.Span)
		d.Symbol = symID
		decl.Data = d
		a.insertOverloadable(m, table, d.Name, symID, decl.Span)

	case sir.NativeFuncDeclData:
		sym := sir.NativeFuncDeclSymbol{}
		sym.NameID = d.Name
		sym.Decl = id
		symID := m.NewSymbol(sym, decl.Span)
		d.Symbol = symID
		decl.Data = d
		a.insertUnique(m, table, d.Name, symID, decl.Span)

	case sir.ConstDefData:
		sym := sir.ConstDefSymbol{}
		sym.NameID = d.Name
		sym.Decl = id
		symID := m.NewSymbol(sym, decl.Span)
		d.Symbol = symID
		decl.Data = d
		a.insertUnique(m, table, d.Name, symID, decl.Span)

	case sir.VarDeclData:
		sym := sir.VarDeclSymbol{}
		sym.NameID = d.Name
		sym.Decl = id
		symID := m.NewSymbol(sym, decl.Span)
		d.Symbol = symID
		decl.Data = d
		a.insertUnique(m, table, d.Name, symID, decl.Span)

	case sir.NativeVarDeclData:
		sym := sir.NativeVarDeclSymbol{}
		sym.NameID = d.Name
		sym.Decl = id
		symID := m.NewSymbol(sym, decl.Span)
		d.Symbol = symID
		decl.Data = d
		a.insertUnique(m, table, d.Name, symID, decl.Span)

	case sir.TypeAliasData:
		sym := sir.TypeAliasSymbol{}
		sym.NameID = d.Name
		sym.Decl = id
		symID := m.NewSymbol(sym, decl.Span)
		d.Symbol = symID
		decl.Data = d
		a.insertUnique(m, table, d.Name, symID, decl.Span)

	case sir.StructDefData:
		a.collectStructDef(m, table, id, d, decl.Span)

	case sir.EnumDefData:
		a.collectEnumDef(m, table, id, d, decl.Span)

	case sir.UnionDefData:
		a.collectUnionDef(m, table, id, d, decl.Span)

	case sir.ProtoDefData:
		a.collectProtoDef(m, table, id, d, decl.Span)

	case sir.UseDeclData:
		a.collectUseDecl(m, table, d)

	case sir.MetaIfDeclData:
		a.collectMetaIfDecl(m, table, id, d)

	case sir.ErrorDeclData, sir.ExpandedMetaDeclData:
		// Nothing to bind.
	}
}

// insertUnique inserts name -> sym, reporting a redefinition diagnostic on
// collision (spec §4.3).
func (a *Analyzer) insertUnique(m *sir.Module, table *sir.SymbolTable, name source.StringID, sym sir.SymbolID, span source.Span) {
	if table.Insert(name, sym) {
		return
	}
	a.errorf(diag.StructRedefinition, span, "redefinition of '$'", a.interner.MustLookup(name))
}

// insertOverloadable inserts a function-like symbol, promoting the name to
// an OverloadSetSymbol on a second or later insertion rather than reporting
// a redefinition (spec §3.4, §4.3).
func (a *Analyzer) insertOverloadable(m *sir.Module, table *sir.SymbolTable, name source.StringID, sym sir.SymbolID, span source.Span) {
	existingID, ok := table.Local(name)
	if !ok {
		table.Insert(name, sym)
		return
	}
	existing := m.Symbol(existingID)
	if os, ok := existing.Data.(sir.OverloadSetSymbol); ok {
		os.Overloads = append(os.Overloads, sym)
		existing.Data = os
		return
	}
	switch existing.Kind() {
	case sir.SymFuncDef, sir.SymFuncDecl:
		newSet := sir.OverloadSetSymbol{Overloads: []sir.SymbolID{existingID, sym}}
		newSet.NameID = name
		setID := m.NewSymbol(newSet, span)
		table.Replace(name, setID)
	default:
		a.errorf(diag.StructRedefinition, span, "redefinition of '$'", a.interner.MustLookup(name))
	}
}

func (a *Analyzer) collectStructDef(m *sir.Module, table *sir.SymbolTable, id sir.DeclID, d sir.StructDefData, span source.Span) {
	memberTable := m.NewScope(sir.NoScopeID)
	sym := sir.StructDefSymbol{Table: memberTable}
	sym.NameID = d.Name
	sym.Decl = id
	symID := m.NewSymbol(sym, span)
	d.Symbol = symID

	mt := m.Scope(memberTable)
	var fieldIdx sir.FieldIndex
	for _, childID := range m.AllDecls {
		child := m.Decl(childID)
		if child.Parent != id {
			continue
		}
		switch cd := child.Data.(type) {
		case sir.StructFieldData:
			cd.Index = fieldIdx
			fieldIdx++
			fsym := sir.StructFieldSymbol{}
			fsym.NameID = cd.Name
			fsym.Decl = childID
			fsymID := m.NewSymbol(fsym, child.Span)
			cd.Symbol = fsymID
			child.Data = cd
			a.insertUnique(m, mt, cd.Name, fsymID, child.Span)
			d.Fields = append(d.Fields, childID)
		case sir.FuncDefData:
			fsymID := m.NewSymbol(funcDefSymbolFor(cd.Name, childID), child.Span)
			cd.Symbol = fsymID
			child.Data = cd
			a.insertOverloadable(m, mt, cd.Name, fsymID, child.Span)
			d.Methods = append(d.Methods, childID)
		}
	}
	decl := m.Decl(id)
	d.Symbol = symID
	decl.Data = d
	a.insertUnique(m, table, d.Name, symID, span)
}

func funcDefSymbolFor(name source.StringID, decl sir.DeclID) sir.FuncDefSymbol {
	s := sir.FuncDefSymbol{}
	s.NameID = name
	s.Decl = decl
	return s
}

func (a *Analyzer) collectEnumDef(m *sir.Module, table *sir.SymbolTable, id sir.DeclID, d sir.EnumDefData, span source.Span) {
	memberTable := m.NewScope(sir.NoScopeID)
	sym := sir.EnumDefSymbol{Table: memberTable}
	sym.NameID = d.Name
	sym.Decl = id
	symID := m.NewSymbol(sym, span)

	mt := m.Scope(memberTable)
	var next int64
	for _, childID := range m.AllDecls {
		child := m.Decl(childID)
		if child.Parent != id {
			continue
		}
		cd, ok := child.Data.(sir.EnumVariantData)
		if !ok {
			continue
		}
		value := next
		if cd.Value.IsValid() {
			if v, ok := a.constEvalInt(m, cd.Value); ok {
				value = v
			}
		}
		next = value + 1

		vsym := sir.EnumVariantSymbol{}
		vsym.NameID = cd.Name
		vsym.Decl = childID
		vsymID := m.NewSymbol(vsym, child.Span)
		cd.Symbol = vsymID
		child.Data = cd
		a.insertUnique(m, mt, cd.Name, vsymID, child.Span)
		d.Variants = append(d.Variants, sir.EnumVariantRef{Name: cd.Name, Value: value, Decl: childID})
	}
	decl := m.Decl(id)
	d.Symbol = symID
	decl.Data = d
	a.insertUnique(m, table, d.Name, symID, span)
}

func (a *Analyzer) collectUnionDef(m *sir.Module, table *sir.SymbolTable, id sir.DeclID, d sir.UnionDefData, span source.Span) {
	memberTable := m.NewScope(sir.NoScopeID)
	sym := sir.UnionDefSymbol{Table: memberTable}
	sym.NameID = d.Name
	sym.Decl = id
	symID := m.NewSymbol(sym, span)

	mt := m.Scope(memberTable)
	for _, childID := range m.AllDecls {
		child := m.Decl(childID)
		if child.Parent != id {
			continue
		}
		cd, ok := child.Data.(sir.UnionCaseData)
		if !ok {
			continue
		}
		csym := sir.UnionCaseSymbol{}
		csym.NameID = cd.Name
		csym.Decl = childID
		csymID := m.NewSymbol(csym, child.Span)
		cd.Symbol = csymID
		child.Data = cd
		a.insertUnique(m, mt, cd.Name, csymID, child.Span)
		d.Cases = append(d.Cases, sir.UnionCaseRef{Name: cd.Name, Decl: childID})
	}
	decl := m.Decl(id)
	d.Symbol = symID
	decl.Data = d
	a.insertUnique(m, table, d.Name, symID, span)
}

// collectProtoDef groups a proto's method signatures, keeping an explicit
// FuncDef (default body) distinct from a bare FuncDecl so C6 can splice
// unimplemented defaults into implementing structs (spec §4.5, S4).
func (a *Analyzer) collectProtoDef(m *sir.Module, table *sir.SymbolTable, id sir.DeclID, d sir.ProtoDefData, span source.Span) {
	memberTable := m.NewScope(sir.NoScopeID)
	sym := sir.ProtoDefSymbol{Table: memberTable}
	sym.NameID = d.Name
	sym.Decl = id
	symID := m.NewSymbol(sym, span)

	mt := m.Scope(memberTable)
	for _, childID := range m.AllDecls {
		child := m.Decl(childID)
		if child.Parent != id {
			continue
		}
		switch cd := child.Data.(type) {
		case sir.FuncDeclData:
			fsym := sir.FuncDeclSymbol{}
			fsym.NameID = cd.Name
			fsym.Decl = childID
			fsymID := m.NewSymbol(fsym, child.Span)
			cd.Symbol = fsymID
			child.Data = cd
			a.insertUnique(m, mt, cd.Name, fsymID, child.Span)
			d.Methods = append(d.Methods, childID)
		case sir.FuncDefData:
			fsymID := m.NewSymbol(funcDefSymbolFor(cd.Name, childID), child.Span)
			cd.Symbol = fsymID
			child.Data = cd
			a.insertUnique(m, mt, cd.Name, fsymID, child.Span)
			d.Methods = append(d.Methods, childID)
		}
	}
	decl := m.Decl(id)
	d.Symbol = symID
	decl.Data = d
	a.insertUnique(m, table, d.Name, symID, span)
}

// collectUseDecl binds every leaf of d's use-tree into table as an
// unresolved UseIdentSymbol/UseRebindSymbol; C4 fills in Target.
func (a *Analyzer) collectUseDecl(m *sir.Module, table *sir.SymbolTable, d sir.UseDeclData) {
	a.collectUseItem(m, table, d.Root)
}

func (a *Analyzer) collectUseItem(m *sir.Module, table *sir.SymbolTable, id sir.UseItemID) {
	item := m.UseItem(id)
	switch it := item.Data.(type) {
	case sir.UseIdentData:
		sym := sir.UseIdentSymbol{}
		sym.NameID = it.Name
		symID := m.NewSymbol(sym, item.Span)
		a.insertUnique(m, table, it.Name, symID, item.Span)
	case sir.UseRebindData:
		sym := sir.UseRebindSymbol{Original: it.Ident}
		sym.NameID = it.LocalName
		symID := m.NewSymbol(sym, item.Span)
		a.insertUnique(m, table, it.LocalName, symID, item.Span)
	case sir.UseDotData:
		// Only the resolved tail is ever referenceable directly; C4 walks
		// LHS/RHS to compute it.
	case sir.UseListData:
		for _, child := range it.Items {
			a.collectUseItem(m, table, child)
		}
	}
}

// collectMetaIfDecl registers every name introduced by any branch of a
// decl-level `meta if` as guarded rather than inserting it directly, so a
// lookup triggers on-demand expansion through Analyzer.ExpandGuarded
// (spec §4.3, §4.7, §9).
func (a *Analyzer) collectMetaIfDecl(m *sir.Module, table *sir.SymbolTable, id sir.DeclID, d sir.MetaIfDeclData) {
	idx := a.nextGuardIdx
	a.nextGuardIdx++
	a.guards[idx] = guardSite{module: m, decl: id}

	for _, branch := range d.Branches {
		for _, childID := range branch.Decls {
			name := declName(m, childID)
			if name.IsValid() {
				table.Guard(name, idx)
			}
		}
	}
}

// declName returns the name a top-level decl binds, or NoStringID for decls
// that do not introduce a name directly (e.g. a nested meta-if).
func declName(m *sir.Module, id sir.DeclID) source.StringID {
	switch d := m.Decl(id).Data.(type) {
	case sir.FuncDefData:
		return d.Name
	case sir.FuncDeclData:
		return d.Name
	case sir.NativeFuncDeclData:
		return d.Name
	case sir.ConstDefData:
		return d.Name
	case sir.StructDefData:
		return d.Name
	case sir.VarDeclData:
		return d.Name
	case sir.NativeVarDeclData:
		return d.Name
	case sir.EnumDefData:
		return d.Name
	case sir.UnionDefData:
		return d.Name
	case sir.ProtoDefData:
		return d.Name
	case sir.TypeAliasData:
		return d.Name
	default:
		return source.NoStringID
	}
}
