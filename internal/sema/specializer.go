package sema

import (
	"fmt"
	"strings"

	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// specKey addresses the specialization cache by (defining module, generic
// decl, substituted-argument key) so the lookup is deterministic regardless
// of which module triggered the specialization (spec §5).
type specKey struct {
	defMod *sir.Module
	decl   sir.DeclID
	args   string
}

// specialize clones the generic declaration named by genericSym (resolved
// through any `use` proxy first) with the given type arguments substituted,
// analyzing and caching the clone, per spec §4.6/§10: "specialization of a
// generic defined in module A ... allocates the clone in A's arena."
func (a *Analyzer) specialize(callerMod *sir.Module, genericSym sir.SymbolID, args []sir.ExprID, span source.Span) (sir.SymbolID, bool) {
	defMod, realSym := a.resolveExternal(callerMod, genericSym)
	if !realSym.IsValid() {
		return sir.NoSymbolID, false
	}
	sym := defMod.Symbol(realSym)
	switch d := sym.Data.(type) {
	case sir.StructDefSymbol:
		return a.specializeStruct(defMod, realSym, d, args, span)
	case sir.FuncDefSymbol:
		return a.specializeFunc(defMod, realSym, d, args, span)
	case sir.UnionDefSymbol:
		return a.specializeUnion(defMod, realSym, d, args, span)
	default:
		a.errorf(diag.SigUnexpectedGenericArgCount, span, "'$' is not generic", a.interner.MustLookup(sym.Name()))
		return sir.NoSymbolID, false
	}
}

func argsKey(m *sir.Module, args []sir.ExprID) string {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(typeKeyOf(m, a))
	}
	return b.String()
}

func typeKeyOf(m *sir.Module, id sir.ExprID) string {
	if !id.IsValid() {
		return "_"
	}
	e := m.Expr(id)
	switch d := e.Data.(type) {
	case sir.PrimitiveTypeData:
		return fmt.Sprintf("p%d", d.Primitive)
	case sir.PointerTypeData:
		return "*" + typeKeyOf(m, d.Pointee)
	case sir.ReferenceTypeData:
		return "&" + typeKeyOf(m, d.Referent)
	case sir.SymbolRefData:
		return fmt.Sprintf("s%p:%d", m, d.Symbol)
	case sir.StaticArrayTypeData:
		return fmt.Sprintf("[%d]%s", d.Length, typeKeyOf(m, d.Elem))
	default:
		return fmt.Sprintf("k%d", e.Kind())
	}
}

// SpecializationKeys returns a flattened (module path, decl index, args
// key) string per generic specialization this Analyzer produced, in no
// particular order — the join point a driver uses to persist/consult the
// on-disk specialization cache (SPEC_FULL.md §6's D6) without this package
// needing to depend on that cache's storage format.
func (a *Analyzer) SpecializationKeys() []string {
	out := make([]string, 0, len(a.specCache))
	for k := range a.specCache {
		out = append(out, fmt.Sprintf("%s#%d:%s", k.defMod.Path, k.decl, k.args))
	}
	return out
}

// ensureSpecCache lazily allocates the Analyzer-wide specialization cache.
func (a *Analyzer) ensureSpecCache() map[specKey]sir.SymbolID {
	if a.specCache == nil {
		a.specCache = make(map[specKey]sir.SymbolID)
	}
	return a.specCache
}

func (a *Analyzer) specializeStruct(defMod *sir.Module, genSym sir.SymbolID, d sir.StructDefSymbol, args []sir.ExprID, span source.Span) (sir.SymbolID, bool) {
	origDecl := defMod.Decl(d.Decl)
	origData, ok := origDecl.Data.(sir.StructDefData)
	if !ok {
		return sir.NoSymbolID, false
	}
	if len(args) != len(origData.GenericParams) {
		a.errorf(diag.SigUnexpectedGenericArgCount, span, "expected $ generic argument(s), got $", len(origData.GenericParams), len(args))
		return sir.NoSymbolID, false
	}
	cache := a.ensureSpecCache()
	key := specKey{defMod, d.Decl, argsKey(defMod, args)}
	if cached, ok := cache[key]; ok {
		return cached, true
	}

	env := make(map[source.StringID]sir.ExprID, len(args))
	for i, p := range origData.GenericParams {
		env[p] = args[i]
	}

	memberTable := defMod.NewScope(sir.NoScopeID)
	cloneDecl := defMod.NewDecl(sir.StructDefData{
		Name:            origData.Name,
		SpecializedFrom: d.Decl,
		SpecializeArgs:  args,
	}, origDecl.Parent, origDecl.Span)
	cloneSym := defMod.NewSymbol(sir.StructDefSymbol{Table: memberTable}, span)
	cache[key] = cloneSym // register before recursing, guards against infinite recursive specialization

	a.scopes.Push(&sir.AnalysisScope{Generics: env})
	defer a.scopes.Pop()

	cd := defMod.Decl(cloneDecl)
	cdData := cd.Data.(sir.StructDefData)
	mt := defMod.Scope(memberTable)
	for _, origFieldID := range origData.Fields {
		fd, ok := defMod.Decl(origFieldID).Data.(sir.StructFieldData)
		if !ok {
			continue
		}
		clonedType := a.substituteType(defMod, fd.Type, env)
		fieldDecl := defMod.NewDecl(sir.StructFieldData{Name: fd.Name, Type: clonedType, Index: fd.Index}, cloneDecl, defMod.Decl(origFieldID).Span)
		fsym := sir.StructFieldSymbol{}
		fsym.NameID = fd.Name
		fsym.Decl = fieldDecl
		fsymID := defMod.NewSymbol(fsym, defMod.Decl(origFieldID).Span)
		fdd := defMod.Decl(fieldDecl).Data.(sir.StructFieldData)
		fdd.Symbol = fsymID
		defMod.Decl(fieldDecl).Data = fdd
		mt.Insert(fd.Name, fsymID)
		cdData.Fields = append(cdData.Fields, fieldDecl)
		a.analyzeTypeExpr(defMod, clonedType)
	}
	for _, origMethodID := range origData.Methods {
		md, ok := defMod.Decl(origMethodID).Data.(sir.FuncDefData)
		if !ok {
			continue
		}
		cloneMethod := a.cloneFuncDef(defMod, origMethodID, md, cloneDecl, env)
		cdData.Methods = append(cdData.Methods, cloneMethod)
		msym := defMod.Symbol(defMod.Decl(cloneMethod).Data.(sir.FuncDefData).Symbol)
		mt.Insert(msym.Name(), defMod.Decl(cloneMethod).Data.(sir.FuncDefData).Symbol)
	}
	cd.Data = cdData
	sdSym := defMod.Symbol(cloneSym).Data.(sir.StructDefSymbol)
	sdSym.Decl = cloneDecl
	sdSym.NameID = origData.Name
	defMod.Symbol(cloneSym).Data = sdSym
	cdData.Symbol = cloneSym
	cd.Data = cdData

	for _, methodID := range cdData.Methods {
		a.analyzeFuncBody(defMod, methodID)
	}

	return cloneSym, true
}

func (a *Analyzer) specializeUnion(defMod *sir.Module, genSym sir.SymbolID, d sir.UnionDefSymbol, args []sir.ExprID, span source.Span) (sir.SymbolID, bool) {
	origDecl := defMod.Decl(d.Decl)
	origData, ok := origDecl.Data.(sir.UnionDefData)
	if !ok {
		return sir.NoSymbolID, false
	}
	if len(args) != len(origData.GenericParams) {
		a.errorf(diag.SigUnexpectedGenericArgCount, span, "expected $ generic argument(s), got $", len(origData.GenericParams), len(args))
		return sir.NoSymbolID, false
	}
	cache := a.ensureSpecCache()
	key := specKey{defMod, d.Decl, argsKey(defMod, args)}
	if cached, ok := cache[key]; ok {
		return cached, true
	}
	env := make(map[source.StringID]sir.ExprID, len(args))
	for i, p := range origData.GenericParams {
		env[p] = args[i]
	}
	memberTable := defMod.NewScope(sir.NoScopeID)
	cloneDecl := defMod.NewDecl(sir.UnionDefData{Name: origData.Name, SpecializedFrom: d.Decl, SpecializeArgs: args}, origDecl.Parent, origDecl.Span)
	cloneSym := defMod.NewSymbol(sir.UnionDefSymbol{Table: memberTable}, span)
	cache[key] = cloneSym
	mt := defMod.Scope(memberTable)
	cd := defMod.Decl(cloneDecl)
	cdData := cd.Data.(sir.UnionDefData)
	for _, c := range origData.Cases {
		origCase, ok := defMod.Decl(c.Decl).Data.(sir.UnionCaseData)
		if !ok {
			continue
		}
		newFields := make([]sir.StructFieldData, len(origCase.Fields))
		for i, f := range origCase.Fields {
			newFields[i] = f
			newFields[i].Type = a.substituteType(defMod, f.Type, env)
		}
		caseDecl := defMod.NewDecl(sir.UnionCaseData{Name: origCase.Name, Fields: newFields}, cloneDecl, defMod.Decl(c.Decl).Span)
		csym := sir.UnionCaseSymbol{}
		csym.NameID = origCase.Name
		csym.Decl = caseDecl
		csymID := defMod.NewSymbol(csym, defMod.Decl(c.Decl).Span)
		caseData := defMod.Decl(caseDecl).Data.(sir.UnionCaseData)
		caseData.Symbol = csymID
		defMod.Decl(caseDecl).Data = caseData
		mt.Insert(origCase.Name, csymID)
		cdData.Cases = append(cdData.Cases, sir.UnionCaseRef{Name: origCase.Name, Decl: caseDecl})
	}
	cdData.Symbol = cloneSym
	cd.Data = cdData
	sdSym := defMod.Symbol(cloneSym).Data.(sir.UnionDefSymbol)
	sdSym.Decl = cloneDecl
	sdSym.NameID = origData.Name
	defMod.Symbol(cloneSym).Data = sdSym
	return cloneSym, true
}

func (a *Analyzer) specializeFunc(defMod *sir.Module, genSym sir.SymbolID, d sir.FuncDefSymbol, args []sir.ExprID, span source.Span) (sir.SymbolID, bool) {
	origDecl := defMod.Decl(d.Decl)
	origData, ok := origDecl.Data.(sir.FuncDefData)
	if !ok {
		return sir.NoSymbolID, false
	}
	if len(args) != len(origData.GenericParams) {
		a.errorf(diag.SigUnexpectedGenericArgCount, span, "expected $ generic argument(s), got $", len(origData.GenericParams), len(args))
		return sir.NoSymbolID, false
	}
	cache := a.ensureSpecCache()
	key := specKey{defMod, d.Decl, argsKey(defMod, args)}
	if cached, ok := cache[key]; ok {
		return cached, true
	}
	env := make(map[source.StringID]sir.ExprID, len(args))
	for i, p := range origData.GenericParams {
		env[p] = args[i]
	}
	cloneDeclID := a.cloneFuncDef(defMod, d.Decl, origData, origDecl.Parent, env)
	cloneSymID := defMod.Decl(cloneDeclID).Data.(sir.FuncDefData).Symbol
	cache[key] = cloneSymID

	a.scopes.Push(&sir.AnalysisScope{Generics: env})
	a.analyzeFuncBody(defMod, cloneDeclID)
	a.scopes.Pop()

	return cloneSymID, true
}

// cloneFuncDef clones a FuncDef's signature (substituting generic param
// types through env) and body statement tree, registering a fresh symbol
// for the clone. The body tree itself is reused by reference rather than
// deep-cloned statement-by-statement when env is empty (ordinary method
// promotion into a specialized struct), matching spec §3.5's "cloning
// preserves AST-node pointers so diagnostics report original locations".
func (a *Analyzer) cloneFuncDef(m *sir.Module, origDeclID sir.DeclID, origData sir.FuncDefData, parent sir.DeclID, env map[source.StringID]sir.ExprID) sir.DeclID {
	origDecl := m.Decl(origDeclID)
	params := make([]sir.Param, len(origData.Params))
	for i, p := range origData.Params {
		params[i] = p
		params[i].Type = a.substituteType(m, p.Type, env)
		params[i].Symbol = sir.NoSymbolID
	}
	result := a.substituteType(m, origData.Result, env)

	cloneID := m.NewDecl(sir.FuncDefData{
		Name:            origData.Name,
		Params:          params,
		Result:          result,
		Body:            origData.Body,
		SpecializedFrom: origDeclID,
	}, parent, origDecl.Span)
	sym := sir.FuncDefSymbol{}
	sym.NameID = origData.Name
	sym.Decl = cloneID
	symID := m.NewSymbol(sym, origDecl.Span)
	cd := m.Decl(cloneID)
	cdd := cd.Data.(sir.FuncDefData)
	cdd.Symbol = symID
	cd.Data = cdd
	return cloneID
}

// substituteType returns a type expr equivalent to id with generic
// parameter names bound in env replaced by their arguments. It walks
// identifiers, generic-argument symbol refs, and pointer, reference,
// static-array, array and optional shapes, cloning a shape only when it
// contains a substitution; any other shape (function, map, result, closure
// and the like) is returned unchanged, without looking inside it.
func (a *Analyzer) substituteType(m *sir.Module, id sir.ExprID, env map[source.StringID]sir.ExprID) sir.ExprID {
	if !id.IsValid() || len(env) == 0 {
		return id
	}
	e := m.Expr(id)
	switch d := e.Data.(type) {
	case sir.IdentData:
		if repl, ok := env[d.Name]; ok {
			return repl
		}
		return id
	case sir.SymbolRefData:
		sym := m.Symbol(d.Symbol)
		if ga, ok := sym.Data.(sir.GenericArgSymbol); ok {
			if repl, ok := env[ga.NameID]; ok {
				return repl
			}
		}
		return id
	case sir.PointerTypeData:
		pointee := a.substituteType(m, d.Pointee, env)
		if pointee == d.Pointee {
			return id
		}
		return m.NewExpr(sir.PointerTypeData{Pointee: pointee, Mut: d.Mut}, e.Span)
	case sir.ReferenceTypeData:
		referent := a.substituteType(m, d.Referent, env)
		if referent == d.Referent {
			return id
		}
		return m.NewExpr(sir.ReferenceTypeData{Referent: referent, Mut: d.Mut}, e.Span)
	case sir.StaticArrayTypeData:
		elem := a.substituteType(m, d.Elem, env)
		if elem == d.Elem {
			return id
		}
		return m.NewExpr(sir.StaticArrayTypeData{Elem: elem, Length: d.Length}, e.Span)
	case sir.ArrayTypeData:
		elem := a.substituteType(m, d.Elem, env)
		if elem == d.Elem {
			return id
		}
		return m.NewExpr(sir.ArrayTypeData{Elem: elem}, e.Span)
	case sir.OptionalTypeData:
		val := a.substituteType(m, d.Value, env)
		if val == d.Value {
			return id
		}
		return m.NewExpr(sir.OptionalTypeData{Value: val}, e.Span)
	default:
		return id
	}
}
