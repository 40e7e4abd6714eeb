package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// ownerKind distinguishes the declaration context a function signature sits
// in, since a `self` receiver is only legal on a struct or proto method
// (spec §4.5).
type ownerKind int

const (
	ownerNone ownerKind = iota
	ownerStruct
	ownerProto
)

// analyzeDeclInterfaces runs C6 over every declaration in m: parameter and
// self-receiver shape checks, struct field/proto-impl layout, and
// proto-default method splicing into implementing structs (spec §4.5, S4,
// S6). A generic declaration's own parameter/field types are left
// unresolved here — they reference free generic names that bind only once
// C10 clones the declaration with a substitution environment in scope.
func (a *Analyzer) analyzeDeclInterfaces(m *sir.Module) {
	for _, id := range m.AllDecls {
		decl := m.Decl(id)
		switch d := decl.Data.(type) {
		case sir.FuncDefData:
			if !decl.Parent.IsValid() {
				a.analyzeFuncDefSignature(m, decl, d, ownerNone)
			}
		case sir.FuncDeclData:
			a.analyzeFuncDeclSignature(m, decl, d)
		case sir.StructDefData:
			a.analyzeStructInterface(m, id, decl, d)
		case sir.UnionDefData:
			if !decl.Parent.IsValid() {
				a.analyzeUnionInterface(m, d)
			}
		case sir.UnionCaseData:
			if !decl.Parent.IsValid() {
				a.errorf(diag.CaseOutsideUnion, decl.Span, "'case' is only allowed inside a union")
			}
		case sir.ConstDefData:
			if d.Type.IsValid() {
				a.analyzeTypeExpr(m, d.Type)
			}
		case sir.VarDeclData:
			if d.Type.IsValid() {
				a.analyzeTypeExpr(m, d.Type)
			}
		case sir.NativeVarDeclData:
			a.analyzeTypeExpr(m, d.Type)
		case sir.NativeFuncDeclData:
			a.analyzeTypeExpr(m, d.Result)
			for _, p := range d.Params {
				a.analyzeTypeExpr(m, p.Type)
			}
		}
	}
}

// analyzeFuncDefSignature checks self-receiver placement and, for a
// non-generic signature, resolves its parameter/result type expressions.
func (a *Analyzer) analyzeFuncDefSignature(m *sir.Module, decl *sir.Decl, d sir.FuncDefData, owner ownerKind) {
	a.checkSelfPlacement(decl.Span, d.Params, owner)
	if len(d.GenericParams) != 0 {
		return
	}
	a.analyzeTypeExpr(m, d.Result)
	for i := range d.Params {
		if d.Params[i].Self {
			continue
		}
		a.analyzeTypeExpr(m, d.Params[i].Type)
	}
}

// analyzeFuncDeclSignature checks that a bare, body-less function
// declaration only ever appears inside a proto (spec §4.5), and resolves
// its signature's types.
func (a *Analyzer) analyzeFuncDeclSignature(m *sir.Module, decl *sir.Decl, d sir.FuncDeclData) {
	owner := ownerNone
	if decl.Parent.IsValid() {
		if _, ok := m.Decl(decl.Parent).Data.(sir.ProtoDefData); ok {
			owner = ownerProto
		}
	}
	if owner != ownerProto {
		a.errorf(diag.FuncDeclOutsideProto, decl.Span, "a function declaration without a body is only allowed inside a proto")
	}
	a.checkSelfPlacement(decl.Span, d.Params, owner)
	if len(d.GenericParams) != 0 {
		return
	}
	a.analyzeTypeExpr(m, d.Result)
	for i := range d.Params {
		if d.Params[i].Self {
			continue
		}
		a.analyzeTypeExpr(m, d.Params[i].Type)
	}
}

func (a *Analyzer) checkSelfPlacement(span source.Span, params []sir.Param, owner ownerKind) {
	for i, p := range params {
		if !p.Self {
			continue
		}
		if owner == ownerNone {
			a.errorf(diag.SelfNotAllowed, span, "'self' is only allowed on a struct or proto method")
		}
		if i != 0 {
			a.errorf(diag.SelfNotFirst, span, "'self' must be the first parameter")
		}
	}
}

// analyzeStructInterface resolves a non-generic struct's field types,
// checks every method's self placement, and verifies each proto it claims
// to implement is satisfied — splicing a cloned default method in for any
// proto method the struct does not override (spec §4.5, S4, S6).
func (a *Analyzer) analyzeStructInterface(m *sir.Module, id sir.DeclID, decl *sir.Decl, d sir.StructDefData) {
	generic := len(d.GenericParams) != 0
	if !generic {
		for _, fieldID := range d.Fields {
			fd, ok := m.Decl(fieldID).Data.(sir.StructFieldData)
			if !ok {
				continue
			}
			a.analyzeTypeExpr(m, fd.Type)
		}
	}
	for _, methodID := range d.Methods {
		mdecl := m.Decl(methodID)
		md, ok := mdecl.Data.(sir.FuncDefData)
		if !ok {
			continue
		}
		owner := ownerStruct
		a.checkSelfPlacement(mdecl.Span, md.Params, owner)
		if !generic && len(md.GenericParams) == 0 {
			a.analyzeTypeExpr(m, md.Result)
			for i := range md.Params {
				if md.Params[i].Self {
					continue
				}
				a.analyzeTypeExpr(m, md.Params[i].Type)
			}
		}
	}
	if generic {
		// Conformance is checked per-specialization once field/method types
		// are substituted to concrete types; see specializer.go.
		return
	}
	sym := m.Symbol(d.Symbol)
	sdSym, ok := sym.Data.(sir.StructDefSymbol)
	if !ok || !sdSym.Table.IsValid() {
		return
	}
	mt := m.Scope(sdSym.Table)
	for _, protoSymID := range d.Impls {
		a.checkProtoImpl(m, id, decl, mt, protoSymID)
	}
}

func (a *Analyzer) analyzeUnionInterface(m *sir.Module, d sir.UnionDefData) {
	if len(d.GenericParams) != 0 {
		return
	}
	for _, c := range d.Cases {
		cd, ok := m.Decl(c.Decl).Data.(sir.UnionCaseData)
		if !ok {
			continue
		}
		for _, f := range cd.Fields {
			a.analyzeTypeExpr(m, f.Type)
		}
	}
}

// checkProtoImpl walks every method a proto declares, requiring the
// implementing struct to either override it explicitly (mt already has a
// binding — an explicit struct method always wins over a proto default,
// spec.md's first Open Question, see DESIGN.md) or receive a spliced clone
// of the proto's default body. A method with no default body and no
// override is a hard error.
func (a *Analyzer) checkProtoImpl(m *sir.Module, structID sir.DeclID, structDecl *sir.Decl, mt *sir.SymbolTable, protoSymID sir.SymbolID) {
	protoMod, realProto := a.resolveExternal(m, protoSymID)
	protoSym, ok := protoMod.Symbol(realProto).Data.(sir.ProtoDefSymbol)
	if !ok {
		a.errorf(diag.TypeExpectedProto, structDecl.Span, "'$' does not name a proto", a.interner.MustLookup(protoMod.Symbol(realProto).Name()))
		return
	}
	protoData, ok := protoMod.Decl(protoSym.Decl).Data.(sir.ProtoDefData)
	if !ok {
		return
	}
	for _, methodDeclID := range protoData.Methods {
		mdecl := protoMod.Decl(methodDeclID)
		name := methodName(mdecl.Data)
		if !name.IsValid() {
			continue
		}
		protoParams, hasDefault := methodParams(mdecl.Data)
		if existingID, has := mt.Local(name); has {
			a.checkSelfByvalAgreement(m, structDecl.Span, protoParams, existingID)
			continue
		}
		if !hasDefault {
			a.errorf(diag.TypeNoMethod, structDecl.Span, "missing implementation of '$' required by proto", a.interner.MustLookup(name))
			continue
		}
		if protoMod != m {
			// A cross-module default splice would need to reparent a decl
			// id owned by protoMod's arena into m's tree, which arena-local
			// ids cannot express; require an explicit override instead.
			a.errorf(diag.TypeNoMethod, structDecl.Span, "implement '$' explicitly: its proto default cannot be spliced across modules", a.interner.MustLookup(name))
			continue
		}
		md := mdecl.Data.(sir.FuncDefData)
		cloneID := a.cloneFuncDef(m, methodDeclID, md, structID, nil)
		sd := structDecl.Data.(sir.StructDefData)
		sd.Methods = append(sd.Methods, cloneID)
		structDecl.Data = sd
		clonedSymID := m.Decl(cloneID).Data.(sir.FuncDefData).Symbol
		mt.Insert(name, clonedSymID)
	}
}

func (a *Analyzer) checkSelfByvalAgreement(m *sir.Module, span source.Span, protoParams []sir.Param, implSymID sir.SymbolID) {
	if len(protoParams) == 0 || !protoParams[0].Self {
		return
	}
	implSym, ok := m.Symbol(implSymID).Data.(sir.FuncDefSymbol)
	if !ok {
		return
	}
	implDecl, ok := m.Decl(implSym.Decl).Data.(sir.FuncDefData)
	if !ok || len(implDecl.Params) == 0 || !implDecl.Params[0].Self {
		return
	}
	if implDecl.Params[0].ByVal != protoParams[0].ByVal {
		a.errorf(diag.SelfByvalMismatch, span, "'self' byval must match the proto method's declaration")
	}
}

func methodName(data sir.DeclData) source.StringID {
	switch d := data.(type) {
	case sir.FuncDefData:
		return d.Name
	case sir.FuncDeclData:
		return d.Name
	default:
		return source.NoStringID
	}
}

// methodParams returns a proto method's parameter list and whether it
// carries a default body (FuncDefData) as opposed to a bare signature
// (FuncDeclData).
func methodParams(data sir.DeclData) ([]sir.Param, bool) {
	switch d := data.(type) {
	case sir.FuncDefData:
		return d.Params, true
	case sir.FuncDeclData:
		return d.Params, false
	default:
		return nil, false
	}
}
