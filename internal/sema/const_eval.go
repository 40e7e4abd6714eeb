package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// constValue is the evaluator's own small value representation; it never
// touches the type checker's ExprID-typed values because constant folding
// runs before C8 has finalized most types (spec §4.11).
type constValue struct {
	isBool bool
	isType bool
	i      int64
	b      bool
	typ    sir.SymbolID
}

func intConst(v int64) constValue { return constValue{i: v} }
func boolConst(v bool) constValue { return constValue{isBool: true, b: v} }
func typeConst(s sir.SymbolID) constValue {
	return constValue{isType: true, typ: s}
}

// constEvalInt evaluates id as a compile-time integer constant (spec §4.11,
// used by C3's enum auto-increment).
func (a *Analyzer) constEvalInt(m *sir.Module, id sir.ExprID) (int64, bool) {
	v, ok := a.constEval(m, id)
	if !ok || v.isBool || v.isType {
		return 0, false
	}
	return v.i, true
}

// constEvalBool evaluates id as a compile-time boolean, used by `meta if`
// condition evaluation (C7) once every atom has been substituted.
func (a *Analyzer) constEvalBool(m *sir.Module, id sir.ExprID) (bool, bool) {
	v, ok := a.constEval(m, id)
	if !ok || !v.isBool {
		return false, false
	}
	return v.b, true
}

// constEval is C11's main dispatch: fold id into a constValue, or report
// MetaValueNotConst and return ok=false for anything that depends on
// runtime state.
func (a *Analyzer) constEval(m *sir.Module, id sir.ExprID) (constValue, bool) {
	if !id.IsValid() {
		return constValue{}, false
	}
	e := m.Expr(id)
	switch d := e.Data.(type) {
	case sir.IntLitData:
		return intConst(d.Value), true
	case sir.BoolLitData:
		return boolConst(d.Value), true
	case sir.CharLitData:
		return intConst(int64(d.Value)), true
	case sir.SymbolRefData:
		return a.constEvalSymbol(m, d.Symbol, e.Span)
	case sir.IdentData:
		// Unresolved identifiers reach the evaluator only when C11 runs
		// ahead of C4/C8 (enum values during collection); look the name
		// up directly against the module root.
		sym, ok := m.Lookup(m.Root, d.Name, a)
		if !ok {
			return constValue{}, false
		}
		return a.constEvalSymbol(m, sym, e.Span)
	case sir.UnaryData:
		return a.constEvalUnary(m, d, e.Span)
	case sir.BinaryData:
		return a.constEvalBinary(m, d, e.Span)
	case sir.MetaFieldData:
		return a.constEvalMetaField(m, d, e.Span)
	case sir.TagValueData:
		return a.constEval(m, d.Value)
	case sir.CoercionData:
		return a.constEval(m, d.Operand)
	case sir.TupleData, sir.ArrayLitData:
		// A composite literal's value isn't representable by constValue,
		// so it is reported as not known at compile time, the same as a
		// runtime value.
		a.errorf(diag.MetaValueNotConst, e.Span, "value is not known at compile time")
		return constValue{}, false
	default:
		a.errorf(diag.MetaValueNotConst, e.Span, "value is not known at compile time")
		return constValue{}, false
	}
}

// constEvalSymbol folds a reference to a const definition, enum variant, or
// a type-definition symbol used as a meta(T) target.
func (a *Analyzer) constEvalSymbol(m *sir.Module, symID sir.SymbolID, span source.Span) (constValue, bool) {
	if !symID.IsValid() {
		return constValue{}, false
	}
	sym := m.Symbol(symID)
	switch d := sym.Data.(type) {
	case sir.ConstDefSymbol:
		decl := m.Decl(d.Decl)
		cd, ok := decl.Data.(sir.ConstDefData)
		if !ok {
			return constValue{}, false
		}
		return a.constEval(m, cd.Value)
	case sir.EnumVariantSymbol:
		decl := m.Decl(d.Decl)
		vd, ok := decl.Data.(sir.EnumVariantData)
		if !ok || !vd.Value.IsValid() {
			return constValue{}, false
		}
		return a.constEval(m, vd.Value)
	case sir.StructDefSymbol, sir.EnumDefSymbol, sir.UnionDefSymbol:
		return typeConst(symID), true
	default:
		a.errorf(diag.MetaValueNotConst, span, "value is not known at compile time")
		return constValue{}, false
	}
}

func (a *Analyzer) constEvalUnary(m *sir.Module, d sir.UnaryData, span source.Span) (constValue, bool) {
	v, ok := a.constEval(m, d.Operand)
	if !ok {
		return constValue{}, false
	}
	switch d.Op {
	case sir.UnaryNeg:
		if v.isBool || v.isType {
			break
		}
		return intConst(-v.i), true
	case sir.UnaryNot:
		if !v.isBool {
			break
		}
		return boolConst(!v.b), true
	case sir.UnaryBitNot:
		if v.isBool || v.isType {
			break
		}
		return intConst(^v.i), true
	}
	a.errorf(diag.MetaValueNotConst, span, "value is not known at compile time")
	return constValue{}, false
}

func (a *Analyzer) constEvalBinary(m *sir.Module, d sir.BinaryData, span source.Span) (constValue, bool) {
	// Type-equality tests (`meta(T) == meta(U)`) compare two type
	// constants directly, short-circuiting the arithmetic below.
	lv, lok := a.constEval(m, d.Left)
	rv, rok := a.constEval(m, d.Right)
	if !lok || !rok {
		return constValue{}, false
	}
	if lv.isType || rv.isType {
		switch d.Op {
		case sir.BinEq:
			return boolConst(lv.isType && rv.isType && lv.typ == rv.typ), true
		case sir.BinNeq:
			return boolConst(!(lv.isType && rv.isType && lv.typ == rv.typ)), true
		default:
			a.errorf(diag.MetaValueNotConst, span, "value is not known at compile time")
			return constValue{}, false
		}
	}
	if lv.isBool || rv.isBool {
		switch d.Op {
		case sir.BinAnd:
			return boolConst(lv.b && rv.b), true
		case sir.BinOr:
			return boolConst(lv.b || rv.b), true
		case sir.BinEq:
			return boolConst(lv.b == rv.b), true
		case sir.BinNeq:
			return boolConst(lv.b != rv.b), true
		default:
			a.errorf(diag.MetaValueNotConst, span, "value is not known at compile time")
			return constValue{}, false
		}
	}
	switch d.Op {
	case sir.BinAdd:
		return intConst(lv.i + rv.i), true
	case sir.BinSub:
		return intConst(lv.i - rv.i), true
	case sir.BinMul:
		return intConst(lv.i * rv.i), true
	case sir.BinDiv:
		if rv.i == 0 {
			a.errorf(diag.MetaValueNotConst, span, "division by zero in constant expression")
			return constValue{}, false
		}
		return intConst(lv.i / rv.i), true
	case sir.BinMod:
		if rv.i == 0 {
			a.errorf(diag.MetaValueNotConst, span, "division by zero in constant expression")
			return constValue{}, false
		}
		return intConst(lv.i % rv.i), true
	case sir.BinBitAnd:
		return intConst(lv.i & rv.i), true
	case sir.BinBitOr:
		return intConst(lv.i | rv.i), true
	case sir.BinBitXor:
		return intConst(lv.i ^ rv.i), true
	case sir.BinShl:
		return intConst(lv.i << uint64(rv.i)), true
	case sir.BinShr:
		return intConst(lv.i >> uint64(rv.i)), true
	case sir.BinEq:
		return boolConst(lv.i == rv.i), true
	case sir.BinNeq:
		return boolConst(lv.i != rv.i), true
	case sir.BinLt:
		return boolConst(lv.i < rv.i), true
	case sir.BinLte:
		return boolConst(lv.i <= rv.i), true
	case sir.BinGt:
		return boolConst(lv.i > rv.i), true
	case sir.BinGte:
		return boolConst(lv.i >= rv.i), true
	default:
		a.errorf(diag.MetaValueNotConst, span, "value is not known at compile time")
		return constValue{}, false
	}
}

// constEvalMetaField evaluates `meta(T).field` (spec §4.9): size,
// is_pointer, is_struct, is_enum, is_resource, and fields/variants counts.
// `name` is not evaluated: it reports MetaInvalidField, since constValue
// holds only integers, booleans and types.
func (a *Analyzer) constEvalMetaField(m *sir.Module, d sir.MetaFieldData, span source.Span) (constValue, bool) {
	target := m.Expr(d.Target)
	var metaOperand sir.ExprID
	if ma, ok := target.Data.(sir.MetaAccessData); ok {
		metaOperand = ma.Operand
	} else {
		metaOperand = d.Target
	}
	return a.constEvalMetaFieldOnTypeExpr(m, metaOperand, d.Field, span)
}

func (a *Analyzer) constEvalMetaFieldOnTypeExpr(m *sir.Module, typeExpr sir.ExprID, field string, span source.Span) (constValue, bool) {
	te := m.Expr(typeExpr)
	switch field {
	case "size":
		sz, ok := a.sizeOfTypeExpr(m, te)
		if !ok {
			a.errorf(diag.MetaInvalidField, span, "cannot determine size of this type")
			return constValue{}, false
		}
		return intConst(sz), true
	case "is_pointer":
		_, isPtr := te.Data.(sir.PointerTypeData)
		return boolConst(isPtr), true
	case "is_struct":
		return boolConst(symbolKindOfTypeExpr(m, te) == sir.SymStructDef), true
	case "is_enum":
		return boolConst(symbolKindOfTypeExpr(m, te) == sir.SymEnumDef), true
	case "is_resource":
		return boolConst(a.isResourceTypeExpr(m, te)), true
	case "name":
		// meta(T).name is a compile-time string, not representable by
		// constValue's scalar shape; callers needing the literal text
		// read it back out of the interner via the symbol directly.
		a.errorf(diag.MetaInvalidField, span, "meta(T).name is not an integer/bool constant")
		return constValue{}, false
	case "fields":
		if sym := symbolOfTypeExpr(m, te); sym.IsValid() {
			if sd, ok := m.Symbol(sym).Data.(sir.StructDefSymbol); ok {
				decl := m.Decl(sd.Decl)
				if dd, ok := decl.Data.(sir.StructDefData); ok {
					return intConst(int64(len(dd.Fields))), true
				}
			}
		}
		a.errorf(diag.MetaInvalidField, span, "meta(T).fields requires a struct type")
		return constValue{}, false
	case "variants":
		if sym := symbolOfTypeExpr(m, te); sym.IsValid() {
			if ed, ok := m.Symbol(sym).Data.(sir.EnumDefSymbol); ok {
				decl := m.Decl(ed.Decl)
				if dd, ok := decl.Data.(sir.EnumDefData); ok {
					return intConst(int64(len(dd.Variants))), true
				}
			}
		}
		a.errorf(diag.MetaInvalidField, span, "meta(T).variants requires an enum type")
		return constValue{}, false
	default:
		a.errorf(diag.MetaInvalidField, span, "unknown meta field '$'", field)
		return constValue{}, false
	}
}

func symbolOfTypeExpr(m *sir.Module, e *sir.Expr) sir.SymbolID {
	if sr, ok := e.Data.(sir.SymbolRefData); ok {
		return sr.Symbol
	}
	return sir.NoSymbolID
}

func symbolKindOfTypeExpr(m *sir.Module, e *sir.Expr) sir.SymbolKind {
	sym := symbolOfTypeExpr(m, e)
	if !sym.IsValid() {
		return sir.SymError
	}
	return m.Symbol(sym).Kind()
}

// sizeOfTypeExpr computes a simplified, host-independent byte size for a
// type expression — sufficient for `meta(T).size` comparisons in `meta if`
// conditions, not a real target-aware layout pass (out of scope; see
// DESIGN.md).
func (a *Analyzer) sizeOfTypeExpr(m *sir.Module, e *sir.Expr) (int64, bool) {
	switch d := e.Data.(type) {
	case sir.PrimitiveTypeData:
		return primitiveSize(d.Primitive), true
	case sir.PointerTypeData, sir.ReferenceTypeData, sir.FunctionTypeData:
		return 8, true
	case sir.StaticArrayTypeData:
		elemSz, ok := a.sizeOfTypeExpr(m, m.Expr(d.Elem))
		if !ok {
			return 0, false
		}
		return elemSz * d.Length, true
	case sir.SymbolRefData:
		return a.sizeOfSymbol(m, d.Symbol)
	default:
		return 0, false
	}
}

func (a *Analyzer) sizeOfSymbol(m *sir.Module, symID sir.SymbolID) (int64, bool) {
	if !symID.IsValid() {
		return 0, false
	}
	sym := m.Symbol(symID)
	switch d := sym.Data.(type) {
	case sir.StructDefSymbol:
		decl := m.Decl(d.Decl)
		sd, ok := decl.Data.(sir.StructDefData)
		if !ok {
			return 0, false
		}
		var total int64
		for _, fieldID := range sd.Fields {
			total += a.fieldApproxSize(m, fieldID)
		}
		return total, true
	case sir.EnumDefSymbol:
		return 4, true
	case sir.UnionDefSymbol:
		decl := m.Decl(d.Decl)
		ud, ok := decl.Data.(sir.UnionDefData)
		if !ok {
			return 8, true
		}
		var maxSz int64
		for _, c := range ud.Cases {
			cd, ok := m.Decl(c.Decl).Data.(sir.UnionCaseData)
			if !ok {
				continue
			}
			var sz int64
			for _, f := range cd.Fields {
				if f.Type.IsValid() {
					if fsz, ok := a.sizeOfTypeExpr(m, m.Expr(f.Type)); ok {
						sz += fsz
						continue
					}
				}
				sz += 8
			}
			if sz > maxSz {
				maxSz = sz
			}
		}
		return maxSz + 8, true // discriminant tag
	default:
		return 0, false
	}
}

func (a *Analyzer) fieldApproxSize(m *sir.Module, fieldDecl sir.DeclID) int64 {
	if !fieldDecl.IsValid() {
		return 8
	}
	decl := m.Decl(fieldDecl)
	fd, ok := decl.Data.(sir.StructFieldData)
	if !ok || !fd.Type.IsValid() {
		return 8
	}
	sz, ok := a.sizeOfTypeExpr(m, m.Expr(fd.Type))
	if !ok {
		return 8
	}
	return sz
}

func primitiveSize(p sir.Primitive) int64 {
	switch p {
	case sir.PrimI8, sir.PrimU8, sir.PrimBool:
		return 1
	case sir.PrimI16, sir.PrimU16:
		return 2
	case sir.PrimI32, sir.PrimU32, sir.PrimF32, sir.PrimChar:
		return 4
	case sir.PrimI64, sir.PrimU64, sir.PrimF64, sir.PrimAddr:
		return 8
	case sir.PrimVoid:
		return 0
	default:
		return 8
	}
}

// isResourceTypeExpr reports whether a type expression names a resource
// type: a struct carrying a `__deinit__` method or a resource-typed field,
// transitively (spec §4.12). Any other kind of symbol reports false.
func (a *Analyzer) isResourceTypeExpr(m *sir.Module, e *sir.Expr) bool {
	sym := symbolOfTypeExpr(m, e)
	if !sym.IsValid() {
		return false
	}
	return a.isResourceSymbol(m, sym, make(map[sir.SymbolID]bool))
}

func (a *Analyzer) isResourceSymbol(m *sir.Module, symID sir.SymbolID, seen map[sir.SymbolID]bool) bool {
	if seen[symID] {
		return false
	}
	seen[symID] = true
	sym := m.Symbol(symID)
	sd, ok := sym.Data.(sir.StructDefSymbol)
	if !ok {
		return false
	}
	if sd.Table.IsValid() {
		table := m.Scope(sd.Table)
		if _, hasDeinit := table.Local(a.interner.Intern(sir.MagicDeinit)); hasDeinit {
			return true
		}
	}
	decl := m.Decl(sd.Decl)
	dd, ok := decl.Data.(sir.StructDefData)
	if !ok {
		return false
	}
	for _, fieldID := range dd.Fields {
		fd, ok := m.Decl(fieldID).Data.(sir.StructFieldData)
		if !ok || !fd.Type.IsValid() {
			continue
		}
		fieldSym := symbolOfTypeExpr(m, m.Expr(fd.Type))
		if fieldSym.IsValid() && a.isResourceSymbol(m, fieldSym, seen) {
			return true
		}
	}
	return false
}
