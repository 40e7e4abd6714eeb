package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// primKey is how the per-module primitive-type cache is addressed: each
// module gets its own canonical node per primitive so pointer/array type
// exprs elsewhere in that module can be compared structurally without
// walking into a shared cross-module cache.
type primKey struct {
	m *sir.Module
	p sir.Primitive
}

// primitiveType returns the canonical Expr id for primitive p within m,
// synthesizing it on first use.
func (a *Analyzer) primitiveType(m *sir.Module, p sir.Primitive) sir.ExprID {
	if a.primCache == nil {
		a.primCache = make(map[primKey]sir.ExprID)
	}
	key := primKey{m, p}
	if id, ok := a.primCache[key]; ok {
		return id
	}
	id := m.NewExpr(sir.PrimitiveTypeData{Primitive: p}, source.Span{})
	a.primCache[key] = id
	return id
}

func (a *Analyzer) boolType(m *sir.Module) sir.ExprID { return a.primitiveType(m, sir.PrimBool) }
func (a *Analyzer) voidType(m *sir.Module) sir.ExprID { return a.primitiveType(m, sir.PrimVoid) }
func (a *Analyzer) i32Type(m *sir.Module) sir.ExprID  { return a.primitiveType(m, sir.PrimI32) }
func (a *Analyzer) f32Type(m *sir.Module) sir.ExprID  { return a.primitiveType(m, sir.PrimF32) }

func (a *Analyzer) pointerType(m *sir.Module, pointee sir.ExprID, mut bool) sir.ExprID {
	return m.NewExpr(sir.PointerTypeData{Pointee: pointee, Mut: mut}, source.Span{})
}

// pseudoType returns the canonical pseudo-type marker Expr id for kind
// within m, synthesizing it on first use (mirrors primitiveType's cache).
func (a *Analyzer) pseudoType(m *sir.Module, kind sir.PseudoTypeKind) sir.ExprID {
	if a.pseudoCache == nil {
		a.pseudoCache = make(map[pseudoCacheKey]sir.ExprID)
	}
	key := pseudoCacheKey{m, kind}
	if id, ok := a.pseudoCache[key]; ok {
		return id
	}
	id := m.NewExpr(sir.PseudoTypeData{PKind: kind}, source.Span{})
	a.pseudoCache[key] = id
	return id
}

// pseudoCacheKey addresses the per-module pseudo-type marker cache.
type pseudoCacheKey struct {
	m *sir.Module
	k sir.PseudoTypeKind
}

// defaultPseudoType returns the concrete type a scalar pseudo literal
// settles on when nothing in context requests a specific type (spec
// §3.2's defaulting rules: untyped int -> i32, untyped float -> f32).
// Composite pseudo kinds (array/map/string literals) are finalized inline
// by their own analyzeExpr case, since picking their default requires the
// element/key/value type already inferred from the literal's contents.
func (a *Analyzer) defaultPseudoType(m *sir.Module, pk sir.PseudoTypeKind) sir.ExprID {
	switch pk {
	case sir.PseudoIntLiteral:
		return a.i32Type(m)
	case sir.PseudoFPLiteral:
		return a.f32Type(m)
	case sir.PseudoBoolLiteral:
		return a.boolType(m)
	case sir.PseudoNullLiteral:
		return a.pointerType(m, a.voidType(m), false)
	default:
		return sir.NoExprID
	}
}

// coerceTo finalizes id's value type against expected (spec §3.2/§4.6):
// a pseudo literal settles its Type field on expected when expected is one
// of the kind's legitimate coercion targets (or its default, absent one),
// reporting the kind's specialized cannot-coerce diagnostic otherwise; a
// reference/value mismatch that auto-ref/deref resolves wraps id in a
// CoercionData node and returns the wrapper's id; anything else that
// doesn't already match reports TypeMismatch. The caller must store the
// returned id back into whatever slot held the original, since a wrapped
// coercion is a new node.
func (a *Analyzer) coerceTo(m *sir.Module, id sir.ExprID, actual sir.ExprID, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	e := m.Expr(id)
	if pk, ok := pseudoKind(m, actual); ok {
		target := expected
		switch {
		case !target.IsValid():
			target = a.defaultPseudoType(m, pk)
		case !pseudoCoercesTo(m, pk, target):
			a.errorf(pseudoCoerceCode(pk), e.Span, "cannot coerce this literal to the expected type")
			target = a.defaultPseudoType(m, pk)
			if !target.IsValid() {
				target = expected
			}
		}
		e.Type = target
		return id, target
	}
	if !expected.IsValid() || typesEqual(m, actual, expected) {
		e.Type = actual
		return id, actual
	}
	if rt, ok := m.Expr(expected).Data.(sir.ReferenceTypeData); ok && typesEqual(m, actual, rt.Referent) {
		wrapped := m.NewExpr(sir.CoercionData{Operand: id, To: expected}, e.Span)
		m.Expr(wrapped).Type = expected
		return wrapped, expected
	}
	if rt, ok := m.Expr(actual).Data.(sir.ReferenceTypeData); ok && typesEqual(m, rt.Referent, expected) {
		wrapped := m.NewExpr(sir.CoercionData{Operand: id, To: expected}, e.Span)
		m.Expr(wrapped).Type = expected
		return wrapped, expected
	}
	a.errorf(diag.TypeMismatch, e.Span, "type mismatch")
	e.Type = actual
	return id, actual
}

// isPseudoType reports whether id is an untyped-literal marker.
func isPseudoType(m *sir.Module, id sir.ExprID) bool {
	if !id.IsValid() {
		return false
	}
	_, ok := m.Expr(id).Data.(sir.PseudoTypeData)
	return ok
}

func pseudoKind(m *sir.Module, id sir.ExprID) (sir.PseudoTypeKind, bool) {
	pt, ok := m.Expr(id).Data.(sir.PseudoTypeData)
	if !ok {
		return 0, false
	}
	return pt.PKind, true
}

// pseudoCoercesTo reports whether target is one of the finalized shapes pk
// may settle on: an int literal any integer or floating-point type, an fp
// literal any floating-point type, a string literal a `*u8` pointer or any
// struct type (the standard String struct is not told apart from other
// structs), an array literal an Array type, a map literal a Map type. Bool and null literals
// have no dedicated cannot-coerce diagnostic because their legal target is
// a single, unambiguous shape (bool, any pointer) rather than a short list
// worth a specialized message per spec §7.
func pseudoCoercesTo(m *sir.Module, pk sir.PseudoTypeKind, target sir.ExprID) bool {
	if !target.IsValid() {
		return false
	}
	switch pk {
	case sir.PseudoIntLiteral:
		return isIntegerType(m, target) || isFPType(m, target)
	case sir.PseudoFPLiteral:
		return isFPType(m, target)
	case sir.PseudoBoolLiteral:
		return isBoolType(m, target)
	case sir.PseudoNullLiteral:
		_, ok := m.Expr(target).Data.(sir.PointerTypeData)
		return ok
	case sir.PseudoStringLiteral:
		if pt, ok := m.Expr(target).Data.(sir.PointerTypeData); ok {
			return isU8Type(m, pt.Pointee)
		}
		_, ok := structSymbolOf(m, target, false)
		return ok
	case sir.PseudoArrayLiteral:
		_, ok := m.Expr(target).Data.(sir.ArrayTypeData)
		return ok
	case sir.PseudoMapLiteral:
		_, ok := m.Expr(target).Data.(sir.MapTypeData)
		return ok
	default:
		return false
	}
}

// pseudoCoerceCode selects the specialized cannot-coerce diagnostic spec §7
// reserves for pk, falling back to the generic TypeMismatch for the kinds
// that don't get one of their own (see pseudoCoercesTo).
func pseudoCoerceCode(pk sir.PseudoTypeKind) diag.Code {
	switch pk {
	case sir.PseudoIntLiteral:
		return diag.TypeCannotCoerceInt
	case sir.PseudoFPLiteral:
		return diag.TypeCannotCoerceFP
	case sir.PseudoStringLiteral:
		return diag.TypeCannotCoerceStr
	case sir.PseudoArrayLiteral:
		return diag.TypeCannotCoerceArray
	case sir.PseudoMapLiteral:
		return diag.TypeCannotCoerceMap
	default:
		return diag.TypeMismatch
	}
}

// isU8Type reports whether id names the u8 primitive, the pointee spec
// §3.2's "string→*u8" coercion target requires.
func isU8Type(m *sir.Module, id sir.ExprID) bool {
	pt, ok := m.Expr(id).Data.(sir.PrimitiveTypeData)
	return ok && pt.Primitive == sir.PrimU8
}

// typesEqual reports whether two finalized type expressions denote the same
// type, recursing through composite shapes and comparing named types by
// underlying symbol identity (spec §3.2, §4.6).
func typesEqual(m *sir.Module, a, b sir.ExprID) bool {
	if a == b {
		return true
	}
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	ea, eb := m.Expr(a), m.Expr(b)
	if ea.Kind() != eb.Kind() {
		return false
	}
	switch da := ea.Data.(type) {
	case sir.PrimitiveTypeData:
		db := eb.Data.(sir.PrimitiveTypeData)
		return da.Primitive == db.Primitive
	case sir.PointerTypeData:
		db := eb.Data.(sir.PointerTypeData)
		return typesEqual(m, da.Pointee, db.Pointee)
	case sir.ReferenceTypeData:
		db := eb.Data.(sir.ReferenceTypeData)
		return typesEqual(m, da.Referent, db.Referent)
	case sir.StaticArrayTypeData:
		db := eb.Data.(sir.StaticArrayTypeData)
		return da.Length == db.Length && typesEqual(m, da.Elem, db.Elem)
	case sir.FunctionTypeData:
		db := eb.Data.(sir.FunctionTypeData)
		if len(da.Params) != len(db.Params) || !typesEqual(m, da.Result, db.Result) {
			return false
		}
		for i := range da.Params {
			if !typesEqual(m, da.Params[i], db.Params[i]) {
				return false
			}
		}
		return true
	case sir.OptionalTypeData:
		db := eb.Data.(sir.OptionalTypeData)
		return typesEqual(m, da.Value, db.Value)
	case sir.ResultTypeData:
		db := eb.Data.(sir.ResultTypeData)
		return typesEqual(m, da.Value, db.Value) && typesEqual(m, da.Error, db.Error)
	case sir.ArrayTypeData:
		db := eb.Data.(sir.ArrayTypeData)
		return typesEqual(m, da.Elem, db.Elem)
	case sir.MapTypeData:
		db := eb.Data.(sir.MapTypeData)
		return typesEqual(m, da.Key, db.Key) && typesEqual(m, da.Value, db.Value)
	case sir.ClosureTypeData:
		db := eb.Data.(sir.ClosureTypeData)
		return typesEqual(m, da.Func, db.Func)
	case sir.SymbolRefData:
		db := eb.Data.(sir.SymbolRefData)
		return da.Symbol == db.Symbol
	case sir.PseudoTypeData:
		db := eb.Data.(sir.PseudoTypeData)
		return da.PKind == db.PKind
	default:
		return false
	}
}

// isIntegerType reports whether id names one of the fixed-width integer
// primitives (spec §4.6 cast table).
func isIntegerType(m *sir.Module, id sir.ExprID) bool {
	pt, ok := m.Expr(id).Data.(sir.PrimitiveTypeData)
	if !ok {
		return false
	}
	switch pt.Primitive {
	case sir.PrimI8, sir.PrimI16, sir.PrimI32, sir.PrimI64,
		sir.PrimU8, sir.PrimU16, sir.PrimU32, sir.PrimU64:
		return true
	default:
		return false
	}
}

func isFPType(m *sir.Module, id sir.ExprID) bool {
	pt, ok := m.Expr(id).Data.(sir.PrimitiveTypeData)
	return ok && (pt.Primitive == sir.PrimF32 || pt.Primitive == sir.PrimF64)
}

func isBoolType(m *sir.Module, id sir.ExprID) bool {
	pt, ok := m.Expr(id).Data.(sir.PrimitiveTypeData)
	return ok && pt.Primitive == sir.PrimBool
}

func isAddrType(m *sir.Module, id sir.ExprID) bool {
	pt, ok := m.Expr(id).Data.(sir.PrimitiveTypeData)
	return ok && pt.Primitive == sir.PrimAddr
}

// isEnumType reports whether id names an enum symbol, returning that
// symbol for the caller's convenience.
func isEnumType(m *sir.Module, id sir.ExprID) (sir.SymbolID, bool) {
	sr, ok := m.Expr(id).Data.(sir.SymbolRefData)
	if !ok {
		return sir.NoSymbolID, false
	}
	if _, ok := m.Symbol(sr.Symbol).Data.(sir.EnumDefSymbol); ok {
		return sr.Symbol, true
	}
	return sir.NoSymbolID, false
}

// structSymbolOf reports the StructDefSymbol a type expression names,
// looking through pointer/reference indirection when deref is true.
func structSymbolOf(m *sir.Module, id sir.ExprID, deref bool) (sir.SymbolID, bool) {
	if !id.IsValid() {
		return sir.NoSymbolID, false
	}
	e := m.Expr(id)
	if deref {
		switch d := e.Data.(type) {
		case sir.PointerTypeData:
			return structSymbolOf(m, d.Pointee, false)
		case sir.ReferenceTypeData:
			return structSymbolOf(m, d.Referent, false)
		}
	}
	sr, ok := e.Data.(sir.SymbolRefData)
	if !ok {
		return sir.NoSymbolID, false
	}
	if _, ok := m.Symbol(sr.Symbol).Data.(sir.StructDefSymbol); ok {
		return sr.Symbol, true
	}
	return sir.NoSymbolID, false
}
