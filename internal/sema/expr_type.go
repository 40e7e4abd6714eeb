package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
)

// analyzeTypeExpr resolves id as a type-position expression (spec §4.5,
// "call into C8 in 'type' context"): identifiers bind to struct/enum/
// union/alias/generic-arg symbols, unresolved star/bracket/dot forms are
// rewritten into their type-expr shapes, and already-shaped type exprs have
// their nested positions resolved recursively.
func (a *Analyzer) analyzeTypeExpr(m *sir.Module, id sir.ExprID) bool {
	if !id.IsValid() {
		return true
	}
	e := m.Expr(id)
	switch d := e.Data.(type) {
	case sir.IdentData:
		if top := a.scopes.Top(); top != nil {
			if genExpr, ok := top.Generics[d.Name]; ok {
				e.Data = m.Expr(genExpr).Data
				return true
			}
		}
		return a.resolveTypeIdent(m, id)

	case sir.StarUnresolvedData:
		if !a.analyzeTypeExpr(m, d.Operand) {
			return false
		}
		e.Data = sir.PointerTypeData{Pointee: d.Operand}
		return true

	case sir.DotUnresolvedData:
		if !a.analyzeTypeExpr(m, d.LHS) {
			return false
		}
		lhsE := m.Expr(d.LHS)
		sr, ok := lhsE.Data.(sir.SymbolRefData)
		if !ok {
			a.errorf(diag.TypeMismatch, e.Span, "expected a type or module on the left of '.'")
			return false
		}
		tmod, scope, ok := a.tableOf(m, sr.Symbol)
		if !ok {
			a.errorf(diag.TypeNoField, e.Span, "'$' has no members", a.interner.MustLookup(d.RHS))
			return false
		}
		symID, ok := tmod.Lookup(scope, d.RHS, a)
		if !ok {
			a.errorf(diag.StructSymbolNotInParent, e.Span, "no member '$' here", a.interner.MustLookup(d.RHS))
			return false
		}
		proxy := symID
		if tmod != m {
			proxy = a.bindExternal(m, d.RHS, e.Span, tmod, symID)
		}
		e.Data = sir.SymbolRefData{Symbol: proxy}
		return true

	case sir.BracketUnresolvedData:
		if !a.analyzeTypeExpr(m, d.Callee) {
			return false
		}
		for _, arg := range d.Args {
			a.analyzeTypeExpr(m, arg)
		}
		calleeE := m.Expr(d.Callee)
		sr, ok := calleeE.Data.(sir.SymbolRefData)
		if !ok {
			a.errorf(diag.TypeMismatch, e.Span, "generic arguments applied to a non-generic type")
			return false
		}
		specID, ok := a.specialize(m, sr.Symbol, d.Args, e.Span)
		if !ok {
			return false
		}
		e.Data = sir.SymbolRefData{Symbol: specID}
		return true

	case sir.PointerTypeData:
		return a.analyzeTypeExpr(m, d.Pointee)
	case sir.ReferenceTypeData:
		return a.analyzeTypeExpr(m, d.Referent)
	case sir.StaticArrayTypeData:
		return a.analyzeTypeExpr(m, d.Elem)
	case sir.FunctionTypeData:
		ok := a.analyzeTypeExpr(m, d.Result)
		for _, p := range d.Params {
			if !a.analyzeTypeExpr(m, p) {
				ok = false
			}
		}
		return ok
	case sir.OptionalTypeData:
		if !a.analyzeTypeExpr(m, d.Value) {
			return false
		}
		sym, ok := a.preambleStdSymbol(m, "Optional")
		if !ok {
			return false
		}
		specID, ok := a.specialize(m, sym, []sir.ExprID{d.Value}, e.Span)
		if !ok {
			return false
		}
		d.Specialize = specID
		e.Data = d
		return true
	case sir.ResultTypeData:
		ok1 := a.analyzeTypeExpr(m, d.Value)
		ok2 := a.analyzeTypeExpr(m, d.Error)
		if !ok1 || !ok2 {
			return false
		}
		sym, ok := a.preambleStdSymbol(m, "Result")
		if !ok {
			// Result is not in the fixed preamble list (spec §4.2 names
			// Optional/Array/String/Set/Closure); treat as structurally
			// typed without a backing specialization.
			return true
		}
		specID, ok := a.specialize(m, sym, []sir.ExprID{d.Value, d.Error}, e.Span)
		if !ok {
			return false
		}
		d.Specialize = specID
		e.Data = d
		return true
	case sir.ArrayTypeData:
		if !a.analyzeTypeExpr(m, d.Elem) {
			return false
		}
		sym, ok := a.preambleStdSymbol(m, "Array")
		if !ok {
			return false
		}
		specID, ok := a.specialize(m, sym, []sir.ExprID{d.Elem}, e.Span)
		if !ok {
			return false
		}
		d.Specialize = specID
		e.Data = d
		return true
	case sir.MapTypeData:
		ok1 := a.analyzeTypeExpr(m, d.Key)
		ok2 := a.analyzeTypeExpr(m, d.Value)
		return ok1 && ok2
	case sir.ClosureTypeData:
		if !a.analyzeTypeExpr(m, d.Func) {
			return false
		}
		sym, ok := a.preambleStdSymbol(m, "Closure")
		if !ok {
			return false
		}
		specID, ok := a.specialize(m, sym, []sir.ExprID{d.Func}, e.Span)
		if !ok {
			return false
		}
		d.Specialize = specID
		e.Data = d
		return true
	case sir.PrimitiveTypeData, sir.SymbolRefData, sir.PseudoTypeData:
		return true
	default:
		a.errorf(diag.TypeMismatch, e.Span, "expected a type")
		return false
	}
}

// preambleStdSymbol looks up one of the fixed preamble std.* container
// types (spec §4.2, §6.4) by its short name.
func (a *Analyzer) preambleStdSymbol(m *sir.Module, short string) (sir.SymbolID, bool) {
	symID, ok := m.Scope(m.Root).Local(a.interner.Intern(short))
	if !ok {
		return sir.NoSymbolID, false
	}
	return symID, true
}
