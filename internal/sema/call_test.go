package sema

import (
	"testing"

	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

func newCallTestAnalyzer() (*Analyzer, *collectingReporter, *sir.Module) {
	in := source.NewInterner()
	rep := &collectingReporter{}
	a := NewAnalyzer(Options{Reporter: rep}, in)
	m := sir.NewModule("test", source.NoFileID)
	return a, rep, m
}

// declareFreeFunc registers a free function symbol+decl pair directly in m,
// bypassing C3's collector, for call-resolution tests that only need the
// function to be callable (spec §4.6 "Call expression").
func declareFreeFunc(m *sir.Module, params []sir.ExprID, result sir.ExprID) sir.SymbolID {
	ps := make([]sir.Param, len(params))
	for i, t := range params {
		ps[i] = sir.Param{Type: t}
	}
	declID := m.NewDecl(sir.FuncDefData{Params: ps, Result: result}, sir.NoDeclID, source.Span{})
	sym := sir.FuncDefSymbol{}
	sym.Decl = declID
	symID := m.NewSymbol(sym, source.Span{})
	decl := m.Decl(declID)
	dd := decl.Data.(sir.FuncDefData)
	dd.Symbol = symID
	decl.Data = dd
	return symID
}

func callExpr(m *sir.Module, callee sir.ExprID, args ...sir.ExprID) (sir.ExprID, sir.CallData) {
	d := sir.CallData{Callee: callee, Args: args}
	id := m.NewExpr(d, source.Span{})
	return id, d
}

// TestAnalyzeDirectCallResolvesSymbolAndResultType covers the plain,
// non-generic path of spec §4.6's call expression analysis.
func TestAnalyzeDirectCallResolvesSymbolAndResultType(t *testing.T) {
	a, rep, m := newCallTestAnalyzer()
	i32 := a.i32Type(m)
	fn := declareFreeFunc(m, []sir.ExprID{i32}, i32)

	callee := symbolRef(m, fn)
	id, d := callExpr(m, callee, intLit(m, 1))
	e := m.Expr(id)

	_, resT := a.analyzeCallData(m, id, e, d, sir.NoExprID)

	if len(rep.diags) != 0 {
		t.Fatalf("expected no diagnostics for a well-typed call, got %v", rep.codes())
	}
	if resT != i32 {
		t.Fatalf("expected call result type to be i32, got %v", resT)
	}
	got, ok := m.Expr(id).Data.(sir.CallData)
	if !ok {
		t.Fatalf("expected the expr to remain a CallData, got %T", m.Expr(id).Data)
	}
	if got.Symbol != fn {
		t.Fatalf("expected resolved call Symbol to be the declared function, got %v want %v", got.Symbol, fn)
	}
}

// TestAnalyzeDirectCallReportsArityMismatch covers spec §4.6's arg-count
// check.
func TestAnalyzeDirectCallReportsArityMismatch(t *testing.T) {
	a, rep, m := newCallTestAnalyzer()
	i32 := a.i32Type(m)
	fn := declareFreeFunc(m, []sir.ExprID{i32, i32}, i32)

	callee := symbolRef(m, fn)
	id, d := callExpr(m, callee, intLit(m, 1))
	e := m.Expr(id)

	a.analyzeCallData(m, id, e, d, sir.NoExprID)

	if !hasCode(rep.codes(), diag.SigUnexpectedArgCount) {
		t.Fatalf("expected SigUnexpectedArgCount, got codes %v", rep.codes())
	}
}

// TestResolveOverloadPicksTheSingleMatchingCandidate and its ambiguous
// counterpart cover spec §4.8's overload-resolution rule.
func TestResolveOverloadPicksTheSingleMatchingCandidate(t *testing.T) {
	a, rep, m := newCallTestAnalyzer()
	i32 := a.i32Type(m)
	f32 := a.f32Type(m)
	intFn := declareFreeFunc(m, []sir.ExprID{i32}, i32)
	_ = declareFreeFunc(m, []sir.ExprID{f32}, f32)

	winner, ok := a.resolveOverload(m, []sir.SymbolID{intFn}, []sir.ExprID{i32}, source.Span{})
	if !ok {
		t.Fatalf("expected a resolving overload, got codes %v", rep.codes())
	}
	if winner != intFn {
		t.Fatalf("expected the int overload to win, got %v want %v", winner, intFn)
	}
	if len(rep.diags) != 0 {
		t.Fatalf("expected no diagnostics for an unambiguous overload, got %v", rep.codes())
	}
}

// TestResolveOverloadCoercesStringLiteralToPointerOverload covers spec
// §8's scenario S2: `f(x: i32)` / `f(x: *u8)`, call `f("hi")` must select
// the `*u8` overload uniquely rather than reporting it ambiguous (a
// string-literal argument is not compatible with i32's restricted
// coercion target set).
func TestResolveOverloadCoercesStringLiteralToPointerOverload(t *testing.T) {
	a, rep, m := newCallTestAnalyzer()
	i32 := a.i32Type(m)
	u8Ptr := a.pointerType(m, a.primitiveType(m, sir.PrimU8), false)
	intFn := declareFreeFunc(m, []sir.ExprID{i32}, i32)
	ptrFn := declareFreeFunc(m, []sir.ExprID{u8Ptr}, u8Ptr)

	argT := a.pseudoType(m, sir.PseudoStringLiteral)
	winner, ok := a.resolveOverload(m, []sir.SymbolID{intFn, ptrFn}, []sir.ExprID{argT}, source.Span{})
	if !ok {
		t.Fatalf("expected a resolving overload, got codes %v", rep.codes())
	}
	if winner != ptrFn {
		t.Fatalf("expected the *u8 overload to win, got %v want %v", winner, ptrFn)
	}
	if len(rep.diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", rep.codes())
	}
}

func TestResolveOverloadReportsAmbiguity(t *testing.T) {
	a, rep, m := newCallTestAnalyzer()
	i32 := a.i32Type(m)
	fn1 := declareFreeFunc(m, []sir.ExprID{i32}, i32)
	fn2 := declareFreeFunc(m, []sir.ExprID{i32}, i32)

	_, ok := a.resolveOverload(m, []sir.SymbolID{fn1, fn2}, []sir.ExprID{i32}, source.Span{})
	if !ok {
		t.Fatalf("expected resolveOverload to still return a usable candidate")
	}
	if !hasCode(rep.codes(), diag.SigAmbiguousOverload) {
		t.Fatalf("expected SigAmbiguousOverload, got codes %v", rep.codes())
	}
}

// TestInferGenericArgsUnifiesParamAgainstArgType covers spec §4.9's
// generic-argument inference: a parameter of type `T` against an i32
// argument infers T=i32.
func TestInferGenericArgsUnifiesParamAgainstArgType(t *testing.T) {
	a, rep, m := newCallTestAnalyzer()
	i32 := a.i32Type(m)
	tName := a.interner.Intern("T")
	paramType := m.NewExpr(sir.IdentData{Name: tName}, source.Span{})

	args, ok := a.inferGenericArgs(m, []sir.ExprID{paramType}, []sir.ExprID{i32}, []source.StringID{tName}, source.Span{})
	if !ok {
		t.Fatalf("expected inference to succeed, got codes %v", rep.codes())
	}
	if len(args) != 1 || args[0] != i32 {
		t.Fatalf("expected T to be inferred as i32, got %v", args)
	}
}

// TestInferGenericArgsReportsConflict covers spec §4.9's conflicting-
// inference diagnostic when the same generic name unifies against two
// different argument types.
func TestInferGenericArgsReportsConflict(t *testing.T) {
	a, rep, m := newCallTestAnalyzer()
	i32 := a.i32Type(m)
	f32 := a.f32Type(m)
	tName := a.interner.Intern("T")
	p1 := m.NewExpr(sir.IdentData{Name: tName}, source.Span{})
	p2 := m.NewExpr(sir.IdentData{Name: tName}, source.Span{})

	_, ok := a.inferGenericArgs(m, []sir.ExprID{p1, p2}, []sir.ExprID{i32, f32}, []source.StringID{tName}, source.Span{})
	if ok {
		t.Fatalf("expected inference to fail on conflicting types")
	}
	if !hasCode(rep.codes(), diag.SigGenericArgInferConflict) {
		t.Fatalf("expected SigGenericArgInferConflict, got codes %v", rep.codes())
	}
}

// TestAnalyzeCallDataRewritesUnionCaseConstructorCall covers spec §4.6's
// "rewrite the call into a UnionCaseLiteral" rule for a call whose callee
// names a union case.
func TestAnalyzeCallDataRewritesUnionCaseConstructorCall(t *testing.T) {
	a, rep, m := newCallTestAnalyzer()
	i32 := a.i32Type(m)
	fieldName := a.interner.Intern("value")

	unionDeclID := m.NewDecl(sir.UnionDefData{}, sir.NoDeclID, source.Span{})
	unionSym := sir.UnionDefSymbol{}
	unionSym.Decl = unionDeclID
	unionSymID := m.NewSymbol(unionSym, source.Span{})
	unionDecl := m.Decl(unionDeclID)
	ud := unionDecl.Data.(sir.UnionDefData)
	ud.Symbol = unionSymID
	unionDecl.Data = ud

	caseDeclID := m.NewDecl(sir.UnionCaseData{
		Fields: []sir.StructFieldData{{Name: fieldName, Type: i32, Index: 0}},
	}, unionDeclID, source.Span{})
	caseSym := sir.UnionCaseSymbol{}
	caseSym.Decl = caseDeclID
	caseSymID := m.NewSymbol(caseSym, source.Span{})
	caseDecl := m.Decl(caseDeclID)
	cd := caseDecl.Data.(sir.UnionCaseData)
	cd.Symbol = caseSymID
	caseDecl.Data = cd

	callee := symbolRef(m, caseSymID)
	id, d := callExpr(m, callee, intLit(m, 42))
	e := m.Expr(id)

	a.analyzeCallData(m, id, e, d, sir.NoExprID)

	if len(rep.diags) != 0 {
		t.Fatalf("expected no diagnostics rewriting a valid union-case call, got %v", rep.codes())
	}
	ucl, ok := m.Expr(id).Data.(sir.UnionCaseLitData)
	if !ok {
		t.Fatalf("expected the call to rewrite into UnionCaseLitData, got %T", m.Expr(id).Data)
	}
	if ucl.Union != unionSymID || ucl.Case != caseSymID {
		t.Fatalf("expected the rewritten literal to name the union/case symbols, got union=%v case=%v", ucl.Union, ucl.Case)
	}
	if len(ucl.Fields) != 1 || ucl.Fields[0].Name != fieldName {
		t.Fatalf("expected the positional argument bound to field '%v', got %+v", fieldName, ucl.Fields)
	}
}
