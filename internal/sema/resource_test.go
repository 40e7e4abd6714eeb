package sema

import (
	"testing"

	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// collectingReporter gathers every diagnostic reported during a test run so
// assertions can check codes without standing up a full diag.Bag.
type collectingReporter struct {
	diags []diag.Diagnostic
}

func (r *collectingReporter) Report(d diag.Diagnostic) bool {
	r.diags = append(r.diags, d)
	return true
}

func (r *collectingReporter) codes() []diag.Code {
	out := make([]diag.Code, len(r.diags))
	for i, d := range r.diags {
		out[i] = d.Code
	}
	return out
}

func hasCode(codes []diag.Code, want diag.Code) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}

func newResourceTestAnalyzer() (*Analyzer, *collectingReporter, *sir.Module) {
	in := source.NewInterner()
	rep := &collectingReporter{}
	a := NewAnalyzer(Options{Reporter: rep}, in)
	m := sir.NewModule("test", source.NoFileID)
	return a, rep, m
}

// newResourceStruct declares a struct symbol in m, wiring a __deinit__
// method into its symbol table when withDeinit is true, and returns both
// the struct's symbol and a type-expr referencing it (spec §4.12:
// "a struct ... contributes a resource if it has __deinit__ or any
// sub-field that does").
func newResourceStruct(a *Analyzer, m *sir.Module, withDeinit bool) (sir.SymbolID, sir.ExprID) {
	declID := m.NewDecl(sir.StructDefData{}, sir.NoDeclID, source.Span{})
	table := m.NewScope(m.Root)

	sym := sir.StructDefSymbol{Table: table}
	sym.Decl = declID
	symID := m.NewSymbol(sym, source.Span{})

	decl := m.Decl(declID)
	dd := decl.Data.(sir.StructDefData)
	dd.Symbol = symID
	decl.Data = dd

	if withDeinit {
		method := sir.FuncDefSymbol{}
		methodID := m.NewSymbol(method, source.Span{})
		m.Scope(table).Insert(a.interner.Intern(sir.MagicDeinit), methodID)
	}

	typeExpr := m.NewExpr(sir.SymbolRefData{Symbol: symID}, source.Span{})
	return symID, typeExpr
}

func newLocal(m *sir.Module, typeExpr sir.ExprID) sir.SymbolID {
	return m.NewSymbol(sir.LocalSymbol{Type: typeExpr}, source.Span{})
}

func symbolRef(m *sir.Module, sym sir.SymbolID) sir.ExprID {
	return m.NewExpr(sir.SymbolRefData{Symbol: sym}, source.Span{})
}

func runResourceFunc(a *Analyzer, m *sir.Module, params []sir.Param, body sir.StmtID) {
	d := sir.FuncDefData{Params: params, Body: body}
	declID := m.NewDecl(d, sir.NoDeclID, source.Span{})
	a.analyzeResourceFunc(m, declID, d)
}

// TestResourceMoveRewritesExprAndDetectsUseAfterMove covers the core
// happy/error path: `var b = a` moves a, a later use of a is a use-after-
// move (spec §4.12).
func TestResourceMoveRewritesExprAndDetectsUseAfterMove(t *testing.T) {
	a, rep, m := newResourceTestAnalyzer()
	_, resType := newResourceStruct(a, m, true)

	symA := newLocal(m, resType)
	init := m.NewExpr(sir.CallData{}, source.Span{})
	varA := m.NewStmt(sir.VarStmtData{Symbol: symA, Value: init}, source.Span{})

	symB := newLocal(m, resType)
	moveExpr := symbolRef(m, symA)
	varB := m.NewStmt(sir.VarStmtData{Symbol: symB, Value: moveExpr}, source.Span{})

	useExpr := symbolRef(m, symA)
	useStmt := m.NewStmt(sir.ExprStmtData{Value: useExpr}, source.Span{})

	body := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{varA, varB, useStmt}}, source.Span{})
	runResourceFunc(a, m, nil, body)

	if _, ok := m.Expr(moveExpr).Data.(sir.MoveData); !ok {
		t.Fatalf("expected move expr rewritten to MoveData, got %T", m.Expr(moveExpr).Data)
	}
	if !hasCode(rep.codes(), diag.ResUseAfterMove) {
		t.Fatalf("expected ResUseAfterMove, got codes %v", rep.codes())
	}
}

// TestResourceConditionalMoveInOneBranchIsNotAnError mirrors spec §4.12's
// branch-merge rule: moving a resource in only one arm of an if marks it
// conditional in the parent, but does not itself report an error — only a
// later unconditional use after a fully-moved merge should.
func TestResourceConditionalMoveInOneBranchIsNotAnError(t *testing.T) {
	a, rep, m := newResourceTestAnalyzer()
	_, resType := newResourceStruct(a, m, true)

	symA := newLocal(m, resType)
	init := m.NewExpr(sir.CallData{}, source.Span{})
	varA := m.NewStmt(sir.VarStmtData{Symbol: symA, Value: init}, source.Span{})

	symB := newLocal(m, resType)
	moveExpr := symbolRef(m, symA)
	varB := m.NewStmt(sir.VarStmtData{Symbol: symB, Value: moveExpr}, source.Span{})
	thenBlock := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{varB}}, source.Span{})

	cond := m.NewExpr(sir.BoolLitData{Value: true}, source.Span{})
	ifStmt := m.NewStmt(sir.IfStmtData{Cond: cond, Then: thenBlock}, source.Span{})

	body := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{varA, ifStmt}}, source.Span{})
	runResourceFunc(a, m, nil, body)

	if hasCode(rep.codes(), diag.ResUseAfterMove) {
		t.Fatalf("did not expect ResUseAfterMove from a single conditional move, got codes %v", rep.codes())
	}
}

// TestResourceMoveInLoopOfOuterResourceIsAnError covers spec §4.12's "moving
// a resource inside a loop scope that was initialized outside it is an
// error" rule.
func TestResourceMoveInLoopOfOuterResourceIsAnError(t *testing.T) {
	a, rep, m := newResourceTestAnalyzer()
	_, resType := newResourceStruct(a, m, true)

	symA := newLocal(m, resType)
	init := m.NewExpr(sir.CallData{}, source.Span{})
	varA := m.NewStmt(sir.VarStmtData{Symbol: symA, Value: init}, source.Span{})

	symB := newLocal(m, resType)
	moveExpr := symbolRef(m, symA)
	varB := m.NewStmt(sir.VarStmtData{Symbol: symB, Value: moveExpr}, source.Span{})
	loopBody := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{varB}}, source.Span{})

	cond := m.NewExpr(sir.BoolLitData{Value: true}, source.Span{})
	loop := m.NewStmt(sir.LoopStmtData{Cond: cond, Body: loopBody}, source.Span{})

	body := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{varA, loop}}, source.Span{})
	runResourceFunc(a, m, nil, body)

	if !hasCode(rep.codes(), diag.ResMoveInLoop) {
		t.Fatalf("expected ResMoveInLoop, got codes %v", rep.codes())
	}
}

// TestResourceMoveLocalDeclaredInsideLoopIsFine guards against the false
// positive a naive "inLoop bool" check would produce: a resource declared
// and moved entirely within one loop iteration is never flagged.
func TestResourceMoveLocalDeclaredInsideLoopIsFine(t *testing.T) {
	a, rep, m := newResourceTestAnalyzer()
	_, resType := newResourceStruct(a, m, true)

	symTmp := newLocal(m, resType)
	init := m.NewExpr(sir.CallData{}, source.Span{})
	varTmp := m.NewStmt(sir.VarStmtData{Symbol: symTmp, Value: init}, source.Span{})

	symOut := newLocal(m, resType)
	moveExpr := symbolRef(m, symTmp)
	varOut := m.NewStmt(sir.VarStmtData{Symbol: symOut, Value: moveExpr}, source.Span{})

	loopBody := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{varTmp, varOut}}, source.Span{})
	cond := m.NewExpr(sir.BoolLitData{Value: true}, source.Span{})
	loop := m.NewStmt(sir.LoopStmtData{Cond: cond, Body: loopBody}, source.Span{})

	body := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{loop}}, source.Span{})
	runResourceFunc(a, m, nil, body)

	if hasCode(rep.codes(), diag.ResMoveInLoop) {
		t.Fatalf("did not expect ResMoveInLoop for a resource scoped entirely to one iteration, got codes %v", rep.codes())
	}
}

// TestResourceMoveOutOfPointerDerefIsAnError covers spec §4.12's "moving
// out of a pointer dereference is an error" rule.
func TestResourceMoveOutOfPointerDerefIsAnError(t *testing.T) {
	a, rep, m := newResourceTestAnalyzer()
	_, resType := newResourceStruct(a, m, true)

	symP := newLocal(m, resType)
	deref := m.NewExpr(sir.StarUnresolvedData{Operand: symbolRef(m, symP)}, source.Span{})

	symB := newLocal(m, resType)
	varB := m.NewStmt(sir.VarStmtData{Symbol: symB, Value: deref}, source.Span{})

	body := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{varB}}, source.Span{})
	runResourceFunc(a, m, nil, body)

	if !hasCode(rep.codes(), diag.ResMoveOutOfPtr) {
		t.Fatalf("expected ResMoveOutOfPtr, got codes %v", rep.codes())
	}
}

// TestResourceMoveFieldOutOfDeinitStructIsAnError covers spec §4.12's
// "moving out of ... a field of a resource that has __deinit__ is an
// error" rule.
func TestResourceMoveFieldOutOfDeinitStructIsAnError(t *testing.T) {
	a, rep, m := newResourceTestAnalyzer()
	_, resType := newResourceStruct(a, m, true)

	symA := newLocal(m, resType)
	aRef := symbolRef(m, symA)
	m.Expr(aRef).Type = resType
	field := m.NewExpr(sir.FieldData{Object: aRef, Index: 0}, source.Span{})

	symB := newLocal(m, resType)
	varB := m.NewStmt(sir.VarStmtData{Symbol: symB, Value: field}, source.Span{})

	param := sir.Param{Symbol: symA, Type: resType}
	body := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{varB}}, source.Span{})
	runResourceFunc(a, m, []sir.Param{param}, body)

	if !hasCode(rep.codes(), diag.ResMoveOutOfDeinit) {
		t.Fatalf("expected ResMoveOutOfDeinit, got codes %v", rep.codes())
	}
}

// TestResourcePointerEscapeOfLocalIsAnError covers the narrowly grounded
// `return &local` escape check.
func TestResourcePointerEscapeOfLocalIsAnError(t *testing.T) {
	a, rep, m := newResourceTestAnalyzer()

	symX := newLocal(m, sir.NoExprID)
	ref := m.NewExpr(sir.UnaryData{Op: sir.UnaryRef, Operand: symbolRef(m, symX)}, source.Span{})
	ret := m.NewStmt(sir.ReturnStmtData{Value: ref}, source.Span{})

	body := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{ret}}, source.Span{})
	runResourceFunc(a, m, nil, body)

	if !hasCode(rep.codes(), diag.ResPointerEscapes) {
		t.Fatalf("expected ResPointerEscapes, got codes %v", rep.codes())
	}
}

// TestResourceParamTrackedAndMovable confirms a resource-typed parameter is
// tracked from function entry, so moving it into a local is legal and a
// later use after that move is rejected just like a local-to-local move.
func TestResourceParamTrackedAndMovable(t *testing.T) {
	a, rep, m := newResourceTestAnalyzer()
	_, resType := newResourceStruct(a, m, true)

	symSelf := newLocal(m, resType)
	symB := newLocal(m, resType)
	moveExpr := symbolRef(m, symSelf)
	varB := m.NewStmt(sir.VarStmtData{Symbol: symB, Value: moveExpr}, source.Span{})

	useExpr := symbolRef(m, symSelf)
	useStmt := m.NewStmt(sir.ExprStmtData{Value: useExpr}, source.Span{})

	body := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{varB, useStmt}}, source.Span{})
	param := sir.Param{Symbol: symSelf, Type: resType}
	runResourceFunc(a, m, []sir.Param{param}, body)

	if _, ok := m.Expr(moveExpr).Data.(sir.MoveData); !ok {
		t.Fatalf("expected param move rewritten to MoveData, got %T", m.Expr(moveExpr).Data)
	}
	if !hasCode(rep.codes(), diag.ResUseAfterMove) {
		t.Fatalf("expected ResUseAfterMove for param used after move, got codes %v", rep.codes())
	}
}

// TestResourceNonResourceLocalIsUntracked confirms a plain (non-resource)
// local never enters the env and so is never flagged, even when "moved"
// repeatedly — C14 only tracks resource-typed paths (spec §4.12).
func TestResourceNonResourceLocalIsUntracked(t *testing.T) {
	a, rep, m := newResourceTestAnalyzer()
	_, plainType := newResourceStruct(a, m, false)

	symA := newLocal(m, plainType)
	init := m.NewExpr(sir.CallData{}, source.Span{})
	varA := m.NewStmt(sir.VarStmtData{Symbol: symA, Value: init}, source.Span{})

	symB := newLocal(m, plainType)
	varB := m.NewStmt(sir.VarStmtData{Symbol: symB, Value: symbolRef(m, symA)}, source.Span{})

	useExpr := symbolRef(m, symA)
	useStmt := m.NewStmt(sir.ExprStmtData{Value: useExpr}, source.Span{})

	body := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{varA, varB, useStmt}}, source.Span{})
	runResourceFunc(a, m, nil, body)

	if len(rep.diags) != 0 {
		t.Fatalf("expected no diagnostics for a non-resource type, got %v", rep.codes())
	}
}
