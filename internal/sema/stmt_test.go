package sema

import (
	"testing"

	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

func newStmtTestAnalyzer() (*Analyzer, *collectingReporter, *sir.Module) {
	in := source.NewInterner()
	rep := &collectingReporter{}
	a := NewAnalyzer(Options{Reporter: rep}, in)
	m := sir.NewModule("test", source.NoFileID)
	return a, rep, m
}

func intLit(m *sir.Module, v int64) sir.ExprID {
	return m.NewExpr(sir.IntLitData{Value: v}, source.Span{})
}

func boolLit(m *sir.Module, v bool) sir.ExprID {
	return m.NewExpr(sir.BoolLitData{Value: v}, source.Span{})
}

// TestAnalyzeWhileStmtDesugarsToLoopStmt covers spec §4.10's "while cond {
// body }" desugaring into the canonical LoopStmtData with no latch.
func TestAnalyzeWhileStmtDesugarsToLoopStmt(t *testing.T) {
	a, _, m := newStmtTestAnalyzer()

	body := m.NewStmt(sir.BlockStmtData{}, source.Span{})
	whileID := m.NewStmt(sir.WhileStmtData{Cond: boolLit(m, true), Body: body}, source.Span{})

	a.scopes.Push(&sir.AnalysisScope{Container: m.Root})
	a.analyzeStmt(m, whileID)
	a.scopes.Pop()

	loop, ok := m.Stmt(whileID).Data.(sir.LoopStmtData)
	if !ok {
		t.Fatalf("expected while to desugar into LoopStmtData, got %T", m.Stmt(whileID).Data)
	}
	if loop.Latch.IsValid() {
		t.Fatalf("expected a desugared while to have no latch, got %v", loop.Latch)
	}
	if loop.Body != body {
		t.Fatalf("expected loop body to be preserved, got %v want %v", loop.Body, body)
	}
}

// TestAnalyzeForStmtDesugarsToBlockWithLatch covers spec §4.10's
// "for x in low..high { body }" desugaring into a block wrapping a
// canonical loop with an incrementing latch.
func TestAnalyzeForStmtDesugarsToBlockWithLatch(t *testing.T) {
	a, _, m := newStmtTestAnalyzer()

	body := m.NewStmt(sir.BlockStmtData{}, source.Span{})
	bindName := a.interner.Intern("i")
	forID := m.NewStmt(sir.ForStmtData{
		Bind: bindName,
		Low:  intLit(m, 0),
		High: intLit(m, 10),
		Body: body,
	}, source.Span{})

	a.scopes.Push(&sir.AnalysisScope{Container: m.Root})
	a.analyzeStmt(m, forID)
	a.scopes.Pop()

	blk, ok := m.Stmt(forID).Data.(sir.BlockStmtData)
	if !ok {
		t.Fatalf("expected for to desugar into a wrapping block, got %T", m.Stmt(forID).Data)
	}
	if len(blk.Stmts) != 2 {
		t.Fatalf("expected the wrapping block to hold [init, loop], got %d stmts", len(blk.Stmts))
	}
	if _, ok := m.Stmt(blk.Stmts[0]).Data.(sir.VarStmtData); !ok {
		t.Fatalf("expected first stmt to bind the loop variable, got %T", m.Stmt(blk.Stmts[0]).Data)
	}
	loop, ok := m.Stmt(blk.Stmts[1]).Data.(sir.LoopStmtData)
	if !ok {
		t.Fatalf("expected second stmt to be the canonical loop, got %T", m.Stmt(blk.Stmts[1]).Data)
	}
	if !loop.Latch.IsValid() {
		t.Fatalf("expected a desugared for-loop to carry an increment latch")
	}
	if _, ok := m.Stmt(loop.Latch).Data.(sir.AssignStmtData); !ok {
		t.Fatalf("expected latch to be an assignment, got %T", m.Stmt(loop.Latch).Data)
	}
}

// TestAnalyzeCompoundAssignDesugarsToAssign covers spec §4.10's "a op= b"
// desugaring into "a = a op b" in place.
func TestAnalyzeCompoundAssignDesugarsToAssign(t *testing.T) {
	a, _, m := newStmtTestAnalyzer()

	lhs := intLit(m, 1)
	rhs := intLit(m, 2)
	stmtID := m.NewStmt(sir.CompoundAssignStmtData{Op: sir.BinAdd, LHS: lhs, RHS: rhs}, source.Span{})

	a.scopes.Push(&sir.AnalysisScope{Container: m.Root})
	a.analyzeStmt(m, stmtID)
	a.scopes.Pop()

	assign, ok := m.Stmt(stmtID).Data.(sir.AssignStmtData)
	if !ok {
		t.Fatalf("expected compound assign to desugar into AssignStmtData, got %T", m.Stmt(stmtID).Data)
	}
	bin, ok := m.Expr(assign.RHS).Data.(sir.BinaryData)
	if !ok {
		t.Fatalf("expected assign RHS to be a BinaryData, got %T", m.Expr(assign.RHS).Data)
	}
	if bin.Op != sir.BinAdd {
		t.Fatalf("expected the desugared binary to keep the original op, got %v", bin.Op)
	}
}

// TestAnalyzeStmtListWarnsOnUnreachableCode covers spec §4.10/§4.13's
// unreachable-code diagnostic for a statement following an unconditional
// return.
func TestAnalyzeStmtListWarnsOnUnreachableCode(t *testing.T) {
	a, rep, m := newStmtTestAnalyzer()

	ret := m.NewStmt(sir.ReturnStmtData{}, source.Span{})
	after := m.NewStmt(sir.ExprStmtData{Value: intLit(m, 1)}, source.Span{})

	a.scopes.Push(&sir.AnalysisScope{Container: m.Root, Result: a.voidType(m)})
	a.analyzeStmtList(m, []sir.StmtID{ret, after})
	a.scopes.Pop()

	if !hasCode(rep.codes(), diag.CtrlUnreachableCode) {
		t.Fatalf("expected CtrlUnreachableCode, got codes %v", rep.codes())
	}
}

// TestAnalyzeIfStmtRejectsNonBoolCondition covers spec §4.10's requirement
// that an if's condition type-checks as bool.
func TestAnalyzeIfStmtRejectsNonBoolCondition(t *testing.T) {
	a, rep, m := newStmtTestAnalyzer()

	then := m.NewStmt(sir.BlockStmtData{}, source.Span{})
	ifID := m.NewStmt(sir.IfStmtData{Cond: intLit(m, 1), Then: then}, source.Span{})

	a.scopes.Push(&sir.AnalysisScope{Container: m.Root})
	a.analyzeStmt(m, ifID)
	a.scopes.Pop()

	if !hasCode(rep.codes(), diag.TypeExpectedBool) {
		t.Fatalf("expected TypeExpectedBool, got codes %v", rep.codes())
	}
}

// TestAnalyzeContinueOutsideLoopIsAnError and its break counterpart cover
// spec §4.10/§4.13's loop-context checks for continue/break.
func TestAnalyzeContinueOutsideLoopIsAnError(t *testing.T) {
	a, rep, m := newStmtTestAnalyzer()
	stmtID := m.NewStmt(sir.ContinueStmtData{}, source.Span{})

	a.scopes.Push(&sir.AnalysisScope{Container: m.Root})
	a.analyzeStmt(m, stmtID)
	a.scopes.Pop()

	if !hasCode(rep.codes(), diag.CtrlContinueOutsideLoop) {
		t.Fatalf("expected CtrlContinueOutsideLoop, got codes %v", rep.codes())
	}
}

func TestAnalyzeBreakInsideLoopIsFine(t *testing.T) {
	a, rep, m := newStmtTestAnalyzer()
	brk := m.NewStmt(sir.BreakStmtData{}, source.Span{})
	body := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{brk}}, source.Span{})
	loop := m.NewStmt(sir.LoopStmtData{Cond: boolLit(m, true), Body: body}, source.Span{})

	a.scopes.Push(&sir.AnalysisScope{Container: m.Root})
	a.analyzeStmt(m, loop)
	a.scopes.Pop()

	if hasCode(rep.codes(), diag.CtrlBreakOutsideLoop) {
		t.Fatalf("did not expect CtrlBreakOutsideLoop inside a loop body, got codes %v", rep.codes())
	}
}

// TestStmtAlwaysReturnsIfBothBranches covers spec §4.13 (S3): an if with
// both arms always returning is itself always-returning, but a loop with a
// condition never is (since it may run zero iterations).
func TestStmtAlwaysReturnsIfBothBranches(t *testing.T) {
	a, _, m := newStmtTestAnalyzer()

	thenRet := m.NewStmt(sir.ReturnStmtData{}, source.Span{})
	elseRet := m.NewStmt(sir.ReturnStmtData{}, source.Span{})
	ifID := m.NewStmt(sir.IfStmtData{Cond: boolLit(m, true), Then: thenRet, Else: elseRet}, source.Span{})

	if !a.stmtAlwaysReturns(m, ifID) {
		t.Fatalf("expected an if with both arms returning to always return")
	}

	loopBody := m.NewStmt(sir.BlockStmtData{Stmts: []sir.StmtID{m.NewStmt(sir.ReturnStmtData{}, source.Span{})}}, source.Span{})
	loop := m.NewStmt(sir.LoopStmtData{Cond: boolLit(m, true), Body: loopBody}, source.Span{})
	if a.stmtAlwaysReturns(m, loop) {
		t.Fatalf("did not expect a conditioned loop to always return")
	}
}
