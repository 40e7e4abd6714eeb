package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// analyzeStmt dispatches one statement node through C12. Sugared forms
// (CompoundAssignStmtData, WhileStmtData, ForStmtData) are desugared into
// their canonical shape in place and then redispatched, so every later
// pass (C14's resource analyzer, the use indexer) only ever sees
// AssignStmtData/LoopStmtData (spec §4.10, §9 "mutate the tree in place").
func (a *Analyzer) analyzeStmt(m *sir.Module, id sir.StmtID) {
	if !id.IsValid() {
		return
	}
	s := m.Stmt(id)
	switch d := s.Data.(type) {
	case sir.ErrorStmtData:
	case sir.VarStmtData:
		a.analyzeVarStmt(m, s, d)
	case sir.AssignStmtData:
		a.analyzeAssignStmt(m, s, d)
	case sir.CompoundAssignStmtData:
		a.analyzeCompoundAssignStmt(m, id, s, d)
	case sir.ReturnStmtData:
		a.analyzeReturnStmt(m, s, d)
	case sir.IfStmtData:
		a.analyzeIfStmt(m, s, d)
	case sir.SwitchStmtData:
		a.analyzeSwitchStmt(m, s, d)
	case sir.TryStmtData:
		a.analyzeTryStmt(m, s, d)
	case sir.WhileStmtData:
		a.analyzeWhileStmt(m, id, s, d)
	case sir.ForStmtData:
		a.analyzeForStmt(m, id, s, d)
	case sir.LoopStmtData:
		a.analyzeLoopStmt(m, s, d)
	case sir.ContinueStmtData:
		if !a.scopes.InLoop() {
			a.errorf(diag.CtrlContinueOutsideLoop, s.Span, "'continue' outside a loop")
		}
	case sir.BreakStmtData:
		if !a.scopes.InLoop() {
			a.errorf(diag.CtrlBreakOutsideLoop, s.Span, "'break' outside a loop")
		}
	case sir.MetaIfStmtData:
		a.analyzeMetaIfStmt(m, s, d)
	case sir.MetaForStmtData:
		a.analyzeMetaForStmt(m, s, d)
	case sir.ExpandedMetaStmtData:
		// already expanded; nothing left to analyze at this slot.
	case sir.ExprStmtData:
		newVal, _ := a.analyzeExpr(m, d.Value, sir.NoExprID)
		d.Value = newVal
		s.Data = d
	case sir.BlockStmtData:
		a.analyzeBlockStmt(m, id, s, d)
	}
}

// ensureBlockScope returns block's symbol table, allocating one chained to
// the innermost container when the parser left it unset (spec §4.10).
func (a *Analyzer) ensureBlockScope(m *sir.Module, blockID sir.StmtID) sir.ScopeID {
	blk, ok := m.Stmt(blockID).Data.(sir.BlockStmtData)
	if !ok {
		return sir.NoScopeID
	}
	if blk.Scope.IsValid() {
		return blk.Scope
	}
	parent := m.Root
	if top := a.scopes.Top(); top != nil && top.Container.IsValid() {
		parent = top.Container
	}
	scope := m.NewScope(parent)
	blk.Scope = scope
	m.Stmt(blockID).Data = blk
	return scope
}

// bindLocalInBlock inserts sym (a switch-case/try bind symbol) into
// block's table before block's own statements are walked, so the bind is
// visible from the first statement onward (spec §4.10).
func (a *Analyzer) bindLocalInBlock(m *sir.Module, blockID sir.StmtID, symID sir.SymbolID) {
	if !symID.IsValid() || !blockID.IsValid() {
		return
	}
	scope := a.ensureBlockScope(m, blockID)
	if !scope.IsValid() {
		return
	}
	name := m.Symbol(symID).Name()
	if !name.IsValid() {
		return
	}
	table := m.Scope(scope)
	if !table.Insert(name, symID) {
		a.errorf(diag.StructRedefinition, m.Stmt(blockID).Span, "redefinition of '$'", a.interner.MustLookup(name))
	}
}

// analyzeBlockStmt pushes a fresh scope frame chained to the enclosing one
// (InLoop/Closure/Generics/Result are found by ScopeStack's full-stack scan,
// so a plain block frame need not copy them forward) and walks its
// statements in order, flagging anything reachable after an always-returning
// statement.
func (a *Analyzer) analyzeBlockStmt(m *sir.Module, id sir.StmtID, s *sir.Stmt, d sir.BlockStmtData) {
	scope := a.ensureBlockScope(m, id)
	d.Scope = scope
	s.Data = d
	a.scopes.Push(&sir.AnalysisScope{Container: scope, Block: id})
	a.analyzeStmtList(m, d.Stmts)
	a.scopes.Pop()
}

// analyzeStmtList walks stmts in order, warning once a statement is
// reached after one that always returns on every path (spec §4.10).
func (a *Analyzer) analyzeStmtList(m *sir.Module, stmts []sir.StmtID) {
	terminated := false
	for _, stmtID := range stmts {
		if terminated {
			switch m.Stmt(stmtID).Data.(type) {
			case sir.ExpandedMetaStmtData:
			default:
				a.warnf(diag.CtrlUnreachableCode, m.Stmt(stmtID).Span, "unreachable code")
				terminated = false
			}
		}
		a.analyzeStmt(m, stmtID)
		if a.stmtAlwaysReturns(m, stmtID) {
			terminated = true
		}
	}
}

// stmtAlwaysReturns conservatively reports whether every path through id
// ends in a return (spec §4.13, S3). Loops with a condition are never
// counted as always-returning, since the condition may be false on entry.
func (a *Analyzer) stmtAlwaysReturns(m *sir.Module, id sir.StmtID) bool {
	if !id.IsValid() {
		return false
	}
	switch d := m.Stmt(id).Data.(type) {
	case sir.ReturnStmtData:
		return true
	case sir.BlockStmtData:
		for _, stmtID := range d.Stmts {
			if a.stmtAlwaysReturns(m, stmtID) {
				return true
			}
		}
		return false
	case sir.IfStmtData:
		return d.Else.IsValid() && a.stmtAlwaysReturns(m, d.Then) && a.stmtAlwaysReturns(m, d.Else)
	case sir.SwitchStmtData:
		if len(d.Cases) == 0 {
			return false
		}
		for _, c := range d.Cases {
			if !a.stmtAlwaysReturns(m, c.Body) {
				return false
			}
		}
		return true
	case sir.TryStmtData:
		if !d.Except.IsValid() {
			return false
		}
		if !a.stmtAlwaysReturns(m, d.Body) || !a.stmtAlwaysReturns(m, d.Except) {
			return false
		}
		if d.Else.IsValid() {
			return a.stmtAlwaysReturns(m, d.Else)
		}
		return true
	case sir.LoopStmtData:
		return !d.Cond.IsValid() && a.stmtAlwaysReturns(m, d.Body)
	default:
		return false
	}
}

// analyzeVarStmt finalizes a `var` binding's type (the annotation if
// present, else the initializer's inferred type) and inserts its symbol
// into the innermost block scope (spec §4.10).
func (a *Analyzer) analyzeVarStmt(m *sir.Module, s *sir.Stmt, d sir.VarStmtData) {
	var expected sir.ExprID
	if d.Annotated.IsValid() {
		a.analyzeTypeExpr(m, d.Annotated)
		expected = d.Annotated
	}
	var valueT sir.ExprID
	if d.Value.IsValid() {
		newVal, t := a.analyzeExpr(m, d.Value, expected)
		d.Value = newVal
		valueT = t
	}
	finalType := expected
	if !finalType.IsValid() {
		finalType = valueT
	}
	s.Data = d
	if !d.Symbol.IsValid() {
		return
	}
	sym := m.Symbol(d.Symbol)
	if ls, ok := sym.Data.(sir.LocalSymbol); ok {
		ls.Type = finalType
		sym.Data = ls
	}
	top := a.scopes.Top()
	if top == nil || !top.Container.IsValid() {
		return
	}
	table := m.Scope(top.Container)
	if !table.Insert(sym.Name(), d.Symbol) {
		a.errorf(diag.StructRedefinition, s.Span, "redefinition of '$'", a.interner.MustLookup(sym.Name()))
	}
}

func (a *Analyzer) analyzeAssignStmt(m *sir.Module, s *sir.Stmt, d sir.AssignStmtData) {
	newLHS, lhsT := a.analyzeExpr(m, d.LHS, sir.NoExprID)
	newRHS, _ := a.analyzeExpr(m, d.RHS, lhsT)
	d.LHS, d.RHS = newLHS, newRHS
	s.Data = d
}

// analyzeCompoundAssignStmt desugars `a op= b` into `a = a op b` in place
// (spec §4.10) and redispatches through the canonical AssignStmtData path.
func (a *Analyzer) analyzeCompoundAssignStmt(m *sir.Module, id sir.StmtID, s *sir.Stmt, d sir.CompoundAssignStmtData) {
	bin := m.NewExpr(sir.BinaryData{Op: d.Op, Left: d.LHS, Right: d.RHS}, s.Span)
	s.Data = sir.AssignStmtData{LHS: d.LHS, RHS: bin}
	a.analyzeStmt(m, id)
}

// analyzeReturnStmt checks a return's value (or absence) against the
// enclosing function's declared result type (spec §4.13, S3).
func (a *Analyzer) analyzeReturnStmt(m *sir.Module, s *sir.Stmt, d sir.ReturnStmtData) {
	result := a.scopes.Result()
	voidResult := isVoidResult(m, result)
	if d.Value.IsValid() {
		newVal, _ := a.analyzeExpr(m, d.Value, result)
		d.Value = newVal
		s.Data = d
		return
	}
	s.Data = d
	if !voidResult {
		a.errorf(diag.CtrlDoesNotReturn, s.Span, "missing return value")
	}
}

func (a *Analyzer) analyzeIfStmt(m *sir.Module, s *sir.Stmt, d sir.IfStmtData) {
	newCond, condT := a.analyzeExpr(m, d.Cond, sir.NoExprID)
	d.Cond = newCond
	s.Data = d
	if condT.IsValid() && !isBoolType(m, condT) {
		a.errorf(diag.TypeExpectedBool, m.Expr(newCond).Span, "condition must be bool")
	}
	a.analyzeStmt(m, d.Then)
	if d.Else.IsValid() {
		a.analyzeStmt(m, d.Else)
	}
}

func (a *Analyzer) analyzeSwitchStmt(m *sir.Module, s *sir.Stmt, d sir.SwitchStmtData) {
	newVal, _ := a.analyzeExpr(m, d.Value, sir.NoExprID)
	d.Value = newVal
	for i := range d.Cases {
		c := &d.Cases[i]
		if c.Type.IsValid() {
			a.analyzeTypeExpr(m, c.Type)
		}
		if c.Name.IsValid() && !c.Symbol.IsValid() {
			sym := sir.LocalSymbol{Type: c.Type}
			sym.NameID = c.Name
			c.Symbol = m.NewSymbol(sym, s.Span)
		}
		a.bindLocalInBlock(m, c.Body, c.Symbol)
		a.analyzeStmt(m, c.Body)
	}
	s.Data = d
}

// analyzeTryStmt binds the success arm's value (unwrapped from an Optional
// or Result) and the except arm's error value, then analyzes each body in
// turn (spec §4.10 "try statement").
func (a *Analyzer) analyzeTryStmt(m *sir.Module, s *sir.Stmt, d sir.TryStmtData) {
	newExpr, exprT := a.analyzeExpr(m, d.Expr, sir.NoExprID)
	d.Expr = newExpr
	bindType := exprT
	if exprT.IsValid() {
		switch et := m.Expr(exprT).Data.(type) {
		case sir.ResultTypeData:
			bindType = et.Value
		case sir.OptionalTypeData:
			bindType = et.Value
		}
	}
	if d.Bind.IsValid() && !d.BindSymbol.IsValid() {
		sym := sir.LocalSymbol{Type: bindType}
		sym.NameID = d.Bind
		d.BindSymbol = m.NewSymbol(sym, s.Span)
	}
	a.bindLocalInBlock(m, d.Body, d.BindSymbol)
	a.analyzeStmt(m, d.Body)

	if d.Except.IsValid() {
		if d.ExceptType.IsValid() {
			a.analyzeTypeExpr(m, d.ExceptType)
		}
		if d.ExceptName.IsValid() && !d.ExceptSym.IsValid() {
			sym := sir.LocalSymbol{Type: d.ExceptType}
			sym.NameID = d.ExceptName
			d.ExceptSym = m.NewSymbol(sym, s.Span)
		}
		a.bindLocalInBlock(m, d.Except, d.ExceptSym)
		a.analyzeStmt(m, d.Except)
	}
	if d.Else.IsValid() {
		a.analyzeStmt(m, d.Else)
	}
	s.Data = d
}

// analyzeWhileStmt desugars `while cond { body }` into the canonical
// LoopStmtData (Latch absent) and redispatches (spec §4.10).
func (a *Analyzer) analyzeWhileStmt(m *sir.Module, id sir.StmtID, s *sir.Stmt, d sir.WhileStmtData) {
	s.Data = sir.LoopStmtData{Cond: d.Cond, Body: d.Body, Latch: sir.NoStmtID}
	a.analyzeStmt(m, id)
}

// analyzeForStmt desugars `for x in low..high { body }` into
//
//	{ var x = low; loop (x < high) { body } latch: x = x + 1 }
//
// a block wrapping the canonical LoopStmtData, per spec §4.10. The bind
// variable's scope is the wrapping block, not the loop body, so the latch
// (which runs outside the body's own scope) can still see it.
func (a *Analyzer) analyzeForStmt(m *sir.Module, id sir.StmtID, s *sir.Stmt, d sir.ForStmtData) {
	newLow, lowT := a.analyzeExpr(m, d.Low, sir.NoExprID)
	newHigh, _ := a.analyzeExpr(m, d.High, lowT)
	d.Low, d.High = newLow, newHigh

	parent := m.Root
	if top := a.scopes.Top(); top != nil && top.Container.IsValid() {
		parent = top.Container
	}
	outerScope := m.NewScope(parent)

	if !d.BindSymbol.IsValid() {
		sym := sir.LocalSymbol{Type: lowT}
		sym.NameID = d.Bind
		d.BindSymbol = m.NewSymbol(sym, s.Span)
	}

	initStmt := m.NewStmt(sir.VarStmtData{Symbol: d.BindSymbol, Value: newLow}, s.Span)

	condRef := m.NewExpr(sir.SymbolRefData{Symbol: d.BindSymbol}, s.Span)
	cond := m.NewExpr(sir.BinaryData{Op: sir.BinLt, Left: condRef, Right: newHigh}, s.Span)

	incrRef := m.NewExpr(sir.SymbolRefData{Symbol: d.BindSymbol}, s.Span)
	one := m.NewExpr(sir.IntLitData{Value: 1}, s.Span)
	incr := m.NewExpr(sir.BinaryData{Op: sir.BinAdd, Left: incrRef, Right: one}, s.Span)
	latchLHS := m.NewExpr(sir.SymbolRefData{Symbol: d.BindSymbol}, s.Span)
	latch := m.NewStmt(sir.AssignStmtData{LHS: latchLHS, RHS: incr}, s.Span)

	loopID := m.NewStmt(sir.LoopStmtData{Cond: cond, Body: d.Body, Latch: latch}, s.Span)

	s.Data = sir.BlockStmtData{Scope: outerScope, Stmts: []sir.StmtID{initStmt, loopID}}
	a.analyzeStmt(m, id)
}

// analyzeLoopStmt is the canonical loop form: Cond is checked in the
// parent scope (so a for-loop's bind variable is visible to it), Body and
// Latch are analyzed together under one InLoop frame chained to Body's own
// scope, so Latch can still reference locals Body's scope doesn't shadow
// (spec §4.10).
func (a *Analyzer) analyzeLoopStmt(m *sir.Module, s *sir.Stmt, d sir.LoopStmtData) {
	if d.Cond.IsValid() {
		newCond, condT := a.analyzeExpr(m, d.Cond, sir.NoExprID)
		d.Cond = newCond
		s.Data = d
		if condT.IsValid() && !isBoolType(m, condT) {
			a.errorf(diag.TypeExpectedBool, m.Expr(newCond).Span, "loop condition must be bool")
		}
	}

	var generics map[source.StringID]sir.ExprID
	var closure *sir.ClosureCaptureContext
	if top := a.scopes.Top(); top != nil {
		generics = top.Generics
		closure = top.Closure
	}
	scope := a.ensureBlockScope(m, d.Body)
	a.scopes.Push(&sir.AnalysisScope{Container: scope, Block: d.Body, InLoop: true, Generics: generics, Closure: closure})
	if blk, ok := m.Stmt(d.Body).Data.(sir.BlockStmtData); ok {
		a.analyzeStmtList(m, blk.Stmts)
	} else {
		a.analyzeStmt(m, d.Body)
	}
	if d.Latch.IsValid() {
		a.analyzeStmt(m, d.Latch)
	}
	a.scopes.Pop()
}

// analyzeMetaIfStmt evaluates each branch's compile-time condition in
// order and inlines the first true one's statements directly into the
// surrounding scope — a meta-if is textual substitution, not a new lexical
// scope — leaving an ExpandedMetaStmtData placeholder behind (spec §4.7).
func (a *Analyzer) analyzeMetaIfStmt(m *sir.Module, s *sir.Stmt, d sir.MetaIfStmtData) {
	for _, branch := range d.Branches {
		if branch.Cond.IsValid() && !a.metaCondTrue(m, branch.Cond) {
			continue
		}
		a.inlineMetaBody(m, branch.Body)
		break
	}
	s.Data = sir.ExpandedMetaStmtData{Original: sir.StmtMetaIf}
}

// analyzeMetaForStmt resolves the loop range and analyzes the body once
// with the bind name available as a compile-time value. Since this pass is
// semantic analysis, not codegen, a single representative pass (using the
// range's low bound) is sufficient to validate the body's types across
// every iteration's substitution — a deliberate simplification documented
// in DESIGN.md rather than deep-cloning the body once per iteration.
func (a *Analyzer) analyzeMetaForStmt(m *sir.Module, s *sir.Stmt, d sir.MetaForStmtData) {
	newRange, _ := a.analyzeExpr(m, d.Range, sir.NoExprID)
	d.Range = newRange

	low := a.metaForLowBound(m, newRange)
	tagVal := m.NewExpr(sir.TagValueData{Name: d.Bind, Value: low}, s.Span)

	top := a.scopes.Top()
	var parentGenerics map[source.StringID]sir.ExprID
	var container sir.ScopeID
	if top != nil {
		parentGenerics = top.Generics
		container = top.Container
	}
	generics := make(map[source.StringID]sir.ExprID, len(parentGenerics)+1)
	for k, v := range parentGenerics {
		generics[k] = v
	}
	generics[d.Bind] = tagVal

	a.scopes.Push(&sir.AnalysisScope{Container: container, Generics: generics})
	a.analyzeStmt(m, d.Body)
	a.scopes.Pop()

	s.Data = sir.ExpandedMetaStmtData{Original: sir.StmtMetaFor}
}

// metaForLowBound returns a meta-for range's low-bound expression as
// written (it is not const-evaluated here), or a synthesized zero literal
// when rangeID is not a range with a low bound.
func (a *Analyzer) metaForLowBound(m *sir.Module, rangeID sir.ExprID) sir.ExprID {
	if rd, ok := m.Expr(rangeID).Data.(sir.RangeData); ok && rd.Low.IsValid() {
		return rd.Low
	}
	return m.NewExpr(sir.IntLitData{Value: 0}, m.Expr(rangeID).Span)
}

// inlineMetaBody analyzes body's statement list directly in the current
// scope frame, without pushing a new one, so declarations made inside a
// taken meta-if branch leak into the surrounding block exactly as if they
// had been written there directly.
func (a *Analyzer) inlineMetaBody(m *sir.Module, body sir.StmtID) {
	if !body.IsValid() {
		return
	}
	if blk, ok := m.Stmt(body).Data.(sir.BlockStmtData); ok {
		a.analyzeStmtList(m, blk.Stmts)
		return
	}
	a.analyzeStmt(m, body)
}
