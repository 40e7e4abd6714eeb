package sema

import (
	"fmt"

	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// resState is one resource's init/move bookkeeping, mirroring spec §4.12's
// init_states/move_states pair for a single tracked path.
type resState struct {
	uninitialized bool
	condInit      bool
	moved         bool
	conditional   bool
	partial       bool
	moveSpan      source.Span
}

func (s resState) clone() *resState { cp := s; return &cp }

// resEnv is one block's view of every resource reachable from it, keyed by
// a flattened symbol+field path (resourceKeyOf). Child blocks clone their
// parent's env, mutate the clone, then the caller merges the clone back.
type resEnv map[string]*resState

func cloneEnv(env resEnv) resEnv {
	out := make(resEnv, len(env))
	for k, v := range env {
		out[k] = v.clone()
	}
	return out
}

// mergeBranch folds a child branch's env back into parent after an if/try
// arm: a resource moved unconditionally in every branch merges as moved
// unconditionally; moved in only some merges as conditional (spec §4.12
// "if-branches ... merge child move-states into the parent").
func mergeBranch(parent resEnv, branch resEnv) {
	for k, bs := range branch {
		ps, ok := parent[k]
		if !ok {
			parent[k] = bs.clone()
			continue
		}
		if bs.moved && !ps.moved {
			ps.moved = true
			ps.conditional = true
			ps.partial = bs.partial
			ps.moveSpan = bs.moveSpan
		} else if bs.moved && ps.moved && !bs.conditional && !ps.conditional {
			// stays unconditional
		} else if ps.moved && !bs.moved {
			ps.conditional = true
		}
		if bs.condInit {
			ps.condInit = true
		}
		if !bs.uninitialized {
			ps.uninitialized = false
		}
	}
}

// markBranchIncomplete marks every still-UNINITIALIZED resource in env as
// COND_INITIALIZED, so code after an early return/break/continue does not
// assume an uninitialized local is safe (spec §4.12 "Return and break/
// continue from a loop mark any locals still UNINITIALIZED as
// COND_INITIALIZED").
func markBranchIncomplete(env resEnv) {
	for _, s := range env {
		if s.uninitialized {
			s.condInit = true
		}
	}
}

// resourceKeyOf flattens a chain of plain field accesses over a symbol
// reference into a stable path string, or reports ok=false for any other
// expression shape (a call result, an index, a literal — nothing with a
// trackable resource identity).
func resourceKeyOf(m *sir.Module, exprID sir.ExprID) (string, sir.SymbolID, bool) {
	switch d := m.Expr(exprID).Data.(type) {
	case sir.SymbolRefData:
		return fmt.Sprintf("s%d", d.Symbol), d.Symbol, true
	case sir.FieldData:
		base, sym, ok := resourceKeyOf(m, d.Object)
		if !ok {
			return "", sir.NoSymbolID, false
		}
		return fmt.Sprintf("%s/%d", base, d.Index), sym, true
	default:
		return "", sir.NoSymbolID, false
	}
}

// analyzeResources runs C14 over every function body in m that C13 already
// type-checked: free functions, methods, and the bodies of any generic
// specializations C10 cloned into m's arena meanwhile (spec §4.12, "runs
// after body analysis").
func (a *Analyzer) analyzeResources(m *sir.Module) {
	for _, id := range m.AllDecls {
		decl := m.Decl(id)
		switch d := decl.Data.(type) {
		case sir.FuncDefData:
			if decl.Parent.IsValid() {
				continue
			}
			if len(d.GenericParams) != 0 {
				continue
			}
			a.analyzeResourceFunc(m, id, d)
		case sir.StructDefData:
			if len(d.GenericParams) != 0 {
				continue
			}
			for _, methodID := range d.Methods {
				if md, ok := m.Decl(methodID).Data.(sir.FuncDefData); ok && len(md.GenericParams) == 0 {
					a.analyzeResourceFunc(m, methodID, md)
				}
			}
		}
	}
}

func (a *Analyzer) analyzeResourceFunc(m *sir.Module, declID sir.DeclID, d sir.FuncDefData) {
	if !d.Body.IsValid() {
		return
	}
	env := make(resEnv)
	for _, p := range d.Params {
		if !p.Symbol.IsValid() || !p.Type.IsValid() {
			continue
		}
		if !a.isResourceTypeExpr(m, m.Expr(p.Type)) {
			continue
		}
		env[fmt.Sprintf("s%d", p.Symbol)] = &resState{}
	}
	a.rStmt(m, env, nil, d.Body)
}

// rStmt walks one statement for C14, returning whether it always returns or
// always breaks/continues out of the current loop (used by rBlock/rIf to
// decide whether unreachable trailing code should still merge its env).
// loopOuter is nil outside any loop; inside one it holds the keys of every
// resource that was already tracked when the loop body started, so a move
// of a freshly-declared-inside-the-loop local is never mistaken for one
// moved on every iteration (spec §4.12).
func (a *Analyzer) rStmt(m *sir.Module, env resEnv, loopOuter map[string]bool, id sir.StmtID) bool {
	if !id.IsValid() {
		return false
	}
	s := m.Stmt(id)
	switch d := s.Data.(type) {
	case sir.VarStmtData:
		a.rVarStmt(m, env, loopOuter, s, d)
		return false
	case sir.AssignStmtData:
		a.rUse(m, env, loopOuter, d.LHS)
		a.rMoving(m, env, loopOuter, d.RHS)
		return false
	case sir.ReturnStmtData:
		if d.Value.IsValid() {
			a.checkEscape(m, s, d.Value)
			a.rMoving(m, env, loopOuter, d.Value)
		}
		markBranchIncomplete(env)
		return true
	case sir.ExprStmtData:
		a.rUse(m, env, loopOuter, d.Value)
		return false
	case sir.IfStmtData:
		return a.rIfStmt(m, env, loopOuter, d)
	case sir.SwitchStmtData:
		return a.rSwitchStmt(m, env, loopOuter, d)
	case sir.TryStmtData:
		return a.rTryStmt(m, env, loopOuter, d)
	case sir.LoopStmtData:
		a.rLoopStmt(m, env, d)
		return false
	case sir.BlockStmtData:
		return a.rStmtList(m, env, loopOuter, d.Stmts)
	case sir.ContinueStmtData, sir.BreakStmtData:
		markBranchIncomplete(env)
		return true
	default:
		return false
	}
}

func (a *Analyzer) rStmtList(m *sir.Module, env resEnv, loopOuter map[string]bool, stmts []sir.StmtID) bool {
	terminated := false
	for _, id := range stmts {
		if a.rStmt(m, env, loopOuter, id) {
			terminated = true
		}
	}
	return terminated
}

// rVarStmt treats the initializer as a moving use, then records the new
// local as INITIALIZED if it owns a resource (spec §4.12 "var x = v
// analyzes v as a moving use ... marks x initialized").
func (a *Analyzer) rVarStmt(m *sir.Module, env resEnv, loopOuter map[string]bool, s *sir.Stmt, d sir.VarStmtData) {
	if d.Value.IsValid() {
		a.rMoving(m, env, loopOuter, d.Value)
	}
	if !d.Symbol.IsValid() {
		return
	}
	ls, ok := m.Symbol(d.Symbol).Data.(sir.LocalSymbol)
	if !ok || !ls.Type.IsValid() || !a.isResourceTypeExpr(m, m.Expr(ls.Type)) {
		return
	}
	key := fmt.Sprintf("s%d", d.Symbol)
	if d.Value.IsValid() {
		env[key] = &resState{}
	} else {
		env[key] = &resState{uninitialized: true}
	}
}

func (a *Analyzer) rIfStmt(m *sir.Module, env resEnv, loopOuter map[string]bool, d sir.IfStmtData) bool {
	a.rUse(m, env, loopOuter, d.Cond)
	thenEnv := cloneEnv(env)
	thenTerm := a.rStmt(m, thenEnv, loopOuter, d.Then)
	if !d.Else.IsValid() {
		mergeBranch(env, thenEnv)
		return false
	}
	elseEnv := cloneEnv(env)
	elseTerm := a.rStmt(m, elseEnv, loopOuter, d.Else)
	mergeBranch(env, thenEnv)
	mergeBranch(env, elseEnv)
	for k, ts := range thenEnv {
		es, inElse := elseEnv[k]
		ps, inParent := env[k]
		if inElse && inParent && ts.moved && !ts.conditional && es.moved && !es.conditional {
			ps.conditional = false
		}
	}
	return thenTerm && elseTerm
}

func (a *Analyzer) rSwitchStmt(m *sir.Module, env resEnv, loopOuter map[string]bool, d sir.SwitchStmtData) bool {
	a.rUse(m, env, loopOuter, d.Value)
	if len(d.Cases) == 0 {
		return false
	}
	allTerm := true
	for _, c := range d.Cases {
		caseEnv := cloneEnv(env)
		if !a.rStmt(m, caseEnv, loopOuter, c.Body) {
			allTerm = false
		}
		mergeBranch(env, caseEnv)
	}
	return allTerm
}

func (a *Analyzer) rTryStmt(m *sir.Module, env resEnv, loopOuter map[string]bool, d sir.TryStmtData) bool {
	a.rMoving(m, env, loopOuter, d.Expr)
	bodyEnv := cloneEnv(env)
	bodyTerm := a.rStmt(m, bodyEnv, loopOuter, d.Body)
	mergeBranch(env, bodyEnv)

	if d.Except.IsValid() {
		exceptEnv := cloneEnv(env)
		exceptTerm := a.rStmt(m, exceptEnv, loopOuter, d.Except)
		mergeBranch(env, exceptEnv)
		if d.Else.IsValid() {
			a.rStmt(m, env, loopOuter, d.Else)
			return false
		}
		return bodyTerm && exceptTerm
	}
	return false
}

// rLoopStmt analyzes a loop body on a cloned env, passing the keys tracked at
// loop entry as loopOuter, so a move of a resource initialized outside the
// loop is rejected (spec §4.12
// "moving a resource inside a loop scope that was initialized outside it is
// an error"). The body never terminates the surrounding function from the
// merge's point of view, since a loop may run zero iterations.
func (a *Analyzer) rLoopStmt(m *sir.Module, env resEnv, d sir.LoopStmtData) {
	if d.Cond.IsValid() {
		a.rUse(m, env, nil, d.Cond)
	}
	outer := make(map[string]bool, len(env))
	for k := range env {
		outer[k] = true
	}
	bodyEnv := cloneEnv(env)
	a.rStmt(m, bodyEnv, outer, d.Body)
	if d.Latch.IsValid() {
		a.rStmt(m, bodyEnv, outer, d.Latch)
	}
	mergeBranch(env, bodyEnv)
}

// rUse walks expr for use-after-move checking without consuming any
// resource: every symbol reference reachable from expr is checked against
// its tracked move state, and every CallData's arguments are still treated
// as moving uses regardless of the surrounding context (spec §4.12 "call
// arguments ... are moving uses of their expressions").
func (a *Analyzer) rUse(m *sir.Module, env resEnv, loopOuter map[string]bool, exprID sir.ExprID) {
	if !exprID.IsValid() {
		return
	}
	switch d := m.Expr(exprID).Data.(type) {
	case sir.SymbolRefData:
		a.checkUse(m, env, exprID, d.Symbol)
	case sir.FieldData:
		a.rUse(m, env, loopOuter, d.Object)
	case sir.IndexData:
		a.rUse(m, env, loopOuter, d.Object)
		a.rUse(m, env, loopOuter, d.Index)
	case sir.StarUnresolvedData:
		a.rUse(m, env, loopOuter, d.Operand)
	case sir.UnaryData:
		a.rUse(m, env, loopOuter, d.Operand)
	case sir.BinaryData:
		a.rUse(m, env, loopOuter, d.Left)
		a.rUse(m, env, loopOuter, d.Right)
	case sir.CastData:
		a.rUse(m, env, loopOuter, d.Operand)
	case sir.CoercionData:
		a.rUse(m, env, loopOuter, d.Operand)
	case sir.TupleData:
		for _, elt := range d.Elements {
			a.rUse(m, env, loopOuter, elt)
		}
	case sir.RangeData:
		a.rUse(m, env, loopOuter, d.Low)
		a.rUse(m, env, loopOuter, d.High)
	case sir.CallData:
		a.rUse(m, env, loopOuter, d.Callee)
		for _, arg := range d.Args {
			a.rMoving(m, env, loopOuter, arg)
		}
	case sir.StructLitData:
		for _, f := range d.Fields {
			a.rMoving(m, env, loopOuter, f.Value)
		}
	case sir.UnionCaseLitData:
		for _, f := range d.Fields {
			a.rMoving(m, env, loopOuter, f.Value)
		}
	}
}

// rMoving walks expr as a moving use: a bare symbol reference or a chain of
// plain field accesses over one is rewritten into MoveData and its
// resource's state is recorded moved; anything else (a call result, a
// literal, an operator result) produces a fresh value with no existing
// resource to consume, so it falls back to rUse (spec §4.12).
func (a *Analyzer) rMoving(m *sir.Module, env resEnv, loopOuter map[string]bool, exprID sir.ExprID) {
	if !exprID.IsValid() {
		return
	}
	e := m.Expr(exprID)
	switch d := e.Data.(type) {
	case sir.SymbolRefData:
		a.moveLeaf(m, env, loopOuter, e, exprID, d.Symbol, false)
	case sir.FieldData:
		a.rUse(m, env, loopOuter, d.Object)
		if base, sym, ok := resourceKeyOf(m, d.Object); ok {
			a.moveField(m, env, loopOuter, e, exprID, base, sym, d.Object)
		}
	case sir.StarUnresolvedData:
		a.errorf(diag.ResMoveOutOfPtr, e.Span, "cannot move out of a pointer dereference")
		a.rUse(m, env, loopOuter, d.Operand)
	default:
		a.rUse(m, env, loopOuter, exprID)
	}
}

// moveLeaf consumes the whole resource rooted at sym: reports use-after-move
// if already moved, otherwise marks it moved and rewrites exprID in place
// into a MoveData wrapping a fresh node carrying the original data (spec
// §4.12, mirroring how `var x = v` wraps v in InitExpr).
func (a *Analyzer) moveLeaf(m *sir.Module, env resEnv, loopOuter map[string]bool, e *sir.Expr, exprID sir.ExprID, symID sir.SymbolID, partial bool) {
	key := fmt.Sprintf("s%d", symID)
	st, tracked := env[key]
	if !tracked {
		return
	}
	if st.moved {
		a.reportUseAfterMove(e.Span, st)
		return
	}
	if loopOuter != nil && loopOuter[key] && !st.uninitialized {
		a.errorf(diag.ResMoveInLoop, e.Span, "resource moved in every iteration of a loop")
	}
	st.moved = true
	st.partial = partial
	st.moveSpan = e.Span
	original := m.NewExpr(e.Data, e.Span)
	e.Data = sir.MoveData{Value: original, Conditional: st.conditional, Partial: partial}
}

// moveField consumes one field of a struct resource rather than the whole
// chain: the sub-path is marked moved/partial, and if the field's owning
// struct itself carries __deinit__, moving a field out of it is rejected
// outright (spec §4.12 "moving out of ... a field of a resource that has
// __deinit__ is an error").
func (a *Analyzer) moveField(m *sir.Module, env resEnv, loopOuter map[string]bool, e *sir.Expr, exprID sir.ExprID, baseKey string, rootSym sir.SymbolID, objectExprID sir.ExprID) {
	if loopOuter != nil && loopOuter[baseKey] {
		a.errorf(diag.ResMoveInLoop, e.Span, "resource moved in every iteration of a loop")
	}
	if objType := m.Expr(objectExprID).Type; objType.IsValid() && a.isResourceTypeExpr(m, m.Expr(objType)) {
		if a.hasDeinitMethod(m, objType) {
			a.errorf(diag.ResMoveOutOfDeinit, e.Span, "cannot move a field out of a resource with a deinitializer")
			return
		}
	}
	st, tracked := env[baseKey]
	if !tracked {
		st = &resState{}
		env[baseKey] = st
	}
	if st.moved && !st.partial {
		a.reportUseAfterMove(e.Span, st)
		return
	}
	st.moved = true
	st.partial = true
	st.moveSpan = e.Span

	rootKey := fmt.Sprintf("s%d", rootSym)
	if rootSt, ok := env[rootKey]; ok && !rootSt.moved {
		rootSt.partial = true
	}

	original := m.NewExpr(e.Data, e.Span)
	e.Data = sir.MoveData{Value: original, Conditional: st.conditional, Partial: true}
}

func (a *Analyzer) hasDeinitMethod(m *sir.Module, typeExprID sir.ExprID) bool {
	sym := symbolOfTypeExpr(m, m.Expr(typeExprID))
	if !sym.IsValid() {
		return false
	}
	sd, ok := m.Symbol(sym).Data.(sir.StructDefSymbol)
	if !ok || !sd.Table.IsValid() {
		return false
	}
	_, ok = m.Scope(sd.Table).Local(a.interner.Intern(sir.MagicDeinit))
	return ok
}

func (a *Analyzer) checkUse(m *sir.Module, env resEnv, exprID sir.ExprID, symID sir.SymbolID) {
	key := fmt.Sprintf("s%d", symID)
	st, tracked := env[key]
	if !tracked {
		return
	}
	if st.moved && !st.partial {
		a.reportUseAfterMove(m.Expr(exprID).Span, st)
	}
}

func (a *Analyzer) reportUseAfterMove(span source.Span, st *resState) {
	msg := "use of moved value"
	if st.partial {
		msg = "use of partially moved value"
	}
	if st.conditional {
		msg += " (moved conditionally)"
	}
	if a.opts.Bag != nil {
		a.opts.Bag.BuildError(diag.ResUseAfterMove, span, msg).
			AddNote(st.moveSpan, "moved here").
			Report()
		return
	}
	a.errorf(diag.ResUseAfterMove, span, msg)
}

// checkEscape flags `return &local` — a reference to a function-local
// outliving the frame that owns it (spec §7 "pointer-to-local-escapes").
func (a *Analyzer) checkEscape(m *sir.Module, s *sir.Stmt, valueID sir.ExprID) {
	ud, ok := m.Expr(valueID).Data.(sir.UnaryData)
	if !ok || ud.Op != sir.UnaryRef {
		return
	}
	if _, _, ok := resourceKeyOf(m, ud.Operand); !ok {
		return
	}
	sr, ok := m.Expr(ud.Operand).Data.(sir.SymbolRefData)
	if !ok {
		return
	}
	if _, ok := m.Symbol(sr.Symbol).Data.(sir.LocalSymbol); ok {
		a.errorf(diag.ResPointerEscapes, s.Span, "pointer to local variable escapes its function")
	}
}
