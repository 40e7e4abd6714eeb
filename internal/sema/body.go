package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// analyzeBodies runs C13 over every non-generic function body reachable
// from m's top level: free functions, methods of non-generic structs, and
// top-level const initializers. A generic definition's body is analyzed
// lazily, once per instantiation, when C10 clones it (spec §4.13, §5
// "clone-on-demand").
func (a *Analyzer) analyzeBodies(m *sir.Module) {
	for _, id := range m.AllDecls {
		decl := m.Decl(id)
		switch d := decl.Data.(type) {
		case sir.FuncDefData:
			if decl.Parent.IsValid() {
				continue // member function; visited through its owning struct below
			}
			if len(d.GenericParams) != 0 {
				continue
			}
			a.analyzeFuncBody(m, id)
		case sir.StructDefData:
			if len(d.GenericParams) != 0 {
				continue
			}
			for _, methodID := range d.Methods {
				md, ok := m.Decl(methodID).Data.(sir.FuncDefData)
				if ok && len(md.GenericParams) == 0 {
					a.analyzeFuncBody(m, methodID)
				}
			}
		case sir.ConstDefData:
			if !d.Value.IsValid() {
				continue
			}
			newVal, _ := a.analyzeExpr(m, d.Value, d.Type)
			if newVal != d.Value {
				d.Value = newVal
				decl.Data = d
			}
		}
	}
}

// analyzeFuncBody resolves a function's parameter/result types, binds its
// parameters into the body block's scope, and walks the body via the
// statement analyzer (C12), then checks that every path returns a value
// when the function's result type isn't void (spec §4.13, S3).
func (a *Analyzer) analyzeFuncBody(m *sir.Module, declID sir.DeclID) {
	decl := m.Decl(declID)
	d, ok := decl.Data.(sir.FuncDefData)
	if !ok {
		return
	}

	a.analyzeTypeExpr(m, d.Result)
	for i := range d.Params {
		if d.Params[i].Self {
			continue
		}
		a.analyzeTypeExpr(m, d.Params[i].Type)
	}

	if !d.Body.IsValid() {
		return
	}
	bodyStmt := m.Stmt(d.Body)
	block, ok := bodyStmt.Data.(sir.BlockStmtData)
	if !ok {
		return
	}
	scope := block.Scope
	if !scope.IsValid() {
		scope = m.NewScope(m.Root)
		block.Scope = scope
		bodyStmt.Data = block
	}
	table := m.Scope(scope)
	for i := range d.Params {
		p := &d.Params[i]
		sym := sir.ParamSymbol{Type: p.Type, Self: p.Self}
		sym.NameID = p.Name
		symID := m.NewSymbol(sym, decl.Span)
		p.Symbol = symID
		table.Insert(p.Name, symID)
	}
	decl.Data = d

	var generics map[source.StringID]sir.ExprID
	if top := a.scopes.Top(); top != nil {
		generics = top.Generics
	}
	a.scopes.Push(&sir.AnalysisScope{Container: scope, Block: d.Body, Generics: generics, Result: d.Result})
	a.analyzeStmt(m, d.Body)
	a.scopes.Pop()

	if !isVoidResult(m, d.Result) && !a.stmtAlwaysReturns(m, d.Body) {
		a.errorf(diag.CtrlDoesNotAlwaysReturn, decl.Span, "function does not return a value on all paths")
	}
}

// isVoidResult reports whether a function's declared result type is void
// (including an unset result, which defaults to void per spec §4.5).
func isVoidResult(m *sir.Module, result sir.ExprID) bool {
	if !result.IsValid() {
		return true
	}
	pt, ok := m.Expr(result).Data.(sir.PrimitiveTypeData)
	return ok && pt.Primitive == sir.PrimVoid
}
