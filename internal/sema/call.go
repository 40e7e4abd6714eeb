package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// signature is the shape of a callable symbol's declared parameters and
// result, used by both overload resolution (C8/C9) and operator-overload
// lookup. Self is excluded from Params; a method call's receiver is
// resolved separately from its positional arguments.
type signature struct {
	Params    []sir.ExprID
	Result    sir.ExprID
	Generic   []source.StringID
	HasSelf   bool
	SelfByVal bool
}

// funcSignature reports the declared signature of a func-shaped symbol, or
// ok=false if sym isn't one (spec §4.6 "Call expression").
func funcSignature(m *sir.Module, sym sir.SymbolID) (signature, bool) {
	switch d := m.Symbol(sym).Data.(type) {
	case sir.FuncDefSymbol:
		return signatureOfFunc(m, d.Decl)
	case sir.FuncDeclSymbol:
		return signatureOfDecl(m, d.Decl)
	case sir.NativeFuncDeclSymbol:
		return signatureOfNative(m, d.Decl)
	default:
		return signature{}, false
	}
}

func signatureOfFunc(m *sir.Module, declID sir.DeclID) (signature, bool) {
	d, ok := m.Decl(declID).Data.(sir.FuncDefData)
	if !ok {
		return signature{}, false
	}
	return signatureOfParams(d.Params, d.Result, d.GenericParams), true
}

func signatureOfDecl(m *sir.Module, declID sir.DeclID) (signature, bool) {
	d, ok := m.Decl(declID).Data.(sir.FuncDeclData)
	if !ok {
		return signature{}, false
	}
	return signatureOfParams(d.Params, d.Result, d.GenericParams), true
}

func signatureOfNative(m *sir.Module, declID sir.DeclID) (signature, bool) {
	d, ok := m.Decl(declID).Data.(sir.NativeFuncDeclData)
	if !ok {
		return signature{}, false
	}
	return signatureOfParams(d.Params, d.Result, nil), true
}

func signatureOfParams(params []sir.Param, result sir.ExprID, generic []source.StringID) signature {
	sig := signature{Result: result, Generic: generic}
	for _, p := range params {
		if p.Self {
			sig.HasSelf = true
			sig.SelfByVal = p.ByVal
			continue
		}
		sig.Params = append(sig.Params, p.Type)
	}
	return sig
}

// unionCaseDeclOf reports the UnionCaseData a union-case symbol names.
func unionCaseDeclOf(m *sir.Module, symID sir.SymbolID) (sir.UnionCaseData, bool) {
	cs, ok := m.Symbol(symID).Data.(sir.UnionCaseSymbol)
	if !ok {
		return sir.UnionCaseData{}, false
	}
	decl, ok := m.Decl(cs.Decl).Data.(sir.UnionCaseData)
	return decl, ok
}

// analyzeCallData resolves a syntactic call into one of: a method call (the
// callee is `obj.name`, name resolves to a struct method), a direct or
// overloaded free-function call, a union-case-literal rewrite, a generic
// call that triggers C9 inference and C10 specialization, or a closure
// value call (spec §4.6 "Call expression", §4.8/§4.9 generics).
func (a *Analyzer) analyzeCallData(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.CallData, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	if dot, ok := m.Expr(d.Callee).Data.(sir.DotUnresolvedData); ok {
		if newID, newT, handled := a.analyzeMethodCall(m, id, e, d, dot, expected); handled {
			return newID, newT
		}
	}

	newCallee, calleeT := a.analyzeExpr(m, d.Callee, sir.NoExprID)
	d.Callee = newCallee
	e.Data = d

	sr, ok := m.Expr(newCallee).Data.(sir.SymbolRefData)
	if !ok {
		return a.analyzeClosureCall(m, id, e, d, calleeT, expected)
	}

	defMod, realSym := a.resolveExternal(m, sr.Symbol)
	if !realSym.IsValid() {
		return id, sir.NoExprID
	}
	switch sd := defMod.Symbol(realSym).Data.(type) {
	case sir.UnionCaseSymbol:
		return a.rewriteUnionCaseCall(m, id, e, d, sr.Symbol, defMod, realSym)
	case sir.OverloadSetSymbol:
		return a.analyzeOverloadCall(m, id, e, d, sr.Symbol, defMod, sd.Overloads, expected)
	case sir.FuncDefSymbol, sir.FuncDeclSymbol, sir.NativeFuncDeclSymbol:
		return a.analyzeDirectCall(m, id, e, d, sr.Symbol, defMod, realSym, expected)
	default:
		a.errorf(diag.TypeCannotCall, e.Span, "expression is not callable")
		return id, sir.NoExprID
	}
}

// analyzeMethodCall handles `obj.method(args)`: the callee syntax is
// consumed directly (rather than routed through the generic DotUnresolved
// value-analysis path) so the receiver expression survives to become
// Args[0], wrapped in a reference unless the method takes self byval (spec
// §4.6 "For a method call, Args[0] is the receiver"). Returns handled=false
// when the dotted name isn't a method on a struct receiver, so the caller
// falls back to ordinary callee analysis (a field holding a closure, a
// module-qualified free function, etc.).
func (a *Analyzer) analyzeMethodCall(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.CallData, dot sir.DotUnresolvedData, expected sir.ExprID) (sir.ExprID, sir.ExprID, bool) {
	newLHS, lhsT := a.analyzeExpr(m, dot.LHS, sir.NoExprID)
	if !lhsT.IsValid() {
		e.Data = d
		return id, sir.NoExprID, true
	}
	structSym, ok := structSymbolOf(m, lhsT, true)
	if !ok {
		return sir.NoExprID, sir.NoExprID, false
	}
	sd, ok := m.Symbol(structSym).Data.(sir.StructDefSymbol)
	if !ok || !sd.Table.IsValid() {
		return sir.NoExprID, sir.NoExprID, false
	}
	methodSym, ok := m.Scope(sd.Table).Local(dot.RHS)
	if !ok {
		return sir.NoExprID, sir.NoExprID, false
	}
	sig, ok := funcSignature(m, methodSym)
	if !ok {
		return sir.NoExprID, sir.NoExprID, false
	}

	recv := newLHS
	if !sig.SelfByVal && !isAddrType(m, lhsT) {
		if _, alreadyRef := m.Expr(lhsT).Data.(sir.ReferenceTypeData); !alreadyRef {
			refExpr := m.NewExpr(sir.UnaryData{Op: sir.UnaryRef, Operand: newLHS}, e.Span)
			recv, _ = a.analyzeExpr(m, refExpr, sir.NoExprID)
		}
	}

	args := make([]sir.ExprID, 0, len(d.Args)+1)
	args = append(args, recv)
	if !a.analyzeCallArgs(m, sig.Params, d.Args, &args, e.Span) {
		e.Data = sir.CallData{Callee: d.Callee, Symbol: methodSym, Args: args}
		return id, sir.NoExprID, true
	}

	calleeExpr := m.NewExpr(sir.SymbolRefData{Symbol: methodSym}, e.Span)
	e.Data = sir.CallData{Callee: calleeExpr, Symbol: methodSym, Args: args}
	result := sig.Result
	if !result.IsValid() {
		result = a.voidType(m)
	}
	e.Type = result
	newID, newT := a.coerceTo(m, id, result, expected)
	return newID, newT, true
}

// analyzeCallArgs analyzes each argument against the corresponding
// parameter type (when the arity matches) and appends the result to out,
// reporting SigUnexpectedArgCount on a mismatch. Returns false when the
// arity didn't match, so the caller can still finalize a best-effort
// CallData node for later passes to walk.
func (a *Analyzer) analyzeCallArgs(m *sir.Module, params []sir.ExprID, rawArgs []sir.ExprID, out *[]sir.ExprID, span source.Span) bool {
	ok := len(rawArgs) == len(params)
	if !ok {
		a.errorf(diag.SigUnexpectedArgCount, span, "expected $ argument(s), got $", len(params), len(rawArgs))
	}
	for i, argID := range rawArgs {
		var expected sir.ExprID
		if i < len(params) {
			expected = params[i]
		}
		newArg, _ := a.analyzeExpr(m, argID, expected)
		*out = append(*out, newArg)
	}
	return ok
}

// analyzeDirectCall resolves a call to a single (non-overloaded) named
// function, triggering C9 generic-argument inference and C10
// specialization when the target is generic (spec §4.8/§4.9).
func (a *Analyzer) analyzeDirectCall(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.CallData, callerSym sir.SymbolID, defMod *sir.Module, realSym sir.SymbolID, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	sig, ok := funcSignature(defMod, realSym)
	if !ok {
		a.errorf(diag.TypeCannotCall, e.Span, "expression is not callable")
		return id, sir.NoExprID
	}

	targetSym := callerSym
	if len(sig.Generic) > 0 {
		argTypes := make([]sir.ExprID, len(d.Args))
		for i, argID := range d.Args {
			newArg, t := a.analyzeExpr(m, argID, sir.NoExprID)
			d.Args[i] = newArg
			argTypes[i] = t
		}
		genericArgs, ok := a.inferGenericArgs(m, sig.Params, argTypes, sig.Generic, e.Span)
		if !ok {
			e.Data = d
			return id, sir.NoExprID
		}
		specSym, ok := a.specialize(m, callerSym, genericArgs, e.Span)
		if !ok {
			e.Data = d
			return id, sir.NoExprID
		}
		targetSym = specSym
		sig, _ = funcSignature(m, specSym)
		args := make([]sir.ExprID, 0, len(d.Args))
		a.analyzeCallArgs(m, sig.Params, d.Args, &args, e.Span)
		d.Args = args
	} else {
		args := make([]sir.ExprID, 0, len(d.Args))
		a.analyzeCallArgs(m, sig.Params, d.Args, &args, e.Span)
		d.Args = args
	}

	d.Symbol = targetSym
	e.Data = d
	result := sig.Result
	if !result.IsValid() {
		result = a.voidType(m)
	}
	e.Type = result
	return a.coerceTo(m, id, result, expected)
}

// analyzeOverloadCall picks the single overload whose parameter types
// accept the (untyped-analyzed) argument types, then re-analyzes the
// arguments against the winner's parameter types for final coercion (spec
// §4.8 "overload resolution").
func (a *Analyzer) analyzeOverloadCall(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.CallData, callerSym sir.SymbolID, defMod *sir.Module, overloads []sir.SymbolID, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	argTypes := make([]sir.ExprID, len(d.Args))
	for i, argID := range d.Args {
		if pk, ok := literalPseudoKind(m, argID); ok {
			// Leave the literal unanalyzed here: a full analyzeExpr pass
			// with no expected type would immediately default it (e.g. a
			// string literal to the standard String container), losing the
			// untyped-literal-ness resolveOverload needs to apply spec
			// §4.8's "limited coercion allowance from pseudo-types". The
			// winning candidate's parameter type re-analyzes this same
			// argID for real in analyzeCallArgs below.
			argTypes[i] = a.pseudoType(m, pk)
			continue
		}
		newArg, t := a.analyzeExpr(m, argID, sir.NoExprID)
		d.Args[i] = newArg
		argTypes[i] = t
	}
	winner, ok := a.resolveOverload(defMod, overloads, argTypes, e.Span)
	if !ok {
		e.Data = d
		return id, sir.NoExprID
	}
	sig, ok := funcSignature(defMod, winner)
	if !ok {
		e.Data = d
		return id, sir.NoExprID
	}
	args := make([]sir.ExprID, 0, len(d.Args))
	a.analyzeCallArgs(m, sig.Params, d.Args, &args, e.Span)
	d.Args = args
	proxy := winner
	if defMod != m {
		proxy = a.bindExternal(m, m.Symbol(callerSym).Name(), e.Span, defMod, winner)
	}
	d.Symbol = proxy
	e.Data = d
	result := sig.Result
	if !result.IsValid() {
		result = a.voidType(m)
	}
	e.Type = result
	return a.coerceTo(m, id, result, expected)
}

// resolveOverload returns the single candidate whose parameter types all
// accept the call's argument types. Zero matches reports
// SigUnexpectedArgCount; more than one reports SigAmbiguousOverload and
// proceeds with the first, so analysis of the surrounding expression can
// still continue.
func (a *Analyzer) resolveOverload(m *sir.Module, overloads []sir.SymbolID, argTypes []sir.ExprID, span source.Span) (sir.SymbolID, bool) {
	var matches []sir.SymbolID
	for _, cand := range overloads {
		sig, ok := funcSignature(m, cand)
		if !ok || len(sig.Params) != len(argTypes) {
			continue
		}
		match := true
		for i, pt := range sig.Params {
			if !argTypes[i].IsValid() || !typeCompatible(m, argTypes[i], pt) {
				match = false
				break
			}
		}
		if match {
			matches = append(matches, cand)
		}
	}
	switch len(matches) {
	case 0:
		a.errorf(diag.SigUnexpectedArgCount, span, "no overload matches these argument types")
		return sir.NoSymbolID, false
	case 1:
		return matches[0], true
	default:
		a.errorf(diag.SigAmbiguousOverload, span, "call is ambiguous between $ overloads", len(matches))
		return matches[0], true
	}
}

// typeCompatible is overload resolution's looser argument/parameter
// compatibility check: exact match, numeric-to-numeric, an untyped pseudo
// literal whose kind legitimately coerces to paramT (spec §3.2's
// per-kind target set — settled for real by the later coerceTo pass once
// a single candidate wins), or auto-ref into a reference parameter.
func typeCompatible(m *sir.Module, argT, paramT sir.ExprID) bool {
	if typesEqual(m, argT, paramT) {
		return true
	}
	if isNumeric(m, argT) && isNumeric(m, paramT) {
		return true
	}
	if pk, ok := pseudoKind(m, argT); ok {
		return pseudoCoercesTo(m, pk, paramT)
	}
	if rt, ok := m.Expr(paramT).Data.(sir.ReferenceTypeData); ok {
		return typeCompatible(m, argT, rt.Referent)
	}
	return false
}

// literalPseudoKind reports the untyped-literal marker a raw, unanalyzed
// expr node would settle on, without running full analysis — used by
// analyzeOverloadCall to peek at an argument's pseudo-kind ahead of
// picking a candidate.
func literalPseudoKind(m *sir.Module, id sir.ExprID) (sir.PseudoTypeKind, bool) {
	if !id.IsValid() {
		return 0, false
	}
	switch m.Expr(id).Data.(type) {
	case sir.IntLitData:
		return sir.PseudoIntLiteral, true
	case sir.FPLitData:
		return sir.PseudoFPLiteral, true
	case sir.BoolLitData:
		return sir.PseudoBoolLiteral, true
	case sir.NullLitData:
		return sir.PseudoNullLiteral, true
	case sir.StringLitData:
		return sir.PseudoStringLiteral, true
	default:
		return 0, false
	}
}

// inferGenericArgs unifies each declared parameter's shape against the
// call's actual argument types to solve for every name in generic, in
// declaration order (spec §4.9 "generic argument inference").
func (a *Analyzer) inferGenericArgs(m *sir.Module, params []sir.ExprID, argTypes []sir.ExprID, generic []source.StringID, span source.Span) ([]sir.ExprID, bool) {
	env := make(map[source.StringID]sir.ExprID, len(generic))
	ok := true
	n := len(params)
	if len(argTypes) < n {
		n = len(argTypes)
	}
	for i := 0; i < n; i++ {
		if !a.unifyGenericParam(m, params[i], argTypes[i], generic, env, span) {
			ok = false
		}
	}
	result := make([]sir.ExprID, len(generic))
	for i, g := range generic {
		v, found := env[g]
		if !found {
			a.errorf(diag.SigCannotInferGenericArg, span, "cannot infer generic argument '$'", a.interner.MustLookup(g))
			ok = false
			continue
		}
		result[i] = v
	}
	return result, ok
}

func (a *Analyzer) unifyGenericParam(m *sir.Module, paramType, argType sir.ExprID, generic []source.StringID, env map[source.StringID]sir.ExprID, span source.Span) bool {
	if !paramType.IsValid() || !argType.IsValid() {
		return true
	}
	switch d := m.Expr(paramType).Data.(type) {
	case sir.IdentData:
		return a.bindInferred(m, d.Name, argType, generic, env, span)
	case sir.SymbolRefData:
		if ga, ok := m.Symbol(d.Symbol).Data.(sir.GenericArgSymbol); ok {
			return a.bindInferred(m, ga.NameID, argType, generic, env, span)
		}
		return true
	case sir.PointerTypeData:
		if at, ok := m.Expr(argType).Data.(sir.PointerTypeData); ok {
			return a.unifyGenericParam(m, d.Pointee, at.Pointee, generic, env, span)
		}
		return true
	case sir.ReferenceTypeData:
		if at, ok := m.Expr(argType).Data.(sir.ReferenceTypeData); ok {
			return a.unifyGenericParam(m, d.Referent, at.Referent, generic, env, span)
		}
		return a.unifyGenericParam(m, d.Referent, argType, generic, env, span)
	case sir.ArrayTypeData:
		if at, ok := m.Expr(argType).Data.(sir.ArrayTypeData); ok {
			return a.unifyGenericParam(m, d.Elem, at.Elem, generic, env, span)
		}
		return true
	case sir.StaticArrayTypeData:
		if at, ok := m.Expr(argType).Data.(sir.StaticArrayTypeData); ok {
			return a.unifyGenericParam(m, d.Elem, at.Elem, generic, env, span)
		}
		return true
	default:
		return true
	}
}

func (a *Analyzer) bindInferred(m *sir.Module, name source.StringID, argType sir.ExprID, generic []source.StringID, env map[source.StringID]sir.ExprID, span source.Span) bool {
	isGeneric := false
	for _, g := range generic {
		if g == name {
			isGeneric = true
			break
		}
	}
	if !isGeneric {
		return true
	}
	if existing, ok := env[name]; ok {
		if typesEqual(m, existing, argType) {
			return true
		}
		a.errorf(diag.SigGenericArgInferConflict, span, "conflicting types inferred for generic argument '$'", a.interner.MustLookup(name))
		return false
	}
	env[name] = argType
	return true
}

// rewriteUnionCaseCall rewrites a call targeting a union case's
// constructor-like name into a UnionCaseLitData, matching positional
// arguments to the case's declared fields by index (spec §4.6 "rewrite the
// call into a UnionCaseLiteral").
func (a *Analyzer) rewriteUnionCaseCall(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.CallData, caseSym sir.SymbolID, defMod *sir.Module, realCase sir.SymbolID) (sir.ExprID, sir.ExprID) {
	caseDecl, ok := unionCaseDeclOf(defMod, realCase)
	if !ok {
		a.errorf(diag.TypeCannotCall, e.Span, "expression is not callable")
		return id, sir.NoExprID
	}
	unionDeclID := defMod.Decl(defMod.Symbol(realCase).Data.(sir.UnionCaseSymbol).Decl).Parent
	unionDecl, ok := defMod.Decl(unionDeclID).Data.(sir.UnionDefData)
	if !ok {
		a.errorf(diag.TypeCannotCall, e.Span, "expression is not callable")
		return id, sir.NoExprID
	}

	fields := make([]sir.StructFieldInit, 0, len(d.Args))
	for i, argID := range d.Args {
		if i >= len(caseDecl.Fields) {
			a.errorf(diag.SigUnexpectedArgCount, e.Span, "expected $ argument(s), got $", len(caseDecl.Fields), len(d.Args))
			break
		}
		fields = append(fields, sir.StructFieldInit{Name: caseDecl.Fields[i].Name, Value: argID, Field: sir.FieldIndex(i)})
	}
	ucd := sir.UnionCaseLitData{Union: unionDecl.Symbol, Case: caseSym, Fields: fields}
	e.Data = ucd
	return a.analyzeUnionCaseLit(m, id, e, ucd)
}

// analyzeClosureCall splits a closure-value call into its data pointer
// (Args[0]) and the remaining positional arguments (spec §4.6 "for a
// closure call, Args[0] is the split-out data pointer").
func (a *Analyzer) analyzeClosureCall(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.CallData, calleeT sir.ExprID, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	if !calleeT.IsValid() {
		return id, sir.NoExprID
	}
	ct, ok := m.Expr(calleeT).Data.(sir.ClosureTypeData)
	if !ok {
		a.errorf(diag.TypeCannotCall, e.Span, "expression is not callable")
		return id, sir.NoExprID
	}
	ft, ok := m.Expr(ct.Func).Data.(sir.FunctionTypeData)
	if !ok {
		a.errorf(diag.TypeCannotCall, e.Span, "expression is not callable")
		return id, sir.NoExprID
	}
	params := ft.Params
	if len(params) > 0 {
		params = params[1:] // first param is the synthesized data pointer
	}
	args := make([]sir.ExprID, 0, len(d.Args)+1)
	args = append(args, d.Callee)
	a.analyzeCallArgs(m, params, d.Args, &args, e.Span)
	d.Args = args
	e.Data = d
	result := ft.Result
	if !result.IsValid() {
		result = a.voidType(m)
	}
	e.Type = result
	return a.coerceTo(m, id, result, expected)
}
