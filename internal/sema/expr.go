package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// analyzeExpr resolves id in value context (spec §4.6, C8's value half):
// literals settle on a concrete or pseudo type, identifiers/dotted/bracketed
// forms rewrite into their resolved shape, and every value-producing node's
// Type field is finalized (coerced toward expected when given). It returns
// the id actually holding the analyzed value — usually id itself, but a
// coercion wrap allocates a new node — and the value's type, or NoExprID on
// failure; callers must store the returned id back into whatever slot held
// the original.
func (a *Analyzer) analyzeExpr(m *sir.Module, id sir.ExprID, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	if !id.IsValid() {
		return id, sir.NoExprID
	}
	e := m.Expr(id)
	switch d := e.Data.(type) {
	case sir.ErrorData:
		return id, sir.NoExprID
	case sir.CompletionData:
		return id, a.voidType(m)
	case sir.IntLitData:
		return a.coerceTo(m, id, a.pseudoType(m, sir.PseudoIntLiteral), expected)
	case sir.FPLitData:
		return a.coerceTo(m, id, a.pseudoType(m, sir.PseudoFPLiteral), expected)
	case sir.BoolLitData:
		return a.coerceTo(m, id, a.pseudoType(m, sir.PseudoBoolLiteral), expected)
	case sir.CharLitData:
		t := a.primitiveType(m, sir.PrimChar)
		e.Type = t
		return id, t
	case sir.NullLitData:
		return a.coerceTo(m, id, a.pseudoType(m, sir.PseudoNullLiteral), expected)
	case sir.NoneLitData:
		_, t := a.analyzeNoneLit(e, expected)
		return id, t
	case sir.UndefinedData:
		t := expected
		if !t.IsValid() {
			t = a.voidType(m)
		}
		e.Type = t
		return id, t
	case sir.StringLitData:
		_, t := a.analyzeStringLit(m, e, expected)
		return id, t
	case sir.ArrayLitData:
		return a.analyzeArrayLit(m, id, e, d, expected)
	case sir.MapLitData:
		return a.analyzeMapLit(m, id, e, d, expected)
	case sir.StructLitData:
		return a.analyzeStructLit(m, id, e, d)
	case sir.UnionCaseLitData:
		return a.analyzeUnionCaseLit(m, id, e, d)
	case sir.ClosureLitData:
		return a.analyzeClosureLit(m, id, e, d)
	case sir.IdentData:
		return a.analyzeIdentValue(m, id, e, d, expected)
	case sir.SymbolRefData:
		return a.analyzeSymbolRefValue(m, id, e, d, expected)
	case sir.TagValueData:
		t := a.i32Type(m)
		e.Type = t
		return id, t
	case sir.BinaryData:
		return a.analyzeBinary(m, id, e, d)
	case sir.UnaryData:
		return a.analyzeUnary(m, id, e, d)
	case sir.CastData:
		return a.analyzeCast(m, id, e, d)
	case sir.IndexData:
		return a.analyzeIndexData(m, id, e, d)
	case sir.CallData:
		return a.analyzeCallData(m, id, e, d, expected)
	case sir.FieldData:
		return a.analyzeFieldData(m, id, e, d)
	case sir.RangeData:
		return a.analyzeRange(m, id, e, d)
	case sir.TupleData:
		return a.analyzeTuple(m, id, e, d)
	case sir.CoercionData:
		a.analyzeExpr(m, d.Operand, sir.NoExprID)
		e.Type = d.To
		return id, d.To
	case sir.StarUnresolvedData:
		return a.analyzeStarUnresolved(m, id, e, d, expected)
	case sir.BracketUnresolvedData:
		return a.analyzeBracketUnresolved(m, id, e, d, expected)
	case sir.DotUnresolvedData:
		return a.analyzeDotUnresolved(m, id, e, d, expected)
	case sir.MetaAccessData:
		return a.analyzeMetaAccess(m, id, e, d)
	case sir.MetaFieldData:
		_, ok := a.constEval(m, id)
		t := a.boolType(m)
		if !ok {
			return id, sir.NoExprID
		}
		e.Type = t
		return id, t
	case sir.MetaCallData:
		return a.analyzeMetaCall(m, id, e, d)
	case sir.InitData, sir.MoveData, sir.DeinitData:
		// C14 stamps these onto already fully-typed nodes; nothing further
		// to resolve if body analysis reaches one directly.
		return id, e.Type
	default:
		if e.Kind().IsTypeExpr() {
			a.analyzeTypeExpr(m, id)
			return id, e.Type
		}
		return id, sir.NoExprID
	}
}

func (a *Analyzer) analyzeNoneLit(e *sir.Expr, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	if !expected.IsValid() {
		a.errorf(diag.TypeMismatch, e.Span, "cannot infer the Optional type of 'none' without context")
		return sir.NoExprID, sir.NoExprID
	}
	e.Type = expected
	return sir.NoExprID, expected
}

// analyzeStringLit finalizes a string literal against expected when given,
// restricted to a `*u8` pointer or any struct type (pseudoCoercesTo does not
// tell the standard String struct apart from other structs; anything else
// reports TypeCannotCoerceStr), or defaults it to a
// specialization of the preamble's String container absent one (spec
// §4.2, §4.6).
func (a *Analyzer) analyzeStringLit(m *sir.Module, e *sir.Expr, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	if expected.IsValid() {
		if !pseudoCoercesTo(m, sir.PseudoStringLiteral, expected) {
			a.errorf(diag.TypeCannotCoerceStr, e.Span, "cannot coerce a string literal to the expected type")
			return a.defaultStringLit(m, e)
		}
		e.Type = expected
		return sir.NoExprID, expected
	}
	return a.defaultStringLit(m, e)
}

func (a *Analyzer) defaultStringLit(m *sir.Module, e *sir.Expr) (sir.ExprID, sir.ExprID) {
	sym, ok := a.preambleStdSymbol(m, "String")
	if !ok {
		return sir.NoExprID, sir.NoExprID
	}
	specSym, ok := a.specialize(m, sym, []sir.ExprID{a.primitiveType(m, sir.PrimChar)}, e.Span)
	if !ok {
		return sir.NoExprID, sir.NoExprID
	}
	t := m.NewExpr(sir.SymbolRefData{Symbol: specSym}, e.Span)
	e.Type = t
	return sir.NoExprID, t
}

func (a *Analyzer) analyzeArrayLit(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.ArrayLitData, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	var elemExpected sir.ExprID
	if expected.IsValid() {
		if at, ok := m.Expr(expected).Data.(sir.ArrayTypeData); ok {
			elemExpected = at.Elem
		}
	}
	var elemType sir.ExprID
	for i, elemID := range d.Elements {
		newElem, t := a.analyzeExpr(m, elemID, elemExpected)
		if !elemExpected.IsValid() && elemType.IsValid() && t.IsValid() {
			newElem, t = a.coerceTo(m, newElem, t, elemType)
		}
		d.Elements[i] = newElem
		if !elemType.IsValid() {
			elemType = t
		}
	}
	e.Data = d
	if expected.IsValid() {
		e.Type = expected
		return id, expected
	}
	if !elemType.IsValid() {
		a.errorf(diag.TypeMismatch, e.Span, "cannot infer the element type of an empty array literal")
		return id, sir.NoExprID
	}
	sym, ok := a.preambleStdSymbol(m, "Array")
	if !ok {
		return id, sir.NoExprID
	}
	specSym, ok := a.specialize(m, sym, []sir.ExprID{elemType}, e.Span)
	if !ok {
		return id, sir.NoExprID
	}
	t := m.NewExpr(sir.ArrayTypeData{Elem: elemType, Specialize: specSym}, e.Span)
	e.Type = t
	return id, t
}

func (a *Analyzer) analyzeMapLit(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.MapLitData, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	var keyExpected, valExpected sir.ExprID
	if expected.IsValid() {
		if mt, ok := m.Expr(expected).Data.(sir.MapTypeData); ok {
			keyExpected, valExpected = mt.Key, mt.Value
		}
	}
	var keyType, valType sir.ExprID
	for i, entry := range d.Entries {
		newKey, kt := a.analyzeExpr(m, entry.Key, keyExpected)
		newVal, vt := a.analyzeExpr(m, entry.Value, valExpected)
		d.Entries[i] = sir.MapEntry{Key: newKey, Value: newVal}
		if !keyType.IsValid() {
			keyType = kt
		}
		if !valType.IsValid() {
			valType = vt
		}
	}
	e.Data = d
	if expected.IsValid() {
		e.Type = expected
		return id, expected
	}
	if !keyType.IsValid() || !valType.IsValid() {
		a.errorf(diag.TypeMismatch, e.Span, "cannot infer the key/value type of an empty map literal")
		return id, sir.NoExprID
	}
	t := m.NewExpr(sir.MapTypeData{Key: keyType, Value: valType}, e.Span)
	e.Type = t
	return id, t
}

func (a *Analyzer) analyzeStructLit(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.StructLitData) (sir.ExprID, sir.ExprID) {
	structSymID := d.Struct
	if !structSymID.IsValid() {
		container := m.Root
		if top := a.scopes.Top(); top != nil && top.Container.IsValid() {
			container = top.Container
		}
		sym, ok := m.Lookup(container, d.TypeName, a)
		if !ok {
			a.errorf(diag.StructSymbolNotFound, e.Span, "cannot find struct '$'", a.interner.MustLookup(d.TypeName))
			return id, sir.NoExprID
		}
		structSymID = sym
	}
	defMod, realStruct := a.resolveExternal(m, structSymID)
	decl, ok := structDeclOf(defMod, realStruct)
	if !ok {
		a.errorf(diag.TypeMismatch, e.Span, "'$' is not a struct", a.interner.MustLookup(d.TypeName))
		return id, sir.NoExprID
	}
	seen := make(map[source.StringID]bool, len(d.Fields))
	for i, fi := range d.Fields {
		idx, fieldType, ok := structFieldLookup(defMod, realStruct, fi.Name)
		if !ok {
			a.errorf(diag.TypeNoField, e.Span, "struct has no field '$'", a.interner.MustLookup(fi.Name))
			continue
		}
		if seen[fi.Name] {
			a.errorf(diag.TypeDuplicateField, e.Span, "duplicate field '$'", a.interner.MustLookup(fi.Name))
		}
		seen[fi.Name] = true
		newVal, _ := a.analyzeExpr(m, fi.Value, fieldType)
		d.Fields[i] = sir.StructFieldInit{Name: fi.Name, Value: newVal, Field: idx}
	}
	for _, fieldID := range decl.Fields {
		fd, ok := defMod.Decl(fieldID).Data.(sir.StructFieldData)
		if !ok || seen[fd.Name] {
			continue
		}
		a.errorf(diag.TypeMissingField, e.Span, "missing field '$'", a.interner.MustLookup(fd.Name))
	}
	d.Struct = structSymID
	e.Data = d
	t := m.NewExpr(sir.SymbolRefData{Symbol: structSymID}, e.Span)
	e.Type = t
	return id, t
}

func structDeclOf(m *sir.Module, symID sir.SymbolID) (sir.StructDefData, bool) {
	sd, ok := m.Symbol(symID).Data.(sir.StructDefSymbol)
	if !ok {
		return sir.StructDefData{}, false
	}
	decl, ok := m.Decl(sd.Decl).Data.(sir.StructDefData)
	return decl, ok
}

func structFieldLookup(m *sir.Module, structSym sir.SymbolID, name source.StringID) (sir.FieldIndex, sir.ExprID, bool) {
	decl, ok := structDeclOf(m, structSym)
	if !ok {
		return sir.NoFieldIndex, sir.NoExprID, false
	}
	for _, fieldID := range decl.Fields {
		fd, ok := m.Decl(fieldID).Data.(sir.StructFieldData)
		if !ok || fd.Name != name {
			continue
		}
		return fd.Index, fd.Type, true
	}
	return sir.NoFieldIndex, sir.NoExprID, false
}

// analyzeUnionCaseLit resolves a union-case literal's fields. Union/Case
// are already bound by the time one reaches here — either authored
// directly or rewritten in place by the call analyzer (spec §4.6, "rewrite
// the call into a UnionCaseLiteral").
func (a *Analyzer) analyzeUnionCaseLit(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.UnionCaseLitData) (sir.ExprID, sir.ExprID) {
	defMod, realCase := a.resolveExternal(m, d.Case)
	cs, ok := defMod.Symbol(realCase).Data.(sir.UnionCaseSymbol)
	if !ok {
		return id, sir.NoExprID
	}
	decl, ok := defMod.Decl(cs.Decl).Data.(sir.UnionCaseData)
	if !ok {
		return id, sir.NoExprID
	}
	for i, fi := range d.Fields {
		var ft sir.ExprID
		fieldIdx := sir.NoFieldIndex
		for fidx, f := range decl.Fields {
			if f.Name == fi.Name {
				ft = f.Type
				fieldIdx = sir.FieldIndex(fidx)
				break
			}
		}
		if fieldIdx == sir.NoFieldIndex {
			a.errorf(diag.TypeNoField, e.Span, "union case has no field '$'", a.interner.MustLookup(fi.Name))
		}
		newVal, _ := a.analyzeExpr(m, fi.Value, ft)
		d.Fields[i] = sir.StructFieldInit{Name: fi.Name, Value: newVal, Field: fieldIdx}
	}
	e.Data = d
	t := m.NewExpr(sir.SymbolRefData{Symbol: d.Union}, e.Span)
	e.Type = t
	return id, t
}

// analyzeClosureLit binds a closure literal's parameters into its body's
// scope, pushes a ClosureCaptureContext so free-variable references
// resolved from within the body get recorded, and specializes the
// preamble's Closure container over the generated function's type
// (spec §4.6 "Closure literal", S7).
func (a *Analyzer) analyzeClosureLit(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.ClosureLitData) (sir.ExprID, sir.ExprID) {
	genDecl, ok := m.Decl(d.Gen).Data.(sir.FuncDefData)
	if !ok {
		return id, sir.NoExprID
	}
	a.analyzeTypeExpr(m, genDecl.Result)
	for i := range genDecl.Params {
		a.analyzeTypeExpr(m, genDecl.Params[i].Type)
	}

	parent := a.scopes.Top()
	var container sir.ScopeID
	if d.Body.IsValid() {
		if block, ok := m.Stmt(d.Body).Data.(sir.BlockStmtData); ok {
			container = block.Scope
		}
	}
	if !container.IsValid() {
		parentScope := m.Root
		if parent != nil && parent.Container.IsValid() {
			parentScope = parent.Container
		}
		container = m.NewScope(parentScope)
	}
	table := m.Scope(container)
	for i := range d.Params {
		if i >= len(genDecl.Params) {
			break
		}
		sym := sir.LocalSymbol{Type: genDecl.Params[i].Type}
		sym.NameID = genDecl.Params[i].Name
		symID := m.NewSymbol(sym, e.Span)
		d.Params[i] = symID
		table.Insert(genDecl.Params[i].Name, symID)
	}

	capture := &sir.ClosureCaptureContext{}
	var generics map[source.StringID]sir.ExprID
	if parent != nil {
		generics = parent.Generics
	}
	a.scopes.Push(&sir.AnalysisScope{Container: container, Block: d.Body, Closure: capture, Generics: generics, Result: genDecl.Result})
	if d.Body.IsValid() {
		if block, ok := m.Stmt(d.Body).Data.(sir.BlockStmtData); ok && !block.Scope.IsValid() {
			block.Scope = container
			m.Stmt(d.Body).Data = block
		}
		a.analyzeStmt(m, d.Body)
	}
	a.scopes.Pop()
	d.Captures = capture.Captures

	e.Data = d
	funcT := a.functionTypeOf(m, d.Gen)
	sym, ok := a.preambleStdSymbol(m, "Closure")
	if !ok {
		e.Type = funcT
		return id, funcT
	}
	specSym, ok := a.specialize(m, sym, []sir.ExprID{funcT}, e.Span)
	if !ok {
		e.Type = funcT
		return id, funcT
	}
	t := m.NewExpr(sir.ClosureTypeData{Func: funcT, Specialize: specSym}, e.Span)
	e.Type = t
	return id, t
}

func (a *Analyzer) analyzeIdentValue(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.IdentData, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	container := m.Root
	if top := a.scopes.Top(); top != nil && top.Container.IsValid() {
		container = top.Container
	}
	symID, ok := m.Lookup(container, d.Name, a)
	if !ok {
		a.errorf(diag.StructSymbolNotFound, e.Span, "cannot find '$'", a.interner.MustLookup(d.Name))
		return id, sir.NoExprID
	}
	sr := sir.SymbolRefData{Symbol: symID}
	e.Data = sr
	return a.analyzeSymbolRefValue(m, id, e, sr, expected)
}

func (a *Analyzer) analyzeSymbolRefValue(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.SymbolRefData, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	defMod, sym := a.resolveExternal(m, d.Symbol)
	if !sym.IsValid() {
		return id, sir.NoExprID
	}
	if cc := a.scopes.Closure(); cc != nil {
		switch defMod.Symbol(sym).Data.(type) {
		case sir.LocalSymbol, sir.ParamSymbol:
			cc.Capture(sym)
		}
	}
	actual := a.valueTypeOfSymbol(defMod, sym)
	if !actual.IsValid() {
		e.Type = sir.NoExprID
		return id, sir.NoExprID
	}
	return a.coerceTo(m, id, actual, expected)
}

func (a *Analyzer) valueTypeOfSymbol(m *sir.Module, symID sir.SymbolID) sir.ExprID {
	sym := m.Symbol(symID)
	switch d := sym.Data.(type) {
	case sir.LocalSymbol:
		return d.Type
	case sir.ParamSymbol:
		return d.Type
	case sir.ConstDefSymbol:
		decl, ok := m.Decl(d.Decl).Data.(sir.ConstDefData)
		if !ok {
			return sir.NoExprID
		}
		if decl.Type.IsValid() {
			return decl.Type
		}
		return m.Expr(decl.Value).Type
	case sir.EnumVariantSymbol:
		vdecl := m.Decl(d.Decl)
		if !vdecl.Parent.IsValid() {
			return sir.NoExprID
		}
		edecl := m.Decl(vdecl.Parent)
		ed, ok := edecl.Data.(sir.EnumDefData)
		if !ok || !ed.Symbol.IsValid() {
			return sir.NoExprID
		}
		return m.NewExpr(sir.SymbolRefData{Symbol: ed.Symbol}, sym.Span)
	case sir.FuncDefSymbol:
		return a.functionTypeOf(m, d.Decl)
	case sir.OverloadSetSymbol:
		// A bare reference to an overloaded name outside a call has no
		// single signature to report; resolved at the call site instead.
		return a.voidType(m)
	default:
		return sir.NoExprID
	}
}

func (a *Analyzer) functionTypeOf(m *sir.Module, declID sir.DeclID) sir.ExprID {
	fd, ok := m.Decl(declID).Data.(sir.FuncDefData)
	if !ok {
		return sir.NoExprID
	}
	params := make([]sir.ExprID, 0, len(fd.Params))
	for _, p := range fd.Params {
		if p.Self {
			continue
		}
		params = append(params, p.Type)
	}
	return m.NewExpr(sir.FunctionTypeData{Params: params, Result: fd.Result}, m.Decl(declID).Span)
}

func isNumeric(m *sir.Module, t sir.ExprID) bool {
	if !t.IsValid() {
		return false
	}
	if isIntegerType(m, t) || isFPType(m, t) {
		return true
	}
	if pk, ok := pseudoKind(m, t); ok {
		return pk == sir.PseudoIntLiteral || pk == sir.PseudoFPLiteral
	}
	return false
}

// tryOperatorOverload looks up lhsType's (dereferenced) struct for a magic
// method matching name and, if found, returns its declared result type.
// The binary/unary expression node's Data shape is left unchanged — this
// implementation resolves overload operators to their result type without
// rewriting the operator expression into an equivalent method-call node,
// a deliberate simplification (see DESIGN.md).
func (a *Analyzer) tryOperatorOverload(m *sir.Module, lhsType sir.ExprID, magic string) (sir.ExprID, bool) {
	structSym, ok := structSymbolOf(m, lhsType, true)
	if !ok {
		return sir.NoExprID, false
	}
	sd, ok := m.Symbol(structSym).Data.(sir.StructDefSymbol)
	if !ok || !sd.Table.IsValid() {
		return sir.NoExprID, false
	}
	methodSym, ok := m.Scope(sd.Table).Local(a.interner.Intern(magic))
	if !ok {
		return sir.NoExprID, false
	}
	sig, ok := funcSignature(m, methodSym)
	if !ok {
		return sir.NoExprID, false
	}
	result := sig.Result
	if !result.IsValid() {
		result = a.voidType(m)
	}
	return result, true
}

func (a *Analyzer) analyzeBinary(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.BinaryData) (sir.ExprID, sir.ExprID) {
	newLeft, leftT := a.analyzeExpr(m, d.Left, sir.NoExprID)
	newRight, rightT := a.analyzeExpr(m, d.Right, sir.NoExprID)
	d.Left, d.Right = newLeft, newRight
	e.Data = d
	if !leftT.IsValid() || !rightT.IsValid() {
		return id, sir.NoExprID
	}
	if d.Op.IsLogical() {
		if !isBoolType(m, leftT) || !isBoolType(m, rightT) {
			a.errorf(diag.TypeExpectedBool, e.Span, "operands of a logical operator must be bool")
		}
		t := a.boolType(m)
		e.Type = t
		return id, t
	}
	if d.Op.IsComparison() {
		if isNumeric(m, leftT) && isNumeric(m, rightT) || typesEqual(m, leftT, rightT) {
			t := a.boolType(m)
			e.Type = t
			return id, t
		}
		if magic := d.Op.MagicMethod(); magic != "" {
			if _, ok := a.tryOperatorOverload(m, leftT, magic); ok {
				t := a.boolType(m)
				e.Type = t
				return id, t
			}
		}
		a.errorf(diag.TypeMismatch, e.Span, "cannot compare these types")
		return id, sir.NoExprID
	}
	if isNumeric(m, leftT) && isNumeric(m, rightT) {
		result := leftT
		if !typesEqual(m, leftT, rightT) {
			switch {
			case isPseudoType(m, leftT):
				result = rightT
			case isPseudoType(m, rightT):
				result = leftT
			default:
				a.errorf(diag.TypeMismatch, e.Span, "mismatched operand types")
				return id, sir.NoExprID
			}
		}
		d.Left, _ = a.coerceTo(m, d.Left, leftT, result)
		d.Right, _ = a.coerceTo(m, d.Right, rightT, result)
		e.Data = d
		e.Type = result
		return id, result
	}
	if magic := d.Op.MagicMethod(); magic != "" {
		if result, ok := a.tryOperatorOverload(m, leftT, magic); ok {
			e.Type = result
			return id, result
		}
	}
	a.errorf(diag.TypeMismatch, e.Span, "operator not supported for these operand types")
	return id, sir.NoExprID
}

func (a *Analyzer) analyzeUnary(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.UnaryData) (sir.ExprID, sir.ExprID) {
	newOperand, operandT := a.analyzeExpr(m, d.Operand, sir.NoExprID)
	d.Operand = newOperand
	e.Data = d
	if !operandT.IsValid() {
		return id, sir.NoExprID
	}
	switch d.Op {
	case sir.UnaryRef:
		t := m.NewExpr(sir.ReferenceTypeData{Referent: operandT}, e.Span)
		e.Type = t
		return id, t
	case sir.UnaryNot:
		if !isBoolType(m, operandT) {
			a.errorf(diag.TypeExpectedBool, e.Span, "operand of '!' must be bool")
		}
		t := a.boolType(m)
		e.Type = t
		return id, t
	case sir.UnaryNeg:
		if isNumeric(m, operandT) {
			e.Type = operandT
			return id, operandT
		}
		if magic := d.Op.MagicMethod(); magic != "" {
			if result, ok := a.tryOperatorOverload(m, operandT, magic); ok {
				e.Type = result
				return id, result
			}
		}
		a.errorf(diag.TypeMismatch, e.Span, "operand of unary '-' must be numeric")
		return id, sir.NoExprID
	case sir.UnaryBitNot:
		if isIntegerType(m, operandT) {
			e.Type = operandT
			return id, operandT
		}
		if magic := d.Op.MagicMethod(); magic != "" {
			if result, ok := a.tryOperatorOverload(m, operandT, magic); ok {
				e.Type = result
				return id, result
			}
		}
		a.errorf(diag.TypeExpectedInteger, e.Span, "operand of '~' must be an integer")
		return id, sir.NoExprID
	}
	return id, sir.NoExprID
}

func (a *Analyzer) analyzeCast(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.CastData) (sir.ExprID, sir.ExprID) {
	newOperand, operandT := a.analyzeExpr(m, d.Operand, sir.NoExprID)
	d.Operand = newOperand
	a.analyzeTypeExpr(m, d.Target)
	e.Data = d
	if !operandT.IsValid() {
		return id, sir.NoExprID
	}
	target := d.Target
	_, srcPtr := m.Expr(operandT).Data.(sir.PointerTypeData)
	_, dstPtr := m.Expr(target).Data.(sir.PointerTypeData)
	ok := (isNumeric(m, operandT) && isNumeric(m, target)) ||
		(isIntegerType(m, operandT) && isBoolType(m, target)) ||
		(isBoolType(m, operandT) && isIntegerType(m, target)) ||
		isAddrType(m, operandT) || isAddrType(m, target) ||
		(srcPtr && dstPtr)
	if !ok {
		a.errorf(diag.TypeCannotCast, e.Span, "cannot cast between these types")
	}
	e.Type = target
	return id, target
}

func elementTypeOf(m *sir.Module, t sir.ExprID) sir.ExprID {
	if !t.IsValid() {
		return sir.NoExprID
	}
	switch d := m.Expr(t).Data.(type) {
	case sir.PointerTypeData:
		return d.Pointee
	case sir.StaticArrayTypeData:
		return d.Elem
	case sir.ArrayTypeData:
		return d.Elem
	default:
		return sir.NoExprID
	}
}

func (a *Analyzer) analyzeIndexData(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.IndexData) (sir.ExprID, sir.ExprID) {
	newObj, objT := a.analyzeExpr(m, d.Object, sir.NoExprID)
	newIdx, _ := a.analyzeExpr(m, d.Index, sir.NoExprID)
	d.Object, d.Index = newObj, newIdx
	e.Data = d
	elem := elementTypeOf(m, objT)
	if !elem.IsValid() {
		return id, sir.NoExprID
	}
	e.Type = elem
	return id, elem
}

func (a *Analyzer) analyzeFieldData(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.FieldData) (sir.ExprID, sir.ExprID) {
	newObj, objT := a.analyzeExpr(m, d.Object, sir.NoExprID)
	d.Object = newObj
	e.Data = d
	if !objT.IsValid() {
		return id, sir.NoExprID
	}
	structSym, ok := structSymbolOf(m, objT, true)
	if !ok {
		return id, sir.NoExprID
	}
	idx, fieldType, ok := structFieldLookup(m, structSym, d.Name)
	if !ok {
		return id, sir.NoExprID
	}
	d.Index = idx
	e.Data = d
	e.Type = fieldType
	return id, fieldType
}

func (a *Analyzer) analyzeRange(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.RangeData) (sir.ExprID, sir.ExprID) {
	newLow, lowT := a.analyzeExpr(m, d.Low, sir.NoExprID)
	newHigh, _ := a.analyzeExpr(m, d.High, lowT)
	d.Low, d.High = newLow, newHigh
	e.Data = d
	if !isIntegerType(m, lowT) && !isPseudoType(m, lowT) {
		a.errorf(diag.TypeExpectedInteger, e.Span, "range bounds must be integers")
	}
	e.Type = lowT
	return id, lowT
}

// analyzeTuple analyzes each element but cannot express a composite tuple
// type: this SIR's type-expr catalogue has no TupleTypeData shape (only
// the type forms §4.6 actually needs). Tuple values are still produced and
// consumed positionally (e.g. multi-return unpacking in VarStmtData), but
// `.0`-style field access on one falls through to analyzeDotUnresolved's
// no-field diagnostic — see DESIGN.md.
func (a *Analyzer) analyzeTuple(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.TupleData) (sir.ExprID, sir.ExprID) {
	for i, elemID := range d.Elements {
		newElem, _ := a.analyzeExpr(m, elemID, sir.NoExprID)
		d.Elements[i] = newElem
	}
	e.Data = d
	e.Type = sir.NoExprID
	return id, sir.NoExprID
}

// analyzeStarUnresolved commits `*x` to a dereference in value context
// (spec §4.6 "Star expression"). There is no dedicated finalized deref
// expr shape in this SIR's kind set (unlike the type-position rewrite into
// PointerTypeData); the node is left as StarUnresolvedData with only its
// Type finalized, rather than inventing a new kind outside the given
// catalogue (documented in DESIGN.md).
func (a *Analyzer) analyzeStarUnresolved(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.StarUnresolvedData, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	newOperand, operandT := a.analyzeExpr(m, d.Operand, sir.NoExprID)
	d.Operand = newOperand
	e.Data = d
	if !operandT.IsValid() {
		return id, sir.NoExprID
	}
	switch pt := m.Expr(operandT).Data.(type) {
	case sir.PointerTypeData:
		e.Type = pt.Pointee
		return a.coerceTo(m, id, pt.Pointee, expected)
	case sir.ReferenceTypeData:
		e.Type = pt.Referent
		return a.coerceTo(m, id, pt.Referent, expected)
	}
	if result, ok := a.tryOperatorOverload(m, operandT, sir.MagicDeref); ok {
		e.Type = result
		return a.coerceTo(m, id, result, expected)
	}
	a.errorf(diag.TypeCannotDeref, e.Span, "cannot dereference this type")
	return id, sir.NoExprID
}

func mustDecl(m *sir.Module, symID sir.SymbolID) sir.DeclID {
	if fd, ok := m.Symbol(symID).Data.(sir.FuncDefSymbol); ok {
		return fd.Decl
	}
	return sir.NoDeclID
}

func (a *Analyzer) analyzeBracketUnresolved(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.BracketUnresolvedData, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	newCallee, calleeT := a.analyzeExpr(m, d.Callee, sir.NoExprID)
	if sr, ok := m.Expr(newCallee).Data.(sir.SymbolRefData); ok {
		defMod, realSym := a.resolveExternal(m, sr.Symbol)
		if _, isFunc := defMod.Symbol(realSym).Data.(sir.FuncDefSymbol); isFunc {
			for _, argT := range d.Args {
				a.analyzeTypeExpr(m, argT)
			}
			specSym, ok := a.specialize(m, sr.Symbol, d.Args, e.Span)
			if !ok {
				return id, sir.NoExprID
			}
			e.Data = sir.SymbolRefData{Symbol: specSym}
			t := a.functionTypeOf(defMod, mustDecl(defMod, specSym))
			e.Type = t
			return id, t
		}
	}
	if len(d.Args) != 1 {
		a.errorf(diag.TypeMismatch, e.Span, "index expression takes exactly one argument")
		return id, sir.NoExprID
	}
	newIndex, idxT := a.analyzeExpr(m, d.Args[0], sir.NoExprID)
	if !isIntegerType(m, idxT) && !isPseudoType(m, idxT) {
		a.errorf(diag.TypeExpectedInteger, e.Span, "index must be an integer")
	}
	elem := elementTypeOf(m, calleeT)
	if !elem.IsValid() {
		if magicElem, ok := a.tryOperatorOverload(m, calleeT, sir.MagicIndex); ok {
			elem = magicElem
		}
	}
	e.Data = sir.IndexData{Object: newCallee, Index: newIndex}
	if !elem.IsValid() {
		a.errorf(diag.TypeNoField, e.Span, "type is not indexable")
		return id, sir.NoExprID
	}
	e.Type = elem
	return a.coerceTo(m, id, elem, expected)
}

func (a *Analyzer) analyzeDotUnresolved(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.DotUnresolvedData, expected sir.ExprID) (sir.ExprID, sir.ExprID) {
	newLHS, lhsT := a.analyzeExpr(m, d.LHS, sir.NoExprID)
	d.LHS = newLHS
	if lhsSR, ok := m.Expr(newLHS).Data.(sir.SymbolRefData); ok {
		if tmod, scope, ok := a.tableOf(m, lhsSR.Symbol); ok && scope.IsValid() {
			if symID, ok := tmod.Lookup(scope, d.RHS, a); ok {
				proxy := symID
				if tmod != m {
					proxy = a.bindExternal(m, d.RHS, e.Span, tmod, symID)
				}
				sr := sir.SymbolRefData{Symbol: proxy}
				e.Data = sr
				return a.analyzeSymbolRefValue(m, id, e, sr, expected)
			}
		}
	}
	e.Data = d
	if !lhsT.IsValid() {
		return id, sir.NoExprID
	}
	structSym, ok := structSymbolOf(m, lhsT, true)
	if !ok {
		a.errorf(diag.TypeNoField, e.Span, "no field '$'", a.interner.MustLookup(d.RHS))
		return id, sir.NoExprID
	}
	if idx, fieldT, ok := structFieldLookup(m, structSym, d.RHS); ok {
		e.Data = sir.FieldData{Object: d.LHS, Name: d.RHS, Index: idx}
		e.Type = fieldT
		return a.coerceTo(m, id, fieldT, expected)
	}
	if sd, ok := m.Symbol(structSym).Data.(sir.StructDefSymbol); ok && sd.Table.IsValid() {
		if methodSym, ok := m.Scope(sd.Table).Local(d.RHS); ok {
			ft := a.functionTypeOf(m, mustDecl(m, methodSym))
			e.Data = sir.SymbolRefData{Symbol: methodSym}
			e.Type = ft
			return id, ft
		}
	}
	a.errorf(diag.TypeNoField, e.Span, "no field or method '$'", a.interner.MustLookup(d.RHS))
	return id, sir.NoExprID
}

func (a *Analyzer) analyzeMetaAccess(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.MetaAccessData) (sir.ExprID, sir.ExprID) {
	a.analyzeTypeExpr(m, d.Operand)
	e.Data = d
	e.Type = sir.NoExprID
	return id, sir.NoExprID
}

// analyzeMetaCall resolves a `meta(T).method(args)` reflective call's
// arguments; the result itself is only meaningful in the const-evaluable
// contexts C11 already drives (meta-if conditions, const initializers).
// As a plain value expression its type is approximated as bool, matching
// every reflective predicate spec §4.9 tabulates except meta(T).name,
// which has no representable constValue shape (see const_eval.go).
func (a *Analyzer) analyzeMetaCall(m *sir.Module, id sir.ExprID, e *sir.Expr, d sir.MetaCallData) (sir.ExprID, sir.ExprID) {
	for i, argID := range d.Args {
		newArg, _ := a.analyzeExpr(m, argID, sir.NoExprID)
		d.Args[i] = newArg
	}
	e.Data = d
	t := a.boolType(m)
	e.Type = t
	return id, t
}
