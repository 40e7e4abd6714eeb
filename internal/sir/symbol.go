package sir

import "semacore/internal/source"

// SymbolData is a single SIR symbol variant: any referenceable entity.
type SymbolData interface {
	Kind() SymbolKind
	Name() source.StringID
}

// Symbol is a SIR symbol node, stored by value in a module's Symbols arena.
type Symbol struct {
	Data SymbolData
	Span source.Span
}

func (s Symbol) Kind() SymbolKind {
	if s.Data == nil {
		return SymError
	}
	return s.Data.Kind()
}

func (s Symbol) Name() source.StringID {
	if s.Data == nil {
		return source.NoStringID
	}
	return s.Data.Name()
}

// named is embedded by every symbol variant that is a straightforward
// wrapper around a declaration, to avoid repeating Name()'s boilerplate.
type named struct {
	NameID source.StringID
	Decl   DeclID
}

func (n named) Name() source.StringID { return n.NameID }

type ModuleSymbol struct {
	named
	Path  string
	Table ScopeID
}

func (ModuleSymbol) Kind() SymbolKind { return SymModule }

type FuncDefSymbol struct{ named }

func (FuncDefSymbol) Kind() SymbolKind { return SymFuncDef }

type FuncDeclSymbol struct{ named }

func (FuncDeclSymbol) Kind() SymbolKind { return SymFuncDecl }

type NativeFuncDeclSymbol struct{ named }

func (NativeFuncDeclSymbol) Kind() SymbolKind { return SymNativeFuncDecl }

type ConstDefSymbol struct{ named }

func (ConstDefSymbol) Kind() SymbolKind { return SymConstDef }

type StructDefSymbol struct {
	named
	Table ScopeID
}

func (StructDefSymbol) Kind() SymbolKind { return SymStructDef }

type StructFieldSymbol struct{ named }

func (StructFieldSymbol) Kind() SymbolKind { return SymStructField }

type VarDeclSymbol struct{ named }

func (VarDeclSymbol) Kind() SymbolKind { return SymVarDecl }

type NativeVarDeclSymbol struct{ named }

func (NativeVarDeclSymbol) Kind() SymbolKind { return SymNativeVarDecl }

type EnumDefSymbol struct {
	named
	Table ScopeID
}

func (EnumDefSymbol) Kind() SymbolKind { return SymEnumDef }

type EnumVariantSymbol struct{ named }

func (EnumVariantSymbol) Kind() SymbolKind { return SymEnumVariant }

type UnionDefSymbol struct {
	named
	Table ScopeID
}

func (UnionDefSymbol) Kind() SymbolKind { return SymUnionDef }

type UnionCaseSymbol struct{ named }

func (UnionCaseSymbol) Kind() SymbolKind { return SymUnionCase }

type ProtoDefSymbol struct {
	named
	Table ScopeID
}

func (ProtoDefSymbol) Kind() SymbolKind { return SymProtoDef }

type TypeAliasSymbol struct{ named }

func (TypeAliasSymbol) Kind() SymbolKind { return SymTypeAlias }

// UseIdentSymbol is a `use` leaf before its target is resolved (C4 attaches
// Target); UseRebindSymbol additionally carries the original imported name.
type UseIdentSymbol struct {
	named
	Target SymbolID
}

func (UseIdentSymbol) Kind() SymbolKind { return SymUseIdent }

type UseRebindSymbol struct {
	named
	Original source.StringID
	Target   SymbolID
}

func (UseRebindSymbol) Kind() SymbolKind { return SymUseRebind }

// LocalSymbol is a let-binding introduced by a VarStmt or pattern bind
// (switch case, try success/except arm, for-loop variable).
type LocalSymbol struct {
	named
	Type ExprID
}

func (LocalSymbol) Kind() SymbolKind { return SymLocal }

type ParamSymbol struct {
	named
	Type ExprID
	Self bool
}

func (ParamSymbol) Kind() SymbolKind { return SymParam }

// OverloadSetSymbol accumulates same-named FuncDef symbols lazily: the
// second insertion under one name creates this wrapper, a third extends it
// (spec §3.4).
type OverloadSetSymbol struct {
	named
	Overloads []SymbolID
}

func (OverloadSetSymbol) Kind() SymbolKind { return SymOverloadSet }

// GenericArgSymbol binds a generic parameter name to a substituted SIR
// Expr within a specialization's symbol table. A meta-for loop variable is
// not bound this way: it is a TagValueData in the frame's Generics map.
type GenericArgSymbol struct {
	named
	Value ExprID
}

func (GenericArgSymbol) Kind() SymbolKind { return SymGenericArg }
