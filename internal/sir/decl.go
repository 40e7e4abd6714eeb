package sir

import "semacore/internal/source"

// DeclData is a single SIR declaration variant.
type DeclData interface {
	Kind() DeclKind
}

// Decl is a SIR declaration node, stored by value in a module's Decls
// arena. Parent is the enclosing decl-block's DeclID (NoDeclID at module
// top level); every declaration records it per spec §4.3 ("record parent
// back-pointer").
type Decl struct {
	Data   DeclData
	Parent DeclID
	Span   source.Span
}

func (d Decl) Kind() DeclKind {
	if d.Data == nil {
		return DeclError
	}
	return d.Data.Kind()
}

type ErrorDeclData struct{}

func (ErrorDeclData) Kind() DeclKind { return DeclError }

// Param is a function parameter; Self is true for an implicit/explicit
// `self` receiver (spec §4.5).
type Param struct {
	Name   source.StringID
	Type   ExprID
	Symbol SymbolID
	Self   bool
	ByVal  bool
}

// FuncDefData is a function with a body. GenericParams is non-empty for a
// generic definition (spec §3.4); a specialization clone has it empty and
// SpecializedFrom set instead.
type FuncDefData struct {
	Name            source.StringID
	Symbol          SymbolID
	GenericParams   []source.StringID
	Params          []Param
	Result          ExprID
	Body            StmtID
	SpecializedFrom DeclID // NoDeclID unless this is a specialization clone
	SpecializeArgs  []ExprID
}

func (FuncDefData) Kind() DeclKind { return DeclFuncDef }

// FuncDeclData is a proto method signature with no body (spec §3.1).
type FuncDeclData struct {
	Name          source.StringID
	Symbol        SymbolID
	GenericParams []source.StringID
	Params        []Param
	Result        ExprID
}

func (FuncDeclData) Kind() DeclKind { return DeclFuncDecl }

// NativeFuncDeclData is an `extern`-style declaration with a linkage name.
type NativeFuncDeclData struct {
	Name    source.StringID
	Symbol  SymbolID
	Linkage string
	Params  []Param
	Result  ExprID
}

func (NativeFuncDeclData) Kind() DeclKind { return DeclNativeFuncDecl }

type ConstDefData struct {
	Name   source.StringID
	Symbol SymbolID
	Type   ExprID
	Value  ExprID
}

func (ConstDefData) Kind() DeclKind { return DeclConstDef }

// StructDefData is a struct/union-free aggregate. Impls lists the
// ProtoDef symbols it implements; Fields is populated by C6 as VarDecls
// inside the struct's decl-block become StructFields with an assigned
// index (spec §4.5).
type StructDefData struct {
	Name          source.StringID
	Symbol        SymbolID
	GenericParams []source.StringID
	Fields        []DeclID
	Methods       []DeclID
	Impls         []SymbolID

	SpecializedFrom DeclID
	SpecializeArgs  []ExprID
}

func (StructDefData) Kind() DeclKind { return DeclStructDef }

type StructFieldData struct {
	Name   source.StringID
	Symbol SymbolID
	Type   ExprID
	Index  FieldIndex
}

func (StructFieldData) Kind() DeclKind { return DeclStructField }

type VarDeclData struct {
	Name   source.StringID
	Symbol SymbolID
	Type   ExprID
	Value  ExprID // NoExprID when uninitialized
}

func (VarDeclData) Kind() DeclKind { return DeclVarDecl }

type NativeVarDeclData struct {
	Name    source.StringID
	Symbol  SymbolID
	Linkage string
	Type    ExprID
}

func (NativeVarDeclData) Kind() DeclKind { return DeclNativeVarDecl }

// EnumVariantRef pairs a variant's name with its back-computed numeric
// value, appended to the enum as C6 processes each EnumVariant decl
// (spec §4.5).
type EnumVariantRef struct {
	Name  source.StringID
	Value int64
	Decl  DeclID
}

type EnumDefData struct {
	Name     source.StringID
	Symbol   SymbolID
	Variants []EnumVariantRef
}

func (EnumDefData) Kind() DeclKind { return DeclEnumDef }

type EnumVariantData struct {
	Name   source.StringID
	Symbol SymbolID
	Value  ExprID // explicit value, or NoExprID for auto-increment
}

func (EnumVariantData) Kind() DeclKind { return DeclEnumVariant }

type UnionCaseRef struct {
	Name source.StringID
	Decl DeclID
}

type UnionDefData struct {
	Name          source.StringID
	Symbol        SymbolID
	GenericParams []source.StringID
	Cases         []UnionCaseRef

	SpecializedFrom DeclID
	SpecializeArgs  []ExprID
}

func (UnionDefData) Kind() DeclKind { return DeclUnionDef }

type UnionCaseData struct {
	Name   source.StringID
	Symbol SymbolID
	Fields []StructFieldData
}

func (UnionCaseData) Kind() DeclKind { return DeclUnionCase }

// ProtoDefData is a proto (interface) definition: a set of method
// signatures, some with default bodies (spec §4.5).
type ProtoDefData struct {
	Name    source.StringID
	Symbol  SymbolID
	Methods []DeclID // DeclFuncDecl or DeclFuncDef (default impl)
}

func (ProtoDefData) Kind() DeclKind { return DeclProtoDef }

type TypeAliasData struct {
	Name   source.StringID
	Symbol SymbolID
	Target ExprID
}

func (TypeAliasData) Kind() DeclKind { return DeclTypeAlias }

type UseDeclData struct {
	Root UseItemID
}

func (UseDeclData) Kind() DeclKind { return DeclUse }

// MetaIfDeclData is pre-expansion `meta if` at decl-block level.
type MetaIfDeclData struct{ Branches []MetaIfDeclBranch }

type MetaIfDeclBranch struct {
	Cond  ExprID
	Decls []DeclID
}

func (MetaIfDeclData) Kind() DeclKind { return DeclMetaIf }

type ExpandedMetaDeclData struct{ Original DeclKind }

func (ExpandedMetaDeclData) Kind() DeclKind { return DeclExpandedMeta }
