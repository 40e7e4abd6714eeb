package sir

// ExprKind discriminates the Expr sum type (spec §3.1).
type ExprKind uint8

const (
	ExprError ExprKind = iota
	ExprCompletion

	// Literals.
	ExprIntLit
	ExprFPLit
	ExprBoolLit
	ExprCharLit
	ExprNullLit
	ExprNoneLit
	ExprUndefined
	ExprStringLit
	ExprArrayLit
	ExprMapLit
	ExprStructLit
	ExprUnionCaseLit
	ExprClosureLit

	// References.
	ExprIdent    // unresolved, pre-analysis only
	ExprSymbol   // resolved binding to a Decl/Symbol
	ExprTagValue // a DNF guarded-symbol truth-table atom bound during meta expansion

	// Operators and access forms.
	ExprBinary
	ExprUnary
	ExprCast
	ExprIndex
	ExprCall
	ExprField
	ExprRange
	ExprTuple
	ExprCoercion

	// Unresolved syntactic forms, valid only before/during analysis.
	ExprStarUnresolved
	ExprBracketUnresolved
	ExprDotUnresolved

	// Type expressions.
	ExprPseudoType
	ExprPrimitiveType
	ExprPointerType
	ExprStaticArrayType
	ExprFunctionType
	ExprOptionalType
	ExprResultType
	ExprArrayType
	ExprMapType
	ExprClosureType
	ExprReferenceType

	// Meta-programming.
	ExprMetaAccess
	ExprMetaField
	ExprMetaCall

	// Resource-analyzer markers, inserted post body-analysis (C14).
	ExprInit
	ExprMove
	ExprDeinit
)

func (k ExprKind) String() string {
	switch k {
	case ExprError:
		return "Error"
	case ExprCompletion:
		return "Completion"
	case ExprIntLit:
		return "IntLit"
	case ExprFPLit:
		return "FPLit"
	case ExprBoolLit:
		return "BoolLit"
	case ExprCharLit:
		return "CharLit"
	case ExprNullLit:
		return "NullLit"
	case ExprNoneLit:
		return "NoneLit"
	case ExprUndefined:
		return "Undefined"
	case ExprStringLit:
		return "StringLit"
	case ExprArrayLit:
		return "ArrayLit"
	case ExprMapLit:
		return "MapLit"
	case ExprStructLit:
		return "StructLit"
	case ExprUnionCaseLit:
		return "UnionCaseLit"
	case ExprClosureLit:
		return "ClosureLit"
	case ExprIdent:
		return "Ident"
	case ExprSymbol:
		return "Symbol"
	case ExprTagValue:
		return "TagValue"
	case ExprBinary:
		return "Binary"
	case ExprUnary:
		return "Unary"
	case ExprCast:
		return "Cast"
	case ExprIndex:
		return "Index"
	case ExprCall:
		return "Call"
	case ExprField:
		return "Field"
	case ExprRange:
		return "Range"
	case ExprTuple:
		return "Tuple"
	case ExprCoercion:
		return "Coercion"
	case ExprStarUnresolved:
		return "StarUnresolved"
	case ExprBracketUnresolved:
		return "BracketUnresolved"
	case ExprDotUnresolved:
		return "DotUnresolved"
	case ExprPseudoType:
		return "PseudoType"
	case ExprPrimitiveType:
		return "PrimitiveType"
	case ExprPointerType:
		return "PointerType"
	case ExprStaticArrayType:
		return "StaticArrayType"
	case ExprFunctionType:
		return "FunctionType"
	case ExprOptionalType:
		return "OptionalType"
	case ExprResultType:
		return "ResultType"
	case ExprArrayType:
		return "ArrayType"
	case ExprMapType:
		return "MapType"
	case ExprClosureType:
		return "ClosureType"
	case ExprReferenceType:
		return "ReferenceType"
	case ExprMetaAccess:
		return "MetaAccess"
	case ExprMetaField:
		return "MetaField"
	case ExprMetaCall:
		return "MetaCall"
	case ExprInit:
		return "Init"
	case ExprMove:
		return "Move"
	case ExprDeinit:
		return "Deinit"
	default:
		return "UnknownExpr"
	}
}

// IsTypeExpr reports whether k denotes a type-expression variant — the SIR
// represents types as Expr nodes rather than as a separate sum type
// (spec §3.1: "type expressions (primitive, pointer, ...)").
func (k ExprKind) IsTypeExpr() bool {
	switch k {
	case ExprPrimitiveType, ExprPointerType, ExprStaticArrayType, ExprFunctionType,
		ExprOptionalType, ExprResultType, ExprArrayType, ExprMapType,
		ExprClosureType, ExprReferenceType, ExprPseudoType:
		return true
	default:
		return false
	}
}

// IsUnresolved reports whether k is a pre-analysis syntactic form that must
// not survive into post-analysis SIR (spec §3.4).
func (k ExprKind) IsUnresolved() bool {
	switch k {
	case ExprIdent, ExprStarUnresolved, ExprBracketUnresolved, ExprDotUnresolved:
		return true
	default:
		return false
	}
}

// PseudoTypeKind enumerates the untyped-literal markers of spec §3.2.
type PseudoTypeKind uint8

const (
	PseudoIntLiteral PseudoTypeKind = iota
	PseudoFPLiteral
	PseudoBoolLiteral
	PseudoNullLiteral
	PseudoArrayLiteral
	PseudoMapLiteral
	PseudoStringLiteral
)

func (k PseudoTypeKind) String() string {
	switch k {
	case PseudoIntLiteral:
		return "INT_LITERAL"
	case PseudoFPLiteral:
		return "FP_LITERAL"
	case PseudoBoolLiteral:
		return "BOOL_LITERAL"
	case PseudoNullLiteral:
		return "NULL_LITERAL"
	case PseudoArrayLiteral:
		return "ARRAY_LITERAL"
	case PseudoMapLiteral:
		return "MAP_LITERAL"
	case PseudoStringLiteral:
		return "STRING_LITERAL"
	default:
		return "UNKNOWN_PSEUDO_TYPE"
	}
}

// StmtKind discriminates the Stmt sum type (spec §3.1).
type StmtKind uint8

const (
	StmtError StmtKind = iota
	StmtVar
	StmtAssign
	StmtCompoundAssign
	StmtReturn
	StmtIf
	StmtSwitch
	StmtTry
	StmtWhile
	StmtFor
	StmtLoop // canonical, post-desugaring form
	StmtContinue
	StmtBreak
	StmtMetaIf
	StmtMetaFor
	StmtExpandedMeta
	StmtExpr
	StmtBlock
)

func (k StmtKind) String() string {
	switch k {
	case StmtError:
		return "Error"
	case StmtVar:
		return "Var"
	case StmtAssign:
		return "Assign"
	case StmtCompoundAssign:
		return "CompoundAssign"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtSwitch:
		return "Switch"
	case StmtTry:
		return "Try"
	case StmtWhile:
		return "While"
	case StmtFor:
		return "For"
	case StmtLoop:
		return "Loop"
	case StmtContinue:
		return "Continue"
	case StmtBreak:
		return "Break"
	case StmtMetaIf:
		return "MetaIf"
	case StmtMetaFor:
		return "MetaFor"
	case StmtExpandedMeta:
		return "ExpandedMeta"
	case StmtExpr:
		return "Expr"
	case StmtBlock:
		return "Block"
	default:
		return "UnknownStmt"
	}
}

// DeclKind discriminates the Decl sum type (spec §3.1).
type DeclKind uint8

const (
	DeclError DeclKind = iota
	DeclFuncDef
	DeclFuncDecl
	DeclNativeFuncDecl
	DeclConstDef
	DeclStructDef
	DeclStructField
	DeclVarDecl
	DeclNativeVarDecl
	DeclEnumDef
	DeclEnumVariant
	DeclUnionDef
	DeclUnionCase
	DeclProtoDef
	DeclTypeAlias
	DeclUse
	DeclMetaIf
	DeclExpandedMeta
)

func (k DeclKind) String() string {
	switch k {
	case DeclError:
		return "Error"
	case DeclFuncDef:
		return "FuncDef"
	case DeclFuncDecl:
		return "FuncDecl"
	case DeclNativeFuncDecl:
		return "NativeFuncDecl"
	case DeclConstDef:
		return "ConstDef"
	case DeclStructDef:
		return "StructDef"
	case DeclStructField:
		return "StructField"
	case DeclVarDecl:
		return "VarDecl"
	case DeclNativeVarDecl:
		return "NativeVarDecl"
	case DeclEnumDef:
		return "EnumDef"
	case DeclEnumVariant:
		return "EnumVariant"
	case DeclUnionDef:
		return "UnionDef"
	case DeclUnionCase:
		return "UnionCase"
	case DeclProtoDef:
		return "ProtoDef"
	case DeclTypeAlias:
		return "TypeAlias"
	case DeclUse:
		return "Use"
	case DeclMetaIf:
		return "MetaIf"
	case DeclExpandedMeta:
		return "ExpandedMeta"
	default:
		return "UnknownDecl"
	}
}

// SymbolKind discriminates the Symbol sum type (spec §3.1).
type SymbolKind uint8

const (
	SymError SymbolKind = iota
	SymModule
	SymFuncDef
	SymFuncDecl
	SymNativeFuncDecl
	SymConstDef
	SymStructDef
	SymStructField
	SymVarDecl
	SymNativeVarDecl
	SymEnumDef
	SymEnumVariant
	SymUnionDef
	SymUnionCase
	SymProtoDef
	SymTypeAlias
	SymUseIdent
	SymUseRebind
	SymLocal
	SymParam
	SymOverloadSet
	SymGenericArg
)

func (k SymbolKind) String() string {
	switch k {
	case SymError:
		return "Error"
	case SymModule:
		return "Module"
	case SymFuncDef:
		return "FuncDef"
	case SymFuncDecl:
		return "FuncDecl"
	case SymNativeFuncDecl:
		return "NativeFuncDecl"
	case SymConstDef:
		return "ConstDef"
	case SymStructDef:
		return "StructDef"
	case SymStructField:
		return "StructField"
	case SymVarDecl:
		return "VarDecl"
	case SymNativeVarDecl:
		return "NativeVarDecl"
	case SymEnumDef:
		return "EnumDef"
	case SymEnumVariant:
		return "EnumVariant"
	case SymUnionDef:
		return "UnionDef"
	case SymUnionCase:
		return "UnionCase"
	case SymProtoDef:
		return "ProtoDef"
	case SymTypeAlias:
		return "TypeAlias"
	case SymUseIdent:
		return "UseIdent"
	case SymUseRebind:
		return "UseRebind"
	case SymLocal:
		return "Local"
	case SymParam:
		return "Param"
	case SymOverloadSet:
		return "OverloadSet"
	case SymGenericArg:
		return "GenericArg"
	default:
		return "UnknownSymbol"
	}
}

// UseItemKind discriminates the UseItem sum type (spec §3.1).
type UseItemKind uint8

const (
	UseItemIdent UseItemKind = iota
	UseItemRebind
	UseItemDot
	UseItemList
)

func (k UseItemKind) String() string {
	switch k {
	case UseItemIdent:
		return "Ident"
	case UseItemRebind:
		return "Rebind"
	case UseItemDot:
		return "Dot"
	case UseItemList:
		return "List"
	default:
		return "UnknownUseItem"
	}
}
