package diag

import "fmt"

// Code is a stable, dense numeric diagnostic identifier. Codes are grouped
// by the error categories from SPEC_FULL.md §7: ranges below 2000 are
// reserved for the external lexer/parser (out of scope for this module);
// everything at 4000 and above is raised by the semantic passes.
type Code uint16

const (
	UnknownCode Code = 0

	// Structural — C3/C4: symbol-not-found, redefinition, module-not-found.
	StructSymbolNotFound    Code = 4000
	StructRedefinition      Code = 4001
	StructModuleNotFound    Code = 4002
	StructSymbolNotInParent Code = 4003

	// Type — C8/C11: mismatches, coercion, casts, member access.
	TypeMismatch          Code = 5000
	TypeCannotCoerceInt   Code = 5001
	TypeCannotCoerceFP    Code = 5002
	TypeCannotCoerceStr   Code = 5003
	TypeCannotCoerceArray Code = 5004
	TypeCannotCoerceMap   Code = 5005
	TypeCannotCast        Code = 5006
	TypeCannotCall        Code = 5007
	TypeCannotDeref       Code = 5008
	TypeExpectedInteger   Code = 5009
	TypeExpectedBool      Code = 5010
	TypeExpectedProto     Code = 5011
	TypeNoField           Code = 5012
	TypeNoMethod          Code = 5013
	TypeMissingField      Code = 5014
	TypeDuplicateField    Code = 5015

	// Signature — C9/overload resolution.
	SigUnexpectedArgCount        Code = 5100
	SigUnexpectedGenericArgCount Code = 5101
	SigCannotInferGenericArg     Code = 5102
	SigGenericArgInferConflict   Code = 5103
	SigAmbiguousOverload         Code = 5104

	// Resource — C14.
	ResUseAfterMove    Code = 5200
	ResMoveOutOfPtr    Code = 5201
	ResMoveOutOfDeinit Code = 5202
	ResMoveInLoop      Code = 5203
	ResAssignImmut     Code = 5204
	ResPointerEscapes  Code = 5205

	// Meta — C7/C11.
	MetaInvalidField         Code = 5300
	MetaInvalidMethod        Code = 5301
	MetaValueNotConst        Code = 5302
	MetaSymbolGuardedByOther Code = 5303

	// Self/layout — C6.
	SelfNotAllowed        Code = 5400
	SelfNotFirst          Code = 5401
	SelfByvalMismatch     Code = 5402
	CaseOutsideUnion      Code = 5403
	FuncDeclOutsideProto  Code = 5404
	StructOverlapNoFields Code = 5405
	StructOverlapNotOne   Code = 5406

	// Control flow — C13.
	CtrlContinueOutsideLoop Code = 5500
	CtrlBreakOutsideLoop    Code = 5501
	CtrlDoesNotReturn       Code = 5502
	CtrlDoesNotAlwaysReturn Code = 5503
	CtrlUnreachableCode     Code = 5504 // warning
)

var codeNames = map[Code]string{
	UnknownCode:                  "UNKNOWN",
	StructSymbolNotFound:         "SYMBOL_NOT_FOUND",
	StructRedefinition:           "REDEFINITION",
	StructModuleNotFound:         "MODULE_NOT_FOUND",
	StructSymbolNotInParent:      "SYMBOL_NOT_IN_PARENT",
	TypeMismatch:                 "TYPE_MISMATCH",
	TypeCannotCoerceInt:          "CANNOT_COERCE_INT",
	TypeCannotCoerceFP:           "CANNOT_COERCE_FP",
	TypeCannotCoerceStr:          "CANNOT_COERCE_STRING",
	TypeCannotCoerceArray:        "CANNOT_COERCE_ARRAY",
	TypeCannotCoerceMap:          "CANNOT_COERCE_MAP",
	TypeCannotCast:               "CANNOT_CAST",
	TypeCannotCall:               "CANNOT_CALL",
	TypeCannotDeref:              "CANNOT_DEREF",
	TypeExpectedInteger:          "EXPECTED_INTEGER",
	TypeExpectedBool:             "EXPECTED_BOOL",
	TypeExpectedProto:            "EXPECTED_PROTO",
	TypeNoField:                  "NO_FIELD",
	TypeNoMethod:                 "NO_METHOD",
	TypeMissingField:             "MISSING_FIELD",
	TypeDuplicateField:           "DUPLICATE_FIELD",
	SigUnexpectedArgCount:        "UNEXPECTED_ARG_COUNT",
	SigUnexpectedGenericArgCount: "UNEXPECTED_GENERIC_ARG_COUNT",
	SigCannotInferGenericArg:     "CANNOT_INFER_GENERIC_ARG",
	SigGenericArgInferConflict:   "GENERIC_ARG_INFER_CONFLICT",
	SigAmbiguousOverload:         "AMBIGUOUS_OVERLOAD",
	ResUseAfterMove:              "USE_AFTER_MOVE",
	ResMoveOutOfPtr:              "MOVE_OUT_OF_POINTER",
	ResMoveOutOfDeinit:           "MOVE_OUT_OF_DEINIT",
	ResMoveInLoop:                "MOVE_IN_LOOP",
	ResAssignImmut:               "ASSIGN_IMMUTABLE",
	ResPointerEscapes:            "POINTER_TO_LOCAL_ESCAPES",
	MetaInvalidField:             "INVALID_META_FIELD",
	MetaInvalidMethod:            "INVALID_META_METHOD",
	MetaValueNotConst:            "VALUE_NOT_KNOWN_AT_COMPILE_TIME",
	MetaSymbolGuardedByOther:     "SYMBOL_GUARDED_BY_DIFFERENT_CONDITION",
	SelfNotAllowed:               "SELF_NOT_ALLOWED",
	SelfNotFirst:                 "SELF_NOT_FIRST",
	SelfByvalMismatch:            "SELF_BYVAL_MISMATCH",
	CaseOutsideUnion:             "CASE_OUTSIDE_UNION",
	FuncDeclOutsideProto:         "FUNC_DECL_OUTSIDE_PROTO",
	StructOverlapNoFields:        "STRUCT_OVERLAPPING_NO_FIELDS",
	StructOverlapNotOne:          "STRUCT_OVERLAPPING_NOT_ONE_FIELD",
	CtrlContinueOutsideLoop:      "CONTINUE_OUTSIDE_LOOP",
	CtrlBreakOutsideLoop:         "BREAK_OUTSIDE_LOOP",
	CtrlDoesNotReturn:            "DOES_NOT_RETURN",
	CtrlDoesNotAlwaysReturn:      "DOES_NOT_ALWAYS_RETURN",
	CtrlUnreachableCode:          "UNREACHABLE_CODE",
}

// ID returns the stable textual identifier for a code, used in golden
// output and wire snapshots so renumbering Code constants never breaks a
// serialized artifact.
func (c Code) ID() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE_%d", uint16(c))
}

func (c Code) String() string {
	return fmt.Sprintf("E%04d", uint16(c))
}
