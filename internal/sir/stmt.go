package sir

import "semacore/internal/source"

// StmtData is a single SIR statement variant (see ExprData's doc for the
// interface-plus-kind rationale).
type StmtData interface {
	Kind() StmtKind
}

// Stmt is a SIR statement node, stored by value in a module's Stmts arena.
type Stmt struct {
	Data StmtData
	Span source.Span
}

func (s Stmt) Kind() StmtKind {
	if s.Data == nil {
		return StmtError
	}
	return s.Data.Kind()
}

type ErrorStmtData struct{}

func (ErrorStmtData) Kind() StmtKind { return StmtError }

// VarStmtData is `var x: T = v` or `var x = v` (spec §4.10).
type VarStmtData struct {
	Symbol    SymbolID
	Annotated ExprID // declared type expr, or NoExprID when inferred
	Value     ExprID
}

func (VarStmtData) Kind() StmtKind { return StmtVar }

type AssignStmtData struct {
	LHS, RHS ExprID
}

func (AssignStmtData) Kind() StmtKind { return StmtAssign }

// CompoundAssignStmtData is `a += b`; C12 desugars it into an AssignStmtData
// wrapping a BinaryData before analysis proceeds (spec §4.10).
type CompoundAssignStmtData struct {
	Op       BinaryOp
	LHS, RHS ExprID
}

func (CompoundAssignStmtData) Kind() StmtKind { return StmtCompoundAssign }

type ReturnStmtData struct{ Value ExprID } // Value is NoExprID for bare `return`

func (ReturnStmtData) Kind() StmtKind { return StmtReturn }

type IfStmtData struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID when absent
}

func (IfStmtData) Kind() StmtKind { return StmtIf }

// SwitchCase is one `case name: T { ... }` arm; Name is bound as a local of
// type T within Body (spec §4.10).
type SwitchCase struct {
	Name   source.StringID
	Type   ExprID
	Symbol SymbolID
	Body   StmtID
}

type SwitchStmtData struct {
	Value ExprID
	Cases []SwitchCase
}

func (SwitchStmtData) Kind() StmtKind { return StmtSwitch }

// TryStmtData is `try x in expr { ... } except e: E { ... } else { ... }`
// (spec §4.10). Except is only meaningful when Expr has a result type.
type TryStmtData struct {
	Bind       source.StringID
	BindSymbol SymbolID
	Expr       ExprID
	Body       StmtID
	ExceptName source.StringID
	ExceptType ExprID
	ExceptSym  SymbolID
	Except     StmtID // NoStmtID when absent
	Else       StmtID // NoStmtID when absent
}

func (TryStmtData) Kind() StmtKind { return StmtTry }

type WhileStmtData struct {
	Cond ExprID
	Body StmtID
}

func (WhileStmtData) Kind() StmtKind { return StmtWhile }

// ForStmtData is the sugared `for x in lhs .. rhs { ... }` form; C12
// desugars it into a block wrapping a canonical LoopStmtData before
// analysis of the body proceeds (spec §4.10).
type ForStmtData struct {
	Bind       source.StringID
	BindSymbol SymbolID
	Low, High  ExprID
	Body       StmtID
}

func (ForStmtData) Kind() StmtKind { return StmtFor }

// LoopStmtData is the canonical loop form every sugared loop desugars into:
// cond is checked before each iteration, latch runs after the body
// (spec §4.10). Latch is NoStmtID for a desugared `while`.
type LoopStmtData struct {
	Cond  ExprID
	Body  StmtID
	Latch StmtID
}

func (LoopStmtData) Kind() StmtKind { return StmtLoop }

type ContinueStmtData struct{}

func (ContinueStmtData) Kind() StmtKind { return StmtContinue }

type BreakStmtData struct{}

func (BreakStmtData) Kind() StmtKind { return StmtBreak }

// MetaIfBranch is one `meta if cond { ... }` / `meta else { ... }` arm.
type MetaIfBranch struct {
	Cond ExprID // NoExprID for a trailing unconditional else
	Body StmtID
}

// MetaIfStmtData is pre-expansion `meta if`; C7 evaluates each Branches[i]
// in order and inlines the first true one, rewriting this node's slot to
// ExpandedMetaStmtData (spec §4.7).
type MetaIfStmtData struct{ Branches []MetaIfBranch }

func (MetaIfStmtData) Kind() StmtKind { return StmtMetaIf }

// MetaForStmtData is pre-expansion `meta for x in range { ... }` (spec §4.7).
type MetaForStmtData struct {
	Bind  source.StringID
	Range ExprID
	Body  StmtID
}

func (MetaForStmtData) Kind() StmtKind { return StmtMetaFor }

// ExpandedMetaStmtData is the placeholder a meta-if/meta-for leaves behind
// in the sibling sequence once its body has been inlined, so a later pass
// can tell "this slot was a meta construct" apart from "this slot is dead
// code" when reporting unreachable-code diagnostics.
type ExpandedMetaStmtData struct{ Original StmtKind }

func (ExpandedMetaStmtData) Kind() StmtKind { return StmtExpandedMeta }

type ExprStmtData struct{ Value ExprID }

func (ExprStmtData) Kind() StmtKind { return StmtExpr }

type BlockStmtData struct {
	Scope ScopeID
	Stmts []StmtID
}

func (BlockStmtData) Kind() StmtKind { return StmtBlock }
