package sir

import "semacore/internal/source"

// ExprData is a single SIR expression variant. Concrete payload types
// implement Kind so Expr's discriminant is a typed method dispatch rather
// than a parallel enum that could drift out of sync with the payload
// (spec §9: "encode as an interface plus a kind() method").
type ExprData interface {
	Kind() ExprKind
}

// Expr is a SIR expression node: a variant payload plus the two fields
// every variant shares — its resolved type (itself an Expr, since the SIR
// represents types as nodes) and its source span. Expr is stored by value
// in a module's Exprs arena; other nodes reference it by ExprID, never by
// pointer, so the arena can relocate or grow freely.
type Expr struct {
	Data ExprData
	Type ExprID // NoExprID until C8 finalizes it; never a PseudoType post-finalization
	Span source.Span
}

// Kind returns the expression's discriminant.
func (e Expr) Kind() ExprKind {
	if e.Data == nil {
		return ExprError
	}
	return e.Data.Kind()
}
