package sema

import (
	"testing"

	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

func newTypesTestAnalyzer() (*Analyzer, *collectingReporter, *sir.Module) {
	in := source.NewInterner()
	rep := &collectingReporter{}
	a := NewAnalyzer(Options{Reporter: rep}, in)
	m := sir.NewModule("test", source.NoFileID)
	return a, rep, m
}

// TestCoerceToSettlesIntLiteralOnCompatibleTarget covers spec §3.2: an
// untyped int literal coerces cleanly to any integer or float target.
func TestCoerceToSettlesIntLiteralOnCompatibleTarget(t *testing.T) {
	a, rep, m := newTypesTestAnalyzer()
	id := intLit(m, 1)
	f32 := a.f32Type(m)

	_, got := a.coerceTo(m, id, a.pseudoType(m, sir.PseudoIntLiteral), f32)

	if got != f32 {
		t.Fatalf("expected int literal to coerce to f32, got %v", got)
	}
	if len(rep.diags) != 0 {
		t.Fatalf("expected no diagnostics coercing int -> f32, got %v", rep.codes())
	}
}

// TestCoerceToRejectsIncompatiblePseudoTarget covers spec §3.2/§7: an
// untyped int literal cannot coerce to bool, and reports
// TypeCannotCoerceInt rather than silently accepting it.
func TestCoerceToRejectsIncompatiblePseudoTarget(t *testing.T) {
	a, rep, m := newTypesTestAnalyzer()
	id := intLit(m, 1)
	boolT := a.boolType(m)

	_, got := a.coerceTo(m, id, a.pseudoType(m, sir.PseudoIntLiteral), boolT)

	if !hasCode(rep.codes(), diag.TypeCannotCoerceInt) {
		t.Fatalf("expected TypeCannotCoerceInt, got codes %v", rep.codes())
	}
	if got != a.i32Type(m) {
		t.Fatalf("expected the literal to fall back to its default i32, got %v", got)
	}
}

// TestCoerceToDefaultsFPLiteralAbsentExpected covers the no-expected-type
// defaulting rule (fp -> f32) alongside the new restricted-target check,
// which must not fire when there's nothing to validate against.
func TestCoerceToDefaultsFPLiteralAbsentExpected(t *testing.T) {
	a, rep, m := newTypesTestAnalyzer()
	id := m.NewExpr(sir.FPLitData{Value: 1.5}, source.Span{})

	_, got := a.coerceTo(m, id, a.pseudoType(m, sir.PseudoFPLiteral), sir.NoExprID)

	if got != a.f32Type(m) {
		t.Fatalf("expected fp literal to default to f32, got %v", got)
	}
	if len(rep.diags) != 0 {
		t.Fatalf("expected no diagnostics defaulting an unconstrained fp literal, got %v", rep.codes())
	}
}

// TestAnalyzeStringLitRejectsNonStringTarget covers spec §3.2's
// "string→*u8 or standard-string" restriction outside of overload
// resolution too: coercing a string literal directly to i32 must report
// TypeCannotCoerceStr instead of blindly accepting it.
func TestAnalyzeStringLitRejectsNonStringTarget(t *testing.T) {
	a, rep, m := newTypesTestAnalyzer()
	a.injectPreamble(m) // the rejected-target fallback specializes the preamble's String
	e := m.Expr(m.NewExpr(sir.StringLitData{}, source.Span{}))
	i32 := a.i32Type(m)

	_, got := a.analyzeStringLit(m, e, i32)

	if !hasCode(rep.codes(), diag.TypeCannotCoerceStr) {
		t.Fatalf("expected TypeCannotCoerceStr, got codes %v", rep.codes())
	}
	// Falls back to the standard-string default rather than leaving Type
	// unset, so later passes over this expr don't see an invalid type.
	if !got.IsValid() {
		t.Fatalf("expected a fallback type even after rejecting the target, got invalid id")
	}
}

// TestAnalyzeStringLitAcceptsPointerToU8 covers the other half of the
// restricted target set: *u8 is always a legal string-literal target.
func TestAnalyzeStringLitAcceptsPointerToU8(t *testing.T) {
	a, rep, m := newTypesTestAnalyzer()
	e := m.Expr(m.NewExpr(sir.StringLitData{}, source.Span{}))
	u8Ptr := a.pointerType(m, a.primitiveType(m, sir.PrimU8), false)

	_, got := a.analyzeStringLit(m, e, u8Ptr)

	if got != u8Ptr {
		t.Fatalf("expected the literal to settle on *u8, got %v", got)
	}
	if len(rep.diags) != 0 {
		t.Fatalf("expected no diagnostics coercing a string literal to *u8, got %v", rep.codes())
	}
}
