package sir

import (
	"testing"

	"semacore/internal/source"
)

type stubExpander struct {
	calls int
	bind  func(table *SymbolTable)
}

func (s *stubExpander) ExpandGuarded(table *SymbolTable, name source.StringID, idxs []GuardedScopeIndex) bool {
	s.calls++
	if s.bind != nil {
		s.bind(table)
	}
	_, ok := table.Local(name)
	return ok
}

func TestSymbolTableLookupWalksParentChain(t *testing.T) {
	tables := NewArena[SymbolTable](0)
	root := ScopeID(tables.Allocate(*NewSymbolTable(NoScopeID)))
	child := ScopeID(tables.Allocate(*NewSymbolTable(root)))

	name := source.StringID(1)
	tables.Get(uint32(root)).Insert(name, SymbolID(42))

	got, ok := Lookup(tables, child, name, nil)
	if !ok || got != 42 {
		t.Fatalf("Lookup() = (%d, %v), want (42, true)", got, ok)
	}
}

func TestSymbolTableGuardedScopeExpandsOnDemand(t *testing.T) {
	tables := NewArena[SymbolTable](0)
	root := ScopeID(tables.Allocate(*NewSymbolTable(NoScopeID)))

	name := source.StringID(7)
	tables.Get(uint32(root)).Guard(name, GuardedScopeIndex(1))

	expander := &stubExpander{bind: func(table *SymbolTable) {
		table.Insert(name, SymbolID(99))
	}}

	got, ok := Lookup(tables, root, name, expander)
	if !ok || got != 99 {
		t.Fatalf("Lookup() = (%d, %v), want (99, true)", got, ok)
	}
	if expander.calls != 1 {
		t.Errorf("expander called %d times, want 1", expander.calls)
	}

	// A second lookup finds the now-directly-bound symbol without
	// re-expanding.
	if _, ok := Lookup(tables, root, name, expander); !ok {
		t.Fatalf("second Lookup() missed after expansion")
	}
	if expander.calls != 1 {
		t.Errorf("expander re-invoked on an already-expanded name: %d calls", expander.calls)
	}
}

func TestSymbolTableMissingGuardReportsNotFound(t *testing.T) {
	tables := NewArena[SymbolTable](0)
	root := ScopeID(tables.Allocate(*NewSymbolTable(NoScopeID)))

	if _, ok := Lookup(tables, root, source.StringID(3), nil); ok {
		t.Fatalf("expected lookup miss for unbound, unguarded name")
	}
}

func TestScopeStackInLoopChecksEnclosingFrames(t *testing.T) {
	s := NewScopeStack()
	s.Push(&AnalysisScope{})
	s.Push(&AnalysisScope{InLoop: true})
	s.Push(&AnalysisScope{}) // e.g. an if-branch nested inside the loop body

	if !s.InLoop() {
		t.Errorf("expected InLoop() true when an enclosing frame set InLoop")
	}

	s.Pop()
	s.Pop()
	if s.InLoop() {
		t.Errorf("expected InLoop() false once the loop frame is popped")
	}
}

func TestClosureCaptureContextAssignsStableSlots(t *testing.T) {
	ctx := &ClosureCaptureContext{}

	a := ctx.Capture(SymbolID(1))
	b := ctx.Capture(SymbolID(2))
	aAgain := ctx.Capture(SymbolID(1))

	if a != 0 || b != 1 {
		t.Fatalf("expected sequential slots 0,1; got %d,%d", a, b)
	}
	if aAgain != a {
		t.Errorf("re-capturing the same symbol should reuse its slot: got %d, want %d", aAgain, a)
	}
	if len(ctx.Captures) != 2 {
		t.Errorf("expected 2 distinct captures, got %d", len(ctx.Captures))
	}
}
