package sir

import "semacore/internal/source"

// SymbolTable is a `name -> Symbol` map with a parent pointer (spec §3.3).
// Tables are allocated from a module's Scopes arena and referenced by
// ScopeID so a struct/enum/union/proto's table and a block's table live at
// the same kind of handle as everything else in the unit.
type SymbolTable struct {
	Parent  ScopeID
	symbols map[source.StringID]SymbolID
	guarded map[source.StringID][]GuardedScopeIndex
}

// NewSymbolTable returns an empty table chained to parent (NoScopeID for a
// unit's root table).
func NewSymbolTable(parent ScopeID) *SymbolTable {
	return &SymbolTable{
		Parent:  parent,
		symbols: make(map[source.StringID]SymbolID),
		guarded: make(map[source.StringID][]GuardedScopeIndex),
	}
}

// Insert records name directly. Returns false if name is already bound in
// this table (the caller decides whether that means "promote to overload
// set" or "report redefinition", per spec §4.3).
func (t *SymbolTable) Insert(name source.StringID, sym SymbolID) bool {
	if _, exists := t.symbols[name]; exists {
		return false
	}
	t.symbols[name] = sym
	return true
}

// Replace overwrites name's binding unconditionally — used when promoting
// a single FuncDef binding into an OverloadSetSymbol (spec §3.4).
func (t *SymbolTable) Replace(name source.StringID, sym SymbolID) {
	t.symbols[name] = sym
}

// Local looks up name in this table only, reporting whether it is bound.
func (t *SymbolTable) Local(name source.StringID) (SymbolID, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

// Guard records that name is introduced by an as-yet-unexpanded `meta if`
// body, rather than inserting it directly (spec §4.3, "guarded-scope
// index"). Two independent `meta if` regions introducing the same name in
// one table both accumulate here — Guard is idempotent per (name, idx)
// pair, since a single meta-if's branches all share one idx and may each
// introduce the same name (spec §4.7, §9: ambiguity between independently
// guarded regions is the Expander's job to detect, not this table's).
func (t *SymbolTable) Guard(name source.StringID, idx GuardedScopeIndex) {
	for _, existing := range t.guarded[name] {
		if existing == idx {
			return
		}
	}
	t.guarded[name] = append(t.guarded[name], idx)
}

// GuardedIndices reports every pending guarded-scope index for name, if
// any.
func (t *SymbolTable) GuardedIndices(name source.StringID) ([]GuardedScopeIndex, bool) {
	idxs, ok := t.guarded[name]
	return idxs, ok
}

// Expander performs on-demand `meta if` expansion when a lookup hits a
// guarded-scope entry. It lives outside this package (the meta expander,
// C7, depends on the const evaluator and the collector) to avoid an import
// cycle from sir back into sema.
type Expander interface {
	// ExpandGuarded resolves every guarded-scope index pending for name in
	// table: it evaluates each one's meta-if branches and, when exactly one
	// binds name, inserts that branch's declarations into table's symbols
	// (possibly via further nested Guard calls). When more than one would
	// bind name, it reports the ambiguity itself and leaves name unbound.
	// Reports whether name became bound.
	ExpandGuarded(table *SymbolTable, name source.StringID, idxs []GuardedScopeIndex) bool
}

// Lookup walks the table chain outward. A miss against `symbols` that hits
// `guarded` triggers on-demand expansion through expander (may be nil, in
// which case guarded entries are reported as misses) and retries once in
// the table where the guard was recorded (spec §4.7).
func Lookup(tables *Arena[SymbolTable], start ScopeID, name source.StringID, expander Expander) (SymbolID, bool) {
	for id := start; id.IsValid(); {
		table := tables.Get(uint32(id))
		if table == nil {
			return NoSymbolID, false
		}
		if sym, ok := table.Local(name); ok {
			return sym, true
		}
		if idxs, ok := table.GuardedIndices(name); ok && expander != nil {
			if expander.ExpandGuarded(table, name, idxs) {
				if sym, ok := table.Local(name); ok {
					return sym, true
				}
			}
		}
		id = table.Parent
	}
	return NoSymbolID, false
}

// AnalysisScope is one frame of the analyzer's explicit scope stack
// (spec §3.3, §9: "encode as an explicit stack data structure; do not use
// thread-local globals").
type AnalysisScope struct {
	Container ScopeID  // current declaration container's symbol table
	Block     StmtID   // current statement block, for local insertion
	InLoop    bool     // consulted by `continue`/`break` checking (C12)
	Closure   *ClosureCaptureContext
	Generics  map[source.StringID]ExprID // generic-arg environment
	Result    ExprID                     // enclosing function's declared result type, for `return`
}

// ClosureCaptureContext accumulates the outer symbols referenced from a
// closure literal's body as it is analyzed (spec §4.6 "Closure literal").
type ClosureCaptureContext struct {
	DataParam SymbolID
	Captures  []SymbolID
	slots     map[SymbolID]FieldIndex
}

// Capture records that sym is referenced from inside the closure body,
// assigning it a new slot in the closure's data tuple on first reference.
func (c *ClosureCaptureContext) Capture(sym SymbolID) FieldIndex {
	if c.slots == nil {
		c.slots = make(map[SymbolID]FieldIndex)
	}
	if idx, ok := c.slots[sym]; ok {
		return idx
	}
	idx := FieldIndex(len(c.Captures))
	c.Captures = append(c.Captures, sym)
	c.slots[sym] = idx
	return idx
}

// ScopeStack is the analyzer's explicit, push/pop scope stack.
type ScopeStack struct {
	frames []*AnalysisScope
}

func NewScopeStack() *ScopeStack { return &ScopeStack{} }

func (s *ScopeStack) Push(frame *AnalysisScope) { s.frames = append(s.frames, frame) }

func (s *ScopeStack) Pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Top returns the innermost scope frame, or nil if the stack is empty.
func (s *ScopeStack) Top() *AnalysisScope {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// InLoop reports whether any frame from the top down to the nearest
// function boundary (a frame carrying a Closure context or a declared
// Result) is a loop body.
func (s *ScopeStack) InLoop() bool {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if f.InLoop {
			return true
		}
		if f.Closure != nil || f.Result.IsValid() {
			return false
		}
	}
	return false
}

// Closure returns the nearest enclosing closure-capture context, or nil
// when analysis is not currently inside a closure literal's body.
func (s *ScopeStack) Closure() *ClosureCaptureContext {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Closure != nil {
			return s.frames[i].Closure
		}
	}
	return nil
}

// Result returns the declared result type of the nearest enclosing
// function or closure body, consulted by `return` (C12).
func (s *ScopeStack) Result() ExprID {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Result.IsValid() {
			return s.frames[i].Result
		}
	}
	return NoExprID
}
