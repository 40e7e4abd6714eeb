package sir

// ExprID, StmtID, DeclID, SymbolID, and UseItemID are 1-based arena handles,
// never raw pointers: the SIR's back-pointers (parent, specialization
// target, guarded-symbol variants) form cycles that a single-ownership
// language must break with arena indices rather than owning references.
// The zero value of every ID type means "absent".
type (
	ExprID    uint32
	StmtID    uint32
	DeclID    uint32
	SymbolID  uint32
	UseItemID uint32
	ScopeID   uint32
	ModuleID  uint32
)

const (
	NoExprID    ExprID    = 0
	NoStmtID    StmtID    = 0
	NoDeclID    DeclID    = 0
	NoSymbolID  SymbolID  = 0
	NoUseItemID UseItemID = 0
	NoScopeID   ScopeID   = 0
	NoModuleID  ModuleID  = 0
)

func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id StmtID) IsValid() bool    { return id != NoStmtID }
func (id DeclID) IsValid() bool    { return id != NoDeclID }
func (id SymbolID) IsValid() bool  { return id != NoSymbolID }
func (id UseItemID) IsValid() bool { return id != NoUseItemID }
func (id ScopeID) IsValid() bool   { return id != NoScopeID }
func (id ModuleID) IsValid() bool  { return id != NoModuleID }

// GuardedScopeIndex names a not-yet-expanded `meta if` body recorded in a
// SymbolTable's guarded-scopes map (spec §3.3, §4.7).
type GuardedScopeIndex uint32

// FieldIndex is a 0-based struct/tuple/union-case field position.
type FieldIndex int32

const NoFieldIndex FieldIndex = -1
