package sir

import "semacore/internal/source"

// Module owns every SIR node produced while analyzing one source module.
// All five node kinds, plus symbol tables, live in per-kind arenas so an
// ExprID/StmtID/DeclID/SymbolID/UseItemID/ScopeID is always resolved
// against its owning Module (spec §4.1, §5: "per-module arenas").
type Module struct {
	Path string
	File source.FileID

	Exprs    *Arena[Expr]
	Stmts    *Arena[Stmt]
	Decls    *Arena[Decl]
	Symbols  *Arena[Symbol]
	UseItems *Arena[UseItem]
	Scopes   *Arena[SymbolTable]

	Root     ScopeID // the module's top-level symbol table
	AllDecls []DeclID
}

// NewModule allocates a Module with an empty root symbol table.
func NewModule(path string, file source.FileID) *Module {
	m := &Module{
		Path:     path,
		File:     file,
		Exprs:    NewArena[Expr](256),
		Stmts:    NewArena[Stmt](128),
		Decls:    NewArena[Decl](64),
		Symbols:  NewArena[Symbol](64),
		UseItems: NewArena[UseItem](16),
		Scopes:   NewArena[SymbolTable](8),
	}
	root := NewSymbolTable(NoScopeID)
	m.Root = ScopeID(m.Scopes.Allocate(*root))
	return m
}

// NewExpr allocates expr and returns its handle.
func (m *Module) NewExpr(data ExprData, span source.Span) ExprID {
	return ExprID(m.Exprs.Allocate(Expr{Data: data, Span: span}))
}

func (m *Module) NewStmt(data StmtData, span source.Span) StmtID {
	return StmtID(m.Stmts.Allocate(Stmt{Data: data, Span: span}))
}

func (m *Module) NewDecl(data DeclData, parent DeclID, span source.Span) DeclID {
	id := DeclID(m.Decls.Allocate(Decl{Data: data, Parent: parent, Span: span}))
	m.AllDecls = append(m.AllDecls, id)
	return id
}

func (m *Module) NewSymbol(data SymbolData, span source.Span) SymbolID {
	return SymbolID(m.Symbols.Allocate(Symbol{Data: data, Span: span}))
}

func (m *Module) NewUseItem(data UseItemData, span source.Span) UseItemID {
	return UseItemID(m.UseItems.Allocate(UseItem{Data: data, Span: span}))
}

// NewScope allocates a symbol table chained to parent within this module.
func (m *Module) NewScope(parent ScopeID) ScopeID {
	return ScopeID(m.Scopes.Allocate(*NewSymbolTable(parent)))
}

func (m *Module) Expr(id ExprID) *Expr       { return m.Exprs.Get(uint32(id)) }
func (m *Module) Stmt(id StmtID) *Stmt       { return m.Stmts.Get(uint32(id)) }
func (m *Module) Decl(id DeclID) *Decl       { return m.Decls.Get(uint32(id)) }
func (m *Module) Symbol(id SymbolID) *Symbol { return m.Symbols.Get(uint32(id)) }
func (m *Module) UseItem(id UseItemID) *UseItem {
	return m.UseItems.Get(uint32(id))
}
func (m *Module) Scope(id ScopeID) *SymbolTable { return m.Scopes.Get(uint32(id)) }

// Lookup resolves name starting from scope within this module, expanding
// guarded scopes through expander as needed (spec §4.7).
func (m *Module) Lookup(scope ScopeID, name source.StringID, expander Expander) (SymbolID, bool) {
	return Lookup(m.Scopes, scope, name, expander)
}

// CompletionContext is captured exactly once per analysis run when the
// analyzer encounters a completion marker (spec §9: "treat it as an
// Option<CompletionContext> set exactly once per analysis run").
type CompletionContext struct {
	Module ModuleID
	Block  StmtID
	Decl   DeclID
}

// Unit is a compilation unit: a set of modules forming a rooted DAG by
// `use` imports (spec §2).
type Unit struct {
	Modules    []*Module
	byPath     map[string]ModuleID
	completion *CompletionContext
}

func NewUnit() *Unit {
	return &Unit{byPath: make(map[string]ModuleID)}
}

// AddModule registers m and returns its ModuleID.
func (u *Unit) AddModule(m *Module) ModuleID {
	u.Modules = append(u.Modules, m)
	id := ModuleID(len(u.Modules))
	u.byPath[m.Path] = id
	return id
}

func (u *Unit) Module(id ModuleID) *Module {
	if !id.IsValid() || int(id) > len(u.Modules) {
		return nil
	}
	return u.Modules[id-1]
}

func (u *Unit) ModuleByPath(path string) (*Module, ModuleID, bool) {
	id, ok := u.byPath[path]
	if !ok {
		return nil, NoModuleID, false
	}
	return u.Module(id), id, true
}

// SetCompletion records ctx as the unit's one-shot completion context,
// refusing to overwrite an already-captured one.
func (u *Unit) SetCompletion(ctx CompletionContext) bool {
	if u.completion != nil {
		return false
	}
	u.completion = &ctx
	return true
}

// Completion returns the captured completion context, if any.
func (u *Unit) Completion() (CompletionContext, bool) {
	if u.completion == nil {
		return CompletionContext{}, false
	}
	return *u.completion, true
}
