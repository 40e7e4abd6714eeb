package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// Options configures an Analyzer run.
type Options struct {
	Reporter diag.Reporter
	Bag      *diag.Bag
	Progress ProgressSink
}

// Result collects the artifacts an Analyzer run produces beyond the
// mutations it makes directly to the sir.Unit — resolved symbols and
// finalized types live on the SIR nodes themselves (spec §9: "mutate the
// tree in place rather than building a parallel typed tree").
type Result struct {
	UseIndex *UseIndex
}

// guardSite records where a pending guarded-scope index came from, so
// Analyzer.ExpandGuarded can evaluate the right meta-if's branches.
type guardSite struct {
	module *sir.Module
	decl   sir.DeclID
}

// Analyzer runs the C2-C14/C16/C17 passes over one Unit. A single Analyzer
// is single-threaded over one Unit (spec §5); a driver that wants to
// analyze independent units concurrently constructs one Analyzer per unit.
type Analyzer struct {
	opts     Options
	interner *source.Interner

	preambleModule *sir.Module
	preambleSyms   map[string]sir.SymbolID

	nextGuardIdx sir.GuardedScopeIndex
	guards       map[sir.GuardedScopeIndex]guardSite

	externals map[symKey]externalTarget
	primCache   map[primKey]sir.ExprID
	pseudoCache map[pseudoCacheKey]sir.ExprID
	specCache   map[specKey]sir.SymbolID

	scopes *sir.ScopeStack

	useIndex *UseIndex
}

// NewAnalyzer constructs an Analyzer that interns identifiers against
// interner and reports diagnostics per opts.
func NewAnalyzer(opts Options, interner *source.Interner) *Analyzer {
	return &Analyzer{
		opts:         opts,
		interner:     interner,
		preambleSyms: make(map[string]sir.SymbolID),
		guards:       make(map[sir.GuardedScopeIndex]guardSite),
		externals:    make(map[symKey]externalTarget),
		scopes:       sir.NewScopeStack(),
		useIndex:     newUseIndex(),
	}
}

// Run executes every pass over u's modules, in pipeline order, and returns
// the accumulated side-table Result.
func (a *Analyzer) Run(u *sir.Unit) Result {
	runStage := func(stage Stage, fn func(*sir.Module)) {
		for _, m := range u.Modules {
			a.emit(m.Path, stage, StatusWorking)
			fn(m)
			a.emit(m.Path, stage, StatusDone)
		}
	}

	runStage(StagePreamble, a.injectPreamble)
	runStage(StageCollect, a.collect)
	runStage(StageResolveUses, func(m *sir.Module) { a.resolveUses(m, u) })
	runStage(StageResolveAliases, a.resolveAliases)
	runStage(StageDeclInterfaces, a.analyzeDeclInterfaces)
	runStage(StageBodies, a.analyzeBodies)
	runStage(StageResources, a.analyzeResources)

	a.emit("", StageUseIndex, StatusWorking)
	a.buildUseIndex(u)
	a.emit("", StageUseIndex, StatusDone)

	return Result{UseIndex: a.useIndex}
}

// report is a small convenience wrapper so every pass reports through the
// same Reporter/Bag pair without threading *diag.Bag through every method.
func (a *Analyzer) report(sev diag.Severity, code diag.Code, primary source.Span, msg string) {
	if a.opts.Reporter == nil {
		return
	}
	a.opts.Reporter.Report(diag.New(sev, code, primary, msg))
}

func (a *Analyzer) errorf(code diag.Code, primary source.Span, template string, args ...any) {
	a.report(diag.SevError, code, primary, diag.Format(template, args...))
}

func (a *Analyzer) warnf(code diag.Code, primary source.Span, template string, args ...any) {
	a.report(diag.SevWarning, code, primary, diag.Format(template, args...))
}
