package sema

// Stage names one phase of Analyzer.Run's fixed pipeline (spec §5's
// "pipeline order" — preamble injection through use-index construction).
type Stage string

const (
	StagePreamble       Stage = "preamble"
	StageCollect        Stage = "collect"
	StageResolveUses    Stage = "resolve_uses"
	StageResolveAliases Stage = "resolve_aliases"
	StageDeclInterfaces Stage = "decl_interfaces"
	StageBodies         Stage = "bodies"
	StageResources      Stage = "resources"
	StageUseIndex       Stage = "use_index"
)

// Status captures progress within a Stage, mirroring the pipeline event
// model a driver uses to render a progress UI.
type Status string

const (
	StatusWorking Status = "working"
	StatusDone    Status = "done"
)

// Event reports progress for one module's pass (or the whole run, when
// Module is empty, as StageUseIndex is a unit-wide pass rather than a
// per-module one).
type Event struct {
	Module string
	Stage  Stage
	Status Status
}

// ProgressSink consumes Events emitted by Analyzer.Run. A nil sink (the
// default) means Run never pays the cost of constructing events.
type ProgressSink interface {
	OnEvent(Event)
}

func (a *Analyzer) emit(module string, stage Stage, status Status) {
	if a.opts.Progress == nil {
		return
	}
	a.opts.Progress.OnEvent(Event{Module: module, Stage: stage, Status: status})
}
