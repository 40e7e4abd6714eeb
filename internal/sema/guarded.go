package sema

import (
	"semacore/internal/diag"
	"semacore/internal/sir"
	"semacore/internal/source"
)

// guardMatch is one (guard index, branch) pair whose condition evaluated
// true and which introduces the name being looked up.
type guardMatch struct {
	site   guardSite
	branch sir.MetaIfDeclBranch
}

// ExpandGuarded implements sir.Expander: a lookup miss against a plain
// binding that hits one or more guarded-scope entries calls back here so
// the matching `meta if` branch's declarations are collected on demand
// rather than eagerly for every branch at collection time (spec §4.7, §9).
// idxs may name more than one independent `meta if` region that each
// introduce name — table.Guard (internal/sir/scope.go) accumulates every
// such region rather than letting a later one silently overwrite an
// earlier one, so this is where the ambiguity that creates actually gets
// detected: if more than one region's condition holds at once, name has no
// unique binding and diag.MetaSymbolGuardedByOther is reported instead of
// picking one arbitrarily.
func (a *Analyzer) ExpandGuarded(table *sir.SymbolTable, name source.StringID, idxs []sir.GuardedScopeIndex) bool {
	var matches []guardMatch
	for _, idx := range idxs {
		site, ok := a.guards[idx]
		if !ok {
			continue
		}
		d, ok := site.module.Decl(site.decl).Data.(sir.MetaIfDeclData)
		if !ok {
			continue
		}
		for _, branch := range d.Branches {
			if !a.metaCondTrue(site.module, branch.Cond) {
				continue
			}
			if !branchIntroduces(site.module, branch, name) {
				continue
			}
			matches = append(matches, guardMatch{site: site, branch: branch})
		}
	}

	switch len(matches) {
	case 0:
		return false
	case 1:
		for _, childID := range matches[0].branch.Decls {
			a.collectInto(matches[0].site.module, table, childID)
		}
		_, bound := table.Local(name)
		return bound
	default:
		site := matches[0].site
		span := site.module.Decl(site.decl).Span
		a.errorf(diag.MetaSymbolGuardedByOther, span,
			"'$' is guarded by more than one condition that holds here", a.interner.MustLookup(name))
		return false
	}
}

// branchIntroduces reports whether any of branch's declarations binds name
// directly (spec §4.3's declName: the name a top-level decl introduces).
func branchIntroduces(m *sir.Module, branch sir.MetaIfDeclBranch, name source.StringID) bool {
	for _, childID := range branch.Decls {
		if declName(m, childID) == name {
			return true
		}
	}
	return false
}

// metaCondTrue evaluates a meta-if branch condition as a compile-time bool.
// A missing condition (the final unconditional `else` branch) is always
// true; a condition that fails to const-evaluate is treated as false rather
// than aborting analysis, since the branch's declarations then simply never
// bind and later passes report the resulting "not found" at the use site.
func (a *Analyzer) metaCondTrue(m *sir.Module, cond sir.ExprID) bool {
	if !cond.IsValid() {
		return true
	}
	v, ok := a.constEvalBool(m, cond)
	return ok && v
}
