package diag

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a fixed capacity, matching a driver's
// --max-diagnostics flag (SPEC_FULL.md D1).
type Bag struct {
	items   []Diagnostic
	maximum uint16
}

// NewBag creates a Bag with the given capacity limit.
func NewBag(maximum int) *Bag {
	limit, err := safecast.Conv[uint16](maximum)
	if err != nil {
		panic(fmt.Errorf("bag maximum overflow: %w", err))
	}
	return &Bag{
		items:   make([]Diagnostic, 0, limit),
		maximum: limit,
	}
}

// Add appends d, reporting whether it fit within the bag's capacity.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.maximum) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Cap returns the bag's maximum capacity.
func (b *Bag) Cap() uint16 {
	return b.maximum
}

// HasErrors reports whether the bag holds a diagnostic at SevError or above.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether the bag holds a diagnostic at SevWarning or above.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Len returns the number of diagnostics in the bag.
func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the bag's diagnostics. Callers must not mutate the slice.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends another bag's diagnostics, widening capacity if needed.
func (b *Bag) Merge(other *Bag) {
	newTotal, err := safecast.Conv[uint16](len(b.items) + len(other.items))
	if err != nil {
		panic(fmt.Errorf("bag merge overflow: %w", err))
	}
	if newTotal > b.maximum {
		b.maximum = newTotal
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, start, end, severity (descending), then
// code — a deterministic order shared by terminal output and golden tests.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup removes diagnostics that repeat an earlier (code, primary span)
// pair, keeping the first occurrence.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	out := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s", d.Code, d.Primary)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	b.items = out
}

// Filter keeps only the diagnostics for which predicate returns true.
func (b *Bag) Filter(predicate func(Diagnostic) bool) {
	out := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		if predicate(d) {
			out = append(out, d)
		}
	}
	b.items = out
}

// Transform rewrites every diagnostic in place through transformer.
func (b *Bag) Transform(transformer func(Diagnostic) Diagnostic) {
	for i := range b.items {
		b.items[i] = transformer(b.items[i])
	}
}
