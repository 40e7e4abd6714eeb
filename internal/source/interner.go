package source

import (
	"slices"
	"sync"
)

// StringID identifies an interned string. Zero (NoStringID) is the empty
// string, which every Interner preloads so a zero-valued StringID in a
// freshly allocated struct never needs a nil check.
type StringID uint32

// NoStringID is the sentinel for "no string" / the empty string.
const NoStringID StringID = 0

// IsValid reports whether id names a non-empty interned string.
func (id StringID) IsValid() bool { return id != NoStringID }

// Interner deduplicates identifier and literal text so the rest of the
// pipeline compares names by integer, not by string content. Safe for
// concurrent use by several goroutines.
type Interner struct {
	mu    sync.RWMutex
	byID  []string
	index map[string]StringID
}

// NewInterner returns an Interner with only the empty string registered.
func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern returns s's StringID, assigning a new one on first sight.
func (i *Interner) Intern(s string) StringID {
	i.mu.RLock()
	if id, ok := i.index[s]; ok {
		i.mu.RUnlock()
		return id
	}
	i.mu.RUnlock()

	// Own the bytes: the caller's buffer (e.g. a file's content slice) may
	// be discarded or mutated after this call returns.
	owned := string([]byte(s))

	i.mu.Lock()
	defer i.mu.Unlock()
	if id, ok := i.index[owned]; ok {
		return id
	}
	id := StringID(len(i.byID))
	i.byID = append(i.byID, owned)
	i.index[owned] = id
	return id
}

// InternBytes is Intern for a byte slice.
func (i *Interner) InternBytes(b []byte) StringID {
	return i.Intern(string(b))
}

// Lookup returns the string for id, or ("", false) if id is out of range.
func (i *Interner) Lookup(id StringID) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup is Lookup but panics on an invalid id — for call sites that
// only ever hold ids they interned themselves.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("source: invalid StringID")
	}
	return s
}

// Has reports whether id is within range.
func (i *Interner) Has(id StringID) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return int(id) < len(i.byID)
}

// Len returns the number of distinct strings registered, including the
// empty string at NoStringID.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

// Snapshot returns a defensive copy of every interned string, indexed by
// StringID.
func (i *Interner) Snapshot() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.byID)
}
