// Package specache is an on-disk cache of generic specializations (C10),
// keyed by (generic def identity, substituted-argument type keys) and
// persisted next to XDG_CACHE_HOME via msgpack — an accelerator a driver
// consults across runs, not a correctness requirement of C10 itself
// (SPEC_FULL.md §6's D6). Grounded on the teacher's internal/driver/dcache.go
// disk-cache shape.
package specache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Key addresses one generic specialization: the module defining the
// generic, its declaration, and the substituted argument types' key —
// mirroring sema's in-memory specKey but flattened to strings so it
// survives a process boundary.
type Key struct {
	Module string
	Decl   string
	Args   string
}

func (k Key) hash() string {
	h := sha256.New()
	h.Write([]byte(k.Module))
	h.Write([]byte{0})
	h.Write([]byte(k.Decl))
	h.Write([]byte{0})
	h.Write([]byte(k.Args))
	return hex.EncodeToString(h.Sum(nil))
}

// entry is the on-disk payload: just a hit counter, since the actual
// specialized SIR symbol lives only in the producing run's arena — the
// cache records that a key was seen before, not the clone itself.
type entry struct {
	Hits uint32
}

// Cache stores specialization Keys seen across runs at dir.
type Cache struct {
	mu  sync.Mutex
	dir string
}

// Open initializes a Cache at the standard per-app XDG cache location.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app, "spec")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(k Key) string {
	return filepath.Join(c.dir, k.hash()+".mp")
}

// Seen reports whether key was recorded by a previous Record call, in this
// or an earlier process.
func (c *Cache) Seen(key Key) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		return false
	}
	defer f.Close()

	var e entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return false
	}
	return e.Hits > 0
}

// Record persists that key was specialized, incrementing its hit count.
func (c *Cache) Record(key Key) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{}
	p := c.pathFor(key)
	if f, err := os.Open(p); err == nil {
		_ = msgpack.NewDecoder(f).Decode(&e)
		f.Close()
	}
	e.Hits++

	tmp, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := msgpack.NewEncoder(tmp).Encode(e); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}
