// Package projectcfg loads a project's semacore.toml manifest: the
// package's own root search path plus the per-package [modules] table
// (SPEC_FULL.md §6's D2) that a driver resolves `use` targets against
// before handing modules to an Analyzer — direct generalization of the
// teacher's internal/project package.
package projectcfg

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// ModuleSpec describes one dependency entry in a manifest's [modules] table:
// a named package and the root its sources live under.
type ModuleSpec struct {
	Root string `toml:"root"` // source root relative to the manifest's directory
	URL  string `toml:"url"`  // remote fetch location, for a vendoring driver
}

// Manifest is a project's semacore.toml: its own package metadata plus the
// named packages its source resolves external `use` targets against.
type Manifest struct {
	Package struct {
		Name string `toml:"name"`
		Root string `toml:"root"`
	} `toml:"package"`
	Modules map[string]ModuleSpec `toml:"modules"`
}

// ErrPackageSectionMissing indicates a manifest has no [package] table.
var ErrPackageSectionMissing = errors.New("missing [package]")

// ErrPackageRootMissing indicates [package].root is absent or empty.
var ErrPackageRootMissing = errors.New("missing [package].root")

// Load parses a semacore.toml manifest at path.
func Load(path string) (Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	root := strings.TrimSpace(m.Package.Root)
	if !meta.IsDefined("package", "root") || root == "" {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageRootMissing)
	}
	m.Package.Root = root
	m.Package.Name = strings.TrimSpace(m.Package.Name)
	if m.Modules == nil {
		m.Modules = map[string]ModuleSpec{}
	}
	return m, nil
}

// PackageRoots maps every named package to its root search path, resolved
// against manifestPath's directory: the project's own package plus each
// [modules] entry with a non-empty root. The result is a map, so it carries
// no search order.
func PackageRoots(manifestPath string, m Manifest) (map[string]string, error) {
	dir := filepath.Dir(manifestPath)
	roots := make(map[string]string, len(m.Modules)+1)

	ownRoot, err := resolveRoot(dir, m.Package.Root)
	if err != nil {
		return nil, err
	}
	roots[m.Package.Name] = ownRoot

	for name, spec := range m.Modules {
		if spec.Root == "" {
			continue
		}
		root, err := resolveRoot(dir, spec.Root)
		if err != nil {
			return nil, err
		}
		roots[name] = root
	}
	return roots, nil
}

// SameName reports whether a and b name the same package under Unicode
// case folding, so a CLI's `--want` flag doesn't have to match a
// manifest's [package].name byte-for-byte.
func SameName(a, b string) bool {
	return foldCaser.String(a) == foldCaser.String(b)
}

func resolveRoot(dir, root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return dir, nil
	}
	abs := filepath.Join(dir, root)
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("package root %q escapes the manifest directory", root)
	}
	return abs, nil
}
