package source

import (
	"path/filepath"
	"slices"
	"sort"
)

// normalizeCRLF rewrites every "\r\n" to "\n", leaving a lone "\r" alone.
// Returns the (possibly unchanged) content and whether any pair was found.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false
	for i := 0; i < len(content); {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
			continue
		}
		out = append(out, content[i])
		i++
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

// buildLineIndex records the 0-based byte offset of every '\n' in content.
// Line k>1 starts at lineIdx[k-2]+1; line 1 starts at offset 0.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// Find the first newline strictly after off.
	i := sort.Search(len(lineIdx), func(k int) bool { return lineIdx[k] > off })
	if i == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	last := lineIdx[i-1]
	if off == last {
		// off sits exactly on a newline: treat it as the end of the
		// preceding line, matching how an editor places the cursor there.
		var start uint32
		if i-1 > 0 {
			start = lineIdx[i-2] + 1
		}
		return LineCol{Line: uint32(i), Col: last - start + 1}
	}

	start := last + 1
	return LineCol{Line: uint32(i + 1), Col: off - start + 1}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// AbsolutePath returns the normalized absolute form of path.
func AbsolutePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, err
	}
	return normalizePath(abs), nil
}

// RelativePath returns path relative to base, falling back to the absolute
// form of path when path lies outside base or no relative path can be
// computed (different volumes, etc).
func RelativePath(path, base string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path, err
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return normalizePath(absPath), nil
	}

	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return normalizePath(absPath), nil
	}
	rel = normalizePath(rel)
	if rel == ".." || (len(rel) > 3 && rel[:3] == "../") {
		return normalizePath(absPath), nil
	}
	return rel, nil
}

// BaseName returns path's final path component.
func BaseName(path string) string {
	return normalizePath(filepath.Base(path))
}
