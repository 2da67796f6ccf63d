package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// LocateImage resolves an image reference (URL or filename) to a local file
// by basename match under root, searching recursively. WalkDir visits
// entries in lexical order, so when the same basename exists at more than
// one path the lexicographically first path wins and resolution is
// deterministic for a fixed tree.
func LocateImage(root, ref string) (string, bool) {
	basename := filepath.Base(strings.TrimSpace(ref))
	if basename == "." || basename == "/" || basename == "" {
		return "", false
	}

	var match string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree: keep searching the rest
		}
		if !d.IsDir() && d.Name() == basename {
			match = path
			return fs.SkipAll
		}
		return nil
	})

	return match, match != ""
}

// CountImages reports how many of the given references resolve to a file
// under root. Used for the pre-run inventory check so an operator sees
// up front how many rows will be data-quality skips.
func CountImages(root string, refs []string) int {
	names := make(map[string]struct{})
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			names[d.Name()] = struct{}{}
		}
		return nil
	})

	found := 0
	for _, ref := range refs {
		if _, ok := names[filepath.Base(strings.TrimSpace(ref))]; ok {
			found++
		}
	}
	return found
}
