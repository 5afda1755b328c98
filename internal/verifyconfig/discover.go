package verifyconfig

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Discover walks root and returns every regular file whose slash-separated
// path relative to root matches one of cfg.Include and none of
// cfg.Exclude, the way the teacher's internal/runtime/vfs.OSFS walks a
// tree with filepath.WalkDir. No example repo in the retrieved corpus
// pulls in a doublestar glob library, so `**` segment matching is hand
// rolled here on top of path/filepath.Match rather than adding a
// dependency for one recursive-descent helper.
func Discover(cfg *Config, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !matchesAny(cfg.Include, rel) {
			return nil
		}
		if matchesAny(cfg.Exclude, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if matchGlob(p, path) {
			return true
		}
	}
	return false
}

// matchGlob matches pattern against path segment by segment, treating a
// bare "**" segment as "zero or more path segments" and every other
// segment as a path/filepath.Match pattern.
func matchGlob(pattern, path string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(path, "/"))
}

func matchSegments(pat, seg []string) bool {
	if len(pat) == 0 {
		return len(seg) == 0
	}
	if pat[0] == "**" {
		if matchSegments(pat[1:], seg) {
			return true
		}
		if len(seg) > 0 {
			return matchSegments(pat, seg[1:])
		}
		return false
	}
	if len(seg) == 0 {
		return false
	}
	ok, err := filepath.Match(pat[0], seg[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], seg[1:])
}
