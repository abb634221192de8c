package workspace

import (
	"path/filepath"

	"github.com/gobwas/glob"
)

// Filter decides which files of a tree are compilation units. Patterns are
// matched against base names.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, pattern := range include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		f.include = append(f.include, g)
	}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// SkipDir reports whether the directory at path is excluded.
func (f *Filter) SkipDir(path string) bool {
	return matchAny(f.exclude, filepath.Base(path))
}

// Excluded reports whether the name of the file at path matches an exclude
// pattern.
func (f *Filter) Excluded(path string) bool {
	return matchAny(f.exclude, filepath.Base(path))
}

// MatchFile reports whether the file at path is a unit to check.
func (f *Filter) MatchFile(path string) bool {
	if f.Excluded(path) {
		return false
	}
	return len(f.include) == 0 || matchAny(f.include, filepath.Base(path))
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
