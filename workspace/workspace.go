// Package workspace checks all compilation units below a directory and keeps
// the results current as files change, for the command line and the
// language server.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/proparse/abl/diag"
	"github.com/dhamidi/proparse/abl/session"
	"github.com/dhamidi/proparse/abl/unit"
	"github.com/dhamidi/proparse/config"
)

var log = commonlog.GetLogger("proparse.workspace")

var defaultInclude = []string{"*.p", "*.w", "*.cls"}

type Option func(*Workspace)

func WithFilter(f *Filter) Option {
	return func(w *Workspace) {
		w.filter = f
	}
}

// WithJobs limits how many units are checked at the same time.
func WithJobs(n int) Option {
	return func(w *Workspace) {
		w.jobs = n
	}
}

type Workspace struct {
	mu      sync.RWMutex
	root    string
	session *session.Session
	filter  *Filter
	jobs    int
	files   map[string]*FileInfo
}

// FileInfo is the outcome of checking one file.
type FileInfo struct {
	Path string
	Unit *unit.Unit
	// Includes lists the absolute paths of the other files the unit read.
	Includes []string
	Err      error
}

func New(root string, sess *session.Session, opts ...Option) *Workspace {
	w := &Workspace{
		root:    root,
		session: sess,
		jobs:    1,
		files:   make(map[string]*FileInfo),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.filter == nil {
		w.filter, _ = NewFilter(defaultInclude, nil)
	}
	if w.jobs < 1 {
		w.jobs = 1
	}
	return w
}

// Open creates the workspace described by cfg, rooted at its directory.
func Open(cfg *config.Config) (*Workspace, error) {
	sess, err := cfg.Session()
	if err != nil {
		return nil, err
	}
	filter, err := NewFilter(cfg.Workspace.Include, cfg.Workspace.Exclude)
	if err != nil {
		return nil, err
	}
	return New(cfg.Dir, sess, WithFilter(filter), WithJobs(cfg.Workspace.Jobs)), nil
}

func (w *Workspace) RootDir() string {
	return w.root
}

func (w *Workspace) Session() *session.Session {
	return w.session
}

func (w *Workspace) Filter() *Filter {
	return w.filter
}

// Files lists the units below the root in lexical order.
func (w *Workspace) Files() ([]string, error) {
	var files []string
	err := filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != w.root && w.filter.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.filter.MatchFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// CheckAll checks every unit below the root. Failing units are results, not
// errors: the returned error is about the walk or the context.
func (w *Workspace) CheckAll(ctx context.Context) error {
	files, err := w.Files()
	if err != nil {
		return err
	}
	log.Infof("checking %d files under %s with %d jobs", len(files), w.root, w.jobs)
	return w.checkPaths(ctx, files)
}

func (w *Workspace) checkPaths(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.jobs)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w.store(w.check(path, nil))
			return nil
		})
	}
	return g.Wait()
}

// CheckFile reads and checks a single file.
func (w *Workspace) CheckFile(path string) *FileInfo {
	fi := w.check(filepath.Clean(path), nil)
	w.store(fi)
	return fi
}

// UpdateFile checks content as the current text of path, which need not be
// saved.
func (w *Workspace) UpdateFile(path string, content []byte) *FileInfo {
	if content == nil {
		content = []byte{}
	}
	fi := w.check(filepath.Clean(path), content)
	w.store(fi)
	return fi
}

// check runs a unit to completion. Each unit gets a fork of the session, as a
// class cache never drops an entry and a file checked twice would collide
// with its own earlier definition.
func (w *Workspace) check(path string, src []byte) *FileInfo {
	var opts []unit.Option
	if src != nil {
		opts = append(opts, unit.WithSource(src))
	}
	u := unit.New(w.session.Fork(), path, opts...)
	err := u.TreeParse()
	log.Debugf("%s: %s", path, u.Stage())
	return &FileInfo{
		Path:     path,
		Unit:     u,
		Includes: includes(u, err),
		Err:      err,
	}
}

func includes(u *unit.Unit, err error) []string {
	seen := map[string]bool{absPath(u.Name()): true}
	var out []string
	add := func(file string) {
		if file == "" {
			return
		}
		abs := absPath(file)
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	}
	if stream := u.Tokens(); stream != nil {
		for _, tok := range stream.Tokens() {
			add(tok.File())
		}
	}
	if de, ok := diag.As(err); ok {
		add(de.File)
	}
	sort.Strings(out)
	return out
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (w *Workspace) store(fi *FileInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[fi.Path] = fi
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, filepath.Clean(path))
}

// removeTree drops the results of path and, for a deleted directory, of
// every file that was below it.
func (w *Workspace) removeTree(path string) {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)
	w.mu.Lock()
	defer w.mu.Unlock()
	for p := range w.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(w.files, p)
		}
	}
}

// filesAt returns the results of the given paths that have one.
func (w *Workspace) filesAt(paths []string) []*FileInfo {
	out := make([]*FileInfo, 0, len(paths))
	for _, path := range paths {
		if fi := w.GetFile(path); fi != nil {
			out = append(out, fi)
		}
	}
	return out
}

func (w *Workspace) GetFile(path string) *FileInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[filepath.Clean(path)]
}

// Results returns the checked files ordered by path.
func (w *Workspace) Results() []*FileInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*FileInfo, 0, len(w.files))
	for _, fi := range w.files {
		out = append(out, fi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Failed returns the results that carry an error.
func (w *Workspace) Failed() []*FileInfo {
	var out []*FileInfo
	for _, fi := range w.Results() {
		if fi.Err != nil {
			out = append(out, fi)
		}
	}
	return out
}

// Dependents returns the checked files that read path as an include file.
func (w *Workspace) Dependents(path string) []string {
	abs := absPath(path)
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []string
	for _, fi := range w.files {
		for _, inc := range fi.Includes {
			if inc == abs {
				out = append(out, fi.Path)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Refresh brings the results up to date after the given paths changed on
// disk: deleted units are dropped, changed units and the units including a
// changed file are checked again. It returns the paths that were checked.
func (w *Workspace) Refresh(ctx context.Context, paths []string) ([]string, error) {
	targets := make(map[string]bool)
	for _, path := range paths {
		path = filepath.Clean(path)
		if _, err := os.Stat(path); err != nil {
			w.removeTree(path)
		} else if w.filter.MatchFile(path) {
			targets[path] = true
		}
		for _, dep := range w.Dependents(path) {
			if _, err := os.Stat(dep); err == nil {
				targets[dep] = true
			}
		}
	}
	checked := make([]string, 0, len(targets))
	for path := range targets {
		checked = append(checked, path)
	}
	sort.Strings(checked)
	log.Infof("refreshing %d files", len(checked))
	return checked, w.checkPaths(ctx, checked)
}
