package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch re-checks the files that change below the workspace root until ctx
// is done, and passes each batch of fresh results to onRefresh. A batch is
// checked once no event has arrived for the debounce interval. It blocks.
func (w *Workspace) Watch(ctx context.Context, debounce time.Duration, onRefresh func([]*FileInfo)) error {
	tw, err := w.watchTree()
	if err != nil {
		return err
	}
	defer tw.fsw.Close()
	return tw.loop(ctx, debounce, onRefresh)
}

// treeWatch follows the directories of a workspace. Only the loop
// goroutine touches changed.
type treeWatch struct {
	ws      *Workspace
	fsw     *fsnotify.Watcher
	changed map[string]bool
}

// watchTree starts following the workspace root and every directory below
// it that the filter keeps.
func (w *Workspace) watchTree() (*treeWatch, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	tw := &treeWatch{ws: w, fsw: fsw, changed: make(map[string]bool)}
	if err := tw.addTree(w.root, false); err != nil {
		fsw.Close()
		return nil, err
	}
	return tw, nil
}

// addTree watches dir and its kept subdirectories. With collect set, the
// files already in them count as changed: they arrived with the directory.
func (tw *treeWatch) addTree(dir string, collect bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if collect {
				tw.note(path)
			}
			return nil
		}
		if path != dir && tw.ws.filter.SkipDir(path) {
			return filepath.SkipDir
		}
		log.Debugf("watching %s", path)
		return tw.fsw.Add(path)
	})
}

// note adds path to the batch unless the filter excludes its name. File
// names outside the include patterns still count: they may be include
// files.
func (tw *treeWatch) note(path string) bool {
	if tw.ws.filter.Excluded(path) {
		return false
	}
	tw.changed[path] = true
	return true
}

// handle reports whether ev added anything to the batch.
func (tw *treeWatch) handle(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if tw.ws.filter.SkipDir(ev.Name) {
				return false
			}
			if err := tw.addTree(ev.Name, true); err != nil {
				log.Warningf("watch %s: %v", ev.Name, err)
			}
			return true
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return tw.note(ev.Name)
}

func (tw *treeWatch) loop(ctx context.Context, debounce time.Duration, onRefresh func([]*FileInfo)) error {
	quiet := time.NewTimer(debounce)
	quiet.Stop()
	defer quiet.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-tw.fsw.Events:
			if !ok {
				return nil
			}
			if tw.handle(ev) {
				quiet.Reset(debounce)
			}
		case err, ok := <-tw.fsw.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch: %v", err)
		case <-quiet.C:
			tw.flush(ctx, onRefresh)
		}
	}
}

// flush refreshes the workspace for the batch collected so far.
func (tw *treeWatch) flush(ctx context.Context, onRefresh func([]*FileInfo)) {
	if len(tw.changed) == 0 {
		return
	}
	paths := make([]string, 0, len(tw.changed))
	for path := range tw.changed {
		paths = append(paths, path)
	}
	clear(tw.changed)
	sort.Strings(paths)

	checked, err := tw.ws.Refresh(ctx, paths)
	if err != nil {
		log.Warningf("refresh: %v", err)
		return
	}
	if onRefresh != nil {
		onRefresh(tw.ws.filesAt(checked))
	}
}
