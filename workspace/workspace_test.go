package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/proparse/abl/diag"
	"github.com/dhamidi/proparse/abl/session"
	"github.com/dhamidi/proparse/abl/unit"
	"github.com/dhamidi/proparse/config"
)

var project = filepath.Join("testdata", "project")

func openProject(t *testing.T, dir string) *Workspace {
	t.Helper()
	cfg, err := config.LoadDir(dir)
	require.NoError(t, err)
	w, err := Open(cfg)
	require.NoError(t, err)
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFilter(t *testing.T) {
	f, err := NewFilter([]string{"*.p", "*.cls"}, []string{"skip", "*.bak.p"})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"src/good.p", true},
		{"Acme/Shape.cls", true},
		{"src/common.i", false},
		{"src/old.bak.p", false},
		{"skip", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.MatchFile(tt.path), tt.path)
	}
	assert.True(t, f.SkipDir("a/skip"))
	assert.False(t, f.SkipDir("a/src"))
}

func TestFiles(t *testing.T) {
	w := openProject(t, project)
	files, err := w.Files()
	require.NoError(t, err)
	want := []string{
		filepath.Join(project, "Acme", "Circle.cls"),
		filepath.Join(project, "Acme", "Shape.cls"),
		filepath.Join(project, "src", "bad.p"),
		filepath.Join(project, "src", "good.p"),
		filepath.Join(project, "src", "syntax.p"),
	}
	assert.Equal(t, want, files)
}

func TestCheckAll(t *testing.T) {
	w := openProject(t, project)
	require.NoError(t, w.CheckAll(context.Background()))

	results := w.Results()
	require.Len(t, results, 5)

	good := w.GetFile(filepath.Join(project, "src", "good.p"))
	require.NotNil(t, good)
	require.NoError(t, good.Err)
	assert.Equal(t, unit.StageResolved, good.Unit.Stage())
	assert.Equal(t, 1, good.Unit.Metrics().Includes)
	assert.Contains(t, good.Includes, absPath(filepath.Join(project, "src", "common.i")))

	for _, name := range []string{"Circle.cls", "Shape.cls"} {
		fi := w.GetFile(filepath.Join(project, "Acme", name))
		require.NotNil(t, fi, name)
		assert.NoError(t, fi.Err, name)
	}

	bad := w.GetFile(filepath.Join(project, "src", "bad.p"))
	require.NotNil(t, bad)
	assert.Equal(t, diag.KindUnresolvedIdentifier, diag.KindOf(bad.Err))

	syntax := w.GetFile(filepath.Join(project, "src", "syntax.p"))
	require.NotNil(t, syntax)
	assert.True(t, diag.IsSyntaxError(syntax.Err))

	failed := w.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, bad.Path, failed[0].Path)
	assert.Equal(t, syntax.Path, failed[1].Path)

	// Units run in forks; the shared session never sees a class.
	assert.Zero(t, w.Session().Cache().Len())
}

func TestCheckAllTwice(t *testing.T) {
	w := openProject(t, project)
	require.NoError(t, w.CheckAll(context.Background()))
	require.NoError(t, w.CheckAll(context.Background()))
	shape := w.GetFile(filepath.Join(project, "Acme", "Shape.cls"))
	require.NotNil(t, shape)
	assert.NoError(t, shape.Err)
}

func TestCheckAllCanceled(t *testing.T) {
	w := openProject(t, project)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.CheckAll(ctx), context.Canceled)
}

func TestUpdateFile(t *testing.T) {
	w := openProject(t, project)
	path := filepath.Join(project, "src", "bad.p")

	fi := w.UpdateFile(path, []byte("DEFINE VARIABLE x AS INTEGER NO-UNDO.\nDISPLAY x.\n"))
	require.NoError(t, fi.Err)
	assert.Same(t, fi, w.GetFile(path))

	fi = w.CheckFile(path)
	assert.Equal(t, diag.KindUnresolvedIdentifier, diag.KindOf(fi.Err))

	w.RemoveFile(path)
	assert.Nil(t, w.GetFile(path))
}

func TestDependents(t *testing.T) {
	w := openProject(t, project)
	require.NoError(t, w.CheckAll(context.Background()))
	assert.Equal(t,
		[]string{filepath.Join(project, "src", "good.p")},
		w.Dependents(filepath.Join(project, "src", "common.i")))
	assert.Empty(t, w.Dependents(filepath.Join(project, "src", "bad.p")))
}

func TestRefresh(t *testing.T) {
	dir := t.TempDir()
	inc := filepath.Join(dir, "defs.i")
	main := filepath.Join(dir, "main.p")
	other := filepath.Join(dir, "other.p")
	writeFile(t, inc, "DEFINE VARIABLE n AS INTEGER NO-UNDO.\n")
	writeFile(t, main, "{defs.i}\nDISPLAY n.\n")
	writeFile(t, other, "DISPLAY 1.\n")

	w := openProject(t, dir)
	require.NoError(t, w.CheckAll(context.Background()))
	require.Empty(t, w.Failed())

	writeFile(t, inc, "DEFINE VARIABLE m AS INTEGER NO-UNDO.\n")
	checked, err := w.Refresh(context.Background(), []string{inc})
	require.NoError(t, err)
	assert.Equal(t, []string{main}, checked)
	assert.Equal(t, diag.KindUnresolvedIdentifier, diag.KindOf(w.GetFile(main).Err))

	require.NoError(t, os.Remove(other))
	checked, err = w.Refresh(context.Background(), []string{other})
	require.NoError(t, err)
	assert.Empty(t, checked)
	assert.Nil(t, w.GetFile(other))
	assert.Len(t, w.Results(), 1)
}

func TestDiagnostics(t *testing.T) {
	w := openProject(t, project)

	ok := w.UpdateFile(filepath.Join(project, "src", "good.p"), []byte("DISPLAY 1.\n"))
	diags := Diagnostics(ok)
	assert.NotNil(t, diags)
	assert.Empty(t, diags)

	bad := w.CheckFile(filepath.Join(project, "src", "bad.p"))
	diags = Diagnostics(bad)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, protocol.UInteger(1), d.Range.Start.Line)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, "proparse", *d.Source)
	require.NotNil(t, d.Code)
	assert.Equal(t, "unresolved-identifier", d.Code.Value)
	assert.True(t, strings.HasPrefix(d.Message, "resolve/unresolved-identifier: "), d.Message)
	assert.Greater(t, d.Range.End.Character, d.Range.Start.Character)
}

func TestDiagnosticsInInclude(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.p")
	writeFile(t, filepath.Join(dir, "broken.i"), "{missing.i}\n")
	writeFile(t, main, "DISPLAY 1.\n{broken.i}\n")

	w := openProject(t, dir)
	fi := w.CheckFile(main)
	require.Error(t, fi.Err)
	diags := Diagnostics(fi)
	require.Len(t, diags, 1)
	assert.Equal(t, protocol.Position{}, diags[0].Range.Start)
	assert.Contains(t, diags[0].Message, "broken.i")
	assert.Equal(t, diag.KindIncludeNotFound, diag.KindOf(fi.Err))
	assert.Equal(t, []string{absPath(filepath.Join(dir, "broken.i"))}, fi.Includes)
}

func TestURIs(t *testing.T) {
	path, err := uriToPath("file:///home/me/src/a%20b.p")
	require.NoError(t, err)
	assert.Equal(t, "/home/me/src/a b.p", path)

	assert.Equal(t, "file:///home/me/src/a%20b.p", pathToURI("/home/me/src/a b.p"))
}

func TestWatchRefreshesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "skip"), 0o755))
	filter, err := NewFilter([]string{"*.p"}, []string{"skip"})
	require.NoError(t, err)
	w := New(dir, session.New(), WithFilter(filter))

	tw, err := w.watchTree()
	require.NoError(t, err)
	defer tw.fsw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	refreshed := make(chan []*FileInfo, 16)
	go tw.loop(ctx, 20*time.Millisecond, func(files []*FileInfo) {
		refreshed <- files
	})

	// next waits for a refresh after which done holds.
	next := func(done func() bool) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case <-refreshed:
				if done() {
					return
				}
			case <-deadline:
				t.Fatal("no refresh")
			}
		}
	}

	path := filepath.Join(dir, "new.p")
	writeFile(t, filepath.Join(dir, "skip", "ignored.p"), "DISPLAY 2.\n")
	writeFile(t, path, "DISPLAY 1.\n")
	next(func() bool { return w.GetFile(path) != nil })
	assert.NoError(t, w.GetFile(path).Err)
	assert.Nil(t, w.GetFile(filepath.Join(dir, "skip", "ignored.p")))

	// A new directory brings its files along.
	later := filepath.Join(dir, "sub", "later.p")
	writeFile(t, later, "DISPLAY 3.\n")
	next(func() bool { return w.GetFile(later) != nil })

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "sub")))
	next(func() bool { return w.GetFile(later) == nil })
	assert.NotNil(t, w.GetFile(path))
}
