package workspace

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/proparse/abl/diag"
	"github.com/dhamidi/proparse/config"
)

const lsName = "proparse"

// LSPServer is a language server publishing the outcome of each unit as
// diagnostics. Documents are checked on open, change and save.
type LSPServer struct {
	workspace *Workspace
	handler   protocol.Handler
	server    *server.Server
	version   string
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cfg, err := config.LoadDir(rootDir)
	if err != nil {
		return nil, err
	}
	ls.workspace, err = Open(cfg)
	if err != nil {
		return nil, err
	}

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.workspace.CheckAll(context.Background()); err != nil {
		log.Errorf("initial check: %v", err)
	}
	for _, fi := range ls.workspace.Failed() {
		ls.publish(ctx, fi)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.publish(ctx, ls.workspace.UpdateFile(path, []byte(params.TextDocument.Text)))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.publish(ctx, ls.workspace.UpdateFile(path, []byte(textChange.Text)))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	var fi *FileInfo
	if params.Text != nil {
		fi = ls.workspace.UpdateFile(path, []byte(*params.Text))
	} else {
		fi = ls.workspace.CheckFile(path)
	}
	ls.publish(ctx, fi)

	// Units including the saved file see the new text only now.
	for _, dep := range ls.workspace.Dependents(path) {
		ls.publish(ctx, ls.workspace.CheckFile(dep))
	}
	return nil
}

func (ls *LSPServer) publish(ctx *glsp.Context, fi *FileInfo) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         pathToURI(fi.Path),
		Diagnostics: Diagnostics(fi),
	})
}

// Diagnostics converts the error of a checked file. An error raised inside
// an include file is reported at the top of the unit.
func Diagnostics(fi *FileInfo) []protocol.Diagnostic {
	out := []protocol.Diagnostic{}
	if fi == nil || fi.Err == nil {
		return out
	}

	severity := protocol.DiagnosticSeverityError
	source := lsName
	d := protocol.Diagnostic{
		Severity: &severity,
		Source:   &source,
		Message:  fi.Err.Error(),
	}

	if de, ok := diag.As(fi.Err); ok {
		d.Code = &protocol.IntegerOrString{Value: string(de.Kind)}
		if de.File == "" || absPath(de.File) == absPath(fi.Path) {
			d.Message = message(de)
			d.Range = lineRange(de.Line, de.Column, len(de.Found))
		}
	}
	return append(out, d)
}

func message(de *diag.Error) string {
	msg := fmt.Sprintf("%s/%s: %s", de.Stage, de.Kind, de.Message)
	if len(de.Expected) > 0 {
		msg += fmt.Sprintf(" (expected %s)", strings.Join(de.Expected, ", "))
	}
	return msg
}

// lineRange converts a 1-based position to a protocol range of width
// characters, at least one.
func lineRange(line, column, width int) protocol.Range {
	start := protocol.Position{}
	if line > 0 {
		start.Line = protocol.UInteger(line - 1)
	}
	if column > 0 {
		start.Character = protocol.UInteger(column - 1)
	}
	if width < 1 {
		width = 1
	}
	end := start
	end.Character += protocol.UInteger(width)
	return protocol.Range{Start: start, End: end}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) protocol.DocumentUri {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath(path))}
	return u.String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
