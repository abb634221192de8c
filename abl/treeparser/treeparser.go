// Package treeparser resolves a parsed unit: it builds the scope tree, binds
// every identifier to its declaration or to a schema table or field, and
// refines the provisional classification the parser left on the nodes.
// Resolution stops at the first fatal error.
package treeparser

import (
	"github.com/tliron/commonlog"

	"github.com/dhamidi/proparse/abl/diag"
	"github.com/dhamidi/proparse/abl/parser"
	"github.com/dhamidi/proparse/abl/schema"
	"github.com/dhamidi/proparse/abl/scope"
	"github.com/dhamidi/proparse/abl/session"
)

var log = commonlog.GetLogger("proparse.treeparser")

type Option func(*TreeParser)

// WithFile names the unit being resolved. It becomes the name of the root
// scope and the file of errors raised on nodes without a position.
func WithFile(path string) Option {
	return func(tp *TreeParser) {
		tp.file = path
	}
}

type TreeParser struct {
	sess   *session.Session
	schema *schema.Schema
	file   string

	root *scope.Scope
	cur  *scope.Scope
	err  error

	usings []string
	// chain lists the classes being loaded by this resolution and the ones
	// that started it, in upper case, so an inheritance cycle is caught.
	chain []string
	// fields are the symbols standing for schema fields reached through a
	// buffer. They belong to this unit only.
	fields map[fieldKey]*scope.Symbol
	// deferred holds routine bodies of the unit or class level, resolved
	// once every statement of that level has been seen.
	deferred  []*parser.Node
	deferring bool
}

type fieldKey struct {
	buffer *scope.Symbol
	field  *schema.Field
}

func New(sess *session.Session, opts ...Option) *TreeParser {
	tp := &TreeParser{
		sess:   sess,
		schema: sess.Schema(),
		fields: make(map[fieldKey]*scope.Symbol),
	}
	for _, opt := range opts {
		opt(tp)
	}
	return tp
}

// Resolve walks top, the Program node of a unit, and returns the root scope.
// A TreeParser resolves one unit; it must not be reused.
func (tp *TreeParser) Resolve(top *parser.Node) (*scope.Scope, error) {
	if top == nil || top.Kind != parser.KindProgram {
		return nil, diag.Resolve(diag.KindMalformedTree, tp.file, 0, 0, "tree parser needs a Program node")
	}
	provisional := classesOf(top)
	tp.root = scope.NewRoot(tp.file)
	tp.cur = tp.root
	top.Scope = tp.root

	tp.collect(tp.root, top.Children)
	tp.statements(top.Children)
	if tp.err != nil {
		log.Debugf("%s: %v", tp.file, tp.err)
		reset(top, provisional)
		return nil, tp.err
	}
	log.Debugf("%s: resolved, %d symbols at unit level", tp.file, len(tp.root.Symbols()))
	return tp.root, nil
}

// classesOf records the classification the parser gave each node.
func classesOf(top *parser.Node) map[*parser.Node]parser.Class {
	classes := make(map[*parser.Node]parser.Class)
	top.Walk(func(n *parser.Node) bool {
		if n.State2 != parser.ClassUnset {
			classes[n] = n.State2
		}
		return true
	})
	return classes
}

// reset takes back what a failed resolution wrote on the tree: scopes,
// symbols and refined classes.
func reset(top *parser.Node, provisional map[*parser.Node]parser.Class) {
	top.Walk(func(n *parser.Node) bool {
		n.Scope = nil
		n.Symbol = nil
		n.State2 = provisional[n]
		return true
	})
}

func (tp *TreeParser) failed() bool {
	return tp.err != nil
}

// fail records the first fatal error. Later ones are dropped.
func (tp *TreeParser) fail(kind diag.Kind, at *parser.Node, format string, args ...any) {
	if tp.err != nil {
		return
	}
	file, line, column := tp.file, 0, 0
	if at != nil {
		if at.File() != "" {
			file = at.File()
		}
		line, column = at.Line(), at.Span.Start.Column
	}
	tp.err = diag.Resolve(kind, file, line, column, format, args...)
}

// within runs fn with s as the current scope.
func (tp *TreeParser) within(s *scope.Scope, fn func()) {
	saved := tp.cur
	tp.cur = s
	defer func() { tp.cur = saved }()
	fn()
}

// bind attaches sym to n. Uses are only recorded on symbols of this unit:
// scopes of other units come from the session cache and are shared.
func (tp *TreeParser) bind(n *parser.Node, sym *scope.Symbol) {
	n.Symbol = sym
	n.State2 = sym.Kind.Class()
	if sym.Scope == nil || sym.Scope.Root() == tp.root {
		sym.AddUse(n)
	}
}

// collect defines the routines of a unit or class before any statement is
// walked, as they can be called ahead of their definition.
func (tp *TreeParser) collect(s *scope.Scope, stmts []*parser.Node) {
	for _, st := range stmts {
		var kind scope.SymbolKind
		switch st.Kind {
		case parser.KindProcedureDecl:
			kind = scope.SymbolProcedure
		case parser.KindFunctionDecl:
			kind = scope.SymbolFunction
		case parser.KindMethodDecl:
			kind = scope.SymbolMethod
		default:
			continue
		}
		sym := &scope.Symbol{Kind: kind, Name: st.TokenLiteral(), Decl: st, DataType: typeName(st.FirstChildOfKind(parser.KindTypeSpec))}
		// A FORWARD declaration comes first and keeps the symbol; method
		// overloads share one.
		got, _ := s.Define(sym)
		st.Symbol = got
		st.State2 = got.Kind.Class()
	}
}

// statements walks a statement list. At unit and class level, routine
// bodies wait until the rest of the level is done.
func (tp *TreeParser) statements(stmts []*parser.Node) {
	top := tp.cur.Kind == scope.KindRoot || tp.cur.Kind == scope.KindClass
	if !top {
		for _, st := range stmts {
			if tp.failed() {
				return
			}
			tp.visit(st)
		}
		return
	}

	savedDeferred, savedDeferring := tp.deferred, tp.deferring
	tp.deferred, tp.deferring = nil, true
	for _, st := range stmts {
		if tp.failed() {
			break
		}
		if isRoutine(st.Kind) {
			tp.deferred = append(tp.deferred, st)
			continue
		}
		tp.visit(st)
	}
	pending := tp.deferred
	tp.deferred, tp.deferring = savedDeferred, savedDeferring
	for _, st := range pending {
		if tp.failed() {
			return
		}
		tp.visit(st)
	}
}

// later resolves n now, or after the current level when routine bodies
// are being deferred.
func (tp *TreeParser) later(n *parser.Node) {
	if tp.deferring {
		tp.deferred = append(tp.deferred, n)
		return
	}
	tp.visit(n)
}

func isRoutine(kind parser.NodeKind) bool {
	switch kind {
	case parser.KindProcedureDecl, parser.KindFunctionDecl, parser.KindMethodDecl,
		parser.KindConstructorDecl, parser.KindDestructorDecl:
		return true
	}
	return false
}

func (tp *TreeParser) children(n *parser.Node) {
	for _, child := range n.Children {
		if tp.failed() {
			return
		}
		tp.visit(child)
	}
}

func (tp *TreeParser) visit(n *parser.Node) {
	if n == nil || tp.failed() {
		return
	}
	switch n.Kind {
	// Classes and routines.
	case parser.KindUsingStmt:
		tp.usings = append(tp.usings, n.TokenLiteral())
	case parser.KindClassDecl, parser.KindInterfaceDecl:
		tp.class(n)
	case parser.KindProcedureDecl, parser.KindConstructorDecl, parser.KindDestructorDecl:
		tp.routine(n, n.TokenLiteral())
	case parser.KindFunctionDecl, parser.KindMethodDecl:
		if n.FirstChildOfKind(parser.KindCodeBlock) != nil {
			tp.routine(n, n.TokenLiteral())
			return
		}
		if in := n.FirstChildOfKind(parser.KindInClause); in != nil {
			tp.children(in)
		}
	case parser.KindPropertyAccessor:
		if n.FirstChildOfKind(parser.KindCodeBlock) != nil {
			tp.routine(n, n.Name())
		}
	case parser.KindTriggerBlock:
		tp.trigger(n)

	// Definitions.
	case parser.KindDefineVariable:
		tp.defineData(n, scope.SymbolVariable)
	case parser.KindDefineParameter:
		tp.defineParameter(n)
	case parser.KindDefineBuffer:
		tp.defineBuffer(n)
	case parser.KindDefineTempTable:
		tp.defineTempTable(n)
	case parser.KindDefineDataset:
		tp.defineDataset(n)
	case parser.KindDefineQuery:
		tp.defineNamed(n, scope.SymbolQuery)
		for _, rr := range n.ChildrenOfKind(parser.KindRecordRef) {
			tp.recordRef(rr, false)
		}
	case parser.KindDefineStream:
		tp.defineNamed(n, scope.SymbolStream)
	case parser.KindDefineFrame, parser.KindDefineWidget:
		tp.defineNamed(n, scope.SymbolWidget)
	case parser.KindDefineEvent:
		tp.defineNamed(n, scope.SymbolEvent)
	case parser.KindDefineProperty:
		tp.defineProperty(n)

	// Blocks.
	case parser.KindCodeBlock:
		tp.statements(n.Children)
	case parser.KindDoStmt, parser.KindRepeatStmt, parser.KindForStmt:
		tp.block(n, n.Name(), nil)
	case parser.KindFinallyBlock:
		tp.block(n, "FINALLY", nil)
	case parser.KindCatchBlock:
		tp.block(n, "CATCH", func(s *scope.Scope) {
			v := &scope.Symbol{Kind: scope.SymbolVariable, Name: n.TokenLiteral(), Decl: n, DataType: typeName(n.FirstChildOfKind(parser.KindTypeSpec))}
			tp.define(s, n, v)
		})
	case parser.KindRecordPhrase:
		tp.recordPhrase(n)

	// Statements with their own rules.
	case parser.KindCreateStmt:
		tp.create(n)
	case parser.KindRunStmt:
		tp.run(n)
	case parser.KindMessageStmt:
		tp.message(n)
	case parser.KindOpenQueryStmt:
		tp.openQuery(n)
	case parser.KindEmptyStmt, parser.KindQuitStmt, parser.KindStopStmt:
		// Nothing to resolve.

	// Expressions.
	case parser.KindIdentifier:
		tp.identifier(n)
	case parser.KindRecordRef:
		tp.recordRef(n, true)
	case parser.KindWidgetRef:
		tp.widgetRef(n)
	case parser.KindMemberAccess:
		tp.memberAccess(n)
	case parser.KindCallExpr:
		tp.call(n)
	case parser.KindBuiltinCall:
		tp.builtin(n)
	case parser.KindNewExpr, parser.KindCastExpr:
		for _, child := range n.Children {
			if child.Kind == parser.KindTypeName {
				child.State2 = parser.ClassType
				continue
			}
			tp.visit(child)
		}
	case parser.KindTypeName:
		n.State2 = parser.ClassType
	case parser.KindLikeSpec:
		tp.children(n)
	case parser.KindLiteral, parser.KindThisObject, parser.KindSuper, parser.KindTypeSpec,
		parser.KindBlockLabel, parser.KindLockOption, parser.KindUseIndex, parser.KindBreakClause,
		parser.KindNoError, parser.KindModifiers, parser.KindParameterList, parser.KindIndexDef:
		// Leaves as far as names go.

	default:
		tp.children(n)
	}
}

// routine opens a routine scope for n, defines its parameters and walks
// its body.
func (tp *TreeParser) routine(n *parser.Node, name string) {
	s := tp.cur.NewChild(scope.KindRoutine, name, n)
	n.Scope = s
	tp.within(s, func() {
		if params := n.FirstChildOfKind(parser.KindParameterList); params != nil {
			for _, p := range params.ChildrenOfKind(parser.KindParameterDecl) {
				tp.parameter(p)
			}
		}
		if body := n.FirstChildOfKind(parser.KindCodeBlock); body != nil {
			tp.collect(s, body.Children)
			tp.statements(body.Children)
		}
	})
}

// block opens a block scope for a DO, REPEAT, FOR, CATCH or FINALLY. Record
// phrases of the header scope their buffers to the block.
func (tp *TreeParser) block(n *parser.Node, name string, setup func(*scope.Scope)) {
	s := tp.cur.NewChild(scope.KindBlock, name, n)
	n.Scope = s
	tp.within(s, func() {
		if setup != nil {
			setup(s)
		}
		tp.children(n)
	})
}

// trigger resolves the widgets of an ON statement where it stands and its
// body in a scope of its own.
func (tp *TreeParser) trigger(n *parser.Node) {
	var body []*parser.Node
	for _, child := range n.Children {
		switch {
		case child.Kind == parser.KindOption:
		case isExpression(child.Kind):
			tp.visit(child)
		default:
			body = append(body, child)
		}
	}
	if len(body) == 0 || tp.failed() {
		return
	}
	s := tp.cur.NewChild(scope.KindRoutine, "ON", n)
	n.Scope = s
	tp.within(s, func() {
		for _, st := range body {
			tp.visit(st)
		}
	})
}

func (tp *TreeParser) recordPhrase(n *parser.Node) {
	for _, child := range n.Children {
		if tp.failed() {
			return
		}
		switch child.Kind {
		case parser.KindRecordRef:
			tp.recordRef(child, true)
		case parser.KindOfClause, parser.KindWhereClause:
			tp.children(child)
		}
	}
}

// run binds the target of RUN to an internal procedure when there is one.
// Anything else is an external procedure and is not checked.
func (tp *TreeParser) run(n *parser.Node) {
	if len(n.Children) == 0 {
		return
	}
	target := n.Children[0]
	if target.Kind == parser.KindIdentifier {
		if sym := tp.cur.Resolve(target.TokenLiteral()); sym != nil && sym.Kind == scope.SymbolProcedure {
			tp.bind(target, sym)
		} else {
			log.Debugf("%s:%d: RUN %s: external procedure", target.File(), target.Line(), target.TokenLiteral())
		}
	} else {
		tp.visit(target)
	}
	for _, child := range n.Children[1:] {
		tp.visit(child)
	}
}

// message defines the variable of MESSAGE ... SET x AS type.
func (tp *TreeParser) message(n *parser.Node) {
	for _, child := range n.Children {
		if tp.failed() {
			return
		}
		if child.Kind != parser.KindOption || len(child.Children) < 2 {
			tp.visit(child)
			continue
		}
		target, spec := child.Children[0], child.Children[1]
		if target.Kind != parser.KindIdentifier || (spec.Kind != parser.KindTypeSpec && spec.Kind != parser.KindLikeSpec) {
			tp.visit(child)
			continue
		}
		v := &scope.Symbol{Kind: scope.SymbolVariable, Name: target.TokenLiteral(), Decl: target, DataType: tp.dataType(child)}
		got := tp.define(tp.cur.Owner(), target, v)
		if got != v {
			tp.bind(target, got)
		}
	}
}

// openQuery resolves the query and its record phrases. The buffers of the
// phrases are scoped to the query, not to the enclosing block.
func (tp *TreeParser) openQuery(n *parser.Node) {
	s := tp.cur.NewChild(scope.KindBlock, "OPEN QUERY", n)
	n.Scope = s
	for _, child := range n.Children {
		if tp.failed() {
			return
		}
		if child.Kind == parser.KindIdentifier {
			tp.visit(child)
			continue
		}
		tp.within(s, func() { tp.visit(child) })
	}
}

func isExpression(kind parser.NodeKind) bool {
	switch kind {
	case parser.KindBinaryExpr, parser.KindUnaryExpr, parser.KindParenExpr, parser.KindLiteral,
		parser.KindIdentifier, parser.KindRecordRef, parser.KindWidgetRef, parser.KindMemberAccess,
		parser.KindDynamicField, parser.KindCallExpr, parser.KindBuiltinCall, parser.KindSubscript,
		parser.KindNewExpr, parser.KindCastExpr, parser.KindIfExpr, parser.KindThisObject,
		parser.KindSuper:
		return true
	}
	return false
}
