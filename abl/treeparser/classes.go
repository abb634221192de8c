package treeparser

import (
	"errors"
	"os"
	"strings"

	"github.com/dhamidi/proparse/abl/diag"
	"github.com/dhamidi/proparse/abl/parser"
	"github.com/dhamidi/proparse/abl/scope"
	"github.com/dhamidi/proparse/abl/session"
)

// class resolves a CLASS or INTERFACE. The parent class is loaded first
// so inherited members resolve; the class is registered in the session
// cache only once its body resolved.
func (tp *TreeParser) class(n *parser.Node) {
	name := n.TokenLiteral()
	tp.chain = append(tp.chain, strings.ToUpper(name))

	cls := tp.cur.NewChild(scope.KindClass, name, n)
	n.Scope = cls

	for _, clause := range n.Children {
		if clause.Kind != parser.KindInheritsClause && clause.Kind != parser.KindImplementsClause {
			continue
		}
		for i, tn := range clause.ChildrenOfKind(parser.KindTypeName) {
			tn.State2 = parser.ClassType
			super := tp.loadClass(tn)
			if tp.failed() {
				return
			}
			if n.Kind != parser.KindClassDecl || clause.Kind != parser.KindInheritsClause || i > 0 {
				continue
			}
			cls.SuperName = tn.TokenLiteral()
			if super == nil {
				log.Infof("%s:%d: parent class %s of %s not found, inherited members are unchecked", n.File(), n.Line(), cls.SuperName, name)
				cls.Partial = true
				continue
			}
			cls.Super = super
			cls.Partial = super.Partial
		}
	}

	if body := n.FirstChildOfKind(parser.KindCodeBlock); body != nil {
		tp.within(cls, func() {
			tp.collect(cls, body.Children)
			tp.statements(body.Children)
		})
	}
	if tp.failed() {
		return
	}

	entry, err := tp.sess.Cache().Register(name, cls)
	if err != nil {
		de := diag.Resolve(diag.KindDuplicateDefinition, n.File(), n.Line(), n.Span.Start.Column, "class %s is already defined in this session", name)
		de.Err = err
		tp.err = de
		return
	}
	log.Debugf("%s: registered class %s (generation %d)", tp.file, name, entry.Generation)
}

// isBuiltinClass reports classes of the runtime, which are never found on
// the propath.
func isBuiltinClass(name string) bool {
	upper := strings.ToUpper(name)
	return strings.HasPrefix(upper, "PROGRESS.") || strings.HasPrefix(upper, "OPENEDGE.")
}

// candidates returns the qualified names a class reference may stand for:
// the ones given by USING statements, then the name itself.
func (tp *TreeParser) candidates(name string) []string {
	var out []string
	if !strings.Contains(name, ".") {
		for _, u := range tp.usings {
			switch {
			case strings.HasSuffix(u, ".*"):
				out = append(out, strings.TrimSuffix(u, "*")+name)
			case strings.EqualFold(u[strings.LastIndex(u, ".")+1:], name):
				out = append(out, u)
			}
		}
	}
	return append(out, name)
}

// loadClass returns the scope of the class named by tn. A class not yet in
// the session cache is read from the propath and resolved in the same
// session. It returns nil when the class is not found; errors resolving it
// are fatal for this unit too.
func (tp *TreeParser) loadClass(tn *parser.Node) *scope.Scope {
	name := tn.TokenLiteral()
	cands := tp.candidates(name)
	for _, cand := range cands {
		if e, ok := tp.sess.Cache().Lookup(cand); ok {
			return e.Scope
		}
	}
	if isBuiltinClass(name) {
		return nil
	}
	for _, cand := range cands {
		path, err := tp.sess.FindFile(strings.ReplaceAll(cand, ".", "/") + ".cls")
		if err != nil {
			continue
		}
		if tp.inChain(cand) {
			tp.fail(diag.KindUnresolvedIdentifier, tn, "class %s inherits from itself", cand)
			return nil
		}
		if err := tp.resolveFile(path, cand); err != nil {
			// Another unit of the session loaded the class meanwhile and
			// registered it first. Its entry is the class.
			if e, ok := tp.sess.Cache().Lookup(cand); ok && errors.Is(err, session.ErrAlreadyRegistered) {
				log.Debugf("%s: class %s was loaded concurrently, using generation %d", tp.file, cand, e.Generation)
				return e.Scope
			}
			tp.err = err
			return nil
		}
		if e, ok := tp.sess.Cache().Lookup(cand); ok {
			return e.Scope
		}
		log.Warningf("%s does not define class %s", path, cand)
		return nil
	}
	return nil
}

func (tp *TreeParser) inChain(name string) bool {
	upper := strings.ToUpper(name)
	for _, c := range tp.chain {
		if c == upper {
			return true
		}
	}
	return false
}

// resolveFile lexes, parses and resolves the class file at path on behalf
// of the current unit.
func (tp *TreeParser) resolveFile(path, name string) error {
	log.Debugf("%s: loading class %s from %s", tp.file, name, path)
	src, err := os.ReadFile(path)
	if err != nil {
		de := diag.Resolve(diag.KindIO, path, 0, 0, "read class %s", name)
		de.Err = err
		return de
	}
	top, err := parser.ParseSource(src, path, tp.sess.LexOptions()...)
	if err != nil {
		return err
	}
	child := New(tp.sess, WithFile(path))
	child.chain = append(append([]string(nil), tp.chain...), strings.ToUpper(name))
	_, err = child.Resolve(top)
	return err
}

// create classifies what a CREATE statement makes: a record, an automation
// object or a widget. The grammar cannot tell these apart; the session
// class tables and the class hierarchy can.
func (tp *TreeParser) create(n *parser.Node) {
	if len(n.Children) == 0 {
		return
	}
	target := n.Children[0]
	switch target.Kind {
	case parser.KindRecordRef:
		n.State2 = parser.ClassRecord
	case parser.KindLiteral:
		n.State2 = parser.ClassAutomationObject
	case parser.KindTypeName:
		n.State2 = tp.createClass(target)
	}
	// CREATE WIDGET-POOL, CREATE ALIAS and the like stay unclassified.
	tp.children(n)
}

func (tp *TreeParser) createClass(tn *parser.Node) parser.Class {
	name := tn.TokenLiteral()
	classes := tp.sess.Classes()
	switch {
	case classes.IsAutomation(name):
		return parser.ClassAutomationObject
	case classes.IsWidget(name):
		return parser.ClassWidget
	}
	if cls := tp.loadClass(tn); cls != nil {
		tn.State2 = parser.ClassType
		if widgetDerived(cls, classes.IsWidget) {
			return parser.ClassWidget
		}
	}
	if tp.failed() {
		return parser.ClassUnset
	}
	log.Debugf("%s:%d: CREATE %s: no automation or widget class of that name, taken as a widget", tn.File(), tn.Line(), name)
	return parser.ClassWidget
}

// widgetDerived reports whether a class inherits from a widget type.
func widgetDerived(cls *scope.Scope, isWidget func(string) bool) bool {
	for c := cls; c != nil; c = c.Super {
		if c.SuperName != "" && isWidget(c.SuperName) {
			return true
		}
	}
	return false
}
