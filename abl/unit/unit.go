// Package unit drives one compilation unit through lexing, parsing and tree
// parsing. A Unit only moves forward, and each stage's result becomes
// visible once that stage has run.
package unit

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/proparse/abl/diag"
	"github.com/dhamidi/proparse/abl/parser"
	"github.com/dhamidi/proparse/abl/scope"
	"github.com/dhamidi/proparse/abl/session"
	"github.com/dhamidi/proparse/abl/treeparser"
)

var log = commonlog.GetLogger("proparse.unit")

type Stage int

const (
	StageFresh Stage = iota
	StageLexed
	StageParsed
	StageResolved
)

var stageNames = map[Stage]string{
	StageFresh:    "fresh",
	StageLexed:    "lexed",
	StageParsed:   "parsed",
	StageResolved: "resolved",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// prerequisites maps each stage to the one a unit must be in to enter it.
var prerequisites = map[Stage]Stage{
	StageLexed:    StageFresh,
	StageParsed:   StageLexed,
	StageResolved: StageParsed,
}

type Option func(*Unit)

// WithSource gives the unit its contents instead of reading the file.
func WithSource(src []byte) Option {
	return func(u *Unit) {
		u.src = src
	}
}

// WithName sets the file name positions and errors refer to. It defaults
// to the path.
func WithName(name string) Option {
	return func(u *Unit) {
		u.name = name
	}
}

// Unit is a single compilation unit: a procedure, include or class file.
// It is not safe for concurrent use; units of one session may run
// concurrently.
type Unit struct {
	sess *session.Session
	path string
	name string
	src  []byte

	stage   Stage
	err     error
	tokens  []parser.Token
	metrics *parser.Metrics
	top     *parser.Node
	root    *scope.Scope
}

func New(sess *session.Session, path string, opts ...Option) *Unit {
	u := &Unit{sess: sess, path: path, name: path}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Unit) Name() string { return u.name }

func (u *Unit) Path() string { return u.path }

func (u *Unit) Stage() Stage { return u.stage }

// Err returns the error that stopped the unit, if any. A failed unit stays
// failed: every later operation returns this error.
func (u *Unit) Err() error { return u.err }

// Tokens returns a fresh cursor over the unit's tokens, or nil before
// lexing.
func (u *Unit) Tokens() *parser.TokenStream {
	if u.stage < StageLexed {
		return nil
	}
	return parser.NewTokenStream(u.tokens)
}

// Metrics returns the unit's size counts, or nil before the unit was lexed
// or measured.
func (u *Unit) Metrics() *parser.Metrics {
	return u.metrics
}

// TopNode returns the Program node, or nil before parsing.
func (u *Unit) TopNode() *parser.Node {
	if u.stage < StageParsed {
		return nil
	}
	return u.top
}

// RootScope returns the unit's root scope, or nil before tree parsing.
func (u *Unit) RootScope() *scope.Scope {
	if u.stage < StageResolved {
		return nil
	}
	return u.root
}

// advance moves the unit to stage to, which must directly follow the
// current one.
func (u *Unit) advance(to Stage) error {
	if from, ok := prerequisites[to]; !ok || from != u.stage {
		return fmt.Errorf("unit %s: cannot go from %s to %s", u.name, u.stage, to)
	}
	log.Debugf("%s: %s -> %s", u.name, u.stage, to)
	u.stage = to
	return nil
}

// failed records err as the unit's final outcome.
func (u *Unit) failed(err error) error {
	u.err = err
	log.Warningf("%s: %v", u.name, err)
	return err
}

// Lex scans the unit, include files expanded, and returns a cursor over
// the tokens. Metrics are collected in the same pass.
func (u *Unit) Lex() (*parser.TokenStream, error) {
	if err := u.lex(); err != nil {
		return nil, err
	}
	return u.Tokens(), nil
}

// LexAndGenerateMetrics scans the unit for its metrics only. No tokens are
// kept and the unit stays fresh: a later Lex or Parse scans it again.
func (u *Unit) LexAndGenerateMetrics() error {
	if u.err != nil {
		return u.err
	}
	if u.metrics != nil {
		return nil
	}
	if err := u.read(); err != nil {
		return u.failed(err)
	}
	metrics, err := parser.GenerateMetrics(parser.NewLexer(u.src, u.name, u.sess.LexOptions()...))
	if err != nil {
		return u.failed(err)
	}
	u.metrics = metrics
	return nil
}

func (u *Unit) lex() error {
	if u.err != nil {
		return u.err
	}
	if u.stage >= StageLexed {
		return nil
	}
	if err := u.read(); err != nil {
		return u.failed(err)
	}
	tokens, metrics, err := parser.NewLexer(u.src, u.name, u.sess.LexOptions()...).TokenizeWithMetrics()
	if err != nil {
		return u.failed(err)
	}
	u.tokens, u.metrics = tokens, metrics
	return u.advance(StageLexed)
}

// read loads the unit's source from its path unless it was given.
func (u *Unit) read() error {
	if u.src != nil {
		return nil
	}
	src, err := os.ReadFile(u.path)
	if err != nil {
		de := diag.Lex(diag.KindIO, u.name, 0, 0, "read %s", u.path)
		de.Err = err
		return de
	}
	u.src = src
	return nil
}

// Parse builds the unit's CST, lexing first if needed.
func (u *Unit) Parse() error {
	if err := u.lex(); err != nil {
		return err
	}
	if u.stage >= StageParsed {
		return nil
	}
	top, err := parser.New(u.tokens, parser.WithFile(u.name)).Parse()
	if err != nil {
		return u.failed(err)
	}
	u.top = top
	return u.advance(StageParsed)
}

// TreeParse resolves the unit against the session, parsing first if
// needed. Class units are registered in the session's class cache.
func (u *Unit) TreeParse() error {
	if err := u.Parse(); err != nil {
		return err
	}
	if u.stage >= StageResolved {
		return nil
	}
	root, err := treeparser.New(u.sess, treeparser.WithFile(u.name)).Resolve(u.top)
	if err != nil {
		return u.failed(err)
	}
	u.root = root
	return u.advance(StageResolved)
}
