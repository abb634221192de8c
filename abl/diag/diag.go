// Package diag defines the error values produced by the lexer, parser and
// tree parser. Every fatal condition of a parse unit surfaces as a single
// *Error carrying the stage that failed, the source position and a stable kind.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

type Stage int

const (
	StageLex Stage = iota + 1
	StageParse
	StageResolve
)

var stageNames = map[Stage]string{
	StageLex:     "lex",
	StageParse:   "parse",
	StageResolve: "resolve",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Kind is the machine-readable classification of an error. The string values
// are part of the tool output and must not change.
type Kind string

const (
	KindUnterminatedString     Kind = "unterminated-string"
	KindUnterminatedComment    Kind = "unterminated-comment"
	KindIncludeNotFound        Kind = "include-not-found"
	KindIncludeCycle           Kind = "include-cycle"
	KindPreprocessor           Kind = "preprocessor"
	KindIO                     Kind = "io"
	KindSyntax                 Kind = "syntax"
	KindUnresolvedIdentifier   Kind = "unresolved-identifier"
	KindAmbiguousReference     Kind = "ambiguous-reference"
	KindInvalidSchemaReference Kind = "invalid-schema-reference"
	KindDuplicateDefinition    Kind = "duplicate-definition"
	KindMalformedTree          Kind = "malformed-tree"
)

type Error struct {
	Stage    Stage
	Kind     Kind
	File     string
	Line     int
	Column   int
	Message  string
	Expected []string
	Found    string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
			if e.Column > 0 {
				fmt.Fprintf(&b, ":%d", e.Column)
			}
		}
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s/%s: %s", e.Stage, e.Kind, e.Message)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, " (expected %s", strings.Join(e.Expected, ", "))
		if e.Found != "" {
			fmt.Fprintf(&b, ", found %q", e.Found)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Lex builds a lexer/preprocessor error.
func Lex(kind Kind, file string, line, column int, format string, args ...any) *Error {
	return &Error{
		Stage:   StageLex,
		Kind:    kind,
		File:    file,
		Line:    line,
		Column:  column,
		Message: fmt.Sprintf(format, args...),
	}
}

// Syntax builds a parser error with expected-vs-found context.
func Syntax(file string, line, column int, found string, expected []string, format string, args ...any) *Error {
	return &Error{
		Stage:    StageParse,
		Kind:     KindSyntax,
		File:     file,
		Line:     line,
		Column:   column,
		Message:  fmt.Sprintf(format, args...),
		Expected: expected,
		Found:    found,
	}
}

// Resolve builds a tree parser error.
func Resolve(kind Kind, file string, line, column int, format string, args ...any) *Error {
	return &Error{
		Stage:   StageResolve,
		Kind:    kind,
		File:    file,
		Line:    line,
		Column:  column,
		Message: fmt.Sprintf(format, args...),
	}
}

// As returns the *Error wrapped in err, if any.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf returns the kind of the *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	if de, ok := As(err); ok {
		return de.Kind
	}
	return ""
}

func IsLexError(err error) bool {
	de, ok := As(err)
	return ok && de.Stage == StageLex
}

func IsSyntaxError(err error) bool {
	de, ok := As(err)
	return ok && de.Stage == StageParse && de.Kind == KindSyntax
}

// IsResolutionError reports resolve-stage failures other than duplicate
// class definitions, which have their own predicate.
func IsResolutionError(err error) bool {
	de, ok := As(err)
	return ok && de.Stage == StageResolve && de.Kind != KindDuplicateDefinition
}

func IsDuplicateDefinition(err error) bool {
	de, ok := As(err)
	return ok && de.Kind == KindDuplicateDefinition
}
