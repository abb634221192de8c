package parser

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhamidi/proparse/abl/diag"
)

// IncludeResolver locates include files. from is the path of the file
// containing the reference. Implementations return an error wrapping
// fs.ErrNotExist when the file cannot be found.
type IncludeResolver interface {
	ResolveInclude(name, from string) (path string, src []byte, err error)
}

// MapResolver resolves includes from memory, keyed by the name used in the
// reference. It is meant for tests and editor buffers.
type MapResolver map[string]string

func (m MapResolver) ResolveInclude(name, from string) (string, []byte, error) {
	if src, ok := m[name]; ok {
		return name, []byte(src), nil
	}
	return "", nil, fs.ErrNotExist
}

type directiveKind int

const (
	dirNone directiveKind = iota
	dirGlobalDefine
	dirScopedDefine
	dirUndefine
	dirIf
	dirThen
	dirElseIf
	dirElse
	dirEndIf
	dirIgnored
)

type condState struct {
	// taken is set once one branch of the &IF has been compiled.
	taken bool
}

// directiveFor maps the word after '&' to a directive. Define directives
// accept the usual abbreviations (&GLOB, &SCOP, &UNDEF).
func directiveFor(word string) directiveKind {
	switch word {
	case "IF":
		return dirIf
	case "THEN":
		return dirThen
	case "ELSEIF":
		return dirElseIf
	case "ELSE":
		return dirElse
	case "ENDIF":
		return dirEndIf
	case "ANALYZE-SUSPEND", "ANALYZE-RESUME", "MESSAGE":
		return dirIgnored
	}
	switch {
	case len(word) >= 4 && strings.HasPrefix("GLOBAL-DEFINE", word):
		return dirGlobalDefine
	case len(word) >= 4 && strings.HasPrefix("SCOPED-DEFINE", word):
		return dirScopedDefine
	case len(word) >= 5 && strings.HasPrefix("UNDEFINE", word):
		return dirUndefine
	}
	return dirNone
}

// scanDirective scans a preprocessor directive starting at '&'. It reports
// false, consuming nothing, when the word is not a directive.
func (l *Lexer) scanDirective(start Position) (Token, bool) {
	n := 1
	for c := l.peekN(n); isLetter(c) || c == '-'; c = l.peekN(n) {
		n++
	}
	f := l.frame()
	var word strings.Builder
	for i := 1; i < n; i++ {
		word.WriteByte(upper(l.peekN(i)))
	}
	kind := directiveFor(word.String())
	if kind == dirNone {
		return Token{}, false
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(l.advance())
	}
	l.directive = kind

	switch kind {
	case dirGlobalDefine, dirScopedDefine, dirUndefine, dirIgnored:
		b.WriteString(l.restOfDirectiveLine())
		if !l.skipping {
			l.applyDefine(f, kind, b.String(), start)
		}
	case dirIf:
		if !l.skipping {
			text, ok := l.compileIf(f, start)
			b.WriteString(text)
			if !ok {
				return l.token(TokenEOF, start, ""), true
			}
		}
	case dirElseIf, dirElse:
		if !l.skipping {
			// The active branch ended: skip everything up to &ENDIF.
			if len(l.conds) == 0 {
				return l.fail(diag.Lex(diag.KindPreprocessor, start.File, start.Line, start.Column,
					"&%s without &IF", word.String())), true
			}
			l.skipBranch(start)
		}
	case dirEndIf:
		if !l.skipping {
			if len(l.conds) == 0 {
				return l.fail(diag.Lex(diag.KindPreprocessor, start.File, start.Line, start.Column,
					"&ENDIF without &IF")), true
			}
			l.conds = l.conds[:len(l.conds)-1]
		}
	}
	return l.token(TokenPreprocessor, start, b.String()), true
}

// restOfDirectiveLine consumes up to the end of the line. A tilde before the
// newline continues the directive on the next line.
func (l *Lexer) restOfDirectiveLine() string {
	var b strings.Builder
	for !l.atEOF() {
		ch := l.peek()
		if ch == '\n' {
			break
		}
		if ch == '~' && (l.peekN(1) == '\n' || (l.peekN(1) == '\r' && l.peekN(2) == '\n')) {
			l.advance()
			for l.peek() != '\n' {
				l.advance()
			}
			l.advance()
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(l.advance())
	}
	return strings.TrimRight(b.String(), "\r")
}

func (l *Lexer) applyDefine(f *frame, kind directiveKind, text string, start Position) {
	fields := strings.Fields(text)
	if kind == dirIgnored {
		return
	}
	if len(fields) < 2 {
		l.fail(diag.Lex(diag.KindPreprocessor, start.File, start.Line, start.Column,
			"%s requires a name", fields[0]))
		return
	}
	name := strings.ToUpper(fields[1])
	switch kind {
	case dirUndefine:
		if _, ok := f.scoped[name]; ok {
			delete(f.scoped, name)
			return
		}
		delete(l.globals, name)
	case dirGlobalDefine, dirScopedDefine:
		// The value is everything after the name, verbatim.
		rest := strings.TrimLeft(text, " \t")
		rest = strings.TrimLeft(rest[len(fields[0]):], " \t")
		value := strings.TrimSpace(rest[len(fields[1]):])
		if kind == dirGlobalDefine {
			l.globals[name] = value
		} else {
			f.scoped[name] = value
		}
	}
}

// compileIf reads the condition up to &THEN, evaluates it and skips the
// branch if it is false. It returns the condition text.
func (l *Lexer) compileIf(f *frame, start Position) (string, bool) {
	text, cond, ok := l.readCondition(f, start)
	if !ok {
		return text, false
	}
	state := &condState{taken: cond}
	l.conds = append(l.conds, state)
	if !cond {
		l.skipBranch(start)
	}
	return text, l.err == nil
}

// readCondition collects the tokens of an &IF or &ELSEIF condition, with
// references expanded, and evaluates them.
func (l *Lexer) readCondition(f *frame, start Position) (string, bool, bool) {
	skipping := l.skipping
	l.skipping = false
	defer func() { l.skipping = skipping }()

	var b strings.Builder
	var tokens []Token
	for {
		tok, produced := l.next()
		if !produced {
			continue
		}
		if l.err != nil {
			return b.String(), false, false
		}
		if tok.Kind == TokenEOF {
			l.fail(diag.Lex(diag.KindPreprocessor, start.File, start.Line, start.Column,
				"&IF without &THEN"))
			return b.String(), false, false
		}
		b.WriteString(tok.Literal)
		if tok.Kind == TokenPreprocessor && l.directive == dirThen {
			break
		}
		if !tok.Hidden() {
			tokens = append(tokens, tok)
		}
	}
	ev := &condEvaluator{lexer: l, frame: f, tokens: tokens}
	v, err := ev.evaluate()
	if err != nil {
		l.fail(diag.Lex(diag.KindPreprocessor, start.File, start.Line, start.Column,
			"invalid &IF condition: %v", err))
		return b.String(), false, false
	}
	return b.String(), v.truthy(), true
}

// skipBranch discards input until the branch of the innermost &IF that
// should be compiled next, or its &ENDIF.
func (l *Lexer) skipBranch(start Position) {
	l.skipping = true
	defer func() { l.skipping = false }()

	state := l.conds[len(l.conds)-1]
	f := l.frame()
	depth := 0
	for {
		tok, produced := l.next()
		if !produced {
			continue
		}
		if l.err != nil {
			return
		}
		if tok.Kind == TokenEOF {
			l.fail(diag.Lex(diag.KindPreprocessor, start.File, start.Line, start.Column,
				"&IF without matching &ENDIF"))
			return
		}
		if tok.Kind != TokenPreprocessor {
			continue
		}
		switch l.directive {
		case dirIf:
			depth++
		case dirEndIf:
			if depth == 0 {
				l.conds = l.conds[:len(l.conds)-1]
				return
			}
			depth--
		case dirElseIf:
			if depth == 0 && !state.taken {
				_, cond, ok := l.readCondition(f, start)
				if !ok {
					return
				}
				if cond {
					state.taken = true
					return
				}
			}
		case dirElse:
			if depth == 0 && !state.taken {
				state.taken = true
				return
			}
		}
	}
}

// scanBraces consumes a {...} reference and returns the text between the
// braces. Nested references inside it are expanded textually.
func (l *Lexer) scanBraces(start Position) (string, bool) {
	var b strings.Builder
	l.advance()
	depth := 1
	for {
		if l.atEOF() {
			l.fail(diag.Lex(diag.KindPreprocessor, start.File, start.Line, start.Column,
				"unterminated preprocessor reference"))
			return "", false
		}
		ch := l.advance()
		switch ch {
		case '~':
			b.WriteByte(ch)
			b.WriteByte(l.advance())
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b.String(), true
			}
		}
		b.WriteByte(ch)
	}
}

func (l *Lexer) scanSkippedReference(start Position) Token {
	l.directive = dirNone
	text, ok := l.scanBraces(start)
	if !ok {
		return l.token(TokenEOF, start, "")
	}
	return l.token(TokenPreprocessor, start, "{"+text+"}")
}

// expandReference handles a {...} reference at the current position: an
// include file, an include argument or a preprocessor name. The replacement
// is pushed as a new source and scanned like ordinary input.
func (l *Lexer) expandReference(start Position) bool {
	// The frame is taken before scanning: the closing brace may be the last
	// character of an include, which then gets popped.
	f := l.frame()
	text, ok := l.scanBraces(start)
	if !ok {
		return false
	}
	if strings.ContainsRune(text, '{') {
		text, ok = l.expandInline(f, text, start, 0)
		if !ok {
			return false
		}
	}
	ref := strings.TrimSpace(text)
	switch {
	case ref == "":
		return true
	case ref == "*":
		return l.pushMacro(f, strings.Join(f.args, " "), start)
	case isAllDigits(ref):
		return l.pushMacro(f, f.argument(ref), start)
	case ref[0] == '&':
		return l.pushMacro(f, l.lookupName(f, ref[1:], start), start)
	}
	return l.include(f, ref, start)
}

// expandInline expands references nested in the text of another reference.
func (l *Lexer) expandInline(f *frame, text string, start Position, depth int) (string, bool) {
	if depth > maxSourceDepth {
		l.fail(diag.Lex(diag.KindPreprocessor, start.File, start.Line, start.Column,
			"preprocessor expansion nested deeper than %d levels", maxSourceDepth))
		return "", false
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			b.WriteByte(text[i])
			continue
		}
		end := strings.IndexByte(text[i:], '}')
		if end < 0 {
			b.WriteString(text[i:])
			break
		}
		ref := strings.TrimSpace(text[i+1 : i+end])
		var value string
		switch {
		case ref == "*":
			value = strings.Join(f.args, " ")
		case isAllDigits(ref):
			value = f.argument(ref)
		case strings.HasPrefix(ref, "&"):
			value = l.lookupName(f, ref[1:], start)
		default:
			value = "{" + ref + "}"
		}
		if strings.ContainsRune(value, '{') && value[0] != '{' {
			var ok bool
			if value, ok = l.expandInline(f, value, start, depth+1); !ok {
				return "", false
			}
		}
		b.WriteString(value)
		i += end
	}
	return b.String(), true
}

func (l *Lexer) pushMacro(f *frame, value string, start Position) bool {
	if value == "" {
		return true
	}
	return l.push(&source{
		input:  []byte(value),
		file:   start.File,
		macro:  true,
		origin: start,
		frame:  f,
	})
}

// argument returns include argument {n}; {0} is the file name.
func (f *frame) argument(ref string) string {
	n, _ := strconv.Atoi(ref)
	if n == 0 {
		return f.file
	}
	if n > len(f.args) {
		return ""
	}
	return f.args[n-1]
}

// lookupName resolves a preprocessor name: named include arguments first,
// then scoped defines of this and enclosing files, then global defines, then
// the built-in names.
func (l *Lexer) lookupName(f *frame, name string, at Position) string {
	key := strings.ToUpper(strings.TrimSpace(name))
	for fr := f; fr != nil; fr = fr.parent {
		if v, ok := fr.named[key]; ok {
			return v
		}
		if v, ok := fr.scoped[key]; ok {
			return v
		}
	}
	if v, ok := l.globals[key]; ok {
		return v
	}
	switch key {
	case "FILE-NAME":
		return f.file
	case "LINE-NUMBER":
		return strconv.Itoa(at.Line)
	case "SEQUENCE":
		v := l.sequence
		l.sequence++
		return strconv.Itoa(v)
	case "OPSYS":
		return "UNIX"
	case "WINDOW-SYSTEM":
		return "TTY"
	case "BATCH-MODE":
		return "yes"
	}
	return ""
}

// definedLevel implements DEFINED(): 1 for a global define, 2 for a scoped
// define, 3 for a named include argument, 0 otherwise.
func (l *Lexer) definedLevel(f *frame, name string) int {
	key := strings.ToUpper(name)
	for fr := f; fr != nil; fr = fr.parent {
		if _, ok := fr.named[key]; ok {
			return 3
		}
		if _, ok := fr.scoped[key]; ok {
			return 2
		}
	}
	if _, ok := l.globals[key]; ok {
		return 1
	}
	return 0
}

// include expands an include file reference: {name.i arg1 "arg 2" &n=v}.
func (l *Lexer) include(parent *frame, ref string, start Position) bool {
	words := splitReference(ref)
	name := unquote(words[0])
	f := &frame{
		parent: parent,
		named:  make(map[string]string),
		scoped: make(map[string]string),
	}
	for _, arg := range words[1:] {
		if strings.HasPrefix(arg, "&") {
			if eq := strings.IndexByte(arg, '='); eq > 0 {
				f.named[strings.ToUpper(arg[1:eq])] = unquote(arg[eq+1:])
				continue
			}
		}
		f.args = append(f.args, unquote(arg))
	}

	if l.resolver == nil {
		l.fail(diag.Lex(diag.KindIncludeNotFound, start.File, start.Line, start.Column,
			"include file %q not found", name))
		return false
	}
	path, src, err := l.resolver.ResolveInclude(name, start.File)
	if err != nil {
		kind := diag.KindIO
		if errors.Is(err, fs.ErrNotExist) {
			kind = diag.KindIncludeNotFound
		}
		de := diag.Lex(kind, start.File, start.Line, start.Column, "include file %q not found", name)
		de.Err = err
		l.fail(de)
		return false
	}

	if chain, cyclic := parent.includeChain(path); cyclic {
		l.fail(diag.Lex(diag.KindIncludeCycle, start.File, start.Line, start.Column,
			"include cycle: %s", strings.Join(chain, " -> ")))
		return false
	}

	f.file = path
	l.files[path] = countLines(src)
	l.includes++
	return l.push(&source{
		input:  src,
		file:   path,
		line:   1,
		column: 1,
		frame:  f,
	})
}

// includeChain returns the chain of active files ending in path, and
// whether path is already being included.
func (f *frame) includeChain(path string) ([]string, bool) {
	clean := filepath.Clean(path)
	var chain []string
	found := false
	for fr := f; fr != nil; fr = fr.parent {
		chain = append([]string{fr.file}, chain...)
		if filepath.Clean(fr.file) == clean {
			found = true
		}
	}
	return append(chain, path), found
}

// splitReference splits the text of an include reference into words,
// keeping quoted arguments together.
func splitReference(ref string) []string {
	var words []string
	var b strings.Builder
	var quote byte
	for i := 0; i < len(ref); i++ {
		ch := ref[i]
		switch {
		case quote != 0:
			b.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
			b.WriteByte(ch)
		case isSpace(ch):
			if b.Len() > 0 {
				words = append(words, b.String())
				b.Reset()
			}
		default:
			b.WriteByte(ch)
		}
	}
	if b.Len() > 0 {
		words = append(words, b.String())
	}
	return words
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}

func upper(ch byte) byte {
	if ch >= 'a' && ch <= 'z' {
		return ch - 'a' + 'A'
	}
	return ch
}
