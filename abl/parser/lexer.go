package parser

import (
	"strings"

	"github.com/dhamidi/proparse/abl/diag"
)

// maxSourceDepth bounds the number of nested include files and macro
// expansions. Self-referential defines hit this limit instead of recursing.
const maxSourceDepth = 128

// source is one entry of the lexer's input stack: the main file, an included
// file, or the replacement text of a preprocessor reference.
type source struct {
	input  []byte
	pos    int
	file   string
	line   int
	column int
	// macro sources report the position of the reference they expand.
	macro  bool
	origin Position
	frame  *frame
}

func (s *source) done() bool {
	return s.pos >= len(s.input)
}

// frame holds the per-file preprocessor state of the main file or an
// include: its arguments and its scoped defines.
type frame struct {
	file   string
	parent *frame
	args   []string
	named  map[string]string
	scoped map[string]string
}

type LexOption func(*Lexer)

// WithIncludeResolver sets the resolver used to locate include files.
// Without one every include reference fails with include-not-found.
func WithIncludeResolver(r IncludeResolver) LexOption {
	return func(l *Lexer) {
		l.resolver = r
	}
}

// WithGlobalDefines predefines &GLOBAL-DEFINE names.
func WithGlobalDefines(defines map[string]string) LexOption {
	return func(l *Lexer) {
		for name, value := range defines {
			l.globals[strings.ToUpper(name)] = value
		}
	}
}

// Lexer turns ABL source into tokens. Include references, preprocessor
// names and conditional compilation are handled while scanning, so tokens
// see the expanded text and keep the position of the file they came from.
type Lexer struct {
	sources  []*source
	resolver IncludeResolver
	globals  map[string]string
	conds    []*condState
	err      *diag.Error
	skipping bool
	// directive is the kind of the last directive scanned.
	directive directiveKind
	sequence  int
	files     map[string]int
	includes  int
}

func NewLexer(input []byte, file string, opts ...LexOption) *Lexer {
	main := &frame{file: file, scoped: make(map[string]string)}
	l := &Lexer{
		sources: []*source{{
			input:  input,
			file:   file,
			line:   1,
			column: 1,
			frame:  main,
		}},
		globals: make(map[string]string),
		files:   map[string]int{file: countLines(input)},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Err returns the first fatal lexing error, if any.
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// Files returns the number of distinct files read, the main file included.
func (l *Lexer) Files() int {
	return len(l.files)
}

// Lines returns the total number of source lines of all files read.
func (l *Lexer) Lines() int {
	total := 0
	for _, n := range l.files {
		total += n
	}
	return total
}

func countLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := 1
	for i, ch := range src {
		if ch == '\n' && i < len(src)-1 {
			n++
		}
	}
	return n
}

// Includes returns the number of include references expanded.
func (l *Lexer) Includes() int {
	return l.includes
}

// Tokenize scans the whole input. The returned slice does not contain the
// trailing EOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.NextToken()
		if l.err != nil {
			return nil, l.err
		}
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) fail(err *diag.Error) Token {
	if l.err == nil {
		l.err = err
	}
	pos := l.Position()
	return Token{Kind: TokenEOF, Span: Span{Start: pos, End: pos}}
}

// current returns the innermost source with input left, dropping exhausted
// sources above the main file.
func (l *Lexer) current() *source {
	for len(l.sources) > 1 && l.sources[len(l.sources)-1].done() {
		l.sources = l.sources[:len(l.sources)-1]
	}
	return l.sources[len(l.sources)-1]
}

func (l *Lexer) frame() *frame {
	return l.current().frame
}

// Position is the position of the next character to be scanned.
func (l *Lexer) Position() Position {
	return l.current().position()
}

// end is the position just after the last character scanned. Unlike Position
// it does not step out of an exhausted include.
func (l *Lexer) end() Position {
	return l.sources[len(l.sources)-1].position()
}

func (s *source) position() Position {
	if s.macro {
		return s.origin
	}
	return Position{
		File:   s.file,
		Offset: s.pos,
		Line:   s.line,
		Column: s.column,
	}
}

func (l *Lexer) peek() byte {
	return l.peekN(0)
}

// peekN looks ahead across source boundaries without expanding anything.
func (l *Lexer) peekN(n int) byte {
	for i := len(l.sources) - 1; i >= 0; i-- {
		s := l.sources[i]
		rem := len(s.input) - s.pos
		if n < rem {
			return s.input[s.pos+n]
		}
		n -= rem
	}
	return 0
}

func (l *Lexer) advance() byte {
	s := l.current()
	if s.done() {
		return 0
	}
	ch := s.input[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return ch
}

func (l *Lexer) atEOF() bool {
	return l.current().done()
}

func (l *Lexer) push(s *source) bool {
	if len(l.sources) >= maxSourceDepth {
		l.fail(diag.Lex(diag.KindPreprocessor, s.origin.File, s.origin.Line, s.origin.Column,
			"preprocessor expansion nested deeper than %d levels", maxSourceDepth))
		return false
	}
	l.sources = append(l.sources, s)
	return true
}

// NextToken returns the next token, hidden ones included. After a fatal
// error it returns EOF and Err reports the error.
func (l *Lexer) NextToken() Token {
	for {
		if l.err != nil {
			pos := l.Position()
			return Token{Kind: TokenEOF, Span: Span{Start: pos, End: pos}}
		}
		tok, ok := l.next()
		if !ok {
			continue
		}
		return tok
	}
}

// next scans one token. It reports false when the input consumed produced
// no token, e.g. an expanded reference.
func (l *Lexer) next() (Token, bool) {
	start := l.Position()

	if l.atEOF() {
		if len(l.conds) > 0 && !l.skipping {
			return l.fail(diag.Lex(diag.KindPreprocessor, start.File, start.Line, start.Column,
				"&IF without matching &ENDIF")), true
		}
		return Token{Kind: TokenEOF, Span: Span{Start: start, End: start}}, true
	}

	ch := l.peek()

	switch {
	case isSpace(ch):
		return l.scanWhitespace(start), true
	case ch == '/' && l.peekN(1) == '*':
		return l.scanBlockComment(start), true
	case ch == '/' && l.peekN(1) == '/':
		return l.scanLineComment(start), true
	case ch == '"' || ch == '\'':
		return l.scanString(start), true
	case ch == '{':
		if l.skipping {
			return l.scanSkippedReference(start), true
		}
		l.expandReference(start)
		return Token{}, false
	case ch == '&' && isLetter(l.peekN(1)):
		if tok, ok := l.scanDirective(start); ok {
			return tok, true
		}
		return l.scanIdentOrKeyword(start), true
	case isIdentStart(ch):
		return l.scanIdentOrKeyword(start), true
	case isDigit(ch), ch == '.' && isDigit(l.peekN(1)):
		return l.scanNumber(start), true
	case ch == '~' && (l.peekN(1) == '\n' || l.peekN(1) == '\r'):
		// Line continuation outside strings.
		l.advance()
		tok := l.scanWhitespace(start)
		tok.Literal = "~" + tok.Literal
		return tok, true
	}

	return l.scanOperator(start), true
}

func (l *Lexer) token(kind TokenKind, start Position, literal string) Token {
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: l.end()},
		Literal: literal,
	}
}

func (l *Lexer) scanWhitespace(start Position) Token {
	var b strings.Builder
	for isSpace(l.peek()) {
		b.WriteByte(l.advance())
	}
	return l.token(TokenWhitespace, start, b.String())
}

// scanBlockComment scans a nestable /* */ comment. A tilde escapes the next
// character, so an escaped terminator does not end the comment.
func (l *Lexer) scanBlockComment(start Position) Token {
	var b strings.Builder
	b.WriteByte(l.advance())
	b.WriteByte(l.advance())
	depth := 1
	for depth > 0 {
		if l.atEOF() {
			return l.fail(diag.Lex(diag.KindUnterminatedComment, start.File, start.Line, start.Column,
				"unterminated comment"))
		}
		ch := l.peek()
		switch {
		case ch == '~':
			b.WriteByte(l.advance())
			if !l.atEOF() {
				b.WriteByte(l.advance())
			}
		case ch == '/' && l.peekN(1) == '*':
			b.WriteByte(l.advance())
			b.WriteByte(l.advance())
			depth++
		case ch == '*' && l.peekN(1) == '/':
			b.WriteByte(l.advance())
			b.WriteByte(l.advance())
			depth--
		default:
			b.WriteByte(l.advance())
		}
	}
	return l.token(TokenComment, start, b.String())
}

func (l *Lexer) scanLineComment(start Position) Token {
	var b strings.Builder
	for !l.atEOF() {
		ch := l.peek()
		if ch == '\n' || ch == '\r' {
			break
		}
		if ch == '~' {
			b.WriteByte(l.advance())
			if next := l.peek(); next != '\n' && next != '\r' && !l.atEOF() {
				b.WriteByte(l.advance())
			}
			continue
		}
		b.WriteByte(l.advance())
	}
	return l.token(TokenComment, start, b.String())
}

// scanString scans a quoted string. The literal keeps the quotes, escapes
// and any attribute suffix such as :U or :L30.
func (l *Lexer) scanString(start Position) Token {
	var b strings.Builder
	quote := l.advance()
	b.WriteByte(quote)
	for {
		if l.atEOF() {
			return l.fail(diag.Lex(diag.KindUnterminatedString, start.File, start.Line, start.Column,
				"unterminated string"))
		}
		// References are expanded inside strings, not inside comments.
		if l.peek() == '{' && !l.skipping {
			if !l.expandReference(l.Position()) {
				return l.token(TokenEOF, start, "")
			}
			continue
		}
		ch := l.advance()
		b.WriteByte(ch)
		if ch == '~' {
			if !l.atEOF() {
				b.WriteByte(l.advance())
			}
			continue
		}
		if ch == quote {
			if l.peek() == quote {
				b.WriteByte(l.advance())
				continue
			}
			break
		}
	}
	if l.peek() == ':' && isStringAttribute(l.peekN(1)) {
		n := 2
		for isDigit(l.peekN(n)) {
			n++
		}
		if !isIdentPart(l.peekN(n)) {
			for i := 0; i < n; i++ {
				b.WriteByte(l.advance())
			}
		}
	}
	return l.token(TokenString, start, b.String())
}

func isStringAttribute(ch byte) bool {
	switch ch {
	case 'U', 'u', 'L', 'l', 'R', 'r', 'C', 'c', 'T', 't':
		return true
	}
	return false
}

// scanIdentOrKeyword scans a name. Names may contain dots (db.table.field,
// Progress.Lang.Object) and a reference glued to a name continues it.
func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	var b strings.Builder
	b.WriteByte(l.advance())
	for {
		ch := l.peek()
		switch {
		case isIdentPart(ch):
			b.WriteByte(l.advance())
			continue
		case ch == '{' && !l.skipping:
			if !l.expandReference(l.Position()) {
				return l.token(TokenEOF, start, "")
			}
			continue
		case ch == '.' && isIdentStart(l.peekN(1)):
			b.WriteByte(l.advance())
			continue
		case ch == '.' && l.peekN(1) == '*':
			b.WriteByte(l.advance())
			b.WriteByte(l.advance())
		}
		break
	}
	literal := b.String()
	return l.token(LookupKeyword(literal), start, literal)
}

func (l *Lexer) scanNumber(start Position) Token {
	var b strings.Builder
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') && isHexDigit(l.peekN(2)) {
		b.WriteByte(l.advance())
		b.WriteByte(l.advance())
		for isHexDigit(l.peek()) {
			b.WriteByte(l.advance())
		}
		return l.token(TokenNumber, start, b.String())
	}
	for isDigit(l.peek()) {
		b.WriteByte(l.advance())
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		b.WriteByte(l.advance())
		for isDigit(l.peek()) {
			b.WriteByte(l.advance())
		}
	}
	return l.token(TokenNumber, start, b.String())
}

func (l *Lexer) scanOperator(start Position) Token {
	ch := l.advance()
	switch ch {
	case '.':
		return l.token(TokenPeriod, start, ".")
	case ',':
		return l.token(TokenComma, start, ",")
	case ':':
		if l.peek() == ':' {
			l.advance()
			return l.token(TokenDoubleColon, start, "::")
		}
		if isIdentStart(l.peek()) {
			return l.token(TokenObjColon, start, ":")
		}
		return l.token(TokenLexColon, start, ":")
	case '(':
		return l.token(TokenLParen, start, "(")
	case ')':
		return l.token(TokenRParen, start, ")")
	case '[':
		return l.token(TokenLBracket, start, "[")
	case ']':
		return l.token(TokenRBracket, start, "]")
	case '+':
		return l.token(TokenPlus, start, "+")
	case '-':
		return l.token(TokenMinus, start, "-")
	case '*':
		return l.token(TokenStar, start, "*")
	case '/':
		return l.token(TokenSlash, start, "/")
	case '=':
		return l.token(TokenEquals, start, "=")
	case '?':
		return l.token(TokenUnknownValue, start, "?")
	case '@':
		return l.token(TokenAt, start, "@")
	case '<':
		switch l.peek() {
		case '>':
			l.advance()
			return l.token(TokenNotEquals, start, "<>")
		case '=':
			l.advance()
			return l.token(TokenLE, start, "<=")
		}
		return l.token(TokenLT, start, "<")
	case '>':
		if l.peek() == '=' {
			l.advance()
			return l.token(TokenGE, start, ">=")
		}
		return l.token(TokenGT, start, ">")
	}
	return l.token(TokenError, start, string(ch))
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	switch ch {
	case '-', '_', '#', '$', '%', '&':
		return true
	}
	return isLetter(ch) || isDigit(ch) || ch >= 0x80
}
