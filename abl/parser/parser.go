package parser

import (
	"github.com/dhamidi/proparse/abl/diag"
)

type Option func(*Parser)

// WithFile names the unit for errors raised before any token is read.
func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

type parseFunc func(*Parser) *Node

// Parser builds a CST from a token stream. It stops at the first syntax
// error: Parse then returns no tree and a *diag.Error.
type Parser struct {
	file   string
	tokens []Token
	pos    int
	entry  parseFunc
	err    *diag.Error
}

// New creates a parser for a whole compilation unit. Hidden tokens are
// dropped; their positions stay available from the lexer's stream.
func New(tokens []Token, opts ...Option) *Parser {
	p := &Parser{entry: (*Parser).parseProgram}
	for _, tok := range tokens {
		if tok.Hidden() || tok.Kind == TokenEOF {
			continue
		}
		p.tokens = append(p.tokens, tok)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewExpressionParser creates a parser for a single expression.
func NewExpressionParser(tokens []Token, opts ...Option) *Parser {
	p := New(tokens, opts...)
	p.entry = (*Parser).parseStandaloneExpression
	return p
}

// Parse runs the parser. On failure the returned error is a *diag.Error of
// kind syntax and the node is nil.
func (p *Parser) Parse() (*Node, error) {
	node := p.entry(p)
	if p.err != nil {
		return nil, p.err
	}
	return node, nil
}

// ParseSource lexes and parses src in one step.
func ParseSource(src []byte, file string, opts ...LexOption) (*Node, error) {
	tokens, err := NewLexer(src, file, opts...).Tokenize()
	if err != nil {
		return nil, err
	}
	return New(tokens, WithFile(file)).Parse()
}

func (p *Parser) peek() Token {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		var end Position
		if len(p.tokens) > 0 {
			end = p.tokens[len(p.tokens)-1].Span.End
		} else {
			end = Position{File: p.file, Line: 1, Column: 1}
		}
		return Token{Kind: TokenEOF, Span: Span{Start: end, End: end}}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

// accept consumes the next token if it has the given kind.
func (p *Parser) accept(kind TokenKind) *Token {
	if p.check(kind) {
		tok := p.advance()
		return &tok
	}
	return nil
}

func (p *Parser) expect(kind TokenKind, context string) *Token {
	if tok := p.accept(kind); tok != nil {
		return tok
	}
	p.errorNode("expected "+kind.String()+" "+context, kind)
	return nil
}

// checkWord reports whether the next token is the given word, keyword or
// not. Many option words of the language are not keywords here.
func (p *Parser) checkWord(word string) bool {
	tok := p.peek()
	return (tok.Kind == TokenIdent || tok.Kind.IsKeyword()) && tok.Upper() == word
}

func (p *Parser) failed() bool {
	return p.err != nil
}

// mustProgress returns a function that checks if the parser has advanced.
// Call it at the start of a loop iteration, then call the returned function
// at the end to break if no progress was made.
func (p *Parser) mustProgress() func() bool {
	saved := p.pos
	return func() bool {
		if p.failed() {
			return false
		}
		if p.pos == saved {
			p.errorNode("unexpected " + describe(p.peek()))
			return false
		}
		return true
	}
}

func isIdentifierLike(tok Token) bool {
	return tok.Kind == TokenIdent || (tok.Kind.IsKeyword() && !IsReserved(tok.Kind))
}

func (p *Parser) isIdentifierLike() bool {
	return isIdentifierLike(p.peek())
}

// isName reports whether tok can name a member or an option: any
// identifier or keyword.
func isName(tok Token) bool {
	return tok.Kind == TokenIdent || tok.Kind.IsKeyword()
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{
		Kind: kind,
		Span: Span{Start: p.peek().Span.Start},
	}
}

func (p *Parser) finishNode(n *Node) *Node {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		n.Span.End = p.tokens[p.pos-1].Span.End
	} else if len(p.tokens) > 0 {
		n.Span.End = p.tokens[len(p.tokens)-1].Span.End
	}
	return n
}

// leaf consumes the next token into a node of the given kind.
func (p *Parser) leaf(kind NodeKind) *Node {
	tok := p.advance()
	return &Node{Kind: kind, Token: &tok, Span: tok.Span}
}

func describe(tok Token) string {
	if tok.Kind == TokenEOF {
		return "end of file"
	}
	return "\"" + tok.Literal + "\""
}

// errorNode records the first syntax error and stops the parse by moving to
// the end of the input, which terminates every loop.
func (p *Parser) errorNode(msg string, expected ...TokenKind) *Node {
	tok := p.peek()
	if p.err == nil {
		found := tok.Literal
		if tok.Kind == TokenEOF {
			found = "EOF"
		}
		var names []string
		for _, kind := range expected {
			names = append(names, kind.String())
		}
		file := tok.Span.Start.File
		if file == "" {
			file = p.file
		}
		p.err = diag.Syntax(file, tok.Span.Start.Line, tok.Span.Start.Column, found, names, "%s", msg)
	}
	p.pos = len(p.tokens)
	return &Node{Kind: KindError, Span: tok.Span}
}

func (p *Parser) parseProgram() *Node {
	node := p.startNode(KindProgram)
	for !p.check(TokenEOF) && !p.failed() {
		done := p.mustProgress()
		node.AddChild(p.parseStatement())
		if !done() {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseStandaloneExpression() *Node {
	expr := p.parseExpression()
	if !p.check(TokenEOF) && !p.failed() {
		return p.errorNode("unexpected "+describe(p.peek())+" after expression", TokenEOF)
	}
	return expr
}

// parseStatement dispatches on the first token of a statement.
func (p *Parser) parseStatement() *Node {
	tok := p.peek()

	if tok.Kind == TokenPeriod {
		return p.leaf(KindEmptyStmt)
	}

	// Block label: name: DO/REPEAT/FOR ...
	if isIdentifierLike(tok) && p.peekN(1).Kind == TokenLexColon && isBlockStart(p.peekN(2).Kind) {
		label := p.leaf(KindBlockLabel)
		p.advance()
		block := p.parseStatement()
		if block.Kind != KindError {
			block.Children = append([]*Node{label}, block.Children...)
			label.parent = block
			block.Span.Start = label.Span.Start
		}
		return block
	}

	// A keyword directly followed by '=', ':' or '[' is a name, not a
	// statement: display = 1.
	if tok.Kind.IsKeyword() && keywordUsedAsName(tok.Kind, p.peekN(1).Kind) {
		return p.parseExprOrAssignStatement()
	}

	switch tok.Kind {
	case TokenDefine:
		return p.parseDefine()
	case TokenDo:
		return p.parseDo()
	case TokenRepeat:
		return p.parseRepeat()
	case TokenFor:
		return p.parseFor()
	case TokenIf:
		return p.parseIf()
	case TokenCase:
		return p.parseCase()
	case TokenProcedure:
		return p.parseProcedure()
	case TokenFunction:
		return p.parseFunction()
	case TokenOn:
		return p.parseTrigger()
	case TokenUsing:
		return p.parseUsing()
	case TokenClass:
		return p.parseClass()
	case TokenInterface:
		return p.parseInterface()
	case TokenMethod:
		return p.parseMethod()
	case TokenConstructor:
		return p.parseConstructor()
	case TokenDestructor:
		return p.parseDestructor()
	case TokenCatch:
		return p.parseCatch()
	case TokenFinally:
		return p.parseFinally()
	case TokenAssign:
		return p.parseAssign()
	case TokenCreate:
		return p.parseCreate()
	case TokenDelete:
		return p.parseDelete()
	case TokenFind:
		return p.parseFind()
	case TokenRelease:
		return p.parseRelease()
	case TokenDisplay:
		return p.parseDisplay()
	case TokenMessage:
		return p.parseMessage()
	case TokenPut:
		return p.parsePut()
	case TokenRun:
		return p.parseRun()
	case TokenReturn:
		return p.parseReturn()
	case TokenLeave:
		return p.parseLeaveOrNext(KindLeaveStmt)
	case TokenNext:
		return p.parseLeaveOrNext(KindNextStmt)
	case TokenUndo:
		return p.parseUndo()
	case TokenEmpty:
		if p.peekN(1).Kind == TokenTempTable {
			return p.parseEmptyTempTable()
		}
	case TokenCopyLob:
		return p.parseClauseStatement(KindCopyLobStmt, copyLobWords)
	case TokenBufferCopy:
		return p.parseBufferCopy()
	case TokenOpen:
		return p.parseOpenQuery()
	case TokenGet:
		if isQueryNavigation(p.peekN(1)) {
			return p.parseGet()
		}
	case TokenClose:
		return p.parseClose()
	case TokenInput, TokenOutput, TokenInputOutput:
		return p.parseClauseStatement(KindStreamIOStmt, streamIOWords)
	case TokenPublish:
		return p.parseClauseStatement(KindPublishStmt, publishWords)
	case TokenSubscribe:
		return p.parseClauseStatement(KindSubscribeStmt, subscribeWords)
	case TokenUnsubscribe:
		return p.parseClauseStatement(KindUnsubscribeStmt, subscribeWords)
	case TokenApply:
		return p.parseClauseStatement(KindApplyStmt, applyWords)
	case TokenWaitFor:
		return p.parseClauseStatement(KindWaitForStmt, waitForWords)
	case TokenPause:
		return p.parseClauseStatement(KindPauseStmt, pauseWords)
	case TokenQuit:
		return p.parseSimpleStatement(KindQuitStmt)
	case TokenStop:
		return p.parseSimpleStatement(KindStopStmt)
	case TokenEnd, TokenElse, TokenThen, TokenWhen, TokenOtherwise:
		return p.errorNode("unexpected " + describe(tok))
	}

	if form, ok := lookupStatementForm(tok); ok && continuesGenericStatement(p.peekN(1)) {
		return p.parseGenericStatement(form)
	}
	if startsExpressionStatement(tok) || (p.match(widgetRefKinds...) && isName(p.peekN(1))) {
		return p.parseExprOrAssignStatement()
	}
	return p.errorNode("unexpected " + describe(tok) + " at start of statement")
}

func isBlockStart(kind TokenKind) bool {
	return kind == TokenDo || kind == TokenRepeat || kind == TokenFor
}

func keywordUsedAsName(kind, next TokenKind) bool {
	switch next {
	case TokenEquals, TokenLBracket, TokenDoubleColon:
		return true
	case TokenObjColon:
		// DO:MESSAGE "x". lexes the block colon as an object colon.
		switch kind {
		case TokenDo, TokenRepeat, TokenFinally, TokenOtherwise, TokenThen, TokenElse:
			return false
		}
		return true
	}
	return false
}

func startsExpressionStatement(tok Token) bool {
	switch tok.Kind {
	case TokenThisObject, TokenSuper, TokenNew, TokenLParen:
		return true
	}
	return isIdentifierLike(tok)
}

// continuesGenericStatement reports whether the token after a leading word
// shows the statement is not an expression: UPDATE x, HIDE ALL, VIEW FRAME f.
func continuesGenericStatement(tok Token) bool {
	switch tok.Kind {
	case TokenIdent, TokenString, TokenNumber, TokenUnknownValue, TokenPeriod:
		return true
	case TokenEquals, TokenObjColon, TokenDoubleColon, TokenLBracket, TokenLParen, TokenNoError:
		return false
	}
	if tok.Kind.IsKeyword() {
		switch tok.Kind {
		case TokenAnd, TokenOr, TokenEq, TokenNe, TokenLt, TokenGt, TokenLe, TokenGe,
			TokenBegins, TokenMatches, TokenContains, TokenModulo:
			return false
		}
		return true
	}
	return false
}

// parseEnd consumes END [word] followed by the period.
func (p *Parser) parseEnd(context string) {
	if p.failed() {
		return
	}
	if p.expect(TokenEnd, "to close "+context) == nil {
		return
	}
	if isName(p.peek()) {
		p.advance()
	}
	p.expectPeriod("after END")
}

func (p *Parser) expectPeriod(context string) {
	if p.failed() {
		return
	}
	p.expect(TokenPeriod, context)
}

// parseCodeBlock reads statements up to END or one of the closers.
func (p *Parser) parseCodeBlock(closers ...TokenKind) *Node {
	block := p.startNode(KindCodeBlock)
	for !p.check(TokenEnd) && !p.check(TokenEOF) && !p.failed() {
		if len(closers) > 0 && p.match(closers...) {
			break
		}
		done := p.mustProgress()
		block.AddChild(p.parseStatement())
		if !done() {
			break
		}
	}
	return p.finishNode(block)
}

// expectBlockColon consumes the colon ending a block header. "DO:MESSAGE"
// lexes the colon as an object colon, which is accepted here too.
func (p *Parser) expectBlockColon(context string) bool {
	if p.accept(TokenLexColon) != nil || p.accept(TokenObjColon) != nil {
		return true
	}
	p.errorNode("expected ':' "+context, TokenLexColon)
	return false
}

func (p *Parser) parseNoError(node *Node) {
	if p.check(TokenNoError) {
		node.AddChild(p.leaf(KindNoError))
	}
}

// parseSimpleStatement parses KEYWORD . with optional trailing words.
func (p *Parser) parseSimpleStatement(kind NodeKind) *Node {
	node := p.startNode(kind)
	node.Token = tokenPtr(p.advance())
	for !p.check(TokenPeriod) && !p.check(TokenEOF) {
		node.AddChild(p.leaf(KindOption))
	}
	p.expectPeriod("after " + node.Token.Literal)
	return p.finishNode(node)
}

func tokenPtr(tok Token) *Token {
	return &tok
}
