package parser

// parseExprOrAssignStatement parses "target = expr." or an expression
// used as a statement, such as a method call.
func (p *Parser) parseExprOrAssignStatement() *Node {
	start := p.peek().Span.Start
	var target *Node
	if tok := p.peek(); tok.Kind.IsKeyword() && keywordUsedAsName(tok.Kind, p.peekN(1).Kind) {
		target = p.parsePostfixOf(p.leaf(KindIdentifier))
	} else {
		target = p.parsePostfix()
	}
	if p.failed() {
		return target
	}

	var node *Node
	if p.check(TokenEquals) || (p.match(TokenPlus, TokenMinus, TokenStar, TokenSlash) && p.peekN(1).Kind == TokenEquals) {
		node = &Node{Kind: KindAssignStmt, Span: Span{Start: start}}
		node.AddChild(p.parseAssignmentFrom(target))
	} else {
		node = &Node{Kind: KindExprStmt, Span: Span{Start: start}}
		node.AddChild(p.continueExpression(target))
	}
	p.parseNoError(node)
	p.expectPeriod("after statement")
	return p.finishNode(node)
}

// continueExpression finishes a binary expression whose first operand was
// already parsed as a statement target.
func (p *Parser) continueExpression(left *Node) *Node {
	for !p.failed() {
		kind := p.peek().Kind
		switch {
		case kind == TokenStar || kind == TokenSlash || kind == TokenModulo:
			left = p.binary(left, p.parseUnary)
		case kind == TokenPlus || kind == TokenMinus:
			left = p.binary(left, p.parseMultiplicative)
		case isComparison(kind):
			left = p.binary(left, p.parseAdditive)
		case kind == TokenAnd:
			left = p.binary(left, p.parseNot)
		case kind == TokenOr:
			left = p.binary(left, p.parseAndExpression)
		default:
			return left
		}
	}
	return left
}

// parseAssignmentFrom parses "= expr" (or "+= expr" and friends) after an
// already parsed target.
func (p *Parser) parseAssignmentFrom(target *Node) *Node {
	node := &Node{Kind: KindAssignment, Span: Span{Start: target.Span.Start}}
	node.AddChild(target)
	if !p.check(TokenEquals) {
		op := p.leaf(KindOption)
		node.AddChild(op)
	}
	node.Token = tokenPtr(p.advance())
	node.AddChild(p.parseExpression())
	return p.finishNode(node)
}

// parseAssign parses ASSIGN target = expr [WHEN cond] ... [NO-ERROR].
// A target without "=" assigns the screen value of a field.
func (p *Parser) parseAssign() *Node {
	node := p.startNode(KindAssignStmt)
	node.Token = tokenPtr(p.advance())
	p.parseAssignments(node)
	p.parseNoError(node)
	p.expectPeriod("after ASSIGN")
	return p.finishNode(node)
}

func (p *Parser) parseAssignments(node *Node) {
	for !p.check(TokenPeriod) && !p.check(TokenNoError) && !p.check(TokenEOF) && !p.failed() {
		if p.checkWord("TRIGGERS") || p.check(TokenIn) {
			return
		}
		if p.check(TokenWith) {
			node.AddChild(p.parseWithClause(TokenNoError))
			continue
		}
		target := p.parsePostfix()
		if p.failed() {
			return
		}
		if p.check(TokenEquals) || (p.match(TokenPlus, TokenMinus, TokenStar, TokenSlash) && p.peekN(1).Kind == TokenEquals) {
			assignment := p.parseAssignmentFrom(target)
			if p.check(TokenWhen) {
				when := p.leaf(KindOption)
				when.AddChild(p.parseExpression())
				assignment.AddChild(p.finishNode(when))
			}
			node.AddChild(p.finishNode(assignment))
			continue
		}
		assignment := &Node{Kind: KindAssignment, Span: target.Span}
		assignment.AddChild(target)
		node.AddChild(assignment)
	}
}

// parseCreate parses the CREATE forms:
//
//	CREATE record [USING ROWID|RECID expr] [NO-ERROR].
//	CREATE "automation.class" handle [CONNECT [TO file]] [NO-ERROR].
//	CREATE widget-type handle [IN WIDGET-POOL pool] [ASSIGN ...] [TRIGGERS: ... END TRIGGERS] [NO-ERROR].
//	CREATE WIDGET-POOL ["name"] [PERSISTENT] [NO-ERROR].
//
// The target is the first child. The parser sets a provisional State2 on
// the statement: Record for the one-operand form, Widget otherwise. The
// tree parser settles it once symbols and class tables are known.
func (p *Parser) parseCreate() *Node {
	node := p.startNode(KindCreateStmt)
	node.Token = tokenPtr(p.advance())

	tok := p.peek()
	switch {
	case tok.Kind == TokenWidgetPool || tok.Upper() == "ALIAS":
		for !p.check(TokenPeriod) && !p.check(TokenNoError) && !p.check(TokenEOF) {
			node.AddChild(p.leaf(KindOption))
		}
		p.parseNoError(node)
		p.expectPeriod("after CREATE")
		return p.finishNode(node)
	case tok.Kind == TokenString:
		node.AddChild(p.leaf(KindLiteral))
		node.State2 = ClassWidget
	case isIdentifierLike(tok) && p.isRecordCreate():
		node.AddChild(p.parseRecordRef())
		node.State2 = ClassRecord
	case isName(tok):
		node.AddChild(p.leaf(KindTypeName))
		node.State2 = ClassWidget
	default:
		return p.errorNode("expected a record, widget type or class after CREATE, found "+describe(tok), TokenIdent)
	}

	if node.State2 == ClassRecord {
		for p.checkWord("USING") || p.checkWord("ROWID") || p.checkWord("RECID") {
			opt := p.leaf(KindOption)
			if opt.Token.Upper() != "USING" {
				opt.AddChild(p.parseExpression())
			}
			node.AddChild(p.finishNode(opt))
		}
		if p.check(TokenFor) {
			opt := p.leaf(KindOption)
			opt.AddChild(p.leaf(KindOption))
			opt.AddChild(p.parseExpression())
			node.AddChild(p.finishNode(opt))
		}
		p.parseNoError(node)
		p.expectPeriod("after CREATE")
		return p.finishNode(node)
	}

	node.AddChild(p.parsePostfix())
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		switch {
		case p.check(TokenNoError):
			p.parseNoError(node)
		case p.check(TokenAssign):
			assign := p.startNode(KindAssignStmt)
			assign.Token = tokenPtr(p.advance())
			p.parseAttributeAssignments(assign)
			node.AddChild(p.finishNode(assign))
		case p.check(TokenIn):
			// IN WIDGET-POOL pool
			opt := p.leaf(KindOption)
			if p.check(TokenWidgetPool) {
				p.advance()
			}
			opt.AddChild(p.parseExpression())
			node.AddChild(p.finishNode(opt))
		case p.checkWord("CONNECT"):
			opt := p.leaf(KindOption)
			if p.accept(TokenTo) != nil {
				opt.AddChild(p.parseExpression())
			}
			node.AddChild(p.finishNode(opt))
		case p.checkWord("TRIGGERS"):
			node.AddChild(p.parseTriggersPhrase())
		case p.match(TokenString, TokenNumber):
			node.AddChild(p.leaf(KindLiteral))
		default:
			node.AddChild(p.leaf(KindOption))
		}
	}
	p.expectPeriod("after CREATE")
	return p.finishNode(node)
}

// isRecordCreate reports whether a CREATE has the one-operand record form:
// the name is followed by the period or a record-form option.
func (p *Parser) isRecordCreate() bool {
	next := p.peekN(1)
	switch next.Kind {
	case TokenPeriod, TokenNoError, TokenFor, TokenEOF:
		return true
	}
	return next.Upper() == "USING"
}

// parseAttributeAssignments parses attribute = value pairs after ASSIGN in
// a CREATE widget statement. The attribute names are not resolved.
func (p *Parser) parseAttributeAssignments(node *Node) {
	for isName(p.peek()) && p.peekN(1).Kind == TokenEquals && !p.failed() {
		assignment := p.startNode(KindAssignment)
		assignment.AddChild(p.leaf(KindOption))
		assignment.Token = tokenPtr(p.advance())
		assignment.AddChild(p.parseExpression())
		node.AddChild(p.finishNode(assignment))
	}
}

// parseTriggersPhrase parses TRIGGERS: ON ... END [TRIGGERS].
func (p *Parser) parseTriggersPhrase() *Node {
	node := p.leaf(KindOption)
	if !p.expectBlockColon("after TRIGGERS") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	if p.expect(TokenEnd, "to close TRIGGERS") == nil {
		return node
	}
	if p.checkWord("TRIGGERS") {
		p.advance()
	}
	return p.finishNode(node)
}

// parseDelete parses DELETE record [VALIDATE(...)] [NO-ERROR] and
// DELETE OBJECT|WIDGET|PROCEDURE handle [NO-ERROR].
func (p *Parser) parseDelete() *Node {
	start := p.peek()
	p.advance()
	if p.check(TokenObject) || p.checkWord("WIDGET") || p.check(TokenProcedure) {
		node := &Node{Kind: KindDeleteObjectStmt, Span: Span{Start: start.Span.Start}, Token: tokenPtr(start)}
		node.AddChild(p.leaf(KindOption))
		for !p.check(TokenPeriod) && !p.check(TokenNoError) && !p.check(TokenEOF) && !p.failed() {
			node.AddChild(p.parseExpression())
		}
		p.parseNoError(node)
		p.expectPeriod("after DELETE OBJECT")
		return p.finishNode(node)
	}
	if p.check(TokenWidgetPool) || p.checkWord("ALIAS") {
		node := &Node{Kind: KindGenericStmt, Span: Span{Start: start.Span.Start}, Token: tokenPtr(start)}
		for !p.check(TokenPeriod) && !p.check(TokenNoError) && !p.check(TokenEOF) {
			node.AddChild(p.leaf(KindOption))
		}
		p.parseNoError(node)
		p.expectPeriod("after DELETE")
		return p.finishNode(node)
	}

	node := &Node{Kind: KindDeleteStmt, Span: Span{Start: start.Span.Start}, Token: tokenPtr(start)}
	node.AddChild(p.parseRecordRef())
	if p.checkWord("VALIDATE") {
		node.AddChild(p.parseParenOption())
	}
	p.parseNoError(node)
	p.expectPeriod("after DELETE")
	return p.finishNode(node)
}

// parseFind parses FIND [FIRST|LAST|NEXT|PREV|CURRENT] record-phrase
// [constant] [NO-ERROR].
func (p *Parser) parseFind() *Node {
	node := p.startNode(KindFindStmt)
	node.Token = tokenPtr(p.advance())
	node.AddChild(p.parseRecordPhrase())
	if !p.check(TokenPeriod) && !p.check(TokenNoError) && startsExpression(p.peek()) {
		node.AddChild(p.parseExpression())
		// Options may follow a FIND by key.
		for p.match(TokenNoLock, TokenShareLock, TokenExclusiveLock, TokenNoWait) {
			node.AddChild(p.leaf(KindLockOption))
		}
	}
	p.parseNoError(node)
	p.expectPeriod("after FIND")
	return p.finishNode(node)
}

// parseRelease parses RELEASE record [NO-ERROR]. RELEASE OBJECT h is a
// delete of a handle.
func (p *Parser) parseRelease() *Node {
	start := p.peek()
	p.advance()
	if p.check(TokenObject) || p.checkWord("EXTERNAL") {
		node := &Node{Kind: KindDeleteObjectStmt, Span: Span{Start: start.Span.Start}, Token: tokenPtr(start)}
		node.AddChild(p.leaf(KindOption))
		if p.check(TokenProcedure) {
			node.AddChild(p.leaf(KindOption))
		}
		node.AddChild(p.parseExpression())
		p.parseNoError(node)
		p.expectPeriod("after RELEASE")
		return p.finishNode(node)
	}
	node := &Node{Kind: KindReleaseStmt, Span: Span{Start: start.Span.Start}, Token: tokenPtr(start)}
	node.AddChild(p.parseRecordRef())
	p.parseNoError(node)
	p.expectPeriod("after RELEASE")
	return p.finishNode(node)
}

type optionArg int

const (
	argNone optionArg = iota
	argExpr
	argName
)

// formatWords are the options of DISPLAY, PUT and MESSAGE items.
var formatWords = map[string]optionArg{
	"FORMAT": argExpr, "LABEL": argExpr, "COLUMN-LABEL": argExpr, "AT": argExpr,
	"TO": argExpr, "COLON": argExpr, "SKIP": argNone, "SPACE": argNone,
	"NO-LABEL": argNone, "NO-LABELS": argNone, "UNFORMATTED": argNone, "CONTROL": argNone,
	"SCREEN": argNone, "ROW": argExpr, "COLUMN": argExpr, "COLOR": argName,
	"ATTR-SPACE": argNone, "NO-ATTR-SPACE": argNone, "NO-ECHO": argNone, "VIEW-AS": argName,
	"WHEN": argExpr, "UNLESS-HIDDEN": argNone, "IN": argName, "WINDOW": argExpr,
	"FILL-IN": argNone, "TEXT": argNone, "LEFT-ALIGNED": argNone, "RIGHT-ALIGNED": argNone,
	"NO-TAB-STOP": argNone, "HELP": argExpr, "VALIDATE": argNone,
}

// parseStreamOption parses STREAM name or STREAM-HANDLE h at the start of an
// I/O statement.
func (p *Parser) parseStreamOption(node *Node) {
	switch {
	case p.check(TokenStreamKw) && isName(p.peekN(1)):
		node.AddChild(p.parsePrimary())
	case p.checkWord("STREAM-HANDLE"):
		opt := p.leaf(KindOption)
		opt.AddChild(p.parsePostfix())
		node.AddChild(p.finishNode(opt))
	}
}

// parseFormatItems parses the items of DISPLAY, PUT and MESSAGE up to the
// period or a word in stops.
func (p *Parser) parseFormatItems(node *Node, stops map[string]bool) {
	p.parseItems(node, formatWords, stops)
}

// parseItems parses expressions and the option words in words up to the
// period, NO-ERROR, a block colon or a word in stops.
func (p *Parser) parseItems(node *Node, words map[string]optionArg, stops map[string]bool) {
	for !p.check(TokenPeriod) && !p.check(TokenNoError) && !p.check(TokenLexColon) && !p.check(TokenEOF) && !p.failed() {
		tok := p.peek()
		if stops[tok.Upper()] {
			return
		}
		if arg, ok := words[tok.Upper()]; ok && isName(tok) {
			opt := p.leaf(KindOption)
			switch {
			case p.check(TokenLParen):
				opt.AddChild(p.parseParenOption())
			case arg == argExpr:
				opt.AddChild(p.parseUnary())
			case arg == argName && isName(p.peek()):
				opt.AddChild(p.leaf(KindOption))
			}
			node.AddChild(p.finishNode(opt))
			continue
		}
		switch {
		case p.check(TokenAt):
			opt := p.leaf(KindOption)
			opt.AddChild(p.parsePostfix())
			node.AddChild(p.finishNode(opt))
		case p.check(TokenWith):
			node.AddChild(p.parseWithClause(TokenNoError))
		case p.checkWord("EXCEPT"):
			opt := p.leaf(KindOption)
			for isName(p.peek()) && !p.check(TokenWith) && !p.check(TokenNoError) {
				opt.AddChild(p.leaf(KindOption))
			}
			node.AddChild(p.finishNode(opt))
		case startsExpression(tok):
			node.AddChild(p.parseExpression())
		default:
			node.AddChild(p.leaf(KindOption))
		}
	}
}

// parseDisplay parses DISPLAY [STREAM s] items [WITH ...] [NO-ERROR].
func (p *Parser) parseDisplay() *Node {
	node := p.startNode(KindDisplayStmt)
	node.Token = tokenPtr(p.advance())
	p.parseStreamOption(node)
	p.parseFormatItems(node, nil)
	p.parseNoError(node)
	p.expectPeriod("after DISPLAY")
	return p.finishNode(node)
}

var messageStops = map[string]bool{"VIEW-AS": true, "SET": true, "UPDATE": true, "IN": true}

// parseMessage parses MESSAGE items [VIEW-AS ALERT-BOX ...] [SET|UPDATE
// var [AS type|LIKE field]] [IN WINDOW w].
func (p *Parser) parseMessage() *Node {
	node := p.startNode(KindMessageStmt)
	node.Token = tokenPtr(p.advance())
	p.parseFormatItems(node, messageStops)
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		switch {
		case p.check(TokenViewAs):
			opt := p.leaf(KindOption)
			for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.check(TokenSet) && !p.checkWord("UPDATE") {
				if p.checkWord("TITLE") {
					title := p.leaf(KindOption)
					title.AddChild(p.parseUnary())
					opt.AddChild(p.finishNode(title))
					continue
				}
				opt.AddChild(p.leaf(KindOption))
			}
			node.AddChild(p.finishNode(opt))
		case p.check(TokenSet), p.checkWord("UPDATE"):
			opt := p.leaf(KindOption)
			opt.AddChild(p.parsePostfix())
			switch {
			case p.check(TokenAs):
				p.advance()
				opt.AddChild(p.parseTypeSpec())
			case p.check(TokenLike):
				opt.AddChild(p.parseLikeSpec())
			}
			for p.match(TokenFormat, TokenLabel) || p.checkWord("AUTO-RETURN") {
				f := p.leaf(KindOption)
				if f.Token.Kind != TokenIdent {
					f.AddChild(p.parseUnary())
				}
				opt.AddChild(p.finishNode(f))
			}
			node.AddChild(p.finishNode(opt))
		case p.check(TokenIn):
			opt := p.leaf(KindOption)
			if p.checkWord("WINDOW") {
				p.advance()
			}
			opt.AddChild(p.parseExpression())
			node.AddChild(p.finishNode(opt))
		default:
			return p.errorNode("unexpected "+describe(p.peek())+" in MESSAGE", TokenPeriod)
		}
	}
	p.expectPeriod("after MESSAGE")
	return p.finishNode(node)
}

// parsePut parses PUT [STREAM s] [UNFORMATTED] items.
func (p *Parser) parsePut() *Node {
	node := p.startNode(KindPutStmt)
	node.Token = tokenPtr(p.advance())
	p.parseStreamOption(node)
	p.parseFormatItems(node, nil)
	p.parseNoError(node)
	p.expectPeriod("after PUT")
	return p.finishNode(node)
}

// parseRun parses
//
//	RUN name|VALUE(expr) [PERSISTENT [SET h]] [ON [SERVER] h] [IN h]
//	    [ASYNCHRONOUS [SET h] [EVENT-PROCEDURE e [IN h]]] [(args)] [NO-ERROR].
//
// The target is the first child: an identifier for a plain name, which may
// be an internal procedure or an external file, or the VALUE expression.
func (p *Parser) parseRun() *Node {
	node := p.startNode(KindRunStmt)
	node.Token = tokenPtr(p.advance())

	switch {
	case p.checkWord("VALUE") && p.peekN(1).Kind == TokenLParen:
		node.AddChild(p.parsePrimary())
	case p.check(TokenString):
		node.AddChild(p.leaf(KindLiteral))
	case isName(p.peek()) || p.check(TokenSlash):
		node.AddChild(p.parseRunTarget())
	default:
		return p.errorNode("expected a procedure name after RUN, found "+describe(p.peek()), TokenIdent)
	}

	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		switch {
		case p.check(TokenNoError):
			p.parseNoError(node)
		case p.check(TokenLParen):
			node.AddChild(p.parseArgs())
		case p.check(TokenPersistent), p.checkWord("ASYNCHRONOUS"), p.checkWord("SINGLE-RUN"), p.checkWord("SINGLETON"):
			node.AddChild(p.leaf(KindOption))
		case p.check(TokenSet):
			opt := p.leaf(KindOption)
			if !p.check(TokenPeriod) && !p.check(TokenNoError) && startsExpression(p.peek()) {
				opt.AddChild(p.parsePostfix())
			}
			node.AddChild(p.finishNode(opt))
		case p.check(TokenOn):
			opt := p.leaf(KindOption)
			if p.checkWord("SERVER") {
				p.advance()
			}
			opt.AddChild(p.parsePostfix())
			if p.check(TokenTransaction) {
				opt.AddChild(p.leaf(KindOption))
				if p.checkWord("DISTINCT") {
					opt.AddChild(p.leaf(KindOption))
				}
			}
			node.AddChild(p.finishNode(opt))
		case p.check(TokenIn), p.checkWord("EVENT-PROCEDURE"):
			opt := p.leaf(KindOption)
			opt.AddChild(p.parsePostfix())
			node.AddChild(p.finishNode(opt))
		case startsExpression(p.peek()):
			// Arguments of an include-style run: RUN x.p "a" "b".
			node.AddChild(p.parseExpression())
		default:
			return p.errorNode("unexpected "+describe(p.peek())+" in RUN", TokenPeriod)
		}
	}
	p.expectPeriod("after RUN")
	return p.finishNode(node)
}

// parseRunTarget joins a path written without quotes, such as
// sub/dir/proc.p, into a single identifier token.
func (p *Parser) parseRunTarget() *Node {
	first := p.advance()
	tok := first
	for {
		next := p.peek()
		if next.Kind == TokenEOF || next.Span.Start.Offset != tok.Span.End.Offset || next.Span.Start.File != tok.Span.End.File {
			break
		}
		if next.Kind != TokenSlash && !isName(next) && next.Kind != TokenNumber {
			break
		}
		p.advance()
		tok.Literal += next.Literal
		tok.Span.End = next.Span.End
	}
	if tok.Literal != first.Literal {
		tok.Kind = TokenIdent
	}
	return &Node{Kind: KindIdentifier, Token: &tok, Span: tok.Span}
}

// parseReturn parses RETURN [ERROR|NO-APPLY] [expr].
func (p *Parser) parseReturn() *Node {
	node := p.startNode(KindReturnStmt)
	node.Token = tokenPtr(p.advance())
	if (p.check(TokenErrorKw) && p.peekN(1).Kind != TokenObjColon) || p.checkWord("NO-APPLY") {
		node.AddChild(p.leaf(KindOption))
	}
	if !p.check(TokenPeriod) && startsExpression(p.peek()) {
		node.AddChild(p.parseExpression())
	}
	p.expectPeriod("after RETURN")
	return p.finishNode(node)
}

// parseLeaveOrNext parses LEAVE [label]. and NEXT [label].
func (p *Parser) parseLeaveOrNext(kind NodeKind) *Node {
	node := p.startNode(kind)
	node.Token = tokenPtr(p.advance())
	if p.isIdentifierLike() {
		node.AddChild(p.leaf(KindBlockLabel))
	}
	p.expectPeriod("after " + node.Token.Upper())
	return p.finishNode(node)
}

// parseUndo parses UNDO [label] [, LEAVE|NEXT|RETRY|RETURN|THROW ...].
func (p *Parser) parseUndo() *Node {
	node := p.startNode(KindUndoStmt)
	node.Token = tokenPtr(p.advance())
	if p.isIdentifierLike() && !p.check(TokenThrow) {
		node.AddChild(p.leaf(KindBlockLabel))
	}
	if p.accept(TokenComma) != nil {
		node.AddChild(p.parseUndoAction())
	}
	p.expectPeriod("after UNDO")
	return p.finishNode(node)
}

// parseEmptyTempTable parses EMPTY TEMP-TABLE tt [NO-ERROR].
func (p *Parser) parseEmptyTempTable() *Node {
	node := p.startNode(KindEmptyTempTableStmt)
	node.Token = tokenPtr(p.advance())
	p.advance()
	node.AddChild(p.parseRecordRef())
	p.parseNoError(node)
	p.expectPeriod("after EMPTY TEMP-TABLE")
	return p.finishNode(node)
}

var (
	copyLobWords = map[string]optionArg{
		"FROM": argNone, "TO": argNone, "OBJECT": argNone, "FILE": argExpr,
		"STARTING": argNone, "AT": argExpr, "FOR": argExpr, "OVERLAY": argNone,
		"APPEND": argNone, "TRIM": argNone, "CONVERT": argNone, "NO-CONVERT": argNone,
		"SOURCE": argNone, "TARGET": argNone, "CODEPAGE": argExpr,
	}
	streamIOWords = map[string]optionArg{
		"INPUT": argNone, "OUTPUT": argNone, "INPUT-OUTPUT": argNone, "FROM": argName,
		"TO": argName, "THROUGH": argName, "THRU": argName, "CLOSE": argNone,
		"APPEND": argNone, "ECHO": argNone, "NO-ECHO": argNone, "KEEP-MESSAGES": argNone,
		"PAGED": argNone, "PAGE-SIZE": argExpr, "UNBUFFERED": argNone, "BINARY": argNone,
		"NO-MAP": argNone, "MAP": argName, "CONVERT": argNone, "NO-CONVERT": argNone,
		"SOURCE": argExpr, "TARGET": argExpr, "LOB-DIR": argName, "CLEAR": argNone,
		"NUM-COPIES": argExpr, "LANDSCAPE": argNone, "PORTRAIT": argNone, "NO-ATTR-SPACE": argNone,
	}
	publishWords = map[string]optionArg{
		"FROM": argExpr,
	}
	subscribeWords = map[string]optionArg{
		"PROCEDURE": argExpr, "TO": argExpr, "IN": argExpr, "ANYWHERE": argNone,
		"RUN-PROCEDURE": argExpr, "ALL": argNone,
	}
	applyWords = map[string]optionArg{
		"TO": argExpr, "IN": argNone,
	}
	waitForWords = map[string]optionArg{
		"FOCUS": argExpr, "PAUSE": argExpr, "EXCLUSIVE-WEB-USER": argNone,
	}
	pauseWords = map[string]optionArg{
		"BEFORE-HIDE": argNone, "MESSAGE": argExpr, "NO-MESSAGE": argNone, "IN": argNone,
		"WINDOW": argExpr,
	}
)

// parseClauseStatement parses a statement made of a leading keyword, option
// words and expressions, up to the period. words maps each option word to
// what follows it.
func (p *Parser) parseClauseStatement(kind NodeKind, words map[string]optionArg) *Node {
	node := p.startNode(kind)
	node.Token = tokenPtr(p.advance())
	if kind == KindWaitForStmt {
		p.parseEventList(node)
	}
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		tok := p.peek()
		if arg, ok := words[tok.Upper()]; ok && isName(tok) {
			opt := p.leaf(KindOption)
			switch arg {
			case argExpr:
				opt.AddChild(p.parseExpression())
			case argName:
				if isName(p.peek()) && p.peekN(1).Kind != TokenLParen && p.peekN(1).Kind != TokenObjColon {
					// An unquoted file name, not a variable.
					target := p.parseRunTarget()
					target.Kind = KindOption
					opt.AddChild(target)
				} else if startsExpression(p.peek()) {
					opt.AddChild(p.parseExpression())
				}
			}
			node.AddChild(p.finishNode(opt))
			continue
		}
		switch {
		case p.check(TokenNoError):
			p.parseNoError(node)
		case p.check(TokenLParen) && kind != KindPauseStmt:
			node.AddChild(p.parseArgs())
		case startsExpression(tok):
			node.AddChild(p.parseExpression())
		default:
			node.AddChild(p.leaf(KindOption))
		}
	}
	p.expectPeriod("after " + node.Token.Upper())
	return p.finishNode(node)
}

// parseEventList parses event [, event] OF widget [, widget] [OR event OF
// widget ...] at the start of WAIT-FOR. A .NET style WAIT-FOR
// type:method(args) is parsed as an expression.
func (p *Parser) parseEventList(node *Node) {
	if isName(p.peek()) && p.peekN(1).Kind == TokenObjColon {
		node.AddChild(p.parseExpression())
		return
	}
	for !p.failed() {
		if !isName(p.peek()) && !p.check(TokenString) {
			return
		}
		if _, ok := waitForWords[p.peek().Upper()]; ok {
			return
		}
		node.AddChild(p.leaf(KindOption))
		if p.accept(TokenComma) != nil {
			continue
		}
		if p.accept(TokenOf) != nil {
			for !p.failed() {
				node.AddChild(p.parseWidgetOperand())
				if p.accept(TokenComma) == nil {
					break
				}
			}
		}
		if p.accept(TokenOr) == nil {
			return
		}
	}
}

// parseBufferCopy parses BUFFER-COPY src [EXCEPT|USING fields] TO dst
// [ASSIGN assignments] [NO-LOBS] [NO-ERROR].
func (p *Parser) parseBufferCopy() *Node {
	node := p.startNode(KindBufferCopyStmt)
	node.Token = tokenPtr(p.advance())
	node.AddChild(p.parseBufferOperand())
	if p.checkWord("EXCEPT") || p.checkWord("USING") {
		opt := p.leaf(KindOption)
		for isName(p.peek()) && !p.check(TokenTo) {
			opt.AddChild(p.leaf(KindOption))
		}
		node.AddChild(p.finishNode(opt))
	}
	if p.expect(TokenTo, "in BUFFER-COPY") == nil {
		return node
	}
	node.AddChild(p.parseBufferOperand())
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		switch {
		case p.check(TokenAssign):
			assign := p.startNode(KindAssignStmt)
			assign.Token = tokenPtr(p.advance())
			p.parseAssignments(assign)
			node.AddChild(p.finishNode(assign))
		case p.check(TokenNoError):
			p.parseNoError(node)
		default:
			node.AddChild(p.leaf(KindOption))
		}
	}
	p.expectPeriod("after BUFFER-COPY")
	return p.finishNode(node)
}

// parseBufferOperand parses a record name or a BUFFER b:HANDLE style
// expression.
func (p *Parser) parseBufferOperand() *Node {
	if p.isIdentifierLike() && p.peekN(1).Kind != TokenObjColon && p.peekN(1).Kind != TokenLParen {
		return p.parseRecordRef()
	}
	return p.parsePostfix()
}

// parseOpenQuery parses OPEN QUERY q FOR|PRESELECT EACH phrases [BY ...]
// [options].
func (p *Parser) parseOpenQuery() *Node {
	node := p.startNode(KindOpenQueryStmt)
	node.Token = tokenPtr(p.advance())
	if p.expect(TokenQuery, "after OPEN") == nil {
		return node
	}
	if !p.isIdentifierLike() {
		return p.errorNode("expected query name, found "+describe(p.peek()), TokenIdent)
	}
	node.AddChild(p.leaf(KindIdentifier))
	if p.check(TokenFor) || p.checkWord("PRESELECT") {
		node.AddChild(p.leaf(KindOption))
	} else {
		return p.errorNode("expected FOR or PRESELECT in OPEN QUERY", TokenFor)
	}
	p.parseRecordPhrases(node)
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		switch {
		case p.check(TokenBy):
			by := p.startNode(KindByClause)
			p.advance()
			by.AddChild(p.parseExpression())
			if p.check(TokenDescending) {
				by.AddChild(p.leaf(KindOption))
			}
			node.AddChild(p.finishNode(by))
		case p.check(TokenBreak):
			node.AddChild(p.leaf(KindBreakClause))
		case p.checkWord("MAX-ROWS"):
			opt := p.leaf(KindOption)
			opt.AddChild(p.parseExpression())
			node.AddChild(p.finishNode(opt))
		case p.checkWord("QUERY-TUNING"):
			node.AddChild(p.parseParenOption())
		case p.check(TokenNoError):
			p.parseNoError(node)
		default:
			node.AddChild(p.leaf(KindOption))
		}
	}
	p.expectPeriod("after OPEN QUERY")
	return p.finishNode(node)
}

func isQueryNavigation(tok Token) bool {
	switch tok.Kind {
	case TokenFirst, TokenNext, TokenPrev, TokenLast:
		return true
	}
	return tok.Upper() == "CURRENT"
}

// parseGet parses GET FIRST|NEXT|PREV|LAST|CURRENT q [lock] [NO-WAIT].
func (p *Parser) parseGet() *Node {
	node := p.startNode(KindGetStmt)
	node.Token = tokenPtr(p.advance())
	node.AddChild(p.leaf(KindOption))
	if !p.isIdentifierLike() {
		return p.errorNode("expected query name, found "+describe(p.peek()), TokenIdent)
	}
	node.AddChild(p.leaf(KindIdentifier))
	for p.match(TokenNoLock, TokenShareLock, TokenExclusiveLock, TokenNoWait) {
		node.AddChild(p.leaf(KindLockOption))
	}
	p.expectPeriod("after GET")
	return p.finishNode(node)
}

// parseClose parses CLOSE QUERY q. Other CLOSE statements are generic.
func (p *Parser) parseClose() *Node {
	if p.peekN(1).Kind != TokenQuery {
		return p.parseGenericStatement(opaqueForm)
	}
	node := p.startNode(KindCloseStmt)
	node.Token = tokenPtr(p.advance())
	p.advance()
	if !p.isIdentifierLike() {
		return p.errorNode("expected query name, found "+describe(p.peek()), TokenIdent)
	}
	node.AddChild(p.leaf(KindIdentifier))
	p.expectPeriod("after CLOSE QUERY")
	return p.finishNode(node)
}
