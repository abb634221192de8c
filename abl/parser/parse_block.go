package parser

func (p *Parser) parseDo() *Node {
	node := p.startNode(KindDoStmt)
	node.Token = tokenPtr(p.advance())

	if p.accept(TokenFor) != nil {
		p.parseRecordList(node)
	} else if p.checkWord("PRESELECT") {
		node.AddChild(p.leaf(KindOption))
		p.parseRecordPhrases(node)
	}
	if p.isIdentifierLike() && p.peekN(1).Kind == TokenEquals {
		node.AddChild(p.parseLoopRange())
	}
	p.parseBlockOptions(node)
	if !p.expectBlockColon("after DO") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd("DO")
	return p.finishNode(node)
}

func (p *Parser) parseRepeat() *Node {
	node := p.startNode(KindRepeatStmt)
	node.Token = tokenPtr(p.advance())

	if p.accept(TokenFor) != nil {
		p.parseRecordList(node)
	} else if p.checkWord("PRESELECT") {
		node.AddChild(p.leaf(KindOption))
		p.parseRecordPhrases(node)
	}
	p.parseBlockOptions(node)
	if !p.expectBlockColon("after REPEAT") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd("REPEAT")
	return p.finishNode(node)
}

// parseFor parses FOR EACH/FIRST/LAST record phrases and the block.
func (p *Parser) parseFor() *Node {
	node := p.startNode(KindForStmt)
	node.Token = tokenPtr(p.advance())

	if !p.match(TokenEach, TokenFirst, TokenLast) {
		return p.errorNode("expected EACH, FIRST or LAST after FOR", TokenEach, TokenFirst, TokenLast)
	}
	p.parseRecordPhrases(node)
	p.parseBlockOptions(node)
	if !p.expectBlockColon("after FOR header") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd("FOR")
	return p.finishNode(node)
}

// parseRecordList parses the buffer list of DO FOR and REPEAT FOR. Each
// buffer is scoped to the block.
func (p *Parser) parseRecordList(node *Node) {
	for !p.failed() {
		phrase := p.startNode(KindRecordPhrase)
		phrase.AddChild(p.parseRecordRef())
		node.AddChild(p.finishNode(phrase))
		if p.accept(TokenComma) == nil {
			return
		}
	}
}

func (p *Parser) parseRecordPhrases(node *Node) {
	for !p.failed() {
		node.AddChild(p.parseRecordPhrase())
		if p.accept(TokenComma) == nil {
			return
		}
	}
}

// parseRecordPhrase parses
//
//	[EACH|FIRST|LAST|NEXT|PREV|CURRENT] record [OF record] [WHERE expr]
//	[USE-INDEX index] [lock] [NO-WAIT] [NO-PREFETCH]
func (p *Parser) parseRecordPhrase() *Node {
	node := p.startNode(KindRecordPhrase)
	if p.match(TokenEach, TokenFirst, TokenLast, TokenNext, TokenPrev) || p.checkWord("CURRENT") {
		node.Token = tokenPtr(p.advance())
	}
	node.AddChild(p.parseRecordRef())

	for !p.failed() {
		switch {
		case p.check(TokenOf):
			of := p.startNode(KindOfClause)
			p.advance()
			of.AddChild(p.parseRecordRef())
			node.AddChild(p.finishNode(of))
		case p.check(TokenWhere):
			where := p.startNode(KindWhereClause)
			p.advance()
			if startsExpression(p.peek()) {
				where.AddChild(p.parseExpression())
			}
			node.AddChild(p.finishNode(where))
		case p.check(TokenUseIndex):
			use := p.startNode(KindUseIndex)
			p.advance()
			use.Token = tokenPtr(p.advance())
			node.AddChild(p.finishNode(use))
		case p.match(TokenNoLock, TokenShareLock, TokenExclusiveLock):
			node.AddChild(p.leaf(KindLockOption))
		case p.check(TokenNoWait), p.checkWord("NO-PREFETCH"), p.checkWord("TABLE-SCAN"):
			node.AddChild(p.leaf(KindOption))
		case p.checkWord("FIELDS") || p.checkWord("EXCEPT"):
			node.AddChild(p.parseFieldList())
		default:
			return p.finishNode(node)
		}
	}
	return p.finishNode(node)
}

// parseFieldList parses FIELDS (a b c) or EXCEPT (a b); the names are kept
// as options.
func (p *Parser) parseFieldList() *Node {
	node := p.leaf(KindOption)
	if p.accept(TokenLParen) == nil {
		return node
	}
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		node.AddChild(p.leaf(KindOption))
	}
	p.expect(TokenRParen, "after field list")
	return p.finishNode(node)
}

func (p *Parser) parseRecordRef() *Node {
	if !p.isIdentifierLike() {
		return p.errorNode("expected a record name, found "+describe(p.peek()), TokenIdent)
	}
	return p.leaf(KindRecordRef)
}

// parseLoopRange parses var = from TO to [BY step].
func (p *Parser) parseLoopRange() *Node {
	node := p.startNode(KindLoopRange)
	node.AddChild(p.leaf(KindIdentifier))
	p.advance()
	node.AddChild(p.parseExpression())
	if p.expect(TokenTo, "in DO loop") == nil {
		return node
	}
	node.AddChild(p.parseExpression())
	if p.accept(TokenBy) != nil {
		node.AddChild(p.parseExpression())
	}
	return p.finishNode(node)
}

// parseBlockOptions parses the header options of DO, REPEAT and FOR up to
// the block colon.
func (p *Parser) parseBlockOptions(node *Node) {
	for !p.check(TokenLexColon) && !p.check(TokenObjColon) && !p.check(TokenEOF) && !p.failed() {
		switch {
		case p.check(TokenWhile):
			w := p.startNode(KindWhileClause)
			p.advance()
			w.AddChild(p.parseExpression())
			node.AddChild(p.finishNode(w))
		case p.check(TokenTransaction), p.check(TokenNoError):
			node.AddChild(p.leaf(KindOption))
		case p.check(TokenOn):
			node.AddChild(p.parseOnPhrase())
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
		case p.check(TokenWith):
			node.AddChild(p.parseWithClause(TokenLexColon, TokenObjColon))
		case p.checkWord("STOP-AFTER"):
			opt := p.leaf(KindOption)
			opt.AddChild(p.parseExpression())
			node.AddChild(opt)
		case p.check(TokenQuery), p.checkWord("QUERY-TUNING"):
			node.AddChild(p.parseParenOption())
		default:
			p.errorNode("unexpected "+describe(p.peek())+" in block header", TokenLexColon)
			return
		}
	}
}

// parseParenOption parses WORD [( ... )] keeping everything as options.
func (p *Parser) parseParenOption() *Node {
	node := p.leaf(KindOption)
	if p.accept(TokenLParen) == nil {
		return node
	}
	depth := 1
	for depth > 0 && !p.check(TokenEOF) {
		switch p.peek().Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				p.advance()
				return p.finishNode(node)
			}
		}
		node.AddChild(p.leaf(KindOption))
	}
	return p.errorNode("unterminated (", TokenRParen)
}

// parseOnPhrase parses ON ERROR|ENDKEY|STOP|QUIT UNDO [label] [, action].
func (p *Parser) parseOnPhrase() *Node {
	node := p.startNode(KindOnPhrase)
	p.advance()
	if !isName(p.peek()) {
		return p.errorNode("expected ERROR, ENDKEY, STOP or QUIT after ON", TokenErrorKw)
	}
	node.Token = tokenPtr(p.advance())
	if p.check(TokenUndo) {
		node.AddChild(p.leaf(KindOption))
		if p.isIdentifierLike() && !p.check(TokenThrow) && !p.check(TokenRetry) {
			node.AddChild(p.leaf(KindBlockLabel))
		}
	}
	if p.accept(TokenComma) != nil {
		node.AddChild(p.parseUndoAction())
	}
	return p.finishNode(node)
}

// parseUndoAction parses LEAVE [label] | NEXT [label] | RETRY [label] |
// RETURN [ERROR|NO-APPLY] [value] | THROW expr.
func (p *Parser) parseUndoAction() *Node {
	action := p.startNode(KindOption)
	tok := p.peek()
	switch {
	case tok.Kind == TokenLeave, tok.Kind == TokenNext, tok.Kind == TokenRetry:
		action.Token = tokenPtr(p.advance())
		if p.isIdentifierLike() {
			action.AddChild(p.leaf(KindBlockLabel))
		}
	case tok.Kind == TokenReturn:
		action.Token = tokenPtr(p.advance())
		if p.check(TokenErrorKw) || p.checkWord("NO-APPLY") {
			action.AddChild(p.leaf(KindOption))
		}
		if startsExpression(p.peek()) {
			action.AddChild(p.parseExpression())
		}
	case tok.Kind == TokenThrow:
		action.Token = tokenPtr(p.advance())
		if startsExpression(p.peek()) {
			action.AddChild(p.parseExpression())
		}
	default:
		return p.errorNode("expected LEAVE, NEXT, RETRY, RETURN or THROW", TokenLeave, TokenNext, TokenRetry, TokenReturn, TokenThrow)
	}
	return p.finishNode(action)
}

func (p *Parser) parseIf() *Node {
	node := p.startNode(KindIfStmt)
	node.Token = tokenPtr(p.advance())
	node.AddChild(p.parseExpression())
	if p.expect(TokenThen, "after IF condition") == nil {
		return node
	}
	node.AddChild(p.parseStatement())
	if p.accept(TokenElse) != nil {
		node.AddChild(p.parseStatement())
	}
	return p.finishNode(node)
}

func (p *Parser) parseCase() *Node {
	node := p.startNode(KindCaseStmt)
	node.Token = tokenPtr(p.advance())
	node.AddChild(p.parseExpression())
	if !p.expectBlockColon("after CASE expression") {
		return node
	}
	for p.check(TokenWhen) && !p.failed() {
		when := p.startNode(KindWhenBranch)
		p.advance()
		when.AddChild(p.parseAndExpression())
		for p.check(TokenOr) && p.peekN(1).Kind == TokenWhen {
			p.advance()
			p.advance()
			when.AddChild(p.parseAndExpression())
		}
		if p.expect(TokenThen, "after WHEN value") == nil {
			return node
		}
		when.AddChild(p.parseStatement())
		node.AddChild(p.finishNode(when))
	}
	if p.check(TokenOtherwise) {
		other := p.startNode(KindOtherwiseBranch)
		p.advance()
		other.AddChild(p.parseStatement())
		node.AddChild(p.finishNode(other))
	}
	p.parseEnd("CASE")
	return p.finishNode(node)
}

// parseProcedure parses PROCEDURE name [options]: body END [PROCEDURE].
func (p *Parser) parseProcedure() *Node {
	node := p.startNode(KindProcedureDecl)
	p.advance()
	if !isName(p.peek()) {
		return p.errorNode("expected procedure name", TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	for !p.check(TokenLexColon) && !p.check(TokenPeriod) && !p.check(TokenEOF) {
		node.AddChild(p.leaf(KindOption))
	}
	if !p.expectBlockColon("after PROCEDURE header") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd("PROCEDURE")
	return p.finishNode(node)
}

// parseFunction parses a user-defined function: its forward declaration,
// its IN handle prototype or its definition with a body.
func (p *Parser) parseFunction() *Node {
	node := p.startNode(KindFunctionDecl)
	p.advance()
	if !isName(p.peek()) {
		return p.errorNode("expected function name", TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	if p.check(TokenReturns) || p.check(TokenReturn) {
		p.advance()
	}
	node.AddChild(p.parseTypeSpec())
	for p.check(TokenExtent) || p.check(TokenPrivate) {
		opt := p.leaf(KindOption)
		if opt.Token.Kind == TokenExtent && p.check(TokenNumber) {
			opt.AddChild(p.leaf(KindLiteral))
		}
		node.AddChild(opt)
	}
	if p.check(TokenLParen) {
		node.AddChild(p.parseParameterList())
	}

	switch {
	case p.check(TokenForward):
		node.AddChild(p.leaf(KindOption))
		p.expectPeriod("after FORWARD")
		return p.finishNode(node)
	case p.check(TokenIn) || p.checkWord("MAP"):
		in := p.startNode(KindInClause)
		for !p.check(TokenPeriod) && !p.check(TokenEOF) {
			if p.check(TokenSuper) || p.checkWord("MAP") || p.check(TokenIn) || p.check(TokenTo) {
				in.AddChild(p.leaf(KindOption))
				continue
			}
			in.AddChild(p.parseExpression())
		}
		node.AddChild(p.finishNode(in))
		p.expectPeriod("after FUNCTION prototype")
		return p.finishNode(node)
	}

	if !p.expectBlockColon("after FUNCTION header") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd("FUNCTION")
	return p.finishNode(node)
}

// parseParameterList parses an inline parameter list of a function,
// method, constructor or event.
func (p *Parser) parseParameterList() *Node {
	node := p.startNode(KindParameterList)
	p.advance()
	for !p.check(TokenRParen) && !p.check(TokenEOF) && !p.failed() {
		node.AddChild(p.parseParameterDecl())
		if p.accept(TokenComma) == nil {
			break
		}
	}
	p.expect(TokenRParen, "after parameter list")
	return p.finishNode(node)
}

func (p *Parser) parseParameterDecl() *Node {
	node := p.startNode(KindParameterDecl)
	if p.match(TokenInput, TokenOutput, TokenInputOutput, TokenReturn) {
		node.AddChild(p.leaf(KindOption))
	}
	switch {
	case p.check(TokenTable):
		node.AddChild(p.leaf(KindOption))
		p.accept(TokenFor)
		node.AddChild(p.parseRecordRef())
		p.parseParameterModes(node)
	case p.check(TokenDataset):
		node.AddChild(p.leaf(KindOption))
		p.accept(TokenFor)
		node.AddChild(p.parseNameRef())
		p.parseParameterModes(node)
	case p.check(TokenTableHandle), p.check(TokenDatasetHandle):
		node.AddChild(p.leaf(KindOption))
		p.accept(TokenFor)
		node.Token = tokenPtr(p.advance())
		p.parseParameterModes(node)
	case p.check(TokenBuffer):
		node.AddChild(p.leaf(KindOption))
		node.Token = tokenPtr(p.advance())
		if p.expect(TokenFor, "in BUFFER parameter") == nil {
			return node
		}
		p.accept(TokenTempTable)
		node.AddChild(p.parseRecordRef())
	default:
		if !p.isIdentifierLike() {
			return p.errorNode("expected parameter name, found "+describe(p.peek()), TokenIdent)
		}
		node.Token = tokenPtr(p.advance())
		switch {
		case p.check(TokenAs):
			p.advance()
			node.AddChild(p.parseTypeSpec())
		case p.check(TokenLike):
			node.AddChild(p.parseLikeSpec())
		default:
			return p.errorNode("expected AS or LIKE after parameter name", TokenAs, TokenLike)
		}
		if p.check(TokenExtent) {
			opt := p.leaf(KindOption)
			if p.check(TokenNumber) {
				opt.AddChild(p.leaf(KindLiteral))
			}
			node.AddChild(opt)
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseParameterModes(node *Node) {
	for p.match(TokenAppend, TokenBind, TokenByValue, TokenByReference) {
		node.AddChild(p.leaf(KindOption))
	}
}

// parseTrigger parses ON event[, event] [OF widget[, widget]] [ANYWHERE]
// followed by a DO block, a single statement, REVERT or PERSISTENT RUN.
func (p *Parser) parseTrigger() *Node {
	node := p.startNode(KindTriggerBlock)
	node.Token = tokenPtr(p.advance())

	for !p.failed() {
		if !(isName(p.peek()) || p.check(TokenString)) {
			return p.errorNode("expected event name after ON", TokenIdent)
		}
		node.AddChild(p.leaf(KindOption))
		if p.accept(TokenComma) == nil && p.accept(TokenOr) == nil {
			break
		}
	}

	if p.accept(TokenOf) != nil {
		for !p.failed() {
			node.AddChild(p.parseWidgetOperand())
			if p.check(TokenComma) || p.check(TokenOr) {
				p.advance()
				continue
			}
			break
		}
	}
	if p.checkWord("ANYWHERE") {
		node.AddChild(p.leaf(KindOption))
	}

	switch {
	case p.check(TokenPeriod):
		p.advance()
	case p.checkWord("REVERT"):
		node.AddChild(p.leaf(KindOption))
		p.expectPeriod("after REVERT")
	case p.check(TokenPersistent):
		node.AddChild(p.leaf(KindOption))
		node.AddChild(p.parseRun())
	case p.check(TokenDo):
		node.AddChild(p.parseDo())
	case isName(p.peek()) && p.peekN(1).Kind == TokenPeriod && p.peek().Kind == TokenIdent:
		// ON key-label key-function.
		node.AddChild(p.leaf(KindOption))
		p.advance()
	default:
		node.AddChild(p.parseStatement())
	}
	return p.finishNode(node)
}

// parseWidgetOperand parses a widget reference: FRAME f, BROWSE b, a field
// or a handle expression.
func (p *Parser) parseWidgetOperand() *Node {
	if p.check(TokenFrame) || p.checkWord("BROWSE") || p.checkWord("MENU") || p.checkWord("SUB-MENU") ||
		p.checkWord("MENU-ITEM") || p.checkWord("BUTTON") {
		if isName(p.peekN(1)) {
			ref := p.leaf(KindWidgetRef)
			ref.AddChild(p.leaf(KindIdentifier))
			return p.finishNode(ref)
		}
	}
	return p.parsePostfix()
}

// parseCatch parses CATCH name AS [CLASS] type: body END [CATCH].
func (p *Parser) parseCatch() *Node {
	node := p.startNode(KindCatchBlock)
	p.advance()
	if !p.isIdentifierLike() {
		return p.errorNode("expected variable name after CATCH", TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	if p.expect(TokenAs, "in CATCH") == nil {
		return node
	}
	node.AddChild(p.parseTypeSpec())
	if !p.expectBlockColon("after CATCH header") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd("CATCH")
	return p.finishNode(node)
}

func (p *Parser) parseFinally() *Node {
	node := p.startNode(KindFinallyBlock)
	node.Token = tokenPtr(p.advance())
	if !p.expectBlockColon("after FINALLY") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd("FINALLY")
	return p.finishNode(node)
}

// parseWithClause parses a frame phrase WITH ... up to one of the stop
// tokens or the period. FRAME name becomes a widget reference.
func (p *Parser) parseWithClause(stops ...TokenKind) *Node {
	node := p.startNode(KindWithClause)
	p.advance()
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.match(stops...) && !p.check(TokenNoError) {
		if p.check(TokenFrame) && isName(p.peekN(1)) {
			ref := p.leaf(KindWidgetRef)
			ref.AddChild(p.leaf(KindIdentifier))
			node.AddChild(ref)
			continue
		}
		node.AddChild(p.leaf(KindOption))
	}
	return p.finishNode(node)
}
