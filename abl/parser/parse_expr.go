package parser

// Expression precedence, lowest first:
//
//	OR
//	AND
//	NOT
//	= <> < > <= >= EQ NE LT GT LE GE BEGINS MATCHES CONTAINS
//	+ -
//	* / MODULO
//	unary - +
//	postfix :member ::field (args) [subscript]

func (p *Parser) parseExpression() *Node {
	left := p.parseAndExpression()
	for p.check(TokenOr) && !p.failed() {
		left = p.binary(left, p.parseAndExpression)
	}
	return left
}

// parseAndExpression parses an expression without a top-level OR. CASE
// uses it for WHEN values, where OR WHEN separates alternatives.
func (p *Parser) parseAndExpression() *Node {
	left := p.parseNot()
	for p.check(TokenAnd) && !p.failed() {
		left = p.binary(left, p.parseNot)
	}
	return left
}

// binary consumes the operator and the right operand parsed by next.
func (p *Parser) binary(left *Node, next func() *Node) *Node {
	node := &Node{Kind: KindBinaryExpr, Span: Span{Start: left.Span.Start}}
	node.Token = tokenPtr(p.advance())
	node.AddChild(left)
	node.AddChild(next())
	return p.finishNode(node)
}

func (p *Parser) parseNot() *Node {
	if p.check(TokenNot) {
		node := p.startNode(KindUnaryExpr)
		node.Token = tokenPtr(p.advance())
		node.AddChild(p.parseNot())
		return p.finishNode(node)
	}
	return p.parseComparison()
}

func isComparison(kind TokenKind) bool {
	switch kind {
	case TokenEquals, TokenNotEquals, TokenLT, TokenGT, TokenLE, TokenGE,
		TokenEq, TokenNe, TokenLt, TokenGt, TokenLe, TokenGe,
		TokenBegins, TokenMatches, TokenContains:
		return true
	}
	return false
}

func (p *Parser) parseComparison() *Node {
	left := p.parseAdditive()
	for isComparison(p.peek().Kind) && !p.failed() {
		left = p.binary(left, p.parseAdditive)
	}
	return left
}

func (p *Parser) parseAdditive() *Node {
	left := p.parseMultiplicative()
	for p.match(TokenPlus, TokenMinus) && !p.failed() {
		left = p.binary(left, p.parseMultiplicative)
	}
	return left
}

func (p *Parser) parseMultiplicative() *Node {
	left := p.parseUnary()
	for p.match(TokenStar, TokenSlash, TokenModulo) && !p.failed() {
		left = p.binary(left, p.parseUnary)
	}
	return left
}

func (p *Parser) parseUnary() *Node {
	if p.match(TokenMinus, TokenPlus) {
		node := p.startNode(KindUnaryExpr)
		node.Token = tokenPtr(p.advance())
		node.AddChild(p.parseUnary())
		return p.finishNode(node)
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary followed by member access, dynamic field
// access, calls and subscripts.
func (p *Parser) parsePostfix() *Node {
	return p.parsePostfixOf(p.parsePrimary())
}

func (p *Parser) parsePostfixOf(node *Node) *Node {
	for !p.failed() {
		switch {
		case p.check(TokenObjColon):
			p.advance()
			if !isName(p.peek()) {
				return p.errorNode("expected member name after ':', found "+describe(p.peek()), TokenIdent)
			}
			member := &Node{Kind: KindMemberAccess, Span: Span{Start: node.Span.Start}}
			member.Token = tokenPtr(p.advance())
			member.AddChild(node)
			if p.check(TokenLParen) {
				member.AddChild(p.parseArgs())
			}
			node = p.finishNode(member)
		case p.check(TokenDoubleColon):
			p.advance()
			if !isName(p.peek()) {
				return p.errorNode("expected field name after '::', found "+describe(p.peek()), TokenIdent)
			}
			field := &Node{Kind: KindDynamicField, Span: Span{Start: node.Span.Start}}
			field.Token = tokenPtr(p.advance())
			field.AddChild(node)
			node = p.finishNode(field)
		case p.check(TokenLBracket):
			sub := &Node{Kind: KindSubscript, Span: Span{Start: node.Span.Start}}
			p.advance()
			sub.AddChild(node)
			sub.AddChild(p.parseExpression())
			if p.check(TokenFor) {
				p.advance()
				sub.AddChild(p.parseExpression())
			}
			p.expect(TokenRBracket, "after subscript")
			node = p.finishNode(sub)
		case p.check(TokenLParen) && (node.Kind == KindThisObject || node.Kind == KindSuper):
			// THIS-OBJECT(args) and SUPER(args) in a constructor.
			call := &Node{Kind: KindCallExpr, Span: Span{Start: node.Span.Start}}
			call.Token = node.Token
			call.AddChild(node)
			call.AddChild(p.parseArgs())
			node = p.finishNode(call)
		default:
			return node
		}
	}
	return node
}

// startsExpression reports whether tok can begin an expression.
func startsExpression(tok Token) bool {
	switch tok.Kind {
	case TokenNumber, TokenString, TokenUnknownValue, TokenLParen, TokenMinus, TokenPlus,
		TokenNot, TokenTrue, TokenFalse, TokenYes, TokenNo, TokenNew, TokenCast, TokenIf,
		TokenThisObject, TokenSuper, TokenFrame, TokenBuffer, TokenTempTable, TokenDataset,
		TokenQuery, TokenStreamKw, TokenInput:
		return true
	}
	return isIdentifierLike(tok)
}

// widgetRefKinds are the keywords that turn the following name into a
// widget or object reference: FRAME f, BUFFER b, TEMP-TABLE tt.
var widgetRefKinds = []TokenKind{TokenFrame, TokenBuffer, TokenTempTable, TokenDataset, TokenQuery, TokenStreamKw}

func (p *Parser) parsePrimary() *Node {
	tok := p.peek()
	switch tok.Kind {
	case TokenNumber, TokenString, TokenUnknownValue, TokenTrue, TokenFalse, TokenYes, TokenNo:
		return p.leaf(KindLiteral)
	case TokenLParen:
		node := p.startNode(KindParenExpr)
		p.advance()
		node.AddChild(p.parseExpression())
		p.expect(TokenRParen, "to close '('")
		return p.finishNode(node)
	case TokenNew:
		return p.parseNew()
	case TokenCast:
		return p.parseCast()
	case TokenIf:
		return p.parseIfExpression()
	case TokenThisObject:
		return p.leaf(KindThisObject)
	case TokenSuper:
		return p.leaf(KindSuper)
	case TokenInput:
		// INPUT [FRAME f] field: the screen value of a field.
		node := p.startNode(KindBuiltinCall)
		node.Token = tokenPtr(p.advance())
		node.AddChild(p.parsePostfix())
		return p.finishNode(node)
	}

	if p.match(widgetRefKinds...) && isName(p.peekN(1)) {
		ref := p.leaf(KindWidgetRef)
		ref.AddChild(p.leaf(KindIdentifier))
		return p.finishNode(ref)
	}
	if p.checkWord("BROWSE") || p.checkWord("MENU") || p.checkWord("SUB-MENU") || p.checkWord("MENU-ITEM") {
		next := p.peekN(1)
		if next.Kind == TokenIdent && p.peekN(2).Kind != TokenLParen {
			ref := p.leaf(KindWidgetRef)
			ref.AddChild(p.leaf(KindIdentifier))
			return p.finishNode(ref)
		}
	}

	if !isIdentifierLike(tok) && !(p.match(TokenFirst, TokenLast, TokenExtent) && p.peekN(1).Kind == TokenLParen) {
		return p.errorNode("expected an expression, found "+describe(tok), TokenIdent)
	}
	name := tok.Upper()
	next := p.peekN(1)

	switch {
	case name == "CAN-FIND" && next.Kind == TokenLParen:
		return p.parseCanFind()
	case IsRecordFunction(name) && (next.Kind == TokenLParen || isIdentifierLike(next)):
		return p.parseRecordFunction()
	case next.Kind == TokenLParen:
		kind := KindCallExpr
		if IsBuiltinName(name) {
			kind = KindBuiltinCall
		}
		node := p.startNode(kind)
		node.Token = tokenPtr(p.advance())
		node.AddChild(p.parseArgs())
		return p.finishNode(node)
	case isNoArgBuiltin(name) || IsSystemHandle(name):
		return p.leaf(KindBuiltinCall)
	}
	return p.leaf(KindIdentifier)
}

// parseRecordFunction parses AVAILABLE customer, LOCKED(customer) and the
// other functions with a buffer operand.
func (p *Parser) parseRecordFunction() *Node {
	node := p.startNode(KindBuiltinCall)
	node.Token = tokenPtr(p.advance())
	paren := p.accept(TokenLParen) != nil
	node.AddChild(p.parseRecordRef())
	if paren {
		p.expect(TokenRParen, "after "+node.Token.Upper()+" operand")
	}
	return p.finishNode(node)
}

// parseCanFind parses CAN-FIND([FIRST|LAST] record-phrase).
func (p *Parser) parseCanFind() *Node {
	node := p.startNode(KindBuiltinCall)
	node.Token = tokenPtr(p.advance())
	p.advance()
	node.AddChild(p.parseRecordPhrase())
	p.expect(TokenRParen, "after CAN-FIND record phrase")
	return p.finishNode(node)
}

// parseNew parses NEW type(args) or the record function NEW(buffer).
func (p *Parser) parseNew() *Node {
	next := p.peekN(1)
	if next.Kind == TokenLParen || (isIdentifierLike(next) && p.peekN(2).Kind != TokenLParen) {
		return p.parseRecordFunction()
	}
	node := p.startNode(KindNewExpr)
	node.Token = tokenPtr(p.advance())
	if !isName(p.peek()) {
		return p.errorNode("expected a class name after NEW, found "+describe(p.peek()), TokenIdent)
	}
	node.AddChild(p.leaf(KindTypeName))
	if !p.check(TokenLParen) {
		return p.errorNode("expected '(' after class name", TokenLParen)
	}
	node.AddChild(p.parseArgs())
	return p.finishNode(node)
}

// parseCast parses CAST(expr, type).
func (p *Parser) parseCast() *Node {
	node := p.startNode(KindCastExpr)
	node.Token = tokenPtr(p.advance())
	if p.expect(TokenLParen, "after CAST") == nil {
		return node
	}
	node.AddChild(p.parseExpression())
	if p.expect(TokenComma, "in CAST") == nil {
		return node
	}
	if !isName(p.peek()) {
		return p.errorNode("expected a class name in CAST, found "+describe(p.peek()), TokenIdent)
	}
	node.AddChild(p.leaf(KindTypeName))
	p.expect(TokenRParen, "after CAST")
	return p.finishNode(node)
}

// parseIfExpression parses IF cond THEN expr ELSE expr.
func (p *Parser) parseIfExpression() *Node {
	node := p.startNode(KindIfExpr)
	node.Token = tokenPtr(p.advance())
	node.AddChild(p.parseExpression())
	if p.expect(TokenThen, "in IF expression") == nil {
		return node
	}
	node.AddChild(p.parseExpression())
	if p.expect(TokenElse, "in IF expression") == nil {
		return node
	}
	node.AddChild(p.parseExpression())
	return p.finishNode(node)
}

// parseArgs parses a parenthesised argument list of a call, a run or a
// constructor.
func (p *Parser) parseArgs() *Node {
	node := p.startNode(KindArgs)
	p.advance()
	for !p.check(TokenRParen) && !p.check(TokenEOF) && !p.failed() {
		node.AddChild(p.parseArgument())
		if p.accept(TokenComma) == nil {
			break
		}
	}
	p.expect(TokenRParen, "after arguments")
	return p.finishNode(node)
}

func (p *Parser) parseArgument() *Node {
	node := p.startNode(KindArgument)
	if next := p.peekN(1); p.match(TokenInput, TokenOutput, TokenInputOutput) &&
		(startsExpression(next) || next.Kind == TokenTable || next.Kind == TokenTableHandle || next.Kind == TokenDatasetHandle) {
		node.AddChild(p.leaf(KindOption))
	}
	// OUTPUT TABLE tt, INPUT-OUTPUT DATASET ds, BUFFER b.
	var mode TokenKind
	if p.match(TokenBuffer, TokenTable, TokenTableHandle, TokenDataset, TokenDatasetHandle) &&
		isName(p.peekN(1)) && p.peekN(2).Kind != TokenObjColon {
		mode = p.peek().Kind
		node.AddChild(p.leaf(KindOption))
	}
	switch mode {
	case TokenBuffer, TokenTable:
		node.AddChild(p.parseRecordRef())
	case TokenDataset:
		node.AddChild(p.parseNameRef())
	default:
		node.AddChild(p.parseExpression())
	}
	for !p.failed() {
		switch {
		case p.match(TokenAppend, TokenBind, TokenByValue, TokenByReference):
			node.AddChild(p.leaf(KindOption))
		case p.check(TokenAs):
			p.advance()
			node.AddChild(p.parseTypeSpec())
		case p.check(TokenIn):
			// DYNAMIC-FUNCTION("f" IN h).
			in := p.leaf(KindOption)
			in.AddChild(p.parseExpression())
			node.AddChild(in)
		default:
			return p.finishNode(node)
		}
	}
	return p.finishNode(node)
}
