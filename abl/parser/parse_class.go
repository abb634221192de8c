package parser

var memberModifiers = []TokenKind{
	TokenPrivate, TokenProtected, TokenPublic, TokenPackagePrivate, TokenPackageProtected,
	TokenStatic, TokenAbstract, TokenOverride, TokenFinal,
}

// parseUsing parses USING name[.*] [FROM ASSEMBLY|PROPATH].
func (p *Parser) parseUsing() *Node {
	node := p.startNode(KindUsingStmt)
	p.advance()
	if !isName(p.peek()) {
		return p.errorNode("expected a type or package name after USING", TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	if p.accept(TokenFrom) != nil {
		if !isName(p.peek()) {
			return p.errorNode("expected ASSEMBLY or PROPATH after FROM", TokenPropath)
		}
		node.AddChild(p.leaf(KindOption))
	}
	p.expectPeriod("after USING")
	return p.finishNode(node)
}

// parseClass parses CLASS name [INHERITS super] [IMPLEMENTS i, ...]
// [options]: members END [CLASS].
func (p *Parser) parseClass() *Node {
	node := p.startNode(KindClassDecl)
	p.advance()
	if !isName(p.peek()) {
		return p.errorNode("expected class name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())

	mods := p.startNode(KindModifiers)
	for !p.check(TokenLexColon) && !p.check(TokenObjColon) && !p.check(TokenEOF) && !p.failed() {
		switch {
		case p.check(TokenInherits):
			clause := p.startNode(KindInheritsClause)
			p.advance()
			clause.AddChild(p.parseTypeName())
			node.AddChild(p.finishNode(clause))
		case p.check(TokenImplements):
			node.AddChild(p.parseTypeNameList(KindImplementsClause))
		case p.checkWord("USE-WIDGET-POOL") || p.match(TokenAbstract, TokenFinal, TokenSerializable, TokenPublic):
			mods.AddChild(p.leaf(KindOption))
		default:
			return p.errorNode("unexpected "+describe(p.peek())+" in CLASS header", TokenLexColon)
		}
	}
	if len(mods.Children) > 0 {
		node.AddChild(p.finishNode(mods))
	}
	if !p.expectBlockColon("after CLASS header") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd("CLASS")
	return p.finishNode(node)
}

// parseInterface parses INTERFACE name [INHERITS i, ...]: members END.
func (p *Parser) parseInterface() *Node {
	node := p.startNode(KindInterfaceDecl)
	p.advance()
	if !isName(p.peek()) {
		return p.errorNode("expected interface name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	if p.check(TokenInherits) {
		node.AddChild(p.parseTypeNameList(KindInheritsClause))
	}
	if !p.expectBlockColon("after INTERFACE header") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd("INTERFACE")
	return p.finishNode(node)
}

func (p *Parser) parseTypeName() *Node {
	if !isName(p.peek()) {
		return p.errorNode("expected a type name, found "+describe(p.peek()), TokenIdent)
	}
	return p.leaf(KindTypeName)
}

func (p *Parser) parseTypeNameList(kind NodeKind) *Node {
	node := p.startNode(kind)
	p.advance()
	for !p.failed() {
		node.AddChild(p.parseTypeName())
		if p.accept(TokenComma) == nil {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseMemberModifiers() *Node {
	mods := p.startNode(KindModifiers)
	for p.match(memberModifiers...) {
		mods.AddChild(p.leaf(KindOption))
	}
	return p.finishNode(mods)
}

// parseMethod parses METHOD [modifiers] VOID|type [EXTENT [n]] name
// (params) followed by a period for abstract and interface methods or a
// body.
func (p *Parser) parseMethod() *Node {
	node := p.startNode(KindMethodDecl)
	p.advance()
	if mods := p.parseMemberModifiers(); len(mods.Children) > 0 {
		node.AddChild(mods)
	}
	if p.check(TokenVoid) {
		ret := p.startNode(KindTypeSpec)
		ret.Token = tokenPtr(p.advance())
		node.AddChild(p.finishNode(ret))
	} else {
		node.AddChild(p.parseTypeSpec())
	}
	if p.check(TokenExtent) {
		opt := p.leaf(KindOption)
		if p.check(TokenNumber) {
			opt.AddChild(p.leaf(KindLiteral))
		}
		node.AddChild(opt)
	}
	if !isName(p.peek()) {
		return p.errorNode("expected method name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	if !p.check(TokenLParen) {
		return p.errorNode("expected '(' after method name", TokenLParen)
	}
	node.AddChild(p.parseParameterList())
	if p.accept(TokenPeriod) != nil {
		return p.finishNode(node)
	}
	if !p.expectBlockColon("after METHOD header") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd("METHOD")
	return p.finishNode(node)
}

// parseConstructor parses CONSTRUCTOR [modifiers] name (params): body END.
func (p *Parser) parseConstructor() *Node {
	return p.parseSpecialMember(KindConstructorDecl, "CONSTRUCTOR")
}

// parseDestructor parses DESTRUCTOR [PUBLIC] name (): body END.
func (p *Parser) parseDestructor() *Node {
	return p.parseSpecialMember(KindDestructorDecl, "DESTRUCTOR")
}

func (p *Parser) parseSpecialMember(kind NodeKind, word string) *Node {
	node := p.startNode(kind)
	p.advance()
	if mods := p.parseMemberModifiers(); len(mods.Children) > 0 {
		node.AddChild(mods)
	}
	if !isName(p.peek()) {
		return p.errorNode("expected "+word+" name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	if !p.check(TokenLParen) {
		return p.errorNode("expected '(' after "+word+" name", TokenLParen)
	}
	node.AddChild(p.parseParameterList())
	if !p.expectBlockColon("after " + word + " header") {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd(word)
	return p.finishNode(node)
}
