package parser

// definitionModifiers may appear between DEFINE and the kind of thing
// defined.
var definitionModifiers = []TokenKind{
	TokenNew, TokenGlobal, TokenShared, TokenPrivate, TokenProtected, TokenPublic,
	TokenPackagePrivate, TokenPackageProtected, TokenStatic, TokenAbstract, TokenOverride,
	TokenSerializable, TokenInput, TokenOutput, TokenInputOutput, TokenReturn,
}

// parseDefine parses a DEFINE statement and dispatches on what it defines.
func (p *Parser) parseDefine() *Node {
	start := p.peek().Span.Start
	p.advance()

	mods := p.startNode(KindModifiers)
	for p.match(definitionModifiers...) || p.checkWord("NON-SERIALIZABLE") {
		mods.AddChild(p.leaf(KindOption))
	}
	mods = p.finishNode(mods)

	var node *Node
	switch {
	case p.check(TokenVariable):
		node = p.parseDefineVariable()
	case p.check(TokenParameter):
		node = p.parseDefineParameter()
	case p.check(TokenBuffer):
		node = p.parseDefineBuffer()
	case p.check(TokenTempTable), p.check(TokenWorkTable):
		node = p.parseDefineTempTable()
	case p.check(TokenDataset):
		node = p.parseDefineDataset()
	case p.check(TokenQuery):
		node = p.parseDefineQuery()
	case p.check(TokenStreamKw):
		node = p.parseDefineNamed(KindDefineStream)
	case p.check(TokenFrame):
		node = p.parseDefineNamed(KindDefineFrame)
	case p.check(TokenProperty):
		node = p.parseDefineProperty()
	case p.check(TokenEvent):
		node = p.parseDefineEvent()
	case isName(p.peek()) && isName(p.peekN(1)):
		// BUTTON, BROWSE, MENU, IMAGE, RECTANGLE, SUB-MENU, ...
		node = p.parseDefineWidget()
	default:
		return p.errorNode("unexpected "+describe(p.peek())+" after DEFINE", TokenVariable)
	}
	if p.failed() {
		return node
	}
	if len(mods.Children) > 0 {
		node.Children = append([]*Node{mods}, node.Children...)
		mods.parent = node
	}
	node.Span.Start = start
	return node
}

// parseDefineVariable parses VARIABLE name AS type | LIKE field [options].
func (p *Parser) parseDefineVariable() *Node {
	node := p.startNode(KindDefineVariable)
	p.advance()
	if !p.isIdentifierLike() {
		return p.errorNode("expected variable name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	p.parseDataTypeAndOptions(node, true)
	p.expectPeriod("after DEFINE VARIABLE")
	return p.finishNode(node)
}

// parseDataTypeAndOptions parses the AS/LIKE clause and the field options
// shared by variables, parameters, properties and temp-table fields.
func (p *Parser) parseDataTypeAndOptions(node *Node, required bool, stops ...TokenKind) {
	switch {
	case p.check(TokenAs):
		p.advance()
		node.AddChild(p.parseTypeSpec())
	case p.check(TokenLike):
		node.AddChild(p.parseLikeSpec())
	case required:
		p.errorNode("expected AS or LIKE", TokenAs, TokenLike)
		return
	}
	p.parseFieldOptions(node, stops...)
}

// parseTypeSpec parses a data type or class type after AS or RETURNS.
func (p *Parser) parseTypeSpec() *Node {
	node := p.startNode(KindTypeSpec)
	if p.check(TokenClass) {
		node.AddChild(p.leaf(KindOption))
	}
	if !isName(p.peek()) {
		return p.errorNode("expected a type name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	return p.finishNode(node)
}

func (p *Parser) parseLikeSpec() *Node {
	node := p.startNode(KindLikeSpec)
	p.advance()
	if !p.isIdentifierLike() {
		return p.errorNode("expected a field or variable after LIKE", TokenIdent)
	}
	node.AddChild(p.leaf(KindIdentifier))
	if p.checkWord("VALIDATE") {
		node.AddChild(p.leaf(KindOption))
	}
	return p.finishNode(node)
}

// parseFieldOptions parses options such as INITIAL, EXTENT, FORMAT, LABEL
// and NO-UNDO up to the period or a stop token. Unknown option words are
// kept as they are.
func (p *Parser) parseFieldOptions(node *Node, stops ...TokenKind) {
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.match(stops...) && !p.failed() {
		if len(stops) > 0 && (p.check(TokenGet) || p.check(TokenSet)) {
			return
		}
		switch {
		case p.check(TokenInitial):
			opt := p.leaf(KindOption)
			if p.check(TokenLBracket) {
				p.advance()
				for !p.check(TokenRBracket) && !p.check(TokenEOF) && !p.failed() {
					opt.AddChild(p.parseExpression())
					if p.accept(TokenComma) == nil {
						break
					}
				}
				p.expect(TokenRBracket, "after INITIAL list")
			} else {
				opt.AddChild(p.parseUnary())
			}
			node.AddChild(p.finishNode(opt))
		case p.check(TokenExtent):
			opt := p.leaf(KindOption)
			if p.check(TokenNumber) {
				opt.AddChild(p.leaf(KindLiteral))
			}
			node.AddChild(opt)
		case p.match(TokenFormat, TokenLabel, TokenColumnLabel, TokenDecimals):
			opt := p.leaf(KindOption)
			opt.AddChild(p.parseUnary())
			for opt.Token.Kind != TokenDecimals && p.check(TokenComma) {
				p.advance()
				opt.AddChild(p.parseUnary())
			}
			node.AddChild(p.finishNode(opt))
		case p.check(TokenNoUndo):
			node.AddChild(p.leaf(KindOption))
		case p.check(TokenViewAs):
			node.AddChild(p.parseViewAs(stops...))
		case p.check(TokenNot) && p.peekN(1).Upper() == "CASE-SENSITIVE":
			opt := p.leaf(KindOption)
			opt.AddChild(p.leaf(KindOption))
			node.AddChild(opt)
		case p.checkWord("SERIALIZE-NAME") || p.checkWord("XML-NODE-NAME") || p.checkWord("HELP") ||
			p.checkWord("XML-DATA-TYPE") || p.checkWord("XML-NODE-TYPE") || p.checkWord("MOUSE-POINTER") ||
			p.checkWord("BGCOLOR") || p.checkWord("FGCOLOR") || p.checkWord("FONT") || p.checkWord("CONTEXT-HELP-ID"):
			opt := p.leaf(KindOption)
			opt.AddChild(p.parseUnary())
			node.AddChild(opt)
		default:
			node.AddChild(p.leaf(KindOption))
		}
	}
}

// parseViewAs consumes a VIEW-AS phrase up to the next recognisable option.
func (p *Parser) parseViewAs(stops ...TokenKind) *Node {
	node := p.leaf(KindOption)
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.match(stops...) {
		if p.match(TokenInitial, TokenFormat, TokenLabel, TokenColumnLabel, TokenNoUndo, TokenExtent, TokenDecimals) {
			break
		}
		node.AddChild(p.leaf(KindOption))
	}
	return p.finishNode(node)
}

// parseDefineParameter parses the PARAMETER forms: a scalar, TABLE [FOR],
// TABLE-HANDLE, DATASET [FOR], DATASET-HANDLE and BUFFER x FOR table.
func (p *Parser) parseDefineParameter() *Node {
	node := p.startNode(KindDefineParameter)
	p.advance()
	if p.check(TokenBuffer) {
		return p.parseDefineBuffer()
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
		if !p.isIdentifierLike() {
			return p.errorNode("expected parameter name", TokenIdent)
		}
		node.Token = tokenPtr(p.advance())
		p.parseParameterModes(node)
	default:
		if !p.isIdentifierLike() {
			return p.errorNode("expected parameter name, found "+describe(p.peek()), TokenIdent)
		}
		node.Token = tokenPtr(p.advance())
		p.parseDataTypeAndOptions(node, true)
	}
	p.expectPeriod("after DEFINE PARAMETER")
	return p.finishNode(node)
}

// parseNameRef parses a name used as an operand, such as a dataset.
func (p *Parser) parseNameRef() *Node {
	if !p.isIdentifierLike() {
		return p.errorNode("expected a name, found "+describe(p.peek()), TokenIdent)
	}
	return p.leaf(KindIdentifier)
}

// parseDefineBuffer parses BUFFER name FOR [TEMP-TABLE] table [options].
// A parameter buffer (DEFINE PARAMETER BUFFER) arrives here as well.
func (p *Parser) parseDefineBuffer() *Node {
	node := p.startNode(KindDefineBuffer)
	p.advance()
	if !p.isIdentifierLike() {
		return p.errorNode("expected buffer name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	if p.expect(TokenFor, "in DEFINE BUFFER") == nil {
		return node
	}
	if p.check(TokenTempTable) {
		node.AddChild(p.leaf(KindOption))
	}
	node.AddChild(p.parseRecordRef())
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		opt := p.leaf(KindOption)
		if opt.Token.Kind == TokenLabel || opt.Token.Upper() == "NAMESPACE-URI" || opt.Token.Upper() == "SERIALIZE-NAME" {
			opt.AddChild(p.parseUnary())
		}
		node.AddChild(opt)
	}
	p.expectPeriod("after DEFINE BUFFER")
	return p.finishNode(node)
}

// parseDefineTempTable parses TEMP-TABLE and WORK-TABLE definitions with
// their LIKE clause, fields and indexes.
func (p *Parser) parseDefineTempTable() *Node {
	node := p.startNode(KindDefineTempTable)
	kw := p.leaf(KindOption)
	node.AddChild(kw)
	if !p.isIdentifierLike() {
		return p.errorNode("expected temp-table name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())

	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		switch {
		case p.check(TokenLike) || p.checkWord("LIKE-SEQUENTIAL"):
			like := p.startNode(KindLikeSpec)
			p.advance()
			like.AddChild(p.parseRecordRef())
			for p.check(TokenUseIndex) {
				use := p.startNode(KindUseIndex)
				p.advance()
				use.Token = tokenPtr(p.advance())
				if p.check(TokenAs) && p.peekN(1).Kind == TokenPrimary {
					use.AddChild(p.leaf(KindOption))
					use.AddChild(p.leaf(KindOption))
				}
				like.AddChild(p.finishNode(use))
			}
			node.AddChild(p.finishNode(like))
		case p.check(TokenField):
			node.AddChild(p.parseFieldDef())
		case p.check(TokenIndex):
			node.AddChild(p.parseIndexDef())
		case p.checkWord("BEFORE-TABLE") || p.checkWord("SERIALIZE-NAME") || p.checkWord("NAMESPACE-URI") ||
			p.checkWord("NAMESPACE-PREFIX") || p.checkWord("XML-NODE-NAME"):
			opt := p.leaf(KindOption)
			opt.AddChild(p.leaf(KindOption))
			node.AddChild(opt)
		default:
			node.AddChild(p.leaf(KindOption))
		}
	}
	p.expectPeriod("after DEFINE TEMP-TABLE")
	return p.finishNode(node)
}

func (p *Parser) parseFieldDef() *Node {
	node := p.startNode(KindFieldDef)
	p.advance()
	if !isName(p.peek()) {
		return p.errorNode("expected field name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	p.parseDataTypeAndOptions(node, true, TokenField, TokenIndex)
	return p.finishNode(node)
}

// parseIndexDef parses INDEX name [IS [UNIQUE] [PRIMARY] [WORD-INDEX]]
// field [ASCENDING|DESCENDING] ...
func (p *Parser) parseIndexDef() *Node {
	node := p.startNode(KindIndexDef)
	p.advance()
	if !isName(p.peek()) {
		return p.errorNode("expected index name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.match(TokenField, TokenIndex) {
		node.AddChild(p.leaf(KindOption))
	}
	return p.finishNode(node)
}

// parseDefineDataset parses DATASET name FOR buffers [DATA-RELATION ...].
func (p *Parser) parseDefineDataset() *Node {
	node := p.startNode(KindDefineDataset)
	p.advance()
	if !p.isIdentifierLike() {
		return p.errorNode("expected dataset name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	for !p.check(TokenFor) && !p.check(TokenPeriod) && !p.check(TokenEOF) {
		opt := p.leaf(KindOption)
		if p.check(TokenString) {
			opt.AddChild(p.leaf(KindLiteral))
		}
		node.AddChild(opt)
	}
	if p.expect(TokenFor, "in DEFINE DATASET") == nil {
		return node
	}
	for !p.failed() {
		node.AddChild(p.parseRecordRef())
		if p.accept(TokenComma) == nil {
			break
		}
	}
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		switch {
		case p.check(TokenDataRelation) || p.checkWord("PARENT-ID-RELATION"):
			node.AddChild(p.parseDataRelation())
		default:
			node.AddChild(p.leaf(KindOption))
		}
	}
	p.expectPeriod("after DEFINE DATASET")
	return p.finishNode(node)
}

// parseDataRelation parses DATA-RELATION [name] FOR parent, child
// [RELATION-FIELDS (pf, cf, ...)] [options] and PARENT-ID-RELATION [name]
// FOR parent, child PARENT-ID-FIELD f [PARENT-FIELDS-BEFORE (...)]
// [PARENT-FIELDS-AFTER (...)].
func (p *Parser) parseDataRelation() *Node {
	node := p.startNode(KindDataRelation)
	p.advance()
	if p.isIdentifierLike() {
		node.Token = tokenPtr(p.advance())
	}
	if p.expect(TokenFor, "in DATA-RELATION") == nil {
		return node
	}
	node.AddChild(p.parseRecordRef())
	p.expect(TokenComma, "between DATA-RELATION buffers")
	node.AddChild(p.parseRecordRef())
	for !p.check(TokenPeriod) && !p.check(TokenDataRelation) && !p.checkWord("PARENT-ID-RELATION") && !p.check(TokenEOF) && !p.failed() {
		switch {
		case p.check(TokenRelationFields), p.checkWord("PARENT-FIELDS-BEFORE"), p.checkWord("PARENT-FIELDS-AFTER"):
			node.AddChild(p.parseFieldList())
		case p.checkWord("PARENT-ID-FIELD"):
			opt := p.leaf(KindOption)
			if !isName(p.peek()) {
				return p.errorNode("expected field name after PARENT-ID-FIELD, found "+describe(p.peek()), TokenIdent)
			}
			opt.AddChild(p.leaf(KindOption))
			node.AddChild(p.finishNode(opt))
		default:
			node.AddChild(p.leaf(KindOption))
		}
	}
	return p.finishNode(node)
}

// parseDefineQuery parses QUERY name FOR buffer [, buffer] [options].
func (p *Parser) parseDefineQuery() *Node {
	node := p.startNode(KindDefineQuery)
	p.advance()
	if !p.isIdentifierLike() {
		return p.errorNode("expected query name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	if p.expect(TokenFor, "in DEFINE QUERY") == nil {
		return node
	}
	for !p.failed() {
		node.AddChild(p.parseRecordRef())
		if p.checkWord("FIELDS") || p.checkWord("EXCEPT") {
			node.AddChild(p.parseFieldList())
		}
		if p.accept(TokenComma) == nil {
			break
		}
	}
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		node.AddChild(p.leaf(KindOption))
	}
	p.expectPeriod("after DEFINE QUERY")
	return p.finishNode(node)
}

// parseDefineNamed parses STREAM and FRAME definitions: a name followed by
// options that are kept verbatim.
func (p *Parser) parseDefineNamed(kind NodeKind) *Node {
	node := p.startNode(kind)
	p.advance()
	if !p.isIdentifierLike() {
		return p.errorNode("expected a name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		node.AddChild(p.leaf(KindOption))
	}
	p.expectPeriod("after DEFINE")
	return p.finishNode(node)
}

// parseDefineWidget parses DEFINE <widget-type> name [options]. The widget
// type is the first child.
func (p *Parser) parseDefineWidget() *Node {
	node := p.startNode(KindDefineWidget)
	node.AddChild(p.leaf(KindOption))
	node.Token = tokenPtr(p.advance())
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		node.AddChild(p.leaf(KindOption))
	}
	p.expectPeriod("after DEFINE")
	return p.finishNode(node)
}

// parseDefineProperty parses PROPERTY name AS type [options] followed by
// its GET and SET accessors.
func (p *Parser) parseDefineProperty() *Node {
	node := p.startNode(KindDefineProperty)
	p.advance()
	if !isName(p.peek()) {
		return p.errorNode("expected property name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	p.parseDataTypeAndOptions(node, true, TokenPrivate, TokenProtected, TokenPublic, TokenPackagePrivate, TokenPackageProtected)

	for !p.failed() {
		mods := p.startNode(KindModifiers)
		for p.match(TokenPrivate, TokenProtected, TokenPublic, TokenPackagePrivate, TokenPackageProtected) {
			mods.AddChild(p.leaf(KindOption))
		}
		if !p.check(TokenGet) && !p.check(TokenSet) {
			if len(mods.Children) > 0 {
				return p.errorNode("expected GET or SET after access modifier", TokenGet, TokenSet)
			}
			break
		}
		node.AddChild(p.parsePropertyAccessor(p.finishNode(mods)))
	}
	if len(node.ChildrenOfKind(KindPropertyAccessor)) == 0 {
		p.expectPeriod("after DEFINE PROPERTY")
	}
	return p.finishNode(node)
}

// parsePropertyAccessor parses GET. | GET(): body END [GET]. and the SET
// forms.
func (p *Parser) parsePropertyAccessor(mods *Node) *Node {
	node := p.startNode(KindPropertyAccessor)
	node.Token = tokenPtr(p.advance())
	if len(mods.Children) > 0 {
		node.AddChild(mods)
	}
	if p.check(TokenPeriod) {
		p.advance()
		return p.finishNode(node)
	}
	if p.check(TokenLParen) {
		node.AddChild(p.parseParameterList())
	}
	if !p.expectBlockColon("after " + node.Token.Literal) {
		return node
	}
	node.AddChild(p.parseCodeBlock())
	p.parseEnd(node.Token.Literal)
	return p.finishNode(node)
}

// parseDefineEvent parses EVENT name [SIGNATURE] VOID (params) | DELEGATE.
func (p *Parser) parseDefineEvent() *Node {
	node := p.startNode(KindDefineEvent)
	p.advance()
	if !isName(p.peek()) {
		return p.errorNode("expected event name, found "+describe(p.peek()), TokenIdent)
	}
	node.Token = tokenPtr(p.advance())
	for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.failed() {
		if p.check(TokenLParen) {
			node.AddChild(p.parseParameterList())
			continue
		}
		node.AddChild(p.leaf(KindOption))
	}
	p.expectPeriod("after DEFINE EVENT")
	return p.finishNode(node)
}
