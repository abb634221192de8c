package parser

// statementForm describes a statement parsed by its items instead of a
// grammar of its own. The items of a resolved form are expressions and
// option words, so the names in them are resolved like those of DISPLAY.
// An opaque form keeps every word as an option.
type statementForm struct {
	minAbbr int
	words   map[string]optionArg
	opaque  bool
}

// frameWords are the option words of the frame statements on top of
// formatWords.
var frameWords = withWords(formatWords, map[string]optionArg{
	"ALL": argNone, "NO-PAUSE": argNone, "MESSAGE": argNone, "GO-ON": argNone,
	"AUTO-RETURN": argNone, "TRIGGERS": argNone, "DUMP": argNone, "LOAD": argNone,
	"ALLOW-REPLICATION": argNone, "PAUSE": argExpr, "HEADER": argNone, "BACKGROUND": argNone,
	"EDITING": argNone, "BROWSE": argName, "MENU": argName,
	"OF": argNone, "NO-VALIDATE": argNone,
})

// transferWords are the option words of EXPORT and IMPORT.
var transferWords = withWords(formatWords, map[string]optionArg{
	"DELIMITER": argExpr, "NO-LOBS": argNone, "STREAM-HANDLE": argExpr,
})

var (
	frameForm    = statementForm{words: frameWords}
	transferForm = statementForm{words: transferWords}
	opaqueForm   = statementForm{opaque: true}
)

var statementForms = map[string]statementForm{
	"UPDATE": frameForm, "ENABLE": frameForm, "DISABLE": frameForm, "PROMPT-FOR": {minAbbr: 6, words: frameWords},
	"SET": frameForm, "INSERT": frameForm, "HIDE": frameForm, "VIEW": frameForm,
	"CLEAR": frameForm, "DOWN": frameForm, "UP": frameForm, "UNDERLINE": {minAbbr: 6, words: frameWords},
	"FORM": frameForm, "NEXT-PROMPT": frameForm, "VALIDATE": frameForm, "PAGE": frameForm,
	"BELL": frameForm, "READKEY": frameForm, "EXPORT": transferForm, "IMPORT": transferForm,

	"PROCESS": opaqueForm, "ROUTINE-LEVEL": opaqueForm, "BLOCK-LEVEL": opaqueForm, "STATUS": opaqueForm,
	"SYSTEM-DIALOG": opaqueForm, "SYSTEM-HELP": opaqueForm, "OS-COMMAND": opaqueForm, "OS-DELETE": opaqueForm,
	"OS-COPY": opaqueForm, "OS-RENAME": opaqueForm, "OS-CREATE-DIR": opaqueForm, "OS-APPEND": opaqueForm,
	"UNIX": opaqueForm, "DOS": opaqueForm, "COMPILE": opaqueForm, "CONNECT": opaqueForm,
	"DISCONNECT": opaqueForm, "USE": opaqueForm, "LOAD": opaqueForm, "UNLOAD": opaqueForm,
	"SAVE": opaqueForm, "PUT-KEY-VALUE": opaqueForm, "GET-KEY-VALUE": opaqueForm, "TRANSACTION-MODE": opaqueForm,
	"TRIGGER": opaqueForm, "REPOSITION": opaqueForm, "BUFFER-COMPARE": opaqueForm, "RAW-TRANSFER": opaqueForm,
	"SEEK": opaqueForm, "DICTIONARY": {minAbbr: 4, opaque: true}, "DDE": opaqueForm, "COLOR": opaqueForm,
	"CHOOSE": opaqueForm, "SCROLL": opaqueForm, "ACCUMULATE": {minAbbr: 5, opaque: true}, "SHOW-STATS": opaqueForm,
}

var statementFormNames = spellings(formAbbreviations())

func formAbbreviations() map[string]int {
	out := make(map[string]int, len(statementForms))
	for name, form := range statementForms {
		out[name] = form.minAbbr
	}
	return out
}

func withWords(base, extra map[string]optionArg) map[string]optionArg {
	out := make(map[string]optionArg, len(base)+len(extra))
	for word, arg := range base {
		out[word] = arg
	}
	for word, arg := range extra {
		out[word] = arg
	}
	return out
}

// lookupStatementForm returns the form of the statement tok starts, if tok
// names one.
func lookupStatementForm(tok Token) (statementForm, bool) {
	if !isName(tok) {
		return statementForm{}, false
	}
	name, ok := statementFormNames[tok.Upper()]
	if !ok {
		return statementForm{}, false
	}
	return statementForms[name], true
}

// parseGenericStatement parses a statement described by form up to its
// period.
func (p *Parser) parseGenericStatement(form statementForm) *Node {
	node := p.startNode(KindGenericStmt)
	node.Token = tokenPtr(p.advance())
	if form.opaque {
		for !p.check(TokenPeriod) && !p.check(TokenEOF) && !p.check(TokenLexColon) {
			node.AddChild(p.leaf(KindOption))
		}
	} else {
		p.parseStreamOption(node)
		p.parseItems(node, form.words, nil)
		p.parseNoError(node)
	}
	if p.check(TokenLexColon) {
		return p.errorNode("unexpected block header in " + node.Token.Literal + " statement")
	}
	p.expectPeriod("after " + node.Token.Literal + " statement")
	return p.finishNode(node)
}
