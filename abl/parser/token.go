package parser

import (
	"fmt"
	"strings"
)

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenComment

	// Literals and names
	TokenIdent
	TokenNumber
	TokenString
	TokenUnknownValue

	// Preprocessor directive text (&GLOBAL-DEFINE, &IF ... &THEN, ...)
	TokenPreprocessor

	// Punctuation and operators
	TokenPeriod
	TokenComma
	TokenLexColon
	TokenObjColon
	TokenDoubleColon
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenEquals
	TokenNotEquals
	TokenLT
	TokenGT
	TokenLE
	TokenGE
	TokenAt

	firstKeyword
)

// Keywords. Their String() is the upper-case keyword text.
const (
	TokenAbstract TokenKind = iota + firstKeyword
	TokenAlertBox
	TokenAnd
	TokenAppend
	TokenApply
	TokenAs
	TokenAscending
	TokenAssign
	TokenBegins
	TokenBind
	TokenBreak
	TokenBuffer
	TokenBufferCopy
	TokenBy
	TokenByReference
	TokenByValue
	TokenCase
	TokenCast
	TokenCatch
	TokenClass
	TokenClose
	TokenColumnLabel
	TokenConstructor
	TokenContains
	TokenCopyLob
	TokenCreate
	TokenDataRelation
	TokenDataset
	TokenDatasetHandle
	TokenDecimals
	TokenDefine
	TokenDelete
	TokenDescending
	TokenDestructor
	TokenDisplay
	TokenDo
	TokenEach
	TokenElse
	TokenEmpty
	TokenEnd
	TokenEndkey
	TokenEq
	TokenErrorKw
	TokenEvent
	TokenExclusiveLock
	TokenExtent
	TokenFalse
	TokenField
	TokenFinal
	TokenFinally
	TokenFind
	TokenFirst
	TokenFor
	TokenFormat
	TokenForward
	TokenFrame
	TokenFrom
	TokenFunction
	TokenGe
	TokenGet
	TokenGlobal
	TokenGt
	TokenIf
	TokenImplements
	TokenIn
	TokenIndex
	TokenInherits
	TokenInitial
	TokenInput
	TokenInputOutput
	TokenInterface
	TokenIs
	TokenLabel
	TokenLast
	TokenLe
	TokenLeave
	TokenLike
	TokenLt
	TokenMatches
	TokenMessage
	TokenMethod
	TokenModulo
	TokenNe
	TokenNew
	TokenNext
	TokenNo
	TokenNoError
	TokenNoLock
	TokenNoUndo
	TokenNoWait
	TokenNot
	TokenObject
	TokenOf
	TokenOn
	TokenOpen
	TokenOr
	TokenOtherwise
	TokenOutput
	TokenOverride
	TokenPackagePrivate
	TokenPackageProtected
	TokenParameter
	TokenPause
	TokenPersistent
	TokenPrev
	TokenPrimary
	TokenPrivate
	TokenProcedure
	TokenPropath
	TokenProperty
	TokenProtected
	TokenPublic
	TokenPublish
	TokenPut
	TokenQuery
	TokenQuit
	TokenRelationFields
	TokenRelease
	TokenRepeat
	TokenRetry
	TokenReturn
	TokenReturns
	TokenRun
	TokenSerializable
	TokenSet
	TokenShareLock
	TokenShared
	TokenSkip
	TokenStatic
	TokenStop
	TokenStreamKw
	TokenSubscribe
	TokenSuper
	TokenTable
	TokenTableHandle
	TokenTempTable
	TokenThen
	TokenThisObject
	TokenThrow
	TokenTo
	TokenTransaction
	TokenTrue
	TokenUndo
	TokenUnique
	TokenUnsubscribe
	TokenUseIndex
	TokenUsing
	TokenVariable
	TokenViewAs
	TokenVoid
	TokenWaitFor
	TokenWhen
	TokenWhere
	TokenWhile
	TokenWidgetPool
	TokenWith
	TokenWorkTable
	TokenYes

	lastKeyword
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:          "EOF",
	TokenError:        "Error",
	TokenWhitespace:   "WS",
	TokenComment:      "COMMENT",
	TokenIdent:        "ID",
	TokenNumber:       "NUMBER",
	TokenString:       "QSTRING",
	TokenUnknownValue: "UNKNOWNVALUE",
	TokenPreprocessor: "PREPROCESSDIRECTIVE",
	TokenPeriod:       "PERIOD",
	TokenComma:        "COMMA",
	TokenLexColon:     "LEXCOLON",
	TokenObjColon:     "OBJCOLON",
	TokenDoubleColon:  "DOUBLECOLON",
	TokenLParen:       "LEFTPAREN",
	TokenRParen:       "RIGHTPAREN",
	TokenLBracket:     "LEFTBRACE",
	TokenRBracket:     "RIGHTBRACE",
	TokenPlus:         "PLUS",
	TokenMinus:        "MINUS",
	TokenStar:         "STAR",
	TokenSlash:        "SLASH",
	TokenEquals:       "EQUAL",
	TokenNotEquals:    "GTORLT",
	TokenLT:           "LEFTANGLE",
	TokenGT:           "RIGHTANGLE",
	TokenLE:           "LTOREQUAL",
	TokenGE:           "GTOREQUAL",
	TokenAt:           "LEXAT",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	if k.IsKeyword() {
		return keywordTexts[k]
	}
	return "Unknown"
}

func (k TokenKind) IsKeyword() bool {
	return k > firstKeyword-1 && k < lastKeyword
}

// IsHidden reports whether tokens of this kind carry no syntax. Whitespace,
// comments and directive text stay in the stream for formatting-preserving tools.
func (k TokenKind) IsHidden() bool {
	return k == TokenWhitespace || k == TokenComment || k == TokenPreprocessor
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

func (t Token) Hidden() bool {
	return t.Kind.IsHidden()
}

func (t Token) Line() int {
	return t.Span.Start.Line
}

func (t Token) File() string {
	return t.Span.Start.File
}

// Upper returns the literal in upper case, the canonical form for names.
func (t Token) Upper() string {
	return strings.ToUpper(t.Literal)
}

type keyword struct {
	kind     TokenKind
	text     string
	minAbbr  int
	reserved bool
}

// The keyword table. minAbbr > 0 lets the keyword be abbreviated down to that
// many characters. Unreserved keywords may also be used as identifiers.
var keywordTable = []keyword{
	{TokenAbstract, "ABSTRACT", 0, false},
	{TokenAlertBox, "ALERT-BOX", 0, false},
	{TokenAnd, "AND", 0, true},
	{TokenAppend, "APPEND", 0, false},
	{TokenApply, "APPLY", 0, true},
	{TokenAs, "AS", 0, true},
	{TokenAscending, "ASCENDING", 3, false},
	{TokenAssign, "ASSIGN", 0, true},
	{TokenBegins, "BEGINS", 0, true},
	{TokenBind, "BIND", 0, false},
	{TokenBreak, "BREAK", 0, true},
	{TokenBuffer, "BUFFER", 0, true},
	{TokenBufferCopy, "BUFFER-COPY", 0, true},
	{TokenBy, "BY", 0, true},
	{TokenByReference, "BY-REFERENCE", 0, false},
	{TokenByValue, "BY-VALUE", 0, false},
	{TokenCase, "CASE", 0, true},
	{TokenCast, "CAST", 0, false},
	{TokenCatch, "CATCH", 0, false},
	{TokenClass, "CLASS", 0, false},
	{TokenClose, "CLOSE", 0, true},
	{TokenColumnLabel, "COLUMN-LABEL", 0, true},
	{TokenConstructor, "CONSTRUCTOR", 0, false},
	{TokenContains, "CONTAINS", 0, true},
	{TokenCopyLob, "COPY-LOB", 0, true},
	{TokenCreate, "CREATE", 0, true},
	{TokenDataRelation, "DATA-RELATION", 8, false},
	{TokenDataset, "DATASET", 0, true},
	{TokenDatasetHandle, "DATASET-HANDLE", 0, true},
	{TokenDecimals, "DECIMALS", 0, true},
	{TokenDefine, "DEFINE", 3, true},
	{TokenDelete, "DELETE", 3, true},
	{TokenDescending, "DESCENDING", 4, true},
	{TokenDestructor, "DESTRUCTOR", 0, false},
	{TokenDisplay, "DISPLAY", 4, true},
	{TokenDo, "DO", 0, true},
	{TokenEach, "EACH", 0, true},
	{TokenElse, "ELSE", 0, true},
	{TokenEmpty, "EMPTY", 0, false},
	{TokenEnd, "END", 0, true},
	{TokenEndkey, "ENDKEY", 0, false},
	{TokenEq, "EQ", 0, true},
	{TokenErrorKw, "ERROR", 0, false},
	{TokenEvent, "EVENT", 0, false},
	{TokenExclusiveLock, "EXCLUSIVE-LOCK", 9, true},
	{TokenExtent, "EXTENT", 0, true},
	{TokenFalse, "FALSE", 0, true},
	{TokenField, "FIELD", 0, true},
	{TokenFinal, "FINAL", 0, false},
	{TokenFinally, "FINALLY", 0, false},
	{TokenFind, "FIND", 0, true},
	{TokenFirst, "FIRST", 0, true},
	{TokenFor, "FOR", 0, true},
	{TokenFormat, "FORMAT", 4, true},
	{TokenForward, "FORWARD", 0, false},
	{TokenFrame, "FRAME", 0, true},
	{TokenFrom, "FROM", 0, true},
	{TokenFunction, "FUNCTION", 0, true},
	{TokenGe, "GE", 0, true},
	{TokenGet, "GET", 0, false},
	{TokenGlobal, "GLOBAL", 0, true},
	{TokenGt, "GT", 0, true},
	{TokenIf, "IF", 0, true},
	{TokenImplements, "IMPLEMENTS", 0, false},
	{TokenIn, "IN", 0, true},
	{TokenIndex, "INDEX", 0, false},
	{TokenInherits, "INHERITS", 0, false},
	{TokenInitial, "INITIAL", 4, true},
	{TokenInput, "INPUT", 0, true},
	{TokenInputOutput, "INPUT-OUTPUT", 0, true},
	{TokenInterface, "INTERFACE", 0, false},
	{TokenIs, "IS", 0, true},
	{TokenLabel, "LABEL", 0, true},
	{TokenLast, "LAST", 0, true},
	{TokenLe, "LE", 0, true},
	{TokenLeave, "LEAVE", 0, true},
	{TokenLike, "LIKE", 0, true},
	{TokenLt, "LT", 0, true},
	{TokenMatches, "MATCHES", 0, true},
	{TokenMessage, "MESSAGE", 0, true},
	{TokenMethod, "METHOD", 0, false},
	{TokenModulo, "MODULO", 3, true},
	{TokenNe, "NE", 0, true},
	{TokenNew, "NEW", 0, true},
	{TokenNext, "NEXT", 0, true},
	{TokenNo, "NO", 0, true},
	{TokenNoError, "NO-ERROR", 0, true},
	{TokenNoLock, "NO-LOCK", 0, true},
	{TokenNoUndo, "NO-UNDO", 0, true},
	{TokenNoWait, "NO-WAIT", 0, true},
	{TokenNot, "NOT", 0, true},
	{TokenObject, "OBJECT", 0, false},
	{TokenOf, "OF", 0, true},
	{TokenOn, "ON", 0, true},
	{TokenOpen, "OPEN", 0, true},
	{TokenOr, "OR", 0, true},
	{TokenOtherwise, "OTHERWISE", 0, true},
	{TokenOutput, "OUTPUT", 0, true},
	{TokenOverride, "OVERRIDE", 0, false},
	{TokenPackagePrivate, "PACKAGE-PRIVATE", 0, false},
	{TokenPackageProtected, "PACKAGE-PROTECTED", 0, false},
	{TokenParameter, "PARAMETER", 5, true},
	{TokenPause, "PAUSE", 0, true},
	{TokenPersistent, "PERSISTENT", 0, true},
	{TokenPrev, "PREV", 0, false},
	{TokenPrimary, "PRIMARY", 0, false},
	{TokenPrivate, "PRIVATE", 0, false},
	{TokenProcedure, "PROCEDURE", 5, true},
	{TokenPropath, "PROPATH", 0, false},
	{TokenProperty, "PROPERTY", 0, false},
	{TokenProtected, "PROTECTED", 0, false},
	{TokenPublic, "PUBLIC", 0, false},
	{TokenPublish, "PUBLISH", 0, true},
	{TokenPut, "PUT", 0, true},
	{TokenQuery, "QUERY", 0, true},
	{TokenQuit, "QUIT", 0, true},
	{TokenRelationFields, "RELATION-FIELDS", 0, false},
	{TokenRelease, "RELEASE", 0, true},
	{TokenRepeat, "REPEAT", 0, true},
	{TokenRetry, "RETRY", 0, false},
	{TokenReturn, "RETURN", 0, true},
	{TokenReturns, "RETURNS", 0, true},
	{TokenRun, "RUN", 0, true},
	{TokenSerializable, "SERIALIZABLE", 0, false},
	{TokenSet, "SET", 0, false},
	{TokenShareLock, "SHARE-LOCK", 5, true},
	{TokenShared, "SHARED", 0, true},
	{TokenSkip, "SKIP", 0, true},
	{TokenStatic, "STATIC", 0, false},
	{TokenStop, "STOP", 0, true},
	{TokenStreamKw, "STREAM", 0, true},
	{TokenSubscribe, "SUBSCRIBE", 0, true},
	{TokenSuper, "SUPER", 0, false},
	{TokenTable, "TABLE", 0, true},
	{TokenTableHandle, "TABLE-HANDLE", 0, true},
	{TokenTempTable, "TEMP-TABLE", 0, true},
	{TokenThen, "THEN", 0, true},
	{TokenThisObject, "THIS-OBJECT", 0, true},
	{TokenThrow, "THROW", 0, false},
	{TokenTo, "TO", 0, true},
	{TokenTransaction, "TRANSACTION", 5, true},
	{TokenTrue, "TRUE", 0, true},
	{TokenUndo, "UNDO", 0, true},
	{TokenUnique, "UNIQUE", 0, false},
	{TokenUnsubscribe, "UNSUBSCRIBE", 0, true},
	{TokenUseIndex, "USE-INDEX", 0, true},
	{TokenUsing, "USING", 0, false},
	{TokenVariable, "VARIABLE", 3, true},
	{TokenViewAs, "VIEW-AS", 0, true},
	{TokenVoid, "VOID", 0, false},
	{TokenWaitFor, "WAIT-FOR", 0, true},
	{TokenWhen, "WHEN", 0, true},
	{TokenWhere, "WHERE", 0, true},
	{TokenWhile, "WHILE", 0, true},
	{TokenWidgetPool, "WIDGET-POOL", 0, true},
	{TokenWith, "WITH", 0, true},
	{TokenWorkTable, "WORK-TABLE", 0, true},
	{TokenYes, "YES", 0, true},
}

var (
	keywords     = make(map[string]TokenKind)
	keywordTexts = make(map[TokenKind]string)
	reserved     = make(map[TokenKind]bool)
)

func init() {
	for _, kw := range keywordTable {
		keywordTexts[kw.kind] = kw.text
		reserved[kw.kind] = kw.reserved
		keywords[kw.text] = kw.kind
		if kw.minAbbr > 0 {
			for n := kw.minAbbr; n < len(kw.text); n++ {
				abbr := kw.text[:n]
				if _, taken := keywords[abbr]; !taken {
					keywords[abbr] = kw.kind
				}
			}
		}
	}
	// Alternate spellings.
	keywords["WORKFILE"] = TokenWorkTable
	keywords["WORK-FILE"] = TokenWorkTable
	keywords["EXCLUSIVE"] = TokenExclusiveLock
	keywords["INIT"] = TokenInitial
}

// LookupKeyword maps an identifier to its keyword kind, ignoring case.
// Qualified names (containing a dot) are never keywords.
func LookupKeyword(ident string) TokenKind {
	if strings.ContainsRune(ident, '.') {
		return TokenIdent
	}
	if kind, ok := keywords[strings.ToUpper(ident)]; ok {
		return kind
	}
	return TokenIdent
}

// IsReserved reports whether a keyword can not be used as an identifier.
func IsReserved(kind TokenKind) bool {
	return reserved[kind]
}
