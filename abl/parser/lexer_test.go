package parser

import (
	"testing"

	"github.com/dhamidi/proparse/abl/diag"
)

// visibleKinds lexes input and returns the kinds of the non-hidden tokens,
// EOF included.
func visibleKinds(t *testing.T, input string) []TokenKind {
	t.Helper()
	lexer := NewLexer([]byte(input), "test.p")
	var got []TokenKind
	for {
		tok := lexer.NextToken()
		if err := lexer.Err(); err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		if !tok.Hidden() {
			got = append(got, tok.Kind)
		}
		if tok.Kind == TokenEOF {
			return got
		}
	}
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"", []TokenKind{TokenEOF}},
		{"DEFINE VARIABLE x AS CHARACTER NO-UNDO.", []TokenKind{TokenDefine, TokenVariable, TokenIdent, TokenAs, TokenIdent, TokenNoUndo, TokenPeriod, TokenEOF}},
		{"def var i as int init 5.", []TokenKind{TokenDefine, TokenVariable, TokenIdent, TokenAs, TokenIdent, TokenInitial, TokenNumber, TokenPeriod, TokenEOF}},
		{"disp x.", []TokenKind{TokenDisplay, TokenIdent, TokenPeriod, TokenEOF}},
		{"x:y", []TokenKind{TokenIdent, TokenObjColon, TokenIdent, TokenEOF}},
		{"x::y", []TokenKind{TokenIdent, TokenDoubleColon, TokenIdent, TokenEOF}},
		{"DO:\n", []TokenKind{TokenDo, TokenLexColon, TokenEOF}},
		{`"abc":U`, []TokenKind{TokenString, TokenEOF}},
		{`'it''s'`, []TokenKind{TokenString, TokenEOF}},
		{"a = b <> c <= d >= e < f > g", []TokenKind{TokenIdent, TokenEquals, TokenIdent, TokenNotEquals, TokenIdent, TokenLE, TokenIdent, TokenGE, TokenIdent, TokenLT, TokenIdent, TokenGT, TokenIdent, TokenEOF}},
		{"x-1", []TokenKind{TokenIdent, TokenEOF}},
		{"x - 1", []TokenKind{TokenIdent, TokenMinus, TokenNumber, TokenEOF}},
		{"sports2000.customer.name", []TokenKind{TokenIdent, TokenEOF}},
		{"USING Progress.Lang.*.", []TokenKind{TokenUsing, TokenIdent, TokenPeriod, TokenEOF}},
		{"? @", []TokenKind{TokenUnknownValue, TokenAt, TokenEOF}},
		{"/* a /* nested */ b */ DISPLAY", []TokenKind{TokenDisplay, TokenEOF}},
		{"// line\nDISPLAY", []TokenKind{TokenDisplay, TokenEOF}},
		{"0x1F 3.14 .5", []TokenKind{TokenNumber, TokenNumber, TokenNumber, TokenEOF}},
		{"( ) [ ] , + * /", []TokenKind{TokenLParen, TokenRParen, TokenLBracket, TokenRBracket, TokenComma, TokenPlus, TokenStar, TokenSlash, TokenEOF}},
		{"$", []TokenKind{TokenError, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := visibleKinds(t, tt.input)
			if len(got) != len(tt.expected) {
				t.Errorf("got %d tokens %v, want %d %v", len(got), got, len(tt.expected), tt.expected)
				return
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		word string
		want TokenKind
	}{
		{"define", TokenDefine},
		{"DEF", TokenDefine},
		{"DEFI", TokenDefine},
		{"DE", TokenIdent},
		{"VAR", TokenVariable},
		{"DISP", TokenDisplay},
		{"DIS", TokenIdent},
		{"EXCLUSIVE", TokenExclusiveLock},
		{"EXCLUSIVE-LOC", TokenExclusiveLock},
		{"WORK-FILE", TokenWorkTable},
		{"customer", TokenIdent},
		{"db.customer", TokenIdent},
		{"Error", TokenErrorKw},
		{"stream", TokenStreamKw},
		{"STREAM-HANDLE", TokenIdent},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := LookupKeyword(tt.word); got != tt.want {
				t.Errorf("LookupKeyword(%q): got %v, want %v", tt.word, got, tt.want)
			}
		})
	}
}

func TestStreamKeywordThroughTokenStream(t *testing.T) {
	tokens, err := NewLexer([]byte("DEFINE STREAM s."), "test.p").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	stream := NewTokenStream(tokens)
	var kinds []TokenKind
	for tok := stream.NextToken(); tok.Kind != TokenEOF; tok = stream.NextToken() {
		if !tok.Kind.IsHidden() {
			kinds = append(kinds, tok.Kind)
		}
	}
	want := []TokenKind{TokenDefine, TokenStreamKw, TokenIdent, TokenPeriod}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
	if TokenStreamKw.String() != "STREAM" {
		t.Errorf("got %q, want STREAM", TokenStreamKw.String())
	}
}

func TestReservedKeywords(t *testing.T) {
	if !IsReserved(TokenDisplay) {
		t.Error("DISPLAY should be reserved")
	}
	if IsReserved(TokenClass) {
		t.Error("CLASS should not be reserved")
	}
	if !TokenGet.IsKeyword() || TokenIdent.IsKeyword() {
		t.Error("IsKeyword misclassifies GET or identifiers")
	}
	if TokenDisplay.String() != "DISPLAY" {
		t.Errorf("got %q, want %q", TokenDisplay.String(), "DISPLAY")
	}
	if TokenComment.String() != "COMMENT" {
		t.Errorf("got %q, want %q", TokenComment.String(), "COMMENT")
	}
}

func TestLexerKeepsHiddenTokens(t *testing.T) {
	tokens, err := NewLexer([]byte("DISPLAY /* c */ x."), "test.p").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	want := []TokenKind{TokenDisplay, TokenWhitespace, TokenComment, TokenWhitespace, TokenIdent, TokenPeriod}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, tok := range tokens {
		if tok.Kind != want[i] {
			t.Errorf("token %d: got %v, want %v", i, tok.Kind, want[i])
		}
	}
	if tokens[2].Literal != "/* c */" {
		t.Errorf("comment literal: got %q", tokens[2].Literal)
	}
}

func TestTildeInLineComment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenKind
		index int
	}{
		{"comment first", "// \"~n\"\nDEFINE VARIABLE x AS INTEGER.\n", []TokenKind{TokenComment, TokenWhitespace, TokenDefine}, 0},
		{"keyword first", "DEFINE // \"~n\"\nVARIABLE x AS INTEGER.\n", []TokenKind{TokenDefine, TokenWhitespace, TokenComment, TokenWhitespace, TokenVariable}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := NewTokenStream(mustTokenize(t, tt.input))
			var toks []Token
			for range tt.want {
				toks = append(toks, stream.NextToken())
			}
			for i, tok := range toks {
				if tok.Kind != tt.want[i] {
					t.Errorf("token %d: got %v, want %v", i, tok.Kind, tt.want[i])
				}
			}
			if got := toks[tt.index].Literal; got != `// "~n"` {
				t.Errorf("comment: got %q, want %q", got, `// "~n"`)
			}
		})
	}
}

func TestEscapedTerminators(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    TokenKind
		literal string
	}{
		{"block comment", "/* a ~*/ still comment */ DISPLAY", TokenComment, "/* a ~*/ still comment */"},
		{"double quote", `"a~"b" x`, TokenString, `"a~"b"`},
		{"single quote", `'a~'b' x`, TokenString, `'a~'b'`},
		{"string suffix", `"Name":L30 x`, TokenString, `"Name":L30`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := mustTokenize(t, tt.input)
			if tokens[0].Kind != tt.kind {
				t.Fatalf("got %v, want %v", tokens[0].Kind, tt.kind)
			}
			if tokens[0].Literal != tt.literal {
				t.Errorf("got %q, want %q", tokens[0].Literal, tt.literal)
			}
		})
	}
}

func TestStringValue(t *testing.T) {
	tests := []struct {
		literal string
		want    string
	}{
		{`"abc"`, "abc"},
		{`"abc":U`, "abc"},
		{`'it''s'`, "it's"},
		{`"a~nb"`, "a\nb"},
		{`"tab~t"`, "tab\t"},
		{`"q~"q"`, `q"q`},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			if got := StringValue(tt.literal); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenPositions(t *testing.T) {
	tokens := mustTokenize(t, "DISPLAY\n  x.")
	var x Token
	for _, tok := range tokens {
		if tok.Kind == TokenIdent {
			x = tok
		}
	}
	if x.Line() != 2 || x.Span.Start.Column != 3 {
		t.Errorf("got %s, want 2:3", x.Span.Start)
	}
	if x.File() != "test.p" {
		t.Errorf("got file %q, want %q", x.File(), "test.p")
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  diag.Kind
		line  int
	}{
		{"unterminated string", "DISPLAY\n\"abc", diag.KindUnterminatedString, 2},
		{"unterminated comment", "/* open /* nested */", diag.KindUnterminatedComment, 1},
		{"unterminated reference", "DISPLAY {&x", diag.KindPreprocessor, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer([]byte(tt.input), "bad.p").Tokenize()
			if err == nil {
				t.Fatal("expected error")
			}
			if tokens != nil {
				t.Errorf("got %d tokens on failure, want none", len(tokens))
			}
			if !diag.IsLexError(err) {
				t.Errorf("got %v, want a lex error", err)
			}
			if got := diag.KindOf(err); got != tt.kind {
				t.Errorf("kind: got %v, want %v", got, tt.kind)
			}
			de, _ := diag.As(err)
			if de.Line != tt.line || de.File != "bad.p" {
				t.Errorf("position: got %s:%d, want bad.p:%d", de.File, de.Line, tt.line)
			}
		})
	}
}

func TestCanonicalDataType(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"char", "CHARACTER", true},
		{"CHARACTER", "CHARACTER", true},
		{"int", "INTEGER", true},
		{"dec", "DECIMAL", true},
		{"log", "LOGICAL", true},
		{"datetime-tz", "DATETIME-TZ", true},
		{"cha", "", false},
		{"Progress.Lang.Object", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalDataType(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("got (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func mustTokenize(t *testing.T, input string, opts ...LexOption) []Token {
	t.Helper()
	tokens, err := NewLexer([]byte(input), "test.p", opts...).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tokens
}
