package parser

import (
	"testing"

	"github.com/dhamidi/proparse/abl/diag"
)

// visibleLiterals returns the literals of the non-hidden tokens.
func visibleLiterals(tokens []Token) []string {
	var out []string
	for _, tok := range tokens {
		if !tok.Hidden() {
			out = append(out, tok.Literal)
		}
	}
	return out
}

func visibleTokens(tokens []Token) []Token {
	var out []Token
	for _, tok := range tokens {
		if !tok.Hidden() {
			out = append(out, tok)
		}
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPreprocessor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		includes MapResolver
		want     []string
	}{
		{
			name:  "global define",
			input: "&GLOBAL-DEFINE MSG hello\nDISPLAY {&MSG}.",
			want:  []string{"DISPLAY", "hello", "."},
		},
		{
			name:  "define value is the rest of the line",
			input: "&GLOB EXPR a + b\nDISPLAY {&EXPR}.",
			want:  []string{"DISPLAY", "a", "+", "b", "."},
		},
		{
			name:  "undefine",
			input: "&SCOPED-DEFINE X 1\n&UNDEFINE X\nDISPLAY {&X} 2.",
			want:  []string{"DISPLAY", "2", "."},
		},
		{
			name:  "reference glued to a name",
			input: "&SCOP SUFFIX -id\nDISPLAY cust{&SUFFIX}.",
			want:  []string{"DISPLAY", "cust-id", "."},
		},
		{
			name:  "if defined",
			input: "&GLOBAL-DEFINE A yes\n&IF DEFINED(A) = 1 &THEN\nDISPLAY a.\n&ELSE\nDISPLAY b.\n&ENDIF\n",
			want:  []string{"DISPLAY", "a", "."},
		},
		{
			name:  "scoped define level",
			input: "&SCOPED-DEFINE A yes\n&IF DEFINED(A) = 2 &THEN\nDISPLAY a.\n&ENDIF\n",
			want:  []string{"DISPLAY", "a", "."},
		},
		{
			name:  "elseif",
			input: "&IF DEFINED(NOPE) > 0 &THEN\nDISPLAY a.\n&ELSEIF 1 = 1 &THEN\nDISPLAY b.\n&ELSE\nDISPLAY c.\n&ENDIF",
			want:  []string{"DISPLAY", "b", "."},
		},
		{
			name:  "else",
			input: "&IF 1 = 2 &THEN\nDISPLAY a.\n&ELSE\nDISPLAY c.\n&ENDIF",
			want:  []string{"DISPLAY", "c", "."},
		},
		{
			name:  "nested if in skipped branch",
			input: "&IF 0 = 1 &THEN\n&IF 1 = 1 &THEN\nDISPLAY a.\n&ENDIF\nDISPLAY b.\n&ENDIF\nDISPLAY c.",
			want:  []string{"DISPLAY", "c", "."},
		},
		{
			name:  "reference in string",
			input: "&IF \"{&OPSYS}\" = \"UNIX\" &THEN\nDISPLAY a.\n&ENDIF",
			want:  []string{"DISPLAY", "a", "."},
		},
		{
			name:  "reference in comment is not expanded",
			input: "/* {missing.i} */ DISPLAY a.",
			want:  []string{"DISPLAY", "a", "."},
		},
		{
			name:  "boolean operators",
			input: "&IF NOT DEFINED(X) = 1 AND (2 > 1 OR FALSE) &THEN\nDISPLAY a.\n&ENDIF",
			want:  []string{"DISPLAY", "a", "."},
		},
		{
			name:  "sequence",
			input: "DISPLAY {&SEQUENCE} {&SEQUENCE}.",
			want:  []string{"DISPLAY", "0", "1", "."},
		},
		{
			name:  "line number",
			input: "\n\nDISPLAY {&LINE-NUMBER}.",
			want:  []string{"DISPLAY", "3", "."},
		},
		{
			name:  "file name",
			input: "DISPLAY \"{&FILE-NAME}\".",
			want:  []string{"DISPLAY", `"test.p"`, "."},
		},
		{
			name:     "include with arguments",
			input:    "{inc.i x &who=y}\nMESSAGE 1.",
			includes: MapResolver{"inc.i": "DISPLAY {1} {&who}.\n"},
			want:     []string{"DISPLAY", "x", "y", ".", "MESSAGE", "1", "."},
		},
		{
			name:     "all arguments and file name",
			input:    "{a.i 1 2}",
			includes: MapResolver{"a.i": "MESSAGE \"{0}\" {*}."},
			want:     []string{"MESSAGE", `"a.i"`, "1", "2", "."},
		},
		{
			name:     "quoted include argument",
			input:    `{a.i "hello world"}`,
			includes: MapResolver{"a.i": "MESSAGE \"{1}\"."},
			want:     []string{"MESSAGE", `"hello world"`, "."},
		},
		{
			name:     "scoped define does not leak out of include",
			input:    "{a.i}\n&IF DEFINED(INNER) = 0 &THEN\nDISPLAY ok.\n&ENDIF",
			includes: MapResolver{"a.i": "&SCOPED-DEFINE INNER 1\n"},
			want:     []string{"DISPLAY", "ok", "."},
		},
		{
			name:     "global define from include",
			input:    "{a.i}\nDISPLAY {&OUTER}.",
			includes: MapResolver{"a.i": "&GLOBAL-DEFINE OUTER z\n"},
			want:     []string{"DISPLAY", "z", "."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []LexOption
			if tt.includes != nil {
				opts = append(opts, WithIncludeResolver(tt.includes))
			}
			got := visibleLiterals(mustTokenize(t, tt.input, opts...))
			if !equalStrings(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGlobalDefinesOption(t *testing.T) {
	tokens := mustTokenize(t, "DISPLAY {&MODE}.", WithGlobalDefines(map[string]string{"mode": "batch"}))
	got := visibleLiterals(tokens)
	want := []string{"DISPLAY", "batch", "."}
	if !equalStrings(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIncludedTokensKeepTheirFile(t *testing.T) {
	resolver := MapResolver{"inc.i": "\nDISPLAY x.\n"}
	tokens := visibleTokens(mustTokenize(t, "{inc.i}\nMESSAGE 1.", WithIncludeResolver(resolver)))
	if len(tokens) != 6 {
		t.Fatalf("got %d tokens, want 6", len(tokens))
	}
	if tokens[0].File() != "inc.i" || tokens[0].Line() != 2 {
		t.Errorf("DISPLAY: got %s:%d, want inc.i:2", tokens[0].File(), tokens[0].Line())
	}
	if tokens[3].File() != "test.p" || tokens[3].Line() != 2 {
		t.Errorf("MESSAGE: got %s:%d, want test.p:2", tokens[3].File(), tokens[3].Line())
	}
}

func TestMacroTokensReportReference(t *testing.T) {
	tokens := visibleTokens(mustTokenize(t, "&GLOBAL-DEFINE V value\n\nDISPLAY {&V}."))
	if tokens[1].Literal != "value" {
		t.Fatalf("got %q, want %q", tokens[1].Literal, "value")
	}
	if tokens[1].Line() != 3 || tokens[1].Span.Start.Column != 9 {
		t.Errorf("got %s, want 3:9", tokens[1].Span.Start)
	}
}

func TestPreprocessorErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		includes IncludeResolver
		kind     diag.Kind
	}{
		{"if without endif", "&IF 1 = 1 &THEN\nDISPLAY a.", nil, diag.KindPreprocessor},
		{"false if without endif", "&IF 1 = 2 &THEN\nDISPLAY a.", nil, diag.KindPreprocessor},
		{"if without then", "&IF 1 = 1\nDISPLAY a.", nil, diag.KindPreprocessor},
		{"endif without if", "&ENDIF", nil, diag.KindPreprocessor},
		{"else without if", "&ELSE\nDISPLAY a.", nil, diag.KindPreprocessor},
		{"bad condition", "&IF 1 = &THEN\n&ENDIF", nil, diag.KindPreprocessor},
		{"self-referential define", "&GLOBAL-DEFINE X {&X}\nDISPLAY {&X}.", nil, diag.KindPreprocessor},
		{"no resolver", "{missing.i}", nil, diag.KindIncludeNotFound},
		{"missing include", "{missing.i}", MapResolver{}, diag.KindIncludeNotFound},
		{"direct cycle", "{self.i}", MapResolver{"self.i": "DISPLAY x.\n{self.i}"}, diag.KindIncludeCycle},
		{"indirect cycle", "{a.i}", MapResolver{"a.i": "{b.i}", "b.i": "{a.i}"}, diag.KindIncludeCycle},
		{"main file included", "{test.p}", MapResolver{"test.p": "DISPLAY x."}, diag.KindIncludeCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []LexOption
			if tt.includes != nil {
				opts = append(opts, WithIncludeResolver(tt.includes))
			}
			_, err := NewLexer([]byte(tt.input), "test.p", opts...).Tokenize()
			if err == nil {
				t.Fatal("expected error")
			}
			if !diag.IsLexError(err) {
				t.Errorf("got %v, want a lex error", err)
			}
			if got := diag.KindOf(err); got != tt.kind {
				t.Errorf("kind: got %v, want %v (%v)", got, tt.kind, err)
			}
		})
	}
}

func TestIncludeCycleReportsChain(t *testing.T) {
	resolver := MapResolver{"a.i": "{b.i}", "b.i": "\n{a.i}"}
	_, err := NewLexer([]byte("{a.i}"), "main.p", WithIncludeResolver(resolver)).Tokenize()
	de, ok := diag.As(err)
	if !ok {
		t.Fatalf("got %v, want *diag.Error", err)
	}
	if de.File != "b.i" || de.Line != 2 {
		t.Errorf("got %s:%d, want b.i:2", de.File, de.Line)
	}
	if want := "include cycle: main.p -> a.i -> b.i -> a.i"; de.Message != want {
		t.Errorf("got %q, want %q", de.Message, want)
	}
}

func TestMetrics(t *testing.T) {
	src := "/* header */\nDISPLAY x.\n{inc.i}\n"
	resolver := MapResolver{"inc.i": "MESSAGE 1.\nMESSAGE 2.\n"}
	m, err := GenerateMetrics(NewLexer([]byte(src), "test.p", WithIncludeResolver(resolver)))
	if err != nil {
		t.Fatal(err)
	}
	want := Metrics{Files: 2, Includes: 1, Lines: 5, CodeLines: 3, CommentLines: 1, Tokens: 9, Statements: 3}
	if *m != want {
		t.Errorf("got %v, want %v", *m, want)
	}
}

func TestTokenizeWithMetrics(t *testing.T) {
	src := "DISPLAY x. // note\n"
	tokens, m, err := NewLexer([]byte(src), "test.p").TokenizeWithMetrics()
	if err != nil {
		t.Fatal(err)
	}
	plain := mustTokenize(t, src)
	if len(tokens) != len(plain) {
		t.Errorf("got %d tokens, want %d", len(tokens), len(plain))
	}
	if m.Tokens != 3 || m.Statements != 1 || m.CommentLines != 1 || m.CodeLines != 1 {
		t.Errorf("got %v", *m)
	}
}

func TestMetricsLexError(t *testing.T) {
	m, err := GenerateMetrics(NewLexer([]byte("{missing.i}"), "test.p"))
	if err == nil || m != nil {
		t.Fatalf("got (%v, %v), want an error and no metrics", m, err)
	}
	if !diag.IsLexError(err) {
		t.Errorf("got %v, want a lex error", err)
	}
}

func TestTokenStream(t *testing.T) {
	tokens := mustTokenize(t, "DISPLAY x.")
	stream := NewTokenStream(tokens)
	if stream.Len() != 4 {
		t.Fatalf("got %d tokens, want 4", stream.Len())
	}
	if stream.Peek().Kind != TokenDisplay {
		t.Errorf("peek: got %v, want DISPLAY", stream.Peek().Kind)
	}
	for range tokens {
		stream.NextToken()
	}
	if tok := stream.NextToken(); tok.Kind != TokenEOF {
		t.Errorf("got %v after the last token, want EOF", tok.Kind)
	}
	stream.Reset()
	if tok := stream.NextToken(); tok.Kind != TokenDisplay {
		t.Errorf("got %v after reset, want DISPLAY", tok.Kind)
	}
	copied := stream.Tokens()
	copied[0].Literal = "changed"
	if stream.Tokens()[0].Literal != "DISPLAY" {
		t.Error("Tokens must return a copy")
	}
}
