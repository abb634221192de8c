package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dhamidi/proparse/abl/parser"
)

func parse(t *testing.T, src string) *parser.Node {
	t.Helper()
	top, err := parser.ParseSource([]byte(src), "t.p")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return top
}

func kindsOf(n map[string]any, out *[]string) {
	*out = append(*out, n["kind"].(string))
	children, _ := n["children"].([]any)
	for _, c := range children {
		kindsOf(c.(map[string]any), out)
	}
}

func TestNodeListerExclusions(t *testing.T) {
	top := parse(t, "DEFINE VARIABLE i AS INTEGER NO-UNDO.\n.\nDISPLAY i.\n")

	tests := []struct {
		name    string
		exclude []parser.NodeKind
		want    bool
	}{
		{"default exclusions", DefaultExclusions, false},
		{"nothing excluded", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewNodeLister(&buf, tt.exclude...).Encode(top); err != nil {
				t.Fatalf("encode: %v", err)
			}
			var doc map[string]any
			if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
				t.Fatalf("unmarshal: %v\n%s", err, buf.String())
			}
			var kinds []string
			kindsOf(doc, &kinds)
			if kinds[0] != "Program" {
				t.Errorf("root kind = %s, want Program", kinds[0])
			}
			got := strings.Contains(strings.Join(kinds, " "), "EmptyStmt")
			if got != tt.want {
				t.Errorf("EmptyStmt listed = %v, want %v (kinds %v)", got, tt.want, kinds)
			}
		})
	}
}

func TestParseKinds(t *testing.T) {
	kinds, unknown := ParseKinds("EmptyStmt, option,,Bogus")
	if len(kinds) != 2 || kinds[0] != parser.KindEmptyStmt || kinds[1] != parser.KindOption {
		t.Errorf("kinds = %v", kinds)
	}
	if len(unknown) != 1 || unknown[0] != "Bogus" {
		t.Errorf("unknown = %v", unknown)
	}
}

func TestLineEncoder(t *testing.T) {
	top := parse(t, "DISPLAY 1.\n")
	text, err := NewLineEncoder(nil).MarshalText(top)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(text), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), text)
	}
	want := []string{
		"0\tProgram\t-\tt.p:1:1\t-\t-",
		"1\tDisplayStmt\t-\tt.p:1:1\tDISPLAY\t-",
		"2\tLiteral\t-\tt.p:1:9\t1\t-",
	}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("line %d = %q, want %q", i, line, want[i])
		}
	}
}

func TestTokenEncoder(t *testing.T) {
	tokens, err := parser.NewLexer([]byte("DISPLAY /* c */ x."), "t.p").Tokenize()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}

	tests := []struct {
		hidden bool
		want   int
	}{
		{false, 3},
		{true, 6},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := NewTokenEncoder(&buf, tt.hidden).Encode(parser.NewTokenStream(tokens)); err != nil {
			t.Fatalf("encode: %v", err)
		}
		if got := strings.Count(buf.String(), "\n"); got != tt.want {
			t.Errorf("hidden=%v: %d lines, want %d:\n%s", tt.hidden, got, tt.want, buf.String())
		}
	}
}
