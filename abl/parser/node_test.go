package parser

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNodeString(t *testing.T) {
	root := mustParse(t, "DISPLAY x.\nCREATE customer.\n")
	want := "Program\n" +
		"  DisplayStmt DISPLAY\n" +
		"    Identifier x\n" +
		"  CreateStmt CREATE <Record>\n" +
		"    RecordRef customer\n"
	if got := root.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestNodeStringWithPositions(t *testing.T) {
	root := mustParse(t, "DISPLAY x.")
	got := root.Children[0].StringWithPositions()
	if !strings.HasPrefix(got, "DisplayStmt [1:1-1:11] DISPLAY\n") {
		t.Errorf("got %q", got)
	}
}

func TestNodeKindByName(t *testing.T) {
	tests := []struct {
		name string
		want NodeKind
		ok   bool
	}{
		{"DisplayStmt", KindDisplayStmt, true},
		{"displaystmt", KindDisplayStmt, true},
		{"RecordRef", KindRecordRef, true},
		{"NoSuchKind", KindError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NodeKindByName(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("got (%v, %v), want (%v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFindAllInSourceOrder(t *testing.T) {
	root := mustParse(t, "a = 1.\nIF a > 0 THEN b = a.\nDISPLAY c.\n")
	var names []string
	for _, id := range root.FindAll(KindIdentifier) {
		names = append(names, id.Name())
	}
	want := []string{"A", "A", "B", "A", "C"}
	if !equalStrings(names, want) {
		t.Errorf("got %v, want %v", names, want)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	root := mustParse(t, "PROCEDURE p: DISPLAY x. END.\nDISPLAY y.\n")
	var seen []string
	root.Walk(func(n *Node) bool {
		if n.Kind == KindIdentifier {
			seen = append(seen, n.Name())
		}
		return n.Kind != KindProcedureDecl
	})
	if !equalStrings(seen, []string{"Y"}) {
		t.Errorf("got %v, want [Y]", seen)
	}
}

type testSymbol struct{ name string }

func (s testSymbol) SymbolName() string { return s.name }
func (s testSymbol) SymbolKind() string { return "Variable" }

func TestNodeJSON(t *testing.T) {
	root := mustParse(t, "DISPLAY x.")
	id := root.FindAll(KindIdentifier)[0]
	id.Symbol = testSymbol{name: "x"}
	id.State2 = ClassVariable

	data, err := json.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Kind     string `json:"kind"`
		Children []struct {
			Kind     string `json:"kind"`
			Token    string `json:"token"`
			Children []struct {
				Kind   string `json:"kind"`
				State2 string `json:"state2"`
				Symbol struct {
					Name string `json:"name"`
					Kind string `json:"kind"`
				} `json:"symbol"`
				Span struct {
					File  string `json:"file"`
					Start struct {
						Line   int `json:"line"`
						Column int `json:"column"`
					} `json:"start"`
				} `json:"span"`
			} `json:"children"`
		} `json:"children"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Kind != "Program" || decoded.Children[0].Token != "DISPLAY" {
		t.Fatalf("unexpected document: %s", data)
	}
	x := decoded.Children[0].Children[0]
	if x.Kind != "Identifier" || x.State2 != "Variable" {
		t.Errorf("got %s <%s>, want Identifier <Variable>", x.Kind, x.State2)
	}
	if x.Symbol.Name != "x" || x.Symbol.Kind != "Variable" {
		t.Errorf("symbol: got %+v", x.Symbol)
	}
	if x.Span.File != "test.p" || x.Span.Start.Line != 1 || x.Span.Start.Column != 9 {
		t.Errorf("span: got %+v", x.Span)
	}
}

func TestMarshalJSONExcluding(t *testing.T) {
	root := mustParse(t, "DEFINE VARIABLE x AS INTEGER NO-UNDO.\nDISPLAY x.\n")
	data, err := root.MarshalJSONExcluding(map[NodeKind]bool{KindDefineVariable: true})
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "DefineVariable") || strings.Contains(out, "TypeSpec") {
		t.Errorf("excluded subtree still present:\n%s", out)
	}
	if !strings.Contains(out, "DisplayStmt") {
		t.Errorf("DisplayStmt missing:\n%s", out)
	}
	if !strings.Contains(out, "\n  ") {
		t.Error("output should be indented")
	}
}
