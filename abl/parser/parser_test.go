package parser

import (
	"strings"
	"testing"

	"github.com/dhamidi/proparse/abl/diag"
)

func mustParse(t *testing.T, input string) *Node {
	t.Helper()
	root, err := ParseSource([]byte(input), "test.p")
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return root
}

func parseExpr(t *testing.T, input string) *Node {
	t.Helper()
	tokens := mustTokenize(t, input)
	node, err := NewExpressionParser(tokens, WithFile("test.p")).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return node
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		input string
		kinds []NodeKind
	}{
		{"DEFINE VARIABLE x AS INTEGER NO-UNDO.", []NodeKind{KindDefineVariable}},
		{`DEF VAR s AS CHAR INIT "a" FORMAT "x(8)" LABEL "S" NO-UNDO.`, []NodeKind{KindDefineVariable}},
		{"DEFINE NEW SHARED VARIABLE g AS LOGICAL.", []NodeKind{KindDefineVariable}},
		{"DEFINE VARIABLE arr AS INTEGER EXTENT 3 INITIAL [1, 2, 3].", []NodeKind{KindDefineVariable}},
		{"DEFINE INPUT PARAMETER p AS CHARACTER NO-UNDO.", []NodeKind{KindDefineParameter}},
		{"DEFINE OUTPUT PARAMETER TABLE FOR tt.", []NodeKind{KindDefineParameter}},
		{"DEFINE PARAMETER BUFFER b FOR customer.", []NodeKind{KindDefineBuffer}},
		{"DEFINE BUFFER bc FOR customer.", []NodeKind{KindDefineBuffer}},
		{"DEFINE TEMP-TABLE tt NO-UNDO FIELD id AS INTEGER FIELD name AS CHARACTER INDEX idx IS PRIMARY UNIQUE id.", []NodeKind{KindDefineTempTable}},
		{"DEFINE TEMP-TABLE tt2 LIKE customer USE-INDEX custnum.", []NodeKind{KindDefineTempTable}},
		{"DEFINE DATASET ds FOR tt, tt2 DATA-RELATION r FOR tt, tt2 RELATION-FIELDS (id, id).", []NodeKind{KindDefineDataset}},
		{"DEFINE QUERY q FOR customer.", []NodeKind{KindDefineQuery}},
		{"DEFINE STREAM s.", []NodeKind{KindDefineStream}},
		{"DEFINE FRAME f customer.name WITH SIDE-LABELS.", []NodeKind{KindDefineFrame}},
		{`DEFINE BUTTON btn LABEL "OK".`, []NodeKind{KindDefineWidget}},
		{"x = 1.", []NodeKind{KindAssignStmt}},
		{"x = x + 1 NO-ERROR.", []NodeKind{KindAssignStmt}},
		{"ASSIGN x = 1 y = 2.", []NodeKind{KindAssignStmt}},
		{`obj:Method(1, "a").`, []NodeKind{KindExprStmt}},
		{"DO i = 1 TO 10: END.", []NodeKind{KindDoStmt}},
		{"blk: DO: END.", []NodeKind{KindDoStmt}},
		{"DO TRANSACTION ON ERROR UNDO, LEAVE: END.", []NodeKind{KindDoStmt}},
		{"REPEAT WHILE TRUE: LEAVE. END.", []NodeKind{KindRepeatStmt}},
		{"FOR EACH customer NO-LOCK WHERE customer.balance > 0 BY customer.name: DISPLAY customer.name. END.", []NodeKind{KindForStmt}},
		{`IF x > 1 THEN DISPLAY x. ELSE MESSAGE "no".`, []NodeKind{KindIfStmt}},
		{`CASE x: WHEN 1 THEN DISPLAY x. OTHERWISE DISPLAY "other". END CASE.`, []NodeKind{KindCaseStmt}},
		{"PROCEDURE p: DEFINE INPUT PARAMETER a AS INTEGER. END PROCEDURE.", []NodeKind{KindProcedureDecl}},
		{"FUNCTION f RETURNS INTEGER (INPUT a AS INTEGER): RETURN a * 2. END FUNCTION.", []NodeKind{KindFunctionDecl}},
		{"FUNCTION g RETURNS LOGICAL FORWARD.", []NodeKind{KindFunctionDecl}},
		{`ON CHOOSE OF btn DO: MESSAGE "x". END.`, []NodeKind{KindTriggerBlock}},
		{"RUN proc.p (INPUT 1, OUTPUT x).", []NodeKind{KindRunStmt}},
		{"RUN sub/dir/proc.p.", []NodeKind{KindRunStmt}},
		{`RUN VALUE("x.p") NO-ERROR.`, []NodeKind{KindRunStmt}},
		{`MESSAGE "hi" VIEW-AS ALERT-BOX.`, []NodeKind{KindMessageStmt}},
		{"DISPLAY customer.name customer.balance WITH FRAME f.", []NodeKind{KindDisplayStmt}},
		{"FIND FIRST customer WHERE customer.custnum = 1 NO-LOCK NO-ERROR.", []NodeKind{KindFindStmt}},
		{"CREATE customer.", []NodeKind{KindCreateStmt}},
		{"DELETE customer.", []NodeKind{KindDeleteStmt}},
		{"DELETE OBJECT h.", []NodeKind{KindDeleteObjectStmt}},
		{"RELEASE customer.", []NodeKind{KindReleaseStmt}},
		{"EMPTY TEMP-TABLE tt.", []NodeKind{KindEmptyTempTableStmt}},
		{"BUFFER-COPY customer TO tt.", []NodeKind{KindBufferCopyStmt}},
		{"OPEN QUERY q FOR EACH customer NO-LOCK.", []NodeKind{KindOpenQueryStmt}},
		{"GET FIRST q.", []NodeKind{KindGetStmt}},
		{"CLOSE QUERY q.", []NodeKind{KindCloseStmt}},
		{"RETURN.", []NodeKind{KindReturnStmt}},
		{`RETURN ERROR "x".`, []NodeKind{KindReturnStmt}},
		{`UNDO, THROW NEW Progress.Lang.AppError("x", 1).`, []NodeKind{KindUndoStmt}},
		{`PUBLISH "evt" (1).`, []NodeKind{KindPublishStmt}},
		{`SUBSCRIBE TO "evt" ANYWHERE.`, []NodeKind{KindSubscribeStmt}},
		{`APPLY "CLOSE" TO THIS-PROCEDURE.`, []NodeKind{KindApplyStmt}},
		{"WAIT-FOR CLOSE OF THIS-PROCEDURE.", []NodeKind{KindWaitForStmt}},
		{"PAUSE 0 BEFORE-HIDE.", []NodeKind{KindPauseStmt}},
		{"INPUT FROM VALUE(f).", []NodeKind{KindStreamIOStmt}},
		{"OUTPUT TO report.txt.", []NodeKind{KindStreamIOStmt}},
		{`COPY-LOB FROM FILE "a.txt" TO m.`, []NodeKind{KindCopyLobStmt}},
		{"QUIT.", []NodeKind{KindQuitStmt}},
		{"HIDE ALL.", []NodeKind{KindGenericStmt}},
		{"HIDE MESSAGE NO-PAUSE.", []NodeKind{KindGenericStmt}},
		{"UPDATE x y WITH FRAME f.", []NodeKind{KindGenericStmt}},
		{"PROMPT x.", []NodeKind{KindGenericStmt}},
		{`EXPORT STREAM s DELIMITER "," customer.`, []NodeKind{KindGenericStmt}},
		{"FORM customer.name WITH FRAME f.", []NodeKind{KindGenericStmt}},
		{"ROUTINE-LEVEL ON ERROR UNDO, THROW.", []NodeKind{KindGenericStmt}},
		{`FRAME f:TITLE = "x".`, []NodeKind{KindAssignStmt}},
		{"USING Progress.Lang.*.", []NodeKind{KindUsingStmt}},
		{"DISPLAY x. . MESSAGE 1.", []NodeKind{KindDisplayStmt, KindEmptyStmt, KindMessageStmt}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root := mustParse(t, tt.input)
			if root.Kind != KindProgram {
				t.Fatalf("root: got %v, want Program", root.Kind)
			}
			if len(root.Children) != len(tt.kinds) {
				t.Fatalf("got %d statements, want %d:\n%s", len(root.Children), len(tt.kinds), root)
			}
			for i, child := range root.Children {
				if child.Kind != tt.kinds[i] {
					t.Errorf("statement %d: got %v, want %v", i, child.Kind, tt.kinds[i])
				}
			}
		})
	}
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
		token string
	}{
		{"42", KindLiteral, "42"},
		{"?", KindLiteral, "?"},
		{"x", KindIdentifier, "x"},
		{"a + b * c", KindBinaryExpr, "+"},
		{"a = 1 AND b <> 2 OR c", KindBinaryExpr, "OR"},
		{`a BEGINS "x"`, KindBinaryExpr, "BEGINS"},
		{"x MODULO 2", KindBinaryExpr, "MODULO"},
		{"-x", KindUnaryExpr, "-"},
		{"NOT a", KindUnaryExpr, "NOT"},
		{"(a)", KindParenExpr, ""},
		{"obj:Prop", KindMemberAccess, "Prop"},
		{"obj:Method(1)", KindMemberAccess, "Method"},
		{"buf::fld", KindDynamicField, "fld"},
		{"arr[1]", KindSubscript, ""},
		{"f(1)", KindCallExpr, "f"},
		{"SUBSTRING(s, 1, 2)", KindBuiltinCall, "SUBSTRING"},
		{"TODAY", KindBuiltinCall, "TODAY"},
		{`INT("1")`, KindBuiltinCall, "INT"},
		{"SUBSTR(s, 1)", KindBuiltinCall, "SUBSTR"},
		{`GET-DB-CLIENT("sports2000")`, KindBuiltinCall, "GET-DB-CLIENT"},
		{"AVAIL customer", KindBuiltinCall, "AVAIL"},
		{"AVAILABLE customer", KindBuiltinCall, "AVAILABLE"},
		{"CAN-FIND(FIRST customer WHERE customer.id = 1)", KindBuiltinCall, "CAN-FIND"},
		{"NEW acme.Shape()", KindNewExpr, "NEW"},
		{"CAST(o, acme.Shape)", KindCastExpr, "CAST"},
		{"IF a THEN 1 ELSE 2", KindIfExpr, "IF"},
		{"THIS-OBJECT", KindThisObject, "THIS-OBJECT"},
		{"FRAME f", KindWidgetRef, "FRAME"},
		{"BUFFER customer:HANDLE", KindMemberAccess, "HANDLE"},
		{"SESSION:TEMP-DIRECTORY", KindMemberAccess, "TEMP-DIRECTORY"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node := parseExpr(t, tt.input)
			if node.Kind != tt.kind {
				t.Errorf("got %v, want %v", node.Kind, tt.kind)
			}
			if got := node.TokenLiteral(); got != tt.token {
				t.Errorf("token: got %q, want %q", got, tt.token)
			}
		})
	}
}

func TestBuiltinName(t *testing.T) {
	tests := []struct {
		spelling string
		want     string
	}{
		{"INT", "INTEGER"},
		{"INTEGER", "INTEGER"},
		{"INT64", "INT64"},
		{"DEC", "DECIMAL"},
		{"ABS", "ABSOLUTE"},
		{"SUBSTR", "SUBSTRING"},
		{"SUBST", "SUBSTITUTE"},
		{"TRUNC", "TRUNCATE"},
		{"MAX", "MAXIMUM"},
		{"DYNAMIC-FUNC", "DYNAMIC-FUNCTION"},
		{"DBPARAM", "DBPARAM"},
		{"FILE-INFO", "FILE-INFORMATION"},
		{"AMBIG", "AMBIGUOUS"},
	}
	for _, tt := range tests {
		got, ok := BuiltinName(tt.spelling)
		if !ok || got != tt.want {
			t.Errorf("BuiltinName(%q) = %q, %v; want %q", tt.spelling, got, ok, tt.want)
		}
	}
	for _, name := range []string{"IN", "SUB", "NOSUCH", "DY"} {
		if got, ok := BuiltinName(name); ok {
			t.Errorf("BuiltinName(%q) = %q, want no built-in", name, got)
		}
	}
}

func TestExpressionPrecedence(t *testing.T) {
	node := parseExpr(t, "a + b * c")
	if len(node.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(node.Children))
	}
	right := node.Children[1]
	if right.Kind != KindBinaryExpr || right.TokenLiteral() != "*" {
		t.Errorf("right operand: got %v %q, want BinaryExpr *", right.Kind, right.TokenLiteral())
	}

	node = parseExpr(t, "NOT a = b")
	if node.Kind != KindUnaryExpr || node.Children[0].Kind != KindBinaryExpr {
		t.Errorf("NOT should apply to the comparison:\n%s", node)
	}
}

func TestParseClass(t *testing.T) {
	src := `CLASS acme.Shape INHERITS acme.Base IMPLEMENTS acme.IDrawable ABSTRACT:
  DEFINE PUBLIC PROPERTY Name AS CHARACTER NO-UNDO GET. SET.
  DEFINE PRIVATE VARIABLE count AS INTEGER NO-UNDO.
  CONSTRUCTOR PUBLIC Shape ():
    SUPER().
  END CONSTRUCTOR.
  METHOD PUBLIC VOID Draw (INPUT x AS INTEGER):
    count = count + x.
  END METHOD.
  METHOD PUBLIC ABSTRACT INTEGER Area ().
END CLASS.
`
	root := mustParse(t, src)
	if len(root.Children) != 1 {
		t.Fatalf("got %d top-level nodes, want 1", len(root.Children))
	}
	class := root.Children[0]
	if class.Kind != KindClassDecl || class.TokenLiteral() != "acme.Shape" {
		t.Fatalf("got %v %q, want ClassDecl acme.Shape", class.Kind, class.TokenLiteral())
	}
	inherits := class.FirstChildOfKind(KindInheritsClause)
	if inherits == nil || inherits.Children[0].TokenLiteral() != "acme.Base" {
		t.Errorf("missing INHERITS acme.Base:\n%s", class)
	}
	if class.FirstChildOfKind(KindImplementsClause) == nil {
		t.Error("missing IMPLEMENTS clause")
	}
	if mods := class.FirstChildOfKind(KindModifiers); mods == nil || mods.Children[0].Name() != "ABSTRACT" {
		t.Error("missing ABSTRACT modifier")
	}

	body := class.FirstChildOfKind(KindCodeBlock)
	want := []NodeKind{KindDefineProperty, KindDefineVariable, KindConstructorDecl, KindMethodDecl, KindMethodDecl}
	if len(body.Children) != len(want) {
		t.Fatalf("got %d members, want %d:\n%s", len(body.Children), len(want), body)
	}
	for i, member := range body.Children {
		if member.Kind != want[i] {
			t.Errorf("member %d: got %v, want %v", i, member.Kind, want[i])
		}
	}

	if got := len(body.Children[0].ChildrenOfKind(KindPropertyAccessor)); got != 2 {
		t.Errorf("got %d property accessors, want 2", got)
	}
	draw := body.Children[3]
	if ts := draw.FirstChildOfKind(KindTypeSpec); ts == nil || ts.Name() != "VOID" {
		t.Errorf("Draw should return VOID:\n%s", draw)
	}
	area := body.Children[4]
	if area.FirstChildOfKind(KindCodeBlock) != nil {
		t.Error("abstract method should have no body")
	}
}

func TestParseInterface(t *testing.T) {
	root := mustParse(t, "INTERFACE acme.IDrawable:\n  METHOD PUBLIC VOID Draw (INPUT x AS INTEGER).\nEND INTERFACE.\n")
	iface := root.Children[0]
	if iface.Kind != KindInterfaceDecl {
		t.Fatalf("got %v, want InterfaceDecl", iface.Kind)
	}
	methods := iface.FindAll(KindMethodDecl)
	if len(methods) != 1 || methods[0].TokenLiteral() != "Draw" {
		t.Errorf("got %d methods, want Draw", len(methods))
	}
}

func TestKeywordAsName(t *testing.T) {
	root := mustParse(t, "DEFINE VARIABLE class AS CHARACTER NO-UNDO.\nclass = \"a\".\nDISPLAY class.\n")
	want := []NodeKind{KindDefineVariable, KindAssignStmt, KindDisplayStmt}
	for i, child := range root.Children {
		if child.Kind != want[i] {
			t.Errorf("statement %d: got %v, want %v", i, child.Kind, want[i])
		}
	}
	ids := root.FindAll(KindIdentifier)
	if len(ids) != 2 {
		t.Fatalf("got %d identifiers, want 2", len(ids))
	}
	for _, id := range ids {
		if id.Name() != "CLASS" {
			t.Errorf("got %q, want CLASS", id.Name())
		}
	}
}

func TestCreateProvisionalClass(t *testing.T) {
	tests := []struct {
		input string
		class Class
		first NodeKind
	}{
		{"CREATE customer.", ClassRecord, KindRecordRef},
		{"CREATE customer NO-ERROR.", ClassRecord, KindRecordRef},
		{"CREATE tt USING ROWID(r).", ClassRecord, KindRecordRef},
		{`CREATE "Excel.Application" hExcel.`, ClassWidget, KindLiteral},
		{`CREATE BUTTON hButton ASSIGN LABEL = "OK" ROW = 1.`, ClassWidget, KindTypeName},
		{"CREATE Word.Application hWord CONNECT.", ClassWidget, KindTypeName},
		{"CREATE WIDGET-POOL.", ClassUnset, KindOption},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root := mustParse(t, tt.input)
			create := root.Children[0]
			if create.Kind != KindCreateStmt {
				t.Fatalf("got %v, want CreateStmt", create.Kind)
			}
			if create.State2 != tt.class {
				t.Errorf("State2: got %v, want %v", create.State2, tt.class)
			}
			if create.Children[0].Kind != tt.first {
				t.Errorf("first child: got %v, want %v", create.Children[0].Kind, tt.first)
			}
		})
	}
}

func TestCreateWidgetAssignments(t *testing.T) {
	root := mustParse(t, "CREATE BUTTON hButton\n  ASSIGN LABEL = \"OK\"\n         ROW = 1\n  TRIGGERS:\n    ON CHOOSE DO: QUIT. END.\n  END TRIGGERS.\n")
	create := root.Children[0]
	assign := create.FirstChildOfKind(KindAssignStmt)
	if assign == nil || len(assign.Children) != 2 {
		t.Fatalf("expected two attribute assignments:\n%s", create)
	}
	if create.Children[1].Kind != KindIdentifier || create.Children[1].Name() != "HBUTTON" {
		t.Errorf("handle: got %v %q", create.Children[1].Kind, create.Children[1].Name())
	}
	if len(create.FindAll(KindTriggerBlock)) != 1 {
		t.Errorf("expected a trigger in the TRIGGERS phrase:\n%s", create)
	}
}

func TestRunTargets(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
		name  string
	}{
		{"RUN proc.p.", KindIdentifier, "proc.p"},
		{"RUN sub/dir/proc.p.", KindIdentifier, "sub/dir/proc.p"},
		{"RUN internal-proc (1).", KindIdentifier, "internal-proc"},
		{`RUN "quoted.p".`, KindLiteral, `"quoted.p"`},
		{"RUN VALUE(p).", KindBuiltinCall, "VALUE"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			run := mustParse(t, tt.input).Children[0]
			target := run.Children[0]
			if target.Kind != tt.kind || target.TokenLiteral() != tt.name {
				t.Errorf("got %v %q, want %v %q", target.Kind, target.TokenLiteral(), tt.kind, tt.name)
			}
		})
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"missing period", "DISPLAY x.\nDISPLAY y", 2},
		{"missing END", "DO:\n  DISPLAY x.\n", 2},
		{"stray END", "DISPLAY x.\nEND.", 2},
		{"reserved word as name", "DEFINE VARIABLE AS AS INTEGER.", 1},
		{"missing operand", "x = .", 1},
		{"missing THEN", "IF x DISPLAY x.", 1},
		{"unclosed paren", "x = (1 + 2.", 1},
		{"block header in generic statement", "HIDE x:\n", 1},
		{"unknown statement", "DISPLAY x.\nxyzzy plugh 42.", 2},
		{"unknown statement word", "frobnicate.\nxyzzy \"a\".", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := ParseSource([]byte(tt.input), "test.p")
			if err == nil {
				t.Fatalf("expected syntax error, got:\n%s", root)
			}
			if root != nil {
				t.Error("a failed parse must not return a tree")
			}
			if !diag.IsSyntaxError(err) {
				t.Errorf("got %v, want a syntax error", err)
			}
			de, _ := diag.As(err)
			if de.Stage != diag.StageParse {
				t.Errorf("stage: got %v, want parse", de.Stage)
			}
			if de.Line != tt.line || de.File != "test.p" {
				t.Errorf("position: got %s:%d, want test.p:%d", de.File, de.Line, tt.line)
			}
		})
	}
}

func TestSyntaxErrorExpectedFound(t *testing.T) {
	_, err := ParseSource([]byte("DISPLAY x"), "test.p")
	de, ok := diag.As(err)
	if !ok {
		t.Fatalf("got %v, want *diag.Error", err)
	}
	if de.Found != "EOF" {
		t.Errorf("found: got %q, want EOF", de.Found)
	}
	if len(de.Expected) != 1 || de.Expected[0] != "PERIOD" {
		t.Errorf("expected: got %v, want [PERIOD]", de.Expected)
	}
}

func TestParseSourceLexError(t *testing.T) {
	_, err := ParseSource([]byte(`DISPLAY "open`), "test.p")
	if !diag.IsLexError(err) {
		t.Errorf("got %v, want a lex error", err)
	}
}

func TestParseEmpty(t *testing.T) {
	root := mustParse(t, "/* only a comment */\n")
	if root.Kind != KindProgram || len(root.Children) != 0 {
		t.Errorf("got %v with %d children, want an empty Program", root.Kind, len(root.Children))
	}
}

func TestParentLinks(t *testing.T) {
	root := mustParse(t, "blk: DO: DEFINE NEW SHARED VARIABLE v AS INTEGER. IF v > 1 THEN DISPLAY v. END.")
	root.Walk(func(n *Node) bool {
		for _, child := range n.Children {
			if child.Parent() != n {
				t.Errorf("%v under %v has the wrong parent", child.Kind, n.Kind)
			}
		}
		return true
	})
	if root.Parent() != nil {
		t.Error("root must have no parent")
	}
}

func TestStatementSpans(t *testing.T) {
	root := mustParse(t, "DISPLAY x.\n\nMESSAGE\n  \"a\".\n")
	msg := root.Children[1]
	if msg.Line() != 3 {
		t.Errorf("start: got line %d, want 3", msg.Line())
	}
	if msg.Span.End.Line != 4 {
		t.Errorf("end: got line %d, want 4", msg.Span.End.Line)
	}
	if !strings.HasSuffix(msg.File(), "test.p") {
		t.Errorf("file: got %q", msg.File())
	}
}

func TestGenericStatementItems(t *testing.T) {
	tests := []struct {
		input string
		names []string
		opaque bool
	}{
		{"UPDATE x y WITH FRAME f.", []string{"x", "y"}, false},
		{"ENABLE ALL EXCEPT btn WITH FRAME f.", nil, false},
		{`EXPORT DELIMITER ";" cust-name.`, []string{"cust-name"}, false},
		{"ROUTINE-LEVEL ON ERROR UNDO, THROW.", nil, true},
		{"OS-DELETE VALUE(path) RECURSIVE.", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root := mustParse(t, tt.input)
			stmt := root.Children[0]
			var names []string
			stmt.Walk(func(n *Node) bool {
				if n.Kind == KindWithClause {
					return false
				}
				if n.Kind == KindIdentifier {
					names = append(names, n.TokenLiteral())
				}
				return true
			})
			if tt.opaque {
				for _, child := range stmt.Children {
					if child.Kind != KindOption {
						t.Errorf("opaque statement child: got %v, want Option", child.Kind)
					}
				}
				return
			}
			if len(names) != len(tt.names) {
				t.Fatalf("identifiers: got %v, want %v\n%s", names, tt.names, root)
			}
			for i := range names {
				if names[i] != tt.names[i] {
					t.Errorf("identifier %d: got %s, want %s", i, names[i], tt.names[i])
				}
			}
		})
	}
}
