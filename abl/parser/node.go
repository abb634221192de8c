package parser

import "strings"

type NodeKind int

const (
	KindError NodeKind = iota

	// Compilation unit level
	KindProgram
	KindUsingStmt
	KindClassDecl
	KindInterfaceDecl
	KindInheritsClause
	KindImplementsClause
	KindModifiers

	// Routines and members
	KindProcedureDecl
	KindFunctionDecl
	KindMethodDecl
	KindConstructorDecl
	KindDestructorDecl
	KindTriggerBlock
	KindParameterList
	KindParameterDecl
	KindPropertyAccessor

	// Definitions
	KindDefineVariable
	KindDefineParameter
	KindDefineBuffer
	KindDefineTempTable
	KindFieldDef
	KindIndexDef
	KindDefineDataset
	KindDataRelation
	KindDefineQuery
	KindDefineStream
	KindDefineFrame
	KindDefineProperty
	KindDefineEvent
	KindDefineWidget
	KindTypeSpec
	KindLikeSpec
	KindOption

	// Blocks
	KindCodeBlock
	KindDoStmt
	KindRepeatStmt
	KindForStmt
	KindBlockLabel
	KindLoopRange
	KindWhileClause
	KindOnPhrase
	KindCatchBlock
	KindFinallyBlock
	KindRecordPhrase
	KindWhereClause
	KindOfClause
	KindUseIndex
	KindLockOption
	KindByClause
	KindBreakClause

	// Statements
	KindEmptyStmt
	KindAssignStmt
	KindAssignment
	KindExprStmt
	KindCreateStmt
	KindDeleteStmt
	KindDeleteObjectStmt
	KindFindStmt
	KindReleaseStmt
	KindDisplayStmt
	KindMessageStmt
	KindPutStmt
	KindRunStmt
	KindReturnStmt
	KindLeaveStmt
	KindNextStmt
	KindUndoStmt
	KindIfStmt
	KindCaseStmt
	KindWhenBranch
	KindOtherwiseBranch
	KindEmptyTempTableStmt
	KindCopyLobStmt
	KindBufferCopyStmt
	KindOpenQueryStmt
	KindGetStmt
	KindCloseStmt
	KindStreamIOStmt
	KindPublishStmt
	KindSubscribeStmt
	KindUnsubscribeStmt
	KindApplyStmt
	KindWaitForStmt
	KindPauseStmt
	KindQuitStmt
	KindStopStmt
	KindGenericStmt
	KindInClause
	KindWithClause
	KindNoError

	// Expressions
	KindBinaryExpr
	KindUnaryExpr
	KindParenExpr
	KindLiteral
	KindIdentifier
	KindRecordRef
	KindWidgetRef
	KindMemberAccess
	KindDynamicField
	KindCallExpr
	KindBuiltinCall
	KindArgs
	KindArgument
	KindSubscript
	KindNewExpr
	KindCastExpr
	KindIfExpr
	KindThisObject
	KindSuper
	KindTypeName
)

var nodeKindNames = map[NodeKind]string{
	KindError:              "Error",
	KindProgram:            "Program",
	KindUsingStmt:          "UsingStmt",
	KindClassDecl:          "ClassDecl",
	KindInterfaceDecl:      "InterfaceDecl",
	KindInheritsClause:     "InheritsClause",
	KindImplementsClause:   "ImplementsClause",
	KindModifiers:          "Modifiers",
	KindProcedureDecl:      "ProcedureDecl",
	KindFunctionDecl:       "FunctionDecl",
	KindMethodDecl:         "MethodDecl",
	KindConstructorDecl:    "ConstructorDecl",
	KindDestructorDecl:     "DestructorDecl",
	KindTriggerBlock:       "TriggerBlock",
	KindParameterList:      "ParameterList",
	KindParameterDecl:      "ParameterDecl",
	KindPropertyAccessor:   "PropertyAccessor",
	KindDefineVariable:     "DefineVariable",
	KindDefineParameter:    "DefineParameter",
	KindDefineBuffer:       "DefineBuffer",
	KindDefineTempTable:    "DefineTempTable",
	KindFieldDef:           "FieldDef",
	KindIndexDef:           "IndexDef",
	KindDefineDataset:      "DefineDataset",
	KindDataRelation:       "DataRelation",
	KindDefineQuery:        "DefineQuery",
	KindDefineStream:       "DefineStream",
	KindDefineFrame:        "DefineFrame",
	KindDefineProperty:     "DefineProperty",
	KindDefineEvent:        "DefineEvent",
	KindDefineWidget:       "DefineWidget",
	KindTypeSpec:           "TypeSpec",
	KindLikeSpec:           "LikeSpec",
	KindOption:             "Option",
	KindCodeBlock:          "CodeBlock",
	KindDoStmt:             "DoStmt",
	KindRepeatStmt:         "RepeatStmt",
	KindForStmt:            "ForStmt",
	KindBlockLabel:         "BlockLabel",
	KindLoopRange:          "LoopRange",
	KindWhileClause:        "WhileClause",
	KindOnPhrase:           "OnPhrase",
	KindCatchBlock:         "CatchBlock",
	KindFinallyBlock:       "FinallyBlock",
	KindRecordPhrase:       "RecordPhrase",
	KindWhereClause:        "WhereClause",
	KindOfClause:           "OfClause",
	KindUseIndex:           "UseIndex",
	KindLockOption:         "LockOption",
	KindByClause:           "ByClause",
	KindBreakClause:        "BreakClause",
	KindEmptyStmt:          "EmptyStmt",
	KindAssignStmt:         "AssignStmt",
	KindAssignment:         "Assignment",
	KindExprStmt:           "ExprStmt",
	KindCreateStmt:         "CreateStmt",
	KindDeleteStmt:         "DeleteStmt",
	KindDeleteObjectStmt:   "DeleteObjectStmt",
	KindFindStmt:           "FindStmt",
	KindReleaseStmt:        "ReleaseStmt",
	KindDisplayStmt:        "DisplayStmt",
	KindMessageStmt:        "MessageStmt",
	KindPutStmt:            "PutStmt",
	KindRunStmt:            "RunStmt",
	KindReturnStmt:         "ReturnStmt",
	KindLeaveStmt:          "LeaveStmt",
	KindNextStmt:           "NextStmt",
	KindUndoStmt:           "UndoStmt",
	KindIfStmt:             "IfStmt",
	KindCaseStmt:           "CaseStmt",
	KindWhenBranch:         "WhenBranch",
	KindOtherwiseBranch:    "OtherwiseBranch",
	KindEmptyTempTableStmt: "EmptyTempTableStmt",
	KindCopyLobStmt:        "CopyLobStmt",
	KindBufferCopyStmt:     "BufferCopyStmt",
	KindOpenQueryStmt:      "OpenQueryStmt",
	KindGetStmt:            "GetStmt",
	KindCloseStmt:          "CloseStmt",
	KindStreamIOStmt:       "StreamIOStmt",
	KindPublishStmt:        "PublishStmt",
	KindSubscribeStmt:      "SubscribeStmt",
	KindUnsubscribeStmt:    "UnsubscribeStmt",
	KindApplyStmt:          "ApplyStmt",
	KindWaitForStmt:        "WaitForStmt",
	KindPauseStmt:          "PauseStmt",
	KindQuitStmt:           "QuitStmt",
	KindStopStmt:           "StopStmt",
	KindGenericStmt:        "GenericStmt",
	KindInClause:           "InClause",
	KindWithClause:         "WithClause",
	KindNoError:            "NoError",
	KindBinaryExpr:         "BinaryExpr",
	KindUnaryExpr:          "UnaryExpr",
	KindParenExpr:          "ParenExpr",
	KindLiteral:            "Literal",
	KindIdentifier:         "Identifier",
	KindRecordRef:          "RecordRef",
	KindWidgetRef:          "WidgetRef",
	KindMemberAccess:       "MemberAccess",
	KindDynamicField:       "DynamicField",
	KindCallExpr:           "CallExpr",
	KindBuiltinCall:        "BuiltinCall",
	KindArgs:               "Args",
	KindArgument:           "Argument",
	KindSubscript:          "Subscript",
	KindNewExpr:            "NewExpr",
	KindCastExpr:           "CastExpr",
	KindIfExpr:             "IfExpr",
	KindThisObject:         "ThisObject",
	KindSuper:              "Super",
	KindTypeName:           "TypeName",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// NodeKindByName maps a node kind name back to its kind.
func NodeKindByName(name string) (NodeKind, bool) {
	for kind, n := range nodeKindNames {
		if strings.EqualFold(n, name) {
			return kind, true
		}
	}
	return KindError, false
}

// Class is the secondary classification of a node. The parser leaves it
// unset or provisional; the tree parser refines it once symbols and schema
// are known.
type Class int

const (
	ClassUnset Class = iota
	ClassRecord
	ClassField
	ClassVariable
	ClassParameter
	ClassTempTable
	ClassDataset
	ClassQuery
	ClassStream
	ClassProperty
	ClassMethod
	ClassProcedure
	ClassFunction
	ClassEvent
	ClassWidget
	ClassAutomationObject
	ClassType
	ClassBuiltin
	ClassMember
)

var classNames = map[Class]string{
	ClassUnset:            "",
	ClassRecord:           "Record",
	ClassField:            "Field",
	ClassVariable:         "Variable",
	ClassParameter:        "Parameter",
	ClassTempTable:        "TempTable",
	ClassDataset:          "Dataset",
	ClassQuery:            "Query",
	ClassStream:           "Stream",
	ClassProperty:         "Property",
	ClassMethod:           "Method",
	ClassProcedure:        "Procedure",
	ClassFunction:         "Function",
	ClassEvent:            "Event",
	ClassWidget:           "Widget",
	ClassAutomationObject: "AutomationObject",
	ClassType:             "Type",
	ClassBuiltin:          "Builtin",
	ClassMember:           "Member",
}

func (c Class) String() string {
	return classNames[c]
}

// ScopeRef is the scope a block-owning node opens, set by the tree parser.
type ScopeRef interface {
	ScopeName() string
}

// SymbolRef is the symbol an identifier node is bound to, set by the tree
// parser.
type SymbolRef interface {
	SymbolName() string
	SymbolKind() string
}

type Node struct {
	Kind     NodeKind
	State2   Class
	Span     Span
	Children []*Node
	Token    *Token
	Scope    ScopeRef
	Symbol   SymbolRef
	parent   *Node
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		child.parent = n
		n.Children = append(n.Children, child)
	}
}

// Parent returns the node owning n, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// Walk calls fn for n and its descendants in pre-order. Returning false from
// fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// FindAll returns all descendants of n (n included) of the given kind, in
// source order.
func (n *Node) FindAll(kind NodeKind) []*Node {
	var result []*Node
	n.Walk(func(node *Node) bool {
		if node.Kind == kind {
			result = append(result, node)
		}
		return true
	})
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Name returns the upper-case token text, the canonical form of a name.
func (n *Node) Name() string {
	if n.Token != nil {
		return n.Token.Upper()
	}
	return ""
}

func (n *Node) Line() int {
	return n.Span.Start.Line
}

func (n *Node) File() string {
	return n.Span.Start.File
}

func (n *Node) String() string {
	return n.stringIndent(0, false)
}

func (n *Node) StringWithPositions() string {
	return n.stringIndent(0, true)
}

func (n *Node) stringIndent(indent int, showPositions bool) string {
	var b strings.Builder
	n.writeIndent(&b, indent, showPositions)
	return b.String()
}

func (n *Node) writeIndent(b *strings.Builder, indent int, showPositions bool) {
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(n.Kind.String())
	if showPositions {
		b.WriteString(" [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]")
	}
	if n.Token != nil {
		b.WriteString(" " + n.Token.Literal)
	}
	if n.State2 != ClassUnset {
		b.WriteString(" <" + n.State2.String() + ">")
	}
	b.WriteString("\n")
	for _, child := range n.Children {
		child.writeIndent(b, indent+1, showPositions)
	}
}
