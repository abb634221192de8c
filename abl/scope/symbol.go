package scope

import (
	"fmt"
	"strings"

	"github.com/dhamidi/proparse/abl/parser"
	"github.com/dhamidi/proparse/abl/schema"
)

type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolParameter
	SymbolBuffer
	SymbolTempTable
	SymbolDataset
	SymbolQuery
	SymbolStream
	SymbolProperty
	SymbolMethod
	SymbolProcedure
	SymbolFunction
	SymbolEvent
	SymbolField
	SymbolWidget
)

var symbolKindNames = map[SymbolKind]string{
	SymbolVariable:  "Variable",
	SymbolParameter: "Parameter",
	SymbolBuffer:    "Buffer",
	SymbolTempTable: "TempTable",
	SymbolDataset:   "Dataset",
	SymbolQuery:     "Query",
	SymbolStream:    "Stream",
	SymbolProperty:  "Property",
	SymbolMethod:    "Method",
	SymbolProcedure: "Procedure",
	SymbolFunction:  "Function",
	SymbolEvent:     "Event",
	SymbolField:     "Field",
	SymbolWidget:    "Widget",
}

func (k SymbolKind) String() string {
	if name, ok := symbolKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsRecord reports whether symbols of this kind name a record: they live
// in the record namespace of a scope.
func (k SymbolKind) IsRecord() bool {
	return k == SymbolBuffer || k == SymbolTempTable
}

// Class maps the symbol kind to the node classification of its uses.
func (k SymbolKind) Class() parser.Class {
	switch k {
	case SymbolVariable:
		return parser.ClassVariable
	case SymbolParameter:
		return parser.ClassParameter
	case SymbolBuffer:
		return parser.ClassRecord
	case SymbolTempTable:
		return parser.ClassTempTable
	case SymbolDataset:
		return parser.ClassDataset
	case SymbolQuery:
		return parser.ClassQuery
	case SymbolStream:
		return parser.ClassStream
	case SymbolProperty:
		return parser.ClassProperty
	case SymbolMethod:
		return parser.ClassMethod
	case SymbolProcedure:
		return parser.ClassProcedure
	case SymbolFunction:
		return parser.ClassFunction
	case SymbolEvent:
		return parser.ClassEvent
	case SymbolField:
		return parser.ClassField
	case SymbolWidget:
		return parser.ClassWidget
	}
	return parser.ClassUnset
}

// Symbol binds a name to its declaration and its uses.
type Symbol struct {
	Kind SymbolKind
	Name string
	// Decl is the defining node. Schema buffers created on first use have
	// none.
	Decl *parser.Node
	Uses []*parser.Node
	// DataType is the canonical type of variables, parameters, properties
	// and fields, or the class name of an object type.
	DataType string
	// Table is the schema table of a buffer or a schema field's table.
	Table *schema.Table
	Field *schema.Field
	// Target is the temp-table a buffer is defined for.
	Target *Symbol
	// Members are the fields of a temp-table, in definition order.
	Members []*Symbol
	members map[string]*Symbol
	Scope   *Scope
}

func (s *Symbol) SymbolName() string { return s.Name }

func (s *Symbol) SymbolKind() string { return s.Kind.String() }

// AddUse records n as a use site of s.
func (s *Symbol) AddUse(n *parser.Node) {
	s.Uses = append(s.Uses, n)
}

// AddMember adds a field to a temp-table. A repeated name is rejected.
func (s *Symbol) AddMember(m *Symbol) bool {
	if s.members == nil {
		s.members = make(map[string]*Symbol)
	}
	key := strings.ToUpper(m.Name)
	if _, dup := s.members[key]; dup {
		return false
	}
	s.members[key] = m
	s.Members = append(s.Members, m)
	return true
}

// Member returns the temp-table field named name.
func (s *Symbol) Member(name string) (*Symbol, bool) {
	m, ok := s.members[strings.ToUpper(name)]
	return m, ok
}

// Record returns the symbol that owns the fields of a buffer: the
// temp-table it was defined for, or the buffer itself.
func (s *Symbol) Record() *Symbol {
	for s.Target != nil {
		s = s.Target
	}
	return s
}

// TableName is the name the record of a buffer is known by: the temp-table
// name or the qualified schema table name.
func (s *Symbol) TableName() string {
	rec := s.Record()
	if rec.Table != nil {
		return rec.Table.QualifiedName()
	}
	return rec.Name
}

func (s *Symbol) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", s.Kind, s.Name)
	switch {
	case s.Kind == SymbolBuffer:
		fmt.Fprintf(&b, " for %s", s.TableName())
	case s.Kind == SymbolField && s.Field != nil:
		fmt.Fprintf(&b, " of %s", s.Field.Table.QualifiedName())
	}
	if s.DataType != "" {
		fmt.Fprintf(&b, " %s", s.DataType)
	}
	if s.Decl != nil {
		fmt.Fprintf(&b, " @%d", s.Decl.Line())
	}
	if len(s.Uses) > 0 {
		fmt.Fprintf(&b, " uses=%d", len(s.Uses))
	}
	return b.String()
}
