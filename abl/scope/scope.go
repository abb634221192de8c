// Package scope is the symbol table built by the tree parser: a tree of
// lexical scopes with parent back-references, each owning its symbols.
// Lookup walks outward from a scope to the root; there is no global table.
package scope

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhamidi/proparse/abl/parser"
)

type Kind int

const (
	KindRoot Kind = iota
	KindClass
	KindRoutine
	KindBlock
)

var kindNames = map[Kind]string{
	KindRoot:    "Root",
	KindClass:   "Class",
	KindRoutine: "Routine",
	KindBlock:   "Block",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Scope owns the symbols defined in one lexical region. Records (buffers
// and temp-tables) live in their own namespace, as a variable and a table
// may share a name.
type Scope struct {
	Kind     Kind
	Name     string
	Node     *parser.Node
	Parent   *Scope
	Children []*Scope
	// Super is the scope of the parent class for class scopes. Inherited
	// members are found through it.
	Super *Scope
	// SuperName is the parent class as written after INHERITS.
	SuperName string
	// Partial marks a class whose parent could not be loaded: its
	// inherited members are unknown.
	Partial bool

	symbols []*Symbol
	names   map[string]*Symbol
	records map[string]*Symbol
	// buffers are the record buffers scoped to this block by a FOR, DO FOR
	// or REPEAT FOR header, or referenced in it.
	buffers []*Symbol
}

func NewRoot(name string) *Scope {
	return newScope(KindRoot, name, nil, nil)
}

func newScope(kind Kind, name string, node *parser.Node, parent *Scope) *Scope {
	return &Scope{
		Kind:    kind,
		Name:    name,
		Node:    node,
		Parent:  parent,
		names:   make(map[string]*Symbol),
		records: make(map[string]*Symbol),
	}
}

// NewChild opens a scope nested in s.
func (s *Scope) NewChild(kind Kind, name string, node *parser.Node) *Scope {
	child := newScope(kind, name, node, s)
	s.Children = append(s.Children, child)
	return child
}

func (s *Scope) ScopeName() string {
	if s.Name == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + " " + s.Name
}

// Class returns the nearest enclosing class scope, or nil.
func (s *Scope) Class() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == KindClass {
			return cur
		}
	}
	return nil
}

func (s *Scope) Root() *Scope {
	for s.Parent != nil {
		s = s.Parent
	}
	return s
}

// Owner returns the nearest scope that is not a block: the scope that
// DEFINE statements inside blocks belong to.
func (s *Scope) Owner() *Scope {
	for s.Kind == KindBlock && s.Parent != nil {
		s = s.Parent
	}
	return s
}

// Define adds sym to s. If a symbol of the same name exists in the same
// namespace, that one is returned with false and s is unchanged.
func (s *Scope) Define(sym *Symbol) (*Symbol, bool) {
	table := s.names
	if sym.Kind.IsRecord() {
		table = s.records
	}
	key := strings.ToUpper(sym.Name)
	if existing, ok := table[key]; ok {
		return existing, false
	}
	sym.Scope = s
	table[key] = sym
	s.symbols = append(s.symbols, sym)
	return sym, true
}

// Lookup finds a non-record symbol defined in s or, for a class scope, in
// one of its super classes.
func (s *Scope) Lookup(name string) *Symbol {
	key := strings.ToUpper(name)
	for cur := s; cur != nil; cur = cur.Super {
		if sym, ok := cur.names[key]; ok {
			return sym
		}
	}
	return nil
}

// LookupRecord finds a buffer or temp-table defined in s or its super
// classes.
func (s *Scope) LookupRecord(name string) *Symbol {
	key := strings.ToUpper(name)
	for cur := s; cur != nil; cur = cur.Super {
		if sym, ok := cur.records[key]; ok {
			return sym
		}
	}
	return nil
}

// Resolve looks name up in s and then in each enclosing scope.
func (s *Scope) Resolve(name string) *Symbol {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym := cur.Lookup(name); sym != nil {
			return sym
		}
	}
	return nil
}

// ResolveRecord looks a record name up in s and each enclosing scope.
func (s *Scope) ResolveRecord(name string) *Symbol {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym := cur.LookupRecord(name); sym != nil {
			return sym
		}
	}
	return nil
}

// Symbols returns the symbols of s in definition order.
func (s *Scope) Symbols() []*Symbol {
	return s.symbols
}

// AddBuffer records that buf is scoped to or used in s. Repeats are
// ignored.
func (s *Scope) AddBuffer(buf *Symbol) {
	for _, b := range s.buffers {
		if b == buf {
			return
		}
	}
	s.buffers = append(s.buffers, buf)
}

// HasBuffer reports whether buf was scoped to or used in s itself.
func (s *Scope) HasBuffer(buf *Symbol) bool {
	for _, b := range s.buffers {
		if b == buf {
			return true
		}
	}
	return false
}

// Buffers returns the record symbols usable from s without qualification,
// innermost first: those scoped to s, the records defined in s and, for
// class scopes, those of the super classes.
func (s *Scope) Buffers() []*Symbol {
	var out []*Symbol
	seen := make(map[*Symbol]bool)
	add := func(sym *Symbol) {
		if !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	for _, b := range s.buffers {
		add(b)
	}
	for cur := s; cur != nil; cur = cur.Super {
		for _, sym := range cur.symbols {
			if sym.Kind.IsRecord() {
				add(sym)
			}
		}
	}
	return out
}

// Walk calls fn for s and every scope nested in it, parents first.
func (s *Scope) Walk(fn func(*Scope)) {
	fn(s)
	for _, child := range s.Children {
		child.Walk(fn)
	}
}

// String dumps the scope tree with its symbols. The output is stable for
// equal trees, so two resolutions can be compared by their dumps.
func (s *Scope) String() string {
	var b strings.Builder
	s.write(&b, 0)
	return b.String()
}

func (s *Scope) write(b *strings.Builder, indent int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%s%s", pad, s.ScopeName())
	if s.SuperName != "" {
		fmt.Fprintf(b, " inherits %s", s.SuperName)
	}
	if s.Partial {
		b.WriteString(" (partial)")
	}
	if s.Node != nil {
		fmt.Fprintf(b, " @%d", s.Node.Line())
	}
	b.WriteString("\n")
	for _, sym := range s.symbols {
		fmt.Fprintf(b, "%s  %s\n", pad, sym)
		for _, member := range sym.Members {
			fmt.Fprintf(b, "%s    %s\n", pad, member)
		}
	}
	if len(s.buffers) > 0 {
		names := make([]string, len(s.buffers))
		for i, buf := range s.buffers {
			names[i] = buf.Name
		}
		sort.Strings(names)
		fmt.Fprintf(b, "%s  buffers: %s\n", pad, strings.Join(names, ", "))
	}
	for _, child := range s.Children {
		child.write(b, indent+1)
	}
}
