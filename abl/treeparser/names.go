package treeparser

import (
	"strings"

	"github.com/dhamidi/proparse/abl/diag"
	"github.com/dhamidi/proparse/abl/parser"
	"github.com/dhamidi/proparse/abl/schema"
	"github.com/dhamidi/proparse/abl/scope"
)

// identifier resolves a name used as an expression. In order: a symbol in
// scope, a qualified field or table, an unqualified field of a buffer in
// scope, a record, and finally a class name before a colon.
func (tp *TreeParser) identifier(n *parser.Node) {
	name := n.TokenLiteral()
	if sym := tp.cur.Resolve(name); sym != nil {
		tp.bind(n, sym)
		return
	}
	if strings.Contains(name, ".") {
		tp.qualified(n, name)
		return
	}
	if tp.unqualifiedField(n, name) || tp.failed() {
		return
	}
	rec := tp.findRecord(name, n)
	if tp.failed() {
		return
	}
	if rec != nil {
		tp.bind(n, rec)
		tp.cur.AddBuffer(rec)
		return
	}
	if isTypePosition(n) {
		n.State2 = parser.ClassType
		return
	}
	tp.unresolved(n, "unknown identifier %s", name)
}

// unresolved fails for a name nothing defines, unless the current class
// has a parent that could not be loaded and may define it.
func (tp *TreeParser) unresolved(n *parser.Node, format string, args ...any) {
	if cls := tp.cur.Class(); cls != nil && cls.Partial {
		log.Debugf("%s:%d: %s taken as an inherited member of %s", n.File(), n.Line(), n.TokenLiteral(), cls.Name)
		n.State2 = parser.ClassMember
		return
	}
	tp.fail(diag.KindUnresolvedIdentifier, n, format, args...)
}

// isTypePosition reports whether n is the left operand of a colon, where a
// bare name is a class with a static member.
func isTypePosition(n *parser.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Kind == parser.KindMemberAccess && len(parent.Children) > 0 && parent.Children[0] == n
}

// qualified resolves buffer.field, db.table and db.table.field. A dotted
// name whose qualifier is neither a buffer nor a database can only be a
// class, and only before a colon.
func (tp *TreeParser) qualified(n *parser.Node, name string) {
	parts := strings.Split(name, ".")
	switch len(parts) {
	case 2:
		rec := tp.findRecord(parts[0], n)
		if tp.failed() {
			return
		}
		if rec != nil {
			tp.bindField(n, rec, parts[1])
			return
		}
		if rec := tp.findRecord(name, n); rec != nil {
			tp.bind(n, rec)
			tp.cur.AddBuffer(rec)
			return
		}
		if _, ok := tp.schema.ResolveAlias(parts[0]); ok {
			tp.fail(diag.KindInvalidSchemaReference, n, "database %s has no table %s", parts[0], parts[1])
			return
		}
	case 3:
		if _, ok := tp.schema.ResolveAlias(parts[0]); ok {
			rec := tp.findRecord(parts[0]+"."+parts[1], n)
			if rec == nil {
				tp.fail(diag.KindInvalidSchemaReference, n, "database %s has no table %s", parts[0], parts[1])
				return
			}
			tp.bindField(n, rec, parts[2])
			return
		}
	}
	if isTypePosition(n) {
		n.State2 = parser.ClassType
		return
	}
	tp.unresolved(n, "unknown identifier %s", name)
}

func (tp *TreeParser) bindField(n *parser.Node, rec *scope.Symbol, name string) {
	f := tp.fieldOf(rec, name)
	if f == nil {
		tp.fail(diag.KindInvalidSchemaReference, n, "%s has no field %s", rec.TableName(), name)
		return
	}
	tp.bind(n, f)
	tp.cur.AddBuffer(rec)
}

// fieldOf returns the field name of the record behind buf. Temp-table
// fields match exactly; schema fields may be abbreviated.
func (tp *TreeParser) fieldOf(buf *scope.Symbol, name string) *scope.Symbol {
	owner := buf.Record()
	if owner.Kind == scope.SymbolTempTable {
		if m, ok := owner.Member(name); ok {
			return m
		}
		return nil
	}
	f, ok := tp.schema.LookupField(owner.Table, name)
	if !ok {
		return nil
	}
	return tp.fieldSymbol(buf, f)
}

// fieldSymbol returns the symbol of schema field f reached through buf,
// one per buffer and field.
func (tp *TreeParser) fieldSymbol(buf *scope.Symbol, f *schema.Field) *scope.Symbol {
	key := fieldKey{buffer: buf, field: f}
	if sym, ok := tp.fields[key]; ok {
		return sym
	}
	dt, ok := parser.CanonicalDataType(f.DataType)
	if !ok {
		dt = strings.ToUpper(f.DataType)
	}
	sym := &scope.Symbol{Kind: scope.SymbolField, Name: f.Name, DataType: dt, Table: f.Table, Field: f}
	tp.fields[key] = sym
	return sym
}

// unqualifiedField looks name up as a field of the buffers in scope: the
// buffers scoped to or used in a block and the defined buffers and
// temp-tables. The innermost scope with a match decides; two matches there
// are ambiguous. Schema buffers used anywhere in the unit come last.
func (tp *TreeParser) unqualifiedField(n *parser.Node, name string) bool {
	for s := tp.cur; s != nil; s = s.Parent {
		var candidates []*scope.Symbol
		for _, buf := range s.Buffers() {
			if buf.Decl != nil || s.HasBuffer(buf) {
				candidates = append(candidates, buf)
			}
		}
		if done := tp.pickField(n, name, candidates); done || tp.failed() {
			return done
		}
	}
	var defaults []*scope.Symbol
	for _, sym := range tp.root.Symbols() {
		if sym.Kind == scope.SymbolBuffer && sym.Decl == nil {
			defaults = append(defaults, sym)
		}
	}
	return tp.pickField(n, name, defaults)
}

// pickField binds n to the one field called name among buffers. It fails
// when several buffers have one.
func (tp *TreeParser) pickField(n *parser.Node, name string, buffers []*scope.Symbol) bool {
	var (
		found []*scope.Symbol
		owner []string
	)
	for _, buf := range buffers {
		f := tp.fieldOf(buf, name)
		if f == nil || containsSymbol(found, f) {
			continue
		}
		found = append(found, f)
		owner = append(owner, buf.Name)
	}
	switch len(found) {
	case 0:
		return false
	case 1:
		tp.bind(n, found[0])
		return true
	}
	tp.fail(diag.KindAmbiguousReference, n, "%s is ambiguous: a field of %s", name, strings.Join(owner, " and "))
	return false
}

func containsSymbol(list []*scope.Symbol, sym *scope.Symbol) bool {
	for _, s := range list {
		if s == sym {
			return true
		}
	}
	return false
}

// findRecord resolves a record name: a buffer or temp-table in scope, then
// a schema table, by db.table or by a table name unique across the
// connected databases. It returns nil when nothing matches.
func (tp *TreeParser) findRecord(name string, at *parser.Node) *scope.Symbol {
	if sym := tp.cur.ResolveRecord(name); sym != nil {
		return sym
	}
	if db, table, ok := strings.Cut(name, "."); ok {
		if strings.Contains(table, ".") {
			return nil
		}
		t, ok := tp.schema.LookupTable(db, table)
		if !ok {
			return nil
		}
		return tp.defaultBuffer(t)
	}
	tables := schema.FindTables(tp.schema, name)
	switch len(tables) {
	case 0:
		return nil
	case 1:
		return tp.defaultBuffer(tables[0])
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.QualifiedName()
	}
	tp.fail(diag.KindAmbiguousReference, at, "table %s is ambiguous: %s", name, strings.Join(names, ", "))
	return nil
}

// defaultBuffer returns the buffer a schema table is known by when no
// buffer was defined for it, creating it at unit level on first use.
func (tp *TreeParser) defaultBuffer(t *schema.Table) *scope.Symbol {
	key := t.QualifiedName()
	if sym := tp.root.LookupRecord(key); sym != nil {
		return sym
	}
	sym, _ := tp.root.Define(&scope.Symbol{Kind: scope.SymbolBuffer, Name: key, Table: t})
	return sym
}

// recordRef resolves a record operand. A scoped reference makes the buffer
// usable without qualification in the current block.
func (tp *TreeParser) recordRef(n *parser.Node, scoped bool) *scope.Symbol {
	name := n.TokenLiteral()
	rec := tp.findRecord(name, n)
	if tp.failed() {
		return nil
	}
	if rec == nil {
		if db, table, ok := strings.Cut(name, "."); ok {
			if _, known := tp.schema.ResolveAlias(db); known {
				tp.fail(diag.KindInvalidSchemaReference, n, "database %s has no table %s", db, table)
				return nil
			}
		}
		tp.unresolved(n, "unknown table or buffer %s", name)
		return nil
	}
	tp.bind(n, rec)
	if scoped {
		tp.cur.AddBuffer(rec)
	}
	return rec
}

// named resolves a reference that must name a symbol of the given kind: a
// dataset, query or stream.
func (tp *TreeParser) named(n *parser.Node, kind scope.SymbolKind) {
	name := n.TokenLiteral()
	sym := tp.cur.Resolve(name)
	if sym == nil || sym.Kind != kind {
		tp.unresolved(n, "unknown %s %s", strings.ToLower(kind.String()), name)
		return
	}
	tp.bind(n, sym)
}

// widgetRef resolves FRAME f, BUFFER b, TEMP-TABLE t, DATASET d and the
// like. Frames, browses and menus come into existence on first reference.
func (tp *TreeParser) widgetRef(n *parser.Node) {
	if len(n.Children) == 0 {
		return
	}
	ref := n.Children[0]
	switch n.Name() {
	case "BUFFER", "TEMP-TABLE":
		rec := tp.recordRef(ref, false)
		if rec == nil {
			return
		}
		if n.Name() == "TEMP-TABLE" && rec.Record().Kind != scope.SymbolTempTable {
			tp.fail(diag.KindUnresolvedIdentifier, ref, "%s is not a temp-table", ref.TokenLiteral())
			return
		}
		n.State2 = ref.State2
	case "DATASET":
		tp.named(ref, scope.SymbolDataset)
		n.State2 = ref.State2
	case "QUERY":
		tp.named(ref, scope.SymbolQuery)
		n.State2 = ref.State2
	case "STREAM":
		tp.named(ref, scope.SymbolStream)
		n.State2 = ref.State2
	default:
		n.State2 = parser.ClassWidget
		name := ref.TokenLiteral()
		sym := tp.cur.Resolve(name)
		switch {
		case sym == nil:
			sym = tp.define(tp.cur.Owner(), ref, &scope.Symbol{Kind: scope.SymbolWidget, Name: name})
			sym.AddUse(ref)
		case sym.Kind == scope.SymbolWidget:
			tp.bind(ref, sym)
		default:
			ref.State2 = parser.ClassWidget
		}
	}
	for _, child := range n.Children[1:] {
		tp.visit(child)
	}
}

// memberAccess resolves the object of obj:member. The member itself is
// looked up at run time.
func (tp *TreeParser) memberAccess(n *parser.Node) {
	tp.children(n)
	if n.State2 == parser.ClassUnset {
		n.State2 = parser.ClassMember
	}
}

// call binds a call to a user-defined function or method.
func (tp *TreeParser) call(n *parser.Node) {
	if len(n.Children) > 0 && (n.Children[0].Kind == parser.KindThisObject || n.Children[0].Kind == parser.KindSuper) {
		n.State2 = parser.ClassMethod
		tp.children(n)
		return
	}
	name := n.TokenLiteral()
	sym := tp.cur.Resolve(name)
	switch {
	case sym != nil:
		tp.bind(n, sym)
	default:
		tp.unresolved(n, "unknown function or method %s", name)
	}
	tp.children(n)
}

// typeArgBuiltins take a class name as their last argument.
var typeArgBuiltins = map[string]bool{
	"TYPE-OF":   true,
	"GET-CLASS": true,
}

func (tp *TreeParser) builtin(n *parser.Node) {
	n.State2 = parser.ClassBuiltin
	name := n.Name()
	if full, ok := parser.BuiltinName(name); ok {
		name = full
	}
	for _, child := range n.Children {
		if tp.failed() {
			return
		}
		switch {
		case child.Kind == parser.KindRecordPhrase:
			// CAN-FIND looks the record up in a buffer of its own.
			s := tp.cur.NewChild(scope.KindBlock, name, n)
			n.Scope = s
			tp.within(s, func() { tp.visit(child) })
		case child.Kind == parser.KindArgs && typeArgBuiltins[name] && len(child.Children) > 0:
			last := len(child.Children) - 1
			for i, arg := range child.Children {
				if i == last && len(arg.Children) == 1 {
					if id := arg.Children[0]; id.Kind == parser.KindIdentifier && tp.cur.Resolve(id.TokenLiteral()) == nil {
						id.State2 = parser.ClassType
						continue
					}
				}
				tp.visit(arg)
			}
		default:
			tp.visit(child)
		}
	}
}
