package treeparser

import (
	"strings"

	"github.com/dhamidi/proparse/abl/diag"
	"github.com/dhamidi/proparse/abl/parser"
	"github.com/dhamidi/proparse/abl/scope"
)

// define adds sym to s and binds the defining node n. A name defined twice
// in one scope keeps its first definition.
func (tp *TreeParser) define(s *scope.Scope, n *parser.Node, sym *scope.Symbol) *scope.Symbol {
	got, ok := s.Define(sym)
	if !ok {
		log.Debugf("%s:%d: %s %s already defined in %s, keeping the first definition",
			n.File(), n.Line(), sym.Kind, sym.Name, s.ScopeName())
	}
	n.Symbol = got
	n.State2 = got.Kind.Class()
	return got
}

// typeName is the canonical primitive type of a TypeSpec, or the class name
// as written.
func typeName(ts *parser.Node) string {
	if ts == nil || ts.Token == nil {
		return ""
	}
	if dt, ok := parser.CanonicalDataType(ts.Token.Literal); ok {
		return dt
	}
	return ts.Token.Literal
}

// dataType is the type given by the AS or LIKE child of n. A LIKE operand
// is resolved on the way.
func (tp *TreeParser) dataType(n *parser.Node) string {
	if ts := n.FirstChildOfKind(parser.KindTypeSpec); ts != nil {
		return typeName(ts)
	}
	like := n.FirstChildOfKind(parser.KindLikeSpec)
	if like == nil || len(like.Children) == 0 {
		return ""
	}
	ref := like.Children[0]
	tp.visit(ref)
	if sym, ok := ref.Symbol.(*scope.Symbol); ok {
		return sym.DataType
	}
	return ""
}

func (tp *TreeParser) defineData(n *parser.Node, kind scope.SymbolKind) *scope.Symbol {
	sym := &scope.Symbol{Kind: kind, Name: n.TokenLiteral(), Decl: n}
	sym.DataType = tp.dataType(n)
	if tp.failed() {
		return nil
	}
	return tp.define(tp.cur.Owner(), n, sym)
}

// defineNamed defines the name of a stream, frame, widget, query or event.
func (tp *TreeParser) defineNamed(n *parser.Node, kind scope.SymbolKind) {
	tp.define(tp.cur.Owner(), n, &scope.Symbol{Kind: kind, Name: n.TokenLiteral(), Decl: n})
}

// options returns the upper-case words of the Option children of n.
func options(n *parser.Node) map[string]bool {
	words := make(map[string]bool)
	for _, opt := range n.ChildrenOfKind(parser.KindOption) {
		words[opt.Name()] = true
	}
	return words
}

// defineParameter handles DEFINE PARAMETER. TABLE and DATASET parameters
// name an existing temp-table or dataset and define nothing new.
func (tp *TreeParser) defineParameter(n *parser.Node) {
	opts := options(n)
	switch {
	case opts["TABLE"]:
		if rr := n.FirstChildOfKind(parser.KindRecordRef); rr != nil {
			tp.recordRef(rr, false)
		}
	case opts["DATASET"]:
		if id := n.FirstChildOfKind(parser.KindIdentifier); id != nil {
			tp.named(id, scope.SymbolDataset)
		}
	case opts["TABLE-HANDLE"] || opts["DATASET-HANDLE"]:
		tp.define(tp.cur.Owner(), n, &scope.Symbol{Kind: scope.SymbolParameter, Name: n.TokenLiteral(), Decl: n, DataType: "HANDLE"})
	default:
		tp.defineData(n, scope.SymbolParameter)
	}
}

// parameter defines one entry of a routine's parameter list in the
// current scope.
func (tp *TreeParser) parameter(p *parser.Node) {
	opts := options(p)
	switch {
	case opts["BUFFER"]:
		rr := p.FirstChildOfKind(parser.KindRecordRef)
		if rr == nil {
			return
		}
		rec := tp.recordRef(rr, false)
		if rec == nil {
			return
		}
		tp.define(tp.cur, p, bufferFor(p, rec))
	case opts["TABLE"]:
		if rr := p.FirstChildOfKind(parser.KindRecordRef); rr != nil {
			tp.recordRef(rr, false)
		}
	case opts["DATASET"]:
		if id := p.FirstChildOfKind(parser.KindIdentifier); id != nil {
			tp.named(id, scope.SymbolDataset)
		}
	case opts["TABLE-HANDLE"] || opts["DATASET-HANDLE"]:
		tp.define(tp.cur, p, &scope.Symbol{Kind: scope.SymbolParameter, Name: p.TokenLiteral(), Decl: p, DataType: "HANDLE"})
	default:
		sym := &scope.Symbol{Kind: scope.SymbolParameter, Name: p.TokenLiteral(), Decl: p}
		sym.DataType = tp.dataType(p)
		if !tp.failed() {
			tp.define(tp.cur, p, sym)
		}
	}
}

// bufferFor builds the symbol of a buffer named by n over the record rec.
func bufferFor(n *parser.Node, rec *scope.Symbol) *scope.Symbol {
	buf := &scope.Symbol{Kind: scope.SymbolBuffer, Name: n.TokenLiteral(), Decl: n}
	owner := rec.Record()
	if owner.Kind == scope.SymbolTempTable {
		buf.Target = owner
	} else {
		buf.Table = owner.Table
	}
	return buf
}

func (tp *TreeParser) defineBuffer(n *parser.Node) {
	rr := n.FirstChildOfKind(parser.KindRecordRef)
	if rr == nil {
		return
	}
	rec := tp.recordRef(rr, false)
	if rec == nil {
		return
	}
	if options(n)["TEMP-TABLE"] && rec.Record().Kind != scope.SymbolTempTable {
		tp.fail(diag.KindUnresolvedIdentifier, rr, "%s is not a temp-table", rr.TokenLiteral())
		return
	}
	tp.define(tp.cur.Owner(), n, bufferFor(n, rec))
}

// defineTempTable defines a temp-table with the fields copied from its LIKE
// table followed by its own FIELD definitions.
func (tp *TreeParser) defineTempTable(n *parser.Node) {
	tt := &scope.Symbol{Kind: scope.SymbolTempTable, Name: n.TokenLiteral(), Decl: n}
	for _, child := range n.Children {
		if tp.failed() {
			return
		}
		switch child.Kind {
		case parser.KindLikeSpec:
			rr := child.FirstChildOfKind(parser.KindRecordRef)
			if rr == nil {
				continue
			}
			if rec := tp.recordRef(rr, false); rec != nil {
				copyFields(tt, rec.Record())
			}
		case parser.KindFieldDef:
			f := &scope.Symbol{Kind: scope.SymbolField, Name: child.TokenLiteral(), Decl: child}
			f.DataType = tp.dataType(child)
			if !tt.AddMember(f) {
				log.Debugf("%s:%d: field %s repeated in %s", child.File(), child.Line(), f.Name, tt.Name)
				continue
			}
			child.Symbol = f
			child.State2 = parser.ClassField
		}
	}
	if tp.failed() {
		return
	}
	if got := tp.define(tp.cur.Owner(), n, tt); got == tt {
		for _, m := range tt.Members {
			m.Scope = got.Scope
		}
	}
}

// copyFields gives tt the fields of rec, a temp-table or a schema buffer.
func copyFields(tt, rec *scope.Symbol) {
	if rec.Kind == scope.SymbolTempTable {
		for _, m := range rec.Members {
			tt.AddMember(&scope.Symbol{Kind: scope.SymbolField, Name: m.Name, DataType: m.DataType, Field: m.Field})
		}
		return
	}
	if rec.Table == nil {
		return
	}
	for _, f := range rec.Table.Fields {
		dt, ok := parser.CanonicalDataType(f.DataType)
		if !ok {
			dt = strings.ToUpper(f.DataType)
		}
		tt.AddMember(&scope.Symbol{Kind: scope.SymbolField, Name: f.Name, DataType: dt, Field: f, Table: f.Table})
	}
}

func (tp *TreeParser) defineDataset(n *parser.Node) {
	tp.define(tp.cur.Owner(), n, &scope.Symbol{Kind: scope.SymbolDataset, Name: n.TokenLiteral(), Decl: n})
	for _, child := range n.Children {
		switch child.Kind {
		case parser.KindRecordRef:
			tp.recordRef(child, false)
		case parser.KindDataRelation:
			var bufs []*scope.Symbol
			for _, rr := range child.ChildrenOfKind(parser.KindRecordRef) {
				bufs = append(bufs, tp.recordRef(rr, false))
			}
			tp.parentIDField(child, bufs)
		}
		if tp.failed() {
			return
		}
	}
}

// parentIDField checks that the PARENT-ID-FIELD of a relation names a field
// of its child buffer.
func (tp *TreeParser) parentIDField(rel *parser.Node, bufs []*scope.Symbol) {
	if tp.failed() || len(bufs) < 2 || bufs[1] == nil {
		return
	}
	for _, opt := range rel.ChildrenOfKind(parser.KindOption) {
		if opt.Name() != "PARENT-ID-FIELD" || len(opt.Children) == 0 {
			continue
		}
		f := opt.Children[0]
		if tp.fieldOf(bufs[1], f.TokenLiteral()) == nil {
			tp.fail(diag.KindInvalidSchemaReference, f, "%s has no field %s", bufs[1].TableName(), f.TokenLiteral())
			return
		}
	}
}

// defineProperty defines a property. Its accessors are resolved like
// routines, after the rest of the class.
func (tp *TreeParser) defineProperty(n *parser.Node) {
	if tp.defineData(n, scope.SymbolProperty) == nil {
		return
	}
	for _, acc := range n.ChildrenOfKind(parser.KindPropertyAccessor) {
		tp.later(acc)
	}
}
