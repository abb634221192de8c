package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/proparse/abl/parser"
)

func TestOutwardResolution(t *testing.T) {
	root := NewRoot("test.p")
	proc := root.NewChild(KindRoutine, "p1", nil)
	block := proc.NewChild(KindBlock, "", nil)

	outer, ok := root.Define(&Symbol{Kind: SymbolVariable, Name: "x"})
	require.True(t, ok)
	inner, ok := proc.Define(&Symbol{Kind: SymbolVariable, Name: "X"})
	require.True(t, ok)

	assert.Same(t, inner, block.Resolve("x"))
	assert.Same(t, outer, root.Resolve("X"))
	assert.Nil(t, block.Lookup("x"))
	assert.Nil(t, block.Resolve("y"))
	assert.Same(t, root, block.Root())
	assert.Same(t, proc, block.Owner())
	assert.Same(t, proc, inner.Scope)
}

func TestDefineKeepsFirst(t *testing.T) {
	root := NewRoot("")
	first, ok := root.Define(&Symbol{Kind: SymbolFunction, Name: "f"})
	require.True(t, ok)
	got, ok := root.Define(&Symbol{Kind: SymbolFunction, Name: "F"})
	assert.False(t, ok)
	assert.Same(t, first, got)
	assert.Len(t, root.Symbols(), 1)
}

func TestRecordNamespace(t *testing.T) {
	root := NewRoot("")
	v, ok := root.Define(&Symbol{Kind: SymbolVariable, Name: "customer"})
	require.True(t, ok)
	buf, ok := root.Define(&Symbol{Kind: SymbolBuffer, Name: "customer"})
	require.True(t, ok)

	assert.Same(t, v, root.Resolve("customer"))
	assert.Same(t, buf, root.ResolveRecord("customer"))
	assert.Equal(t, []*Symbol{buf}, root.Buffers())
}

func TestSuperChain(t *testing.T) {
	parent := NewRoot("Parent.cls").NewChild(KindClass, "Parent", nil)
	prop, _ := parent.Define(&Symbol{Kind: SymbolProperty, Name: "Size"})
	tt, _ := parent.Define(&Symbol{Kind: SymbolTempTable, Name: "ttItem"})

	child := NewRoot("Child.cls").NewChild(KindClass, "Child", nil)
	child.Super = parent
	method := child.NewChild(KindRoutine, "Run", nil)

	assert.Same(t, prop, method.Resolve("size"))
	assert.Same(t, tt, method.ResolveRecord("TTITEM"))
	assert.Contains(t, child.Buffers(), tt)
}

func TestScopedBuffers(t *testing.T) {
	root := NewRoot("")
	block := root.NewChild(KindBlock, "FOR", nil)
	buf := &Symbol{Kind: SymbolBuffer, Name: "customer"}
	block.AddBuffer(buf)
	block.AddBuffer(buf)
	assert.Equal(t, []*Symbol{buf}, block.Buffers())
	assert.Empty(t, root.Buffers())
}

func TestTempTableMembers(t *testing.T) {
	tt := &Symbol{Kind: SymbolTempTable, Name: "ttOrder"}
	require.True(t, tt.AddMember(&Symbol{Kind: SymbolField, Name: "OrderNum", DataType: "INTEGER"}))
	assert.False(t, tt.AddMember(&Symbol{Kind: SymbolField, Name: "ordernum"}))

	buf := &Symbol{Kind: SymbolBuffer, Name: "bOrder", Target: tt}
	assert.Same(t, tt, buf.Record())
	assert.Equal(t, "ttOrder", buf.TableName())
	f, ok := buf.Record().Member("ORDERNUM")
	require.True(t, ok)
	assert.Equal(t, "INTEGER", f.DataType)
}

func TestSymbolClass(t *testing.T) {
	assert.Equal(t, parser.ClassVariable, SymbolVariable.Class())
	assert.Equal(t, parser.ClassRecord, SymbolBuffer.Class())
	assert.Equal(t, parser.ClassField, SymbolField.Class())
	assert.True(t, SymbolTempTable.IsRecord())
	assert.False(t, SymbolField.IsRecord())
}

func TestStringIsStable(t *testing.T) {
	build := func() *Scope {
		root := NewRoot("a.p")
		root.Define(&Symbol{Kind: SymbolVariable, Name: "i", DataType: "INTEGER"})
		tt := &Symbol{Kind: SymbolTempTable, Name: "tt"}
		tt.AddMember(&Symbol{Kind: SymbolField, Name: "f", DataType: "CHARACTER"})
		root.Define(tt)
		blk := root.NewChild(KindBlock, "DO", nil)
		blk.AddBuffer(tt)
		return root
	}
	want := "Root a.p\n" +
		"  Variable i INTEGER\n" +
		"  TempTable tt\n" +
		"    Field f CHARACTER\n" +
		"  Block DO\n" +
		"    buffers: tt\n"
	assert.Equal(t, want, build().String())
	assert.Equal(t, build().String(), build().String())
}

func TestEnclosingClass(t *testing.T) {
	root := NewRoot("Acme/Circle.cls")
	cls := root.NewChild(KindClass, "Acme.Circle", nil)
	cls.SuperName = "Acme.Shape"
	cls.Partial = true
	method := cls.NewChild(KindRoutine, "Area", nil)
	blk := method.NewChild(KindBlock, "DO", nil)

	assert.Same(t, cls, blk.Class())
	assert.Same(t, cls, cls.Class())
	assert.Nil(t, root.Class())
	assert.Contains(t, root.String(), "Class Acme.Circle inherits Acme.Shape (partial)\n")
}

func TestHasBufferIsLocal(t *testing.T) {
	root := NewRoot("a.p")
	cust := &Symbol{Kind: SymbolBuffer, Name: "sports2000.Customer"}
	root.Define(cust)
	blk := root.NewChild(KindBlock, "FOR", nil)
	blk.AddBuffer(cust)

	assert.True(t, blk.HasBuffer(cust))
	assert.False(t, root.HasBuffer(cust))
	assert.Contains(t, root.Buffers(), cust)
}
