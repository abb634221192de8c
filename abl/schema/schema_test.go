package schema

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := LoadAll("testdata/sports2000.toml", "testdata/warehouse.yaml")
	require.NoError(t, err)
	return s
}

func TestLoadTOML(t *testing.T) {
	s, err := LoadTOML("testdata/sports2000.toml")
	require.NoError(t, err)
	assert.Equal(t, []string{"sports2000"}, s.Databases())

	customer, ok := s.LookupTable("sports2000", "customer")
	require.True(t, ok)
	assert.Equal(t, "Customer", customer.Name)
	assert.Equal(t, "sports2000.Customer", customer.QualifiedName())
	require.Len(t, customer.Fields, 4)

	name, ok := s.LookupField(customer, "NAME")
	require.True(t, ok)
	assert.Equal(t, "character", name.DataType)
	assert.Same(t, customer, name.Table)
}

func TestLoadYAML(t *testing.T) {
	s, err := Load("testdata/warehouse.yaml")
	require.NoError(t, err)
	item, ok := s.LookupTable("warehouse", "item")
	require.True(t, ok)
	price, ok := item.Field("price")
	require.True(t, ok)
	assert.Equal(t, 4, price.Extent)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("testdata/missing.toml")
	assert.Error(t, err)

	_, err = Load("testdata/duplicate.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate field")

	_, err = LoadAll("testdata/sports2000.toml", "testdata/sports2000.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already connected")
}

func TestFieldAbbreviation(t *testing.T) {
	s := loadTestSchema(t)
	customer, _ := s.LookupTable("sports2000", "Customer")

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"CustNum", "CustNum", true},
		{"cust", "CustNum", true},
		{"bal", "Balance", true},
		{"c", "", false},
		{"nosuch", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := s.LookupField(customer, tt.name)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, f.Name)
			}
		})
	}
}

func TestAliases(t *testing.T) {
	s := loadTestSchema(t)

	require.NoError(t, s.CreateAlias("foo", "sports2000"))
	require.NoError(t, s.CreateAlias("bar", "FOO"))

	db, ok := s.ResolveAlias("bar")
	require.True(t, ok)
	assert.Equal(t, "sports2000", db)

	_, ok = s.LookupTable("foo", "order")
	assert.True(t, ok)

	assert.Error(t, s.CreateAlias("x", "nosuchdb"))
	assert.Error(t, s.CreateAlias("warehouse", "sports2000"))
	assert.Equal(t, map[string]string{"FOO": "sports2000", "BAR": "sports2000"}, s.Aliases())

	s.DeleteAlias("bar")
	_, ok = s.ResolveAlias("bar")
	assert.False(t, ok)
}

func TestFindTables(t *testing.T) {
	s := loadTestSchema(t)
	assert.Len(t, FindTables(s, "customer"), 2)
	assert.Len(t, FindTables(s, "item"), 1)
	assert.Empty(t, FindTables(s, "nosuch"))
	assert.Equal(t, []string{"sports2000.Customer", "sports2000.Order", "warehouse.Customer", "warehouse.Item"}, s.TableNames())
}

func TestConcurrentReadsDuringAliasSetup(t *testing.T) {
	s := loadTestSchema(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.LookupTable("sports2000", "customer")
				s.ResolveAlias("foo")
			}
		}()
	}
	require.NoError(t, s.CreateAlias("foo", "sports2000"))
	wg.Wait()
	_, ok := s.ResolveAlias("foo")
	assert.True(t, ok)
}

func TestClassTables(t *testing.T) {
	c := NewClassTables([]string{"Word.Application"}, []string{"Acme.Widget"})
	assert.True(t, c.IsAutomation("WORD.APPLICATION"))
	assert.False(t, c.IsAutomation("BUTTON"))
	assert.True(t, c.IsWidget("button"))
	assert.True(t, c.IsWidget("acme.widget"))
	assert.False(t, c.IsWidget("Thing"))
	assert.Equal(t, []string{"WORD.APPLICATION"}, c.Automation())

	var none *ClassTables
	assert.False(t, none.IsAutomation("x"))
	assert.False(t, none.IsWidget("BUTTON"))
}
