// Package schema holds the database catalog a session resolves record and
// field references against. A Schema is filled once during session setup
// and then only read; alias creation is the one mutation allowed while
// parse units may already be running.
package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type Field struct {
	Name     string `toml:"name" yaml:"name"`
	DataType string `toml:"type" yaml:"type"`
	Extent   int    `toml:"extent,omitempty" yaml:"extent,omitempty"`
	Table    *Table `toml:"-" yaml:"-"`
}

type Table struct {
	Name     string    `toml:"name" yaml:"name"`
	Fields   []*Field  `toml:"field" yaml:"fields"`
	Database *Database `toml:"-" yaml:"-"`
	fields   map[string]*Field
}

// QualifiedName returns db.table.
func (t *Table) QualifiedName() string {
	if t.Database == nil {
		return t.Name
	}
	return t.Database.Name + "." + t.Name
}

// Field looks up a field by name. An exact match wins; otherwise a unique
// prefix of a field name is accepted, as the language allows abbreviated
// field names.
func (t *Table) Field(name string) (*Field, bool) {
	key := strings.ToUpper(name)
	if f, ok := t.fields[key]; ok {
		return f, true
	}
	var found *Field
	for _, f := range t.Fields {
		if strings.HasPrefix(strings.ToUpper(f.Name), key) {
			if found != nil {
				return nil, false
			}
			found = f
		}
	}
	return found, found != nil
}

type Database struct {
	Name   string   `toml:"name" yaml:"name"`
	Tables []*Table `toml:"table" yaml:"tables"`
	tables map[string]*Table
}

// Table looks up a table of the database by name.
func (d *Database) Table(name string) (*Table, bool) {
	t, ok := d.tables[strings.ToUpper(name)]
	return t, ok
}

// index links tables and fields to their owners and builds the lookup maps.
func (d *Database) index() error {
	d.tables = make(map[string]*Table, len(d.Tables))
	for _, t := range d.Tables {
		key := strings.ToUpper(t.Name)
		if _, dup := d.tables[key]; dup {
			return fmt.Errorf("database %s: duplicate table %s", d.Name, t.Name)
		}
		t.Database = d
		t.fields = make(map[string]*Field, len(t.Fields))
		for _, f := range t.Fields {
			fkey := strings.ToUpper(f.Name)
			if _, dup := t.fields[fkey]; dup {
				return fmt.Errorf("table %s.%s: duplicate field %s", d.Name, t.Name, f.Name)
			}
			f.Table = t
			t.fields[fkey] = f
		}
		d.tables[key] = t
	}
	return nil
}

// Provider is the read-only view of the catalog used during resolution.
type Provider interface {
	// ResolveAlias maps a logical database name or alias to the canonical
	// database name.
	ResolveAlias(name string) (string, bool)
	LookupTable(db, name string) (*Table, bool)
	LookupField(table *Table, name string) (*Field, bool)
	// Databases returns the canonical database names in connection order.
	Databases() []string
}

type Schema struct {
	mu        sync.RWMutex
	databases []*Database
	byName    map[string]*Database
	aliases   map[string]string
}

func New() *Schema {
	return &Schema{
		byName:  make(map[string]*Database),
		aliases: make(map[string]string),
	}
}

// AddDatabase connects a database to the schema. Names are unique across
// databases and aliases.
func (s *Schema) AddDatabase(db *Database) error {
	if err := db.index(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToUpper(db.Name)
	if _, ok := s.byName[key]; ok {
		return fmt.Errorf("database %s already connected", db.Name)
	}
	if _, ok := s.aliases[key]; ok {
		return fmt.Errorf("database name %s is already an alias", db.Name)
	}
	s.databases = append(s.databases, db)
	s.byName[key] = db
	return nil
}

// CreateAlias makes alias another name for the database db, which may itself
// be an alias. Re-pointing an existing alias is allowed; shadowing a
// database name is not.
func (s *Schema) CreateAlias(alias, db string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.resolveLocked(db)
	if !ok {
		return fmt.Errorf("create alias %s: unknown database %s", alias, db)
	}
	key := strings.ToUpper(alias)
	if _, ok := s.byName[key]; ok {
		return fmt.Errorf("create alias %s: name is a connected database", alias)
	}
	s.aliases[key] = target
	return nil
}

// DeleteAlias removes an alias. Unknown aliases are ignored.
func (s *Schema) DeleteAlias(alias string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.aliases, strings.ToUpper(alias))
}

// Aliases returns a copy of the alias table, keys in upper case.
func (s *Schema) Aliases() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.aliases))
	for k, v := range s.aliases {
		out[k] = v
	}
	return out
}

func (s *Schema) ResolveAlias(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveLocked(name)
}

func (s *Schema) resolveLocked(name string) (string, bool) {
	key := strings.ToUpper(name)
	if db, ok := s.byName[key]; ok {
		return db.Name, true
	}
	if target, ok := s.aliases[key]; ok {
		return target, true
	}
	return "", false
}

func (s *Schema) Database(name string) (*Database, bool) {
	canonical, ok := s.ResolveAlias(name)
	if !ok {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, ok := s.byName[strings.ToUpper(canonical)]
	return db, ok
}

func (s *Schema) LookupTable(db, name string) (*Table, bool) {
	d, ok := s.Database(db)
	if !ok {
		return nil, false
	}
	return d.Table(name)
}

func (s *Schema) LookupField(table *Table, name string) (*Field, bool) {
	if table == nil {
		return nil, false
	}
	return table.Field(name)
}

func (s *Schema) Databases() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.databases))
	for i, db := range s.databases {
		names[i] = db.Name
	}
	return names
}

// FindTables returns every table named name across all databases, in
// connection order.
func FindTables(p Provider, name string) []*Table {
	var found []*Table
	for _, db := range p.Databases() {
		if t, ok := p.LookupTable(db, name); ok {
			found = append(found, t)
		}
	}
	return found
}

// Merge adds every database of other to s.
func (s *Schema) Merge(other *Schema) error {
	for _, db := range other.databases {
		if err := s.AddDatabase(db); err != nil {
			return err
		}
	}
	return nil
}

// TableNames returns the sorted qualified names of all tables.
func (s *Schema) TableNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for _, db := range s.databases {
		for _, t := range db.Tables {
			names = append(names, t.QualifiedName())
		}
	}
	sort.Strings(names)
	return names
}
