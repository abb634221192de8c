// Package session holds what parse units share: the schema, the class
// tables, the search path and the class-definition cache. A session is set
// up once and then used by any number of units, concurrently.
package session

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/proparse/abl/parser"
	"github.com/dhamidi/proparse/abl/schema"
)

var log = commonlog.GetLogger("proparse.session")

type Option func(*Session)

func WithSchema(s *schema.Schema) Option {
	return func(sess *Session) {
		sess.schema = s
	}
}

func WithClassTables(c *schema.ClassTables) Option {
	return func(sess *Session) {
		sess.classes = c
	}
}

// WithPropath sets the directories searched for include files and classes.
func WithPropath(dirs ...string) Option {
	return func(sess *Session) {
		sess.propath = append([]string(nil), dirs...)
	}
}

// WithDefines predefines &GLOBAL-DEFINE names for every unit.
func WithDefines(defines map[string]string) Option {
	return func(sess *Session) {
		sess.defines = defines
	}
}

type Session struct {
	ID      uuid.UUID
	schema  *schema.Schema
	classes *schema.ClassTables
	propath []string
	defines map[string]string
	cache   *Cache
}

func New(opts ...Option) *Session {
	s := &Session{
		ID:    uuid.New(),
		cache: NewCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.schema == nil {
		s.schema = schema.New()
	}
	if s.classes == nil {
		s.classes = schema.NewClassTables(nil, nil)
	}
	log.Debugf("session %s: propath %v, databases %v", s.ID, s.propath, s.schema.Databases())
	return s
}

// Fork returns a session sharing the schema, class tables and search path
// of s with an empty class cache. Re-checking a changed file needs one, as
// the cache never forgets a class.
func (s *Session) Fork() *Session {
	f := &Session{
		ID:      uuid.New(),
		schema:  s.schema,
		classes: s.classes,
		propath: s.propath,
		defines: s.defines,
		cache:   NewCache(),
	}
	log.Debugf("session %s: forked from %s", f.ID, s.ID)
	return f
}

func (s *Session) Schema() *schema.Schema { return s.schema }

func (s *Session) Classes() *schema.ClassTables { return s.classes }

func (s *Session) Cache() *Cache { return s.cache }

func (s *Session) Propath() []string { return s.propath }

// CreateAlias adds a database alias. Aliases belong to session setup: they
// must be created before units that depend on them run.
func (s *Session) CreateAlias(alias, db string) error {
	return s.schema.CreateAlias(alias, db)
}

// FindFile locates name: an absolute or existing relative path as given,
// otherwise the first match on the propath. The error wraps fs.ErrNotExist
// when nothing is found.
func (s *Session) FindFile(name string) (string, error) {
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", fmt.Errorf("find %s: %w", name, fs.ErrNotExist)
	}
	for _, dir := range s.propath {
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate, nil
		}
	}
	if isFile(name) {
		return name, nil
	}
	return "", fmt.Errorf("find %s on propath: %w", name, fs.ErrNotExist)
}

// ResolveInclude implements parser.IncludeResolver over the propath. The
// directory of the including file is searched last.
func (s *Session) ResolveInclude(name, from string) (string, []byte, error) {
	path, err := s.FindFile(name)
	if err != nil && from != "" {
		candidate := filepath.Join(filepath.Dir(from), name)
		if isFile(candidate) {
			path, err = candidate, nil
		}
	}
	if err != nil {
		return "", nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read include %s: %w", path, err)
	}
	log.Debugf("include %s from %s: %s", name, from, path)
	return path, src, nil
}

// LexOptions are the lexer options of every unit of the session.
func (s *Session) LexOptions() []parser.LexOption {
	opts := []parser.LexOption{parser.WithIncludeResolver(s)}
	if len(s.defines) > 0 {
		opts = append(opts, parser.WithGlobalDefines(s.defines))
	}
	return opts
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
