package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// file is the on-disk layout shared by the TOML and YAML formats.
type file struct {
	Databases []*Database `toml:"database" yaml:"databases"`
}

// Load reads a schema file, choosing the format by extension: .yaml and
// .yml are YAML, anything else TOML.
func Load(path string) (*Schema, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	}
	return LoadTOML(path)
}

func LoadTOML(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var f file
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return build(path, f)
}

func LoadYAML(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return build(path, f)
}

// LoadAll merges several schema files into one schema.
func LoadAll(paths ...string) (*Schema, error) {
	s := New()
	for _, path := range paths {
		part, err := Load(path)
		if err != nil {
			return nil, err
		}
		if err := s.Merge(part); err != nil {
			return nil, fmt.Errorf("schema %s: %w", path, err)
		}
	}
	return s, nil
}

func build(path string, f file) (*Schema, error) {
	s := New()
	for _, db := range f.Databases {
		if db.Name == "" {
			return nil, fmt.Errorf("schema %s: database without a name", path)
		}
		if err := s.AddDatabase(db); err != nil {
			return nil, fmt.Errorf("schema %s: %w", path, err)
		}
	}
	return s, nil
}
