// Package config reads the proparse.toml file that describes a project: where
// include files and classes live, which schema files to load and how the
// workspace tools behave.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dhamidi/proparse/abl/schema"
	"github.com/dhamidi/proparse/abl/session"
)

// FileName is the configuration file looked up in a project root.
const FileName = "proparse.toml"

type Config struct {
	Propath   []string          `toml:"propath"`
	Schema    []string          `toml:"schema"`
	Aliases   map[string]string `toml:"aliases"`
	Defines   map[string]string `toml:"defines"`
	Classes   Classes           `toml:"classes"`
	Workspace Workspace         `toml:"workspace"`
	Log       Log               `toml:"log"`

	// Dir is the directory relative paths were resolved against.
	Dir string `toml:"-"`
}

type Classes struct {
	Automation []string `toml:"automation"`
	Widgets    []string `toml:"widgets"`
}

type Workspace struct {
	Include  []string      `toml:"include"`
	Exclude  []string      `toml:"exclude"`
	Debounce time.Duration `toml:"debounce"`
	Jobs     int           `toml:"jobs"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when a project has no file.
func Default() *Config {
	cfg := &Config{Dir: "."}
	cfg.setDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Dir = filepath.Dir(path)
	cfg.setDefaults()
	for i, dir := range cfg.Propath {
		cfg.Propath[i] = cfg.resolve(dir)
	}
	for i, file := range cfg.Schema {
		cfg.Schema[i] = cfg.resolve(file)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = cfg.resolve(cfg.Log.File)
	}
	return &cfg, nil
}

// LoadDir loads FileName from dir, or returns Default rooted at dir when the
// file does not exist.
func LoadDir(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.Dir = dir
		cfg.Propath = []string{dir}
		return cfg, nil
	}
	return Load(path)
}

func (c *Config) setDefaults() {
	if len(c.Propath) == 0 {
		c.Propath = []string{"."}
	}
	if len(c.Workspace.Include) == 0 {
		c.Workspace.Include = []string{"*.p", "*.w", "*.cls"}
	}
	if len(c.Workspace.Exclude) == 0 {
		c.Workspace.Exclude = []string{".git", ".svn", "node_modules"}
	}
	if c.Workspace.Debounce == 0 {
		c.Workspace.Debounce = 300 * time.Millisecond
	}
	if c.Workspace.Jobs <= 0 {
		c.Workspace.Jobs = runtime.NumCPU()
	}
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// Session loads the schema files, applies the aliases and returns a session
// ready for parse units.
func (c *Config) Session() (*session.Session, error) {
	s, err := schema.LoadAll(c.Schema...)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	for alias, db := range c.Aliases {
		if err := s.CreateAlias(alias, db); err != nil {
			return nil, fmt.Errorf("alias %s: %w", alias, err)
		}
	}
	return session.New(
		session.WithSchema(s),
		session.WithClassTables(schema.NewClassTables(c.Classes.Automation, c.Classes.Widgets)),
		session.WithPropath(c.Propath...),
		session.WithDefines(c.Defines),
	), nil
}
