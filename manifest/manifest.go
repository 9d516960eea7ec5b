// Package manifest handles minivm.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chazu/minivm/vm"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "minivm.toml"

// Manifest represents a minivm.toml project configuration.
type Manifest struct {
	Project  Project           `toml:"project"`
	Engine   EngineConfig      `toml:"engine"`
	Log      LogConfig         `toml:"log"`
	Store    StoreConfig       `toml:"store"`
	Globals  map[string]any    `toml:"globals"`
	Programs map[string]string `toml:"programs"`

	// Dir is the directory containing the minivm.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// EngineConfig configures the execution engine.
type EngineConfig struct {
	Trace bool `toml:"trace"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// StoreConfig configures the program store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Load parses a minivm.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Store.Path == "" {
		m.Store.Path = filepath.Join(".minivm", "minivm.db")
	}

	// Reject globals the engine cannot represent now rather than at run time
	if _, err := m.GlobalVars(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a minivm.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// StorePath returns the absolute path of the program store.
func (m *Manifest) StorePath() string {
	return m.resolve(m.Store.Path)
}

// LogFilePath returns the absolute log file path, or "" for stderr.
func (m *Manifest) LogFilePath() string {
	if m.Log.File == "" {
		return ""
	}
	return m.resolve(m.Log.File)
}

// ProgramPath returns the file for a named program entry.
func (m *Manifest) ProgramPath(name string) (string, bool) {
	p, ok := m.Programs[name]
	if !ok {
		return "", false
	}
	return m.resolve(p), true
}

// ProgramNames returns the [programs] entries in sorted order.
func (m *Manifest) ProgramNames() []string {
	names := make([]string, 0, len(m.Programs))
	for name := range m.Programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GlobalVars converts the [globals] table into engine values.
func (m *Manifest) GlobalVars() (vm.Vars, error) {
	vars := make(vm.Vars, len(m.Globals))
	for name, raw := range m.Globals {
		v, err := vm.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("global %q: %w", name, err)
		}
		vars[name] = v
	}
	return vars, nil
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
