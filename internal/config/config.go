// Package config owns termcap's persistent configuration file and its
// template store (builtin templates embedded at build time, custom
// templates installed under the user's config directory).
package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
)

//go:embed templates/*.svg
var builtinTemplatesFS embed.FS

const builtinTemplatesDir = "templates"

// ErrTemplateNotFound is returned when a named template cannot be resolved
// from either the builtin or the custom template store.
var ErrTemplateNotFound = errors.New("config: template not found")

// General holds the [general] config section.
type General struct {
	DefaultTemplate    string `toml:"default_template"`
	DefaultGeometry    string `toml:"default_geometry"`
	DefaultMinDuration int    `toml:"default_min_duration"`
	DefaultMaxDuration int    `toml:"default_max_duration"`
	DefaultLoopDelay   int    `toml:"default_loop_delay"`
}

// Templates holds the [templates] config section.
type Templates struct {
	CustomTemplatesEnabled  bool `toml:"custom_templates_enabled"`
	BuiltinTemplatesEnabled bool `toml:"builtin_templates_enabled"`
}

// Output holds the [output] config section.
type Output struct {
	DefaultOutputDir string `toml:"default_output_dir"`
	AutoTimestamp    bool   `toml:"auto_timestamp"`
}

// Config is the full termcap configuration document.
type Config struct {
	General   General   `toml:"general"`
	Templates Templates `toml:"templates"`
	Output    Output    `toml:"output"`
}

// Default returns the built-in configuration defaults, matching
// DEFAULT_CONFIG exactly.
func Default() Config {
	return Config{
		General: General{
			DefaultTemplate:    "gjm8",
			DefaultGeometry:    "82x19",
			DefaultMinDuration: 17,
			DefaultMaxDuration: 3000,
			DefaultLoopDelay:   1000,
		},
		Templates: Templates{
			CustomTemplatesEnabled:  true,
			BuiltinTemplatesEnabled: true,
		},
		Output: Output{
			DefaultOutputDir: "~/termcap_recordings",
			AutoTimestamp:    true,
		},
	}
}

// Dir returns termcap's configuration directory (~/.config/termcap on
// Linux, respecting XDG_CONFIG_HOME).
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "termcap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".termcap")
	}
	return filepath.Join(home, ".config", "termcap")
}

// TemplatesDir returns the directory custom templates are installed into.
func TemplatesDir() string {
	return filepath.Join(Dir(), "templates")
}

// FilePath returns the path of the config.toml file.
func FilePath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Manager owns a loaded Config and the template store: load/merge/save of
// config.toml plus template resolution by name.
type Manager struct {
	path         string
	templatesDir string
	config       *Config
}

// NewManager constructs a Manager rooted at the standard config/templates
// directories.
func NewManager() *Manager {
	return &Manager{path: FilePath(), templatesDir: TemplatesDir()}
}

// NewManagerAt constructs a Manager rooted at explicit paths, for tests.
func NewManagerAt(configPath, templatesDir string) *Manager {
	return &Manager{path: configPath, templatesDir: templatesDir}
}

// Load returns the current configuration, reading config.toml on first
// call and creating it with defaults if absent. Subsequent calls return the
// cached value.
func (m *Manager) Load() (*Config, error) {
	if m.config != nil {
		return m.config, nil
	}

	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := m.Save(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		// A corrupted config file is recreated from defaults rather than
		// aborting every subsequent command.
		fresh := Default()
		if saveErr := m.Save(&fresh); saveErr != nil {
			return nil, saveErr
		}
		return &fresh, nil
	}
	m.config = &cfg
	return m.config, nil
}

// Save writes cfg to config.toml, creating the config directory if needed,
// and updates the cached value. The write is guarded by a file lock so two
// concurrent termcap processes (e.g. a record and a config edit) don't
// interleave writes to the same config.toml.
func (m *Manager) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}

	lock := flock.New(m.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("config: acquiring write lock: %w", err)
	}
	defer lock.Unlock()

	f, err := os.Create(m.path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Reset overwrites config.toml with the built-in defaults.
func (m *Manager) Reset() error {
	cfg := Default()
	return m.Save(&cfg)
}

// TemplateInfo describes one resolvable template.
type TemplateInfo struct {
	Name   string
	Custom bool
	Path   string // empty for builtin templates
}

// AvailableTemplates lists every template the current configuration makes
// resolvable: builtins first (if enabled), then custom templates (if
// enabled and installed), sorted by name within each source.
func (m *Manager) AvailableTemplates() ([]TemplateInfo, error) {
	cfg, err := m.Load()
	if err != nil {
		return nil, err
	}

	var out []TemplateInfo
	if cfg.Templates.BuiltinTemplatesEnabled {
		names, err := builtinNames()
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			out = append(out, TemplateInfo{Name: name})
		}
	}

	if cfg.Templates.CustomTemplatesEnabled {
		entries, err := os.ReadDir(m.templatesDir)
		if err == nil {
			var names []string
			for _, e := range entries {
				if !e.IsDir() && filepath.Ext(e.Name()) == ".svg" {
					names = append(names, e.Name())
				}
			}
			sort.Strings(names)
			for _, name := range names {
				stem := name[:len(name)-len(".svg")]
				out = append(out, TemplateInfo{Name: stem, Custom: true, Path: filepath.Join(m.templatesDir, name)})
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return out, nil
}

func builtinNames() ([]string, error) {
	entries, err := fs.ReadDir(builtinTemplatesFS, builtinTemplatesDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".svg" {
			names = append(names, e.Name()[:len(e.Name())-len(".svg")])
		}
	}
	sort.Strings(names)
	return names, nil
}

// TemplateContent resolves a template by name to its SVG bytes. A name
// collision between a custom and a builtin template resolves to the custom
// one (see ResolveTemplate).
func (m *Manager) TemplateContent(name string) ([]byte, error) {
	path, err := m.ResolveTemplate(name)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return builtinTemplatesFS.ReadFile(filepath.Join(builtinTemplatesDir, name+".svg"))
	}
	return os.ReadFile(path)
}

// ResolveTemplate returns the filesystem path of a custom template named
// name, or "" (with a nil error) if it resolves to a builtin template.
// Custom templates take precedence over a same-named builtin.
func (m *Manager) ResolveTemplate(name string) (string, error) {
	cfg, err := m.Load()
	if err != nil {
		return "", err
	}

	if cfg.Templates.CustomTemplatesEnabled {
		path := filepath.Join(m.templatesDir, name+".svg")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if cfg.Templates.BuiltinTemplatesEnabled {
		if _, err := builtinTemplatesFS.Open(filepath.Join(builtinTemplatesDir, name+".svg")); err == nil {
			return "", nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// InstallTemplate copies the SVG file at srcPath into the custom templates
// directory under the given name.
func (m *Manager) InstallTemplate(name, srcPath string) error {
	if _, err := os.Stat(srcPath); err != nil {
		return fmt.Errorf("template file not found: %w", err)
	}
	if err := os.MkdirAll(m.templatesDir, 0o755); err != nil {
		return err
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.templatesDir, name+".svg"), data, 0o644)
}

// RemoveTemplate deletes a custom template by name.
func (m *Manager) RemoveTemplate(name string) error {
	path := filepath.Join(m.templatesDir, name+".svg")
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: custom template %q", ErrTemplateNotFound, name)
	}
	return os.Remove(path)
}
