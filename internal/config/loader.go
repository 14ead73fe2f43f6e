package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// File is one settings file as decoded, before merging over defaults.
// Pointer and nil-able fields distinguish unset keys from zero values.
type File struct {
	MaxHistoryEntries *int          `toml:"maxHistoryEntries" yaml:"maxHistoryEntries"`
	LinkSchemes       []string      `toml:"linkSchemes" yaml:"linkSchemes"`
	MentionHosts      []string      `toml:"mentionHosts" yaml:"mentionHosts"`
	Patterns          []PatternRule `toml:"patterns" yaml:"patterns"`
}

// Loader reads a settings file from its configured source.
type Loader interface {
	// Load returns the decoded file, or nil, nil when the source does
	// not exist.
	Load() (*File, error)
}

// FileLoader is a Loader that can also read an explicit path.
type FileLoader interface {
	Loader
	LoadFrom(path string) (*File, error)
}

// ReaderLoader reads a settings document from a stream.
type ReaderLoader interface {
	LoadFromReader(r io.Reader) (*File, error)
}

// FileSystem abstracts file access so loaders can be tested against
// in-memory trees.
type FileSystem interface {
	fs.FS
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem on the real file system.
type OSFS struct{}

func (OSFS) Open(name string) (fs.File, error)      { return os.Open(name) }
func (OSFS) ReadFile(path string) ([]byte, error)   { return os.ReadFile(path) }

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem { return OSFS{} }

// TOMLLoader loads settings from TOML files.
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader creates a TOML loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return &TOMLLoader{fs: DefaultFS(), path: path}
}

// NewTOMLLoaderWithFS creates a TOML loader with a custom file system.
func NewTOMLLoaderWithFS(fsys FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fs: fsys, path: path}
}

// Load reads the configured path.
func (l *TOMLLoader) Load() (*File, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads a specific path. A missing file yields nil, nil.
func (l *TOMLLoader) LoadFrom(path string) (*File, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parseTOML(path, data)
}

// LoadFromReader reads a TOML document from a stream.
func (l *TOMLLoader) LoadFromReader(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parseTOML("<reader>", data)
}

func parseTOML(source string, data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return &f, nil
}

// YAMLLoader loads settings from YAML files.
type YAMLLoader struct {
	fs   FileSystem
	path string
}

// NewYAMLLoader creates a YAML loader for the given path.
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{fs: DefaultFS(), path: path}
}

// NewYAMLLoaderWithFS creates a YAML loader with a custom file system.
func NewYAMLLoaderWithFS(fsys FileSystem, path string) *YAMLLoader {
	return &YAMLLoader{fs: fsys, path: path}
}

// Load reads the configured path.
func (l *YAMLLoader) Load() (*File, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads a specific path. A missing file yields nil, nil.
func (l *YAMLLoader) LoadFrom(path string) (*File, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parseYAML(path, data)
}

// LoadFromReader reads a YAML document from a stream.
func (l *YAMLLoader) LoadFromReader(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parseYAML("<reader>", data)
}

func parseYAML(source string, data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return &f, nil
}

// ParseError reports a settings file that failed to decode.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load resolves the settings at path: defaults, then the file picked by
// extension (YAML for .yaml/.yml, TOML otherwise), then environment
// overrides, validated as a whole.
func Load(path string) (Settings, error) {
	s := Default()

	var l FileLoader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		l = NewYAMLLoader(path)
	default:
		l = NewTOMLLoader(path)
	}
	f, err := l.Load()
	if err != nil {
		return s, err
	}
	s.apply(f)

	if err := NewEnvLoader(EnvPrefix).Apply(&s); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
