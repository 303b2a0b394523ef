// Package loader reads Inkwell configuration into generic maps.
//
// File loaders parse TOML and YAML documents; the environment loader maps
// INKWELL_ variables onto configuration paths. Maps from several sources
// are combined with DeepMerge before being decoded into a typed config.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for a file extension no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Loader produces one layer of settings. A source that does not exist
// loads as nil, nil.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem is the file access loaders need. fstest.MapFS satisfies it.
type FileSystem interface {
	fs.FS
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS reads from the operating system.
type OSFS struct{}

func (OSFS) Open(name string) (fs.File, error) { return os.Open(name) }
func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem { return OSFS{} }

// Format is a settings file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// File loads one settings file.
type File struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFile returns a loader for the file at path in format f. A nil fsys
// reads from the OS.
func NewFile(fsys FileSystem, path string, f Format) *File {
	if fsys == nil {
		fsys = DefaultFS()
	}
	return &File{fs: fsys, path: path, format: f}
}

// ForPath returns the loader for path, picking the format from its
// extension.
func ForPath(fsys FileSystem, path string) (*File, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	return NewFile(fsys, path, f), nil
}

// Path returns the file path.
func (l *File) Path() string { return l.path }

// Format returns the file format.
func (l *File) Format() Format { return l.format }

// Load reads and parses the file.
func (l *File) Load() (map[string]any, error) {
	data, err := l.fs.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return l.parse(l.path, data)
}

// Decode parses settings read from r in the loader's format.
func (l *File) Decode(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.parse("<reader>", data)
}

func (l *File) parse(source string, data []byte) (map[string]any, error) {
	c, ok := codecs[l.format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, l.format)
	}
	settings, err := c.decode(data)
	if err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		c.locate(err, pe)
		return nil, pe
	}
	return settings, nil
}

// ParseError reports a malformed settings file. Line and Column are
// 1-based and zero when unknown.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }
