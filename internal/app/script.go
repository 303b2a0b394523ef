package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/inkwell/internal/config/loader"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/paste"
	"github.com/dshills/inkwell/internal/engine/style"
)

// Step kinds.
const (
	KindInput     = "input"
	KindSelect    = "select"
	KindSelectAll = "select_all"
	KindStyles    = "styles"
	KindFocus     = "focus"
	KindBlur      = "blur"
)

// Script is a document plus the steps to replay against it.
type Script struct {
	// Document is the initial content. Nil starts from an empty document.
	Document *content.Document `toml:"document" yaml:"document"`

	Steps []Step `toml:"steps" yaml:"steps"`

	// Expect is the plain text the document must have after the last
	// step, if set.
	Expect *string `toml:"expect" yaml:"expect"`
}

// Step is one scripted action. Exactly one action field is set; Data and
// HTML are the payload of an input step.
type Step struct {
	Input     string    `toml:"input" yaml:"input"`
	Data      string    `toml:"data" yaml:"data"`
	HTML      string    `toml:"html" yaml:"html"`
	Select    []int     `toml:"select" yaml:"select"`
	SelectAll bool      `toml:"select_all" yaml:"select_all"`
	Styles    style.Map `toml:"styles" yaml:"styles"`
	Focus     bool      `toml:"focus" yaml:"focus"`
	Blur      bool      `toml:"blur" yaml:"blur"`
}

// Kind returns the action of the step.
func (s Step) Kind() (string, error) {
	var kinds []string
	if s.Input != "" {
		kinds = append(kinds, KindInput)
	}
	if s.Select != nil {
		kinds = append(kinds, KindSelect)
	}
	if s.SelectAll {
		kinds = append(kinds, KindSelectAll)
	}
	if s.Styles != nil {
		kinds = append(kinds, KindStyles)
	}
	if s.Focus {
		kinds = append(kinds, KindFocus)
	}
	if s.Blur {
		kinds = append(kinds, KindBlur)
	}
	switch len(kinds) {
	case 0:
		return "", fmt.Errorf("%w: no action", ErrInvalidStep)
	case 1:
	default:
		return "", fmt.Errorf("%w: several actions %v", ErrInvalidStep, kinds)
	}
	if kinds[0] != KindInput && (s.Data != "" || s.HTML != "") {
		return "", fmt.Errorf("%w: payload on %s step", ErrInvalidStep, kinds[0])
	}
	if kinds[0] == KindSelect && len(s.Select) != 2 {
		return "", fmt.Errorf("%w: select needs [start, end]", ErrInvalidStep)
	}
	return kinds[0], nil
}

// InputEvent converts an input step into an engine input event.
// Unknown input type names map to engine.InputUnknown and are rejected
// by the surface, not here.
func (s Step) InputEvent() engine.InputEvent {
	ev := engine.InputEvent{Type: engine.ParseInputType(s.Input), Data: s.Data}
	if s.HTML != "" {
		ev.Paste = paste.Data{Text: s.Data, HTML: s.HTML}
	}
	return ev
}

// Validate checks every step.
func (s *Script) Validate() error {
	for i, st := range s.Steps {
		if _, err := st.Kind(); err != nil {
			return &StepError{Index: i, Err: err}
		}
	}
	return nil
}

// ParseScript decodes a script in the given format. Unknown fields are
// rejected.
func ParseScript(data []byte, format loader.Format) (*Script, error) {
	var s Script
	switch format {
	case loader.FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, err
		}
	case loader.FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, loader.ErrUnsupportedFormat
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScript reads and parses the script at path. The format follows the
// file extension.
func LoadScript(fsys loader.FileSystem, path string) (*Script, error) {
	format, err := loader.FormatOf(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	s, err := ParseScript(data, format)
	if err != nil {
		return nil, &FileError{Op: "parse", Path: path, Err: err}
	}
	return s, nil
}
