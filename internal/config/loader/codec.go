package loader

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// codec decodes one format and fills the position of its parse errors.
type codec struct {
	decode func(data []byte) (map[string]any, error)
	locate func(err error, pe *ParseError)
}

var codecs = map[Format]codec{
	FormatTOML: {decode: decodeTOML, locate: locateTOML},
	FormatYAML: {decode: decodeYAML, locate: locateYAML},
}

func decodeTOML(data []byte) (map[string]any, error) {
	var settings map[string]any
	err := toml.Unmarshal(data, &settings)
	return settings, err
}

func locateTOML(err error, pe *ParseError) {
	var de *toml.DecodeError
	if errors.As(err, &de) {
		pe.Line, pe.Column = de.Position()
	}
}

func decodeYAML(data []byte) (map[string]any, error) {
	var settings map[string]any
	err := yaml.Unmarshal(data, &settings)
	return settings, err
}

// locateYAML recovers the line from yaml.v3 messages, which carry it as
// text ("yaml: line 3: ...").
func locateYAML(err error, pe *ParseError) {
	var te *yaml.TypeError
	if errors.As(err, &te) && len(te.Errors) > 0 {
		pe.Message = te.Errors[0]
	}
	var line int
	if _, serr := fmt.Sscanf(pe.Message, "yaml: line %d:", &line); serr == nil {
		pe.Line = line
	}
}
