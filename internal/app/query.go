package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrNoMatch indicates a query path that selects nothing.
var ErrNoMatch = errors.New("query matched nothing")

// Query evaluates a gjson path, such as "document.paragraphs.0.inlines.#.text",
// against the JSON form of r.
func Query(r *Report, path string) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return "", fmt.Errorf("%w: %q", ErrNoMatch, path)
	}
	return res.String(), nil
}
