package wasm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/pretty"

	"github.com/wippyai/watplay/errors"
)

// Format selects how a Module is rendered.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Valid reports whether f is a known format. Empty means JSON.
func (f Format) Valid() bool {
	switch f {
	case "", FormatJSON, FormatYAML:
		return true
	}
	return false
}

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// Render formats mod for the structure pane. Color adds ANSI colouring to
// JSON output and is ignored for YAML.
func Render(mod *Module, format Format, color bool) (string, error) {
	switch format {
	case "", FormatJSON:
		raw, err := json.Marshal(mod)
		if err != nil {
			return "", errors.DecodeFailed(err)
		}
		out := pretty.PrettyOptions(raw, prettyOptions)
		if color {
			out = pretty.Color(out, nil)
		}
		return strings.TrimRight(string(out), "\n"), nil
	case FormatYAML:
		out, err := yaml.Marshal(mod)
		if err != nil {
			return "", errors.DecodeFailed(err)
		}
		return strings.TrimRight(string(out), "\n"), nil
	default:
		return "", errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("unknown format %q", format))
	}
}
