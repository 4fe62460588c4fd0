package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// loadConfig is a [kong.ConfigurationLoader] reading YAML configuration:
//
//	log-level: debug
//	log:
//	  pretty: false
//	lint:
//	  strict: true
//	  signatures: [extra.yaml]
//
// A flag is found by its name, its name with underscores for hyphens, or
// nested by hyphen-separated parts. Flags of a command may also be set in
// a section named after the command, which takes precedence. A file that
// does not parse yields an empty configuration. Command-line flags and
// environment variables override configured values.
func loadConfig(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var c config
	if err := yaml.Unmarshal(data, &c); err != nil || c == nil {
		return config{}, nil //nolint:nilerr
	}

	return c, nil
}

// config implements [kong.Resolver] over decoded YAML.
type config map[string]any

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if parent != nil && parent.Command != nil {
		if section, ok := c[parent.Command.Name].(map[string]any); ok {
			if v, ok := config(section).lookup(flag.Name); ok {
				return v, nil
			}
		}
	}

	if v, ok := c.lookup(flag.Name); ok {
		return v, nil
	}

	return nil, nil //nolint:nilnil
}

// lookup finds name as given, with underscores, or nested by its
// hyphen-separated parts.
func (c config) lookup(name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if v, ok := c[key]; ok {
			return flagValue(v), true
		}
	}

	head, rest, ok := strings.Cut(name, "-")
	if !ok {
		return nil, false
	}

	section, ok := c[head].(map[string]any)
	if !ok {
		return nil, false
	}

	return config(section).lookup(rest)
}

// flagValue converts a decoded value to a form kong can parse. Numbers
// become strings; lists are converted elementwise.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	default:
		return v
	}
}
