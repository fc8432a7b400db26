// FILE: lixenwraith/config/coerce.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
)

// Type converts a raw string from any source into the option's value.
// The zero Type keeps the raw string unchanged.
type Type struct {
	// Name is used in error messages (e.g. "int", "file contents")
	Name string
	// Coerce must be a pure conversion; nil means identity
	Coerce func(raw string) (any, error)
}

// Built-in types. Conversions are delegated to spf13/cast so a value from
// the command line and the same text from the environment normalize identically.
var (
	String = Type{Name: "string"}

	Int = Type{Name: "int", Coerce: func(raw string) (any, error) {
		return cast.ToIntE(strings.TrimSpace(raw))
	}}

	Int64 = Type{Name: "int64", Coerce: func(raw string) (any, error) {
		return cast.ToInt64E(strings.TrimSpace(raw))
	}}

	Float64 = Type{Name: "float64", Coerce: func(raw string) (any, error) {
		return cast.ToFloat64E(strings.TrimSpace(raw))
	}}

	Bool = Type{Name: "bool", Coerce: func(raw string) (any, error) {
		return cast.ToBoolE(strings.TrimSpace(raw))
	}}

	Duration = Type{Name: "duration", Coerce: func(raw string) (any, error) {
		return cast.ToDurationE(strings.TrimSpace(raw))
	}}

	// CommaSeparated splits "a,b,c" into []string{"a", "b", "c"}
	CommaSeparated = Type{Name: "comma-separated strings", Coerce: func(raw string) (any, error) {
		return splitList(raw), nil
	}}

	// CommaSeparatedPairs parses "A=1,B=2" into map[string]string
	CommaSeparatedPairs = Type{Name: "comma-separated pairs", Coerce: commaSeparatedPairs}

	// KeyFormat normalizes a key pasted as a single line: surrounding single
	// quotes are dropped and literal \n sequences become newlines.
	KeyFormat = Type{Name: "key", Coerce: func(raw string) (any, error) {
		return strings.ReplaceAll(strings.Trim(raw, "'"), `\n`, "\n"), nil
	}}

	// ReadFile treats the raw value as a path and yields the file's trimmed text
	ReadFile = ReadFileFrom(afero.NewOsFs())
)

// ReadFileFrom returns a "read file contents" type backed by the given filesystem.
func ReadFileFrom(fs afero.Fs) Type {
	return Type{Name: "file contents", Coerce: func(raw string) (any, error) {
		path := normalizedPath(raw)
		if path == "" {
			return nil, fmt.Errorf("empty path")
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("%s is not a readable file: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}}
}

// NewType wraps a conversion function as a Type
func NewType(name string, fn func(raw string) (any, error)) Type {
	return Type{Name: name, Coerce: fn}
}

// String returns the type name
func (t Type) String() string {
	if t.Name == "" {
		return "string"
	}
	return t.Name
}

// convert applies the conversion, identity when none is set
func (t Type) convert(raw string) (any, error) {
	if t.Coerce == nil {
		return raw, nil
	}
	return t.Coerce(raw)
}

// coerce converts raw for the option and wraps failures in a CoercionError
func (o *Option) coerce(raw string, source Source) (any, error) {
	v, err := o.Type.convert(raw)
	if err != nil {
		return nil, &CoercionError{
			Option: o.Name,
			Source: source,
			Raw:    raw,
			Type:   o.Type.String(),
			Err:    err,
		}
	}
	return v, nil
}

// coerceList applies coerce to each element of a multi-value option
func (o *Option) coerceList(raws []string, source Source) ([]any, error) {
	out := make([]any, 0, len(raws))
	for _, raw := range raws {
		v, err := o.coerce(raw, source)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// coerceFromText handles a single text value from env/INI/secret sources,
// applying the comma split convention to multi-value options.
func (o *Option) coerceFromText(raw string, source Source) (any, error) {
	if o.Nargs == NargsAny {
		return o.coerceList(splitList(raw), source)
	}
	return o.coerce(raw, source)
}

// splitList is the documented multi-value convention: comma separated, items
// trimmed, empty input gives an empty list.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func commaSeparatedPairs(raw string) (any, error) {
	result := make(map[string]string)
	for _, pair := range splitList(raw) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("pair %q is not in key=value form", pair)
		}
		result[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return result, nil
}

// normalizedPath expands a leading ~ and makes the path absolute
func normalizedPath(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}
	if abs, err := filepath.Abs(filepath.Clean(value)); err == nil {
		return abs
	}
	return filepath.Clean(value)
}
