// FILE: lixenwraith/config/errors.go
package config

import (
	"errors"
	"fmt"
	"strings"
)

// MaxValueSize bounds a single value read from the environment or a secret store
const MaxValueSize = 1 << 20

// Sentinel errors, matched with errors.Is against the typed errors below
var (
	ErrSchema          = errors.New("invalid option schema")
	ErrCoercion        = errors.New("value coercion failed")
	ErrMutualExclusion = errors.New("mutually exclusive options supplied together")
	ErrConfigFile      = errors.New("malformed config file")
	ErrArgument        = errors.New("invalid command-line arguments")
	ErrRequired        = errors.New("required option not set")
	ErrUnknownKey      = errors.New("key not declared in schema")
	ErrValueSize       = errors.New("value exceeds maximum size")
	// ErrHelp is returned when -h/--help is given and no option claims it
	ErrHelp = errors.New("help requested")
)

// SchemaError reports an invalid option declaration, detected when the schema is built.
type SchemaError struct {
	Option string // option name, empty when the problem is not tied to one option
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("schema: %s", e.Reason)
	}
	return fmt.Sprintf("schema: option %q: %s", e.Option, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// CoercionError reports a raw value that could not be converted to the option's type.
type CoercionError struct {
	Option string
	Source Source
	Raw    string
	Type   string
	Err    error
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("option %q: cannot convert %q to %s", e.Option, e.Raw, e.Type)
	if e.Source != "" {
		msg = fmt.Sprintf("%s (from %s)", msg, e.Source)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Is(target error) bool { return target == ErrCoercion }
func (e *CoercionError) Unwrap() error        { return e.Err }

// MutualExclusionError reports two or more options of one exclusive group supplied on the command line.
type MutualExclusionError struct {
	Group string
	Flags []string
}

func (e *MutualExclusionError) Error() string {
	return fmt.Sprintf("arguments %s are mutually exclusive (group %q)", strings.Join(e.Flags, ", "), e.Group)
}

func (e *MutualExclusionError) Is(target error) bool { return target == ErrMutualExclusion }

// ConfigFileError reports an INI file with invalid syntax or one that exists but cannot be read.
type ConfigFileError struct {
	Path string
	Err  error
}

func (e *ConfigFileError) Error() string {
	return fmt.Sprintf("config file '%s': %v", e.Path, e.Err)
}

func (e *ConfigFileError) Is(target error) bool { return target == ErrConfigFile }
func (e *ConfigFileError) Unwrap() error        { return e.Err }

// ArgumentError reports command-line input the grammar rejects.
type ArgumentError struct {
	Args   []string
	Reason string
	Err    error
}

func (e *ArgumentError) Error() string {
	msg := e.Reason
	if len(e.Args) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Args, " "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ArgumentError) Is(target error) bool { return target == ErrArgument }
func (e *ArgumentError) Unwrap() error        { return e.Err }

// RequiredError lists required options left without a value after every source was applied.
type RequiredError struct {
	Missing []string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

func (e *RequiredError) Is(target error) bool { return target == ErrRequired }
