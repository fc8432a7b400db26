// FILE: lixenwraith/config/schema.go
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Schema is a validated, ordered set of options
type Schema struct {
	options []*Option
	byName  map[string]*Option
	byDest  map[string][]*Option
	keys    []string // distinct Config keys in declaration order
}

// NewSchema validates the options and returns the schema.
// All problems are reported together, each as a *SchemaError.
func NewSchema(options ...Option) (*Schema, error) {
	s := &Schema{
		options: make([]*Option, 0, len(options)),
		byName:  make(map[string]*Option, len(options)),
		byDest:  make(map[string][]*Option, len(options)),
	}

	var errs []error
	flagOwner := make(map[string]string)

	for i := range options {
		opt := options[i] // copy, the schema owns its options
		opt.Flags = append([]string(nil), opt.Flags...)

		if opt.Name == "" {
			opt.Name = deriveName(opt.Flags)
		}
		if opt.Name == "" {
			errs = append(errs, &SchemaError{Reason: fmt.Sprintf("option #%d has neither a name nor a usable flag", i)})
			continue
		}
		if !isValidPath(opt.Name) {
			errs = append(errs, &SchemaError{Option: opt.Name, Reason: "invalid name"})
			continue
		}
		if _, dup := s.byName[opt.Name]; dup {
			errs = append(errs, &SchemaError{Option: opt.Name, Reason: "duplicate option name"})
			continue
		}
		if opt.Dest != "" && !isValidPath(opt.Dest) {
			errs = append(errs, &SchemaError{Option: opt.Name, Reason: fmt.Sprintf("invalid dest %q", opt.Dest)})
			continue
		}

		errs = append(errs, validateFlags(&opt, flagOwner)...)

		if opt.Switch {
			if opt.Positional() {
				errs = append(errs, &SchemaError{Option: opt.Name, Reason: "a switch cannot be positional"})
			}
			if opt.Nargs != NargsOne {
				errs = append(errs, &SchemaError{Option: opt.Name, Reason: fmt.Sprintf("a switch takes no value, nargs %q not allowed", opt.Nargs)})
			}
			if opt.Type.Coerce == nil {
				opt.Type = Bool
			}
		}

		s.options = append(s.options, &opt)
		s.byName[opt.Name] = &opt

		key := opt.Key()
		if _, seen := s.byDest[key]; !seen {
			s.keys = append(s.keys, key)
		}
		s.byDest[key] = append(s.byDest[key], &opt)
	}

	// Options sharing a dest must be alternatives of one exclusive group
	for _, key := range s.keys {
		group := s.byDest[key]
		if len(group) < 2 {
			continue
		}
		first := group[0]
		for _, other := range group[1:] {
			if first.ExclusiveGroup == "" || other.ExclusiveGroup != first.ExclusiveGroup {
				errs = append(errs, &SchemaError{
					Option: other.Name,
					Reason: fmt.Sprintf("shares dest %q with %q but not the same mutually exclusive group", key, first.Name),
				})
			}
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error
func MustSchema(options ...Option) *Schema {
	s, err := NewSchema(options...)
	if err != nil {
		panic(fmt.Sprintf("config schema invalid: %v", err))
	}
	return s
}

func validateFlags(opt *Option, flagOwner map[string]string) []error {
	var errs []error
	positional := 0
	for _, f := range opt.Flags {
		if !isValidFlag(f) {
			errs = append(errs, &SchemaError{Option: opt.Name, Reason: fmt.Sprintf("invalid flag %q", f)})
			continue
		}
		if !strings.HasPrefix(f, "-") {
			positional++
		}
		if owner, taken := flagOwner[f]; taken {
			errs = append(errs, &SchemaError{Option: opt.Name, Reason: fmt.Sprintf("flag %q already used by %q", f, owner)})
			continue
		}
		flagOwner[f] = opt.Name
	}
	if positional > 0 && len(opt.Flags) > 1 {
		errs = append(errs, &SchemaError{Option: opt.Name, Reason: "a positional option takes exactly one name and no dashed flags"})
	}

	// Short-only options are registered under --<name> as well
	if longs, short := splitFlags(opt.Flags); positional == 0 && short != "" && len(longs) == 0 {
		implicit := "--" + opt.Name
		if owner, taken := flagOwner[implicit]; taken {
			errs = append(errs, &SchemaError{Option: opt.Name, Reason: fmt.Sprintf("implicit flag %q already used by %q", implicit, owner)})
		} else {
			flagOwner[implicit] = opt.Name
		}
	}
	return errs
}

// Options returns the declared options in order
func (s *Schema) Options() []*Option {
	return s.options
}

// Lookup finds an option by name
func (s *Schema) Lookup(name string) (*Option, bool) {
	opt, ok := s.byName[name]
	return opt, ok
}

// Keys returns the distinct Config keys in declaration order
func (s *Schema) Keys() []string {
	return append([]string(nil), s.keys...)
}

// OptionsFor returns the options writing to key
func (s *Schema) OptionsFor(key string) []*Option {
	return s.byDest[key]
}

// primary returns the option that supplies the default value and the type used
// when a raw value is set directly: the first declaring a default, else the first.
func (s *Schema) primary(key string) *Option {
	opts := s.byDest[key]
	if len(opts) == 0 {
		return nil
	}
	for _, o := range opts {
		if o.Default != nil {
			return o
		}
	}
	return opts[0]
}
