// FILE: lixenwraith/config/option.go
package config

import (
	"fmt"
	"strings"
)

// Nargs is the command-line arity of an option
type Nargs int

const (
	// NargsOne expects exactly one value (the default)
	NargsOne Nargs = iota
	// NargsOptional accepts zero or one value ('?')
	NargsOptional
	// NargsAny accepts zero or more values ('*')
	NargsAny
)

func (n Nargs) String() string {
	switch n {
	case NargsOptional:
		return "?"
	case NargsAny:
		return "*"
	default:
		return "1"
	}
}

// Option declares one configurable value and where it may come from.
//
// Flags holds either a single bare positional name ("xpos") or one or more
// dashed forms ("--xarg", "-x"). Name defaults to the first long flag with
// dashes turned into underscores, or to the positional name.
type Option struct {
	Name    string
	Flags   []string
	Default any
	Type    Type
	Nargs   Nargs

	// Const is the value of a '?' flag given without a value
	Const string

	// Env is the exact environment variable bound to this option
	Env string
	// INISection is looked up first; the default section is the fallback
	INISection string
	// INIKey is the key inside the INI sections, defaults to Name
	INIKey string

	// ExclusiveGroup tags options of which at most one may be given on the command line
	ExclusiveGroup string
	// Dest is the key in the resolved Config, defaults to Name
	Dest string

	Help     string
	Required bool
	// Switch makes a boolean flag that takes no value
	Switch bool
	// NoSecret excludes the option from secret-store lookup
	NoSecret bool
}

// Key returns the Config key the option writes to
func (o *Option) Key() string {
	if o.Dest != "" {
		return o.Dest
	}
	return o.Name
}

// iniKey returns the key looked up in INI sections
func (o *Option) iniKey() string {
	if o.INIKey != "" {
		return o.INIKey
	}
	return o.Name
}

// Positional reports whether the option is a positional argument
func (o *Option) Positional() bool {
	return len(o.Flags) == 1 && !strings.HasPrefix(o.Flags[0], "-")
}

// DisplayName is the form used in messages: the first flag, or the name
func (o *Option) DisplayName() string {
	if len(o.Flags) > 0 {
		return o.Flags[0]
	}
	return o.Name
}

func (o Option) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Option(%s", strings.Join(o.Flags, ", "))
	if o.Dest != "" {
		fmt.Fprintf(&b, ", dest=%s", o.Dest)
	}
	if o.Env != "" {
		fmt.Fprintf(&b, ", env=%s", o.Env)
	}
	if o.INISection != "" {
		fmt.Fprintf(&b, ", ini_section=%s", o.INISection)
	}
	if o.ExclusiveGroup != "" {
		fmt.Fprintf(&b, ", group=%s", o.ExclusiveGroup)
	}
	b.WriteString(")")
	return b.String()
}

// usage renders the help text, mentioning the bound environment variable
func (o *Option) usage() string {
	if o.Env == "" {
		return o.Help
	}
	if o.Help == "" {
		return fmt.Sprintf("(or set %s)", o.Env)
	}
	return fmt.Sprintf("%s (or set %s)", o.Help, o.Env)
}

// deriveName applies the naming rule for options declared without a Name
func deriveName(flags []string) string {
	for _, f := range flags {
		switch {
		case strings.HasPrefix(f, "--"):
			return strings.ReplaceAll(f[2:], "-", "_")
		case strings.HasPrefix(f, "-"):
			continue
		default:
			return strings.ReplaceAll(f, "-", "_")
		}
	}
	return ""
}

// splitFlags separates long names (without dashes) from a single-character shorthand
func splitFlags(flags []string) (longs []string, short string) {
	for _, f := range flags {
		if strings.HasPrefix(f, "--") {
			longs = append(longs, f[2:])
		} else if strings.HasPrefix(f, "-") {
			short = f[1:]
		}
	}
	return longs, short
}
