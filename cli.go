// FILE: lixenwraith/config/cli.go
package config

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	// maxArgFileDepth bounds nested @file expansion
	maxArgFileDepth = 10
	// bareFlagMarker is what pflag hands a '?' flag given without a value and without Const
	bareFlagMarker = "\x00"
)

// CLIParser maps command-line arguments onto the schema.
//
// Grammar: positional options take bare tokens in declaration order, honoring
// nargs; dashed options accept --flag=value, --flag value and -f value. A '?'
// flag takes the next token only when it does not start with a dash.
// Multi-value ('*') flags accept repeated occurrences and comma-separated
// values. A standalone @path token is replaced by the whitespace-separated
// tokens of the file at path. Tokens after a standalone "--" are not parsed
// and are kept as pass-through arguments.
type CLIParser struct {
	Schema *Schema
	// Args are the arguments used by Parse, without the program name
	Args []string
	// Prog names the program in usage output
	Prog string
	// Lenient passes unknown arguments through instead of failing
	Lenient bool
	Fs      afero.Fs
	Logger  *zap.Logger

	passThrough []string
}

// NewCLIParser creates a strict parser over the real filesystem
func NewCLIParser(schema *Schema, args []string) *CLIParser {
	return &CLIParser{
		Schema: schema,
		Args:   args,
		Fs:     afero.NewOsFs(),
		Logger: zap.NewNop(),
	}
}

// Source implements SourceParser
func (p *CLIParser) Source() Source { return SourceCLI }

// Parse implements SourceParser using p.Args
func (p *CLIParser) Parse(ctx context.Context) (Partial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.ParseArgs(p.Args)
}

// PassThrough returns the arguments left unparsed by the last ParseArgs call
func (p *CLIParser) PassThrough() []string {
	return append([]string(nil), p.passThrough...)
}

// optionValue collects the raw strings given for one option
type optionValue struct {
	opt  *Option
	raws []string
	set  bool
	bare bool // '?' flag given without a value
}

func (v *optionValue) String() string {
	return strings.Join(v.raws, ",")
}

func (v *optionValue) Set(s string) error {
	v.set = true
	switch {
	case v.opt.Nargs == NargsOptional && s == bareFlagMarker:
		v.bare = true
		v.raws = nil
	case v.opt.Nargs == NargsAny:
		v.raws = append(v.raws, splitList(s)...)
	default:
		v.bare = false
		v.raws = []string{s}
	}
	return nil
}

func (v *optionValue) Type() string {
	if v.opt.Switch {
		return "bool"
	}
	return strings.ReplaceAll(v.opt.Type.String(), " ", "-")
}

// ParseArgs parses args and returns the options they set, coerced.
// Options the arguments did not mention are absent from the result.
func (p *CLIParser) ParseArgs(args []string) (Partial, error) {
	logger := p.logger()
	p.passThrough = nil

	head, tail := splitPassThrough(args)

	tokens, err := p.expandArgFiles(head, 0)
	if err != nil {
		return nil, err
	}

	fs, values := p.flagSet()

	known, unknown, err := prescan(fs, tokens)
	if err != nil {
		return nil, err
	}

	if err := fs.Parse(known); err != nil {
		return nil, &ArgumentError{Reason: "invalid arguments", Err: err}
	}

	positional := p.positionalOptions()
	assigned, extras := assignPositionals(positional, fs.Args())

	var missing []string
	for _, opt := range positional {
		if _, ok := assigned[opt]; !ok && opt.Nargs == NargsOne {
			missing = append(missing, opt.Name)
		}
	}

	extras = append(unknown, extras...)
	if !p.Lenient {
		if len(extras) > 0 {
			return nil, &ArgumentError{Args: extras, Reason: "unrecognized arguments"}
		}
		if len(missing) > 0 {
			return nil, &ArgumentError{Args: missing, Reason: "the following arguments are required"}
		}
	}
	p.passThrough = append(tail, extras...)
	if len(p.passThrough) > 0 {
		logger.Debug("Arguments passed through", zap.Strings("args", p.passThrough))
	}

	// Exclusivity is checked on the raw input, before any coercion runs
	if err := p.checkExclusive(values, assigned); err != nil {
		return nil, err
	}

	result := make(Partial)
	for _, opt := range p.Schema.options {
		if opt.Positional() {
			raws, ok := assigned[opt]
			if !ok {
				continue
			}
			v, err := p.positionalValue(opt, raws)
			if err != nil {
				return nil, err
			}
			result[opt.Key()] = v
			continue
		}

		val, ok := values[opt]
		if !ok || !val.set {
			continue
		}
		v, err := flagValue(opt, val)
		if err != nil {
			return nil, err
		}
		result[opt.Key()] = v
	}

	return result, nil
}

// flagSet builds a pflag set for the dashed options. Aliases share one value.
func (p *CLIParser) flagSet() (*pflag.FlagSet, map[*Option]*optionValue) {
	prog := p.Prog
	if prog == "" {
		prog = "config"
	}
	fs := pflag.NewFlagSet(prog, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	values := make(map[*Option]*optionValue)
	for _, opt := range p.Schema.options {
		if len(opt.Flags) == 0 || opt.Positional() {
			continue
		}
		val := &optionValue{opt: opt}
		values[opt] = val

		longs, short := splitFlags(opt.Flags)
		if len(longs) == 0 {
			longs = []string{opt.Name}
		}
		for i, long := range longs {
			sh := ""
			if i == 0 {
				sh = short
			}
			f := fs.VarPF(val, long, sh, opt.usage())
			if opt.Default != nil {
				f.DefValue = fmt.Sprint(opt.Default)
			}
			switch {
			case opt.Switch:
				f.NoOptDefVal = "true"
			case opt.Nargs == NargsOptional && opt.Const != "":
				f.NoOptDefVal = opt.Const
			case opt.Nargs == NargsOptional:
				f.NoOptDefVal = bareFlagMarker
			}
		}
	}
	return fs, values
}

// prescan separates tokens pflag knows from unknown flags. Values following a
// known flag that requires one stay with that flag.
func prescan(fs *pflag.FlagSet, tokens []string) (known, unknown []string, err error) {
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if len(tok) < 2 || tok[0] != '-' {
			known = append(known, tok)
			continue
		}

		needsNext, found := false, false
		var single *pflag.Flag // flag named by the whole token, without a value
		if strings.HasPrefix(tok, "--") {
			name, _, hasValue := strings.Cut(tok[2:], "=")
			if f := fs.Lookup(name); f != nil {
				found = true
				needsNext = !hasValue && f.NoOptDefVal == ""
				if !hasValue {
					single = f
				}
			} else if name == "help" {
				return nil, nil, &ArgumentError{Reason: "help requested", Err: ErrHelp}
			}
		} else {
			found, needsNext = scanShorthands(fs, tok[1:])
			if !found && tok == "-h" {
				return nil, nil, &ArgumentError{Reason: "help requested", Err: ErrHelp}
			}
			if found && len(tok) == 2 {
				single = fs.ShorthandLookup(tok[1:])
			}
		}

		if !found {
			unknown = append(unknown, tok)
			continue
		}

		// A '?' flag takes the next token as its value unless it looks like an option
		if single != nil && takesOptionalValue(single) && i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") {
			i++
			known = append(known, tok+"="+tokens[i])
			continue
		}
		known = append(known, tok)
		if needsNext && i+1 < len(tokens) {
			i++
			known = append(known, tokens[i])
		}
	}
	return known, unknown, nil
}

func takesOptionalValue(f *pflag.Flag) bool {
	v, ok := f.Value.(*optionValue)
	return ok && !v.opt.Switch && v.opt.Nargs == NargsOptional
}

// scanShorthands walks a -abc cluster; a flag that takes a value ends the
// cluster, and if nothing follows it the next token is its value.
func scanShorthands(fs *pflag.FlagSet, cluster string) (found, needsNext bool) {
	for j := 0; j < len(cluster); j++ {
		if cluster[j] == '=' {
			return j > 0, false
		}
		f := fs.ShorthandLookup(cluster[j : j+1])
		if f == nil {
			return false, false
		}
		if f.NoOptDefVal == "" {
			return true, j == len(cluster)-1
		}
	}
	return true, false
}

// expandArgFiles replaces @path tokens with the tokens read from path
func (p *CLIParser) expandArgFiles(args []string, depth int) ([]string, error) {
	expanded := make([]string, 0, len(args))
	for _, tok := range args {
		if len(tok) < 2 || tok[0] != '@' {
			expanded = append(expanded, tok)
			continue
		}

		path := tok[1:]
		if depth >= maxArgFileDepth {
			return nil, &ArgumentError{Args: []string{tok}, Reason: "argument files nested too deeply"}
		}
		data, err := afero.ReadFile(p.fs(), path)
		if err != nil {
			if p.Lenient {
				p.logger().Debug("Argument file not readable, keeping token", zap.String("path", path), zap.Error(err))
				expanded = append(expanded, tok)
				continue
			}
			return nil, &ArgumentError{Args: []string{tok}, Reason: "cannot read argument file", Err: err}
		}

		nested, err := p.expandArgFiles(strings.Fields(string(data)), depth+1)
		if err != nil {
			return nil, err
		}
		p.logger().Debug("Expanded argument file", zap.String("path", path), zap.Int("tokens", len(nested)))
		expanded = append(expanded, nested...)
	}
	return expanded, nil
}

func (p *CLIParser) positionalOptions() []*Option {
	var result []*Option
	for _, opt := range p.Schema.options {
		if opt.Positional() {
			result = append(result, opt)
		}
	}
	return result
}

// assignPositionals hands tokens to positional options in order. Optional and
// multi-value positionals leave enough tokens for later single-value ones.
func assignPositionals(opts []*Option, tokens []string) (map[*Option][]string, []string) {
	assigned := make(map[*Option][]string)

	reserve := make([]int, len(opts))
	for i := len(opts) - 2; i >= 0; i-- {
		reserve[i] = reserve[i+1]
		if opts[i+1].Nargs == NargsOne {
			reserve[i]++
		}
	}

	idx := 0
	for i, opt := range opts {
		avail := len(tokens) - idx - reserve[i]
		take := 0
		switch opt.Nargs {
		case NargsOne:
			if idx < len(tokens) {
				take = 1
			}
		case NargsOptional:
			if avail >= 1 {
				take = 1
			}
		case NargsAny:
			if avail > 0 {
				take = avail
			}
		}
		if take > 0 {
			assigned[opt] = tokens[idx : idx+take]
			idx += take
		}
	}

	return assigned, tokens[idx:]
}

// checkExclusive fails when two options of one exclusive group were given
func (p *CLIParser) checkExclusive(values map[*Option]*optionValue, assigned map[*Option][]string) error {
	seen := make(map[string][]string)
	var order []string
	for _, opt := range p.Schema.options {
		if opt.ExclusiveGroup == "" {
			continue
		}
		given := false
		if opt.Positional() {
			_, given = assigned[opt]
		} else if val, ok := values[opt]; ok {
			given = val.set
		}
		if !given {
			continue
		}
		if _, ok := seen[opt.ExclusiveGroup]; !ok {
			order = append(order, opt.ExclusiveGroup)
		}
		seen[opt.ExclusiveGroup] = append(seen[opt.ExclusiveGroup], opt.DisplayName())
	}
	for _, group := range order {
		if flags := seen[group]; len(flags) > 1 {
			return &MutualExclusionError{Group: group, Flags: flags}
		}
	}
	return nil
}

func (p *CLIParser) positionalValue(opt *Option, raws []string) (any, error) {
	if opt.Nargs == NargsAny {
		return opt.coerceList(raws, SourceCLI)
	}
	return opt.coerce(raws[0], SourceCLI)
}

func flagValue(opt *Option, val *optionValue) (any, error) {
	switch {
	case opt.Nargs == NargsAny:
		return opt.coerceList(val.raws, SourceCLI)
	case val.bare:
		return nil, nil
	default:
		return opt.coerce(val.raws[0], SourceCLI)
	}
}

// Usage renders the positional arguments and flags with their help text
func (p *CLIParser) Usage() string {
	var b strings.Builder
	prog := p.Prog
	if prog == "" {
		prog = "config"
	}

	positional := p.positionalOptions()
	b.WriteString("Usage: " + prog + " [flags]")
	for _, opt := range positional {
		switch opt.Nargs {
		case NargsOptional:
			fmt.Fprintf(&b, " [%s]", opt.Name)
		case NargsAny:
			fmt.Fprintf(&b, " [%s ...]", opt.Name)
		default:
			fmt.Fprintf(&b, " %s", opt.Name)
		}
	}
	b.WriteString("\n")

	if len(positional) > 0 {
		b.WriteString("\nPositional arguments:\n")
		for _, opt := range positional {
			fmt.Fprintf(&b, "  %-20s %s\n", opt.Name, opt.usage())
		}
	}

	fs, _ := p.flagSet()
	if fs.HasFlags() {
		b.WriteString("\nFlags:\n")
		b.WriteString(strings.ReplaceAll(fs.FlagUsages(), bareFlagMarker, ""))
	}
	return b.String()
}

func (p *CLIParser) fs() afero.Fs {
	if p.Fs == nil {
		return afero.NewOsFs()
	}
	return p.Fs
}

func (p *CLIParser) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// splitPassThrough splits args at the first standalone "--"
func splitPassThrough(args []string) (head, tail []string) {
	for i, a := range args {
		if a == "--" {
			return args[:i], append([]string(nil), args[i+1:]...)
		}
	}
	return args, nil
}
