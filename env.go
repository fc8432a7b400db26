// FILE: lixenwraith/config/env.go
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

// LookupFunc reads one environment variable
type LookupFunc func(name string) (string, bool)

// EnvParser reads the variables explicitly bound with Option.Env.
// No name is derived for options without a binding.
type EnvParser struct {
	Schema *Schema
	// Lookup defaults to os.LookupEnv
	Lookup LookupFunc
	// DotenvFiles are read in order (later files override earlier); the
	// process environment overrides all of them. Missing files are skipped.
	DotenvFiles []string
	Fs          afero.Fs
	Logger      *zap.Logger
}

// NewEnvParser creates a parser over the process environment
func NewEnvParser(schema *Schema) *EnvParser {
	return &EnvParser{
		Schema: schema,
		Lookup: os.LookupEnv,
		Fs:     afero.NewOsFs(),
		Logger: zap.NewNop(),
	}
}

// Source implements SourceParser
func (p *EnvParser) Source() Source { return SourceEnv }

// Parse returns the coerced values of the bound variables that are set
func (p *EnvParser) Parse(ctx context.Context) (Partial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lookup, err := p.lookupFunc()
	if err != nil {
		return nil, err
	}

	result := make(Partial)
	for _, opt := range p.Schema.options {
		if opt.Env == "" {
			continue
		}
		raw, ok := lookup(opt.Env)
		if !ok {
			continue
		}
		if len(raw) > MaxValueSize {
			return nil, &CoercionError{Option: opt.Name, Source: SourceEnv, Raw: raw[:32] + "...", Type: opt.Type.String(), Err: ErrValueSize}
		}
		v, err := opt.coerceFromText(raw, SourceEnv)
		if err != nil {
			return nil, err
		}
		result[opt.Key()] = v
	}

	return result, nil
}

// lookupFunc layers dotenv files under the configured lookup
func (p *EnvParser) lookupFunc() (LookupFunc, error) {
	lookup := p.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if len(p.DotenvFiles) == 0 {
		return lookup, nil
	}

	fs := p.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dotenv := make(gotenv.Env)
	for _, path := range p.DotenvFiles {
		f, err := fs.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Debug("Dotenv file not found, skipping", zap.String("path", path))
				continue
			}
			return nil, &ConfigFileError{Path: path, Err: err}
		}
		env, err := gotenv.StrictParse(f)
		f.Close()
		if err != nil {
			return nil, &ConfigFileError{Path: path, Err: fmt.Errorf("invalid dotenv syntax: %w", err)}
		}
		for k, v := range env {
			dotenv[k] = v
		}
	}

	return func(name string) (string, bool) {
		if v, ok := lookup(name); ok {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok
	}, nil
}

// MapLookup serves variables from a map, for tests and embedding
func MapLookup(env map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}
