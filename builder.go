// File: lixenwraith/config/builder.go
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ValidatorFunc defines the signature for a function that can validate a Config instance.
// It receives the fully loaded *Config object and should return an error if validation fails.
type ValidatorFunc func(c *Config) error

// Builder provides a fluent interface for building configurations
type Builder struct {
	options    []Option
	schema     *Schema
	opts       LoadOptions
	prog       string
	args       []string
	iniFiles   []string
	iniSection string
	envLookup  LookupFunc
	dotenv     []string
	store      SecretStore
	namespace  string
	lenient    bool
	logger     *zap.Logger
	fs         afero.Fs
	discovery  *INIDiscoveryOptions
	err        error
	validators []ValidatorFunc

	cli *CLIParser
}

// NewBuilder creates a new configuration builder for the given options
func NewBuilder(options ...Option) *Builder {
	return &Builder{
		options:    options,
		opts:       DefaultLoadOptions(),
		args:       os.Args[1:],
		envLookup:  os.LookupEnv,
		logger:     zap.NewNop(),
		fs:         afero.NewOsFs(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithSchema uses an already validated schema instead of the builder's options
func (b *Builder) WithSchema(schema *Schema) *Builder {
	if schema == nil {
		b.err = fmt.Errorf("%w: nil schema", ErrSchema)
		return b
	}
	b.schema = schema
	return b
}

// WithProg sets the program name shown in usage output
func (b *Builder) WithProg(prog string) *Builder {
	b.prog = prog
	return b
}

// WithArgs sets the command-line arguments, without the program name
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithINIFiles appends candidate INI files, lowest precedence first
func (b *Builder) WithINIFiles(paths ...string) *Builder {
	b.iniFiles = append(b.iniFiles, paths...)
	return b
}

// WithINISection sets the section used for options without an INISection
func (b *Builder) WithINISection(section string) *Builder {
	b.iniSection = section
	return b
}

// WithEnvLookup replaces os.LookupEnv, mainly for tests
func (b *Builder) WithEnvLookup(fn LookupFunc) *Builder {
	if fn != nil {
		b.envLookup = fn
	}
	return b
}

// WithDotenv adds dotenv files beneath the process environment
func (b *Builder) WithDotenv(paths ...string) *Builder {
	b.dotenv = append(b.dotenv, paths...)
	return b
}

// WithSecretStore enables secret lookup in the given namespace; a nil store disables it
func (b *Builder) WithSecretStore(store SecretStore, namespace string) *Builder {
	b.store = store
	b.namespace = namespace
	return b
}

// WithSources sets the precedent order for configuration sources
func (b *Builder) WithSources(sources ...Source) *Builder {
	b.opts.Sources = sources
	return b
}

// WithLenient passes unknown command-line arguments through instead of failing
func (b *Builder) WithLenient(lenient bool) *Builder {
	b.lenient = lenient
	return b
}

// WithLogger sets the logger handed to every parser
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithFs sets the filesystem for INI, dotenv and @file reads
func (b *Builder) WithFs(fs afero.Fs) *Builder {
	if fs != nil {
		b.fs = fs
	}
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Config instance with all specified options
func (b *Builder) Build() (*Config, error) {
	return b.BuildContext(context.Background())
}

// BuildContext validates the schema, applies every source in precedence order,
// checks required options and runs the validators.
func (b *Builder) BuildContext(ctx context.Context) (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	schema := b.schema
	if schema == nil {
		var err error
		if schema, err = NewSchema(b.options...); err != nil {
			return nil, err
		}
	}

	cfg, err := New(schema)
	if err != nil {
		return nil, err
	}

	args, iniFiles := b.args, b.iniFiles
	if b.discovery != nil {
		if args, iniFiles, err = b.discoverINIFiles(*b.discovery); err != nil {
			return nil, err
		}
	}

	b.cli = &CLIParser{
		Schema:  schema,
		Args:    args,
		Prog:    b.prog,
		Lenient: b.lenient,
		Fs:      b.fs,
		Logger:  b.logger,
	}
	env := &EnvParser{
		Schema:      schema,
		Lookup:      b.envLookup,
		DotenvFiles: b.dotenv,
		Fs:          b.fs,
		Logger:      b.logger,
	}
	ini := &INIParser{
		Schema:         schema,
		Paths:          iniFiles,
		DefaultSection: b.iniSection,
		Fs:             b.fs,
		Logger:         b.logger,
	}
	secret := &SecretParser{
		Schema:    schema,
		Store:     b.store,
		Namespace: b.namespace,
		Logger:    b.logger,
	}

	opts := b.opts
	opts.Logger = b.logger
	if err := cfg.Load(ctx, opts, b.cli, env, secret, ini); err != nil {
		return nil, err
	}

	if err := cfg.checkRequired(); err != nil {
		return nil, err
	}

	// Run validators
	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return cfg, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return cfg
}

// BuildAndScan builds and unmarshals the final configuration into the provided target struct pointer
func (b *Builder) BuildAndScan(target any) error {
	cfg, err := b.Build()
	if err != nil {
		return err
	}

	if err := cfg.Scan("", target); err != nil {
		return fmt.Errorf("failed to scan final config into target: %w", err)
	}
	return nil
}

// PassThrough returns the arguments the last build left unparsed
func (b *Builder) PassThrough() []string {
	if b.cli == nil {
		return nil
	}
	return b.cli.PassThrough()
}

// Usage renders the command-line help for the builder's schema
func (b *Builder) Usage() (string, error) {
	schema := b.schema
	if schema == nil {
		var err error
		if schema, err = NewSchema(b.options...); err != nil {
			return "", err
		}
	}
	p := &CLIParser{Schema: schema, Prog: b.prog}
	return p.Usage(), nil
}

// IsHelp reports whether a build failed because help was requested
func IsHelp(err error) bool {
	return errors.Is(err, ErrHelp)
}
