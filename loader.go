// FILE: lixenwraith/config/loader.go
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Source labels where a value came from, used to define load precedence
type Source string

const (
	// SourceDefault represents the coerced option defaults
	SourceDefault Source = "default"
	// SourceINI represents values read from INI files
	SourceINI Source = "ini-file"
	// SourceSecret represents values read from a secret store
	SourceSecret Source = "secret-store"
	// SourceEnv represents values read from environment variables
	SourceEnv Source = "environment"
	// SourceCLI represents values parsed from command-line arguments
	SourceCLI Source = "command-line"
	// SourceSet represents values written directly with Config.Set
	SourceSet Source = "set"
)

// SourceParser produces the partial mapping of one source
type SourceParser interface {
	Source() Source
	Parse(ctx context.Context) (Partial, error)
}

// LoadOptions configures how sources are layered
type LoadOptions struct {
	// Sources defines the precedence order (first = highest priority)
	// Default: [SourceCLI, SourceEnv, SourceSecret, SourceINI, SourceDefault]
	Sources []Source

	// Logger receives one debug entry per applied source
	Logger *zap.Logger
}

// DefaultLoadOptions returns the standard precedence:
// command line > environment > secret store > INI files > defaults
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sources: []Source{SourceCLI, SourceEnv, SourceSecret, SourceINI, SourceDefault},
	}
}

// Load runs the parsers and overlays their results, lowest precedence first,
// so each source overrides the ones before it. Defaults are already in place.
// A source listed in opts without a parser is skipped; a parser whose source
// is not listed is ignored. The first error stops the load.
func (c *Config) Load(ctx context.Context, opts LoadOptions, parsers ...SourceParser) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Sources == nil {
		opts.Sources = DefaultLoadOptions().Sources
	}

	bySource := make(map[Source]SourceParser, len(parsers))
	for _, p := range parsers {
		if p != nil {
			bySource[p.Source()] = p
		}
	}

	applied := make(map[Source]bool, len(opts.Sources))

	// Process each source according to precedence (in reverse order for proper layering)
	for i := len(opts.Sources) - 1; i >= 0; i-- {
		source := opts.Sources[i]
		if source == SourceDefault || applied[source] {
			continue
		}
		applied[source] = true

		parser, ok := bySource[source]
		if !ok {
			continue
		}

		partial, err := parser.Parse(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		if err := c.Overlay(partial, source); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		logger.Debug("Configuration source applied", zap.String("source", string(source)), zap.Int("keys", len(partial)))
	}

	for source := range bySource {
		if !applied[source] {
			logger.Debug("Parser ignored, source not in precedence list", zap.String("source", string(source)))
		}
	}

	return nil
}
