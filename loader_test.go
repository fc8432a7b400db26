// FILE: lixenwraith/config/loader_test.go
package config

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// staticParser returns a fixed partial mapping
type staticParser struct {
	source  Source
	partial Partial
	err     error
	calls   int
}

func (p *staticParser) Source() Source { return p.source }

func (p *staticParser) Parse(context.Context) (Partial, error) {
	p.calls++
	return p.partial, p.err
}

// TestSourcePrecedence tests that the highest-precedence source present wins
func TestSourcePrecedence(t *testing.T) {
	ctx := context.Background()
	schema := MustSchema(Option{Flags: []string{"--value"}, Default: "default"})

	all := func() []SourceParser {
		return []SourceParser{
			&staticParser{source: SourceINI, partial: Partial{"value": "ini"}},
			&staticParser{source: SourceSecret, partial: Partial{"value": "secret"}},
			&staticParser{source: SourceEnv, partial: Partial{"value": "env"}},
			&staticParser{source: SourceCLI, partial: Partial{"value": "cli"}},
		}
	}

	tests := []struct {
		name     string
		present  []Source
		expected string
	}{
		{"NoSource", nil, "default"},
		{"IniOnly", []Source{SourceINI}, "ini"},
		{"SecretBeatsIni", []Source{SourceINI, SourceSecret}, "secret"},
		{"EnvBeatsSecret", []Source{SourceINI, SourceSecret, SourceEnv}, "env"},
		{"CliBeatsAll", []Source{SourceINI, SourceSecret, SourceEnv, SourceCLI}, "cli"},
		{"CliBeatsIni", []Source{SourceINI, SourceCLI}, "cli"},
		{"EnvBeatsIni", []Source{SourceEnv, SourceINI}, "env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var parsers []SourceParser
			for _, p := range all() {
				for _, src := range tt.present {
					if p.Source() == src {
						parsers = append(parsers, p)
					}
				}
			}

			cfg, err := New(schema)
			require.NoError(t, err)
			require.NoError(t, cfg.Load(ctx, DefaultLoadOptions(), parsers...))

			v, _ := cfg.Get("value")
			assert.Equal(t, tt.expected, v)
			if len(tt.present) == 0 {
				src, _ := cfg.Source("value")
				assert.Equal(t, SourceDefault, src)
			}
		})
	}

	t.Run("CustomOrder", func(t *testing.T) {
		cfg, err := New(schema)
		require.NoError(t, err)
		opts := LoadOptions{Sources: []Source{SourceEnv, SourceCLI, SourceINI, SourceDefault}}
		require.NoError(t, cfg.Load(ctx, opts, all()...))

		v, _ := cfg.Get("value")
		assert.Equal(t, "env", v)
		assert.NotContains(t, cfg.Sources("value"), SourceSecret, "unlisted source is not applied")
	})

	t.Run("NilSourcesUseDefault", func(t *testing.T) {
		cfg, err := New(schema)
		require.NoError(t, err)
		require.NoError(t, cfg.Load(ctx, LoadOptions{}, all()...))
		v, _ := cfg.Get("value")
		assert.Equal(t, "cli", v)
	})

	t.Run("DuplicateSourceAppliedOnce", func(t *testing.T) {
		cfg, err := New(schema)
		require.NoError(t, err)
		p := &staticParser{source: SourceEnv, partial: Partial{"value": "env"}}
		opts := LoadOptions{Sources: []Source{SourceEnv, SourceEnv}}
		require.NoError(t, cfg.Load(ctx, opts, p))
		assert.Equal(t, 1, p.calls)
	})
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	schema := MustSchema(Option{Flags: []string{"--value"}, Default: "default"})

	t.Run("ParserErrorStopsLoad", func(t *testing.T) {
		cfg, err := New(schema)
		require.NoError(t, err)
		failing := &staticParser{source: SourceINI, err: &ConfigFileError{Path: "/etc/app.ini", Err: errors.New("bad")}}
		later := &staticParser{source: SourceCLI, partial: Partial{"value": "cli"}}

		err = cfg.Load(ctx, DefaultLoadOptions(), failing, later)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigFile)
		assert.Contains(t, err.Error(), "ini-file")
		assert.Equal(t, 0, later.calls)
	})

	t.Run("UndeclaredKeyFromParser", func(t *testing.T) {
		cfg, err := New(schema)
		require.NoError(t, err)
		p := &staticParser{source: SourceEnv, partial: Partial{"other": 1}}
		assert.ErrorIs(t, cfg.Load(ctx, DefaultLoadOptions(), p), ErrUnknownKey)
	})
}

func TestLoadLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	schema := MustSchema(Option{Flags: []string{"--value"}, Default: "default"})
	cfg, err := New(schema)
	require.NoError(t, err)

	opts := DefaultLoadOptions()
	opts.Logger = zap.New(core)
	require.NoError(t, cfg.Load(context.Background(), opts,
		&staticParser{source: SourceEnv, partial: Partial{"value": "env"}},
		&staticParser{source: "custom", partial: Partial{"value": "x"}},
	))

	applied := logs.FilterMessage("Configuration source applied").All()
	require.Len(t, applied, 1)
	assert.Equal(t, "environment", applied[0].ContextMap()["source"])
	assert.EqualValues(t, 1, applied[0].ContextMap()["keys"])
	assert.Equal(t, 1, logs.FilterMessage("Parser ignored, source not in precedence list").Len())
}

// TestINIScenario tests a sectioned INI value overriding its default
func TestINIScenario(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/app/test.ini", []byte("[app]\nxini = 50\n"), 0644))

	resolve := func(paths ...string) *Config {
		schema := MustSchema(Option{Flags: []string{"--xini"}, Default: "1", Type: Int, INISection: "app"})
		cfg, err := New(schema)
		require.NoError(t, err)
		ini := NewINIParser(schema, paths...)
		ini.Fs = fs
		require.NoError(t, cfg.Load(ctx, DefaultLoadOptions(), ini))
		return cfg
	}

	withFile := resolve("/etc/default/app.ini", "/etc/app/test.ini")
	v, _ := withFile.Get("xini")
	assert.Equal(t, 50, v)
	src, _ := withFile.Source("xini")
	assert.Equal(t, SourceINI, src)

	withoutFile := resolve("/etc/default/app.ini")
	v, _ = withoutFile.Get("xini")
	assert.Equal(t, 1, v)
}

// TestReferenceResolution tests every source feeding one schema
func TestReferenceResolution(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/app/test.ini", []byte("[defaults]\ngini=10\n\n[app]\nxini = 50\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/app/test.arg", []byte("--xfarg=30\n"), 0644))

	schema := referenceSchema(t)
	cfg, err := New(schema)
	require.NoError(t, err)

	cli := NewCLIParser(schema, []string{"api", "--xarg=2", "@/app/test.arg"})
	cli.Fs = fs
	env := NewEnvParser(schema)
	env.Lookup = MapLookup(map[string]string{"APP_XENV": "10"})
	secret := NewSecretParser(schema, MapSecretStore{"app": {"karg": "13"}}, "app")
	ini := NewINIParser(schema, "/etc/default/app.ini", "/app/test.ini")
	ini.Fs = fs

	require.NoError(t, cfg.Load(ctx, DefaultLoadOptions(), cli, env, secret, ini))

	assert.Equal(t, "<Config xpos=api, xarg=2, xenv=10, xfarg=30, xini=50, gini=10, karg=13>", cfg.String())
	assert.Equal(t, map[string]Source{
		"xpos":  SourceCLI,
		"xarg":  SourceCLI,
		"xenv":  SourceEnv,
		"xfarg": SourceCLI,
		"xini":  SourceINI,
		"gini":  SourceINI,
		"karg":  SourceSecret,
	}, cfg.Provenance())
}
