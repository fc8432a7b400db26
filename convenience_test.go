// FILE: lixenwraith/config/convenience_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withArgs replaces os.Args for the duration of the test
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	os.Args = append([]string{"cmd"}, args...)
	t.Cleanup(func() { os.Args = oldArgs })
}

// TestQuickFunctions tests the convenience Quick* functions
func TestQuickFunctions(t *testing.T) {
	tmpDir := t.TempDir()
	iniFile := filepath.Join(tmpDir, "quick.ini")
	require.NoError(t, os.WriteFile(iniFile, []byte("host = quickhost\nport = 7777\n"), 0644))

	type QuickConfig struct {
		Host string `toml:"host" flag:"--host" env:"QUICK_HOST"`
		Port int    `toml:"port" flag:"--port,-p" env:"QUICK_PORT"`
		SSL  bool   `toml:"ssl" flag:"--ssl"`
	}

	defaults := &QuickConfig{
		Host: "localhost",
		Port: 8080,
		SSL:  false,
	}

	t.Run("QuickStruct", func(t *testing.T) {
		withArgs(t, "--port=9999")

		cfg, err := QuickStruct(defaults, iniFile)
		require.NoError(t, err)

		// CLI should override
		port, _ := cfg.Get("port")
		assert.Equal(t, 9999, port)

		// File value
		host, _ := cfg.Get("host")
		assert.Equal(t, "quickhost", host)

		ssl, _ := cfg.Get("ssl")
		assert.Equal(t, false, ssl)
	})

	t.Run("QuickEnvOverFile", func(t *testing.T) {
		withArgs(t, "--ssl")
		t.Setenv("QUICK_HOST", "envhost")

		cfg, err := QuickStruct(defaults, iniFile)
		require.NoError(t, err)

		host, _ := cfg.Get("host")
		assert.Equal(t, "envhost", host)
		src, _ := cfg.Source("host")
		assert.Equal(t, SourceEnv, src)

		ssl, _ := cfg.Get("ssl")
		assert.Equal(t, true, ssl)
	})

	t.Run("Quick", func(t *testing.T) {
		withArgs(t, "-p", "1234")

		options := []Option{
			{Flags: []string{"--port", "-p"}, Default: "8080", Type: Int},
			{Flags: []string{"--host"}, Default: "localhost"},
		}
		cfg, err := Quick(options)
		require.NoError(t, err)
		assert.Equal(t, "<Config port=1234, host=localhost>", cfg.String())
	})

	t.Run("MustQuickPanic", func(t *testing.T) {
		withArgs(t)

		assert.NotPanics(t, func() {
			cfg := MustQuick([]Option{{Flags: []string{"--host"}, Default: "localhost"}}, iniFile)
			assert.NotNil(t, cfg)
		})

		// Duplicate flags fail schema validation
		assert.Panics(t, func() {
			MustQuick([]Option{{Flags: []string{"--host"}}, {Name: "other", Flags: []string{"--host"}}})
		})
	})

	t.Run("QuickStructInvalid", func(t *testing.T) {
		withArgs(t)
		_, err := QuickStruct("not-a-struct")
		assert.Error(t, err)
	})
}

// TestValidation tests configuration validation
func TestValidation(t *testing.T) {
	schema := MustSchema(
		Option{Name: "required.host"},
		Option{Name: "required.port", Type: Int},
		Option{Name: "optional.timeout", Default: "30", Type: Int},
	)
	cfg, err := New(schema)
	require.NoError(t, err)

	t.Run("ValidationFails", func(t *testing.T) {
		err := cfg.Validate("required.host", "required.port", "optional.timeout")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRequired)

		var reqErr *RequiredError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, []string{"required.host", "required.port"}, reqErr.Missing)
	})

	t.Run("ValidationPasses", func(t *testing.T) {
		require.NoError(t, cfg.Set("required.host", "localhost"))
		require.NoError(t, cfg.Set("required.port", Raw("8080")))

		assert.NoError(t, cfg.Validate("required.host", "required.port"))
	})

	t.Run("ValidationUndeclaredKey", func(t *testing.T) {
		err := cfg.Validate("nonexistent.path")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "nonexistent.path (not declared)")
	})
}

func TestCheckRequired(t *testing.T) {
	schema := MustSchema(
		Option{Flags: []string{"--name"}, Required: true},
		Option{Name: "token", Required: true, Default: "preset"},
		Option{Flags: []string{"--key"}, ExclusiveGroup: "key", Dest: "key", Required: true},
		Option{Flags: []string{"--key-file"}, ExclusiveGroup: "key", Dest: "key", Required: true},
	)

	cfg, err := New(schema)
	require.NoError(t, err)

	err = cfg.checkRequired()
	var reqErr *RequiredError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, []string{"--name", "one of --key, --key-file"}, reqErr.Missing)

	require.NoError(t, cfg.Overlay(Partial{"name": "svc", "key": "secret"}, SourceCLI))
	assert.NoError(t, cfg.checkRequired())
}

// TestDebug tests debug output
func TestDebug(t *testing.T) {
	schema := MustSchema(
		Option{Name: "server.host", Default: "localhost"},
		Option{Name: "server.port", Default: "8080", Type: Int},
	)
	cfg, err := New(schema)
	require.NoError(t, err)

	require.NoError(t, cfg.Overlay(Partial{"server.host": "inihost"}, SourceINI))
	require.NoError(t, cfg.Overlay(Partial{"server.host": "envhost"}, SourceEnv))
	require.NoError(t, cfg.Overlay(Partial{"server.port": Raw("9999")}, SourceCLI))

	debug := cfg.Debug()

	assert.Contains(t, debug, "Configuration Debug Info")
	assert.Contains(t, debug, "server.host:")
	assert.Contains(t, debug, "Current: envhost (from environment)")
	assert.Contains(t, debug, "Default: localhost")
	assert.Contains(t, debug, "ini-file: inihost")
	assert.Contains(t, debug, "environment: envhost")
	assert.Contains(t, debug, "Current: 9999 (from command-line)")
}

// TestClone tests configuration cloning
func TestClone(t *testing.T) {
	schema := MustSchema(
		Option{Name: "original.value", Default: "default"},
		Option{Name: "shared.value", Default: "shared"},
	)
	cfg, err := New(schema)
	require.NoError(t, err)

	require.NoError(t, cfg.Overlay(Partial{"original.value": "inivalue"}, SourceINI))
	require.NoError(t, cfg.Overlay(Partial{"shared.value": "envvalue"}, SourceEnv))

	clone := cfg.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, cfg.String(), clone.String())

	// Modify clone should not affect original
	require.NoError(t, clone.Set("original.value", "clonevalue"))

	originalVal, _ := cfg.Get("original.value")
	cloneVal, _ := clone.Get("original.value")

	assert.Equal(t, "inivalue", originalVal)
	assert.Equal(t, "clonevalue", cloneVal)
	assert.NotContains(t, cfg.Sources("original.value"), SourceSet)

	// Verify source data is copied
	sources := clone.Sources("shared.value")
	assert.Equal(t, "envvalue", sources[SourceEnv])
}

func TestGenericHelpers(t *testing.T) {
	schema := MustSchema(
		Option{Name: "server.host", Default: "localhost"},
		Option{Name: "server.port", Default: "8080"},
		Option{Name: "features.dark_mode", Default: "true", Type: Bool},
		Option{Name: "timeouts.read", Default: "5s"},
	)
	cfg, err := New(schema)
	require.NoError(t, err)

	t.Run("GetTyped", func(t *testing.T) {
		port, err := GetTyped[int](cfg, "server.port")
		require.NoError(t, err)
		assert.Equal(t, 8080, port)

		host, err := GetTyped[string](cfg, "server.host")
		require.NoError(t, err)
		assert.Equal(t, "localhost", host)

		dark, err := GetTyped[bool](cfg, "features.dark_mode")
		require.NoError(t, err)
		assert.True(t, dark)

		readTimeout, err := GetTyped[time.Duration](cfg, "timeouts.read")
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, readTimeout)

		_, err = GetTyped[int](cfg, "nonexistent.path")
		assert.ErrorIs(t, err, ErrUnknownKey)
	})

	t.Run("ScanTyped", func(t *testing.T) {
		type ServerConfig struct {
			Host string `toml:"host"`
			Port int    `toml:"port"`
		}

		serverConf, err := ScanTyped[ServerConfig](cfg, "server")
		require.NoError(t, err)
		require.NotNil(t, serverConf)
		assert.Equal(t, "localhost", serverConf.Host)
		assert.Equal(t, 8080, serverConf.Port)
	})
}
