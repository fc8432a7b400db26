// FILE: lixenwraith/config/decode_test.go
package config

import (
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanWithComplexTypes tests scanning with various complex types
func TestScanWithComplexTypes(t *testing.T) {
	type NetworkConfig struct {
		IP      net.IP        `toml:"ip"`
		IPNet   *net.IPNet    `toml:"subnet"`
		URL     *url.URL      `toml:"endpoint"`
		Timeout time.Duration `toml:"timeout"`
		Retry   struct {
			Count    int           `toml:"count"`
			Interval time.Duration `toml:"interval"`
		} `toml:"retry"`
	}

	type AppConfig struct {
		Network NetworkConfig     `toml:"network"`
		Tags    []string          `toml:"tags"`
		Ports   []int             `toml:"ports"`
		Labels  map[string]string `toml:"labels"`
		Joined  string            `toml:"joined"`
	}

	schema := MustSchema(
		Option{Name: "network.ip", Default: "127.0.0.1", Env: "NET_IP"},
		Option{Name: "network.subnet", Env: "NET_SUBNET"},
		Option{Name: "network.endpoint", Env: "NET_ENDPOINT"},
		Option{Name: "network.timeout", Default: "30s", Type: Duration, INISection: "network"},
		Option{Name: "network.retry.count", Default: "3", Type: Int},
		Option{Name: "network.retry.interval", Default: "10s"},
		Option{Name: "tags", Flags: []string{"--tag"}, Nargs: NargsAny},
		Option{Name: "ports", Type: Int, Nargs: NargsAny, Default: "8080"},
		Option{Name: "labels", Type: CommaSeparatedPairs, Default: "env=dev"},
		Option{Name: "joined", Nargs: NargsAny, Default: "a,b"},
	)
	cfg, err := New(schema)
	require.NoError(t, err)

	require.NoError(t, cfg.Overlay(Partial{
		"network.ip":       Raw("192.168.1.100"),
		"network.subnet":   Raw("192.168.1.0/24"),
		"network.endpoint": Raw("https://api.example.com:8443/v1"),
	}, SourceEnv))
	require.NoError(t, cfg.Overlay(Partial{
		"network.timeout":     Raw("2m30s"),
		"network.retry.count": Raw("5"),
		"ports":               Raw("80,443,8080"),
		"labels":              Raw("env=production,version=1.2.3"),
	}, SourceINI))
	require.NoError(t, cfg.Overlay(Partial{"tags": []Raw{"prod", "staging", "test"}}, SourceCLI))

	var result AppConfig
	require.NoError(t, cfg.Scan("", &result))

	assert.Equal(t, "192.168.1.100", result.Network.IP.String())
	assert.Equal(t, "192.168.1.0/24", result.Network.IPNet.String())
	assert.Equal(t, "https://api.example.com:8443/v1", result.Network.URL.String())
	assert.Equal(t, 150*time.Second, result.Network.Timeout)
	assert.Equal(t, 5, result.Network.Retry.Count)
	assert.Equal(t, 10*time.Second, result.Network.Retry.Interval)
	assert.Equal(t, []string{"prod", "staging", "test"}, result.Tags)
	assert.Equal(t, []int{80, 443, 8080}, result.Ports)
	assert.Equal(t, "production", result.Labels["env"])
	assert.Equal(t, "1.2.3", result.Labels["version"])
	assert.Equal(t, "a,b", result.Joined)
}

func TestScanSections(t *testing.T) {
	schema := MustSchema(
		Option{Name: "server.host", Default: "localhost"},
		Option{Name: "server.port", Default: "8080", Type: Int},
		Option{Name: "debug", Switch: true, Flags: []string{"--debug"}},
	)
	cfg, err := New(schema)
	require.NoError(t, err)

	type ServerConfig struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	}

	t.Run("BasePath", func(t *testing.T) {
		var server ServerConfig
		require.NoError(t, cfg.Scan("server", &server))
		assert.Equal(t, ServerConfig{Host: "localhost", Port: 8080}, server)
	})

	t.Run("MissingSectionDecodesEmpty", func(t *testing.T) {
		var server ServerConfig
		require.NoError(t, cfg.Scan("absent", &server))
		assert.Equal(t, ServerConfig{}, server)
	})

	t.Run("NonMapPath", func(t *testing.T) {
		var server ServerConfig
		assert.Error(t, cfg.Scan("debug", &server))
	})

	t.Run("InvalidTarget", func(t *testing.T) {
		var server ServerConfig
		assert.Error(t, cfg.Scan("", server))
		assert.Error(t, cfg.Scan("", nil))
	})

	t.Run("IntoMap", func(t *testing.T) {
		var m map[string]any
		require.NoError(t, cfg.Scan("server", &m))
		assert.Equal(t, "localhost", m["host"])
		assert.Equal(t, 8080, m["port"])
	})
}

func TestDecodeHookValidation(t *testing.T) {
	schema := MustSchema(
		Option{Name: "ip"},
		Option{Name: "subnet"},
		Option{Name: "endpoint"},
	)

	type Target struct {
		IP       net.IP     `toml:"ip"`
		Subnet   *net.IPNet `toml:"subnet"`
		Endpoint url.URL    `toml:"endpoint"`
	}

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"InvalidIP", "ip", "999.1.1.1"},
		{"InvalidCIDR", "subnet", "10.0.0.0/99"},
		{"InvalidURL", "endpoint", "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := New(schema)
			require.NoError(t, err)
			require.NoError(t, cfg.Set(tt.key, tt.value))

			var target Target
			assert.Error(t, cfg.Scan("", &target))
		})
	}
}
