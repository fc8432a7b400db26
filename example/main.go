// FILE: lixenwraith/config/example/main.go

// Example: supplying a key either as a value or as a file, on top of a
// struct-derived option set read from an INI file and the environment.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/config"
)

// AppConfig holds the defaults; tags bind each field to its sources
type AppConfig struct {
	Server struct {
		Host    string        `toml:"host" flag:"--host" env:"APP_HOST" ini:"server"`
		Port    int           `toml:"port" flag:"--port,-p" env:"APP_PORT" ini:"server"`
		Timeout time.Duration `toml:"timeout" flag:"--timeout" ini:"server"`
	} `toml:"server"`
	Verbose bool     `toml:"verbose" flag:"--verbose,-v" help:"chatty output"`
	Tags    []string `toml:"tags" flag:"--tag" env:"APP_TAGS"`
}

func main() {
	dir, err := os.MkdirTemp("", "config-example")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	iniPath := filepath.Join(dir, "app.ini")
	iniData := "[server]\nport = 9090\ntimeout = 3s\n"
	if err := os.WriteFile(iniPath, []byte(iniData), 0644); err != nil {
		log.Fatalf("Failed to write INI file: %v", err)
	}
	keyPath := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(keyPath, []byte("\n-----BEGIN KEY-----\nabc\n-----END KEY-----\n"), 0600); err != nil {
		log.Fatalf("Failed to write key file: %v", err)
	}

	defaults := &AppConfig{}
	defaults.Server.Host = "localhost"
	defaults.Server.Port = 8080
	defaults.Server.Timeout = time.Second

	options, err := config.OptionsFromStruct("", defaults)
	if err != nil {
		log.Fatalf("Failed to derive options: %v", err)
	}

	// The key may come from --key or --key-file, never both
	options = append(options,
		config.Option{Flags: []string{"--key"}, Type: config.KeyFormat, ExclusiveGroup: "key", Dest: "key", Env: "APP_KEY"},
		config.Option{Flags: []string{"--key-file"}, Type: config.ReadFile, ExclusiveGroup: "key", Dest: "key", Required: true},
	)

	var target struct {
		AppConfig `toml:",squash"`
		Key       string `toml:"key"`
	}
	args := []string{"--key-file", keyPath, "-v", "--tag", "a,b"}
	builder := config.NewBuilder(options...).
		WithArgs(args).
		WithINIFiles("/etc/app/app.ini", iniPath)
	if err := builder.BuildAndScan(&target); err != nil {
		log.Fatalf("Failed to resolve configuration: %v", err)
	}

	fmt.Printf("server: %s:%d (timeout %s)\n", target.Server.Host, target.Server.Port, target.Server.Timeout)
	fmt.Printf("verbose: %v, tags: %v\n", target.Verbose, target.Tags)
	fmt.Printf("key:\n%s\n", target.Key)

	// Both forms at once are rejected
	_, err = config.NewBuilder(options...).
		WithArgs([]string{"--key", "abc", "--key-file", keyPath}).
		Build()
	fmt.Printf("both forms: %v\n", err)
}
