// File: lixenwraith/config/doc.go

// Package config resolves a declared set of options from several sources:
// command-line arguments, environment variables, INI files and a secret store,
// layered over coerced defaults in a caller-chosen precedence.
//
// Features:
//   - Declarative Option schema validated up front (SchemaError)
//   - Type coercion applied identically to every source, including a
//     "read file contents" type for value-or-value-from-file pairs
//   - Mutually exclusive option groups enforced on the raw command line
//   - @file argument expansion and pass-through of unknown arguments
//   - INI candidates with section fallback, globbing and discovery
//   - Optional secret store; lookup failures never break resolution
//   - Provenance of every value, deterministic rendering
//   - Builder pattern for easy initialization
//   - Thread-safe operations using sync.RWMutex
//
// Quick Start:
//
//	cfg, err := config.NewBuilder(
//	    config.Option{Flags: []string{"--port"}, Type: config.Int, Default: "8080",
//	        Env: "APP_PORT", INISection: "server"},
//	    config.Option{Flags: []string{"--key"}, Env: "APP_KEY",
//	        ExclusiveGroup: "key", Dest: "key"},
//	    config.Option{Flags: []string{"--key-file"}, Type: config.ReadFile,
//	        ExclusiveGroup: "key", Dest: "key", NoSecret: true},
//	).
//	    WithINIFiles("/etc/app.ini", "app.ini").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	port, _ := cfg.GetInt("port")
//	fmt.Println(cfg) // <Config port=8080, key=...>
//
// Default Precedence (highest to lowest):
//  1. Command-line arguments (--port=9090)
//  2. Environment variables (APP_PORT=9090)
//  3. Secret store (namespace/port)
//  4. INI files, later files overriding earlier ones
//  5. Default values
//
// Custom Precedence:
//
//	cfg, err := config.NewBuilder(options...).
//	    WithSources(
//	        config.SourceEnv, // Environment the highest priority
//	        config.SourceCLI,
//	        config.SourceINI,
//	        config.SourceDefault,
//	    ).
//	    Build()
//
// Thread Safety:
// All Config operations are thread-safe. The package uses read-write mutexes to allow
// concurrent reads while protecting writes.
package config
