// FILE: lixenwraith/config/discovery.go
package config

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// INIDiscoveryOptions configures automatic INI file discovery
type INIDiscoveryOptions struct {
	// Base name of the INI file (without extension)
	Name string

	// Custom search paths, in increasing precedence
	Paths []string

	// Environment variable to check for an explicit path
	EnvVar string

	// CLI flag naming an explicit path (e.g., "--ini"); removed from the arguments
	CLIFlag string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultINIDiscoveryOptions returns sensible defaults
func DefaultINIDiscoveryOptions(appName string) INIDiscoveryOptions {
	return INIDiscoveryOptions{
		Name:          appName,
		EnvVar:        strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_INI",
		CLIFlag:       "--ini",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithINIDiscovery enables automatic INI file discovery at build time.
//
// Candidates, lowest precedence first: system XDG directories, the user XDG
// directory, the current directory, custom paths, files added with
// WithINIFiles, the env var path, then the CLI flag path. Missing candidates
// are skipped by the INI parser.
func (b *Builder) WithINIDiscovery(opts INIDiscoveryOptions) *Builder {
	b.discovery = &opts
	return b
}

// discoverINIFiles strips the discovery flag from the arguments and returns
// them with the full candidate list
func (b *Builder) discoverINIFiles(opts INIDiscoveryOptions) (args []string, files []string, err error) {
	fileName := opts.Name + ".ini"

	// XDG paths come back highest first, candidates are lowest first
	if opts.UseXDG {
		xdg := getXDGConfigPaths(opts.Name, b.envLookup)
		for i := len(xdg) - 1; i >= 0; i-- {
			files = append(files, filepath.Join(xdg[i], fileName))
		}
	}

	if opts.UseCurrentDir {
		files = append(files, fileName)
	}

	for _, dir := range opts.Paths {
		files = append(files, filepath.Join(dir, fileName))
	}

	files = append(files, b.iniFiles...)

	if opts.EnvVar != "" && b.envLookup != nil {
		if path, ok := b.envLookup(opts.EnvVar); ok && path != "" {
			files = append(files, path)
		}
	}

	args, flagPath, err := extractFlag(b.args, opts.CLIFlag)
	if err != nil {
		return nil, nil, err
	}
	if flagPath != "" {
		files = append(files, flagPath)
	}

	b.logger.Debug("INI candidates discovered", zap.Strings("paths", files))
	return args, files, nil
}

// extractFlag removes every "--flag value" or "--flag=value" occurrence from
// args before a standalone "--"; the last value wins. The flag without a
// following value is an ArgumentError.
func extractFlag(args []string, flag string) ([]string, string, error) {
	if flag == "" {
		return args, "", nil
	}
	var value string
	result := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return append(result, args[i:]...), value, nil
		case arg == flag:
			if i+1 >= len(args) || args[i+1] == "--" {
				return nil, "", &ArgumentError{Args: []string{flag}, Reason: "expected a path"}
			}
			value = args[i+1]
			i++
		case strings.HasPrefix(arg, flag+"="):
			value = strings.TrimPrefix(arg, flag+"=")
		default:
			result = append(result, arg)
		}
	}
	return result, value, nil
}

// getXDGConfigPaths returns XDG-compliant config search paths
func getXDGConfigPaths(appName string, lookup LookupFunc) []string {
	var paths []string
	getenv := func(name string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(name)
		return v
	}

	// XDG_CONFIG_HOME
	if xdgHome := getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	// XDG_CONFIG_DIRS
	if xdgDirs := getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		// Default system paths
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}
