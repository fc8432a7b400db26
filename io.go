// File: lixenwraith/config/io.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Export formats
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// nested builds the dotted-key tree of the current values, or of the values
// one source supplied when source is set. Nil values are left out.
func (c *Config) nested(source Source) map[string]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	nestedData := make(map[string]any)
	for _, key := range c.schema.keys {
		item := c.items[key]
		val := item.currentValue
		if source != "" {
			var exists bool
			if val, exists = item.values[source]; !exists {
				continue
			}
		}
		if val == nil {
			continue
		}
		setNestedValue(nestedData, key, val)
	}
	return nestedData
}

// Export writes the current configuration to w as toml, yaml or json
func (c *Config) Export(format string, w io.Writer) error {
	return encode(strings.ToLower(format), c.nested(""), w)
}

func encode(format string, data map[string]any, w io.Writer) error {
	switch format {
	case FormatTOML, "":
		if err := toml.NewEncoder(w).Encode(data); err != nil {
			return fmt.Errorf("failed to marshal config data to TOML: %w", err)
		}
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	return nil
}

// Save writes the current configuration to a TOML file atomically.
// Keys whose value is nil are omitted.
func (c *Config) Save(path string) error {
	return c.SaveFs(afero.NewOsFs(), path, "")
}

// SaveSource writes values from a specific source to a TOML file
func (c *Config) SaveSource(path string, source Source) error {
	return c.SaveFs(afero.NewOsFs(), path, source)
}

// SaveFs is Save on the given filesystem, optionally limited to one source
func (c *Config) SaveFs(fs afero.Fs, path string, source Source) error {
	var buf bytes.Buffer
	if err := encode(FormatTOML, c.nested(source), &buf); err != nil {
		return err
	}
	return atomicWriteFile(fs, path, buf.Bytes())
}

// ExportEnv returns the current value of every option bound to an
// environment variable, formatted so the environment parser reads it back
func (c *Config) ExportEnv() map[string]string {
	exports := make(map[string]string)
	for _, opt := range c.schema.options {
		if opt.Env == "" {
			continue
		}
		val, _ := c.Get(opt.Key())
		if val == nil {
			continue
		}
		exports[opt.Env] = formatText(val)
	}
	return exports
}

// formatText renders a value the way the text sources spell it
func formatText(val any) string {
	switch v := val.(type) {
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, 0, len(v))
		for _, k := range keys {
			parts = append(parts, k+"="+v[k])
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := afero.TempFile(fs, dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	removed := false
	defer func() {
		if !removed {
			fs.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := fs.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := fs.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	removed = true

	return nil
}
