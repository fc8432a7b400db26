// File: lixenwraith/config/convenience.go
package config

import (
	"fmt"
	"strings"
)

// Quick creates a fully configured Config instance with a single call.
// It resolves os.Args, the process environment and the given INI files with
// the standard precedence: CLI > Env > INI > Default.
func Quick(options []Option, iniFiles ...string) (*Config, error) {
	return NewBuilder(options...).WithINIFiles(iniFiles...).Build()
}

// QuickStruct is Quick with options derived from a tagged struct of defaults
func QuickStruct(structDefaults any, iniFiles ...string) (*Config, error) {
	options, err := OptionsFromStruct("", structDefaults)
	if err != nil {
		return nil, fmt.Errorf("failed to derive options: %w", err)
	}
	return Quick(options, iniFiles...)
}

// MustQuick is like Quick but panics on error
func MustQuick(options []Option, iniFiles ...string) *Config {
	cfg, err := Quick(options, iniFiles...)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return cfg
}

// Validate checks that the given keys resolved to a non-nil value
func (c *Config) Validate(required ...string) error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var missing []string
	for _, key := range required {
		item, exists := c.items[key]
		if !exists {
			missing = append(missing, key+" (not declared)")
			continue
		}
		if item.currentValue == nil {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return &RequiredError{Missing: missing}
	}
	return nil
}

// checkRequired fails for every Required option left unresolved. An option
// in an exclusive group is satisfied when any member of the group resolved.
func (c *Config) checkRequired() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	resolvedGroups := make(map[string]bool)
	for _, opt := range c.schema.options {
		if opt.ExclusiveGroup != "" && c.items[opt.Key()].currentValue != nil {
			resolvedGroups[opt.ExclusiveGroup] = true
		}
	}

	var missing []string
	reported := make(map[string]bool)
	for _, opt := range c.schema.options {
		if !opt.Required || c.items[opt.Key()].currentValue != nil {
			continue
		}
		if opt.ExclusiveGroup != "" {
			if resolvedGroups[opt.ExclusiveGroup] || reported[opt.ExclusiveGroup] {
				continue
			}
			reported[opt.ExclusiveGroup] = true
			var members []string
			for _, other := range c.schema.options {
				if other.ExclusiveGroup == opt.ExclusiveGroup {
					members = append(members, other.DisplayName())
				}
			}
			missing = append(missing, "one of "+strings.Join(members, ", "))
			continue
		}
		missing = append(missing, opt.DisplayName())
	}

	if len(missing) > 0 {
		return &RequiredError{Missing: missing}
	}
	return nil
}

// Debug returns a formatted string showing all configuration values and their sources
func (c *Config) Debug() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	b.WriteString("Current values:\n")

	for _, key := range c.schema.keys {
		item := c.items[key]
		b.WriteString(fmt.Sprintf("  %s:\n", key))
		b.WriteString(fmt.Sprintf("    Current: %v (from %s)\n", item.currentValue, item.source))
		b.WriteString(fmt.Sprintf("    Default: %v\n", item.defaultValue))

		for _, source := range []Source{SourceINI, SourceSecret, SourceEnv, SourceCLI, SourceSet} {
			if value, ok := item.values[source]; ok {
				b.WriteString(fmt.Sprintf("    %s: %v\n", source, value))
			}
		}
	}

	return b.String()
}

// Clone creates a copy of the configuration sharing the same schema.
// Values themselves are copied shallowly.
func (c *Config) Clone() *Config {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	clone := &Config{
		schema:  c.schema,
		items:   make(map[string]configItem, len(c.items)),
		tagName: c.tagName,
	}

	for key, item := range c.items {
		newItem := configItem{
			defaultValue: item.defaultValue,
			currentValue: item.currentValue,
			source:       item.source,
		}
		if item.values != nil {
			newItem.values = make(map[Source]any, len(item.values))
			for source, value := range item.values {
				newItem.values[source] = value
			}
		}
		clone.items[key] = newItem
	}

	return clone
}
