// FILE: lixenwraith/config/config.go
package config

import (
	"fmt"
	"strings"
	"sync"
)

// Raw marks a value that has not been coerced yet. Overlay and Set coerce Raw
// (and []Raw) values with the key's option type; anything else is stored as is.
type Raw string

// Partial maps Config keys to the values one source supplied.
// Keys a source did not supply are absent, never defaulted.
type Partial map[string]any

// configItem holds the default, the current value and where it came from
type configItem struct {
	defaultValue any
	currentValue any
	source       Source         // last writer
	values       map[Source]any // every value written, by source
}

// Config is the resolved configuration: one value per declared key, in
// declaration order, plus the provenance of each value.
type Config struct {
	schema  *Schema
	items   map[string]configItem
	tagName string
	mutex   sync.RWMutex
}

// New creates a Config for the schema with every key set to its coerced default.
func New(schema *Schema) (*Config, error) {
	if schema == nil {
		schema = &Schema{byName: map[string]*Option{}, byDest: map[string][]*Option{}}
	}

	c := &Config{
		schema:  schema,
		items:   make(map[string]configItem, len(schema.keys)),
		tagName: "toml",
	}

	for _, key := range schema.keys {
		def, err := defaultFor(schema.primary(key))
		if err != nil {
			return nil, err
		}
		c.items[key] = configItem{
			defaultValue: def,
			currentValue: def,
			source:       SourceDefault,
		}
	}

	return c, nil
}

// defaultFor coerces string defaults the same way a source value would be
func defaultFor(opt *Option) (any, error) {
	switch v := opt.Default.(type) {
	case nil:
		if opt.Switch {
			return false, nil
		}
		return nil, nil
	case string:
		if opt.Type.Coerce == nil && opt.Nargs != NargsAny {
			return v, nil
		}
		return opt.coerceFromText(v, SourceDefault)
	case Raw:
		return opt.coerceFromText(string(v), SourceDefault)
	default:
		return v, nil
	}
}

// Schema returns the schema the Config was created from
func (c *Config) Schema() *Schema {
	return c.schema
}

// Get returns the current value of key.
// The second return value reports whether the key is declared.
func (c *Config) Get(key string) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	return item.currentValue, true
}

// Default returns the coerced default of key
func (c *Config) Default(key string) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	return item.defaultValue, true
}

// Source returns the source that last set key, SourceDefault if none did
func (c *Config) Source(key string) (Source, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, ok := c.items[key]
	if !ok {
		return "", false
	}
	return item.source, true
}

// Sources returns every value written to key, by source
func (c *Config) Sources(key string) map[Source]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[Source]any)
	if item, ok := c.items[key]; ok {
		for src, v := range item.values {
			result[src] = v
		}
	}
	return result
}

// Provenance returns the last writer of every key that a source has set
func (c *Config) Provenance() map[string]Source {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[string]Source)
	for key, item := range c.items {
		if item.source != SourceDefault {
			result[key] = item.source
		}
	}
	return result
}

// Set writes a single key, with the same semantics as a one-key Overlay
// labelled SourceSet.
func (c *Config) Set(key string, value any) error {
	return c.Overlay(Partial{key: value}, SourceSet)
}

// Overlay writes every key present in partial, recording source as its
// provenance. Keys absent from partial are left untouched. Nothing is written
// if any key is undeclared or any Raw value fails to coerce.
func (c *Config) Overlay(partial Partial, source Source) error {
	if len(partial) == 0 {
		return nil
	}

	resolved := make(map[string]any, len(partial))
	for key, value := range partial {
		opt := c.schema.primary(key)
		if opt == nil {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		v, err := normalize(opt, value, source)
		if err != nil {
			return err
		}
		resolved[key] = v
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key, value := range resolved {
		item := c.items[key]
		if item.values == nil {
			item.values = make(map[Source]any)
		}
		item.values[source] = value
		item.currentValue = value
		item.source = source
		c.items[key] = item
	}

	return nil
}

// normalize coerces Raw input once; already-typed values pass through
func normalize(opt *Option, value any, source Source) (any, error) {
	switch v := value.(type) {
	case Raw:
		return opt.coerceFromText(string(v), source)
	case []Raw:
		raws := make([]string, len(v))
		for i, r := range v {
			raws[i] = string(r)
		}
		return opt.coerceList(raws, source)
	default:
		return value, nil
	}
}

// Keys returns the declared keys in declaration order
func (c *Config) Keys() []string {
	return c.schema.Keys()
}

// Len returns the number of declared keys
func (c *Config) Len() int {
	return len(c.schema.keys)
}

// AsMap returns a copy of the current values
func (c *Config) AsMap() map[string]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[string]any, len(c.items))
	for key, item := range c.items {
		result[key] = item.currentValue
	}
	return result
}

// String renders every key in declaration order: <Config key=value, ...>
func (c *Config) String() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	pairs := make([]string, 0, len(c.schema.keys))
	for _, key := range c.schema.keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, c.items[key].currentValue))
	}
	return "<Config " + strings.Join(pairs, ", ") + ">"
}
