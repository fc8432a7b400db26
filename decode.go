// FILE: lixenwraith/config/decode.go
package config

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Scan decodes the resolved configuration under basePath into target, a
// non-nil pointer to a struct or map. Dotted keys nest ("server.port" is
// field Port of section server). Fields map through the "toml" tag.
func (c *Config) Scan(basePath string, target any) error {
	return c.unmarshal(basePath, "", target)
}

// ScanSource is like Scan but only decodes the values one source supplied
func (c *Config) ScanSource(basePath string, source Source, target any) error {
	return c.unmarshal(basePath, source, target)
}

// unmarshal is the single authoritative function for decoding configuration
// into target structures. All public decoding methods delegate to this.
func (c *Config) unmarshal(basePath string, source Source, target any) error {
	// Validate target
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("unmarshal target must be non-nil pointer, got %T", target)
	}

	c.mutex.RLock()
	nestedMap := make(map[string]any)
	for _, key := range c.schema.keys {
		item := c.items[key]
		if source == "" {
			setNestedValue(nestedMap, key, item.currentValue)
			continue
		}
		if val, exists := item.values[source]; exists {
			setNestedValue(nestedMap, key, val)
		}
	}
	c.mutex.RUnlock()

	// Navigate to basePath section
	sectionData := navigateToPath(nestedMap, basePath)

	// Ensure we have a map to decode
	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		if sectionData == nil {
			sectionMap = make(map[string]any) // Empty section
		} else {
			return fmt.Errorf("path %q refers to non-map value (type %T)", basePath, sectionData)
		}
	}

	// Create decoder with comprehensive hooks
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          c.tagName,
		WeaklyTypedInput: true,
		DecodeHook:       c.getDecodeHook(),
		ZeroFields:       true,
		Metadata:         nil,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}

	return nil
}

// GetTyped resolves key and decodes its value into T with the Scan hooks
func GetTyped[T any](c *Config, key string) (T, error) {
	var result T
	val, exists := c.Get(key)
	if !exists {
		return result, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &result,
		TagName:          c.tagName,
		WeaklyTypedInput: true,
		DecodeHook:       c.getDecodeHook(),
	})
	if err != nil {
		return result, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(val); err != nil {
		return result, fmt.Errorf("decode failed for %q into %T: %w", key, result, err)
	}
	return result, nil
}

// ScanTyped scans the section at basePath into a new T
func ScanTyped[T any](c *Config, basePath string) (*T, error) {
	var target T
	if err := c.Scan(basePath, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// getDecodeHook returns the composite decode hook for all type conversions
func (c *Config) getDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		stringToTextTypeHookFunc(),

		// Standard hooks
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),

		// Custom application hooks
		c.customDecodeHook(),
	)
}

// textParsers convert a string into the value types Scan knows beyond the
// mapstructure built-ins. Pointer targets get the pointer, value targets a copy.
var textParsers = map[reflect.Type]func(string) (any, error){
	reflect.TypeOf(net.IP{}): func(s string) (any, error) {
		ip := net.ParseIP(s)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", s)
		}
		return ip, nil
	},
	reflect.TypeOf(net.IPNet{}): func(s string) (any, error) {
		_, ipnet, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		return ipnet, nil
	},
	reflect.TypeOf(url.URL{}): func(s string) (any, error) {
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		return u, nil
	},
}

// stringToTextTypeHookFunc decodes strings into net.IP, net.IPNet and url.URL
func stringToTextTypeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		target := t
		if t.Kind() == reflect.Ptr {
			target = t.Elem()
		}
		parse, ok := textParsers[target]
		if !ok {
			return data, nil
		}

		v, err := parse(data.(string))
		if err != nil {
			return nil, err
		}
		rv := reflect.ValueOf(v)
		switch {
		case rv.Type() == t:
			return v, nil
		case rv.Kind() == reflect.Ptr && rv.Type().Elem() == t:
			return rv.Elem().Interface(), nil
		case t.Kind() == reflect.Ptr && rv.Type() == target:
			ptr := reflect.New(target)
			ptr.Elem().Set(rv)
			return ptr.Interface(), nil
		}
		return v, nil
	}
}

// customDecodeHook flattens a resolved multi-value option into a single
// comma-joined string when the target field is a string
func (c *Config) customDecodeHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t.Kind() != reflect.String || f.Kind() != reflect.Slice {
			return data, nil
		}
		items, ok := data.([]any)
		if !ok {
			return data, nil
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ","), nil
	}
}

// navigateToPath traverses nested map to reach the specified path
func navigateToPath(nested map[string]any, path string) any {
	if path == "" {
		return nested
	}

	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	segments := strings.Split(path, ".")
	current := any(nested)

	for _, segment := range segments {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}

	return current
}
