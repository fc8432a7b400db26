// File: lixenwraith/config/type.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// lookupValue fetches a declared, non-nil value for the typed accessors
func (c *Config) lookupValue(key, typeName string) (any, error) {
	val, found := c.Get(key)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if val == nil {
		return nil, fmt.Errorf("value for key %s is nil, cannot convert to %s", key, typeName)
	}
	return val, nil
}

// GetString retrieves a string value. A nil value reads as the empty string.
// Attempts conversion from common types if the stored value isn't already a string.
func (c *Config) GetString(key string) (string, error) {
	val, found := c.Get(key)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if val == nil {
		return "", nil
	}
	s, err := cast.ToStringE(val)
	if err != nil {
		return "", fmt.Errorf("cannot convert type %T to string for key %s: %w", val, key, err)
	}
	return s, nil
}

// GetInt retrieves an int value
func (c *Config) GetInt(key string) (int, error) {
	val, err := c.lookupValue(key, "int")
	if err != nil {
		return 0, err
	}
	i, err := cast.ToIntE(val)
	if err != nil {
		return 0, fmt.Errorf("cannot convert type %T to int for key %s: %w", val, key, err)
	}
	return i, nil
}

// GetInt64 retrieves an int64 value.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (c *Config) GetInt64(key string) (int64, error) {
	val, err := c.lookupValue(key, "int64")
	if err != nil {
		return 0, err
	}
	i, err := cast.ToInt64E(val)
	if err != nil {
		return 0, fmt.Errorf("cannot convert type %T to int64 for key %s: %w", val, key, err)
	}
	return i, nil
}

// GetBool retrieves a boolean value.
// Numeric values read as true when non-zero.
func (c *Config) GetBool(key string) (bool, error) {
	val, err := c.lookupValue(key, "bool")
	if err != nil {
		return false, err
	}
	b, err := cast.ToBoolE(val)
	if err != nil {
		return false, fmt.Errorf("cannot convert type %T to bool for key %s: %w", val, key, err)
	}
	return b, nil
}

// GetFloat64 retrieves a float64 value
func (c *Config) GetFloat64(key string) (float64, error) {
	val, err := c.lookupValue(key, "float64")
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(val)
	if err != nil {
		return 0, fmt.Errorf("cannot convert type %T to float64 for key %s: %w", val, key, err)
	}
	return f, nil
}

// GetDuration retrieves a duration; strings parse as Go durations and bare
// numbers are nanoseconds.
func (c *Config) GetDuration(key string) (time.Duration, error) {
	val, err := c.lookupValue(key, "duration")
	if err != nil {
		return 0, err
	}
	d, err := cast.ToDurationE(val)
	if err != nil {
		return 0, fmt.Errorf("cannot convert type %T to duration for key %s: %w", val, key, err)
	}
	return d, nil
}

// GetStringSlice retrieves a list value. A single string uses the comma
// split convention of multi-value options.
func (c *Config) GetStringSlice(key string) ([]string, error) {
	val, found := c.Get(key)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	switch v := val.(type) {
	case nil:
		return []string{}, nil
	case string:
		return splitList(v), nil
	}
	s, err := cast.ToStringSliceE(val)
	if err != nil {
		return nil, fmt.Errorf("cannot convert type %T to []string for key %s: %w", val, key, err)
	}
	return s, nil
}
