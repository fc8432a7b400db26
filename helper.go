// File: lixenwraith/config/helper.go
package config

import "strings"

// setNestedValue sets a value in a nested map using a dot-notation path.
// It creates intermediate maps if they don't exist.
// If a segment exists but is not a map, it will be overwritten by a new map.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		if next, ok := current[segment].(map[string]any); ok {
			current = next
			continue
		}
		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}

	current[segments[len(segments)-1]] = value
}

// isValidPath checks every dot-separated segment of a key
func isValidPath(path string) bool {
	if path == "" {
		return false
	}
	for _, segment := range strings.Split(path, ".") {
		if !isValidKeySegment(segment) {
			return false
		}
	}
	return true
}

// isValidKeySegment checks if a single path segment is a valid bare key:
// ASCII letters, digits, underscores and dashes.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}

// isValidFlag checks the dashed or positional form of a command-line binding
func isValidFlag(flag string) bool {
	switch {
	case strings.HasPrefix(flag, "---"):
		return false
	case strings.HasPrefix(flag, "--"):
		return isValidKeySegment(flag[2:])
	case strings.HasPrefix(flag, "-"):
		return len(flag) == 2 && isValidKeySegment(flag[1:])
	default:
		return isValidKeySegment(flag)
	}
}
