// FILE: lixenwraith/config/register.go
package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// OptionsFromStruct derives options from a struct whose field values are the
// defaults. The key of each field comes from its `toml` tag (or field name);
// nested structs add a dotted prefix. Further tags bind sources:
//
//	flag:"--port,-p"   command-line flags (a bare word makes it positional)
//	env:"APP_PORT"     environment variable
//	ini:"server"       INI section, holding the field's own key
//	group:"key"        mutually exclusive group
//	help:"..."         usage text
//	required:"true"    must be resolved by some source
//	secret:"-"         excluded from secret lookup
//
// Types are inferred from the field kind. A bool field with flags becomes a
// switch; a slice field becomes a multi-value ('*') option.
func OptionsFromStruct(prefix string, structWithDefaults any) ([]Option, error) {
	v := reflect.ValueOf(structWithDefaults)

	// Handle pointer or direct struct value
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("OptionsFromStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("OptionsFromStruct requires a struct or struct pointer, got %T", structWithDefaults)
	}

	var options []Option
	var errors []string

	collectFields(v, prefix, "", &options, &errors)

	if len(errors) > 0 {
		return nil, fmt.Errorf("failed to derive %d option(s): %s", len(errors), strings.Join(errors, "; "))
	}

	return options, nil
}

// collectFields handles the recursive field walk
func collectFields(v reflect.Value, pathPrefix, fieldPath string, options *[]Option, errors *[]string) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		// Get tag value or use field name
		tag := field.Tag.Get("toml")
		if tag == "-" {
			continue // Skip this field
		}

		key := field.Name
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				key = parts[0]
			}
		}

		// Build full path
		currentPath := key
		if pathPrefix != "" {
			if !strings.HasSuffix(pathPrefix, ".") {
				pathPrefix += "."
			}
			currentPath = pathPrefix + key
		}

		// Handle nested structs recursively
		fieldType := fieldValue.Type()
		isStruct := fieldValue.Kind() == reflect.Struct
		isPtrToStruct := fieldValue.Kind() == reflect.Ptr && fieldType.Elem().Kind() == reflect.Struct

		if isStruct || isPtrToStruct {
			nestedValue := fieldValue
			if isPtrToStruct {
				if fieldValue.IsNil() {
					continue
				}
				nestedValue = fieldValue.Elem()
			}
			collectFields(nestedValue, currentPath+".", fieldPath+field.Name+".", options, errors)
			continue
		}

		opt, err := optionForField(currentPath, field, fieldValue)
		if err != nil {
			*errors = append(*errors, fmt.Sprintf("field %s%s (key %s): %v", fieldPath, field.Name, currentPath, err))
			continue
		}
		*options = append(*options, opt)
	}
}

// iniKeyFor uses the leaf key inside a tagged section: [server] port = 8080
func iniKeyFor(path, section string) string {
	if section == "" {
		return ""
	}
	return path[strings.LastIndex(path, ".")+1:]
}

var durationType = reflect.TypeOf(time.Duration(0))

// optionForField builds one option from a leaf field
func optionForField(path string, field reflect.StructField, value reflect.Value) (Option, error) {
	opt := Option{
		Name:           path,
		Default:        value.Interface(),
		Env:            field.Tag.Get("env"),
		INISection:     field.Tag.Get("ini"),
		INIKey:         iniKeyFor(path, field.Tag.Get("ini")),
		ExclusiveGroup: field.Tag.Get("group"),
		Help:           field.Tag.Get("help"),
		Required:       field.Tag.Get("required") == "true",
		NoSecret:       field.Tag.Get("secret") == "-",
	}
	if flags := field.Tag.Get("flag"); flags != "" {
		for _, f := range strings.Split(flags, ",") {
			opt.Flags = append(opt.Flags, strings.TrimSpace(f))
		}
	}

	switch {
	case value.Type() == durationType:
		opt.Type = Duration
	case value.Kind() == reflect.Bool:
		opt.Type = Bool
		opt.Switch = len(opt.Flags) > 0 && !opt.Positional()
	case value.Kind() >= reflect.Int && value.Kind() <= reflect.Int64:
		opt.Type = Int64
		if value.Kind() == reflect.Int {
			opt.Type = Int
		}
	case value.Kind() >= reflect.Uint && value.Kind() <= reflect.Uint64:
		opt.Type = Int64
	case value.Kind() == reflect.Float32 || value.Kind() == reflect.Float64:
		opt.Type = Float64
	case value.Kind() == reflect.String:
		opt.Type = String
	case value.Kind() == reflect.Slice && value.Type().Elem().Kind() == reflect.String:
		opt.Type = String
		opt.Nargs = NargsAny
		items := make([]any, value.Len())
		for i := range items {
			items[i] = value.Index(i).String()
		}
		opt.Default = items
	case value.Kind() == reflect.Map && value.Type().Key().Kind() == reflect.String && value.Type().Elem().Kind() == reflect.String:
		opt.Type = CommaSeparatedPairs
	default:
		return Option{}, fmt.Errorf("unsupported field type %s", value.Type())
	}

	// A zero default would always satisfy the requirement
	if opt.Required && value.IsZero() {
		opt.Default = nil
	}
	return opt, nil
}
