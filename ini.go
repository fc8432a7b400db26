// FILE: lixenwraith/config/ini.go
package config

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

// DefaultINISection supplies options declared without an INISection
const DefaultINISection = "defaults"

// INIParser reads options from an ordered list of candidate INI files.
//
// Paths are given lowest precedence first: a key in a later file overrides the
// same key in an earlier one. Paths containing glob meta characters expand in
// place, in lexical order. Missing files are skipped; a file with invalid
// syntax fails the whole parse with a ConfigFileError naming it.
//
// An option is looked up by its INI key (INIKey, else Name) in its
// INISection, then in the default section, then among keys placed before any
// section header. Keys are case-insensitive. Values are taken verbatim after
// the '=': a '#' or ';' inside a value is part of it, only whole-line
// comments are skipped.
type INIParser struct {
	Schema         *Schema
	Paths          []string
	DefaultSection string
	Fs             afero.Fs
	Logger         *zap.Logger
}

// NewINIParser creates a parser over the real filesystem
func NewINIParser(schema *Schema, paths ...string) *INIParser {
	return &INIParser{
		Schema:         schema,
		Paths:          paths,
		DefaultSection: DefaultINISection,
		Fs:             afero.NewOsFs(),
		Logger:         zap.NewNop(),
	}
}

// Source implements SourceParser
func (p *INIParser) Source() Source { return SourceINI }

// iniData is the merged view: section -> key -> value
type iniData map[string]map[string]string

// Parse merges the candidate files and returns the options found in them
func (p *INIParser) Parse(ctx context.Context) (Partial, error) {
	logger := p.logger()

	paths, err := p.Candidates()
	if err != nil {
		return nil, err
	}

	merged := make(iniData)
	loaded := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := afero.ReadFile(p.fs(), path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Debug("INI file not found, skipping", zap.String("path", path))
				continue
			}
			return nil, &ConfigFileError{Path: path, Err: err}
		}

		file, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true, IgnoreInlineComment: true}, data)
		if err != nil {
			return nil, &ConfigFileError{Path: path, Err: err}
		}
		merged.merge(file)
		loaded++
		logger.Debug("INI file loaded", zap.String("path", path))
	}

	result := make(Partial)
	if loaded == 0 {
		return result, nil
	}

	defaultSection := p.DefaultSection
	if defaultSection == "" {
		defaultSection = DefaultINISection
	}

	for _, opt := range p.Schema.options {
		key := strings.ToLower(opt.iniKey())

		sections := []string{defaultSection, ini.DefaultSection}
		if opt.INISection != "" {
			sections = append([]string{opt.INISection}, sections...)
		}

		raw, section, found := merged.lookup(key, sections)
		if !found {
			if opt.INISection != "" {
				logger.Debug("Option not found in its INI section",
					zap.String("option", opt.Name), zap.String("section", opt.INISection))
			}
			continue
		}
		if opt.INISection != "" && section != opt.INISection {
			logger.Debug("Option read from fallback INI section",
				zap.String("option", opt.Name), zap.String("section", section))
		}

		v, err := opt.coerceFromText(raw, SourceINI)
		if err != nil {
			return nil, err
		}
		result[opt.Key()] = v
	}

	return result, nil
}

// Candidates returns the configured paths with glob patterns expanded
func (p *INIParser) Candidates() ([]string, error) {
	var result []string
	for _, path := range p.Paths {
		if !strings.ContainsAny(path, "*?[") {
			result = append(result, path)
			continue
		}
		matches, err := afero.Glob(p.fs(), path)
		if err != nil {
			return nil, &ConfigFileError{Path: path, Err: err}
		}
		sort.Strings(matches)
		result = append(result, matches...)
	}
	return result, nil
}

func (d iniData) merge(file *ini.File) {
	for _, section := range file.Sections() {
		keys, ok := d[section.Name()]
		if !ok {
			keys = make(map[string]string)
			d[section.Name()] = keys
		}
		for _, k := range section.Keys() {
			keys[k.Name()] = k.String()
		}
	}
}

func (d iniData) lookup(key string, sections []string) (value, section string, found bool) {
	for _, name := range sections {
		if v, ok := d[name][key]; ok {
			return v, name, true
		}
	}
	return "", "", false
}

func (p *INIParser) fs() afero.Fs {
	if p.Fs == nil {
		return afero.NewOsFs()
	}
	return p.Fs
}

func (p *INIParser) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
