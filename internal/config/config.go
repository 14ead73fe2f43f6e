package config

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrValidationFailed indicates a setting value is out of range or
// malformed.
var ErrValidationFailed = errors.New("validation failed")

// DefaultMaxHistoryEntries bounds the undo history when the file sets
// nothing else.
const DefaultMaxHistoryEntries = 100

// Settings is the resolved quill configuration.
type Settings struct {
	// MaxHistoryEntries bounds the undo history of the tree backend.
	MaxHistoryEntries int

	// LinkSchemes lists the url schemes the link command accepts.
	LinkSchemes []string

	// MentionHosts lists the permalink hosts recognized as mentions.
	MentionHosts []string

	// Patterns declares custom suggestion triggers.
	Patterns []PatternRule
}

// PatternRule declares one custom suggestion trigger: a regular
// expression or a Lua matcher, never both.
type PatternRule struct {
	Name      string `toml:"name" yaml:"name"`
	Regex     string `toml:"regex" yaml:"regex"`
	LuaSource string `toml:"luaSource" yaml:"luaSource"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		MaxHistoryEntries: DefaultMaxHistoryEntries,
		LinkSchemes:       []string{"https", "http", "mailto", "matrix"},
		MentionHosts:      []string{"matrix.to"},
	}
}

// Validate checks the settings for values the composer cannot run with.
func (s Settings) Validate() error {
	if s.MaxHistoryEntries < 1 {
		return fmt.Errorf("%w: maxHistoryEntries must be positive, got %d", ErrValidationFailed, s.MaxHistoryEntries)
	}
	for _, sc := range s.LinkSchemes {
		if sc == "" {
			return fmt.Errorf("%w: empty link scheme", ErrValidationFailed)
		}
	}
	for _, h := range s.MentionHosts {
		if h == "" {
			return fmt.Errorf("%w: empty mention host", ErrValidationFailed)
		}
	}
	for _, p := range s.Patterns {
		if err := p.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p PatternRule) validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: pattern without a name", ErrValidationFailed)
	}
	if (p.Regex == "") == (p.LuaSource == "") {
		return fmt.Errorf("%w: pattern %q needs exactly one of regex or luaSource", ErrValidationFailed, p.Name)
	}
	if p.Regex != "" {
		if _, err := regexp.Compile(p.Regex); err != nil {
			return fmt.Errorf("%w: pattern %q: %v", ErrValidationFailed, p.Name, err)
		}
	}
	return nil
}

// apply merges a decoded file over the settings; unset keys keep their
// current values.
func (s *Settings) apply(f *File) {
	if f == nil {
		return
	}
	if f.MaxHistoryEntries != nil {
		s.MaxHistoryEntries = *f.MaxHistoryEntries
	}
	if f.LinkSchemes != nil {
		s.LinkSchemes = f.LinkSchemes
	}
	if f.MentionHosts != nil {
		s.MentionHosts = f.MentionHosts
	}
	if f.Patterns != nil {
		s.Patterns = f.Patterns
	}
}
