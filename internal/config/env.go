package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of all environment variables read by EnvLoader.
const EnvPrefix = "QUILL_"

// EnvLoader overrides settings from environment variables. Recognized
// variables are QUILL_MAX_HISTORY_ENTRIES, QUILL_LINK_SCHEMES and
// QUILL_MENTION_HOSTS; list values are comma separated.
type EnvLoader struct {
	prefix string
}

// NewEnvLoader creates an environment loader with the given prefix.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix}
}

// Apply overwrites fields of s for each recognized variable that is set.
func (l *EnvLoader) Apply(s *Settings) error {
	if v, ok := os.LookupEnv(l.prefix + "MAX_HISTORY_ENTRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %sMAX_HISTORY_ENTRIES: %w", l.prefix, err)
		}
		s.MaxHistoryEntries = n
	}
	if v, ok := os.LookupEnv(l.prefix + "LINK_SCHEMES"); ok {
		s.LinkSchemes = splitList(v)
	}
	if v, ok := os.LookupEnv(l.prefix + "MENTION_HOSTS"); ok {
		s.MentionHosts = splitList(v)
	}
	return nil
}

// splitList splits a comma separated value, trimming whitespace and
// dropping empty entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
