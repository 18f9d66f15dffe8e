// Package lexicon holds the keyword tables behind keyword-based event extraction.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Lexicon is an ordered set of trigger words, event type keywords and argument role keywords
type Lexicon struct {
	Triggers   []string    `yaml:"triggers"`
	EventTypes []EventType `yaml:"event_types"`
	Roles      []Role      `yaml:"roles"`
}

// EventType maps an event type name to the keywords that vote for it
type EventType struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Role maps an argument role to its keywords
type Role struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Default returns the built-in lexicon
func Default() *Lexicon {
	lex, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("lexicon: invalid built-in lexicon: %v", err))
	}
	return lex
}

// Load reads a lexicon from a YAML file
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	lex, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

// Parse decodes and validates a YAML lexicon
func Parse(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return &lex, nil
}

// Validate checks that the lexicon is usable
func (l *Lexicon) Validate() error {
	if len(l.Triggers) == 0 {
		return fmt.Errorf("no trigger words")
	}
	if err := checkKeywords("trigger", l.Triggers); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, et := range l.EventTypes {
		if et.Name == "" {
			return fmt.Errorf("event type without name")
		}
		if seen["type:"+et.Name] {
			return fmt.Errorf("duplicate event type %q", et.Name)
		}
		seen["type:"+et.Name] = true
		if err := checkKeywords("event type "+et.Name, et.Keywords); err != nil {
			return err
		}
	}

	for _, r := range l.Roles {
		if r.Name == "" {
			return fmt.Errorf("role without name")
		}
		if seen["role:"+r.Name] {
			return fmt.Errorf("duplicate role %q", r.Name)
		}
		seen["role:"+r.Name] = true
		if err := checkKeywords("role "+r.Name, r.Keywords); err != nil {
			return err
		}
	}
	return nil
}

// RoleNames returns role names in lexicon order
func (l *Lexicon) RoleNames() []string {
	names := make([]string, len(l.Roles))
	for i, r := range l.Roles {
		names[i] = r.Name
	}
	return names
}

// IsTrigger reports whether any trigger word occurs inside s (case-insensitive)
func (l *Lexicon) IsTrigger(s string) bool {
	s = strings.ToLower(s)
	for _, t := range l.Triggers {
		if strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func checkKeywords(owner string, keywords []string) error {
	for _, k := range keywords {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%s: empty keyword", owner)
		}
	}
	return nil
}
