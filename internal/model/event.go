package model

import (
	"sort"
	"strings"
)

// EventType classifies an extracted accident event
type EventType string

const (
	EventUnknown            EventType = "unknown"
	EventGrounding          EventType = "grounding"
	EventCollision          EventType = "collision"
	EventStranding          EventType = "stranding"
	EventAccident           EventType = "accident"
	EventCollisionGrounding EventType = "collision_grounding" // Grounding after striking an object
	EventMarineAccident     EventType = "marine_accident"     // Triggered, but no specific class
)

// Argument roles
const (
	RoleVessel       = "vessel"
	RoleLocation     = "location"
	RoleCause        = "cause"
	RoleTime         = "time"
	RoleDamage       = "damage"
	RoleResponse     = "response"
	RolePerson       = "person"
	RoleOrganization = "organization"
)

// roleOrder is the display order for known roles
var roleOrder = []string{
	RoleVessel, RoleLocation, RoleCause, RoleTime,
	RoleDamage, RoleResponse, RolePerson, RoleOrganization,
}

// Trigger is a trigger word occurrence with byte offsets into the source text
type Trigger struct {
	Word  string `json:"word" yaml:"word"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// Event is a structured accident event extracted from a report
type Event struct {
	Text         string              `json:"text" yaml:"text"`
	Extractor    string              `json:"extractor" yaml:"extractor"`
	EventType    EventType           `json:"event_type" yaml:"event_type"`
	TriggerWords []string            `json:"trigger_words" yaml:"trigger_words"`
	Triggers     []Trigger           `json:"trigger_positions,omitempty" yaml:"trigger_positions,omitempty"`
	Arguments    Arguments           `json:"arguments" yaml:"arguments"`
	Features     *LinguisticFeatures `json:"linguistic_features,omitempty" yaml:"linguistic_features,omitempty"`
}

// Arguments maps a role name to its extracted values
type Arguments map[string][]string

// NewArguments creates an argument set with empty value lists for the given roles
func NewArguments(roles ...string) Arguments {
	args := make(Arguments, len(roles))
	for _, role := range roles {
		args[role] = []string{}
	}
	return args
}

// Add appends values to a role, skipping blanks and exact duplicates
func (a Arguments) Add(role string, values ...string) {
	existing := a[role]
	if existing == nil {
		existing = []string{}
	}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || containsString(existing, v) {
			continue
		}
		existing = append(existing, v)
	}
	a[role] = existing
}

// Has reports whether a role has at least one value
func (a Arguments) Has(role string) bool {
	return len(a[role]) > 0
}

// Roles returns role names in display order: known roles first, then the rest alphabetically
func (a Arguments) Roles() []string {
	var roles []string
	seen := make(map[string]bool)
	for _, role := range roleOrder {
		if _, ok := a[role]; ok {
			roles = append(roles, role)
			seen[role] = true
		}
	}

	var rest []string
	for role := range a {
		if !seen[role] {
			rest = append(rest, role)
		}
	}
	sort.Strings(rest)

	return append(roles, rest...)
}

// Count returns the total number of argument values
func (a Arguments) Count() int {
	n := 0
	for _, values := range a {
		n += len(values)
	}
	return n
}

// LinguisticFeatures exposes part of the text analysis behind an extraction
type LinguisticFeatures struct {
	POSTags  []TaggedWord `json:"pos_tags" yaml:"pos_tags"`
	Chunks   []string     `json:"noun_chunks" yaml:"noun_chunks"`
	Entities []EntityRef  `json:"entities" yaml:"entities"`
}

// TaggedWord is a token with its part-of-speech tag
type TaggedWord struct {
	Text string `json:"text" yaml:"text"`
	POS  string `json:"pos" yaml:"pos"`
}

// EntityRef is a recognized named entity
type EntityRef struct {
	Text  string `json:"text" yaml:"text"`
	Label string `json:"label" yaml:"label"`
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
