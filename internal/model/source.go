package model

import (
	"fmt"
	"strings"
)

// AuthorityTier represents how authoritative a report source is
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not classified (typed text, files)
	TierPrimary   AuthorityTier = 1 // Official accident investigation bodies, government
	TierSecondary AuthorityTier = 2 // Encyclopedias, maritime press, major news
	TierTertiary  AuthorityTier = 3 // Blogs, forums, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier by name in JSON and YAML
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name
func (t *AuthorityTier) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "primary":
		*t = TierPrimary
	case "secondary":
		*t = TierSecondary
	case "tertiary":
		*t = TierTertiary
	case "unknown", "":
		*t = TierUnknown
	default:
		return fmt.Errorf("unknown authority tier %q", text)
	}
	return nil
}

// LinkStatus is the result of checking that a report link is reachable
type LinkStatus struct {
	URL          string        `json:"url" yaml:"url"`
	StatusCode   int           `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	IsAccessible bool          `json:"is_accessible" yaml:"is_accessible"`
	IsDead       bool          `json:"is_dead" yaml:"is_dead"` // 404, 410 or unreachable
	RedirectURL  string        `json:"redirect_url,omitempty" yaml:"redirect_url,omitempty"`
	Authority    AuthorityTier `json:"authority" yaml:"authority"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
}
