package extract

import "github.com/ppiankov/groundex/internal/nlp"

// Matcher labels
const (
	LabelTrigger  = "TRIGGER"
	LabelVessel   = "VESSEL"
	LabelLocation = "LOCATION"
	LabelCause    = "CAUSE"
	LabelDamage   = "DAMAGE"
	LabelResponse = "RESPONSE"
)

var shipPrefixes = []string{"MV", "MT", "MS", "SS"}

func lower(w string) TokenSpec         { return TokenSpec{Lower: w} }
func lowerIn(ws ...string) TokenSpec   { return TokenSpec{LowerIn: ws} }
func entIn(labels ...string) TokenSpec { return TokenSpec{EntIn: labels} }

// shipName is a proper noun that is not itself a hull prefix
var shipName = TokenSpec{POS: nlp.PosPropn, NotLowerIn: []string{"mv", "mt", "ms", "ss"}}

// DefaultMatcher returns the grounding accident token rules
func DefaultMatcher() *Matcher {
	m := NewMatcher()

	m.Add(LabelTrigger,
		Pattern{lower("grounded")},
		Pattern{lower("grounding")},
		Pattern{lower("ran"), lower("aground")},
		Pattern{lower("struck")},
		Pattern{lower("hit")},
		Pattern{lower("collided")},
		Pattern{lower("beached")},
		Pattern{lower("stranded")},
		Pattern{lower("stuck")},
		Pattern{lower("vessel"), lowerIn("grounded", "struck", "hit")},
		Pattern{lower("ship"), lowerIn("grounded", "struck", "hit")},
	)

	m.Add(LabelVessel,
		Pattern{{TextIn: shipPrefixes}, shipName},
		Pattern{{TextIn: shipPrefixes}, shipName, shipName},
		Pattern{lowerIn("cargo", "container", "bulk", "cruise"), lower("ship"), shipName},
		Pattern{lowerIn("cargo", "container", "bulk", "cruise"), lower("ship"), shipName, shipName},
		Pattern{lower("ferry"), shipName},
		Pattern{lower("ferry"), shipName, shipName},
		Pattern{lower("tanker"), shipName},
		Pattern{lower("tanker"), shipName, shipName},
	)

	m.Add(LabelLocation,
		Pattern{lowerIn("reef", "rock", "shoal", "sandbar", "beach", "coast")},
		Pattern{lowerIn("harbor", "port", "channel", "strait", "bay")},
		Pattern{lower("near"), entIn(nlp.LabelGPE, nlp.LabelLoc)},
		Pattern{lower("in"), entIn(nlp.LabelGPE, nlp.LabelLoc)},
		Pattern{lower("off"), entIn(nlp.LabelGPE, nlp.LabelLoc)},
	)

	m.Add(LabelCause,
		Pattern{lowerIn("weather", "storm", "fog", "wind", "wave")},
		Pattern{lower("strong"), lowerIn("wind", "current", "wave")},
		Pattern{lower("poor"), lower("visibility")},
		Pattern{lowerIn("navigation", "mechanical", "engine", "steering"), lowerIn("error", "failure")},
		Pattern{lower("human"), lower("error")},
	)

	m.Add(LabelDamage,
		Pattern{lowerIn("damage", "breach", "hole", "crack", "leak")},
		Pattern{lower("oil"), lower("spill")},
		Pattern{lower("hull"), lower("damage")},
		Pattern{lowerIn("minor", "major", "severe"), lower("damage")},
	)

	m.Add(LabelResponse,
		Pattern{lowerIn("rescue", "salvage", "tow", "refloat", "evacuate")},
		Pattern{lower("coast"), lower("guard")},
		Pattern{lower("emergency"), lower("response")},
		Pattern{lowerIn("dispatched", "deployed", "sent"), lowerIn("team", "crews", "vessels")},
	)

	return m
}
