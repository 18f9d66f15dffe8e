package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/groundex/internal/lexicon"
	"github.com/ppiankov/groundex/internal/model"
)

// Scorer calculates the completeness index of an event and generates signals
type Scorer struct {
	lex *lexicon.Lexicon
}

// NewScorer creates a new scorer. A nil lexicon uses the default one.
func NewScorer(lex *lexicon.Lexicon) *Scorer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Scorer{lex: lex}
}

// roleWeight describes how much a filled role contributes to the index
type roleWeight struct {
	signal   model.SignalType
	roles    []string
	points   int
	severity model.SignalSeverity // Severity when the role is missing
	label    string
}

var roleWeights = []roleWeight{
	{model.SignalVessel, []string{model.RoleVessel}, 20, model.SeverityCritical, "vessel"},
	{model.SignalLocation, []string{model.RoleLocation}, 15, model.SeverityWarning, "location"},
	{model.SignalCause, []string{model.RoleCause}, 15, model.SeverityWarning, "cause"},
	{model.SignalTime, []string{model.RoleTime}, 10, model.SeverityInfo, "time"},
	{model.SignalConsequence, []string{model.RoleDamage, model.RoleResponse}, 10, model.SeverityInfo, "damage or response"},
}

// Calculate scores how completely an event describes a grounding accident
func (s *Scorer) Calculate(event *model.Event) model.Score {
	if event == nil {
		return model.Score{Index: 0, Confidence: "low", Signals: []model.Signal{}}
	}

	var signals []model.Signal

	// 1. Trigger (0-30 points)
	total, triggerSignal := s.calculateTrigger(event)
	signals = append(signals, triggerSignal)

	// 2. Roles (0-70 points)
	for _, w := range roleWeights {
		points, signal := s.calculateRole(event.Arguments, w)
		total += points
		signals = append(signals, signal)
	}

	// 3. Coverage of every role the extractor reported (informational)
	signals = append(signals, s.calculateCoverage(event.Arguments))

	// 4. Triggers voting for several event types
	if signal, ok := s.detectAmbiguousType(event); ok {
		signals = append(signals, signal)
	}

	return model.Score{
		Index:      total,
		Confidence: s.determineConfidence(total, event.EventType),
		Signals:    signals,
	}
}

// calculateTrigger scores trigger presence (0-30 points)
func (s *Scorer) calculateTrigger(event *model.Event) (int, model.Signal) {
	count := len(event.TriggerWords)
	if count == 0 {
		return 0, model.Signal{
			Type:        model.SignalTrigger,
			Severity:    model.SeverityCritical,
			Description: "No trigger words found",
			Data: map[string]interface{}{
				"triggers": 0,
				"score":    0,
				"formula":  "30 if triggers > 0 else 0",
			},
		}
	}

	return 30, model.Signal{
		Type:        model.SignalTrigger,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Trigger words: %s", strings.Join(event.TriggerWords, ", ")),
		Data: map[string]interface{}{
			"triggers":   count,
			"event_type": string(event.EventType),
			"score":      30,
			"formula":    "30 if triggers > 0 else 0",
		},
	}
}

// calculateRole scores one weighted role group
func (s *Scorer) calculateRole(args model.Arguments, w roleWeight) (int, model.Signal) {
	var values []string
	for _, role := range w.roles {
		values = append(values, args[role]...)
	}

	formula := fmt.Sprintf("%d if %s found else 0", w.points, w.label)
	if len(values) == 0 {
		return 0, model.Signal{
			Type:        w.signal,
			Severity:    w.severity,
			Description: fmt.Sprintf("No %s identified", w.label),
			Data: map[string]interface{}{
				"values":  0,
				"score":   0,
				"formula": formula,
			},
		}
	}

	return w.points, model.Signal{
		Type:        w.signal,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("%s: %s", capitalize(w.label), strings.Join(values, "; ")),
		Data: map[string]interface{}{
			"values":  len(values),
			"score":   w.points,
			"formula": formula,
		},
	}
}

// calculateCoverage reports the share of reported roles that have values
func (s *Scorer) calculateCoverage(args model.Arguments) model.Signal {
	filled := 0
	for _, values := range args {
		if len(values) > 0 {
			filled++
		}
	}

	ratio := 0.0
	if len(args) > 0 {
		ratio = float64(filled) / float64(len(args))
	}

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalArgumentCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Roles filled: %d/%d (%.0f%%)", filled, len(args), ratio*100),
		Data: map[string]interface{}{
			"filled":  filled,
			"roles":   len(args),
			"ratio":   ratio,
			"formula": "filled_roles / reported_roles",
		},
	}
}

// detectAmbiguousType flags triggers that belong to more than one event type
func (s *Scorer) detectAmbiguousType(event *model.Event) (model.Signal, bool) {
	var types []string
	for _, et := range s.lex.EventTypes {
		for _, word := range event.TriggerWords {
			if containsFold(et.Keywords, word) {
				types = append(types, et.Name)
				break
			}
		}
	}

	if len(types) < 2 {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalAmbiguousType,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("Triggers suggest several event types: %s", strings.Join(types, ", ")),
		Data: map[string]interface{}{
			"types":    types,
			"selected": string(event.EventType),
		},
	}, true
}

// determineConfidence maps the index to a confidence level
func (s *Scorer) determineConfidence(score int, eventType model.EventType) string {
	if eventType == model.EventUnknown {
		return "low"
	}

	if score >= 70 {
		return "high"
	} else if score >= 40 {
		return "medium"
	} else {
		return "low"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
