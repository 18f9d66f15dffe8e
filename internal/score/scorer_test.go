package score

import (
	"testing"

	"github.com/ppiankov/groundex/internal/model"
)

func completeEvent() *model.Event {
	args := model.NewArguments(model.RoleVessel, model.RoleLocation, model.RoleCause,
		model.RoleTime, model.RoleDamage, model.RoleResponse)
	args.Add(model.RoleVessel, "MV Ever Given")
	args.Add(model.RoleLocation, "Suez Canal")
	args.Add(model.RoleCause, "poor visibility")
	args.Add(model.RoleTime, "March 23, 2021")
	args.Add(model.RoleResponse, "tugboats")

	return &model.Event{
		EventType:    model.EventGrounding,
		TriggerWords: []string{"ran aground"},
		Arguments:    args,
	}
}

func findSignal(signals []model.Signal, typ model.SignalType) (model.Signal, bool) {
	for _, s := range signals {
		if s.Type == typ {
			return s, true
		}
	}
	return model.Signal{}, false
}

func TestScorer_Calculate_Complete(t *testing.T) {
	scorer := NewScorer(nil)

	result := scorer.Calculate(completeEvent())

	if result.Index != 100 {
		t.Errorf("Expected index 100 for a complete event, got %d", result.Index)
	}
	if result.Confidence != "high" {
		t.Errorf("Expected high confidence, got %s", result.Confidence)
	}

	// Trigger, five role groups and coverage
	if len(result.Signals) != 7 {
		t.Errorf("Expected 7 signals, got %d", len(result.Signals))
	}

	coverage, ok := findSignal(result.Signals, model.SignalArgumentCoverage)
	if !ok {
		t.Fatal("Expected argument coverage signal")
	}
	if coverage.Data["filled"] != 5 || coverage.Data["roles"] != 6 {
		t.Errorf("Unexpected coverage data: %v", coverage.Data)
	}
}

func TestScorer_Calculate_Partial(t *testing.T) {
	scorer := NewScorer(nil)

	event := completeEvent()
	event.Arguments[model.RoleCause] = []string{}
	event.Arguments[model.RoleTime] = []string{}

	result := scorer.Calculate(event)

	// 100 - cause (15) - time (10)
	if result.Index != 75 {
		t.Errorf("Expected index 75, got %d", result.Index)
	}

	cause, _ := findSignal(result.Signals, model.SignalCause)
	if cause.Severity != model.SeverityWarning {
		t.Errorf("Expected warning for missing cause, got %s", cause.Severity)
	}
}

func TestScorer_Calculate_NoTriggers(t *testing.T) {
	scorer := NewScorer(nil)

	event := completeEvent()
	event.TriggerWords = nil
	event.EventType = model.EventUnknown

	result := scorer.Calculate(event)

	if result.Index != 70 {
		t.Errorf("Expected index 70 without trigger, got %d", result.Index)
	}
	if result.Confidence != "low" {
		t.Errorf("Expected low confidence for unknown event type, got %s", result.Confidence)
	}

	trigger, _ := findSignal(result.Signals, model.SignalTrigger)
	if trigger.Severity != model.SeverityCritical {
		t.Errorf("Expected critical trigger signal, got %s", trigger.Severity)
	}
}

func TestScorer_Calculate_Empty(t *testing.T) {
	scorer := NewScorer(nil)

	result := scorer.Calculate(&model.Event{EventType: model.EventUnknown})
	if result.Index != 0 {
		t.Errorf("Expected index 0 for empty event, got %d", result.Index)
	}

	result = scorer.Calculate(nil)
	if result.Confidence != "low" {
		t.Errorf("Expected low confidence for nil event, got %s", result.Confidence)
	}
}

func TestScorer_Confidence(t *testing.T) {
	scorer := NewScorer(nil)

	tests := []struct {
		score int
		want  string
	}{
		{0, "low"},
		{39, "low"},
		{40, "medium"},
		{69, "medium"},
		{70, "high"},
		{100, "high"},
	}

	for _, tt := range tests {
		if got := scorer.determineConfidence(tt.score, model.EventGrounding); got != tt.want {
			t.Errorf("determineConfidence(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScorer_AmbiguousType(t *testing.T) {
	scorer := NewScorer(nil)

	event := completeEvent()
	event.TriggerWords = []string{"struck", "grounded"}

	result := scorer.Calculate(event)

	signal, ok := findSignal(result.Signals, model.SignalAmbiguousType)
	if !ok {
		t.Fatal("Expected ambiguous type signal")
	}
	types, _ := signal.Data["types"].([]string)
	if len(types) != 2 || types[0] != "grounding" || types[1] != "collision" {
		t.Errorf("Unexpected ambiguous types: %v", types)
	}

	event.TriggerWords = []string{"grounded", "ran aground"}
	result = scorer.Calculate(event)
	if _, ok := findSignal(result.Signals, model.SignalAmbiguousType); ok {
		t.Error("Did not expect ambiguous type signal for a single event type")
	}
}
