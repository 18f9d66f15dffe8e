package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/groundex/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("The tanker grounded.", []string{"vessel", "cause"})

	for _, want := range []string{`"vessel": ["..."]`, `"cause": ["..."]`, "REPORT:\nThe tanker grounded."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, `"damage"`) {
		t.Error("prompt should only list requested roles")
	}

	if !strings.Contains(BuildPrompt("x", nil), `"response": ["..."]`) {
		t.Error("default prompt should list the default roles")
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"plain", eventJSON, "grounding", nil},
		{"fenced", "```json\n" + eventJSON + "\n```", "grounding", nil},
		{"prose", "Here is the event: " + eventJSON + " Hope this helps.", "grounding", nil},
		{"no json", "nothing here", "", ErrNoJSON},
		{"reversed braces", "} {", "", ErrNoJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := ParseEvent(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEvent: %v", err)
			}
			if event.EventType != tt.want {
				t.Errorf("event type = %q, want %q", event.EventType, tt.want)
			}
		})
	}
}

func TestParseEvent_NilArguments(t *testing.T) {
	event, err := ParseEvent(`{"event_type": "unknown"}`)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if event.Arguments == nil {
		t.Error("Arguments should be initialized")
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		apiKey   string
		wantName string
		wantErr  bool
	}{
		{"", "", "", false},
		{"openai", "k", "openai", false},
		{"OpenAI", "", "", true},
		{"claude", "k", "anthropic", false},
		{"ollama", "", "ollama", false},
		{"gemini", "k", "", true},
	}

	for _, tt := range tests {
		p, err := NewProvider(Config{Provider: tt.provider, APIKey: tt.apiKey})
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.provider)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.provider, err)
			continue
		}
		if tt.wantName == "" {
			if p != nil {
				t.Errorf("%q: expected nil provider", tt.provider)
			}
			continue
		}
		if p.Name() != tt.wantName {
			t.Errorf("%q: name = %s, want %s", tt.provider, p.Name(), tt.wantName)
		}
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = "mistral"
	cfg.HTTP.HTTPSProxy = "http://proxy:3128"

	got := ConfigFromModel(*cfg)
	if got.Provider != "ollama" || got.Model != "mistral" || got.Timeout != 30 || got.MaxTokens != 1000 {
		t.Errorf("unexpected config: %+v", got)
	}
	if got.HTTPSProxy != "http://proxy:3128" {
		t.Errorf("proxy not carried over: %+v", got)
	}
}
