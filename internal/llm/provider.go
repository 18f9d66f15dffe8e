// Package llm asks large language models to extract grounding events as JSON.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrNoJSON is returned when a model response contains no JSON object
var ErrNoJSON = errors.New("no JSON object in model response")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// ExtractEvent asks the model for a structured event describing the text
	ExtractEvent(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for LLM extraction
type ExtractRequest struct {
	// Text is the accident report
	Text string

	// Roles are the argument roles the model should fill
	Roles []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse contains the parsed model output
type ExtractResponse struct {
	// Event is the event the model reported
	Event RawEvent

	// Raw is the unparsed model output
	Raw string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// RawEvent is the JSON shape models are asked to produce
type RawEvent struct {
	EventType string              `json:"event_type"`
	Triggers  []string            `json:"triggers"`
	Arguments map[string][]string `json:"arguments"`
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	// Logger receives availability diagnostics (nop when nil)
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// systemPrompt frames every extraction request
const systemPrompt = "You extract structured ship grounding accident events from report text. " +
	"Reply with a single JSON object and nothing else."

// DefaultRoles are requested when ExtractRequest.Roles is empty
var DefaultRoles = []string{"vessel", "location", "cause", "time", "damage", "response"}

// BuildPrompt constructs the default extraction prompt
func BuildPrompt(text string, roles []string) string {
	if len(roles) == 0 {
		roles = DefaultRoles
	}

	var b strings.Builder
	b.WriteString("Extract the grounding accident event from the report below.\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("1. Copy trigger words and argument values exactly as they appear in the report.\n")
	b.WriteString("2. Do not infer values that the report does not state. Use empty lists instead.\n")
	b.WriteString("3. event_type is one of: grounding, collision, stranding, accident, unknown.\n\n")
	b.WriteString("Respond with JSON in this shape:\n")
	b.WriteString(`{"event_type": "...", "triggers": ["..."], "arguments": {`)
	for i, role := range roles {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: [\"...\"]", role)
	}
	b.WriteString("}}\n\nREPORT:\n")
	b.WriteString(text)
	return b.String()
}

// ParseEvent decodes a model response into a RawEvent. Markdown code fences
// and prose around the JSON object are ignored.
func ParseEvent(raw string) (*RawEvent, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, ErrNoJSON
	}

	var event RawEvent
	if err := json.Unmarshal([]byte(raw[start:end+1]), &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if event.Arguments == nil {
		event.Arguments = make(map[string][]string)
	}
	return &event, nil
}

// resolve fills request defaults from the provider configuration
func resolve(req ExtractRequest, config Config, defaultModel string) (prompt, model string, maxTokens int) {
	prompt = req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Text, req.Roles)
	}

	model = req.Model
	if model == "" {
		model = config.Model
	}
	if model == "" {
		model = defaultModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}
	return prompt, model, maxTokens
}
