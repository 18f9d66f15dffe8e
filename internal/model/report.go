package model

import "time"

// Report is the complete result of running one accident report through groundex
type Report struct {
	ID          string     `json:"id,omitempty" yaml:"id,omitempty"`
	Subject     string     `json:"subject" yaml:"subject"`                           // Human-readable subject (page title, file name)
	Source      string     `json:"source" yaml:"source"`                             // URL, file path, "stdin" or "inline"
	ExtractedAt time.Time  `json:"extracted_at" yaml:"extracted_at"`                 // When the extraction ran
	FetchMeta   *FetchMeta `json:"fetch_meta,omitempty" yaml:"fetch_meta,omitempty"` // HTTP metadata, only for fetched pages

	Authority AuthorityTier `json:"authority" yaml:"authority"` // Source authority, unknown for local text

	Event Event `json:"event" yaml:"event"`
	Score Score `json:"score" yaml:"score"`
}

// FetchMeta contains HTTP metadata from fetching the source
type FetchMeta struct {
	StatusCode   int               `json:"status_code" yaml:"status_code"`
	ContentType  string            `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty" yaml:"etag,omitempty"`
	FromCache    bool              `json:"from_cache,omitempty" yaml:"from_cache,omitempty"`
	Adapter      string            `json:"adapter,omitempty" yaml:"adapter,omitempty"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Score is the transparent completeness breakdown of an event
type Score struct {
	Index      int      `json:"index" yaml:"index"`           // Completeness index (0-100)
	Confidence string   `json:"confidence" yaml:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals" yaml:"signals"`
}

// Signal is a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type" yaml:"type"`
	Severity    SignalSeverity         `json:"severity" yaml:"severity"`
	Description string                 `json:"description" yaml:"description"`
	Data        map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalTrigger          SignalType = "trigger"           // Trigger word presence
	SignalVessel           SignalType = "vessel"            // Vessel identified
	SignalLocation         SignalType = "location"          // Location identified
	SignalCause            SignalType = "cause"             // Cause / risk factor identified
	SignalTime             SignalType = "time"              // Time identified
	SignalConsequence      SignalType = "consequence"       // Damage or response identified
	SignalAmbiguousType    SignalType = "ambiguous_type"    // Triggers from several event types
	SignalArgumentCoverage SignalType = "argument_coverage" // Share of roles filled
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
