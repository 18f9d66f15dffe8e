package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/groundex/internal/model"
)

// Output formats
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "md"
)

const rule = "══════════════════════════════════════════════════════════════════════"

// Renderer writes reports as console text, JSON, YAML or Markdown
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer. The footer only applies to Markdown.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// FormatFromPath picks a format from a file extension, defaulting to JSON
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatJSON
	}
}

// Render writes a report to w in the given format
func (r *Renderer) Render(w io.Writer, report *model.Report, format string) error {
	switch strings.ToLower(format) {
	case "", FormatConsole:
		r.RenderSummary(w, report)
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown, "markdown":
		_, err := io.WriteString(w, r.Markdown(report))
		return err
	default:
		return fmt.Errorf("unknown format %q (supported: console, json, yaml, md)", format)
	}
}

// RenderFile writes a report to path, choosing the format from its extension
func (r *Renderer) RenderFile(report *model.Report, path string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return r.Render(f, report, FormatFromPath(path))
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	return r.renderAs(report, path, FormatJSON)
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return r.renderAs(report, path, FormatMarkdown)
}

func (r *Renderer) renderAs(report *model.Report, path, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return r.Render(f, report, format)
}

// RenderSummary prints a human-readable view of the event
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	event := report.Event

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Grounding event: %s\n", report.Subject)
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\nSource:      %s", report.Source)
	if report.Authority != model.TierUnknown {
		fmt.Fprintf(w, " (%s)", report.Authority)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Extractor:   %s\n", event.Extractor)
	fmt.Fprintf(w, "Text:        %s\n", preview(event.Text, 200))

	fmt.Fprintf(w, "\nEvent type:  %s\n", event.EventType)
	if len(event.TriggerWords) > 0 {
		fmt.Fprintf(w, "Triggers:    %s\n", strings.Join(event.TriggerWords, ", "))
	} else {
		fmt.Fprintln(w, "Triggers:    (none found)")
	}

	fmt.Fprintln(w, "\nArguments:")
	printed := 0
	for _, role := range event.Arguments.Roles() {
		values := event.Arguments[role]
		if len(values) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-12s: %s\n", role, strings.Join(values, ", "))
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(w, "  (none)")
	}

	if len(event.Triggers) > 0 {
		positions := make([]string, len(event.Triggers))
		for i, t := range event.Triggers {
			positions[i] = fmt.Sprintf("%s@%d-%d", t.Word, t.Start, t.End)
		}
		fmt.Fprintf(w, "\nTrigger positions: %s\n", strings.Join(positions, " "))
	}

	if f := event.Features; f != nil {
		fmt.Fprintln(w, "\nLinguistic features:")
		fmt.Fprintln(w, "  POS tags (first 10):")
		for _, tw := range f.POSTags {
			fmt.Fprintf(w, "    %-15s -> %s\n", tw.Text, tw.POS)
		}
		if len(f.Chunks) > 0 {
			fmt.Fprintf(w, "  Noun chunks: %s\n", strings.Join(f.Chunks, " | "))
		}
		if len(f.Entities) > 0 {
			fmt.Fprintln(w, "  Entities:")
			for _, e := range f.Entities {
				fmt.Fprintf(w, "    %-20s (%s)\n", e.Text, e.Label)
			}
		}
	}

	fmt.Fprintf(w, "\nCompleteness: %d/100 (%s confidence)\n", report.Score.Index, report.Score.Confidence)
	for _, s := range report.Score.Signals {
		if s.Severity == model.SeverityInfo {
			continue
		}
		fmt.Fprintf(w, "  [%s] %s\n", s.Severity, s.Description)
	}
	fmt.Fprintln(w)
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	event := report.Event
	var b strings.Builder

	fmt.Fprintf(&b, "# Grounding event: %s\n\n", report.Subject)
	fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	if report.Authority != model.TierUnknown {
		fmt.Fprintf(&b, "- **Source authority:** %s\n", report.Authority)
	}
	fmt.Fprintf(&b, "- **Extracted:** %s\n", report.ExtractedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Extractor:** %s\n", event.Extractor)
	fmt.Fprintf(&b, "- **Event type:** `%s`\n", event.EventType)
	fmt.Fprintf(&b, "- **Completeness:** %d/100 (%s confidence)\n\n", report.Score.Index, report.Score.Confidence)

	b.WriteString("## Trigger words\n\n")
	if len(event.Triggers) == 0 {
		b.WriteString("_None found._\n\n")
	} else {
		b.WriteString("| Word | Start | End |\n|---|---|---|\n")
		for _, t := range event.Triggers {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", t.Word, t.Start, t.End)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Arguments\n\n")
	b.WriteString("| Role | Values |\n|---|---|\n")
	for _, role := range event.Arguments.Roles() {
		values := event.Arguments[role]
		cell := "—"
		if len(values) > 0 {
			cell = escapeCell(strings.Join(values, "; "))
		}
		fmt.Fprintf(&b, "| %s | %s |\n", role, cell)
	}
	b.WriteString("\n")

	b.WriteString("## Signals\n\n")
	for _, s := range report.Score.Signals {
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Type, s.Severity, s.Description)
	}
	b.WriteString("\n")

	b.WriteString("## Text\n\n")
	for _, line := range strings.Split(strings.TrimSpace(event.Text), "\n") {
		fmt.Fprintf(&b, "> %s\n", line)
	}

	if r.includeFooter {
		b.WriteString("\n---\n\n_Generated by groundex. Rule-based extraction; verify against the full report._\n")
	}
	return b.String()
}

// RenderBatchSummary prints one line per report plus totals
func (r *Renderer) RenderBatchSummary(w io.Writer, reports []*model.Report, failures int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "  Batch complete")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	for _, rep := range reports {
		fmt.Fprintf(w, "  %-20s %3d/100  %-6s  %s\n", rep.Event.EventType, rep.Score.Index, rep.Score.Confidence, rep.Subject)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Total:     %d\n", len(reports)+failures)
	fmt.Fprintf(w, "  Success:   %d\n", len(reports))
	fmt.Fprintf(w, "  Failures:  %d\n", failures)
	fmt.Fprintln(w)
}

func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= n {
		return text
	}
	cut := n
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	return text[:cut] + "..."
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
