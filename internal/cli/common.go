package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/pipeline"
	"github.com/ppiankov/groundex/internal/store"
)

// session bundles what most commands need
type session struct {
	cfg      *model.Config
	pipeline *pipeline.Pipeline
	renderer *pipeline.Renderer
}

func newSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("pipeline ready",
		zap.String("extractor", p.Extractor().Name()),
		zap.Strings("available", p.Extractors()),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("robots", cfg.Robots.Enabled))

	return &session{
		cfg:      cfg,
		pipeline: p,
		renderer: pipeline.NewRenderer(cfg.Output.IncludeFooter),
	}, nil
}

// emit renders a report to w in the configured format
func (s *session) emit(w io.Writer, report *model.Report) error {
	return s.renderer.Render(w, report, s.cfg.Output.Format)
}

// saveAll stores reports in the corpus and prints their ids to stderr
func (s *session) saveAll(ctx context.Context, reports ...*model.Report) error {
	if len(reports) == 0 {
		return nil
	}

	db, err := store.Open(s.cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = db.Close() }()

	for _, r := range reports {
		id, err := db.Save(ctx, r)
		if err != nil {
			return fmt.Errorf("save %s: %w", r.Source, err)
		}
		fmt.Fprintf(os.Stderr, "✓ Saved %s as %s\n", r.Subject, id)
	}
	return nil
}

// writeOutputs writes one JSON and one Markdown file per report into dir
func (s *session) writeOutputs(dir string, report *model.Report) error {
	slug := sanitizeFilename(report.Subject)
	if err := s.renderer.RenderJSON(report, filepath.Join(dir, slug+".json")); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	if err := s.renderer.RenderMarkdown(report, filepath.Join(dir, slug+".md")); err != nil {
		return fmt.Errorf("failed to write Markdown: %w", err)
	}
	return nil
}

// sanitizeFilename turns a subject into a safe file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".-_")
	if s == "" {
		s = "report"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

func banner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(w)
}
