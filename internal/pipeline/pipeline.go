// Package pipeline wires fetching, adapters, extraction and scoring into reports.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ppiankov/groundex/internal/cache"
	"github.com/ppiankov/groundex/internal/extract"
	"github.com/ppiankov/groundex/internal/extract/adapters"
	"github.com/ppiankov/groundex/internal/lexicon"
	"github.com/ppiankov/groundex/internal/llm"
	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/score"
	"github.com/ppiankov/groundex/internal/util"
	"github.com/ppiankov/groundex/internal/validate"
	"github.com/ppiankov/groundex/internal/worker"
)

// Pipeline orchestrates extraction from text, files and web pages
type Pipeline struct {
	fetcher   *Fetcher
	adapters  *adapters.Registry
	registry  *extract.Registry
	extractor extract.Extractor
	scorer    *score.Scorer
	authority *validate.AuthorityClassifier
	cache     *cache.LayeredCache // nil when caching is disabled
	config    *model.Config
	logger    *zap.Logger
}

// NewPipeline builds a pipeline from configuration. The LLM extractor is
// registered only when a provider is configured and constructs cleanly.
func NewPipeline(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	lex := lexicon.Default()
	if cfg.Extraction.LexiconPath != "" {
		loaded, err := lexicon.Load(cfg.Extraction.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		lex = loaded
	}

	var pageCache *cache.LayeredCache
	var cacheIface cache.Cache
	if cfg.Cache.Enabled {
		pageCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		cacheIface = pageCache
	}

	opts := extract.Options{Features: cfg.Extraction.Features}
	registry := extract.DefaultRegistry(lex, opts)

	provider, err := llm.NewProvider(llm.ConfigFromModel(*cfg))
	if err != nil {
		logger.Warn("LLM provider disabled", zap.Error(err))
	} else if provider != nil {
		registry.Register(extract.NewLLMExtractor(provider, cacheIface, opts))
	}

	var robots *util.RobotsChecker
	if cfg.Robots.Enabled {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, util.NewHTTPClient(util.ClientOptions{
			Timeout:    cfg.HTTP.Timeout,
			HTTPProxy:  cfg.HTTP.HTTPProxy,
			HTTPSProxy: cfg.HTTP.HTTPSProxy,
			NoProxy:    cfg.HTTP.NoProxy,
		}), cfg.HTTP.Timeout)
	}

	fetcher := NewFetcher(FetcherOptions{
		Timeout:     cfg.HTTP.Timeout,
		UserAgent:   cfg.HTTP.UserAgent,
		MaxBytes:    cfg.HTTP.MaxBodyBytes,
		MaxRetries:  cfg.HTTP.MaxRetries,
		InsecureTLS: cfg.HTTP.InsecureTLS,
		HTTPProxy:   cfg.HTTP.HTTPProxy,
		HTTPSProxy:  cfg.HTTP.HTTPSProxy,
		NoProxy:     cfg.HTTP.NoProxy,
		Robots:      robots,
		Limiter:     worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		Cache:       cacheIface,
		CacheTTL:    cfg.Cache.DiskTTL,
		Logger:      logger,
	})

	p := &Pipeline{
		fetcher:   fetcher,
		adapters:  adapters.NewRegistry(),
		registry:  registry,
		scorer:    score.NewScorer(lex),
		authority: validate.NewAuthorityClassifier(&cfg.Sources),
		cache:     pageCache,
		config:    cfg,
		logger:    logger,
	}
	if err := p.UseExtractor(cfg.Extraction.Extractor); err != nil {
		return nil, err
	}
	return p, nil
}

// UseExtractor selects the extractor used for subsequent extractions
func (p *Pipeline) UseExtractor(name string) error {
	if name == "" {
		name = "pattern"
	}
	e, err := p.registry.Get(name)
	if err != nil {
		return err
	}
	p.extractor = e
	return nil
}

// Extractor returns the active extractor
func (p *Pipeline) Extractor() extract.Extractor {
	return p.extractor
}

// Extractors returns the names of all registered extractors
func (p *Pipeline) Extractors() []string {
	return p.registry.Names()
}

// Cache returns the page cache, or nil when caching is disabled
func (p *Pipeline) Cache() *cache.LayeredCache {
	return p.cache
}

// ExtractText extracts, scores and wraps an event from raw report text
func (p *Pipeline) ExtractText(ctx context.Context, source, text string) (*model.Report, error) {
	text = p.limitText(source, text)

	event, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	report := &model.Report{
		Subject:     subjectFor(source),
		Source:      source,
		ExtractedAt: time.Now().UTC(),
		Authority:   p.authority.Classify(source),
		Event:       *event,
		Score:       p.scorer.Calculate(event),
	}

	p.logger.Debug("extracted event",
		zap.String("source", source),
		zap.String("extractor", event.Extractor),
		zap.String("event_type", string(event.EventType)),
		zap.Int("arguments", event.Arguments.Count()),
		zap.Int("index", report.Score.Index))

	return report, nil
}

// ExtractURL fetches a page, isolates the report text and extracts an event
func (p *Pipeline) ExtractURL(ctx context.Context, rawURL string) (*model.Report, error) {
	result, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	text, subject, adapterName, err := p.reportText(result)
	if err != nil {
		return nil, err
	}

	report, err := p.ExtractText(ctx, result.FinalURL, text)
	if err != nil {
		return nil, err
	}

	meta := result.Meta
	meta.Adapter = adapterName
	report.FetchMeta = &meta
	report.Subject = subject
	return report, nil
}

// reportText turns a fetched page into report text. Plain-text bodies are used as is.
func (p *Pipeline) reportText(result *FetchResult) (text, subject, adapterName string, err error) {
	subject = result.Subject
	if strings.HasPrefix(strings.ToLower(result.Meta.ContentType), "text/plain") {
		return result.HTML, subject, "plain", nil
	}

	adapter := p.adapters.FindAdapter(result.FinalURL, result.Meta.ContentType)

	var base adapters.BaseAdapter
	doc, err := base.ParseHTML(result.HTML)
	if err != nil {
		return "", "", "", fmt.Errorf("parse HTML: %w", err)
	}

	text, err = adapter.ReportText(doc, result.FinalURL)
	if err != nil {
		return "", "", "", fmt.Errorf("%s adapter: %w", adapter.Name(), err)
	}

	if title := pageTitle(doc); title != "" {
		subject = title
	}
	return text, subject, adapter.Name(), nil
}

// Scan extracts from a URL or a local text file, so a Pipeline can drive a worker.BatchProcessor
func (p *Pipeline) Scan(ctx context.Context, target string) (*model.Report, error) {
	if isURL(target) {
		return p.ExtractURL(ctx, target)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return p.ExtractText(ctx, target, string(data))
}

// Crawl fetches an index page and returns the report links it lists, at most limit (0 means all)
func (p *Pipeline) Crawl(ctx context.Context, indexURL string, limit int) ([]adapters.ReportLink, error) {
	result, err := p.fetcher.FetchWithRetry(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	var base adapters.BaseAdapter
	doc, err := base.ParseHTML(result.HTML)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	links := adapters.ExtractReportLinks(doc, result.FinalURL)
	links = withoutURL(links, result.FinalURL)
	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}

	p.logger.Info("crawled index", zap.String("url", result.FinalURL), zap.Int("links", len(links)))
	return links, nil
}

// limitText caps text at the configured size on a rune boundary
func (p *Pipeline) limitText(source, text string) string {
	limit := p.config.Extraction.MaxTextBytes
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	p.logger.Warn("report text truncated", zap.String("source", source), zap.Int("bytes", len(text)), zap.Int("limit", cut))
	return text[:cut]
}

func withoutURL(links []adapters.ReportLink, u string) []adapters.ReportLink {
	out := links[:0]
	for _, l := range links {
		if l.URL != u {
			out = append(out, l)
		}
	}
	return out
}

func pageTitle(doc *html.Node) string {
	var base adapters.BaseAdapter
	title := base.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "title"
	})
	if title == nil {
		return ""
	}
	text := base.ExtractText(title)
	// Strip site suffixes such as " - Wikipedia"
	for _, sep := range []string{" - ", " | ", " – "} {
		if i := strings.LastIndex(text, sep); i > 0 {
			text = text[:i]
		}
	}
	return strings.TrimSpace(text)
}

// subjectFor derives a subject from a non-URL source
func subjectFor(source string) string {
	switch {
	case source == "" || source == "inline" || source == "stdin":
		return "Report (" + orDefault(source, "inline") + ")"
	case isURL(source):
		return extractSubject(source)
	default:
		base := filepath.Base(source)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
