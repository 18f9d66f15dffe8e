package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/groundex/internal/cache"
	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/util"
	"github.com/ppiankov/groundex/internal/worker"
)

// ErrDisallowedByRobots is returned when robots.txt forbids fetching a URL
var ErrDisallowedByRobots = errors.New("disallowed by robots.txt")

const defaultFetchRetries = 3

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = util.SleepContext

// FetcherOptions configure a Fetcher. Nil Robots, Limiter and Cache disable those steps.
type FetcherOptions struct {
	Timeout     time.Duration
	UserAgent   string
	MaxBytes    int64
	MaxRetries  int
	InsecureTLS bool
	HTTPProxy   string
	HTTPSProxy  string
	NoProxy     string

	Robots   *util.RobotsChecker
	Limiter  *worker.Limiter
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// Fetcher fetches report pages
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 2_000_000
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultFetchRetries
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Fetcher{
		httpClient: util.NewHTTPClient(util.ClientOptions{
			Timeout:      opts.Timeout,
			HTTPProxy:    opts.HTTPProxy,
			HTTPSProxy:   opts.HTTPSProxy,
			NoProxy:      opts.NoProxy,
			InsecureTLS:  opts.InsecureTLS,
			MaxRedirects: 3,
		}),
		userAgent:  opts.UserAgent,
		maxBytes:   opts.MaxBytes,
		maxRetries: opts.MaxRetries,
		robots:     opts.Robots,
		limiter:    opts.Limiter,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		logger:     opts.Logger,
	}
}

// FetchResult contains the fetched page and metadata
type FetchResult struct {
	HTML     string          `json:"html"`
	Meta     model.FetchMeta `json:"meta"`
	Subject  string          `json:"subject"`
	FinalURL string          `json:"final_url"`
}

// Fetch retrieves a page with a single request
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	meta := model.FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Headers:      make(map[string]string),
	}

	for _, key := range []string{"Content-Length", "Server", "Cache-Control"} {
		if val := resp.Header.Get(key); val != "" {
			meta.Headers[key] = val
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()

	return &FetchResult{
		HTML:     string(body),
		Meta:     meta,
		Subject:  extractSubject(finalURL),
		FinalURL: finalURL,
	}, nil
}

// FetchWithRetry checks robots.txt and the page cache, then fetches with
// exponential backoff on transient failures. Successful pages are cached.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowedByRobots, rawURL)
		}
		if delay > 0 && f.limiter != nil {
			f.limiter.ApplyCrawlDelay(rawURL, delay)
		}
	}

	key := cache.CacheKey(rawURL)
	if cached, ok := f.fromCache(key); ok {
		f.logger.Debug("page cache hit", zap.String("url", rawURL))
		return cached, nil
	}

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, rawURL); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			f.store(key, result)
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryableFetchError(err) {
			return nil, err
		}
		if attempt < f.maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			f.logger.Debug("retrying fetch",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			if err := fetchSleepFunc(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fromCache(key string) (*FetchResult, bool) {
	if f.cache == nil {
		return nil, false
	}
	data, ok := f.cache.Get(key)
	if !ok {
		return nil, false
	}
	var result FetchResult
	if err := json.Unmarshal(data, &result); err != nil {
		f.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		_ = f.cache.Delete(key)
		return nil, false
	}
	result.Meta.FromCache = true
	return &result, true
}

func (f *Fetcher) store(key string, result *FetchResult) {
	if f.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := f.cache.Set(key, data, f.cacheTTL); err != nil {
		f.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// isRetryableFetchError reports whether err is a transport failure, a 429 or a 5xx
func isRetryableFetchError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, "unexpected status: "); ok {
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return false
		}
		code, convErr := strconv.Atoi(fields[0])
		if convErr != nil {
			return false
		}
		return code == http.StatusTooManyRequests || code >= 500
	}
	return strings.HasPrefix(msg, "fetch: ")
}

// extractSubject extracts a human-readable subject from the URL
func extractSubject(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]

	// De-slugify
	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")

	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	if unescaped, err := url.PathUnescape(last); err == nil {
		last = unescaped
	}
	return last
}
