// Package validate checks report links and classifies their sources before extraction.
package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/util"
)

const validateMaxRetries = 3

// validateSleepFunc is the sleep function used between retries (injectable for tests)
var validateSleepFunc = util.SleepContext

// Validator checks report links concurrently with HEAD requests
type Validator struct {
	httpClient *http.Client
	userAgent  string
	maxWorkers int
	authority  *AuthorityClassifier
}

// Options configure NewValidator
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	MaxWorkers int
	Sources    *model.SourcesConfig
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewValidator creates a new validator
func NewValidator(opts Options) *Validator {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &Validator{
		httpClient: util.NewHTTPClient(util.ClientOptions{
			Timeout:    opts.Timeout,
			HTTPProxy:  opts.HTTPProxy,
			HTTPSProxy: opts.HTTPSProxy,
			NoProxy:    opts.NoProxy,
		}),
		userAgent:  opts.UserAgent,
		maxWorkers: opts.MaxWorkers,
		authority:  NewAuthorityClassifier(opts.Sources),
	}
}

// Validate checks all links concurrently. Results keep the input order.
func (v *Validator) Validate(ctx context.Context, urls []string) []model.LinkStatus {
	results := make([]model.LinkStatus, len(urls))
	if len(urls) == 0 {
		return results
	}

	g := new(errgroup.Group)
	g.SetLimit(v.maxWorkers)

	for i, u := range urls {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = model.LinkStatus{URL: u, Error: "context cancelled"}
				return nil
			}
			results[i] = v.validateSingleWithRetry(ctx, u)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Accessible returns the URLs of accessible links, following redirects
func Accessible(results []model.LinkStatus) []string {
	var urls []string
	for _, r := range results {
		if !r.IsAccessible {
			continue
		}
		if r.RedirectURL != "" {
			urls = append(urls, r.RedirectURL)
		} else {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// validateSingle checks a single link
func (v *Validator) validateSingle(ctx context.Context, rawURL string) model.LinkStatus {
	result := model.LinkStatus{
		URL:       rawURL,
		Authority: v.authority.Classify(rawURL),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		result.IsDead = true
		return result
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.IsDead = true
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.IsAccessible = true
	case resp.StatusCode == http.StatusMethodNotAllowed:
		// Some report servers reject HEAD but serve GET
		result.IsAccessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.IsDead = true
	}

	if final := resp.Request.URL.String(); final != rawURL {
		result.RedirectURL = final
	}

	return result
}

// validateSingleWithRetry retries transient failures with exponential backoff
func (v *Validator) validateSingleWithRetry(ctx context.Context, rawURL string) model.LinkStatus {
	var result model.LinkStatus
	for attempt := 0; attempt < validateMaxRetries; attempt++ {
		result = v.validateSingle(ctx, rawURL)
		if !isRetryableValidationResult(result) {
			return result
		}
		if attempt < validateMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			if err := validateSleepFunc(ctx, backoff); err != nil {
				return result
			}
		}
	}
	return result
}

// isRetryableValidationResult returns true for results that indicate transient failures
func isRetryableValidationResult(result model.LinkStatus) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return result.Error != "" && isRetryableNetworkError(result.Error)
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
