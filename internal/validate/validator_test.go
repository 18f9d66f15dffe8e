package validate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/util"
)

func init() {
	// Disable retry sleep in all tests for fast execution
	validateSleepFunc = func(ctx context.Context, d time.Duration) error { return nil }
}

func newTestValidator(sources *model.SourcesConfig) *Validator {
	return NewValidator(Options{Timeout: 5 * time.Second, UserAgent: "groundex-test", Sources: sources})
}

func TestValidator_ValidateSingle_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD request, got %s", r.Method)
		}
		if r.UserAgent() != "groundex-test" {
			t.Errorf("Unexpected user agent %q", r.UserAgent())
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := newTestValidator(nil).validateSingle(context.Background(), server.URL)

	if !result.IsAccessible {
		t.Error("Expected link to be accessible")
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", result.StatusCode)
	}
	if result.IsDead {
		t.Error("Expected link not to be dead")
	}
}

func TestValidator_ValidateSingle_Dead(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		result := newTestValidator(nil).validateSingle(context.Background(), server.URL)
		if result.IsAccessible || !result.IsDead {
			t.Errorf("status %d: expected dead link, got %+v", status, result)
		}
		server.Close()
	}
}

func TestValidator_ValidateSingle_HeadNotAllowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	result := newTestValidator(nil).validateSingle(context.Background(), server.URL)
	if !result.IsAccessible {
		t.Error("Expected link rejecting HEAD to count as accessible")
	}
}

func TestValidator_ValidateSingle_Redirect(t *testing.T) {
	finalServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer finalServer.Close()

	redirectServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, finalServer.URL, http.StatusMovedPermanently)
	}))
	defer redirectServer.Close()

	result := newTestValidator(nil).validateSingle(context.Background(), redirectServer.URL)

	if !result.IsAccessible {
		t.Error("Expected redirected link to be accessible")
	}
	if result.RedirectURL != finalServer.URL {
		t.Errorf("Expected redirect to %s, got %s", finalServer.URL, result.RedirectURL)
	}
}

func TestValidator_Validate_Concurrency(t *testing.T) {
	serverCount := 10
	urls := make([]string, serverCount)
	for i := 0; i < serverCount; i++ {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond) // Simulate network delay
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()
		urls[i] = server.URL
	}

	start := time.Now()
	results := newTestValidator(nil).Validate(context.Background(), urls)
	duration := time.Since(start)

	if len(results) != serverCount {
		t.Fatalf("Expected %d results, got %d", serverCount, len(results))
	}

	// 10 requests @ 100ms each take ~1s sequentially
	if duration > 500*time.Millisecond {
		t.Errorf("Validation took too long (%v), concurrent execution may not be working", duration)
	}

	for i, result := range results {
		if !result.IsAccessible || result.URL != urls[i] {
			t.Errorf("Result %d: expected accessible %s, got %+v", i, urls[i], result)
		}
	}
}

func TestValidator_Validate_Empty(t *testing.T) {
	results := newTestValidator(nil).Validate(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("Expected 0 results, got %d", len(results))
	}
}

func TestValidator_Validate_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	results := newTestValidator(nil).Validate(ctx, []string{server.URL})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].IsAccessible {
		t.Error("Expected link not to be accessible after context cancellation")
	}
}

func TestValidator_Validate_MixedResults(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	missing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer missing.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	results := newTestValidator(nil).Validate(context.Background(), []string{ok.URL, missing.URL, broken.URL})

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if !results[0].IsAccessible {
		t.Error("Expected first link to be accessible")
	}
	if results[1].IsAccessible || !results[1].IsDead {
		t.Error("Expected second link to be dead")
	}
	if results[2].IsAccessible {
		t.Error("Expected third link not to be accessible (500 error)")
	}

	accessible := Accessible(results)
	if len(accessible) != 1 || accessible[0] != ok.URL {
		t.Errorf("Accessible() = %v", accessible)
	}
}

func TestAccessible_FollowsRedirects(t *testing.T) {
	results := []model.LinkStatus{
		{URL: "http://a", IsAccessible: true, RedirectURL: "https://a/report"},
		{URL: "http://b", IsDead: true},
		{URL: "http://c", IsAccessible: true},
	}

	got := Accessible(results)
	want := []string{"https://a/report", "http://c"}
	if len(got) != len(want) {
		t.Fatalf("Accessible() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Accessible()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestValidator_AuthorityClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	v := newTestValidator(&model.SourcesConfig{PrimaryDomains: []string{"127.0.0.1"}})
	result := v.validateSingle(context.Background(), server.URL)

	if result.Authority != model.TierPrimary {
		t.Errorf("Expected authority tier to be primary, got %v", result.Authority)
	}
}

func TestNewValidator_Defaults(t *testing.T) {
	v := NewValidator(Options{})
	if v.maxWorkers != 20 {
		t.Errorf("Expected default max workers to be 20, got %d", v.maxWorkers)
	}

	v = NewValidator(Options{MaxWorkers: 50})
	if v.maxWorkers != 50 {
		t.Errorf("Expected max workers to be 50, got %d", v.maxWorkers)
	}
}

func TestValidateSingleWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := newTestValidator(nil).validateSingleWithRetry(context.Background(), server.URL)

	if !result.IsAccessible {
		t.Error("Expected accessible after retry")
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestValidateSingleWithRetry_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result := newTestValidator(nil).validateSingleWithRetry(context.Background(), server.URL)

	if !result.IsDead {
		t.Error("Expected dead for 404")
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt for non-retryable error, got %d", attempts.Load())
	}
}

func TestValidateSingleWithRetry_AllRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	result := newTestValidator(nil).validateSingleWithRetry(context.Background(), server.URL)

	if result.IsAccessible {
		t.Error("Expected not accessible after all retries exhausted")
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestIsRetryableValidationResult(t *testing.T) {
	tests := []struct {
		desc      string
		result    model.LinkStatus
		retryable bool
	}{
		{"200 OK", model.LinkStatus{StatusCode: 200, IsAccessible: true}, false},
		{"404 Not Found", model.LinkStatus{StatusCode: 404, IsDead: true}, false},
		{"500 Server Error", model.LinkStatus{StatusCode: 500}, true},
		{"503 Service Unavailable", model.LinkStatus{StatusCode: 503}, true},
		{"429 Too Many Requests", model.LinkStatus{StatusCode: 429}, true},
		{"timeout error", model.LinkStatus{Error: "request failed: timeout"}, true},
		{"connection refused", model.LinkStatus{Error: "request failed: connection refused"}, true},
		{"create request error", model.LinkStatus{Error: "create request: invalid URL"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := isRetryableValidationResult(tt.result); got != tt.retryable {
				t.Errorf("isRetryableValidationResult(%s) = %v, want %v", tt.desc, got, tt.retryable)
			}
		})
	}
}

func TestValidator_RetryStopsOnCancel(t *testing.T) {
	orig := validateSleepFunc
	validateSleepFunc = util.SleepContext
	defer func() { validateSleepFunc = orig }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	start := time.Now()
	newTestValidator(nil).validateSingleWithRetry(ctx, server.URL)

	if time.Since(start) > 900*time.Millisecond {
		t.Errorf("retry backoff ignored cancellation")
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts.Load())
	}
}
