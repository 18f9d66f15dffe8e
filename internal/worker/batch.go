package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/groundex/internal/model"
)

// Scanner turns one target (a URL or a file path) into a report
type Scanner interface {
	Scan(ctx context.Context, target string) (*model.Report, error)
}

// ScanFunc adapts a function to the Scanner interface
type ScanFunc func(ctx context.Context, target string) (*model.Report, error)

// Scan calls f(ctx, target)
func (f ScanFunc) Scan(ctx context.Context, target string) (*model.Report, error) {
	return f(ctx, target)
}

// ScanJob represents one target scan
type ScanJob struct {
	Index   int
	Target  string
	Scanner Scanner
}

// Execute executes the scan job
func (j *ScanJob) Execute(ctx context.Context) Result {
	report, err := j.Scanner.Scan(ctx, j.Target)
	if err != nil {
		return &ScanResult{Index: j.Index, Target: j.Target, Error: err}
	}
	return &ScanResult{Index: j.Index, Target: j.Target, Report: report}
}

// ScanResult represents the result of a scan job
type ScanResult struct {
	Index  int // Position of the target in the batch
	Target string
	Report *model.Report
	Error  error
}

// GetError returns the error from the scan result
func (r *ScanResult) GetError() error {
	return r.Error
}

// BatchProcessor processes many targets concurrently
type BatchProcessor struct {
	scanner     Scanner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(scanner Scanner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		scanner:     scanner,
		concurrency: concurrency,
	}
}

// Process scans targets concurrently and returns results in input order.
// Targets not started before ctx is canceled report ctx's error.
func (b *BatchProcessor) Process(ctx context.Context, targets []string) []*ScanResult {
	if len(targets) == 0 {
		return []*ScanResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, target := range targets {
		if !pool.Submit(&ScanJob{Index: i, Target: target, Scanner: b.scanner}) {
			break
		}
	}

	scanResults := make([]*ScanResult, len(targets))
	for _, result := range pool.Wait() {
		r := result.(*ScanResult)
		scanResults[r.Index] = r
	}

	// Targets lost to cancellation still get a result
	for i, r := range scanResults {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			scanResults[i] = &ScanResult{Index: i, Target: targets[i], Error: err}
		}
	}

	return scanResults
}

// ProcessFile reads URLs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ScanResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.Process(ctx, urls), nil
}

// ReadURLsFromFile reads URLs from a file (one per line). Blank lines and
// lines starting with # are skipped; duplicates keep their first position.
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}

// TextFiles lists the .txt files directly inside dir, sorted by name
func TextFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
