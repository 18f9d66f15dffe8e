package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	textsDir     string
	batchSave    bool
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Extract events from many URLs or text files in parallel",
	Long: `Batch processes many reports concurrently:
- Read targets from a file (one URL or text file path per line), or
  every .txt file in a directory with --texts
- Process targets in parallel with a configurable worker count
- Write a JSON and a Markdown report per target, optionally save to the corpus

Example:
  groundex batch urls.txt
  groundex batch urls.txt --concurrency 8 --output-dir ./reports
  groundex batch --texts ./casualty-reports --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./groundex-reports", "output directory for reports (empty to skip)")
	batchCmd.Flags().StringVar(&textsDir, "texts", "", "directory of .txt reports to process")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "store reports in the corpus database")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	var targets []string
	var err error
	source := textsDir
	switch {
	case textsDir != "":
		targets, err = worker.TextFiles(textsDir)
	case len(args) == 1:
		source = args[0]
		targets, err = worker.ReadURLsFromFile(args[0])
	default:
		return fmt.Errorf("pass a target file or --texts <dir>")
	}
	if err != nil {
		return fmt.Errorf("read targets: %w", err)
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = s.cfg.Concurrency.Workers
	}

	banner(os.Stderr, "groundex batch processing")
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", source)
	fmt.Fprintf(os.Stderr, "  Targets:      %d\n", len(targets))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Extractor:    %s\n", s.pipeline.Extractor().Name())
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n\n", batchTimeout)

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	return s.runTargets(ctx, targets, concurrency, outputDir, batchSave)
}

// runTargets scans targets with a worker pool, writes outputs and prints a summary
func (s *session) runTargets(ctx context.Context, targets []string, workers int, dir string, save bool) error {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	processor := worker.NewBatchProcessor(s.pipeline, workers)
	results := processor.Process(ctx, targets)

	var reports []*model.Report
	failures := 0
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Target, result.Error)
			continue
		}

		if dir != "" {
			if err := s.writeOutputs(dir, result.Report); err != nil {
				failures++
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Target, err)
				continue
			}
		}

		reports = append(reports, result.Report)
		fmt.Fprintf(os.Stderr, "✓ %s (%s, completeness: %d/100)\n",
			result.Report.Subject, result.Report.Event.EventType, result.Report.Score.Index)
	}

	s.renderer.RenderBatchSummary(os.Stderr, reports, failures)

	if save {
		if err := s.saveAll(ctx, reports...); err != nil {
			return err
		}
	}
	if failures > 0 && len(reports) == 0 {
		return fmt.Errorf("all %d targets failed", failures)
	}
	return nil
}
