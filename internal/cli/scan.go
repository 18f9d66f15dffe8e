package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	scanSave    bool
	scanTimeout time.Duration
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Fetch an accident report page and extract its grounding event",
	Long: `Scan fetches a single web page and:
- Checks robots.txt and the page cache
- Isolates the report narrative (Wikipedia, investigation boards, generic pages)
- Extracts the grounding event with the selected extractor
- Scores event completeness and classifies source authority

Example:
  groundex scan https://en.wikipedia.org/wiki/2021_Suez_Canal_obstruction
  groundex scan https://example.com/report --json report.json --md report.md
  groundex scan https://example.com/report --extractor llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	scanCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "store the report in the corpus database")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 2*time.Minute, "overall scan timeout")
}

func runScan(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", url)
		fmt.Fprintf(os.Stderr, "Extractor: %s\n", s.pipeline.Extractor().Name())
		fmt.Fprintf(os.Stderr, "Cache: %v\n\n", s.cfg.Cache.Enabled)
	}

	report, err := s.pipeline.ExtractURL(ctx, url)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if err := s.emit(cmd.OutOrStdout(), report); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if outJSON != "" {
		if err := s.renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
	}
	if outMD != "" {
		if err := s.renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outMD)
	}

	if scanSave {
		return s.saveAll(ctx, report)
	}
	return nil
}
