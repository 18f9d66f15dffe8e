package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundex/internal/validate"
)

var (
	crawlLimit     int
	crawlOutputDir string
	crawlSave      bool
	crawlNoCheck   bool
	crawlTimeout   time.Duration
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl <index-url>",
	Short: "Extract events from the reports listed on an index page",
	Long: `Crawl fetches an index page (an investigation board's report list, a
news archive), collects links that look like accident reports, checks that
they are reachable and extracts an event from each one.

Example:
  groundex crawl https://www.gov.uk/maib-reports --limit 20
  groundex crawl https://example.org/casualties --save --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().IntVar(&crawlLimit, "limit", 10, "maximum number of report links to follow (0 for all)")
	crawlCmd.Flags().StringVar(&crawlOutputDir, "output-dir", "", "output directory for reports (optional)")
	crawlCmd.Flags().BoolVar(&crawlSave, "save", false, "store reports in the corpus database")
	crawlCmd.Flags().BoolVar(&crawlNoCheck, "no-check", false, "skip the link reachability check")
	crawlCmd.Flags().DurationVar(&crawlTimeout, "timeout", 15*time.Minute, "total timeout for the crawl")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	indexURL := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), crawlTimeout)
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}

	banner(os.Stderr, "groundex crawl")
	fmt.Fprintf(os.Stderr, "  Index:        %s\n", indexURL)
	fmt.Fprintf(os.Stderr, "  Limit:        %d\n", crawlLimit)
	fmt.Fprintf(os.Stderr, "  Extractor:    %s\n\n", s.pipeline.Extractor().Name())

	links, err := s.pipeline.Crawl(ctx, indexURL, crawlLimit)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	if len(links) == 0 {
		fmt.Fprintln(os.Stderr, "No report links found.")
		return nil
	}

	targets := make([]string, len(links))
	for i, l := range links {
		targets[i] = l.URL
	}
	fmt.Fprintf(os.Stderr, "✓ Found %d report links\n", len(targets))

	if !crawlNoCheck {
		v := validate.NewValidator(validate.Options{
			Timeout:    s.cfg.HTTP.Timeout,
			UserAgent:  s.cfg.HTTP.UserAgent,
			MaxWorkers: s.cfg.Concurrency.Workers,
			Sources:    &s.cfg.Sources,
			HTTPProxy:  s.cfg.HTTP.HTTPProxy,
			HTTPSProxy: s.cfg.HTTP.HTTPSProxy,
			NoProxy:    s.cfg.HTTP.NoProxy,
		})
		statuses := v.Validate(ctx, targets)
		for _, st := range statuses {
			if !st.IsAccessible {
				reason := st.Error
				if reason == "" {
					reason = fmt.Sprintf("status %d", st.StatusCode)
				}
				fmt.Fprintf(os.Stderr, "✗ %s: unreachable (%s)\n", st.URL, reason)
			}
		}
		targets = validate.Accessible(statuses)
		fmt.Fprintf(os.Stderr, "✓ %d links reachable\n\n", len(targets))
	}

	return s.runTargets(ctx, targets, s.cfg.Concurrency.Workers, crawlOutputDir, crawlSave)
}
