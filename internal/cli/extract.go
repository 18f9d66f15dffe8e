package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/groundex/internal/model"
)

var (
	extractFiles   []string
	extractOut     string
	extractSave    bool
	extractTimeout time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Extract a grounding event from report text",
	Long: `Extract reads report text from arguments, files or stdin and prints the
grounding event found in it: event type, trigger words and argument roles
(vessel, location, cause, time, damage, response).

Example:
  groundex extract "The bulk carrier grounded on a reef near Gladstone."
  groundex extract --file report1.txt --file report2.txt --format json
  cat report.txt | groundex extract --extractor matcher --features
  groundex extract --file report.txt --out report.md --save`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringSliceVar(&extractFiles, "file", nil, "report text file (repeatable)")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "also write the report to this path (.json, .yaml, .md)")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "store the report in the corpus database")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 2*time.Minute, "overall timeout")
}

type textInput struct {
	source string
	text   string
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), extractTimeout)
	defer cancel()

	inputs, err := extractInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}

	reports := make([]*model.Report, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Concurrency.Workers, 1))
	for i, in := range inputs {
		g.Go(func() error {
			report, err := s.pipeline.ExtractText(gctx, in.source, in.text)
			if err != nil {
				return fmt.Errorf("%s: %w", in.source, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, report := range reports {
		if err := s.emit(out, report); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}

	if extractOut != "" {
		if len(reports) > 1 {
			return fmt.Errorf("--out takes a single report, got %d", len(reports))
		}
		if err := s.renderer.RenderFile(reports[0], extractOut); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", extractOut)
	}

	if extractSave {
		return s.saveAll(ctx, reports...)
	}
	return nil
}

// extractInputs collects text from --file flags, positional arguments or stdin, in that order
func extractInputs(stdin io.Reader, args []string) ([]textInput, error) {
	var inputs []textInput

	for _, path := range extractFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		inputs = append(inputs, textInput{source: path, text: string(data)})
	}

	if text := strings.TrimSpace(strings.Join(args, " ")); text != "" {
		inputs = append(inputs, textInput{source: "inline", text: text})
	}

	if len(inputs) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil, fmt.Errorf("no report text: pass text as an argument, use --file, or pipe to stdin")
		}
		inputs = append(inputs, textInput{source: "stdin", text: string(data)})
	}
	return inputs, nil
}
