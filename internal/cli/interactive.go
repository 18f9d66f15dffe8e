package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundex/internal/pipeline"
)

var interactiveSave bool

// interactiveCmd represents the interactive command
var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"repl"},
	Short:   "Enter report texts one at a time and inspect the extracted events",
	Long: `Interactive reads one report per line from stdin and prints the extracted
event after each. Type quit, exit or q to stop.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
	interactiveCmd.Flags().BoolVar(&interactiveSave, "save", false, "store each report in the corpus database")
}

func runInteractive(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	in.Buffer(make([]byte, 0, 64*1024), 1<<20)

	banner(out, "groundex interactive mode")
	fmt.Fprintf(out, "Extractor: %s. Type 'quit' to exit.\n", s.pipeline.Extractor().Name())

	for {
		text, ok := prompt(out, in, "\nEnter report text: ")
		if !ok || isQuit(text) {
			fmt.Fprintln(out, "Goodbye.")
			return in.Err()
		}
		if text == "" {
			fmt.Fprintln(out, "Please enter some text.")
			continue
		}

		report, err := s.pipeline.ExtractText(cmd.Context(), "inline", text)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		s.renderer.RenderSummary(out, report)

		answer, ok := prompt(out, in, "Show JSON output? (y/n): ")
		if !ok {
			return in.Err()
		}
		if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
			if err := s.renderer.Render(out, report, pipeline.FormatJSON); err != nil {
				return err
			}
		}

		if interactiveSave {
			if err := s.saveAll(cmd.Context(), report); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
	}
}

func prompt(w io.Writer, in *bufio.Scanner, label string) (string, bool) {
	fmt.Fprint(w, label)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func isQuit(s string) bool {
	switch strings.ToLower(s) {
	case "quit", "exit", "q":
		return true
	}
	return false
}
