package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// demoTexts are short accident narratives covering grounding, stranding and collision wording
var demoTexts = []string{
	"The cargo ship MV Ever Given ran aground in the Suez Canal on March 23, 2021, " +
		"blocking the waterway for six days. The grounding was caused by strong winds and " +
		"poor visibility during a sandstorm. The vessel was successfully refloated by " +
		"tugboats and the Egyptian authorities.",

	"A bulk carrier grounded on a reef near the Great Barrier Reef yesterday morning. " +
		"The vessel suffered hull damage and minor oil leak was reported. Coast Guard " +
		"dispatched emergency response teams to assess the situation.",

	"The ferry Blue Star struck rocks and beached itself near Sydney harbor entrance " +
		"during heavy fog conditions at 3:00 AM. All 150 passengers were safely evacuated " +
		"by rescue teams. Salvage operations are planned for high tide tomorrow morning.",

	"Container ship Ever Fortune collided with a sandbar in Singapore Strait on Monday " +
		"night due to navigation error. The 200-meter vessel remained stuck for 12 hours " +
		"before being freed by six tugboats. No injuries or pollution reported, but the " +
		"ship sustained minor hull damage.",
}

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the extractor over built-in example reports",
	Long: `Demo extracts events from four short accident narratives so the output of
each extractor can be compared without any input files.

Example:
  groundex demo
  groundex demo --extractor matcher --features`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		banner(out, fmt.Sprintf("groundex demo (%s extractor)", s.pipeline.Extractor().Name()))

		for i, text := range demoTexts {
			report, err := s.pipeline.ExtractText(cmd.Context(), fmt.Sprintf("example-%d", i+1), text)
			if err != nil {
				return fmt.Errorf("example %d: %w", i+1, err)
			}
			if err := s.emit(out, report); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
