package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/pipeline"
	"github.com/ppiankov/groundex/internal/store"
)

var (
	listType     string
	listMinIndex int
	listLimit    int
	statsTop     int
)

// corpusCmd represents the corpus command
var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect saved reports",
	Long: `Inspect the corpus of reports saved with --save.

Example:
  groundex corpus list --type grounding --min-index 60
  groundex corpus stats --top 5
  groundex corpus show 3f6c...`,
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(_ *model.Config, db *store.Store) error {
			rows, err := db.List(cmd.Context(), store.Filter{
				EventType: model.EventType(listType),
				MinIndex:  listMinIndex,
				Limit:     listLimit,
			})
			if err != nil {
				return err
			}
			printSummaries(cmd.OutOrStdout(), rows)
			return nil
		})
	},
}

var corpusShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(cfg *model.Config, db *store.Store) error {
			report, err := db.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return pipeline.NewRenderer(cfg.Output.IncludeFooter).Render(cmd.OutOrStdout(), report, cfg.Output.Format)
		})
	},
}

var corpusDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(_ *model.Config, db *store.Store) error {
			if err := db.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", args[0])
			return nil
		})
	},
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show event type counts and the most frequent argument values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(_ *model.Config, db *store.Store) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			total, err := db.Count(ctx)
			if err != nil {
				return err
			}
			counts, err := db.EventTypeCounts(ctx)
			if err != nil {
				return err
			}

			banner(out, "Corpus statistics")
			fmt.Fprintf(out, "Reports: %d\n\nEvent types:\n", total)
			types := make([]string, 0, len(counts))
			for t := range counts {
				types = append(types, string(t))
			}
			sort.Strings(types)
			for _, t := range types {
				fmt.Fprintf(out, "  %-20s %d\n", t, counts[model.EventType(t)])
			}

			for _, role := range []string{model.RoleVessel, model.RoleLocation, model.RoleCause, model.RoleDamage, model.RoleResponse} {
				freqs, err := db.RoleFrequencies(ctx, role, statsTop)
				if err != nil {
					return err
				}
				if len(freqs) == 0 {
					continue
				}
				fmt.Fprintf(out, "\nTop %s values:\n", role)
				for _, f := range freqs {
					fmt.Fprintf(out, "  %-30s %d\n", f.Value, f.Count)
				}
			}
			fmt.Fprintln(out)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusListCmd, corpusShowCmd, corpusDeleteCmd, corpusStatsCmd)

	corpusListCmd.Flags().StringVar(&listType, "type", "", "only reports with this event type")
	corpusListCmd.Flags().IntVar(&listMinIndex, "min-index", 0, "only reports with at least this completeness")
	corpusListCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum number of rows (0 for all)")
	corpusStatsCmd.Flags().IntVar(&statsTop, "top", 5, "number of values per role")
}

func withStore(fn func(cfg *model.Config, db *store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = db.Close() }()
	return fn(cfg, db)
}

func printSummaries(w io.Writer, rows []store.Summary) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No reports saved yet. Use --save with extract, scan, batch or crawl.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVENT\tINDEX\tEXTRACTOR\tEXTRACTED\tSUBJECT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.EventType, r.Completeness, r.Extractor,
			r.ExtractedAt.Format("2006-01-02 15:04"), r.Subject)
	}
	_ = tw.Flush()
}
