package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/decree-tools/decree/internal/history"
)

func historyCmd() *cobra.Command {
	var (
		kind   string
		limit  int
		search string
		stats  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query past validation runs",
		Long: `Lists recent validation runs with their verdicts. --search runs a
full-text query over stored violation messages instead, and --stats
prints aggregate counts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.New(history.DefaultConfig())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			switch {
			case stats:
				st, err := store.Stats()
				if err != nil {
					return err
				}
				fmt.Printf("runs: %d\nfailed runs: %d\nviolations: %d\n",
					st.TotalRuns, st.FailedRuns, st.TotalViolations)

			case search != "":
				rows, err := store.SearchViolations(search, limit)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					fmt.Printf("no violations match %q\n", search)
					return nil
				}
				for _, v := range rows {
					fmt.Printf("[%s] %s: %s (%s)\n", v.Rule, v.Path, v.Message, v.Kind)
				}

			default:
				runs, err := store.RecentRuns(kind, limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Println("no recorded runs")
					return nil
				}
				for _, r := range runs {
					fmt.Printf("%s  %-4s  %-9s  %-30s  %d violation(s)\n",
						r.CreatedAt, strings.ToUpper(r.Verdict), r.Kind, r.Target, r.Violations)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "filter runs by report kind (adr, evidence, artifacts, commit)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results")
	cmd.Flags().StringVar(&search, "search", "", "full-text query over past violation messages")
	cmd.Flags().BoolVar(&stats, "stats", false, "print aggregate history statistics")

	return cmd
}
