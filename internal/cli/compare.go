package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dsqsched/internal/sched"
	"dsqsched/internal/sim"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Run the same workload under every policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var reports []*sim.Report
			for i, name := range sched.Names() {
				if i > 0 {
					fmt.Fprintln(out)
				}
				report, err := simulate(cmd.Context(), name, "")
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				if err := report.WriteSummary(out); err != nil {
					return err
				}
				reports = append(reports, report)
			}
			return persist(cmd.Context(), out, reports...)
		},
	}
}
