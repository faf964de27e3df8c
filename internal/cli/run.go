package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"dsqsched/internal/sim"
	"dsqsched/internal/store"
)

func newRunCmd() *cobra.Command {
	var (
		policy   string
		cpus     int
		duration time.Duration
		csvPath  string
		dbPath   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the workload under one policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("policy") {
				cfg.Policy = policy
			}
			if cpus > 0 {
				cfg.Sim.CPUs = cpus
			}
			if duration > 0 {
				cfg.Sim.DurationNS = uint64(duration)
			}
			if csvPath != "" {
				cfg.CSV = csvPath
			}
			if dbPath != "" {
				cfg.DB = dbPath
			}

			report, err := simulate(cmd.Context(), cfg.Policy, cfg.CSV)
			if err != nil {
				return err
			}
			if err := report.WriteSummary(cmd.OutOrStdout()); err != nil {
				return err
			}
			return persist(cmd.Context(), cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVarP(&policy, "policy", "p", "", "Policy to simulate (lottery, vtime)")
	cmd.Flags().IntVar(&cpus, "cpus", 0, "Number of simulated CPUs")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Simulated duration")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write every scheduler event to this CSV file")
	cmd.Flags().StringVar(&dbPath, "db", "", "Store the run summary in this SQLite database")
	return cmd
}

func simulate(ctx context.Context, policy, csvPath string) (*sim.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var opts []sim.Option
	if csvPath != "" {
		sink, err := sim.NewCSVSink(csvPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sim.WithSink(sink))
	}

	s, err := sim.New(cfg.Sim, cfg.Sched, sim.ByName(policy, cfg.Sched, logger), cfg.Tasks, logger, opts...)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

func persist(ctx context.Context, w io.Writer, reports ...*sim.Report) error {
	if cfg.DB == "" {
		return nil
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, r := range reports {
		id, err := st.SaveRun(ctx, r)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "saved %s\n", id)
	}
	return nil
}

func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
