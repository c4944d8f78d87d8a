package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/fcs-core/internal/history"
	"github.com/nerrad567/fcs-core/internal/printer"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		outcome string
		since   time.Duration
		limit   int
		stats   bool
		window  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded setup dispatches",
		Long: `List the App/Setup dispatches recorded in the history database, newest
first. --stats prints success and failure counts from InfluxDB instead.`,
		Example: `  fcsctl history --outcome failure --since 24h
  fcsctl history --stats --window 1h
  fcsctl history prune --older-than 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			if stats {
				if !s.cfg.InfluxDB.Enabled {
					return s.out.Error("Dispatch metrics are disabled", "",
						"Set influxdb.enabled: true in the configuration")
				}
				influx := s.influx()
				if influx == nil {
					return s.out.Error("InfluxDB unavailable", "",
						"Check the influxdb section of the configuration")
				}
				res, err := influx.DispatchStats(ctx, s.cfg.FCS.Service, window)
				if err != nil {
					return s.out.Error("Cannot query dispatch metrics", err.Error())
				}
				s.out.Println(fmt.Sprintf("dispatches in the last %s: %d", window, res.Total()))
				for _, o := range []string{history.OutcomeSuccess, history.OutcomeFailure} {
					s.out.Println(fmt.Sprintf("  %s: %d", o, res.Counts[o]))
				}
				return nil
			}

			repo, err := openHistory(cmd, s)
			if err != nil {
				return err
			}
			f := history.Filter{Outcome: outcome, Limit: limit}
			if since > 0 {
				f.Since = time.Now().Add(-since)
			}
			entries, err := repo.List(ctx, f)
			if err != nil {
				return s.out.Error("Cannot list dispatch history", err.Error())
			}
			s.out.History(historyRows(entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&outcome, "outcome", "", "only show success or failure")
	cmd.Flags().DurationVar(&since, "since", 0, "only show dispatches younger than this")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of entries (default 50, max 200)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print dispatch counts from InfluxDB")
	cmd.Flags().DurationVar(&window, "window", 24*time.Hour, "time window of --stats")

	cmd.AddCommand(newHistoryPruneCmd(opts))
	return cmd
}

func newHistoryPruneCmd(opts *rootOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			repo, err := openHistory(cmd, s)
			if err != nil {
				return err
			}
			n, err := repo.Prune(cmd.Context(), olderThan)
			if err != nil {
				return s.out.Error("Cannot prune dispatch history", err.Error())
			}
			s.out.Success("removed %d entries older than %s", n, olderThan)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of the entries to delete")
	return cmd
}

func openHistory(cmd *cobra.Command, s *session) (*history.SQLiteRepository, error) {
	if !s.cfg.Database.Enabled {
		return nil, s.out.Error("Dispatch history is disabled", "",
			"Set database.enabled: true in the configuration")
	}
	repo, err := s.history(cmd.Context())
	if err != nil {
		return nil, s.out.Error("Cannot open the history database", err.Error(),
			"Check database.path in the configuration")
	}
	return repo, nil
}

func historyRows(entries []history.Entry) []printer.HistoryRow {
	rows := make([]printer.HistoryRow, len(entries))
	for i, e := range entries {
		detail := e.Message
		if e.Outcome == history.OutcomeFailure {
			detail = e.Error
		}
		rows[i] = printer.HistoryRow{
			RequestID: e.RequestID,
			CreatedAt: e.CreatedAt,
			Outcome:   e.Outcome,
			Elements:  len(e.Elements),
			Duration:  e.Duration,
			Detail:    detail,
		}
	}
	return rows
}
