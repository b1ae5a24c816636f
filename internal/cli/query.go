package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/ripple/internal/ledger"
)

// NewLeaderboardCommand creates the leaderboard command.
func NewLeaderboardCommand(opts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "List profiles by total donated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				profiles, err := l.Leaderboard(ctx, limit)
				if err != nil {
					return out.LedgerError(err)
				}
				board := leaderboardView{}
				for _, p := range profiles {
					board = append(board, newProfileView(p))
				}
				return out.Success(board)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of profiles to show (0 for all)")
	return cmd
}

// NewEventsCommand creates the events command.
func NewEventsCommand(opts *RootOptions) *cobra.Command {
	var (
		since int64
		limit int
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the event log",
		Long: `Print committed events in seq order.

Use --since with the last seq you processed to read only newer events.

Examples:
  ripple events
  ripple events --since 42 --limit 100 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				events, err := l.Events(ctx, since, limit)
				if err != nil {
					return out.LedgerError(err)
				}
				list := eventList{}
				for _, e := range events {
					list = append(list, newEventView(e))
				}
				return out.Success(list)
			})
		},
	}
	cmd.Flags().Int64Var(&since, "since", 0, "only events with seq greater than this")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of events (0 for all)")
	return cmd
}
