package cli

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/ripple/internal/ledger"
	"github.com/roach88/ripple/internal/policy"
	"github.com/roach88/ripple/internal/store"
)

// NonceGenerator produces donation nonces.
type NonceGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 nonces.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (o *RootOptions) nonces() NonceGenerator {
	if o.Nonces == nil {
		return UUIDv7Generator{}
	}
	return o.Nonces
}

// newLogger builds the command's slog logger. --verbose forces debug.
func newLogger(cmd *cobra.Command, opts *RootOptions) *slog.Logger {
	level := slog.LevelWarn
	switch opts.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// loadPolicy returns the configured policy, or the defaults.
func loadPolicy(opts *RootOptions) (policy.Policy, error) {
	if opts.Policy == "" {
		return policy.Default(), nil
	}
	return policy.Load(opts.Policy)
}

// withLedger opens the database, builds a ledger over it and runs fn.
// The database is closed when fn returns.
func withLedger(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, l *ledger.Ledger) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cmd, opts)

	pol, err := loadPolicy(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load policy", err)
	}

	logger.Debug("opening database", "path", opts.DB)
	st, err := store.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	l, err := ledger.New(ctx, st,
		ledger.WithPolicy(pol),
		ledger.WithLogger(logger),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	return fn(ctx, l)
}
