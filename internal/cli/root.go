package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/ripple/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	DB       string
	Policy   string
	LogLevel string

	// Nonces generates donation nonces when --nonce is omitted.
	// If nil, defaults to UUIDv7Generator.
	Nonces NonceGenerator

	// EnvFiles are the dotenv files read before the environment.
	// If empty, config.Load reads ".env".
	EnvFiles []string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ripple CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ripple",
		Short: "ripple - a fundraising ledger",
		Long: `A fundraising ledger: campaigns with escrow vaults, donations with
donor badges, and owner withdrawals after completion.

Settings come from flags, then RIPPLE_* environment variables, then an
optional .env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfig(cmd, opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to SQLite database (default $RIPPLE_DB or ripple.db)")
	cmd.PersistentFlags().StringVar(&opts.Policy, "policy", "", "CUE policy file unified with the defaults")

	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewAccountCommand(opts))
	cmd.AddCommand(NewCampaignCommand(opts))
	cmd.AddCommand(NewDonateCommand(opts))
	cmd.AddCommand(NewWithdrawCommand(opts))
	cmd.AddCommand(NewLeaderboardCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// applyConfig fills options the user did not set on the command line from
// the environment, then validates the result.
func applyConfig(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.EnvFiles...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("db") {
		opts.DB = cfg.DB
	}
	if !flags.Changed("policy") {
		opts.Policy = cfg.Policy
	}
	if !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	opts.LogLevel = cfg.LogLevel

	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
