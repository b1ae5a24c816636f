package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/ripple/internal/ledger"
)

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage donor profiles",
	}
	cmd.AddCommand(newProfileInitCommand(rootOpts))
	cmd.AddCommand(newProfileUpdateCommand(rootOpts))
	cmd.AddCommand(newProfileShowCommand(rootOpts))
	return cmd
}

func newProfileInitCommand(opts *RootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init <owner>",
		Short: "Create a profile",
		Long: `Create the profile of an identity. Every aggregate starts at zero and
the wallet reference defaults to the identity itself.

Example:
  ripple profile init alice --name "Alice Example"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			if !cmd.Flags().Changed("name") {
				name = args[0]
			}
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				p, err := l.InitializeProfile(ctx, args[0], name)
				if err != nil {
					return out.LedgerError(err)
				}
				return out.Success(newProfileView(p))
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the owner)")
	return cmd
}

func newProfileUpdateCommand(opts *RootOptions) *cobra.Command {
	var name, email, avatar string
	cmd := &cobra.Command{
		Use:   "update <owner>",
		Short: "Change a profile's name, email or avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			flags := cmd.Flags()
			var patch ledger.ProfilePatch
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("email") {
				patch.Email = &email
			}
			if flags.Changed("avatar-url") {
				patch.AvatarURL = &avatar
			}
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				p, err := l.UpdateProfile(ctx, args[0], patch)
				if err != nil {
					return out.LedgerError(err)
				}
				return out.Success(newProfileView(p))
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	cmd.Flags().StringVar(&avatar, "avatar-url", "", "avatar image URL")
	return cmd
}

func newProfileShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <owner>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				p, err := l.Profile(ctx, args[0])
				if err != nil {
					return out.LedgerError(err)
				}
				return out.Success(newProfileView(p))
			})
		},
	}
}
