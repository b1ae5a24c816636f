package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/ledger"
)

// NewAccountCommand creates the account command group.
func NewAccountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Fund and inspect wallets",
	}
	cmd.AddCommand(newAccountCreditCommand(rootOpts))
	cmd.AddCommand(newAccountBalanceCommand(rootOpts))
	return cmd
}

func newAccountCreditCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "credit <identity> <amount>",
		Short: "Add spendable value to a wallet",
		Long: `Add spendable value to an identity's wallet. Amounts are decimal
value-units with at most nine fractional digits.

Example:
  ripple account credit alice 25.5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			amount, err := domain.ParseAmount(args[1])
			if err != nil {
				return out.LedgerError(err)
			}
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				balance, err := l.CreditAccount(ctx, args[0], amount)
				if err != nil {
					return out.LedgerError(err)
				}
				return out.Success(balanceView{Identity: args[0], Balance: balance.String()})
			})
		},
	}
}

func newAccountBalanceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <identity>",
		Short: "Show a wallet balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				balance, err := l.Balance(ctx, args[0])
				if err != nil {
					return out.LedgerError(err)
				}
				return out.Success(balanceView{Identity: args[0], Balance: balance.String()})
			})
		},
	}
}
