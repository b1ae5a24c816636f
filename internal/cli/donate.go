package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/ledger"
)

// NewDonateCommand creates the donate command.
func NewDonateCommand(opts *RootOptions) *cobra.Command {
	var donor, nonce, method, txHash, impact string
	cmd := &cobra.Command{
		Use:   "donate <campaign-id> <amount>",
		Short: "Donate to a campaign",
		Long: `Move value from the donor's wallet into a campaign's vault.

Each donation is identified by (campaign, donor, nonce). When --nonce is
omitted a UUIDv7 is generated; pass an explicit nonce to make a retry
idempotent (a repeated nonce fails with ALREADY_EXISTS).

Example:
  ripple donate <campaign-id> 2.5 --as alice --nonce order-1842`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			amount, err := domain.ParseAmount(args[1])
			if err != nil {
				return out.LedgerError(err)
			}
			pm, err := domain.ParsePaymentMethod(method)
			if err != nil {
				return out.LedgerError(err)
			}
			if nonce == "" {
				nonce = opts.nonces().Generate()
				out.VerboseLog("generated nonce %s", nonce)
			}

			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				res, err := l.Donate(ctx, ledger.DonateInput{
					Donor:             donor,
					Campaign:          args[0],
					Amount:            amount,
					PaymentMethod:     pm,
					Nonce:             nonce,
					TransactionHash:   txHash,
					ImpactDescription: impact,
				})
				if err != nil {
					return out.LedgerError(err)
				}

				v := donateView{Donation: newDonationView(res.Donation), Awarded: []string{}}
				for _, b := range res.Awarded {
					v.Awarded = append(v.Awarded, string(b.Type))
				}
				if res.BadgeErr != nil {
					v.Skipped = string(domain.CodeOf(res.BadgeErr))
				}
				return out.Success(v)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&donor, "as", "", "donor identity (required)")
	f.StringVar(&nonce, "nonce", "", "donation nonce (default: generated UUIDv7)")
	f.StringVar(&method, "payment-method", string(domain.PaymentCryptoWallet), "payment method (crypto_wallet|card)")
	f.StringVar(&txHash, "tx-hash", "", "external transaction hash")
	f.StringVar(&impact, "impact", "", "impact description")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

// NewWithdrawCommand creates the withdraw command.
func NewWithdrawCommand(opts *RootOptions) *cobra.Command {
	var caller, recipient string
	cmd := &cobra.Command{
		Use:   "withdraw <campaign-id> <amount>",
		Short: "Withdraw escrowed funds from a completed campaign",
		Long: `Move value from a completed campaign's vault to a wallet. Only the
campaign owner may withdraw. The recipient defaults to the owner.

Example:
  ripple withdraw <campaign-id> 40 --as bob --to bob-treasury`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			amount, err := domain.ParseAmount(args[1])
			if err != nil {
				return out.LedgerError(err)
			}
			if recipient == "" {
				recipient = caller
			}
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				if err := l.Withdraw(ctx, caller, args[0], recipient, amount); err != nil {
					return out.LedgerError(err)
				}
				balance, err := l.Balance(ctx, recipient)
				if err != nil {
					return out.LedgerError(err)
				}
				return out.Success(balanceView{Identity: recipient, Balance: balance.String()})
			})
		},
	}
	cmd.Flags().StringVar(&caller, "as", "", "acting identity, the campaign owner (required)")
	cmd.Flags().StringVar(&recipient, "to", "", "recipient identity (default: --as)")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}
