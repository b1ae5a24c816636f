package ledger

import (
	"context"
	"fmt"

	"github.com/roach88/ripple/internal/address"
	"github.com/roach88/ripple/internal/domain"
)

// CreditAccount adds amount to identity's wallet balance and returns the new
// balance. It is the only way value enters the ledger from outside; the CLI
// and scenario harness use it to fund donors.
func (l *Ledger) CreditAccount(ctx context.Context, identity string, amount domain.Amount) (domain.Amount, error) {
	if identity == "" {
		return 0, domain.InvalidArgument("account", "account identity is required")
	}
	if err := domain.CheckUTF8("account", identity); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, domain.InvalidArgument("amount", "credit amount must be positive")
	}

	key := address.Account(identity)
	var balance domain.Amount
	err := l.run(ctx, l.clockNow(), []string{key}, func(o *op) error {
		current, err := o.tx.Balance(ctx, key)
		if err != nil {
			return fmt.Errorf("read balance: %w", err)
		}
		next, err := current.CheckedAdd(amount)
		if err != nil {
			return err
		}
		if err := o.tx.SetBalance(ctx, key, next); err != nil {
			return fmt.Errorf("write balance: %w", err)
		}
		balance = next
		return nil
	})
	if err != nil {
		return 0, err
	}

	l.logger.Debug("account credited", "account", identity, "amount", amount.String(), "balance", balance.String())
	return balance, nil
}
