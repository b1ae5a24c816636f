package ledger

import (
	"context"
	"fmt"

	"github.com/roach88/ripple/internal/address"
	"github.com/roach88/ripple/internal/domain"
)

// vault is the escrow capability for one campaign.
//
// Only the ledger opens vaults, and only for a campaign record whose id
// matches the address derived from its (title, owner). Funds enter through
// deposit and leave through release; nothing else touches the vault balance.
type vault struct {
	campaign domain.Campaign
	key      string
}

// VaultID returns the escrow address of a campaign.
func VaultID(campaignID string) string {
	return address.Vault(campaignID)
}

func openVault(c domain.Campaign) (*vault, error) {
	if address.Campaign(c.Title, c.Owner) != c.ID {
		return nil, fmt.Errorf("campaign %s: address does not match (title, owner): %w", c.ID, domain.ErrInvalidAuthority)
	}
	return &vault{campaign: c, key: address.Vault(c.ID)}, nil
}

func (v *vault) balance(ctx context.Context, tx Tx) (domain.Amount, error) {
	b, err := tx.Balance(ctx, v.key)
	if err != nil {
		return 0, fmt.Errorf("read vault balance: %w", err)
	}
	return b, nil
}

// deposit adds amount to the vault.
func (v *vault) deposit(ctx context.Context, tx Tx, amount domain.Amount) error {
	current, err := v.balance(ctx, tx)
	if err != nil {
		return err
	}
	next, err := current.CheckedAdd(amount)
	if err != nil {
		return err
	}
	if err := tx.SetBalance(ctx, v.key, next); err != nil {
		return fmt.Errorf("write vault balance: %w", err)
	}
	return nil
}

// release moves amount from the vault to recipientKey on behalf of caller.
// Checks, in order: caller owns the campaign, the campaign is completed,
// amount is positive, the vault holds at least amount.
func (v *vault) release(ctx context.Context, tx Tx, caller, recipientKey string, amount domain.Amount) error {
	if caller != v.campaign.Owner {
		return domain.ErrInvalidAuthority
	}
	if v.campaign.Status != domain.StatusCompleted {
		return domain.ErrCampaignNotActive
	}
	if amount == 0 {
		return domain.InvalidArgument("amount", "withdrawal amount must be positive")
	}

	current, err := v.balance(ctx, tx)
	if err != nil {
		return err
	}
	remaining, err := current.CheckedSub(amount)
	if err != nil {
		return err
	}

	credit, err := tx.Balance(ctx, recipientKey)
	if err != nil {
		return fmt.Errorf("read recipient balance: %w", err)
	}
	credited, err := credit.CheckedAdd(amount)
	if err != nil {
		return err
	}

	if err := tx.SetBalance(ctx, v.key, remaining); err != nil {
		return fmt.Errorf("write vault balance: %w", err)
	}
	if err := tx.SetBalance(ctx, recipientKey, credited); err != nil {
		return fmt.Errorf("write recipient balance: %w", err)
	}
	return nil
}

// Withdraw moves amount from the campaign's vault to recipient's wallet.
//
// The caller must own the campaign and the campaign must be completed.
// raised_amount is not reduced; it records what was donated, not what
// remains in escrow.
func (l *Ledger) Withdraw(ctx context.Context, caller, campaignID, recipient string, amount domain.Amount) error {
	now := l.clockNow()
	if recipient == "" {
		return domain.InvalidArgument("recipient", "recipient identity is required")
	}
	if err := domain.CheckUTF8("recipient", recipient); err != nil {
		return err
	}

	recipientKey := address.Account(recipient)
	keys := []string{campaignID, address.Vault(campaignID), recipientKey}

	err := l.run(ctx, now, keys, func(o *op) error {
		c, err := o.tx.Campaign(ctx, campaignID)
		if err != nil {
			return err
		}
		v, err := openVault(c)
		if err != nil {
			return err
		}
		if err := v.release(ctx, o.tx, caller, recipientKey, amount); err != nil {
			return err
		}
		return o.emit(domain.Event{
			Kind:      domain.EventFundsWithdrawn,
			Campaign:  c.ID,
			Recipient: recipient,
			Amount:    amount,
		})
	})
	if err != nil {
		return err
	}

	l.logger.Info("funds withdrawn", "campaign", campaignID, "recipient", recipient, "amount", amount.String())
	return nil
}
