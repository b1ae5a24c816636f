package ledger

import (
	"context"
	"fmt"

	"github.com/roach88/ripple/internal/address"
	"github.com/roach88/ripple/internal/domain"
)

// DonateInput describes one donation.
//
// Nonce distinguishes repeated donations by the same donor to the same
// campaign; reusing a nonce fails with domain.ErrAlreadyExists.
type DonateInput struct {
	Donor             string
	Campaign          string
	Amount            domain.Amount
	PaymentMethod     domain.PaymentMethod
	Nonce             string
	TransactionHash   string
	ImpactDescription string
}

// DonationResult reports a committed donation.
//
// Awarded lists the badges granted by this donation. BadgeErr is
// domain.ErrMaxBadgesReached when an earned badge was skipped because the
// profile is full; the donation itself succeeded regardless.
type DonationResult struct {
	Donation domain.Donation
	Awarded  []domain.Badge
	BadgeErr error
}

// DonationID returns the address of the donation (campaign, donor, nonce).
func DonationID(campaignID, donor, nonce string) string {
	return address.Donation(campaignID, donor, nonce)
}

// Donate moves value from the donor's wallet into the campaign vault,
// records the donation, updates the campaign and donor aggregates, and
// evaluates badges. Everything except a skipped badge commits atomically.
//
// Checks, in order: campaign exists; campaign active; deadline not passed;
// amount at least the minimum donation; text lengths; donor profile exists;
// donation address free; donor balance covers amount.
func (l *Ledger) Donate(ctx context.Context, in DonateInput) (DonationResult, error) {
	now := l.clockNow()
	if in.Donor == "" {
		return DonationResult{}, domain.InvalidArgument("donor", "donor identity is required")
	}
	if in.Nonce == "" {
		return DonationResult{}, domain.InvalidArgument("nonce", "nonce is required")
	}
	if err := domain.CheckUTF8("donor", in.Donor); err != nil {
		return DonationResult{}, err
	}
	if err := domain.CheckUTF8("nonce", in.Nonce); err != nil {
		return DonationResult{}, err
	}
	if _, err := domain.ParsePaymentMethod(string(in.PaymentMethod)); err != nil {
		return DonationResult{}, err
	}

	donationID := DonationID(in.Campaign, in.Donor, in.Nonce)
	profileID := address.Profile(in.Donor)
	walletKey := address.Account(in.Donor)
	keys := []string{in.Campaign, address.Vault(in.Campaign), donationID, profileID, walletKey}

	var result DonationResult
	err := l.run(ctx, now, keys, func(o *op) error {
		result = DonationResult{}

		c, err := o.tx.Campaign(ctx, in.Campaign)
		if err != nil {
			return err
		}
		if c.Status != domain.StatusActive {
			return domain.ErrCampaignNotActive
		}
		if !c.EndDate.After(now) {
			return domain.ErrCampaignEnded
		}
		if in.Amount < l.policy.MinDonation {
			return domain.ErrDonationTooLow
		}
		if err := domain.CheckLength(domain.FieldTransactionHash, in.TransactionHash, l.policy.Limits.TransactionHash); err != nil {
			return err
		}
		if err := domain.CheckLength(domain.FieldImpactDescription, in.ImpactDescription, l.policy.Limits.ImpactDescription); err != nil {
			return err
		}

		profile, err := o.tx.Profile(ctx, profileID)
		if err != nil {
			return err
		}
		if _, err := o.tx.Donation(ctx, donationID); err == nil {
			return domain.AlreadyExists("donation", donationID)
		} else if !domain.IsNotFound(err) {
			return fmt.Errorf("read donation: %w", err)
		}

		wallet, err := o.tx.Balance(ctx, walletKey)
		if err != nil {
			return fmt.Errorf("read wallet balance: %w", err)
		}
		remaining, err := wallet.CheckedSub(in.Amount)
		if err != nil {
			return err
		}

		v, err := openVault(c)
		if err != nil {
			return err
		}
		if err := c.RecordDonation(in.Amount); err != nil {
			return err
		}
		if err := profile.RecordDonation(in.Amount); err != nil {
			return err
		}
		if err := v.deposit(ctx, o.tx, in.Amount); err != nil {
			return err
		}
		if err := o.tx.SetBalance(ctx, walletKey, remaining); err != nil {
			return fmt.Errorf("write wallet balance: %w", err)
		}

		d := domain.Donation{
			ID:                donationID,
			Campaign:          c.ID,
			Donor:             in.Donor,
			Nonce:             in.Nonce,
			Amount:            in.Amount,
			Timestamp:         now,
			Status:            domain.DonationCompleted,
			PaymentMethod:     in.PaymentMethod,
			TransactionHash:   in.TransactionHash,
			ImpactDescription: in.ImpactDescription,
		}
		if err := o.tx.InsertDonation(ctx, d); err != nil {
			return err
		}
		if err := o.tx.PutCampaign(ctx, c); err != nil {
			return fmt.Errorf("write campaign: %w", err)
		}

		awarded, badgeErr := l.badges.Evaluate(&profile, now)
		if err := o.tx.PutProfile(ctx, profile); err != nil {
			return fmt.Errorf("write profile: %w", err)
		}

		if err := o.emit(domain.Event{
			Kind:          domain.EventDonationReceived,
			Donation:      d.ID,
			Campaign:      c.ID,
			Donor:         d.Donor,
			Amount:        d.Amount,
			PaymentMethod: d.PaymentMethod,
		}); err != nil {
			return err
		}
		for _, b := range awarded {
			if err := o.emit(domain.Event{
				Kind:      domain.EventBadgeAwarded,
				User:      in.Donor,
				BadgeType: b.Type,
			}); err != nil {
				return err
			}
		}

		result = DonationResult{Donation: d, Awarded: awarded, BadgeErr: badgeErr}
		return nil
	})
	if err != nil {
		return DonationResult{}, err
	}

	l.logger.Info("donation received",
		"campaign", in.Campaign,
		"donor", in.Donor,
		"amount", in.Amount.String(),
		"donation", result.Donation.ID,
	)
	for _, b := range result.Awarded {
		l.logger.Info("badge awarded", "donor", in.Donor, "badge", b.Type)
	}
	if result.BadgeErr != nil {
		l.logger.Warn("badge award skipped", "donor", in.Donor, "error", result.BadgeErr)
	}
	return result, nil
}
