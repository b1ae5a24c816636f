package ledger

import (
	"context"

	"github.com/roach88/ripple/internal/address"
	"github.com/roach88/ripple/internal/domain"
)

// Campaign returns the campaign at id.
func (l *Ledger) Campaign(ctx context.Context, id string) (domain.Campaign, error) {
	var c domain.Campaign
	err := l.view(ctx, func(tx Tx) error {
		var err error
		c, err = tx.Campaign(ctx, id)
		return err
	})
	return c, err
}

// Profile returns owner's profile.
func (l *Ledger) Profile(ctx context.Context, owner string) (domain.Profile, error) {
	var p domain.Profile
	err := l.view(ctx, func(tx Tx) error {
		var err error
		p, err = tx.Profile(ctx, address.Profile(owner))
		return err
	})
	return p, err
}

// Donation returns the donation at id.
func (l *Ledger) Donation(ctx context.Context, id string) (domain.Donation, error) {
	var d domain.Donation
	err := l.view(ctx, func(tx Tx) error {
		var err error
		d, err = tx.Donation(ctx, id)
		return err
	})
	return d, err
}

// Balance returns identity's wallet balance.
func (l *Ledger) Balance(ctx context.Context, identity string) (domain.Amount, error) {
	return l.balance(ctx, address.Account(identity))
}

// VaultBalance returns the escrowed balance of a campaign.
func (l *Ledger) VaultBalance(ctx context.Context, campaignID string) (domain.Amount, error) {
	return l.balance(ctx, address.Vault(campaignID))
}

func (l *Ledger) balance(ctx context.Context, key string) (domain.Amount, error) {
	var b domain.Amount
	err := l.view(ctx, func(tx Tx) error {
		var err error
		b, err = tx.Balance(ctx, key)
		return err
	})
	return b, err
}

// DonationsByCampaign lists a campaign's donations, oldest first.
func (l *Ledger) DonationsByCampaign(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	var out []domain.Donation
	err := l.view(ctx, func(tx Tx) error {
		var err error
		out, err = tx.DonationsByCampaign(ctx, campaignID)
		return err
	})
	return out, err
}

// DonationsByDonor lists a donor's donations, oldest first.
func (l *Ledger) DonationsByDonor(ctx context.Context, donor string) ([]domain.Donation, error) {
	var out []domain.Donation
	err := l.view(ctx, func(tx Tx) error {
		var err error
		out, err = tx.DonationsByDonor(ctx, donor)
		return err
	})
	return out, err
}

// Leaderboard returns up to limit profiles ranked by total donations,
// ties broken by owner. A limit of zero or less returns every profile.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]domain.Profile, error) {
	var out []domain.Profile
	err := l.view(ctx, func(tx Tx) error {
		var err error
		out, err = tx.TopProfiles(ctx, limit)
		return err
	})
	return out, err
}

// Events returns up to limit events with seq greater than sinceSeq.
// A limit of zero or less returns every remaining event.
func (l *Ledger) Events(ctx context.Context, sinceSeq int64, limit int) ([]domain.Event, error) {
	var out []domain.Event
	err := l.view(ctx, func(tx Tx) error {
		var err error
		out, err = tx.Events(ctx, sinceSeq, limit)
		return err
	})
	return out, err
}
