package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/ledger"
)

// sqlTx implements ledger.Tx over a database/sql transaction.
type sqlTx struct {
	tx *sql.Tx
}

var _ ledger.Tx = (*sqlTx)(nil)

// insertedOrExists maps an ON CONFLICT DO NOTHING result to
// domain.ErrAlreadyExists when no row was written.
func insertedOrExists(result sql.Result, record, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert %s: rows affected: %w", record, err)
	}
	if n == 0 {
		return domain.AlreadyExists(record, id)
	}
	return nil
}

// InsertProfile writes a new profile.
// Uses ON CONFLICT DO NOTHING; an existing row yields domain.ErrAlreadyExists.
func (t *sqlTx) InsertProfile(ctx context.Context, p domain.Profile) error {
	badges, err := marshalBadges(p.Badges)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO profiles
		(id, owner, name, wallet, email, avatar_url, total_donations, campaigns_supported,
		 meals_provided, children_educated, families_housed, trees_planted, badges, rank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		p.ID, p.Owner, p.Name, p.Wallet, p.Email, p.AvatarURL,
		encodeAmount(p.TotalDonations), p.CampaignsSupported,
		p.Impact.MealsProvided, p.Impact.ChildrenEducated, p.Impact.FamiliesHoused, p.Impact.TreesPlanted,
		badges, p.Rank,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return insertedOrExists(result, "profile", p.ID)
}

// PutProfile inserts or replaces a profile.
func (t *sqlTx) PutProfile(ctx context.Context, p domain.Profile) error {
	badges, err := marshalBadges(p.Badges)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO profiles
		(id, owner, name, wallet, email, avatar_url, total_donations, campaigns_supported,
		 meals_provided, children_educated, families_housed, trees_planted, badges, rank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			wallet = excluded.wallet,
			email = excluded.email,
			avatar_url = excluded.avatar_url,
			total_donations = excluded.total_donations,
			campaigns_supported = excluded.campaigns_supported,
			meals_provided = excluded.meals_provided,
			children_educated = excluded.children_educated,
			families_housed = excluded.families_housed,
			trees_planted = excluded.trees_planted,
			badges = excluded.badges,
			rank = excluded.rank
	`,
		p.ID, p.Owner, p.Name, p.Wallet, p.Email, p.AvatarURL,
		encodeAmount(p.TotalDonations), p.CampaignsSupported,
		p.Impact.MealsProvided, p.Impact.ChildrenEducated, p.Impact.FamiliesHoused, p.Impact.TreesPlanted,
		badges, p.Rank,
	)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

// InsertCampaign writes a new campaign.
// Uses ON CONFLICT(id) DO NOTHING; an existing row yields domain.ErrAlreadyExists.
func (t *sqlTx) InsertCampaign(ctx context.Context, c domain.Campaign) error {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO campaigns
		(id, owner, title, description, category, organization_name, image_url,
		 target_amount, raised_amount, donors_count, start_date, end_date, status, is_urgent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, campaignArgs(c)...)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return insertedOrExists(result, "campaign", c.ID)
}

// PutCampaign inserts or replaces a campaign.
func (t *sqlTx) PutCampaign(ctx context.Context, c domain.Campaign) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO campaigns
		(id, owner, title, description, category, organization_name, image_url,
		 target_amount, raised_amount, donors_count, start_date, end_date, status, is_urgent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			category = excluded.category,
			organization_name = excluded.organization_name,
			image_url = excluded.image_url,
			target_amount = excluded.target_amount,
			raised_amount = excluded.raised_amount,
			donors_count = excluded.donors_count,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			status = excluded.status,
			is_urgent = excluded.is_urgent
	`, campaignArgs(c)...)
	if err != nil {
		return fmt.Errorf("put campaign: %w", err)
	}
	return nil
}

func campaignArgs(c domain.Campaign) []any {
	return []any{
		c.ID, c.Owner, c.Title, c.Description, string(c.Category), c.OrganizationName, c.ImageURL,
		encodeAmount(c.TargetAmount), encodeAmount(c.RaisedAmount), c.DonorsCount,
		encodeTime(c.StartDate), encodeTime(c.EndDate), string(c.Status), c.IsUrgent,
	}
}

// InsertDonation writes a new donation.
// Uses ON CONFLICT DO NOTHING; both a duplicate id and a duplicate
// (campaign, donor, nonce) yield domain.ErrAlreadyExists.
//
// Note: The campaign referenced by d.Campaign must exist (foreign key constraint).
func (t *sqlTx) InsertDonation(ctx context.Context, d domain.Donation) error {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO donations
		(id, campaign_id, donor, nonce, amount, timestamp, status, payment_method,
		 transaction_hash, impact_description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		d.ID, d.Campaign, d.Donor, d.Nonce, encodeAmount(d.Amount), encodeTime(d.Timestamp),
		string(d.Status), string(d.PaymentMethod), d.TransactionHash, d.ImpactDescription,
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return insertedOrExists(result, "donation", d.ID)
}

// SetBalance stores the balance held at key.
func (t *sqlTx) SetBalance(ctx context.Context, key string, amount domain.Amount) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO balances (key, amount) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET amount = excluded.amount
	`, key, encodeAmount(amount))
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

// AppendEvent adds e to the event log under the next seq and returns it.
// The seq is read inside the write transaction, which holds SQLite's write
// lock, so concurrent writers on one database never pick the same value.
func (t *sqlTx) AppendEvent(ctx context.Context, e domain.Event) (int64, error) {
	last, err := t.LastEventSeq(ctx)
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	e.Seq = last + 1

	body, err := marshalEvent(e)
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO events (seq, id, kind, at, body) VALUES (?, ?, ?, ?, ?)
	`, e.Seq, e.ID, string(e.Kind), encodeTime(e.At), body)
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	return e.Seq, nil
}
